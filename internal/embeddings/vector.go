package embeddings

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// Errors returned for vectors that cannot be stored or compared.
var (
	ErrEmptyVector    = errors.New("vector is empty")
	ErrInvalidVector  = errors.New("vector holds NaN or infinite values")
	ErrCorruptVector  = errors.New("encoded vector is corrupt")
	ErrDimensionCount = errors.New("vectors differ in dimension")
	ErrZeroVector     = errors.New("vector has zero length")
)

const float64Size = 8

// Encode packs vec as little-endian float64 values
func Encode(vec []float64) ([]byte, error) {
	if err := validate(vec); err != nil {
		return nil, err
	}

	buf := make([]byte, len(vec)*float64Size)
	for i, v := range vec {
		binary.LittleEndian.PutUint64(buf[i*float64Size:], math.Float64bits(v))
	}
	return buf, nil
}

// Decode unpacks a vector written by Encode
func Decode(data []byte) ([]float64, error) {
	if len(data) == 0 {
		return nil, ErrEmptyVector
	}
	if len(data)%float64Size != 0 {
		return nil, fmt.Errorf("%w: %d bytes", ErrCorruptVector, len(data))
	}

	vec := make([]float64, len(data)/float64Size)
	for i := range vec {
		vec[i] = math.Float64frombits(binary.LittleEndian.Uint64(data[i*float64Size:]))
	}
	if err := validate(vec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptVector, err)
	}
	return vec, nil
}

func validate(vec []float64) error {
	if len(vec) == 0 {
		return ErrEmptyVector
	}
	for i, v := range vec {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: index %d", ErrInvalidVector, i)
		}
	}
	return nil
}

// CosineSimilarity returns the cosine of the angle between a and b, in [-1, 1]
func CosineSimilarity(a, b []float64) (float64, error) {
	if len(a) == 0 || len(b) == 0 {
		return 0, ErrEmptyVector
	}
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d and %d", ErrDimensionCount, len(a), len(b))
	}

	var dot, aa, bb float64
	for i, x := range a {
		y := b[i]
		dot += x * y
		aa += x * x
		bb += y * y
	}
	if aa == 0 || bb == 0 {
		return 0, ErrZeroVector
	}

	// Rounding can push the result just outside [-1, 1].
	return max(-1, min(1, dot/math.Sqrt(aa*bb))), nil
}

// Percent maps a cosine similarity from [-1, 1] onto [0, 100]
func Percent(similarity float64) float64 {
	return (similarity + 1) * 50
}
