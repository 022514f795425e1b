package embeddings

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/sourcegraph/conc/pool"
	"github.com/spf13/afero"
)

// CacheDir is the directory under the macro folder holding cached vectors
const CacheDir = ".embeddings"

// Embedder turns text into a vector
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Cache stores vectors keyed by the hash of the model and the embedded text,
// so an unchanged macro is never embedded twice
type Cache struct {
	fs    afero.Fs
	dir   string
	model string
}

// NewCache creates a cache in dir for vectors produced by model
func NewCache(fs afero.Fs, dir, model string) *Cache {
	return &Cache{fs: fs, dir: dir, model: model}
}

// Key returns the cache key of text
func (c *Cache) Key(text string) string {
	sum := sha256.Sum256([]byte(c.model + "\x00" + text))
	return hex.EncodeToString(sum[:])
}

func (c *Cache) path(text string) string {
	return filepath.Join(c.dir, c.Key(text)+".bin")
}

// Get returns the cached vector of text, if any
func (c *Cache) Get(text string) ([]float64, bool) {
	data, err := afero.ReadFile(c.fs, c.path(text))
	if err != nil {
		return nil, false
	}
	vec, err := Decode(data)
	if err != nil {
		return nil, false
	}
	return vec, true
}

// Put stores the vector of text
func (c *Cache) Put(text string, vec []float64) error {
	if err := c.fs.MkdirAll(c.dir, 0755); err != nil {
		return fmt.Errorf("failed to create embedding cache: %w", err)
	}
	data, err := Encode(vec)
	if err != nil {
		return err
	}
	if err := afero.WriteFile(c.fs, c.path(text), data, 0644); err != nil {
		return fmt.Errorf("failed to write embedding: %w", err)
	}
	return nil
}

// Document is a named text to embed
type Document struct {
	Name string
	Text string
}

type embedded struct {
	name string
	vec  []float64
}

// EmbedAll returns the vectors of docs by name, using the cache where
// possible and at most workers concurrent requests otherwise. Documents
// that fail to embed are logged and left out.
func EmbedAll(ctx context.Context, e Embedder, cache *Cache, docs []Document, workers int, logger *slog.Logger) map[string][]float64 {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = slog.Default()
	}

	p := pool.NewWithResults[embedded]().WithContext(ctx).WithMaxGoroutines(workers)
	for _, doc := range docs {
		p.Go(func(ctx context.Context) (embedded, error) {
			if vec, ok := cache.Get(doc.Text); ok {
				return embedded{name: doc.Name, vec: vec}, nil
			}

			vec, err := e.Embed(ctx, doc.Text)
			if err != nil {
				logger.Warn("failed to embed macro", "macro", doc.Name, "error", err)
				return embedded{name: doc.Name}, nil
			}
			if err := cache.Put(doc.Text, vec); err != nil {
				logger.Warn("failed to cache embedding", "macro", doc.Name, "error", err)
			}
			return embedded{name: doc.Name, vec: vec}, nil
		})
	}

	// Tasks never return errors, failures are logged above
	results, _ := p.Wait()

	vectors := make(map[string][]float64, len(results))
	for _, r := range results {
		if r.vec != nil {
			vectors[r.name] = r.vec
		}
	}
	return vectors
}
