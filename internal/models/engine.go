package models

// Engine names a script engine used for playback and recording
type Engine string

const (
	EngineLua      Engine = "lua"
	EngineStarlark Engine = "starlark"
)

// Valid reports whether the engine is supported
func (e Engine) Valid() bool {
	switch e {
	case EngineLua, EngineStarlark:
		return true
	default:
		return false
	}
}
