package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/pders01/macrotools/internal/models"
	"github.com/spf13/viper"
)

// Dir returns the directory holding config.toml
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "macrotools")
}

// DefaultFolder returns the macro folder used when none is configured
func DefaultFolder() string {
	return filepath.Join(Dir(), "macros")
}

// SetDefaults registers the default value of every key
func SetDefaults(v *viper.Viper) {
	v.SetDefault("macros.folder", DefaultFolder())
	v.SetDefault("macros.prefix", "")
	v.SetDefault("playback.engine", string(models.EngineLua))
	v.SetDefault("record.execute", true)
	v.SetDefault("shell.editor", "")
	v.SetDefault("shell.history_file", filepath.Join(Dir(), "history"))
	v.SetDefault("watch.debounce", "100ms")
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.file", "")
	v.SetDefault("embeddings.enabled", true)
	v.SetDefault("embeddings.model", "nomic-embed-text")
	v.SetDefault("embeddings.ollama_url", "http://localhost:11434")
	v.SetDefault("search.keyword_weight", 0.3)
	v.SetDefault("search.semantic_weight", 0.7)
	v.SetDefault("search.workers", 4)
}

// GetMacroFolder returns the folder macros are stored in
func GetMacroFolder() string {
	return viper.GetString("macros.folder")
}

// GetMacroPrefix returns the file name prefix of every macro
func GetMacroPrefix() string {
	return viper.GetString("macros.prefix")
}

// GetEngine returns the script engine used for playback and recording
func GetEngine() models.Engine {
	if engine := viper.GetString("playback.engine"); engine != "" {
		return models.Engine(engine)
	}
	return models.EngineLua
}

// GetRecordExecute reports whether recorded lines are also executed
func GetRecordExecute() bool {
	return viper.GetBool("record.execute")
}

// GetEditor returns the external editor used by the shell edit command
func GetEditor() string {
	if editor := viper.GetString("shell.editor"); editor != "" {
		return editor
	}
	if editor := os.Getenv("EDITOR"); editor != "" {
		return editor
	}
	return "vi"
}

// GetHistoryFile returns the shell line history file
func GetHistoryFile() string {
	return viper.GetString("shell.history_file")
}

// GetWatchDebounce returns how long follow mode waits for writes to settle
func GetWatchDebounce() time.Duration {
	return viper.GetDuration("watch.debounce")
}

// GetLogLevel returns the terminal log level
func GetLogLevel() string {
	return viper.GetString("log.level")
}

// GetLogFile returns the JSON log file, empty when disabled
func GetLogFile() string {
	return viper.GetString("log.file")
}

// GetEmbeddingsEnabled reports whether semantic search is enabled
func GetEmbeddingsEnabled() bool {
	return viper.GetBool("embeddings.enabled")
}

// GetEmbeddingModel returns the Ollama embedding model
func GetEmbeddingModel() string {
	return viper.GetString("embeddings.model")
}

// GetOllamaURL returns the Ollama API endpoint
func GetOllamaURL() string {
	return viper.GetString("embeddings.ollama_url")
}

// GetKeywordWeight returns the keyword share of the hybrid search score
func GetKeywordWeight() float64 {
	return viper.GetFloat64("search.keyword_weight")
}

// GetSemanticWeight returns the semantic share of the hybrid search score
func GetSemanticWeight() float64 {
	return viper.GetFloat64("search.semantic_weight")
}

// GetSearchWorkers returns how many embeddings are generated concurrently
func GetSearchWorkers() int {
	if n := viper.GetInt("search.workers"); n > 0 {
		return n
	}
	return 1
}
