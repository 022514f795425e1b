package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// File is the on-disk layout of config.toml
type File struct {
	Macros struct {
		Folder string `toml:"folder"`
		Prefix string `toml:"prefix"`
	} `toml:"macros"`
	Playback struct {
		Engine string `toml:"engine"`
	} `toml:"playback"`
	Record struct {
		Execute bool `toml:"execute"`
	} `toml:"record"`
	Log struct {
		Level string `toml:"level"`
		File  string `toml:"file,omitempty"`
	} `toml:"log"`
	Embeddings struct {
		Enabled   bool   `toml:"enabled"`
		Model     string `toml:"model"`
		OllamaURL string `toml:"ollama_url"`
	} `toml:"embeddings"`
}

// Current captures the effective configuration as a File
func Current() File {
	var f File
	f.Macros.Folder = GetMacroFolder()
	f.Macros.Prefix = GetMacroPrefix()
	f.Playback.Engine = string(GetEngine())
	f.Record.Execute = GetRecordExecute()
	f.Log.Level = GetLogLevel()
	f.Log.File = GetLogFile()
	f.Embeddings.Enabled = GetEmbeddingsEnabled()
	f.Embeddings.Model = GetEmbeddingModel()
	f.Embeddings.OllamaURL = GetOllamaURL()
	return f
}

// Load decodes a config file
func Load(path string) (File, error) {
	var f File
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return File{}, fmt.Errorf("failed to read config: %w", err)
	}
	return f, nil
}

// Save encodes f to path, creating the parent directory
func Save(path string, f File) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(f); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
