package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/TheMichaelB/pwexport/internal/models"
)

// Config holds all application configuration.
type Config struct {
	// Where converted files are saved
	Output OutputConfig `mapstructure:"output" json:"output"`

	// Conversion behavior
	Convert ConvertConfig `mapstructure:"convert" json:"convert"`

	// Logging
	Log LogConfig `mapstructure:"log" json:"log"`
}

// OutputConfig for persisting converted files.
type OutputConfig struct {
	Dir         string `mapstructure:"dir" json:"dir"`                   // Base directory for saved CSV files
	AutoPersist bool   `mapstructure:"auto_persist" json:"auto_persist"` // Save without --save
	Conflict    string `mapstructure:"conflict" json:"conflict"`         // overwrite, rename, error, skip
	MaxFileSize int64  `mapstructure:"max_file_size" json:"max_file_size"`
}

// ConvertConfig for the decrypt-and-extract pipeline.
type ConvertConfig struct {
	IncludeEmptyFields bool  `mapstructure:"include_empty_fields" json:"include_empty_fields"`
	MaxInputSize       int64 `mapstructure:"max_input_size" json:"max_input_size"` // Bytes
}

// LogConfig for logging behavior.
type LogConfig struct {
	Level  string `mapstructure:"level" json:"level"`   // debug, info, warn, error
	Format string `mapstructure:"format" json:"format"` // text, json
	File   string `mapstructure:"file" json:"file"`     // Log file path (empty = stderr)
	Color  bool   `mapstructure:"color" json:"color"`   // Enable colored output
}

// Conflict strategies accepted in output.conflict.
const (
	ConflictOverwrite = "overwrite"
	ConflictRename    = "rename"
	ConflictError     = "error"
	ConflictSkip      = "skip"
)

// DefaultConfig returns config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Output: OutputConfig{
			Dir:         ".",
			AutoPersist: false,
			Conflict:    ConflictRename,
			MaxFileSize: 64 * 1024 * 1024, // 64MB
		},
		Convert: ConvertConfig{
			IncludeEmptyFields: false,
			MaxInputSize:       64 * 1024 * 1024,
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
			File:   "",
			Color:  true,
		},
	}
}

// Validate checks configuration validity.
func (c *Config) Validate() error {
	if c.Output.Dir == "" {
		return fmt.Errorf("%w: output.dir is required", models.ErrInvalidConfig)
	}

	if c.Output.MaxFileSize <= 0 {
		return fmt.Errorf("%w: output.max_file_size must be positive", models.ErrInvalidConfig)
	}

	if c.Convert.MaxInputSize <= 0 {
		return fmt.Errorf("%w: convert.max_input_size must be positive", models.ErrInvalidConfig)
	}

	validConflicts := map[string]bool{
		ConflictOverwrite: true, ConflictRename: true, ConflictError: true, ConflictSkip: true,
	}
	if !validConflicts[c.Output.Conflict] {
		return fmt.Errorf("%w: invalid output conflict strategy: %s", models.ErrInvalidConfig, c.Output.Conflict)
	}

	validLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLevels[c.Log.Level] {
		return fmt.Errorf("%w: invalid log level: %s", models.ErrInvalidConfig, c.Log.Level)
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[c.Log.Format] {
		return fmt.Errorf("%w: invalid log format: %s", models.ErrInvalidConfig, c.Log.Format)
	}

	return nil
}

// EnsureDirectories creates required directories.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Output.Dir}

	if c.Log.File != "" {
		dirs = append(dirs, filepath.Dir(c.Log.File))
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	return nil
}
