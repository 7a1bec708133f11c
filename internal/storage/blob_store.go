package storage

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// BlobStore persists converted output.
type BlobStore interface {
	// Write saves data to path and returns the absolute path written.
	Write(path string, data []byte, mode os.FileMode) (string, error)

	// Read retrieves file contents.
	Read(path string) ([]byte, error)

	// Exists checks if a file exists.
	Exists(path string) (bool, error)
}

// ConflictStrategy defines how to handle file conflicts.
type ConflictStrategy int

const (
	// ConflictOverwrite replaces existing files.
	ConflictOverwrite ConflictStrategy = iota

	// ConflictRename writes next to the existing file with a numbered suffix.
	ConflictRename

	// ConflictError returns an error on conflict.
	ConflictError

	// ConflictSkip leaves the existing file alone and returns ErrSkipped.
	ConflictSkip
)

var (
	// ErrExists is returned by ConflictError when the target exists.
	ErrExists = errors.New("file already exists")

	// ErrSkipped is returned by ConflictSkip when the target exists.
	ErrSkipped = errors.New("file exists, write skipped")
)

// ParseConflictStrategy maps a config value to a strategy.
func ParseConflictStrategy(s string) (ConflictStrategy, error) {
	switch strings.ToLower(s) {
	case "overwrite":
		return ConflictOverwrite, nil
	case "rename", "":
		return ConflictRename, nil
	case "error":
		return ConflictError, nil
	case "skip":
		return ConflictSkip, nil
	default:
		return ConflictRename, fmt.Errorf("unknown conflict strategy: %s", s)
	}
}

func (c ConflictStrategy) String() string {
	switch c {
	case ConflictOverwrite:
		return "overwrite"
	case ConflictRename:
		return "rename"
	case ConflictError:
		return "error"
	case ConflictSkip:
		return "skip"
	default:
		return "unknown"
	}
}
