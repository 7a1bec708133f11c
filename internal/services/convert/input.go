package convert

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/TheMichaelB/pwexport/internal/models"
)

// DefaultFilename is suggested when nothing better is known.
const DefaultFilename = "passwords.csv"

// Input is a container read from a file or pasted as text.
type Input struct {
	Name     string
	MIMEType string
	Data     []byte
}

// FromFile reads a container from disk.
func FromFile(path string) (Input, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Input{}, fmt.Errorf("read input: %w", err)
	}

	return Input{
		Name:     filepath.Base(path),
		MIMEType: mime.TypeByExtension(filepath.Ext(path)),
		Data:     data,
	}, nil
}

// FromText wraps container text that did not come from a named file.
func FromText(text string) Input {
	return Input{
		MIMEType: "text/plain",
		Data:     []byte(text),
	}
}

// Metadata describes the input for source detection.
func (in Input) Metadata() models.FileMetadata {
	return models.FileMetadata{
		Name:     in.Name,
		MIMEType: in.MIMEType,
		Size:     int64(len(in.Data)),
	}
}

// decodeText strips a UTF-8 BOM or converts UTF-16 text with a BOM to
// UTF-8. Input without a BOM passes through.
func decodeText(data []byte) ([]byte, error) {
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	out, _, err := transform.Bytes(decoder, data)
	if err != nil {
		return nil, &models.FormatError{
			Stage:  "decode",
			Reason: "input text encoding",
			Err:    err,
		}
	}
	return out, nil
}

// SuggestFilename picks the output file name: the override (".csv" added
// when it has no extension), else the input stem, else DefaultFilename.
// Directory components are dropped.
func SuggestFilename(inputName, override string) string {
	if o := strings.TrimSpace(override); o != "" {
		base := baseName(o)
		if base != "" {
			if filepath.Ext(base) == "" {
				base += ".csv"
			}
			return base
		}
	}

	base := baseName(inputName)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" {
		return DefaultFilename
	}
	return stem + ".csv"
}

func baseName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	if name == "." || name == ".." {
		return ""
	}
	return name
}
