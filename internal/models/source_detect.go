package models

import (
	"encoding/base64"
	"path/filepath"
	"strings"
)

// Container layout constants shared by detection and the unwrapper.
const (
	ContainerSaltSize = 20
	ContainerIVSize   = 16
	ContainerHeader   = ContainerSaltSize + ContainerIVSize
	ContainerBlock    = 16
)

// Extensions the exporting app uses.
var sourceExtensions = map[string]bool{
	".pwexport": true,
	".pwx":      true,
}

var sourceMIMETypes = map[string]bool{
	"application/x-pwexport": true,
}

// FileMetadata describes a candidate input file. Size 0 means unknown.
type FileMetadata struct {
	Name     string
	MIMEType string
	Size     int64
}

// IsLikelySourceFile guesses from name and MIME type whether a file is an
// export container. The answer is advisory only.
func IsLikelySourceFile(meta FileMetadata) bool {
	ext := strings.ToLower(filepath.Ext(meta.Name))
	if sourceExtensions[ext] {
		return true
	}

	mime := strings.ToLower(strings.TrimSpace(meta.MIMEType))
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}
	return sourceMIMETypes[mime]
}

// LooksLikeContainer sniffs content: base64 text whose decoded length fits
// salt + IV + whole cipher blocks.
func LooksLikeContainer(content []byte) bool {
	if len(content) == 0 {
		return false
	}

	payload := 0
	for _, b := range content {
		switch {
		case b == ' ' || b == '\t' || b == '\n' || b == '\r':
			continue
		case !isBase64Byte(b):
			return false
		case b != '=':
			payload++
		}
	}

	decoded := base64.RawStdEncoding.DecodedLen(payload)
	if decoded <= ContainerHeader {
		return false
	}
	return (decoded-ContainerHeader)%ContainerBlock == 0
}

func isBase64Byte(b byte) bool {
	return (b >= 'A' && b <= 'Z') ||
		(b >= 'a' && b <= 'z') ||
		(b >= '0' && b <= '9') ||
		b == '+' || b == '/' || b == '='
}
