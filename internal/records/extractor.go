// Package records parses decrypted export documents into password records
// and renders them as CSV.
package records

import (
	"encoding/base64"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/TheMichaelB/pwexport/internal/models"
)

// Format constants of the export document. The column positions are
// fixed by the exporting app.
const (
	Sentinel        = "[ENTRIES]"
	SentinelLine    = 2
	ColumnSeparator = ";"
	MinColumns      = 33

	ColName     = 17
	ColURL      = 1
	ColUsername = 4
	ColPassword = 7
	ColNote     = 31
)

// Stats counts what happened to each body row during extraction.
type Stats struct {
	Rows           int `json:"rows"`
	Blank          int `json:"blank"`
	Short          int `json:"short"`
	Empty          int `json:"empty"`
	Kept           int `json:"kept"`
	FieldFallbacks int `json:"field_fallbacks"`
}

// Extract parses a decrypted document into records in file order.
func Extract(text string, includeEmpty bool) ([]models.Record, error) {
	recs, _, err := ExtractWithStats(text, includeEmpty)
	return recs, err
}

// ExtractWithStats is Extract plus per-row counters.
func ExtractWithStats(text string, includeEmpty bool) ([]models.Record, Stats, error) {
	var stats Stats

	lines := strings.Split(text, "\n")
	if len(lines) <= SentinelLine {
		return nil, stats, &models.FormatError{
			Stage:  "sentinel",
			Reason: fmt.Sprintf("document has %d lines, expected at least %d", len(lines), SentinelLine+1),
			Err:    models.ErrMissingSentinel,
		}
	}

	if strings.TrimSpace(lines[SentinelLine]) != Sentinel {
		return nil, stats, &models.FormatError{
			Stage:  "sentinel",
			Reason: fmt.Sprintf("line %d is not %q (wrong passphrase?)", SentinelLine+1, Sentinel),
			Err:    models.ErrMissingSentinel,
		}
	}

	parts := strings.SplitN(text, Sentinel, 2)
	if len(parts) < 2 {
		return nil, stats, &models.FormatError{
			Stage:  "body",
			Reason: "no body after sentinel",
			Err:    models.ErrMissingBody,
		}
	}

	body := strings.Split(strings.TrimSpace(parts[1]), "\n")

	var recs []models.Record
	// The first body line is a column header.
	for _, line := range body[1:] {
		stats.Rows++

		line = strings.TrimSpace(line)
		if line == "" {
			stats.Blank++
			continue
		}

		columns := strings.Split(line, ColumnSeparator)
		if len(columns) < MinColumns {
			stats.Short++
			continue
		}

		rec, fallbacks := recordFromColumns(columns)
		stats.FieldFallbacks += fallbacks

		if !includeEmpty && rec.IsEmpty() {
			stats.Empty++
			continue
		}

		stats.Kept++
		recs = append(recs, rec)
	}

	return recs, stats, nil
}

func recordFromColumns(columns []string) (models.Record, int) {
	fallbacks := 0
	field := func(i int) string {
		if i >= len(columns) {
			return ""
		}
		value, ok := DecodeField(columns[i])
		if !ok {
			fallbacks++
		}
		return value
	}

	rec := models.Record{
		Name:     field(ColName),
		URL:      field(ColURL),
		Username: field(ColUsername),
		Password: field(ColPassword),
		Note:     field(ColNote),
	}
	return rec, fallbacks
}

// DecodeField base64-decodes a column value. When the value is not base64
// or does not decode to UTF-8 text the raw value comes back with ok false.
func DecodeField(raw string) (string, bool) {
	if raw == "" {
		return "", true
	}

	decoded, err := base64.StdEncoding.DecodeString(raw)
	if err != nil || !utf8.Valid(decoded) {
		return raw, false
	}
	return string(decoded), true
}
