package records

import (
	"io"
	"strings"

	"github.com/TheMichaelB/pwexport/internal/models"
)

// Header is the fixed first line of the output.
const Header = "name,url,username,password,note"

// Table is the converted output. Build it once and treat it as read-only.
type Table struct {
	Records []models.Record
}

// NewTable copies recs into a table.
func NewTable(recs []models.Record) Table {
	return Table{Records: append([]models.Record(nil), recs...)}
}

// Len returns the number of records.
func (t Table) Len() int {
	return len(t.Records)
}

// CSV renders the table: header, then one line per record, joined by
// newlines with no trailing newline.
func (t Table) CSV() string {
	var sb strings.Builder
	_, _ = t.WriteTo(&sb)
	return sb.String()
}

// WriteTo writes the CSV rendering to w.
func (t Table) WriteTo(w io.Writer) (int64, error) {
	var written int64

	n, err := io.WriteString(w, Header)
	written += int64(n)
	if err != nil {
		return written, err
	}

	for _, rec := range t.Records {
		fields := rec.Fields()
		escaped := make([]string, len(fields))
		for i, f := range fields {
			escaped[i] = EscapeField(f)
		}

		n, err = io.WriteString(w, "\n"+strings.Join(escaped, ","))
		written += int64(n)
		if err != nil {
			return written, err
		}
	}

	return written, nil
}

// EscapeField quotes a value that contains a comma, quote or line break,
// doubling inner quotes. Anything else is returned unchanged.
func EscapeField(s string) string {
	if !strings.ContainsAny(s, ",\"\r\n") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
