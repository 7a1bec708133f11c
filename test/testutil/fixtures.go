package testutil

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/TheMichaelB/pwexport/internal/crypto"
	"github.com/TheMichaelB/pwexport/internal/events"
	"github.com/TheMichaelB/pwexport/internal/models"
	"github.com/TheMichaelB/pwexport/internal/records"
)

// TestPassphrase unlocks every fixture sealed with SealFixture.
const TestPassphrase = "testpassword123"

// NewTestLogger creates a logger for testing.
func NewTestLogger() *events.Logger {
	var buf bytes.Buffer
	return events.NewTestLogger(events.DebugLevel, "json", &buf)
}

// DocumentHeader is the metadata preceding the sentinel line.
var DocumentHeader = []string{
	"PWEXPORT",
	"version=6",
}

// ColumnHeader is the first body line, skipped by the extractor.
const ColumnHeader = "id;url;kind;folder;login;email;phone;secret;extra"

// SampleEntries is a small vault with the awkward values CSV has to quote.
var SampleEntries = []models.Record{
	{Name: "Example", URL: "https://example.com", Username: "alice", Password: "p@ss", Note: ""},
	{Name: "O'Brien, Inc.", URL: "https://obrien.example", Username: "bob", Password: `He said "hi"`, Note: "line one\nline two"},
	{Name: "Bank", URL: "", Username: "carol", Password: "1234", Note: "pin only"},
	{Name: "Юникод", URL: "https://example.org/✓", Username: "dave", Password: "пароль", Note: "🌍"},
}

// Row builds a 33-column body row with the record in place.
func Row(rec models.Record) string {
	return RowWithColumns(rec, records.MinColumns)
}

// RowWithColumns builds a body row of n columns. Record fields whose
// column does not fit are dropped.
func RowWithColumns(rec models.Record, n int) string {
	columns := make([]string, n)
	for i := range columns {
		columns[i] = fmt.Sprintf("c%d", i)
	}

	place := func(i int, value string) {
		if i < n {
			columns[i] = base64.StdEncoding.EncodeToString([]byte(value))
		}
	}
	place(records.ColName, rec.Name)
	place(records.ColURL, rec.URL)
	place(records.ColUsername, rec.Username)
	place(records.ColPassword, rec.Password)
	place(records.ColNote, rec.Note)

	return strings.Join(columns, records.ColumnSeparator)
}

// RawRow builds a 33-column row from literal column values.
func RawRow(values map[int]string) string {
	columns := make([]string, records.MinColumns)
	for i, v := range values {
		columns[i] = v
	}
	return strings.Join(columns, records.ColumnSeparator)
}

// Document assembles a decrypted export around rows.
func Document(rows ...string) string {
	lines := append([]string{}, DocumentHeader...)
	lines = append(lines, records.Sentinel, ColumnHeader)
	lines = append(lines, rows...)
	return strings.Join(lines, "\n") + "\n"
}

// SampleDocument returns a document holding SampleEntries.
func SampleDocument() string {
	rows := make([]string, 0, len(SampleEntries))
	for _, rec := range SampleEntries {
		rows = append(rows, Row(rec))
	}
	return Document(rows...)
}

// SealFixture encrypts doc with TestPassphrase.
func SealFixture(t testing.TB, doc string) string {
	t.Helper()
	return SealWithPassphrase(t, doc, TestPassphrase)
}

// SealWithPassphrase encrypts doc into a base64 container.
func SealWithPassphrase(t testing.TB, doc, passphrase string) string {
	t.Helper()
	sealed, err := crypto.Seal([]byte(doc), passphrase)
	require.NoError(t, err)
	return sealed
}
