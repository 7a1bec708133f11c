package records_test

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheMichaelB/pwexport/internal/models"
	"github.com/TheMichaelB/pwexport/internal/records"
	"github.com/TheMichaelB/pwexport/test/testutil"
)

func b64(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

func TestExtract_SampleDocument(t *testing.T) {
	recs, err := records.Extract(testutil.SampleDocument(), false)
	require.NoError(t, err)
	assert.Equal(t, testutil.SampleEntries, recs)
}

func TestExtract_ColumnPositions(t *testing.T) {
	row := testutil.RawRow(map[int]string{
		records.ColName:     b64("name"),
		records.ColURL:      b64("url"),
		records.ColUsername: b64("user"),
		records.ColPassword: b64("pass"),
		records.ColNote:     b64("note"),
		0:                   b64("ignored id"),
		32:                  b64("ignored trailer"),
	})

	recs, err := records.Extract(testutil.Document(row), false)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, models.Record{
		Name:     "name",
		URL:      "url",
		Username: "user",
		Password: "pass",
		Note:     "note",
	}, recs[0])
}

func TestExtract_ColumnCountBoundary(t *testing.T) {
	rec := models.Record{Name: "n", URL: "u", Username: "x", Password: "p", Note: "z"}

	t.Run("32 columns discarded", func(t *testing.T) {
		recs, stats, err := records.ExtractWithStats(testutil.Document(testutil.RowWithColumns(rec, 32)), false)
		require.NoError(t, err)
		assert.Empty(t, recs)
		assert.Equal(t, 1, stats.Short)
	})

	t.Run("33 columns processed", func(t *testing.T) {
		recs, err := records.Extract(testutil.Document(testutil.RowWithColumns(rec, 33)), false)
		require.NoError(t, err)
		require.Len(t, recs, 1)
		assert.Equal(t, rec, recs[0])
	})

	t.Run("wider rows processed", func(t *testing.T) {
		recs, err := records.Extract(testutil.Document(testutil.RowWithColumns(rec, 60)), false)
		require.NoError(t, err)
		require.Len(t, recs, 1)
		assert.Equal(t, rec, recs[0])
	})
}

func TestExtract_EmptyRows(t *testing.T) {
	blank := testutil.RawRow(map[int]string{
		records.ColName:     b64("   "),
		records.ColPassword: b64("\t"),
		5:                   b64("not a target column"),
	})
	doc := testutil.Document(blank, testutil.Row(models.Record{Name: "kept"}))

	t.Run("dropped by default", func(t *testing.T) {
		recs, stats, err := records.ExtractWithStats(doc, false)
		require.NoError(t, err)
		require.Len(t, recs, 1)
		assert.Equal(t, "kept", recs[0].Name)
		assert.Equal(t, 1, stats.Empty)
		assert.Equal(t, 1, stats.Kept)
	})

	t.Run("retained when requested", func(t *testing.T) {
		recs, err := records.Extract(doc, true)
		require.NoError(t, err)
		require.Len(t, recs, 2)
		assert.Equal(t, models.Record{Name: "   ", Password: "\t"}, recs[0])
		assert.Equal(t, "kept", recs[1].Name)
	})
}

func TestExtract_FieldFallback(t *testing.T) {
	row := testutil.RawRow(map[int]string{
		records.ColName:     "plain name!",
		records.ColURL:      b64("https://example.com"),
		records.ColUsername: base64.StdEncoding.EncodeToString([]byte{0xff, 0xfe, 0xfd}),
		records.ColPassword: b64("secret"),
	})

	recs, stats, err := records.ExtractWithStats(testutil.Document(row), false)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "plain name!", recs[0].Name)
	assert.Equal(t, "https://example.com", recs[0].URL)
	assert.Equal(t, "//79", recs[0].Username)
	assert.Equal(t, "secret", recs[0].Password)
	assert.Equal(t, 2, stats.FieldFallbacks)
}

func TestExtract_SkipsBlankAndShortLines(t *testing.T) {
	doc := testutil.Document(
		"",
		"   ",
		"too;few;columns",
		testutil.Row(models.Record{Name: "first"}),
		testutil.Row(models.Record{Name: "second"}),
	)

	recs, stats, err := records.ExtractWithStats(doc, false)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "first", recs[0].Name)
	assert.Equal(t, "second", recs[1].Name)
	assert.Equal(t, 2, stats.Blank)
	assert.Equal(t, 1, stats.Short)
}

func TestExtract_CRLF(t *testing.T) {
	doc := strings.ReplaceAll(testutil.SampleDocument(), "\n", "\r\n")

	recs, err := records.Extract(doc, false)
	require.NoError(t, err)
	assert.Equal(t, testutil.SampleEntries, recs)
}

func TestExtract_HeaderOnly(t *testing.T) {
	recs, err := records.Extract(testutil.Document(), false)
	require.NoError(t, err)
	assert.Empty(t, recs)

	recs, err = records.Extract("a\nb\n"+records.Sentinel, false)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestExtract_StructureErrors(t *testing.T) {
	tests := []struct {
		name  string
		doc   string
		cause error
	}{
		{
			name:  "too few lines",
			doc:   "PWEXPORT\n" + records.Sentinel,
			cause: models.ErrMissingSentinel,
		},
		{
			name:  "sentinel on line index 3",
			doc:   "PWEXPORT\nversion=6\nextra\n" + records.Sentinel + "\n" + testutil.ColumnHeader + "\n" + testutil.Row(models.Record{Name: "x"}),
			cause: models.ErrMissingSentinel,
		},
		{
			name:  "garbage",
			doc:   "\x8f\x01garbage\n\x00\x00\n\xff\xfe\n",
			cause: models.ErrMissingSentinel,
		},
		{
			name:  "empty",
			doc:   "",
			cause: models.ErrMissingSentinel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs, err := records.Extract(tt.doc, false)
			require.Error(t, err)
			assert.Nil(t, recs)

			var formatErr *models.FormatError
			require.True(t, errors.As(err, &formatErr))
			assert.ErrorIs(t, err, tt.cause)
			assert.True(t, models.IsWrongPassphrase(err))
		})
	}
}

func TestExtract_SentinelLineTrimmed(t *testing.T) {
	doc := "PWEXPORT\nversion=6\n  " + records.Sentinel + "\t\n" + testutil.ColumnHeader + "\n" + testutil.Row(models.Record{Name: "x"})

	recs, err := records.Extract(doc, false)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "x", recs[0].Name)
}

func TestDecodeField(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		want   string
		wantOK bool
	}{
		{name: "empty", raw: "", want: "", wantOK: true},
		{name: "ascii", raw: b64("hello"), want: "hello", wantOK: true},
		{name: "utf8", raw: b64("héllo wörld"), want: "héllo wörld", wantOK: true},
		{name: "not base64", raw: "hello world", want: "hello world", wantOK: false},
		{name: "bad padding", raw: "aGVsbG8", want: "aGVsbG8", wantOK: false},
		{name: "binary payload", raw: base64.StdEncoding.EncodeToString([]byte{0xc3, 0x28}), want: "wyg=", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := records.DecodeField(tt.raw)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}
