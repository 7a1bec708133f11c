package storage_test

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheMichaelB/pwexport/internal/events"
	"github.com/TheMichaelB/pwexport/internal/storage"
)

func newStore(t *testing.T) (*storage.LocalStore, string) {
	t.Helper()
	tmpDir := t.TempDir()
	var buf bytes.Buffer
	logger := events.NewTestLogger(events.DebugLevel, "json", &buf)

	store, err := storage.NewLocalStore(tmpDir, logger)
	require.NoError(t, err)
	return store, tmpDir
}

func TestLocalStore_WriteRead(t *testing.T) {
	store, _ := newStore(t)

	written, err := store.Write("out/passwords.csv", []byte("name,url"), 0600)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(store.BaseDir(), "out", "passwords.csv"), written)

	data, err := store.Read("out/passwords.csv")
	require.NoError(t, err)
	assert.Equal(t, "name,url", string(data))

	if runtime.GOOS != "windows" {
		info, err := os.Stat(written)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	}

	// No temp files left behind
	entries, err := os.ReadDir(filepath.Dir(written))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestLocalStore_SizeLimit(t *testing.T) {
	store, _ := newStore(t)
	store.SetMaxFileSize(8)

	_, err := store.Write("small.csv", []byte("12345678"), 0600)
	assert.NoError(t, err)

	_, err = store.Write("large.csv", []byte("123456789"), 0600)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too large")
}

func TestConflictStrategies(t *testing.T) {
	t.Run("overwrite strategy", func(t *testing.T) {
		store, _ := newStore(t)
		store.SetConflictStrategy(storage.ConflictOverwrite)

		first, err := store.Write("a.csv", []byte("original"), 0600)
		require.NoError(t, err)
		second, err := store.Write("a.csv", []byte("new content"), 0600)
		require.NoError(t, err)
		assert.Equal(t, first, second)

		data, err := store.Read("a.csv")
		require.NoError(t, err)
		assert.Equal(t, "new content", string(data))
	})

	t.Run("rename strategy", func(t *testing.T) {
		store, _ := newStore(t)
		store.SetConflictStrategy(storage.ConflictRename)

		_, err := store.Write("a.csv", []byte("original"), 0600)
		require.NoError(t, err)
		renamed, err := store.Write("a.csv", []byte("second"), 0600)
		require.NoError(t, err)
		assert.Equal(t, "a (1).csv", filepath.Base(renamed))
		third, err := store.Write("a.csv", []byte("third"), 0600)
		require.NoError(t, err)
		assert.Equal(t, "a (2).csv", filepath.Base(third))

		data, err := store.Read("a.csv")
		require.NoError(t, err)
		assert.Equal(t, "original", string(data))
		data, err = store.Read("a (1).csv")
		require.NoError(t, err)
		assert.Equal(t, "second", string(data))
	})

	t.Run("error strategy", func(t *testing.T) {
		store, _ := newStore(t)
		store.SetConflictStrategy(storage.ConflictError)

		_, err := store.Write("a.csv", []byte("original"), 0600)
		require.NoError(t, err)
		_, err = store.Write("a.csv", []byte("second"), 0600)
		assert.ErrorIs(t, err, storage.ErrExists)
	})

	t.Run("skip strategy", func(t *testing.T) {
		store, _ := newStore(t)
		store.SetConflictStrategy(storage.ConflictSkip)

		first, err := store.Write("a.csv", []byte("original"), 0600)
		require.NoError(t, err)
		skipped, err := store.Write("a.csv", []byte("second"), 0600)
		assert.ErrorIs(t, err, storage.ErrSkipped)
		assert.Equal(t, first, skipped)

		data, err := store.Read("a.csv")
		require.NoError(t, err)
		assert.Equal(t, "original", string(data))
	})
}

func TestParseConflictStrategy(t *testing.T) {
	for _, name := range []string{"overwrite", "rename", "error", "skip"} {
		strategy, err := storage.ParseConflictStrategy(name)
		require.NoError(t, err)
		assert.Equal(t, name, strategy.String())
	}

	_, err := storage.ParseConflictStrategy("merge")
	assert.Error(t, err)
}

func TestPathSanitization(t *testing.T) {
	store, _ := newStore(t)

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{name: "normal path", path: "exports/test.csv"},
		{name: "path with dots", path: "exports/./test.csv"},
		{name: "dots inside a name", path: "my..export.csv"},
		{name: "absolute path", path: "/etc/passwords.csv"},
		{name: "parent directory traversal", path: "../etc/passwd", wantErr: true},
		{name: "embedded parent traversal", path: "notes/../../etc/passwd", wantErr: true},
		{name: "null bytes", path: "test\x00.csv", wantErr: true},
		{name: "empty", path: "", wantErr: true},
		{name: "name too long", path: strings.Repeat("a", 300) + ".csv", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.Write(tt.path, []byte("x"), 0600)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDeepPaths(t *testing.T) {
	store, _ := newStore(t)

	segment := strings.Repeat("d", 60)
	deep := strings.Join([]string{segment, segment, segment, segment, segment, "passwords.csv"}, "/")
	require.Greater(t, len(filepath.Join(store.BaseDir(), deep)), 260)

	written, err := store.Write(deep, []byte("x"), 0600)
	if runtime.GOOS == "windows" {
		assert.ErrorContains(t, err, "path too long")
		return
	}
	require.NoError(t, err)

	data, err := os.ReadFile(written)
	require.NoError(t, err)
	assert.Equal(t, "x", string(data))
}

func TestAtomicWrites(t *testing.T) {
	store, tmpDir := newStore(t)

	var wg sync.WaitGroup
	errs := make(chan error, 10)

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()

			s, err := storage.NewLocalStore(tmpDir, events.NewNopLogger())
			if err != nil {
				errs <- err
				return
			}
			if _, err := s.Write(fmt.Sprintf("concurrent-%d.csv", n), []byte(fmt.Sprintf("content-%d", n)), 0600); err != nil {
				errs <- err
			}
		}(i)
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("Write error: %v", err)
	}

	for i := 0; i < 10; i++ {
		data, err := store.Read(fmt.Sprintf("concurrent-%d.csv", i))
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("content-%d", i), string(data))
	}
}
