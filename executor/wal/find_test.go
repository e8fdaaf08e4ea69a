package wal_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alpacahq/walrecover/executor/wal"
)

func TestFinder_Find(t *testing.T) {
	t.Parallel()
	// --- given ---
	dir := t.TempDir()
	for _, name := range []string{"b.wal", "a.wal", "notes.txt", "c.wal.torn.sz"} {
		require.Nil(t, os.WriteFile(filepath.Join(dir, name), []byte{}, 0o600))
	}
	require.Nil(t, os.Mkdir(filepath.Join(dir, "dir.wal"), 0o700))

	tests := map[string]struct {
		pattern  string
		expFiles []string
	}{
		"ok/ default pattern": {
			pattern:  "",
			expFiles: []string{"a.wal", "b.wal"},
		},
		"ok/ custom pattern": {
			pattern:  "*.txt",
			expFiles: []string{"notes.txt"},
		},
		"ok/ nothing matches": {
			pattern:  "*.log",
			expFiles: nil,
		},
	}
	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			finder, err := wal.NewFinder(os.ReadDir, tt.pattern)
			require.Nil(t, err)

			// --- when ---
			files, err := finder.Find(dir)

			// --- then ---
			require.Nil(t, err)
			var expected []string
			for _, f := range tt.expFiles {
				expected = append(expected, filepath.Join(dir, f))
			}
			assert.Equal(t, expected, files)
		})
	}
}

func TestFinder_Errors(t *testing.T) {
	t.Parallel()
	_, err := wal.NewFinder(os.ReadDir, "[")
	assert.NotNil(t, err)

	finder, err := wal.NewFinder(os.ReadDir, "*.wal")
	require.Nil(t, err)
	_, err = finder.Find(filepath.Join(t.TempDir(), "missing"))
	assert.NotNil(t, err)
}

func TestMove(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	dst := filepath.Join(dir, "dst")
	require.Nil(t, os.WriteFile(src, []byte("x"), 0o600))
	require.Nil(t, os.WriteFile(dst, []byte("y"), 0o600))

	// an existing destination is never replaced
	assert.NotNil(t, wal.Move(src, dst))
	data, err := os.ReadFile(dst)
	require.Nil(t, err)
	assert.Equal(t, []byte("y"), data)

	require.Nil(t, os.Remove(dst))
	require.Nil(t, wal.Move(src, dst))
	_, err = os.Stat(src)
	assert.True(t, os.IsNotExist(err))
}
