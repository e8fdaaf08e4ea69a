package wal_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alpacahq/walrecover/executor/wal"
	"github.com/alpacahq/walrecover/utils/test"
)

func TestWriterAppend(t *testing.T) {
	t.Parallel()
	// --- given ---
	path := filepath.Join(t.TempDir(), "test.wal")
	w := wal.NewWriter(path)

	// --- when ---
	require.Nil(t, w.Append([]byte("hello")))
	require.Nil(t, w.Append([]byte("world!")))

	// --- then ---
	data, err := os.ReadFile(path)
	require.Nil(t, err)
	expected := append(wal.EncodeRecord([]byte("hello")), wal.EncodeRecord([]byte("world!"))...)
	assert.Equal(t, expected, data)

	fi, err := os.Stat(path)
	require.Nil(t, err)
	assert.Equal(t, os.FileMode(0o600), fi.Mode().Perm())
}

func TestWriterAppend_Sync(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "sync.wal")
	w := wal.NewWriter(path, wal.WithSync(true), wal.WithFileMode(0o644))

	for i := 0; i < 3; i++ {
		require.Nil(t, w.Append(test.DeterministicPayload(i, 10)))
	}

	assert.Equal(t, int64(54), test.FileSize(path))
	assert.Equal(t, path, w.Path())
}

func TestWriterAppend_Errors(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	tests := map[string]struct {
		path    string
		payload []byte
		expKind wal.ErrorKind
		expIs   error
	}{
		"ng/ empty payload is refused": {
			path:    filepath.Join(dir, "empty.wal"),
			payload: []byte{},
			expKind: wal.InvalidRecord,
			expIs:   wal.ErrInvalidRecord,
		},
		"ng/ payload above the record limit is refused": {
			path:    filepath.Join(dir, "big.wal"),
			payload: make([]byte, wal.MaxRecord+1),
			expKind: wal.InvalidRecord,
			expIs:   wal.ErrInvalidRecord,
		},
		"ng/ parent directory does not exist": {
			path:    filepath.Join(dir, "missing", "x.wal"),
			payload: []byte("x"),
			expKind: wal.OpenFailed,
			expIs:   wal.ErrOpenFailed,
		},
	}
	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			err := wal.NewWriter(tt.path).Append(tt.payload)

			require.NotNil(t, err)
			assert.Equal(t, tt.expKind, wal.KindOf(err))
			assert.True(t, errors.Is(err, tt.expIs))
			assert.False(t, errors.Is(err, wal.ErrShortIO))

			// nothing must have been written
			_, statErr := os.Stat(tt.path)
			assert.True(t, os.IsNotExist(statErr))
		})
	}
}

func TestWriterAppend_CreatesFileOnFirstAppend(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "new.wal")
	_, err := os.Stat(path)
	require.True(t, os.IsNotExist(err))

	require.Nil(t, wal.NewWriter(path).Append([]byte{1}))

	assert.Equal(t, int64(1+wal.FrameOverhead), test.FileSize(path))
}
