package executor_test

import (
	"bytes"
	"errors"
	goio "io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/snappy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alpacahq/walrecover/executor"
	"github.com/alpacahq/walrecover/executor/wal"
	"github.com/alpacahq/walrecover/utils/test"
)

func writeRecords(t *testing.T, path string, n, payloadSize int) {
	t.Helper()
	w := executor.NewLogWriter(path, false)
	for i := 0; i < n; i++ {
		require.Nil(t, w.Append(test.DeterministicPayload(i, payloadSize)))
	}
}

func TestRecoverAndTruncate_TornTail(t *testing.T) {
	t.Parallel()
	// --- given ---
	path := filepath.Join(t.TempDir(), "test.wal")
	writeRecords(t, path, 3, 10)
	require.Equal(t, int64(54), test.FileSize(path))
	_, newSize, err := test.CorruptTail(path, 8)
	require.Nil(t, err)
	require.Equal(t, int64(46), newSize)
	r := executor.NewRecoverer()

	// --- when ---
	res, err := r.RecoverAndTruncate(path)

	// --- then ---
	require.Nil(t, err)
	assert.Equal(t, int64(2), res.GoodRecords)
	assert.Equal(t, int64(36), res.LastGoodOffset)
	assert.False(t, res.Clean)
	assert.Equal(t, int64(36), test.FileSize(path))

	// a second run finds nothing left to do
	again, err := r.RecoverAndTruncate(path)
	require.Nil(t, err)
	assert.Equal(t, int64(2), again.GoodRecords)
	assert.Equal(t, int64(36), again.LastGoodOffset)
	assert.True(t, again.Clean)
	assert.Equal(t, int64(36), test.FileSize(path))
}

func TestRecoverAndTruncate_Idempotent(t *testing.T) {
	t.Parallel()
	tests := map[string]struct {
		corrupt func(t *testing.T, path string)
		expGood int64
		expOff  int64
		expSize int64
	}{
		"ok/ untouched log": {
			corrupt: func(t *testing.T, path string) {},
			expGood: 5,
			expOff:  5 * 20,
			expSize: 5 * 20,
		},
		"ok/ cut inside the length prefix of the last record": {
			corrupt: func(t *testing.T, path string) {
				// 2 bytes of the last record remain: not even a length prefix,
				// so the scan ends cleanly and nothing is truncated
				_, _, err := test.CorruptTail(path, 18)
				require.Nil(t, err)
			},
			expGood: 4,
			expOff:  4 * 20,
			expSize: 4*20 + 2,
		},
		"ok/ bit flip in the third payload": {
			corrupt: func(t *testing.T, path string) {
				require.Nil(t, test.FlipBit(path, 2*20+4+5, 3))
			},
			expGood: 2,
			expOff:  2 * 20,
			expSize: 2 * 20,
		},
		"ok/ garbage appended after the last record": {
			corrupt: func(t *testing.T, path string) {
				require.Nil(t, test.WriteRaw(path, 100, []byte{0xff, 0xff, 0xff, 0xff, 0x01}))
			},
			expGood: 5,
			expOff:  5 * 20,
			expSize: 5 * 20,
		},
	}
	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			path := filepath.Join(t.TempDir(), "test.wal")
			writeRecords(t, path, 5, 12)
			tt.corrupt(t, path)
			r := executor.NewRecoverer()

			first, err := r.RecoverAndTruncate(path)
			require.Nil(t, err)
			second, err := r.RecoverAndTruncate(path)
			require.Nil(t, err)

			assert.Equal(t, tt.expGood, first.GoodRecords)
			assert.Equal(t, tt.expOff, first.LastGoodOffset)
			assert.Equal(t, tt.expGood, second.GoodRecords)
			assert.Equal(t, tt.expOff, second.LastGoodOffset)
			assert.True(t, second.Clean)
			assert.Equal(t, tt.expSize, test.FileSize(path))

			third, err := r.RecoverAndTruncate(path)
			require.Nil(t, err)
			assert.Equal(t, second, third)
		})
	}
}

func TestRecoverAndTruncate_AppendsResumeAfterRecovery(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "test.wal")
	writeRecords(t, path, 3, 10)
	_, _, err := test.CorruptTail(path, 8)
	require.Nil(t, err)

	_, err = executor.NewRecoverer().RecoverAndTruncate(path)
	require.Nil(t, err)
	require.Nil(t, executor.NewLogWriter(path, true).Append([]byte("after the crash")))

	res, err := wal.ScanFile(path)
	require.Nil(t, err)
	assert.Equal(t, int64(3), res.GoodRecords)
	assert.True(t, res.Clean)
}

func TestRecoverAndTruncate_Quarantine(t *testing.T) {
	t.Parallel()
	// --- given ---
	dir := t.TempDir()
	qDir := filepath.Join(dir, "torn")
	require.Nil(t, os.Mkdir(qDir, 0o700))
	path := filepath.Join(dir, "test.wal")
	writeRecords(t, path, 3, 10)
	_, _, err := test.CorruptTail(path, 8)
	require.Nil(t, err)
	original, err := os.ReadFile(path)
	require.Nil(t, err)
	r := executor.NewRecoverer(executor.WithQuarantine(true, qDir), executor.WithSyncTruncate(true))

	// --- when ---
	res, err := r.RecoverAndTruncate(path)

	// --- then ---
	require.Nil(t, err)
	assert.Equal(t, int64(36), test.FileSize(path))

	matches, err := filepath.Glob(filepath.Join(qDir, "test.wal.*.torn.sz"))
	require.Nil(t, err)
	require.Len(t, matches, 1)
	fp, err := os.Open(matches[0])
	require.Nil(t, err)
	defer fp.Close()
	torn, err := goio.ReadAll(snappy.NewReader(fp))
	require.Nil(t, err)
	assert.Equal(t, original[res.LastGoodOffset:], torn)
	assert.Equal(t, int64(10), res.TornBytes())

	// no temporary file is left behind
	entries, err := os.ReadDir(qDir)
	require.Nil(t, err)
	assert.Len(t, entries, 1)
}

func TestRecoverAndTruncate_QuarantineFailureLeavesTheLogUntouched(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "test.wal")
	writeRecords(t, path, 3, 10)
	_, _, err := test.CorruptTail(path, 8)
	require.Nil(t, err)
	before, err := os.ReadFile(path)
	require.Nil(t, err)
	r := executor.NewRecoverer(executor.WithQuarantine(true, filepath.Join(dir, "missing")))

	_, err = r.RecoverAndTruncate(path)

	require.NotNil(t, err)
	after, err := os.ReadFile(path)
	require.Nil(t, err)
	assert.True(t, bytes.Equal(before, after))
}

func TestRecoverAndTruncate_MissingFile(t *testing.T) {
	t.Parallel()
	_, err := executor.NewRecoverer().RecoverAndTruncate(filepath.Join(t.TempDir(), "nope.wal"))

	require.NotNil(t, err)
	assert.Equal(t, wal.OpenFailed, wal.KindOf(err))
	assert.True(t, errors.Is(err, wal.ErrOpenFailed))
}

func TestScanDoesNotModify(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "test.wal")
	writeRecords(t, path, 3, 10)
	_, _, err := test.CorruptTail(path, 8)
	require.Nil(t, err)

	res, err := executor.NewRecoverer().Scan(path)

	require.Nil(t, err)
	assert.False(t, res.Clean)
	assert.Equal(t, int64(46), test.FileSize(path))
}

func TestLogWriter_RejectsEmptyPayload(t *testing.T) {
	t.Parallel()
	w := executor.NewLogWriter(filepath.Join(t.TempDir(), "test.wal"), false)

	err := w.Append(nil)

	assert.Equal(t, wal.InvalidRecord, wal.KindOf(err))
	assert.Equal(t, int64(-1), test.FileSize(w.Path()))
}
