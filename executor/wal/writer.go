package wal

import (
	"os"
)

const defaultFileMode os.FileMode = 0o600

// Writer appends records to a single log file. It keeps no file handle between
// calls: every Append opens the file, writes one record and closes it again.
// Only one Writer (in one process) may append to a given file at a time.
type Writer struct {
	path string
	sync bool
	mode os.FileMode
}

type WriterOption func(*Writer)

// WithSync makes Append fsync the file before it returns.
func WithSync(sync bool) WriterOption {
	return func(w *Writer) {
		w.sync = sync
	}
}

// WithFileMode sets the permission bits used when Append creates the file.
func WithFileMode(mode os.FileMode) WriterOption {
	return func(w *Writer) {
		w.mode = mode
	}
}

func NewWriter(path string, opts ...WriterOption) *Writer {
	w := &Writer{path: path, mode: defaultFileMode}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *Writer) Path() string {
	return w.path
}

// Append writes payload as one complete record at the end of the file,
// creating the file if needed. On success the bytes have reached the OS file
// image (and stable storage too, when the Writer syncs). On failure the file may
// hold a torn tail, which the Scanner detects on the next recovery.
func (w *Writer) Append(payload []byte) (err error) {
	if len(payload) == 0 {
		return newError(InvalidRecord, "append", w.path, nil, "empty payload")
	}
	if len(payload) > MaxRecord {
		return newError(InvalidRecord, "append", w.path, nil,
			"payload of %d bytes exceeds the %d byte limit", len(payload), MaxRecord)
	}

	fp, err := os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, w.mode)
	if err != nil {
		return newError(OpenFailed, "append", w.path, err, "")
	}
	defer func() {
		if cerr := fp.Close(); cerr != nil && err == nil {
			err = newError(ShortIO, "append", w.path, cerr, "close")
		}
	}()

	frame := EncodeRecord(payload)
	n, err := fp.Write(frame)
	if err != nil {
		return newError(ShortIO, "append", w.path, err, "wrote %d of %d bytes", n, len(frame))
	}
	if n != len(frame) {
		return newError(ShortIO, "append", w.path, nil, "wrote %d of %d bytes", n, len(frame))
	}

	if w.sync {
		if err = fp.Sync(); err != nil {
			return newError(ShortIO, "append", w.path, err, "sync")
		}
	}
	return nil
}
