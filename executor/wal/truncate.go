package wal

import (
	"os"
)

type TruncateOption func(*truncateOptions)

type truncateOptions struct {
	sync bool
}

// TruncateWithSync fsyncs the file after it was resized.
func TruncateWithSync(sync bool) TruncateOption {
	return func(o *truncateOptions) {
		o.sync = sync
	}
}

// Truncate cuts the file at path down to exactly newSize bytes. It never grows
// a file and does nothing when the file already has newSize bytes. On failure
// the file is left as it was and a TruncateFailed error is returned.
func Truncate(path string, newSize int64, opts ...TruncateOption) error {
	var o truncateOptions
	for _, opt := range opts {
		opt(&o)
	}
	if newSize < 0 {
		return newError(TruncateFailed, "truncate", path, nil, "negative size %d", newSize)
	}

	fp, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return newError(TruncateFailed, "truncate", path, err, "open")
	}
	defer fp.Close()

	fi, err := fp.Stat()
	if err != nil {
		return newError(TruncateFailed, "truncate", path, err, "stat")
	}
	switch {
	case fi.Size() == newSize:
		return nil
	case fi.Size() < newSize:
		return newError(TruncateFailed, "truncate", path, nil,
			"refusing to grow file from %d to %d bytes", fi.Size(), newSize)
	}

	if err = fp.Truncate(newSize); err != nil {
		return newError(TruncateFailed, "truncate", path, err, "resize to %d bytes", newSize)
	}
	if o.sync {
		if err = fp.Sync(); err != nil {
			return newError(TruncateFailed, "truncate", path, err, "sync")
		}
	}
	return nil
}
