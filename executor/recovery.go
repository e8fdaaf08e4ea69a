package executor

import (
	"fmt"
	goio "io"
	"os"
	"path/filepath"
	"time"

	"code.cloudfoundry.org/bytefmt"
	"github.com/klauspost/compress/snappy"
	"github.com/pkg/errors"

	"github.com/alpacahq/walrecover/executor/wal"
	"github.com/alpacahq/walrecover/metrics"
	"github.com/alpacahq/walrecover/utils/io"
	"github.com/alpacahq/walrecover/utils/log"
)

/*
	NOTE: Recovery needs exclusive access to the log file. It is meant to run once
	at startup, before any Writer appends to the file again.
*/

const quarantineSuffix = ".torn.sz"

// Recoverer restores a log file to its last verifiably complete record.
type Recoverer struct {
	syncWrites    bool
	quarantine    bool
	quarantineDir string
	now           func() time.Time
}

type RecovererOption func(*Recoverer)

// WithSyncTruncate fsyncs the log after truncation and the quarantine file before it is published.
func WithSyncTruncate(sync bool) RecovererOption {
	return func(r *Recoverer) {
		r.syncWrites = sync
	}
}

// WithQuarantine keeps a snappy-compressed copy of every discarded tail in dir
// (next to the log when dir is empty) before the log is truncated.
func WithQuarantine(enabled bool, dir string) RecovererOption {
	return func(r *Recoverer) {
		r.quarantine = enabled
		r.quarantineDir = dir
	}
}

func NewRecoverer(opts ...RecovererOption) *Recoverer {
	r := &Recoverer{now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Scan reports the verified prefix of the log without modifying it.
func (r *Recoverer) Scan(path string) (wal.ScanResult, error) {
	start := time.Now()
	res, err := wal.ScanFile(path)
	metrics.ScanDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return res, errors.Wrapf(err, "scan %s", path)
	}
	metrics.RecoveredRecords.Set(float64(res.GoodRecords))
	return res, nil
}

// RecoverAndTruncate scans the log and, when it does not end on a verified
// record boundary, truncates it to ScanResult.LastGoodOffset. The returned
// result describes what the scan found before any truncation.
// Nothing is truncated when the scan could not read the whole file.
func (r *Recoverer) RecoverAndTruncate(path string) (wal.ScanResult, error) {
	res, err := r.Scan(path)
	if err != nil {
		metrics.RecoveriesTotal.WithLabelValues("failed").Inc()
		return res, err
	}

	if res.Clean {
		if trailing := res.Size - res.LastGoodOffset; trailing > 0 {
			log.Warn("[recover] %s ends with %d byte(s) too short for a length prefix; left in place",
				path, trailing)
		}
		log.Info("[recover] %s is clean: %d records, %s", path, res.GoodRecords,
			bytefmt.ByteSize(uint64(res.Size)))
		metrics.RecoveriesTotal.WithLabelValues("clean").Inc()
		metrics.ObserveFileSize(metrics.LogSizeBytes, path)
		return res, nil
	}

	log.Warn("[recover] %s: %v", path, res.Violation())

	if r.quarantine {
		qPath, err := r.quarantineTail(path, res)
		if err != nil {
			metrics.RecoveriesTotal.WithLabelValues("failed").Inc()
			return res, errors.Wrapf(err, "quarantine torn tail of %s, log left untouched", path)
		}
		log.Info("[recover] saved %s of torn tail to %s", bytefmt.ByteSize(uint64(res.TornBytes())), qPath)
	}

	if err = wal.Truncate(path, res.LastGoodOffset, wal.TruncateWithSync(r.syncWrites)); err != nil {
		log.Error("%s: [recover] truncate failed; %s may still have a torn tail: %v",
			io.GetCallerFileContext(0), path, err)
		metrics.RecoveriesTotal.WithLabelValues("failed").Inc()
		return res, errors.Wrapf(err, "recover %s", path)
	}

	log.Info("[recover] truncated tail of %s from size=%d to size=%d (%s discarded)",
		path, res.Size, res.LastGoodOffset, bytefmt.ByteSize(uint64(res.TornBytes())))
	metrics.RecoveriesTotal.WithLabelValues("truncated").Inc()
	metrics.TruncatedBytesTotal.Add(float64(res.TornBytes()))
	metrics.ObserveFileSize(metrics.LogSizeBytes, path)
	return res, nil
}

// quarantineTail copies [LastGoodOffset, Size) of the log into a compressed side
// file. The side file only becomes visible under its final name once complete.
func (r *Recoverer) quarantineTail(path string, res wal.ScanResult) (qPath string, err error) {
	dir := r.quarantineDir
	if dir == "" {
		dir = filepath.Dir(path)
	}
	qPath = filepath.Join(dir, fmt.Sprintf("%s.%d%s", filepath.Base(path), r.now().UnixNano(), quarantineSuffix))

	src, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer src.Close()

	tmp, err := os.CreateTemp(dir, filepath.Base(qPath)+".tmp*")
	if err != nil {
		return "", err
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	zw := snappy.NewBufferedWriter(tmp)
	n, err := goio.Copy(zw, goio.NewSectionReader(src, res.LastGoodOffset, res.TornBytes()))
	if err != nil {
		return "", err
	}
	if n != res.TornBytes() {
		return "", fmt.Errorf("copied %d of %d torn bytes", n, res.TornBytes())
	}
	if err = zw.Close(); err != nil {
		return "", err
	}
	if r.syncWrites {
		if err = tmp.Sync(); err != nil {
			return "", err
		}
	}
	if err = tmp.Close(); err != nil {
		return "", err
	}
	if err = wal.Move(tmp.Name(), qPath); err != nil {
		return "", err
	}
	return qPath, nil
}
