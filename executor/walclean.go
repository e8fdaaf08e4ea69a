package executor

import (
	"sync"

	"github.com/alpacahq/walrecover/executor/wal"
	"github.com/alpacahq/walrecover/utils/log"
	"github.com/alpacahq/walrecover/utils/pool"
)

// FileReport is the outcome of recovering one file of a directory.
type FileReport struct {
	Path   string
	Result wal.ScanResult
	Err    error
}

// DirRecoverer recovers every log file found directly under a directory.
// Distinct files may be recovered in parallel; each file is still handled by
// a single goroutine.
type DirRecoverer struct {
	finder      *wal.Finder
	recoverer   *Recoverer
	parallelism int
}

func NewDirRecoverer(finder *wal.Finder, recoverer *Recoverer, parallelism int) *DirRecoverer {
	return &DirRecoverer{
		finder:      finder,
		recoverer:   recoverer,
		parallelism: parallelism,
	}
}

// RecoverDir returns one report per file, in path order. A failure on one file
// does not stop the others; the returned error then lists every failed file.
func (d *DirRecoverer) RecoverDir(dir string) ([]FileReport, error) {
	walfileAbsPaths, err := d.finder.Find(dir)
	if err != nil {
		return nil, err
	}
	if len(walfileAbsPaths) == 0 {
		log.Info("no wal files found under %s", dir)
		return nil, nil
	}

	reports := make([]FileReport, len(walfileAbsPaths))
	index := make(map[string]int, len(walfileAbsPaths))
	for i, fp := range walfileAbsPaths {
		index[fp] = i
	}

	var mu sync.Mutex
	p := pool.NewPool(d.parallelism, func(fp string) {
		log.Info("Found a wal file: %s, entering recovery...", fp)
		res, err := d.recoverer.RecoverAndTruncate(fp)

		mu.Lock()
		defer mu.Unlock()
		reports[index[fp]] = FileReport{Path: fp, Result: res, Err: err}
	})
	p.Run(walfileAbsPaths)

	failed := map[string]error{}
	for _, r := range reports {
		if r.Err != nil {
			failed[r.Path] = r.Err
		}
	}
	if len(failed) > 0 {
		return reports, &DirRecoveryError{Dir: dir, Failed: failed}
	}
	return reports, nil
}
