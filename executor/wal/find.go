package wal

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/gobwas/glob"

	"github.com/alpacahq/walrecover/utils/log"
)

// DefaultFilePattern matches the log files a directory sweep picks up.
const DefaultFilePattern = "*.wal"

type Finder struct {
	dirRead func(name string) ([]os.DirEntry, error)
	pattern glob.Glob
}

// NewFinder compiles pattern, a glob matched against base file names.
func NewFinder(dirRead func(name string) ([]os.DirEntry, error), pattern string) (*Finder, error) {
	if pattern == "" {
		pattern = DefaultFilePattern
	}
	g, err := glob.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid wal file pattern %q: %w", pattern, err)
	}
	return &Finder{dirRead: dirRead, pattern: g}, nil
}

// Find returns the sorted absolute paths of the files directly under dir whose
// names match the pattern.
func (f *Finder) Find(dir string) ([]string, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("unable to resolve the directory %s: %w", dir, err)
	}
	files, err := f.dirRead(absDir)
	if err != nil {
		return nil, fmt.Errorf("unable to read the directory %s: %w", absDir, err)
	}
	var ret []string
	for _, file := range files {
		// ignore directories
		if file.IsDir() {
			continue
		}

		filename := file.Name()
		if !f.pattern.Match(filename) {
			continue
		}

		log.Debug("found a wal file: %s", filename)
		ret = append(ret, filepath.Join(absDir, filename))
	}
	sort.Strings(ret)
	return ret, nil
}
