package executor

import (
	"fmt"
	"sort"
	"strings"
)

// DirRecoveryError lists every file a directory recovery could not recover.
type DirRecoveryError struct {
	Dir    string
	Failed map[string]error
}

func (e *DirRecoveryError) Error() string {
	paths := make([]string, 0, len(e.Failed))
	for p := range e.Failed {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	msgs := make([]string, 0, len(paths))
	for _, p := range paths {
		msgs = append(msgs, fmt.Sprintf("%s: %v", p, e.Failed[p]))
	}
	return fmt.Sprintf("failed to recover %d wal file(s) under %s: %s",
		len(paths), e.Dir, strings.Join(msgs, "; "))
}
