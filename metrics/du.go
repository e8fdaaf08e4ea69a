package metrics

import (
	"os"

	"github.com/alpacahq/walrecover/utils/log"
)

// Setter is an interface for prometheus metrics to improve unit-testability.
type Setter interface {
	Set(m float64)
}

// ObserveFileSize sets the current size of the file at path as a metric.
// A file that cannot be stat'ed is reported as 0.
func ObserveFileSize(s Setter, path string) {
	s.Set(float64(fileSize(path)))
}

func fileSize(path string) int64 {
	fi, err := os.Stat(path)
	if err != nil {
		log.Error("failed to stat %s for monitoring: %v", path, err)
		return 0
	}
	return fi.Size()
}
