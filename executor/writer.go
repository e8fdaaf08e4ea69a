package executor

import (
	"github.com/alpacahq/walrecover/executor/wal"
	"github.com/alpacahq/walrecover/metrics"
)

// LogWriter appends records to one log file and accounts for them in the metrics.
type LogWriter struct {
	w *wal.Writer
}

func NewLogWriter(path string, syncWrites bool) *LogWriter {
	return &LogWriter{w: wal.NewWriter(path, wal.WithSync(syncWrites))}
}

func (l *LogWriter) Path() string {
	return l.w.Path()
}

// Append writes payload as one record. See wal.Writer.Append.
func (l *LogWriter) Append(payload []byte) error {
	if err := l.w.Append(payload); err != nil {
		metrics.AppendFailuresTotal.WithLabelValues(wal.KindOf(err).String()).Inc()
		return err
	}
	metrics.RecordsAppendedTotal.Inc()
	metrics.BytesAppendedTotal.Add(float64(len(payload) + wal.FrameOverhead))
	return nil
}
