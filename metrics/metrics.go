package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var namespace = "alpaca"
var subsystem = "walrecover"

var (
	// RecordsAppendedTotal counts records acknowledged by the writer
	RecordsAppendedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "records_appended_total",
		Help:      "Number of records appended to a log",
	})

	// BytesAppendedTotal counts on-disk bytes (framing included) acknowledged by the writer
	BytesAppendedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "bytes_appended_total",
		Help:      "Number of bytes appended to a log including length prefix and checksum",
	})

	// AppendFailuresTotal counts failed appends partitioned by error kind
	AppendFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "append_failures_total",
		Help:      "Number of failed appends partitioned by error kind",
	}, []string{"kind"})

	// RecoveriesTotal counts recovery runs partitioned by outcome (clean, truncated, failed)
	RecoveriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "recoveries_total",
		Help:      "Number of recovery runs partitioned by outcome",
	}, []string{"outcome"})

	// TruncatedBytesTotal counts torn bytes discarded by recovery
	TruncatedBytesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "truncated_bytes_total",
		Help:      "Number of torn tail bytes discarded by recovery",
	})

	// RecoveredRecords stores the number of intact records found by the last scan
	RecoveredRecords = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "recovered_records",
		Help:      "Number of intact records found by the last scan",
	})

	// LogSizeBytes stores the size of the last recovered log
	LogSizeBytes = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "log_size_bytes",
		Help:      "Size of the last recovered log file after recovery",
	})

	// ScanDuration stores the processing time of every scan
	ScanDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "scan_duration_seconds",
		Help:      "Time taken to scan a log file",
	})
)

// WriteTextfile writes every metric of the default registry to path in the
// Prometheus text format, for the node_exporter textfile collector.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}
