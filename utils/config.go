package utils

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gobwas/glob"
	"gopkg.in/yaml.v2"

	"github.com/alpacahq/walrecover/executor/wal"
	"github.com/alpacahq/walrecover/utils/log"
)

const defaultParallelism = 1

type WalConfig struct {
	LogLevel log.Level
	// SyncWrites fsyncs every append and every recovery truncation.
	SyncWrites bool
	// QuarantineTornTail keeps a compressed copy of the bytes recovery discards.
	QuarantineTornTail bool
	// QuarantineDirectory is where quarantined tails go. Empty means next to the log.
	QuarantineDirectory string
	// WALFilePattern selects the files a directory recovery picks up.
	WALFilePattern string
	// Parallelism is the number of files a directory recovery works on at once.
	Parallelism int
	// MetricsTextfile, when set, receives the metrics in Prometheus text format.
	MetricsTextfile string
}

func NewDefaultConfig() *WalConfig {
	return &WalConfig{
		LogLevel:       log.INFO,
		WALFilePattern: wal.DefaultFilePattern,
		Parallelism:    defaultParallelism,
	}
}

func ParseConfig(data []byte) (*WalConfig, error) {
	var (
		m   = NewDefaultConfig()
		aux struct {
			LogLevel            string `yaml:"log_level"`
			SyncWrites          string `yaml:"sync_writes"`
			QuarantineTornTail  string `yaml:"quarantine_torn_tail"`
			QuarantineDirectory string `yaml:"quarantine_directory"`
			WALFilePattern      string `yaml:"wal_file_pattern"`
			Parallelism         int    `yaml:"parallelism"`
			MetricsTextfile     string `yaml:"metrics_textfile"`
		}
	)

	if err := yaml.Unmarshal(data, &aux); err != nil {
		return nil, fmt.Errorf("failed to unmarshal the config file: %w", err)
	}

	if aux.LogLevel != "" {
		m.LogLevel = log.ParseLevel(aux.LogLevel)
	}

	if aux.SyncWrites != "" {
		syncWrites, err := strconv.ParseBool(aux.SyncWrites)
		if err != nil {
			return nil, fmt.Errorf("invalid value: %v for sync_writes: %w", aux.SyncWrites, err)
		}
		m.SyncWrites = syncWrites
	}

	if aux.QuarantineTornTail != "" {
		quarantine, err := strconv.ParseBool(aux.QuarantineTornTail)
		if err != nil {
			log.Error("Invalid value: %v for quarantine_torn_tail. Disabling quarantine...", aux.QuarantineTornTail)
		} else {
			m.QuarantineTornTail = quarantine
		}
	}
	m.QuarantineDirectory = aux.QuarantineDirectory

	if aux.WALFilePattern != "" {
		if _, err := glob.Compile(aux.WALFilePattern); err != nil {
			return nil, fmt.Errorf("invalid wal_file_pattern %q: %w", aux.WALFilePattern, err)
		}
		m.WALFilePattern = aux.WALFilePattern
	}

	switch {
	case aux.Parallelism < 0:
		return nil, errors.New("parallelism must be positive")
	case aux.Parallelism > 0:
		m.Parallelism = aux.Parallelism
	}

	m.MetricsTextfile = aux.MetricsTextfile

	return m, nil
}
