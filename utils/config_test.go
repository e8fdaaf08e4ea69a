package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alpacahq/walrecover/utils/log"
)

func TestParseConfig(t *testing.T) {
	t.Parallel()
	tests := map[string]struct {
		data      string
		expConfig *WalConfig
		expErr    bool
	}{
		"ok/ empty config uses the defaults": {
			data:      "",
			expConfig: NewDefaultConfig(),
		},
		"ok/ every field set": {
			data: `
log_level: debug
sync_writes: true
quarantine_torn_tail: true
quarantine_directory: /var/lib/walrecover/torn
wal_file_pattern: "*.log"
parallelism: 4
metrics_textfile: /var/lib/node_exporter/walrecover.prom
`,
			expConfig: &WalConfig{
				LogLevel:            log.DEBUG,
				SyncWrites:          true,
				QuarantineTornTail:  true,
				QuarantineDirectory: "/var/lib/walrecover/torn",
				WALFilePattern:      "*.log",
				Parallelism:         4,
				MetricsTextfile:     "/var/lib/node_exporter/walrecover.prom",
			},
		},
		"ok/ an invalid quarantine flag disables quarantine": {
			data: "quarantine_torn_tail: maybe\n",
			expConfig: &WalConfig{
				LogLevel:       log.INFO,
				WALFilePattern: "*.wal",
				Parallelism:    1,
			},
		},
		"ng/ invalid sync_writes": {
			data:   "sync_writes: sometimes\n",
			expErr: true,
		},
		"ng/ invalid glob pattern": {
			data:   "wal_file_pattern: \"[\"\n",
			expErr: true,
		},
		"ng/ negative parallelism": {
			data:   "parallelism: -2\n",
			expErr: true,
		},
		"ng/ broken yaml": {
			data:   "log_level: [info\n",
			expErr: true,
		},
	}
	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			cfg, err := ParseConfig([]byte(tt.data))

			if tt.expErr {
				assert.NotNil(t, err)
				return
			}
			require.Nil(t, err)
			assert.Equal(t, tt.expConfig, cfg)
		})
	}
}
