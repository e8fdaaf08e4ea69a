package di

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/alpacahq/walrecover/executor"
	"github.com/alpacahq/walrecover/executor/wal"
	"github.com/alpacahq/walrecover/utils"
	"github.com/alpacahq/walrecover/utils/log"
)

type Container struct {
	walConfig    *utils.WalConfig
	finder       *wal.Finder
	recoverer    *executor.Recoverer
	dirRecoverer *executor.DirRecoverer
	writers      map[string]*executor.LogWriter
}

func NewContainer(cfg *utils.WalConfig) *Container {
	if cfg == nil {
		cfg = utils.NewDefaultConfig()
	}
	return &Container{walConfig: cfg, writers: map[string]*executor.LogWriter{}}
}

func (c *Container) Config() *utils.WalConfig {
	return c.walConfig
}

func (c *Container) GetFinder() (*wal.Finder, error) {
	if c.finder != nil {
		return c.finder, nil
	}
	finder, err := wal.NewFinder(os.ReadDir, c.walConfig.WALFilePattern)
	if err != nil {
		return nil, errors.Wrap(err, "create wal file finder")
	}
	c.finder = finder
	return c.finder, nil
}

func (c *Container) GetRecoverer() *executor.Recoverer {
	if c.recoverer != nil {
		return c.recoverer
	}
	quarantineDir := c.walConfig.QuarantineDirectory
	if c.walConfig.QuarantineTornTail && quarantineDir != "" {
		absDir, err := filepath.Abs(filepath.Clean(quarantineDir))
		if err != nil {
			log.Error("Cannot take absolute path of quarantine directory %s", err.Error())
		} else {
			quarantineDir = absDir
		}
		log.Info("Quarantine Directory: %s", quarantineDir)
	}
	c.recoverer = executor.NewRecoverer(
		executor.WithSyncTruncate(c.walConfig.SyncWrites),
		executor.WithQuarantine(c.walConfig.QuarantineTornTail, quarantineDir),
	)
	return c.recoverer
}

func (c *Container) GetDirRecoverer() (*executor.DirRecoverer, error) {
	if c.dirRecoverer != nil {
		return c.dirRecoverer, nil
	}
	finder, err := c.GetFinder()
	if err != nil {
		return nil, err
	}
	c.dirRecoverer = executor.NewDirRecoverer(finder, c.GetRecoverer(), c.walConfig.Parallelism)
	return c.dirRecoverer, nil
}

// GetLogWriter returns the writer for path. Writers are cached per cleaned path.
func (c *Container) GetLogWriter(path string) *executor.LogWriter {
	path = filepath.Clean(path)
	if w, ok := c.writers[path]; ok {
		return w
	}
	w := executor.NewLogWriter(path, c.walConfig.SyncWrites)
	c.writers[path] = w
	return w
}
