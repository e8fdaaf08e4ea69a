// Package cmdutil holds what the walrecover subcommands share: the loaded
// configuration, the dependency container and usage error handling.
package cmdutil

import (
	"fmt"
	"os"
	"strconv"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/alpacahq/walrecover/internal/di"
	"github.com/alpacahq/walrecover/utils"
	"github.com/alpacahq/walrecover/utils/log"
)

const DefaultConfigFilePath = "./walrecover.yml"

// UsageError is returned for bad arguments, unknown commands and missing input files.
type UsageError string

func (e UsageError) Error() string {
	return string(e)
}

func Usagef(format string, args ...interface{}) error {
	return UsageError(fmt.Sprintf(format, args...))
}

func IsUsageError(err error) bool {
	var ue UsageError
	return errors.As(err, &ue)
}

// ExactArgs is cobra.ExactArgs reporting a UsageError.
func ExactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(n)(cmd, args); err != nil {
			return UsageError(err.Error())
		}
		return nil
	}
}

// MaximumNArgs is cobra.MaximumNArgs reporting a UsageError.
func MaximumNArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.MaximumNArgs(n)(cmd, args); err != nil {
			return UsageError(err.Error())
		}
		return nil
	}
}

// ParseCount parses a non-negative integer argument.
func ParseCount(name, s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, Usagef("invalid %s: %q", name, s)
	}
	return n, nil
}

// ExistingFile returns a UsageError when path does not name a regular file.
func ExistingFile(path string) error {
	fi, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Usagef("file not found: %s", path)
		}
		return errors.Wrapf(err, "stat %s", path)
	}
	if fi.IsDir() {
		return Usagef("%s is a directory", path)
	}
	return nil
}

// App is filled in by the root command before any subcommand runs.
type App struct {
	ConfigFilePath string
	SyncWrites     bool

	container *di.Container
}

// Load reads the configuration and builds the container. A missing file at the
// default path is not an error; a missing file given with --config is.
func (a *App) Load(cmd *cobra.Command) error {
	config := utils.NewDefaultConfig()

	data, err := os.ReadFile(a.ConfigFilePath)
	switch {
	case err == nil:
		log.Info("using %v for configuration", a.ConfigFilePath)
		if config, err = utils.ParseConfig(data); err != nil {
			return errors.Wrap(err, "failed to parse configuration file")
		}
	case os.IsNotExist(err) && !cmd.Flags().Changed("config"):
		log.Debug("no configuration file at %s, using defaults", a.ConfigFilePath)
	case os.IsNotExist(err):
		return Usagef("configuration file not found: %s", a.ConfigFilePath)
	default:
		return errors.Wrap(err, "failed to read configuration file")
	}

	if a.SyncWrites {
		config.SyncWrites = true
	}
	log.SetLevel(config.LogLevel)
	a.container = di.NewContainer(config)
	return nil
}

// Container returns the container built by Load, or one over the default
// configuration when Load has not run.
func (a *App) Container() *di.Container {
	if a.container == nil {
		a.container = di.NewContainer(nil)
	}
	return a.container
}
