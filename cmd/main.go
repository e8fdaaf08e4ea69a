package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/alpacahq/walrecover/cmd/cmdutil"
	"github.com/alpacahq/walrecover/cmd/corrupt"
	"github.com/alpacahq/walrecover/cmd/demo"
	"github.com/alpacahq/walrecover/cmd/dump"
	"github.com/alpacahq/walrecover/cmd/recovery"
	"github.com/alpacahq/walrecover/cmd/scan"
	"github.com/alpacahq/walrecover/cmd/write"
	"github.com/alpacahq/walrecover/metrics"
	"github.com/alpacahq/walrecover/utils"
	"github.com/alpacahq/walrecover/utils/log"
)

const (
	configDesc = "set the path for the walrecover YAML configuration file"
	syncDesc   = "fsync every append, truncation and quarantine file"
)

// Exit codes.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
)

// NewRootCmd builds the command tree over app.
func NewRootCmd(app *cmdutil.App) *cobra.Command {
	// flagPrintVersion set flag to show current walrecover version.
	var flagPrintVersion bool

	// c is the root command.
	c := &cobra.Command{
		Use:           "walrecover",
		Short:         "Write, tear, scan and recover length-prefixed CRC32 log files",
		SilenceErrors: true,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return cmdutil.Usagef("unknown command %q for %q", args[0], cmd.CommandPath())
			}
			return nil
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return app.Load(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// Print version if specified.
			if flagPrintVersion {
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "version: %+v\n", utils.Tag)
				fmt.Fprintf(out, "commit hash: %+v\n", utils.GitHash)
				fmt.Fprintf(out, "utc build time: %+v\n", utils.BuildStamp)
				return nil
			}
			// Print information regarding usage.
			return cmd.Usage()
		},
	}
	c.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return cmdutil.UsageError(err.Error())
	})

	// Adds subcommands and flags.
	c.AddCommand(write.NewCmd(app))
	c.AddCommand(corrupt.NewCmd(app))
	c.AddCommand(recovery.NewCmd(app))
	c.AddCommand(scan.NewCmd(app))
	c.AddCommand(dump.NewCmd(app))
	c.AddCommand(demo.NewCmd(app))
	c.Flags().BoolVarP(&flagPrintVersion, "version", "v", false, "show the version info and exit")
	c.PersistentFlags().StringVarP(&app.ConfigFilePath, "config", "c", cmdutil.DefaultConfigFilePath, configDesc)
	c.PersistentFlags().BoolVar(&app.SyncWrites, "sync", false, syncDesc)

	return c
}

// ExecuteArgs runs the command tree with args and returns the process exit code.
func ExecuteArgs(args []string) int {
	app := &cmdutil.App{}
	c := NewRootCmd(app)
	c.SetArgs(args)

	err := c.Execute()
	if path := app.Container().Config().MetricsTextfile; path != "" {
		if werr := metrics.WriteTextfile(path); werr != nil {
			log.Error("failed to write metrics to %s: %v", path, werr)
		}
	}
	log.Sync()
	return ExitCode(err, c)
}

// ExitCode maps the error returned by a command to the process exit code and
// reports it on stderr.
func ExitCode(err error, c *cobra.Command) int {
	if err == nil {
		return ExitOK
	}
	fmt.Fprintf(c.ErrOrStderr(), "error: %v\n", err)
	if cmdutil.IsUsageError(err) {
		return ExitUsage
	}
	return ExitFailure
}

// Execute builds the command tree and executes commands.
func Execute() int {
	return ExecuteArgs(os.Args[1:])
}
