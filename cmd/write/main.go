package write

import (
	"fmt"

	"code.cloudfoundry.org/bytefmt"
	"github.com/spf13/cobra"

	"github.com/alpacahq/walrecover/cmd/cmdutil"
	"github.com/alpacahq/walrecover/utils/test"
)

const (
	usage     = "write <file> <N> <payload_bytes>"
	shortDesc = "Append N records with deterministic payloads"
	longDesc  = "This command appends N records of payload_bytes bytes each to the log file, " +
		"creating it if needed. Byte j of record i is (i+j) mod 256."
	example = "walrecover write test.wal 1000 128"
)

// NewCmd returns the write command.
func NewCmd(app *cmdutil.App) *cobra.Command {
	return &cobra.Command{
		Use:     usage,
		Short:   shortDesc,
		Long:    longDesc,
		Example: example,
		Args:    cmdutil.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := cmdutil.ParseCount("N", args[1])
			if err != nil {
				return err
			}
			payloadBytes, err := cmdutil.ParseCount("payload_bytes", args[2])
			if err != nil {
				return err
			}
			if payloadBytes == 0 {
				return cmdutil.Usagef("payload_bytes must be at least 1")
			}
			cmd.SilenceUsage = true

			size, err := WriteRecords(app, args[0], n, payloadBytes)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "[write] wrote %d entries, bytes=%d (%s)\n",
				n, size, bytefmt.ByteSize(uint64(size)))
			return nil
		},
	}
}

// WriteRecords appends n deterministic records and returns the resulting file size.
func WriteRecords(app *cmdutil.App, path string, n, payloadBytes int) (int64, error) {
	w := app.Container().GetLogWriter(path)
	for i := 0; i < n; i++ {
		if err := w.Append(test.DeterministicPayload(i, payloadBytes)); err != nil {
			return 0, fmt.Errorf("[write] failed at i=%d: %w", i, err)
		}
	}
	return test.FileSize(w.Path()), nil
}
