package demo

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alpacahq/walrecover/cmd/cmdutil"
	"github.com/alpacahq/walrecover/cmd/recovery"
	"github.com/alpacahq/walrecover/cmd/write"
	"github.com/alpacahq/walrecover/utils/test"
)

const (
	usage     = "demo <file> <N> <payload_bytes>"
	shortDesc = "Write records, tear the last one and recover"
	longDesc  = "This command appends N records, cuts roughly half of the last record off the " +
		"end of the file and runs recovery on it."
	example = "walrecover demo demo.wal 1000 128"
)

// NewCmd returns the demo command.
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
			out := cmd.OutOrStdout()

			size, err := write.WriteRecords(app, args[0], n, payloadBytes)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "[write] wrote %d entries, bytes=%d\n", n, size)

			// roughly half of the last record: length prefix, half the payload and the checksum
			cut := int64(payloadBytes/2 + 6)
			oldSize, newSize, err := test.CorruptTail(args[0], cut)
			if err != nil {
				return fmt.Errorf("[corrupt] %s: %w", args[0], err)
			}
			fmt.Fprintf(out, "[corrupt] truncated %d bytes: %d -> %d\n", oldSize-newSize, oldSize, newSize)

			res, err := app.Container().GetRecoverer().RecoverAndTruncate(args[0])
			if err != nil {
				return err
			}
			recovery.PrintResult(out, res)
			return nil
		},
	}
}
