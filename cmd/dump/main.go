package dump

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alpacahq/walrecover/cmd/cmdutil"
	"github.com/alpacahq/walrecover/executor/wal"
)

const (
	usage     = "dump <file>"
	shortDesc = "Print every verified record of a log file"
	longDesc  = "This command replays the log file and prints the offset, length, checksum and " +
		"the first bytes of every record that verifies. It stops at the first bad record."
	example = "walrecover dump test.wal"

	previewBytes = 16
)

// NewCmd returns the dump command.
func NewCmd(_ *cmdutil.App) *cobra.Command {
	return &cobra.Command{
		Use:     usage,
		Short:   shortDesc,
		Long:    longDesc,
		Example: example,
		Aliases: []string{"waldebugger"},
		Args:    cmdutil.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cmdutil.ExistingFile(args[0]); err != nil {
				return err
			}
			cmd.SilenceUsage = true

			out := cmd.OutOrStdout()
			res, err := wal.Replay(args[0], func(r wal.Record) error {
				_, err := fmt.Fprintf(out, "offset=%d len=%d crc=%08x payload=%s\n",
					r.Offset, len(r.Payload), r.Checksum, preview(r.Payload))
				return err
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "[dump] %d records", res.GoodRecords)
			if !res.Clean {
				fmt.Fprintf(out, ", stopped at offset %d: %s", res.LastGoodOffset, res.Reason)
			}
			fmt.Fprintln(out)
			return nil
		},
	}
}

func preview(p []byte) string {
	if len(p) <= previewBytes {
		return hex.EncodeToString(p)
	}
	return hex.EncodeToString(p[:previewBytes]) + "..."
}
