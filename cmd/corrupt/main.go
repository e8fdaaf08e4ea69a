package corrupt

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alpacahq/walrecover/cmd/cmdutil"
	"github.com/alpacahq/walrecover/utils/test"
)

const (
	usage     = "corrupt <file> <bytes_to_cut>"
	shortDesc = "Simulate a crash by cutting bytes from the end of a log file"
	longDesc  = "This command removes bytes_to_cut raw bytes from the end of the file. " +
		"When bytes_to_cut is not smaller than the file, half of the file is cut instead."
	example = "walrecover corrupt test.wal 70"
)

// NewCmd returns the corrupt command.
func NewCmd(_ *cmdutil.App) *cobra.Command {
	return &cobra.Command{
		Use:        usage,
		Short:      shortDesc,
		Long:       longDesc,
		Example:    example,
		SuggestFor: []string{"cut", "tear"},
		Args:       cmdutil.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cut, err := cmdutil.ParseCount("bytes_to_cut", args[1])
			if err != nil {
				return err
			}
			if err = cmdutil.ExistingFile(args[0]); err != nil {
				return err
			}
			cmd.SilenceUsage = true

			oldSize, newSize, err := test.CorruptTail(args[0], int64(cut))
			if err != nil {
				return fmt.Errorf("[corrupt] %s: %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "[corrupt] truncated %d bytes: %d -> %d\n",
				oldSize-newSize, oldSize, newSize)
			return nil
		},
	}
}
