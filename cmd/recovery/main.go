package recovery

import (
	"fmt"
	goio "io"
	"os"

	"github.com/spf13/cobra"

	"github.com/alpacahq/walrecover/cmd/cmdutil"
	"github.com/alpacahq/walrecover/executor/wal"
)

const (
	usage     = "recover [<file>]"
	shortDesc = "Truncate a log file back to its last complete record"
	longDesc  = "This command scans the log file record by record and, when the file does not end " +
		"on a verified record boundary, truncates it right after the last verified record. " +
		"With --dir every matching log file directly under the directory is recovered."
	example = "walrecover recover test.wal\nwalrecover recover --dir /var/lib/app/wal"
	dirDesc = "recover every log file matching wal_file_pattern under this directory"
)

// NewCmd returns the recover command.
func NewCmd(app *cmdutil.App) *cobra.Command {
	var dir string
	c := &cobra.Command{
		Use:        usage,
		Short:      shortDesc,
		Long:       longDesc,
		Example:    example,
		SuggestFor: []string{"repair", "fix"},
		Args:       cmdutil.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch {
			case dir != "" && len(args) == 1:
				return cmdutil.Usagef("give either a file or --dir, not both")
			case dir != "":
				return recoverDir(cmd, app, dir)
			case len(args) == 0:
				return cmdutil.Usagef("missing <file> or --dir")
			}
			if err := cmdutil.ExistingFile(args[0]); err != nil {
				return err
			}
			cmd.SilenceUsage = true

			res, err := app.Container().GetRecoverer().RecoverAndTruncate(args[0])
			if err != nil {
				return err
			}
			PrintResult(cmd.OutOrStdout(), res)
			return nil
		},
	}
	c.Flags().StringVarP(&dir, "dir", "d", "", dirDesc)
	return c
}

// PrintResult writes the outcome of a recovery.
func PrintResult(w goio.Writer, res wal.ScanResult) {
	fmt.Fprintf(w, "[recover] scanned %d good entries\n", res.GoodRecords)
	if res.Clean {
		fmt.Fprintln(w, "[recover] CLEAN (no action needed)")
		return
	}
	fmt.Fprintf(w, "[recover] OK: Recovered %d entries, truncated at offset %d\n",
		res.GoodRecords, res.LastGoodOffset)
}

func recoverDir(cmd *cobra.Command, app *cmdutil.App, dir string) error {
	fi, err := os.Stat(dir)
	if err != nil || !fi.IsDir() {
		return cmdutil.Usagef("not a directory: %s", dir)
	}
	cmd.SilenceUsage = true

	dr, err := app.Container().GetDirRecoverer()
	if err != nil {
		return err
	}
	reports, err := dr.RecoverDir(dir)
	out := cmd.OutOrStdout()
	for _, r := range reports {
		fmt.Fprintf(out, "== %s\n", r.Path)
		if r.Err != nil {
			fmt.Fprintf(out, "[recover] FAILED: %v\n", r.Err)
			continue
		}
		PrintResult(out, r.Result)
	}
	fmt.Fprintf(out, "[recover] %d file(s) under %s\n", len(reports), dir)
	return err
}
