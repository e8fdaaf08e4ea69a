package scan

import (
	"fmt"

	"code.cloudfoundry.org/bytefmt"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"

	"github.com/alpacahq/walrecover/cmd/cmdutil"
	"github.com/alpacahq/walrecover/executor/wal"
)

const (
	usage      = "scan <file>"
	shortDesc  = "Report the verified prefix of a log file without modifying it"
	longDesc   = "This command scans the log file and reports how many records verify, where the " +
		"verified prefix ends and why the scan stopped. The file is never modified."
	example    = "walrecover scan test.wal --output yaml"
	outputDesc = "output format: text or yaml"
)

// Report is the yaml form of a scan.
type Report struct {
	Path           string `yaml:"path"`
	Size           int64  `yaml:"size"`
	GoodRecords    int64  `yaml:"good_records"`
	LastGoodOffset int64  `yaml:"last_good_offset"`
	Clean          bool   `yaml:"clean"`
	TornBytes      int64  `yaml:"torn_bytes"`
	StopReason     string `yaml:"stop_reason"`
}

func NewReport(path string, res wal.ScanResult) Report {
	return Report{
		Path:           path,
		Size:           res.Size,
		GoodRecords:    res.GoodRecords,
		LastGoodOffset: res.LastGoodOffset,
		Clean:          res.Clean,
		TornBytes:      res.TornBytes(),
		StopReason:     res.Reason.String(),
	}
}

// NewCmd returns the scan command.
func NewCmd(app *cmdutil.App) *cobra.Command {
	var output string
	c := &cobra.Command{
		Use:     usage,
		Short:   shortDesc,
		Long:    longDesc,
		Example: example,
		Aliases: []string{"check"},
		Args:    cmdutil.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output != "text" && output != "yaml" {
				return cmdutil.Usagef("invalid --output %q: want text or yaml", output)
			}
			if err := cmdutil.ExistingFile(args[0]); err != nil {
				return err
			}
			cmd.SilenceUsage = true

			res, err := app.Container().GetRecoverer().Scan(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if output == "yaml" {
				buf, err := yaml.Marshal(NewReport(args[0], res))
				if err != nil {
					return fmt.Errorf("marshal scan report: %w", err)
				}
				_, err = out.Write(buf)
				return err
			}
			fmt.Fprintf(out, "[scan] %s: %s\n", args[0], res)
			fmt.Fprintf(out, "[scan] size=%s verified=%s\n",
				bytefmt.ByteSize(uint64(res.Size)), bytefmt.ByteSize(uint64(res.LastGoodOffset)))
			return nil
		},
	}
	c.Flags().StringVarP(&output, "output", "o", "text", outputDesc)
	return c
}
