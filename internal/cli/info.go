package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/vaspipr/internal/ipr"
	"github.com/roach88/vaspipr/internal/report"
	"github.com/roach88/vaspipr/internal/vasp"
)

// InfoOptions holds flags for the info command.
type InfoOptions struct {
	*RootOptions
	Procar string
}

// NewInfoCommand creates the info command.
func NewInfoCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InfoOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show PROCAR dimensions",
		Long: `Show the spin channels, k-point, band, ion and orbital counts of a PROCAR.

Example:
  ipr info --procar PROCAR`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Procar, "procar", "PROCAR", "path to PROCAR")

	return cmd
}

func runInfo(opts *InfoOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	procar, err := vasp.ReadProcarFile(opts.Procar)
	if err != nil {
		return formatter.Fail("failed to read PROCAR", err)
	}
	info := ipr.New(procar, nil).Info()

	if formatter.Format == "json" {
		return formatter.Success(info)
	}
	return report.InfoTable(formatter.Writer, info, report.IsTerminal(formatter.Writer))
}
