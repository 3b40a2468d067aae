package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/vaspipr/internal/ipr"
	"github.com/roach88/vaspipr/internal/report"
	"github.com/roach88/vaspipr/internal/vasp"
)

// ItemOptions holds flags for the item command.
type ItemOptions struct {
	*RootOptions
	Procar string
	Spin   string
}

// itemResult is the JSON payload of the item command.
type itemResult struct {
	Spin    string  `json:"spin"`
	KPoint  int     `json:"kpoint"`
	Band    int     `json:"band"`
	Ion     int     `json:"ion"`
	Orbital string  `json:"orbital"`
	Value   float64 `json:"value"`
}

// NewItemCommand creates the item command.
func NewItemCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ItemOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "item <kpoint> <band> <ion> <orbital>",
		Short: "Print one projected weight",
		Long: `Print the projected weight of a single (k-point, band, ion, orbital)
element. Indices are 0-based, unlike the 1-based numbering inside PROCAR.

Example:
  ipr item --procar PROCAR 0 12 3 0`,
		Args:          cobra.ExactArgs(4),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runItem(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Procar, "procar", "PROCAR", "path to PROCAR")
	cmd.Flags().StringVar(&opts.Spin, "spin", rootOpts.DefaultSpin, "spin channel (up|down)")

	return cmd
}

func runItem(opts *ItemOptions, args []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	spin, err := vasp.ParseSpin(opts.Spin)
	if err != nil {
		return formatter.Usage(err.Error())
	}
	idx := make([]int, len(args))
	for i, a := range args {
		n, err := strconv.Atoi(a)
		if err != nil {
			return formatter.Usage(fmt.Sprintf("index %q is not an integer", a))
		}
		idx[i] = n
	}

	procar, err := vasp.ReadProcarFile(opts.Procar)
	if err != nil {
		return formatter.Fail("failed to read PROCAR", err)
	}
	value, err := ipr.New(procar, nil).Item(spin, idx[0], idx[1], idx[2], idx[3])
	if err != nil {
		return formatter.Fail("lookup failed", err)
	}

	res := itemResult{
		Spin:   spin.String(),
		KPoint: idx[0],
		Band:   idx[1],
		Ion:    idx[2],
		Value:  value,
	}
	res.Orbital = procar.Orbitals[idx[3]]

	if formatter.Format == "json" {
		return formatter.Success(res)
	}
	fmt.Fprintln(formatter.Writer, report.FormatFloat(value))
	return nil
}
