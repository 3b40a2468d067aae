package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/vaspipr/internal/ipr"
	"github.com/roach88/vaspipr/internal/report"
	"github.com/roach88/vaspipr/internal/vasp"
)

// ComputeOptions holds flags for the compute command.
type ComputeOptions struct {
	*RootOptions
	Procar   string
	Eigenval string
	Output   string
	Spin     string
	EFermi   float64
	Name     string
	Preview  int
}

// NewComputeCommand creates the compute command.
func NewComputeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ComputeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compute",
		Short: "Compute IPRs and write them as CSV",
		Long: `Compute the IPR of every (k-point, band) state of one spin channel and
write "energy,IPR" rows sorted by ascending energy.

Energies come from EIGENVAL. With --efermi they are reported relative to
the given reference; without it raw energies are written. States with zero
total projected weight get an IPR of NaN and are reported as a warning.

Example:
  ipr compute --procar PROCAR --eigenval EIGENVAL -o IPRs.csv
  ipr compute --efermi 5.4321 --spin down --db runs.db`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompute(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Procar, "procar", "PROCAR", "path to PROCAR")
	cmd.Flags().StringVar(&opts.Eigenval, "eigenval", "EIGENVAL", "path to EIGENVAL")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "IPRs.csv", "output CSV path")
	cmd.Flags().StringVar(&opts.Spin, "spin", rootOpts.DefaultSpin, "spin channel (up|down)")
	cmd.Flags().Float64Var(&opts.EFermi, "efermi", 0, "reference energy subtracted from every state (unset: raw energies)")
	cmd.Flags().StringVar(&opts.Name, "name", "", "label stored with the run in --db")
	cmd.Flags().IntVar(&opts.Preview, "preview", 0, "print the N lowest-energy states")

	return cmd
}

func runCompute(opts *ComputeOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	spin, err := vasp.ParseSpin(opts.Spin)
	if err != nil {
		return formatter.Usage(err.Error())
	}
	if opts.Preview < 0 {
		return formatter.Usage("--preview must not be negative")
	}

	spec := jobSpec{
		Name:     opts.Name,
		Procar:   opts.Procar,
		Eigenval: opts.Eigenval,
		Output:   opts.Output,
		Spin:     spin,
	}
	if cmd.Flags().Changed("efermi") {
		spec.Ref = ipr.At(opts.EFermi)
	}

	st, closeStore, err := openStore(opts.Database)
	if err != nil {
		return formatter.Fail("failed to open database", err)
	}
	defer closeStore()

	formatter.VerboseLog("Reading %s and %s", spec.Procar, spec.Eigenval)
	summary, states, err := runJob(cmd.Context(), spec, st)
	if err != nil {
		return formatter.Fail("compute failed", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(summary)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "✓ Computed %d state(s), spin %s (%d k-point(s) x %d band(s), %d ion(s))\n",
		summary.States, summary.Spin, summary.NKPoints, summary.NBands, summary.NIons)
	if summary.EFermi != nil {
		fmt.Fprintf(w, "  Energies relative to %s\n", report.FormatFloat(*summary.EFermi))
	}
	if summary.NonFinite > 0 {
		fmt.Fprintf(w, "! %d state(s) have zero total weight; their IPR is NaN\n", summary.NonFinite)
	}
	fmt.Fprintf(w, "Wrote %s\n", summary.Output)
	if summary.RunID != "" {
		fmt.Fprintf(w, "Archived as run %s\n", summary.RunID)
	}
	if opts.Preview > 0 {
		fmt.Fprintln(w)
		return report.StatesTable(w, states, opts.Preview, report.IsTerminal(w))
	}
	return nil
}
