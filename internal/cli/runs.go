package cli

import (
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"github.com/roach88/vaspipr/internal/ipr"
	"github.com/roach88/vaspipr/internal/report"
	"github.com/roach88/vaspipr/internal/store"
)

// RunsOptions holds flags shared by the runs subcommands.
type RunsOptions struct {
	*RootOptions
	EMin   float64
	EMax   float64
	Limit  int
	Output string
}

// NewRunsCommand creates the runs command group.
func NewRunsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect runs archived with --db",
		Long: `List, show, export and delete computations archived in the SQLite
database given by --db or IPR_DB.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	list := &cobra.Command{
		Use:           "list",
		Short:         "List archived runs",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRunsList(opts, cmd)
		},
	}

	show := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show a run and its lowest-energy states",
		Long: `Show a run and its states in energy order. --emin and --emax restrict
the states to an energy window.

Example:
  ipr runs show --db runs.db 0190a1b2-... --emin -1 --emax 1`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRunsShow(opts, args[0], cmd)
		},
	}
	show.Flags().Float64Var(&opts.EMin, "emin", math.Inf(-1), "lowest energy to show")
	show.Flags().Float64Var(&opts.EMax, "emax", math.Inf(1), "highest energy to show")
	show.Flags().IntVar(&opts.Limit, "limit", 20, "maximum number of states to print (0: all)")

	export := &cobra.Command{
		Use:           "export <run-id>",
		Short:         "Write a run's states as CSV",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRunsExport(opts, args[0], cmd)
		},
	}
	export.Flags().StringVarP(&opts.Output, "output", "o", "IPRs.csv", "output CSV path")

	del := &cobra.Command{
		Use:           "delete <run-id>",
		Short:         "Delete a run",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRunsDelete(opts, args[0], cmd)
		},
	}

	cmd.AddCommand(list, show, export, del)
	return cmd
}

// requireStore opens --db or reports a usage error.
func requireStore(opts *RunsOptions, formatter *OutputFormatter) (*store.Store, func(), error) {
	if opts.Database == "" {
		return nil, nil, formatter.Usage("no database: pass --db or set IPR_DB")
	}
	st, closeStore, err := openStore(opts.Database)
	if err != nil {
		return nil, nil, formatter.Fail("failed to open database", err)
	}
	return st, closeStore, nil
}

func runRunsList(opts *RunsOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	st, closeStore, err := requireStore(opts, formatter)
	if err != nil {
		return err
	}
	defer closeStore()

	runs, err := st.ListRuns(cmd.Context())
	if err != nil {
		return formatter.Fail("failed to list runs", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(runs)
	}
	if len(runs) == 0 {
		fmt.Fprintln(formatter.Writer, "No runs archived")
		return nil
	}

	return report.RunsTable(formatter.Writer, runs, report.IsTerminal(formatter.Writer))
}

// runDetail is the JSON payload of runs show.
type runDetail struct {
	Run    store.Run   `json:"run"`
	States []ipr.State `json:"states"`
}

func runRunsShow(opts *RunsOptions, id string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	if opts.Limit < 0 {
		return formatter.Usage("--limit must not be negative")
	}
	if opts.EMin > opts.EMax {
		return formatter.Usage("--emin must not exceed --emax")
	}
	st, closeStore, err := requireStore(opts, formatter)
	if err != nil {
		return err
	}
	defer closeStore()

	ctx := cmd.Context()
	run, err := st.GetRun(ctx, id)
	if err != nil {
		return formatter.Fail("failed to load run", err)
	}
	states, err := st.ReadStatesInRange(ctx, id, opts.EMin, opts.EMax)
	if err != nil {
		return formatter.Fail("failed to load states", err)
	}

	if formatter.Format == "json" {
		if opts.Limit > 0 && len(states) > opts.Limit {
			states = states[:opts.Limit]
		}
		return formatter.Success(runDetail{Run: run, States: states})
	}

	w := formatter.Writer
	fmt.Fprintf(w, "Run %s (#%d)\n", run.ID, run.Seq)
	if run.Name != "" {
		fmt.Fprintf(w, "  name:     %s\n", run.Name)
	}
	fmt.Fprintf(w, "  procar:   %s\n", run.ProcarPath)
	fmt.Fprintf(w, "  eigenval: %s\n", run.EigenvalPath)
	fmt.Fprintf(w, "  spin:     %s\n", run.Spin)
	fmt.Fprintf(w, "  efermi:   %s\n", run.Reference)
	fmt.Fprintf(w, "  shape:    %d k-point(s) x %d band(s), %d ion(s)\n", run.NKPoints, run.NBands, run.NIons)
	fmt.Fprintf(w, "  states:   %d (%d NaN)\n\n", run.States, run.NonFinite)
	return report.StatesTable(w, states, opts.Limit, report.IsTerminal(w))
}

func runRunsExport(opts *RunsOptions, id string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	st, closeStore, err := requireStore(opts, formatter)
	if err != nil {
		return err
	}
	defer closeStore()

	run, states, err := st.LoadRun(cmd.Context(), id)
	if err != nil {
		return formatter.Fail("failed to load run", err)
	}
	if err := report.WriteCSVFile(opts.Output, states); err != nil {
		return formatter.Fail("failed to write CSV", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(map[string]any{
			"run_id": run.ID,
			"output": opts.Output,
			"states": len(states),
		})
	}
	fmt.Fprintf(formatter.Writer, "Wrote %d state(s) of run %s to %s\n", len(states), run.ID, opts.Output)
	return nil
}

func runRunsDelete(opts *RunsOptions, id string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	st, closeStore, err := requireStore(opts, formatter)
	if err != nil {
		return err
	}
	defer closeStore()

	if err := st.DeleteRun(cmd.Context(), id); err != nil {
		return formatter.Fail("failed to delete run", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(map[string]string{"deleted": id})
	}
	fmt.Fprintf(formatter.Writer, "Deleted run %s\n", id)
	return nil
}
