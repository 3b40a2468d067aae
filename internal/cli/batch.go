package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/vaspipr/internal/config"
	"github.com/roach88/vaspipr/internal/ipr"
	"github.com/roach88/vaspipr/internal/vasp"
)

// BatchOptions holds flags for the batch command.
type BatchOptions struct {
	*RootOptions
	Jobs      int
	KeepGoing bool
}

// batchResult is one manifest entry's outcome, in manifest order.
type batchResult struct {
	Name    string      `json:"name"`
	Summary *jobSummary `json:"summary,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// NewBatchCommand creates the batch command.
func NewBatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BatchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "batch <manifest.yaml>",
		Short: "Run the jobs of a YAML manifest",
		Long: `Run every job listed in a YAML manifest. Jobs are independent and run
concurrently, at most --jobs at a time. Relative paths in the manifest are
resolved against the manifest's directory.

By default the first failing job cancels the jobs that have not started.
With --keep-going every job runs and failures are reported at the end.

Manifest:
  jobs:
    - name: bulk
      procar: bulk/PROCAR
      eigenval: bulk/EIGENVAL
      efermi: 5.4321
    - name: slab-down
      procar: slab/PROCAR
      eigenval: slab/EIGENVAL
      spin: down
      output: slab_down.csv`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(opts, args[0], cmd)
		},
	}

	cmd.Flags().IntVarP(&opts.Jobs, "jobs", "j", 4, "maximum number of jobs running at once")
	cmd.Flags().BoolVar(&opts.KeepGoing, "keep-going", false, "run every job even after a failure")

	return cmd
}

func runBatch(opts *BatchOptions, manifestPath string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	if opts.Jobs < 1 {
		return formatter.Usage("--jobs must be at least 1")
	}

	manifest, err := config.LoadManifest(manifestPath)
	if err != nil {
		return formatter.Fail("failed to load manifest", err)
	}
	specs, err := jobSpecs(manifest)
	if err != nil {
		return formatter.Fail("failed to load manifest", err)
	}

	st, closeStore, err := openStore(opts.Database)
	if err != nil {
		return formatter.Fail("failed to open database", err)
	}
	defer closeStore()

	formatter.VerboseLog("Running %d job(s), %d at a time", len(specs), opts.Jobs)

	results := make([]batchResult, len(specs))
	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(opts.Jobs)
	for i, spec := range specs {
		i, spec := i, spec
		results[i].Name = spec.Name
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i].Error = "skipped: " + err.Error()
				return nil
			}
			summary, _, err := runJob(ctx, spec, st)
			if err != nil {
				results[i].Error = err.Error()
				if opts.KeepGoing {
					return nil
				}
				return fmt.Errorf("job %s: %w", spec.Name, err)
			}
			results[i].Summary = summary
			return nil
		})
	}
	groupErr := g.Wait()

	failed := 0
	for _, r := range results {
		if r.Error != "" {
			failed++
		}
	}

	if formatter.Format == "json" {
		if failed > 0 {
			code := ErrCodeGeneric
			if groupErr != nil {
				code, _ = classifyError(groupErr)
			}
			_ = formatter.Error(code, fmt.Sprintf("%d of %d job(s) failed", failed, len(results)), results)
			return batchError(failed, len(results), groupErr)
		}
		return formatter.Success(results)
	}

	w := formatter.Writer
	for _, r := range results {
		switch {
		case r.Summary != nil:
			fmt.Fprintf(w, "✓ %s: %d state(s) -> %s", r.Name, r.Summary.States, r.Summary.Output)
			if r.Summary.NonFinite > 0 {
				fmt.Fprintf(w, " (%d NaN)", r.Summary.NonFinite)
			}
			fmt.Fprintln(w)
		default:
			fmt.Fprintf(w, "✗ %s: %s\n", r.Name, r.Error)
		}
	}
	if failed > 0 {
		fmt.Fprintf(w, "\n%d of %d job(s) failed\n", failed, len(results))
		return batchError(failed, len(results), groupErr)
	}
	fmt.Fprintf(w, "\n%d job(s) completed\n", len(results))
	return nil
}

// batchError builds the already reported error for a batch with failures.
// Without a group error (--keep-going) the batch counts as a computation
// failure.
func batchError(failed, total int, groupErr error) error {
	msg := fmt.Sprintf("%d of %d job(s) failed", failed, total)
	code := ExitFailure
	if groupErr != nil && !errors.Is(groupErr, context.Canceled) {
		_, code = classifyError(groupErr)
	}
	e := WrapExitError(code, msg, groupErr)
	e.Reported = true
	return e
}

// jobSpecs converts validated manifest jobs into runnable specs.
func jobSpecs(m *config.Manifest) ([]jobSpec, error) {
	specs := make([]jobSpec, len(m.Jobs))
	for i, j := range m.Jobs {
		spin, err := vasp.ParseSpin(j.Spin)
		if err != nil {
			return nil, fmt.Errorf("%w: job %s: %v", config.ErrInvalidManifest, j.Name, err)
		}
		specs[i] = jobSpec{
			Name:     j.Name,
			Procar:   j.Procar,
			Eigenval: j.Eigenval,
			Output:   j.Output,
			Spin:     spin,
		}
		if j.EFermi != nil {
			specs[i].Ref = ipr.At(*j.EFermi)
		}
	}
	return specs, nil
}
