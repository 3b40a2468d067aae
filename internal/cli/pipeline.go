package cli

import (
	"context"
	"log/slog"

	"github.com/roach88/vaspipr/internal/ipr"
	"github.com/roach88/vaspipr/internal/report"
	"github.com/roach88/vaspipr/internal/store"
	"github.com/roach88/vaspipr/internal/vasp"
)

// jobSpec is one fully resolved computation.
type jobSpec struct {
	Name     string
	Procar   string
	Eigenval string
	Output   string
	Spin     vasp.Spin
	Ref      ipr.Reference
}

// jobSummary is what compute and batch report for a finished job.
type jobSummary struct {
	Name      string   `json:"name,omitempty"`
	Output    string   `json:"output"`
	Spin      string   `json:"spin"`
	EFermi    *float64 `json:"efermi,omitempty"`
	NKPoints  int      `json:"nkpoints"`
	NBands    int      `json:"nbands"`
	NIons     int      `json:"nions"`
	States    int      `json:"states"`
	NonFinite int      `json:"non_finite"`
	RunID     string   `json:"run_id,omitempty"`
}

// runJob parses the inputs, computes sorted states, writes the CSV and,
// when st is non-nil, archives the run.
func runJob(ctx context.Context, spec jobSpec, st *store.Store) (*jobSummary, []ipr.State, error) {
	logger := slog.With("job", spec.Name, "spin", spec.Spin)

	logger.Debug("loading inputs", "procar", spec.Procar, "eigenval", spec.Eigenval)
	calc, err := ipr.Load(spec.Procar, spec.Eigenval)
	if err != nil {
		return nil, nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	info := calc.Info()
	logger.Debug("inputs parsed",
		"nkpoints", info.NKPoints, "nbands", info.NBands, "nions", info.NIons, "orbitals", info.NOrbitals)

	res, err := calc.States(spec.Spin, spec.Ref)
	if err != nil {
		return nil, nil, err
	}

	if err := report.WriteCSVFile(spec.Output, res.States); err != nil {
		return nil, nil, err
	}
	logger.Debug("csv written", "output", spec.Output, "states", len(res.States))

	summary := &jobSummary{
		Name:      spec.Name,
		Output:    spec.Output,
		Spin:      spec.Spin.String(),
		NKPoints:  info.NKPoints,
		NBands:    info.NBands,
		NIons:     info.NIons,
		States:    len(res.States),
		NonFinite: len(res.NonFinite),
	}
	if spec.Ref.Set {
		v := spec.Ref.Value
		summary.EFermi = &v
	}

	if st != nil {
		run, err := st.SaveRun(ctx, store.Run{
			Name:         spec.Name,
			ProcarPath:   spec.Procar,
			EigenvalPath: spec.Eigenval,
			Spin:         spec.Spin,
			Reference:    spec.Ref,
			NKPoints:     info.NKPoints,
			NBands:       info.NBands,
			NIons:        info.NIons,
			NonFinite:    len(res.NonFinite),
		}, res.States)
		if err != nil {
			return nil, nil, err
		}
		summary.RunID = run.ID
		logger.Debug("run archived", "run_id", run.ID, "seq", run.Seq)
	}

	return summary, res.States, nil
}

// openStore opens the archive when a path is configured. The returned
// close function is always safe to call.
func openStore(path string) (*store.Store, func(), error) {
	if path == "" {
		return nil, func() {}, nil
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return st, func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}, nil
}
