package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/vaspipr/internal/ipr"
	"github.com/roach88/vaspipr/internal/vasp"
)

const runColumns = `
	r.id, r.seq, r.name, r.procar_path, r.eigenval_path, r.spin, r.efermi,
	r.nkpoints, r.nbands, r.nions, r.non_finite,
	(SELECT COUNT(*) FROM states s WHERE s.run_id = r.id)
`

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var (
		run    Run
		spin   int
		efermi sql.NullFloat64
	)
	err := row.Scan(
		&run.ID, &run.Seq, &run.Name, &run.ProcarPath, &run.EigenvalPath, &spin, &efermi,
		&run.NKPoints, &run.NBands, &run.NIons, &run.NonFinite,
		&run.States,
	)
	if err != nil {
		return Run{}, err
	}
	run.Spin = vasp.Spin(spin)
	if efermi.Valid {
		run.Reference = ipr.At(efermi.Float64)
	}
	return run, nil
}

// ListRuns returns all runs ordered by seq.
// Returns an empty slice (not nil) if the store is empty.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+runColumns+` FROM runs r ORDER BY r.seq ASC`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// GetRun returns one run without its states.
func (s *Store) GetRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs r WHERE r.id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("get run %s: %w", id, ErrRunNotFound)
	}
	if err != nil {
		return Run{}, fmt.Errorf("get run %s: %w", id, err)
	}
	return run, nil
}

// LoadRun returns a run and its states in stored order.
func (s *Store) LoadRun(ctx context.Context, id string) (Run, []ipr.State, error) {
	run, err := s.GetRun(ctx, id)
	if err != nil {
		return Run{}, nil, err
	}
	states, err := s.readStates(ctx, `
		SELECT kpoint, band, energy, ipr FROM states
		WHERE run_id = ?
		ORDER BY pos ASC
	`, id)
	if err != nil {
		return Run{}, nil, err
	}
	return run, states, nil
}

// ReadStatesInRange returns the states of a run with lo <= energy <= hi,
// in stored order. States with NaN energy never match.
func (s *Store) ReadStatesInRange(ctx context.Context, id string, lo, hi float64) ([]ipr.State, error) {
	if _, err := s.GetRun(ctx, id); err != nil {
		return nil, err
	}
	return s.readStates(ctx, `
		SELECT kpoint, band, energy, ipr FROM states
		WHERE run_id = ? AND energy >= ? AND energy <= ?
		ORDER BY pos ASC
	`, id, lo, hi)
}

func (s *Store) readStates(ctx context.Context, query string, args ...any) ([]ipr.State, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query states: %w", err)
	}
	defer rows.Close()

	states := []ipr.State{}
	for rows.Next() {
		var (
			st          ipr.State
			energy, val sql.NullFloat64
		)
		if err := rows.Scan(&st.KPoint, &st.Band, &energy, &val); err != nil {
			return nil, fmt.Errorf("scan state: %w", err)
		}
		st.Energy = floatOrNaN(energy)
		st.IPR = floatOrNaN(val)
		states = append(states, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate states: %w", err)
	}
	return states, nil
}
