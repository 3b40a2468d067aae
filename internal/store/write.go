package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/vaspipr/internal/ipr"
)

// SaveRun stores run and its states in a single transaction and returns
// the run with ID (if empty) and Seq assigned. States are stored in the
// order given, which callers keep energy-sorted.
func (s *Store) SaveRun(ctx context.Context, run Run, states []ipr.State) (Run, error) {
	if run.ID == "" {
		run.ID = s.ids.Generate()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Run{}, fmt.Errorf("save run: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM runs`).Scan(&run.Seq); err != nil {
		return Run{}, fmt.Errorf("save run: next seq: %w", err)
	}

	var efermi sql.NullFloat64
	if run.Reference.Set {
		efermi = nullableFloat(run.Reference.Value)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, seq, name, procar_path, eigenval_path, spin, efermi, nkpoints, nbands, nions, non_finite)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.Seq,
		run.Name,
		run.ProcarPath,
		run.EigenvalPath,
		int(run.Spin),
		efermi,
		run.NKPoints,
		run.NBands,
		run.NIons,
		run.NonFinite,
	)
	if err != nil {
		return Run{}, fmt.Errorf("save run: insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO states (run_id, pos, kpoint, band, energy, ipr)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return Run{}, fmt.Errorf("save run: prepare states: %w", err)
	}
	defer stmt.Close()

	for pos, st := range states {
		_, err := stmt.ExecContext(ctx,
			run.ID,
			pos,
			st.KPoint,
			st.Band,
			nullableFloat(st.Energy),
			nullableFloat(st.IPR),
		)
		if err != nil {
			return Run{}, fmt.Errorf("save run: insert state %d: %w", pos, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("save run: commit: %w", err)
	}

	run.States = len(states)
	return run, nil
}

// DeleteRun removes a run and, through the foreign key cascade, its states.
func (s *Store) DeleteRun(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete run: rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("delete run %s: %w", id, ErrRunNotFound)
	}
	return nil
}
