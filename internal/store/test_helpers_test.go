package store

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/roach88/vaspipr/internal/ipr"
	"github.com/roach88/vaspipr/internal/vasp"
)

// createTestStore creates a new store in a temp directory for testing.
func createTestStore(t *testing.T, ids ...string) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	if len(ids) > 0 {
		s.WithIDGenerator(NewFixedGenerator(ids...))
	}
	return s
}

// createTestRun creates a run with minimal required fields.
func createTestRun(name string) Run {
	return Run{
		Name:         name,
		ProcarPath:   "/data/PROCAR",
		EigenvalPath: "/data/EIGENVAL",
		Spin:         vasp.SpinUp,
		NKPoints:     2,
		NBands:       2,
		NIons:        3,
	}
}

// createTestStates returns four energy-sorted states, one with NaN IPR.
func createTestStates() []ipr.State {
	return []ipr.State{
		{KPoint: 1, Band: 0, Energy: -6, IPR: 0.5},
		{KPoint: 0, Band: 0, Energy: -5.5, IPR: 1},
		{KPoint: 1, Band: 1, Energy: 0.75, IPR: math.NaN()},
		{KPoint: 0, Band: 1, Energy: 1.25, IPR: 0.375},
	}
}
