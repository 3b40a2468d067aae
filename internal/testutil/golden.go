package testutil

import (
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// Golden file names under testdata/golden.
const (
	// GoldenStates is the CSV of the PROCAR/EIGENVAL fixture, raw energies.
	GoldenStates = "fixture_states"
	// GoldenStatesShifted is the same CSV with energies relative to 0.25.
	GoldenStatesShifted = "fixture_states_shifted"
)

func goldenDir() string {
	return filepath.Join(dir, "testdata", "golden")
}

// AssertGolden compares got against testdata/golden/{name}.golden.
func AssertGolden(t *testing.T, name string, got []byte) {
	t.Helper()
	g := goldie.New(t,
		goldie.WithFixtureDir(goldenDir()),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, got)
}

// AssertGoldenFile compares the content of path against a golden file.
func AssertGoldenFile(t *testing.T, name, path string) {
	t.Helper()
	AssertGolden(t, name, []byte(ReadFile(t, path)))
}
