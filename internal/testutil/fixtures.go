package testutil

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

// Fixture names under internal/vasp/testdata.
const (
	Procar         = "PROCAR"
	Eigenval       = "EIGENVAL"
	ProcarISpin2   = "PROCAR_ISPIN2"
	EigenvalISpin2 = "EIGENVAL_ISPIN2"
)

// dir is the absolute path of this package, so helpers work from any
// package's working directory.
var dir = func() string {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		panic("testutil: cannot locate package directory")
	}
	return filepath.Dir(file)
}()

// Fixture returns the absolute path of a VASP fixture file.
func Fixture(name string) string {
	return filepath.Join(dir, "..", "vasp", "testdata", name)
}

// WriteFile writes content to path, failing the test on error.
func WriteFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// ReadFile returns the content of path, failing the test on error.
func ReadFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}
