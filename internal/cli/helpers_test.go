package cli

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"

	"github.com/roach88/vaspipr/internal/testutil"
)

var (
	fixtureProcar         = testutil.Fixture(testutil.Procar)
	fixtureEigenval       = testutil.Fixture(testutil.Eigenval)
	fixtureProcarISpin2   = testutil.Fixture(testutil.ProcarISpin2)
	fixtureEigenvalISpin2 = testutil.Fixture(testutil.EigenvalISpin2)
)

func testRootOptions(format string) *RootOptions {
	return &RootOptions{Format: format, DefaultSpin: "up"}
}

// execute runs cmd with args and returns stdout, stderr and the error.
func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}
