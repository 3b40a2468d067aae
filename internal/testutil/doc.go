// Package testutil holds helpers shared by the package tests: paths to the
// VASP fixtures and golden file assertions.
//
// To regenerate golden files, run the affected package tests with -update.
package testutil
