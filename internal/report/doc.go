// Package report writes computed states to CSV and renders diagnostic
// tables for the terminal.
package report
