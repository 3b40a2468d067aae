package report

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-isatty"

	"github.com/roach88/vaspipr/internal/ipr"
	"github.com/roach88/vaspipr/internal/store"
)

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func newTable(styled bool, headers ...string) *table.Table {
	t := table.New().Headers(headers...)
	if !styled {
		return t.Border(lipgloss.ASCIIBorder())
	}
	return t.
		Border(lipgloss.RoundedBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

// InfoTable prints the dimensions of a PROCAR file.
func InfoTable(w io.Writer, info ipr.Info, styled bool) error {
	spins := make([]string, len(info.Spins))
	for i, s := range info.Spins {
		spins[i] = s.String()
	}
	t := newTable(styled, "spins", "nkpoints", "nbands", "nions", "orbitals").
		Row(
			strings.Join(spins, ","),
			strconv.Itoa(info.NKPoints),
			strconv.Itoa(info.NBands),
			strconv.Itoa(info.NIons),
			strings.Join(info.Orbitals, " "),
		)
	_, err := fmt.Fprintln(w, t.Render())
	return err
}

// StatesTable prints the first limit states. limit <= 0 prints all of them.
func StatesTable(w io.Writer, states []ipr.State, limit int, styled bool) error {
	if limit <= 0 || limit > len(states) {
		limit = len(states)
	}
	t := newTable(styled, "kpoint", "band", "energy", "IPR")
	for _, s := range states[:limit] {
		t.Row(
			strconv.Itoa(s.KPoint+1),
			strconv.Itoa(s.Band+1),
			FormatFloat(s.Energy),
			FormatFloat(s.IPR),
		)
	}
	if _, err := fmt.Fprintln(w, t.Render()); err != nil {
		return err
	}
	if rest := len(states) - limit; rest > 0 {
		_, err := fmt.Fprintf(w, "... %d more state(s)\n", rest)
		return err
	}
	return nil
}

// RunsTable prints one row per archived run.
func RunsTable(w io.Writer, runs []store.Run, styled bool) error {
	t := newTable(styled, "seq", "id", "name", "spin", "efermi", "states", "NaN")
	for _, r := range runs {
		t.Row(
			strconv.FormatInt(r.Seq, 10),
			r.ID,
			r.Name,
			r.Spin.String(),
			r.Reference.String(),
			strconv.Itoa(r.States),
			strconv.Itoa(r.NonFinite),
		)
	}
	_, err := fmt.Fprintln(w, t.Render())
	return err
}
