package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/roach88/vaspipr/internal/ipr"
)

// Header is the CSV header row.
var Header = []string{"energy", "IPR"}

// ErrBadHeader is returned by ReadCSV when the first row is not Header.
var ErrBadHeader = errors.New("unexpected CSV header")

// WriteError reports a failure to write an output file.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// FormatFloat renders v with the shortest representation that round-trips.
// The decimal separator is always '.', and non-finite values are written
// as NaN, +Inf or -Inf.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// WriteCSV writes states as "energy,IPR" rows in the given order.
func WriteCSV(w io.Writer, states []ipr.State) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	row := make([]string, 2)
	for i, s := range states {
		row[0] = FormatFloat(s.Energy)
		row[1] = FormatFloat(s.IPR)
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// WriteCSVFile writes states to path. The file is written to a temporary
// name in the same directory and renamed into place, so readers never see
// a partial file.
func WriteCSVFile(path string, states []ipr.State) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return &WriteError{Path: path, Err: fmt.Errorf("create output: %w", err)}
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
			err = &WriteError{Path: path, Err: err}
		}
	}()

	if err = WriteCSV(tmp, states); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename output: %w", err)
	}
	return nil
}

// Row is one parsed CSV row.
type Row struct {
	Energy float64
	IPR    float64
}

// ReadCSV parses output written by WriteCSV.
func ReadCSV(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(Header)

	head, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty input: %w", ErrBadHeader)
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if head[0] != Header[0] || head[1] != Header[1] {
		return nil, fmt.Errorf("got %q: %w", head, ErrBadHeader)
	}

	var rows []Row
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(rows)+1, err)
		}
		energy, err := strconv.ParseFloat(rec[0], 64)
		if err != nil {
			return nil, fmt.Errorf("row %d energy: %w", len(rows)+1, err)
		}
		value, err := strconv.ParseFloat(rec[1], 64)
		if err != nil {
			return nil, fmt.Errorf("row %d IPR: %w", len(rows)+1, err)
		}
		rows = append(rows, Row{Energy: energy, IPR: value})
	}
	return rows, nil
}
