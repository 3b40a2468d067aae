package vasp

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Levels holds (energy, occupation) pairs of one spin channel indexed by
// (k-point, band).
type Levels struct {
	NKPoints int
	NBands   int
	Data     [][2]float64
}

// At returns the (energy, occupation) pair of a state.
func (l *Levels) At(k, b int) [2]float64 {
	return l.Data[k*l.NBands+b]
}

// Energy returns the energy component of a state.
func (l *Levels) Energy(k, b int) float64 {
	return l.At(k, b)[0]
}

// Eigenval is a parsed EIGENVAL file.
type Eigenval struct {
	NIons    int
	ISpin    int
	NElect   float64
	NKPoints int
	NBands   int
	KPoints  [][3]float64
	Weights  []float64

	Eigenvalues map[Spin]*Levels
}

// Spins returns the spin channels in file order.
func (e *Eigenval) Spins() []Spin {
	return spinChannels[:e.ISpin]
}

// ReadEigenvalFile opens and parses an EIGENVAL file.
func ReadEigenvalFile(path string) (*Eigenval, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open eigenval: %w", err)
	}
	defer f.Close()

	e, err := ReadEigenval(f)
	if err != nil {
		return nil, withFile(err, filepath.Base(path))
	}
	return e, nil
}

// lineReader yields lines with their 1-based numbers.
type lineReader struct {
	scanner *bufio.Scanner
	line    int
}

func (lr *lineReader) next() (string, bool) {
	if !lr.scanner.Scan() {
		return "", false
	}
	lr.line++
	return lr.scanner.Text(), true
}

// nextFields skips blank lines and returns the fields of the next one.
func (lr *lineReader) nextFields() ([]string, bool) {
	for {
		text, ok := lr.next()
		if !ok {
			return nil, false
		}
		if f := strings.Fields(text); len(f) > 0 {
			return f, true
		}
	}
}

func (lr *lineReader) errorf(format string, args ...any) error {
	return &ParseError{Line: lr.line, Msg: fmt.Sprintf(format, args...)}
}

func (lr *lineReader) truncated(what string) error {
	if err := lr.scanner.Err(); err != nil {
		return &ParseError{Line: lr.line, Msg: "read failed", Err: err}
	}
	return &ParseError{Line: lr.line, Msg: "missing " + what, Err: ErrTruncated}
}

// ReadEigenval parses EIGENVAL content from r.
//
// Layout: the first line ends with ISPIN, lines 2-5 are ignored, line 6
// holds "NELECT NKPOINTS NBANDS". Each k-point block is a line of
// "kx ky kz weight" followed by NBANDS rows of
// "index energy [energy_down] [occ] [occ_down]".
func ReadEigenval(r io.Reader) (*Eigenval, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lr := &lineReader{scanner: scanner}

	first, ok := lr.next()
	if !ok {
		return nil, lr.truncated("header")
	}
	head := strings.Fields(first)
	if len(head) < 2 {
		return nil, lr.errorf("header line has %d fields, want at least 2", len(head))
	}
	nions, err := strconv.Atoi(head[0])
	if err != nil {
		return nil, lr.errorf("bad ion count %q", head[0])
	}
	ispin, err := strconv.Atoi(head[len(head)-1])
	if err != nil || (ispin != 1 && ispin != 2) {
		return nil, lr.errorf("ISPIN must be 1 or 2, got %q", head[len(head)-1])
	}

	for i := 0; i < 4; i++ {
		if _, ok := lr.next(); !ok {
			return nil, lr.truncated("header")
		}
	}

	dims, ok := lr.nextFields()
	if !ok {
		return nil, lr.truncated("dimensions line")
	}
	if len(dims) < 3 {
		return nil, lr.errorf("dimensions line has %d fields, want 3", len(dims))
	}
	nelect, err := parseFloat(dims[0])
	if err != nil {
		return nil, lr.errorf("bad electron count %q", dims[0])
	}
	nk, err1 := strconv.Atoi(dims[1])
	nb, err2 := strconv.Atoi(dims[2])
	if err1 != nil || err2 != nil || nk <= 0 || nb <= 0 {
		return nil, lr.errorf("bad dimensions %q %q", dims[1], dims[2])
	}

	out := &Eigenval{
		NIons:       nions,
		ISpin:       ispin,
		NElect:      nelect,
		NKPoints:    nk,
		NBands:      nb,
		KPoints:     make([][3]float64, nk),
		Weights:     make([]float64, nk),
		Eigenvalues: make(map[Spin]*Levels, ispin),
	}
	for _, s := range out.Spins() {
		out.Eigenvalues[s] = &Levels{NKPoints: nk, NBands: nb, Data: make([][2]float64, nk*nb)}
	}

	for k := 0; k < nk; k++ {
		kf, ok := lr.nextFields()
		if !ok {
			return nil, lr.truncated(fmt.Sprintf("k-point %d", k+1))
		}
		if len(kf) < 4 {
			return nil, lr.errorf("k-point line has %d fields, want 4", len(kf))
		}
		for i := 0; i < 3; i++ {
			if out.KPoints[k][i], err = parseFloat(kf[i]); err != nil {
				return nil, lr.errorf("bad k-point coordinate %q", kf[i])
			}
		}
		if out.Weights[k], err = parseFloat(kf[3]); err != nil {
			return nil, lr.errorf("bad k-point weight %q", kf[3])
		}

		for b := 0; b < nb; b++ {
			bf, ok := lr.nextFields()
			if !ok {
				return nil, lr.truncated(fmt.Sprintf("band %d of k-point %d", b+1, k+1))
			}
			if err := out.setBand(k, b, bf); err != nil {
				return nil, lr.errorf("%v", err)
			}
		}
	}

	return out, nil
}

// setBand stores one band row. Occupations are optional (older VASP
// versions omit them) and default to zero.
func (e *Eigenval) setBand(k, b int, fields []string) error {
	idx, err := strconv.Atoi(fields[0])
	if err != nil || idx != b+1 {
		return fmt.Errorf("expected band index %d, got %q", b+1, fields[0])
	}
	values := make([]float64, 0, len(fields)-1)
	for _, f := range fields[1:] {
		v, err := parseFloat(f)
		if err != nil {
			return fmt.Errorf("bad value %q in band %d", f, b+1)
		}
		values = append(values, v)
	}
	if len(values) < e.ISpin {
		return fmt.Errorf("band %d has %d values, want at least %d", b+1, len(values), e.ISpin)
	}

	for i, s := range e.Spins() {
		var occ float64
		if j := e.ISpin + i; j < len(values) {
			occ = values[j]
		}
		e.Eigenvalues[s].Data[k*e.NBands+b] = [2]float64{values[i], occ}
	}
	return nil
}
