package vasp

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// Procar is a parsed PROCAR file.
type Procar struct {
	NKPoints int
	NBands   int
	NIons    int

	// Orbitals lists the orbital column labels (e.g. "s", "py", ...),
	// excluding the trailing "tot" column.
	Orbitals []string

	// Data maps each spin channel present in the file to its projections.
	Data map[Spin]*Projection

	// Energies and Occupancies are the band energies and occupations from
	// the band header lines, flattened k-major / band-minor.
	Energies    map[Spin][]float64
	Occupancies map[Spin][]float64

	// KPoints and Weights come from the first spin channel.
	KPoints [][3]float64
	Weights []float64
}

// Spins returns the spin channels in file order.
func (p *Procar) Spins() []Spin {
	var out []Spin
	for _, s := range spinChannels {
		if _, ok := p.Data[s]; ok {
			out = append(out, s)
		}
	}
	return out
}

// NOrbitals returns the number of orbital columns.
func (p *Procar) NOrbitals() int {
	return len(p.Orbitals)
}

var (
	procarHeaderRe = regexp.MustCompile(`#\s*of\s+k-points:\s*(\d+)\s+#\s*of\s+bands:\s*(\d+)\s+#\s*of\s+ions:\s*(\d+)`)
	procarKPointRe = regexp.MustCompile(`^\s*k-point\s+(\d+)\s*:(.*)$`)
	procarWeightRe = regexp.MustCompile(`weight\s*=\s*(\S+)`)
	procarBandRe   = regexp.MustCompile(`^\s*band\s+(\d+)\s*#\s*energy\s+(\S+)\s*#\s*occ\.\s*(\S+)`)
	floatRe        = regexp.MustCompile(`[-+]?(?:\d+\.\d*|\.\d+)(?:[eEdD][-+]?\d+)?`)
)

// ReadProcarFile opens and parses a PROCAR file.
func ReadProcarFile(path string) (*Procar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open procar: %w", err)
	}
	defer f.Close()

	p, err := ReadProcar(f)
	if err != nil {
		return nil, withFile(err, filepath.Base(path))
	}
	return p, nil
}

// procarReader carries the parser state across lines.
type procarReader struct {
	out *Procar

	line    int
	channel int // index into spinChannels, -1 before the first header
	proj    *Projection

	kpoint   int // current 0-based k-point, -1 if none
	band     int // current 0-based band, -1 if none
	inBlock  bool
	bandDone bool

	seenBands []int  // per channel, number of band headers read
	filled    []bool // current channel, (k, band) slots with a complete first block
	ionSeen   []bool // ion rows read in the current block
}

// ReadProcar parses PROCAR content from r.
//
// Only the first ion block of each band is read. Non-collinear runs print
// three more blocks (mx, my, mz) and LORBIT=12 adds phase factors; both are
// skipped.
func ReadProcar(r io.Reader) (*Procar, error) {
	pr := &procarReader{
		out: &Procar{
			Data:        make(map[Spin]*Projection),
			Energies:    make(map[Spin][]float64),
			Occupancies: make(map[Spin][]float64),
		},
		channel: -1,
		kpoint:  -1,
		band:    -1,
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		pr.line++
		if err := pr.handle(scanner.Text()); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, &ParseError{Line: pr.line, Msg: "read failed", Err: err}
	}

	if err := pr.finish(); err != nil {
		return nil, err
	}
	return pr.out, nil
}

func (pr *procarReader) errorf(format string, args ...any) error {
	return &ParseError{Line: pr.line, Msg: fmt.Sprintf(format, args...)}
}

func (pr *procarReader) handle(line string) error {
	if m := procarHeaderRe.FindStringSubmatch(line); m != nil {
		return pr.header(m)
	}

	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}

	switch {
	case fields[0] == "k-point":
		return pr.kpointLine(line)
	case fields[0] == "band":
		return pr.bandLine(line)
	case fields[0] == "ion":
		return pr.orbitalHeader(fields)
	case fields[0] == "tot":
		if pr.inBlock {
			return pr.closeBlock()
		}
		return nil
	case pr.inBlock:
		return pr.ionRow(fields)
	}
	return nil
}

func (pr *procarReader) header(m []string) error {
	if err := pr.requireClosedBlock(); err != nil {
		return err
	}
	nk, _ := strconv.Atoi(m[1])
	nb, _ := strconv.Atoi(m[2])
	ni, _ := strconv.Atoi(m[3])
	if nk <= 0 || nb <= 0 || ni <= 0 {
		return pr.errorf("invalid dimensions k-points=%d bands=%d ions=%d", nk, nb, ni)
	}

	if pr.channel >= 0 {
		if err := pr.closeChannel(); err != nil {
			return err
		}
		if nk != pr.out.NKPoints || nb != pr.out.NBands || ni != pr.out.NIons {
			return pr.errorf("spin channel dimensions (%d, %d, %d) differ from first channel (%d, %d, %d)",
				nk, nb, ni, pr.out.NKPoints, pr.out.NBands, pr.out.NIons)
		}
	} else {
		pr.out.NKPoints, pr.out.NBands, pr.out.NIons = nk, nb, ni
		pr.out.KPoints = make([][3]float64, nk)
		pr.out.Weights = make([]float64, nk)
	}

	pr.channel++
	if pr.channel >= len(spinChannels) {
		return pr.errorf("more than %d spin channels", len(spinChannels))
	}
	spin := spinChannels[pr.channel]
	pr.out.Energies[spin] = make([]float64, nk*nb)
	pr.out.Occupancies[spin] = make([]float64, nk*nb)
	pr.seenBands = append(pr.seenBands, 0)
	pr.filled = make([]bool, nk*nb)
	pr.proj = nil // allocated once the orbital header is known
	pr.kpoint, pr.band = -1, -1
	pr.inBlock, pr.bandDone = false, false
	return nil
}

func (pr *procarReader) kpointLine(line string) error {
	if pr.channel < 0 {
		return pr.errorf("k-point before file header")
	}
	if err := pr.requireClosedBlock(); err != nil {
		return err
	}
	m := procarKPointRe.FindStringSubmatch(line)
	if m == nil {
		return pr.errorf("malformed k-point line")
	}
	k, err := strconv.Atoi(m[1])
	if err != nil || k < 1 || k > pr.out.NKPoints {
		return pr.errorf("k-point index %q out of range 1..%d", m[1], pr.out.NKPoints)
	}
	pr.kpoint = k - 1
	pr.band = -1
	pr.inBlock, pr.bandDone = false, false

	if pr.channel > 0 {
		return nil
	}

	rest := m[2]
	var weight float64
	if wm := procarWeightRe.FindStringSubmatchIndex(rest); wm != nil {
		weight, err = parseFloat(rest[wm[2]:wm[3]])
		if err != nil {
			return pr.errorf("bad k-point weight: %v", err)
		}
		rest = rest[:wm[0]]
	}
	coords := floatRe.FindAllString(rest, -1)
	if len(coords) < 3 {
		return pr.errorf("k-point line has %d coordinates, want 3", len(coords))
	}
	for i := 0; i < 3; i++ {
		v, err := parseFloat(coords[i])
		if err != nil {
			return pr.errorf("bad k-point coordinate: %v", err)
		}
		pr.out.KPoints[pr.kpoint][i] = v
	}
	pr.out.Weights[pr.kpoint] = weight
	return nil
}

func (pr *procarReader) bandLine(line string) error {
	if pr.kpoint < 0 {
		return pr.errorf("band before k-point")
	}
	if err := pr.requireClosedBlock(); err != nil {
		return err
	}
	m := procarBandRe.FindStringSubmatch(line)
	if m == nil {
		return pr.errorf("malformed band line")
	}
	b, err := strconv.Atoi(m[1])
	if err != nil || b < 1 || b > pr.out.NBands {
		return pr.errorf("band index %q out of range 1..%d", m[1], pr.out.NBands)
	}
	energy, err := parseFloat(m[2])
	if err != nil {
		return pr.errorf("bad band energy: %v", err)
	}
	occ, err := parseFloat(m[3])
	if err != nil {
		return pr.errorf("bad band occupation: %v", err)
	}

	idx := pr.kpoint*pr.out.NBands + b - 1
	if pr.filled[idx] {
		return pr.errorf("duplicate band %d of k-point %d", b, pr.kpoint+1)
	}

	pr.band = b - 1
	pr.inBlock, pr.bandDone = false, false
	pr.seenBands[pr.channel]++

	spin := spinChannels[pr.channel]
	pr.out.Energies[spin][idx] = energy
	pr.out.Occupancies[spin][idx] = occ
	return nil
}

func (pr *procarReader) orbitalHeader(fields []string) error {
	if pr.band < 0 || pr.bandDone {
		return nil
	}
	labels := fields[1:]
	if n := len(labels); n > 0 && labels[n-1] == "tot" {
		labels = labels[:n-1]
	}
	if len(labels) == 0 {
		return pr.errorf("orbital header has no columns")
	}

	switch {
	case pr.out.Orbitals == nil:
		pr.out.Orbitals = append([]string(nil), labels...)
	case len(labels) != len(pr.out.Orbitals):
		return pr.errorf("orbital header has %d columns, earlier header had %d", len(labels), len(pr.out.Orbitals))
	}

	if pr.proj == nil {
		pr.proj = NewProjection(pr.out.NKPoints, pr.out.NBands, pr.out.NIons, len(pr.out.Orbitals))
		pr.out.Data[spinChannels[pr.channel]] = pr.proj
	}
	pr.inBlock = true
	if pr.ionSeen == nil {
		pr.ionSeen = make([]bool, pr.out.NIons)
	}
	clear(pr.ionSeen)
	return nil
}

func (pr *procarReader) ionRow(fields []string) error {
	ion, err := strconv.Atoi(fields[0])
	if err != nil {
		return pr.errorf("expected ion index, got %q", fields[0])
	}
	if ion < 1 || ion > pr.out.NIons {
		return pr.errorf("ion index %d out of range 1..%d", ion, pr.out.NIons)
	}
	if pr.ionSeen[ion-1] {
		return pr.errorf("duplicate ion %d", ion)
	}
	pr.ionSeen[ion-1] = true
	norb := len(pr.out.Orbitals)
	if len(fields)-1 < norb {
		return pr.errorf("ion row has %d values, want at least %d", len(fields)-1, norb)
	}
	for o := 0; o < norb; o++ {
		v, err := parseFloat(fields[1+o])
		if err != nil {
			return pr.errorf("bad projection value: %v", err)
		}
		pr.proj.Set(pr.kpoint, pr.band, ion-1, o, v)
	}
	return nil
}

// closeBlock ends the first projection block of the current band. Every
// ion must have a row.
func (pr *procarReader) closeBlock() error {
	for i, ok := range pr.ionSeen {
		if !ok {
			return pr.errorf("band %d of k-point %d: missing row for ion %d", pr.band+1, pr.kpoint+1, i+1)
		}
	}
	pr.inBlock = false
	pr.bandDone = true
	pr.filled[pr.kpoint*pr.out.NBands+pr.band] = true
	return nil
}

// requireClosedBlock rejects a header that interrupts a projection block
// before its "tot" row.
func (pr *procarReader) requireClosedBlock() error {
	if !pr.inBlock {
		return nil
	}
	return pr.errorf("band %d of k-point %d: projection block not closed by a tot row", pr.band+1, pr.kpoint+1)
}

// closeChannel checks that the current channel is complete.
func (pr *procarReader) closeChannel() error {
	spin := spinChannels[pr.channel]
	want := pr.out.NKPoints * pr.out.NBands
	if got := pr.seenBands[pr.channel]; got != want {
		return &ParseError{Line: pr.line, Msg: fmt.Sprintf("spin %s: read %d of %d bands", spin, got, want), Err: ErrTruncated}
	}
	if pr.proj == nil {
		return pr.errorf("spin %s: no projection blocks", spin)
	}
	for i, ok := range pr.filled {
		if !ok {
			msg := fmt.Sprintf("spin %s: band %d of k-point %d has no complete projection block",
				spin, i%pr.out.NBands+1, i/pr.out.NBands+1)
			return &ParseError{Line: pr.line, Msg: msg, Err: ErrTruncated}
		}
	}
	return nil
}

func (pr *procarReader) finish() error {
	if pr.channel < 0 {
		return &ParseError{Line: pr.line, Msg: "missing PROCAR header", Err: ErrTruncated}
	}
	return pr.closeChannel()
}

// parseFloat accepts Fortran-style exponents ("1.0D-03") in addition to
// the forms strconv understands.
func parseFloat(s string) (float64, error) {
	if strings.ContainsAny(s, "dD") {
		s = strings.NewReplacer("d", "e", "D", "e").Replace(s)
	}
	return strconv.ParseFloat(s, 64)
}
