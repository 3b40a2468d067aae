package ipr

import (
	"fmt"
	"log/slog"

	"github.com/roach88/vaspipr/internal/vasp"
)

// Info summarises the dimensions of a PROCAR file.
type Info struct {
	Spins     []vasp.Spin `json:"spins"`
	NKPoints  int         `json:"nkpoints"`
	NBands    int         `json:"nbands"`
	NIons     int         `json:"nions"`
	NOrbitals int         `json:"norbitals"`
	Orbitals  []string    `json:"orbitals"`
}

// Result is the output of one IPR computation.
type Result struct {
	Spin      vasp.Spin
	Reference Reference
	States    []State // sorted by energy

	// NonFinite holds the (unsorted, k-point major) indices of states whose
	// IPR is NaN or infinite.
	NonFinite []int
}

// Calculator pairs parsed projection and eigenvalue data.
type Calculator struct {
	procar   *vasp.Procar
	eigenval *vasp.Eigenval
}

// New returns a calculator over already parsed data. eigenval may be nil,
// in which case only Info, Item and IPRs are usable.
func New(procar *vasp.Procar, eigenval *vasp.Eigenval) *Calculator {
	return &Calculator{procar: procar, eigenval: eigenval}
}

// Load parses both files and returns a calculator.
func Load(procarPath, eigenvalPath string) (*Calculator, error) {
	slog.Debug("reading procar", "path", procarPath)
	procar, err := vasp.ReadProcarFile(procarPath)
	if err != nil {
		return nil, err
	}
	slog.Debug("reading eigenval", "path", eigenvalPath)
	eigenval, err := vasp.ReadEigenvalFile(eigenvalPath)
	if err != nil {
		return nil, err
	}
	return New(procar, eigenval), nil
}

// Info describes the loaded PROCAR.
func (c *Calculator) Info() Info {
	return Info{
		Spins:     c.procar.Spins(),
		NKPoints:  c.procar.NKPoints,
		NBands:    c.procar.NBands,
		NIons:     c.procar.NIons,
		NOrbitals: c.procar.NOrbitals(),
		Orbitals:  c.procar.Orbitals,
	}
}

func (c *Calculator) projection(spin vasp.Spin) (*vasp.Projection, error) {
	p, ok := c.procar.Data[spin]
	if !ok {
		return nil, fmt.Errorf("procar spin %s: %w", spin, ErrNoSpin)
	}
	return p, nil
}

// Item returns a single projected weight. Indices are 0-based.
func (c *Calculator) Item(spin vasp.Spin, k, b, ion, orb int) (float64, error) {
	p, err := c.projection(spin)
	if err != nil {
		return 0, err
	}
	return p.Lookup(k, b, ion, orb)
}

// IPRs returns the IPR of every state of one spin channel, k-point major.
func (c *Calculator) IPRs(spin vasp.Spin) ([]float64, error) {
	p, err := c.projection(spin)
	if err != nil {
		return nil, err
	}
	return Compute(p), nil
}

// Energies returns the energy of every state of one spin channel,
// k-point major, taken from EIGENVAL.
func (c *Calculator) Energies(spin vasp.Spin) ([]float64, error) {
	if c.eigenval == nil {
		return nil, fmt.Errorf("no eigenvalue data loaded")
	}
	levels, ok := c.eigenval.Eigenvalues[spin]
	if !ok {
		return nil, fmt.Errorf("eigenval spin %s: %w", spin, ErrNoSpin)
	}
	return Energies(levels, c.procar.NKPoints, c.procar.NBands)
}

// States computes energies and IPRs for spin, shifts energies by ref and
// returns the states sorted by energy.
func (c *Calculator) States(spin vasp.Spin, ref Reference) (*Result, error) {
	iprs, err := c.IPRs(spin)
	if err != nil {
		return nil, err
	}
	energies, err := c.Energies(spin)
	if err != nil {
		return nil, err
	}
	energies = ShiftByReference(energies, ref)

	states, err := CombineAndSort(energies, iprs, c.procar.NBands)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Spin:      spin,
		Reference: ref,
		States:    states,
		NonFinite: NonFinite(iprs),
	}
	if len(res.NonFinite) > 0 {
		slog.Warn("states with zero total weight have non-finite IPR",
			"spin", spin, "non_finite", len(res.NonFinite))
	}
	return res, nil
}
