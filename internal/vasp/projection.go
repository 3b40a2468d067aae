package vasp

import "fmt"

// Projection holds the projected weights of one spin channel, indexed by
// (k-point, band, ion, orbital). Data is row-major with the orbital axis
// varying fastest.
type Projection struct {
	NKPoints  int
	NBands    int
	NIons     int
	NOrbitals int
	Data      []float64
}

// NewProjection allocates a zeroed projection of the given shape.
func NewProjection(nkpoints, nbands, nions, norbitals int) *Projection {
	return &Projection{
		NKPoints:  nkpoints,
		NBands:    nbands,
		NIons:     nions,
		NOrbitals: norbitals,
		Data:      make([]float64, nkpoints*nbands*nions*norbitals),
	}
}

// Index returns the offset of (k, b, ion, orb) in Data.
// It does not check bounds; use InBounds first when indices are untrusted.
func (p *Projection) Index(k, b, ion, orb int) int {
	return ((k*p.NBands+b)*p.NIons+ion)*p.NOrbitals + orb
}

// InBounds reports whether (k, b, ion, orb) addresses an element.
func (p *Projection) InBounds(k, b, ion, orb int) bool {
	return k >= 0 && k < p.NKPoints &&
		b >= 0 && b < p.NBands &&
		ion >= 0 && ion < p.NIons &&
		orb >= 0 && orb < p.NOrbitals
}

// At returns the weight at (k, b, ion, orb). It panics on out-of-range
// indices, like a slice access.
func (p *Projection) At(k, b, ion, orb int) float64 {
	return p.Data[p.Index(k, b, ion, orb)]
}

// Set stores v at (k, b, ion, orb).
func (p *Projection) Set(k, b, ion, orb int, v float64) {
	p.Data[p.Index(k, b, ion, orb)] = v
}

// Shape returns (nkpoints, nbands, nions, norbitals).
func (p *Projection) Shape() [4]int {
	return [4]int{p.NKPoints, p.NBands, p.NIons, p.NOrbitals}
}

// Lookup is the bounds-checked counterpart of At.
func (p *Projection) Lookup(k, b, ion, orb int) (float64, error) {
	if !p.InBounds(k, b, ion, orb) {
		return 0, fmt.Errorf("(%d, %d, %d, %d) for shape %v: %w", k, b, ion, orb, p.Shape(), ErrIndexOutOfRange)
	}
	return p.At(k, b, ion, orb), nil
}
