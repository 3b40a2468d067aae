package ipr

import (
	"math"

	"github.com/roach88/vaspipr/internal/vasp"
)

// Tensor3 is a row-major (k-point, band, ion) array.
type Tensor3 struct {
	NKPoints int
	NBands   int
	NIons    int
	Data     []float64
}

// At returns the value at (k, b, ion).
func (t Tensor3) At(k, b, ion int) float64 {
	return t.Data[(k*t.NBands+b)*t.NIons+ion]
}

// Ions returns the ion slice of state (k, b). The slice aliases Data.
func (t Tensor3) Ions(k, b int) []float64 {
	off := (k*t.NBands + b) * t.NIons
	return t.Data[off : off+t.NIons]
}

// Table is a row-major (k-point, band) array.
type Table struct {
	NKPoints int
	NBands   int
	Data     []float64
}

// At returns the value at (k, b).
func (t Table) At(k, b int) float64 {
	return t.Data[k*t.NBands+b]
}

// OrbitalSum sums the projection over its orbital axis.
func OrbitalSum(p *vasp.Projection) Tensor3 {
	out := Tensor3{
		NKPoints: p.NKPoints,
		NBands:   p.NBands,
		NIons:    p.NIons,
		Data:     make([]float64, p.NKPoints*p.NBands*p.NIons),
	}
	norb := p.NOrbitals
	for i := range out.Data {
		var sum float64
		for _, v := range p.Data[i*norb : (i+1)*norb] {
			sum += v
		}
		out.Data[i] = sum
	}
	return out
}

// IonSum sums an orbital-summed tensor over its ion axis, giving the total
// weight of every state.
func IonSum(t Tensor3) Table {
	out := Table{
		NKPoints: t.NKPoints,
		NBands:   t.NBands,
		Data:     make([]float64, t.NKPoints*t.NBands),
	}
	for i := range out.Data {
		var sum float64
		for _, v := range t.Data[i*t.NIons : (i+1)*t.NIons] {
			sum += v
		}
		out.Data[i] = sum
	}
	return out
}

// Compute returns the IPR of every state of p, k-point major.
// A state with zero total weight yields NaN (0/0).
func Compute(p *vasp.Projection) []float64 {
	perIon := OrbitalSum(p)
	total := IonSum(perIon)

	iprs := make([]float64, 0, p.NKPoints*p.NBands)
	for k := 0; k < p.NKPoints; k++ {
		for b := 0; b < p.NBands; b++ {
			var num float64
			for _, w := range perIon.Ions(k, b) {
				num += w * w
			}
			den := total.At(k, b)
			iprs = append(iprs, num/(den*den))
		}
	}
	return iprs
}

// NonFinite returns the indices of NaN or infinite values.
func NonFinite(values []float64) []int {
	var idx []int
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			idx = append(idx, i)
		}
	}
	return idx
}
