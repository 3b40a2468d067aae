package ipr

import (
	"fmt"

	"github.com/roach88/vaspipr/internal/vasp"
)

// Reference is an optional energy zero, typically the Fermi level.
// The zero value means "report raw energies".
type Reference struct {
	Value float64 `json:"value"`
	Set   bool    `json:"set"`
}

// At returns a reference set to v.
func At(v float64) Reference {
	return Reference{Value: v, Set: true}
}

func (r Reference) String() string {
	if !r.Set {
		return "none"
	}
	return fmt.Sprintf("%g", r.Value)
}

// Energies returns the energy of every state in levels, k-point major.
// nkpoints and nbands are the projection's shape and must match levels.
func Energies(levels *vasp.Levels, nkpoints, nbands int) ([]float64, error) {
	if levels.NKPoints != nkpoints || levels.NBands != nbands {
		return nil, fmt.Errorf("eigenvalues have %d k-points x %d bands, projections have %d x %d: %w",
			levels.NKPoints, levels.NBands, nkpoints, nbands, ErrShapeMismatch)
	}
	energies := make([]float64, 0, nkpoints*nbands)
	for k := 0; k < nkpoints; k++ {
		for b := 0; b < nbands; b++ {
			energies = append(energies, levels.Energy(k, b))
		}
	}
	return energies, nil
}

// ShiftByReference subtracts ref from every energy. With an unset
// reference the energies are copied unchanged. The input is never modified.
func ShiftByReference(energies []float64, ref Reference) []float64 {
	out := make([]float64, len(energies))
	if !ref.Set {
		copy(out, energies)
		return out
	}
	for i, e := range energies {
		out[i] = e - ref.Value
	}
	return out
}
