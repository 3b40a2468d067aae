package ipr

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/vaspipr/internal/vasp"
)

// projectionFromIons builds a single-orbital projection with one state
// per row of weights.
func projectionFromIons(rows ...[]float64) *vasp.Projection {
	p := vasp.NewProjection(1, len(rows), len(rows[0]), 1)
	for b, row := range rows {
		for ion, w := range row {
			p.Set(0, b, ion, 0, w)
		}
	}
	return p
}

func randomProjection(r *rand.Rand, nk, nb, ni, no int) *vasp.Projection {
	p := vasp.NewProjection(nk, nb, ni, no)
	for i := range p.Data {
		p.Data[i] = r.Float64()
	}
	return p
}

func TestOrbitalSum(t *testing.T) {
	p := vasp.NewProjection(1, 1, 2, 3)
	p.Set(0, 0, 0, 0, 0.5)
	p.Set(0, 0, 0, 2, 0.25)
	p.Set(0, 0, 1, 1, 0.125)

	got := OrbitalSum(p)
	assert.Equal(t, []float64{0.75, 0.125}, got.Data)
	assert.Equal(t, 0.125, got.At(0, 0, 1))
}

func TestIonSum_EqualsJointSum(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	p := randomProjection(r, 3, 4, 5, 9)

	total := IonSum(OrbitalSum(p))
	require.Len(t, total.Data, 3*4)

	for k := 0; k < p.NKPoints; k++ {
		for b := 0; b < p.NBands; b++ {
			var joint float64
			for ion := 0; ion < p.NIons; ion++ {
				for orb := 0; orb < p.NOrbitals; orb++ {
					joint += p.At(k, b, ion, orb)
				}
			}
			assert.InDelta(t, joint, total.At(k, b), 1e-12, "state (%d, %d)", k, b)
		}
	}
}

func TestCompute_Examples(t *testing.T) {
	tests := []struct {
		name    string
		weights []float64
		want    float64
	}{
		{name: "delocalized", weights: []float64{0.2, 0.2, 0.2, 0.2, 0.2}, want: 0.2},
		{name: "localized", weights: []float64{1, 0, 0, 0, 0}, want: 1},
		{name: "two ions", weights: []float64{0.5, 0.5, 0, 0, 0}, want: 0.5},
		{name: "unnormalised", weights: []float64{3, 0, 0, 0, 0}, want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compute(projectionFromIons(tt.weights))
			require.Len(t, got, 1)
			assert.InDelta(t, tt.want, got[0], 1e-12)
		})
	}
}

func TestCompute_ZeroWeightIsNaN(t *testing.T) {
	got := Compute(projectionFromIons([]float64{0, 0, 0}, []float64{0, 1, 0}))
	require.Len(t, got, 2)
	assert.True(t, math.IsNaN(got[0]))
	assert.Equal(t, 1.0, got[1])
	assert.Equal(t, []int{0}, NonFinite(got))
}

func TestCompute_Bounds(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 11))
	p := randomProjection(r, 4, 6, 8, 3)

	got := Compute(p)
	require.Len(t, got, 4*6)
	for i, v := range got {
		assert.False(t, math.IsNaN(v) || math.IsInf(v, 0), "state %d", i)
		assert.GreaterOrEqual(t, v, 1.0/float64(p.NIons)-1e-12, "state %d", i)
		assert.LessOrEqual(t, v, 1.0+1e-12, "state %d", i)
	}
}

func TestCompute_KPointMajorOrder(t *testing.T) {
	p := vasp.NewProjection(2, 2, 2, 1)
	// (k=1, b=0) is the only fully localised state.
	for k := 0; k < 2; k++ {
		for b := 0; b < 2; b++ {
			p.Set(k, b, 0, 0, 1)
			p.Set(k, b, 1, 0, 1)
		}
	}
	p.Set(1, 0, 1, 0, 0)

	assert.Equal(t, []float64{0.5, 0.5, 1, 0.5}, Compute(p))
}

func TestNonFinite(t *testing.T) {
	values := []float64{1, math.NaN(), math.Inf(1), 0.5, math.Inf(-1)}
	assert.Equal(t, []int{1, 2, 4}, NonFinite(values))
	assert.Nil(t, NonFinite([]float64{0.1, 0.2}))
}
