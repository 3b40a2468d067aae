package ipr

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/vaspipr/internal/vasp"
)

func TestShiftByReference(t *testing.T) {
	raw := []float64{-5.5, 1.25, -6, 0.75}

	shifted := ShiftByReference(raw, At(0.25))
	assert.Equal(t, []float64{-5.75, 1, -6.25, 0.5}, shifted)
	assert.Equal(t, []float64{-5.5, 1.25, -6, 0.75}, raw, "input must not be modified")

	unset := ShiftByReference(raw, Reference{})
	assert.Equal(t, raw, unset)
	unset[0] = 99
	assert.Equal(t, -5.5, raw[0], "unset reference must still return a copy")
}

func TestReference_String(t *testing.T) {
	assert.Equal(t, "none", Reference{}.String())
	assert.Equal(t, "-1.5", At(-1.5).String())
}

func TestCombineAndSort(t *testing.T) {
	energies := []float64{-5.5, 1.25, -6, 0.75}
	iprs := []float64{1, 0.375, 0.5, math.NaN()}

	states, err := CombineAndSort(energies, iprs, 2)
	require.NoError(t, err)
	require.Len(t, states, 4)

	assert.Equal(t, State{KPoint: 1, Band: 0, Energy: -6, IPR: 0.5}, states[0])
	assert.Equal(t, State{KPoint: 0, Band: 0, Energy: -5.5, IPR: 1}, states[1])
	assert.Equal(t, 0.75, states[2].Energy)
	assert.True(t, math.IsNaN(states[2].IPR))
	assert.Equal(t, State{KPoint: 0, Band: 1, Energy: 1.25, IPR: 0.375}, states[3])
}

func TestCombineAndSort_PreservesPairing(t *testing.T) {
	energies := []float64{3, 1, 2, 1, 0}
	iprs := []float64{0.3, 0.1, 0.2, 0.11, 0.0}

	states, err := CombineAndSort(energies, iprs, 0)
	require.NoError(t, err)

	for i := 1; i < len(states); i++ {
		assert.LessOrEqual(t, states[i-1].Energy, states[i].Energy)
	}
	for _, s := range states {
		// Band holds the original index when nbands is unknown.
		assert.Equal(t, energies[s.Band], s.Energy)
		assert.Equal(t, iprs[s.Band], s.IPR)
	}
	// Stable: the two states at energy 1 keep their original order.
	assert.Equal(t, 1, states[1].Band)
	assert.Equal(t, 3, states[2].Band)
}

func TestCombineAndSort_LengthMismatch(t *testing.T) {
	_, err := CombineAndSort([]float64{1, 2}, []float64{1}, 1)
	assert.ErrorIs(t, err, ErrLengthMismatch)
}

func TestEnergies_ShapeMismatch(t *testing.T) {
	levels := &vasp.Levels{NKPoints: 1, NBands: 2, Data: make([][2]float64, 2)}
	_, err := Energies(levels, 2, 2)
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestEnergies_FirstComponent(t *testing.T) {
	levels := &vasp.Levels{NKPoints: 2, NBands: 1, Data: [][2]float64{{-1, 1}, {2, 0}}}
	got, err := Energies(levels, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, []float64{-1, 2}, got)
}

func TestState_JSONNonFinite(t *testing.T) {
	states := []State{
		{KPoint: 1, Band: 1, Energy: 0.75, IPR: math.NaN()},
		{KPoint: 0, Band: 0, Energy: -5.5, IPR: math.Inf(1)},
		{KPoint: 0, Band: 1, Energy: 1.25, IPR: 0.375},
	}
	data, err := json.Marshal(states)
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"kpoint":1,"band":1,"energy":0.75,"ipr":"NaN"},
		{"kpoint":0,"band":0,"energy":-5.5,"ipr":"+Inf"},
		{"kpoint":0,"band":1,"energy":1.25,"ipr":0.375}
	]`, string(data))

	var back []State
	require.NoError(t, json.Unmarshal(data, &back))
	require.Len(t, back, 3)
	assert.True(t, math.IsNaN(back[0].IPR))
	assert.True(t, math.IsInf(back[1].IPR, 1))
	assert.Equal(t, states[2], back[2])
}
