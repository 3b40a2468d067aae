package ipr

import (
	"cmp"
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
)

// State is one (k-point, band) record. KPoint and Band are 0-based.
type State struct {
	KPoint int     `json:"kpoint"`
	Band   int     `json:"band"`
	Energy float64 `json:"energy"`
	IPR    float64 `json:"ipr"`
}

// CombineAndSort pairs energies[i] with iprs[i] and sorts the pairs by
// ascending energy. The sort is stable, so states with equal energy keep
// their k-point major order. nbands is used to recover the (k-point, band)
// index of each state; pass 0 if it is unknown.
func CombineAndSort(energies, iprs []float64, nbands int) ([]State, error) {
	if len(energies) != len(iprs) {
		return nil, fmt.Errorf("%d energies, %d IPR values: %w", len(energies), len(iprs), ErrLengthMismatch)
	}

	states := make([]State, len(energies))
	for i := range energies {
		s := State{Energy: energies[i], IPR: iprs[i], Band: i}
		if nbands > 0 {
			s.KPoint, s.Band = i/nbands, i%nbands
		}
		states[i] = s
	}

	slices.SortStableFunc(states, func(a, b State) int {
		return cmp.Compare(a.Energy, b.Energy)
	})
	return states, nil
}

// stateJSON mirrors State with floats that may be strings. encoding/json
// rejects NaN and Inf, which IPR values legitimately take.
type stateJSON struct {
	KPoint int             `json:"kpoint"`
	Band   int             `json:"band"`
	Energy json.RawMessage `json:"energy"`
	IPR    json.RawMessage `json:"ipr"`
}

// MarshalJSON writes non-finite values as the strings "NaN", "+Inf"
// and "-Inf".
func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(stateJSON{
		KPoint: s.KPoint,
		Band:   s.Band,
		Energy: floatJSON(s.Energy),
		IPR:    floatJSON(s.IPR),
	})
}

func (s *State) UnmarshalJSON(data []byte) error {
	var raw stateJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	energy, err := parseFloatJSON(raw.Energy)
	if err != nil {
		return fmt.Errorf("energy: %w", err)
	}
	value, err := parseFloatJSON(raw.IPR)
	if err != nil {
		return fmt.Errorf("ipr: %w", err)
	}
	*s = State{KPoint: raw.KPoint, Band: raw.Band, Energy: energy, IPR: value}
	return nil
}

func floatJSON(v float64) json.RawMessage {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return json.RawMessage(strconv.Quote(strconv.FormatFloat(v, 'g', -1, 64)))
	}
	return json.RawMessage(strconv.FormatFloat(v, 'g', -1, 64))
}

func parseFloatJSON(data json.RawMessage) (float64, error) {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return 0, err
		}
		return strconv.ParseFloat(s, 64)
	}
	var v float64
	err := json.Unmarshal(data, &v)
	return v, err
}
