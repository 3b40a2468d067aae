package vasp

import (
	"fmt"
	"strings"
)

// Spin identifies a spin channel. Values follow the usual convention of
// +1 for up and -1 for down.
type Spin int

const (
	SpinUp   Spin = 1
	SpinDown Spin = -1
)

func (s Spin) String() string {
	switch s {
	case SpinUp:
		return "up"
	case SpinDown:
		return "down"
	default:
		return fmt.Sprintf("Spin(%d)", int(s))
	}
}

// ParseSpin accepts "up"/"down" (case-insensitive) as well as "1"/"-1".
func ParseSpin(s string) (Spin, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up", "1", "+1":
		return SpinUp, nil
	case "down", "-1":
		return SpinDown, nil
	}
	return 0, fmt.Errorf("invalid spin %q: must be up or down", s)
}

// spinChannels lists channels in file order.
var spinChannels = []Spin{SpinUp, SpinDown}
