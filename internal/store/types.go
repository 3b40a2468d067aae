package store

import (
	"github.com/roach88/vaspipr/internal/ipr"
	"github.com/roach88/vaspipr/internal/vasp"
)

// Run describes one stored computation.
type Run struct {
	ID           string        `json:"id"`
	Seq          int64         `json:"seq"`
	Name         string        `json:"name,omitempty"`
	ProcarPath   string        `json:"procar"`
	EigenvalPath string        `json:"eigenval"`
	Spin         vasp.Spin     `json:"spin"`
	Reference    ipr.Reference `json:"reference"`
	NKPoints     int           `json:"nkpoints"`
	NBands       int           `json:"nbands"`
	NIons        int           `json:"nions"`
	NonFinite    int           `json:"non_finite"`

	// States is the number of stored states. Filled by reads only.
	States int `json:"states"`
}
