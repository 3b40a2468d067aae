// Package ipr computes the inverse participation ratio (IPR) of electronic
// states from projected weights.
//
// For a state (k, b) with orbital-summed weights w_i on ion i,
//
//	IPR = Σ_i w_i² / (Σ_i w_i)²
//
// A state concentrated on a single ion has IPR 1; a state spread evenly
// over N ions has IPR 1/N.
//
// States whose total weight is exactly zero have no meaningful IPR. The
// division is still performed with IEEE-754 semantics, so such states
// carry NaN. They are neither dropped nor clamped; NonFinite reports them.
//
// States are always enumerated k-point major, band minor. Energies and
// IPR slices produced here share that order, so index i of one refers to
// the same state as index i of the other until CombineAndSort pairs them.
package ipr
