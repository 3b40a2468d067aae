// Package vasp reads the VASP output files needed to compute inverse
// participation ratios.
//
// Two formats are supported:
//   - PROCAR: orbital- and ion-resolved projections of every band at every
//     k-point, one block per spin channel.
//   - EIGENVAL: band energies and occupations per k-point.
//
// All indices exposed by this package are 0-based, while the files
// themselves count from 1.
//
// Readers are strict: any malformed or truncated input returns a
// *ParseError naming the file and line. Callers never receive a partially
// filled structure.
package vasp
