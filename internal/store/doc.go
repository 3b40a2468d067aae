// Package store provides SQLite-backed storage for computed IPR runs.
//
// A run records the inputs of one computation (PROCAR and EIGENVAL paths,
// spin channel, reference energy, dimensions) together with its states in
// energy-sorted order, so results can be listed and exported again without
// re-reading the VASP files.
//
// # Ordering
//
//   - Runs are ordered by seq, a logical counter assigned at insert time.
//   - States are ordered by pos, their index in the sorted output.
//
// # Non-finite values
//
// SQLite has no NaN: binding NaN stores NULL. Energies and IPR values are
// therefore nullable and NULL is read back as NaN. Infinities are stored
// as-is.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity (cascading deletes)
package store
