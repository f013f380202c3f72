// Package qmath provides the complex linear algebra used by the circuit
// simulator: dense complex matrices, amplitude vectors, tensor products,
// and controlled expansion of small operators into the full state space.
//
// Conventions:
//   - Wire 0 is the least significant bit of a basis-state index.
//   - Matrices are dense, row-major complex128.
//   - Amplitude vectors over n wires have length 1<<n.
//
// The package favors value semantics: operations return new values except
// for the explicitly in-place Apply* fast paths on Vector, which exist so
// state evolution does not materialize a 2^n x 2^n matrix for every column.
package qmath
