package qmath

import "math"

// Standard single-wire operators.
//
// Each function returns a fresh 2x2 unitary so callers can treat the
// result as their own value.

// Hadamard returns the Hadamard operator.
func Hadamard() Matrix {
	return FromRows([][]complex128{
		{invSqrt2, invSqrt2},
		{invSqrt2, -invSqrt2},
	})
}

// PauliX returns the bit-flip (NOT) operator.
func PauliX() Matrix {
	return FromRows([][]complex128{
		{0, 1},
		{1, 0},
	})
}

// PauliY returns the Pauli Y operator.
func PauliY() Matrix {
	return FromRows([][]complex128{
		{0, -1i},
		{1i, 0},
	})
}

// PauliZ returns the phase-flip operator.
func PauliZ() Matrix {
	return FromRows([][]complex128{
		{1, 0},
		{0, -1},
	})
}

// PhaseShift returns the operator that leaves |0⟩ fixed and multiplies
// |1⟩ by e^(i*theta). PhaseShift(π/2) is S; PhaseShift(π/4) is T.
func PhaseShift(theta float64) Matrix {
	return FromRows([][]complex128{
		{1, 0},
		{0, phase(theta)},
	})
}

// XPow returns X raised to the power t, a continuous interpolation
// between the identity (t=0) and the NOT operator (t=1). Used by
// time-dependent gates whose exponent cycles with the simulation clock.
func XPow(t float64) Matrix {
	// X^t = e^(iπt/2) * (cos(πt/2) I - i sin(πt/2) X)
	g := phase(math.Pi * t / 2)
	c := complex(math.Cos(math.Pi*t/2), 0)
	s := complex(0, -math.Sin(math.Pi*t/2))
	return FromRows([][]complex128{
		{g * c, g * s},
		{g * s, g * c},
	})
}
