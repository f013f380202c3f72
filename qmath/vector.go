package qmath

import (
	"fmt"
	"math"
	"math/cmplx"
)

// Vector is a complex amplitude vector over basis states.
// A vector for n wires has length 1<<n; wire 0 is the least
// significant bit of a basis-state index.
type Vector []complex128

// ZeroState returns the |0...0⟩ state over numWires wires: the
// numWires-fold tensor power of the single-qubit |0⟩ column vector.
// ZeroState(0) is the scalar state [1].
func ZeroState(numWires int) Vector {
	if numWires < 0 {
		panic(fmt.Sprintf("qmath: negative wire count %d", numWires))
	}
	v := make(Vector, 1<<numWires)
	v[0] = 1
	return v
}

// Clone returns a copy of v.
func (v Vector) Clone() Vector {
	out := make(Vector, len(v))
	copy(out, v)
	return out
}

// Norm returns the Euclidean norm of v.
func (v Vector) Norm() float64 {
	sum := 0.0
	for _, a := range v {
		sum += real(a)*real(a) + imag(a)*imag(a)
	}
	return math.Sqrt(sum)
}

// ApproxEqual reports whether v and o have the same length and all
// amplitudes within eps of each other.
func (v Vector) ApproxEqual(o Vector, eps float64) bool {
	if len(v) != len(o) {
		return false
	}
	for i := range v {
		if cmplx.Abs(v[i]-o[i]) > eps {
			return false
		}
	}
	return true
}

// WireProbabilities returns, for each of numWires wires, the probability
// of measuring that wire as 1.
func (v Vector) WireProbabilities(numWires int) []float64 {
	probs := make([]float64, numWires)
	for i, a := range v {
		p := real(a)*real(a) + imag(a)*imag(a)
		if p == 0 {
			continue
		}
		for w := 0; w < numWires; w++ {
			if i&(1<<w) != 0 {
				probs[w] += p
			}
		}
	}
	return probs
}

// ApplySingleWire applies a 2x2 operator to the target wire in place,
// restricted to basis states matching controlValue under controlMask.
// States outside the control subspace are left untouched.
func (v Vector) ApplySingleWire(op Matrix, target int, controlMask, controlValue int) {
	if op.rows != 2 || op.cols != 2 {
		panic(fmt.Sprintf("qmath: single-wire operator must be 2x2, got %dx%d", op.rows, op.cols))
	}
	a, b := op.data[0], op.data[1]
	c, d := op.data[2], op.data[3]
	bit := 1 << target
	for i := range v {
		if i&bit != 0 {
			continue
		}
		j := i | bit
		// Both halves of the pair share all non-target bits, so one
		// control check covers both.
		if i&controlMask != controlValue&controlMask {
			continue
		}
		v0, v1 := v[i], v[j]
		v[i] = a*v0 + b*v1
		v[j] = c*v0 + d*v1
	}
}

// ApplySwap exchanges two wires in place, restricted to the control
// subspace described by controlMask and controlValue.
func (v Vector) ApplySwap(wireA, wireB, controlMask, controlValue int) {
	if wireA == wireB {
		return
	}
	bitA := 1 << wireA
	bitB := 1 << wireB
	for i := range v {
		// Visit each affected pair once: A set, B clear.
		if i&bitA == 0 || i&bitB != 0 {
			continue
		}
		if i&controlMask != controlValue&controlMask {
			continue
		}
		j := (i &^ bitA) | bitB
		v[i], v[j] = v[j], v[i]
	}
}
