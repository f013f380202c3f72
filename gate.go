package qsim

import (
	"math"

	"github.com/gogpu/qsim/qmath"
)

// GateKind classifies how a gate participates in a column's combined
// operation. Ordinary gates contribute a unitary matrix; the other
// kinds are recognized by tag and change the meaning of the column as
// a whole.
type GateKind int

const (
	// KindOperation is an ordinary gate contributing a unitary matrix.
	KindOperation GateKind = iota
	// KindControl conditions the column's other gates on this wire
	// being in the |1> state.
	KindControl
	// KindAntiControl conditions the column's other gates on this wire
	// being in the |0> state.
	KindAntiControl
	// KindSwapHalf marks one end of a two-wire swap. A column needs
	// exactly two of these for the swap to take effect.
	KindSwapHalf
)

// String returns the kind's name for logging.
func (k GateKind) String() string {
	switch k {
	case KindOperation:
		return "operation"
	case KindControl:
		return "control"
	case KindAntiControl:
		return "anti-control"
	case KindSwapHalf:
		return "swap-half"
	default:
		return "unknown"
	}
}

// Gate is an immutable descriptor for a single-wire gate. Gates are
// interned: the package-level gate variables are the only instances,
// so two slots hold the same gate exactly when their pointers are
// equal.
type Gate struct {
	id        int
	kind      GateKind
	name      string
	symbol    string
	timeBased bool
	matrix    func(t float64) qmath.Matrix
}

var nextGateID int

func newGate(kind GateKind, name, symbol string, timeBased bool, matrix func(t float64) qmath.Matrix) *Gate {
	nextGateID++
	return &Gate{
		id:        nextGateID,
		kind:      kind,
		name:      name,
		symbol:    symbol,
		timeBased: timeBased,
		matrix:    matrix,
	}
}

func constGate(kind GateKind, name, symbol string, m qmath.Matrix) *Gate {
	return newGate(kind, name, symbol, false, func(float64) qmath.Matrix { return m })
}

// Kind returns the gate's role within a column.
func (g *Gate) Kind() GateKind { return g.kind }

// Name returns the gate's full name, e.g. "Hadamard".
func (g *Gate) Name() string { return g.name }

// Symbol returns the short label drawn inside the gate's box.
func (g *Gate) Symbol() string { return g.symbol }

// IsTimeBased reports whether the gate's matrix varies with the
// simulation time parameter.
func (g *Gate) IsTimeBased() bool { return g.timeBased }

// IsControlKind reports whether the gate is a control or anti-control.
func (g *Gate) IsControlKind() bool {
	return g.kind == KindControl || g.kind == KindAntiControl
}

// Matrix returns the gate's 2x2 unitary at time t in [0, 1). Controls
// and swap halves return the identity; their effect comes from the
// column combining step instead.
func (g *Gate) Matrix(t float64) qmath.Matrix {
	return g.matrix(t)
}

// The built-in gate set. Identity comparisons against these variables
// are how columns recognize controls and swap halves.
var (
	GateH = constGate(KindOperation, "Hadamard", "H", qmath.Hadamard())
	GateX = constGate(KindOperation, "Pauli X", "X", qmath.PauliX())
	GateY = constGate(KindOperation, "Pauli Y", "Y", qmath.PauliY())
	GateZ = constGate(KindOperation, "Pauli Z", "Z", qmath.PauliZ())
	GateS = constGate(KindOperation, "Phase S", "S", qmath.PhaseShift(math.Pi/2))
	GateT = constGate(KindOperation, "Phase T", "T", qmath.PhaseShift(math.Pi/4))

	// GateControl and GateAntiControl condition the rest of their column.
	GateControl     = constGate(KindControl, "Control", "•", qmath.Identity(2))
	GateAntiControl = constGate(KindAntiControl, "Anti-Control", "◦", qmath.Identity(2))

	// GateSwapHalf is one end of a swap; place two in a column.
	GateSwapHalf = constGate(KindSwapHalf, "Swap", "×", qmath.Identity(2))

	// GateClock is X raised to the simulation time, sweeping from the
	// identity toward a full X flip as t goes from 0 to 1.
	GateClock = newGate(KindOperation, "Cycling X", "X^t", true, qmath.XPow)
)
