package qsim

import (
	"strconv"
	"strings"

	"github.com/gogpu/qsim/internal/matcache"
	"github.com/gogpu/qsim/qmath"
)

// GateColumn is one vertical slice of a circuit: at most one gate per
// wire, all acting during the same time step. Columns are immutable;
// editing methods return new columns.
type GateColumn struct {
	gates []*Gate
}

// EmptyColumn returns a column of numWires empty slots.
func EmptyColumn(numWires int) GateColumn {
	return GateColumn{gates: make([]*Gate, numWires)}
}

// NewGateColumn creates a column from the given per-wire gates. Nil
// entries are empty slots. The slice is copied.
func NewGateColumn(gates []*Gate) GateColumn {
	c := make([]*Gate, len(gates))
	copy(c, gates)
	return GateColumn{gates: c}
}

// NumWires returns the column's height.
func (c GateColumn) NumWires() int { return len(c.gates) }

// Gate returns the gate on the given wire, or nil if the slot is
// empty. Panics if wire is out of range.
func (c GateColumn) Gate(wire int) *Gate {
	return c.gates[wire]
}

// IsEmpty reports whether every slot in the column is empty.
func (c GateColumn) IsEmpty() bool {
	for _, g := range c.gates {
		if g != nil {
			return false
		}
	}
	return true
}

// HasTimeBasedGates reports whether any gate in the column varies with
// the simulation time.
func (c GateColumn) HasTimeBasedGates() bool {
	for _, g := range c.gates {
		if g != nil && g.IsTimeBased() {
			return true
		}
	}
	return false
}

// WithGateBlockAt returns a copy of the column with block written in
// starting at the given top row. The row is clamped so the whole block
// fits on the column's wires. Gaps in the block leave the underlying
// slots untouched.
func (c GateColumn) WithGateBlockAt(row int, block GateBlock) GateColumn {
	row = clampBlockRow(row, block.Len(), len(c.gates))
	gates := make([]*Gate, len(c.gates))
	copy(gates, c.gates)
	for i := 0; i < block.Len(); i++ {
		if g := block.Gate(i); g != nil && row+i < len(gates) {
			gates[row+i] = g
		}
	}
	return GateColumn{gates: gates}
}

func clampBlockRow(row, blockLen, numWires int) int {
	if row > numWires-blockLen {
		row = numWires - blockLen
	}
	if row < 0 {
		row = 0
	}
	return row
}

// controlMaskValue derives the column's control condition: mask has a
// bit set for each control wire, value has the bit set when that wire
// must read |1> (a plain control) and clear for an anti-control.
func (c GateColumn) controlMaskValue() (mask, value int) {
	for wire, g := range c.gates {
		if g == nil {
			continue
		}
		switch g.Kind() {
		case KindControl:
			mask |= 1 << wire
			value |= 1 << wire
		case KindAntiControl:
			mask |= 1 << wire
		}
	}
	return mask, value
}

// swapPair returns the wires of the column's two swap halves. ok is
// false unless exactly two are present; an unpaired half has no
// effect.
func (c GateColumn) swapPair() (a, b int, ok bool) {
	a, b = -1, -1
	n := 0
	for wire, g := range c.gates {
		if g != nil && g.Kind() == KindSwapHalf {
			n++
			if a < 0 {
				a = wire
			} else {
				b = wire
			}
		}
	}
	return a, b, n == 2
}

// Unitary returns the column's combined operation on the full
// 2^numWires state space at time t: each ordinary gate lifted to its
// wire, the swap pair if present, all conditioned on the column's
// controls. Time-independent columns are memoized.
func (c GateColumn) Unitary(t float64) qmath.Matrix {
	if c.HasTimeBasedGates() {
		return c.unitary(t)
	}
	return unitaryCache.GetOrCreate(c.cacheKey(), func() qmath.Matrix {
		return c.unitary(0)
	})
}

func (c GateColumn) unitary(t float64) qmath.Matrix {
	n := len(c.gates)
	mask, value := c.controlMaskValue()
	u := qmath.Identity(1 << n)
	for wire, g := range c.gates {
		if g == nil || g.Kind() != KindOperation {
			continue
		}
		lifted := qmath.ControlledExpand(g.Matrix(t), []int{wire}, n, mask, value)
		u = lifted.Mul(u)
	}
	if a, b, ok := c.swapPair(); ok {
		lifted := qmath.ControlledExpand(qmath.SwapMatrix(), []int{a, b}, n, mask, value)
		u = lifted.Mul(u)
	}
	return u
}

// Apply advances v in place by the column's combined operation at time
// t, without materializing the full matrix.
func (c GateColumn) Apply(v qmath.Vector, t float64) {
	mask, value := c.controlMaskValue()
	for wire, g := range c.gates {
		if g == nil || g.Kind() != KindOperation {
			continue
		}
		v.ApplySingleWire(g.Matrix(t), wire, mask, value)
	}
	if a, b, ok := c.swapPair(); ok {
		v.ApplySwap(a, b, mask, value)
	}
}

// unitaryCache memoizes combined column operations keyed by gate
// layout. Columns repeat constantly while a circuit is being edited
// and redrawn, so the same few matrices get requested over and over.
var unitaryCache = matcache.New[qmath.Matrix](256)

func (c GateColumn) cacheKey() string {
	var sb strings.Builder
	sb.WriteString(strconv.Itoa(len(c.gates)))
	for _, g := range c.gates {
		sb.WriteByte(':')
		if g != nil {
			sb.WriteString(strconv.Itoa(g.id))
		}
	}
	return sb.String()
}
