package qsim

import (
	"math"

	"github.com/gogpu/qsim/qmath"
)

// GatePaintContext carries everything a painter needs to draw one gate
// besides the gate itself.
type GatePaintContext struct {
	Col  int
	Wire int
	// State is the state vector immediately after this gate's column.
	State qmath.Vector
	// IsHighlighted is set when the hand is empty and hovering over
	// this gate, i.e. a grab would pick it up.
	IsHighlighted bool
	// IsBeingDragged is set on the cells an in-progress drop wrote:
	// the hand's held block shown at its landing position.
	IsBeingDragged bool
}

// Painter renders circuit parts. The circuit drives the drawing order
// and geometry; implementations only rasterize what they are handed.
type Painter interface {
	// PaintWireLabel draws the |0> label in the left gutter of a wire.
	PaintWireLabel(wire int, r Rect)
	// PaintWire draws the horizontal wire line across r.
	PaintWire(wire int, r Rect)
	// PaintGate draws one gate inside r.
	PaintGate(g *Gate, r Rect, ctx GatePaintContext)
	// PaintOutputProbability draws the chance of measuring |1> on a
	// wire after the final column, at the circuit's right edge.
	PaintOutputProbability(wire int, probability float64, r Rect)
}

// Paint draws the whole circuit: wire labels and lines, every gate,
// and the per-wire output probabilities at time t. Highlighting
// follows the hand: an empty hand over a gate marks it grabbable,
// while a busy hand marks its held block's cells as being dragged.
func (c *Circuit) Paint(p Painter, hand Hand, t float64) {
	const probDisplayWidth = WireLabelWidth

	for wire := 0; wire < c.numWires; wire++ {
		strip := c.WireRect(wire)
		p.PaintWireLabel(wire, R(strip.X, strip.Y, WireLabelWidth, strip.H))
		p.PaintWire(wire, R(strip.X+WireLabelWidth, strip.Y,
			strip.W-WireLabelWidth-probDisplayWidth, strip.H))
	}

	hoverCol, hoverWire := -1, -1
	if pos, ok := hand.Pos(); ok && !hand.IsBusy() {
		if col, ok := c.FindExistingOpColumnAt(pos); ok {
			if wire, ok := c.FindWireAt(pos); ok {
				hoverCol, hoverWire = col, wire
			}
		}
	}
	dragged := c.draggedCells(hand)

	states := make([]qmath.Vector, 0, len(c.columns)+1)
	for s := range c.StatesThroughout(t) {
		states = append(states, s)
	}

	for col := 0; col < len(c.columns); col++ {
		for wire := 0; wire < c.numWires; wire++ {
			g := c.columns[col].Gate(wire)
			if g == nil {
				continue
			}
			p.PaintGate(g, c.GateRect(col, wire), GatePaintContext{
				Col:            col,
				Wire:           wire,
				State:          states[col+1],
				IsHighlighted:  col == hoverCol && wire == hoverWire,
				IsBeingDragged: dragged(col, wire),
			})
		}
	}

	probs := states[len(states)-1].WireProbabilities(c.numWires)
	for wire := 0; wire < c.numWires; wire++ {
		strip := c.WireRect(wire)
		r := R(strip.X+strip.W-probDisplayWidth, strip.Y, probDisplayWidth, strip.H)
		p.PaintOutputProbability(wire, probs[wire], r)
	}
}

// draggedCells returns a predicate marking the cells WithOpBeingAdded
// wrote for the hand's held block. An insert leaves the compressed
// column as its footprint; an in-place drop is recomputed from the
// hand's position, matching the written cells by gate identity.
func (c *Circuit) draggedCells(hand Hand) func(col, wire int) bool {
	none := func(col, wire int) bool { return false }
	block, held := hand.Held()
	if !held {
		return none
	}
	if idx, ok := c.CompressedColumnIndex(); ok {
		return func(col, wire int) bool { return col == idx }
	}

	pos, ok := hand.Pos()
	if !ok {
		return none
	}
	half, okHalf := c.FindOpHalfColumnAt(pos)
	wire, okWire := c.FindWireAt(pos)
	if !okHalf || !okWire || half != math.Floor(half) {
		return none
	}
	col := int(half)
	if col < 0 || col >= len(c.columns) {
		return none
	}
	row := clampBlockRow(wire-hand.GrabOffset(), block.Len(), c.numWires)
	return func(dc, dw int) bool {
		i := dw - row
		return dc == col && i >= 0 && i < block.Len() &&
			block.Gate(i) != nil && c.columns[dc].Gate(dw) == block.Gate(i)
	}
}
