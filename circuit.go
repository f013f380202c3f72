package qsim

import (
	"fmt"
	"math"
)

// Layout constants for circuit drawing, in the same coordinate space
// as the circuit's area rectangle.
const (
	// WireLabelWidth is the left gutter holding the |0> wire labels.
	WireLabelWidth = 40.0
	// OpSpacing is the width of one column slot.
	OpSpacing = 50.0
	// GateSize is the side length of a gate's drawn box.
	GateSize = 40.0
)

// MaxWires bounds the circuit height; state vectors grow as 2^wires.
const MaxWires = 16

// Circuit is an immutable quantum circuit definition tied to the
// screen rectangle it is drawn in. Editing methods return new
// circuits and never mutate the receiver, so stale references held
// across an edit remain valid.
type Circuit struct {
	area     Rect
	numWires int
	columns  []GateColumn

	// compressed is the column drawn at half width while an insert is
	// in progress, or -1. Columns after it shift left to make room.
	compressed int
}

// NewCircuit creates an empty circuit with the given drawing area and
// wire count. A zero-wire circuit is valid and holds the scalar state.
// Panics unless 0 <= numWires <= MaxWires.
func NewCircuit(area Rect, numWires int) *Circuit {
	if numWires < 0 || numWires > MaxWires {
		panic(fmt.Sprintf("qsim: numWires %d out of range [0, %d]", numWires, MaxWires))
	}
	return &Circuit{
		area:       area,
		numWires:   numWires,
		compressed: -1,
	}
}

// WithColumns returns a copy of the circuit with the given columns.
// Panics if any column's height differs from the circuit's wire count.
func (c *Circuit) WithColumns(cols ...GateColumn) *Circuit {
	for i, col := range cols {
		if col.NumWires() != c.numWires {
			panic(fmt.Sprintf("qsim: column %d has %d wires, circuit has %d",
				i, col.NumWires(), c.numWires))
		}
	}
	d := *c
	d.columns = make([]GateColumn, len(cols))
	copy(d.columns, cols)
	return &d
}

// Area returns the circuit's drawing rectangle.
func (c *Circuit) Area() Rect { return c.area }

// NumWires returns the number of wires.
func (c *Circuit) NumWires() int { return c.numWires }

// NumColumns returns the number of columns.
func (c *Circuit) NumColumns() int { return len(c.columns) }

// Column returns the i'th column. Panics if i is out of range.
func (c *Circuit) Column(i int) GateColumn { return c.columns[i] }

// CompressedColumnIndex returns the column currently drawn at half
// width during an in-progress insert, if any.
func (c *Circuit) CompressedColumnIndex() (int, bool) {
	return c.compressed, c.compressed >= 0
}

// HasTimeBasedGates reports whether any column varies with the
// simulation time.
func (c *Circuit) HasTimeBasedGates() bool {
	for _, col := range c.columns {
		if col.HasTimeBasedGates() {
			return true
		}
	}
	return false
}

func (c *Circuit) colsLeft() float64 {
	return c.area.X + WireLabelWidth
}

// WireRect returns the full-width horizontal strip belonging to a
// wire. Panics if wire is out of range. The strips partition the
// circuit's area, so every in-area point maps to exactly one wire.
func (c *Circuit) WireRect(wire int) Rect {
	if wire < 0 || wire >= c.numWires {
		panic(fmt.Sprintf("qsim: wire %d out of range [0, %d)", wire, c.numWires))
	}
	h := c.area.H / float64(c.numWires)
	return R(c.area.X, c.area.Y+float64(wire)*h, c.area.W, h)
}

// FindWireAt returns the wire whose strip contains p, or false when p
// is outside the circuit's area.
func (c *Circuit) FindWireAt(p Point) (int, bool) {
	if c.numWires == 0 || !c.area.Contains(p) {
		return 0, false
	}
	h := c.area.H / float64(c.numWires)
	wire := int((p.Y - c.area.Y) / h)
	if wire >= c.numWires {
		wire = c.numWires - 1
	}
	return wire, true
}

// FindOpHalfColumnAt maps p to a half-column coordinate: an integral
// value k means over column k's slot, k + 0.5 means between columns k
// and k+1, and -0.5 means before the first column. The result is not
// bounded above, so pointing past the last column addresses the spot
// where a new column would go. Returns false when p is outside the
// circuit's area.
func (c *Circuit) FindOpHalfColumnAt(p Point) (float64, bool) {
	if !c.area.Contains(p) {
		return 0, false
	}
	rel := (p.X - c.colsLeft()) / OpSpacing
	half := math.Round((rel-0.5)*2) / 2
	if half < -0.5 {
		half = -0.5
	}
	return half, true
}

// FindExistingOpColumnAt returns the index of the column whose slot
// contains p, or false when p is outside the area or not over an
// existing column.
func (c *Circuit) FindExistingOpColumnAt(p Point) (int, bool) {
	if !c.area.Contains(p) {
		return 0, false
	}
	rel := (p.X - c.colsLeft()) / OpSpacing
	i := int(math.Floor(rel))
	if rel < 0 || i >= len(c.columns) {
		return 0, false
	}
	return i, true
}

// OpRect returns the slot rectangle of column i, accounting for the
// compressed column: the compressed column gets half a slot and later
// columns shift left by the other half. i may point one past the
// existing columns to address the append position.
func (c *Circuit) OpRect(i int) Rect {
	x := c.colsLeft() + float64(i)*OpSpacing
	w := OpSpacing
	if c.compressed >= 0 {
		switch {
		case i == c.compressed:
			w = OpSpacing / 2
		case i > c.compressed:
			x -= OpSpacing / 2
		}
	}
	return R(x, c.area.Y, w, c.area.H)
}

// GateRect returns the box a gate at (col, wire) is drawn in, centered
// within the intersection of the column slot and the wire strip.
func (c *Circuit) GateRect(col, wire int) Rect {
	op := c.OpRect(col)
	strip := c.WireRect(wire)
	w := math.Min(GateSize, op.W)
	h := math.Min(GateSize, strip.H)
	center := Pt(op.Center().X, strip.Center().Y)
	return R(center.X-w/2, center.Y-h/2, w, h)
}

// ModificationPoint is where a held gate block would land if dropped:
// the column index, the block's top row, and whether dropping inserts
// a fresh column at Col rather than writing into an existing one.
type ModificationPoint struct {
	Col      int
	Row      int
	IsInsert bool
}

// FindModificationIndex maps the hand's position to a modification
// point. Pointing between columns, or before the first or past the
// last, yields an insert. Pointing at an existing column whose target
// slots are occupied degrades to an insert on whichever side of the
// column center the pointer sits, so a drop never silently overwrites
// gates. Returns false when the position is outside the circuit.
func (c *Circuit) FindModificationIndex(p Point, hand Hand) (ModificationPoint, bool) {
	half, ok := c.FindOpHalfColumnAt(p)
	if !ok {
		return ModificationPoint{}, false
	}
	wire, ok := c.FindWireAt(p)
	if !ok {
		return ModificationPoint{}, false
	}

	blockLen := 1
	block, held := hand.Held()
	if held {
		blockLen = block.Len()
	}
	row := clampBlockRow(wire-hand.GrabOffset(), blockLen, c.numWires)

	col := int(math.Ceil(half))
	isInsert := half != math.Floor(half)

	if !isInsert && held && col < len(c.columns) && c.blockCollides(col, row, block) {
		isInsert = true
		if p.X > c.OpRect(col).Center().X {
			col++
		}
	}
	return ModificationPoint{Col: col, Row: row, IsInsert: isInsert}, true
}

// blockCollides reports whether dropping block at row in column col
// would land a gate on an occupied slot. Gaps in the block collide
// with nothing.
func (c *Circuit) blockCollides(col, row int, block GateBlock) bool {
	column := c.columns[col]
	for i := 0; i < block.Len(); i++ {
		if block.Gate(i) == nil {
			continue
		}
		if row+i < c.numWires && column.Gate(row+i) != nil {
			return true
		}
	}
	return false
}

// WithOpBeingAdded returns the circuit as it looks while the hand's
// held block hovers at pt: for an insert, a fresh column appears at
// pt.Col and is marked compressed; either way the block's gates are
// written into that column. Returns the receiver unchanged when the
// hand holds nothing.
func (c *Circuit) WithOpBeingAdded(pt ModificationPoint, hand Hand) *Circuit {
	block, held := hand.Held()
	if !held {
		return c
	}

	cols := make([]GateColumn, len(c.columns))
	copy(cols, c.columns)
	compressed := -1

	if pt.IsInsert {
		col := pt.Col
		if col > len(cols) {
			col = len(cols)
		}
		cols = append(cols, GateColumn{})
		copy(cols[col+1:], cols[col:])
		cols[col] = EmptyColumn(c.numWires)
		compressed = col
		pt.Col = col
	}
	for pt.Col >= len(cols) {
		cols = append(cols, EmptyColumn(c.numWires))
	}
	cols[pt.Col] = cols[pt.Col].WithGateBlockAt(pt.Row, block)

	d := *c
	d.columns = cols
	d.compressed = compressed
	return &d
}

// WithoutEmpties returns the circuit with all empty columns removed
// and any compression cleared; call it when a drag ends.
func (c *Circuit) WithoutEmpties() *Circuit {
	cols := make([]GateColumn, 0, len(c.columns))
	for _, col := range c.columns {
		if !col.IsEmpty() {
			cols = append(cols, col)
		}
	}
	d := *c
	d.columns = cols
	d.compressed = -1
	return &d
}

// TryGrab attempts to pick up the gate under the hand's position,
// returning the circuit with that gate removed and the hand holding
// it. Grabbing one half of a swap pair takes both halves as a single
// block spanning the wires between them, so the pair stays intact
// through the drag. Returns the inputs unchanged when the hand is
// busy, has no position, or is not over a gate.
func (c *Circuit) TryGrab(hand Hand) (*Circuit, Hand) {
	pos, ok := hand.Pos()
	if !ok || hand.IsBusy() {
		return c, hand
	}
	col, ok := c.FindExistingOpColumnAt(pos)
	if !ok {
		return c, hand
	}
	wire, ok := c.FindWireAt(pos)
	if !ok {
		return c, hand
	}
	g := c.columns[col].Gate(wire)
	if g == nil {
		return c, hand
	}

	top, bottom := wire, wire
	if g.Kind() == KindSwapHalf {
		if a, b, paired := c.columns[col].swapPair(); paired {
			top, bottom = a, b
		}
	}

	gates := make([]*Gate, bottom-top+1)
	remaining := make([]*Gate, c.numWires)
	for w := 0; w < c.numWires; w++ {
		remaining[w] = c.columns[col].Gate(w)
	}
	for w := top; w <= bottom; w++ {
		held := remaining[w]
		if w != wire && (held == nil || held.Kind() != KindSwapHalf) {
			continue // gap between the swap halves stays put
		}
		gates[w-top] = held
		remaining[w] = nil
	}

	cols := make([]GateColumn, len(c.columns))
	copy(cols, c.columns)
	cols[col] = GateColumn{gates: remaining}

	d := *c
	d.columns = cols
	return &d, hand.WithHeld(GateBlock{gates: gates}, wire-top)
}
