package qsim

// GateBlock is a vertically contiguous run of gates moved as a unit.
// Index 0 is the topmost wire of the block; nil entries are gaps that
// do not displace whatever sits under them when the block is dropped.
type GateBlock struct {
	gates []*Gate
}

// NewGateBlock creates a block from the given gates, top to bottom.
// The slice is copied. Panics if gates is empty or all-nil.
func NewGateBlock(gates []*Gate) GateBlock {
	if len(gates) == 0 {
		panic("qsim: empty gate block")
	}
	any := false
	for _, g := range gates {
		if g != nil {
			any = true
			break
		}
	}
	if !any {
		panic("qsim: gate block with no gates")
	}
	c := make([]*Gate, len(gates))
	copy(c, gates)
	return GateBlock{gates: c}
}

// SingleGateBlock wraps one gate in a block of height 1.
func SingleGateBlock(g *Gate) GateBlock {
	return GateBlock{gates: []*Gate{g}}
}

// Len returns the block's height in wires, including gaps.
func (b GateBlock) Len() int { return len(b.gates) }

// Gate returns the gate at offset i from the top of the block, or nil
// for a gap.
func (b GateBlock) Gate(i int) *Gate { return b.gates[i] }

// Hand tracks what the user is pointing at and dragging. The zero
// value is an empty hand with no known position. Hands are immutable;
// the With* methods return modified copies.
type Hand struct {
	pos        Point
	hasPos     bool
	held       GateBlock
	hasHeld    bool
	grabOffset int
}

// EmptyHand returns a hand with no position and nothing held.
func EmptyHand() Hand { return Hand{} }

// WithPos returns a copy of the hand at position p.
func (h Hand) WithPos(p Point) Hand {
	h.pos = p
	h.hasPos = true
	return h
}

// WithoutPos returns a copy of the hand with its position cleared,
// e.g. after the pointer leaves the drawing area.
func (h Hand) WithoutPos() Hand {
	h.pos = Point{}
	h.hasPos = false
	return h
}

// Pos returns the hand's position and whether one is known.
func (h Hand) Pos() (Point, bool) {
	return h.pos, h.hasPos
}

// WithHeld returns a copy of the hand holding block. grabOffset is the
// row within the block that sits under the pointer, so dropping keeps
// the block aligned with where it was picked up.
func (h Hand) WithHeld(block GateBlock, grabOffset int) Hand {
	if grabOffset < 0 || grabOffset >= block.Len() {
		grabOffset = 0
	}
	h.held = block
	h.hasHeld = true
	h.grabOffset = grabOffset
	return h
}

// WithoutHeld returns a copy of the hand holding nothing.
func (h Hand) WithoutHeld() Hand {
	h.held = GateBlock{}
	h.hasHeld = false
	h.grabOffset = 0
	return h
}

// Held returns the held block and whether one is held.
func (h Hand) Held() (GateBlock, bool) {
	return h.held, h.hasHeld
}

// GrabOffset returns the row within the held block under the pointer.
func (h Hand) GrabOffset() int { return h.grabOffset }

// IsBusy reports whether the hand is holding a block.
func (h Hand) IsBusy() bool { return h.hasHeld }
