package qsim

import (
	"iter"

	"github.com/gogpu/qsim/qmath"
)

// MakeInputState returns the circuit's initial state: every wire in
// |0>, i.e. amplitude 1 on basis state zero.
func (c *Circuit) MakeInputState() qmath.Vector {
	return qmath.ZeroState(c.numWires)
}

// StatesThroughout yields the state after each column at time t,
// starting with the input state itself: NumColumns()+1 states in all.
// The scan is lazy; breaking out early skips the remaining columns.
// Yielded vectors are snapshots the caller may keep or modify.
func (c *Circuit) StatesThroughout(t float64) iter.Seq[qmath.Vector] {
	return func(yield func(qmath.Vector) bool) {
		state := c.MakeInputState()
		if !yield(state.Clone()) {
			return
		}
		for _, col := range c.columns {
			col.Apply(state, t)
			if !yield(state.Clone()) {
				return
			}
		}
	}
}

// FinalState returns the state after every column at time t.
func (c *Circuit) FinalState(t float64) qmath.Vector {
	state := c.MakeInputState()
	for _, col := range c.columns {
		col.Apply(state, t)
	}
	return state
}
