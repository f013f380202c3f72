// Package qsim provides an interactive quantum circuit model for Go.
//
// # Overview
//
// qsim models a drag-and-drop quantum circuit editor: circuits are
// immutable grids of gate columns tied to a drawing rectangle, a Hand
// tracks what the user is pointing at or dragging, and every edit
// returns a fresh circuit. State evolution runs on the CPU through
// the qmath package, with an optional GPU compute path in director/
// built on the GoGPU ecosystem.
//
// # Quick Start
//
//	import "github.com/gogpu/qsim"
//
//	// A two-wire circuit in a 540x100 drawing area.
//	c := qsim.NewCircuit(qsim.R(0, 0, 540, 100), 2)
//
//	// A Bell pair: Hadamard on wire 0, then a controlled X.
//	c = c.WithColumns(
//		qsim.NewGateColumn([]*qsim.Gate{qsim.GateH, nil}),
//		qsim.NewGateColumn([]*qsim.Gate{qsim.GateControl, qsim.GateX}),
//	)
//
//	for state := range c.StatesThroughout(0) {
//		fmt.Println(state)
//	}
//
// # Architecture
//
// The library is organized into:
//   - Public API: Circuit, GateColumn, Gate, Hand, Painter
//   - qmath: complex matrices and state vectors
//   - director: GPU compute pipelines via gogpu/wgpu
//
// Circuits, columns, gate blocks, and hands are all immutable values;
// concurrent readers never need locks, and undo is a matter of keeping
// the previous circuit.
package qsim
