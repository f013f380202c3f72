// Command qsimdemo builds a small circuit, simulates a drag-and-drop
// edit, and prints the state after every column.
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/gogpu/qsim"
	"github.com/gogpu/qsim/director"
	"github.com/gogpu/qsim/qmath"
)

func main() {
	var (
		wires   = flag.Int("wires", 2, "number of circuit wires")
		time    = flag.Float64("time", 0, "simulation time in [0, 1)")
		clock   = flag.Bool("clock", false, "append a time-dependent X^t gate")
		useGPU  = flag.Bool("gpu", false, "evolve through the GPU director round trip")
		verbose = flag.Bool("v", false, "enable debug logging")
	)
	flag.Parse()

	if *verbose {
		qsim.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	c := buildBellCircuit(*wires, *clock)

	fmt.Printf("circuit: %d wires, %d columns\n", c.NumWires(), c.NumColumns())
	if *useGPU {
		runDirector(c, *time)
		return
	}

	i := 0
	for state := range c.StatesThroughout(*time) {
		printState(i, state)
		i++
	}

	probs := c.FinalState(*time).WireProbabilities(c.NumWires())
	for wire, p := range probs {
		fmt.Printf("wire %d: P(|1>) = %.4f\n", wire, p)
	}
}

// buildBellCircuit assembles H on wire 0 followed by a controlled X,
// using the same drag-and-drop operations an interactive editor would.
func buildBellCircuit(wires int, clock bool) *qsim.Circuit {
	area := qsim.R(0, 0, 640, float64(wires)*60)
	c := qsim.NewCircuit(area, wires)

	hadamard := make([]*qsim.Gate, wires)
	hadamard[0] = qsim.GateH
	cnot := make([]*qsim.Gate, wires)
	cnot[0] = qsim.GateControl
	cnot[1] = qsim.GateX
	c = c.WithColumns(qsim.NewGateColumn(hadamard), qsim.NewGateColumn(cnot))

	if clock {
		// Drop an X^t gate after the last column via the hand, the way
		// the editor would.
		hand := qsim.EmptyHand().
			WithHeld(qsim.SingleGateBlock(qsim.GateClock), 0).
			WithPos(c.OpRect(c.NumColumns()).Center())
		pos, _ := hand.Pos()
		if pt, ok := c.FindModificationIndex(pos, hand); ok {
			c = c.WithOpBeingAdded(pt, hand).WithoutEmpties()
		}
	}
	return c
}

func runDirector(c *qsim.Circuit, t float64) {
	d, err := director.New(nil, nil, director.Config{})
	if err != nil {
		log.Fatalf("director: %v", err)
	}
	defer d.Close()

	state, err := d.FinalState(c, t)
	if err != nil {
		log.Fatalf("evolve: %v", err)
	}
	printState(c.NumColumns(), state)
}

func printState(step int, state qmath.Vector) {
	fmt.Printf("step %d:", step)
	for i, a := range state {
		fmt.Printf("  |%d>=%.3f%+.3fi", i, real(a), imag(a))
	}
	fmt.Println()
}
