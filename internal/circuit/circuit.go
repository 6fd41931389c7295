package circuit

import (
	"math"

	"mood-canvas/internal/palette"
)

// Circuit is the fixed encoder. It holds no trainable parameters; the only
// knob is the register width.
type Circuit struct {
	wires int
}

func New(wires int) *Circuit {
	if wires < MinWires {
		wires = MinWires
	}
	if wires > MaxWires {
		wires = MaxWires
	}
	return &Circuit{wires: wires}
}

func (c *Circuit) Wires() int {
	return c.wires
}

// Encode rotates wires 0-2 by the color channels and wire 3 by the datetime
// factor, each scaled by pi, then chains CNOTs 0->1->2->3.
func (c *Circuit) Encode(color palette.Color, factor float64) []complex128 {
	reg, err := NewRegister(c.wires)
	if err != nil {
		// New already clamps the width.
		panic(err)
	}

	r, g, b := color.Unit()
	reg.RY(r*math.Pi, 0)
	reg.RY(g*math.Pi, 1)
	reg.RY(b*math.Pi, 2)
	reg.RY(factor*math.Pi, 3)

	reg.CNOT(0, 1)
	reg.CNOT(1, 2)
	reg.CNOT(2, 3)

	return reg.state
}

// Collapse buckets basis-state probabilities into thirds by index and scales
// each bucket's mass to a channel: [0, n/3) red, [n/3, 2n/3) green, the rest
// blue. A zero vector collapses to black.
func Collapse(state []complex128) palette.Color {
	n := len(state)
	total := norm(state)
	if n == 0 || total == 0 {
		return palette.Color{}
	}

	probs := make([]float64, n)
	for i, a := range state {
		probs[i] = (real(a)*real(a) + imag(a)*imag(a)) / total
	}

	first, second := n/3, 2*n/3
	return palette.FromChannels(
		channel(probs[:first]),
		channel(probs[first:second]),
		channel(probs[second:]),
	)
}

func channel(probs []float64) int {
	var sum float64
	for _, p := range probs {
		sum += p
	}
	return int(sum * 255)
}
