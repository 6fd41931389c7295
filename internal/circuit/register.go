// Package circuit simulates the fixed rotation/entanglement circuit that mixes
// a mood color with the datetime factor, and collapses the resulting state
// back into a color.
package circuit

import (
	"fmt"
	"math"
)

const (
	// MinWires is the number of wires the encoding touches.
	MinWires = 4
	// MaxWires bounds the dense state vector to 1024 amplitudes.
	MaxWires = 10
)

// Register is a dense state vector over a fixed number of wires. Wire 0 is
// the most significant bit of the basis index.
type Register struct {
	wires int
	state []complex128
}

// NewRegister returns a register prepared in |0...0>.
func NewRegister(wires int) (*Register, error) {
	if wires < 1 || wires > MaxWires {
		return nil, fmt.Errorf("register width %d out of range [1, %d]", wires, MaxWires)
	}

	state := make([]complex128, 1<<wires)
	state[0] = 1
	return &Register{wires: wires, state: state}, nil
}

func (r *Register) Wires() int {
	return r.wires
}

// State returns a copy of the amplitudes.
func (r *Register) State() []complex128 {
	out := make([]complex128, len(r.state))
	copy(out, r.state)
	return out
}

func (r *Register) mask(wire int) int {
	return 1 << (r.wires - 1 - wire)
}

func (r *Register) checkWire(wire int) {
	if wire < 0 || wire >= r.wires {
		panic(fmt.Sprintf("wire %d out of range for %d-wire register", wire, r.wires))
	}
}

// RY rotates a single wire about the Y axis by theta.
func (r *Register) RY(theta float64, wire int) {
	r.checkWire(wire)

	c := complex(math.Cos(theta/2), 0)
	s := complex(math.Sin(theta/2), 0)
	m := r.mask(wire)

	for i := range r.state {
		if i&m != 0 {
			continue
		}
		j := i | m
		a0, a1 := r.state[i], r.state[j]
		r.state[i] = c*a0 - s*a1
		r.state[j] = s*a0 + c*a1
	}
}

// CNOT flips target on every basis state where control is set.
func (r *Register) CNOT(control, target int) {
	r.checkWire(control)
	r.checkWire(target)
	if control == target {
		panic("CNOT control and target must differ")
	}

	cm, tm := r.mask(control), r.mask(target)
	for i := range r.state {
		if i&cm == 0 || i&tm != 0 {
			continue
		}
		j := i | tm
		r.state[i], r.state[j] = r.state[j], r.state[i]
	}
}

// Norm is the sum of squared amplitude magnitudes.
func (r *Register) Norm() float64 {
	return norm(r.state)
}

func norm(state []complex128) float64 {
	var total float64
	for _, a := range state {
		total += real(a)*real(a) + imag(a)*imag(a)
	}
	return total
}
