// Package pe defines the processing elements that make up a systolic array.
package pe

import "github.com/sarchlab/systolic/fixed"

// Mac is an output-stationary multiply-accumulate unit. The running sum is
// kept inside the unit while the operands pass through to the neighbors.
type Mac struct {
	value fixed.Value
}

// NewMac creates a Mac with a zero accumulator.
func NewMac(width fixed.Width) *Mac {
	return &Mac{value: width.Zero()}
}

// Clock accumulates a*b and returns the operands unchanged. A disabled unit
// returns zeros and keeps its accumulator.
func (m *Mac) Clock(a, b fixed.Value, enable bool) (fixed.Value, fixed.Value) {
	if !enable {
		zero := m.value.Width().Zero()
		return zero, zero
	}

	m.value = a.MulAdd(b, m.value)

	return a, b
}

// Value returns the accumulated sum.
func (m *Mac) Value() fixed.Value {
	return m.value
}
