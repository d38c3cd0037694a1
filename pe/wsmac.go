package pe

import "github.com/sarchlab/systolic/fixed"

// WsMac is a weight-stationary multiply-accumulate unit. It holds one weight
// and adds the product of the weight and the incoming activation to the
// incoming partial sum.
type WsMac struct {
	weight fixed.Value
}

// NewWsMac creates a WsMac with a zero weight.
func NewWsMac(width fixed.Width) *WsMac {
	return &WsMac{weight: width.Zero()}
}

// Clock returns the activation a and the new partial sum a*weight+cin.
//
// When writeEnable is set, b replaces the stored weight before the multiply,
// so a weight is usable in the cycle it is loaded. Otherwise b is ignored.
// A disabled unit returns zeros and keeps its weight.
func (m *WsMac) Clock(
	a, b, cin fixed.Value,
	enable, writeEnable bool,
) (fixed.Value, fixed.Value) {
	if !enable {
		zero := m.weight.Width().Zero()
		return zero, zero
	}

	if writeEnable {
		m.SetWeight(b)
	}

	return a, a.MulAdd(m.weight, cin)
}

// Weight returns the stored weight. Grids keep it constant for the whole
// multiplication.
func (m *WsMac) Weight() fixed.Value {
	return m.weight
}

// SetWeight overwrites the stored weight.
func (m *WsMac) SetWeight(w fixed.Value) {
	m.weight = w
}
