package vpu

import (
	"github.com/sarchlab/systolic/array"
	"github.com/sarchlab/systolic/fixed"
)

// Vpu is a vector processing unit driven by a diagonal wavefront.
type Vpu struct {
	grid

	right     [][]fixed.Value
	nextRight [][]fixed.Value
}

// NewVpu creates a Vpu that multiplies weights by acts.
func NewVpu(acts []fixed.Value, weights [][]fixed.Value) (*Vpu, error) {
	n, width, err := checkShape(acts, weights)
	if err != nil {
		return nil, err
	}

	v := &Vpu{
		grid:      newGrid(n, width),
		right:     newMatrix(n, width),
		nextRight: newMatrix(n, width),
	}
	v.initActs = append([]fixed.Value(nil), acts...)
	v.initWeights = array.CloneMatrix(weights)

	v.Reset()

	return v, nil
}

// Dataflow returns array.OutputStationary.
func (v *Vpu) Dataflow() array.Dataflow {
	return array.OutputStationary
}

// Reset restores the state right after construction.
func (v *Vpu) Reset() {
	v.grid.reset()

	zero := v.width.Zero()
	fillMatrix(v.right, zero)
	fillMatrix(v.nextRight, zero)
}

func (v *Vpu) fires(i, j int) bool {
	return uint64(i+j) == v.counter
}

// Clock advances the wavefront by one diagonal.
func (v *Vpu) Clock() {
	zero := v.width.Zero()

	for i := 0; i < v.n; i++ {
		for j := 0; j < v.n; j++ {
			enable := v.fires(i, j)
			v.enabled[i][j] = enable
			if !enable {
				continue
			}

			cin := zero
			if j > 0 {
				cin = v.right[i][j-1]
			}

			a := v.acts[j]
			if i > 0 {
				a = v.down[i-1][j]
			}

			// The weight store would need a read port per row; each
			// row is read at most once per cycle.
			v.nextDown[i][j], v.nextRight[i][j] = v.units[i][j].Clock(
				a, v.weights[i][j], cin, true, true)
		}
	}

	for i := 0; i < v.n; i++ {
		for j := 0; j < v.n; j++ {
			if v.fires(i, j) {
				v.down[i][j] = v.nextDown[i][j]
				v.right[i][j] = v.nextRight[i][j]
			}
		}
	}

	v.counter++
}

// Done reports whether the last cell has fired.
func (v *Vpu) Done() bool {
	return v.done(array.OutputStationary)
}

// RightLatch returns the partial sum cell (i, j) last sent to the right.
func (v *Vpu) RightLatch(i, j int) fixed.Value {
	return v.right[i][j]
}

// Result returns the partial sums that left the last column. Component i is
// final once cycle i+N-1 has run.
func (v *Vpu) Result() []fixed.Value {
	ret := make([]fixed.Value, v.n)
	for i := range ret {
		ret[i] = v.right[i][v.n-1]
	}

	return ret
}

// Snapshot returns a copy of the inspectable state.
func (v *Vpu) Snapshot() array.Snapshot {
	s := v.snapshot(array.OutputStationary)
	s.Right = array.CloneMatrix(v.right)

	return s
}
