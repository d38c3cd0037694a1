package vpu

import (
	"github.com/sarchlab/systolic/array"
	"github.com/sarchlab/systolic/fixed"
)

// Hsa is a vector processing unit with the dataflow of an HSA array in MVM
// mode: weights stay in the PEs, a[i] is broadcast to row i on cycle i while
// the other rows idle, and partial sums flow from top to bottom.
//
// A single row with a feedback latch would be enough for MVM, but each PE
// would then need storage for a weight per row. Keeping the full grid makes
// the unit an HSA array fixed to MVM mode.
type Hsa struct {
	grid

	// broadcast and top only exist for inspection. top is always zero
	// because the first row starts from a zero partial sum.
	broadcast []fixed.Value
	top       []fixed.Value
}

// NewHsa creates an Hsa that multiplies weights by acts. The weights are
// stored transposed so that row i of the array holds column i of weights.
func NewHsa(acts []fixed.Value, weights [][]fixed.Value) (*Hsa, error) {
	n, width, err := checkShape(acts, weights)
	if err != nil {
		return nil, err
	}

	h := &Hsa{
		grid:      newGrid(n, width),
		broadcast: make([]fixed.Value, n),
		top:       make([]fixed.Value, n),
	}
	h.initActs = append([]fixed.Value(nil), acts...)
	h.initWeights = newMatrix(n, width)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			h.initWeights[i][j] = weights[j][i]
		}
	}

	h.Reset()

	return h, nil
}

// Dataflow returns array.Broadcast.
func (h *Hsa) Dataflow() array.Dataflow {
	return array.Broadcast
}

// Reset restores the state right after construction.
func (h *Hsa) Reset() {
	h.grid.reset()

	for i := 0; i < h.n; i++ {
		h.top[i] = h.width.Zero()
		h.broadcast[i] = h.acts[i]
	}
}

func (h *Hsa) fires(i int) bool {
	return uint64(i) == h.counter
}

// Clock runs the row selected by the counter.
func (h *Hsa) Clock() {
	zero := h.width.Zero()

	for i := 0; i < h.n; i++ {
		enable := h.fires(i)
		if !enable {
			h.broadcast[i] = zero
		}

		for j := 0; j < h.n; j++ {
			h.enabled[i][j] = enable
			if !enable {
				continue
			}

			cin := zero
			if i > 0 {
				cin = h.down[i-1][j]
			}

			// The whole row consumes the activation at once, so the
			// pass-through output is dropped.
			_, h.nextDown[i][j] = h.units[i][j].Clock(
				h.acts[i], h.weights[i][j], cin, true, true)

			h.top[j] = zero
		}

		if enable {
			h.broadcast[i] = h.acts[i]
		}
	}

	for i := 0; i < h.n; i++ {
		if !h.fires(i) {
			continue
		}

		copy(h.down[i], h.nextDown[i])
	}

	h.counter++
}

// Done reports whether the last row has fired.
func (h *Hsa) Done() bool {
	return h.done(array.Broadcast)
}

// Broadcast returns the activation sent to row i in the last cycle.
func (h *Hsa) Broadcast(i int) fixed.Value {
	return h.broadcast[i]
}

// Result returns the partial sums in the last row. All components become
// final together on cycle N-1.
func (h *Hsa) Result() []fixed.Value {
	return append([]fixed.Value(nil), h.down[h.n-1]...)
}

// Snapshot returns a copy of the inspectable state.
func (h *Hsa) Snapshot() array.Snapshot {
	s := h.snapshot(array.Broadcast)
	s.Broadcast = append([]fixed.Value(nil), h.broadcast...)
	s.Top = append([]fixed.Value(nil), h.top...)

	return s
}

var (
	_ array.Grid = (*Vpu)(nil)
	_ array.Grid = (*Hsa)(nil)
)
