// Package vpu implements vector processing units built from a square array
// of weight-stationary MAC units.
//
// Both units compute out[i] = sum_j W[i][j] * v[j] for an activation vector
// v and a weight matrix W given in row-major order. They differ in how the
// operands travel through the array:
//
//   - Vpu sends a diagonal wavefront from the top-left corner. Cell (i, j)
//     holds W[i][j] and fires on cycle i+j. Activation v[j] enters column j
//     from the top and partial sums move right, so out[i] leaves row i on
//     cycle i+N-1 and the result trickles out of the last column.
//   - Hsa fires one whole row per cycle. Cell (i, j) holds W[j][i], v[i] is
//     broadcast to row i on cycle i and partial sums move down, so the whole
//     result appears in the last row on cycle N-1.
//
// Every Clock call is a two-phase update: all enabled cells are evaluated
// from the latches of the previous cycle, then all latches are committed.
package vpu

import (
	"github.com/pkg/errors"
	"github.com/sarchlab/systolic/array"
	"github.com/sarchlab/systolic/fixed"
	"github.com/sarchlab/systolic/pe"
)

// ErrShape is returned when the inputs do not form an N-vector and an N by N
// matrix of a single valid width.
var ErrShape = errors.New("input shape does not match the array")

type grid struct {
	n       int
	width   fixed.Width
	counter uint64

	// enabled is only kept for inspection.
	enabled [][]bool

	acts, initActs       []fixed.Value
	weights, initWeights [][]fixed.Value

	units    [][]*pe.WsMac
	down     [][]fixed.Value
	nextDown [][]fixed.Value
}

func checkShape(
	acts []fixed.Value,
	weights [][]fixed.Value,
) (int, fixed.Width, error) {
	n := len(acts)
	if n == 0 {
		return 0, 0, errors.Wrap(ErrShape, "empty activation vector")
	}

	width := acts[0].Width()
	if !width.Valid() {
		return 0, 0, errors.Wrapf(ErrShape, "invalid width %d", width)
	}

	for i, a := range acts {
		if a.Width() != width {
			return 0, 0, errors.Wrapf(ErrShape,
				"activation %d has width %d, want %d", i, a.Width(), width)
		}
	}

	if len(weights) != n {
		return 0, 0, errors.Wrapf(ErrShape,
			"weights have %d rows, want %d", len(weights), n)
	}

	for i, row := range weights {
		if len(row) != n {
			return 0, 0, errors.Wrapf(ErrShape,
				"weight row %d has %d columns, want %d", i, len(row), n)
		}

		for j, w := range row {
			if w.Width() != width {
				return 0, 0, errors.Wrapf(ErrShape,
					"weight (%d, %d) has width %d, want %d",
					i, j, w.Width(), width)
			}
		}
	}

	return n, width, nil
}

func newGrid(n int, width fixed.Width) grid {
	g := grid{
		n:        n,
		width:    width,
		enabled:  make([][]bool, n),
		acts:     make([]fixed.Value, n),
		weights:  newMatrix(n, width),
		units:    make([][]*pe.WsMac, n),
		down:     newMatrix(n, width),
		nextDown: newMatrix(n, width),
	}

	for i := 0; i < n; i++ {
		g.enabled[i] = make([]bool, n)
		g.units[i] = make([]*pe.WsMac, n)
	}

	return g
}

func newMatrix(n int, width fixed.Width) [][]fixed.Value {
	m := make([][]fixed.Value, n)
	for i := range m {
		m[i] = make([]fixed.Value, n)
	}

	fillMatrix(m, width.Zero())

	return m
}

func fillMatrix(m [][]fixed.Value, v fixed.Value) {
	for _, row := range m {
		for j := range row {
			row[j] = v
		}
	}
}

// reset restores the inputs and rebuilds every PE, latch and flag.
func (g *grid) reset() {
	copy(g.acts, g.initActs)
	for i := range g.weights {
		copy(g.weights[i], g.initWeights[i])
	}

	g.counter = 0

	zero := g.width.Zero()
	for i := 0; i < g.n; i++ {
		for j := 0; j < g.n; j++ {
			g.units[i][j] = pe.NewWsMac(g.width)
			g.enabled[i][j] = false
		}
	}

	fillMatrix(g.down, zero)
	fillMatrix(g.nextDown, zero)
}

func (g *grid) done(flow array.Dataflow) bool {
	return g.counter >= flow.Cycles(g.n)
}

// Size returns the side length of the array.
func (g *grid) Size() int {
	return g.n
}

// Width returns the register width of the array.
func (g *grid) Width() fixed.Width {
	return g.width
}

// Counter returns the number of cycles since the last reset.
func (g *grid) Counter() uint64 {
	return g.counter
}

// Enabled reports whether cell (i, j) fired in the last cycle.
func (g *grid) Enabled(i, j int) bool {
	return g.enabled[i][j]
}

// DownLatch returns the value cell (i, j) last sent downwards.
func (g *grid) DownLatch(i, j int) fixed.Value {
	return g.down[i][j]
}

// Weight returns the weight stored for cell (i, j).
func (g *grid) Weight(i, j int) fixed.Value {
	return g.weights[i][j]
}

// MacValues returns the weight held inside each PE. After a complete
// multiplication it equals the weight store.
func (g *grid) MacValues() [][]fixed.Value {
	ret := make([][]fixed.Value, g.n)
	for i := range ret {
		ret[i] = make([]fixed.Value, g.n)
		for j := range ret[i] {
			ret[i][j] = g.units[i][j].Weight()
		}
	}

	return ret
}

func (g *grid) snapshot(flow array.Dataflow) array.Snapshot {
	return array.Snapshot{
		Dataflow: flow,
		Counter:  g.counter,
		Enabled:  array.CloneFlags(g.enabled),
		Weights:  array.CloneMatrix(g.weights),
		Down:     array.CloneMatrix(g.down),
		Stored:   g.MacValues(),
	}
}
