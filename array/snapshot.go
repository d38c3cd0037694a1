package array

import "github.com/sarchlab/systolic/fixed"

// Snapshot is a copy of the inspectable state of a grid, taken after a
// cycle. Cells are indexed [row][col].
type Snapshot struct {
	Dataflow Dataflow
	Counter  uint64

	// Enabled marks the cells that fired in the last cycle.
	Enabled [][]bool
	Weights [][]fixed.Value
	Down    [][]fixed.Value

	// Stored is the weight held inside each PE. It stays zero until the PE
	// fires for the first time.
	Stored [][]fixed.Value

	// Right is only set for OutputStationary grids.
	Right [][]fixed.Value

	// Broadcast holds the activation sent to each row in the last cycle and
	// Top holds the partial sum entering each column from above. Both are
	// only set for Broadcast grids.
	Broadcast []fixed.Value
	Top       []fixed.Value
}

// Size returns the side length of the grid.
func (s Snapshot) Size() int {
	return len(s.Enabled)
}

// ActiveCells lists the coordinates of the enabled cells in row-major order.
func (s Snapshot) ActiveCells() [][2]int {
	cells := make([][2]int, 0)

	for i, row := range s.Enabled {
		for j, enabled := range row {
			if enabled {
				cells = append(cells, [2]int{i, j})
			}
		}
	}

	return cells
}

// CloneMatrix deep-copies a matrix of values.
func CloneMatrix(m [][]fixed.Value) [][]fixed.Value {
	if m == nil {
		return nil
	}

	ret := make([][]fixed.Value, len(m))
	for i, row := range m {
		ret[i] = append([]fixed.Value(nil), row...)
	}

	return ret
}

// CloneFlags deep-copies a matrix of flags.
func CloneFlags(m [][]bool) [][]bool {
	ret := make([][]bool, len(m))
	for i, row := range m {
		ret[i] = append([]bool(nil), row...)
	}

	return ret
}
