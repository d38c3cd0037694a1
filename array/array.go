// Package array defines the commonly used data structures for systolic
// arrays.
package array

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/sarchlab/systolic/fixed"
)

// Dataflow defines how operands move through the array.
type Dataflow int

const (
	// OutputStationary sends a diagonal wavefront from the top-left corner.
	// Activations flow down, partial sums flow right.
	OutputStationary Dataflow = iota
	// Broadcast activates one row per cycle and gives the whole row the same
	// activation. Partial sums flow down.
	Broadcast
)

// Name returns the name of the dataflow.
func (d Dataflow) Name() string {
	switch d {
	case OutputStationary:
		return "OutputStationary"
	case Broadcast:
		return "Broadcast"
	default:
		panic("invalid dataflow")
	}
}

// Cycles returns the number of clock cycles an n by n array of the dataflow
// needs to produce a complete result.
func (d Dataflow) Cycles(n int) uint64 {
	switch d {
	case OutputStationary:
		return uint64(2*n - 1)
	case Broadcast:
		return uint64(n)
	default:
		panic("invalid dataflow")
	}
}

// ParseDataflow converts a user supplied name into a Dataflow. The short
// names "os", "vpu", "ws", "hsa" and "mvm" are accepted as well.
func ParseDataflow(name string) (Dataflow, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "outputstationary", "output-stationary", "os", "vpu":
		return OutputStationary, nil
	case "broadcast", "ws", "hsa", "mvm":
		return Broadcast, nil
	default:
		return 0, errors.Errorf("unknown dataflow %q", name)
	}
}

// A Grid is an N by N array of processing elements advanced one clock cycle
// at a time.
type Grid interface {
	Dataflow() Dataflow
	Size() int
	Width() fixed.Width

	// Clock advances the whole array by one cycle.
	Clock()

	// Reset restores the state right after construction.
	Reset()

	// Counter returns the number of cycles since the last reset.
	Counter() uint64

	// Done reports whether the result is complete.
	Done() bool

	// Result returns a copy of the output vector.
	Result() []fixed.Value

	// Snapshot returns a copy of the inspectable state.
	Snapshot() Snapshot
}
