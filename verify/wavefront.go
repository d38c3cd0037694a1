package verify

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/sarchlab/akita/v4/sim"
	"github.com/sarchlab/systolic/array"
	"github.com/sarchlab/systolic/core"
	"github.com/sarchlab/systolic/fixed"
)

// WavefrontChecker collects the snapshots a core emits after every cycle and
// checks them. Attach it with core.AcceptHook.
//
// A snapshot whose counter does not advance past the previous one marks a
// grid reset. The checker then starts over but keeps the issues found so far.
type WavefrontChecker struct {
	prev   *array.Snapshot
	fired  [][]bool
	cycles int
	issues []Issue
}

// NewWavefrontChecker creates an empty checker.
func NewWavefrontChecker() *WavefrontChecker {
	return &WavefrontChecker{}
}

// Func implements sim.Hook.
func (c *WavefrontChecker) Func(ctx sim.HookCtx) {
	if ctx.Pos != core.HookPosCycle {
		return
	}

	s, ok := ctx.Item.(array.Snapshot)
	if !ok {
		return
	}

	c.Observe(s)
}

// Observe checks one snapshot. Snapshots must arrive in cycle order.
func (c *WavefrontChecker) Observe(s array.Snapshot) {
	if c.prev != nil && s.Counter <= c.prev.Counter {
		c.restart()
	}

	if c.fired == nil {
		c.fired = lo.Times(s.Size(), func(int) []bool {
			return make([]bool, s.Size())
		})
	}

	if s.Counter == 0 {
		c.prev = &s
		return
	}

	c.cycles++
	cycle := s.Counter - 1

	c.checkEnabled(s, cycle)
	c.checkWeights(s, cycle)

	if c.prev != nil {
		c.checkDisabled(*c.prev, s, cycle)
	}

	c.prev = &s
}

func (c *WavefrontChecker) restart() {
	c.prev = nil
	c.fired = nil
	c.cycles = 0
}

// Cycles returns the number of cycles observed since the grid was last
// reset.
func (c *WavefrontChecker) Cycles() int {
	return c.cycles
}

// Issues returns the issues found so far.
func (c *WavefrontChecker) Issues() []Issue {
	return append([]Issue(nil), c.issues...)
}

func (c *WavefrontChecker) report(
	t IssueType,
	cycle uint64,
	row, col int,
	format string,
	args ...any,
) {
	c.issues = append(c.issues, Issue{
		Type:    t,
		Cycle:   cycle,
		Row:     row,
		Col:     col,
		Message: fmt.Sprintf(format, args...),
	})
}

func shouldFire(flow array.Dataflow, i, j int, cycle uint64) bool {
	switch flow {
	case array.OutputStationary:
		return uint64(i+j) == cycle
	case array.Broadcast:
		return uint64(i) == cycle
	default:
		panic("invalid dataflow")
	}
}

func front(flow array.Dataflow, i, j int) int {
	if flow == array.Broadcast {
		return i
	}

	return i + j
}

func (c *WavefrontChecker) checkEnabled(s array.Snapshot, cycle uint64) {
	fronts := make(map[int]bool)

	for i, row := range s.Enabled {
		for j, enabled := range row {
			want := shouldFire(s.Dataflow, i, j, cycle)
			if enabled != want {
				c.report(IssueWavefront, cycle, i, j,
					"enabled is %t, want %t", enabled, want)
			}

			if enabled {
				fronts[front(s.Dataflow, i, j)] = true
				c.fired[i][j] = true
			}
		}
	}

	if len(fronts) > 1 {
		c.report(IssueWavefront, cycle, -1, -1,
			"%d wavefronts active at once", len(fronts))
	}
}

func (c *WavefrontChecker) checkWeights(s array.Snapshot, cycle uint64) {
	for i := range s.Stored {
		for j, stored := range s.Stored[i] {
			if !c.fired[i][j] {
				if !stored.IsZero() {
					c.report(IssueWeight, cycle, i, j,
						"PE holds %s before firing", stored)
				}

				continue
			}

			if stored != s.Weights[i][j] {
				c.report(IssueWeight, cycle, i, j,
					"PE holds %s, weight store has %s",
					stored, s.Weights[i][j])
			}
		}
	}

	if c.prev == nil || c.prev.Weights == nil {
		return
	}

	for i := range s.Weights {
		for j, w := range s.Weights[i] {
			if w != c.prev.Weights[i][j] {
				c.report(IssueWeight, cycle, i, j,
					"weight store changed from %s to %s",
					c.prev.Weights[i][j], w)
			}
		}
	}
}

func (c *WavefrontChecker) checkDisabled(
	prev, s array.Snapshot,
	cycle uint64,
) {
	for i, row := range s.Enabled {
		for j, enabled := range row {
			if enabled {
				continue
			}

			c.checkUnchanged(prev.Stored, s.Stored, cycle, i, j, IssueWeight)
			c.checkUnchanged(prev.Down, s.Down, cycle, i, j, IssueLatch)
			c.checkUnchanged(prev.Right, s.Right, cycle, i, j, IssueLatch)
		}
	}
}

func (c *WavefrontChecker) checkUnchanged(
	before, after [][]fixed.Value,
	cycle uint64,
	i, j int,
	t IssueType,
) {
	if before == nil || after == nil {
		return
	}

	if before[i][j] != after[i][j] {
		c.report(t, cycle, i, j,
			"disabled cell changed from %s to %s", before[i][j], after[i][j])
	}
}

var _ sim.Hook = (*WavefrontChecker)(nil)
