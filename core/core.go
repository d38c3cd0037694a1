// Package core wraps a systolic grid into an akita component so that the
// grid is clocked by a simulation engine.
package core

import (
	"github.com/sarchlab/akita/v4/sim"
	"github.com/sarchlab/systolic/array"
)

// HookPosCycle marks the end of a grid cycle. The hook item is the
// array.Snapshot taken after the cycle.
var HookPosCycle = &sim.HookPos{Name: "Grid Cycle"}

// HookPosDone marks the cycle in which the result became complete. The hook
// item is the result vector.
var HookPosDone = &sim.HookPos{Name: "Grid Done"}

// Core clocks one grid per engine cycle until the grid reports completion.
type Core struct {
	*sim.TickingComponent

	grid     array.Grid
	finished bool
}

// Grid returns the grid driven by the core.
func (c *Core) Grid() array.Grid {
	return c.grid
}

// Start schedules the first cycle. The last tick of a previous run happened
// at the current time, so the next one is scheduled a cycle later.
func (c *Core) Start() {
	c.TickLater()
}

// Reset restores the grid and allows the core to run again.
func (c *Core) Reset() {
	c.grid.Reset()
	c.finished = false
}

// Finished reports whether the done hook has fired since the last reset.
func (c *Core) Finished() bool {
	return c.finished
}

// Tick runs the grid for one cycle.
func (c *Core) Tick() (madeProgress bool) {
	if c.grid.Done() {
		c.finish()
		return false
	}

	c.grid.Clock()

	snapshot := c.grid.Snapshot()
	c.InvokeHook(sim.HookCtx{
		Domain: c,
		Pos:    HookPosCycle,
		Item:   snapshot,
	})

	Trace("Cycle",
		"Core", c.Name(),
		"Time", float64(c.Engine.CurrentTime()*1e9),
		"Dataflow", snapshot.Dataflow.Name(),
		"Counter", snapshot.Counter,
		"Active", len(snapshot.ActiveCells()),
	)
	LogState(c.Name(), snapshot)

	if c.grid.Done() {
		c.finish()
	}

	return true
}

func (c *Core) finish() {
	if c.finished {
		return
	}

	c.finished = true

	result := c.grid.Result()
	c.InvokeHook(sim.HookCtx{
		Domain: c,
		Pos:    HookPosDone,
		Item:   result,
	})

	Trace("Done",
		"Core", c.Name(),
		"Time", float64(c.Engine.CurrentTime()*1e9),
		"Cycles", c.grid.Counter(),
		"Result", result,
	)
}
