package core

import (
	"github.com/sarchlab/akita/v4/sim"
	"github.com/sarchlab/systolic/array"
)

// Builder can create new cores.
type Builder struct {
	engine sim.Engine
	freq   sim.Freq
	grid   array.Grid
}

// NewBuilder returns a builder that clocks at 1 GHz.
func NewBuilder() Builder {
	return Builder{
		freq: 1 * sim.GHz,
	}
}

// WithEngine sets the engine.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithFreq sets the frequency of the core.
func (b Builder) WithFreq(freq sim.Freq) Builder {
	b.freq = freq
	return b
}

// WithGrid sets the grid that the core drives.
func (b Builder) WithGrid(grid array.Grid) Builder {
	b.grid = grid
	return b
}

// Build creates a core.
func (b Builder) Build(name string) *Core {
	if b.grid == nil {
		panic("core needs a grid")
	}

	c := &Core{
		grid: b.grid,
	}

	c.TickingComponent = sim.NewTickingComponent(name, b.engine, b.freq, c)

	return c
}
