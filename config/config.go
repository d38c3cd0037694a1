// Package config builds systolic devices from inputs or from YAML files.
package config

import (
	"github.com/pkg/errors"
	"github.com/sarchlab/akita/v4/monitoring"
	"github.com/sarchlab/akita/v4/sim"
	"github.com/sarchlab/systolic/array"
	"github.com/sarchlab/systolic/core"
	"github.com/sarchlab/systolic/fixed"
	"github.com/sarchlab/systolic/vpu"
)

// DeviceBuilder can build systolic devices.
type DeviceBuilder struct {
	engine   sim.Engine
	freq     sim.Freq
	dataflow array.Dataflow
	monitor  *monitoring.Monitor
}

// WithEngine sets the engine that drives the device simulation.
func (d DeviceBuilder) WithEngine(engine sim.Engine) DeviceBuilder {
	d.engine = engine
	return d
}

// WithFreq sets the frequency of the device.
func (d DeviceBuilder) WithFreq(freq sim.Freq) DeviceBuilder {
	d.freq = freq
	return d
}

// WithDataflow sets the dataflow of the array.
func (d DeviceBuilder) WithDataflow(dataflow array.Dataflow) DeviceBuilder {
	d.dataflow = dataflow
	return d
}

// WithMonitor sets the monitor that monitors the device.
func (d DeviceBuilder) WithMonitor(monitor *monitoring.Monitor) DeviceBuilder {
	d.monitor = monitor
	return d
}

// Build creates a device that multiplies weights by acts.
func (d DeviceBuilder) Build(
	name string,
	acts []fixed.Value,
	weights [][]fixed.Value,
) (*core.Core, error) {
	grid, err := NewGrid(d.dataflow, acts, weights)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot build %s", name)
	}

	freq := d.freq
	if freq == 0 {
		freq = 1 * sim.GHz
	}

	c := core.NewBuilder().
		WithEngine(d.engine).
		WithFreq(freq).
		WithGrid(grid).
		Build(name)

	if d.monitor != nil {
		d.monitor.RegisterComponent(c)
	}

	return c, nil
}

// NewGrid creates the grid implementing the dataflow.
func NewGrid(
	dataflow array.Dataflow,
	acts []fixed.Value,
	weights [][]fixed.Value,
) (array.Grid, error) {
	switch dataflow {
	case array.OutputStationary:
		return vpu.NewVpu(acts, weights)
	case array.Broadcast:
		return vpu.NewHsa(acts, weights)
	default:
		return nil, errors.Errorf("unsupported dataflow %d", dataflow)
	}
}
