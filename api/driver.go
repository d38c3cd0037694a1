// Package api defines the driver API for systolic vector units.
package api

import (
	"log/slog"

	"github.com/pkg/errors"
	"github.com/sarchlab/akita/v4/sim"
	"github.com/sarchlab/systolic/core"
	"github.com/sarchlab/systolic/fixed"
)

// ErrNoDevice is returned by Run when no device has been registered.
var ErrNoDevice = errors.New("no device registered")

// Driver provides the interface to control a vector unit.
type Driver interface {
	// RegisterDevice registers a device to the driver. The driver hooks
	// onto the device to collect its result.
	RegisterDevice(device *core.Core)

	// Run clocks the device on the engine until its result is complete.
	Run() error

	// Collect returns the result vector of the last run.
	Collect() []fixed.Value

	// Cycles returns the number of cycles of the last run.
	Cycles() uint64

	// Reset restores the device so that the next Run replays the same
	// multiplication.
	Reset()
}

type driverImpl struct {
	name   string
	engine sim.Engine
	device *core.Core

	result []fixed.Value
	cycles uint64
}

// RegisterDevice registers a device to the driver.
func (d *driverImpl) RegisterDevice(device *core.Core) {
	d.device = device
	device.AcceptHook(d)
}

// Func collects the result when the device reports completion.
func (d *driverImpl) Func(ctx sim.HookCtx) {
	if ctx.Pos != core.HookPosDone {
		return
	}

	result, ok := ctx.Item.([]fixed.Value)
	if !ok {
		return
	}

	d.result = append([]fixed.Value(nil), result...)
	d.cycles = d.device.Grid().Counter()

	core.Trace("Collect",
		"Driver", d.name,
		"Time", float64(d.engine.CurrentTime()*1e9),
		"Cycles", d.cycles,
		"Result", d.result,
	)
}

// Run runs the device until its result is complete.
func (d *driverImpl) Run() error {
	if d.device == nil {
		return ErrNoDevice
	}

	d.device.Start()
	if err := d.engine.Run(); err != nil {
		return errors.Wrapf(err, "%s: simulation failed", d.name)
	}

	if !d.device.Finished() {
		return errors.Errorf("%s: %s stopped after %d cycles",
			d.name, d.device.Name(), d.device.Grid().Counter())
	}

	return nil
}

// Collect returns the result vector of the last run.
func (d *driverImpl) Collect() []fixed.Value {
	return append([]fixed.Value(nil), d.result...)
}

// Cycles returns the number of cycles of the last run.
func (d *driverImpl) Cycles() uint64 {
	return d.cycles
}

// Reset restores the device and forgets the last result.
func (d *driverImpl) Reset() {
	if d.device == nil {
		return
	}

	d.device.Reset()
	d.result = nil
	d.cycles = 0

	slog.Debug("Reset", "Driver", d.name, "Device", d.device.Name())
}
