package config

import (
	"log/slog"
	"os"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/sarchlab/akita/v4/sim"
	"github.com/sarchlab/systolic/array"
	"github.com/sarchlab/systolic/fixed"
	"gopkg.in/yaml.v3"
)

// Spec describes one multiplication. It is usually loaded from YAML:
//
//	width: 8
//	dataflow: broadcast
//	freq_ghz: 1
//	activations: [9, 3]
//	weights:
//	  - [3, 4]
//	  - [5, 6]
type Spec struct {
	Width       int        `yaml:"width"`
	Dataflow    string     `yaml:"dataflow"`
	FreqGHz     float64    `yaml:"freq_ghz"`
	Activations []uint64   `yaml:"activations"`
	Weights     [][]uint64 `yaml:"weights"`
}

// DefaultSpec returns the 2x2 example used when no file is given.
func DefaultSpec() Spec {
	return Spec{
		Width:       8,
		Dataflow:    array.Broadcast.Name(),
		FreqGHz:     1,
		Activations: []uint64{9, 3},
		Weights:     [][]uint64{{3, 4}, {5, 6}},
	}
}

// LoadSpec reads a spec from a YAML file.
func LoadSpec(path string) (Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Spec{}, errors.Wrapf(err, "cannot read spec %s", path)
	}

	s, err := ParseSpec(data)
	if err != nil {
		return Spec{}, errors.Wrapf(err, "invalid spec %s", path)
	}

	return s, nil
}

// ParseSpec decodes a YAML spec. Fields that are left out keep the values of
// DefaultSpec, except that activations and weights must be given together.
func ParseSpec(data []byte) (Spec, error) {
	s := DefaultSpec()

	var raw Spec
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Spec{}, errors.Wrap(err, "cannot decode spec")
	}

	if raw.Width != 0 {
		s.Width = raw.Width
	}
	if raw.Dataflow != "" {
		s.Dataflow = raw.Dataflow
	}
	if raw.FreqGHz != 0 {
		s.FreqGHz = raw.FreqGHz
	}
	if raw.Activations != nil || raw.Weights != nil {
		s.Activations = raw.Activations
		s.Weights = raw.Weights
	}

	if err := s.Validate(); err != nil {
		return Spec{}, err
	}

	return s, nil
}

// Validate checks that the spec describes a square multiplication.
func (s Spec) Validate() error {
	if s.Width < 1 || s.Width > int(fixed.MaxWidth) {
		return errors.Errorf("width must be in [1, %d], got %d",
			fixed.MaxWidth, s.Width)
	}

	if _, err := array.ParseDataflow(s.Dataflow); err != nil {
		return err
	}

	if s.FreqGHz <= 0 {
		return errors.New("freq must be > 0")
	}

	n := len(s.Activations)
	if n == 0 {
		return errors.New("activations must not be empty")
	}

	if len(s.Weights) != n {
		return errors.Errorf("weights have %d rows, want %d", len(s.Weights), n)
	}

	for i, row := range s.Weights {
		if len(row) != n {
			return errors.Errorf("weight row %d has %d columns, want %d",
				i, len(row), n)
		}
	}

	return nil
}

// FixedWidth returns the register width.
func (s Spec) FixedWidth() fixed.Width {
	return fixed.Width(s.Width)
}

// Flow returns the parsed dataflow.
func (s Spec) Flow() array.Dataflow {
	flow, err := array.ParseDataflow(s.Dataflow)
	if err != nil {
		panic(err)
	}

	return flow
}

// Freq returns the clock frequency.
func (s Spec) Freq() sim.Freq {
	return sim.Freq(s.FreqGHz) * sim.GHz
}

// Inputs converts the raw numbers into fixed-width values. Numbers that do
// not fit the width are truncated.
func (s Spec) Inputs() ([]fixed.Value, [][]fixed.Value) {
	w := s.FixedWidth()

	s.warnTruncation()

	acts := lo.Map(s.Activations, func(v uint64, _ int) fixed.Value {
		return w.Of(v)
	})
	weights := lo.Map(s.Weights, func(row []uint64, _ int) []fixed.Value {
		return w.Values(row...)
	})

	return acts, weights
}

func (s Spec) warnTruncation() {
	mask := s.FixedWidth().Mask()
	fits := func(v uint64) bool { return v&^mask == 0 }
	rowFits := func(row []uint64) bool { return lo.EveryBy(row, fits) }

	if !rowFits(s.Activations) || !lo.EveryBy(s.Weights, rowFits) {
		slog.Warn("inputs truncated to register width", "Width", s.Width)
	}
}
