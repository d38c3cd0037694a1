// Command systolic runs one matrix-vector multiplication on a simulated
// systolic vector unit, printing the grid after every cycle and verifying
// the result.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/sarchlab/akita/v4/monitoring"
	"github.com/sarchlab/akita/v4/sim"
	"github.com/sarchlab/systolic/api"
	"github.com/sarchlab/systolic/array"
	"github.com/sarchlab/systolic/config"
	"github.com/sarchlab/systolic/core"
	"github.com/sarchlab/systolic/fixed"
	"github.com/sarchlab/systolic/util/valgen"
	"github.com/sarchlab/systolic/verify"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/tebeka/atexit"
)

type options struct {
	configPath string
	dataflow   string
	width      int
	random     int
	max        uint64
	seed       int64
	quiet      bool
	trace      bool
	monitor    bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		atexit.Exit(1)
	}

	atexit.Exit(0)
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:          "systolic",
		Short:        "Simulate a systolic vector unit cycle by cycle",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.OutOrStdout(), opts, cmd.Flags())
		},
	}

	bindFlags(cmd.Flags(), opts)

	return cmd
}

func bindFlags(flags *pflag.FlagSet, opts *options) {
	flags.StringVarP(&opts.configPath, "config", "c", "",
		"YAML file describing the multiplication")
	flags.StringVarP(&opts.dataflow, "dataflow", "d", "broadcast",
		"dataflow: broadcast (hsa) or outputstationary (vpu)")
	flags.IntVarP(&opts.width, "width", "w", 8, "register width in bits")
	flags.IntVarP(&opts.random, "random", "n", 0,
		"use random inputs of the given size")
	flags.Uint64Var(&opts.max, "max", 9, "largest random value, 0 for any")
	flags.Int64Var(&opts.seed, "seed", 1, "seed for random inputs")
	flags.BoolVarP(&opts.quiet, "quiet", "q", false,
		"only print the verification report")
	flags.BoolVar(&opts.trace, "trace", false, "log every cycle")
	flags.BoolVar(&opts.monitor, "monitor", false,
		"serve the akita monitor while simulating")
}

func loadSpec(opts *options, flags *pflag.FlagSet) (config.Spec, error) {
	spec := config.DefaultSpec()
	if opts.configPath != "" {
		var err error
		spec, err = config.LoadSpec(opts.configPath)
		if err != nil {
			return config.Spec{}, err
		}
	}

	if opts.configPath == "" || flags.Changed("dataflow") {
		spec.Dataflow = opts.dataflow
	}
	if flags.Changed("width") {
		spec.Width = opts.width
	}

	if opts.random > 0 {
		if spec.Width < 1 || spec.Width > int(fixed.MaxWidth) {
			return config.Spec{}, errors.Errorf("invalid width %d", spec.Width)
		}

		gen := valgen.MakeRandomGen(opts.seed, spec.FixedWidth(), opts.max)
		raw := func(v fixed.Value, _ int) uint64 { return v.Uint64() }

		spec.Activations = lo.Map(valgen.Vector(gen, opts.random), raw)
		spec.Weights = lo.Map(valgen.Matrix(gen, opts.random),
			func(row []fixed.Value, _ int) []uint64 {
				return lo.Map(row, raw)
			})
	}

	return spec, spec.Validate()
}

type statePrinter struct {
	w io.Writer
}

func (p statePrinter) Func(ctx sim.HookCtx) {
	if ctx.Pos != core.HookPosCycle {
		return
	}

	if s, ok := ctx.Item.(array.Snapshot); ok {
		fmt.Fprintf(p.w, "Clock cycle #%d\n", s.Counter)
		core.PrintState(p.w, s)
	}
}

func run(w io.Writer, opts *options, flags *pflag.FlagSet) error {
	level := slog.LevelWarn
	if opts.trace {
		level = core.LevelTrace
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr,
		&slog.HandlerOptions{Level: level})))

	spec, err := loadSpec(opts, flags)
	if err != nil {
		return err
	}

	engine := sim.NewSerialEngine()

	var monitor *monitoring.Monitor
	if opts.monitor {
		monitor = monitoring.NewMonitor()
		monitor.RegisterEngine(engine)
	}

	acts, weights := spec.Inputs()

	device, err := config.DeviceBuilder{}.
		WithEngine(engine).
		WithFreq(spec.Freq()).
		WithDataflow(spec.Flow()).
		WithMonitor(monitor).
		Build("Device", acts, weights)
	if err != nil {
		return err
	}

	checker := verify.NewWavefrontChecker()
	device.AcceptHook(checker)

	if !opts.quiet {
		fmt.Fprintln(w, "Init")
		core.PrintState(w, device.Grid().Snapshot())
		device.AcceptHook(statePrinter{w: w})
	}

	driver := api.DriverBuilder{}.
		WithEngine(engine).
		Build("Driver")
	driver.RegisterDevice(device)

	if monitor != nil {
		monitor.StartServer()
	}

	if err := driver.Run(); err != nil {
		return err
	}

	report := verify.NewReport(device.Grid(), checker, acts, weights)
	report.WriteReport(w)

	if !report.OK() {
		return errors.Errorf("verification found %d issues", len(report.Issues))
	}

	return nil
}
