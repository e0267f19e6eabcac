package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/san-kum/flighteom/internal/registry"
)

var (
	dataDir string
	specDir string
	verbose bool

	// check
	checkAll   bool
	saveReport bool
	configFile string
	tolerance  float64
	method     string
	atol       float64
	rtol       float64
	numNodes   int

	// run and live
	integrator string
	dt         float64
	duration   float64
	adaptive   bool
	stepTol    float64

	// spec
	writeSpec bool
	checkSpec bool

	// list, plot and export
	showReports bool
	maxPlots    int
	outFile     string
	svgOut      bool
	xColumn     string
	yColumn     string

	// sweep
	sweepInput  string
	sweepUnits  string
	sweepMin    float64
	sweepMax    float64
	sweepSteps  int
	sweepMetric string

	log *zap.Logger
	reg = registry.New()
)

// main registers the flighteom commands and exits with status 1 when a
// command fails.
func main() {
	rootCmd := &cobra.Command{
		Use:           "flighteom",
		Short:         "aircraft equations of motion: validation and phase integration",
		SilenceUsage:  true,
				PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l, err := newLogger(verbose)
			if err != nil {
				return err
			}
			log = l
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = log.Sync()
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".flighteom", "data directory")
	rootCmd.PersistentFlags().StringVar(&specDir, "spec-dir", "xdsm", "interface spec directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	checkCmd := &cobra.Command{
		Use:   "check [case|file]",
		Short: "validate a reference case against its component",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runCheck,
	}
	checkCmd.Flags().BoolVar(&checkAll, "all", false, "validate every built-in case")
	checkCmd.Flags().BoolVar(&saveReport, "save", false, "save the report to the data directory")
	checkCmd.Flags().StringVar(&configFile, "config", "", "case file (yaml)")
	checkCmd.Flags().Float64Var(&tolerance, "tol", 1e-6, "relative tolerance for outputs")
	checkCmd.Flags().StringVar(&method, "method", "cs", "partials method (cs or fd)")
	checkCmd.Flags().Float64Var(&atol, "atol", 1e-12, "absolute tolerance for partials")
	checkCmd.Flags().Float64Var(&rtol, "rtol", 1e-12, "relative tolerance for partials")
	checkCmd.Flags().IntVar(&numNodes, "nodes", 2, "number of nodes")

	casesCmd := &cobra.Command{
		Use:   "cases [case]",
		Short: "list built-in reference cases, or print one as yaml",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listCases,
	}

	specCmd := &cobra.Command{
		Use:   "spec [component]",
		Short: "print or check a component's interface spec",
		Args:  cobra.ExactArgs(1),
		RunE:  showSpec,
	}
	specCmd.Flags().BoolVar(&writeSpec, "write", false, "write the spec file into the spec directory")
	specCmd.Flags().BoolVar(&checkSpec, "check", false, "compare the component with its stored spec file")

	partialsCmd := &cobra.Command{
		Use:   "partials [component]",
		Short: "compare analytic partials with complex step or finite differences",
		Args:  cobra.ExactArgs(1),
		RunE:  showPartials,
	}
	partialsCmd.Flags().StringVar(&method, "method", "cs", "partials method (cs or fd)")
	partialsCmd.Flags().IntVar(&numNodes, "nodes", 2, "number of nodes")
	partialsCmd.Flags().Float64Var(&atol, "atol", 1e-12, "absolute tolerance")
	partialsCmd.Flags().Float64Var(&rtol, "rtol", 1e-12, "relative tolerance")

	runCmd := &cobra.Command{
		Use:   "run [phase]",
		Short: "integrate a flight phase and save the trajectory",
		Args:  cobra.ExactArgs(1),
		RunE:  runPhase,
	}
	phaseFlags(runCmd)
	runCmd.Flags().BoolVar(&adaptive, "adaptive", false, "adaptive step size")
	runCmd.Flags().Float64Var(&stepTol, "step-tol", 1e-6, "local error tolerance for adaptive stepping")

	liveCmd := &cobra.Command{
		Use:   "live [phase]",
		Short: "fly a phase with a live terminal view",
		Args:  cobra.ExactArgs(1),
		RunE:  livePhase,
	}
	phaseFlags(liveCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE:  listRuns,
	}
	listCmd.Flags().BoolVar(&showReports, "reports", false, "list validation reports instead of runs")

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot saved states",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&maxPlots, "max", 4, "maximum number of plots")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a run as json",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")
	exportCmd.Flags().BoolVar(&svgOut, "svg", false, "export a profile plot as svg instead of json")
	exportCmd.Flags().StringVar(&xColumn, "x", "time", "profile x axis (state label or time)")
	exportCmd.Flags().StringVar(&yColumn, "y", "altitude", "profile y axis (state label or time)")

	sweepCmd := &cobra.Command{
		Use:   "sweep [phase]",
		Short: "fly a phase across a range of one fixed input",
		Args:  cobra.ExactArgs(1),
		RunE:  runSweep,
	}
	sweepCmd.Flags().StringVar(&integrator, "integrator", "rk4", "integrator (euler, rk4, rk45)")
	sweepCmd.Flags().StringVar(&sweepInput, "input", "thrust_net_total", "fixed input to vary")
	sweepCmd.Flags().StringVar(&sweepUnits, "units", "", "units of the range (default the phase's)")
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 0, "first value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 0, "last value")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 5, "number of values")
	sweepCmd.Flags().StringVar(&sweepMetric, "best", "", "report the value minimizing this metric")
	_ = sweepCmd.MarkFlagRequired("min")
	_ = sweepCmd.MarkFlagRequired("max")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "fly a yaml sequence of phases and save each run",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	rootCmd.AddCommand(checkCmd, casesCmd, specCmd, partialsCmd, runCmd, liveCmd, sweepCmd, scenarioCmd, listCmd, plotCmd, exportCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func phaseFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&integrator, "integrator", "rk4", "integrator (euler, rk4, rk45)")
	cmd.Flags().Float64Var(&dt, "dt", 0, "timestep in s (default from phase)")
	cmd.Flags().Float64Var(&duration, "time", 0, "maximum duration in s (default from phase)")
}

// newLogger logs warnings and above as console text, or everything from
// debug up when verbose.
func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	cfg.DisableStacktrace = true
	return cfg.Build()
}
