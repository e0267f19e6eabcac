package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/flighteom/internal/export"
	"github.com/san-kum/flighteom/internal/mission"
	"github.com/san-kum/flighteom/internal/sim"
	"github.com/san-kum/flighteom/internal/storage"
	"github.com/san-kum/flighteom/internal/tui"
	"github.com/san-kum/flighteom/internal/viz"
)

// phaseSetup resolves the phase, integrator and simulation settings for run
// and live. Flags given on the command line override the phase defaults.
func phaseSetup(cmd *cobra.Command, name string) (*flightPlan, error) {
	def, err := reg.GetPhase(name)
	if err != nil {
		return nil, fmt.Errorf("%w (phases: %v)", err, reg.ListPhases())
	}
	integ, err := reg.GetIntegrator(integrator)
	if err != nil {
		return nil, fmt.Errorf("%w (integrators: %v)", err, reg.ListIntegrators())
	}

	phase, x0, err := def.Build(log)
	if err != nil {
		return nil, err
	}
	cfg, err := def.Config(phase, x0)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("dt") {
		cfg.Dt = dt
	}
	if cmd.Flags().Changed("time") {
		cfg.Duration = duration
	}
	if cmd.Flags().Changed("adaptive") {
		cfg.Adaptive = adaptive
	}
	if cmd.Flags().Changed("step-tol") {
		cfg.Tolerance = stepTol
	}
	return &flightPlan{def: def, phase: phase, x0: x0, integ: integ, cfg: cfg}, nil
}

type flightPlan struct {
	def   *mission.Definition
	phase *mission.Phase
	x0    sim.State
	integ sim.Integrator
	cfg   sim.Config
}

func runPhase(cmd *cobra.Command, args []string) error {
	plan, err := phaseSetup(cmd, args[0])
	if err != nil {
		return err
	}
	def, cfg := plan.def, &plan.cfg

	store := storage.New(dataDir)
	if err := store.Init(); err != nil {
		return err
	}

	fmt.Printf("flying %s (%s, dt=%g, up to %gs)\n", def.Name, integrator, cfg.Dt, cfg.Duration)

	flight, err := mission.Fly(cmd.Context(), def, plan.integ, cfg, log)
	if err != nil {
		return err
	}
	res := flight.Result

	meta := storage.RunMetadata{
		Phase:      def.Name,
		Dt:         cfg.Dt,
		Duration:   cfg.Duration,
		Adaptive:   cfg.Adaptive,
		Integrator: integrator,
		Labels:     flight.Phase.Labels(),
		Units:      flight.Phase.Units(),
	}
	runID, err := store.Save(meta, res)
	if err != nil {
		return err
	}

	t := 0.0
	if n := len(res.Times); n > 0 {
		t = res.Times[n-1]
	}
	fmt.Print(viz.RenderFlight(def.Name, flight.Phase.Labels(), flight.Phase.Units(), res.Final(), t, res.Stopped, res.Metrics))
	for _, e := range res.Errors {
		fmt.Println(viz.StatusFail.Render("  " + e.Error()))
	}
	if n := flight.Phase.Failures(); n > 0 {
		log.Warn("model evaluations failed", zap.String("phase", def.Name), zap.Int("count", n))
	}
	fmt.Printf("\nrun saved: %s (%d steps)\n", runID, res.StepsTaken)
	return nil
}

func livePhase(cmd *cobra.Command, args []string) error {
	plan, err := phaseSetup(cmd, args[0])
	if err != nil {
		return err
	}
	return tui.RunLive(plan.def, plan.phase, plan.x0, plan.integ, plan.cfg)
}

func listRuns(cmd *cobra.Command, args []string) error {
	store := storage.New(dataDir)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)

	if showReports {
		reports, err := store.ListReports()
		if err != nil {
			return err
		}
		if len(reports) == 0 {
			fmt.Println("no saved reports")
			return nil
		}
		fmt.Fprintln(w, "ID\tCREATED\tCASES\tFAILED")
		for _, r := range reports {
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\n", r.ID, r.Created.Format("2006-01-02 15:04"), len(r.Cases), r.Failed())
		}
		return w.Flush()
	}

	runs, err := store.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no saved runs")
		return nil
	}
	fmt.Fprintln(w, "ID\tPHASE\tINTEGRATOR\tSTEPS\tTARGET\tTIME")
	for _, r := range runs {
		reached := "no"
		if r.Stopped {
			reached = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n",
			r.ID, r.Phase, r.Integrator, r.Steps, reached, r.Timestamp.Format("2006-01-02 15:04"))
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	store := storage.New(dataDir)
	meta, err := store.Load(args[0])
	if err != nil {
		return err
	}
	states, _, err := store.LoadStates(args[0])
	if err != nil {
		return err
	}
	if len(states) == 0 {
		return fmt.Errorf("run %s has no states", args[0])
	}

	fmt.Println(viz.Title.Render(fmt.Sprintf("%s  %s", meta.Phase, meta.ID)))
	fmt.Print(viz.PlotStates(states, meta.Labels, meta.Units, maxPlots, 80, 10))
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	store := storage.New(dataDir)

	w := io.Writer(os.Stdout)
	if outFile != "" {
		f, err := os.Create(outFile)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	if svgOut {
		meta, err := store.Load(args[0])
		if err != nil {
			return err
		}
		states, times, err := store.LoadStates(args[0])
		if err != nil {
			return err
		}
		pts, err := export.Profile(times, states, meta.Labels, xColumn, yColumn)
		if err != nil {
			return err
		}
		svg := export.ProfileSVG(pts, 800, 400, xColumn, yColumn, "#00ff88")
		if svg == "" {
			return fmt.Errorf("run %s has too few states to plot", args[0])
		}
		if _, err := io.WriteString(w, svg); err != nil {
			return err
		}
	} else if err := store.Export(w, args[0]); err != nil {
		return err
	}

	if outFile != "" {
		fmt.Fprintf(os.Stderr, "exported %s to %s\n", args[0], outFile)
	}
	return nil
}
