package main

import (
	"fmt"
	"math"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/flighteom/internal/storage"
	"github.com/san-kum/flighteom/internal/sweep"
	"github.com/san-kum/flighteom/internal/viz"
)

func runSweep(cmd *cobra.Command, args []string) error {
	s := &sweep.Sweep{
		Phase:      args[0],
		Integrator: integrator,
		Input:      sweepInput,
		Units:      sweepUnits,
		Min:        sweepMin,
		Max:        sweepMax,
		Steps:      sweepSteps,
		Workers:    4,
	}
	points, err := sweep.Run(cmd.Context(), reg, s, log)
	if err != nil {
		return err
	}

	def, err := reg.GetPhase(args[0])
	if err != nil {
		return err
	}
	timeTo := "time_to_" + def.Target.State

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tTARGET\t%s\tFINAL T\n", sweepInput, timeTo)
	for _, p := range points {
		if p.Err != nil {
			fmt.Fprintf(w, "%g\t%s\t\t\n", p.Value, viz.StatusFail.Render(p.Err.Error()))
			continue
		}
		reached := "no"
		if p.Reached {
			reached = "yes"
		}
		fmt.Fprintf(w, "%g\t%s\t%s\t%.2f\n", p.Value, reached, formatMetric(p.Metrics[timeTo]), p.Time)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if sweepMetric != "" {
		best, ok := sweep.Best(points, sweepMetric)
		if !ok {
			return fmt.Errorf("no point produced a finite %s", sweepMetric)
		}
		fmt.Printf("\nbest %s=%g (%s=%s)\n", sweepInput, best.Value, sweepMetric, formatMetric(best.Metrics[sweepMetric]))
	}
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := sweep.LoadScenario(args[0])
	if err != nil {
		return err
	}

	store := storage.New(dataDir)
	if err := store.Init(); err != nil {
		return err
	}

	fmt.Println(viz.Title.Render(sc.Name))
	if sc.Description != "" {
		fmt.Println(viz.Subtle.Render(sc.Description))
	}

	flights, err := sweep.RunScenario(cmd.Context(), reg, sc, log)
	for i, f := range flights {
		step := sc.Steps[i]
		name := step.Integrator
		if name == "" {
			name = "rk4"
		}
		dtUsed, durUsed := step.Dt, step.Duration
		if def, derr := reg.GetPhase(step.Phase); derr == nil {
			if dtUsed == 0 {
				dtUsed = def.Dt
			}
			if durUsed == 0 {
				durUsed = def.Duration
			}
		}
		res := f.Result
		id, serr := store.Save(storage.RunMetadata{
			Phase:      f.Phase.Name(),
			Dt:         dtUsed,
			Duration:   durUsed,
			Adaptive:   step.Adaptive,
			Integrator: name,
			Labels:     f.Phase.Labels(),
			Units:      f.Phase.Units(),
		}, res)
		if serr != nil {
			return serr
		}

		t := 0.0
		if n := len(res.Times); n > 0 {
			t = res.Times[n-1]
		}
		fmt.Print(viz.RenderFlight(f.Phase.Name(), f.Phase.Labels(), f.Phase.Units(), res.Final(), t, res.Stopped, res.Metrics))
		fmt.Println(viz.Subtle.Render("  run " + id))
	}
	return err
}

func formatMetric(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "-"
	}
	return fmt.Sprintf("%.2f", v)
}
