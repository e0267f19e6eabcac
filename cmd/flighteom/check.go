package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/flighteom/internal/config"
	"github.com/san-kum/flighteom/internal/eom"
	"github.com/san-kum/flighteom/internal/ifspec"
	"github.com/san-kum/flighteom/internal/storage"
	"github.com/san-kum/flighteom/internal/validation"
	"github.com/san-kum/flighteom/internal/viz"
)

var errCheckFailed = errors.New("validation failed")

func runCheck(cmd *cobra.Command, args []string) error {
	cases, err := selectCases(args)
	if err != nil {
		return err
	}
	for _, c := range cases {
		applyOverrides(cmd, c)
	}

	runner := validation.NewRunner(reg, validation.WithLogger(log), validation.WithSpecDir(specDir))
	rep, err := runner.RunAll(cmd.Context(), cases)
	if err != nil {
		return err
	}

	fmt.Print(viz.RenderReport(rep))

	if saveReport {
		store := storage.New(dataDir)
		if err := store.Init(); err != nil {
			return err
		}
		if err := store.SaveReport(rep); err != nil {
			return err
		}
		fmt.Printf("\nreport saved: %s\n", rep.ID)
	}

	if !rep.Passed() {
		return fmt.Errorf("%w: %d of %d cases", errCheckFailed, rep.Failed(), len(rep.Cases))
	}
	return nil
}

// selectCases resolves the cases to check: every preset with --all, a case
// file from --config or the argument, or a preset by name.
func selectCases(args []string) ([]*config.Case, error) {
	if checkAll {
		var cases []*config.Case
		for _, name := range config.ListPresets() {
			cases = append(cases, config.GetPreset(name))
		}
		return cases, nil
	}

	name := configFile
	if name == "" && len(args) > 0 {
		name = args[0]
	}
	if name == "" {
		return nil, fmt.Errorf("specify a case or file, or use --all (cases: %v)", config.ListPresets())
	}

	if c := config.GetPreset(name); c != nil {
		return []*config.Case{c}, nil
	}
	c, err := config.Load(name)
	if err != nil {
		return nil, fmt.Errorf("load case %s: %w", name, err)
	}
	log.Debug("loaded case file", zap.String("path", name), zap.String("case", c.Title()))
	return []*config.Case{c}, nil
}

// applyOverrides sets any tolerance flags given on the command line.
func applyOverrides(cmd *cobra.Command, c *config.Case) {
	if cmd.Flags().Changed("tol") {
		c.Tolerance = tolerance
	}
	if cmd.Flags().Changed("method") {
		c.Partials.Method = method
	}
	if cmd.Flags().Changed("atol") {
		c.Partials.Atol = atol
	}
	if cmd.Flags().Changed("rtol") {
		c.Partials.Rtol = rtol
	}
	if cmd.Flags().Changed("nodes") && numNodes != c.NumNodes {
		c.NumNodes = numNodes
		resize(c.Inputs, numNodes)
		resize(c.Expected, numNodes)
	}
}

// resize repeats the first node of per-node arrays to n nodes.
func resize(vals map[string]config.Value, n int) {
	for name, v := range vals {
		if len(v.Value) <= 1 {
			continue
		}
		out := make([]float64, n)
		for i := range out {
			out[i] = v.Value[0]
		}
		vals[name] = config.Value{Value: out, Units: v.Units}
	}
}

func listCases(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		c := config.GetPreset(args[0])
		if c == nil {
			return fmt.Errorf("unknown case: %s", args[0])
		}
		data, err := yaml.Marshal(c)
		if err != nil {
			return err
		}
		fmt.Print(string(data))
		return nil
	}

	fmt.Println(viz.Title.Render("reference cases"))
	for _, name := range config.ListPresets() {
		c := config.GetPreset(name)
		fmt.Printf("  %-14s %s\n", name, viz.Subtle.Render(fmt.Sprintf("component=%s nodes=%d", c.Component, c.NumNodes)))
	}
	fmt.Println()
	fmt.Println(viz.Title.Render("components"))
	for _, name := range reg.ListComponents() {
		fmt.Printf("  %s\n", name)
	}
	return nil
}

func showSpec(cmd *cobra.Command, args []string) error {
	comp, err := reg.GetComponent(args[0], config.DefaultNumNodes)
	if err != nil {
		return err
	}
	path := filepath.Join(specDir, args[0]+"_specs", "eom.json")

	switch {
	case writeSpec:
		if err := ifspec.Write(path, ifspec.FromComponent(comp)); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", path)
		return nil

	case checkSpec:
		err := ifspec.Match(comp, path)
		if errors.Is(err, ifspec.ErrMissing) {
			fmt.Printf("%s %s not found\n", viz.Badge(validation.Skip), path)
			return nil
		}
		if err != nil {
			fmt.Printf("%s %v\n", viz.Badge(validation.Fail), err)
			return errCheckFailed
		}
		fmt.Printf("%s %s\n", viz.Badge(validation.Pass), path)
		return nil
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(ifspec.FromComponent(comp))
}

func showPartials(cmd *cobra.Command, args []string) error {
	c, err := partialsCase(args[0])
	if err != nil {
		return err
	}
	c.NumNodes = numNodes
	resize(c.Inputs, numNodes)
	c.Partials = config.PartialsConfig{Method: method, Atol: atol, Rtol: rtol}

	runner := validation.NewRunner(reg, validation.WithLogger(log))
	rep, err := runner.Partials(cmd.Context(), c)
	if err != nil {
		return err
	}

	fmt.Print(viz.RenderPartials(rep))
	if n := rep.FailedPartials(); n > 0 {
		return fmt.Errorf("%w: %d partials out of tolerance", errCheckFailed, n)
	}
	return nil
}

// partialsCase picks inputs for a component: a reference case when one uses
// it, otherwise the fixed inputs and initial state of a phase that flies it.
func partialsCase(component string) (*config.Case, error) {
	comp, err := reg.GetComponent(component, 1)
	if err != nil {
		return nil, err
	}
	for _, name := range config.ListPresets() {
		if c := config.GetPreset(name); c.Component == component {
			return c, nil
		}
	}

	c := config.DefaultCase()
	c.Name = component
	c.Component = component
	d, err := reg.GetPhase(component)
	if err != nil {
		return c, nil
	}
	for _, vals := range []map[string]config.Value{d.Inputs, d.Initial} {
		for name, v := range vals {
			if _, ok := eom.Find(comp.Inputs(), name); ok {
				c.Inputs[name] = v
			}
		}
	}
	return c, nil
}
