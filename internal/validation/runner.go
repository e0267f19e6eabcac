// Package validation runs reference cases against EOM components and
// collects the results into a report.
package validation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/san-kum/flighteom/internal/config"
	"github.com/san-kum/flighteom/internal/eom"
	"github.com/san-kum/flighteom/internal/ifspec"
	"github.com/san-kum/flighteom/internal/problem"
	"github.com/san-kum/flighteom/internal/registry"
	"github.com/san-kum/flighteom/internal/verify"
)

type Runner struct {
	reg     *registry.Registry
	log     *zap.Logger
	specDir string
	workers int
}

type Option func(*Runner)

func WithLogger(l *zap.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.log = l
		}
	}
}

// WithSpecDir enables interface spec checks for cases that name a spec file.
func WithSpecDir(dir string) Option {
	return func(r *Runner) { r.specDir = dir }
}

// WithWorkers bounds the number of cases validated at once.
func WithWorkers(n int) Option {
	return func(r *Runner) { r.workers = n }
}

func NewRunner(reg *registry.Registry, opts ...Option) *Runner {
	r := &Runner{
		reg:     reg,
		log:     zap.NewNop(),
		workers: 4,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run validates one case. Failed comparisons are recorded in the report;
// the error is non-nil only when the case could not be evaluated.
func (r *Runner) Run(ctx context.Context, c *config.Case) (*CaseReport, error) {
	start := time.Now()
	rep := &CaseReport{
		Case:      c.Title(),
		Component: c.Component,
		NumNodes:  c.NumNodes,
		Spec:      Skip,
	}

	err := r.run(ctx, c, rep)
	rep.Elapsed = time.Since(start)
	if err != nil {
		rep.Err = err.Error()
		r.log.Error("case failed to run", zap.String("case", rep.Case), zap.Error(err))
		return rep, err
	}

	r.log.Info("case validated",
		zap.String("case", rep.Case),
		zap.Bool("passed", rep.Passed()),
		zap.Int("failed_partials", rep.FailedPartials()),
		zap.String("spec", string(rep.Spec)),
		zap.Duration("elapsed", rep.Elapsed))
	return rep, nil
}

func (r *Runner) run(ctx context.Context, c *config.Case, rep *CaseReport) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := c.Validate(); err != nil {
		return err
	}
	comp, p, err := r.setup(c, rep)
	if err != nil {
		return err
	}

	for _, name := range sortedKeys(c.Expected) {
		rep.Outputs = append(rep.Outputs, compareOutput(p, name, c.Expected[name], c.Tolerance))
	}

	if !c.Partials.Skip {
		if err := r.checkPartials(p, c.Partials, rep); err != nil {
			return err
		}
	}

	r.checkSpec(comp, c, rep)
	return nil
}

// Partials checks only the partial derivatives of c's component at c's
// inputs. Expected outputs are ignored and may be empty.
func (r *Runner) Partials(ctx context.Context, c *config.Case) (*CaseReport, error) {
	rep := &CaseReport{Case: c.Title(), Component: c.Component, NumNodes: c.NumNodes, Spec: Skip}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	_, p, err := r.setup(c, rep)
	if err != nil {
		return nil, err
	}
	if err := r.checkPartials(p, c.Partials, rep); err != nil {
		return nil, err
	}
	return rep, nil
}

// setup builds the component and runs it once at the case inputs.
func (r *Runner) setup(c *config.Case, rep *CaseReport) (eom.Component, *problem.Problem, error) {
	comp, err := r.reg.GetComponent(c.Component, c.NumNodes)
	if err != nil {
		return nil, nil, err
	}

	p := problem.New(comp, problem.WithLogger(r.log.With(zap.String("case", rep.Case))))
	for _, name := range sortedKeys(c.Inputs) {
		v := c.Inputs[name]
		p.SetInputDefaults(name, broadcast(comp, name, v.Value), v.Units)
	}
	if err := p.Setup(); err != nil {
		return nil, nil, err
	}
	if err := p.RunModel(); err != nil {
		return nil, nil, err
	}
	return comp, p, nil
}

func compareOutput(p *problem.Problem, name string, want config.Value, tol float64) OutputResult {
	res := OutputResult{
		Name:      name,
		Units:     want.Units,
		Desired:   want.Value,
		Tolerance: tol,
		Status:    Pass,
	}

	var actual []float64
	var err error
	if want.Units == "" {
		actual, err = p.Get(name)
	} else {
		actual, err = p.GetVal(name, want.Units)
	}
	if err != nil {
		res.Status, res.Message = Fail, err.Error()
		return res
	}
	res.Actual = actual
	if len(actual) == len(want.Value) {
		if rel := verify.RelativeError(actual, want.Value); !math.IsNaN(rel) && !math.IsInf(rel, 0) {
			res.RelError = rel
		}
	}
	if err := verify.NearEqual(name, actual, want.Value, tol); err != nil {
		res.Status, res.Message = Fail, err.Error()
	}
	return res
}

func (r *Runner) checkPartials(p *problem.Problem, cfg config.PartialsConfig, rep *CaseReport) error {
	method, err := problem.ParseMethod(cfg.Method)
	if err != nil {
		return err
	}
	data, err := p.CheckPartials(method)
	if err != nil {
		return err
	}
	rep.Method = string(method)

	failed := make(map[eom.Key]bool)
	var pe *verify.PartialsError
	if err := verify.CheckPartials(data, cfg.Atol, cfg.Rtol); errors.As(err, &pe) {
		for _, f := range pe.Failures {
			failed[eom.Key{Of: f.Of, Wrt: f.Wrt}] = true
		}
	}

	for _, chk := range data.Checks {
		res := PartialResult{
			Of:        chk.Of,
			Wrt:       chk.Wrt,
			Declared:  chk.Declared,
			Magnitude: verify.Magnitude(chk),
			AbsError:  chk.AbsError,
			Status:    Pass,
		}
		if !math.IsNaN(chk.RelError) {
			rel := chk.RelError
			res.RelError = &rel
		}
		if failed[chk.Key()] {
			res.Status = Fail
		}
		rep.Partials = append(rep.Partials, res)
	}
	return nil
}

func (r *Runner) checkSpec(comp eom.Component, c *config.Case, rep *CaseReport) {
	if r.specDir == "" || c.SpecFile == "" {
		return
	}
	path := filepath.Join(r.specDir, c.SpecFile)
	rep.SpecFile = path

	err := ifspec.Match(comp, path)
	var me *ifspec.MismatchError
	switch {
	case err == nil:
		rep.Spec = Pass
	case errors.Is(err, ifspec.ErrMissing):
		rep.Spec = Skip
		r.log.Debug("interface spec missing, skipping", zap.String("path", path))
	case errors.As(err, &me):
		rep.Spec = Fail
		rep.SpecDiff = me.Diff
	default:
		rep.Spec = Fail
		rep.SpecDiff = err.Error()
	}
}

// RunAll validates cases concurrently, each with its own problem. The report
// keeps the order of cases. Only cancellation aborts the run; per-case
// errors are recorded in the case reports.
func (r *Runner) RunAll(ctx context.Context, cases []*config.Case) (*Report, error) {
	rep := &Report{
		ID:      uuid.NewString(),
		Created: time.Now().UTC(),
		Cases:   make([]*CaseReport, len(cases)),
	}

	g, gctx := errgroup.WithContext(ctx)
	if r.workers > 0 {
		g.SetLimit(r.workers)
	}
	for i, c := range cases {
		g.Go(func() error {
			cr, err := r.Run(gctx, c)
			rep.Cases[i] = cr
			if err != nil && gctx.Err() != nil {
				return gctx.Err()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return rep, fmt.Errorf("validation aborted: %w", err)
	}

	r.log.Info("validation finished",
		zap.String("report", rep.ID),
		zap.Int("cases", len(cases)),
		zap.Int("failed", rep.Failed()))
	return rep, nil
}

// broadcast repeats a single value across every node of a per-node input.
func broadcast(comp eom.Component, name string, vals []float64) []float64 {
	v, ok := eom.Find(comp.Inputs(), name)
	if !ok || len(vals) != 1 {
		return vals
	}
	size := v.Size(comp.NumNodes())
	if size == 1 {
		return vals
	}
	out := make([]float64, size)
	for i := range out {
		out[i] = vals[0]
	}
	return out
}

func sortedKeys(m map[string]config.Value) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
