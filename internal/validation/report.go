package validation

import (
	"math"
	"time"
)

type Status string

const (
	Pass Status = "pass"
	Fail Status = "fail"
	Skip Status = "skip"
)

// OutputResult is the comparison of one expected output.
type OutputResult struct {
	Name      string    `json:"name"`
	Units     string    `json:"units,omitempty"`
	Actual    []float64 `json:"actual"`
	Desired   []float64 `json:"desired"`
	RelError  float64   `json:"rel_error"`
	Tolerance float64   `json:"tolerance"`
	Status    Status    `json:"status"`
	Message   string    `json:"message,omitempty"`
}

// PartialResult is the check of one (output, input) Jacobian block.
// RelError is nil when the reference block is zero.
type PartialResult struct {
	Of        string   `json:"of"`
	Wrt       string   `json:"wrt"`
	Declared  bool     `json:"declared"`
	Magnitude float64  `json:"magnitude"`
	AbsError  float64  `json:"abs_error"`
	RelError  *float64 `json:"rel_error,omitempty"`
	Status    Status   `json:"status"`
}

type CaseReport struct {
	Case      string          `json:"case"`
	Component string          `json:"component"`
	NumNodes  int             `json:"num_nodes"`
	Method    string          `json:"method,omitempty"`
	Outputs   []OutputResult  `json:"outputs"`
	Partials  []PartialResult `json:"partials,omitempty"`
	Spec      Status          `json:"spec"`
	SpecFile  string          `json:"spec_file,omitempty"`
	SpecDiff  string          `json:"spec_diff,omitempty"`
	Err       string          `json:"error,omitempty"`
	Elapsed   time.Duration   `json:"elapsed_ns"`
}

// Passed reports whether the case ran and nothing failed. Skipped checks
// do not fail a case.
func (c *CaseReport) Passed() bool {
	if c.Err != "" || c.Spec == Fail {
		return false
	}
	for _, o := range c.Outputs {
		if o.Status == Fail {
			return false
		}
	}
	for _, p := range c.Partials {
		if p.Status == Fail {
			return false
		}
	}
	return true
}

// FailedPartials counts failing Jacobian blocks.
func (c *CaseReport) FailedPartials() int {
	n := 0
	for _, p := range c.Partials {
		if p.Status == Fail {
			n++
		}
	}
	return n
}

// WorstPartial returns the largest absolute partials error.
func (c *CaseReport) WorstPartial() float64 {
	worst := 0.0
	for _, p := range c.Partials {
		worst = math.Max(worst, p.AbsError)
	}
	return worst
}

type Report struct {
	ID      string        `json:"id"`
	Created time.Time     `json:"created"`
	Cases   []*CaseReport `json:"cases"`
}

func (r *Report) Passed() bool {
	for _, c := range r.Cases {
		if !c.Passed() {
			return false
		}
	}
	return true
}

func (r *Report) Failed() int {
	n := 0
	for _, c := range r.Cases {
		if !c.Passed() {
			n++
		}
	}
	return n
}
