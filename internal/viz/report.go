package viz

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/flighteom/internal/validation"
)

func statusStyle(s validation.Status) lipgloss.Style {
	switch s {
	case validation.Pass:
		return StatusPass
	case validation.Fail:
		return StatusFail
	}
	return StatusSkip
}

// Badge renders a status as a fixed-width colored word.
func Badge(s validation.Status) string {
	return statusStyle(s).Render(fmt.Sprintf("%-4s", strings.ToUpper(string(s))))
}

func caseStatus(c *validation.CaseReport) validation.Status {
	if c.Passed() {
		return validation.Pass
	}
	return validation.Fail
}

// RenderReport summarizes every case: outputs, partials and the interface
// spec check.
func RenderReport(rep *validation.Report) string {
	var b strings.Builder

	b.WriteString(HeaderStyle.Render("validation "+rep.ID) + "\n")
	for _, c := range rep.Cases {
		if c == nil {
			continue
		}
		fmt.Fprintf(&b, "%s %s %s\n", Badge(caseStatus(c)), Title.Render(c.Case),
			Subtle.Render(fmt.Sprintf("(%s, %d nodes, %s)", c.Component, c.NumNodes, c.Elapsed.Round(time.Microsecond))))

		if c.Err != "" {
			fmt.Fprintf(&b, "     %s\n", StatusFail.Render(c.Err))
			continue
		}

		for _, o := range c.Outputs {
			fmt.Fprintf(&b, "     %s %-18s %s %s\n", Badge(o.Status), o.Name,
				MetricLabel.Render("rel err"), MetricValue.Render(fmt.Sprintf("%.3e", o.RelError)))
			if o.Status == validation.Fail && o.Message != "" {
				fmt.Fprintf(&b, "          %s\n", Subtle.Render(o.Message))
			}
		}

		if len(c.Partials) > 0 {
			ps := validation.Pass
			if c.FailedPartials() > 0 {
				ps = validation.Fail
			}
			fmt.Fprintf(&b, "     %s %-18s %s %s  %s\n", Badge(ps), "partials ("+c.Method+")",
				MetricLabel.Render("worst abs"), MetricValue.Render(fmt.Sprintf("%.3e", c.WorstPartial())),
				Subtle.Render(fmt.Sprintf("%d/%d blocks failed", c.FailedPartials(), len(c.Partials))))
		}

		spec := "interface spec"
		if c.SpecFile != "" {
			spec += " " + Subtle.Render(c.SpecFile)
		}
		fmt.Fprintf(&b, "     %s %s\n", Badge(c.Spec), spec)
		if c.SpecDiff != "" {
			for _, line := range strings.Split(strings.TrimRight(c.SpecDiff, "\n"), "\n") {
				fmt.Fprintf(&b, "          %s\n", Subtle.Render(line))
			}
		}
	}

	total := 0
	for _, c := range rep.Cases {
		if c != nil {
			total++
		}
	}
	summary := fmt.Sprintf("%d/%d cases passed", total-rep.Failed(), total)
	if rep.Passed() {
		b.WriteString(StatusPass.Render(summary))
	} else {
		b.WriteString(StatusFail.Render(summary))
	}
	b.WriteString("\n")
	return b.String()
}

// RenderPartials lists each Jacobian block of c, failures first.
func RenderPartials(c *validation.CaseReport) string {
	ps := make([]validation.PartialResult, len(c.Partials))
	copy(ps, c.Partials)
	sort.SliceStable(ps, func(i, j int) bool {
		if (ps[i].Status == validation.Fail) != (ps[j].Status == validation.Fail) {
			return ps[i].Status == validation.Fail
		}
		if ps[i].Of != ps[j].Of {
			return ps[i].Of < ps[j].Of
		}
		return ps[i].Wrt < ps[j].Wrt
	})

	var b strings.Builder
	b.WriteString(HeaderStyle.Render(fmt.Sprintf("%s partials (%s)", c.Component, c.Method)) + "\n")
	fmt.Fprintf(&b, "%-4s  %-24s %-24s %12s %12s %12s\n", "", "of", "wrt", "magnitude", "abs error", "rel error")
	for _, p := range ps {
		rel := "-"
		if p.RelError != nil {
			rel = fmt.Sprintf("%.3e", *p.RelError)
		}
		wrt := p.Wrt
		if !p.Declared {
			wrt += "*"
		}
		fmt.Fprintf(&b, "%s  %-24s %-24s %12.3e %12.3e %12s\n", Badge(p.Status), p.Of, wrt, p.Magnitude, p.AbsError, rel)
	}
	b.WriteString(Subtle.Render("* not declared, analytic value taken as zero") + "\n")
	return b.String()
}
