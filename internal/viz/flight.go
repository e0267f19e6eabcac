package viz

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/guptarohit/asciigraph"
)

// RenderFlight shows the final state and metrics of a flown phase.
func RenderFlight(phase string, labels, units []string, final []float64, t float64, reached bool, metrics map[string]float64) string {
	var b strings.Builder

	status := StatusSkip.Render("duration elapsed")
	if reached {
		status = StatusPass.Render("target reached")
	}
	fmt.Fprintf(&b, "%s  %s  %s\n", Title.Render(phase), status, Subtle.Render(fmt.Sprintf("t=%.2fs", t)))

	var rows []string
	for i, l := range labels {
		if i >= len(final) {
			break
		}
		u := ""
		if i < len(units) {
			u = units[i]
		}
		rows = append(rows, fmt.Sprintf("%s %s %s", MetricLabel.Render(fmt.Sprintf("%-18s", l)),
			MetricValue.Render(fmt.Sprintf("%14.4f", final[i])), Subtle.Render(u)))
	}
	b.WriteString(Panel.Render(strings.Join(rows, "\n")) + "\n")

	names := make([]string, 0, len(metrics))
	for name := range metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		v := metrics[name]
		val := "-"
		if !math.IsNaN(v) {
			val = fmt.Sprintf("%.4f", v)
		}
		fmt.Fprintf(&b, "  %s %s\n", MetricLabel.Render(fmt.Sprintf("%-24s", name)), MetricValue.Render(val))
	}
	return b.String()
}

// PlotStates draws one asciigraph per state column, at most maxPlots.
func PlotStates(states [][]float64, labels, units []string, maxPlots, width, height int) string {
	if len(states) == 0 {
		return ""
	}

	numVars := len(states[0])
	if maxPlots > 0 && numVars > maxPlots {
		numVars = maxPlots
	}

	var b strings.Builder
	for varIdx := 0; varIdx < numVars; varIdx++ {
		data := make([]float64, len(states))
		for i := range states {
			if varIdx < len(states[i]) {
				data[i] = states[i][varIdx]
			}
		}

		caption := fmt.Sprintf("x%d vs time", varIdx)
		if varIdx < len(labels) {
			caption = labels[varIdx] + " vs time"
			if varIdx < len(units) && units[varIdx] != "" {
				caption += " (" + units[varIdx] + ")"
			}
		}

		graph := asciigraph.Plot(data,
			asciigraph.Height(height),
			asciigraph.Width(width),
			asciigraph.Caption(caption),
		)
		b.WriteString(graph)
		b.WriteString("\n\n")
	}
	return b.String()
}
