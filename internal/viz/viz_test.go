package viz

import (
	"math"
	"strings"
	"testing"

	"github.com/san-kum/flighteom/internal/validation"
)

func sampleReport() *validation.Report {
	rel := 1e-15
	return &validation.Report{
		ID: "r1",
		Cases: []*validation.CaseReport{
			{
				Case: "gasp_accel", Component: "accel", NumNodes: 2, Method: "cs", Spec: validation.Pass,
				Outputs: []validation.OutputResult{{Name: "TAS_rate", Status: validation.Pass}},
				Partials: []validation.PartialResult{
					{Of: "TAS_rate", Wrt: "mass", Declared: true, RelError: &rel, Status: validation.Pass},
					{Of: "TAS_rate", Wrt: "TAS", Status: validation.Pass},
				},
			},
			{
				Case: "broken", Component: "climb", NumNodes: 2, Spec: validation.Fail,
				SpecDiff: "-  \"required_lift\"",
				Outputs:  []validation.OutputResult{{Name: "altitude_rate", Status: validation.Fail, Message: "too far"}},
				Partials: []validation.PartialResult{{Of: "altitude_rate", Wrt: "drag", Declared: true, Status: validation.Fail}},
			},
		},
	}
}

func TestRenderReport(t *testing.T) {
	out := RenderReport(sampleReport())

	for _, want := range []string{"gasp_accel", "broken", "TAS_rate", "too far", "required_lift", "1/2 cases passed", "partials (cs)"} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
}

func TestRenderPartials_FailuresFirst(t *testing.T) {
	c := sampleReport().Cases[0]
	c.Partials[1].Status = validation.Fail

	out := RenderPartials(c)
	var first string
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "TAS_rate") {
			first = line
			break
		}
	}
	if !strings.Contains(first, "TAS*") {
		t.Errorf("failing undeclared block should be listed first:\n%s", out)
	}
	if !strings.Contains(out, "1.000e-15") {
		t.Errorf("missing relative error:\n%s", out)
	}
}

func TestRenderFlight(t *testing.T) {
	out := RenderFlight("climb", []string{"altitude", "distance"}, []string{"ft", "ft"},
		[]float64{11000.5, 124000}, 160.2, true,
		map[string]float64{"peak_altitude": 11000.5, "time_to_altitude": math.NaN()})

	for _, want := range []string{"climb", "target reached", "altitude", "11000.5000", "time_to_altitude"} {
		if !strings.Contains(out, want) {
			t.Errorf("flight output missing %q:\n%s", want, out)
		}
	}
}

func TestPlotStates(t *testing.T) {
	states := [][]float64{{0, 0}, {1, 10}, {2, 20}, {3, 30}}

	out := PlotStates(states, []string{"TAS"}, []string{"ft/s"}, 1, 40, 5)
	if !strings.Contains(out, "TAS vs time (ft/s)") {
		t.Errorf("missing caption:\n%s", out)
	}
	if strings.Contains(out, "x1 vs time") {
		t.Error("maxPlots should limit the number of graphs")
	}

	if PlotStates(nil, nil, nil, 0, 40, 5) != "" {
		t.Error("expected empty output for no states")
	}
}

func TestSparklineChart(t *testing.T) {
	got := []rune(SparklineChart([]float64{0, 1, 2, 3, 4, 5, 6, 7}, 8))
	if len(got) != 8 || got[0] != '▁' || got[7] != '█' {
		t.Errorf("SparklineChart = %q", string(got))
	}
	if SparklineChart(nil, 3) != "───" {
		t.Error("empty sparkline should be a flat line")
	}
}
