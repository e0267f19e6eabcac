package export

import (
	"errors"
	"strings"
	"testing"
)

func TestProfile(t *testing.T) {
	times := []float64{0, 1, 2}
	states := [][]float64{{10000, 0}, {10006, 774}, {10012, 1548}}
	labels := []string{"altitude", "distance"}

	pts, err := Profile(times, states, labels, "distance", "altitude")
	if err != nil {
		t.Fatal(err)
	}
	if len(pts) != 3 {
		t.Fatalf("expected 3 points, got %d", len(pts))
	}
	if pts[2] != (Point{X: 1548, Y: 10012}) {
		t.Errorf("unexpected last point %v", pts[2])
	}

	pts, err = Profile(times, states, labels, TimeColumn, "altitude")
	if err != nil {
		t.Fatal(err)
	}
	if pts[1].X != 1 {
		t.Errorf("expected time on x, got %v", pts[1].X)
	}

	if _, err := Profile(times, states, labels, "TAS", "altitude"); !errors.Is(err, ErrUnknownColumn) {
		t.Errorf("expected ErrUnknownColumn, got %v", err)
	}
}

func TestProfileSVG(t *testing.T) {
	pts := []Point{{0, 10000}, {774, 10006}, {1548, 10012}}
	svg := ProfileSVG(pts, 400, 200, "distance", "altitude", "#00ff00")

	if !strings.HasPrefix(svg, "<?xml") || !strings.Contains(svg, "</svg>") {
		t.Fatal("not an svg document")
	}
	if strings.Count(svg, " L") != 2 {
		t.Errorf("expected 2 line segments")
	}
	if !strings.Contains(svg, "altitude 1e+04..1.001e+04") {
		t.Errorf("missing altitude range label:\n%s", svg)
	}
	if !strings.Contains(svg, `stroke="#00ff00"`) {
		t.Error("missing stroke color")
	}
}

func TestProfileSVG_TooFewPoints(t *testing.T) {
	if svg := ProfileSVG([]Point{{1, 1}}, 100, 100, "x", "y", "#fff"); svg != "" {
		t.Error("expected empty output for a single point")
	}
}
