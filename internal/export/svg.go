// Package export renders saved flights for use outside the terminal.
package export

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var ErrUnknownColumn = errors.New("export: unknown column")

// TimeColumn selects the run's time as an axis.
const TimeColumn = "time"

type Point struct {
	X, Y float64
}

// Profile pairs two columns of a run, each a state label or TimeColumn.
func Profile(times []float64, states [][]float64, labels []string, x, y string) ([]Point, error) {
	xi, err := column(labels, x)
	if err != nil {
		return nil, err
	}
	yi, err := column(labels, y)
	if err != nil {
		return nil, err
	}

	pick := func(i, col int) float64 {
		if col < 0 {
			return times[i]
		}
		return states[i][col]
	}

	n := len(states)
	if len(times) < n {
		n = len(times)
	}
	pts := make([]Point, 0, n)
	for i := 0; i < n; i++ {
		pts = append(pts, Point{X: pick(i, xi), Y: pick(i, yi)})
	}
	return pts, nil
}

func column(labels []string, name string) (int, error) {
	if name == TimeColumn {
		return -1, nil
	}
	for i, l := range labels {
		if l == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: %s (have %s, %v)", ErrUnknownColumn, name, TimeColumn, labels)
}

// ProfileSVG draws points as a single path scaled to width by height, with
// the axis names and ranges printed in the corners.
func ProfileSVG(points []Point, width, height int, xName, yName, stroke string) string {
	if len(points) < 2 {
		return ""
	}

	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	for _, p := range points {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	loX, loY, hiX, hiY := minX, minY, maxX, maxY

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, stroke)

	for i, p := range points {
		x := (p.X - minX) / rangeX * float64(width)
		y := float64(height) - (p.Y-minY)/rangeY*float64(height)
		if i == 0 {
			fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
		}
	}
	sb.WriteString("\"/>\n")

	fmt.Fprintf(&sb, `<g fill="#888888" font-family="monospace" font-size="11">
<text x="4" y="14">%s %.4g..%.4g</text>
<text x="%d" y="%d" text-anchor="end">%s %.4g..%.4g</text>
</g>
</svg>
`, yName, loY, hiY, width-4, height-4, xName, loX, hiX)
	return sb.String()
}
