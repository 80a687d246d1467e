package chart

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
)

const emptyScatterNote = "No launches match the current filters."

// RenderScatter draws a scatter spec as a braille plot with one color per color-field value.
func RenderScatter(w io.Writer, spec Spec, opts Options) error {
	if spec.Title != "" {
		if _, err := fmt.Fprintln(w, spec.Title); err != nil {
			return err
		}
	}
	points, groups := scatterPoints(spec)
	if len(points) == 0 {
		_, err := fmt.Fprintf(w, "%s\n\n", emptyScatterNote)
		return err
	}

	xMin, xMax := math.Inf(1), math.Inf(-1)
	yMin, yMax := math.Inf(1), math.Inf(-1)
	for _, p := range points {
		xMin, xMax = math.Min(xMin, p.x), math.Max(xMax, p.x)
		yMin, yMax = math.Min(yMin, p.y), math.Max(yMax, p.y)
	}
	// Outcome classes are 0/1; keep both rows visible even when only one occurs.
	yMin, yMax = math.Min(yMin, 0), math.Max(yMax, 1)

	height := opts.height()
	topLabel := formatNumber(yMax)
	bottomLabel := formatNumber(yMin)
	axisWidth := maxInt(runewidth.StringWidth(topLabel), runewidth.StringWidth(bottomLabel))
	width := PlotWidthFor(opts.width(), axisWidth)

	layers := make([][][]uint8, len(groups))
	for i := range layers {
		layers[i] = makeCells(height, width)
	}
	dotsX := width * 2
	dotsY := height * 4
	for _, p := range points {
		px := scaleToDots(p.x, xMin, xMax, dotsX)
		py := dotsY - 1 - scaleToDots(p.y, yMin, yMax, dotsY)
		setBrailleDot(layers[p.group], px, py)
	}

	useColor := shouldUseColor(w, opts.ForceColor)
	if _, err := fmt.Fprintf(w, "x: %s  y: %s\n", spec.XField, spec.YField); err != nil {
		return err
	}
	for y := 0; y < height; y++ {
		label := ""
		switch y {
		case 0:
			label = topLabel
		case height - 1:
			label = bottomLabel
		}
		var row strings.Builder
		row.WriteString(runewidth.FillLeft(label, axisWidth))
		row.WriteString(axisSeparator)
		for x := 0; x < width; x++ {
			mask, colorIdx := composeCell(layers, x, y)
			row.WriteString(colorize(string(brailleFromMask(mask)), colorIdx, useColor))
		}
		if _, err := fmt.Fprintln(w, row.String()); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, xAxisLine(axisWidth, width, xMin, xMax)); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, renderLegend(groups, useColor)); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

type scatterPoint struct {
	x     float64
	y     float64
	group int
}

type scatterGroup struct {
	name  string
	count int
}

func scatterPoints(spec Spec) ([]scatterPoint, []scatterGroup) {
	points := make([]scatterPoint, 0, len(spec.Rows))
	var groups []scatterGroup
	index := map[string]int{}
	for _, row := range spec.Rows {
		x, okX := numberField(row, spec.XField)
		y, okY := numberField(row, spec.YField)
		if !okX || !okY {
			continue
		}
		name := fmt.Sprint(row[spec.ColorField])
		gi, ok := index[name]
		if !ok {
			gi = len(groups)
			index[name] = gi
			groups = append(groups, scatterGroup{name: name})
		}
		groups[gi].count++
		points = append(points, scatterPoint{x: x, y: y, group: gi})
	}
	return points, groups
}

func numberField(row Row, field string) (float64, bool) {
	switch v := row[field].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

func scaleToDots(v, minVal, maxVal float64, dots int) int {
	if dots <= 1 {
		return 0
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return dots / 2
	}
	pos := int(math.Round((v - minVal) / (maxVal - minVal) * float64(dots-1)))
	if pos < 0 {
		return 0
	}
	if pos >= dots {
		return dots - 1
	}
	return pos
}

func xAxisLine(axisWidth, width int, xMin, xMax float64) string {
	left := formatNumber(xMin)
	right := formatNumber(xMax)
	gap := width - runewidth.StringWidth(left) - runewidth.StringWidth(right)
	if gap < 1 {
		gap = 1
	}
	prefix := strings.Repeat(" ", axisWidth+runewidth.StringWidth(axisSeparator))
	return prefix + left + strings.Repeat(" ", gap) + right
}

func renderLegend(groups []scatterGroup, useColor bool) string {
	parts := make([]string, 0, len(groups))
	marker := brailleFromMask(0xFF)
	for i, g := range groups {
		label := fmt.Sprintf("%c %s (%d)", marker, g.name, g.count)
		parts = append(parts, colorize(label, i, useColor))
	}
	return "Legend: " + strings.Join(parts, "  ")
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
