package chart

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

const (
	barRune       = '█'
	emptyPieNote  = "No launches for the selected site."
	zeroTotalNote = "No successful launches to compare."
	minBarWidth   = 10
)

type pieSlice struct {
	name  string
	value float64
}

// RenderPie draws a pie spec as proportional bars followed by a value table.
func RenderPie(w io.Writer, spec Spec, opts Options) error {
	if spec.Title != "" {
		if _, err := fmt.Fprintln(w, spec.Title); err != nil {
			return err
		}
	}
	slices := pieSlices(spec)
	if len(slices) == 0 {
		_, err := fmt.Fprintf(w, "%s\n\n", emptyPieNote)
		return err
	}
	total := 0.0
	for _, s := range slices {
		total += s.value
	}

	useColor := shouldUseColor(w, opts.ForceColor)
	if total > 0 {
		labelWidth := 0
		for _, s := range slices {
			labelWidth = maxInt(labelWidth, runewidth.StringWidth(s.name))
		}
		barWidth := opts.width() - labelWidth - len(" 100.0%") - 2
		if barWidth < minBarWidth {
			barWidth = minBarWidth
		}
		for i, s := range slices {
			share := s.value / total
			bar := strings.Repeat(string(barRune), int(share*float64(barWidth)+0.5))
			line := fmt.Sprintf("%s %s %5.1f%%", runewidth.FillRight(s.name, labelWidth), colorize(bar, i, useColor), share*100)
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
	} else if _, err := fmt.Fprintln(w, zeroTotalNote); err != nil {
		return err
	}

	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}
	headers := []string{spec.NameField, spec.ValueField, "share"}
	rows := make([][]string, 0, len(slices))
	for _, s := range slices {
		share := 0.0
		if total > 0 {
			share = s.value / total * 100
		}
		rows = append(rows, []string{s.name, formatNumber(s.value), fmt.Sprintf("%.1f%%", share)})
	}
	for _, line := range formatTable(headers, rows, map[int]bool{1: true, 2: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

func pieSlices(spec Spec) []pieSlice {
	out := make([]pieSlice, 0, len(spec.Rows))
	for _, row := range spec.Rows {
		v, ok := numberField(row, spec.ValueField)
		if !ok {
			continue
		}
		out = append(out, pieSlice{name: fmt.Sprint(row[spec.NameField]), value: v})
	}
	return out
}
