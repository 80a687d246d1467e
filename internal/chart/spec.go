// Package chart turns query results into chart specifications and renders them as text.
package chart

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/launchdash/internal/model"
	"github.com/verte-zerg/launchdash/internal/query"
)

// Kinds of chart specification.
const (
	KindPie     = "pie"
	KindScatter = "scatter"
)

// Field names used in chart rows.
const (
	FieldCount = "count"
)

// Row is one data row of a chart, keyed by field name.
type Row map[string]any

// Spec is a renderer-independent chart description.
type Spec struct {
	Kind       string `json:"kind" yaml:"kind"`
	Title      string `json:"title" yaml:"title"`
	NameField  string `json:"nameField,omitempty" yaml:"nameField,omitempty"`
	ValueField string `json:"valueField,omitempty" yaml:"valueField,omitempty"`
	XField     string `json:"xField,omitempty" yaml:"xField,omitempty"`
	YField     string `json:"yField,omitempty" yaml:"yField,omitempty"`
	ColorField string `json:"colorField,omitempty" yaml:"colorField,omitempty"`
	Rows       []Row  `json:"rows" yaml:"rows"`
}

// Pie builds the success breakdown chart for site.
func Pie(summary model.SuccessSummary, site string) Spec {
	spec := Spec{
		Kind:  KindPie,
		Title: query.FormatTitle(query.KindSuccess, site),
		Rows:  make([]Row, 0, len(summary.Slices)),
	}
	if summary.GroupBy == model.GroupByClass {
		spec.NameField = model.ColumnClass
		spec.ValueField = FieldCount
	} else {
		spec.NameField = model.ColumnLaunchSite
		spec.ValueField = model.ColumnClass
	}
	for _, slice := range summary.Slices {
		spec.Rows = append(spec.Rows, Row{
			spec.NameField:  slice.Key,
			spec.ValueField: slice.Count,
		})
	}
	return spec
}

// Scatter builds the payload versus outcome chart for site.
func Scatter(set model.CorrelationSet, site string) Spec {
	spec := Spec{
		Kind:       KindScatter,
		Title:      query.FormatTitle(query.KindCorrelation, site),
		XField:     model.ColumnPayloadMass,
		YField:     model.ColumnClass,
		ColorField: model.ColumnBoosterCategory,
		Rows:       make([]Row, 0, len(set)),
	}
	for _, rec := range set {
		spec.Rows = append(spec.Rows, Row{
			model.ColumnLaunchSite:      rec.LaunchSite,
			model.ColumnPayloadMass:     rec.PayloadMassKg,
			model.ColumnClass:           rec.Class,
			model.ColumnBoosterCategory: rec.BoosterVersionCategory,
		})
	}
	return spec
}

// FromResult builds both dashboard charts for a query result.
func FromResult(res query.Result) []Spec {
	return []Spec{
		Pie(res.Success, res.Selection.Site),
		Scatter(res.Correlation, res.Selection.Site),
	}
}

// Encode writes specs to w as "json" or "yaml".
func Encode(w io.Writer, specs []Spec, format string) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(specs); err != nil {
			return fmt.Errorf("failed to encode json: %w", err)
		}
		return nil
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(specs); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("failed to flush yaml: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unsupported format %q (use json or yaml)", format)
	}
}
