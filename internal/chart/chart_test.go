package chart

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/launchdash/internal/model"
	"github.com/verte-zerg/launchdash/internal/query"
)

func sampleResult(site string) query.Result {
	sel := model.FilterSelection{Site: site, Payload: model.PayloadRange{Low: 0, High: 10000}}
	res := query.Result{Selection: sel}
	if site == model.AllSites {
		res.Success = model.SuccessSummary{GroupBy: model.GroupBySite, Slices: []model.SuccessSlice{
			{Key: "CCAFS LC-40", Count: 7},
			{Key: "KSC LC-39A", Count: 10},
			{Key: "VAFB SLC-4E", Count: 4},
		}}
	} else {
		res.Success = model.SuccessSummary{GroupBy: model.GroupByClass, Slices: []model.SuccessSlice{
			{Key: "1", Count: 10},
			{Key: "0", Count: 3},
		}}
	}
	res.Correlation = model.CorrelationSet{
		{LaunchSite: "KSC LC-39A", PayloadMassKg: 2490, Class: 1, BoosterVersionCategory: "FT"},
		{LaunchSite: "KSC LC-39A", PayloadMassKg: 5300, Class: 1, BoosterVersionCategory: "FT"},
		{LaunchSite: "KSC LC-39A", PayloadMassKg: 6070, Class: 0, BoosterVersionCategory: "B4"},
	}
	return res
}

func TestPieFieldsFollowGrouping(t *testing.T) {
	all := Pie(sampleResult(model.AllSites).Success, model.AllSites)
	if all.NameField != model.ColumnLaunchSite || all.ValueField != model.ColumnClass {
		t.Fatalf("unexpected ALL fields: %s/%s", all.NameField, all.ValueField)
	}
	if all.Title != "Total Success Launches by Site" {
		t.Fatalf("unexpected title %q", all.Title)
	}
	want := []Row{
		{model.ColumnLaunchSite: "CCAFS LC-40", model.ColumnClass: 7},
		{model.ColumnLaunchSite: "KSC LC-39A", model.ColumnClass: 10},
		{model.ColumnLaunchSite: "VAFB SLC-4E", model.ColumnClass: 4},
	}
	if diff := cmp.Diff(want, all.Rows); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}

	site := Pie(sampleResult("KSC LC-39A").Success, "KSC LC-39A")
	if site.NameField != model.ColumnClass || site.ValueField != FieldCount {
		t.Fatalf("unexpected site fields: %s/%s", site.NameField, site.ValueField)
	}
	if site.Title != "Total Success Launches for site KSC LC-39A" {
		t.Fatalf("unexpected title %q", site.Title)
	}
}

func TestScatterSpec(t *testing.T) {
	res := sampleResult("KSC LC-39A")
	spec := Scatter(res.Correlation, "KSC LC-39A")
	if spec.Kind != KindScatter || spec.XField != model.ColumnPayloadMass || spec.YField != model.ColumnClass || spec.ColorField != model.ColumnBoosterCategory {
		t.Fatalf("unexpected spec fields: %+v", spec)
	}
	if spec.Title != "Correlation between Payload and Success for KSC LC-39A Site" {
		t.Fatalf("unexpected title %q", spec.Title)
	}
	if len(spec.Rows) != 3 || spec.Rows[2][model.ColumnPayloadMass] != 6070.0 {
		t.Fatalf("unexpected rows: %+v", spec.Rows)
	}
}

func TestEncodeFormats(t *testing.T) {
	specs := FromResult(sampleResult(model.AllSites))

	var jsonBuf bytes.Buffer
	if err := Encode(&jsonBuf, specs, "json"); err != nil {
		t.Fatalf("encode json: %v", err)
	}
	var decoded []Spec
	if err := json.Unmarshal(jsonBuf.Bytes(), &decoded); err != nil {
		t.Fatalf("decode json: %v", err)
	}
	if len(decoded) != 2 || decoded[0].Kind != KindPie || decoded[1].Kind != KindScatter {
		t.Fatalf("unexpected decoded specs: %+v", decoded)
	}

	var yamlBuf bytes.Buffer
	if err := Encode(&yamlBuf, specs, "YAML"); err != nil {
		t.Fatalf("encode yaml: %v", err)
	}
	var generic []map[string]any
	if err := yaml.Unmarshal(yamlBuf.Bytes(), &generic); err != nil {
		t.Fatalf("decode yaml: %v", err)
	}
	if generic[1]["xField"] != model.ColumnPayloadMass {
		t.Fatalf("unexpected yaml xField: %v", generic[1]["xField"])
	}

	if err := Encode(&bytes.Buffer{}, specs, "xml"); err == nil {
		t.Fatalf("expected error for unsupported format")
	}
}

func TestRenderScatter(t *testing.T) {
	spec := Scatter(sampleResult(model.AllSites).Correlation, model.AllSites)
	var buf bytes.Buffer
	if err := RenderScatter(&buf, spec, Options{Width: 40, Height: 4}); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("expected no ANSI codes for non-terminal writer")
	}
	for _, want := range []string{spec.Title, "Legend:", "FT (2)", "B4 (1)", "2490", "6070"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	// title, axis names, 4 plot rows, x axis, legend
	if len(lines) != 8 {
		t.Fatalf("expected 8 lines, got %d:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[2], "1 │ ") || !strings.HasPrefix(lines[5], "0 │ ") {
		t.Fatalf("unexpected y axis labels:\n%s", out)
	}
}

func TestRenderScatterEmpty(t *testing.T) {
	spec := Scatter(model.CorrelationSet{}, "Z")
	var buf bytes.Buffer
	if err := RenderScatter(&buf, spec, Options{Width: 40}); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(buf.String(), emptyScatterNote) {
		t.Fatalf("expected empty note, got %q", buf.String())
	}
}

func TestRenderPie(t *testing.T) {
	spec := Pie(sampleResult("KSC LC-39A").Success, "KSC LC-39A")
	var buf bytes.Buffer
	if err := Render(&buf, spec, Options{Width: 60, ForceColor: true}); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{spec.Title, "76.9%", "23.1%", "class count share"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestRenderPieEmptyAndZero(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderPie(&buf, Pie(model.SuccessSummary{GroupBy: model.GroupByClass}, "Z"), Options{Width: 40}); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(buf.String(), emptyPieNote) {
		t.Fatalf("expected empty note, got %q", buf.String())
	}

	buf.Reset()
	zero := model.SuccessSummary{GroupBy: model.GroupBySite, Slices: []model.SuccessSlice{{Key: "A"}}}
	if err := RenderPie(&buf, Pie(zero, model.AllSites), Options{Width: 40}); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(buf.String(), zeroTotalNote) {
		t.Fatalf("expected zero-total note, got %q", buf.String())
	}
}

func TestRenderUnknownKind(t *testing.T) {
	if err := Render(&bytes.Buffer{}, Spec{Kind: "bar"}, Options{}); err == nil {
		t.Fatalf("expected error for unknown kind")
	}
}

func TestPlotWidthFor(t *testing.T) {
	if got := PlotWidthFor(80, 2); got != 80-2-3 {
		t.Fatalf("expected %d, got %d", 80-2-3, got)
	}
	if got := PlotWidthFor(0, 2); got != minPlotWidth {
		t.Fatalf("expected min width %d, got %d", minPlotWidth, got)
	}
}
