package dataset

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/verte-zerg/launchdash/internal/model"
)

const sampleCSV = `,Flight Number,Launch Site,class,Payload Mass (kg),Booster Version,Booster Version Category
0,1,CCAFS LC-40,0,0.0,F9 v1.0  B0003,v1.0
1,2,CCAFS LC-40,0,0.0,F9 v1.0  B0004,v1.0
2,3,VAFB SLC-4E,1,500.0,F9 v1.1  B1003,v1.1
3,4,CCAFS LC-40,1,677.0,F9 v1.0  B0006,v1.0
4,5,KSC LC-39A,1,9600.0,F9 FT B1031.1,FT
`

func TestLoadDerivedValues(t *testing.T) {
	ds, err := Load(strings.NewReader(sampleCSV), "sample.csv")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if ds.Len() != 5 {
		t.Fatalf("expected 5 records, got %d", ds.Len())
	}
	if ds.MinPayload() != 0 || ds.MaxPayload() != 9600 {
		t.Fatalf("unexpected payload bounds: %v..%v", ds.MinPayload(), ds.MaxPayload())
	}
	wantSites := []string{"CCAFS LC-40", "VAFB SLC-4E", "KSC LC-39A"}
	if diff := cmp.Diff(wantSites, ds.Sites()); diff != "" {
		t.Fatalf("sites mismatch (-want +got):\n%s", diff)
	}
	want := model.LaunchRecord{LaunchSite: "VAFB SLC-4E", PayloadMassKg: 500, Class: 1, BoosterVersionCategory: "v1.1"}
	if got := ds.At(2); got != want {
		t.Fatalf("unexpected record: %+v", got)
	}
}

func TestLoadMissingColumns(t *testing.T) {
	data := "Launch Site,class\nA,1\n"
	_, err := Load(strings.NewReader(data), "broken.csv")
	if err == nil {
		t.Fatalf("expected error")
	}
	var loadErr *LoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("expected LoadError, got %T", err)
	}
	if !errors.Is(err, ErrMissingColumn) {
		t.Fatalf("expected ErrMissingColumn, got %v", err)
	}
	for _, col := range []string{model.ColumnPayloadMass, model.ColumnBoosterCategory} {
		if !strings.Contains(err.Error(), col) {
			t.Fatalf("expected %q in error: %v", col, err)
		}
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	header := "Launch Site,Payload Mass (kg),class,Booster Version Category\n"
	cases := map[string]string{
		"payload":  "A,heavy,1,FT\n",
		"negative": "A,-5,1,FT\n",
		"class":    "A,100,2,FT\n",
		"short":    "A,100\n",
		"nan":      "A,NaN,1,FT\nA,500,0,FT\nB,2000,1,FT\n",
		"inf":      "A,+Inf,0,FT\n",
		"neg-inf":  "A,-Inf,0,FT\n",
	}
	for name, row := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(strings.NewReader(header+row), "bad.csv")
			var loadErr *LoadError
			if !errors.As(err, &loadErr) {
				t.Fatalf("expected LoadError, got %v", err)
			}
		})
	}
}

func TestLoadRejectsNonFinitePayloadWithLine(t *testing.T) {
	header := "Launch Site,Payload Mass (kg),class,Booster Version Category\n"
	for _, raw := range []string{"NaN", "Inf", "+Inf", "-Inf"} {
		data := header + "A,500,0,FT\nA," + raw + ",1,FT\nB,2000,1,FT\n"
		_, err := Load(strings.NewReader(data), "bad.csv")
		var loadErr *LoadError
		if !errors.As(err, &loadErr) {
			t.Fatalf("payload %s: expected LoadError, got %v", raw, err)
		}
		if !strings.Contains(err.Error(), "line 3") {
			t.Fatalf("payload %s: expected line number in error: %v", raw, err)
		}
	}
}

func TestFromRecordsRejectsNonFinitePayload(t *testing.T) {
	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := FromRecords("mem", []model.LaunchRecord{
			{LaunchSite: "A", PayloadMassKg: 500, Class: 0, BoosterVersionCategory: "FT"},
			{LaunchSite: "B", PayloadMassKg: v, Class: 1, BoosterVersionCategory: "FT"},
		})
		var loadErr *LoadError
		if !errors.As(err, &loadErr) {
			t.Fatalf("payload %v: expected LoadError, got %v", v, err)
		}
		if !strings.Contains(err.Error(), "record 2") {
			t.Fatalf("payload %v: expected record position in error: %v", v, err)
		}
	}
}

func TestLoadEmpty(t *testing.T) {
	for _, data := range []string{"", "Launch Site,Payload Mass (kg),class,Booster Version Category\n"} {
		_, err := Load(strings.NewReader(data), "empty.csv")
		if !errors.Is(err, ErrEmpty) {
			t.Fatalf("expected ErrEmpty for %q, got %v", data, err)
		}
	}
}

func TestLoadFileMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.csv")
	_, err := LoadFile(path)
	var loadErr *LoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("expected LoadError, got %v", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist cause, got %v", err)
	}
	if loadErr.Source != path {
		t.Fatalf("unexpected source %q", loadErr.Source)
	}
}

func TestLoadFileAcceptsBOMAndFloatClass(t *testing.T) {
	path := filepath.Join(t.TempDir(), "launches.csv")
	data := "\ufeffLaunch Site , Payload Mass (kg),class,Booster Version Category\nA,1500,1.0,B4\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	ds, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if ds.At(0).Class != 1 || ds.Source() != path {
		t.Fatalf("unexpected dataset: %+v from %s", ds.At(0), ds.Source())
	}
}

func TestRecordsIsACopy(t *testing.T) {
	ds, err := FromRecords("mem", []model.LaunchRecord{{LaunchSite: "A", PayloadMassKg: 1, Class: 1}})
	if err != nil {
		t.Fatalf("from records: %v", err)
	}
	recs := ds.Records()
	recs[0].LaunchSite = "mutated"
	if ds.At(0).LaunchSite != "A" {
		t.Fatalf("dataset was mutated through Records()")
	}
	sites := ds.Sites()
	sites[0] = "mutated"
	if !ds.HasSite("A") || ds.HasSite("mutated") {
		t.Fatalf("dataset was mutated through Sites()")
	}
}

func TestSiteOptions(t *testing.T) {
	ds, err := FromRecords("mem", []model.LaunchRecord{
		{LaunchSite: "B", PayloadMassKg: 1},
		{LaunchSite: "A", PayloadMassKg: 2},
		{LaunchSite: "B", PayloadMassKg: 3},
	})
	if err != nil {
		t.Fatalf("from records: %v", err)
	}
	want := []model.SiteOption{
		{Label: "All Sites", Value: model.AllSites},
		{Label: "B", Value: "B"},
		{Label: "A", Value: "A"},
	}
	if diff := cmp.Diff(want, ds.SiteOptions()); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}
}
