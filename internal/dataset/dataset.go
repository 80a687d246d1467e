// Package dataset loads launch records into an immutable in-memory table.
package dataset

import (
	"errors"
	"fmt"
	"math"

	"github.com/verte-zerg/launchdash/internal/model"
)

// ErrMissingColumn is the cause of a LoadError when a required column is absent.
var ErrMissingColumn = errors.New("missing required column")

// ErrEmpty is the cause of a LoadError when the source has no records.
var ErrEmpty = errors.New("dataset has no records")

// RequiredColumns lists the columns every dataset source must provide.
var RequiredColumns = []string{
	model.ColumnLaunchSite,
	model.ColumnPayloadMass,
	model.ColumnClass,
	model.ColumnBoosterCategory,
}

const allSitesLabel = "All Sites"

// LoadError reports a dataset that is missing, unreadable or malformed.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("failed to load dataset: %v", e.Err)
	}
	return fmt.Sprintf("failed to load dataset %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Dataset is a read-only ordered table of launch records with values derived at load time.
type Dataset struct {
	source     string
	records    []model.LaunchRecord
	minPayload float64
	maxPayload float64
	sites      []string
}

// FromRecords validates records and builds a Dataset. The slice is copied.
func FromRecords(source string, records []model.LaunchRecord) (*Dataset, error) {
	if len(records) == 0 {
		return nil, &LoadError{Source: source, Err: ErrEmpty}
	}
	ds := &Dataset{
		source:  source,
		records: make([]model.LaunchRecord, len(records)),
	}
	copy(ds.records, records)

	seen := make(map[string]struct{})
	for i, rec := range ds.records {
		if err := validateRecord(rec); err != nil {
			return nil, &LoadError{Source: source, Err: fmt.Errorf("record %d: %w", i+1, err)}
		}
		if i == 0 || rec.PayloadMassKg < ds.minPayload {
			ds.minPayload = rec.PayloadMassKg
		}
		if i == 0 || rec.PayloadMassKg > ds.maxPayload {
			ds.maxPayload = rec.PayloadMassKg
		}
		if _, ok := seen[rec.LaunchSite]; !ok {
			seen[rec.LaunchSite] = struct{}{}
			ds.sites = append(ds.sites, rec.LaunchSite)
		}
	}
	return ds, nil
}

func validateRecord(rec model.LaunchRecord) error {
	if math.IsNaN(rec.PayloadMassKg) || math.IsInf(rec.PayloadMassKg, 0) {
		return fmt.Errorf("payload mass must be finite, got %v", rec.PayloadMassKg)
	}
	if rec.PayloadMassKg < 0 {
		return fmt.Errorf("negative payload mass %v", rec.PayloadMassKg)
	}
	if rec.Class != 0 && rec.Class != 1 {
		return fmt.Errorf("class must be 0 or 1, got %d", rec.Class)
	}
	return nil
}

// Source describes where the dataset was loaded from.
func (d *Dataset) Source() string {
	return d.source
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	return len(d.records)
}

// At returns the record at index i.
func (d *Dataset) At(i int) model.LaunchRecord {
	return d.records[i]
}

// Records returns a copy of all records in load order.
func (d *Dataset) Records() []model.LaunchRecord {
	out := make([]model.LaunchRecord, len(d.records))
	copy(out, d.records)
	return out
}

// MinPayload returns the smallest payload mass in the dataset.
func (d *Dataset) MinPayload() float64 {
	return d.minPayload
}

// MaxPayload returns the largest payload mass in the dataset.
func (d *Dataset) MaxPayload() float64 {
	return d.maxPayload
}

// PayloadBounds returns the dataset payload range.
func (d *Dataset) PayloadBounds() model.PayloadRange {
	return model.PayloadRange{Low: d.minPayload, High: d.maxPayload}
}

// Sites returns the distinct launch sites in order of first appearance.
func (d *Dataset) Sites() []string {
	return append([]string(nil), d.sites...)
}

// HasSite reports whether site occurs in the dataset.
func (d *Dataset) HasSite(site string) bool {
	for _, s := range d.sites {
		if s == site {
			return true
		}
	}
	return false
}

// SiteOptions returns the site selector entries, starting with the all-sites entry.
func (d *Dataset) SiteOptions() []model.SiteOption {
	opts := make([]model.SiteOption, 0, len(d.sites)+1)
	opts = append(opts, model.SiteOption{Label: allSitesLabel, Value: model.AllSites})
	for _, site := range d.sites {
		opts = append(opts, model.SiteOption{Label: site, Value: site})
	}
	return opts
}
