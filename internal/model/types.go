// Package model defines shared data structures.
package model

import "strconv"

// AllSites selects every launch site.
const AllSites = "ALL"

// Grouping keys used by SuccessSummary.
const (
	GroupBySite  = "site"
	GroupByClass = "class"
)

// Column names of the launch dataset.
const (
	ColumnLaunchSite      = "Launch Site"
	ColumnPayloadMass     = "Payload Mass (kg)"
	ColumnClass           = "class"
	ColumnBoosterCategory = "Booster Version Category"
)

// LaunchRecord is one launch attempt and its outcome.
type LaunchRecord struct {
	LaunchSite             string
	PayloadMassKg          float64
	Class                  int
	BoosterVersionCategory string
}

// Succeeded reports whether the launch outcome class is success.
func (r LaunchRecord) Succeeded() bool {
	return r.Class == 1
}

// PayloadRange is an inclusive payload mass interval in kilograms.
type PayloadRange struct {
	Low  float64
	High float64
}

// Contains reports whether v lies within the range. An inverted range contains nothing.
func (r PayloadRange) Contains(v float64) bool {
	return v >= r.Low && v <= r.High
}

// Inverted reports whether Low is greater than High.
func (r PayloadRange) Inverted() bool {
	return r.Low > r.High
}

// FilterSelection is the filter state collected by the dashboard.
type FilterSelection struct {
	Site    string
	Payload PayloadRange
}

// IsAllSites reports whether the selection covers every site.
func (s FilterSelection) IsAllSites() bool {
	return s.Site == AllSites
}

// SuccessSlice is one group of a SuccessSummary.
type SuccessSlice struct {
	Key   string
	Count int
}

// SuccessSummary maps a grouping key to a count of matching records.
// Slices keep the order in which keys first appear in the dataset.
type SuccessSummary struct {
	GroupBy string
	Slices  []SuccessSlice
}

// Counts returns the summary as a plain map.
func (s SuccessSummary) Counts() map[string]int {
	out := make(map[string]int, len(s.Slices))
	for _, slice := range s.Slices {
		out[slice.Key] = slice.Count
	}
	return out
}

// Total returns the sum of all slice counts.
func (s SuccessSummary) Total() int {
	total := 0
	for _, slice := range s.Slices {
		total += slice.Count
	}
	return total
}

// IsEmpty reports whether the summary has no groups.
func (s SuccessSummary) IsEmpty() bool {
	return len(s.Slices) == 0
}

// ClassKey renders an outcome class as a summary key.
func ClassKey(class int) string {
	return strconv.Itoa(class)
}

// CorrelationSet is the ordered subsequence of records selected for the payload correlation view.
type CorrelationSet []LaunchRecord

// SiteOption is a selectable launch site entry.
type SiteOption struct {
	Label string
	Value string
}
