// Package query derives chart-ready result sets from a launch dataset.
//
// Every function here is pure: results depend only on the dataset and the
// filter arguments, and a fresh result is built on each call.
package query

import (
	"github.com/verte-zerg/launchdash/internal/dataset"
	"github.com/verte-zerg/launchdash/internal/model"
)

// Result holds both result sets computed for one filter selection.
type Result struct {
	Selection   model.FilterSelection
	Success     model.SuccessSummary
	Correlation model.CorrelationSet
}

// DefaultSelection covers every site and the full payload range of ds.
func DefaultSelection(ds *dataset.Dataset) model.FilterSelection {
	return model.FilterSelection{
		Site:    model.AllSites,
		Payload: ds.PayloadBounds(),
	}
}

// Evaluate recomputes both result sets for sel.
func Evaluate(ds *dataset.Dataset, sel model.FilterSelection) Result {
	return Result{
		Selection:   sel,
		Success:     SummarizeSuccess(ds, sel.Site),
		Correlation: FilterForCorrelation(ds, sel.Site, sel.Payload),
	}
}

// SummarizeSuccess groups launches for the success chart.
//
// For AllSites the result maps every site to its number of successful
// launches. For a single site it maps each outcome class to the number of
// launches with that class. An unknown site yields an empty summary.
func SummarizeSuccess(ds *dataset.Dataset, site string) model.SuccessSummary {
	if site == model.AllSites {
		return successBySite(ds)
	}
	return outcomesForSite(ds, site)
}

func successBySite(ds *dataset.Dataset) model.SuccessSummary {
	summary := model.SuccessSummary{GroupBy: model.GroupBySite}
	index := make(map[string]int)
	for i := 0; i < ds.Len(); i++ {
		rec := ds.At(i)
		pos, ok := index[rec.LaunchSite]
		if !ok {
			pos = len(summary.Slices)
			index[rec.LaunchSite] = pos
			summary.Slices = append(summary.Slices, model.SuccessSlice{Key: rec.LaunchSite})
		}
		summary.Slices[pos].Count += rec.Class
	}
	return summary
}

func outcomesForSite(ds *dataset.Dataset, site string) model.SuccessSummary {
	summary := model.SuccessSummary{GroupBy: model.GroupByClass}
	index := make(map[int]int, 2)
	for i := 0; i < ds.Len(); i++ {
		rec := ds.At(i)
		if rec.LaunchSite != site {
			continue
		}
		pos, ok := index[rec.Class]
		if !ok {
			pos = len(summary.Slices)
			index[rec.Class] = pos
			summary.Slices = append(summary.Slices, model.SuccessSlice{Key: model.ClassKey(rec.Class)})
		}
		summary.Slices[pos].Count++
	}
	return summary
}

// FilterForCorrelation returns the records whose payload lies within rng,
// restricted to site unless it is AllSites. Dataset order is preserved.
// An inverted range or unknown site yields an empty set.
func FilterForCorrelation(ds *dataset.Dataset, site string, rng model.PayloadRange) model.CorrelationSet {
	out := model.CorrelationSet{}
	// Short-circuit: Contains is false for every value of an inverted range.
	if rng.Inverted() {
		return out
	}
	for i := 0; i < ds.Len(); i++ {
		rec := ds.At(i)
		if !rng.Contains(rec.PayloadMassKg) {
			continue
		}
		if site != model.AllSites && rec.LaunchSite != site {
			continue
		}
		out = append(out, rec)
	}
	return out
}
