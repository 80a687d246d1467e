package query

import (
	"fmt"

	"github.com/verte-zerg/launchdash/internal/model"
)

// ChartKind identifies one of the dashboard charts.
type ChartKind int

const (
	// KindSuccess is the success breakdown chart.
	KindSuccess ChartKind = iota
	// KindCorrelation is the payload versus outcome chart.
	KindCorrelation
)

func (k ChartKind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindCorrelation:
		return "correlation"
	default:
		return fmt.Sprintf("ChartKind(%d)", int(k))
	}
}

// FormatTitle returns the chart title for kind and site.
func FormatTitle(kind ChartKind, site string) string {
	all := site == model.AllSites
	switch kind {
	case KindCorrelation:
		if all {
			return "Correlation between Payload and Success for all Sites"
		}
		return fmt.Sprintf("Correlation between Payload and Success for %s Site", site)
	default:
		if all {
			return "Total Success Launches by Site"
		}
		return fmt.Sprintf("Total Success Launches for site %s", site)
	}
}
