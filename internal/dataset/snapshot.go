package dataset

import (
	"context"

	"github.com/verte-zerg/launchdash/internal/model"
)

// RecordLister provides stored launch records in dataset order.
type RecordLister interface {
	ListLaunches(ctx context.Context) ([]model.LaunchRecord, error)
}

// LoadSnapshot builds a Dataset from previously stored records.
func LoadSnapshot(ctx context.Context, src RecordLister, source string) (*Dataset, error) {
	records, err := src.ListLaunches(ctx)
	if err != nil {
		return nil, &LoadError{Source: source, Err: err}
	}
	return FromRecords(source, records)
}
