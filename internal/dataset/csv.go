package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/verte-zerg/launchdash/internal/model"
)

// LoadFile reads a CSV dataset from path.
func LoadFile(path string) (*Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Source: path, Err: err}
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only dataset.
			_ = cerr
		}
	}()
	return Load(file, path)
}

// Load parses CSV launch records from r. The first row must be a header
// containing every required column; other columns are ignored.
func Load(r io.Reader, source string) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &LoadError{Source: source, Err: ErrEmpty}
		}
		return nil, &LoadError{Source: source, Err: fmt.Errorf("failed to read header: %w", err)}
	}
	cols, err := columnIndex(headers)
	if err != nil {
		return nil, &LoadError{Source: source, Err: err}
	}

	var records []model.LaunchRecord
	line := 1
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, &LoadError{Source: source, Err: fmt.Errorf("line %d: %w", line, err)}
		}
		if isBlankRow(row) {
			continue
		}
		rec, err := parseRow(row, cols)
		if err != nil {
			return nil, &LoadError{Source: source, Err: fmt.Errorf("line %d: %w", line, err)}
		}
		records = append(records, rec)
	}
	return FromRecords(source, records)
}

type columns struct {
	site    int
	payload int
	class   int
	booster int
}

func columnIndex(headers []string) (columns, error) {
	index := make(map[string]int, len(headers))
	for i, h := range headers {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, ok := index[h]; !ok {
			index[h] = i
		}
	}
	var missing []string
	lookup := func(name string) int {
		i, ok := index[name]
		if !ok {
			missing = append(missing, name)
			return -1
		}
		return i
	}
	cols := columns{
		site:    lookup(model.ColumnLaunchSite),
		payload: lookup(model.ColumnPayloadMass),
		class:   lookup(model.ColumnClass),
		booster: lookup(model.ColumnBoosterCategory),
	}
	if len(missing) > 0 {
		return columns{}, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return cols, nil
}

func parseRow(row []string, cols columns) (model.LaunchRecord, error) {
	cell := func(i int) (string, error) {
		if i >= len(row) {
			return "", fmt.Errorf("row has %d fields, need column %d", len(row), i+1)
		}
		return strings.TrimSpace(row[i]), nil
	}

	site, err := cell(cols.site)
	if err != nil {
		return model.LaunchRecord{}, err
	}
	payloadRaw, err := cell(cols.payload)
	if err != nil {
		return model.LaunchRecord{}, err
	}
	classRaw, err := cell(cols.class)
	if err != nil {
		return model.LaunchRecord{}, err
	}
	booster, err := cell(cols.booster)
	if err != nil {
		return model.LaunchRecord{}, err
	}

	payload, err := strconv.ParseFloat(payloadRaw, 64)
	if err != nil || math.IsNaN(payload) || math.IsInf(payload, 0) {
		return model.LaunchRecord{}, fmt.Errorf("invalid %s %q", model.ColumnPayloadMass, payloadRaw)
	}
	class, err := parseClass(classRaw)
	if err != nil {
		return model.LaunchRecord{}, err
	}
	return model.LaunchRecord{
		LaunchSite:             site,
		PayloadMassKg:          payload,
		Class:                  class,
		BoosterVersionCategory: booster,
	}, nil
}

// parseClass accepts integral class values, including the "1.0" form some exports write.
func parseClass(raw string) (int, error) {
	if v, err := strconv.Atoi(raw); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f != float64(int(f)) {
		return 0, fmt.Errorf("invalid %s %q", model.ColumnClass, raw)
	}
	return int(f), nil
}

func isBlankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
