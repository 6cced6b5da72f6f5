package datasource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/yourusername/vector-bt/internal/timeseries"
)

// TimeLayouts are tried in order when no explicit layout is configured
var TimeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

type priceRecord struct {
	Timestamp string  `csv:"timestamp"`
	Value     float64 `csv:"value"`
}

// CSVSource reads a timestamp,value CSV file
type CSVSource struct {
	Path       string
	TimeFormat string
	reader     io.Reader
}

// NewCSVSource creates a CSV source for a file
func NewCSVSource(path, timeFormat string) *CSVSource {
	return &CSVSource{Path: path, TimeFormat: timeFormat}
}

// NewCSVReaderSource creates a CSV source over an already open reader
func NewCSVReaderSource(name string, r io.Reader, timeFormat string) *CSVSource {
	return &CSVSource{Path: name, TimeFormat: timeFormat, reader: r}
}

// Name returns the file path
func (s *CSVSource) Name() string {
	return "csv:" + s.Path
}

// Load parses every row; timestamps must be strictly increasing
func (s *CSVSource) Load(ctx context.Context) (timeseries.Series, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r := s.reader
	if r == nil {
		f, err := os.Open(s.Path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, NewDataSourceError(s.Name(), ErrCodeNotFound, "file does not exist", ErrNotFound)
			}
			return nil, NewDataSourceError(s.Name(), ErrCodeUnknown, "failed to open file", err)
		}
		defer f.Close()
		r = f
	}

	var records []*priceRecord
	if err := gocsv.Unmarshal(r, &records); err != nil {
		return nil, NewDataSourceError(s.Name(), ErrCodeInvalidData, "failed to parse CSV",
			fmt.Errorf("%w: %w", ErrInvalidData, err))
	}

	times := make([]time.Time, len(records))
	values := make([]float64, len(records))
	for i, rec := range records {
		ts, err := s.parseTime(rec.Timestamp)
		if err != nil {
			return nil, NewDataSourceError(s.Name(), ErrCodeInvalidData,
				fmt.Sprintf("row %d: bad timestamp %q", i+1, rec.Timestamp), fmt.Errorf("%w: %w", ErrInvalidData, err))
		}
		times[i] = ts
		values[i] = rec.Value
	}

	series, err := timeseries.New(times, values)
	if err != nil {
		return nil, NewDataSourceError(s.Name(), ErrCodeInvalidData, "rows out of order", fmt.Errorf("%w: %w", ErrInvalidData, err))
	}
	return series, nil
}

func (s *CSVSource) parseTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if s.TimeFormat != "" {
		return time.Parse(s.TimeFormat, value)
	}
	var lastErr error
	for _, layout := range TimeLayouts {
		ts, err := time.Parse(layout, value)
		if err == nil {
			return ts, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
