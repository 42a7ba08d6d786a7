package timeseries

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrNoData is returned when a CSV yields no observations.
	ErrNoData = errors.New("no valid data found in CSV")
	// ErrColumnNotFound is returned in strict mode when a named column is absent.
	ErrColumnNotFound = errors.New("column not found")
)

// ParseError describes a cell that could not be parsed in strict mode.
type ParseError struct {
	Line   int
	Column string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: column %q: cannot parse %q: %v", e.Line, e.Column, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// CSVOptions holds options for CSV loading.
type CSVOptions struct {
	DateColumn  string // Column name for dates (optional)
	ValueColumn string // Column name for values (default: "y")
	DateFormat  string // Date format tried first (default: "2006-01-02")
	HasHeader   bool   // Whether CSV has header row (default: true)
	Delimiter   rune   // Field delimiter (default: ',')
	SkipRows    int    // Number of rows to skip at start
	Strict      bool   // Fail on missing columns and unparsable cells instead of skipping
}

// DefaultCSVOptions returns default options for CSV loading.
func DefaultCSVOptions() *CSVOptions {
	return &CSVOptions{
		ValueColumn: "y",
		DateFormat:  "2006-01-02",
		HasHeader:   true,
		Delimiter:   ',',
	}
}

// dateLayouts are tried in order after CSVOptions.DateFormat.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01",
	"2006-01-02T15:04:05",
	"2006/01/02",
	"2006/01",
	"01/02/2006",
	"02-Jan-2006",
	"2006",
}

var missingValues = map[string]bool{"": true, "NA": true, "NaN": true, "null": true}

// LoadCSV loads a time series from a CSV file.
func LoadCSV(filename string, opts *CSVOptions) (*Series, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	s, err := LoadCSVFromReader(file, opts)
	if err != nil {
		return nil, err
	}
	if s.Name == "" {
		s.Name = filename
	}
	return s, nil
}

// LoadMonthly loads a strictly parsed monthly series and validates its month index.
func LoadMonthly(filename, dateColumn, valueColumn string) (*Series, error) {
	opts := DefaultCSVOptions()
	opts.DateColumn = dateColumn
	opts.ValueColumn = valueColumn
	opts.DateFormat = "2006-01"
	opts.Strict = true

	s, err := LoadCSV(filename, opts)
	if err != nil {
		return nil, err
	}
	for i, ts := range s.Timestamps {
		s.Timestamps[i] = MonthStart(ts)
	}
	if err := ValidateMonthly(s); err != nil {
		return nil, err
	}
	return s, nil
}

// LoadCSVFromReader loads a time series from an io.Reader.
func LoadCSVFromReader(r io.Reader, opts *CSVOptions) (*Series, error) {
	if opts == nil {
		opts = DefaultCSVOptions()
	}

	reader := csv.NewReader(r)
	reader.Comma = opts.Delimiter
	reader.TrimLeadingSpace = true

	for i := 0; i < opts.SkipRows; i++ {
		if _, err := reader.Read(); err != nil {
			return nil, err
		}
	}

	valueIdx, dateIdx := 1, 0
	valueName, dateName := "1", "0"
	if opts.HasHeader {
		header, err := reader.Read()
		if err != nil {
			return nil, err
		}
		valueIdx, dateIdx = findColumns(header, opts)
		if opts.Strict {
			if valueIdx == -1 {
				return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, opts.ValueColumn)
			}
			if opts.DateColumn != "" && dateIdx == -1 {
				return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, opts.DateColumn)
			}
		}
		if valueIdx == -1 {
			valueIdx = len(header) - 1
		}
		valueName = cell(header, valueIdx)
		dateName = cell(header, dateIdx)
	}

	var values []float64
	var timestamps []time.Time

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line, _ := reader.FieldPos(0)

		valStr := cell(record, valueIdx)
		if missingValues[valStr] {
			if opts.Strict {
				return nil, &ParseError{Line: line, Column: valueName, Value: valStr, Err: errors.New("missing value")}
			}
			continue
		}
		val, err := strconv.ParseFloat(valStr, 64)
		if err != nil {
			if opts.Strict {
				return nil, &ParseError{Line: line, Column: valueName, Value: valStr, Err: err}
			}
			continue
		}

		if dateIdx >= 0 && (dateIdx < len(record) || opts.Strict) {
			dateStr := cell(record, dateIdx)
			ts, err := parseDate(dateStr, opts.DateFormat)
			if err != nil && opts.Strict {
				return nil, &ParseError{Line: line, Column: dateName, Value: dateStr, Err: err}
			}
			if err == nil {
				timestamps = append(timestamps, ts)
			}
		}
		values = append(values, val)
	}

	if len(values) == 0 {
		return nil, ErrNoData
	}

	if len(timestamps) == len(values) {
		return &Series{
			Timestamps: timestamps,
			Values:     values,
			Name:       valueName,
		}, nil
	}

	s := New(values)
	s.Name = valueName
	return s, nil
}

// findColumns resolves value and date column indices from a header row.
func findColumns(header []string, opts *CSVOptions) (valueIdx, dateIdx int) {
	valueIdx, dateIdx = -1, -1
	for i := range header {
		h := cell(header, i)
		switch {
		case h == opts.ValueColumn || (opts.ValueColumn == "" && (h == "y" || h == "value" || h == "Value")):
			valueIdx = i
		case opts.DateColumn != "" && h == opts.DateColumn:
			dateIdx = i
		case opts.DateColumn == "" && (h == "ds" || h == "date" || h == "Date" || h == "Month" || h == "Year"):
			if dateIdx == -1 {
				dateIdx = i
			}
		}
	}
	return valueIdx, dateIdx
}

func parseDate(s, preferred string) (time.Time, error) {
	var err error
	for _, layout := range append([]string{preferred}, dateLayouts...) {
		if layout == "" {
			continue
		}
		var ts time.Time
		if ts, err = time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, err
}

func cell(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(strings.Trim(record[idx], "\""))
}
