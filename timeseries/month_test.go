package timeseries

import (
	"errors"
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestMonthEnd(t *testing.T) {
	tests := []struct {
		in, want time.Time
	}{
		{date(1961, time.January, 1), date(1961, time.January, 31)},
		{date(1961, time.February, 14), date(1961, time.February, 28)},
		{date(1964, time.February, 1), date(1964, time.February, 29)},
		{date(1961, time.December, 31), date(1961, time.December, 31)},
	}

	for _, tt := range tests {
		if got := MonthEnd(tt.in); !got.Equal(tt.want) {
			t.Errorf("MonthEnd(%s): expected %s, got %s",
				tt.in.Format("2006-01-02"), tt.want.Format("2006-01-02"), got.Format("2006-01-02"))
		}
	}
}

func TestAddMonths(t *testing.T) {
	got := AddMonths(date(1960, time.December, 1), 1)
	if want := date(1961, time.January, 1); !got.Equal(want) {
		t.Errorf("Expected %v, got %v", want, got)
	}

	got = AddMonths(date(1960, time.December, 15), 12)
	if want := date(1961, time.December, 1); !got.Equal(want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestValidateMonthly(t *testing.T) {
	months := func(ms ...time.Time) *Series {
		s, _ := NewWithTimestamps(ms, make([]float64, len(ms)))
		return s
	}

	tests := []struct {
		name   string
		series *Series
		target error
	}{
		{"contiguous", months(date(1960, time.November, 1), date(1960, time.December, 1), date(1961, time.January, 1)), nil},
		{"empty", months(), ErrEmptySeries},
		{"nil", nil, ErrEmptySeries},
		{"no index", &Series{Values: []float64{1, 2}}, ErrMissingTimestamps},
		{"gap", months(date(1960, time.January, 1), date(1960, time.March, 1)), ErrNotMonthly},
		{"duplicate", months(date(1960, time.January, 1), date(1960, time.January, 1)), ErrNotMonthly},
		{"descending", months(date(1960, time.February, 1), date(1960, time.January, 1)), ErrNotMonthly},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateMonthly(tt.series)
			if tt.target == nil {
				if err != nil {
					t.Errorf("Expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.target) {
				t.Errorf("Expected %v, got %v", tt.target, err)
			}
		})
	}
}
