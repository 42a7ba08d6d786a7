package timeseries

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrEmptySeries is returned when a monthly series has no observations.
	ErrEmptySeries = errors.New("series is empty")
	// ErrMissingTimestamps is returned when values are not indexed by month.
	ErrMissingTimestamps = errors.New("series has no month index")
	// ErrNotMonthly is returned when the month index is unordered, duplicated, or has gaps.
	ErrNotMonthly = errors.New("series is not a contiguous monthly sequence")
)

// MonthStart truncates t to midnight UTC on the first day of its month.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// MonthEnd returns midnight UTC on the last day of the month containing t.
func MonthEnd(t time.Time) time.Time {
	return MonthStart(t).AddDate(0, 1, -1)
}

// AddMonths moves a month-start timestamp by n calendar months.
func AddMonths(t time.Time, n int) time.Time {
	return MonthStart(t).AddDate(0, n, 0)
}

// ValidateMonthly checks that the series is indexed by strictly ascending,
// unique, gap-free calendar months.
func ValidateMonthly(s *Series) error {
	if s == nil || s.Len() == 0 {
		return ErrEmptySeries
	}
	if len(s.Timestamps) != len(s.Values) {
		return ErrMissingTimestamps
	}

	for i := 1; i < len(s.Timestamps); i++ {
		prev := MonthStart(s.Timestamps[i-1])
		cur := MonthStart(s.Timestamps[i])
		switch want := AddMonths(prev, 1); {
		case !cur.After(prev):
			return fmt.Errorf("%w: %s does not follow %s",
				ErrNotMonthly, cur.Format("2006-01"), prev.Format("2006-01"))
		case !cur.Equal(want):
			return fmt.Errorf("%w: missing %s before %s",
				ErrNotMonthly, want.Format("2006-01"), cur.Format("2006-01"))
		}
	}

	return nil
}
