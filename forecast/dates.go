package forecast

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sartorproj/paxcast/timeseries"
)

// DateLayout is the calendar date format accepted from and rendered to users.
const DateLayout = "2006-01-02"

// PeriodDays is the length of one forecast step when converting a date range
// into a horizon.
const PeriodDays = 30

// InvalidRangeMessage is the warning shown to users for an empty or reversed range.
const InvalidRangeMessage = "End date must be after start date."

// ErrInvalidRange is returned when the end date does not follow the start date.
var ErrInvalidRange = errors.New("end date must be after start date")

// Date is a calendar date that marshals as YYYY-MM-DD.
type Date struct {
	time.Time
}

// NewDate returns the calendar date of t in UTC.
func NewDate(t time.Time) Date {
	return Date{civil(t)}
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return d.Format(DateLayout)
}

// MarshalJSON implements json.Marshaler.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(DateLayout) + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Date) UnmarshalJSON(data []byte) error {
	t, err := ParseDate(strings.Trim(string(data), `"`))
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// ParseDate parses a YYYY-MM-DD date as midnight UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD", s)
	}
	return t, nil
}

// ValidateRange reports ErrInvalidRange unless end is strictly after start.
func ValidateRange(start, end time.Time) error {
	if !civil(end).After(civil(start)) {
		return ErrInvalidRange
	}
	return nil
}

// Horizon returns the number of PeriodDays periods between start and end,
// rounded toward negative infinity. Only calendar dates are compared.
func Horizon(start, end time.Time) int {
	days := (civil(end).Unix() - civil(start).Unix()) / 86400
	h := days / PeriodDays
	if days%PeriodDays != 0 && days < 0 {
		h--
	}
	return int(h)
}

// MonthEnds returns n consecutive month-end dates, the first being the
// first month end on or after start. It returns nil for n <= 0.
func MonthEnds(start time.Time, n int) []time.Time {
	if n <= 0 {
		return nil
	}
	first := timeseries.MonthStart(civil(start))
	ends := make([]time.Time, n)
	for i := range ends {
		ends[i] = timeseries.MonthEnd(timeseries.AddMonths(first, i))
	}
	return ends
}

func civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
