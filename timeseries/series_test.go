package timeseries

import (
	"math"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5}
	s := New(values)

	if s.Len() != 5 {
		t.Errorf("Expected length 5, got %d", s.Len())
	}

	for i, v := range s.Values {
		if v != values[i] {
			t.Errorf("Expected value %f at index %d, got %f", values[i], i, v)
		}
	}

	if err := ValidateMonthly(s); err != nil {
		t.Errorf("Expected New to produce a monthly index, got %v", err)
	}
}

func TestNewWithTimestamps(t *testing.T) {
	ts := []time.Time{time.Now()}
	if _, err := NewWithTimestamps(ts, []float64{1, 2}); err == nil {
		t.Error("Expected error for mismatched lengths")
	}

	s, err := NewWithTimestamps(ts, []float64{1})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if s.Len() != 1 {
		t.Errorf("Expected length 1, got %d", s.Len())
	}
}

func TestMean(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		expected float64
	}{
		{"simple", []float64{1, 2, 3, 4, 5}, 3.0},
		{"single", []float64{5}, 5.0},
		{"negative", []float64{-1, -2, -3}, -2.0},
		{"mixed", []float64{-1, 0, 1}, 0.0},
		{"empty", []float64{}, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(tt.values)
			result := s.Mean()
			if math.Abs(result-tt.expected) > 1e-10 {
				t.Errorf("Expected mean %f, got %f", tt.expected, result)
			}
		})
	}
}

func TestVariance(t *testing.T) {
	s := New([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	expected := 4.571428571428571

	result := s.Variance()
	if math.Abs(result-expected) > 1e-10 {
		t.Errorf("Expected variance %f, got %f", expected, result)
	}

	if v := New([]float64{3}).Variance(); v != 0 {
		t.Errorf("Expected variance 0 for a single value, got %f", v)
	}
}

func TestMinMax(t *testing.T) {
	s := New([]float64{5, 2, 8, 1, 9, 3})

	if s.Min() != 1 {
		t.Errorf("Expected min 1, got %f", s.Min())
	}

	if s.Max() != 9 {
		t.Errorf("Expected max 9, got %f", s.Max())
	}

	empty := New(nil)
	if !math.IsNaN(empty.Min()) || !math.IsNaN(empty.Max()) {
		t.Error("Expected NaN min/max for empty series")
	}
}

func TestLast(t *testing.T) {
	s := New([]float64{10, 20, 30})
	ts, v, ok := s.Last()
	if !ok {
		t.Fatal("Expected ok for non-empty series")
	}
	if v != 30 {
		t.Errorf("Expected last value 30, got %f", v)
	}
	if want := time.Date(1970, time.March, 1, 0, 0, 0, 0, time.UTC); !ts.Equal(want) {
		t.Errorf("Expected last timestamp %v, got %v", want, ts)
	}

	if _, _, ok := New(nil).Last(); ok {
		t.Error("Expected ok=false for empty series")
	}
}

func TestDiff(t *testing.T) {
	s := New([]float64{1, 3, 6, 10, 15})
	diff := s.Diff()

	expected := []float64{2, 3, 4, 5}
	if len(diff.Values) != len(expected) {
		t.Fatalf("Expected length %d, got %d", len(expected), len(diff.Values))
	}

	for i, v := range diff.Values {
		if math.Abs(v-expected[i]) > 1e-10 {
			t.Errorf("Expected %f at index %d, got %f", expected[i], i, v)
		}
	}

	if !diff.Timestamps[0].Equal(s.Timestamps[1]) {
		t.Errorf("Expected differenced series to keep later timestamps")
	}
}

func TestSeasonalDiff(t *testing.T) {
	// Monthly data with yearly seasonality
	values := []float64{10, 12, 14, 16, 18, 20, 22, 24, 26, 28, 30, 32, 11, 13, 15, 17}
	s := New(values)

	diff := s.SeasonalDiff(12)

	// Expected: values[12] - values[0], values[13] - values[1], etc.
	expected := []float64{1, 1, 1, 1}
	if len(diff.Values) != len(expected) {
		t.Fatalf("Expected length %d, got %d", len(expected), len(diff.Values))
	}

	for i, v := range diff.Values {
		if math.Abs(v-expected[i]) > 1e-10 {
			t.Errorf("Expected %f at index %d, got %f", expected[i], i, v)
		}
	}

	if short := New([]float64{1, 2}).SeasonalDiff(12); short.Len() != 0 {
		t.Errorf("Expected empty seasonal diff for short series, got %d values", short.Len())
	}
}

func TestSlice(t *testing.T) {
	s := New([]float64{1, 2, 3, 4, 5})
	sliced := s.Slice(1, 4)

	expected := []float64{2, 3, 4}
	if len(sliced.Values) != len(expected) {
		t.Fatalf("Expected length %d, got %d", len(expected), len(sliced.Values))
	}

	for i, v := range sliced.Values {
		if math.Abs(v-expected[i]) > 1e-10 {
			t.Errorf("Expected %f at index %d, got %f", expected[i], i, v)
		}
	}

	if empty := s.Slice(4, 2); empty.Len() != 0 {
		t.Errorf("Expected empty slice for start >= end, got %d values", empty.Len())
	}
}

func TestCopy(t *testing.T) {
	s := New([]float64{1, 2, 3})
	copied := s.Copy()

	// Modify original
	s.Values[0] = 100
	s.Timestamps[0] = time.Time{}

	// Copy should be unchanged
	if copied.Values[0] != 1 {
		t.Errorf("Copy was modified when original changed")
	}
	if copied.Timestamps[0].IsZero() {
		t.Errorf("Copy timestamps were modified when original changed")
	}
}
