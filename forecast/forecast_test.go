package forecast

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/sartorproj/paxcast/metrics"
	"github.com/sartorproj/paxcast/sarima"
	"github.com/sartorproj/paxcast/timeseries"
)

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := ParseDate(s)
	require.NoError(t, err)
	return d
}

func TestHorizon(t *testing.T) {
	tests := []struct {
		start, end string
		want       int
	}{
		{"1961-01-01", "1962-01-01", 12},
		{"1961-01-01", "1961-01-01", 0},
		{"1961-01-01", "1961-01-30", 0},
		{"1961-01-01", "1961-01-31", 1},
		{"1961-01-01", "1961-03-02", 2},
		{"1961-01-02", "1961-01-01", -1},
		{"1961-01-31", "1961-01-01", -1},
		{"1961-02-01", "1961-01-01", -2},
	}

	for _, tt := range tests {
		t.Run(tt.start+"_"+tt.end, func(t *testing.T) {
			assert.Equal(t, tt.want, Horizon(date(t, tt.start), date(t, tt.end)))
		})
	}
}

func TestHorizonIgnoresClockTime(t *testing.T) {
	start := time.Date(1961, 1, 1, 23, 0, 0, 0, time.UTC)
	end := time.Date(1961, 1, 31, 1, 0, 0, 0, time.UTC)
	assert.Equal(t, 1, Horizon(start, end))
}

func TestMonthEnds(t *testing.T) {
	ends := MonthEnds(date(t, "1961-01-01"), 12)
	require.Len(t, ends, 12)
	assert.Equal(t, "1961-01-31", ends[0].Format(DateLayout))
	assert.Equal(t, "1961-02-28", ends[1].Format(DateLayout))
	assert.Equal(t, "1961-12-31", ends[11].Format(DateLayout))

	// A start on a month end is its own first month end.
	ends = MonthEnds(date(t, "1964-01-31"), 2)
	assert.Equal(t, "1964-01-31", ends[0].Format(DateLayout))
	assert.Equal(t, "1964-02-29", ends[1].Format(DateLayout))

	ends = MonthEnds(date(t, "1961-02-15"), 1)
	assert.Equal(t, "1961-02-28", ends[0].Format(DateLayout))

	assert.Nil(t, MonthEnds(date(t, "1961-01-01"), 0))
	assert.Nil(t, MonthEnds(date(t, "1961-01-01"), -3))
}

func TestValidateRange(t *testing.T) {
	assert.NoError(t, ValidateRange(date(t, "1961-01-01"), date(t, "1961-01-02")))
	assert.ErrorIs(t, ValidateRange(date(t, "1961-01-01"), date(t, "1961-01-01")), ErrInvalidRange)
	assert.ErrorIs(t, ValidateRange(date(t, "1962-01-01"), date(t, "1961-01-01")), ErrInvalidRange)
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate(" 1961-03-15 ")
	require.NoError(t, err)
	assert.Equal(t, time.Date(1961, 3, 15, 0, 0, 0, 0, time.UTC), d)

	for _, bad := range []string{"", "1961-13-01", "15/03/1961", "1961-03"} {
		_, err := ParseDate(bad)
		assert.Error(t, err, bad)
	}
}

func TestDateJSON(t *testing.T) {
	data, err := json.Marshal(NewDate(time.Date(1961, 1, 31, 15, 4, 5, 0, time.UTC)))
	require.NoError(t, err)
	assert.JSONEq(t, `"1961-01-31"`, string(data))

	var d Date
	require.NoError(t, json.Unmarshal([]byte(`"1962-02-28"`), &d))
	assert.Equal(t, "1962-02-28", d.String())
	assert.Error(t, json.Unmarshal([]byte(`"soon"`), &d))
}

type fakePredictor struct {
	calls  int
	steps  int
	offset float64
	err    error
}

func (f *fakePredictor) PredictWithInterval(steps int, confidence float64) ([]float64, []float64, []float64, error) {
	f.calls++
	f.steps = steps
	if f.err != nil {
		return nil, nil, nil, f.err
	}
	mean := make([]float64, steps)
	lower := make([]float64, steps)
	upper := make([]float64, steps)
	for i := range mean {
		mean[i] = 400 + float64(i)
		lower[i] = mean[i] - 10 - f.offset
		upper[i] = mean[i] + 10
	}
	return mean, lower, upper, nil
}

func TestGenerate(t *testing.T) {
	p := &fakePredictor{}
	m := metrics.New(nil)
	g := NewGenerator(zaptest.NewLogger(t), p, 0.8, m)

	result, err := g.Generate(date(t, "1961-01-01"), date(t, "1962-01-01"))
	require.NoError(t, err)

	assert.Equal(t, 12, p.steps)
	assert.Equal(t, 12, result.Horizon)
	assert.Equal(t, 0.8, result.Confidence)
	assert.NotEmpty(t, result.ID)
	require.Equal(t, 12, result.Len())
	assert.Equal(t, "1961-01-31", result.Rows[0].Month.String())
	assert.Equal(t, "1961-12-31", result.Rows[11].Month.String())
	assert.Equal(t, 400.0, result.Rows[0].Predicted)
	assert.Equal(t, 390.0, result.Rows[0].Lower)
	assert.Equal(t, 421.0, result.Rows[11].Upper)

	var pb dto.Metric
	require.NoError(t, m.ForecastHorizon.Write(&pb))
	assert.Equal(t, uint64(1), pb.GetHistogram().GetSampleCount())
	assert.Equal(t, 12.0, pb.GetHistogram().GetSampleSum())
}

func TestGenerateEmptyHorizon(t *testing.T) {
	p := &fakePredictor{}
	g := NewGenerator(zaptest.NewLogger(t), p, 0, nil)
	assert.Equal(t, sarima.DefaultConfidence, g.Confidence())

	for _, end := range []string{"1961-01-01", "1961-01-29", "1960-06-01"} {
		result, err := g.Generate(date(t, "1961-01-01"), date(t, end))
		require.NoError(t, err)
		assert.Equal(t, 0, result.Len(), end)
		assert.Equal(t, 0, result.Horizon)
		assert.NotNil(t, result.Rows)
	}
	assert.Zero(t, p.calls)
}

func TestGenerateErrors(t *testing.T) {
	boom := errors.New("boom")
	g := NewGenerator(zaptest.NewLogger(t), &fakePredictor{err: boom}, 0.95, nil)
	_, err := g.Generate(date(t, "1961-01-01"), date(t, "1961-06-01"))
	assert.ErrorIs(t, err, boom)

	g = NewGenerator(zaptest.NewLogger(t), &fakePredictor{offset: -50}, 0.95, nil)
	_, err = g.Generate(date(t, "1961-01-01"), date(t, "1961-06-01"))
	assert.ErrorIs(t, err, ErrInvalidInterval)

	p := &fakePredictor{}
	g = NewGenerator(zaptest.NewLogger(t), p, 0.95, nil)
	_, err = g.Generate(date(t, "1961-01-01"), date(t, "2500-01-01"))
	assert.ErrorIs(t, err, ErrHorizonTooLarge)
	assert.Zero(t, p.calls)
}

func TestGenerateAirPassengers(t *testing.T) {
	history, err := timeseries.LoadMonthly("../dataset/AirPassengers.csv", "Month", "#Passengers")
	require.NoError(t, err)

	model := sarima.NewFromOrder(sarima.Order{P: 1, D: 1, Q: 1, SP: 1, SD: 1, SQ: 1, M: 12})
	require.NoError(t, model.Fit(history))

	g := NewGenerator(zaptest.NewLogger(t), model, 0.95, nil)
	start, end := date(t, "1961-01-01"), date(t, "1962-01-01")
	result, err := g.Generate(start, end)
	require.NoError(t, err)
	require.Equal(t, 12, result.Len())

	for i, row := range result.Rows {
		assert.LessOrEqual(t, row.Lower, row.Predicted, "row %d", i)
		assert.LessOrEqual(t, row.Predicted, row.Upper, "row %d", i)
		assert.False(t, row.Month.Before(start), "row %d", i)
		assert.Equal(t, timeseries.MonthEnd(row.Month.Time), row.Month.Time)
	}

	again, err := g.Generate(start, end)
	require.NoError(t, err)
	assert.Equal(t, result.Rows, again.Rows)
	assert.NotEqual(t, result.ID, again.ID)
}
