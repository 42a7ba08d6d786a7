// Package forecast turns a date range into SARIMA forecasts with prediction
// intervals indexed by month end.
package forecast

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sartorproj/paxcast/metrics"
	"github.com/sartorproj/paxcast/sarima"
)

// MaxHorizon bounds the number of steps a single request may ask for.
const MaxHorizon = 600

var (
	// ErrHorizonTooLarge is returned for ranges longer than MaxHorizon periods.
	ErrHorizonTooLarge = errors.New("forecast horizon too large")
	// ErrInvalidInterval is returned when the model produces bounds that do
	// not enclose the point forecast.
	ErrInvalidInterval = errors.New("prediction interval does not enclose forecast")
)

// Predictor is the part of a fitted model the generator needs.
// *sarima.Model satisfies it.
type Predictor interface {
	PredictWithInterval(steps int, confidence float64) (forecasts, lower, upper []float64, err error)
}

var _ Predictor = (*sarima.Model)(nil)

// Row is one forecast month.
type Row struct {
	Month     Date    `json:"month"`
	Predicted float64 `json:"predicted"`
	Lower     float64 `json:"lower"`
	Upper     float64 `json:"upper"`
}

// Result is the forecast for one request.
type Result struct {
	ID         string  `json:"id"`
	Start      Date    `json:"start"`
	End        Date    `json:"end"`
	Horizon    int     `json:"horizon"`
	Confidence float64 `json:"confidence"`
	Rows       []Row   `json:"rows"`
}

// Len returns the number of forecast rows.
func (r *Result) Len() int { return len(r.Rows) }

// Generator produces forecasts from a fitted model.
type Generator struct {
	logger     *zap.Logger
	model      Predictor
	confidence float64
	metrics    *metrics.Metrics
}

// NewGenerator creates a generator. A confidence outside (0, 1) selects
// sarima.DefaultConfidence and a nil m disables metrics.
func NewGenerator(logger *zap.Logger, model Predictor, confidence float64, m *metrics.Metrics) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if confidence <= 0 || confidence >= 1 {
		confidence = sarima.DefaultConfidence
	}
	return &Generator{
		logger:     logger.Named("forecast"),
		model:      model,
		confidence: confidence,
		metrics:    m,
	}
}

// Confidence returns the interval level used for every forecast.
func (g *Generator) Confidence() float64 { return g.confidence }

// Generate forecasts Horizon(start, end) steps past the end of the history
// and indexes them by MonthEnds(start, horizon). A horizon of zero or less
// yields a result with no rows. Callers are expected to have checked the
// range with ValidateRange.
func (g *Generator) Generate(start, end time.Time) (*Result, error) {
	h := Horizon(start, end)
	result := &Result{
		ID:         uuid.NewString(),
		Start:      NewDate(start),
		End:        NewDate(end),
		Horizon:    max(h, 0),
		Confidence: g.confidence,
		Rows:       []Row{},
	}
	log := g.logger.With(
		zap.String("id", result.ID),
		zap.Stringer("start", result.Start),
		zap.Stringer("end", result.End),
		zap.Int("horizon", h))

	if h > MaxHorizon {
		return nil, fmt.Errorf("%w: %d periods, at most %d", ErrHorizonTooLarge, h, MaxHorizon)
	}
	if g.metrics != nil {
		g.metrics.ForecastHorizon.Observe(float64(result.Horizon))
	}
	if h <= 0 {
		log.Debug("Empty forecast horizon")
		return result, nil
	}

	predicted, lower, upper, err := g.model.PredictWithInterval(h, g.confidence)
	if err != nil {
		return nil, fmt.Errorf("failed to forecast %d periods: %w", h, err)
	}

	months := MonthEnds(start, h)
	n := min(len(months), len(predicted), len(lower), len(upper))
	result.Rows = make([]Row, n)
	for i := 0; i < n; i++ {
		if !(lower[i] <= predicted[i] && predicted[i] <= upper[i]) {
			return nil, fmt.Errorf("%w at step %d: %v <= %v <= %v", ErrInvalidInterval, i+1, lower[i], predicted[i], upper[i])
		}
		result.Rows[i] = Row{
			Month:     NewDate(months[i]),
			Predicted: predicted[i],
			Lower:     lower[i],
			Upper:     upper[i],
		}
	}

	log.Debug("Forecast generated", zap.Int("rows", n))
	return result, nil
}
