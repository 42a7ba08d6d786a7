// Package trainer loads the passenger dataset and fits the dashboard's
// SARIMA model once per process.
package trainer

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sartorproj/paxcast/metrics"
	"github.com/sartorproj/paxcast/sarima"
	"github.com/sartorproj/paxcast/timeseries"
)

// ErrFit is wrapped by Train when the model cannot be estimated.
var ErrFit = errors.New("model fit failed")

// DefaultOrder is SARIMA(1,1,1)(1,1,1)[12].
var DefaultOrder = sarima.Order{P: 1, D: 1, Q: 1, SP: 1, SD: 1, SQ: 1, M: 12}

// Dataset is a source of the historical series.
// Identity must change whenever Load would return different data.
type Dataset interface {
	Identity() string
	Load() (*timeseries.Series, error)
}

// FileDataset reads a monthly CSV from a fixed path.
type FileDataset struct {
	Path        string
	DateColumn  string
	ValueColumn string
}

// Identity returns the dataset path and columns.
func (d FileDataset) Identity() string {
	return fmt.Sprintf("file:%s[%s,%s]", d.Path, d.DateColumn, d.ValueColumn)
}

// Load reads and validates the monthly series.
func (d FileDataset) Load() (*timeseries.Series, error) {
	return timeseries.LoadMonthly(d.Path, d.DateColumn, d.ValueColumn)
}

// DataLoadError reports a dataset that is missing or malformed.
type DataLoadError struct {
	Dataset string
	Err     error
}

func (e *DataLoadError) Error() string {
	return fmt.Sprintf("failed to load dataset %s: %v", e.Dataset, e.Err)
}

func (e *DataLoadError) Unwrap() error { return e.Err }

// Result is the fitted model together with the series it was fit on.
// Both are shared by every caller and must be treated as read-only.
type Result struct {
	Model   *sarima.Model
	History *timeseries.Series
	// Dataset is the identity the result was computed for.
	Dataset string
	// FittedAt is when the fit completed.
	FittedAt time.Time
	// FitDuration covers loading and estimation.
	FitDuration time.Duration
}

// Stats counts Train calls served from and missing the cache.
type Stats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
}

// Trainer owns the single cached fit. It is safe for concurrent use.
type Trainer struct {
	logger  *zap.Logger
	dataset Dataset
	order   sarima.Order
	metrics *metrics.Metrics

	mu     sync.Mutex
	key    string
	result *Result
	stats  Stats
}

// New creates a trainer for dataset. A zero order selects DefaultOrder and
// a nil m disables metrics.
func New(logger *zap.Logger, dataset Dataset, order sarima.Order, m *metrics.Metrics) *Trainer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if order == (sarima.Order{}) {
		order = DefaultOrder
	}
	return &Trainer{
		logger:  logger.Named("trainer"),
		dataset: dataset,
		order:   order,
		metrics: m,
	}
}

// Order returns the model order the trainer fits.
func (t *Trainer) Order() sarima.Order { return t.order }

// Train returns the fitted model and history. The first call loads and fits;
// later calls for the same dataset identity return the same *Result.
// Failures are returned to the caller and not cached.
func (t *Trainer) Train() (*Result, error) {
	key := t.dataset.Identity()

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.result != nil && t.key == key {
		t.stats.Hits++
		t.observe("hit")
		return t.result, nil
	}
	t.stats.Misses++
	t.observe("miss")

	result, err := t.fit(key)
	if err != nil {
		t.observe("error")
		return nil, err
	}

	t.key = key
	t.result = result
	return result, nil
}

// Stats returns a snapshot of the cache counters.
func (t *Trainer) Stats() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stats
}

func (t *Trainer) fit(key string) (*Result, error) {
	start := time.Now()
	log := t.logger.With(zap.String("dataset", key), zap.Stringer("order", t.order))

	history, err := t.dataset.Load()
	if err != nil {
		log.Error("Failed to load dataset", zap.Error(err))
		return nil, &DataLoadError{Dataset: key, Err: err}
	}

	model := sarima.NewFromOrder(t.order)
	if err := model.Fit(history); err != nil {
		log.Error("Failed to fit model", zap.Error(err))
		return nil, fmt.Errorf("%w: SARIMA%s on %d observations: %w", ErrFit, t.order, history.Len(), err)
	}

	elapsed := time.Since(start)
	if t.metrics != nil {
		t.metrics.FitDuration.Observe(elapsed.Seconds())
	}

	last, _, _ := history.Last()
	log.Info("Model fitted",
		zap.Int("observations", history.Len()),
		zap.Time("last", last),
		zap.Float64("aic", model.AIC),
		zap.Duration("elapsed", elapsed))

	return &Result{
		Model:       model,
		History:     history,
		Dataset:     key,
		FittedAt:    time.Now(),
		FitDuration: elapsed,
	}, nil
}

func (t *Trainer) observe(result string) {
	if t.metrics != nil {
		t.metrics.TrainerCache.WithLabelValues(result).Inc()
	}
}
