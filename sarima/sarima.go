// Package sarima implements Seasonal ARIMA (SARIMA) models.
package sarima

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/sartorproj/paxcast/stats"
	"github.com/sartorproj/paxcast/timeseries"
)

var (
	// ErrInsufficientData is returned when the series is too short for the order.
	ErrInsufficientData = errors.New("insufficient data points for the specified order")
	// ErrEmptyDifference is returned when differencing consumes the whole series.
	ErrEmptyDifference = errors.New("differencing resulted in empty series")
	// ErrNotFitted is returned when predicting with an unfitted model.
	ErrNotFitted = errors.New("model must be fitted before prediction")
	// ErrInvalidSteps is returned for a forecast horizon below one.
	ErrInvalidSteps = errors.New("steps must be at least 1")
	// ErrInvalidOrder is returned for negative orders or a missing seasonal period.
	ErrInvalidOrder = errors.New("invalid model order")
)

// DefaultConfidence is the prediction interval level used by Predict.
const DefaultConfidence = 0.95

// Order represents SARIMA model order (p, d, q) x (P, D, Q, m).
type Order struct {
	P int `yaml:"p" json:"p"` // Non-seasonal AR order
	D int `yaml:"d" json:"d"` // Non-seasonal differencing order
	Q int `yaml:"q" json:"q"` // Non-seasonal MA order
	// Seasonal components
	SP int `yaml:"sp" json:"sp"` // Seasonal AR order
	SD int `yaml:"sd" json:"sd"` // Seasonal differencing order
	SQ int `yaml:"sq" json:"sq"` // Seasonal MA order
	M  int `yaml:"m" json:"m"`   // Seasonal period (e.g., 12 for monthly data with yearly seasonality)
}

// String formats the order as (p,d,q)(P,D,Q)[m].
func (o Order) String() string {
	return fmt.Sprintf("(%d,%d,%d)(%d,%d,%d)[%d]", o.P, o.D, o.Q, o.SP, o.SD, o.SQ, o.M)
}

// Validate rejects negative orders and seasonal terms without a period.
func (o Order) Validate() error {
	if o.P < 0 || o.D < 0 || o.Q < 0 || o.SP < 0 || o.SD < 0 || o.SQ < 0 || o.M < 0 {
		return fmt.Errorf("%w %s: orders must be non-negative", ErrInvalidOrder, o)
	}
	if (o.SP > 0 || o.SD > 0 || o.SQ > 0) && o.M < 2 {
		return fmt.Errorf("%w %s: seasonal terms need a period of at least 2", ErrInvalidOrder, o)
	}
	return nil
}

// minObservations is the shortest series Fit accepts for this order.
func (o Order) minObservations() int {
	return o.P + o.Q + o.D + (o.SP+o.SD+o.SQ)*o.M + 20
}

// Model represents a SARIMA model.
type Model struct {
	Order     Order
	ARCoeffs  []float64 // Non-seasonal AR coefficients
	MACoeffs  []float64 // Non-seasonal MA coefficients
	SARCoeffs []float64 // Seasonal AR coefficients
	SMACoeffs []float64 // Seasonal MA coefficients
	Intercept float64
	Variance  float64
	AIC       float64
	AICc      float64 // Corrected AIC for small sample sizes
	BIC       float64
	LogLik    float64

	fitted     bool
	data       *timeseries.Series
	diffData   *timeseries.Series
	residuals  []float64
	fittedVals []float64
}

// New creates a new SARIMA model with the specified order.
func New(p, d, q, sp, sd, sq, m int) *Model {
	return NewFromOrder(Order{P: p, D: d, Q: q, SP: sp, SD: sd, SQ: sq, M: m})
}

// NewFromOrder creates a new SARIMA model from an Order value.
func NewFromOrder(o Order) *Model {
	return &Model{
		Order:     o,
		ARCoeffs:  make([]float64, o.P),
		MACoeffs:  make([]float64, o.Q),
		SARCoeffs: make([]float64, o.SP),
		SMACoeffs: make([]float64, o.SQ),
	}
}

// Fitted reports whether Fit has completed successfully.
func (m *Model) Fitted() bool { return m.fitted }

// NObs returns the number of observations the model was fitted on.
func (m *Model) NObs() int {
	if m.data == nil {
		return 0
	}
	return m.data.Len()
}

// Fit fits the SARIMA model to the given time series data.
// The model keeps a reference to series; callers must not modify it afterwards.
func (m *Model) Fit(series *timeseries.Series) error {
	if err := m.Order.Validate(); err != nil {
		return err
	}
	if series == nil || series.Len() < m.Order.minObservations() {
		return ErrInsufficientData
	}

	// Non-seasonal differencing first, then seasonal.
	diffSeries := series
	for i := 0; i < m.Order.D; i++ {
		diffSeries = diffSeries.Diff()
		if diffSeries.Len() == 0 {
			return ErrEmptyDifference
		}
	}
	for i := 0; i < m.Order.SD; i++ {
		diffSeries = diffSeries.SeasonalDiff(m.Order.M)
		if diffSeries.Len() == 0 {
			return ErrEmptyDifference
		}
	}

	m.data = series
	m.diffData = diffSeries

	m.initCoeffs()
	m.optimizeCSS(diffSeries.Values)
	m.calculateIC()

	m.fitted = true
	return nil
}

// initCoeffs seeds the intercept and AR terms from the differenced series ACF.
func (m *Model) initCoeffs() {
	p, sp, period := m.Order.P, m.Order.SP, m.Order.M

	m.Intercept = stat.Mean(m.diffData.Values, nil)

	if p > 0 {
		if acf := stats.ACF(m.diffData, p); acf != nil {
			for i := 0; i < p && i+1 < len(acf); i++ {
				m.ARCoeffs[i] = acf[i+1] * 0.5
			}
		}
	}

	if sp > 0 {
		if acf := stats.ACF(m.diffData, sp*period); acf != nil {
			for i := 0; i < sp; i++ {
				if idx := (i + 1) * period; idx < len(acf) {
					m.SARCoeffs[i] = acf[idx] * 0.5
				}
			}
		}
	}

	for i := range m.MACoeffs {
		m.MACoeffs[i] = 0.1
	}
	for i := range m.SMACoeffs {
		m.SMACoeffs[i] = 0.1
	}
}

// onestep returns the one-step prediction for index t. MA terms only use
// residuals before known, the number of in-sample observations.
func (m *Model) onestep(y, resid []float64, t, known int) float64 {
	period := m.Order.M
	pred := m.Intercept

	for i := 0; i < m.Order.P && t-i-1 >= 0; i++ {
		pred += m.ARCoeffs[i] * (y[t-i-1] - m.Intercept)
	}
	for i := 0; i < m.Order.SP; i++ {
		if lag := (i + 1) * period; t-lag >= 0 {
			pred += m.SARCoeffs[i] * (y[t-lag] - m.Intercept)
		}
	}
	for i := 0; i < m.Order.Q && t-i-1 >= 0 && t-i-1 < known; i++ {
		pred += m.MACoeffs[i] * resid[t-i-1]
	}
	for i := 0; i < m.Order.SQ; i++ {
		if lag := (i + 1) * period; t-lag >= 0 && t-lag < known {
			pred += m.SMACoeffs[i] * resid[t-lag]
		}
	}

	return pred
}

// optimizeCSS minimises the conditional sum of squares with momentum gradient
// descent and a decaying learning rate, keeping the best parameters seen.
func (m *Model) optimizeCSS(y []float64) {
	n := len(y)
	p, q, sp, sq, period := m.Order.P, m.Order.Q, m.Order.SP, m.Order.SQ, m.Order.M

	const (
		maxIter   = 200
		tolerance = 1e-8
		momentum  = 0.9
		decay     = 0.99
		patience  = 20
	)
	learningRate := 0.005

	arVel := make([]float64, p)
	maVel := make([]float64, q)
	sarVel := make([]float64, sp)
	smaVel := make([]float64, sq)

	startIdx := max(p, q, sp*period, sq*period)
	if startIdx >= n-10 {
		startIdx = 0
	}

	bestSSE := math.Inf(1)
	best := m.snapshot()
	noImprove := 0
	residuals := make([]float64, n)

	for iter := 0; iter < maxIter; iter++ {
		clear(residuals)
		sse := 0.0
		for t := startIdx; t < n; t++ {
			residuals[t] = y[t] - m.onestep(y, residuals, t, n)
			sse += residuals[t] * residuals[t]
		}

		if sse < bestSSE {
			bestSSE = sse
			best = m.snapshot()
			noImprove = 0
		} else {
			noImprove++
		}
		if noImprove > patience {
			break
		}

		arGrad := make([]float64, p)
		maGrad := make([]float64, q)
		sarGrad := make([]float64, sp)
		smaGrad := make([]float64, sq)

		for t := startIdx; t < n; t++ {
			r := residuals[t]
			for i := 0; i < p && t-i-1 >= 0; i++ {
				arGrad[i] -= 2 * r * (y[t-i-1] - m.Intercept)
			}
			for i := 0; i < q && t-i-1 >= 0; i++ {
				maGrad[i] -= 2 * r * residuals[t-i-1]
			}
			for i := 0; i < sp; i++ {
				if lag := (i + 1) * period; t-lag >= 0 {
					sarGrad[i] -= 2 * r * (y[t-lag] - m.Intercept)
				}
			}
			for i := 0; i < sq; i++ {
				if lag := (i + 1) * period; t-lag >= 0 {
					smaGrad[i] -= 2 * r * residuals[t-lag]
				}
			}
		}

		step := learningRate / float64(n)
		descend(m.ARCoeffs, arVel, arGrad, momentum, step)
		descend(m.MACoeffs, maVel, maGrad, momentum, step)
		descend(m.SARCoeffs, sarVel, sarGrad, momentum, step)
		descend(m.SMACoeffs, smaVel, smaGrad, momentum, step)

		learningRate *= decay

		if iter > 0 && math.Abs(sse-bestSSE) < tolerance {
			break
		}
	}

	m.restore(best)

	m.residuals = make([]float64, n)
	m.fittedVals = make([]float64, n)
	for t := 0; t < n; t++ {
		m.fittedVals[t] = m.onestep(y, m.residuals, t, n)
		m.residuals[t] = y[t] - m.fittedVals[t]
	}

	sse := 0.0
	count := n - startIdx
	for t := startIdx; t < n; t++ {
		sse += m.residuals[t] * m.residuals[t]
	}

	numParams := p + q + sp + sq + 1
	if count > numParams {
		m.Variance = sse / float64(count-numParams)
	} else {
		m.Variance = sse / float64(count)
	}
}

// descend applies one momentum step and clamps coefficients to (-0.99, 0.99).
func descend(coeffs, vel, grad []float64, momentum, step float64) {
	for i := range coeffs {
		vel[i] = momentum*vel[i] + step*grad[i]
		coeffs[i] = math.Max(-0.99, math.Min(0.99, coeffs[i]-vel[i]))
	}
}

type coeffSet struct{ ar, ma, sar, sma []float64 }

func (m *Model) snapshot() coeffSet {
	return coeffSet{
		ar:  append([]float64(nil), m.ARCoeffs...),
		ma:  append([]float64(nil), m.MACoeffs...),
		sar: append([]float64(nil), m.SARCoeffs...),
		sma: append([]float64(nil), m.SMACoeffs...),
	}
}

func (m *Model) restore(c coeffSet) {
	copy(m.ARCoeffs, c.ar)
	copy(m.MACoeffs, c.ma)
	copy(m.SARCoeffs, c.sar)
	copy(m.SMACoeffs, c.sma)
}

// calculateIC calculates AIC, AICc, and BIC.
func (m *Model) calculateIC() {
	n := float64(len(m.residuals))
	k := float64(m.Order.P + m.Order.Q + m.Order.SP + m.Order.SQ + 1)

	sse := 0.0
	for _, r := range m.residuals {
		sse += r * r
	}

	if m.Variance > 0 {
		m.LogLik = -n/2*math.Log(2*math.Pi) - n/2*math.Log(m.Variance) - sse/(2*m.Variance)
	} else {
		m.LogLik = math.Inf(-1)
	}

	m.AIC = -2*m.LogLik + 2*k

	// AICc = AIC + 2k(k+1)/(n-k-1)
	if n-k-1 > 0 {
		m.AICc = m.AIC + 2*k*(k+1)/(n-k-1)
	} else {
		m.AICc = math.Inf(1)
	}

	m.BIC = -2*m.LogLik + k*math.Log(n)
}

// Predict generates forecasts for the specified number of steps ahead.
func (m *Model) Predict(steps int) ([]float64, error) {
	forecasts, _, _, err := m.PredictWithInterval(steps, DefaultConfidence)
	return forecasts, err
}

// PredictWithInterval generates forecasts with prediction intervals.
// Returns point forecasts, lower bounds, and upper bounds at the given confidence level.
// A confidence outside (0, 1) falls back to DefaultConfidence.
// It does not modify the model and is safe for concurrent use after Fit.
func (m *Model) PredictWithInterval(steps int, confidence float64) (forecasts, lower, upper []float64, err error) {
	if !m.fitted {
		return nil, nil, nil, ErrNotFitted
	}
	if steps < 1 {
		return nil, nil, nil, ErrInvalidSteps
	}
	if confidence <= 0 || confidence >= 1 {
		confidence = DefaultConfidence
	}

	y := m.diffData.Values
	n := len(y)

	extY := make([]float64, n+steps)
	copy(extY, y)
	extResiduals := make([]float64, n+steps)
	copy(extResiduals, m.residuals)

	// Future shocks have zero expectation, so only in-sample residuals feed MA terms.
	for t := n; t < n+steps; t++ {
		extY[t] = m.onestep(extY, extResiduals, t, n)
	}

	forecasts = m.integrate(extY[n:])

	z := distuv.UnitNormal.Quantile((1 + confidence) / 2)
	base := math.Sqrt(m.Variance)
	period := m.Order.M

	lower = make([]float64, steps)
	upper = make([]float64, steps)
	for h := 0; h < steps; h++ {
		// Uncertainty grows with horizon for integrated series.
		growth := 1.0
		if m.Order.D > 0 {
			growth *= math.Sqrt(float64(h + 1))
		}
		if m.Order.SD > 0 && period > 0 {
			growth *= math.Sqrt(float64(h/period + 1))
		}

		margin := z * base * growth
		lower[h] = forecasts[h] - margin
		upper[h] = forecasts[h] + margin
	}

	return forecasts, lower, upper, nil
}

// integrate undoes differencing to return forecasts on original scale.
// Fit differences non-seasonally first, so seasonal differencing is undone first.
func (m *Model) integrate(diffForecasts []float64) []float64 {
	d, sd, period := m.Order.D, m.Order.SD, m.Order.M
	original := m.data.Values

	result := make([]float64, len(diffForecasts))
	copy(result, diffForecasts)

	// The seasonal step needs the last period values of the non-seasonally differenced series.
	level := timeseries.New(original)
	for i := 0; i < d && level.Len() > 1; i++ {
		level = level.Diff()
	}
	base := level.Values

	// y_t = z_t + y_{t-m}
	if sd > 0 && period > 0 {
		nb := len(base)
		for i := 0; i < sd; i++ {
			for j := range result {
				if j < period {
					if idx := nb - period + j; idx >= 0 && idx < nb {
						result[j] += base[idx]
					}
				} else {
					result[j] += result[j-period]
				}
			}
		}
	}

	// y_t = y'_t + y_{t-1}, anchored on the last observation.
	last := original[len(original)-1]
	for i := 0; i < d; i++ {
		for j := range result {
			if j == 0 {
				result[j] += last
			} else {
				result[j] += result[j-1]
			}
		}
	}

	return result
}

// Residuals returns the model residuals.
func (m *Model) Residuals() []float64 {
	if !m.fitted {
		return nil
	}
	return append([]float64(nil), m.residuals...)
}

// FittedValues returns the fitted values.
func (m *Model) FittedValues() []float64 {
	if !m.fitted {
		return nil
	}
	return append([]float64(nil), m.fittedVals...)
}

// Summary represents a model summary.
type Summary struct {
	Order        Order                     `json:"order"`
	ARCoeffs     []float64                 `json:"ar"`
	MACoeffs     []float64                 `json:"ma"`
	SARCoeffs    []float64                 `json:"sar"`
	SMACoeffs    []float64                 `json:"sma"`
	Intercept    float64                   `json:"intercept"`
	Variance     float64                   `json:"sigma2"`
	AIC          float64                   `json:"aic"`
	AICc         float64                   `json:"aicc"`
	BIC          float64                   `json:"bic"`
	LogLik       float64                   `json:"log_likelihood"`
	NObs         int                       `json:"n_obs"`
	LjungBox     *stats.LjungBoxResult     `json:"ljung_box,omitempty"`
	DurbinWatson *stats.DurbinWatsonResult `json:"durbin_watson,omitempty"`
}

// Summary returns a summary of the fitted model, or nil before Fit.
func (m *Model) Summary() *Summary {
	if !m.fitted {
		return nil
	}

	arma := m.Order.P + m.Order.Q + m.Order.SP + m.Order.SQ
	lags := max(10, 2*m.Order.M)
	residSeries := timeseries.New(m.residuals)

	return &Summary{
		Order:        m.Order,
		ARCoeffs:     append([]float64(nil), m.ARCoeffs...),
		MACoeffs:     append([]float64(nil), m.MACoeffs...),
		SARCoeffs:    append([]float64(nil), m.SARCoeffs...),
		SMACoeffs:    append([]float64(nil), m.SMACoeffs...),
		Intercept:    m.Intercept,
		Variance:     m.Variance,
		AIC:          m.AIC,
		AICc:         m.AICc,
		BIC:          m.BIC,
		LogLik:       m.LogLik,
		NObs:         m.data.Len(),
		LjungBox:     stats.LjungBox(residSeries, lags, arma),
		DurbinWatson: stats.DurbinWatson(m.residuals),
	}
}
