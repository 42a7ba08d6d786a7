package forecast

import (
	"fmt"
	"math"

	"github.com/sartorproj/paxcast/sarima"
	"github.com/sartorproj/paxcast/timeseries"
)

// Accuracy summarises a holdout evaluation.
type Accuracy struct {
	Order    sarima.Order `json:"order"`
	Train    int          `json:"train"`
	Holdout  int          `json:"holdout"`
	RMSE     float64      `json:"rmse"`
	MAE      float64      `json:"mae"`
	MAPE     float64      `json:"mape"`
	Coverage float64      `json:"coverage"` // share of holdout values inside the interval
	Actual   []float64    `json:"actual"`
	Forecast []float64    `json:"forecast"`
}

// HoldoutSize picks a test length of a fifth of the series, at least one
// seasonal cycle, clamped to [3, 30].
func HoldoutSize(n, period int) int {
	size := n / 5
	if period > 0 {
		size = max(size, period)
	}
	return max(min(size, 30), 3)
}

// Backtest fits order on all but the last holdout observations of series and
// scores the forecasts of the held-out tail.
func Backtest(series *timeseries.Series, order sarima.Order, holdout int, confidence float64) (*Accuracy, error) {
	n := series.Len()
	if holdout < 1 || holdout >= n {
		return nil, fmt.Errorf("holdout %d out of range for %d observations", holdout, n)
	}

	train := series.Slice(0, n-holdout)
	test := series.Slice(n-holdout, n)

	model := sarima.NewFromOrder(order)
	if err := model.Fit(train); err != nil {
		return nil, fmt.Errorf("failed to fit SARIMA%s on %d observations: %w", order, train.Len(), err)
	}
	predicted, lower, upper, err := model.PredictWithInterval(holdout, confidence)
	if err != nil {
		return nil, err
	}

	acc := &Accuracy{
		Order:    order,
		Train:    train.Len(),
		Holdout:  holdout,
		Actual:   test.Values,
		Forecast: predicted,
	}
	acc.RMSE, acc.MAE, acc.MAPE = scores(test.Values, predicted)

	inside := 0
	for i, v := range test.Values {
		if v >= lower[i] && v <= upper[i] {
			inside++
		}
	}
	acc.Coverage = float64(inside) / float64(holdout)
	return acc, nil
}

func scores(actual, predicted []float64) (rmse, mae, mape float64) {
	n := min(len(actual), len(predicted))
	if n == 0 {
		return
	}
	for i := 0; i < n; i++ {
		d := actual[i] - predicted[i]
		rmse += d * d
		mae += math.Abs(d)
		if actual[i] != 0 {
			mape += math.Abs(d) / math.Abs(actual[i]) * 100
		}
	}
	return math.Sqrt(rmse / float64(n)), mae / float64(n), mape / float64(n)
}
