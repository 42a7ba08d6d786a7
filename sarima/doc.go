// Package sarima implements Seasonal ARIMA (SARIMA) models for time series with seasonality.
//
// SARIMA models extend ARIMA to handle seasonal patterns. A SARIMA(p,d,q)(P,D,Q)[m] model includes:
//   - Non-seasonal components: AR(p), I(d), MA(q)
//   - Seasonal components: SAR(P), SI(D), SMA(Q) at seasonal period m
//
// Parameters are estimated by conditional sum of squares on the differenced
// series. Forecasts are integrated back to the original scale.
//
// # Basic Usage
//
// Fit the model used by the passenger dashboard:
//
//	// SARIMA(1,1,1)(1,1,1)[12]
//	model := sarima.New(1, 1, 1, 1, 1, 1, 12)
//
//	if err := model.Fit(series); err != nil {
//	    return err
//	}
//
//	// 12 months ahead with 95% prediction intervals
//	mean, lower, upper, err := model.PredictWithInterval(12, 0.95)
//
// Interval half-widths are z * sigma * sqrt(h) for differenced series, with an
// extra sqrt factor per completed seasonal cycle; z is the standard normal
// quantile from gonum's distuv package.
//
// # Concurrency
//
// A fitted Model is not modified by Predict, PredictWithInterval, Summary,
// Residuals or FittedValues, so it can be shared by concurrent readers.
//
// # Diagnostics
//
// Summary reports AIC, AICc, BIC, log-likelihood, and Ljung-Box and
// Durbin-Watson statistics of the residuals:
//
//	s := model.Summary()
//	fmt.Printf("SARIMA%s AIC=%.2f Ljung-Box p=%.3f\n", s.Order, s.AIC, s.LjungBox.PValue)
package sarima
