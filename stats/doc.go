// Package stats provides residual diagnostics for fitted time series models.
//
// # Autocorrelation
//
//	acf := stats.ACF(series, 24)
//	bound := stats.ConfidenceBound(series.Len())
//
// # Residual Diagnostics
//
// Test residuals for autocorrelation:
//
//	// Ljung-Box test; fitdf is the number of estimated ARMA terms
//	lb := stats.LjungBox(residuals, 24, p+q+sp+sq)
//	if lb.WhiteNoise() {
//	    // Residuals are white noise (good)
//	}
//
//	// Durbin-Watson statistic
//	dw := stats.DurbinWatson(residuals.Values)
//
// P-values come from the chi-squared distribution in gonum's distuv package.
package stats
