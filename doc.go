// Package paxcast is an air passenger forecast dashboard built on an in-repo
// SARIMA library.
//
// A SARIMA(1,1,1)(1,1,1)[12] model is fitted once at startup to the monthly
// airline passenger series (1949-01 to 1960-12) and forecasts are served for
// a user-selected date range with confidence intervals.
//
// # Packages
//
//   - timeseries: Series type, month arithmetic and CSV loading
//   - stats: ACF, Ljung-Box and Durbin-Watson residual diagnostics
//   - sarima: seasonal ARIMA estimation and forecasting
//   - trainer: loads the dataset and caches the fitted model
//   - forecast: date range to horizon, month-end indexing, holdout backtests
//   - dashboard: HTML page, JSON API, websocket actions
//   - config, metrics: YAML/env configuration and Prometheus collectors
//
// # Running
//
//	go run ./cmd/paxcast
//	PAXCAST_CONFIG=paxcast.yaml go run ./cmd/paxcast
//	go run ./cmd/backtest -holdout 24
//
// The horizon of a request is the number of whole 30-day periods between the
// start and end dates; the forecast rows are indexed by month ends beginning
// with the first month end on or after the start date.
package paxcast

// Version is the release of the dashboard.
const Version = "0.1.0"
