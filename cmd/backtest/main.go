// Command backtest scores the dashboard model on the last months of the
// passenger series.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/sartorproj/paxcast/config"
	"github.com/sartorproj/paxcast/forecast"
	"github.com/sartorproj/paxcast/timeseries"
)

func main() {
	configPath := flag.String("config", os.Getenv(config.EnvConfigPath), "path to a YAML config file")
	holdout := flag.Int("holdout", 0, "number of trailing months to hold out (0 picks a fifth of the series)")
	output := flag.String("o", "", "write the result as JSON to this file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger, err := cfg.Log.NewLogger()
	if err != nil {
		panic(err)
	}
	defer func(logger *zap.Logger) {
		_ = logger.Sync()
	}(logger)

	acc, err := run(cfg, *holdout)
	if err != nil {
		logger.Fatal("backtest failed", zap.Error(err))
	}

	report(os.Stdout, acc)

	if *output != "" {
		data, err := json.MarshalIndent(acc, "", "  ")
		if err != nil {
			logger.Fatal("cannot encode result", zap.Error(err))
		}
		if err := os.WriteFile(*output, data, 0o644); err != nil {
			logger.Fatal("cannot write result", zap.String("file", *output), zap.Error(err))
		}
		logger.Info("result exported", zap.String("file", *output))
	}
}

func run(cfg *config.Config, holdout int) (*forecast.Accuracy, error) {
	series, err := timeseries.LoadMonthly(cfg.Dataset.Path, cfg.Dataset.DateColumn, cfg.Dataset.ValueColumn)
	if err != nil {
		return nil, err
	}
	if holdout <= 0 {
		holdout = forecast.HoldoutSize(series.Len(), cfg.Model.Order.M)
	}
	return forecast.Backtest(series, cfg.Model.Order, holdout, cfg.Model.Confidence)
}

func report(w io.Writer, acc *forecast.Accuracy) {
	line := strings.Repeat("=", 60)
	fmt.Fprintln(w, line)
	fmt.Fprintf(w, "SARIMA%s backtest\n", acc.Order)
	fmt.Fprintln(w, line)
	fmt.Fprintf(w, "Train: %d, Holdout: %d\n", acc.Train, acc.Holdout)
	fmt.Fprintf(w, "RMSE=%.4f MAE=%.4f MAPE=%.2f%% coverage=%.0f%%\n", acc.RMSE, acc.MAE, acc.MAPE, acc.Coverage*100)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%6s %10s %10s\n", "step", "actual", "forecast")
	for i := range acc.Actual {
		fmt.Fprintf(w, "%6d %10.2f %10.2f\n", i+1, acc.Actual[i], acc.Forecast[i])
	}
}
