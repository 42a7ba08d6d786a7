package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/sartorproj/paxcast"
	"github.com/sartorproj/paxcast/config"
	"github.com/sartorproj/paxcast/dashboard"
	"github.com/sartorproj/paxcast/forecast"
	"github.com/sartorproj/paxcast/metrics"
	"github.com/sartorproj/paxcast/trainer"
)

func main() {
	configPath := flag.String("config", os.Getenv(config.EnvConfigPath), "path to a YAML config file")
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

	logger.Info(fmt.Sprintf("paxcast %s", paxcast.Version))
	defer logger.Info("done")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	srv, err := newServer(logger, cfg, reg)
	if err != nil {
		var loadErr *trainer.DataLoadError
		if errors.As(err, &loadErr) {
			logger.Fatal("cannot load dataset", zap.String("dataset", loadErr.Dataset), zap.Error(loadErr.Err))
		}
		logger.Fatal("cannot start dashboard", zap.Error(err))
	}

	ln, err := net.Listen("tcp", cfg.Server.Addr)
	if err != nil {
		logger.Fatal("cannot listen", zap.String("addr", cfg.Server.Addr), zap.Error(err))
	}
	logger.Info("listening", zap.String("addr", ln.Addr().String()))

	if err := serve(ctx, logger, srv, ln, cfg.Server); err != nil {
		logger.Error("server stopped with error", zap.Error(err))
	}
}

// newServer fits the model and builds the HTTP server. It fails before any
// listener exists if the dataset cannot be loaded.
func newServer(logger *zap.Logger, cfg *config.Config, reg *prometheus.Registry) (*http.Server, error) {
	m := metrics.New(reg)

	tr := trainer.New(logger, trainer.FileDataset{
		Path:        cfg.Dataset.Path,
		DateColumn:  cfg.Dataset.DateColumn,
		ValueColumn: cfg.Dataset.ValueColumn,
	}, cfg.Model.Order, m)

	result, err := tr.Train()
	if err != nil {
		return nil, err
	}

	opts := dashboard.Options{
		History:    result.History,
		Summary:    result.Model.Summary(),
		Forecaster: forecast.NewGenerator(logger, result.Model, cfg.Model.Confidence, m),
		Metrics:    m,
	}
	if cfg.Metrics.Enabled {
		opts.Gatherer = reg
		opts.MetricsPath = cfg.Metrics.Path
	}

	return &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      dashboard.New(logger, opts),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, nil
}

// serve runs srv on ln until ctx is cancelled, then shuts it down within the
// configured timeout.
func serve(ctx context.Context, logger *zap.Logger, srv *http.Server, ln net.Listener, cfg config.ServerConfig) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down", zap.Duration("timeout", cfg.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return nil
}
