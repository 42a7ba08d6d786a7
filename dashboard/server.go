// Package dashboard serves the passenger forecast page, its JSON API and a
// websocket action channel.
package dashboard

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/sartorproj/paxcast/forecast"
	"github.com/sartorproj/paxcast/metrics"
	"github.com/sartorproj/paxcast/sarima"
	"github.com/sartorproj/paxcast/timeseries"
)

// Forecaster generates a forecast for a date range. *forecast.Generator
// satisfies it.
type Forecaster interface {
	Generate(start, end time.Time) (*forecast.Result, error)
}

var _ Forecaster = (*forecast.Generator)(nil)

// Options holds the server's collaborators.
type Options struct {
	// History is the series the model was fit on.
	History *timeseries.Series
	// Summary describes the fitted model.
	Summary *sarima.Summary
	// Forecaster is only called for valid date ranges.
	Forecaster Forecaster
	// Metrics is optional.
	Metrics *metrics.Metrics
	// Gatherer, when set, is exposed at MetricsPath.
	Gatherer    prometheus.Gatherer
	MetricsPath string
}

// Server is the dashboard HTTP handler set.
type Server struct {
	logger     *zap.Logger
	history    *timeseries.Series
	summary    *sarima.Summary
	forecaster Forecaster
	metrics    *metrics.Metrics
	upgrader   websocket.Upgrader
	mux        *http.ServeMux
}

// New creates the server and registers its routes.
func New(logger *zap.Logger, opts Options) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.History == nil {
		opts.History = &timeseries.Series{}
	}
	s := &Server{
		logger:     logger.Named("dashboard"),
		history:    opts.History,
		summary:    opts.Summary,
		forecaster: opts.Forecaster,
		metrics:    opts.Metrics,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
		mux: http.NewServeMux(),
	}

	s.handle("GET /{$}", "page", http.HandlerFunc(s.handlePage))
	s.handle("GET /api/history", "history", http.HandlerFunc(s.handleHistory))
	s.handle("GET /api/model", "model", http.HandlerFunc(s.handleModel))
	s.handle("GET /api/forecast", "forecast", http.HandlerFunc(s.handleForecast))
	s.handle("GET /ws", "ws", http.HandlerFunc(s.handleWebsocket))
	s.handle("GET /healthz", "healthz", http.HandlerFunc(s.handleHealth))

	if opts.Gatherer != nil {
		path := opts.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		s.handle("GET "+path, "metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handle(pattern, route string, h http.Handler) {
	s.mux.Handle(pattern, s.instrument(route, h))
}

// defaultRange is one and twelve months after the last observed month.
func (s *Server) defaultRange() (start, end time.Time) {
	last, _, ok := s.history.Last()
	if !ok {
		now := time.Now().UTC()
		last = timeseries.MonthStart(now)
	}
	return timeseries.AddMonths(last, 1), timeseries.AddMonths(last, 12)
}

func (s *Server) countForecast(channel string) {
	if s.metrics != nil {
		s.metrics.Forecasts.WithLabelValues(channel).Inc()
	}
}

func (s *Server) countInvalid(channel string) {
	if s.metrics != nil {
		s.metrics.InvalidRanges.WithLabelValues(channel).Inc()
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":       "ok",
		"observations": s.history.Len(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
