package dashboard

import (
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/sartorproj/paxcast/forecast"
)

type historyPoint struct {
	Month forecast.Date `json:"month"`
	Value float64       `json:"value"`
}

type historyResponse struct {
	Name   string         `json:"name"`
	Points []historyPoint `json:"points"`
}

func (s *Server) handleHistory(w http.ResponseWriter, _ *http.Request) {
	points := make([]historyPoint, s.history.Len())
	for i, v := range s.history.Values {
		points[i] = historyPoint{Value: v}
		if i < len(s.history.Timestamps) {
			points[i].Month = forecast.NewDate(s.history.Timestamps[i])
		}
	}
	writeJSON(w, http.StatusOK, historyResponse{Name: s.history.Name, Points: points})
}

func (s *Server) handleModel(w http.ResponseWriter, _ *http.Request) {
	if s.summary == nil {
		writeError(w, http.StatusServiceUnavailable, "model is not fitted")
		return
	}
	writeJSON(w, http.StatusOK, s.summary)
}

func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	defStart, defEnd := s.defaultRange()
	start, end, err := parseRange(r.URL.Query().Get("start"), r.URL.Query().Get("end"), defStart, defEnd)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.runForecast("api", start, end)
	switch {
	case errors.Is(err, forecast.ErrInvalidRange):
		writeError(w, http.StatusUnprocessableEntity, forecast.InvalidRangeMessage)
	case errors.Is(err, forecast.ErrHorizonTooLarge):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case err != nil:
		s.logger.Error("Forecast failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "forecast failed")
	default:
		writeJSON(w, http.StatusOK, result)
	}
}

// runForecast validates the range and, only when it is valid, calls the
// forecaster.
func (s *Server) runForecast(channel string, start, end time.Time) (*forecast.Result, error) {
	if err := forecast.ValidateRange(start, end); err != nil {
		s.countInvalid(channel)
		return nil, err
	}
	result, err := s.forecaster.Generate(start, end)
	if err != nil {
		return nil, err
	}
	s.countForecast(channel)
	return result, nil
}

// parseRange parses YYYY-MM-DD start and end values, using the defaults for
// empty inputs.
func parseRange(startStr, endStr string, defStart, defEnd time.Time) (start, end time.Time, err error) {
	start, end = defStart, defEnd
	if startStr != "" {
		if start, err = forecast.ParseDate(startStr); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	if endStr != "" {
		if end, err = forecast.ParseDate(endStr); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	return start, end, nil
}
