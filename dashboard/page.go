package dashboard

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/sartorproj/paxcast/forecast"
	"github.com/sartorproj/paxcast/sarima"
)

// SubmitRangeMessage is shown in the page body when the button is pressed
// with an invalid range.
const SubmitRangeMessage = "Please select a valid date range."

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplate = template.Must(template.New("index.html").Funcs(template.FuncMap{
	"num": formatNumber,
}).ParseFS(templateFS, "templates/index.html"))

type pageData struct {
	Start, End  string
	RangeError  string
	SubmitError string
	Error       string
	FirstMonth  string
	LastMonth   string
	NObs        int
	Generated   bool
	Forecast    *forecast.Result
	Chart       *chart
	Summary     *sarima.Summary

	// ConfidencePct is the interval level in percent.
	ConfidencePct float64
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	defStart, defEnd := s.defaultRange()

	data := pageData{
		Start: q.Get("start"),
		End:   q.Get("end"),
		NObs:  s.history.Len(),
	}
	if data.Start == "" {
		data.Start = defStart.Format(forecast.DateLayout)
	}
	if data.End == "" {
		data.End = defEnd.Format(forecast.DateLayout)
	}
	if n := len(s.history.Timestamps); n > 0 {
		data.FirstMonth = s.history.Timestamps[0].Format("2006-01")
		data.LastMonth = s.history.Timestamps[n-1].Format("2006-01")
	}

	// The range is checked on every render, whether or not the button was pressed.
	start, end, err := parseRange(data.Start, data.End, defStart, defEnd)
	valid := err == nil
	switch {
	case err != nil:
		data.RangeError = err.Error()
	case forecast.ValidateRange(start, end) != nil:
		data.RangeError = forecast.InvalidRangeMessage
		valid = false
	}

	if q.Get("generate") != "" {
		if !valid {
			s.countInvalid("page")
			data.SubmitError = SubmitRangeMessage
		} else {
			result, err := s.runForecast("page", start, end)
			switch {
			case errors.Is(err, forecast.ErrHorizonTooLarge):
				data.Error = err.Error()
			case err != nil:
				s.logger.Error("Forecast failed", zap.Error(err))
				data.Error = "Forecast failed."
			default:
				data.Generated = true
				data.Forecast = result
				data.ConfidencePct = result.Confidence * 100
				data.Chart = buildChart(s.history, result)
				data.Summary = s.summary
			}
		}
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		s.logger.Error("Failed to render page", zap.Error(err))
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
