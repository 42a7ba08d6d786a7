package dashboard

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/sartorproj/paxcast/forecast"
	"github.com/sartorproj/paxcast/timeseries"
)

const (
	chartWidth  = 960
	chartHeight = 420
	marginLeft  = 60
	marginRight = 20
	marginTop   = 20
	marginBot   = 40
)

type tick struct {
	Pos   float64
	Label string
}

// chart is the precomputed geometry of the forecast plot.
type chart struct {
	Width, Height            int
	Left, Right, Top, Bottom float64
	Observed                 string // polyline points
	Forecast                 string // polyline points
	Band                     string // polygon points, upper then lower reversed
	XTicks, YTicks           []tick
}

type scale struct {
	d0, d1, r0, r1 float64
}

func (s scale) at(v float64) float64 {
	if s.d1 == s.d0 {
		return (s.r0 + s.r1) / 2
	}
	return s.r0 + (v-s.d0)/(s.d1-s.d0)*(s.r1-s.r0)
}

func buildChart(history *timeseries.Series, result *forecast.Result) *chart {
	c := &chart{
		Width:  chartWidth,
		Height: chartHeight,
		Left:   marginLeft,
		Right:  chartWidth - marginRight,
		Top:    marginTop,
		Bottom: chartHeight - marginBot,
	}

	var tMin, tMax time.Time
	yMin, yMax := math.Inf(1), math.Inf(-1)
	extend := func(t time.Time, lo, hi float64) {
		if tMin.IsZero() || t.Before(tMin) {
			tMin = t
		}
		if t.After(tMax) {
			tMax = t
		}
		yMin = math.Min(yMin, lo)
		yMax = math.Max(yMax, hi)
	}

	n := min(len(history.Timestamps), len(history.Values))
	for i := 0; i < n; i++ {
		extend(history.Timestamps[i], history.Values[i], history.Values[i])
	}
	if result != nil {
		for _, row := range result.Rows {
			extend(row.Month.Time, row.Lower, row.Upper)
		}
	}
	if tMin.IsZero() {
		return c
	}

	yStep := niceStep((yMax - yMin) / 5)
	yMin = math.Floor(yMin/yStep) * yStep
	yMax = math.Ceil(yMax/yStep) * yStep

	xs := scale{float64(tMin.Unix()), float64(tMax.Unix()), c.Left, c.Right}
	ys := scale{yMin, yMax, c.Bottom, c.Top}
	x := func(t time.Time) float64 { return xs.at(float64(t.Unix())) }

	var obs strings.Builder
	for i := 0; i < n; i++ {
		writePoint(&obs, x(history.Timestamps[i]), ys.at(history.Values[i]))
	}
	c.Observed = obs.String()

	if result != nil && len(result.Rows) > 0 {
		var fc, band strings.Builder
		for _, row := range result.Rows {
			writePoint(&fc, x(row.Month.Time), ys.at(row.Predicted))
			writePoint(&band, x(row.Month.Time), ys.at(row.Upper))
		}
		for i := len(result.Rows) - 1; i >= 0; i-- {
			row := result.Rows[i]
			writePoint(&band, x(row.Month.Time), ys.at(row.Lower))
		}
		c.Forecast = fc.String()
		c.Band = band.String()
	}

	for v := yMin; v <= yMax+yStep/2; v += yStep {
		c.YTicks = append(c.YTicks, tick{Pos: ys.at(v), Label: strconv.FormatFloat(v, 'f', -1, 64)})
	}

	years := tMax.Year() - tMin.Year() + 1
	every := max(1, int(niceStep(float64(years)/10)))
	for y := tMin.Year(); y <= tMax.Year(); y++ {
		if y%every != 0 {
			continue
		}
		t := time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC)
		if t.Before(tMin) {
			continue
		}
		c.XTicks = append(c.XTicks, tick{Pos: x(t), Label: strconv.Itoa(y)})
	}

	return c
}

func writePoint(b *strings.Builder, x, y float64) {
	if b.Len() > 0 {
		b.WriteByte(' ')
	}
	b.WriteString(strconv.FormatFloat(x, 'f', 1, 64))
	b.WriteByte(',')
	b.WriteString(strconv.FormatFloat(y, 'f', 1, 64))
}

// niceStep rounds a raw step up to 1, 2 or 5 times a power of ten.
func niceStep(raw float64) float64 {
	if raw <= 0 || math.IsNaN(raw) || math.IsInf(raw, 0) {
		return 1
	}
	mag := math.Pow(10, math.Floor(math.Log10(raw)))
	switch f := raw / mag; {
	case f <= 1:
		return mag
	case f <= 2:
		return 2 * mag
	case f <= 5:
		return 5 * mag
	default:
		return 10 * mag
	}
}
