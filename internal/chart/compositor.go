// Package chart builds the renderable chart model for a sensor view: the
// raw-reading series plus the fitted curve, merged onto one time axis with
// explicit draw order and preformatted tooltips.
package chart

import (
	"fmt"
	"sort"
	"time"

	"github.com/maikl88/geo-monitoring-ver3.0/internal/telemetry"
	"github.com/maikl88/geo-monitoring-ver3.0/internal/timeutil"
)

// Series identifiers.
const (
	SeriesReadings = "readings"
	SeriesFit      = "fit"
)

// Point is one plotted value with its preformatted tooltip.
type Point struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
	Tooltip   string    `json:"tooltip"`
}

// Series is one line on the chart. Z orders drawing: higher is painted on
// top. The fitted curve is always the thickest, top-most series.
type Series struct {
	ID     string  `json:"id"`
	Label  string  `json:"label"`
	Z      int     `json:"z"`
	Width  float64 `json:"width"`
	Dashed bool    `json:"dashed"`
	Points []Point `json:"points"`
}

// Model is the complete chart model. Empty is the explicit no-data sentinel:
// when set, Series is nil and the view renders a placeholder instead of a
// blank plot.
type Model struct {
	Empty  bool     `json:"empty"`
	Unit   string   `json:"unit"`
	Series []Series `json:"series,omitempty"`
}

// FormatValue renders a plotted value at fixed 2-decimal precision with the
// unit appended verbatim. An unknown unit is the empty string, never a
// substitute.
func FormatValue(value float64, unit string) string {
	if unit == "" {
		return fmt.Sprintf("%.2f", value)
	}
	return fmt.Sprintf("%.2f %s", value, unit)
}

// Compose builds the chart model. The fit series appears only when the
// approximation is in its available state and the curve is non-empty; the
// readings series appears whenever at least one reading parses. Both series
// share the time axis and unit, are sorted ascending by instant, and
// tolerate duplicate timestamps.
func Compose(readings []telemetry.Reading, curve []telemetry.CurvePoint, available bool, unit string) Model {
	raw := readingPoints(readings, unit)

	var fit []Point
	if available {
		fit = curvePoints(curve, unit)
	}

	if len(raw) == 0 && len(fit) == 0 {
		return Model{Empty: true, Unit: unit}
	}

	model := Model{Unit: unit}
	if len(raw) > 0 {
		model.Series = append(model.Series, Series{
			ID:     SeriesReadings,
			Label:  "Readings",
			Z:      0,
			Width:  1.5,
			Points: raw,
		})
	}
	if len(fit) > 0 {
		model.Series = append(model.Series, Series{
			ID:     SeriesFit,
			Label:  "Approximation",
			Z:      1,
			Width:  3,
			Dashed: true,
			Points: fit,
		})
	}
	return model
}

func readingPoints(readings []telemetry.Reading, unit string) []Point {
	points := make([]Point, 0, len(readings))
	for _, r := range readings {
		ts := timeutil.Normalize(r.Timestamp)
		if ts.IsZero() {
			continue
		}
		points = append(points, Point{
			Timestamp: ts,
			Value:     r.Value,
			Tooltip:   FormatValue(r.Value, unit),
		})
	}
	sortPoints(points)
	return points
}

func curvePoints(curve []telemetry.CurvePoint, unit string) []Point {
	points := make([]Point, 0, len(curve))
	for _, p := range curve {
		ts := timeutil.Normalize(p.Timestamp)
		if ts.IsZero() {
			continue
		}
		points = append(points, Point{
			Timestamp: ts,
			Value:     p.Value,
			Tooltip:   FormatValue(p.Value, unit),
		})
	}
	sortPoints(points)
	return points
}

// sortPoints orders ascending by instant. The sort is stable so duplicate
// timestamps keep their received order.
func sortPoints(points []Point) {
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Timestamp.Before(points[j].Timestamp)
	})
}
