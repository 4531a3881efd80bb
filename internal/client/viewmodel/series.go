// Package viewmodel shapes API data for display: chart series from a
// metric history and the latest reading per type.
package viewmodel

import (
	"strconv"
	"time"

	"github.com/healthtrack/healthtrack/internal/client/api"
)

// SeriesLength is the number of most recent points a series keeps.
const SeriesLength = 7

const labelLayout = "Jan 2"

// Point is one chart point.
type Point struct {
	Label string
	Value float64
}

// BuildSeries labels dates in the local time zone.
func BuildSeries(history api.MetricHistory, t api.MetricType) []Point {
	return BuildSeriesIn(history, t, time.Local)
}

// BuildSeriesIn converts the readings for t into points labelled in loc.
// Each point uses the reading's value, falling back to systolic. Only the
// last SeriesLength readings in input order are kept; nothing is sorted.
// A missing type yields an empty slice.
func BuildSeriesIn(history api.MetricHistory, t api.MetricType, loc *time.Location) []Point {
	readings := history[t]
	if len(readings) > SeriesLength {
		readings = readings[len(readings)-SeriesLength:]
	}

	points := make([]Point, 0, len(readings))
	for _, r := range readings {
		points = append(points, Point{
			Label: r.Date.In(loc).Format(labelLayout),
			Value: scalar(r),
		})
	}
	return points
}

func scalar(r api.Reading) float64 {
	switch {
	case r.Value != nil:
		return *r.Value
	case r.Systolic != nil:
		return float64(*r.Systolic)
	default:
		return 0
	}
}

// LatestOfType returns the first metric of type t. The list is expected
// newest first, as /metrics returns it.
func LatestOfType(metrics []api.HealthMetric, t api.MetricType) (api.HealthMetric, bool) {
	for _, m := range metrics {
		if m.Type == t {
			return m, true
		}
	}
	return api.HealthMetric{}, false
}

// FormatReading renders "120/80" for blood pressure and the bare value
// otherwise.
func FormatReading(m api.HealthMetric) string {
	if m.Systolic != nil && m.Diastolic != nil {
		return strconv.Itoa(*m.Systolic) + "/" + strconv.Itoa(*m.Diastolic)
	}
	if m.Value != nil {
		return strconv.FormatFloat(*m.Value, 'f', -1, 64)
	}
	return "-"
}
