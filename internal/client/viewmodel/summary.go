package viewmodel

import "github.com/healthtrack/healthtrack/internal/client/api"

// Summary backs the dashboard tiles.
type Summary struct {
	Medications    int
	HeartRate      string
	BloodPressure  string
	MetricsTracked int
}

// Summarize builds the tiles. Missing readings render as "-".
func Summarize(meds []api.Medication, metrics []api.HealthMetric) Summary {
	s := Summary{
		Medications:   len(meds),
		HeartRate:     "-",
		BloodPressure: "-",
	}

	if m, ok := LatestOfType(metrics, api.MetricHeartRate); ok {
		s.HeartRate = FormatReading(m) + " " + m.Unit
	}
	if m, ok := LatestOfType(metrics, api.MetricBloodPressure); ok {
		s.BloodPressure = FormatReading(m) + " " + api.UnitMmHg
	}

	seen := make(map[api.MetricType]struct{})
	for _, m := range metrics {
		seen[m.Type] = struct{}{}
	}
	s.MetricsTracked = len(seen)
	return s
}
