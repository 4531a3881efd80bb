package domain

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// MetricType identifies the kind of health reading.
type MetricType string

const (
	MetricHeartRate     MetricType = "heart-rate"
	MetricBloodPressure MetricType = "blood-pressure"
	MetricWeight        MetricType = "weight"
	MetricTemperature   MetricType = "temperature"
	MetricGlucose       MetricType = "glucose"
)

// UnitMmHg is the only unit accepted for blood-pressure readings.
const UnitMmHg = "mmHg"

var ErrInvalidMetric = errors.New("invalid metric")

// Valid reports whether t is one of the supported metric types.
func (t MetricType) Valid() bool {
	switch t {
	case MetricHeartRate, MetricBloodPressure, MetricWeight, MetricTemperature, MetricGlucose:
		return true
	}
	return false
}

// HealthMetric is a single reading. Blood pressure carries Systolic and
// Diastolic; every other type carries Value.
type HealthMetric struct {
	ID        string     `json:"id" bson:"_id"`
	UserID    string     `json:"userId" bson:"user_id"`
	Type      MetricType `json:"type" bson:"type"`
	Value     *float64   `json:"value,omitempty" bson:"value,omitempty"`
	Systolic  *int       `json:"systolic,omitempty" bson:"systolic,omitempty"`
	Diastolic *int       `json:"diastolic,omitempty" bson:"diastolic,omitempty"`
	Unit      string     `json:"unit" bson:"unit"`
	Date      time.Time  `json:"date" bson:"date"`
}

// ValidateMetric enforces the shape rules for a reading and normalises the
// blood-pressure unit. Returned errors wrap ErrInvalidMetric.
func ValidateMetric(m *HealthMetric) error {
	if !m.Type.Valid() {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidMetric, m.Type)
	}

	if m.Type == MetricBloodPressure {
		if m.Systolic == nil || m.Diastolic == nil {
			return fmt.Errorf("%w: blood-pressure requires systolic and diastolic", ErrInvalidMetric)
		}
		if *m.Systolic <= 0 || *m.Diastolic <= 0 {
			return fmt.Errorf("%w: systolic and diastolic must be positive", ErrInvalidMetric)
		}
		if m.Value != nil {
			return fmt.Errorf("%w: blood-pressure does not take a value", ErrInvalidMetric)
		}
		if m.Unit == "" {
			m.Unit = UnitMmHg
		}
		if m.Unit != UnitMmHg {
			return fmt.Errorf("%w: blood-pressure unit must be %s", ErrInvalidMetric, UnitMmHg)
		}
		return nil
	}

	if m.Value == nil {
		return fmt.Errorf("%w: %s requires a value", ErrInvalidMetric, m.Type)
	}
	if *m.Value <= 0 {
		return fmt.Errorf("%w: %s value must be positive", ErrInvalidMetric, m.Type)
	}
	if m.Systolic != nil || m.Diastolic != nil {
		return fmt.Errorf("%w: %s does not take systolic/diastolic", ErrInvalidMetric, m.Type)
	}
	if m.Unit == "" {
		return fmt.Errorf("%w: unit is required", ErrInvalidMetric)
	}
	return nil
}

// Reading is one point of a metric history series.
type Reading struct {
	Date      time.Time `json:"date"`
	Value     *float64  `json:"value,omitempty"`
	Systolic  *int      `json:"systolic,omitempty"`
	Diastolic *int      `json:"diastolic,omitempty"`
	Unit      string    `json:"unit"`
}

// MetricHistory maps each metric type to its readings, oldest first.
type MetricHistory map[MetricType][]Reading

// BuildHistory groups metrics by type and orders each group by date ascending.
func BuildHistory(metrics []*HealthMetric) MetricHistory {
	history := make(MetricHistory)
	for _, m := range metrics {
		history[m.Type] = append(history[m.Type], Reading{
			Date:      m.Date,
			Value:     m.Value,
			Systolic:  m.Systolic,
			Diastolic: m.Diastolic,
			Unit:      m.Unit,
		})
	}
	for t := range history {
		readings := history[t]
		sort.SliceStable(readings, func(i, j int) bool {
			return readings[i].Date.Before(readings[j].Date)
		})
	}
	return history
}
