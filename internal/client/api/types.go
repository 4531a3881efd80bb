package api

import "time"

type MetricType string

const (
	MetricHeartRate     MetricType = "heart-rate"
	MetricBloodPressure MetricType = "blood-pressure"
	MetricWeight        MetricType = "weight"
	MetricTemperature   MetricType = "temperature"
	MetricGlucose       MetricType = "glucose"
)

// UnitMmHg is the fixed unit of blood-pressure readings.
const UnitMmHg = "mmHg"

// User is the client projection of an account.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Age   *int   `json:"age,omitempty"`
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Age      *int   `json:"age,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned by Register and Login. Raw holds the body when
// the server answered with something other than JSON.
type AuthResponse struct {
	Token   string `json:"token,omitempty"`
	User    *User  `json:"user,omitempty"`
	Message string `json:"message,omitempty"`
	Raw     string `json:"-"`
}

func (r *AuthResponse) setRaw(text string) { r.Raw = text }

type Medication struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	Name         string    `json:"name"`
	Dosage       string    `json:"dosage"`
	Frequency    string    `json:"frequency"`
	Instructions string    `json:"instructions,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

type MedicationInput struct {
	Name         string `json:"name"`
	Dosage       string `json:"dosage"`
	Frequency    string `json:"frequency"`
	Instructions string `json:"instructions,omitempty"`
}

type HealthMetric struct {
	ID        string     `json:"id"`
	UserID    string     `json:"userId"`
	Type      MetricType `json:"type"`
	Value     *float64   `json:"value,omitempty"`
	Systolic  *int       `json:"systolic,omitempty"`
	Diastolic *int       `json:"diastolic,omitempty"`
	Unit      string     `json:"unit"`
	Date      time.Time  `json:"date"`
}

// Reading is one point of a history series.
type Reading struct {
	Date      time.Time `json:"date"`
	Value     *float64  `json:"value,omitempty"`
	Systolic  *int      `json:"systolic,omitempty"`
	Diastolic *int      `json:"diastolic,omitempty"`
	Unit      string    `json:"unit,omitempty"`
}

// MetricHistory maps a metric type to its readings, oldest first.
type MetricHistory map[MetricType][]Reading

// NewMetric is a reading to record. The implementations below are the only
// valid shapes.
type NewMetric interface {
	payload() metricPayload
}

// SingleValueMetric covers every type except blood pressure.
type SingleValueMetric struct {
	Type  MetricType
	Value float64
	Unit  string
}

// BloodPressureMetric is recorded in mmHg.
type BloodPressureMetric struct {
	Systolic  int
	Diastolic int
}

type metricPayload struct {
	Type      MetricType `json:"type"`
	Value     *float64   `json:"value,omitempty"`
	Systolic  *int       `json:"systolic,omitempty"`
	Diastolic *int       `json:"diastolic,omitempty"`
	Unit      string     `json:"unit"`
}

func (m SingleValueMetric) payload() metricPayload {
	v := m.Value
	return metricPayload{Type: m.Type, Value: &v, Unit: m.Unit}
}

func (m BloodPressureMetric) payload() metricPayload {
	sys, dia := m.Systolic, m.Diastolic
	return metricPayload{Type: MetricBloodPressure, Systolic: &sys, Diastolic: &dia, Unit: UnitMmHg}
}

type envelope[T any] struct {
	Data T `json:"data"`
}
