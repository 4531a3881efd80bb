package ports

import (
	"context"

	"github.com/healthtrack/healthtrack/internal/core/domain"
)

// RegisterInput carries the fields of a new account.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Age      *int
}

type AuthService interface {
	// Register creates the account and signs a token for it.
	Register(ctx context.Context, input RegisterInput) (string, *domain.User, error)
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
}

// MedicationInput is used for both create and full replacement.
type MedicationInput struct {
	Name         string
	Dosage       string
	Frequency    string
	Instructions string
}

type MedicationService interface {
	List(ctx context.Context, userID string) ([]*domain.Medication, error)
	Create(ctx context.Context, userID string, input MedicationInput) (*domain.Medication, error)
	Get(ctx context.Context, userID, id string) (*domain.Medication, error)
	Update(ctx context.Context, userID, id string, input MedicationInput) (*domain.Medication, error)
	Delete(ctx context.Context, userID, id string) error
}

// MetricInput mirrors the POST /metrics body before validation.
type MetricInput struct {
	Type      string
	Value     *float64
	Systolic  *int
	Diastolic *int
	Unit      string
}

type MetricService interface {
	List(ctx context.Context, userID string) ([]*domain.HealthMetric, error)
	Record(ctx context.Context, userID string, input MetricInput) (*domain.HealthMetric, error)
	History(ctx context.Context, userID string) (domain.MetricHistory, error)
}
