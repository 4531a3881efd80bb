package ports

import (
	"context"

	"github.com/healthtrack/healthtrack/internal/core/domain"
)

// UserRepository persists accounts. Email is unique.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
}

// MedicationRepository persists medications. Every lookup is scoped by
// userID; a medication owned by someone else is reported as not found.
type MedicationRepository interface {
	Create(ctx context.Context, m *domain.Medication) error
	ListByUser(ctx context.Context, userID string) ([]*domain.Medication, error)
	FindByID(ctx context.Context, userID, id string) (*domain.Medication, error)
	Update(ctx context.Context, m *domain.Medication) error
	Delete(ctx context.Context, userID, id string) error
}

// MetricRepository persists health readings.
type MetricRepository interface {
	Create(ctx context.Context, m *domain.HealthMetric) error
	// ListByUser returns the user's readings, newest first.
	ListByUser(ctx context.Context, userID string) ([]*domain.HealthMetric, error)
}

// HistoryCache stores computed metric histories per user. Every user has a
// generation counter that Invalidate advances; a history built under an
// older generation is never stored.
type HistoryCache interface {
	Get(ctx context.Context, userID string) (domain.MetricHistory, bool, error)
	// Generation must be read before the repository snapshot the history is
	// built from.
	Generation(ctx context.Context, userID string) (int64, error)
	// Set stores history only while the user's generation still equals gen.
	// stored is false when a write happened in between.
	Set(ctx context.Context, userID string, gen int64, history domain.MetricHistory) (stored bool, err error)
	Invalidate(ctx context.Context, userID string) error
}

// HistoryWarmer rebuilds a user's cached history in the background.
type HistoryWarmer interface {
	Enqueue(userID string)
}
