package postgres

import (
	"context"
	"fmt"

	"github.com/healthtrack/healthtrack/internal/core/domain"
)

type MetricRepository struct {
	db DBTX
}

func NewMetricRepository(db DBTX) *MetricRepository {
	return &MetricRepository{db: db}
}

func (r *MetricRepository) Create(ctx context.Context, m *domain.HealthMetric) error {
	query := `INSERT INTO health_metrics (id, user_id, type, value, systolic, diastolic, unit, date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.ExecContext(ctx, query,
		m.ID, m.UserID, string(m.Type), m.Value, m.Systolic, m.Diastolic, m.Unit, m.Date)
	if err != nil {
		return fmt.Errorf("insert metric: %w", err)
	}
	return nil
}

func (r *MetricRepository) ListByUser(ctx context.Context, userID string) ([]*domain.HealthMetric, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, type, value, systolic, diastolic, unit, date
		 FROM health_metrics WHERE user_id = $1 ORDER BY date DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list metrics: %w", err)
	}
	defer rows.Close()

	metrics := []*domain.HealthMetric{}
	for rows.Next() {
		m := &domain.HealthMetric{}
		var typ string
		if err := rows.Scan(&m.ID, &m.UserID, &typ, &m.Value, &m.Systolic, &m.Diastolic, &m.Unit, &m.Date); err != nil {
			return nil, fmt.Errorf("scan metric: %w", err)
		}
		m.Type = domain.MetricType(typ)
		metrics = append(metrics, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate metrics: %w", err)
	}
	return metrics, nil
}
