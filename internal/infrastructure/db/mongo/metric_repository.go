package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/healthtrack/healthtrack/internal/core/domain"
)

const collectionMetrics = "health_metrics"

type MetricRepository struct {
	col *mongo.Collection
}

func NewMetricRepository(db *mongo.Database) *MetricRepository {
	return &MetricRepository{col: db.Collection(collectionMetrics)}
}

func (r *MetricRepository) Create(ctx context.Context, m *domain.HealthMetric) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, m); err != nil {
		return fmt.Errorf("insert metric: %w", err)
	}
	return nil
}

func (r *MetricRepository) ListByUser(ctx context.Context, userID string) ([]*domain.HealthMetric, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("find metrics: %w", err)
	}

	metrics := []*domain.HealthMetric{}
	if err := cur.All(ctx, &metrics); err != nil {
		return nil, fmt.Errorf("decode metrics: %w", err)
	}
	return metrics, nil
}
