package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/healthtrack/healthtrack/internal/core/domain"
	"github.com/healthtrack/healthtrack/internal/core/ports"
)

type MetricService struct {
	repo   ports.MetricRepository
	cache  ports.HistoryCache
	warmer ports.HistoryWarmer
	logger zerolog.Logger
	now    func() time.Time
}

// NewMetricService wires the metric use cases. cache may be nil, in which
// case every history request is computed from the repository.
func NewMetricService(repo ports.MetricRepository, cache ports.HistoryCache, logger zerolog.Logger) *MetricService {
	return &MetricService{repo: repo, cache: cache, logger: logger, now: time.Now}
}

// SetWarmer makes Record schedule a history rebuild after each write.
func (s *MetricService) SetWarmer(w ports.HistoryWarmer) {
	s.warmer = w
}

func (s *MetricService) List(ctx context.Context, userID string) ([]*domain.HealthMetric, error) {
	metrics, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if metrics == nil {
		metrics = []*domain.HealthMetric{}
	}
	return metrics, nil
}

func (s *MetricService) Record(ctx context.Context, userID string, input ports.MetricInput) (*domain.HealthMetric, error) {
	metric := &domain.HealthMetric{
		ID:        uuid.NewString(),
		UserID:    userID,
		Type:      domain.MetricType(input.Type),
		Value:     input.Value,
		Systolic:  input.Systolic,
		Diastolic: input.Diastolic,
		Unit:      input.Unit,
		Date:      s.now().UTC(),
	}
	if err := domain.ValidateMetric(metric); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, metric); err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("failed to record metric")
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, userID); err != nil {
			s.logger.Warn().Err(err).Str("user_id", userID).Msg("history cache invalidation failed")
		}
		if s.warmer != nil {
			s.warmer.Enqueue(userID)
		}
	}

	s.logger.Info().Str("metric_id", metric.ID).Str("type", string(metric.Type)).Str("user_id", userID).Msg("metric recorded")
	return metric, nil
}

// History serves from the cache when possible. Cache failures degrade to a
// repository read and are only logged.
func (s *MetricService) History(ctx context.Context, userID string) (domain.MetricHistory, error) {
	if s.cache != nil {
		history, ok, err := s.cache.Get(ctx, userID)
		if err != nil {
			s.logger.Warn().Err(err).Str("user_id", userID).Msg("history cache read failed")
		} else if ok {
			return history, nil
		}
	}
	return s.build(ctx, userID)
}

// Rebuild recomputes the history from the repository and refreshes the
// cache without consulting the cached entry.
func (s *MetricService) Rebuild(ctx context.Context, userID string) error {
	_, err := s.build(ctx, userID)
	return err
}

// build reads the generation before the repository snapshot so a write
// committed in between keeps the result out of the cache.
func (s *MetricService) build(ctx context.Context, userID string) (domain.MetricHistory, error) {
	var gen int64
	cacheable := s.cache != nil
	if cacheable {
		g, err := s.cache.Generation(ctx, userID)
		if err != nil {
			s.logger.Warn().Err(err).Str("user_id", userID).Msg("history cache generation read failed")
			cacheable = false
		}
		gen = g
	}

	metrics, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	history := domain.BuildHistory(metrics)

	if cacheable {
		stored, err := s.cache.Set(ctx, userID, gen, history)
		switch {
		case err != nil:
			s.logger.Warn().Err(err).Str("user_id", userID).Msg("history cache write failed")
		case !stored:
			s.logger.Debug().Str("user_id", userID).Msg("history changed while building, not cached")
		}
	}
	return history, nil
}
