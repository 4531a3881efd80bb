// Package dashboard loads everything the overview screen shows in one go.
package dashboard

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/healthtrack/healthtrack/internal/client/api"
	"github.com/healthtrack/healthtrack/internal/client/viewmodel"
)

// Types lists the charted metric types in display order.
var Types = []api.MetricType{
	api.MetricHeartRate,
	api.MetricBloodPressure,
	api.MetricWeight,
	api.MetricTemperature,
	api.MetricGlucose,
}

// Source is satisfied by *api.Client.
type Source interface {
	Medications(ctx context.Context) ([]api.Medication, error)
	Metrics(ctx context.Context) ([]api.HealthMetric, error)
	MetricHistory(ctx context.Context) (api.MetricHistory, error)
}

type Dashboard struct {
	Summary     viewmodel.Summary
	Medications []api.Medication
	Metrics     []api.HealthMetric
	Series      map[api.MetricType][]viewmodel.Point
}

// Load fetches medications, metrics and history concurrently. The first
// failure cancels the other requests and is returned.
func Load(ctx context.Context, src Source, loc *time.Location) (*Dashboard, error) {
	var (
		meds    []api.Medication
		metrics []api.HealthMetric
		history api.MetricHistory
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		meds, err = src.Medications(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		metrics, err = src.Metrics(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		history, err = src.MetricHistory(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	series := make(map[api.MetricType][]viewmodel.Point, len(Types))
	for _, t := range Types {
		series[t] = viewmodel.BuildSeriesIn(history, t, loc)
	}

	return &Dashboard{
		Summary:     viewmodel.Summarize(meds, metrics),
		Medications: meds,
		Metrics:     metrics,
		Series:      series,
	}, nil
}
