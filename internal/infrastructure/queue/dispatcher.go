// Package queue runs background history rebuilds on a fixed set of workers.
package queue

import (
	"context"
	"hash/fnv"

	"github.com/rs/zerolog"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// HistoryRebuilder recomputes a user's history from storage and refreshes
// the cache. *service.MetricService satisfies it.
type HistoryRebuilder interface {
	Rebuild(ctx context.Context, userID string) error
}

// Dispatcher routes warm-up jobs to workers by hashing the user id, so
// rebuilds for one user never run concurrently.
type Dispatcher struct {
	workers []chan string
	builder HistoryRebuilder
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, builder HistoryRebuilder, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan string, numWorkers),
		builder: builder,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan string, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue schedules a rebuild for userID. It never blocks: when the
// worker's buffer is full the job is dropped and the next history read
// rebuilds on demand.
func (d *Dispatcher) Enqueue(userID string) {
	select {
	case d.workers[d.shardIndex(userID)] <- userID:
	default:
		d.log.Warn().Str("user_id", userID).Msg("history warm-up queue full, job dropped")
	}
}

// shardIndex maps a user id deterministically to a worker index.
func (d *Dispatcher) shardIndex(userID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan string) {
	for {
		select {
		case <-ctx.Done():
			return
		case userID := <-ch:
			if err := d.builder.Rebuild(ctx, userID); err != nil {
				d.log.Error().Err(err).
					Str("user_id", userID).
					Int("worker_id", id).
					Msg("history warm-up failed")
			}
		}
	}
}
