package queue

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

type Handler func(ctx context.Context, job Job) error

type Observer interface {
	JobProcessed(kind, result string)
}

type nopObserver struct{}

func (nopObserver) JobProcessed(string, string) {}

// Worker pulls jobs from a broker and dispatches them by kind. A failed job
// is pushed back with its attempt count raised until maxAttempts, then buried.
type Worker struct {
	broker      Broker
	handlers    map[string]Handler
	maxAttempts int
	backoff     func(attempt int) time.Duration
	log         zerolog.Logger
	obs         Observer
}

type Option func(*Worker)

func WithBackoff(f func(attempt int) time.Duration) Option {
	return func(w *Worker) { w.backoff = f }
}

func WithObserver(o Observer) Option {
	return func(w *Worker) { w.obs = o }
}

func NewWorker(b Broker, maxAttempts int, log zerolog.Logger, opts ...Option) *Worker {
	w := &Worker{
		broker:      b,
		handlers:    make(map[string]Handler),
		maxAttempts: maxAttempts,
		backoff:     ExponentialBackoff,
		log:         log.With().Str("component", "worker").Logger(),
		obs:         nopObserver{},
	}
	for _, o := range opts {
		o(w)
	}
	return w
}

// ExponentialBackoff waits 1s, 2s, 4s... capped at one minute.
func ExponentialBackoff(attempt int) time.Duration {
	d := time.Second << max(min(attempt-1, 6), 0)
	return min(d, time.Minute)
}

// Handle registers h for jobs of the given kind. Call before Run.
func (w *Worker) Handle(kind string, h Handler) {
	w.handlers[kind] = h
}

// Run starts n consumers and blocks until ctx is done and all have stopped.
func (w *Worker) Run(ctx context.Context, n int) {
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			w.log.Info().Int("worker", id).Msg("worker started")
			w.loop(ctx)
			w.log.Info().Int("worker", id).Msg("worker stopped")
		}(i)
	}
	wg.Wait()
}

func (w *Worker) loop(ctx context.Context) {
	for {
		job, err := w.broker.Pop(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			w.log.Error().Err(err).Msg("pop job")
			if !sleep(ctx, time.Second) {
				return
			}
			continue
		}
		w.process(ctx, job)
	}
}

func (w *Worker) process(ctx context.Context, job Job) {
	log := w.log.With().Str("job_id", job.ID).Str("kind", job.Kind).Logger()

	h, ok := w.handlers[job.Kind]
	if !ok {
		log.Error().Msg("no handler for job kind")
		w.bury(ctx, job)
		return
	}

	err := h(ctx, job)
	if err == nil {
		w.obs.JobProcessed(job.Kind, "ok")
		log.Debug().Msg("job done")
		return
	}

	job.Attempts++
	log.Warn().Err(err).Int("attempt", job.Attempts).Msg("job failed")
	if job.Attempts >= w.maxAttempts || errors.Is(err, ErrPermanent) {
		w.bury(ctx, job)
		return
	}

	if !sleep(ctx, w.backoff(job.Attempts)) {
		// shutting down; keep the job for the next run
		ctx = context.WithoutCancel(ctx)
	}
	if err := w.broker.Push(ctx, job); err != nil {
		log.Error().Err(err).Msg("requeue job")
		w.bury(ctx, job)
		return
	}
	w.obs.JobProcessed(job.Kind, "retry")
}

func (w *Worker) bury(ctx context.Context, job Job) {
	w.obs.JobProcessed(job.Kind, "dead")
	if err := w.broker.Bury(context.WithoutCancel(ctx), job); err != nil {
		w.log.Error().Err(err).Str("job_id", job.ID).Msg("bury job")
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
