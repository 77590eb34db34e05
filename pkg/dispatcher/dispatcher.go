// Package dispatcher runs specialist tasks one at a time or as a bounded
// concurrent fan-out, isolating each task's failure from its siblings.
package dispatcher

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/jvila/majordomo/pkg/errors"
	"github.com/jvila/majordomo/pkg/invoker"
	"github.com/jvila/majordomo/pkg/telemetry"
)

const defaultMaxParallel = 4

// Dispatcher orchestrates specialist invocations through a registry.
type Dispatcher struct {
	registry    *invoker.Registry
	maxParallel int
	log         *slog.Logger
	metrics     *telemetry.DispatchMetrics
	tracer      trace.Tracer
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithMaxParallel bounds the number of invocations in flight at once
// during a fan-out. Values below one fall back to the default.
func WithMaxParallel(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.maxParallel = n
		}
	}
}

// WithLogger sets the structured logger invoked at task start, end, and
// failure.
func WithLogger(log *slog.Logger) Option {
	return func(d *Dispatcher) {
		if log != nil {
			d.log = log
		}
	}
}

// WithMetrics attaches dispatch metrics.
func WithMetrics(m *telemetry.DispatchMetrics) Option {
	return func(d *Dispatcher) { d.metrics = m }
}

// New creates a Dispatcher over the given registry.
func New(registry *invoker.Registry, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		registry:    registry,
		maxParallel: defaultMaxParallel,
		log:         slog.Default(),
		tracer:      otel.Tracer("majordomo/dispatcher"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch runs a single task to completion. Every failure is captured in
// the result; nothing escapes this boundary as an error.
func (d *Dispatcher) Dispatch(ctx context.Context, task Task) Result {
	res := newResult(task)
	ctx, span := d.tracer.Start(ctx, "Dispatcher.Dispatch", trace.WithAttributes(
		attribute.String("task.id", res.ID),
		attribute.String("specialist", task.Specialist),
	))
	defer span.End()

	d.log.Info("dispatch.start",
		slog.String("task_id", res.ID),
		slog.String("specialist", task.Specialist),
	)
	d.metrics.TaskStarted(ctx, task.Specialist)

	res.Status = StatusRunning
	res.StartedAt = time.Now().UTC()

	output, err := d.registry.Invoke(ctx, task.Specialist, task.Goal, task.Context)

	res.FinishedAt = time.Now().UTC()
	d.metrics.TaskFinished(ctx, task.Specialist, res.FinishedAt.Sub(res.StartedAt), err)

	if err != nil {
		res.Status = StatusFailed
		res.Err = errors.AsMajordomoError(err)
		d.log.Error("dispatch.failed",
			slog.String("task_id", res.ID),
			slog.String("specialist", task.Specialist),
			slog.String("code", string(res.Err.Code)),
			slog.String("error", res.Err.Error()),
		)
		return res
	}

	res.Status = StatusSucceeded
	res.Output = output
	d.log.Info("dispatch.complete",
		slog.String("task_id", res.ID),
		slog.String("specialist", task.Specialist),
	)
	return res
}

// DispatchAll fans tasks out concurrently, at most maxParallel in flight,
// and waits for every task to settle. Results come back in input order and
// one task's failure never cancels or delays another's. Only request-level
// cancellation produces an error, and then no partial results at all.
func (d *Dispatcher) DispatchAll(ctx context.Context, tasks []Task) ([]Result, error) {
	if len(tasks) == 0 {
		return []Result{}, nil
	}

	results := make([]Result, len(tasks))
	sem := make(chan struct{}, d.maxParallel)
	var wg sync.WaitGroup

	for i, task := range tasks {
		wg.Add(1)
		go func(i int, task Task) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				res := newResult(task)
				res.Status = StatusFailed
				res.Err = errors.New(errors.CodeCancelled, "request cancelled before task started", ctx.Err())
				results[i] = res
				return
			}
			defer func() { <-sem }()
			results[i] = d.Dispatch(ctx, task)
		}(i, task)
	}
	wg.Wait()

	// A cancelled request fails atomically: partial results are withheld.
	if ctx.Err() != nil {
		return nil, errors.New(errors.CodeCancelled, "dispatch request cancelled", ctx.Err()).
			WithContext("tasks", len(tasks))
	}
	return results, nil
}
