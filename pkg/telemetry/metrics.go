// Copyright 2026 © The Majordomo Authors
// SPDX-License-Identifier: Apache-2.0

// Package telemetry provides logging, tracing, and metrics for majordomo.
package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/jvila/majordomo/pkg/errors"
)

// DispatchMetrics tracks specialist dispatch volume, failures, and latency.
type DispatchMetrics struct {
	// taskCounter counts dispatched tasks by specialist and outcome.
	taskCounter metric.Int64Counter

	// failureCounter counts failed tasks by error code.
	failureCounter metric.Int64Counter

	// inflightGauge tracks currently running invocations.
	inflightGauge metric.Int64UpDownCounter

	// durationHist records invocation wall-clock time in milliseconds.
	durationHist metric.Float64Histogram
}

// NewDispatchMetrics creates a dispatch metrics tracker with OTEL meters.
func NewDispatchMetrics() (*DispatchMetrics, error) {
	meter := otel.Meter("majordomo/dispatch")

	taskCounter, err := meter.Int64Counter(
		"majordomo.dispatch.tasks",
		metric.WithDescription("Dispatched tasks by specialist and outcome"),
	)
	if err != nil {
		return nil, err
	}

	failureCounter, err := meter.Int64Counter(
		"majordomo.dispatch.failures",
		metric.WithDescription("Failed tasks by error code"),
	)
	if err != nil {
		return nil, err
	}

	inflightGauge, err := meter.Int64UpDownCounter(
		"majordomo.dispatch.inflight",
		metric.WithDescription("Specialist invocations currently running"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		"majordomo.dispatch.duration",
		metric.WithDescription("Invocation duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &DispatchMetrics{
		taskCounter:    taskCounter,
		failureCounter: failureCounter,
		inflightGauge:  inflightGauge,
		durationHist:   durationHist,
	}, nil
}

// TaskStarted records the start of an invocation. Safe on a nil receiver.
func (dm *DispatchMetrics) TaskStarted(ctx context.Context, specialist string) {
	if dm == nil {
		return
	}
	dm.inflightGauge.Add(ctx, 1,
		metric.WithAttributes(attribute.String("specialist", specialist)))
}

// TaskFinished records an invocation outcome. Safe on a nil receiver.
func (dm *DispatchMetrics) TaskFinished(ctx context.Context, specialist string, elapsed time.Duration, err error) {
	if dm == nil {
		return
	}
	dm.inflightGauge.Add(ctx, -1,
		metric.WithAttributes(attribute.String("specialist", specialist)))

	outcome := "succeeded"
	if err != nil {
		outcome = "failed"
		dm.failureCounter.Add(ctx, 1,
			metric.WithAttributes(
				attribute.String("error.code", string(errors.CodeOf(err))),
				attribute.String("specialist", specialist),
			),
		)
	}
	dm.taskCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("specialist", specialist),
			attribute.String("outcome", outcome),
		),
	)
	dm.durationHist.Record(ctx, float64(elapsed)/float64(time.Millisecond),
		metric.WithAttributes(attribute.String("specialist", specialist)))
}
