// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package telemetry wraps every pipeline stage (normalize, lowering,
// abstract interpretation, planning, emission, optimization) with an
// OpenTelemetry span and a matching set of Prometheus metrics, so an
// operator can see both a per-run trace and fleet-wide dashboards from the
// same instrumentation call.
package telemetry

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	metricsNamespace = "ftuimigrate"
	pipelineSubsystem = "pipeline"
)

// StageMetrics holds the Prometheus instruments shared by every stage.
type StageMetrics struct {
	RunsTotal       *prometheus.CounterVec
	DurationSeconds *prometheus.HistogramVec
	ErrorsTotal     *prometheus.CounterVec
}

// defaultMetrics is the process-wide singleton, registered once via
// NewStageMetrics and reused by every Instrument call. Package-level state
// mirrors the teacher's DefaultMetrics singleton pattern.
var defaultMetrics *StageMetrics

// NewStageMetrics registers the pipeline's Prometheus instruments against
// reg. Call once at process startup; calling twice against the same
// registry panics, matching promauto's own registration semantics.
func NewStageMetrics(reg prometheus.Registerer) *StageMetrics {
	factory := promauto.With(reg)
	m := &StageMetrics{
		RunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: pipelineSubsystem,
			Name:      "stage_runs_total",
			Help:      "Total pipeline stage invocations by stage and status",
		}, []string{"stage", "status"}),

		DurationSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: pipelineSubsystem,
			Name:      "stage_duration_seconds",
			Help:      "Pipeline stage wall-clock duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
		}, []string{"stage"}),

		ErrorsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: pipelineSubsystem,
			Name:      "stage_errors_total",
			Help:      "Total pipeline stage failures by stage",
		}, []string{"stage"}),
	}
	defaultMetrics = m
	return m
}

// Metrics returns the process-wide StageMetrics, lazily registering
// against the default Prometheus registry if NewStageMetrics was never
// called explicitly.
func Metrics() *StageMetrics {
	if defaultMetrics == nil {
		return NewStageMetrics(prometheus.DefaultRegisterer)
	}
	return defaultMetrics
}

var tracer = otel.Tracer("ftuimigrate/pipeline")

// Instrument runs fn inside an OpenTelemetry span named "pipeline.<stage>"
// and records its duration, run count, and (on error) error count against
// m. The span's status reflects fn's error per OTel's own status
// convention: Ok on success, Error with the message otherwise.
func Instrument(ctx context.Context, m *StageMetrics, stage string, fn func(context.Context) error) error {
	ctx, span := tracer.Start(ctx, "pipeline."+stage, trace.WithAttributes(
		attribute.String("stage", stage),
	))
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)

	m.DurationSeconds.WithLabelValues(stage).Observe(elapsed.Seconds())

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		m.RunsTotal.WithLabelValues(stage, "error").Inc()
		m.ErrorsTotal.WithLabelValues(stage).Inc()
		return err
	}

	span.SetStatus(codes.Ok, "")
	m.RunsTotal.WithLabelValues(stage, "success").Inc()
	return nil
}

// InstrumentValue is Instrument's generic counterpart for a stage function
// that returns a result alongside an error.
func InstrumentValue[T any](ctx context.Context, m *StageMetrics, stage string, fn func(context.Context) (T, error)) (T, error) {
	var result T
	err := Instrument(ctx, m, stage, func(ctx context.Context) error {
		var innerErr error
		result, innerErr = fn(ctx)
		return innerErr
	})
	return result, err
}
