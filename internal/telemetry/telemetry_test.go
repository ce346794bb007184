package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func newTestMetrics(t *testing.T) *StageMetrics {
	t.Helper()
	reg := prometheus.NewRegistry()
	return NewStageMetrics(reg)
}

func TestInstrumentRecordsSuccess(t *testing.T) {
	m := newTestMetrics(t)
	err := Instrument(context.Background(), m, "normalize", func(ctx context.Context) error {
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := testutil.ToFloat64(m.RunsTotal.WithLabelValues("normalize", "success")); got != 1 {
		t.Errorf("expected 1 success run, got %v", got)
	}
}

func TestInstrumentRecordsFailure(t *testing.T) {
	m := newTestMetrics(t)
	want := errors.New("boom")
	err := Instrument(context.Background(), m, "lowering", func(ctx context.Context) error {
		return want
	})
	if err != want {
		t.Fatalf("expected wrapped error to be the original, got %v", err)
	}
	if got := testutil.ToFloat64(m.ErrorsTotal.WithLabelValues("lowering")); got != 1 {
		t.Errorf("expected 1 error, got %v", got)
	}
}

func TestInstrumentValuePropagatesResult(t *testing.T) {
	m := newTestMetrics(t)
	got, err := InstrumentValue(context.Background(), m, "emit", func(ctx context.Context) (int, error) {
		return 42, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 42 {
		t.Errorf("expected 42, got %d", got)
	}
}
