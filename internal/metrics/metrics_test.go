package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserve(t *testing.T) {
	m := New()
	m.ObserveTurn(PathRule, 3, 8)
	m.ObserveTurn(PathRAG, 120, 40)
	m.ObserveFailure("auth")
	m.ObserveIngest(3)

	if got := testutil.ToFloat64(m.Turns.WithLabelValues(PathRAG)); got != 1 {
		t.Errorf("rag turns = %v", got)
	}
	if got := testutil.ToFloat64(m.Tokens.WithLabelValues("input")); got != 123 {
		t.Errorf("input tokens = %v", got)
	}
	if got := testutil.ToFloat64(m.Tokens.WithLabelValues("output")); got != 48 {
		t.Errorf("output tokens = %v", got)
	}
	if got := testutil.ToFloat64(m.Failures.WithLabelValues("auth")); got != 1 {
		t.Errorf("auth failures = %v", got)
	}
	if got := testutil.ToFloat64(m.ChunksIngested); got != 3 {
		t.Errorf("chunks = %v", got)
	}
}

func TestNilMetricsAreNoops(t *testing.T) {
	var m *Metrics
	m.ObserveTurn(PathChat, 1, 1)
	m.ObserveFailure("provider")
	m.ObserveIngest(1)
}
