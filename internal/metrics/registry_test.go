package metrics

import (
	"net/http/httptest"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findFamily(t *testing.T, families []*dto.MetricFamily, name string) *dto.MetricFamily {
	t.Helper()
	for _, f := range families {
		if f.GetName() == name {
			return f
		}
	}
	t.Fatalf("metric family %s not found", name)
	return nil
}

func TestObserveSignal(t *testing.T) {
	r := NewRegistry()
	r.ObserveSignal("BUY", 84)
	r.ObserveSignal("BUY", 60)
	r.ObserveSignal("WAIT", 30)

	families, err := r.Gather().Gather()
	require.NoError(t, err)

	signals := findFamily(t, families, "signalrun_signals_total")
	counts := map[string]float64{}
	for _, m := range signals.GetMetric() {
		for _, l := range m.GetLabel() {
			if l.GetName() == "action" {
				counts[l.GetValue()] = m.GetCounter().GetValue()
			}
		}
	}
	assert.Equal(t, 2.0, counts["BUY"])
	assert.Equal(t, 1.0, counts["WAIT"])

	scores := findFamily(t, families, "signalrun_risk_score")
	require.Len(t, scores.GetMetric(), 1)
	assert.Equal(t, uint64(3), scores.GetMetric()[0].GetHistogram().GetSampleCount())
}

func TestObserveRequest(t *testing.T) {
	r := NewRegistry()
	r.ObserveRequest("/v1/signal", "200", 42*time.Millisecond)

	families, err := r.Gather().Gather()
	require.NoError(t, err)

	durations := findFamily(t, families, "signalrun_request_duration_seconds")
	require.Len(t, durations.GetMetric(), 1)
	h := durations.GetMetric()[0].GetHistogram()
	assert.Equal(t, uint64(1), h.GetSampleCount())
	assert.InDelta(t, 0.042, h.GetSampleSum(), 1e-9)
}

func TestHandlerServesScrapes(t *testing.T) {
	r := NewRegistry()
	r.BacktestRuns.Inc()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	r.Handler().ServeHTTP(rec, req)

	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "signalrun_backtest_runs_total 1")
}
