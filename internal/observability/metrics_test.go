package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveGate(t *testing.T) {
	m := NewMetrics()
	m.ObserveGate("access", "no_session", 10*time.Millisecond)
	m.ObserveGate("access", "no_session", 5*time.Millisecond)
	m.ObserveGate("trial", "ok", time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.GateDecisionsTotal.WithLabelValues("access", "no_session")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.GateDecisionsTotal.WithLabelValues("trial", "ok")))
}

func TestObserveGateNilReceiver(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() { m.ObserveGate("access", "ok", time.Millisecond) })
}

func TestMetricsHandler(t *testing.T) {
	m := NewMetrics()
	m.ObserveGate("access", "ok", time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `clubcore_gate_decisions_total{gate="access",outcome="ok"} 1`))
}
