package observability

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_SwapLifecycle(t *testing.T) {
	m := NewMetrics("test", prometheus.NewRegistry())

	m.SwapStarted()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SwapsInFlight))

	m.SwapFinished("succeeded", 2*time.Second)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.SwapsInFlight))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SwapsSubmitted))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SwapOutcomes.WithLabelValues("succeeded")))
}

func TestMetrics_NilReceiver(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveTransition("invert")
		m.ObserveQuote()
		m.ObserveWallet(true)
		m.SwapStarted()
		m.SwapFinished("failed", time.Second)
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics("", nil)
	m.ObserveWallet(false)
	m.ObserveQuote()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `mock_swap_wallet_connections_total{result="failed"} 1`)
	assert.Contains(t, string(body), "mock_swap_quote_computed_total 1")
}
