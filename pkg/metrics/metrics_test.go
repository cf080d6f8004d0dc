package metrics_test

import (
	"io"
	"net/http/httptest"
	"testing"

	"bookstore/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewOrderMetrics(reg)

	m.ObservePlaced()
	m.ObservePlaced()
	m.ObserveTransition("DELIVERED")
	m.ObserveRejected("deliver", "ILLEGAL_STATE")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Placed))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Transitions.WithLabelValues("DELIVERED")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Rejected.WithLabelValues("deliver", "ILLEGAL_STATE")))
}

func TestOrderMetrics_NilIsNoop(t *testing.T) {
	var m *metrics.OrderMetrics
	assert.NotPanics(t, func() {
		m.ObservePlaced()
		m.ObserveTransition("CANCELLED")
		m.ObserveRejected("cancel", "FORBIDDEN")
	})
}

func TestHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics.NewOrderMetrics(reg).ObservePlaced()

	rec := httptest.NewRecorder()
	metrics.Handler(reg).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "bookstore_orders_placed_total 1")
}
