package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRecord(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := New(reg)
	require.NoError(t, err)

	m.ObserveHTTPRequest("GET", "/products", 200, 15*time.Millisecond)
	m.ObserveHTTPRequest("GET", "/products", 200, 5*time.Millisecond)
	m.ObserveGRPCRequest("/inventory.v1.InventoryService/AdjustStock", "OK")
	m.AdjustmentDone("out", "applied")
	m.AdjustmentDone("out", "insufficient_stock")
	m.AdjustmentRetried()
	m.SetInventory(12, 99.5)
	m.ExportDone("download")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/products", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.GRPCRequestsTotal.WithLabelValues("/inventory.v1.InventoryService/AdjustStock", "OK")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AdjustmentsTotal.WithLabelValues("out", "applied")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AdjustmentsTotal.WithLabelValues("out", "insufficient_stock")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ConflictRetries))
	assert.Equal(t, 99.5, testutil.ToFloat64(m.InventoryValue))
	assert.Equal(t, 12.0, testutil.ToFloat64(m.InventoryUnits))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ExportsTotal.WithLabelValues("download")))
}

func TestNew_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(reg)
	require.NoError(t, err)
	_, err = New(reg)
	assert.Error(t, err)
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveHTTPRequest("GET", "/", 200, time.Millisecond)
		m.ObserveGRPCRequest("x", "OK")
		m.AdjustmentDone("in", "applied")
		m.AdjustmentRetried()
		m.SetInventory(1, 1)
		m.ExportDone("archive")
	})
}
