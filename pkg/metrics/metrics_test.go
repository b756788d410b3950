package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := make(map[string]metricdata.Aggregation)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m.Data
		}
	}
	return out
}

func sumInt(t *testing.T, agg metricdata.Aggregation) int64 {
	t.Helper()
	sum, ok := agg.(metricdata.Sum[int64])
	require.True(t, ok)
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestRecorders(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := New(provider.Meter("test"), "storefront-test")
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordCartMutation(ctx, "add")
	m.RecordCartMutation(ctx, "add")
	m.RecordCartMutation(ctx, "clear")
	m.RecordOrderCreated(ctx, 110)
	m.RecordHTTPRequest(ctx, "GET", "/api/cart", 200, 5*time.Millisecond)
	m.RecordHTTPRequest(ctx, "GET", "/api/cart", 404, time.Millisecond)

	data := collect(t, reader)
	assert.Equal(t, int64(3), sumInt(t, data["cart_mutations_total"]))
	assert.Equal(t, int64(1), sumInt(t, data["orders_created_total"]))
	assert.Equal(t, int64(2), sumInt(t, data["http.server.request.count"]))
	assert.Equal(t, int64(1), sumInt(t, data["http.server.request.error.count"]))

	revenue, ok := data["revenue_total"].(metricdata.Sum[float64])
	require.True(t, ok)
	require.Len(t, revenue.DataPoints, 1)
	assert.Equal(t, 110.0, revenue.DataPoints[0].Value)
}

func TestInitWithoutEndpointIsNoop(t *testing.T) {
	m, shutdown, err := Init(context.Background(), Options{ServiceName: "storefront-test"})
	require.NoError(t, err)
	m.RecordCartMutation(context.Background(), "add")
	assert.NoError(t, shutdown(context.Background()))
}
