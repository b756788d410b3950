package metrics

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
)

// AppMetrics holds all application metrics
type AppMetrics struct {
	// HTTP Metrics
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestsErrors  metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram

	// Business Metrics
	CartMutations  metric.Int64Counter
	OrdersCreated  metric.Int64Counter
	RevenueTotal   metric.Float64Counter
	ProductsViewed metric.Int64Counter

	serviceName string
}

type Options struct {
	Endpoint    string
	Insecure    bool
	ServiceName string
	Environment string
}

// Init builds the meter provider and instruments. With no endpoint every
// instrument is a no-op. The returned shutdown flushes pending exports.
func Init(ctx context.Context, opts Options) (*AppMetrics, func(context.Context) error, error) {
	if opts.Endpoint == "" {
		log.Println("Metrics exporter disabled - OTEL_EXPORTER_OTLP_ENDPOINT not set")
		m, err := New(noop.NewMeterProvider().Meter(opts.ServiceName), opts.ServiceName)
		return m, func(context.Context) error { return nil }, err
	}

	res, err := resource.New(ctx,
		resource.WithFromEnv(),
		resource.WithAttributes(
			semconv.ServiceName(opts.ServiceName),
			attribute.String("deployment.environment", opts.Environment),
		),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create resource: %w", err)
	}

	exporterOpts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(opts.Endpoint),
		otlpmetrichttp.WithURLPath("/v1/metrics"),
	}
	if opts.Insecure {
		exporterOpts = append(exporterOpts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, exporterOpts...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
	)
	otel.SetMeterProvider(meterProvider)

	m, err := New(meterProvider.Meter(opts.ServiceName), opts.ServiceName)
	if err != nil {
		return nil, nil, err
	}
	log.Printf("Metrics will be exported every 10 seconds to %s/v1/metrics", opts.Endpoint)
	return m, meterProvider.Shutdown, nil
}

// New creates the instruments on meter.
func New(meter metric.Meter, serviceName string) (*AppMetrics, error) {
	buckets := []float64{2, 4, 6, 8, 10, 50, 100, 200, 400, 800, 1000, 1400, 2000, 5000, 10000}

	httpRequestsTotal, err := meter.Int64Counter(
		"http.server.request.count",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http requests counter: %w", err)
	}

	httpRequestsErrors, err := meter.Int64Counter(
		"http.server.request.error.count",
		metric.WithDescription("Total number of HTTP error requests"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http errors counter: %w", err)
	}

	httpRequestDuration, err := meter.Float64Histogram(
		"http.server.request.duration",
		metric.WithDescription("HTTP request duration in milliseconds"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(buckets...),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http duration histogram: %w", err)
	}

	cartMutations, err := meter.Int64Counter(
		"cart_mutations_total",
		metric.WithDescription("Cart add, update, remove and clear operations"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create cart mutations counter: %w", err)
	}

	ordersCreated, err := meter.Int64Counter(
		"orders_created_total",
		metric.WithDescription("Total number of orders created"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create orders counter: %w", err)
	}

	revenueTotal, err := meter.Float64Counter(
		"revenue_total",
		metric.WithDescription("Total order value as submitted at checkout"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create revenue counter: %w", err)
	}

	productsViewed, err := meter.Int64Counter(
		"products_viewed_total",
		metric.WithDescription("Total number of product views"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create products viewed counter: %w", err)
	}

	return &AppMetrics{
		HTTPRequestsTotal:   httpRequestsTotal,
		HTTPRequestsErrors:  httpRequestsErrors,
		HTTPRequestDuration: httpRequestDuration,
		CartMutations:       cartMutations,
		OrdersCreated:       ordersCreated,
		RevenueTotal:        revenueTotal,
		ProductsViewed:      productsViewed,
		serviceName:         serviceName,
	}, nil
}

// WithServiceName adds service.name to attributes
func (m *AppMetrics) WithServiceName(attrs []attribute.KeyValue) []attribute.KeyValue {
	return append(attrs, attribute.String("service.name", m.serviceName))
}

func (m *AppMetrics) RecordHTTPRequest(ctx context.Context, method, route string, status int, elapsed time.Duration) {
	attrs := metric.WithAttributes(m.WithServiceName([]attribute.KeyValue{
		attribute.String("http.method", method),
		attribute.String("http.route", route),
		attribute.Int("http.status_code", status),
	})...)

	m.HTTPRequestsTotal.Add(ctx, 1, attrs)
	if status >= 400 {
		m.HTTPRequestsErrors.Add(ctx, 1, attrs)
	}
	m.HTTPRequestDuration.Record(ctx, float64(elapsed.Milliseconds()), attrs)
}

func (m *AppMetrics) RecordCartMutation(ctx context.Context, op string) {
	m.CartMutations.Add(ctx, 1, metric.WithAttributes(m.WithServiceName([]attribute.KeyValue{
		attribute.String("cart.operation", op),
	})...))
}

func (m *AppMetrics) RecordOrderCreated(ctx context.Context, total float64) {
	attrs := metric.WithAttributes(m.WithServiceName(nil)...)
	m.OrdersCreated.Add(ctx, 1, attrs)
	if total > 0 {
		m.RevenueTotal.Add(ctx, total, attrs)
	}
}

func (m *AppMetrics) RecordProductView(ctx context.Context) {
	m.ProductsViewed.Add(ctx, 1, metric.WithAttributes(m.WithServiceName(nil)...))
}
