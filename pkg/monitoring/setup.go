package monitoring

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	promhttp "github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

const defaultServiceName = "kalyanmalai-backend"

// Config captures the setup parameters of the service.
type Config struct {
	ServiceName   string
	ResourceAttrs map[string]string
}

// instruments is nil until Setup succeeds, which makes every recorder a no-op
type instruments struct {
	provider *sdkmetric.MeterProvider
	handler  http.Handler

	requests        metric.Int64Counter
	requestDuration metric.Float64Histogram
	externalCalls   metric.Int64Counter
	externalLatency metric.Float64Histogram
	externalErrors  metric.Int64Counter
	businessEvents  metric.Int64Counter
}

var (
	active    atomic.Pointer[instruments]
	setupOnce sync.Once
	setupErr  error
)

// Setup wires OpenTelemetry metrics to a Prometheus registry served by Handler.
// Only the first call configures anything; later calls return the same shutdown.
func Setup(ctx context.Context, cfg Config) (func(context.Context) error, error) {
	setupOnce.Do(func() {
		inst, err := newInstruments(cfg)
		if err != nil {
			setupErr = err
			return
		}
		otel.SetMeterProvider(inst.provider)
		active.Store(inst)
	})
	if setupErr != nil {
		return nil, setupErr
	}
	return shutdown, nil
}

func shutdown(ctx context.Context) error {
	if inst := active.Load(); inst != nil {
		return inst.provider.Shutdown(ctx)
	}
	return nil
}

func newInstruments(cfg Config) (*instruments, error) {
	if cfg.ServiceName == "" {
		cfg.ServiceName = defaultServiceName
	}
	attrs := []attribute.KeyValue{semconv.ServiceName(cfg.ServiceName)}
	for k, v := range cfg.ResourceAttrs {
		attrs = append(attrs, attribute.String(k, v))
	}
	res, err := resource.Merge(resource.Default(), resource.NewSchemaless(attrs...))
	if err != nil {
		return nil, err
	}

	registry := promclient.NewRegistry()
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	exporter, err := prometheus.New(prometheus.WithRegisterer(registry), prometheus.WithoutUnits())
	if err != nil {
		return nil, err
	}

	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter), sdkmetric.WithResource(res))
	// Go runtime metrics (goroutines, GC, memory) on the same provider
	if err := runtime.Start(
		runtime.WithMinimumReadMemStatsInterval(10*time.Second),
		runtime.WithMeterProvider(provider),
	); err != nil {
		return nil, err
	}
	meter := provider.Meter(cfg.ServiceName)
	inst := &instruments{
		provider: provider,
		handler:  promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	}

	counters := []struct {
		dst         *metric.Int64Counter
		name, about string
	}{
		{&inst.requests, "http_requests_total", "HTTP requests served"},
		{&inst.externalCalls, "external_calls_total", "Calls to the broker, object store and cache"},
		{&inst.externalErrors, "external_call_errors_total", "Failed external calls"},
		{&inst.businessEvents, "business_events_total", "Workflow events by action and outcome"},
	}
	for _, c := range counters {
		if *c.dst, err = meter.Int64Counter(c.name, metric.WithDescription(c.about)); err != nil {
			return nil, err
		}
	}

	if inst.requestDuration, err = meter.Float64Histogram("http_request_duration_seconds",
		metric.WithDescription("HTTP request latency"), metric.WithUnit("s")); err != nil {
		return nil, err
	}
	if inst.externalLatency, err = meter.Float64Histogram("external_call_duration_seconds",
		metric.WithDescription("External call latency"), metric.WithUnit("s")); err != nil {
		return nil, err
	}
	return inst, nil
}

// Handler serves the Prometheus exposition, or 404 before Setup
func Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		inst := active.Load()
		if inst == nil {
			http.NotFound(w, r)
			return
		}
		inst.handler.ServeHTTP(w, r)
	})
}
