package implementation

import (
	"context"
	"errors"
	"fmt"

	"github.com/jt828/go-measured/pkg/observability"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
)

const (
	BackendPrometheus = "prometheus"
	BackendOtel       = "otel"
)

var ErrUnknownMetricsBackend = errors.New("unknown metrics backend")

type Config struct {
	ServiceName    string
	MetricsAddr    string
	MetricsBackend string
	OTLPEndpoint   string
	LogLevel       string
}

// ParseMetricsBackend accepts "prometheus" and "otel". Empty selects
// prometheus.
func ParseMetricsBackend(s string) (string, error) {
	switch s {
	case "", BackendPrometheus:
		return BackendPrometheus, nil
	case BackendOtel:
		return BackendOtel, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMetricsBackend, s)
	}
}

// NewObservability wires zap, a Prometheus meter and, when OTLPEndpoint is
// set, an OTLP tracer. Histogram samples go to the Prometheus meter or, with
// MetricsBackend "otel", to an OTLP metric exporter. Either way the recorder
// logs samples at debug level and is guarded against backend failures.
func NewObservability(cfg Config) (observability.Observability, error) {
	backend, err := ParseMetricsBackend(cfg.MetricsBackend)
	if err != nil {
		return nil, err
	}

	log, err := NewZapLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	log = log.With(observability.String("service", cfg.ServiceName))

	ctx := context.Background()
	meter := newPrometheusMeter(prometheusRegistry(), MillisecondBuckets)

	var backendRecorder observability.HistogramRecorder = meter
	var metricsClose func(context.Context) error
	if backend == BackendOtel {
		provider, err := newOtelMeterProvider(ctx, cfg.ServiceName, cfg.OTLPEndpoint)
		if err != nil {
			return nil, err
		}
		backendRecorder, err = NewOtelRecorder(otelMeter(provider, cfg.ServiceName))
		if err != nil {
			_ = provider.Shutdown(ctx)
			return nil, err
		}
		metricsClose = provider.Shutdown
	}
	recorder := NewGuardedRecorder(NewLoggingRecorder(backendRecorder, log), nil, log)

	var tracer observability.Tracer
	var traceClose func(context.Context) error
	if cfg.OTLPEndpoint != "" {
		tracer, traceClose, err = NewOtelTracer(ctx, cfg.ServiceName, cfg.OTLPEndpoint)
		if err != nil {
			if metricsClose != nil {
				_ = metricsClose(ctx)
			}
			return nil, err
		}
	} else {
		tracer = NewNoopTracer()
	}

	log.Info("observability initialized",
		observability.String("metrics_backend", backend),
		observability.Bool("tracing", cfg.OTLPEndpoint != ""),
	)

	return &observabilityImplementation{
		log:          log,
		meter:        meter,
		recorder:     recorder,
		tracer:       tracer,
		metricsAddr:  cfg.MetricsAddr,
		metricsClose: metricsClose,
		traceClose:   traceClose,
	}, nil
}

// newOtelMeterProvider exports metrics over OTLP/gRPC on a periodic reader.
// An empty endpoint leaves the exporter on its default or the
// OTEL_EXPORTER_OTLP_* environment.
func newOtelMeterProvider(ctx context.Context, serviceName, endpoint string) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
	if endpoint != "" {
		opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
	}
	exp, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("otlp metric exporter: %w", err)
	}

	res, err := resource.New(
		ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			attribute.String("service.version", "0.0.1"),
		),
	)
	if err != nil {
		return nil, err
	}

	return sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp)),
		sdkmetric.WithResource(res),
	), nil
}

func otelMeter(provider metric.MeterProvider, serviceName string) metric.Meter {
	return provider.Meter(serviceName)
}
