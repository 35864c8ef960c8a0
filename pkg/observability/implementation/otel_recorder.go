package implementation

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jt828/go-measured/pkg/observability"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var ErrNilMeter = errors.New("nil meter")

type otelRecorder struct {
	meter metric.Meter

	mu         sync.RWMutex
	histograms map[string]metric.Float64Histogram
}

// NewOtelRecorder records samples as OpenTelemetry Float64Histogram
// instruments with unit "ms". Instrument creation errors go to the global
// OpenTelemetry error handler and the sample is dropped.
func NewOtelRecorder(meter metric.Meter) (observability.HistogramRecorder, error) {
	if meter == nil {
		return nil, ErrNilMeter
	}
	return &otelRecorder{
		meter:      meter,
		histograms: make(map[string]metric.Float64Histogram),
	}, nil
}

func (r *otelRecorder) RecordHistogram(name string, labels map[string]string, value float64) {
	h, err := r.histogram(name)
	if err != nil {
		otel.Handle(err)
		return
	}

	attrs := make([]attribute.KeyValue, 0, len(labels))
	for _, l := range observability.LabelsFromMap(labels) {
		attrs = append(attrs, attribute.String(l.Key, l.Value))
	}
	h.Record(context.Background(), value, metric.WithAttributes(attrs...))
}

func (r *otelRecorder) histogram(name string) (metric.Float64Histogram, error) {
	r.mu.RLock()
	h, ok := r.histograms[name]
	r.mu.RUnlock()
	if ok {
		return h, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if h, ok := r.histograms[name]; ok {
		return h, nil
	}

	h, err := r.meter.Float64Histogram(
		name,
		metric.WithDescription("Duration of measured function calls in milliseconds."),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(MillisecondBuckets...),
	)
	if err != nil {
		return nil, fmt.Errorf("create histogram %s: %w", name, err)
	}
	r.histograms[name] = h
	return h, nil
}
