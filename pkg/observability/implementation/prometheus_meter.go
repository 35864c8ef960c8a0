package implementation

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jt828/go-measured/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
)

// MillisecondBuckets covers sub-millisecond calls up to ten seconds.
var MillisecondBuckets = []float64{0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000}

type prometheusMeter struct {
	registry *prometheus.Registry
	buckets  []float64

	mu         sync.RWMutex
	histograms map[string]*prometheus.HistogramVec
}

func NewPrometheusMeter() observability.Meter {
	return newPrometheusMeter(prometheus.NewRegistry(), MillisecondBuckets)
}

// NewPrometheusRecorder returns a HistogramRecorder that registers one
// histogram per metric name on reg. The label keys of the first sample for a
// name fix that histogram's label schema. A nil buckets slice selects
// MillisecondBuckets.
func NewPrometheusRecorder(reg *prometheus.Registry, buckets []float64) observability.HistogramRecorder {
	if buckets == nil {
		buckets = MillisecondBuckets
	}
	return newPrometheusMeter(reg, buckets)
}

func newPrometheusMeter(reg *prometheus.Registry, buckets []float64) *prometheusMeter {
	return &prometheusMeter{
		registry:   reg,
		buckets:    buckets,
		histograms: make(map[string]*prometheus.HistogramVec),
	}
}

func (m *prometheusMeter) Registry() *prometheus.Registry {
	return m.registry
}

func PromRegistry(m observability.Meter) *prometheus.Registry {
	if pm, ok := m.(*prometheusMeter); ok {
		return pm.Registry()
	}
	return nil
}

// -------------------- Recorder --------------------

func (m *prometheusMeter) RecordHistogram(name string, labels map[string]string, value float64) {
	if err := m.TryRecordHistogram(name, labels, value); err != nil {
		panic(err)
	}
}

// TryRecordHistogram reports samples Prometheus cannot accept, such as an
// invalid metric name or label value, as observability.ErrInvalidSample.
func (m *prometheusMeter) TryRecordHistogram(name string, labels map[string]string, value float64) error {
	vec, err := m.histogramVec(name, labels)
	if err != nil {
		return fmt.Errorf("%w: %v", observability.ErrInvalidSample, err)
	}
	obs, err := vec.GetMetricWith(prometheus.Labels(labels))
	if err != nil {
		return fmt.Errorf("%w: %v", observability.ErrInvalidSample, err)
	}
	obs.Observe(value)
	return nil
}

func (m *prometheusMeter) histogramVec(name string, labels map[string]string) (*prometheus.HistogramVec, error) {
	m.mu.RLock()
	vec, ok := m.histograms[name]
	m.mu.RUnlock()
	if ok {
		return vec, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if vec, ok := m.histograms[name]; ok {
		return vec, nil
	}

	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	vec = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    name,
			Help:    "Duration of measured function calls in milliseconds.",
			Buckets: m.buckets,
		},
		keys,
	)
	if err := m.registry.Register(vec); err != nil {
		return nil, fmt.Errorf("register histogram %s: %w", name, err)
	}
	m.histograms[name] = vec
	return vec, nil
}

// -------------------- Counter --------------------

type promCounter struct {
	vec *prometheus.CounterVec
}

func (m *prometheusMeter) Counter(name string, opts ...observability.MetricOpt) observability.Counter {
	opt := firstOpt(opts)

	vec := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        name,
			Help:        opt.Help,
			ConstLabels: toPromConstLabels(opt.ConstLabels),
		},
		opt.LabelKeys,
	)

	m.registry.MustRegister(vec)
	return &promCounter{vec: vec}
}

func (c *promCounter) Inc(v float64, labels ...observability.Label) {
	if len(labels) == 0 {
		c.vec.WithLabelValues().Add(v)
		return
	}
	c.vec.With(toPromLabelsMap(labels)).Add(v)
}

// -------------------- Histogram --------------------

type promHistogram struct {
	vec *prometheus.HistogramVec
}

func (m *prometheusMeter) Histogram(name string, opts ...observability.MetricOpt) observability.Histogram {
	opt := firstOpt(opts)
	buckets := opt.Buckets
	if buckets == nil {
		buckets = m.buckets
	}

	vec := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:        name,
			Help:        opt.Help,
			Buckets:     buckets,
			ConstLabels: toPromConstLabels(opt.ConstLabels),
		},
		opt.LabelKeys,
	)

	m.registry.MustRegister(vec)
	return &promHistogram{vec: vec}
}

func (h *promHistogram) Observe(v float64, labels ...observability.Label) {
	if len(labels) == 0 {
		h.vec.WithLabelValues().Observe(v)
		return
	}
	h.vec.With(toPromLabelsMap(labels)).Observe(v)
}

// -------------------- Gauge --------------------

type promGauge struct {
	vec *prometheus.GaugeVec
}

func (m *prometheusMeter) Gauge(name string, opts ...observability.MetricOpt) observability.Gauge {
	opt := firstOpt(opts)

	vec := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name:        name,
			Help:        opt.Help,
			ConstLabels: toPromConstLabels(opt.ConstLabels),
		},
		opt.LabelKeys,
	)

	m.registry.MustRegister(vec)
	return &promGauge{vec: vec}
}

func (g *promGauge) Set(v float64, labels ...observability.Label) {
	if len(labels) == 0 {
		g.vec.WithLabelValues().Set(v)
		return
	}
	g.vec.With(toPromLabelsMap(labels)).Set(v)
}

func (g *promGauge) Add(v float64, labels ...observability.Label) {
	if len(labels) == 0 {
		g.vec.WithLabelValues().Add(v)
		return
	}
	g.vec.With(toPromLabelsMap(labels)).Add(v)
}

// -------------------- Timer --------------------

// promTimer observes elapsed milliseconds, matching the recorder's unit.
type promTimer struct {
	histogram *prometheus.HistogramVec
}

func (m *prometheusMeter) Timer(name string, opts ...observability.MetricOpt) observability.Timer {
	opt := firstOpt(opts)
	buckets := opt.Buckets
	if buckets == nil {
		buckets = m.buckets
	}

	vec := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:        name,
			Help:        opt.Help,
			Buckets:     buckets,
			ConstLabels: toPromConstLabels(opt.ConstLabels),
		},
		opt.LabelKeys,
	)

	m.registry.MustRegister(vec)

	return &promTimer{histogram: vec}
}

func (t *promTimer) Start(labels ...observability.Label) func() {
	start := time.Now()
	return func() {
		elapsed := float64(time.Since(start)) / float64(time.Millisecond)
		t.histogram.With(toPromLabelsMap(labels)).Observe(elapsed)
	}
}

// -------------------- Helpers --------------------

func firstOpt(opts []observability.MetricOpt) observability.MetricOpt {
	if len(opts) == 0 {
		return observability.MetricOpt{}
	}
	return opts[0]
}

func toPromLabelsMap(labels []observability.Label) prometheus.Labels {
	m := make(prometheus.Labels, len(labels))
	for _, l := range labels {
		m[l.Key] = l.Value
	}
	return m
}

func toPromConstLabels(labels []observability.Label) prometheus.Labels {
	if len(labels) == 0 {
		return nil
	}
	return toPromLabelsMap(labels)
}
