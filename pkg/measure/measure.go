// Package measure wraps functions so that every successful call records its
// wall-clock duration, in milliseconds, into a histogram labeled by the
// function's name.
//
//	process := measure.FuncErr(m, processData)
//	fetch := measure.Async(m, fetchReport, measure.WithName("report_fetch"))
package measure

import (
	"errors"
	"unicode/utf8"

	"github.com/jt828/go-measured/pkg/observability"
)

const (
	MetricName      = "function_duration_milliseconds"
	AsyncMetricName = "async_function_duration_milliseconds"
	LabelKey        = "function"
)

var ErrNilRecorder = errors.New("nil histogram recorder")

// Measurer carries the backend and collaborators shared by every function it
// wraps. It is safe for concurrent use.
type Measurer struct {
	recorder observability.HistogramRecorder
	log      observability.Logger
	tracer   observability.Tracer
	defaults []Option
}

type MeasurerOption func(*Measurer)

func WithLogger(log observability.Logger) MeasurerOption {
	return func(m *Measurer) {
		m.log = log
	}
}

// WithTracer opens a span named after the label around every call.
func WithTracer(tracer observability.Tracer) MeasurerOption {
	return func(m *Measurer) {
		m.tracer = tracer
	}
}

// WithDefaults applies opts to every function wrapped by the Measurer, before
// the options given at wrap time.
func WithDefaults(opts ...Option) MeasurerOption {
	return func(m *Measurer) {
		m.defaults = append(m.defaults, opts...)
	}
}

func New(recorder observability.HistogramRecorder, opts ...MeasurerOption) (*Measurer, error) {
	if recorder == nil {
		return nil, ErrNilRecorder
	}
	m := &Measurer{recorder: recorder}
	for _, opt := range opts {
		opt(m)
	}
	if m.log == nil {
		m.log = observability.NopLogger()
	}
	return m, nil
}

func (m *Measurer) probe(metric string, fn any, opts []Option) *probe {
	all := make([]Option, 0, len(m.defaults)+len(opts))
	all = append(all, m.defaults...)
	all = append(all, opts...)
	cfg := ApplyOptions(all...)

	declared := DeclaredName(fn)
	if !utf8.ValidString(cfg.Name) {
		m.log.Warn("custom label is not valid UTF-8, using declared name",
			observability.String("metric", metric),
			observability.String("declared", declared),
		)
		cfg.Name = ""
	}

	return &probe{
		m:      m,
		cfg:    cfg,
		metric: metric,
		labels: map[string]string{LabelKey: ResolveLabel(cfg.Name, declared)},
	}
}
