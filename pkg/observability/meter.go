package observability

import "errors"

type Meter interface {
	Counter(name string, opts ...MetricOpt) Counter
	Histogram(name string, opts ...MetricOpt) Histogram
	Gauge(name string, opts ...MetricOpt) Gauge
	Timer(name string, opts ...MetricOpt) Timer
}

type Counter interface {
	Inc(v float64, labels ...Label)
}

type Histogram interface {
	Observe(v float64, labels ...Label)
}

type Gauge interface {
	Set(v float64, labels ...Label)
	Add(v float64, labels ...Label)
}

type Timer interface {
	Start(labels ...Label) func()
}

// HistogramRecorder is the single operation a measured function needs from a
// metrics backend. Implementations must be safe for concurrent use and must
// not block the caller for long.
type HistogramRecorder interface {
	RecordHistogram(name string, labels map[string]string, value float64)
}

// ErrInvalidSample marks a sample the backend rejected on its own merits, such
// as a label value that is not valid UTF-8. It says nothing about the health
// of the backend.
var ErrInvalidSample = errors.New("invalid histogram sample")

// CheckedRecorder is implemented by backends that can report why a sample was
// not recorded instead of panicking.
type CheckedRecorder interface {
	TryRecordHistogram(name string, labels map[string]string, value float64) error
}
