package implementation

import (
	"github.com/jt828/go-measured/pkg/observability"
)

type loggingRecorder struct {
	next observability.HistogramRecorder
	log  observability.Logger
}

// NewLoggingRecorder logs every sample at debug level before passing it on.
func NewLoggingRecorder(next observability.HistogramRecorder, log observability.Logger) observability.HistogramRecorder {
	return &loggingRecorder{next: next, log: log}
}

func (r *loggingRecorder) RecordHistogram(name string, labels map[string]string, value float64) {
	r.logSample(name, labels, value)
	r.next.RecordHistogram(name, labels, value)
}

func (r *loggingRecorder) TryRecordHistogram(name string, labels map[string]string, value float64) error {
	r.logSample(name, labels, value)
	if checked, ok := r.next.(observability.CheckedRecorder); ok {
		return checked.TryRecordHistogram(name, labels, value)
	}
	r.next.RecordHistogram(name, labels, value)
	return nil
}

func (r *loggingRecorder) logSample(name string, labels map[string]string, value float64) {
	fields := make([]observability.Field, 0, len(labels)+2)
	fields = append(fields, observability.String("metric", name), observability.Float64("value", value))
	for _, l := range observability.LabelsFromMap(labels) {
		fields = append(fields, observability.String(l.Key, l.Value))
	}
	r.log.Debug("histogram sample", fields...)
}

type multiRecorder []observability.HistogramRecorder

// NewMultiRecorder sends every sample to each recorder in order.
func NewMultiRecorder(recorders ...observability.HistogramRecorder) observability.HistogramRecorder {
	return multiRecorder(recorders)
}

func (m multiRecorder) RecordHistogram(name string, labels map[string]string, value float64) {
	for _, r := range m {
		r.RecordHistogram(name, labels, value)
	}
}
