package observability

import "context"

type Observability interface {
	Close(ctx context.Context) error
	Logger() Logger
	Meter() Meter
	Recorder() HistogramRecorder
	Start(ctx context.Context) error
	Tracer() Tracer
}
