package implementation

import (
	"context"
	"net/http"

	"github.com/jt828/go-measured/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

type observabilityImplementation struct {
	log      observability.Logger
	meter    *prometheusMeter
	recorder observability.HistogramRecorder
	tracer   observability.Tracer

	metricsAddr   string
	metricsServer *http.Server
	metricsClose  func(context.Context) error
	traceClose    func(context.Context) error
}

func prometheusRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func (o *observabilityImplementation) Close(ctx context.Context) error {
	var err error
	if o.metricsServer != nil {
		err = o.metricsServer.Shutdown(ctx)
	}
	if o.metricsClose != nil {
		if e := o.metricsClose(ctx); err == nil {
			err = e
		}
	}
	if o.traceClose != nil {
		if e := o.traceClose(ctx); err == nil {
			err = e
		}
	}
	if s, ok := o.log.(interface{ Sync() error }); ok {
		_ = s.Sync()
	}
	return err
}
func (o *observabilityImplementation) Logger() observability.Logger { return o.log }
func (o *observabilityImplementation) Meter() observability.Meter   { return o.meter }
func (o *observabilityImplementation) Recorder() observability.HistogramRecorder {
	return o.recorder
}
func (o *observabilityImplementation) Start(ctx context.Context) error {
	if o.metricsAddr != "" {
		o.metricsServer = StartMetricsServer(o.metricsAddr, o.meter.Registry(), o.log)
	}
	return nil
}
func (o *observabilityImplementation) Tracer() observability.Tracer { return o.tracer }
