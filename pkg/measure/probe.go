package measure

import (
	"context"
	"time"

	"github.com/jt828/go-measured/pkg/observability"
)

// probe holds what a wrapped function resolved once at wrap time.
type probe struct {
	m      *Measurer
	cfg    Config
	metric string
	labels map[string]string
}

func (p *probe) label() string {
	return p.labels[LabelKey]
}

// run is the state of a single call.
type run struct {
	p     *probe
	start time.Time
	span  observability.Span
	done  bool
}

func (p *probe) begin(ctx context.Context) (context.Context, *run) {
	r := &run{p: p}
	if p.m.tracer != nil {
		ctx, r.span = p.m.tracer.Start(ctx, p.label())
	}
	r.start = p.cfg.Clock()
	return ctx, r
}

// end finishes a call that returned normally.
func (r *run) end(err error) {
	elapsed := r.p.cfg.Clock().Sub(r.start)
	r.done = true

	if err != nil {
		r.p.m.log.Debug("measured call failed",
			observability.String("metric", r.p.metric),
			observability.String(LabelKey, r.p.label()),
			observability.Err(err),
		)
		if r.span != nil {
			r.span.RecordError(err)
		}
	}
	if err == nil || r.p.cfg.RecordFailures {
		r.p.record(r.p.cfg.Precision.milliseconds(elapsed))
	}
	if r.span != nil {
		r.span.End()
	}
}

// abandon closes the span of a call that never reached end. No sample is
// recorded.
func (r *run) abandon() {
	if r.done {
		return
	}
	r.done = true
	if r.span != nil {
		r.span.End()
	}
}

// record hands the sample to the backend. A backend panic is logged and never
// reaches the caller of the wrapped function.
func (p *probe) record(value float64) {
	defer func() {
		if v := recover(); v != nil {
			p.m.log.Error("histogram backend panicked",
				observability.String("metric", p.metric),
				observability.String(LabelKey, p.label()),
				observability.Any("panic", v),
			)
		}
	}()
	p.m.recorder.RecordHistogram(p.metric, p.labels, value)
}
