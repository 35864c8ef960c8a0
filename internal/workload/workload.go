package workload

import (
	"context"
	"errors"
	"time"

	"github.com/jt828/go-measured/pkg/measure"
	"github.com/jt828/go-measured/pkg/observability"
)

// ReportSizeBuckets are byte sizes of fetched reports.
var ReportSizeBuckets = []float64{16, 64, 256, 1024, 4096}

// Workload drives a measured synchronous step and a measured asynchronous
// fetch on every tick, and keeps its own operational metrics on the meter.
type Workload struct {
	log     observability.Logger
	process func() int
	fetch   func(context.Context) *measure.Future[string]

	inFlight   observability.Gauge
	failures   observability.Counter
	reportSize observability.Histogram
	tick       observability.Timer
}

func New(
	m *measure.Measurer,
	meter observability.Meter,
	log observability.Logger,
	process func() int,
	fetch func(context.Context) (string, error),
) *Workload {
	return &Workload{
		log:     log,
		process: measure.Func(m, process),
		fetch:   measure.Async(m, fetch, measure.WithName("report_fetch")),

		inFlight: meter.Gauge("workload_ticks_in_flight", observability.MetricOpt{
			Help: "Workload ticks currently running.",
		}),
		failures: meter.Counter("report_fetch_failures_total", observability.MetricOpt{
			Help: "Report fetches that returned an error.",
		}),
		reportSize: meter.Histogram("report_size_bytes", observability.MetricOpt{
			Help:    "Size of fetched reports in bytes.",
			Buckets: ReportSizeBuckets,
		}),
		tick: meter.Timer("workload_tick_duration_milliseconds", observability.MetricOpt{
			Help: "Duration of one workload tick in milliseconds.",
		}),
	}
}

// Tick starts the fetch, runs the synchronous step while it is pending, then
// waits for the report.
func (w *Workload) Tick(ctx context.Context) error {
	defer w.tick.Start()()
	w.inFlight.Add(1)
	defer w.inFlight.Add(-1)

	future := w.fetch(ctx)
	result := w.process()

	report, err := future.Await(ctx)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			w.failures.Inc(1)
		}
		return err
	}

	w.reportSize.Observe(float64(len(report)))
	w.log.Debug("workload done", observability.Int("result", result), observability.String("report", report))
	return nil
}

// Run ticks every interval until ctx ends.
func (w *Workload) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.Tick(ctx); err != nil && !errors.Is(err, context.Canceled) {
				w.log.Warn("report fetch failed", observability.Err(err))
			}
		}
	}
}
