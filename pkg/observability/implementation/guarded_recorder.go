package implementation

import (
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/jt828/go-measured/pkg/circuitbreaker"
	cbImpl "github.com/jt828/go-measured/pkg/circuitbreaker/implementation"
	"github.com/jt828/go-measured/pkg/observability"
	"github.com/sony/gobreaker/v2"
)

type guardedRecorder struct {
	next observability.HistogramRecorder
	cb   circuitbreaker.CircuitBreaker
	log  observability.Logger
}

// BackendBreakerSettings trips after five consecutive backend failures and
// probes the backend again after a minute.
func BackendBreakerSettings(name string) gobreaker.Settings {
	return gobreaker.Settings{
		Name:    name,
		Timeout: time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	}
}

// NewGuardedRecorder isolates callers from a misbehaving backend. Samples the
// backend rejects as observability.ErrInvalidSample are logged and do not
// count against the breaker. Any other failure, including a panic from a
// backend that cannot report errors, does. Once the breaker opens, samples are
// dropped until it closes again.
func NewGuardedRecorder(
	next observability.HistogramRecorder,
	cb circuitbreaker.CircuitBreaker,
	log observability.Logger,
) observability.HistogramRecorder {
	if cb == nil {
		cb = cbImpl.NewCircuitBreaker(BackendBreakerSettings("histogram-recorder"))
	}
	return &guardedRecorder{next: next, cb: cb, log: log}
}

func (g *guardedRecorder) RecordHistogram(name string, labels map[string]string, value float64) {
	if err := validateSample(name, labels); err != nil {
		g.log.Warn("histogram sample rejected", observability.String("metric", name), observability.Err(err))
		return
	}

	rejected, err := g.cb.Execute(func() (any, error) {
		err := g.record(name, labels, value)
		if errors.Is(err, observability.ErrInvalidSample) {
			// Rejected samples leave the breaker's failure count alone.
			return err, nil
		}
		return nil, err
	})
	if rejected != nil {
		g.log.Warn("histogram sample rejected", observability.String("metric", name), observability.Err(rejected.(error)))
		return
	}
	if err == nil {
		return
	}

	if errors.Is(err, circuitbreaker.ErrOpen) {
		g.log.Debug("histogram sample dropped", observability.String("metric", name))
		return
	}
	g.log.Warn("histogram backend failed", observability.String("metric", name), observability.Err(err))
}

func (g *guardedRecorder) record(name string, labels map[string]string, value float64) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("record %s: %v", name, r)
		}
	}()

	if checked, ok := g.next.(observability.CheckedRecorder); ok {
		return checked.TryRecordHistogram(name, labels, value)
	}
	g.next.RecordHistogram(name, labels, value)
	return nil
}

func validateSample(name string, labels map[string]string) error {
	if !utf8.ValidString(name) {
		return fmt.Errorf("%w: metric name %q is not valid UTF-8", observability.ErrInvalidSample, name)
	}
	for k, v := range labels {
		if !utf8.ValidString(k) || !utf8.ValidString(v) {
			return fmt.Errorf("%w: label %q=%q is not valid UTF-8", observability.ErrInvalidSample, k, v)
		}
	}
	return nil
}
