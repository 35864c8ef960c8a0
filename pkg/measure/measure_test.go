package measure_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jt828/go-measured/pkg/measure"
	"github.com/jt828/go-measured/pkg/observability"
	"github.com/jt828/go-measured/pkg/observability/implementation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- fakes ---

type ctxKey struct{}

type fakeSpan struct {
	tracer *fakeTracer
	name   string
}

func (s *fakeSpan) End() {
	s.tracer.mu.Lock()
	defer s.tracer.mu.Unlock()
	s.tracer.ended = append(s.tracer.ended, s.name)
}

func (s *fakeSpan) RecordError(err error) {
	s.tracer.mu.Lock()
	defer s.tracer.mu.Unlock()
	s.tracer.errors = append(s.tracer.errors, err)
}

type fakeTracer struct {
	mu      sync.Mutex
	started []string
	ended   []string
	errors  []error
}

func (t *fakeTracer) Start(ctx context.Context, name string) (context.Context, observability.Span) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.started = append(t.started, name)
	return context.WithValue(ctx, ctxKey{}, name), &fakeSpan{tracer: t, name: name}
}

// steppingClock returns start, then start+step, start+2*step, ...
func steppingClock(step time.Duration) func() time.Time {
	now := time.Unix(0, 0)
	first := true
	return func() time.Time {
		if first {
			first = false
			return now
		}
		now = now.Add(step)
		return now
	}
}

func newMeasurer(t *testing.T, opts ...measure.MeasurerOption) (*measure.Measurer, *implementation.MemoryRecorder) {
	t.Helper()
	rec := implementation.NewMemoryRecorder()
	m, err := measure.New(rec, opts...)
	require.NoError(t, err)
	return m, rec
}

// --- functions under measurement ---

func processData() int {
	time.Sleep(10 * time.Millisecond)
	return 42
}

var errProcess = errors.New("process failed")

func failingProcess() (int, error) {
	return 0, errProcess
}

func double(n int) (int, error) {
	return n * 2, nil
}

// --- tests ---

func TestNew(t *testing.T) {
	t.Run("rejects nil recorder", func(t *testing.T) {
		m, err := measure.New(nil)

		assert.Nil(t, m)
		assert.ErrorIs(t, err, measure.ErrNilRecorder)
	})
}

func TestFunc(t *testing.T) {
	t.Run("records one sample under the declared name", func(t *testing.T) {
		m, rec := newMeasurer(t)
		wrapped := measure.Func(m, processData)

		result := wrapped()

		assert.Equal(t, 42, result)
		samples := rec.Samples()
		require.Len(t, samples, 1)
		assert.Equal(t, measure.MetricName, samples[0].Name)
		assert.Equal(t, map[string]string{measure.LabelKey: "processData"}, samples[0].Labels)
		assert.GreaterOrEqual(t, samples[0].Value, 10.0)
	})

	t.Run("custom name overrides declared name", func(t *testing.T) {
		m, rec := newMeasurer(t)
		wrapped := measure.Func(m, processData, measure.WithName("custom_process_name"))

		wrapped()

		samples := rec.Samples()
		require.Len(t, samples, 1)
		assert.Equal(t, "custom_process_name", samples[0].Labels[measure.LabelKey])
	})

	t.Run("label is fixed across calls", func(t *testing.T) {
		m, rec := newMeasurer(t)
		wrapped := measure.Func(m, func() string { return "x" }, measure.WithName("fixed"))

		for i := 0; i < 3; i++ {
			wrapped()
		}

		samples := rec.Samples()
		require.Len(t, samples, 3)
		for _, s := range samples {
			assert.Equal(t, "fixed", s.Labels[measure.LabelKey])
		}
	})

	t.Run("panic propagates and records nothing", func(t *testing.T) {
		m, rec := newMeasurer(t)
		wrapped := measure.Func(m, func() int { panic("boom") })

		assert.PanicsWithValue(t, "boom", func() { wrapped() })
		assert.Empty(t, rec.Samples())
	})

	t.Run("concurrent calls each record a sample", func(t *testing.T) {
		m, rec := newMeasurer(t)
		wrapped := measure.Func(m, func() int { return 1 }, measure.WithName("concurrent"))

		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				wrapped()
			}()
		}
		wg.Wait()

		assert.Len(t, rec.SamplesFor(measure.MetricName), 50)
	})
}

func TestFuncErr(t *testing.T) {
	t.Run("failure returns the original error and records nothing", func(t *testing.T) {
		m, rec := newMeasurer(t)
		wrapped := measure.FuncErr(m, failingProcess)

		result, err := wrapped()

		assert.Equal(t, 0, result)
		assert.Same(t, errProcess, err)
		assert.Empty(t, rec.Samples())
	})

	t.Run("failure recording records failed calls", func(t *testing.T) {
		m, rec := newMeasurer(t)
		wrapped := measure.FuncErr(m, failingProcess, measure.WithFailureRecording(true))

		_, err := wrapped()

		assert.ErrorIs(t, err, errProcess)
		samples := rec.Samples()
		require.Len(t, samples, 1)
		assert.Equal(t, "failingProcess", samples[0].Labels[measure.LabelKey])
	})

	t.Run("success returns the original result", func(t *testing.T) {
		m, rec := newMeasurer(t)
		wrapped := measure.FuncErr(m, func() (string, error) { return "done", nil }, measure.WithName("ok"))

		result, err := wrapped()

		require.NoError(t, err)
		assert.Equal(t, "done", result)
		assert.Len(t, rec.Samples(), 1)
	})
}

func TestFunc1(t *testing.T) {
	m, rec := newMeasurer(t)
	wrapped := measure.Func1(m, double)

	result, err := wrapped(21)

	require.NoError(t, err)
	assert.Equal(t, 42, result)
	samples := rec.Samples()
	require.Len(t, samples, 1)
	assert.Equal(t, "double", samples[0].Labels[measure.LabelKey])
}

func TestDo(t *testing.T) {
	t.Run("success records", func(t *testing.T) {
		m, rec := newMeasurer(t)
		wrapped := measure.Do(m, func() error { return nil }, measure.WithName("do"))

		require.NoError(t, wrapped())
		assert.Len(t, rec.Samples(), 1)
	})

	t.Run("failure does not record", func(t *testing.T) {
		m, rec := newMeasurer(t)
		wrapped := measure.Do(m, func() error { return errProcess }, measure.WithName("do"))

		assert.ErrorIs(t, wrapped(), errProcess)
		assert.Empty(t, rec.Samples())
	})
}

func TestFuncCtx(t *testing.T) {
	t.Run("passes the span context and ends the span", func(t *testing.T) {
		tracer := &fakeTracer{}
		m, rec := newMeasurer(t, measure.WithTracer(tracer))

		wrapped := measure.FuncCtx(m, func(ctx context.Context) (any, error) {
			return ctx.Value(ctxKey{}), nil
		}, measure.WithName("traced"))

		result, err := wrapped(context.Background())

		require.NoError(t, err)
		assert.Equal(t, "traced", result)
		assert.Equal(t, []string{"traced"}, tracer.started)
		assert.Equal(t, []string{"traced"}, tracer.ended)
		assert.Empty(t, tracer.errors)
		assert.Len(t, rec.Samples(), 1)
	})

	t.Run("records the error on the span", func(t *testing.T) {
		tracer := &fakeTracer{}
		m, rec := newMeasurer(t, measure.WithTracer(tracer))

		wrapped := measure.FuncCtx(m, func(ctx context.Context) (int, error) {
			return 0, errProcess
		}, measure.WithName("traced"))

		_, err := wrapped(context.Background())

		assert.ErrorIs(t, err, errProcess)
		assert.Equal(t, []error{errProcess}, tracer.errors)
		assert.Equal(t, []string{"traced"}, tracer.ended)
		assert.Empty(t, rec.Samples())
	})

	t.Run("ends the span when the body panics", func(t *testing.T) {
		tracer := &fakeTracer{}
		m, rec := newMeasurer(t, measure.WithTracer(tracer))

		wrapped := measure.FuncCtx(m, func(ctx context.Context) (int, error) {
			panic("boom")
		}, measure.WithName("traced"))

		assert.Panics(t, func() { _, _ = wrapped(context.Background()) })
		assert.Equal(t, []string{"traced"}, tracer.ended)
		assert.Empty(t, rec.Samples())
	})
}

func TestPrecision(t *testing.T) {
	t.Run("truncated drops sub-millisecond precision", func(t *testing.T) {
		m, rec := newMeasurer(t)
		wrapped := measure.Func(m, processData,
			measure.WithClock(steppingClock(2900*time.Microsecond)),
		)

		wrapped()

		samples := rec.Samples()
		require.Len(t, samples, 1)
		assert.Equal(t, 2.0, samples[0].Value)
	})

	t.Run("fractional keeps sub-millisecond precision", func(t *testing.T) {
		m, rec := newMeasurer(t)
		wrapped := measure.Func(m, processData,
			measure.WithClock(steppingClock(2900*time.Microsecond)),
			measure.WithPrecision(measure.Fractional),
		)

		wrapped()

		samples := rec.Samples()
		require.Len(t, samples, 1)
		assert.InDelta(t, 2.9, samples[0].Value, 1e-9)
	})

	t.Run("parse", func(t *testing.T) {
		p, err := measure.ParsePrecision("Fractional")
		require.NoError(t, err)
		assert.Equal(t, measure.Fractional, p)

		p, err = measure.ParsePrecision("")
		require.NoError(t, err)
		assert.Equal(t, measure.Truncated, p)

		_, err = measure.ParsePrecision("nanos")
		assert.Error(t, err)
	})
}

func TestWithDefaults(t *testing.T) {
	t.Run("defaults apply to every wrap", func(t *testing.T) {
		m, rec := newMeasurer(t, measure.WithDefaults(measure.WithFailureRecording(true)))
		wrapped := measure.FuncErr(m, failingProcess)

		_, _ = wrapped()

		assert.Len(t, rec.Samples(), 1)
	})

	t.Run("wrap options override defaults", func(t *testing.T) {
		m, rec := newMeasurer(t, measure.WithDefaults(measure.WithFailureRecording(true)))
		wrapped := measure.FuncErr(m, failingProcess, measure.WithFailureRecording(false))

		_, _ = wrapped()

		assert.Empty(t, rec.Samples())
	})
}
