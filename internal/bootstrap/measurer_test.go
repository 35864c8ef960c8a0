package bootstrap

import (
	"context"
	"errors"
	"testing"

	"github.com/jt828/go-measured/pkg/measure"
	"github.com/jt828/go-measured/pkg/observability"
	"github.com/jt828/go-measured/pkg/observability/implementation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeObservability struct {
	recorder *implementation.MemoryRecorder
}

func (f *fakeObservability) Close(ctx context.Context) error           { return nil }
func (f *fakeObservability) Logger() observability.Logger              { return observability.NopLogger() }
func (f *fakeObservability) Meter() observability.Meter                { return implementation.NewPrometheusMeter() }
func (f *fakeObservability) Recorder() observability.HistogramRecorder { return f.recorder }
func (f *fakeObservability) Start(ctx context.Context) error           { return nil }
func (f *fakeObservability) Tracer() observability.Tracer              { return implementation.NewNoopTracer() }

func TestInitializeMeasurer(t *testing.T) {
	obs := &fakeObservability{recorder: implementation.NewMemoryRecorder()}

	m, err := InitializeMeasurer(Config{RecordFailures: true}, obs)
	require.NoError(t, err)

	wrapped := measure.Do(m, func() error { return errors.New("fail") }, measure.WithName("job"))
	assert.Error(t, wrapped())

	samples := obs.recorder.Samples()
	require.Len(t, samples, 1)
	assert.Equal(t, "job", samples[0].Labels[measure.LabelKey])
}
