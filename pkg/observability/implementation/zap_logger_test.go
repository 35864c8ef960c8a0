package implementation

import (
	"errors"
	"testing"

	"github.com/jt828/go-measured/pkg/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewZapLogger(t *testing.T) {
	t.Run("accepts known level", func(t *testing.T) {
		log, err := NewZapLogger("debug")

		require.NoError(t, err)
		assert.NotNil(t, log)
	})

	t.Run("rejects unknown level", func(t *testing.T) {
		_, err := NewZapLogger("loud")

		assert.Error(t, err)
	})
}

func TestZapLogger_With(t *testing.T) {
	logs, log := observedLogger(zapcore.InfoLevel)

	log.With(observability.String("service", "demo")).Info("started", observability.Err(errors.New("x")))
	log.Debug("filtered")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "demo", entries[0].ContextMap()["service"])
	assert.Equal(t, "x", entries[0].ContextMap()["error"])
}
