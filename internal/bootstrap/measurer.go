package bootstrap

import (
	"github.com/jt828/go-measured/pkg/measure"
	"github.com/jt828/go-measured/pkg/observability"
)

// InitializeMeasurer builds a Measurer on top of obs using the defaults from
// cfg.
func InitializeMeasurer(cfg Config, obs observability.Observability) (*measure.Measurer, error) {
	return measure.New(
		obs.Recorder(),
		measure.WithLogger(obs.Logger()),
		measure.WithTracer(obs.Tracer()),
		measure.WithDefaults(
			measure.WithPrecision(cfg.Precision),
			measure.WithFailureRecording(cfg.RecordFailures),
		),
	)
}
