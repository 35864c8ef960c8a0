package bootstrap

import (
	"fmt"
	"os"
	"strconv"

	"github.com/jt828/go-measured/pkg/measure"
	"github.com/jt828/go-measured/pkg/observability/implementation"
)

type Config struct {
	Observability  implementation.Config
	Precision      measure.Precision
	RecordFailures bool
}

// LoadConfig reads configuration from the environment.
func LoadConfig() (Config, error) {
	return loadConfig(os.Getenv)
}

func loadConfig(getenv func(string) string) (Config, error) {
	cfg := Config{
		Observability: implementation.Config{
			ServiceName:  valueOr(getenv("SERVICE_NAME"), "go-measured"),
			MetricsAddr:  valueOr(getenv("METRICS_ADDR"), ":9090"),
			OTLPEndpoint: getenv("OTLP_ENDPOINT"),
			LogLevel:     valueOr(getenv("LOG_LEVEL"), "info"),
		},
	}

	backend, err := implementation.ParseMetricsBackend(getenv("METRICS_BACKEND"))
	if err != nil {
		return Config{}, fmt.Errorf("METRICS_BACKEND: %w", err)
	}
	cfg.Observability.MetricsBackend = backend

	precision, err := measure.ParsePrecision(getenv("MEASURE_PRECISION"))
	if err != nil {
		return Config{}, fmt.Errorf("MEASURE_PRECISION: %w", err)
	}
	cfg.Precision = precision

	if v := getenv("MEASURE_RECORD_FAILURES"); v != "" {
		cfg.RecordFailures, err = strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("MEASURE_RECORD_FAILURES: %w", err)
		}
	}

	return cfg, nil
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
