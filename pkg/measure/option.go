package measure

import (
	"fmt"
	"strings"
	"time"
)

// Precision selects how elapsed time is converted to milliseconds.
type Precision int

const (
	// Truncated drops sub-millisecond precision, so a 2.9ms call records 2.
	Truncated Precision = iota
	// Fractional keeps sub-millisecond precision.
	Fractional
)

func ParsePrecision(s string) (Precision, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "truncated":
		return Truncated, nil
	case "fractional":
		return Fractional, nil
	default:
		return Truncated, fmt.Errorf("unknown precision %q", s)
	}
}

func (p Precision) String() string {
	if p == Fractional {
		return "fractional"
	}
	return "truncated"
}

func (p Precision) milliseconds(d time.Duration) float64 {
	if d < 0 {
		return 0
	}
	if p == Fractional {
		return float64(d) / float64(time.Millisecond)
	}
	return float64(d.Milliseconds())
}

type Config struct {
	Name           string
	Precision      Precision
	RecordFailures bool
	Clock          func() time.Time
}

type Option func(*Config)

// WithName overrides the label derived from the function's declared name.
// An empty name keeps the declared name.
func WithName(name string) Option {
	return func(c *Config) {
		c.Name = name
	}
}

func WithPrecision(p Precision) Option {
	return func(c *Config) {
		c.Precision = p
	}
}

// WithFailureRecording makes calls that return a non-nil error record a
// sample too. Panics never record.
func WithFailureRecording(enabled bool) Option {
	return func(c *Config) {
		c.RecordFailures = enabled
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Config) {
		c.Clock = now
	}
}

func ApplyOptions(opts ...Option) Config {
	c := Config{Clock: time.Now}
	for _, opt := range opts {
		opt(&c)
	}
	if c.Clock == nil {
		c.Clock = time.Now
	}
	return c
}
