package circuitbreaker

import "errors"

type State int

const (
	Closed State = iota
	HalfOpen
	Open
)

// ErrOpen is returned by Execute when the breaker rejects a call without
// running it.
var ErrOpen = errors.New("circuit breaker is open")

type CircuitBreaker interface {
	Execute(fn func() (any, error)) (any, error)
	State() State
}
