package gemini

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

// BreakerSettings configures the circuit breaker around model calls.
type BreakerSettings struct {
	Enabled          bool
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	MinRequests      uint32
	FailureThreshold float64
}

type circuitBreaker struct {
	cb *gobreaker.CircuitBreaker[string]
}

// newCircuitBreaker returns nil when the breaker is disabled.
func newCircuitBreaker(model string, cfg BreakerSettings, logger *zap.Logger) *circuitBreaker {
	if !cfg.Enabled {
		return nil
	}

	minRequests := cfg.MinRequests
	if minRequests == 0 {
		minRequests = 1
	}

	settings := gobreaker.Settings{
		Name:        fmt.Sprintf("gemini-%s", model),
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < minRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Info("circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
		// Caller cancellation does not count against the upstream.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	}

	return &circuitBreaker{cb: gobreaker.NewCircuitBreaker[string](settings)}
}

func (b *circuitBreaker) Execute(fn func() (string, error)) (string, error) {
	if b == nil || b.cb == nil {
		return fn()
	}
	return b.cb.Execute(fn)
}

func (b *circuitBreaker) State() string {
	if b == nil || b.cb == nil {
		return "disabled"
	}
	return b.cb.State().String()
}
