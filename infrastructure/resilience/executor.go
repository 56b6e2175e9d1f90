// Package resilience guards tool execution with fortify patterns. Every
// analytics tool ultimately fans out to the monitoring portal's REST
// API, so a misbehaving portal must not pile up goroutines or hammer a
// failing endpoint.
package resilience

import (
	"context"
	"encoding/json"
	"time"

	"github.com/felixgeelhaar/fortify/bulkhead"
	"github.com/felixgeelhaar/fortify/circuitbreaker"
	"github.com/felixgeelhaar/fortify/retry"

	"github.com/pulsemon/pulsemon-mcp/domain/tool"
)

// Executor wraps tool execution in bulkhead, timeout, circuit breaker
// and retry layers, in that order.
type Executor struct {
	bulkhead bulkhead.Bulkhead[tool.Result]
	breaker  circuitbreaker.CircuitBreaker[tool.Result]
	retry    retry.Retry[tool.Result]
	timeout  time.Duration
}

// ExecutorConfig tunes the protection layers.
type ExecutorConfig struct {
	// MaxConcurrent caps tool executions in flight. Each execution
	// may issue several portal requests, so keep this modest.
	MaxConcurrent int

	// BreakerThreshold is the consecutive failure count that opens
	// the circuit.
	BreakerThreshold int

	// BreakerTimeout is how long the circuit stays open before
	// probing the portal again.
	BreakerTimeout time.Duration

	// RetryMaxAttempts bounds retries for idempotent tools.
	RetryMaxAttempts int

	// RetryInitialDelay seeds the exponential backoff.
	RetryInitialDelay time.Duration

	// RetryBackoffMultiplier grows the delay between attempts.
	RetryBackoffMultiplier float64

	// ToolTimeout bounds a single tool execution. Wide-window
	// analyses page through a lot of alert history, hence the
	// generous default.
	ToolTimeout time.Duration
}

// DefaultExecutorConfig returns the tuning used by the server.
func DefaultExecutorConfig() ExecutorConfig {
	return ExecutorConfig{
		MaxConcurrent:          8,
		BreakerThreshold:       5,
		BreakerTimeout:         30 * time.Second,
		RetryMaxAttempts:       3,
		RetryInitialDelay:      100 * time.Millisecond,
		RetryBackoffMultiplier: 2.0,
		ToolTimeout:            60 * time.Second,
	}
}

// NewExecutor builds an executor from the given config. Non-positive
// limits fall back to the defaults.
func NewExecutor(config ExecutorConfig) *Executor {
	defaults := DefaultExecutorConfig()
	maxConcurrent := config.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = defaults.MaxConcurrent
	}
	threshold := config.BreakerThreshold
	if threshold <= 0 {
		threshold = defaults.BreakerThreshold
	}

	return &Executor{
		bulkhead: bulkhead.New[tool.Result](bulkhead.Config{
			MaxConcurrent: maxConcurrent,
		}),
		breaker: circuitbreaker.New[tool.Result](circuitbreaker.Config{
			MaxRequests: uint32(maxConcurrent), // #nosec G115 -- bounds checked above
			Interval:    config.BreakerTimeout,
			Timeout:     config.BreakerTimeout,
			ReadyToTrip: func(counts circuitbreaker.Counts) bool {
				return counts.ConsecutiveFailures >= uint32(threshold) // #nosec G115 -- bounds checked above
			},
		}),
		retry: retry.New[tool.Result](retry.Config{
			MaxAttempts:   config.RetryMaxAttempts,
			InitialDelay:  config.RetryInitialDelay,
			BackoffPolicy: retry.BackoffExponential,
			Multiplier:    config.RetryBackoffMultiplier,
		}),
		timeout: config.ToolTimeout,
	}
}

// NewDefaultExecutor builds an executor with the default tuning.
func NewDefaultExecutor() *Executor {
	return NewExecutor(DefaultExecutorConfig())
}

// Execute runs a tool behind the protection layers. Retries apply only
// to tools whose annotations mark them safe to retry; analytics tools
// report domain failures in-band, so a retried error is always a
// transport or runtime fault.
func (e *Executor) Execute(ctx context.Context, t tool.Tool, input json.RawMessage) (tool.Result, error) {
	start := time.Now()

	result, err := e.bulkhead.Execute(ctx, func(ctx context.Context) (tool.Result, error) {
		ctx, cancel := context.WithTimeout(ctx, e.timeout)
		defer cancel()

		return e.breaker.Execute(ctx, func(ctx context.Context) (tool.Result, error) {
			if t.Annotations().CanRetry() {
				return e.retry.Do(ctx, func(ctx context.Context) (tool.Result, error) {
					return t.Execute(ctx, input)
				})
			}
			return t.Execute(ctx, input)
		})
	})

	if err == nil {
		result.Duration = time.Since(start)
	}
	return result, err
}

// ExecuteWithTimeout runs a tool with a caller-chosen deadline layered
// under the standard protections.
func (e *Executor) ExecuteWithTimeout(ctx context.Context, t tool.Tool, input json.RawMessage, timeout time.Duration) (tool.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return e.Execute(ctx, t, input)
}

// BreakerState reports the circuit breaker's current state.
func (e *Executor) BreakerState() circuitbreaker.State {
	return e.breaker.State()
}
