package resilience

import "time"

// Option configures the executor.
type Option func(*ExecutorConfig)

// WithMaxConcurrent caps tool executions in flight.
func WithMaxConcurrent(n int) Option {
	return func(c *ExecutorConfig) {
		c.MaxConcurrent = n
	}
}

// WithBreakerThreshold sets the consecutive failure count that opens
// the circuit.
func WithBreakerThreshold(n int) Option {
	return func(c *ExecutorConfig) {
		c.BreakerThreshold = n
	}
}

// WithBreakerTimeout sets how long the circuit stays open.
func WithBreakerTimeout(d time.Duration) Option {
	return func(c *ExecutorConfig) {
		c.BreakerTimeout = d
	}
}

// WithRetryAttempts sets the retry budget for idempotent tools.
func WithRetryAttempts(n int) Option {
	return func(c *ExecutorConfig) {
		c.RetryMaxAttempts = n
	}
}

// WithRetryDelay sets the initial backoff delay.
func WithRetryDelay(d time.Duration) Option {
	return func(c *ExecutorConfig) {
		c.RetryInitialDelay = d
	}
}

// WithToolTimeout bounds a single tool execution.
func WithToolTimeout(d time.Duration) Option {
	return func(c *ExecutorConfig) {
		c.ToolTimeout = d
	}
}

// NewExecutorWithOptions builds an executor from the defaults plus the
// given options.
func NewExecutorWithOptions(opts ...Option) *Executor {
	config := DefaultExecutorConfig()
	for _, opt := range opts {
		opt(&config)
	}
	return NewExecutor(config)
}
