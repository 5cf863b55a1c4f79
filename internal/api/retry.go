package api

import (
	"context"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	DefaultMaxRateLimitRetries     = 3
	DefaultMax5xxRetries           = 1
	DefaultRateLimitBaseDelay      = 1 * time.Second
	DefaultServerErrorRetryDelay   = 1 * time.Second
	DefaultCircuitBreakerThreshold = 5
	DefaultCircuitBreakerResetTime = 30 * time.Second
)

// RetryConfig controls how many times a call is replayed after throttling or
// a server failure, and when the circuit breaker trips. Token-expiry replays
// are not configurable: a stale token is refreshed and the request replayed
// at most once.
type RetryConfig struct {
	MaxRateLimitRetries     int
	Max5xxRetries           int
	RateLimitBaseDelay      time.Duration
	ServerErrorRetryDelay   time.Duration
	CircuitBreakerThreshold int
	CircuitBreakerResetTime time.Duration
}

// DefaultRetryConfig returns the built-in retry settings overridden by any of
// LARK_MAX_RATE_LIMIT_RETRIES, LARK_MAX_5XX_RETRIES, LARK_RATE_LIMIT_DELAY,
// LARK_SERVER_ERROR_DELAY, LARK_CIRCUIT_BREAKER_THRESHOLD and
// LARK_CIRCUIT_BREAKER_RESET_TIME. Values that fail to parse are ignored.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRateLimitRetries:     envOr("LARK_MAX_RATE_LIMIT_RETRIES", DefaultMaxRateLimitRetries, strconv.Atoi),
		Max5xxRetries:           envOr("LARK_MAX_5XX_RETRIES", DefaultMax5xxRetries, strconv.Atoi),
		RateLimitBaseDelay:      envOr("LARK_RATE_LIMIT_DELAY", DefaultRateLimitBaseDelay, time.ParseDuration),
		ServerErrorRetryDelay:   envOr("LARK_SERVER_ERROR_DELAY", DefaultServerErrorRetryDelay, time.ParseDuration),
		CircuitBreakerThreshold: envOr("LARK_CIRCUIT_BREAKER_THRESHOLD", DefaultCircuitBreakerThreshold, strconv.Atoi),
		CircuitBreakerResetTime: envOr("LARK_CIRCUIT_BREAKER_RESET_TIME", DefaultCircuitBreakerResetTime, time.ParseDuration),
	}
}

func envOr[T any](key string, fallback T, parse func(string) (T, error)) T {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := parse(raw)
	if err != nil {
		return fallback
	}
	return v
}

// sleepWithContext blocks for d or until ctx is done.
func sleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// retryAfterDuration reads a Retry-After header given either as delta seconds
// or as an HTTP date. Values in the past clamp to zero.
func retryAfterDuration(h http.Header) (time.Duration, bool) {
	raw := strings.TrimSpace(h.Get("Retry-After"))
	if raw == "" {
		return 0, false
	}
	var d time.Duration
	if secs, err := strconv.Atoi(raw); err == nil {
		d = time.Duration(secs) * time.Second
	} else if when, err := http.ParseTime(raw); err == nil {
		d = time.Until(when)
	} else {
		return 0, false
	}
	return max(d, 0), true
}

type breakerState int

const (
	breakerClosed breakerState = iota
	breakerOpen
	breakerProbing
)

// circuitBreaker trips after threshold consecutive server failures. Once
// resetTime has passed since the last failure a single probe is let through;
// its outcome closes or re-trips the breaker.
type circuitBreaker struct {
	mu          sync.Mutex
	state       breakerState
	failures    int
	lastFailure time.Time
	threshold   int
	resetTime   time.Duration
}

func newCircuitBreaker(cfg RetryConfig) *circuitBreaker {
	return &circuitBreaker{
		threshold: cfg.CircuitBreakerThreshold,
		resetTime: cfg.CircuitBreakerResetTime,
	}
}

func (cb *circuitBreaker) recordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.failures = 0
	cb.state = breakerClosed
}

// recordFailure reports whether this failure tripped the breaker.
func (cb *circuitBreaker) recordFailure() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failures++
	cb.lastFailure = time.Now()

	switch cb.state {
	case breakerProbing:
		cb.state = breakerOpen
		return true
	case breakerOpen:
		return false
	}
	threshold := cb.threshold
	if threshold <= 0 {
		threshold = DefaultCircuitBreakerThreshold
	}
	if cb.failures < threshold {
		return false
	}
	cb.state = breakerOpen
	return true
}

// isOpen reports whether calls must be refused. The first caller after the
// reset window moves the breaker to probing and is allowed through.
func (cb *circuitBreaker) isOpen() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state != breakerOpen {
		return false
	}
	resetTime := cb.resetTime
	if resetTime <= 0 {
		resetTime = DefaultCircuitBreakerResetTime
	}
	if time.Since(cb.lastFailure) < resetTime {
		return true
	}
	cb.state = breakerProbing
	return false
}

func (cb *circuitBreaker) reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.state = breakerClosed
	cb.failures = 0
	cb.lastFailure = time.Time{}
}
