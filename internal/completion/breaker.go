package completion

import (
	"sync"
	"time"
)

// BreakerState represents the state of the circuit breaker
type BreakerState int

const (
	BreakerClosed   BreakerState = iota // Normal operation
	BreakerOpen                         // Failing, reject calls
	BreakerHalfOpen                     // Probing whether the service recovered
)

func (s BreakerState) String() string {
	switch s {
	case BreakerClosed:
		return "closed"
	case BreakerOpen:
		return "open"
	case BreakerHalfOpen:
		return "half-open"
	}
	return "unknown"
}

// Breaker implements the circuit breaker pattern around the completion service.
type Breaker struct {
	mu              sync.RWMutex
	state           BreakerState
	failures        int
	successes       int
	lastFailureTime time.Time
	now             func() time.Time

	// Configuration
	FailureThreshold int           // Consecutive failures before opening
	SuccessThreshold int           // Half-open successes before closing
	Timeout          time.Duration // How long to stay open before probing
	OnStateChange    func(from, to BreakerState)
}

// NewBreaker creates a breaker with defaults.
func NewBreaker() *Breaker {
	return NewBreakerWithConfig(5, 2, 30*time.Second)
}

// NewBreakerWithConfig creates a breaker with custom thresholds.
func NewBreakerWithConfig(failureThreshold, successThreshold int, timeout time.Duration) *Breaker {
	return &Breaker{
		state:            BreakerClosed,
		now:              time.Now,
		FailureThreshold: failureThreshold,
		SuccessThreshold: successThreshold,
		Timeout:          timeout,
	}
}

// State returns the current state.
func (b *Breaker) State() BreakerState {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.state
}

// Allow reports whether a call may proceed.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case BreakerClosed, BreakerHalfOpen:
		return true
	case BreakerOpen:
		if b.now().Sub(b.lastFailureTime) > b.Timeout {
			b.setState(BreakerHalfOpen)
			return true
		}
	}
	return false
}

// RecordSuccess records a successful call.
func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case BreakerHalfOpen:
		b.successes++
		if b.successes >= b.SuccessThreshold {
			b.setState(BreakerClosed)
			b.failures = 0
			b.successes = 0
		}
	case BreakerClosed:
		b.failures = 0
	}
}

// RecordFailure records a failed call.
func (b *Breaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures++
	b.lastFailureTime = b.now()

	switch b.state {
	case BreakerClosed:
		if b.failures >= b.FailureThreshold {
			b.setState(BreakerOpen)
		}
	case BreakerHalfOpen:
		b.setState(BreakerOpen)
		b.successes = 0
	}
}

func (b *Breaker) setState(newState BreakerState) {
	if b.OnStateChange != nil && b.state != newState {
		b.OnStateChange(b.state, newState)
	}
	b.state = newState
}
