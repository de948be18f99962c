// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package breaker implements a consecutive-failure circuit breaker used to
// stop calling an upstream that keeps failing.
package breaker

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/citecheck/internal/metrics"
)

// State is the breaker state.
type State int

const (
	StateClosed State = iota
	StateHalfOpen
	StateOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateHalfOpen:
		return "half-open"
	case StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// ErrOpen is returned by Execute while the breaker rejects calls.
var ErrOpen = errors.New("circuit breaker is open")

// Config holds breaker thresholds.
type Config struct {
	// Threshold is the consecutive failures that open the breaker.
	Threshold int
	// Cooldown is how long the breaker stays open before a trial call.
	Cooldown time.Duration
	// Now is the clock; nil means time.Now.
	Now func() time.Time
}

// Breaker is safe for concurrent use.
type Breaker struct {
	name   string
	cfg    Config
	logger *zap.Logger

	mu       sync.Mutex
	state    State
	failures int
	openedAt time.Time
	trial    bool
}

// New creates a closed breaker.
func New(name string, cfg Config, logger *zap.Logger) *Breaker {
	if cfg.Threshold <= 0 {
		cfg.Threshold = 5
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 30 * time.Second
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics.BreakerState.WithLabelValues(name).Set(float64(StateClosed))
	return &Breaker{name: name, cfg: cfg, logger: logger}
}

// State returns the current state, moving open to half-open once the
// cooldown has elapsed.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.advance()
	return b.state
}

// Execute runs fn unless the breaker is open or a half-open trial is
// already in flight. A canceled context does not count as a failure; a
// deadline does. Calls admitted while closed that finish after the breaker
// has left the closed state do not move it.
func (b *Breaker) Execute(ctx context.Context, fn func(context.Context) error) error {
	trial, err := b.before()
	if err != nil {
		return err
	}

	err = fn(ctx)
	b.after(err, trial)
	return err
}

// before admits a call and reports whether it is the half-open trial.
func (b *Breaker) before() (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.advance()

	switch b.state {
	case StateOpen:
		return false, ErrOpen
	case StateHalfOpen:
		if b.trial {
			return false, ErrOpen
		}
		b.trial = true
		return true, nil
	}
	return false, nil
}

func (b *Breaker) after(err error, trial bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if trial {
		b.trial = false
	} else if b.state != StateClosed {
		return
	}

	if err == nil {
		b.failures = 0
		if trial {
			b.setState(StateClosed)
		}
		return
	}
	if errors.Is(err, context.Canceled) {
		return
	}

	b.failures++
	if trial || b.failures >= b.cfg.Threshold {
		b.openedAt = b.cfg.Now()
		b.setState(StateOpen)
	}
}

// advance must be called with mu held.
func (b *Breaker) advance() {
	if b.state == StateOpen && b.cfg.Now().Sub(b.openedAt) >= b.cfg.Cooldown {
		b.setState(StateHalfOpen)
	}
}

func (b *Breaker) setState(to State) {
	if b.state == to {
		return
	}
	from := b.state
	b.state = to
	if to == StateClosed {
		b.failures = 0
	}
	metrics.BreakerState.WithLabelValues(b.name).Set(float64(to))
	b.logger.Info("circuit breaker state change",
		zap.String("name", b.name),
		zap.String("from", from.String()),
		zap.String("to", to.String()),
	)
}
