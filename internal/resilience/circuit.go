package resilience

import (
	"context"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// CircuitState is the state of a Breaker.
type CircuitState int

const (
	CircuitClosed CircuitState = iota
	CircuitOpen
	CircuitHalfOpen
)

func (s CircuitState) String() string {
	switch s {
	case CircuitClosed:
		return "closed"
	case CircuitOpen:
		return "open"
	case CircuitHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// ErrCircuitOpen is returned without calling the catalog while a breaker is open.
var ErrCircuitOpen = eris.New("circuit breaker is open")

// Breaker stops calling a catalog after a run of consecutive failures and
// lets a single probe through once ResetTimeout has elapsed.
type Breaker struct {
	name         string
	threshold    int
	resetTimeout time.Duration

	mu       sync.Mutex
	state    CircuitState
	failures int
	openedAt time.Time
	probing  bool

	now func() time.Time
}

// NewBreaker creates a closed breaker. A threshold <= 0 defaults to 5 and a
// reset timeout <= 0 defaults to 30s.
func NewBreaker(name string, threshold int, resetTimeout time.Duration) *Breaker {
	if threshold <= 0 {
		threshold = 5
	}
	if resetTimeout <= 0 {
		resetTimeout = 30 * time.Second
	}
	return &Breaker{name: name, threshold: threshold, resetTimeout: resetTimeout, now: time.Now}
}

// ExecuteVal runs fn unless the breaker is open. Only transient failures
// count toward the threshold; a permanent failure (such as a 404) is a
// healthy answer from the catalog.
func ExecuteVal[T any](ctx context.Context, b *Breaker, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if err := b.allow(); err != nil {
		return zero, err
	}
	val, err := fn(ctx)
	b.record(err)
	return val, err
}

// State returns the current state.
func (b *Breaker) State() CircuitState {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == CircuitOpen && b.now().Sub(b.openedAt) >= b.resetTimeout {
		return CircuitHalfOpen
	}
	return b.state
}

func (b *Breaker) allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case CircuitOpen:
		if b.now().Sub(b.openedAt) < b.resetTimeout {
			return eris.Wrapf(ErrCircuitOpen, "resilience: %s", b.name)
		}
		b.transition(CircuitHalfOpen)
		b.probing = true
		return nil
	case CircuitHalfOpen:
		if b.probing {
			return eris.Wrapf(ErrCircuitOpen, "resilience: %s probe in flight", b.name)
		}
		b.probing = true
		return nil
	default:
		return nil
	}
}

func (b *Breaker) record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.probing = false
	if err == nil || !IsTransient(err) {
		b.failures = 0
		if b.state != CircuitClosed {
			b.transition(CircuitClosed)
		}
		return
	}

	b.failures++
	if b.state == CircuitHalfOpen || b.failures >= b.threshold {
		b.openedAt = b.now()
		if b.state != CircuitOpen {
			b.transition(CircuitOpen)
		}
	}
}

func (b *Breaker) transition(to CircuitState) {
	zap.L().Info("circuit breaker state change",
		zap.String("catalog", b.name),
		zap.Stringer("from", b.state),
		zap.Stringer("to", to),
	)
	b.state = to
}

// Breakers holds one Breaker per catalog.
type Breakers struct {
	threshold    int
	resetTimeout time.Duration

	mu       sync.Mutex
	breakers map[string]*Breaker
}

// NewBreakers returns a registry whose breakers share one configuration.
func NewBreakers(threshold int, resetTimeout time.Duration) *Breakers {
	return &Breakers{
		threshold:    threshold,
		resetTimeout: resetTimeout,
		breakers:     make(map[string]*Breaker),
	}
}

// Get returns the breaker for catalog, creating it on first use.
func (r *Breakers) Get(catalog string) *Breaker {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.breakers[catalog]
	if !ok {
		b = NewBreaker(catalog, r.threshold, r.resetTimeout)
		r.breakers[catalog] = b
	}
	return b
}

// States snapshots every breaker's state.
func (r *Breakers) States() map[string]CircuitState {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]CircuitState, len(r.breakers))
	for name, b := range r.breakers {
		out[name] = b.State()
	}
	return out
}
