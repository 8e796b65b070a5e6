package distance

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/okian/paddock/internal/domain/model"
	"github.com/okian/paddock/pkg/logger"
	"github.com/okian/paddock/pkg/metrics"
)

// Default guard configuration constants.
const (
	defaultTimeout          = 200 * time.Millisecond
	defaultFailureThreshold = 5
	defaultCooldown         = 30 * time.Second
	defaultHalfOpenRequests = 1
)

// Option applies a configuration option to Guarded.
type Option func(*Guarded)

// WithTimeout bounds every lookup.
func WithTimeout(d time.Duration) Option {
	return func(g *Guarded) {
		if d > 0 {
			g.timeout = d
		}
	}
}

// WithBreaker configures the circuit breaker: it opens after failures
// consecutive failures and probes again after cooldown.
func WithBreaker(failures uint32, cooldown time.Duration) Option {
	return func(g *Guarded) {
		if failures > 0 {
			g.failureThreshold = failures
		}
		if cooldown > 0 {
			g.cooldown = cooldown
		}
	}
}

// WithLogger sets the logger used for breaker state changes.
func WithLogger(l logger.Logger) Option {
	return func(g *Guarded) {
		if l != nil {
			g.logger = l
		}
	}
}

// Guarded wraps a Provider with a per-call timeout and a circuit breaker so
// a slow or failing geocoder cannot stall ranking.
type Guarded struct {
	next             Provider
	timeout          time.Duration
	failureThreshold uint32
	cooldown         time.Duration
	logger           logger.Logger
	cb               *gobreaker.CircuitBreaker[float64]
}

// NewGuarded wraps next.
func NewGuarded(next Provider, opts ...Option) *Guarded {
	g := &Guarded{
		next:             next,
		timeout:          defaultTimeout,
		failureThreshold: defaultFailureThreshold,
		cooldown:         defaultCooldown,
	}
	for _, opt := range opts {
		opt(g)
	}

	g.cb = gobreaker.NewCircuitBreaker[float64](gobreaker.Settings{
		Name:        "distance",
		MaxRequests: defaultHalfOpenRequests,
		Timeout:     g.cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= g.failureThreshold
		},
		// Answers about unknown pairs or bad input are not outages, nor are
		// callers that went away.
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, ErrUnknownPair) ||
				errors.Is(err, model.ErrInvalidInput) ||
				errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.UpdateDistanceBreakerState(to.String())
			if g.logger != nil {
				g.logger.Warn(context.Background(), "distance breaker state changed",
					logger.String("breaker", name),
					logger.String("from", from.String()),
					logger.String("to", to.String()),
				)
			}
		},
	})
	metrics.UpdateDistanceBreakerState(g.cb.State().String())
	return g
}

// Distance implements Provider.
func (g *Guarded) Distance(ctx context.Context, from, to string) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("distance %s -> %s: %w", from, to, err)
	}
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	km, err := g.cb.Execute(func() (float64, error) {
		type answer struct {
			km  float64
			err error
		}
		ch := make(chan answer, 1)
		go func() {
			v, err := g.next.Distance(ctx, from, to)
			ch <- answer{km: v, err: err}
		}()
		select {
		case <-ctx.Done():
			return 0, fmt.Errorf("distance %s -> %s: %w", from, to, ctx.Err())
		case a := <-ch:
			return a.km, a.err
		}
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return 0, fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
		return 0, err
	}
	if km < 0 {
		return 0, model.ErrNegativeDistance
	}
	return km, nil
}

// State reports the breaker state, e.g. "closed" or "open".
func (g *Guarded) State() string {
	return g.cb.State().String()
}

// Resolve looks up the distance between two location codes and degrades to
// Unknown when either code is empty or the provider fails.
func Resolve(ctx context.Context, p Provider, from, to string) Result {
	if p == nil || from == "" || to == "" {
		return Unknown
	}
	km, err := p.Distance(ctx, from, to)
	if err != nil {
		metrics.RecordDistanceFailure(failureReason(err))
		return Unknown
	}
	if km < 0 {
		metrics.RecordDistanceFailure("negative")
		return Unknown
	}
	return Known(km)
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, ErrUnavailable):
		return "breaker_open"
	case errors.Is(err, ErrUnknownPair):
		return "unknown_pair"
	case errors.Is(err, model.ErrInvalidInput):
		return "invalid"
	default:
		return "error"
	}
}
