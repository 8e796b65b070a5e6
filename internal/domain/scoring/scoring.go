// Package scoring computes the compatibility score of an eligible candidate.
//
// Two strategies are available. Both return a Breakdown whose Total lies in
// [0, 100] and both are deterministic for identical inputs and clock.
package scoring

import (
	"fmt"
	"math"
	"time"

	"github.com/okian/paddock/internal/domain/eligibility"
)

// Strategy names.
const (
	StrategyAdditive = "additive"
	StrategyWeighted = "weighted"
)

const maxScoreValue = 100

// Breakdown is a score together with the sub-scores it was built from.
type Breakdown struct {
	Strategy   string             `json:"strategy"`
	Total      float64            `json:"total"`
	Components map[string]float64 `json:"components"`
}

// Strategy scores a candidate that already passed the eligibility filter.
type Strategy interface {
	Name() string
	Score(c eligibility.Candidate) Breakdown
}

// Option applies a configuration option to a strategy.
type Option func(*settings)

type settings struct {
	cfg Config
	now func() time.Time
}

// WithConfig replaces the default weights.
func WithConfig(cfg Config) Option {
	return func(s *settings) {
		s.cfg = cfg
	}
}

// WithClock sets the time source used for listing recency.
func WithClock(now func() time.Time) Option {
	return func(s *settings) {
		if now != nil {
			s.now = now
		}
	}
}

func newSettings(opts []Option) settings {
	s := settings{cfg: DefaultConfig(), now: time.Now}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// New returns the strategy registered under name.
func New(name string, opts ...Option) (Strategy, error) {
	switch name {
	case "", StrategyAdditive:
		return NewAdditive(opts...), nil
	case StrategyWeighted:
		return NewWeighted(opts...), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
}

type component struct {
	name  string
	value float64
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// jaccard returns |a ∩ b| / |a ∪ b| for two tag sets, 0 when both are empty.
func jaccard(inter, union int) float64 {
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}
