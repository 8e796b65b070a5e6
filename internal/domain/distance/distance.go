// Package distance defines the injectable distance capability used by the
// eligibility filter and the scorers.
//
// A Provider answers "how far apart are these two location codes" in
// kilometres. Implementations must return a non-negative value or an error;
// callers treat any error as "distance unknown".
package distance

import (
	"context"
	"fmt"
	"strings"

	"github.com/okian/paddock/internal/domain/model"
)

// Provider resolves the distance between two location codes.
type Provider interface {
	Distance(ctx context.Context, from, to string) (float64, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context, from, to string) (float64, error)

// Distance implements Provider.
func (f ProviderFunc) Distance(ctx context.Context, from, to string) (float64, error) {
	return f(ctx, from, to)
}

// Constant returns the same distance for every pair. It stands in for a
// geocoder in development and tests.
type Constant float64

// Distance implements Provider.
func (c Constant) Distance(ctx context.Context, _, _ string) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if c < 0 {
		return 0, model.ErrNegativeDistance
	}
	return float64(c), nil
}

// Table looks distances up in a static symmetric table keyed by
// "from|to". Identical codes are 0 km apart.
type Table struct {
	entries map[string]float64
}

// NewTable builds a Table. Keys use the form "A|B"; the reverse pair is
// added automatically. Negative entries are rejected.
func NewTable(entries map[string]float64) (*Table, error) {
	t := &Table{entries: make(map[string]float64, len(entries)*2)}
	for key, km := range entries {
		from, to, ok := strings.Cut(key, "|")
		if !ok || from == "" || to == "" {
			return nil, fmt.Errorf("distance table key %q: %w", key, model.ErrInvalidInput)
		}
		if km < 0 {
			return nil, fmt.Errorf("distance table key %q: %w", key, model.ErrNegativeDistance)
		}
		t.entries[pairKey(from, to)] = km
		t.entries[pairKey(to, from)] = km
	}
	return t, nil
}

// Distance implements Provider.
func (t *Table) Distance(ctx context.Context, from, to string) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if from == to {
		return 0, nil
	}
	km, ok := t.entries[pairKey(from, to)]
	if !ok {
		return 0, fmt.Errorf("distance %s -> %s: %w", from, to, ErrUnknownPair)
	}
	return km, nil
}

func pairKey(from, to string) string {
	return from + "|" + to
}

// Result is a resolved distance. Known is false when the provider failed or
// either location code was missing.
type Result struct {
	Km    float64
	Known bool
}

// Unknown is the zero Result.
var Unknown = Result{}

// Known wraps a resolved value.
func Known(km float64) Result {
	return Result{Km: km, Known: true}
}
