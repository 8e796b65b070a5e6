// Package ranking produces a rider's ordered candidate list: every active
// listing is filtered, scored and sorted on each call.
package ranking

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/okian/paddock/internal/domain/distance"
	"github.com/okian/paddock/internal/domain/eligibility"
	"github.com/okian/paddock/internal/domain/model"
	"github.com/okian/paddock/internal/domain/scoring"
	"github.com/okian/paddock/pkg/logger"
	"github.com/okian/paddock/pkg/metrics"
)

// Catalog is the read side of profile, horse and listing storage.
type Catalog interface {
	RiderProfile(ctx context.Context, userID string) (*model.RiderProfile, error)
	OwnerProfile(ctx context.Context, userID string) (*model.OwnerProfile, error)
	Horse(ctx context.Context, id string) (*model.Horse, error)
	Listing(ctx context.Context, id string) (*model.Listing, error)
	ActiveListings(ctx context.Context) ([]model.Listing, error)
}

// LikeSource lists the likes a user already gave.
type LikeSource interface {
	LikesByUser(ctx context.Context, userID string) ([]model.Like, error)
}

// Ranked is one entry of a candidate list.
type Ranked struct {
	Listing  model.Listing
	Horse    model.Horse
	Owner    model.OwnerProfile
	Distance distance.Result
	Score    scoring.Breakdown
}

// Explanation is the full evaluation of a single listing for a rider.
type Explanation struct {
	ListingID string
	Verdict   eligibility.Verdict
	Distance  distance.Result
	Score     scoring.Breakdown
}

// Option applies a configuration option to the Ranker.
type Option func(*Ranker)

// WithFilter sets the eligibility filter.
func WithFilter(f *eligibility.Filter) Option {
	return func(r *Ranker) {
		if f != nil {
			r.filter = f
		}
	}
}

// WithStrategy sets the scoring strategy.
func WithStrategy(s scoring.Strategy) Option {
	return func(r *Ranker) {
		if s != nil {
			r.strategy = s
		}
	}
}

// WithDistance sets the distance provider. Without one every distance is
// unknown.
func WithDistance(p distance.Provider) Option {
	return func(r *Ranker) {
		r.distance = p
	}
}

// WithMinScore drops candidates scoring below score.
func WithMinScore(score float64) Option {
	return func(r *Ranker) {
		if score > 0 {
			r.minScore = score
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(r *Ranker) {
		if l != nil {
			r.logger = l
		}
	}
}

// Ranker is stateless between calls and safe for concurrent use.
type Ranker struct {
	catalog  Catalog
	likes    LikeSource
	filter   *eligibility.Filter
	strategy scoring.Strategy
	distance distance.Provider
	minScore float64
	logger   logger.Logger
}

// New creates a Ranker over the given stores.
func New(catalog Catalog, likes LikeSource, opts ...Option) *Ranker {
	r := &Ranker{
		catalog:  catalog,
		likes:    likes,
		filter:   eligibility.NewFilter(),
		strategy: scoring.NewAdditive(),
		logger:   logger.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Rank returns at most limit candidates for riderID, best first. A
// non-positive limit returns every surviving candidate.
func (r *Ranker) Rank(ctx context.Context, riderID string, limit int) ([]Ranked, error) {
	start := time.Now()
	out, err := r.rank(ctx, riderID, limit)
	outcome := "ok"
	switch {
	case errors.Is(err, ErrProfileRequired):
		outcome = "profile_required"
	case err != nil:
		outcome = "error"
	}
	metrics.RecordRankRequest(outcome, float64(time.Since(start).Microseconds())/1000.0)
	return out, err
}

func (r *Ranker) rank(ctx context.Context, riderID string, limit int) ([]Ranked, error) {
	rider, err := r.rider(ctx, riderID)
	if err != nil {
		return nil, err
	}

	listings, err := r.catalog.ActiveListings(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active listings: %w", err)
	}
	liked, err := r.likedListings(ctx, riderID)
	if err != nil {
		return nil, err
	}

	owners := make(map[string]*model.OwnerProfile)
	out := make([]Ranked, 0, len(listings))
	evaluated := 0
	for i := range listings {
		l := &listings[i]
		if liked[l.ID] {
			continue
		}
		horse, owner, err := r.side(ctx, l, owners)
		if err != nil {
			return nil, err
		}
		if horse == nil || owner == nil || horse.OwnerID == riderID {
			continue
		}

		evaluated++
		c := eligibility.Candidate{
			Rider:    rider,
			Owner:    owner,
			Listing:  l,
			Horse:    horse,
			Distance: distance.Resolve(ctx, r.distance, rider.LocationCode, owner.LocationCode),
		}
		if v := r.filter.Check(c); !v.Passed {
			metrics.RecordFilterRejection(v.Rule)
			continue
		}
		b := r.strategy.Score(c)
		metrics.RecordScore(b.Strategy, b.Total)
		if b.Total < r.minScore {
			continue
		}
		out = append(out, Ranked{Listing: *l, Horse: *horse, Owner: *owner, Distance: c.Distance, Score: b})
	}
	metrics.RecordCandidatesEvaluated(evaluated)

	slices.SortFunc(out, compareRanked)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	metrics.RecordCandidatesReturned(len(out))
	r.logger.Debug(ctx, "ranked candidates",
		logger.String("rider_id", riderID),
		logger.Int("listings", len(listings)),
		logger.Int("evaluated", evaluated),
		logger.Int("returned", len(out)),
	)
	return out, nil
}

// Explain evaluates one listing for riderID without the exclusion of
// liked listings and without min score or limit.
func (r *Ranker) Explain(ctx context.Context, riderID, listingID string) (Explanation, error) {
	rider, err := r.rider(ctx, riderID)
	if err != nil {
		return Explanation{}, err
	}
	l, err := r.catalog.Listing(ctx, listingID)
	if err != nil {
		return Explanation{}, err
	}
	horse, owner, err := r.side(ctx, l, nil)
	if err != nil {
		return Explanation{}, err
	}
	if horse == nil {
		return Explanation{}, model.ErrHorseNotFound
	}
	if owner == nil {
		return Explanation{}, model.ErrOwnerProfileNotFound
	}

	c := eligibility.Candidate{
		Rider:    rider,
		Owner:    owner,
		Listing:  l,
		Horse:    horse,
		Distance: distance.Resolve(ctx, r.distance, rider.LocationCode, owner.LocationCode),
	}
	exp := Explanation{ListingID: l.ID, Verdict: r.filter.Check(c), Distance: c.Distance}
	if exp.Verdict.Passed {
		exp.Score = r.strategy.Score(c)
	} else {
		exp.Score = scoring.Breakdown{Strategy: r.strategy.Name()}
	}
	return exp, nil
}

func (r *Ranker) rider(ctx context.Context, riderID string) (*model.RiderProfile, error) {
	rider, err := r.catalog.RiderProfile(ctx, riderID)
	if errors.Is(err, model.ErrNotFound) {
		return nil, fmt.Errorf("%w: %w", ErrProfileRequired, err)
	}
	if err != nil {
		return nil, fmt.Errorf("load rider profile: %w", err)
	}
	return rider, nil
}

func (r *Ranker) likedListings(ctx context.Context, riderID string) (map[string]bool, error) {
	if r.likes == nil {
		return nil, nil
	}
	likes, err := r.likes.LikesByUser(ctx, riderID)
	if err != nil {
		return nil, fmt.Errorf("load likes: %w", err)
	}
	liked := make(map[string]bool, len(likes))
	for _, lk := range likes {
		liked[lk.ListingID] = true
	}
	return liked, nil
}

// side loads the horse and owner profile behind a listing. Missing records
// yield nil without error. cache may be nil.
func (r *Ranker) side(ctx context.Context, l *model.Listing, cache map[string]*model.OwnerProfile) (*model.Horse, *model.OwnerProfile, error) {
	horse, err := r.catalog.Horse(ctx, l.HorseID)
	if errors.Is(err, model.ErrNotFound) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("load horse %s: %w", l.HorseID, err)
	}
	if owner, ok := cache[horse.OwnerID]; ok {
		return horse, owner, nil
	}
	owner, err := r.catalog.OwnerProfile(ctx, horse.OwnerID)
	if errors.Is(err, model.ErrNotFound) {
		owner, err = nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("load owner %s: %w", horse.OwnerID, err)
	}
	if cache != nil {
		cache[horse.OwnerID] = owner
	}
	return horse, owner, nil
}

// compareRanked orders by score descending, then older listings first, then
// listing id.
func compareRanked(a, b Ranked) int {
	if c := cmp.Compare(b.Score.Total, a.Score.Total); c != 0 {
		return c
	}
	if c := a.Listing.CreatedAt.Compare(b.Listing.CreatedAt); c != 0 {
		return c
	}
	return cmp.Compare(a.Listing.ID, b.Listing.ID)
}
