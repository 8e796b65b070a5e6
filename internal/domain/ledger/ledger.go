// Package ledger records likes and owner interests and promotes a pair to a
// mutual match once both directions exist.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/okian/paddock/internal/domain/distance"
	"github.com/okian/paddock/internal/domain/eligibility"
	"github.com/okian/paddock/internal/domain/model"
	"github.com/okian/paddock/internal/domain/scoring"
	"github.com/okian/paddock/pkg/logger"
	"github.com/okian/paddock/pkg/metrics"
)

// neutralScore is stored on a match whose rider has no profile to score.
const neutralScore = 50.0

// Catalog is the read side the ledger needs to validate and score pairs.
type Catalog interface {
	RiderProfile(ctx context.Context, userID string) (*model.RiderProfile, error)
	OwnerProfile(ctx context.Context, userID string) (*model.OwnerProfile, error)
	Horse(ctx context.Context, id string) (*model.Horse, error)
	Listing(ctx context.Context, id string) (*model.Listing, error)
	ListingsByOwner(ctx context.Context, ownerID string) ([]model.Listing, error)
}

// Store persists ledger records. Insert methods must be atomic
// insert-if-absent: InsertLike and InsertOwnerInterest return an error
// wrapping model.ErrConflict on a repeat, InsertMatch reports false when the
// pair already has a match.
type Store interface {
	InsertLike(ctx context.Context, l model.Like) error
	InsertOwnerInterest(ctx context.Context, oi model.OwnerInterest) error
	InsertMatch(ctx context.Context, m model.MutualMatch) (bool, error)
	HasLike(ctx context.Context, userID, listingID string) (bool, error)
	HasOwnerInterest(ctx context.Context, ownerID, riderID, listingID string) (bool, error)
	LikesByUser(ctx context.Context, userID string) ([]model.Like, error)
	MatchesByRider(ctx context.Context, riderID string) ([]model.MutualMatch, error)
	MatchesByListings(ctx context.Context, listingIDs []string) ([]model.MutualMatch, error)
}

// Option applies a configuration option to the Ledger.
type Option func(*Ledger)

// WithStrategy sets the strategy used to score new matches.
func WithStrategy(s scoring.Strategy) Option {
	return func(l *Ledger) {
		if s != nil {
			l.strategy = s
		}
	}
}

// WithDistance sets the distance provider used when scoring new matches.
func WithDistance(p distance.Provider) Option {
	return func(l *Ledger) {
		l.distance = p
	}
}

// WithClock sets the time source for record timestamps.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		if now != nil {
			l.now = now
		}
	}
}

// WithLogger sets the logger.
func WithLogger(lg logger.Logger) Option {
	return func(l *Ledger) {
		if lg != nil {
			l.logger = lg
		}
	}
}

// Ledger is safe for concurrent use; uniqueness is delegated to the Store.
type Ledger struct {
	catalog  Catalog
	store    Store
	strategy scoring.Strategy
	distance distance.Provider
	now      func() time.Time
	logger   logger.Logger
}

// New creates a Ledger.
func New(catalog Catalog, store Store, opts ...Option) *Ledger {
	l := &Ledger{
		catalog:  catalog,
		store:    store,
		strategy: scoring.NewAdditive(),
		now:      time.Now,
		logger:   logger.Nop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// RegisterLike records fromUser's like of listingID and returns the match it
// completed, if any.
func (l *Ledger) RegisterLike(ctx context.Context, fromUser, listingID string) (model.Like, *model.MutualMatch, error) {
	if fromUser == "" || listingID == "" {
		return model.Like{}, nil, fmt.Errorf("user and listing are required: %w", model.ErrInvalidInput)
	}
	if _, err := l.catalog.Listing(ctx, listingID); err != nil {
		metrics.RecordLike(resultOf(err))
		return model.Like{}, nil, err
	}

	like := model.Like{
		ID:         uuid.NewString(),
		FromUserID: fromUser,
		ListingID:  listingID,
		CreatedAt:  l.now().UTC(),
	}
	if err := l.store.InsertLike(ctx, like); err != nil {
		metrics.RecordLike(resultOf(err))
		if errors.Is(err, model.ErrConflict) {
			l.promote(ctx, fromUser, listingID)
			return model.Like{}, nil, model.ErrDuplicateLike
		}
		return model.Like{}, nil, fmt.Errorf("insert like: %w", err)
	}
	metrics.RecordLike("created")
	return like, l.promote(ctx, fromUser, listingID), nil
}

// RegisterOwnerInterest records that ownerID wants riderID for one of the
// owner's listings and returns the match it completed, if any.
func (l *Ledger) RegisterOwnerInterest(ctx context.Context, ownerID, riderID, listingID string) (model.OwnerInterest, *model.MutualMatch, error) {
	if ownerID == "" || riderID == "" || listingID == "" {
		return model.OwnerInterest{}, nil, fmt.Errorf("owner, rider and listing are required: %w", model.ErrInvalidInput)
	}
	owner, err := l.listingOwner(ctx, listingID)
	if err != nil {
		metrics.RecordOwnerInterest(resultOf(err))
		return model.OwnerInterest{}, nil, err
	}
	if owner != ownerID {
		metrics.RecordOwnerInterest("invalid")
		return model.OwnerInterest{}, nil, model.ErrNotListingOwner
	}

	oi := model.OwnerInterest{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		RiderID:   riderID,
		ListingID: listingID,
		CreatedAt: l.now().UTC(),
	}
	if err := l.store.InsertOwnerInterest(ctx, oi); err != nil {
		metrics.RecordOwnerInterest(resultOf(err))
		if errors.Is(err, model.ErrConflict) {
			l.promote(ctx, riderID, listingID)
			return model.OwnerInterest{}, nil, model.ErrDuplicateInterest
		}
		return model.OwnerInterest{}, nil, fmt.Errorf("insert owner interest: %w", err)
	}
	metrics.RecordOwnerInterest("created")
	return oi, l.promote(ctx, riderID, listingID), nil
}

// promote runs TryPromote once a record for the pair exists. A failure is
// logged and yields no match; the record stands and a repeated like or
// interest retries the promotion.
func (l *Ledger) promote(ctx context.Context, riderID, listingID string) *model.MutualMatch {
	m, err := l.TryPromote(ctx, riderID, listingID)
	if err != nil {
		metrics.RecordPromotionSkipped("error")
		l.logger.Error(ctx, "match promotion failed",
			logger.String("rider_id", riderID),
			logger.String("listing_id", listingID),
			logger.Error(err),
		)
		return nil
	}
	return m
}

// TryPromote creates the mutual match for (riderID, listingID) when both the
// rider's like and the owner's interest exist. It returns nil when the pair
// is not reciprocal or a match already exists.
func (l *Ledger) TryPromote(ctx context.Context, riderID, listingID string) (*model.MutualMatch, error) {
	listing, err := l.catalog.Listing(ctx, listingID)
	if err != nil {
		return nil, err
	}
	horse, err := l.catalog.Horse(ctx, listing.HorseID)
	if err != nil {
		return nil, err
	}

	liked, err := l.store.HasLike(ctx, riderID, listingID)
	if err != nil {
		return nil, fmt.Errorf("check like: %w", err)
	}
	wanted, err := l.store.HasOwnerInterest(ctx, horse.OwnerID, riderID, listingID)
	if err != nil {
		return nil, fmt.Errorf("check owner interest: %w", err)
	}
	if !liked || !wanted {
		metrics.RecordPromotionSkipped("not_reciprocal")
		return nil, nil
	}

	score, err := l.score(ctx, riderID, listing, horse)
	if err != nil {
		return nil, err
	}
	m := model.MutualMatch{
		ID:        uuid.NewString(),
		RiderID:   riderID,
		ListingID: listingID,
		Score:     score,
		Strategy:  l.strategy.Name(),
		CreatedAt: l.now().UTC(),
	}
	inserted, err := l.store.InsertMatch(ctx, m)
	if err != nil {
		return nil, fmt.Errorf("insert match: %w", err)
	}
	if !inserted {
		metrics.RecordPromotionSkipped("exists")
		return nil, nil
	}
	metrics.RecordMatchCreated(m.Strategy)
	l.logger.Info(ctx, "mutual match created",
		logger.String("match_id", m.ID),
		logger.String("rider_id", riderID),
		logger.String("listing_id", listingID),
		logger.Float64("score", score),
	)
	return &m, nil
}

// Matches returns every match where userID is the rider or owns the
// listing, oldest first.
func (l *Ledger) Matches(ctx context.Context, userID string) ([]model.MutualMatch, error) {
	asRider, err := l.store.MatchesByRider(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load rider matches: %w", err)
	}
	owned, err := l.catalog.ListingsByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load owned listings: %w", err)
	}
	if len(owned) == 0 {
		return asRider, nil
	}
	ids := make([]string, len(owned))
	for i, o := range owned {
		ids[i] = o.ID
	}
	asOwner, err := l.store.MatchesByListings(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load owner matches: %w", err)
	}
	return mergeMatches(asRider, asOwner), nil
}

// Likes returns the likes userID has given.
func (l *Ledger) Likes(ctx context.Context, userID string) ([]model.Like, error) {
	likes, err := l.store.LikesByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load likes: %w", err)
	}
	return likes, nil
}

func (l *Ledger) listingOwner(ctx context.Context, listingID string) (string, error) {
	listing, err := l.catalog.Listing(ctx, listingID)
	if err != nil {
		return "", err
	}
	horse, err := l.catalog.Horse(ctx, listing.HorseID)
	if err != nil {
		return "", err
	}
	return horse.OwnerID, nil
}

func (l *Ledger) score(ctx context.Context, riderID string, listing *model.Listing, horse *model.Horse) (float64, error) {
	rider, err := l.catalog.RiderProfile(ctx, riderID)
	if errors.Is(err, model.ErrNotFound) {
		return neutralScore, nil
	}
	if err != nil {
		return 0, fmt.Errorf("load rider profile: %w", err)
	}
	owner, err := l.catalog.OwnerProfile(ctx, horse.OwnerID)
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		return 0, fmt.Errorf("load owner profile: %w", err)
	}

	c := eligibility.Candidate{Rider: rider, Owner: owner, Listing: listing, Horse: horse}
	if owner != nil {
		c.Distance = distance.Resolve(ctx, l.distance, rider.LocationCode, owner.LocationCode)
	}
	return l.strategy.Score(c).Total, nil
}

func mergeMatches(a, b []model.MutualMatch) []model.MutualMatch {
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]model.MutualMatch, 0, len(a)+len(b))
	for _, list := range [][]model.MutualMatch{a, b} {
		for _, m := range list {
			if _, ok := seen[m.ID]; ok {
				continue
			}
			seen[m.ID] = struct{}{}
			out = append(out, m)
		}
	}
	slices.SortFunc(out, func(x, y model.MutualMatch) int {
		if c := x.CreatedAt.Compare(y.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(x.ID, y.ID)
	})
	return out
}

func resultOf(err error) string {
	switch {
	case errors.Is(err, model.ErrNotFound):
		return "not_found"
	case errors.Is(err, model.ErrConflict):
		return "duplicate"
	case errors.Is(err, model.ErrInvalidInput):
		return "invalid"
	default:
		return "error"
	}
}
