// Package repository defines the catalog and ledger store interfaces and
// provides the in-memory implementation.
package repository

import (
	"context"
	"time"

	"github.com/okian/paddock/internal/domain/model"
	"github.com/okian/paddock/pkg/metrics"
)

// Catalog provides read/write access to profiles, horses and listings.
type Catalog interface {
	// RiderProfile returns model.ErrRiderProfileNotFound when absent.
	RiderProfile(ctx context.Context, userID string) (*model.RiderProfile, error)
	// OwnerProfile returns model.ErrOwnerProfileNotFound when absent.
	OwnerProfile(ctx context.Context, userID string) (*model.OwnerProfile, error)
	// Horse returns model.ErrHorseNotFound when absent.
	Horse(ctx context.Context, id string) (*model.Horse, error)
	// Listing returns model.ErrListingNotFound when absent.
	Listing(ctx context.Context, id string) (*model.Listing, error)
	// ActiveListings returns every active listing ordered by id.
	ActiveListings(ctx context.Context) ([]model.Listing, error)
	// ListingsByOwner returns the listings of every horse ownerID owns.
	ListingsByOwner(ctx context.Context, ownerID string) ([]model.Listing, error)

	PutRiderProfile(ctx context.Context, p model.RiderProfile) error
	PutOwnerProfile(ctx context.Context, p model.OwnerProfile) error
	PutHorse(ctx context.Context, h model.Horse) error
	PutListing(ctx context.Context, l model.Listing) error

	// PatchRiderProfile applies patch to the stored profile, creating it
	// when absent, and returns the result.
	PatchRiderProfile(ctx context.Context, userID string, patch model.RiderProfilePatch) (*model.RiderProfile, error)
	// PatchOwnerProfile is the owner counterpart of PatchRiderProfile.
	PatchOwnerProfile(ctx context.Context, userID string, patch model.OwnerProfilePatch) (*model.OwnerProfile, error)
}

// LedgerStore persists likes, owner interests and mutual matches. Inserts
// are atomic insert-if-absent.
type LedgerStore interface {
	// InsertLike returns an error wrapping model.ErrConflict when the
	// (user, listing) like exists.
	InsertLike(ctx context.Context, l model.Like) error
	// InsertOwnerInterest returns an error wrapping model.ErrConflict when
	// the (owner, rider, listing) interest exists.
	InsertOwnerInterest(ctx context.Context, oi model.OwnerInterest) error
	// InsertMatch reports false when the (rider, listing) match exists.
	InsertMatch(ctx context.Context, m model.MutualMatch) (bool, error)

	HasLike(ctx context.Context, userID, listingID string) (bool, error)
	HasOwnerInterest(ctx context.Context, ownerID, riderID, listingID string) (bool, error)
	LikesByUser(ctx context.Context, userID string) ([]model.Like, error)
	MatchesByRider(ctx context.Context, riderID string) ([]model.MutualMatch, error)
	MatchesByListings(ctx context.Context, listingIDs []string) ([]model.MutualMatch, error)
}

// Counts summarises store contents for the stats endpoint.
type Counts struct {
	RiderProfiles  int `json:"rider_profiles" db:"rider_profiles"`
	OwnerProfiles  int `json:"owner_profiles" db:"owner_profiles"`
	Horses         int `json:"horses" db:"horses"`
	Listings       int `json:"listings" db:"listings"`
	ActiveListings int `json:"active_listings" db:"active_listings"`
	Likes          int `json:"likes" db:"likes"`
	OwnerInterests int `json:"owner_interests" db:"owner_interests"`
	Matches        int `json:"matches" db:"matches"`
}

// Store is the full persistence surface of the engine.
type Store interface {
	Catalog
	LedgerStore
	Counts(ctx context.Context) (Counts, error)
	Close() error
}

// Track starts timing a store operation; call the returned func when done.
func Track(store, op string) func() {
	start := time.Now()
	return func() {
		metrics.RecordStoreLatency(store, op, float64(time.Since(start).Microseconds())/1000.0)
	}
}
