package repository

import (
	"context"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/okian/paddock/internal/domain/model"
)

const memoryLabel = "memory"

// MemoryStore is an in-memory Store. A single RWMutex guards all state, so
// every insert-if-absent is atomic. Records are copied on the way in and out.
type MemoryStore struct {
	mu sync.RWMutex

	riders   map[string]model.RiderProfile
	owners   map[string]model.OwnerProfile
	horses   map[string]model.Horse
	listings map[string]model.Listing

	likes     []model.Like
	likeKeys  map[string]struct{}
	interests map[string]model.OwnerInterest
	matches   []model.MutualMatch
	matchKeys map[string]struct{}
}

// NewMemoryStore constructs an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		riders:    make(map[string]model.RiderProfile),
		owners:    make(map[string]model.OwnerProfile),
		horses:    make(map[string]model.Horse),
		listings:  make(map[string]model.Listing),
		likeKeys:  make(map[string]struct{}),
		interests: make(map[string]model.OwnerInterest),
		matchKeys: make(map[string]struct{}),
	}
}

func key(parts ...string) string { return strings.Join(parts, "\x00") }

// RiderProfile implements Catalog.
func (s *MemoryStore) RiderProfile(_ context.Context, userID string) (*model.RiderProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.riders[userID]
	if !ok {
		return nil, model.ErrRiderProfileNotFound
	}
	p = cloneRider(p)
	return &p, nil
}

// OwnerProfile implements Catalog.
func (s *MemoryStore) OwnerProfile(_ context.Context, userID string) (*model.OwnerProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.owners[userID]
	if !ok {
		return nil, model.ErrOwnerProfileNotFound
	}
	p = cloneOwner(p)
	return &p, nil
}

// Horse implements Catalog.
func (s *MemoryStore) Horse(_ context.Context, id string) (*model.Horse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.horses[id]
	if !ok {
		return nil, model.ErrHorseNotFound
	}
	h = cloneHorse(h)
	return &h, nil
}

// Listing implements Catalog.
func (s *MemoryStore) Listing(_ context.Context, id string) (*model.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.listings[id]
	if !ok {
		return nil, model.ErrListingNotFound
	}
	l = cloneListing(l)
	return &l, nil
}

// ActiveListings implements Catalog.
func (s *MemoryStore) ActiveListings(_ context.Context) ([]model.Listing, error) {
	defer Track(memoryLabel, "active_listings")()
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Listing, 0, len(s.listings))
	for _, l := range s.listings {
		if l.Active {
			out = append(out, cloneListing(l))
		}
	}
	slices.SortFunc(out, func(a, b model.Listing) int { return strings.Compare(a.ID, b.ID) })
	return out, nil
}

// ListingsByOwner implements Catalog.
func (s *MemoryStore) ListingsByOwner(_ context.Context, ownerID string) ([]model.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Listing
	for _, l := range s.listings {
		if h, ok := s.horses[l.HorseID]; ok && h.OwnerID == ownerID {
			out = append(out, cloneListing(l))
		}
	}
	slices.SortFunc(out, func(a, b model.Listing) int { return strings.Compare(a.ID, b.ID) })
	return out, nil
}

// PutRiderProfile implements Catalog.
func (s *MemoryStore) PutRiderProfile(_ context.Context, p model.RiderProfile) error {
	if p.UserID == "" {
		return ErrMissingID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.riders[p.UserID] = cloneRider(p)
	return nil
}

// PutOwnerProfile implements Catalog.
func (s *MemoryStore) PutOwnerProfile(_ context.Context, p model.OwnerProfile) error {
	if p.UserID == "" {
		return ErrMissingID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.owners[p.UserID] = cloneOwner(p)
	return nil
}

// PutHorse implements Catalog.
func (s *MemoryStore) PutHorse(_ context.Context, h model.Horse) error {
	if h.ID == "" {
		return ErrMissingID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.horses[h.ID] = cloneHorse(h)
	return nil
}

// PutListing implements Catalog.
func (s *MemoryStore) PutListing(_ context.Context, l model.Listing) error {
	if l.ID == "" {
		return ErrMissingID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listings[l.ID] = cloneListing(l)
	return nil
}

// PatchRiderProfile implements Catalog.
func (s *MemoryStore) PatchRiderProfile(_ context.Context, userID string, patch model.RiderProfilePatch) (*model.RiderProfile, error) {
	if userID == "" {
		return nil, ErrMissingID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.riders[userID]
	if ok {
		p = cloneRider(p)
	} else {
		p = model.RiderProfile{UserID: userID}
	}
	patch.Apply(&p)
	s.riders[userID] = p
	out := cloneRider(p)
	return &out, nil
}

// PatchOwnerProfile implements Catalog.
func (s *MemoryStore) PatchOwnerProfile(_ context.Context, userID string, patch model.OwnerProfilePatch) (*model.OwnerProfile, error) {
	if userID == "" {
		return nil, ErrMissingID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.owners[userID]
	if ok {
		p = cloneOwner(p)
	} else {
		p = model.OwnerProfile{UserID: userID}
	}
	patch.Apply(&p)
	s.owners[userID] = p
	out := cloneOwner(p)
	return &out, nil
}

// InsertLike implements LedgerStore.
func (s *MemoryStore) InsertLike(_ context.Context, l model.Like) error {
	defer Track(memoryLabel, "insert_like")()
	k := key(l.FromUserID, l.ListingID)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.likeKeys[k]; ok {
		return model.ErrDuplicateLike
	}
	s.likeKeys[k] = struct{}{}
	s.likes = append(s.likes, l)
	return nil
}

// InsertOwnerInterest implements LedgerStore.
func (s *MemoryStore) InsertOwnerInterest(_ context.Context, oi model.OwnerInterest) error {
	defer Track(memoryLabel, "insert_owner_interest")()
	k := key(oi.OwnerID, oi.RiderID, oi.ListingID)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.interests[k]; ok {
		return model.ErrDuplicateInterest
	}
	s.interests[k] = oi
	return nil
}

// InsertMatch implements LedgerStore.
func (s *MemoryStore) InsertMatch(_ context.Context, m model.MutualMatch) (bool, error) {
	defer Track(memoryLabel, "insert_match")()
	k := key(m.RiderID, m.ListingID)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.matchKeys[k]; ok {
		return false, nil
	}
	s.matchKeys[k] = struct{}{}
	s.matches = append(s.matches, m)
	return true, nil
}

// HasLike implements LedgerStore.
func (s *MemoryStore) HasLike(_ context.Context, userID, listingID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.likeKeys[key(userID, listingID)]
	return ok, nil
}

// HasOwnerInterest implements LedgerStore.
func (s *MemoryStore) HasOwnerInterest(_ context.Context, ownerID, riderID, listingID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.interests[key(ownerID, riderID, listingID)]
	return ok, nil
}

// LikesByUser implements LedgerStore.
func (s *MemoryStore) LikesByUser(_ context.Context, userID string) ([]model.Like, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Like
	for _, l := range s.likes {
		if l.FromUserID == userID {
			out = append(out, l)
		}
	}
	return out, nil
}

// MatchesByRider implements LedgerStore.
func (s *MemoryStore) MatchesByRider(_ context.Context, riderID string) ([]model.MutualMatch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.MutualMatch
	for _, m := range s.matches {
		if m.RiderID == riderID {
			out = append(out, m)
		}
	}
	return out, nil
}

// MatchesByListings implements LedgerStore.
func (s *MemoryStore) MatchesByListings(_ context.Context, listingIDs []string) ([]model.MutualMatch, error) {
	want := make(map[string]struct{}, len(listingIDs))
	for _, id := range listingIDs {
		want[id] = struct{}{}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.MutualMatch
	for _, m := range s.matches {
		if _, ok := want[m.ListingID]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

// Counts implements Store.
func (s *MemoryStore) Counts(_ context.Context) (Counts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	active := 0
	for _, l := range s.listings {
		if l.Active {
			active++
		}
	}
	return Counts{
		RiderProfiles:  len(s.riders),
		OwnerProfiles:  len(s.owners),
		Horses:         len(s.horses),
		Listings:       len(s.listings),
		ActiveListings: active,
		Likes:          len(s.likes),
		OwnerInterests: len(s.interests),
		Matches:        len(s.matches),
	}, nil
}

// Close implements Store. It is a no-op.
func (s *MemoryStore) Close() error { return nil }

func cloneTags(t model.Tags) model.Tags {
	if t == nil {
		return nil
	}
	return slices.Clone(t)
}

func cloneSchedule(s model.Schedule) model.Schedule {
	if s == nil {
		return nil
	}
	out := make(model.Schedule, len(s))
	for day, blocks := range s {
		out[day] = cloneTags(blocks)
	}
	return out
}

func cloneRider(p model.RiderProfile) model.RiderProfile {
	p.DisciplinePreferences = cloneTags(p.DisciplinePreferences)
	p.PersonalityTags = cloneTags(p.PersonalityTags)
	p.WillingTasks = cloneTags(p.WillingTasks)
	p.AvailableDays = cloneTags(p.AvailableDays)
	p.MaterialPreferences = maps.Clone(p.MaterialPreferences)
	p.TimeBlocks = cloneSchedule(p.TimeBlocks)
	return p
}

func cloneOwner(p model.OwnerProfile) model.OwnerProfile {
	p.RequiredTasks = cloneTags(p.RequiredTasks)
	p.AvailableDays = cloneTags(p.AvailableDays)
	return p
}

func cloneHorse(h model.Horse) model.Horse {
	h.Disciplines = cloneTags(h.Disciplines)
	h.Temperament = cloneTags(h.Temperament)
	return h
}

func cloneListing(l model.Listing) model.Listing {
	l.ExpectedTasks = cloneTags(l.ExpectedTasks)
	l.Availability = cloneSchedule(l.Availability)
	return l
}

var _ Store = (*MemoryStore)(nil)
