package model

import "time"

// Like records one-directional rider interest in a listing.
type Like struct {
	ID         string    `json:"id"`
	FromUserID string    `json:"from_user_id"`
	ListingID  string    `json:"listing_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// OwnerInterest records an owner's interest in a specific rider for one of
// the owner's listings. It is the reciprocal half of a mutual match.
type OwnerInterest struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	RiderID   string    `json:"rider_id"`
	ListingID string    `json:"listing_id"`
	CreatedAt time.Time `json:"created_at"`
}

// MutualMatch is created once per (rider, listing) pair when both sides have
// expressed interest. PaidChat belongs to the payment collaborator.
type MutualMatch struct {
	ID        string    `json:"id"`
	RiderID   string    `json:"rider_id"`
	ListingID string    `json:"listing_id"`
	Score     float64   `json:"score"`
	Strategy  string    `json:"strategy"`
	PaidChat  bool      `json:"paid_chat"`
	CreatedAt time.Time `json:"created_at"`
}
