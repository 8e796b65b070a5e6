package api

import (
	"net/http"

	"github.com/okian/paddock/internal/domain/model"
)

type likeRequest struct {
	ListingID string `json:"listing_id" validate:"required"`
}

type likeResponse struct {
	Like  model.Like         `json:"like"`
	Match *model.MutualMatch `json:"match,omitempty"`
}

type ownerInterestRequest struct {
	RiderID   string `json:"rider_id" validate:"required"`
	ListingID string `json:"listing_id" validate:"required"`
}

type ownerInterestResponse struct {
	Interest model.OwnerInterest `json:"interest"`
	Match    *model.MutualMatch  `json:"match,omitempty"`
}

// handlePostLike handles POST /v1/likes.
func (s *Server) handlePostLike(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_like"
	user := UserID(r.Context())
	if !s.likeLimiter.Allow(user) {
		s.fail(w, r, NewKind(op, ErrRateLimited))
		return
	}

	var req likeRequest
	if err := decode(w, r, &req); err != nil {
		s.fail(w, r, Wrap(op, err))
		return
	}
	like, match, err := s.deps.RegisterLike(r.Context(), user, req.ListingID)
	if err != nil {
		s.fail(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusCreated, likeResponse{Like: like, Match: match})
}

// handleListLikes handles GET /v1/likes.
func (s *Server) handleListLikes(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_likes"
	likes, err := s.deps.Likes(r.Context(), UserID(r.Context()))
	if err != nil {
		s.fail(w, r, Wrap(op, err))
		return
	}
	if likes == nil {
		likes = []model.Like{}
	}
	writeJSON(w, http.StatusOK, likes)
}

// handlePostOwnerInterest handles POST /v1/owner-interests. The caller is
// the listing owner.
func (s *Server) handlePostOwnerInterest(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_owner_interest"
	var req ownerInterestRequest
	if err := decode(w, r, &req); err != nil {
		s.fail(w, r, Wrap(op, err))
		return
	}
	oi, match, err := s.deps.RegisterOwnerInterest(r.Context(), UserID(r.Context()), req.RiderID, req.ListingID)
	if err != nil {
		s.fail(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusCreated, ownerInterestResponse{Interest: oi, Match: match})
}

// handleMatches handles GET /v1/matches.
func (s *Server) handleMatches(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_matches"
	matches, err := s.deps.Matches(r.Context(), UserID(r.Context()))
	if err != nil {
		s.fail(w, r, Wrap(op, err))
		return
	}
	if matches == nil {
		matches = []model.MutualMatch{}
	}
	writeJSON(w, http.StatusOK, matches)
}
