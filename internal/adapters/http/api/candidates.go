package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/okian/paddock/internal/domain/distance"
	"github.com/okian/paddock/internal/domain/ranking"
)

type contribution struct {
	MinCents int64  `json:"min_cents"`
	Type     string `json:"type"`
}

type candidateResponse struct {
	ListingID    string       `json:"listing_id"`
	HorseName    string       `json:"horse_name"`
	OwnerName    string       `json:"owner_name"`
	Location     string       `json:"location"`
	Contribution contribution `json:"contribution"`
	MatchScore   float64      `json:"match_score"`
	DistanceKm   *float64     `json:"distance_km"`
}

type scoreResponse struct {
	ListingID  string             `json:"listing_id"`
	Eligible   bool               `json:"eligible"`
	Rule       string             `json:"rule,omitempty"`
	Reason     string             `json:"reason,omitempty"`
	DistanceKm *float64           `json:"distance_km"`
	Strategy   string             `json:"strategy"`
	Score      float64            `json:"score"`
	Components map[string]float64 `json:"components,omitempty"`
}

func distanceKm(d distance.Result) *float64 {
	if !d.Known {
		return nil
	}
	km := round2(d.Km)
	return &km
}

func toCandidate(r ranking.Ranked) candidateResponse {
	return candidateResponse{
		ListingID: r.Listing.ID,
		HorseName: r.Horse.Name,
		OwnerName: r.Owner.DisplayName,
		Location:  r.Owner.LocationCode,
		Contribution: contribution{
			MinCents: r.Listing.ContributionMinCents,
			Type:     r.Listing.ContributionType,
		},
		MatchScore: round2(r.Score.Total),
		DistanceKm: distanceKm(r.Distance),
	}
}

// handleCandidates handles GET /v1/candidates?limit=N.
func (s *Server) handleCandidates(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_candidates"
	limit := s.defaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > s.maxLimit {
			s.fail(w, r, WrapKind(op, ErrBadRequest,
				fmt.Errorf("limit must be an integer in 1..%d", s.maxLimit)))
			return
		}
		limit = n
	}

	ranked, err := s.deps.Rank(r.Context(), UserID(r.Context()), limit)
	if err != nil {
		s.fail(w, r, Wrap(op, err))
		return
	}
	out := make([]candidateResponse, 0, len(ranked))
	for _, c := range ranked {
		out = append(out, toCandidate(c))
	}
	writeJSON(w, http.StatusOK, out)
}

// handleCandidateScore handles GET /v1/candidates/{listing_id}/score.
func (s *Server) handleCandidateScore(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_candidate_score"
	listingID := r.PathValue("listing_id")
	if listingID == "" {
		s.fail(w, r, NewKind(op, ErrBadRequest))
		return
	}

	exp, err := s.deps.Explain(r.Context(), UserID(r.Context()), listingID)
	if err != nil {
		s.fail(w, r, Wrap(op, err))
		return
	}
	resp := scoreResponse{
		ListingID:  exp.ListingID,
		Eligible:   exp.Verdict.Passed,
		Rule:       exp.Verdict.Rule,
		Reason:     exp.Verdict.Reason,
		DistanceKm: distanceKm(exp.Distance),
		Strategy:   exp.Score.Strategy,
		Score:      round2(exp.Score.Total),
	}
	if exp.Verdict.Passed {
		resp.Components = make(map[string]float64, len(exp.Score.Components))
		for k, v := range exp.Score.Components {
			resp.Components[k] = round2(v)
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
