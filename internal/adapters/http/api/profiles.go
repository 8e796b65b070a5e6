package api

import (
	"net/http"
	"time"

	"github.com/okian/paddock/internal/domain/model"
)

type riderProfileResponse struct {
	UserID                string              `json:"user_id"`
	DisplayName           string              `json:"display_name"`
	LocationCode          string              `json:"location_code"`
	MaxTravelDistanceKm   float64             `json:"max_travel_distance_km"`
	BudgetMinCents        int64               `json:"budget_min_cents"`
	BudgetMaxCents        int64               `json:"budget_max_cents"`
	Level                 string              `json:"level"`
	ExperienceYears       int                 `json:"experience_years"`
	DisciplinePreferences []string            `json:"discipline_preferences"`
	PersonalityTags       []string            `json:"personality_tags"`
	WillingTasks          []string            `json:"willing_tasks"`
	MaterialPreferences   map[string]bool     `json:"material_preferences"`
	InsuranceCoverage     bool                `json:"insurance_coverage"`
	AvailableDays         []string            `json:"available_days"`
	TimeBlocks            map[string][]string `json:"time_blocks"`
	DateOfBirth           *time.Time          `json:"date_of_birth,omitempty"`
}

func toRiderResponse(p *model.RiderProfile) riderProfileResponse {
	resp := riderProfileResponse{
		UserID:                p.UserID,
		DisplayName:           p.DisplayName,
		LocationCode:          p.LocationCode,
		MaxTravelDistanceKm:   p.MaxTravelDistanceKm,
		BudgetMinCents:        p.BudgetMinCents,
		BudgetMaxCents:        p.BudgetMaxCents,
		Level:                 p.Level,
		ExperienceYears:       p.ExperienceYears,
		DisciplinePreferences: p.DisciplinePreferences,
		PersonalityTags:       p.PersonalityTags,
		WillingTasks:          p.WillingTasks,
		MaterialPreferences:   p.MaterialPreferences,
		InsuranceCoverage:     p.InsuranceCoverage,
		AvailableDays:         p.AvailableDays,
	}
	if len(p.TimeBlocks) > 0 {
		resp.TimeBlocks = make(map[string][]string, len(p.TimeBlocks))
		for day, blocks := range p.TimeBlocks {
			resp.TimeBlocks[day] = blocks
		}
	}
	if !p.DateOfBirth.IsZero() {
		dob := p.DateOfBirth
		resp.DateOfBirth = &dob
	}
	return resp
}

type ownerProfileResponse struct {
	UserID             string   `json:"user_id"`
	DisplayName        string   `json:"display_name"`
	LocationCode       string   `json:"location_code"`
	VisibleRadiusKm    float64  `json:"visible_radius_km"`
	MinExperienceYears int      `json:"min_experience_years"`
	RequiredTasks      []string `json:"required_tasks"`
	InsuranceRequired  bool     `json:"insurance_required"`
	BitPolicy          string   `json:"bit_policy"`
	AvailableDays      []string `json:"available_days"`
	MinRiderAge        int      `json:"min_rider_age"`
	MaxRiderAge        int      `json:"max_rider_age"`
}

func toOwnerResponse(p *model.OwnerProfile) ownerProfileResponse {
	return ownerProfileResponse{
		UserID:             p.UserID,
		DisplayName:        p.DisplayName,
		LocationCode:       p.LocationCode,
		VisibleRadiusKm:    p.VisibleRadiusKm,
		MinExperienceYears: p.MinExperienceYears,
		RequiredTasks:      p.RequiredTasks,
		InsuranceRequired:  p.InsuranceRequired,
		BitPolicy:          p.BitPolicy,
		AvailableDays:      p.AvailableDays,
		MinRiderAge:        p.MinRiderAge,
		MaxRiderAge:        p.MaxRiderAge,
	}
}

// handlePatchRider handles PATCH /v1/profiles/rider.
func (s *Server) handlePatchRider(w http.ResponseWriter, r *http.Request) {
	const op = "api.patch_rider_profile"
	var patch model.RiderProfilePatch
	if err := decode(w, r, &patch); err != nil {
		s.fail(w, r, Wrap(op, err))
		return
	}
	p, err := s.deps.PatchRiderProfile(r.Context(), UserID(r.Context()), patch)
	if err != nil {
		s.fail(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, toRiderResponse(p))
}

// handlePatchOwner handles PATCH /v1/profiles/owner.
func (s *Server) handlePatchOwner(w http.ResponseWriter, r *http.Request) {
	const op = "api.patch_owner_profile"
	var patch model.OwnerProfilePatch
	if err := decode(w, r, &patch); err != nil {
		s.fail(w, r, Wrap(op, err))
		return
	}
	p, err := s.deps.PatchOwnerProfile(r.Context(), UserID(r.Context()), patch)
	if err != nil {
		s.fail(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, toOwnerResponse(p))
}
