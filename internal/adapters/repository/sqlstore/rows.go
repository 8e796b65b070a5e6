package sqlstore

import "github.com/okian/paddock/internal/domain/model"

type riderRow struct {
	UserID          string                      `db:"user_id"`
	DisplayName     string                      `db:"display_name"`
	LocationCode    string                      `db:"location_code"`
	MaxTravelKm     float64                     `db:"max_travel_km"`
	BudgetMinCents  int64                       `db:"budget_min_cents"`
	BudgetMaxCents  int64                       `db:"budget_max_cents"`
	Level           string                      `db:"level"`
	ExperienceYears int                         `db:"experience_years"`
	Disciplines     jsonColumn[model.Tags]      `db:"disciplines"`
	Personality     jsonColumn[model.Tags]      `db:"personality"`
	WillingTasks    jsonColumn[model.Tags]      `db:"willing_tasks"`
	Materials       jsonColumn[map[string]bool] `db:"materials"`
	Insurance       bool                        `db:"insurance"`
	AvailableDays   jsonColumn[model.Tags]      `db:"available_days"`
	TimeBlocks      jsonColumn[model.Schedule]  `db:"time_blocks"`
	DateOfBirth     int64                       `db:"date_of_birth"`
}

var riderCols = []string{
	"user_id", "display_name", "location_code", "max_travel_km",
	"budget_min_cents", "budget_max_cents", "level", "experience_years",
	"disciplines", "personality", "willing_tasks", "materials", "insurance",
	"available_days", "time_blocks", "date_of_birth",
}

func riderValues(p model.RiderProfile) []any {
	return []any{
		p.UserID, p.DisplayName, p.LocationCode, p.MaxTravelDistanceKm,
		p.BudgetMinCents, p.BudgetMaxCents, p.Level, p.ExperienceYears,
		col(p.DisciplinePreferences), col(p.PersonalityTags), col(p.WillingTasks),
		col(p.MaterialPreferences), p.InsuranceCoverage,
		col(p.AvailableDays), col(p.TimeBlocks), toNanos(p.DateOfBirth),
	}
}

func (r riderRow) model() model.RiderProfile {
	return model.RiderProfile{
		UserID:                r.UserID,
		DisplayName:           r.DisplayName,
		LocationCode:          r.LocationCode,
		MaxTravelDistanceKm:   r.MaxTravelKm,
		BudgetMinCents:        r.BudgetMinCents,
		BudgetMaxCents:        r.BudgetMaxCents,
		Level:                 r.Level,
		ExperienceYears:       r.ExperienceYears,
		DisciplinePreferences: r.Disciplines.Data,
		PersonalityTags:       r.Personality.Data,
		WillingTasks:          r.WillingTasks.Data,
		MaterialPreferences:   r.Materials.Data,
		InsuranceCoverage:     r.Insurance,
		AvailableDays:         r.AvailableDays.Data,
		TimeBlocks:            r.TimeBlocks.Data,
		DateOfBirth:           fromNanos(r.DateOfBirth),
	}
}

type ownerRow struct {
	UserID             string                 `db:"user_id"`
	DisplayName        string                 `db:"display_name"`
	LocationCode       string                 `db:"location_code"`
	VisibleRadiusKm    float64                `db:"visible_radius_km"`
	MinExperienceYears int                    `db:"min_experience_years"`
	RequiredTasks      jsonColumn[model.Tags] `db:"required_tasks"`
	InsuranceRequired  bool                   `db:"insurance_required"`
	BitPolicy          string                 `db:"bit_policy"`
	AvailableDays      jsonColumn[model.Tags] `db:"available_days"`
	MinRiderAge        int                    `db:"min_rider_age"`
	MaxRiderAge        int                    `db:"max_rider_age"`
}

var ownerCols = []string{
	"user_id", "display_name", "location_code", "visible_radius_km",
	"min_experience_years", "required_tasks", "insurance_required",
	"bit_policy", "available_days", "min_rider_age", "max_rider_age",
}

func ownerValues(p model.OwnerProfile) []any {
	return []any{
		p.UserID, p.DisplayName, p.LocationCode, p.VisibleRadiusKm,
		p.MinExperienceYears, col(p.RequiredTasks), p.InsuranceRequired,
		p.BitPolicy, col(p.AvailableDays), p.MinRiderAge, p.MaxRiderAge,
	}
}

func (r ownerRow) model() model.OwnerProfile {
	return model.OwnerProfile{
		UserID:             r.UserID,
		DisplayName:        r.DisplayName,
		LocationCode:       r.LocationCode,
		VisibleRadiusKm:    r.VisibleRadiusKm,
		MinExperienceYears: r.MinExperienceYears,
		RequiredTasks:      r.RequiredTasks.Data,
		InsuranceRequired:  r.InsuranceRequired,
		BitPolicy:          r.BitPolicy,
		AvailableDays:      r.AvailableDays.Data,
		MinRiderAge:        r.MinRiderAge,
		MaxRiderAge:        r.MaxRiderAge,
	}
}

type horseRow struct {
	ID             string                 `db:"id"`
	OwnerID        string                 `db:"owner_id"`
	Name           string                 `db:"name"`
	Energy         string                 `db:"energy"`
	Disciplines    jsonColumn[model.Tags] `db:"disciplines"`
	Temperament    jsonColumn[model.Tags] `db:"temperament"`
	BitlessCapable bool                   `db:"bitless_capable"`
	NeedsTransport bool                   `db:"needs_transport"`
}

var horseCols = []string{
	"id", "owner_id", "name", "energy", "disciplines", "temperament",
	"bitless_capable", "needs_transport",
}

func horseValues(h model.Horse) []any {
	return []any{
		h.ID, h.OwnerID, h.Name, h.Energy, col(h.Disciplines), col(h.Temperament),
		h.BitlessCapable, h.NeedsTransport,
	}
}

func (r horseRow) model() model.Horse {
	return model.Horse{
		ID:             r.ID,
		OwnerID:        r.OwnerID,
		Name:           r.Name,
		Energy:         r.Energy,
		Disciplines:    r.Disciplines.Data,
		Temperament:    r.Temperament.Data,
		BitlessCapable: r.BitlessCapable,
		NeedsTransport: r.NeedsTransport,
	}
}

type listingRow struct {
	ID                   string                     `db:"id"`
	HorseID              string                     `db:"horse_id"`
	ContributionMinCents int64                      `db:"contribution_min_cents"`
	ContributionType     string                     `db:"contribution_type"`
	ExpectedTasks        jsonColumn[model.Tags]     `db:"expected_tasks"`
	Availability         jsonColumn[model.Schedule] `db:"availability"`
	Active               bool                       `db:"active"`
	CreatedAt            int64                      `db:"created_at"`
}

var listingCols = []string{
	"id", "horse_id", "contribution_min_cents", "contribution_type",
	"expected_tasks", "availability", "active", "created_at",
}

func listingValues(l model.Listing) []any {
	return []any{
		l.ID, l.HorseID, l.ContributionMinCents, l.ContributionType,
		col(l.ExpectedTasks), col(l.Availability), l.Active, toNanos(l.CreatedAt),
	}
}

func (r listingRow) model() model.Listing {
	return model.Listing{
		ID:                   r.ID,
		HorseID:              r.HorseID,
		ContributionMinCents: r.ContributionMinCents,
		ContributionType:     r.ContributionType,
		ExpectedTasks:        r.ExpectedTasks.Data,
		Availability:         r.Availability.Data,
		Active:               r.Active,
		CreatedAt:            fromNanos(r.CreatedAt),
	}
}

type likeRow struct {
	ID         string `db:"id"`
	FromUserID string `db:"from_user_id"`
	ListingID  string `db:"listing_id"`
	CreatedAt  int64  `db:"created_at"`
}

func (r likeRow) model() model.Like {
	return model.Like{ID: r.ID, FromUserID: r.FromUserID, ListingID: r.ListingID, CreatedAt: fromNanos(r.CreatedAt)}
}

type matchRow struct {
	ID        string  `db:"id"`
	RiderID   string  `db:"rider_id"`
	ListingID string  `db:"listing_id"`
	Score     float64 `db:"score"`
	Strategy  string  `db:"strategy"`
	PaidChat  bool    `db:"paid_chat"`
	CreatedAt int64   `db:"created_at"`
}

var matchCols = []string{"id", "rider_id", "listing_id", "score", "strategy", "paid_chat", "created_at"}

func (r matchRow) model() model.MutualMatch {
	return model.MutualMatch{
		ID:        r.ID,
		RiderID:   r.RiderID,
		ListingID: r.ListingID,
		Score:     r.Score,
		Strategy:  r.Strategy,
		PaidChat:  r.PaidChat,
		CreatedAt: fromNanos(r.CreatedAt),
	}
}
