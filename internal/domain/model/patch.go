package model

import "time"

// RiderProfilePatch carries the fields a caller wants to change. Nil means
// "leave as is"; a non-nil empty slice clears the field.
type RiderProfilePatch struct {
	DisplayName           *string             `json:"display_name,omitempty" validate:"omitempty,min=1,max=120"`
	LocationCode          *string             `json:"location_code,omitempty" validate:"omitempty,max=32"`
	MaxTravelDistanceKm   *float64            `json:"max_travel_distance_km,omitempty" validate:"omitempty,gte=0"`
	BudgetMinCents        *int64              `json:"budget_min_cents,omitempty" validate:"omitempty,gte=0"`
	BudgetMaxCents        *int64              `json:"budget_max_cents,omitempty" validate:"omitempty,gte=0"`
	Level                 *string             `json:"level,omitempty" validate:"omitempty,oneof=beginner intermediate advanced"`
	ExperienceYears       *int                `json:"experience_years,omitempty" validate:"omitempty,gte=0,lte=100"`
	DisciplinePreferences *[]string           `json:"discipline_preferences,omitempty"`
	PersonalityTags       *[]string           `json:"personality_tags,omitempty"`
	WillingTasks          *[]string           `json:"willing_tasks,omitempty"`
	MaterialPreferences   map[string]bool     `json:"material_preferences,omitempty"`
	InsuranceCoverage     *bool               `json:"insurance_coverage,omitempty"`
	AvailableDays         *[]string           `json:"available_days,omitempty"`
	TimeBlocks            map[string][]string `json:"time_blocks,omitempty"`
	DateOfBirth           *time.Time          `json:"date_of_birth,omitempty"`
}

// Apply merges the patch into p. MaterialPreferences and TimeBlocks merge
// key by key; an empty block list removes that day.
func (patch RiderProfilePatch) Apply(p *RiderProfile) {
	if patch.DisplayName != nil {
		p.DisplayName = *patch.DisplayName
	}
	if patch.LocationCode != nil {
		p.LocationCode = *patch.LocationCode
	}
	if patch.MaxTravelDistanceKm != nil {
		p.MaxTravelDistanceKm = *patch.MaxTravelDistanceKm
	}
	if patch.BudgetMinCents != nil {
		p.BudgetMinCents = *patch.BudgetMinCents
	}
	if patch.BudgetMaxCents != nil {
		p.BudgetMaxCents = *patch.BudgetMaxCents
	}
	if patch.Level != nil {
		p.Level = *patch.Level
	}
	if patch.ExperienceYears != nil {
		p.ExperienceYears = *patch.ExperienceYears
	}
	if patch.DisciplinePreferences != nil {
		p.DisciplinePreferences = Tags(*patch.DisciplinePreferences)
	}
	if patch.PersonalityTags != nil {
		p.PersonalityTags = Tags(*patch.PersonalityTags)
	}
	if patch.WillingTasks != nil {
		p.WillingTasks = Tags(*patch.WillingTasks)
	}
	if len(patch.MaterialPreferences) > 0 {
		if p.MaterialPreferences == nil {
			p.MaterialPreferences = make(map[string]bool, len(patch.MaterialPreferences))
		}
		for k, v := range patch.MaterialPreferences {
			p.MaterialPreferences[k] = v
		}
	}
	if patch.InsuranceCoverage != nil {
		p.InsuranceCoverage = *patch.InsuranceCoverage
	}
	if patch.AvailableDays != nil {
		p.AvailableDays = Tags(*patch.AvailableDays)
	}
	if len(patch.TimeBlocks) > 0 {
		if p.TimeBlocks == nil {
			p.TimeBlocks = make(Schedule, len(patch.TimeBlocks))
		}
		for day, blocks := range patch.TimeBlocks {
			if len(blocks) == 0 {
				delete(p.TimeBlocks, day)
				continue
			}
			p.TimeBlocks[day] = Tags(blocks)
		}
	}
	if patch.DateOfBirth != nil {
		p.DateOfBirth = *patch.DateOfBirth
	}
}

// OwnerProfilePatch is the owner counterpart of RiderProfilePatch.
type OwnerProfilePatch struct {
	DisplayName        *string   `json:"display_name,omitempty" validate:"omitempty,min=1,max=120"`
	LocationCode       *string   `json:"location_code,omitempty" validate:"omitempty,max=32"`
	VisibleRadiusKm    *float64  `json:"visible_radius_km,omitempty" validate:"omitempty,gte=0"`
	MinExperienceYears *int      `json:"min_experience_years,omitempty" validate:"omitempty,gte=0,lte=100"`
	RequiredTasks      *[]string `json:"required_tasks,omitempty"`
	InsuranceRequired  *bool     `json:"insurance_required,omitempty"`
	BitPolicy          *string   `json:"bit_policy,omitempty" validate:"omitempty,max=32"`
	AvailableDays      *[]string `json:"available_days,omitempty"`
	MinRiderAge        *int      `json:"min_rider_age,omitempty" validate:"omitempty,gte=0,lte=120"`
	MaxRiderAge        *int      `json:"max_rider_age,omitempty" validate:"omitempty,gte=0,lte=120"`
}

// Apply merges the patch into p.
func (patch OwnerProfilePatch) Apply(p *OwnerProfile) {
	if patch.DisplayName != nil {
		p.DisplayName = *patch.DisplayName
	}
	if patch.LocationCode != nil {
		p.LocationCode = *patch.LocationCode
	}
	if patch.VisibleRadiusKm != nil {
		p.VisibleRadiusKm = *patch.VisibleRadiusKm
	}
	if patch.MinExperienceYears != nil {
		p.MinExperienceYears = *patch.MinExperienceYears
	}
	if patch.RequiredTasks != nil {
		p.RequiredTasks = Tags(*patch.RequiredTasks)
	}
	if patch.InsuranceRequired != nil {
		p.InsuranceRequired = *patch.InsuranceRequired
	}
	if patch.BitPolicy != nil {
		p.BitPolicy = *patch.BitPolicy
	}
	if patch.AvailableDays != nil {
		p.AvailableDays = Tags(*patch.AvailableDays)
	}
	if patch.MinRiderAge != nil {
		p.MinRiderAge = *patch.MinRiderAge
	}
	if patch.MaxRiderAge != nil {
		p.MaxRiderAge = *patch.MaxRiderAge
	}
}
