// Package model contains domain models passed between layers.
package model

import "time"

// Experience levels, lowest first.
const (
	LevelBeginner     = "beginner"
	LevelIntermediate = "intermediate"
	LevelAdvanced     = "advanced"
)

// Material preference keys understood by the scorers.
const (
	MaterialBitless    = "bitless_ok"
	MaterialCanTrailer = "can_trailer"
)

// BitPolicyBitless is the owner bit policy that accepts bitless riding.
const BitPolicyBitless = "bitless_ok"

// RiderProfile is the rider side of a candidate. Zero numeric limits mean
// "not set" and disable the corresponding rule.
type RiderProfile struct {
	UserID                string
	DisplayName           string
	LocationCode          string
	MaxTravelDistanceKm   float64
	BudgetMinCents        int64
	BudgetMaxCents        int64
	Level                 string
	ExperienceYears       int
	DisciplinePreferences Tags
	PersonalityTags       Tags
	WillingTasks          Tags
	MaterialPreferences   map[string]bool
	InsuranceCoverage     bool
	AvailableDays         Tags
	TimeBlocks            Schedule
	DateOfBirth           time.Time
}

// Wants reports whether the rider set the material preference flag.
func (r *RiderProfile) Wants(key string) bool {
	return r.MaterialPreferences[key]
}

// AgeAt returns the rider's age in whole years at t, or -1 when the date of
// birth is unknown.
func (r *RiderProfile) AgeAt(t time.Time) int {
	if r.DateOfBirth.IsZero() {
		return -1
	}
	dob := r.DateOfBirth
	age := t.Year() - dob.Year()
	if t.Month() < dob.Month() || (t.Month() == dob.Month() && t.Day() < dob.Day()) {
		age--
	}
	return age
}

// OwnerProfile is the owner side of a candidate.
type OwnerProfile struct {
	UserID             string
	DisplayName        string
	LocationCode       string
	VisibleRadiusKm    float64
	MinExperienceYears int
	RequiredTasks      Tags
	InsuranceRequired  bool
	BitPolicy          string
	AvailableDays      Tags
	MinRiderAge        int
	MaxRiderAge        int
}
