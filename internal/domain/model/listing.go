package model

import (
	"strings"
	"time"
)

// Horse energy, canonical vocabulary.
const (
	EnergyCalm      = "calm"
	EnergyModerate  = "moderate"
	EnergyEnergetic = "energetic"
)

// NormalizeEnergy maps the low/medium/high vocabulary used by horse records
// onto calm/moderate/energetic. Unknown values are returned lower-cased.
func NormalizeEnergy(e string) string {
	switch v := strings.ToLower(strings.TrimSpace(e)); v {
	case "low", EnergyCalm:
		return EnergyCalm
	case "med", "medium", EnergyModerate:
		return EnergyModerate
	case "high", EnergyEnergetic:
		return EnergyEnergetic
	default:
		return v
	}
}

// Contribution types.
const (
	ContributionMonthly    = "monthly"
	ContributionPerSession = "per_session"
)

// Horse is the animal a listing offers.
type Horse struct {
	ID             string
	OwnerID        string
	Name           string
	Energy         string
	Disciplines    Tags
	Temperament    Tags
	BitlessCapable bool
	NeedsTransport bool
}

// Listing is the unit a rider likes and matches against.
type Listing struct {
	ID                   string
	HorseID              string
	ContributionMinCents int64
	ContributionType     string
	ExpectedTasks        Tags
	Availability         Schedule
	Active               bool
	CreatedAt            time.Time
}
