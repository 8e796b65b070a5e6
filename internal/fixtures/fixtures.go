// Package fixtures loads catalog seed data (profiles, horses, listings) from
// YAML and writes it into a repository catalog.
package fixtures

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/okian/paddock/internal/adapters/repository"
	"github.com/okian/paddock/internal/domain/model"
)

// Rider is the YAML shape of a rider profile.
type Rider struct {
	UserID              string              `koanf:"user_id"`
	DisplayName         string              `koanf:"display_name"`
	LocationCode        string              `koanf:"location_code"`
	MaxTravelDistanceKm float64             `koanf:"max_travel_distance_km"`
	BudgetMinCents      int64               `koanf:"budget_min_cents"`
	BudgetMaxCents      int64               `koanf:"budget_max_cents"`
	Level               string              `koanf:"level"`
	ExperienceYears     int                 `koanf:"experience_years"`
	Disciplines         []string            `koanf:"disciplines"`
	Personality         []string            `koanf:"personality"`
	WillingTasks        []string            `koanf:"willing_tasks"`
	Materials           map[string]bool     `koanf:"materials"`
	Insurance           bool                `koanf:"insurance"`
	AvailableDays       []string            `koanf:"available_days"`
	TimeBlocks          map[string][]string `koanf:"time_blocks"`
	DateOfBirth         string              `koanf:"date_of_birth"`
}

// Owner is the YAML shape of an owner profile.
type Owner struct {
	UserID             string   `koanf:"user_id"`
	DisplayName        string   `koanf:"display_name"`
	LocationCode       string   `koanf:"location_code"`
	VisibleRadiusKm    float64  `koanf:"visible_radius_km"`
	MinExperienceYears int      `koanf:"min_experience_years"`
	RequiredTasks      []string `koanf:"required_tasks"`
	InsuranceRequired  bool     `koanf:"insurance_required"`
	BitPolicy          string   `koanf:"bit_policy"`
	AvailableDays      []string `koanf:"available_days"`
	MinRiderAge        int      `koanf:"min_rider_age"`
	MaxRiderAge        int      `koanf:"max_rider_age"`
}

// Horse is the YAML shape of a horse.
type Horse struct {
	ID             string   `koanf:"id"`
	OwnerID        string   `koanf:"owner_id"`
	Name           string   `koanf:"name"`
	Energy         string   `koanf:"energy"`
	Disciplines    []string `koanf:"disciplines"`
	Temperament    []string `koanf:"temperament"`
	BitlessCapable bool     `koanf:"bitless_capable"`
	NeedsTransport bool     `koanf:"needs_transport"`
}

// Listing is the YAML shape of a listing. Active defaults to true; an empty
// CreatedAt is replaced with the apply time.
type Listing struct {
	ID                   string              `koanf:"id"`
	HorseID              string              `koanf:"horse_id"`
	ContributionMinCents int64               `koanf:"contribution_min_cents"`
	ContributionType     string              `koanf:"contribution_type"`
	ExpectedTasks        []string            `koanf:"expected_tasks"`
	Availability         map[string][]string `koanf:"availability"`
	Active               *bool               `koanf:"active"`
	CreatedAt            string              `koanf:"created_at"`
}

// Catalog is a parsed fixture document.
type Catalog struct {
	Riders   []Rider   `koanf:"riders"`
	Owners   []Owner   `koanf:"owners"`
	Horses   []Horse   `koanf:"horses"`
	Listings []Listing `koanf:"listings"`
}

// Load reads and validates a fixture file.
func Load(path string) (*Catalog, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrLoadFixtures, path, err)
	}
	return decode(k)
}

func decode(k *koanf.Koanf) (*Catalog, error) {
	var c Catalog
	if err := k.UnmarshalWithConf("", &c, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadFixtures, err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks ids, dates and cross references.
func (c *Catalog) Validate() error {
	owners := make(map[string]struct{}, len(c.Owners))
	for i, o := range c.Owners {
		if o.UserID == "" {
			return fmt.Errorf("%w: owners[%d]: user_id is required", ErrInvalidFixture, i)
		}
		owners[o.UserID] = struct{}{}
	}
	for i, r := range c.Riders {
		if r.UserID == "" {
			return fmt.Errorf("%w: riders[%d]: user_id is required", ErrInvalidFixture, i)
		}
		if _, err := parseTime(r.DateOfBirth); err != nil {
			return fmt.Errorf("%w: riders[%d]: date_of_birth: %w", ErrInvalidFixture, i, err)
		}
	}
	horses := make(map[string]struct{}, len(c.Horses))
	for i, h := range c.Horses {
		if h.ID == "" {
			return fmt.Errorf("%w: horses[%d]: id is required", ErrInvalidFixture, i)
		}
		if _, ok := owners[h.OwnerID]; !ok {
			return fmt.Errorf("%w: horse %s: unknown owner %q", ErrInvalidFixture, h.ID, h.OwnerID)
		}
		horses[h.ID] = struct{}{}
	}
	for i, l := range c.Listings {
		if l.ID == "" {
			return fmt.Errorf("%w: listings[%d]: id is required", ErrInvalidFixture, i)
		}
		if _, ok := horses[l.HorseID]; !ok {
			return fmt.Errorf("%w: listing %s: unknown horse %q", ErrInvalidFixture, l.ID, l.HorseID)
		}
		switch l.ContributionType {
		case "", model.ContributionMonthly, model.ContributionPerSession:
		default:
			return fmt.Errorf("%w: listing %s: contribution_type %q", ErrInvalidFixture, l.ID, l.ContributionType)
		}
		if _, err := parseTime(l.CreatedAt); err != nil {
			return fmt.Errorf("%w: listing %s: created_at: %w", ErrInvalidFixture, l.ID, err)
		}
	}
	return nil
}

// Apply writes every record into dst. Owners go first so horses and
// listings never reference a missing parent.
func (c *Catalog) Apply(ctx context.Context, dst repository.Catalog, now time.Time) error {
	for _, o := range c.Owners {
		if err := dst.PutOwnerProfile(ctx, o.model()); err != nil {
			return fmt.Errorf("owner %s: %w", o.UserID, err)
		}
	}
	for _, r := range c.Riders {
		if err := dst.PutRiderProfile(ctx, r.model()); err != nil {
			return fmt.Errorf("rider %s: %w", r.UserID, err)
		}
	}
	for _, h := range c.Horses {
		if err := dst.PutHorse(ctx, h.model()); err != nil {
			return fmt.Errorf("horse %s: %w", h.ID, err)
		}
	}
	for _, l := range c.Listings {
		if err := dst.PutListing(ctx, l.model(now)); err != nil {
			return fmt.Errorf("listing %s: %w", l.ID, err)
		}
	}
	return nil
}

func (r Rider) model() model.RiderProfile {
	dob, _ := parseTime(r.DateOfBirth)
	return model.RiderProfile{
		UserID:                r.UserID,
		DisplayName:           r.DisplayName,
		LocationCode:          r.LocationCode,
		MaxTravelDistanceKm:   r.MaxTravelDistanceKm,
		BudgetMinCents:        r.BudgetMinCents,
		BudgetMaxCents:        r.BudgetMaxCents,
		Level:                 strings.ToLower(r.Level),
		ExperienceYears:       r.ExperienceYears,
		DisciplinePreferences: r.Disciplines,
		PersonalityTags:       r.Personality,
		WillingTasks:          r.WillingTasks,
		MaterialPreferences:   r.Materials,
		InsuranceCoverage:     r.Insurance,
		AvailableDays:         r.AvailableDays,
		TimeBlocks:            schedule(r.TimeBlocks),
		DateOfBirth:           dob,
	}
}

func (o Owner) model() model.OwnerProfile {
	return model.OwnerProfile{
		UserID:             o.UserID,
		DisplayName:        o.DisplayName,
		LocationCode:       o.LocationCode,
		VisibleRadiusKm:    o.VisibleRadiusKm,
		MinExperienceYears: o.MinExperienceYears,
		RequiredTasks:      o.RequiredTasks,
		InsuranceRequired:  o.InsuranceRequired,
		BitPolicy:          o.BitPolicy,
		AvailableDays:      o.AvailableDays,
		MinRiderAge:        o.MinRiderAge,
		MaxRiderAge:        o.MaxRiderAge,
	}
}

func (h Horse) model() model.Horse {
	return model.Horse{
		ID:             h.ID,
		OwnerID:        h.OwnerID,
		Name:           h.Name,
		Energy:         h.Energy,
		Disciplines:    h.Disciplines,
		Temperament:    h.Temperament,
		BitlessCapable: h.BitlessCapable,
		NeedsTransport: h.NeedsTransport,
	}
}

func (l Listing) model(now time.Time) model.Listing {
	created, _ := parseTime(l.CreatedAt)
	if created.IsZero() {
		created = now
	}
	active := true
	if l.Active != nil {
		active = *l.Active
	}
	ct := l.ContributionType
	if ct == "" {
		ct = model.ContributionMonthly
	}
	return model.Listing{
		ID:                   l.ID,
		HorseID:              l.HorseID,
		ContributionMinCents: l.ContributionMinCents,
		ContributionType:     ct,
		ExpectedTasks:        l.ExpectedTasks,
		Availability:         schedule(l.Availability),
		Active:               active,
		CreatedAt:            created.UTC(),
	}
}

func schedule(m map[string][]string) model.Schedule {
	if len(m) == 0 {
		return nil
	}
	s := make(model.Schedule, len(m))
	for day, blocks := range m {
		s[day] = model.Tags(blocks)
	}
	return s
}

// parseTime accepts a bare date or an RFC 3339 timestamp. Empty is zero.
func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
