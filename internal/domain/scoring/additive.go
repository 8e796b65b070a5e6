package scoring

import (
	"math"

	"github.com/okian/paddock/internal/domain/eligibility"
	"github.com/okian/paddock/internal/domain/model"
)

// Additive component names.
const (
	ComponentAvailability = "availability"
	ComponentDiscipline   = "discipline"
	ComponentCharacter    = "character"
	ComponentTask         = "task"
	ComponentDistance     = "distance"
	ComponentMaterial     = "material"
)

// characterPairs lists rider personality tags and the horse temperament each
// one pairs well with.
var characterPairs = [][2]string{
	{"patient", "calm"},
	{"playful", "playful"},
}

// Additive sums six capped sub-scores.
type Additive struct {
	cfg AdditiveConfig
}

// NewAdditive creates the additive strategy.
func NewAdditive(opts ...Option) *Additive {
	s := newSettings(opts)
	return &Additive{cfg: s.cfg.Additive}
}

// Name implements Strategy.
func (a *Additive) Name() string { return StrategyAdditive }

// Score implements Strategy.
func (a *Additive) Score(c eligibility.Candidate) Breakdown {
	rider, owner, _, horse := unpack(c)

	parts := []component{
		{ComponentAvailability, a.availability(rider, owner)},
		{ComponentDiscipline, a.discipline(rider, horse)},
		{ComponentCharacter, a.character(rider, horse)},
		{ComponentTask, a.task(rider, owner)},
		{ComponentDistance, a.distance(rider, c)},
		{ComponentMaterial, a.material(rider, owner)},
	}
	comp := make(map[string]float64, len(parts))
	total := 0.0
	for _, p := range parts {
		comp[p.name] = p.value
		total += p.value
	}
	return Breakdown{
		Strategy:   StrategyAdditive,
		Total:      clamp(total, 0, maxScoreValue),
		Components: comp,
	}
}

func (a *Additive) availability(r *model.RiderProfile, o *model.OwnerProfile) float64 {
	if r.AvailableDays.Len() == 0 || o.AvailableDays.Len() == 0 {
		return 0
	}
	j := jaccard(r.AvailableDays.IntersectCount(o.AvailableDays), r.AvailableDays.UnionCount(o.AvailableDays))
	return j * a.cfg.AvailabilityMax
}

func (a *Additive) discipline(r *model.RiderProfile, h *model.Horse) float64 {
	n := r.DisciplinePreferences.IntersectCount(h.Disciplines)
	return math.Min(float64(n)*a.cfg.DisciplinePerMatch, a.cfg.DisciplineMax)
}

func (a *Additive) character(r *model.RiderProfile, h *model.Horse) float64 {
	score := 0.0
	for _, p := range characterPairs {
		if r.PersonalityTags.Contains(p[0]) && h.Temperament.Contains(p[1]) {
			score += a.cfg.CharacterPerPair
		}
	}
	return math.Min(score, a.cfg.CharacterMax)
}

func (a *Additive) task(r *model.RiderProfile, o *model.OwnerProfile) float64 {
	required := o.RequiredTasks.Len()
	if required == 0 {
		return 0
	}
	return float64(r.WillingTasks.IntersectCount(o.RequiredTasks)) / float64(required) * a.cfg.TaskMax
}

func (a *Additive) distance(r *model.RiderProfile, c eligibility.Candidate) float64 {
	if !c.Distance.Known {
		return 0
	}
	effMax := r.MaxTravelDistanceKm
	if effMax <= 0 {
		effMax = a.cfg.DefaultTravelKm
	}
	if effMax <= 0 {
		return 0
	}
	return math.Max(0, 1-c.Distance.Km/effMax) * a.cfg.DistanceMax
}

func (a *Additive) material(r *model.RiderProfile, o *model.OwnerProfile) float64 {
	if r.Wants(model.MaterialBitless) && o.BitPolicy == model.BitPolicyBitless {
		return a.cfg.MaterialMax
	}
	return 0
}

// unpack returns the candidate parts with nil pointers replaced by zero
// values so scorers never dereference nil.
func unpack(c eligibility.Candidate) (*model.RiderProfile, *model.OwnerProfile, *model.Listing, *model.Horse) {
	rider, owner, listing, horse := c.Rider, c.Owner, c.Listing, c.Horse
	if rider == nil {
		rider = &model.RiderProfile{}
	}
	if owner == nil {
		owner = &model.OwnerProfile{}
	}
	if listing == nil {
		listing = &model.Listing{}
	}
	if horse == nil {
		horse = &model.Horse{}
	}
	return rider, owner, listing, horse
}
