package scoring

import (
	"time"

	"github.com/okian/paddock/internal/domain/eligibility"
	"github.com/okian/paddock/internal/domain/model"
)

// Weighted component names. Availability and task share names with the
// additive strategy.
const (
	ComponentExperience = "experience"
	ComponentEnergy     = "energy"
	ComponentStyle      = "style"
	ComponentEquipment  = "equipment"
	ComponentRecency    = "recency"
)

const neutral = 0.5

const day = 24 * time.Hour

var levelRank = map[string]int{
	model.LevelBeginner:     1,
	model.LevelIntermediate: 2,
	model.LevelAdvanced:     3,
}

// energyMatrix[level][energy] is how well a rider level copes with a horse
// energy.
var energyMatrix = map[string]map[string]float64{
	model.LevelBeginner:     {model.EnergyCalm: 1.0, model.EnergyModerate: 0.3, model.EnergyEnergetic: 0.0},
	model.LevelIntermediate: {model.EnergyCalm: 0.8, model.EnergyModerate: 1.0, model.EnergyEnergetic: 0.5},
	model.LevelAdvanced:     {model.EnergyCalm: 0.6, model.EnergyModerate: 0.9, model.EnergyEnergetic: 1.0},
}

// Weighted normalises seven [0,1] sub-scores by their weights.
type Weighted struct {
	cfg WeightedConfig
	now func() time.Time
}

// NewWeighted creates the weighted strategy.
func NewWeighted(opts ...Option) *Weighted {
	s := newSettings(opts)
	return &Weighted{cfg: s.cfg.Weighted, now: s.now}
}

// Name implements Strategy.
func (w *Weighted) Name() string { return StrategyWeighted }

// Score implements Strategy.
func (w *Weighted) Score(c eligibility.Candidate) Breakdown {
	rider, _, listing, horse := unpack(c)
	energy := model.NormalizeEnergy(horse.Energy)

	parts := []struct {
		component
		weight float64
	}{
		{component{ComponentExperience, experience(rider.Level, energy)}, w.cfg.Experience},
		{component{ComponentEnergy, energyMatrix[rider.Level][energy]}, w.cfg.Energy},
		{component{ComponentTask, taskCoverage(rider.WillingTasks, listing.ExpectedTasks)}, w.cfg.Task},
		{component{ComponentStyle, style(rider.DisciplinePreferences, horse.Disciplines)}, w.cfg.Style},
		{component{ComponentEquipment, equipment(rider, horse)}, w.cfg.Equipment},
		{component{ComponentAvailability, scheduleOverlap(rider.TimeBlocks, listing.Availability)}, w.cfg.Availability},
		{component{ComponentRecency, w.recency(listing.CreatedAt)}, w.cfg.Recency},
	}

	comp := make(map[string]float64, len(parts))
	sum, weights := 0.0, 0.0
	for _, p := range parts {
		comp[p.name] = p.value
		if p.weight <= 0 {
			continue
		}
		sum += p.weight * p.value
		weights += p.weight
	}
	total := 0.0
	if weights > 0 {
		total = sum / weights * maxScoreValue
	}
	return Breakdown{
		Strategy:   StrategyWeighted,
		Total:      clamp(total, 0, maxScoreValue),
		Components: comp,
	}
}

// experience compares the rider level with the levels suited to the horse
// energy: calm suits everyone, moderate intermediate and up, anything else
// advanced only. Unknown levels count as beginner.
func experience(level, energy string) float64 {
	rank, ok := levelRank[level]
	if !ok {
		rank = 1
	}
	lowest := 3
	switch energy {
	case model.EnergyCalm:
		lowest = 1
	case model.EnergyModerate:
		lowest = 2
	}
	switch {
	case rank >= lowest:
		return 1
	case lowest-rank == 1:
		return neutral
	default:
		return 0
	}
}

func taskCoverage(willing, expected model.Tags) float64 {
	n := expected.Len()
	if willing.Len() == 0 || n == 0 {
		return neutral
	}
	return float64(willing.IntersectCount(expected)) / float64(n)
}

func style(rider, horse model.Tags) float64 {
	if rider.Len() == 0 || horse.Len() == 0 {
		return neutral
	}
	return jaccard(rider.IntersectCount(horse), rider.UnionCount(horse))
}

func equipment(r *model.RiderProfile, h *model.Horse) float64 {
	score := 1.0
	if r.Wants(model.MaterialBitless) && !h.BitlessCapable {
		score -= 0.5
	}
	if h.NeedsTransport && !r.Wants(model.MaterialCanTrailer) {
		score -= 0.5
	}
	return max(0, score)
}

// scheduleOverlap is the share of listing days on which the rider has at
// least one matching block.
func scheduleOverlap(rider, listing model.Schedule) float64 {
	if len(rider) == 0 || len(listing) == 0 {
		return neutral
	}
	offered, shared := 0, 0
	for d, blocks := range listing {
		if blocks.Len() == 0 {
			continue
		}
		offered++
		if rider[d].IntersectCount(blocks) > 0 {
			shared++
		}
	}
	if offered == 0 {
		return 0
	}
	return float64(shared) / float64(offered)
}

func (w *Weighted) recency(created time.Time) float64 {
	if created.IsZero() {
		return 0.1
	}
	age := int(w.now().Sub(created) / day)
	switch {
	case age <= 7:
		return 1.0
	case age <= 30:
		return 0.7
	case age <= 90:
		return 0.4
	default:
		return 0.1
	}
}
