package scoring

// AdditiveConfig holds the caps of the additive strategy's sub-scores.
type AdditiveConfig struct {
	AvailabilityMax    float64 `koanf:"availability_max"`
	DisciplineMax      float64 `koanf:"discipline_max"`
	DisciplinePerMatch float64 `koanf:"discipline_per_match"`
	CharacterMax       float64 `koanf:"character_max"`
	CharacterPerPair   float64 `koanf:"character_per_pair"`
	TaskMax            float64 `koanf:"task_max"`
	DistanceMax        float64 `koanf:"distance_max"`
	DefaultTravelKm    float64 `koanf:"default_travel_km"`
	MaterialMax        float64 `koanf:"material_max"`
}

// WeightedConfig holds the relative weights of the weighted strategy. A
// weight of zero removes the factor from the total.
type WeightedConfig struct {
	Experience   float64 `koanf:"experience"`
	Energy       float64 `koanf:"energy"`
	Task         float64 `koanf:"task"`
	Style        float64 `koanf:"style"`
	Equipment    float64 `koanf:"equipment"`
	Availability float64 `koanf:"availability"`
	Recency      float64 `koanf:"recency"`
}

// Config is the full set of scoring constants.
type Config struct {
	Additive AdditiveConfig `koanf:"additive"`
	Weighted WeightedConfig `koanf:"weighted"`
}

// DefaultConfig returns the hand-tuned production weights.
func DefaultConfig() Config {
	return Config{
		Additive: AdditiveConfig{
			AvailabilityMax:    25,
			DisciplineMax:      20,
			DisciplinePerMatch: 5,
			CharacterMax:       20,
			CharacterPerPair:   10,
			TaskMax:            15,
			DistanceMax:        10,
			DefaultTravelKm:    30,
			MaterialMax:        10,
		},
		Weighted: WeightedConfig{
			Experience:   0.20,
			Energy:       0.15,
			Task:         0.15,
			Style:        0.10,
			Equipment:    0.10,
			Availability: 0.20,
			Recency:      0.10,
		},
	}
}
