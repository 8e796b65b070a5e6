package preview

import "time"

// Config holds the options of one preview run.
type Config struct {
	BaseURL  string        // Query a running server instead of an in-process engine
	Fixtures string        // Catalog file for the in-process engine
	Riders   []string      // Riders to preview; empty means every fixture rider
	Limit    int           // Candidates per rider
	Strategy string        // Scoring strategy override
	Explain  string        // Listing to explain instead of ranking
	Timeout  time.Duration // HTTP request timeout
	JSON     bool          // Emit JSON instead of a table
}

// Row is one ranked candidate as printed.
type Row struct {
	Rider      string   `json:"rider"`
	Rank       int      `json:"rank"`
	ListingID  string   `json:"listing_id"`
	HorseName  string   `json:"horse_name"`
	OwnerName  string   `json:"owner_name"`
	Location   string   `json:"location"`
	MatchScore float64  `json:"match_score"`
	DistanceKm *float64 `json:"distance_km"`
}

// Explanation is a single listing evaluation as printed.
type Explanation struct {
	Rider      string             `json:"rider"`
	ListingID  string             `json:"listing_id"`
	Eligible   bool               `json:"eligible"`
	Rule       string             `json:"rule,omitempty"`
	Reason     string             `json:"reason,omitempty"`
	DistanceKm *float64           `json:"distance_km"`
	Strategy   string             `json:"strategy"`
	Score      float64            `json:"score"`
	Components map[string]float64 `json:"components,omitempty"`
}
