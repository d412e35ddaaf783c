package models

import "time"

// KOL influence tiers, highest first.
const (
	TierT1 = "T1"
	TierT2 = "T2"
	TierT3 = "T3"
	TierT4 = "T4"
)

// KOLComponents holds the per-dimension scores that feed the composite,
// each already clamped to [0, 100].
type KOLComponents struct {
	Follower   float64 `json:"follower"`
	Engagement float64 `json:"engagement"`
	Coverage   float64 `json:"coverage"`
	Activity   float64 `json:"activity"`
}

// KOLProfile is the scored influence profile for one author
type KOLProfile struct {
	AuthorID      string        `json:"author_id"`
	Handle        string        `json:"handle"`
	Score         float64       `json:"score"`
	Tier          string        `json:"tier"`
	Components    KOLComponents `json:"components"`
	Verified      bool          `json:"verified"`
	FollowerCount int           `json:"follower_count"`
	Category      string        `json:"category"`
	NetworkReach  float64       `json:"network_reach"`
	ScoredAt      time.Time     `json:"scored_at"`
}
