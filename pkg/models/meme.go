package models

import "time"

// Meme detection types.
const (
	DetectionExplicit = "explicit"
	DetectionImplicit = "implicit"
	DetectionBoth     = "both"
)

// MemeCandidate is an aggregated meme signal across posts
type MemeCandidate struct {
	Key           string    `json:"key"`
	Category      string    `json:"category"`
	MentionCount  int       `json:"mention_count"`
	UniqueUsers   int       `json:"unique_users"`
	AvgSentiment  float64   `json:"avg_sentiment"`
	ExplicitHits  int       `json:"explicit_hits"`
	ImplicitScore float64   `json:"implicit_score"`
	QualityScore  float64   `json:"quality_score"`
	DetectionType string    `json:"detection_type"`
	Communities   int       `json:"communities"`
	FirstSeen     time.Time `json:"first_seen"`
	LastSeen      time.Time `json:"last_seen"`
	SamplePosts   []string  `json:"sample_posts,omitempty"`
}
