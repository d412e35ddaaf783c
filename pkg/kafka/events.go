package kafka

import (
	"encoding/json"
	"fmt"
	"time"
)

// Topics the analysis service consumes. Producers are the upstream
// collectors; payloads are versioned JSON envelopes.
const (
	TopicSocialPosts   = "social_posts"
	TopicSocialAuthors = "social_authors"
	TopicSocialFollows = "social_follows"
)

// TopicAnalysisRuns carries run-completed notifications for downstream
// consumers (dashboards, alerting).
const TopicAnalysisRuns = "social_analysis_runs"

// Event types carried in the envelope.
const (
	EventTypePost        = "post"
	EventTypeAuthor      = "author"
	EventTypeFollow      = "follow"
	EventTypeAnalysisRun = "analysis_run"
)

// SocialEvent is the envelope for collector events.
type SocialEvent struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	Timestamp     time.Time       `json:"timestamp"`
	Source        string          `json:"source"`
	SchemaVersion string          `json:"schema_version"`
	Data          json.RawMessage `json:"data"`
}

// PostPayload is the payload for EventTypePost events.
type PostPayload struct {
	ID        string   `json:"id"`
	AuthorID  string   `json:"author_id"`
	Text      string   `json:"text"`
	CreatedAt int64    `json:"created_at"` // unix seconds, collector convention
	Tags      []string `json:"tags,omitempty"`
	Mentions  []string `json:"mentions,omitempty"`
	Likes     int64    `json:"likes"`
	Reposts   int64    `json:"reposts"`
	Replies   int64    `json:"replies"`
}

// AuthorPayload is the payload for EventTypeAuthor events.
type AuthorPayload struct {
	ID            string `json:"id"`
	Handle        string `json:"handle"`
	FollowerCount int64  `json:"follower_count"`
	Verified      bool   `json:"verified"`
	TweetCount    int64  `json:"tweet_count"`
	Description   string `json:"description,omitempty"`
}

// FollowPayload is the payload for EventTypeFollow events.
type FollowPayload struct {
	SrcID  string  `json:"src_id"`
	DstID  string  `json:"dst_id"`
	Weight float64 `json:"weight,omitempty"`
}

// RunPayload is the payload for EventTypeAnalysisRun events.
type RunPayload struct {
	RunID       string    `json:"run_id"`
	Status      string    `json:"status"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
	KOLs        int       `json:"kols"`
	Memes       int       `json:"memes"`
	Noise       int       `json:"noise"`
	GraphNodes  int       `json:"graph_nodes"`
	Communities int       `json:"communities"`
}

// NewRunEvent wraps a run payload in the standard envelope.
func NewRunEvent(payload *RunPayload) (*SocialEvent, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode run payload: %w", err)
	}
	return &SocialEvent{
		EventID:       payload.RunID,
		EventType:     EventTypeAnalysisRun,
		Timestamp:     time.Now().UTC(),
		Source:        "lookout",
		SchemaVersion: "1.0",
		Data:          data,
	}, nil
}

// DecodeSocialEvent parses an envelope from a raw Kafka message value.
func DecodeSocialEvent(value []byte) (*SocialEvent, error) {
	var event SocialEvent
	if err := json.Unmarshal(value, &event); err != nil {
		return nil, fmt.Errorf("failed to decode social event: %w", err)
	}
	if event.EventType == "" {
		return nil, fmt.Errorf("social event missing event_type")
	}
	return &event, nil
}

// Post decodes the post payload. Returns an error for non-post events.
func (e *SocialEvent) Post() (*PostPayload, error) {
	if e.EventType != EventTypePost {
		return nil, fmt.Errorf("event %s is not a post event", e.EventID)
	}
	var p PostPayload
	if err := json.Unmarshal(e.Data, &p); err != nil {
		return nil, fmt.Errorf("failed to decode post payload: %w", err)
	}
	return &p, nil
}

// Author decodes the author payload. Returns an error for non-author events.
func (e *SocialEvent) Author() (*AuthorPayload, error) {
	if e.EventType != EventTypeAuthor {
		return nil, fmt.Errorf("event %s is not an author event", e.EventID)
	}
	var a AuthorPayload
	if err := json.Unmarshal(e.Data, &a); err != nil {
		return nil, fmt.Errorf("failed to decode author payload: %w", err)
	}
	return &a, nil
}

// Follow decodes the follow payload. Returns an error for non-follow events.
func (e *SocialEvent) Follow() (*FollowPayload, error) {
	if e.EventType != EventTypeFollow {
		return nil, fmt.Errorf("event %s is not a follow event", e.EventID)
	}
	var f FollowPayload
	if err := json.Unmarshal(e.Data, &f); err != nil {
		return nil, fmt.Errorf("failed to decode follow payload: %w", err)
	}
	return &f, nil
}
