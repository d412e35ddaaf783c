package models

import "time"

// RawPost is a post as it arrives from a collector, before normalization.
type RawPost struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"author_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
	Tags      []string  `json:"tags"`
	Mentions  []string  `json:"mentions"`
	Likes     int       `json:"likes"`
	Reposts   int       `json:"reposts"`
	Replies   int       `json:"replies"`
	Source    string    `json:"source"`
}

// Post is a normalized, deduplicated post row from ClickHouse
type Post struct {
	ID             string    `json:"id"`
	AuthorID       string    `json:"author_id"`
	Text           string    `json:"text"`
	NormalizedText string    `json:"normalized_text"`
	Fingerprint    string    `json:"fingerprint"`
	CreatedAt      time.Time `json:"created_at"`
	Tags           []string  `json:"tags"`
	Mentions       []string  `json:"mentions"`
	Likes          int       `json:"likes"`
	Reposts        int       `json:"reposts"`
	Replies        int       `json:"replies"`
	Source         string    `json:"source"`
}

// Engagement returns the combined interaction count for the post.
func (p *Post) Engagement() int {
	return p.Likes + p.Reposts + p.Replies
}

// Author represents a social account
type Author struct {
	ID            string    `json:"id"`
	Handle        string    `json:"handle"`
	FollowerCount int       `json:"follower_count"`
	Verified      bool      `json:"verified"`
	TweetCount    int       `json:"tweet_count"`
	Description   string    `json:"description"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// FollowEdge is a directed follow relationship with an optional weight.
// Weight defaults to 1 when the collector does not supply one.
type FollowEdge struct {
	SrcID  string  `json:"src_id"`
	DstID  string  `json:"dst_id"`
	Weight float64 `json:"weight"`
}
