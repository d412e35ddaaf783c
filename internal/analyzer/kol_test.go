package analyzer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onemapl3/twitter-meme-analysis/pkg/models"
)

func TestScoreAuthorVerifiedTopTier(t *testing.T) {
	cfg := DefaultConfig()
	stats := AuthorStats{
		Author: models.Author{
			ID:            "a1",
			Handle:        "whale",
			FollowerCount: 1_000_000,
			TweetCount:    1000,
			Verified:      true,
		},
		EngagementRate: 10,
		UniqueMentions: 100,
	}

	profile := ScoreAuthor(stats, cfg, time.Now().UTC())

	assert.InDelta(t, 100, profile.Components.Follower, 1e-9)
	assert.InDelta(t, 100, profile.Components.Engagement, 1e-9)
	assert.InDelta(t, 100, profile.Components.Coverage, 1e-9)
	assert.InDelta(t, 100, profile.Components.Activity, 1e-9)
	assert.InDelta(t, 100, profile.Score, 1e-9, "verified boost clamps back to 100")
	assert.Equal(t, models.TierT1, profile.Tier)
}

func TestScoreAuthorZeroInputs(t *testing.T) {
	cfg := DefaultConfig()
	profile := ScoreAuthor(AuthorStats{Author: models.Author{ID: "a1"}}, cfg, time.Now().UTC())

	assert.Zero(t, profile.Score)
	assert.Equal(t, models.TierT4, profile.Tier)
	assert.Equal(t, "other", profile.Category)
}

func TestScoreAuthorBounds(t *testing.T) {
	cfg := DefaultConfig()
	cases := []AuthorStats{
		{Author: models.Author{ID: "a", FollowerCount: 500_000_000, TweetCount: 1_000_000, Verified: true}, EngagementRate: 9999, UniqueMentions: 100000, NetworkReach: 1},
		{Author: models.Author{ID: "b", FollowerCount: 1}},
		{Author: models.Author{ID: "c", Verified: true}, NetworkReach: 0.5},
	}
	for _, stats := range cases {
		p := ScoreAuthor(stats, cfg, time.Now().UTC())
		assert.GreaterOrEqual(t, p.Score, 0.0)
		assert.LessOrEqual(t, p.Score, 100.0)
		for _, c := range []float64{p.Components.Follower, p.Components.Engagement, p.Components.Coverage, p.Components.Activity} {
			assert.GreaterOrEqual(t, c, 0.0)
			assert.LessOrEqual(t, c, 100.0)
		}
	}
}

func TestTierBoundaries(t *testing.T) {
	cases := []struct {
		score float64
		tier  string
	}{
		{100, models.TierT1},
		{80, models.TierT1},
		{79.99, models.TierT2},
		{60, models.TierT2},
		{59.99, models.TierT3},
		{40, models.TierT3},
		{39.99, models.TierT4},
		{0, models.TierT4},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.tier, tierFor(tc.score), "score %v", tc.score)
	}
}

func TestNetworkReachRaisesCoverage(t *testing.T) {
	cfg := DefaultConfig()
	base := AuthorStats{Author: models.Author{ID: "a1"}}
	withReach := base
	withReach.NetworkReach = 0.8

	low := ScoreAuthor(base, cfg, time.Now().UTC())
	high := ScoreAuthor(withReach, cfg, time.Now().UTC())

	assert.Zero(t, low.Components.Coverage)
	assert.InDelta(t, 80, high.Components.Coverage, 1e-9)
	assert.Greater(t, high.Score, low.Score)
}

func TestBuildAuthorStats(t *testing.T) {
	authors := []models.Author{
		{ID: "a1", FollowerCount: 1000},
		{ID: "a2", FollowerCount: 50},
		{ID: "a3"},
	}
	posts := []models.Post{
		{ID: "p1", AuthorID: "a1", Likes: 80, Reposts: 15, Replies: 5, Mentions: []string{"a2"}},
		{ID: "p2", AuthorID: "a1", Likes: 100},
		{ID: "p3", AuthorID: "a2", Mentions: []string{"a1", "a1"}},
		{ID: "p4", AuthorID: "a3", Mentions: []string{"a1", "a3"}},
	}

	stats := BuildAuthorStats(posts, authors)
	require.Len(t, stats, 3)

	// a1: (100 + 100) / 2 posts = 100 avg, over 1000 followers = 10%.
	assert.InDelta(t, 10, stats["a1"].EngagementRate, 1e-9)
	assert.Equal(t, 2, stats["a1"].UniqueMentions, "self mention excluded, a2 and a3 count once each")
	assert.Equal(t, 1, stats["a2"].UniqueMentions)
	assert.Zero(t, stats["a3"].EngagementRate, "no followers means no rate")
}

func TestCategorize(t *testing.T) {
	vocab := DefaultConfig().CategoryVocabularies

	assert.Equal(t, "tech", categorize("AI startup engineer building SaaS", vocab))
	assert.Equal(t, "finance", categorize("trading stocks and ETF portfolio tips", vocab))
	assert.Equal(t, "other", categorize("I post about cooking", vocab))
	// One tech hit and one finance hit tie back to other.
	assert.Equal(t, "other", categorize("ai trading", vocab))
}

func TestRankKOLsDeterministic(t *testing.T) {
	profiles := []models.KOLProfile{
		{AuthorID: "b", Score: 50},
		{AuthorID: "a", Score: 50},
		{AuthorID: "c", Score: 90},
	}
	RankKOLs(profiles)
	assert.Equal(t, "c", profiles[0].AuthorID)
	assert.Equal(t, "a", profiles[1].AuthorID)
	assert.Equal(t, "b", profiles[2].AuthorID)
}
