package analyzer

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onemapl3/twitter-meme-analysis/pkg/models"
)

func post(id, author, text string, at time.Time) models.Post {
	return models.Post{ID: id, AuthorID: author, Text: text, CreatedAt: at}
}

func TestFoldPostExplicitAndImplicit(t *testing.T) {
	cfg := DefaultConfig()
	now := time.Now().UTC()

	acc := NewMemeAccumulator()
	acc.FoldPost(post("p1", "a1", "$DOGE to the moon! 🚀", now), cfg, cfg.stopset())

	require.Contains(t, acc, "DOGE")
	ranked, _ := ScoreCandidates(acc, nil, now, cfg)
	require.Len(t, ranked, 1)
	assert.Equal(t, "DOGE", ranked[0].Key)
	assert.Equal(t, models.DetectionBoth, ranked[0].DetectionType)
	assert.Equal(t, 1, ranked[0].ExplicitHits)
	assert.Greater(t, ranked[0].ImplicitScore, 0.0)
}

func TestFoldPostImplicitOnlyCandidate(t *testing.T) {
	cfg := DefaultConfig()
	now := time.Now().UTC()

	acc := NewMemeAccumulator()
	acc.FoldPost(post("p1", "a1", "to the moon! huge pump, what a time LFG!", now), cfg, cfg.stopset())

	require.Contains(t, acc, "to the moon")
	ranked, _ := ScoreCandidates(acc, nil, now, cfg)
	require.Len(t, ranked, 1)
	assert.Equal(t, models.DetectionImplicit, ranked[0].DetectionType)
	assert.Equal(t, "trend", ranked[0].Category)
}

func TestFoldPostImplicitThresholdInclusive(t *testing.T) {
	cfg := DefaultConfig()
	now := time.Now().UTC()
	text := "to the moon! huge pump, what a time LFG!"

	// A post scoring exactly at the threshold passes the gate.
	cfg.ImplicitThreshold = ScoreImplicit(text, cfg).Score
	acc := NewMemeAccumulator()
	acc.FoldPost(post("p1", "a1", text, now), cfg, cfg.stopset())
	assert.Contains(t, acc, "to the moon")

	// A hair above and it no longer does.
	cfg.ImplicitThreshold += 1e-9
	acc = NewMemeAccumulator()
	acc.FoldPost(post("p1", "a1", text, now), cfg, cfg.stopset())
	assert.Empty(t, acc)
}

func TestFoldPostBelowThresholdContributesNothingImplicit(t *testing.T) {
	cfg := DefaultConfig()
	now := time.Now().UTC()

	acc := NewMemeAccumulator()
	acc.FoldPost(post("p1", "a1", "the quarterly report was filed on schedule", now), cfg, cfg.stopset())

	assert.Empty(t, acc)
}

func TestStoplistedKeyNeverAccumulates(t *testing.T) {
	cfg := DefaultConfig()
	now := time.Now().UTC()

	acc := NewMemeAccumulator()
	for i := 0; i < 10; i++ {
		acc.FoldPost(post(fmt.Sprintf("p%d", i), fmt.Sprintf("a%d", i), "$BTC is money", now), cfg, cfg.stopset())
	}

	ranked, noise := ScoreCandidates(acc, nil, now, cfg)
	assert.Empty(t, ranked)
	assert.Empty(t, noise, "filtered before accumulation, not after")
}

func TestMergeCommutative(t *testing.T) {
	cfg := DefaultConfig()
	now := time.Now().UTC()
	posts := []models.Post{
		post("p1", "a1", "$PEPE pump!", now),
		post("p2", "a2", "$PEPE to the moon", now.Add(time.Minute)),
		post("p3", "a3", "huge $PEPE and $WIF gains", now.Add(2*time.Minute)),
		post("p4", "a1", "$WIF fomo", now.Add(3*time.Minute)),
	}

	forward := NewMemeAccumulator()
	for _, p := range posts {
		forward.FoldPost(p, cfg, cfg.stopset())
	}

	shardA, shardB := NewMemeAccumulator(), NewMemeAccumulator()
	shardA.FoldPost(posts[3], cfg, cfg.stopset())
	shardA.FoldPost(posts[1], cfg, cfg.stopset())
	shardB.FoldPost(posts[2], cfg, cfg.stopset())
	shardB.FoldPost(posts[0], cfg, cfg.stopset())
	shardB.Merge(shardA)

	a, _ := ScoreCandidates(forward, nil, now, cfg)
	b, _ := ScoreCandidates(shardB, nil, now, cfg)

	require.Equal(t, len(a), len(b))
	for i := range a {
		assert.Equal(t, a[i].Key, b[i].Key)
		assert.Equal(t, a[i].MentionCount, b[i].MentionCount)
		assert.Equal(t, a[i].UniqueUsers, b[i].UniqueUsers)
		assert.InDelta(t, a[i].QualityScore, b[i].QualityScore, 1e-9)
		assert.Equal(t, a[i].FirstSeen, b[i].FirstSeen)
		assert.Equal(t, a[i].LastSeen, b[i].LastSeen)
	}
}

func TestScoreCandidatesNoiseBucket(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinQuality = 60
	now := time.Now().UTC()

	acc := NewMemeAccumulator()
	acc.FoldPost(post("p1", "a1", "$OBSCURE is bad and terrible", now), cfg, cfg.stopset())

	ranked, noise := ScoreCandidates(acc, nil, now, cfg)
	assert.Empty(t, ranked)
	require.Len(t, noise, 1)
	assert.Equal(t, "OBSCURE", noise[0].Key)
	assert.Less(t, noise[0].QualityScore, cfg.MinQuality)
}

func TestScoreCandidatesCommunitySignal(t *testing.T) {
	cfg := DefaultConfig()
	now := time.Now().UTC()

	acc := NewMemeAccumulator()
	acc.FoldPost(post("p1", "a1", "$PEPE nice", now), cfg, cfg.stopset())
	acc.FoldPost(post("p2", "a2", "$PEPE nice", now), cfg, cfg.stopset())
	acc.FoldPost(post("p3", "a3", "$PEPE nice", now), cfg, cfg.stopset())

	none, _ := ScoreCandidates(acc, nil, now, cfg)
	spread, _ := ScoreCandidates(acc, map[string]int{"a1": 0, "a2": 1, "a3": 2}, now, cfg)

	require.Len(t, none, 1)
	require.Len(t, spread, 1)
	assert.Equal(t, 0, none[0].Communities)
	assert.Equal(t, 3, spread[0].Communities)
	assert.Greater(t, spread[0].QualityScore, none[0].QualityScore)
}

func TestDecayScore(t *testing.T) {
	now := time.Now().UTC()
	halfLife := 72 * time.Hour

	assert.InDelta(t, 100, decayScore(now, now, halfLife), 1e-9)
	assert.InDelta(t, 50, decayScore(now.Add(-72*time.Hour), now, halfLife), 1e-9)
	assert.InDelta(t, 25, decayScore(now.Add(-144*time.Hour), now, halfLife), 1e-9)
	assert.Greater(t, decayScore(now.Add(-10000*time.Hour), now, halfLife), 0.0)
}

func TestRankedOrderDeterministic(t *testing.T) {
	memes := []models.MemeCandidate{
		{Key: "b", QualityScore: 50, MentionCount: 5},
		{Key: "a", QualityScore: 50, MentionCount: 5},
		{Key: "c", QualityScore: 50, MentionCount: 9},
		{Key: "d", QualityScore: 80, MentionCount: 1},
	}
	rankMemes(memes)

	keys := make([]string, len(memes))
	for i, m := range memes {
		keys[i] = m.Key
	}
	assert.Equal(t, []string{"d", "c", "a", "b"}, keys)
}
