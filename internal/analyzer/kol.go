package analyzer

import (
	"sort"
	"strings"
	"time"

	"github.com/onemapl3/twitter-meme-analysis/pkg/models"
)

// KOL score weights and tier cutoffs.
const (
	followerWeight   = 0.4
	engagementWeight = 0.3
	coverageWeight   = 0.2
	activityWeight   = 0.1
	verifiedBoost    = 1.2

	tier1Cutoff = 80
	tier2Cutoff = 60
	tier3Cutoff = 40
)

// AuthorStats is the aggregate over one author's slice of the batch plus
// the author record. It is recomputed from the post snapshot on every run;
// nothing here is mutated incrementally.
type AuthorStats struct {
	Author models.Author

	// EngagementRate is the average per-post engagement as a percentage of
	// the author's follower count.
	EngagementRate float64

	// UniqueMentions is the number of distinct other authors that
	// mentioned this author anywhere in the batch.
	UniqueMentions int

	// RecentText is the author's post text concatenated for category
	// labeling.
	RecentText string

	// NetworkReach in [0, 1] from the graph analyzer. Zero when the graph
	// pass has not run; scoring must remain valid without it.
	NetworkReach float64
}

// BuildAuthorStats recomputes per-author aggregates from the normalized
// batch. Authors with no posts in the batch still get an entry so profile
// signals alone can score them.
func BuildAuthorStats(posts []models.Post, authors []models.Author) map[string]AuthorStats {
	mentioners := make(map[string]map[string]struct{})
	engagement := make(map[string]int)
	postCount := make(map[string]int)
	texts := make(map[string][]string)

	for _, p := range posts {
		postCount[p.AuthorID]++
		engagement[p.AuthorID] += p.Engagement()
		texts[p.AuthorID] = append(texts[p.AuthorID], p.Text)
		for _, target := range p.Mentions {
			if target == p.AuthorID {
				continue
			}
			if mentioners[target] == nil {
				mentioners[target] = make(map[string]struct{})
			}
			mentioners[target][p.AuthorID] = struct{}{}
		}
	}

	stats := make(map[string]AuthorStats, len(authors))
	for _, a := range authors {
		s := AuthorStats{
			Author:         a,
			UniqueMentions: len(mentioners[a.ID]),
			RecentText:     strings.Join(texts[a.ID], " "),
		}
		if n := postCount[a.ID]; n > 0 && a.FollowerCount > 0 {
			avg := float64(engagement[a.ID]) / float64(n)
			s.EngagementRate = avg / float64(a.FollowerCount) * 100
		}
		stats[a.ID] = s
	}
	return stats
}

// ScoreAuthor computes the influence profile for one author. Each
// dimension is clamped to [0, 100] before weighting so a single runaway
// metric cannot dominate beyond its weight. Missing or zero inputs yield
// a zero sub-score, never an error.
func ScoreAuthor(stats AuthorStats, cfg Config, now time.Time) models.KOLProfile {
	a := stats.Author

	follower := clamp100(float64(a.FollowerCount) / cfg.FollowerNorm * 100)
	engagement := clamp100(stats.EngagementRate * 10)
	coverage := clamp100(float64(stats.UniqueMentions) / cfg.CoverageNorm * 100)
	if reach := clamp100(stats.NetworkReach * 100); reach > coverage {
		coverage = reach
	}
	activity := clamp100(float64(a.TweetCount) / cfg.ActivityNorm * 100)

	score := followerWeight*follower + engagementWeight*engagement +
		coverageWeight*coverage + activityWeight*activity
	if a.Verified {
		score *= verifiedBoost
	}
	score = clamp100(score)

	return models.KOLProfile{
		AuthorID: a.ID,
		Handle:   a.Handle,
		Score:    score,
		Tier:     tierFor(score),
		Components: models.KOLComponents{
			Follower:   follower,
			Engagement: engagement,
			Coverage:   coverage,
			Activity:   activity,
		},
		Verified:      a.Verified,
		FollowerCount: a.FollowerCount,
		Category:      categorize(a.Description+" "+stats.RecentText, cfg.CategoryVocabularies),
		NetworkReach:  stats.NetworkReach,
		ScoredAt:      now,
	}
}

// tierFor maps a score to its band, evaluated high to low.
func tierFor(score float64) string {
	switch {
	case score >= tier1Cutoff:
		return models.TierT1
	case score >= tier2Cutoff:
		return models.TierT2
	case score >= tier3Cutoff:
		return models.TierT3
	default:
		return models.TierT4
	}
}

// categorize labels an author by keyword-bag matching against the
// configured vocabularies. Ties and zero hits both fall back to "other";
// the label is advisory only.
func categorize(text string, vocabularies map[string][]string) string {
	lower := strings.ToLower(text)

	best, bestHits := "other", 0
	tied := false
	names := make([]string, 0, len(vocabularies))
	for name := range vocabularies {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		hits := 0
		for _, word := range vocabularies[name] {
			if strings.Contains(lower, strings.ToLower(word)) {
				hits++
			}
		}
		switch {
		case hits > bestHits:
			best, bestHits, tied = name, hits, false
		case hits == bestHits && hits > 0:
			tied = true
		}
	}
	if bestHits == 0 || tied {
		return "other"
	}
	return best
}

// RankKOLs sorts profiles by score descending, author id ascending on ties.
func RankKOLs(profiles []models.KOLProfile) {
	sort.Slice(profiles, func(i, j int) bool {
		if profiles[i].Score != profiles[j].Score {
			return profiles[i].Score > profiles[j].Score
		}
		return profiles[i].AuthorID < profiles[j].AuthorID
	})
}

func clamp100(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
