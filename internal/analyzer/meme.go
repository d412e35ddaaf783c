package analyzer

import (
	"math"
	"sort"
	"time"

	"github.com/onemapl3/twitter-meme-analysis/pkg/models"
)

// Quality score weights.
const (
	qualityMentionWeight   = 0.3
	qualityDiversityWeight = 0.25
	qualitySentimentWeight = 0.2
	qualityCommunityWeight = 0.15
	qualityDecayWeight     = 0.1

	mentionNorm   = 100
	diversityNorm = 50
	communityNorm = 10

	maxSamplePosts = 5
)

// memeAccum is the running aggregate for one candidate key. It holds only
// sums and unions so merging shards stays commutative.
type memeAccum struct {
	key              string
	category         string
	mentionCount     int
	explicitHits     int
	implicitHits     int
	implicitScoreSum float64
	authors          map[string]struct{}
	sentimentSum     float64
	sentimentN       int
	firstSeen        time.Time
	lastSeen         time.Time
	samples          []string
}

// MemeAccumulator collects candidates across a batch, keyed by normalized
// candidate key.
type MemeAccumulator map[string]*memeAccum

func NewMemeAccumulator() MemeAccumulator {
	return make(MemeAccumulator)
}

func (m MemeAccumulator) get(key, category string) *memeAccum {
	a, ok := m[key]
	if !ok {
		a = &memeAccum{key: key, category: category, authors: make(map[string]struct{})}
		m[key] = a
	}
	return a
}

// fold records one post's contribution to one candidate.
func (a *memeAccum) fold(post models.Post, sentiment float64) {
	a.mentionCount++
	a.authors[post.AuthorID] = struct{}{}
	a.sentimentSum += sentiment
	a.sentimentN++
	if a.firstSeen.IsZero() || post.CreatedAt.Before(a.firstSeen) {
		a.firstSeen = post.CreatedAt
	}
	if post.CreatedAt.After(a.lastSeen) {
		a.lastSeen = post.CreatedAt
	}
	if len(a.samples) < maxSamplePosts {
		a.samples = append(a.samples, post.ID)
	}
}

// FoldPost runs both extraction passes over one post and accumulates the
// results. The implicit gate is inclusive: a post scoring exactly at the
// threshold counts. Gated posts with no explicit hit contribute a
// candidate keyed by their dominant trend phrase; posts below threshold
// contribute nothing implicit.
func (m MemeAccumulator) FoldPost(post models.Post, cfg Config, stopset map[string]struct{}) {
	sentiment := clampSentiment(cfg.Sentiment(post.Text))
	explicit := ExtractExplicit(post.Text, stopset)
	implicit := ScoreImplicit(post.Text, cfg)
	overThreshold := implicit.Score >= cfg.ImplicitThreshold

	for _, hit := range explicit {
		a := m.get(hit.Key, hit.Category)
		a.fold(post, sentiment)
		a.explicitHits++
		if overThreshold {
			a.implicitHits++
			a.implicitScoreSum += implicit.Score
		}
	}

	if len(explicit) == 0 && overThreshold && implicit.DominantPhrase != "" {
		a := m.get(implicit.DominantPhrase, "trend")
		a.fold(post, sentiment)
		a.implicitHits++
		a.implicitScoreSum += implicit.Score
	}
}

// Merge folds another accumulator into this one. Sum and union operations
// only, so shard order never changes the result.
func (m MemeAccumulator) Merge(other MemeAccumulator) {
	for key, b := range other {
		a, ok := m[key]
		if !ok {
			m[key] = b
			continue
		}
		a.mentionCount += b.mentionCount
		a.explicitHits += b.explicitHits
		a.implicitHits += b.implicitHits
		a.implicitScoreSum += b.implicitScoreSum
		a.sentimentSum += b.sentimentSum
		a.sentimentN += b.sentimentN
		for author := range b.authors {
			a.authors[author] = struct{}{}
		}
		if a.firstSeen.IsZero() || (!b.firstSeen.IsZero() && b.firstSeen.Before(a.firstSeen)) {
			a.firstSeen = b.firstSeen
		}
		if b.lastSeen.After(a.lastSeen) {
			a.lastSeen = b.lastSeen
		}
		for _, id := range b.samples {
			if len(a.samples) >= maxSamplePosts {
				break
			}
			a.samples = append(a.samples, id)
		}
	}
}

// decayScore applies half-life decay to the age of a candidate's first
// sighting. Monotonically non-increasing in age, floored at 0.
func decayScore(firstSeen, now time.Time, halfLife time.Duration) float64 {
	if firstSeen.IsZero() || !now.After(firstSeen) {
		return 100
	}
	age := now.Sub(firstSeen).Hours()
	return 100 * math.Pow(0.5, age/halfLife.Hours())
}

// ScoreCandidates computes quality for every accumulated candidate and
// splits the result into the ranked output and the diagnostics noise
// bucket. Ranked order: quality descending, mention count descending,
// key ascending.
func ScoreCandidates(m MemeAccumulator, communityOf map[string]int, now time.Time, cfg Config) (ranked, noise []models.MemeCandidate) {
	for _, a := range m {
		avgSentiment := 0.0
		if a.sentimentN > 0 {
			avgSentiment = a.sentimentSum / float64(a.sentimentN)
		}

		communities := make(map[int]struct{})
		for author := range a.authors {
			if id, ok := communityOf[author]; ok {
				communities[id] = struct{}{}
			}
		}

		mention := clamp100(float64(a.mentionCount) / mentionNorm * 100)
		diversity := clamp100(float64(len(a.authors)) / diversityNorm * 100)
		sentiment := (avgSentiment + 1) * 50
		community := clamp100(float64(len(communities)) / communityNorm * 100)
		decay := decayScore(a.firstSeen, now, cfg.DecayHalfLife)

		quality := qualityMentionWeight*mention +
			qualityDiversityWeight*diversity +
			qualitySentimentWeight*sentiment +
			qualityCommunityWeight*community +
			qualityDecayWeight*decay

		implicitScore := 0.0
		if a.implicitHits > 0 {
			implicitScore = clamp100(a.implicitScoreSum / float64(a.implicitHits))
		}

		c := models.MemeCandidate{
			Key:           a.key,
			Category:      a.category,
			MentionCount:  a.mentionCount,
			UniqueUsers:   len(a.authors),
			AvgSentiment:  avgSentiment,
			ExplicitHits:  a.explicitHits,
			ImplicitScore: implicitScore,
			QualityScore:  clamp100(quality),
			DetectionType: detectionType(a),
			Communities:   len(communities),
			FirstSeen:     a.firstSeen,
			LastSeen:      a.lastSeen,
			SamplePosts:   a.samples,
		}
		if c.QualityScore < cfg.MinQuality {
			noise = append(noise, c)
		} else {
			ranked = append(ranked, c)
		}
	}

	rankMemes(ranked)
	rankMemes(noise)
	return ranked, noise
}

func detectionType(a *memeAccum) string {
	switch {
	case a.explicitHits > 0 && a.implicitHits > 0:
		return models.DetectionBoth
	case a.explicitHits > 0:
		return models.DetectionExplicit
	default:
		return models.DetectionImplicit
	}
}

func rankMemes(memes []models.MemeCandidate) {
	sort.Slice(memes, func(i, j int) bool {
		if memes[i].QualityScore != memes[j].QualityScore {
			return memes[i].QualityScore > memes[j].QualityScore
		}
		if memes[i].MentionCount != memes[j].MentionCount {
			return memes[i].MentionCount > memes[j].MentionCount
		}
		return memes[i].Key < memes[j].Key
	})
}
