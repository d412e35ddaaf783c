package analyzer

import (
	"strings"
	"unicode"
)

// Implicit signal weights.
const (
	implicitSentimentWeight = 0.4
	implicitTrendWeight     = 0.4
	implicitPatternWeight   = 0.2
)

var superlatives = []string{
	"best", "biggest", "huge", "massive", "insane", "incredible",
	"unbelievable", "craziest", "greatest", "epic",
}

// ImplicitResult is the pattern-inferred signal for one post.
type ImplicitResult struct {
	Score float64

	// DominantPhrase is the trend phrase with the most occurrences, used
	// as the candidate key when the post names nothing explicitly. Empty
	// when no configured phrase matched.
	DominantPhrase string
}

// ScoreImplicit rates how meme-like a post reads without any directly
// named topic: sentiment, trend-phrase density, and structural language
// patterns blended 0.4/0.4/0.2, all in [0, 100].
func ScoreImplicit(text string, cfg Config) ImplicitResult {
	lower := strings.ToLower(text)

	sentiment := (clampSentiment(cfg.Sentiment(text)) + 1) * 50

	hits := 0
	dominant, dominantCount := "", 0
	for _, phrase := range cfg.TrendPhrases {
		p := strings.ToLower(phrase)
		n := strings.Count(lower, p)
		if n == 0 {
			continue
		}
		hits++
		// Prefer the most repeated phrase; on ties keep the longer one so
		// "to the moon" beats its substring "moon".
		if n > dominantCount || (n == dominantCount && len(p) > len(dominant)) {
			dominant, dominantCount = p, n
		}
	}
	trend := clamp100(float64(hits) / float64(cfg.TrendSaturation) * 100)

	score := implicitSentimentWeight*sentiment +
		implicitTrendWeight*trend +
		implicitPatternWeight*languagePattern(text)

	return ImplicitResult{Score: clamp100(score), DominantPhrase: dominant}
}

// languagePattern scores structural hype markers: superlative density,
// exclamation density, and shouting.
func languagePattern(text string) float64 {
	words := strings.Fields(text)
	if len(words) == 0 {
		return 0
	}
	lower := strings.ToLower(text)

	superlativeHits := 0
	for _, s := range superlatives {
		superlativeHits += strings.Count(lower, s)
	}

	exclamations := strings.Count(text, "!")

	capsWords := 0
	for _, w := range words {
		letters := 0
		upper := 0
		for _, r := range w {
			if unicode.IsLetter(r) {
				letters++
				if unicode.IsUpper(r) {
					upper++
				}
			}
		}
		if letters >= 3 && upper == letters {
			capsWords++
		}
	}

	score := float64(superlativeHits)*20 + float64(exclamations)*15 + float64(capsWords)*10
	return clamp100(score)
}
