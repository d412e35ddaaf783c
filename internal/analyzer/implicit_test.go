package analyzer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreImplicitTrendHeavyPost(t *testing.T) {
	cfg := DefaultConfig()
	res := ScoreImplicit("$DOGE to the moon! 🚀", cfg)

	assert.GreaterOrEqual(t, res.Score, cfg.ImplicitThreshold)
	assert.Equal(t, "to the moon", res.DominantPhrase, "longer phrase wins over its substring")
}

func TestScoreImplicitNeutralText(t *testing.T) {
	cfg := DefaultConfig()
	res := ScoreImplicit("the quarterly report was filed on schedule", cfg)

	assert.Less(t, res.Score, cfg.ImplicitThreshold)
	assert.Empty(t, res.DominantPhrase)
}

func TestScoreImplicitBounds(t *testing.T) {
	cfg := DefaultConfig()
	texts := []string{
		"",
		"pump pump pump HODL FOMO WAGMI LFG!!!! the best biggest most insane gains",
		strings.Repeat("scam rug dump crash ", 50),
	}
	for _, text := range texts {
		res := ScoreImplicit(text, cfg)
		assert.GreaterOrEqual(t, res.Score, 0.0)
		assert.LessOrEqual(t, res.Score, 100.0)
	}
}

func TestScoreImplicitDominantByCount(t *testing.T) {
	cfg := DefaultConfig()
	res := ScoreImplicit("pump it, pump it again, one fomo", cfg)
	assert.Equal(t, "pump", res.DominantPhrase)
}

func TestScoreImplicitSentimentInjection(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Sentiment = func(string) float64 { return 5 } // clamped to 1
	high := ScoreImplicit("plain text", cfg)

	cfg.Sentiment = func(string) float64 { return -5 } // clamped to -1
	low := ScoreImplicit("plain text", cfg)

	assert.InDelta(t, 40, high.Score, 1e-9)
	assert.InDelta(t, 0, low.Score, 1e-9)
}

func TestLanguagePattern(t *testing.T) {
	assert.Zero(t, languagePattern(""))
	assert.InDelta(t, 15, languagePattern("just one exclamation!"), 1e-9)
	assert.InDelta(t, 100, languagePattern("THE BEST BIGGEST insane HUGE!!!!"), 1e-6)
}

func TestLexiconSentiment(t *testing.T) {
	assert.Zero(t, LexiconSentiment("completely neutral words"))
	assert.InDelta(t, 1, LexiconSentiment("amazing gains, love it"), 1e-9)
	assert.InDelta(t, -1, LexiconSentiment("terrible scam, total rug"), 1e-9)
	assert.InDelta(t, 0, LexiconSentiment("good but bad"), 1e-9)
}
