package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func keysOf(hits []ExplicitHit) []string {
	keys := make([]string, len(hits))
	for i, h := range hits {
		keys[i] = h.Key
	}
	return keys
}

func TestExtractExplicitCashtag(t *testing.T) {
	hits := ExtractExplicit("$DOGE to the moon! 🚀", DefaultConfig().stopset())
	require.Len(t, hits, 1)
	assert.Equal(t, "DOGE", hits[0].Key)
	assert.Equal(t, "symbol", hits[0].Category)
}

func TestExtractExplicitAllPatterns(t *testing.T) {
	hits := ExtractExplicit("$WIF and #memeseason with @elonmusk buying mooncoin", map[string]struct{}{})
	assert.Equal(t, []string{"MOONCOIN", "WIF", "elonmusk", "memeseason"}, keysOf(hits))
}

func TestExtractExplicitStoplistAfterMatching(t *testing.T) {
	stopset := DefaultConfig().stopset()
	hits := ExtractExplicit("$BTC and $ETH vs $PEPE", stopset)
	assert.Equal(t, []string{"PEPE"}, keysOf(hits))
}

func TestExtractExplicitDedupWithinPost(t *testing.T) {
	hits := ExtractExplicit("$PEPE $PEPE $PEPE #pepe", map[string]struct{}{})
	assert.Equal(t, []string{"PEPE", "pepe"}, keysOf(hits))
}

func TestExtractExplicitSymbolLength(t *testing.T) {
	// One letter is too short, eleven is too long.
	hits := ExtractExplicit("$A $ABCDEFGHIJK $OK", map[string]struct{}{})
	assert.Equal(t, []string{"OK"}, keysOf(hits))
}

func TestExtractExplicitNoMatches(t *testing.T) {
	assert.Empty(t, ExtractExplicit("a perfectly ordinary sentence", map[string]struct{}{}))
}
