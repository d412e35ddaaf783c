package analyzer

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative follower norm", func(c *Config) { c.FollowerNorm = -1 }},
		{"zero coverage norm", func(c *Config) { c.CoverageNorm = 0 }},
		{"zero activity norm", func(c *Config) { c.ActivityNorm = 0 }},
		{"quality over 100", func(c *Config) { c.MinQuality = 101 }},
		{"negative threshold", func(c *Config) { c.ImplicitThreshold = -1 }},
		{"zero saturation", func(c *Config) { c.TrendSaturation = 0 }},
		{"zero half-life", func(c *Config) { c.DecayHalfLife = 0 }},
		{"zero window", func(c *Config) { c.DedupWindow = 0 }},
		{"nil sentiment", func(c *Config) { c.Sentiment = nil }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("ANALYZER_FOLLOWER_NORM", "500000")
	t.Setenv("ANALYZER_MIN_QUALITY", "35.5")
	t.Setenv("ANALYZER_DEDUP_WINDOW", "30m")
	t.Setenv("ANALYZER_STOPLIST", "BTC, ETH")

	cfg := DefaultConfig()
	cfg.LoadFromEnv()

	assert.Equal(t, 500000.0, cfg.FollowerNorm)
	assert.Equal(t, 35.5, cfg.MinQuality)
	assert.Equal(t, 30*time.Minute, cfg.DedupWindow)
	assert.Equal(t, []string{"BTC", "ETH"}, cfg.Stoplist)
}

func TestLoadLexicon(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lexicon.yaml")
	content := []byte(`
stoplist:
  - AAA
  - BBB
trend_phrases:
  - "custom phrase"
categories:
  sports:
    - football
`)
	require.NoError(t, os.WriteFile(path, content, 0o644))

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadLexicon(path))

	assert.Equal(t, []string{"AAA", "BBB"}, cfg.Stoplist)
	assert.Equal(t, []string{"custom phrase"}, cfg.TrendPhrases)
	assert.Equal(t, []string{"football"}, cfg.CategoryVocabularies["sports"])
}

func TestLoadLexiconMissingFile(t *testing.T) {
	cfg := DefaultConfig()
	assert.Error(t, cfg.LoadLexicon("/nonexistent/lexicon.yaml"))
}

func TestStopsetCaseInsensitive(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Stoplist = []string{"btc", " Eth "}
	set := cfg.stopset()

	_, ok := set["BTC"]
	assert.True(t, ok)
	_, ok = set["ETH"]
	assert.True(t, ok)
}
