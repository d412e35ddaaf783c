package analyzer

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/onemapl3/twitter-meme-analysis/pkg/config"
)

// SentimentFunc scores a text in [-1, 1]. The engine treats it as opaque;
// hosts may plug in a learned model.
type SentimentFunc func(text string) float64

// Config holds every tunable of the analysis engine. Zero values are not
// usable; start from DefaultConfig and override.
type Config struct {
	// Normalization constants for the KOL sub-scores.
	FollowerNorm float64
	CoverageNorm float64
	ActivityNorm float64

	// Meme candidate thresholds.
	MinQuality        float64
	ImplicitThreshold float64
	TrendSaturation   int

	DecayHalfLife time.Duration
	DedupWindow   time.Duration

	// Lexicons. Stoplist entries are matched case-insensitively after
	// extraction, so established assets can be excluded without touching
	// the extraction patterns.
	Stoplist     []string
	TrendPhrases []string

	// Category vocabularies for KOL labeling, keyed by category name.
	CategoryVocabularies map[string][]string

	// Seed for the community detection tie-break source. Two runs with the
	// same edges and seed produce identical assignments.
	CommunitySeed uint64

	Sentiment SentimentFunc
}

// lexiconFile is the YAML shape accepted by LoadLexicon.
type lexiconFile struct {
	Stoplist     []string            `yaml:"stoplist"`
	TrendPhrases []string            `yaml:"trend_phrases"`
	Categories   map[string][]string `yaml:"categories"`
}

// DefaultConfig returns the engine defaults. The stoplist covers
// established large-cap symbols that are not memes regardless of volume.
func DefaultConfig() Config {
	return Config{
		FollowerNorm:      1_000_000,
		CoverageNorm:      100,
		ActivityNorm:      1_000,
		MinQuality:        20,
		ImplicitThreshold: 50,
		TrendSaturation:   5,
		DecayHalfLife:     72 * time.Hour,
		DedupWindow:       time.Hour,
		Stoplist: []string{
			"BTC", "ETH", "USDT", "USDC", "BNB", "XRP", "SOL", "ADA", "TRX", "DAI",
		},
		TrendPhrases: []string{
			"to the moon", "moon", "pump", "fomo", "hodl", "diamond hands",
			"wagmi", "lfg", "bullish", "ape in", "degen", "rekt", "lambo",
			"100x", "next big thing",
		},
		CategoryVocabularies: map[string][]string{
			"tech": {
				"ai", "software", "developer", "startup", "coding", "web3",
				"blockchain", "machine learning", "saas", "engineer",
			},
			"finance": {
				"trading", "invest", "stocks", "crypto", "defi", "market",
				"portfolio", "hedge", "yield", "etf",
			},
			"entertainment": {
				"music", "movie", "gaming", "streamer", "artist", "celebrity",
				"show", "comedy", "film", "esports",
			},
		},
		CommunitySeed: 1,
		Sentiment:     LexiconSentiment,
	}
}

// LoadFromEnv overlays environment overrides onto the config. List-valued
// entries replace the defaults entirely when set.
func (c *Config) LoadFromEnv() {
	c.FollowerNorm = config.GetEnvFloat("ANALYZER_FOLLOWER_NORM", c.FollowerNorm)
	c.CoverageNorm = config.GetEnvFloat("ANALYZER_COVERAGE_NORM", c.CoverageNorm)
	c.ActivityNorm = config.GetEnvFloat("ANALYZER_ACTIVITY_NORM", c.ActivityNorm)
	c.MinQuality = config.GetEnvFloat("ANALYZER_MIN_QUALITY", c.MinQuality)
	c.ImplicitThreshold = config.GetEnvFloat("ANALYZER_IMPLICIT_THRESHOLD", c.ImplicitThreshold)
	c.TrendSaturation = config.GetEnvInt("ANALYZER_TREND_SATURATION", c.TrendSaturation)
	c.DecayHalfLife = config.GetEnvDuration("ANALYZER_DECAY_HALF_LIFE", c.DecayHalfLife)
	c.DedupWindow = config.GetEnvDuration("ANALYZER_DEDUP_WINDOW", c.DedupWindow)
	if list := config.GetEnvList("ANALYZER_STOPLIST", nil); list != nil {
		c.Stoplist = list
	}
	if list := config.GetEnvList("ANALYZER_TREND_PHRASES", nil); list != nil {
		c.TrendPhrases = list
	}
	c.CommunitySeed = uint64(config.GetEnvInt("ANALYZER_COMMUNITY_SEED", int(c.CommunitySeed)))
}

// LoadLexicon replaces the lexicon lists from a YAML file. Lists absent
// from the file keep their current values.
func (c *Config) LoadLexicon(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read lexicon file: %w", err)
	}

	var lex lexiconFile
	if err := yaml.Unmarshal(data, &lex); err != nil {
		return fmt.Errorf("failed to parse lexicon file: %w", err)
	}

	if len(lex.Stoplist) > 0 {
		c.Stoplist = lex.Stoplist
	}
	if len(lex.TrendPhrases) > 0 {
		c.TrendPhrases = lex.TrendPhrases
	}
	if len(lex.Categories) > 0 {
		c.CategoryVocabularies = lex.Categories
	}
	return nil
}

// Validate rejects configurations that indicate a deployment mistake.
// Callers must treat an error as fatal before processing any batch.
func (c *Config) Validate() error {
	if c.FollowerNorm <= 0 {
		return fmt.Errorf("follower norm must be positive, got %v", c.FollowerNorm)
	}
	if c.CoverageNorm <= 0 {
		return fmt.Errorf("coverage norm must be positive, got %v", c.CoverageNorm)
	}
	if c.ActivityNorm <= 0 {
		return fmt.Errorf("activity norm must be positive, got %v", c.ActivityNorm)
	}
	if c.MinQuality < 0 || c.MinQuality > 100 {
		return fmt.Errorf("min quality must be in [0,100], got %v", c.MinQuality)
	}
	if c.ImplicitThreshold < 0 || c.ImplicitThreshold > 100 {
		return fmt.Errorf("implicit threshold must be in [0,100], got %v", c.ImplicitThreshold)
	}
	if c.TrendSaturation <= 0 {
		return fmt.Errorf("trend saturation must be positive, got %d", c.TrendSaturation)
	}
	if c.DecayHalfLife <= 0 {
		return fmt.Errorf("decay half-life must be positive, got %v", c.DecayHalfLife)
	}
	if c.DedupWindow <= 0 {
		return fmt.Errorf("dedup window must be positive, got %v", c.DedupWindow)
	}
	if c.Sentiment == nil {
		return fmt.Errorf("sentiment function is required")
	}
	return nil
}

// stopset returns the stoplist as an uppercase lookup set.
func (c Config) stopset() map[string]struct{} {
	set := make(map[string]struct{}, len(c.Stoplist))
	for _, s := range c.Stoplist {
		set[strings.ToUpper(strings.TrimSpace(s))] = struct{}{}
	}
	return set
}
