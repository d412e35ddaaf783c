package analyzer

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/onemapl3/twitter-meme-analysis/pkg/models"
)

// Batch is the in-memory snapshot one run operates on. The ingestion and
// storage collaborators do all I/O before and after; the engine never
// touches the network or disk.
type Batch struct {
	RawPosts []models.RawPost
	Authors  []models.Author
	Edges    []models.FollowEdge

	// Seen is the caller-owned dedup index, persisted across runs.
	Seen *DedupIndex
}

// Pipeline runs the full two-phase analysis over a batch.
type Pipeline struct {
	cfg    Config
	logger *logrus.Logger
}

// NewPipeline validates the configuration up front. A bad config is a
// deployment mistake and fails here, before any batch is touched.
func NewPipeline(cfg Config, logger *logrus.Logger) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid analyzer config: %w", err)
	}
	return &Pipeline{cfg: cfg, logger: logger}, nil
}

// Run executes one analysis. Phase 1 normalizes the batch and runs meme
// accumulation and provisional KOL scoring over parallel shards; phase 2
// runs the graph pass as a single unit and rescores KOLs with the reach
// signal. On error or cancellation nothing partial is returned.
func (p *Pipeline) Run(ctx context.Context, batch Batch) (*models.AnalysisResult, error) {
	started := time.Now().UTC()
	runID := uuid.New().String()
	log := p.logger.WithField("run_id", runID)

	seen := batch.Seen
	if seen == nil {
		seen = NewDedupIndex()
	}

	posts, rejected := NormalizeAndDedup(batch.RawPosts, seen, p.cfg.DedupWindow)
	log.WithFields(logrus.Fields{
		"posts_seen":     len(batch.RawPosts),
		"posts_accepted": len(posts),
		"rejected":       rejected,
	}).Info("Batch normalized")

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Phase 1: meme accumulation sharded over the batch. Candidates merge
	// commutatively so shard boundaries never change the result.
	stopset := p.cfg.stopset()
	workers := runtime.GOMAXPROCS(0)
	if workers > len(posts) && len(posts) > 0 {
		workers = len(posts)
	}
	if workers < 1 {
		workers = 1
	}

	shards := make([]MemeAccumulator, workers)
	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		w := w
		shards[w] = NewMemeAccumulator()
		g.Go(func() error {
			for i := w; i < len(posts); i += workers {
				if err := gctx.Err(); err != nil {
					return err
				}
				shards[w].FoldPost(posts[i], p.cfg, stopset)
			}
			return nil
		})
	}

	var stats map[string]AuthorStats
	g.Go(func() error {
		stats = BuildAuthorStats(posts, batch.Authors)
		return gctx.Err()
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	accum := NewMemeAccumulator()
	for _, shard := range shards {
		accum.Merge(shard)
	}

	// Phase 2: the graph pass owns global state and runs alone; its reach
	// output feeds the final KOL scores.
	present := make(map[string]struct{}, len(batch.Authors))
	for _, a := range batch.Authors {
		present[a.ID] = struct{}{}
	}
	graphResult := AnalyzeGraph(batch.Edges, present, p.cfg)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	kols := make([]models.KOLProfile, 0, len(stats))
	for id, s := range stats {
		s.NetworkReach = graphResult.Reach[id]
		kols = append(kols, ScoreAuthor(s, p.cfg, started))
	}
	RankKOLs(kols)

	ranked, noise := ScoreCandidates(accum, graphResult.CommunityOf, started, p.cfg)

	centrality := make([]models.CentralityRecord, 0, len(graphResult.Centrality))
	for _, id := range sortedKeys(graphResult.Centrality) {
		centrality = append(centrality, graphResult.Centrality[id])
	}

	finished := time.Now().UTC()
	result := &models.AnalysisResult{
		Run: models.AnalysisRun{
			RunID:      runID,
			Status:     models.RunStatusCompleted,
			StartedAt:  started,
			FinishedAt: &finished,
			Counters: models.RunCounters{
				PostsSeen:        len(batch.RawPosts),
				PostsAccepted:    len(posts),
				Duplicates:       rejected,
				AuthorsScored:    len(kols),
				MemesDetected:    len(ranked),
				MemesFiltered:    len(noise),
				EdgesDropped:     graphResult.Summary.DroppedEdges,
				GraphNodes:       graphResult.Summary.Nodes,
				GraphCommunities: graphResult.Summary.Communities,
			},
		},
		KOLs:        kols,
		Memes:       ranked,
		Noise:       noise,
		Centrality:  centrality,
		Communities: graphResult.Communities,
		Graph:       graphResult.Summary,
	}

	log.WithFields(logrus.Fields{
		"kols":        len(kols),
		"memes":       len(ranked),
		"noise":       len(noise),
		"communities": graphResult.Summary.Communities,
		"duration_ms": finished.Sub(started).Milliseconds(),
	}).Info("Analysis run completed")

	return result, nil
}

func sortedKeys(m map[string]models.CentralityRecord) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
