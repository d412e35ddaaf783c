package handlers

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/onemapl3/twitter-meme-analysis/internal/analyzer"
	"github.com/onemapl3/twitter-meme-analysis/internal/metrics"
	"github.com/onemapl3/twitter-meme-analysis/internal/store"
	"github.com/onemapl3/twitter-meme-analysis/pkg/kafka"
	"github.com/onemapl3/twitter-meme-analysis/pkg/logging"
	"github.com/onemapl3/twitter-meme-analysis/pkg/models"
)

// ErrRunInProgress is returned when a trigger arrives while a run is
// still executing. Runs are serialized; overlapping them would double
// count fingerprints.
var ErrRunInProgress = errors.New("analysis run already in progress")

// AnalysisRunner loads a batch from storage, executes the pipeline, and
// persists the result. Shared by the scheduler and the manual trigger.
type AnalysisRunner struct {
	store    *store.Store
	pipeline *analyzer.Pipeline
	logger   logging.Logger
	metrics  *metrics.Metrics
	lookback time.Duration
	producer *kafka.Producer

	mu      sync.Mutex
	running bool
}

// NewAnalysisRunner creates a runner. lookback bounds how far back the
// post window reaches on each run.
func NewAnalysisRunner(st *store.Store, pipeline *analyzer.Pipeline, logger logging.Logger, m *metrics.Metrics, lookback time.Duration) *AnalysisRunner {
	if lookback <= 0 {
		lookback = 24 * time.Hour
	}
	return &AnalysisRunner{
		store:    st,
		pipeline: pipeline,
		logger:   logger,
		metrics:  m,
		lookback: lookback,
	}
}

// SetProducer enables run-completed notifications on the analysis runs
// topic. Publishing is best effort; a broker outage never fails a run.
func (r *AnalysisRunner) SetProducer(p *kafka.Producer) {
	r.producer = p
}

func (r *AnalysisRunner) tryAcquire() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return false
	}
	r.running = true
	return true
}

func (r *AnalysisRunner) release() {
	r.mu.Lock()
	r.running = false
	r.mu.Unlock()
}

// RunOnce executes one full analysis over the current snapshot.
func (r *AnalysisRunner) RunOnce(ctx context.Context) (*models.AnalysisResult, error) {
	if !r.tryAcquire() {
		return nil, ErrRunInProgress
	}
	defer r.release()

	start := time.Now()

	fps, err := r.store.LoadFingerprints(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load dedup history: %w", err)
	}
	seen := analyzer.NewDedupIndex()
	for _, fp := range fps {
		seen.Add(fp)
	}

	now := time.Now().UTC()
	posts, err := r.store.FetchPosts(ctx, now.Add(-r.lookback), now)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch posts: %w", err)
	}
	authors, err := r.store.LoadAuthors(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load authors: %w", err)
	}
	edges, err := r.store.LoadEdges(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load edges: %w", err)
	}

	result, err := r.pipeline.Run(ctx, analyzer.Batch{
		RawPosts: posts,
		Authors:  authors,
		Edges:    edges,
		Seen:     seen,
	})
	if err != nil {
		if r.metrics != nil {
			r.metrics.AnalysisRuns.WithLabelValues("error").Inc()
		}
		return nil, err
	}

	if err := r.store.SaveResult(ctx, result, seen.Snapshot()); err != nil {
		if r.metrics != nil {
			r.metrics.AnalysisRuns.WithLabelValues("save_error").Inc()
		}
		return nil, err
	}

	if r.metrics != nil {
		r.metrics.AnalysisRuns.WithLabelValues("success").Inc()
		r.metrics.AnalysisTime.WithLabelValues("full").Observe(time.Since(start).Seconds())
		r.metrics.PostsProcessed.WithLabelValues("accepted").Add(float64(result.Run.Counters.PostsAccepted))
		r.metrics.PostsProcessed.WithLabelValues("rejected").Add(float64(result.Run.Counters.Duplicates))
		r.metrics.MemeCandidates.WithLabelValues("ranked").Set(float64(len(result.Memes)))
		r.metrics.MemeCandidates.WithLabelValues("noise").Set(float64(len(result.Noise)))
		r.metrics.KOLProfiles.WithLabelValues("scored").Set(float64(len(result.KOLs)))
		r.metrics.GraphStats.WithLabelValues("nodes").Set(float64(result.Graph.Nodes))
		r.metrics.GraphStats.WithLabelValues("communities").Set(float64(result.Graph.Communities))
		r.metrics.GraphStats.WithLabelValues("modularity").Set(result.Graph.Modularity)
	}

	if r.producer != nil {
		payload := &kafka.RunPayload{
			RunID:       result.Run.RunID,
			Status:      result.Run.Status,
			StartedAt:   result.Run.StartedAt,
			KOLs:        len(result.KOLs),
			Memes:       len(result.Memes),
			Noise:       len(result.Noise),
			GraphNodes:  result.Graph.Nodes,
			Communities: result.Graph.Communities,
		}
		if result.Run.FinishedAt != nil {
			payload.FinishedAt = *result.Run.FinishedAt
		}
		event, err := kafka.NewRunEvent(payload)
		if err == nil {
			err = r.producer.PublishSocialEvent(kafka.TopicAnalysisRuns, event)
		}
		if err != nil {
			r.logger.WithError(err).Warn("Failed to publish run notification")
		}
	}

	r.logger.WithFields(logging.Fields{
		"run_id":      result.Run.RunID,
		"kols":        len(result.KOLs),
		"memes":       len(result.Memes),
		"duration_ms": time.Since(start).Milliseconds(),
	}).Info("Analysis run persisted")

	return result, nil
}
