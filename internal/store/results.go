package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/onemapl3/twitter-meme-analysis/pkg/database"
	"github.com/onemapl3/twitter-meme-analysis/pkg/models"
)

// SaveResult persists one run's full output in a single transaction. A
// run either lands completely or not at all; readers never see a partial
// result set.
func (s *Store) SaveResult(ctx context.Context, result *models.AnalysisResult, fingerprints []string) error {
	tx, err := s.pg.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	run := result.Run
	_, err = tx.ExecContext(ctx, `
		INSERT INTO analysis_runs (
			run_id, status, started_at, finished_at,
			posts_seen, posts_accepted, duplicates, authors_scored,
			memes_detected, memes_filtered, edges_dropped,
			graph_nodes, graph_edges, graph_components, graph_communities,
			modularity, eigenvector_fallback
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		run.RunID, run.Status, run.StartedAt, run.FinishedAt,
		run.Counters.PostsSeen, run.Counters.PostsAccepted, run.Counters.Duplicates,
		run.Counters.AuthorsScored, run.Counters.MemesDetected, run.Counters.MemesFiltered,
		run.Counters.EdgesDropped, result.Graph.Nodes, result.Graph.Edges,
		result.Graph.Components, result.Graph.Communities,
		result.Graph.Modularity, result.Graph.EigenvectorFallback)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	for _, k := range result.KOLs {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO kol_profiles (
				run_id, author_id, handle, score, tier, category,
				follower_score, engagement_score, coverage_score, activity_score,
				verified, follower_count, network_reach, scored_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
			run.RunID, k.AuthorID, k.Handle, k.Score, k.Tier, k.Category,
			k.Components.Follower, k.Components.Engagement, k.Components.Coverage,
			k.Components.Activity, k.Verified, k.FollowerCount, k.NetworkReach, k.ScoredAt)
		if err != nil {
			return fmt.Errorf("failed to insert kol profile %s: %w", k.AuthorID, err)
		}
	}

	insertMeme := func(m models.MemeCandidate, noise bool) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO meme_candidates (
				run_id, key, category, mention_count, unique_users, avg_sentiment,
				explicit_hits, implicit_score, quality_score, detection_type,
				communities, first_seen, last_seen, noise
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
			run.RunID, m.Key, m.Category, m.MentionCount, m.UniqueUsers, m.AvgSentiment,
			m.ExplicitHits, m.ImplicitScore, m.QualityScore, m.DetectionType,
			m.Communities, m.FirstSeen, m.LastSeen, noise)
		return err
	}
	for _, m := range result.Memes {
		if err := insertMeme(m, false); err != nil {
			return fmt.Errorf("failed to insert meme %s: %w", m.Key, err)
		}
	}
	for _, m := range result.Noise {
		if err := insertMeme(m, true); err != nil {
			return fmt.Errorf("failed to insert noise meme %s: %w", m.Key, err)
		}
	}

	for _, fp := range fingerprints {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO seen_fingerprints (fingerprint, created_at)
			VALUES ($1, NOW())
			ON CONFLICT (fingerprint) DO NOTHING`, fp)
		if err != nil {
			return fmt.Errorf("failed to insert fingerprint: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run %s: %w", run.RunID, err)
	}
	return nil
}

// LatestRun returns the most recent completed run's metadata, or
// database.ErrNoRows when no run has completed yet.
func (s *Store) LatestRun(ctx context.Context) (*models.AnalysisRun, error) {
	var run models.AnalysisRun
	err := s.pg.QueryRowContext(ctx, `
		SELECT run_id, status, started_at, finished_at,
			posts_seen, posts_accepted, duplicates, authors_scored,
			memes_detected, memes_filtered, edges_dropped,
			graph_nodes, graph_communities
		FROM analysis_runs
		WHERE status = $1
		ORDER BY started_at DESC
		LIMIT 1`, models.RunStatusCompleted).Scan(
		&run.RunID, &run.Status, &run.StartedAt, &run.FinishedAt,
		&run.Counters.PostsSeen, &run.Counters.PostsAccepted, &run.Counters.Duplicates,
		&run.Counters.AuthorsScored, &run.Counters.MemesDetected, &run.Counters.MemesFiltered,
		&run.Counters.EdgesDropped, &run.Counters.GraphNodes, &run.Counters.GraphCommunities)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, database.ErrNoRows
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load latest run: %w", err)
	}
	return &run, nil
}

// LatestGraphSummary returns the graph summary of the latest completed run.
func (s *Store) LatestGraphSummary(ctx context.Context) (*models.GraphSummary, error) {
	var g models.GraphSummary
	err := s.pg.QueryRowContext(ctx, `
		SELECT graph_nodes, graph_edges, edges_dropped, graph_components,
			graph_communities, modularity, eigenvector_fallback
		FROM analysis_runs
		WHERE status = $1
		ORDER BY started_at DESC
		LIMIT 1`, models.RunStatusCompleted).Scan(
		&g.Nodes, &g.Edges, &g.DroppedEdges, &g.Components,
		&g.Communities, &g.Modularity, &g.EigenvectorFallback)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, database.ErrNoRows
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load graph summary: %w", err)
	}
	return &g, nil
}

// ListKOLs returns the ranked profiles of the latest completed run,
// optionally filtered by tier and category.
func (s *Store) ListKOLs(ctx context.Context, tier, category string, limit int) ([]models.KOLProfile, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pg.QueryContext(ctx, `
		SELECT author_id, handle, score, tier, category,
			follower_score, engagement_score, coverage_score, activity_score,
			verified, follower_count, network_reach, scored_at
		FROM kol_profiles
		WHERE run_id = (SELECT run_id FROM analysis_runs WHERE status = $1 ORDER BY started_at DESC LIMIT 1)
			AND ($2 = '' OR tier = $2)
			AND ($3 = '' OR category = $3)
		ORDER BY score DESC, author_id ASC
		LIMIT $4`,
		models.RunStatusCompleted, tier, category, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list kols: %w", err)
	}
	defer rows.Close()

	var kols []models.KOLProfile
	for rows.Next() {
		var k models.KOLProfile
		if err := rows.Scan(&k.AuthorID, &k.Handle, &k.Score, &k.Tier, &k.Category,
			&k.Components.Follower, &k.Components.Engagement, &k.Components.Coverage,
			&k.Components.Activity, &k.Verified, &k.FollowerCount, &k.NetworkReach, &k.ScoredAt); err != nil {
			return nil, fmt.Errorf("failed to scan kol profile: %w", err)
		}
		kols = append(kols, k)
	}
	return kols, rows.Err()
}

// ListMemes returns the ranked candidates of the latest completed run.
// Noise rows are excluded; NoiseCount reports how many were filtered.
func (s *Store) ListMemes(ctx context.Context, detectionType string, limit int) ([]models.MemeCandidate, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pg.QueryContext(ctx, `
		SELECT key, category, mention_count, unique_users, avg_sentiment,
			explicit_hits, implicit_score, quality_score, detection_type,
			communities, first_seen, last_seen
		FROM meme_candidates
		WHERE run_id = (SELECT run_id FROM analysis_runs WHERE status = $1 ORDER BY started_at DESC LIMIT 1)
			AND noise = FALSE
			AND ($2 = '' OR detection_type = $2)
		ORDER BY quality_score DESC, mention_count DESC, key ASC
		LIMIT $3`,
		models.RunStatusCompleted, detectionType, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list memes: %w", err)
	}
	defer rows.Close()

	var memes []models.MemeCandidate
	for rows.Next() {
		var m models.MemeCandidate
		if err := rows.Scan(&m.Key, &m.Category, &m.MentionCount, &m.UniqueUsers, &m.AvgSentiment,
			&m.ExplicitHits, &m.ImplicitScore, &m.QualityScore, &m.DetectionType,
			&m.Communities, &m.FirstSeen, &m.LastSeen); err != nil {
			return nil, fmt.Errorf("failed to scan meme candidate: %w", err)
		}
		memes = append(memes, m)
	}
	return memes, rows.Err()
}

// NoiseCount reports how many candidates the latest run filtered below
// the quality threshold.
func (s *Store) NoiseCount(ctx context.Context) (int, error) {
	var count int
	err := s.pg.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM meme_candidates
		WHERE run_id = (SELECT run_id FROM analysis_runs WHERE status = $1 ORDER BY started_at DESC LIMIT 1)
			AND noise = TRUE`,
		models.RunStatusCompleted).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count noise: %w", err)
	}
	return count, nil
}
