package store

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/onemapl3/twitter-meme-analysis/pkg/database"
	"github.com/onemapl3/twitter-meme-analysis/pkg/models"
)

// Store is the persistence surface for analysis inputs and outputs.
// Postgres holds authors, edges, fingerprints, and derived results;
// ClickHouse holds the raw post stream.
type Store struct {
	pg     database.PostgresConn
	ch     database.ClickHouseConn
	logger *logrus.Logger
}

func NewStore(pg database.PostgresConn, ch database.ClickHouseConn, logger *logrus.Logger) *Store {
	return &Store{pg: pg, ch: ch, logger: logger}
}

// LoadAuthors returns the full author snapshot for an analysis run.
func (s *Store) LoadAuthors(ctx context.Context) ([]models.Author, error) {
	rows, err := s.pg.QueryContext(ctx, `
		SELECT id, handle, follower_count, verified, tweet_count, COALESCE(description, ''), updated_at
		FROM authors
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to load authors: %w", err)
	}
	defer rows.Close()

	var authors []models.Author
	for rows.Next() {
		var a models.Author
		if err := rows.Scan(&a.ID, &a.Handle, &a.FollowerCount, &a.Verified, &a.TweetCount, &a.Description, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan author: %w", err)
		}
		authors = append(authors, a)
	}
	return authors, rows.Err()
}

// UpsertAuthors writes the latest profile snapshot for each author.
func (s *Store) UpsertAuthors(ctx context.Context, authors []models.Author) error {
	for _, a := range authors {
		_, err := s.pg.ExecContext(ctx, `
			INSERT INTO authors (id, handle, follower_count, verified, tweet_count, description, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, NOW())
			ON CONFLICT (id) DO UPDATE SET
				handle = EXCLUDED.handle,
				follower_count = EXCLUDED.follower_count,
				verified = EXCLUDED.verified,
				tweet_count = EXCLUDED.tweet_count,
				description = EXCLUDED.description,
				updated_at = NOW()`,
			a.ID, a.Handle, a.FollowerCount, a.Verified, a.TweetCount, a.Description)
		if err != nil {
			return fmt.Errorf("failed to upsert author %s: %w", a.ID, err)
		}
	}
	return nil
}

// AddFollowEdges accumulates relation weights. Repeated observations of
// the same edge sum instead of overwriting.
func (s *Store) AddFollowEdges(ctx context.Context, edges []models.FollowEdge) error {
	for _, e := range edges {
		w := e.Weight
		if w == 0 {
			w = 1
		}
		_, err := s.pg.ExecContext(ctx, `
			INSERT INTO follow_edges (src_id, dst_id, weight)
			VALUES ($1, $2, $3)
			ON CONFLICT (src_id, dst_id) DO UPDATE SET
				weight = follow_edges.weight + EXCLUDED.weight`,
			e.SrcID, e.DstID, w)
		if err != nil {
			return fmt.Errorf("failed to upsert edge %s->%s: %w", e.SrcID, e.DstID, err)
		}
	}
	return nil
}

// LoadEdges returns the accumulated relation edges.
func (s *Store) LoadEdges(ctx context.Context) ([]models.FollowEdge, error) {
	rows, err := s.pg.QueryContext(ctx, `
		SELECT src_id, dst_id, weight
		FROM follow_edges
		ORDER BY src_id, dst_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to load edges: %w", err)
	}
	defer rows.Close()

	var edges []models.FollowEdge
	for rows.Next() {
		var e models.FollowEdge
		if err := rows.Scan(&e.SrcID, &e.DstID, &e.Weight); err != nil {
			return nil, fmt.Errorf("failed to scan edge: %w", err)
		}
		edges = append(edges, e)
	}
	return edges, rows.Err()
}

// LoadFingerprints returns the persisted dedup fingerprints.
func (s *Store) LoadFingerprints(ctx context.Context) ([]string, error) {
	rows, err := s.pg.QueryContext(ctx, `SELECT fingerprint FROM seen_fingerprints`)
	if err != nil {
		return nil, fmt.Errorf("failed to load fingerprints: %w", err)
	}
	defer rows.Close()

	var fps []string
	for rows.Next() {
		var fp string
		if err := rows.Scan(&fp); err != nil {
			return nil, fmt.Errorf("failed to scan fingerprint: %w", err)
		}
		fps = append(fps, fp)
	}
	return fps, rows.Err()
}

// FetchPosts reads the raw post stream from ClickHouse for one window.
func (s *Store) FetchPosts(ctx context.Context, from, to time.Time) ([]models.RawPost, error) {
	rows, err := s.ch.QueryContext(ctx, `
		SELECT id, author_id, text, created_at, tags, mentions, likes, reposts, replies, source
		FROM social_posts
		WHERE created_at >= ? AND created_at < ?
		ORDER BY created_at`,
		from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch posts: %w", err)
	}
	defer rows.Close()

	var posts []models.RawPost
	for rows.Next() {
		var p models.RawPost
		if err := rows.Scan(&p.ID, &p.AuthorID, &p.Text, &p.CreatedAt, &p.Tags, &p.Mentions, &p.Likes, &p.Reposts, &p.Replies, &p.Source); err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}
