package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/onemapl3/twitter-meme-analysis/internal/store"
	"github.com/onemapl3/twitter-meme-analysis/pkg/database"
	"github.com/onemapl3/twitter-meme-analysis/pkg/kafka"
	"github.com/onemapl3/twitter-meme-analysis/pkg/logging"
	"github.com/onemapl3/twitter-meme-analysis/pkg/models"
)

// IngestMetrics holds the Prometheus metrics for the collector stream.
type IngestMetrics struct {
	SocialEvents      *prometheus.CounterVec
	ClickHouseInserts *prometheus.CounterVec
	ProcessingTime    *prometheus.HistogramVec
	KafkaMessages     *prometheus.CounterVec
}

// SocialHandler consumes collector events: posts land in ClickHouse for
// time-series reads, authors and follow edges go to Postgres.
type SocialHandler struct {
	clickhouse database.ClickHouseNativeConn
	store      *store.Store
	logger     logging.Logger
	metrics    *IngestMetrics
}

func NewSocialHandler(clickhouse database.ClickHouseNativeConn, st *store.Store, logger logging.Logger, metrics *IngestMetrics) *SocialHandler {
	return &SocialHandler{
		clickhouse: clickhouse,
		store:      st,
		logger:     logger,
		metrics:    metrics,
	}
}

// HandleMessage decodes one Kafka message and routes it by event type.
// Returning an error blocks the partition so nothing is skipped.
func (h *SocialHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	start := time.Now()

	if h.metrics != nil {
		h.metrics.KafkaMessages.WithLabelValues(msg.Topic, "received").Inc()
	}

	event, err := kafka.DecodeSocialEvent(msg.Value)
	if err != nil {
		// A malformed message will never decode; log and move on rather
		// than wedging the partition.
		h.logger.WithError(err).WithFields(logging.Fields{
			"topic":  msg.Topic,
			"offset": msg.Offset,
		}).Error("Failed to decode social event")
		if h.metrics != nil {
			h.metrics.SocialEvents.WithLabelValues("unknown", "decode_failed").Inc()
		}
		return nil
	}

	if h.metrics != nil {
		h.metrics.SocialEvents.WithLabelValues(event.EventType, "received").Inc()
		defer func() {
			h.metrics.ProcessingTime.WithLabelValues(event.EventType).Observe(time.Since(start).Seconds())
		}()
	}

	switch event.EventType {
	case kafka.EventTypePost:
		return h.processPost(ctx, event)
	case kafka.EventTypeAuthor:
		return h.processAuthor(ctx, event)
	case kafka.EventTypeFollow:
		return h.processFollow(ctx, event)
	default:
		h.logger.WithField("event_type", event.EventType).Warn("Unknown social event type")
		if h.metrics != nil {
			h.metrics.SocialEvents.WithLabelValues(event.EventType, "unknown_type").Inc()
		}
		return nil
	}
}

func (h *SocialHandler) processPost(ctx context.Context, event *kafka.SocialEvent) error {
	post, err := event.Post()
	if err != nil {
		h.logger.WithError(err).WithField("event_id", event.EventID).Error("Invalid post payload")
		return nil
	}
	if post.ID == "" || post.AuthorID == "" {
		h.logger.WithField("event_id", event.EventID).Warn("Post event missing id or author")
		return nil
	}

	batch, err := h.clickhouse.PrepareBatch(ctx, `
		INSERT INTO social_posts (
			id, author_id, text, created_at, tags, mentions,
			likes, reposts, replies, source
		)`)
	if err != nil {
		return fmt.Errorf("failed to prepare post batch: %w", err)
	}

	if err := batch.Append(
		post.ID,
		post.AuthorID,
		post.Text,
		time.Unix(post.CreatedAt, 0).UTC(),
		post.Tags,
		post.Mentions,
		uint32(post.Likes),
		uint32(post.Reposts),
		uint32(post.Replies),
		event.Source,
	); err != nil {
		return fmt.Errorf("failed to append post %s: %w", post.ID, err)
	}

	if err := batch.Send(); err != nil {
		if h.metrics != nil {
			h.metrics.ClickHouseInserts.WithLabelValues("social_posts", "error").Inc()
		}
		return fmt.Errorf("failed to send post batch: %w", err)
	}
	if h.metrics != nil {
		h.metrics.ClickHouseInserts.WithLabelValues("social_posts", "success").Inc()
	}
	return nil
}

func (h *SocialHandler) processAuthor(ctx context.Context, event *kafka.SocialEvent) error {
	author, err := event.Author()
	if err != nil {
		h.logger.WithError(err).WithField("event_id", event.EventID).Error("Invalid author payload")
		return nil
	}
	if author.ID == "" {
		h.logger.WithField("event_id", event.EventID).Warn("Author event missing id")
		return nil
	}

	return h.store.UpsertAuthors(ctx, []models.Author{{
		ID:            author.ID,
		Handle:        author.Handle,
		FollowerCount: int(author.FollowerCount),
		Verified:      author.Verified,
		TweetCount:    int(author.TweetCount),
		Description:   author.Description,
	}})
}

func (h *SocialHandler) processFollow(ctx context.Context, event *kafka.SocialEvent) error {
	follow, err := event.Follow()
	if err != nil {
		h.logger.WithError(err).WithField("event_id", event.EventID).Error("Invalid follow payload")
		return nil
	}
	if follow.SrcID == "" || follow.DstID == "" {
		h.logger.WithField("event_id", event.EventID).Warn("Follow event missing endpoint")
		return nil
	}

	return h.store.AddFollowEdges(ctx, []models.FollowEdge{{
		SrcID:  follow.SrcID,
		DstID:  follow.DstID,
		Weight: follow.Weight,
	}})
}
