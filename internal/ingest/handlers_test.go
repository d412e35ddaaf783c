package ingest

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onemapl3/twitter-meme-analysis/internal/store"
	"github.com/onemapl3/twitter-meme-analysis/pkg/kafka"
	"github.com/onemapl3/twitter-meme-analysis/pkg/logging"
)

func setupHandler(t *testing.T) (*SocialHandler, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	st := store.NewStore(db, nil, logging.NewTestLogger())
	return NewSocialHandler(nil, st, logging.NewTestLogger(), nil), mock
}

func socialMessage(t *testing.T, eventType string, payload interface{}) kafka.Message {
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	value, err := json.Marshal(kafka.SocialEvent{
		EventID:   "evt-1",
		EventType: eventType,
		Source:    "collector",
		Data:      data,
	})
	require.NoError(t, err)
	return kafka.Message{Topic: kafka.TopicSocialAuthors, Value: value}
}

func TestHandleMessageAuthorUpsert(t *testing.T) {
	h, mock := setupHandler(t)

	mock.ExpectExec("INSERT INTO authors").
		WithArgs("a1", "whale", 1000000, true, 5000, "bio").
		WillReturnResult(sqlmock.NewResult(0, 1))

	msg := socialMessage(t, kafka.EventTypeAuthor, kafka.AuthorPayload{
		ID: "a1", Handle: "whale", FollowerCount: 1000000, Verified: true, TweetCount: 5000, Description: "bio",
	})
	require.NoError(t, h.HandleMessage(context.Background(), msg))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandleMessageFollowEdge(t *testing.T) {
	h, mock := setupHandler(t)

	mock.ExpectExec("INSERT INTO follow_edges").
		WithArgs("a1", "a2", 2.0).
		WillReturnResult(sqlmock.NewResult(0, 1))

	msg := socialMessage(t, kafka.EventTypeFollow, kafka.FollowPayload{SrcID: "a1", DstID: "a2", Weight: 2})
	require.NoError(t, h.HandleMessage(context.Background(), msg))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandleMessageMalformedSkipped(t *testing.T) {
	h, mock := setupHandler(t)

	// Undecodable messages must not block the partition.
	err := h.HandleMessage(context.Background(), kafka.Message{Value: []byte("not json")})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandleMessageMissingAuthorIDSkipped(t *testing.T) {
	h, mock := setupHandler(t)

	msg := socialMessage(t, kafka.EventTypeAuthor, kafka.AuthorPayload{Handle: "noid"})
	assert.NoError(t, h.HandleMessage(context.Background(), msg))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandleMessageUnknownTypeSkipped(t *testing.T) {
	h, mock := setupHandler(t)

	msg := socialMessage(t, "mystery", map[string]string{})
	assert.NoError(t, h.HandleMessage(context.Background(), msg))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandleMessageCountsPerTopic(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	m := &IngestMetrics{
		SocialEvents:      prometheus.NewCounterVec(prometheus.CounterOpts{Name: "social_events_total"}, []string{"event_type", "status"}),
		ClickHouseInserts: prometheus.NewCounterVec(prometheus.CounterOpts{Name: "clickhouse_inserts_total"}, []string{"table", "status"}),
		ProcessingTime:    prometheus.NewHistogramVec(prometheus.HistogramOpts{Name: "event_processing_duration_seconds"}, []string{"event_type"}),
		KafkaMessages:     prometheus.NewCounterVec(prometheus.CounterOpts{Name: "kafka_messages_total"}, []string{"topic", "status"}),
	}
	st := store.NewStore(db, nil, logging.NewTestLogger())
	h := NewSocialHandler(nil, st, logging.NewTestLogger(), m)

	mock.ExpectExec("INSERT INTO authors").WillReturnResult(sqlmock.NewResult(0, 1))
	msg := socialMessage(t, kafka.EventTypeAuthor, kafka.AuthorPayload{ID: "a1", Handle: "whale"})
	require.NoError(t, h.HandleMessage(context.Background(), msg))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.KafkaMessages.WithLabelValues(kafka.TopicSocialAuthors, "received")))

	// A message that fails to decode still counts against its topic.
	require.NoError(t, h.HandleMessage(context.Background(), kafka.Message{Topic: kafka.TopicSocialPosts, Value: []byte("not json")}))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.KafkaMessages.WithLabelValues(kafka.TopicSocialPosts, "received")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SocialEvents.WithLabelValues("unknown", "decode_failed")))
}
