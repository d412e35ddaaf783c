package kafka

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeSocialEventPost(t *testing.T) {
	payload := PostPayload{
		ID:        "p1",
		AuthorID:  "a1",
		Text:      "$DOGE to the moon",
		CreatedAt: time.Now().Unix(),
		Likes:     3,
	}
	raw, err := json.Marshal(payload)
	require.NoError(t, err)

	envelope, err := json.Marshal(SocialEvent{
		EventID:       "e1",
		EventType:     EventTypePost,
		Timestamp:     time.Now(),
		Source:        "collector",
		SchemaVersion: "1.0",
		Data:          raw,
	})
	require.NoError(t, err)

	event, err := DecodeSocialEvent(envelope)
	require.NoError(t, err)
	assert.Equal(t, EventTypePost, event.EventType)

	post, err := event.Post()
	require.NoError(t, err)
	assert.Equal(t, "p1", post.ID)
	assert.Equal(t, "a1", post.AuthorID)
	assert.Equal(t, int64(3), post.Likes)
}

func TestDecodeSocialEventRejectsMissingType(t *testing.T) {
	_, err := DecodeSocialEvent([]byte(`{"event_id":"e1"}`))
	assert.Error(t, err)
}

func TestPayloadAccessorsRejectWrongType(t *testing.T) {
	event := &SocialEvent{EventID: "e1", EventType: EventTypeFollow, Data: json.RawMessage(`{}`)}
	_, err := event.Post()
	assert.Error(t, err)
	_, err = event.Author()
	assert.Error(t, err)
	_, err = event.Follow()
	assert.NoError(t, err)
}
