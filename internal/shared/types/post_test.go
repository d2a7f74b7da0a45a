package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostStatusTransitions(t *testing.T) {
	tests := []struct {
		from, to PostStatus
		want     bool
	}{
		{PostDraft, PostScheduled, true},
		{PostDraft, PostPublished, true},
		{PostDraft, PostDraft, false},
		{PostScheduled, PostDraft, false},
		{PostScheduled, PostPublished, false},
		{PostPublished, PostDraft, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransition(tt.to))
		})
	}

	assert.False(t, PostStatus("archived").Valid())
}

func TestAPITimeAcceptsZonelessTimestamps(t *testing.T) {
	var post ScheduledPost
	err := json.Unmarshal([]byte(`{
		"id": 7,
		"title": "T",
		"content": "C",
		"platform": "Instagram",
		"status": "scheduled",
		"scheduled_time": "2025-11-01T09:30:00",
		"created_at": "2025-10-30T08:00:00.123456"
	}`), &post)
	require.NoError(t, err)

	require.NotNil(t, post.ScheduledTime)
	assert.Equal(t, time.Date(2025, 11, 1, 9, 30, 0, 0, time.UTC), post.ScheduledTime.Time)
	assert.Equal(t, 123456000, post.CreatedAt.Nanosecond())
}

func TestAPITimeNullAndInvalid(t *testing.T) {
	var post ScheduledPost
	require.NoError(t, json.Unmarshal([]byte(`{"status":"draft","scheduled_time":null}`), &post))
	assert.Nil(t, post.ScheduledTime)

	err := json.Unmarshal([]byte(`{"scheduled_time":"next tuesday"}`), &post)
	assert.Error(t, err)
}

func TestPostRequestEncodesDraftWithNullTime(t *testing.T) {
	body, err := json.Marshal(PostRequest{Title: "T", Content: "C", Platform: "Instagram", Status: PostDraft})
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"T","content":"C","platform":"Instagram","status":"draft","scheduled_time":null}`, string(body))

	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.FixedZone("IST", 19800))
	body, err = json.Marshal(PostRequest{Status: PostScheduled, ScheduledTime: NewAPITime(at)})
	require.NoError(t, err)
	assert.Contains(t, string(body), `"scheduled_time":"2025-01-01T21:34:05Z"`)
}
