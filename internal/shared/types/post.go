package types

import (
	"bytes"
	"fmt"
	"time"
)

// PostStatus is the publication status of a scheduled post.
type PostStatus string

const (
	PostDraft     PostStatus = "draft"
	PostScheduled PostStatus = "scheduled"
	PostPublished PostStatus = "published"
)

// Valid reports whether s is a known status.
func (s PostStatus) Valid() bool {
	switch s {
	case PostDraft, PostScheduled, PostPublished:
		return true
	}
	return false
}

// CanTransition reports whether a post may move from s to next. Only drafts
// move forward; nothing moves back.
func (s PostStatus) CanTransition(next PostStatus) bool {
	return s == PostDraft && (next == PostScheduled || next == PostPublished)
}

// ScheduledPost is a post stored by the scheduler API.
type ScheduledPost struct {
	ID            int64      `json:"id,omitempty"`
	UserID        int64      `json:"user_id,omitempty"`
	Title         string     `json:"title"`
	Content       string     `json:"content"`
	Platform      string     `json:"platform"`
	Status        PostStatus `json:"status"`
	ScheduledTime *APITime   `json:"scheduled_time"`
	CreatedAt     *APITime   `json:"created_at,omitempty"`
}

// PostRequest is the body of POST /scheduler/posts and PUT /scheduler/posts/{id}.
type PostRequest struct {
	Title         string     `json:"title"`
	Content       string     `json:"content"`
	Platform      string     `json:"platform"`
	Status        PostStatus `json:"status"`
	ScheduledTime *APITime   `json:"scheduled_time"`
}

// APITime reads the timestamps the API emits, which may lack a zone offset,
// and writes RFC 3339. Zone-less values are taken as UTC.
type APITime struct {
	time.Time
}

var apiTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// NewAPITime wraps t, normalised to UTC.
func NewAPITime(t time.Time) *APITime {
	return &APITime{Time: t.UTC()}
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *APITime) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("timestamp must be a string, got %s", data)
	}
	raw := string(data[1 : len(data)-1])
	for _, layout := range apiTimeLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			t.Time = parsed.UTC()
			return nil
		}
	}
	return fmt.Errorf("unrecognised timestamp %q", raw)
}

// MarshalJSON implements json.Marshaler.
func (t APITime) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.UTC().Format(time.RFC3339) + `"`), nil
}
