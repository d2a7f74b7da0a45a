package client

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMatchesKindSentinels(t *testing.T) {
	err := fmt.Errorf("loading chat: %w", authExpired("POST /chatbot/send", 401))

	assert.True(t, errors.Is(err, ErrAuthExpired))
	assert.False(t, errors.Is(err, ErrTransient))
	assert.Equal(t, KindAuthExpired, KindOf(err))
	assert.Equal(t, 401, StatusOf(err))
	assert.True(t, KindOf(err).RequiresLogin())
}

func TestKindOfForeignError(t *testing.T) {
	assert.Equal(t, KindUnknown, KindOf(errors.New("boom")))
	assert.Equal(t, KindUnknown, KindOf(nil))
	assert.Equal(t, "Something went wrong.", UserMessage(errors.New("boom")))
}

func TestErrorString(t *testing.T) {
	err := transient("GET /posts", 502, "bad gateway", nil)
	assert.Equal(t, "GET /posts: bad gateway (status 502)", err.Error())

	err = &Error{Kind: KindValidation}
	assert.Equal(t, "validation", err.Error())
}

func TestIsOutage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"transport", transient("op", 0, "", errors.New("refused")), true},
		{"server error", transient("op", 503, "", nil), true},
		{"throttled", transient("op", 429, "", nil), true},
		{"not found", transient("op", 404, "", nil), false},
		{"auth", authExpired("op", 401), false},
		{"application", application("op", "bad", nil), false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isOutage(tt.err))
		})
	}
}
