package client

import (
	"context"
	"net/http"

	"github.com/GriffinCanCode/BizMate/core/internal/shared/types"
)

// ListPosts returns the user's generated posts.
func (c *Client) ListPosts(ctx context.Context) ([]types.ScheduledPost, error) {
	call := Call{Method: http.MethodGet, Path: "/posts", AuthRequired: true}
	resp, err := c.Request(ctx, call)
	if err != nil {
		return nil, err
	}
	var posts []types.ScheduledPost
	if err := decodeList(resp, call.Op(), &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// GeneratePost drafts a post for a platform in the given tone.
func (c *Client) GeneratePost(ctx context.Context, req types.GeneratePostRequest) (types.GeneratedPost, error) {
	call := Call{Method: http.MethodPost, Path: "/generate-post", Body: req, AuthRequired: true}
	var draft types.GeneratedPost
	resp, err := c.Request(ctx, call)
	if err != nil {
		return draft, err
	}
	err = decode(resp, call.Op(), &draft, "content")
	return draft, err
}
