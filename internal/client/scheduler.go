package client

import (
	"context"
	"net/http"
	"strconv"

	"github.com/GriffinCanCode/BizMate/core/internal/shared/types"
)

const (
	postsPath = "/scheduler/posts"
	postRoute = "/scheduler/posts/:id"
)

func postPath(id int64) string {
	return postsPath + "/" + strconv.FormatInt(id, 10)
}

// ListScheduledPosts returns every post of the signed-in user.
func (c *Client) ListScheduledPosts(ctx context.Context) ([]types.ScheduledPost, error) {
	call := Call{Method: http.MethodGet, Path: postsPath, AuthRequired: true}
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

// CreateScheduledPost stores a draft or scheduled post.
func (c *Client) CreateScheduledPost(ctx context.Context, req types.PostRequest) (types.ScheduledPost, error) {
	call := Call{Method: http.MethodPost, Path: postsPath, Body: req, AuthRequired: true}
	var post types.ScheduledPost
	resp, err := c.Request(ctx, call)
	if err != nil {
		return post, err
	}
	err = decode(resp, call.Op(), &post, "id", "status")
	return post, err
}

// UpdateScheduledPost replaces post id.
func (c *Client) UpdateScheduledPost(ctx context.Context, id int64, req types.PostRequest) (types.ScheduledPost, error) {
	call := Call{Method: http.MethodPut, Path: postPath(id), Route: postRoute, Body: req, AuthRequired: true}
	var post types.ScheduledPost
	resp, err := c.Request(ctx, call)
	if err != nil {
		return post, err
	}
	err = decode(resp, call.Op(), &post, "id", "status")
	return post, err
}

// DeleteScheduledPost removes post id.
func (c *Client) DeleteScheduledPost(ctx context.Context, id int64) error {
	_, err := c.Request(ctx, Call{Method: http.MethodDelete, Path: postPath(id), Route: postRoute, AuthRequired: true})
	return err
}
