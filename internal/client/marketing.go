package client

import (
	"context"
	"net/http"

	"github.com/GriffinCanCode/BizMate/core/internal/shared/types"
)

// GenerateContent asks the API for a marketing post about topic.
func (c *Client) GenerateContent(ctx context.Context, topic string) (types.GeneratedContent, error) {
	call := Call{
		Method:       http.MethodPost,
		Path:         "/marketing/generate",
		Body:         types.GenerateRequest{Topic: topic},
		AuthRequired: true,
	}
	var content types.GeneratedContent
	resp, err := c.Request(ctx, call)
	if err != nil {
		return content, err
	}
	err = decode(resp, call.Op(), &content, "title", "content", "hashtags", "image_prompt")
	return content, err
}
