package client

import (
	"context"
	"net/http"

	"github.com/GriffinCanCode/BizMate/core/internal/shared/types"
)

// SendChat sends one user message and returns the agent's reply.
func (c *Client) SendChat(ctx context.Context, content, platform string) (types.ChatReply, error) {
	call := Call{
		Method:       http.MethodPost,
		Path:         "/chatbot/send",
		Body:         types.ChatRequest{Content: content, Platform: platform},
		AuthRequired: true,
	}
	var reply types.ChatReply
	resp, err := c.Request(ctx, call)
	if err != nil {
		return reply, err
	}
	err = decode(resp, call.Op(), &reply, "reply")
	return reply, err
}
