package types

import "time"

// Sender identifies who wrote a chat message.
type Sender string

const (
	SenderUser  Sender = "user"
	SenderAgent Sender = "agent"
)

// ChatMessage is one entry of a conversation log.
type ChatMessage struct {
	ID         string    `json:"id"`
	Sender     Sender    `json:"sender"`
	Content    string    `json:"content"`
	OrderIndex int       `json:"order_index"`
	CreatedAt  time.Time `json:"created_at"`
}

// ChatRequest is the body of POST /chatbot/send.
type ChatRequest struct {
	Content  string `json:"content"`
	Platform string `json:"platform"`
}

// ChatReply is the response of POST /chatbot/send.
type ChatReply struct {
	Reply  string `json:"reply"`
	Author string `json:"author,omitempty"`
}
