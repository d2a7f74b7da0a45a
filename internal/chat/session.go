// Package chat holds one conversation with the BizMate agent.
package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/GriffinCanCode/BizMate/core/internal/client"
	"github.com/GriffinCanCode/BizMate/core/internal/infrastructure/logging"
	"github.com/GriffinCanCode/BizMate/core/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/BizMate/core/internal/shared/id"
	"github.com/GriffinCanCode/BizMate/core/internal/shared/types"
	"github.com/GriffinCanCode/BizMate/core/internal/shared/utils"
	"github.com/GriffinCanCode/BizMate/core/internal/workflow"
	"go.uber.org/zap"
)

// DefaultPlatform is the platform label the chat simulator sends.
const DefaultPlatform = "Web Simulation"

// ErrFrozen is returned once the session has ended. A new session needs a
// new Session.
var ErrFrozen = errors.New("chat session is frozen")

// API is the endpoint a Session talks to.
type API interface {
	SendChat(ctx context.Context, content, platform string) (types.ChatReply, error)
}

// Options configures a Session.
type Options struct {
	Platform string
	// Greeting, when set, is logged as the agent's first message.
	Greeting   string
	Session    workflow.Session
	OnRedirect func(workflow string)
	Logger     *logging.Logger
	Metrics    *monitoring.Metrics
	Now        func() time.Time
}

// Session is an ordered, in-memory conversation log.
type Session struct {
	api      API
	platform string
	ctrl     *workflow.Controller[types.ChatMessage]
	logger   *logging.Logger
	metrics  *monitoring.Metrics
	now      func() time.Time

	mu       sync.RWMutex
	messages []types.ChatMessage
	frozen   bool
}

// New creates a session. The log starts empty apart from the greeting.
func New(api API, opts Options) *Session {
	if opts.Platform == "" {
		opts.Platform = DefaultPlatform
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	logger := logging.OrNop(opts.Logger).Named("chat")
	s := &Session{
		api:      api,
		platform: opts.Platform,
		logger:   logger,
		metrics:  opts.Metrics,
		now:      opts.Now,
		ctrl: workflow.New[types.ChatMessage](workflow.Options{
			Name:       "chat",
			Session:    opts.Session,
			OnRedirect: opts.OnRedirect,
			Logger:     opts.Logger,
			Metrics:    opts.Metrics,
		}),
	}
	if opts.Greeting != "" {
		_, _ = s.Append(types.SenderAgent, opts.Greeting)
	}
	return s
}

// Append adds a message and returns its order index, which is one more
// than the previous message's.
func (s *Session) Append(sender types.Sender, content string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg, err := s.appendLocked(sender, content)
	if err != nil {
		return 0, err
	}
	return msg.OrderIndex, nil
}

func (s *Session) appendLocked(sender types.Sender, content string) (types.ChatMessage, error) {
	if s.frozen {
		return types.ChatMessage{}, ErrFrozen
	}
	msg := types.ChatMessage{
		ID:         id.NewMessageID().String(),
		Sender:     sender,
		Content:    content,
		OrderIndex: len(s.messages),
		CreatedAt:  s.now(),
	}
	s.messages = append(s.messages, msg)
	s.metrics.RecordChatMessage(string(sender))
	return msg, nil
}

// SendUserMessage logs text, sends it to the agent and logs the reply,
// which it returns. While a send is in flight, further sends join it and
// add nothing to the log. A rejected session freezes the log.
func (s *Session) SendUserMessage(ctx context.Context, text string) (types.ChatMessage, error) {
	const op = "chat.send"
	text = strings.TrimSpace(text)
	if err := utils.ValidateMessage(text); err != nil {
		return types.ChatMessage{}, client.Validation(op, err.Error())
	}
	if s.Frozen() {
		return types.ChatMessage{}, frozenError(op)
	}

	reply, err := s.ctrl.Do(ctx, func(ctx context.Context) (types.ChatMessage, error) {
		if _, err := s.Append(types.SenderUser, text); err != nil {
			return types.ChatMessage{}, frozenError(op)
		}
		resp, err := s.api.SendChat(ctx, text, s.platform)
		if err != nil {
			return types.ChatMessage{}, err
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		msg, err := s.appendLocked(types.SenderAgent, resp.Reply)
		if err != nil {
			return types.ChatMessage{}, frozenError(op)
		}
		return msg, nil
	})
	if err != nil && client.KindOf(err).RequiresLogin() {
		s.freeze()
	}
	return reply, err
}

func frozenError(op string) error {
	return &client.Error{
		Kind:    client.KindValidation,
		Op:      op,
		Message: "This conversation has ended. Please sign in again.",
		Err:     ErrFrozen,
	}
}

func (s *Session) freeze() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.frozen {
		return
	}
	s.frozen = true
	s.logger.Info("Chat session frozen", zap.Int("messages", len(s.messages)))
}

// Messages returns a copy of the log in order.
func (s *Session) Messages() []types.ChatMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]types.ChatMessage(nil), s.messages...)
}

// Frozen reports whether the log accepts no more messages.
func (s *Session) Frozen() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.frozen
}

// Pending reports whether a send is in flight.
func (s *Session) Pending() bool {
	return s.ctrl.Pending()
}

// Snapshot returns the state of the send controller.
func (s *Session) Snapshot() workflow.Snapshot[types.ChatMessage] {
	return s.ctrl.Snapshot()
}

// Subscribe observes the send controller.
func (s *Session) Subscribe(fn func(workflow.Snapshot[types.ChatMessage])) func() {
	return s.ctrl.Subscribe(fn)
}

// Close tears the session down. A reply that arrives later is dropped.
func (s *Session) Close() {
	s.ctrl.Dispose()
	s.freeze()
}
