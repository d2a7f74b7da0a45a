package bridge

import (
	"github.com/GriffinCanCode/BizMate/core/internal/shared/types"
	"github.com/microcosm-cc/bluemonday"
)

// newSanitizer returns nil when sanitizing is disabled.
func newSanitizer(enabled bool) *bluemonday.Policy {
	if !enabled {
		return nil
	}
	return bluemonday.UGCPolicy()
}

func (s *Server) clean(text string) string {
	if s.sanitizer == nil {
		return text
	}
	return s.sanitizer.Sanitize(text)
}

func (s *Server) cleanMessages(msgs []types.ChatMessage) []types.ChatMessage {
	for i := range msgs {
		msgs[i].Content = s.clean(msgs[i].Content)
	}
	return msgs
}

func (s *Server) cleanContent(c types.GeneratedContent) types.GeneratedContent {
	c = c.Clone()
	c.Title = s.clean(c.Title)
	c.Body = s.clean(c.Body)
	c.ImagePrompt = s.clean(c.ImagePrompt)
	for i, tag := range c.Hashtags {
		c.Hashtags[i] = s.clean(tag)
	}
	return c
}

func (s *Server) cleanPost(p types.ScheduledPost) types.ScheduledPost {
	p.Title = s.clean(p.Title)
	p.Content = s.clean(p.Content)
	return p
}
