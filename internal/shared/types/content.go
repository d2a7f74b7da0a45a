package types

// GeneratedContent is the payload returned by POST /marketing/generate.
type GeneratedContent struct {
	Title       string   `json:"title"`
	Body        string   `json:"content"`
	Hashtags    []string `json:"hashtags"`
	ImagePrompt string   `json:"image_prompt"`
}

// Clone returns a copy that shares no slices with c.
func (c GeneratedContent) Clone() GeneratedContent {
	if c.Hashtags != nil {
		c.Hashtags = append(make([]string, 0, len(c.Hashtags)), c.Hashtags...)
	}
	return c
}

// GenerateRequest is the body of POST /marketing/generate.
type GenerateRequest struct {
	Topic string `json:"topic"`
}

// GeneratePostRequest is the body of POST /generate-post.
type GeneratePostRequest struct {
	Topic    string `json:"topic"`
	Platform string `json:"platform"`
	Tone     string `json:"tone"`
}

// GeneratedPost is the response of POST /generate-post.
type GeneratedPost struct {
	Content string `json:"content"`
}
