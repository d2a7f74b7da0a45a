package bridge

import (
	"net/http"
	"strconv"
	"time"

	"github.com/GriffinCanCode/BizMate/core/internal/client"
	"github.com/GriffinCanCode/BizMate/core/internal/content"
	"github.com/GriffinCanCode/BizMate/core/internal/schedule"
	"github.com/GriffinCanCode/BizMate/core/internal/shared/types"
	"github.com/gin-gonic/gin"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "login")
		return
	}
	if err := s.api.Login(c.Request.Context(), types.Credentials(req)); err != nil {
		// A rejected login is not an expired session; show the message.
		if client.KindOf(err) == client.KindAuthExpired {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Error: "Incorrect email or password.",
				Kind:  client.KindAuthExpired.String(),
			})
			return
		}
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"authenticated": true})
}

func (s *Server) signup(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "signup")
		return
	}
	if err := s.api.Signup(c.Request.Context(), types.Credentials(req)); err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"registered": true, "redirect": LoginPath + "?registered=true"})
}

func (s *Server) logout(c *gin.Context) {
	s.api.Logout()
	c.JSON(http.StatusOK, gin.H{"authenticated": false, "redirect": LoginPath})
}

func (s *Server) sessionStatus(c *gin.Context) {
	_, ok := s.store.Get()
	c.JSON(http.StatusOK, gin.H{
		"authenticated": ok,
		"generation":    s.store.Generation(),
	})
}

func (s *Server) getProfile(c *gin.Context) {
	p, exists, err := s.profile.Load(c.Request.Context())
	if err != nil {
		renderError(c, err)
		return
	}
	body := gin.H{"exists": exists}
	if exists {
		body["profile"] = p
	}
	c.JSON(http.StatusOK, body)
}

func (s *Server) saveProfile(c *gin.Context) {
	var req types.BusinessProfile
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "profile.save")
		return
	}
	saved, err := s.profile.Save(c.Request.Context(), req)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": saved})
}

type chatView struct {
	Messages []types.ChatMessage `json:"messages"`
	Pending  bool                `json:"pending"`
	Frozen   bool                `json:"frozen"`
	Error    string              `json:"error,omitempty"`
}

func (s *Server) viewChat() chatView {
	session := s.currentChat()
	return chatView{
		Messages: s.cleanMessages(session.Messages()),
		Pending:  session.Pending(),
		Frozen:   session.Frozen(),
		Error:    lastErrorMessage(session.Snapshot().LastError),
	}
}

func (s *Server) getChat(c *gin.Context) {
	c.JSON(http.StatusOK, s.viewChat())
}

func (s *Server) sendChat(c *gin.Context) {
	var req struct {
		Message string `json:"message"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "chat.send")
		return
	}
	reply, err := s.currentChat().SendUserMessage(c.Request.Context(), req.Message)
	if err != nil {
		renderError(c, err)
		return
	}
	reply.Content = s.clean(reply.Content)
	view := s.viewChat()
	c.JSON(http.StatusOK, gin.H{"reply": reply, "messages": view.Messages})
}

type contentView struct {
	State   string                  `json:"state"`
	Topic   string                  `json:"topic,omitempty"`
	Content *types.GeneratedContent `json:"content,omitempty"`
	Saved   *types.ScheduledPost    `json:"saved,omitempty"`
	Error   string                  `json:"error,omitempty"`
}

func (s *Server) viewContent() contentView {
	snap := s.currentContent().Snapshot()
	view := contentView{
		State: snap.State.String(),
		Topic: snap.Topic,
		Error: lastErrorMessage(snap.LastError),
	}
	if snap.HasContent {
		cleaned := s.cleanContent(snap.Content)
		view.Content = &cleaned
	}
	if snap.Saved != nil {
		saved := s.cleanPost(*snap.Saved)
		view.Saved = &saved
	}
	return view
}

func (s *Server) getContent(c *gin.Context) {
	c.JSON(http.StatusOK, s.viewContent())
}

func (s *Server) generateContent(c *gin.Context) {
	var req types.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "content.generate")
		return
	}
	if _, err := s.currentContent().Generate(c.Request.Context(), req.Topic); err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.viewContent())
}

func (s *Server) saveContent(c *gin.Context) {
	var req struct {
		Status        types.PostStatus `json:"status"`
		Platform      string           `json:"platform"`
		ScheduledTime *time.Time       `json:"scheduled_time"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "content.save")
		return
	}
	_, err := s.currentContent().Save(c.Request.Context(), content.SaveRequest{
		Status:        req.Status,
		Platform:      req.Platform,
		ScheduledTime: req.ScheduledTime,
	})
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.viewContent())
}

func (s *Server) listPosts(c *gin.Context) {
	posts, err := s.board.Refresh(c.Request.Context())
	if err != nil {
		renderError(c, err)
		return
	}
	for i := range posts {
		posts[i] = s.cleanPost(posts[i])
	}
	if posts == nil {
		posts = []types.ScheduledPost{}
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts, "counts": s.board.Counts()})
}

func (s *Server) createPost(c *gin.Context) {
	var req struct {
		Title         string           `json:"title"`
		Content       string           `json:"content"`
		Platform      string           `json:"platform"`
		Status        types.PostStatus `json:"status"`
		ScheduledTime *time.Time       `json:"scheduled_time"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "schedule.create")
		return
	}
	post, err := s.board.Create(c.Request.Context(), schedule.NewPost(req))
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"post": s.cleanPost(post), "counts": s.board.Counts()})
}

func (s *Server) deletePost(c *gin.Context) {
	id, ok := postID(c, "schedule.delete")
	if !ok {
		return
	}
	if _, err := s.board.Delete(c.Request.Context(), id); err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id, "counts": s.board.Counts()})
}

func (s *Server) draftPost(c *gin.Context) {
	var req types.GeneratePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "schedule.draft")
		return
	}
	draft, err := s.board.Draft(c.Request.Context(), req)
	if err != nil {
		renderError(c, err)
		return
	}
	draft.Content = s.clean(draft.Content)
	c.JSON(http.StatusOK, gin.H{"draft": draft})
}

func (s *Server) postHistory(c *gin.Context) {
	posts, err := s.board.History(c.Request.Context())
	if err != nil {
		renderError(c, err)
		return
	}
	for i := range posts {
		posts[i] = s.cleanPost(posts[i])
	}
	if posts == nil {
		posts = []types.ScheduledPost{}
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

func postID(c *gin.Context, op string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		renderError(c, client.Validation(op, "Unknown post."))
		return 0, false
	}
	return id, true
}

func (s *Server) publishPost(c *gin.Context) {
	id, ok := postID(c, "schedule.publish")
	if !ok {
		return
	}
	post, err := s.board.Publish(c.Request.Context(), id)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"post": s.cleanPost(post)})
}
