// Package schedule lists, creates, publishes and deletes the user's
// scheduled posts.
package schedule

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/GriffinCanCode/BizMate/core/internal/client"
	"github.com/GriffinCanCode/BizMate/core/internal/infrastructure/logging"
	"github.com/GriffinCanCode/BizMate/core/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/BizMate/core/internal/shared/types"
	"github.com/GriffinCanCode/BizMate/core/internal/shared/utils"
	"github.com/GriffinCanCode/BizMate/core/internal/workflow"
	"go.uber.org/zap"
)

// API is the set of endpoints the board uses.
type API interface {
	ListScheduledPosts(ctx context.Context) ([]types.ScheduledPost, error)
	CreateScheduledPost(ctx context.Context, req types.PostRequest) (types.ScheduledPost, error)
	UpdateScheduledPost(ctx context.Context, id int64, req types.PostRequest) (types.ScheduledPost, error)
	DeleteScheduledPost(ctx context.Context, id int64) error
	ListPosts(ctx context.Context) ([]types.ScheduledPost, error)
	GeneratePost(ctx context.Context, req types.GeneratePostRequest) (types.GeneratedPost, error)
}

// DefaultPlatform is used when a new post names none.
const DefaultPlatform = "Instagram"

// Options configures a Board.
type Options struct {
	// Platform for new posts and drafts. Defaults to DefaultPlatform.
	Platform   string
	Session    workflow.Session
	OnRedirect func(workflow string)
	Logger     *logging.Logger
	Metrics    *monitoring.Metrics
}

// Counts summarises posts by status.
type Counts struct {
	Draft     int `json:"draft"`
	Scheduled int `json:"scheduled"`
	Published int `json:"published"`
	Total     int `json:"total"`
}

// NewPost is a post written on the board rather than generated.
type NewPost struct {
	Title         string
	Content       string
	Platform      string
	Status        types.PostStatus
	ScheduledTime *time.Time
}

type postOp struct {
	name string
	id   int64
}

// Board keeps the last fetched list of posts.
type Board struct {
	api     API
	opts    Options
	log     *logging.Logger
	list    *workflow.Controller[[]types.ScheduledPost]
	create  *workflow.Controller[types.ScheduledPost]
	draft   *workflow.Controller[types.GeneratedPost]
	history *workflow.Controller[[]types.ScheduledPost]

	mu      sync.Mutex
	posts   []types.ScheduledPost
	perPost map[postOp]*workflow.Controller[types.ScheduledPost]
	closed  bool
}

// New creates an empty board.
func New(api API, opts Options) *Board {
	if opts.Platform == "" {
		opts.Platform = DefaultPlatform
	}
	return &Board{
		api:     api,
		opts:    opts,
		log:     logging.OrNop(opts.Logger).Named("schedule"),
		list:    newController[[]types.ScheduledPost]("schedule.list", opts),
		create:  newController[types.ScheduledPost]("schedule.create", opts),
		draft:   newController[types.GeneratedPost]("schedule.draft", opts),
		history: newController[[]types.ScheduledPost]("schedule.history", opts),
		perPost: make(map[postOp]*workflow.Controller[types.ScheduledPost]),
	}
}

func newController[T any](name string, opts Options) *workflow.Controller[T] {
	return workflow.New[T](workflow.Options{
		Name:       name,
		Session:    opts.Session,
		OnRedirect: opts.OnRedirect,
		Logger:     opts.Logger,
		Metrics:    opts.Metrics,
	})
}

// Refresh fetches the posts, newest schedule first.
func (b *Board) Refresh(ctx context.Context) ([]types.ScheduledPost, error) {
	posts, err := b.list.Do(ctx, func(ctx context.Context) ([]types.ScheduledPost, error) {
		posts, err := b.api.ListScheduledPosts(ctx)
		if err != nil {
			return nil, err
		}
		sortPosts(posts)
		b.mu.Lock()
		b.posts = clonePosts(posts)
		b.mu.Unlock()
		return posts, nil
	})
	return clonePosts(posts), err
}

// Posts returns the last fetched posts.
func (b *Board) Posts() []types.ScheduledPost {
	b.mu.Lock()
	defer b.mu.Unlock()
	return clonePosts(b.posts)
}

// Counts summarises the last fetched posts.
func (b *Board) Counts() Counts {
	b.mu.Lock()
	defer b.mu.Unlock()
	var c Counts
	for _, p := range b.posts {
		switch p.Status {
		case types.PostDraft:
			c.Draft++
		case types.PostScheduled:
			c.Scheduled++
		case types.PostPublished:
			c.Published++
		}
		c.Total++
	}
	return c
}

// Publish marks a draft as published. Only drafts can be published.
func (b *Board) Publish(ctx context.Context, id int64) (types.ScheduledPost, error) {
	const op = "schedule.publish"

	post, ok := b.find(id)
	if !ok {
		return types.ScheduledPost{}, client.Validation(op, "That post is not on the board. Refresh and try again.")
	}
	if !post.Status.CanTransition(types.PostPublished) {
		return types.ScheduledPost{}, client.Validation(op, "Only drafts can be published.")
	}

	ctrl, err := b.postController("schedule.publish", id)
	if err != nil {
		return types.ScheduledPost{}, err
	}
	return ctrl.Do(ctx, func(ctx context.Context) (types.ScheduledPost, error) {
		updated, err := b.api.UpdateScheduledPost(ctx, id, types.PostRequest{
			Title:         post.Title,
			Content:       post.Content,
			Platform:      post.Platform,
			Status:        types.PostPublished,
			ScheduledTime: post.ScheduledTime,
		})
		if err != nil {
			return types.ScheduledPost{}, err
		}
		b.replace(updated)
		b.log.Info("Post published", zap.Int64("post_id", id))
		return updated, nil
	})
}

func (b *Board) find(id int64) (types.ScheduledPost, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, p := range b.posts {
		if p.ID == id {
			return p, true
		}
	}
	return types.ScheduledPost{}, false
}

func (b *Board) replace(post types.ScheduledPost) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.posts {
		if b.posts[i].ID == post.ID {
			b.posts[i] = post
			return
		}
	}
}

// Create stores a new draft or scheduled post and adds it to the board.
// A second create while one is in flight joins it.
func (b *Board) Create(ctx context.Context, post NewPost) (types.ScheduledPost, error) {
	const op = "schedule.create"

	post.Title = strings.TrimSpace(post.Title)
	if err := utils.ValidateName(post.Title, "title"); err != nil {
		return types.ScheduledPost{}, client.Validation(op, err.Error())
	}
	if err := utils.ValidateString(post.Content, "content", utils.MaxMessageLength, true); err != nil {
		return types.ScheduledPost{}, client.Validation(op, err.Error())
	}
	switch post.Status {
	case "", types.PostDraft:
		post.Status = types.PostDraft
		post.ScheduledTime = nil
	case types.PostScheduled:
		if post.ScheduledTime == nil {
			return types.ScheduledPost{}, client.Validation(op, "Pick a time to schedule this post.")
		}
	default:
		return types.ScheduledPost{}, client.Validation(op, "A new post can only be a draft or scheduled.")
	}
	if post.Platform == "" {
		post.Platform = b.opts.Platform
	}

	req := types.PostRequest{
		Title:    post.Title,
		Content:  post.Content,
		Platform: post.Platform,
		Status:   post.Status,
	}
	if post.ScheduledTime != nil {
		req.ScheduledTime = types.NewAPITime(*post.ScheduledTime)
	}
	return b.create.Do(ctx, func(ctx context.Context) (types.ScheduledPost, error) {
		created, err := b.api.CreateScheduledPost(ctx, req)
		if err != nil {
			return types.ScheduledPost{}, err
		}
		b.mu.Lock()
		b.posts = append(b.posts, created)
		sortPosts(b.posts)
		b.mu.Unlock()
		b.log.Info("Post created", zap.Int64("post_id", created.ID), zap.String("status", string(created.Status)))
		return created, nil
	})
}

// Delete removes a post on the board and returns it.
func (b *Board) Delete(ctx context.Context, id int64) (types.ScheduledPost, error) {
	post, ok := b.find(id)
	if !ok {
		return types.ScheduledPost{}, client.Validation("schedule.delete", "That post is not on the board. Refresh and try again.")
	}
	ctrl, err := b.postController("schedule.delete", id)
	if err != nil {
		return types.ScheduledPost{}, err
	}
	return ctrl.Do(ctx, func(ctx context.Context) (types.ScheduledPost, error) {
		if err := b.api.DeleteScheduledPost(ctx, id); err != nil {
			return types.ScheduledPost{}, err
		}
		b.remove(id)
		b.log.Info("Post deleted", zap.Int64("post_id", id))
		return post, nil
	})
}

// Draft asks the API to write post text for a topic. Nothing is stored
// until the text is passed to Create.
func (b *Board) Draft(ctx context.Context, req types.GeneratePostRequest) (types.GeneratedPost, error) {
	req.Topic = strings.TrimSpace(req.Topic)
	if err := utils.ValidateTopic(req.Topic); err != nil {
		return types.GeneratedPost{}, client.Validation("schedule.draft", err.Error())
	}
	if req.Platform == "" {
		req.Platform = b.opts.Platform
	}
	return b.draft.Do(ctx, func(ctx context.Context) (types.GeneratedPost, error) {
		return b.api.GeneratePost(ctx, req)
	})
}

// History returns the posts the API generated for the user, most recent
// first as the API orders them.
func (b *Board) History(ctx context.Context) ([]types.ScheduledPost, error) {
	posts, err := b.history.Do(ctx, func(ctx context.Context) ([]types.ScheduledPost, error) {
		posts, err := b.api.ListPosts(ctx)
		return clonePosts(posts), err
	})
	return clonePosts(posts), err
}

func (b *Board) remove(id int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.posts {
		if b.posts[i].ID == id {
			b.posts = append(b.posts[:i], b.posts[i+1:]...)
			return
		}
	}
}

// postController returns the controller for one operation on one post, so
// that acting on two different posts never joins the same call.
func (b *Board) postController(name string, id int64) (*workflow.Controller[types.ScheduledPost], error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, workflow.ErrDisposed
	}
	key := postOp{name: name, id: id}
	ctrl, ok := b.perPost[key]
	if !ok {
		ctrl = newController[types.ScheduledPost](name, b.opts)
		b.perPost[key] = ctrl
	}
	return ctrl, nil
}

// Snapshot returns the state of the list controller.
func (b *Board) Snapshot() workflow.Snapshot[[]types.ScheduledPost] {
	return b.list.Snapshot()
}

// Close tears the board down.
func (b *Board) Close() {
	b.list.Dispose()
	b.create.Dispose()
	b.draft.Dispose()
	b.history.Dispose()
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	for _, ctrl := range b.perPost {
		ctrl.Dispose()
	}
}

func sortPosts(posts []types.ScheduledPost) {
	sort.SliceStable(posts, func(i, j int) bool {
		a, c := posts[i].ScheduledTime, posts[j].ScheduledTime
		switch {
		case a == nil:
			return false
		case c == nil:
			return true
		default:
			return a.After(c.Time)
		}
	})
}

func clonePosts(posts []types.ScheduledPost) []types.ScheduledPost {
	if posts == nil {
		return nil
	}
	return append([]types.ScheduledPost(nil), posts...)
}
