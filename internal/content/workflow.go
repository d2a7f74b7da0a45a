package content

import (
	"context"
	"errors"
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

// DefaultPlatform is the platform saved posts are filed under.
const DefaultPlatform = "Instagram"

// ErrInvalidTransition is wrapped by errors for operations the current
// state does not allow.
var ErrInvalidTransition = errors.New("invalid content transition")

// State is the position of the workflow.
type State int

const (
	StateEmpty State = iota
	StateGenerating
	StateGenerated
	StateSavingDraft
	StateScheduling
	StateSaved
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateGenerating:
		return "generating"
	case StateGenerated:
		return "generated"
	case StateSavingDraft:
		return "saving_draft"
	case StateScheduling:
		return "scheduling"
	case StateSaved:
		return "saved"
	default:
		return "unknown"
	}
}

// SchedulePolicy decides what scheduling without a time means.
type SchedulePolicy string

const (
	// ScheduleNow schedules for the current time.
	ScheduleNow SchedulePolicy = "now"
	// ScheduleRequire rejects the request.
	ScheduleRequire SchedulePolicy = "require"
)

// API is the set of endpoints the workflow uses.
type API interface {
	GenerateContent(ctx context.Context, topic string) (types.GeneratedContent, error)
	CreateScheduledPost(ctx context.Context, req types.PostRequest) (types.ScheduledPost, error)
}

// Options configures a Workflow.
type Options struct {
	Platform       string
	SchedulePolicy SchedulePolicy
	Session        workflow.Session
	OnRedirect     func(workflow string)
	Logger         *logging.Logger
	Metrics        *monitoring.Metrics
	Now            func() time.Time
}

// SaveRequest asks for the generated payload to be stored.
type SaveRequest struct {
	Status types.PostStatus
	// Platform overrides the configured platform.
	Platform string
	// ScheduledTime is ignored for drafts.
	ScheduledTime *time.Time
}

// Snapshot is a copy of the workflow state.
type Snapshot struct {
	State      State
	Topic      string
	Content    types.GeneratedContent
	HasContent bool
	Saved      *types.ScheduledPost
	LastError  error
}

// Workflow is the generate-then-save state machine.
type Workflow struct {
	api      API
	platform string
	policy   SchedulePolicy
	now      func() time.Time
	logger   *logging.Logger
	metrics  *monitoring.Metrics
	generate *workflow.Controller[types.GeneratedContent]
	save     *workflow.Controller[types.ScheduledPost]

	mu         sync.Mutex
	state      State
	topic      string
	content    types.GeneratedContent
	hasContent bool
	saved      *types.ScheduledPost
	lastErr    error
	closed     bool
}

// New creates an empty workflow.
func New(api API, opts Options) *Workflow {
	if opts.Platform == "" {
		opts.Platform = DefaultPlatform
	}
	if opts.SchedulePolicy == "" {
		opts.SchedulePolicy = ScheduleNow
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	w := &Workflow{
		api:      api,
		platform: opts.Platform,
		policy:   opts.SchedulePolicy,
		now:      opts.Now,
		logger:   logging.OrNop(opts.Logger).Named("content"),
		metrics:  opts.Metrics,
	}
	w.generate = workflow.New[types.GeneratedContent](workflow.Options{
		Name:       "content.generate",
		Session:    opts.Session,
		OnRedirect: opts.OnRedirect,
		Logger:     opts.Logger,
		Metrics:    opts.Metrics,
	})
	w.save = workflow.New[types.ScheduledPost](workflow.Options{
		Name:       "content.save",
		Session:    opts.Session,
		OnRedirect: opts.OnRedirect,
		Logger:     opts.Logger,
		Metrics:    opts.Metrics,
	})
	return w
}

// Generate asks the API for content about topic. A call while generation
// is in flight joins it.
func (w *Workflow) Generate(ctx context.Context, topic string) (types.GeneratedContent, error) {
	topic = strings.TrimSpace(topic)
	if err := utils.ValidateTopic(topic); err != nil {
		return types.GeneratedContent{}, client.Validation("content.generate", err.Error())
	}

	var prev State
	content, err := w.generate.Do(ctx, func(ctx context.Context) (types.GeneratedContent, error) {
		content, err := w.api.GenerateContent(ctx, topic)
		if err != nil {
			w.fail(prev, err)
			return types.GeneratedContent{}, err
		}

		w.mu.Lock()
		if w.closed {
			w.mu.Unlock()
			return content, nil
		}
		w.topic = topic
		w.content = content.Clone()
		w.hasContent = true
		w.saved = nil
		w.lastErr = nil
		w.transitionLocked(StateGenerated)
		w.mu.Unlock()
		return content, nil
	}, w.claimGenerate(&prev))
	return content.Clone(), err
}

// Save stores the generated payload as a draft or a scheduled post.
func (w *Workflow) Save(ctx context.Context, req SaveRequest) (types.ScheduledPost, error) {
	const op = "content.save"

	target := StateSavingDraft
	switch req.Status {
	case types.PostDraft:
		req.ScheduledTime = nil
	case types.PostScheduled:
		target = StateScheduling
		if req.ScheduledTime == nil {
			if w.policy == ScheduleRequire {
				return types.ScheduledPost{}, client.Validation(op, "Pick a time to schedule this post.")
			}
			at := w.now()
			req.ScheduledTime = &at
			w.logger.Warn("No schedule time given, scheduling for now", zap.Time("scheduled_time", at))
		}
	default:
		return types.ScheduledPost{}, client.Validation(op, "A post can only be saved as a draft or scheduled.")
	}
	platform := req.Platform
	if platform == "" {
		platform = w.platform
	}

	var prev State
	return w.save.Do(ctx, func(ctx context.Context) (types.ScheduledPost, error) {
		w.mu.Lock()
		body := types.PostRequest{
			Title:    w.content.Title,
			Content:  w.content.Body,
			Platform: platform,
			Status:   req.Status,
		}
		w.mu.Unlock()
		if req.ScheduledTime != nil {
			body.ScheduledTime = types.NewAPITime(*req.ScheduledTime)
		}

		post, err := w.api.CreateScheduledPost(ctx, body)
		if err != nil {
			w.fail(prev, err)
			return types.ScheduledPost{}, err
		}

		w.mu.Lock()
		if w.closed {
			w.mu.Unlock()
			return post, nil
		}
		w.saved = &post
		w.lastErr = nil
		w.transitionLocked(StateSaved)
		w.mu.Unlock()
		w.logger.Info("Post saved", zap.Int64("post_id", post.ID), zap.String("status", string(post.Status)))
		return post, nil
	}, w.claimSave(target, &prev))
}

// claimGenerate refuses generation while a save is in flight, otherwise
// enters Generating. The check and the move share one critical section so
// a concurrent save cannot slip in between.
func (w *Workflow) claimGenerate(prev *State) workflow.Guard {
	return func(context.Context) error {
		w.mu.Lock()
		defer w.mu.Unlock()
		if w.state == StateSavingDraft || w.state == StateScheduling {
			return invalid("content.generate", "Wait for the post to finish saving.")
		}
		*prev = w.state
		w.transitionLocked(StateGenerating)
		return nil
	}
}

// claimSave allows saving only a freshly generated payload and enters
// target when it does.
func (w *Workflow) claimSave(target State, prev *State) workflow.Guard {
	return func(context.Context) error {
		w.mu.Lock()
		defer w.mu.Unlock()
		if w.state != StateGenerated {
			return invalid("content.save", "Generate content before saving it.")
		}
		*prev = w.state
		w.transitionLocked(target)
		return nil
	}
}

func invalid(op, message string) error {
	return &client.Error{Kind: client.KindValidation, Op: op, Message: message, Err: ErrInvalidTransition}
}

func (w *Workflow) fail(prev State, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.lastErr = err
	w.transitionLocked(prev)
}

func (w *Workflow) transitionLocked(to State) {
	from := w.state
	w.state = to
	if from != to {
		w.metrics.RecordTransition("content", from.String(), to.String())
	}
}

// State returns the current state.
func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Snapshot returns a copy of the workflow state.
func (w *Workflow) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	snap := Snapshot{
		State:      w.state,
		Topic:      w.topic,
		Content:    w.content.Clone(),
		HasContent: w.hasContent,
		LastError:  w.lastErr,
	}
	if w.saved != nil {
		saved := *w.saved
		snap.Saved = &saved
	}
	return snap
}

// Close tears the workflow down; late results are discarded.
func (w *Workflow) Close() {
	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()
	w.generate.Dispose()
	w.save.Dispose()
}
