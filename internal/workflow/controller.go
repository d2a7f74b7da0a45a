package workflow

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/GriffinCanCode/BizMate/core/internal/client"
	"github.com/GriffinCanCode/BizMate/core/internal/infrastructure/logging"
	"github.com/GriffinCanCode/BizMate/core/internal/infrastructure/monitoring"
	"go.uber.org/zap"
)

// ErrDisposed is returned once the owning view has been torn down.
var ErrDisposed = errors.New("workflow disposed")

// Status is the lifecycle state of a controller.
type Status int

const (
	StatusIdle Status = iota
	StatusPending
	StatusSuccess
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusPending:
		return "pending"
	case StatusSuccess:
		return "success"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Session is what a controller needs to know about the session.
type Session interface {
	Get() (string, bool)
	Generation() uint64
}

// Guard runs before every operation. A non-nil error aborts the call.
// Guards run with the controller locked and must not call back into it.
type Guard func(ctx context.Context) error

// Op is the operation a controller runs.
type Op[T any] func(ctx context.Context) (T, error)

// Snapshot is a point-in-time copy of a controller's state.
type Snapshot[T any] struct {
	Status    Status
	Data      T
	HasData   bool
	LastError error
	Locked    bool
}

// Options configures a Controller.
type Options struct {
	// Name labels logs and metrics.
	Name string
	// Session enables the session guard and unlocking. Nil disables both.
	Session Session
	// Guards run after the session guard, in order.
	Guards []Guard
	// OnRedirect receives the redirect signal, once per lock.
	OnRedirect func(workflow string)
	Logger     *logging.Logger
	Metrics    *monitoring.Metrics
}

type flight[T any] struct {
	done    chan struct{}
	result  T
	err     error
	waiters int
}

// Controller runs one operation at a time and tracks its outcome.
type Controller[T any] struct {
	name       string
	session    Session
	guards     []Guard
	onRedirect func(string)
	logger     *logging.Logger
	metrics    *monitoring.Metrics

	mu          sync.Mutex
	status      Status
	data        T
	hasData     bool
	lastErr     error
	locked      bool
	lockedGen   uint64
	redirectDue bool
	disposed    bool
	inflight    *flight[T]
	observers   map[int]func(Snapshot[T])
	nextObs     int
}

// New creates an idle controller.
func New[T any](opts Options) *Controller[T] {
	if opts.Name == "" {
		opts.Name = "workflow"
	}
	return &Controller[T]{
		name:       opts.Name,
		session:    opts.Session,
		guards:     opts.Guards,
		onRedirect: opts.OnRedirect,
		logger:     logging.OrNop(opts.Logger).Named("workflow").With(zap.String("workflow", opts.Name)),
		metrics:    opts.Metrics,
		observers:  make(map[int]func(Snapshot[T])),
	}
}

// Name returns the controller's label.
func (c *Controller[T]) Name() string {
	return c.name
}

// Do runs op unless a call is already in flight, in which case it waits
// for that call and returns its result. op runs detached from ctx, so it
// completes for every caller; ctx only bounds how long this caller waits.
//
// guards run after the controller's own guards, only for a call that would
// start op. Once the last of them passes, op is certain to run, so a guard
// may claim state that op later releases.
func (c *Controller[T]) Do(ctx context.Context, op Op[T], guards ...Guard) (T, error) {
	var zero T

	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return zero, ErrDisposed
	}
	if f := c.inflight; f != nil {
		f.waiters++
		c.mu.Unlock()
		return c.join(ctx, f)
	}
	if err := c.admit(ctx, guards); err != nil {
		observers, snap := c.observersLocked()
		redirect := c.takeRedirectLocked()
		c.mu.Unlock()
		c.fireRedirect(redirect)
		if client.KindOf(err).RequiresLogin() {
			notify(observers, snap)
		}
		return zero, err
	}

	prev := c.stableLocked()
	var startGen uint64
	if c.session != nil {
		startGen = c.session.Generation()
	}
	f := &flight[T]{done: make(chan struct{})}
	c.inflight = f
	c.transitionLocked(StatusPending)
	observers, snap := c.observersLocked()
	c.mu.Unlock()
	notify(observers, snap)

	go c.run(context.WithoutCancel(ctx), op, f, prev, startGen)
	return c.wait(ctx, f)
}

func (c *Controller[T]) run(ctx context.Context, op Op[T], f *flight[T], prev stable[T], startGen uint64) {
	var (
		result T
		err    error
	)
	defer func() {
		if p := recover(); p != nil {
			c.logger.Error("Operation panicked", zap.Any("panic", p))
			err = fmt.Errorf("workflow %s: panic: %v", c.name, p)
		}
		c.finish(f, prev, startGen, result, err)
	}()
	result, err = op(ctx)
}

// admit unlocks, checks the lock and runs the guards. Called with mu held.
func (c *Controller[T]) admit(ctx context.Context, extra []Guard) error {
	if c.locked {
		if !c.sessionRenewedLocked() {
			return client.Unauthenticated(c.name)
		}
		c.locked = false
		c.lastErr = nil
		c.transitionLocked(c.stableLocked().status)
		c.logger.Debug("New session, unlocking")
	}

	if c.session != nil {
		if _, ok := c.session.Get(); !ok {
			err := client.Unauthenticated(c.name)
			c.lockLocked(err, c.generationLocked())
			return err
		}
	}
	for _, guard := range append(c.guards[:len(c.guards):len(c.guards)], extra...) {
		if err := guard(ctx); err != nil {
			if client.KindOf(err).RequiresLogin() {
				c.lockLocked(err, c.generationLocked())
			}
			return err
		}
	}
	return nil
}

func (c *Controller[T]) join(ctx context.Context, f *flight[T]) (T, error) {
	defer func() {
		c.mu.Lock()
		f.waiters--
		c.mu.Unlock()
	}()
	return c.wait(ctx, f)
}

func (c *Controller[T]) wait(ctx context.Context, f *flight[T]) (T, error) {
	select {
	case <-f.done:
		return f.result, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

func (c *Controller[T]) finish(f *flight[T], prev stable[T], startGen uint64, result T, err error) {
	var zero T

	c.mu.Lock()
	c.inflight = nil

	if c.disposed {
		f.result, f.err = zero, ErrDisposed
		close(f.done)
		c.mu.Unlock()
		c.logger.Debug("Discarding result of disposed workflow")
		return
	}

	switch {
	case err == nil:
		c.data = result
		c.hasData = true
		c.lastErr = nil
		c.transitionLocked(StatusSuccess)
	case client.KindOf(err).RequiresLogin():
		c.lockLocked(err, startGen)
	default:
		c.lastErr = err
		c.data, c.hasData = prev.data, prev.hasData
		c.transitionLocked(prev.status)
		c.logger.Debug("Operation failed, reverting", zap.String("to", prev.status.String()), zap.Error(err))
	}

	f.result, f.err = result, err
	if err != nil {
		f.result = zero
	}
	observers, snap := c.observersLocked()
	redirect := c.takeRedirectLocked()
	c.mu.Unlock()

	// Callers resume only after observers and the redirect have run.
	c.fireRedirect(redirect)
	notify(observers, snap)
	close(f.done)
}

// lockLocked moves to Failed and schedules the redirect signal unless
// already locked. Called with mu held; the signal fires after unlock.
func (c *Controller[T]) lockLocked(err error, gen uint64) {
	c.lastErr = err
	c.transitionLocked(StatusFailed)
	if c.locked {
		return
	}
	c.locked = true
	c.lockedGen = gen
	c.logger.Info("Session ended, redirecting to login", zap.Error(err))
	c.metrics.RecordRedirect(c.name)
	c.redirectDue = true
}

func (c *Controller[T]) takeRedirectLocked() bool {
	due := c.redirectDue
	c.redirectDue = false
	return due
}

func (c *Controller[T]) fireRedirect(due bool) {
	if due && c.onRedirect != nil {
		c.onRedirect(c.name)
	}
}

func (c *Controller[T]) sessionRenewedLocked() bool {
	if c.session == nil {
		return false
	}
	_, ok := c.session.Get()
	return ok && c.session.Generation() > c.lockedGen
}

func (c *Controller[T]) generationLocked() uint64 {
	if c.session == nil {
		return 0
	}
	return c.session.Generation()
}

type stable[T any] struct {
	status  Status
	data    T
	hasData bool
}

// stableLocked is the state a failed call returns to.
func (c *Controller[T]) stableLocked() stable[T] {
	if c.hasData {
		return stable[T]{status: StatusSuccess, data: c.data, hasData: true}
	}
	return stable[T]{status: StatusIdle}
}

func (c *Controller[T]) transitionLocked(to Status) {
	from := c.status
	c.status = to
	if from == to {
		return
	}
	c.metrics.RecordTransition(c.name, from.String(), to.String())
	c.logger.Debug("Transition", zap.String("from", from.String()), zap.String("to", to.String()))
}

func (c *Controller[T]) snapshotLocked() Snapshot[T] {
	return Snapshot[T]{
		Status:    c.status,
		Data:      c.data,
		HasData:   c.hasData,
		LastError: c.lastErr,
		Locked:    c.locked,
	}
}

func (c *Controller[T]) observersLocked() ([]func(Snapshot[T]), Snapshot[T]) {
	observers := make([]func(Snapshot[T]), 0, len(c.observers))
	for _, fn := range c.observers {
		observers = append(observers, fn)
	}
	return observers, c.snapshotLocked()
}

func notify[T any](observers []func(Snapshot[T]), snap Snapshot[T]) {
	for _, fn := range observers {
		fn(snap)
	}
}

// Snapshot returns the current state.
func (c *Controller[T]) Snapshot() Snapshot[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Status returns the current status.
func (c *Controller[T]) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Pending reports whether a call is in flight.
func (c *Controller[T]) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inflight != nil
}

// Waiters counts the callers joined to the in-flight call.
func (c *Controller[T]) Waiters() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inflight == nil {
		return 0
	}
	return c.inflight.waiters
}

// Subscribe registers fn for state changes. Observers are called outside
// the controller's lock and are never called after Dispose.
func (c *Controller[T]) Subscribe(fn func(Snapshot[T])) (unsubscribe func()) {
	c.mu.Lock()
	id := c.nextObs
	c.nextObs++
	c.observers[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.observers, id)
		c.mu.Unlock()
	}
}

// Reset clears data, error and lock. A call in flight is unaffected.
func (c *Controller[T]) Reset() {
	var zero T
	c.mu.Lock()
	c.data, c.hasData = zero, false
	c.lastErr = nil
	c.locked = false
	if c.inflight == nil {
		c.transitionLocked(StatusIdle)
	}
	observers, snap := c.observersLocked()
	c.mu.Unlock()
	notify(observers, snap)
}

// Dispose tears the controller down. In-flight calls run to completion but
// their results are discarded.
func (c *Controller[T]) Dispose() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disposed {
		return
	}
	c.disposed = true
	c.observers = make(map[int]func(Snapshot[T]))
	c.logger.Debug("Disposed")
}

// Disposed reports whether Dispose has been called.
func (c *Controller[T]) Disposed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.disposed
}
