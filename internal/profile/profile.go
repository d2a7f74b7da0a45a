// Package profile loads and saves the user's business profile.
package profile

import (
	"context"
	"net/http"
	"sync"

	"github.com/GriffinCanCode/BizMate/core/internal/client"
	"github.com/GriffinCanCode/BizMate/core/internal/infrastructure/logging"
	"github.com/GriffinCanCode/BizMate/core/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/BizMate/core/internal/shared/types"
	"github.com/GriffinCanCode/BizMate/core/internal/shared/utils"
	"github.com/GriffinCanCode/BizMate/core/internal/workflow"
)

// API is the set of endpoints the workflow uses.
type API interface {
	GetProfile(ctx context.Context) (types.BusinessProfile, error)
	SaveProfile(ctx context.Context, profile types.BusinessProfile) (types.BusinessProfile, error)
}

// Options configures a Workflow.
type Options struct {
	Session    workflow.Session
	OnRedirect func(workflow string)
	Logger     *logging.Logger
	Metrics    *monitoring.Metrics
}

// Workflow keeps the last profile fetched or saved.
type Workflow struct {
	api  API
	load *workflow.Controller[types.BusinessProfile]
	save *workflow.Controller[types.BusinessProfile]

	mu      sync.RWMutex
	profile types.BusinessProfile
	exists  bool
	loaded  bool
}

// New creates a workflow with no profile loaded.
func New(api API, opts Options) *Workflow {
	newController := func(name string) *workflow.Controller[types.BusinessProfile] {
		return workflow.New[types.BusinessProfile](workflow.Options{
			Name:       name,
			Session:    opts.Session,
			OnRedirect: opts.OnRedirect,
			Logger:     opts.Logger,
			Metrics:    opts.Metrics,
		})
	}
	return &Workflow{
		api:  api,
		load: newController("profile.load"),
		save: newController("profile.save"),
	}
}

// Load fetches the profile. A user who has not set one up yet gets an
// empty profile and exists == false.
func (w *Workflow) Load(ctx context.Context) (profile types.BusinessProfile, exists bool, err error) {
	profile, err = w.load.Do(ctx, func(ctx context.Context) (types.BusinessProfile, error) {
		p, err := w.api.GetProfile(ctx)
		switch {
		case err == nil:
			w.store(p, true)
		case client.KindOf(err) == client.KindTransient && client.StatusOf(err) == http.StatusNotFound:
			w.store(types.BusinessProfile{}, false)
			return types.BusinessProfile{}, nil
		}
		return p, err
	})
	if err != nil {
		return profile, false, err
	}
	_, exists = w.Profile()
	return profile, exists, nil
}

// Save creates or replaces the profile.
func (w *Workflow) Save(ctx context.Context, profile types.BusinessProfile) (types.BusinessProfile, error) {
	if err := utils.ValidateName(profile.Name, "business name"); err != nil {
		return types.BusinessProfile{}, client.Validation("profile.save", err.Error())
	}
	return w.save.Do(ctx, func(ctx context.Context) (types.BusinessProfile, error) {
		saved, err := w.api.SaveProfile(ctx, profile)
		if err != nil {
			return saved, err
		}
		w.store(saved, true)
		return saved, nil
	})
}

func (w *Workflow) store(p types.BusinessProfile, exists bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.profile = p
	w.exists = exists
	w.loaded = true
}

// Profile returns the last known profile and whether one exists.
func (w *Workflow) Profile() (types.BusinessProfile, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.profile, w.exists
}

// Loaded reports whether a profile lookup has completed.
func (w *Workflow) Loaded() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.loaded
}

// LastError is the most recent failure of either operation.
func (w *Workflow) LastError() error {
	if err := w.save.Snapshot().LastError; err != nil {
		return err
	}
	return w.load.Snapshot().LastError
}

// Close tears the workflow down.
func (w *Workflow) Close() {
	w.load.Dispose()
	w.save.Dispose()
}
