// Package gate tracks whether a user is signed in and drives tracker loading.
package gate

import (
	"context"
	"log/slog"
	"sync"

	"github.com/verte-zerg/timesince/internal/auth"
)

// Status is the coarse authentication state shown to the user.
type Status int

const (
	StatusLoading Status = iota
	StatusSignedOut
	StatusSignedIn
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusSignedOut:
		return "signed-out"
	case StatusSignedIn:
		return "signed-in"
	default:
		return "unknown"
	}
}

// Identity is the source of the current session and its changes.
type Identity interface {
	Session(ctx context.Context) (*auth.Identity, error)
	Subscribe(fn func(*auth.Identity)) func()
}

// Loader receives the owner whose trackers should be shown.
type Loader interface {
	Load(ctx context.Context, ownerID string)
	Clear()
}

// Event describes a status transition.
type Event struct {
	Status   Status
	Identity *auth.Identity
	// Restored is set when the identity came from the initial session check.
	Restored bool
	Err      error
}

// Gate follows the identity provider and keeps the loader in sync with it.
type Gate struct {
	identity Identity
	loader   Loader
	logger   *slog.Logger

	mu          sync.Mutex
	ctx         context.Context
	status      Status
	current     *auth.Identity
	listeners   []func(Event)
	unsubscribe func()
}

// New creates a gate in the loading state.
func New(identity Identity, loader Loader, logger *slog.Logger) *Gate {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gate{
		identity: identity,
		loader:   loader,
		logger:   logger,
		ctx:      context.Background(),
		status:   StatusLoading,
	}
}

// OnChange registers fn for every status transition.
func (g *Gate) OnChange(fn func(Event)) {
	g.mu.Lock()
	g.listeners = append(g.listeners, fn)
	g.mu.Unlock()
}

// Status returns the current status and identity.
func (g *Gate) Status() (Status, *auth.Identity) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.status, g.current
}

// Start subscribes to identity changes and performs the initial session
// check. It blocks until the check completes.
func (g *Gate) Start(ctx context.Context) {
	g.mu.Lock()
	g.ctx = ctx
	g.mu.Unlock()
	g.publish(Event{Status: StatusLoading})

	unsubscribe := g.identity.Subscribe(g.changed)
	g.mu.Lock()
	g.unsubscribe = unsubscribe
	g.mu.Unlock()

	id, err := g.identity.Session(ctx)
	if err != nil {
		g.logger.Error("session check failed", "err", err)
		g.set(StatusSignedOut, nil, Event{Status: StatusSignedOut, Err: err})
		return
	}
	if id == nil {
		g.set(StatusSignedOut, nil, Event{Status: StatusSignedOut})
		return
	}
	g.set(StatusSignedIn, id, Event{Status: StatusSignedIn, Identity: id, Restored: true})
	g.loader.Load(ctx, id.UserID)
}

// Stop removes the identity subscription.
func (g *Gate) Stop() {
	g.mu.Lock()
	unsubscribe := g.unsubscribe
	g.unsubscribe = nil
	g.mu.Unlock()
	if unsubscribe != nil {
		unsubscribe()
	}
}

func (g *Gate) changed(id *auth.Identity) {
	g.mu.Lock()
	ctx := g.ctx
	g.mu.Unlock()

	if id == nil {
		g.set(StatusSignedOut, nil, Event{Status: StatusSignedOut})
		g.loader.Clear()
		return
	}
	g.set(StatusSignedIn, id, Event{Status: StatusSignedIn, Identity: id})
	g.loader.Load(ctx, id.UserID)
}

func (g *Gate) set(status Status, id *auth.Identity, ev Event) {
	g.mu.Lock()
	g.status = status
	g.current = id
	g.mu.Unlock()
	g.logger.Debug("gate status", "status", status.String())
	g.publish(ev)
}

func (g *Gate) publish(ev Event) {
	g.mu.Lock()
	listeners := append([]func(Event){}, g.listeners...)
	g.mu.Unlock()
	for _, fn := range listeners {
		fn(ev)
	}
}
