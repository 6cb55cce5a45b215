package lifecycle

import (
	"context"
	"sync"

	"go.uber.org/zap"

	runtimebridge "github.com/wippyai/runtime-bridge"
	"github.com/wippyai/runtime-bridge/errors"
	"github.com/wippyai/runtime-bridge/handle"
)

// Container is the host-side owner of a lifecycle. The adapter registers an
// observer on attach; the container delivers its events until the returned
// cancel func runs.
type Container interface {
	Observe(fn func(HostEvent)) (cancel func())
}

// Adapter maps host container lifecycle events onto runtime handle
// operations, exactly once per transition.
//
// Events are applied idempotently against the ordered state machine: an
// event at or behind the current state is a no-op, an event ahead of it
// fills in every intermediate transition (Resume before Start performs the
// implicit Start first). The state never moves backward.
type Adapter struct {
	engine runtimebridge.Engine
	log    *zap.Logger

	mu        sync.Mutex
	handle    *handle.Handle
	state     State
	unobserve func()
}

// AdapterOption configures an Adapter.
type AdapterOption func(*Adapter)

// WithLogger sets the adapter's logger. Defaults to a no-op logger.
func WithLogger(log *zap.Logger) AdapterOption {
	return func(a *Adapter) { a.log = log }
}

// NewAdapter creates an adapter that will wrap engine in a handle on attach.
func NewAdapter(engine runtimebridge.Engine, opts ...AdapterOption) *Adapter {
	a := &Adapter{
		engine: engine,
		log:    zap.NewNop(),
		state:  Uninitialized,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Attach creates the runtime handle, starts the runtime, and registers for
// the container's future lifecycle events. Fails with an already-attached
// error if called again without an intervening detach.
func (a *Adapter) Attach(ctx context.Context, c Container) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.handle != nil {
		return errors.AlreadyAttached("adapter already has a live handle; detach first")
	}

	h, err := handle.New(a.engine)
	if err != nil {
		return err
	}
	a.handle = h
	a.state = Uninitialized

	if err := a.advanceLocked(ctx, Started); err != nil {
		a.handle = nil
		_ = h.Destroy(ctx)
		return err
	}

	if c != nil {
		a.unobserve = c.Observe(func(ev HostEvent) {
			if err := a.OnHostEvent(context.Background(), ev); err != nil {
				a.log.Warn("lifecycle event failed",
					zap.String("event", ev.String()),
					zap.Error(err))
			}
		})
	}
	return nil
}

// OnHostEvent applies one host lifecycle event. Re-delivering an event in
// the same state is a no-op, not an error.
func (a *Adapter) OnHostEvent(ctx context.Context, ev HostEvent) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.handle == nil {
		return errors.IllegalState(errors.PhaseLifecycle, ev.String(), "detached")
	}

	target := ev.target()
	if target <= a.state {
		a.log.Debug("lifecycle event ignored",
			zap.String("event", ev.String()),
			zap.String("state", a.state.String()))
		return nil
	}

	// Nothing has started yet: there is nothing to wind down. Destroy still
	// releases the handle, but without synthesizing a start/stop cycle.
	if a.state == Uninitialized && (ev == EventPause || ev == EventStop) {
		return nil
	}
	if a.state == Uninitialized && ev == EventDestroy {
		err := a.handle.Destroy(ctx)
		a.state = Destroyed
		a.detachLocked()
		return err
	}

	return a.advanceLocked(ctx, target)
}

// Detach unregisters the lifecycle observer and releases the adapter's
// reference to the handle. It does not destroy the runtime; destruction is
// driven by the Destroy event.
func (a *Adapter) Detach() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.detachLocked()
}

// State returns the current lifecycle state.
func (a *Adapter) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Handle returns the live runtime handle, or nil while detached. Callers
// receive it read-only; only the adapter mutates lifecycle state through it.
func (a *Adapter) Handle() *handle.Handle {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.handle
}

// advanceLocked walks the state machine forward one step at a time up to
// target, applying the handle call for each step. The walk stops at the
// first failure; a.state reflects the last step that succeeded.
func (a *Adapter) advanceLocked(ctx context.Context, target State) error {
	for s := a.state + 1; s <= target; s++ {
		if err := a.stepLocked(ctx, s); err != nil {
			return err
		}
		a.log.Debug("lifecycle transition",
			zap.String("from", a.state.String()),
			zap.String("to", s.String()))
		a.state = s
	}
	if target == Destroyed {
		a.detachLocked()
	}
	return nil
}

func (a *Adapter) stepLocked(ctx context.Context, s State) error {
	switch s {
	case Started:
		return a.handle.Start(ctx)
	case Resumed:
		if err := a.handle.Resume(ctx); err != nil {
			return err
		}
		return a.handle.FocusChanged(ctx, true)
	case Paused:
		if err := a.handle.FocusChanged(ctx, false); err != nil {
			return err
		}
		return a.handle.Pause(ctx)
	case Stopped:
		return a.handle.Stop(ctx)
	case Destroyed:
		return a.handle.Destroy(ctx)
	}
	return errors.InvalidInput(errors.PhaseLifecycle, "unreachable state "+s.String())
}

func (a *Adapter) detachLocked() {
	if a.unobserve != nil {
		a.unobserve()
		a.unobserve = nil
	}
	a.handle = nil
}
