package handle

import (
	"context"
	"sync/atomic"

	runtimebridge "github.com/wippyai/runtime-bridge"
	"github.com/wippyai/runtime-bridge/errors"
)

// The embedded runtime is a process-wide singleton resource; at most one
// live handle may exist at a time.
var live atomic.Bool

// Handle owns the underlying runtime instance and its renderable surface.
// It is exclusively owned by the lifecycle adapter for its lifetime and
// shared read-only with the surface controller and the event bridge.
//
// Every operation fails with an illegal-state error once the handle is
// destroyed; the handle cannot be revived, callers must create a new one.
type Handle struct {
	engine    runtimebridge.Engine
	destroyed atomic.Bool
}

// New claims the process-wide runtime slot and wraps engine in a handle.
// It fails with an already-attached error if another handle is still live.
func New(engine runtimebridge.Engine) (*Handle, error) {
	if engine == nil {
		return nil, errors.NotInitialized(errors.PhaseEngine, "engine")
	}
	if !live.CompareAndSwap(false, true) {
		return nil, errors.AlreadyAttached("a runtime handle is already live in this process")
	}
	return &Handle{engine: engine}, nil
}

func (h *Handle) Start(ctx context.Context) error {
	return h.call(ctx, "start", h.engine.Start)
}

func (h *Handle) Resume(ctx context.Context) error {
	return h.call(ctx, "resume", h.engine.Resume)
}

func (h *Handle) Pause(ctx context.Context) error {
	return h.call(ctx, "pause", h.engine.Pause)
}

func (h *Handle) Stop(ctx context.Context) error {
	return h.call(ctx, "stop", h.engine.Stop)
}

// FocusChanged reports surface focus to the runtime. Focus is orthogonal to
// lifecycle state; the surface controller drives it on visibility changes.
func (h *Handle) FocusChanged(ctx context.Context, focused bool) error {
	if h.destroyed.Load() {
		return errors.IllegalState(errors.PhaseLifecycle, "focus-changed", "destroyed")
	}
	return h.engine.FocusChanged(ctx, focused)
}

// Invoke forwards a host command triple to the runtime. Call-through for
// the event bridge; does not touch lifecycle state.
func (h *Handle) Invoke(ctx context.Context, target, method, payload string) error {
	if h.destroyed.Load() {
		return errors.IllegalState(errors.PhaseTransport, "invoke", "destroyed")
	}
	return h.engine.Invoke(ctx, target, method, payload)
}

// Destroy tears the runtime down and releases the process-wide slot. The
// first call wins; later calls (and all other operations) fail with an
// illegal-state error.
func (h *Handle) Destroy(ctx context.Context) error {
	if !h.destroyed.CompareAndSwap(false, true) {
		return errors.IllegalState(errors.PhaseLifecycle, "destroy", "destroyed")
	}
	defer live.Store(false)
	return h.engine.Destroy(ctx)
}

// Destroyed reports whether the handle has been destroyed. A handle whose
// isolated runtime process disappeared is observed as destroyed on next
// access; the host recovers by attaching a fresh handle.
func (h *Handle) Destroyed() bool {
	return h.destroyed.Load()
}

// Surface returns the runtime's renderable surface, or nil once destroyed.
func (h *Handle) Surface() runtimebridge.Surface {
	if h.destroyed.Load() {
		return nil
	}
	return h.engine.Surface()
}

// Capabilities exposes the engine's deployment capabilities.
func (h *Handle) Capabilities() runtimebridge.Capability {
	return h.engine.Capabilities()
}

func (h *Handle) call(ctx context.Context, op string, fn func(context.Context) error) error {
	if h.destroyed.Load() {
		return errors.IllegalState(errors.PhaseLifecycle, op, "destroyed")
	}
	return fn(ctx)
}
