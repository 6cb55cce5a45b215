package surface

import (
	"context"
	"sync"

	"go.uber.org/zap"

	runtimebridge "github.com/wippyai/runtime-bridge"
	"github.com/wippyai/runtime-bridge/errors"
	"github.com/wippyai/runtime-bridge/handle"
	"github.com/wippyai/runtime-bridge/lifecycle"
)

// Mount is the host's visual output. The controller attaches the runtime's
// surface to it on Show and detaches on Hide.
type Mount interface {
	AttachSurface(s runtimebridge.Surface) error
	DetachSurface(s runtimebridge.Surface)
}

// StateSource reports the current lifecycle state; the lifecycle adapter
// satisfies it.
type StateSource interface {
	State() lifecycle.State
}

// Controller keeps the runtime's surface attachment and focus flag in step
// with host visibility, independent of lifecycle transitions. A container
// can be resumed while its surface is swapped out for another screen.
//
// Hide deliberately leaves the runtime warm (paused and unfocused, but
// neither stopped nor destroyed) so a later Show is a hot start.
type Controller struct {
	handle *handle.Handle
	states StateSource
	mount  Mount
	log    *zap.Logger

	mu       sync.Mutex
	surface  runtimebridge.Surface
	attached bool
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithLogger sets the controller's logger. Defaults to a no-op logger.
func WithLogger(log *zap.Logger) ControllerOption {
	return func(c *Controller) { c.log = log }
}

// NewController creates a controller over the live handle. The handle is
// shared read-only; the controller only issues resume/pause/focus calls.
func NewController(h *handle.Handle, states StateSource, mount Mount, opts ...ControllerOption) *Controller {
	c := &Controller{
		handle: h,
		states: states,
		mount:  mount,
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Show attaches the runtime's surface to the host mount and brings the
// runtime to the foreground (resume, then focus gained). A second Show
// without an intervening Hide is a no-op, never a double attachment.
//
// Show refuses while the lifecycle is Uninitialized or Destroyed: there is
// no runtime to render.
func (c *Controller) Show(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.attached {
		return nil
	}

	if c.handle == nil || c.handle.Destroyed() {
		return errors.IllegalState(errors.PhaseSurface, "show", "destroyed")
	}
	if c.states != nil {
		if st := c.states.State(); st == lifecycle.Uninitialized || st == lifecycle.Destroyed {
			return errors.IllegalState(errors.PhaseSurface, "show", st.String())
		}
	}

	surf := c.handle.Surface()
	if surf == nil {
		return errors.NotInitialized(errors.PhaseSurface, "surface")
	}

	if err := c.mount.AttachSurface(surf); err != nil {
		return errors.Wrap(errors.PhaseSurface, errors.KindInvalidData, err, "attach surface")
	}

	// Latch only after the runtime is actually resumed and focused; a
	// mounted surface over a paused runtime must not survive a failed Show.
	if err := c.handle.Resume(ctx); err != nil {
		c.mount.DetachSurface(surf)
		return err
	}
	if err := c.handle.FocusChanged(ctx, true); err != nil {
		c.mount.DetachSurface(surf)
		return err
	}
	c.surface = surf
	c.attached = true

	c.log.Debug("surface shown", zap.String("surface", surf.ID()))
	return nil
}

// Hide detaches the surface and sends the runtime to the background (focus
// lost, then pause). It does not stop or destroy: hidden is not stopped.
// Hiding while already hidden is a no-op.
func (c *Controller) Hide(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.attached {
		return nil
	}

	if err := c.handle.FocusChanged(ctx, false); err != nil {
		return err
	}
	if err := c.handle.Pause(ctx); err != nil {
		return err
	}

	c.mount.DetachSurface(c.surface)
	c.log.Debug("surface hidden", zap.String("surface", c.surface.ID()))
	c.surface = nil
	c.attached = false
	return nil
}

// Attached reports whether the surface is currently mounted.
func (c *Controller) Attached() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.attached
}
