package engine

import (
	"context"
	"sync/atomic"

	runtimebridge "github.com/wippyai/runtime-bridge"
	"github.com/wippyai/runtime-bridge/errors"
)

// NopEngine is an Engine with no runtime behind it. Hosts that integrate a
// runtime through their own transport use it to exercise the lifecycle and
// bridge plumbing; Emit plays the runtime's side of the channel.
type NopEngine struct {
	destroyed atomic.Bool
	receiver  atomic.Value // receiverFn
}

// NewNop creates an inert engine.
func NewNop() *NopEngine {
	return &NopEngine{}
}

func (e *NopEngine) Start(context.Context) error  { return e.check("start") }
func (e *NopEngine) Resume(context.Context) error { return e.check("resume") }
func (e *NopEngine) Pause(context.Context) error  { return e.check("pause") }
func (e *NopEngine) Stop(context.Context) error   { return e.check("stop") }

func (e *NopEngine) Destroy(context.Context) error {
	if !e.destroyed.CompareAndSwap(false, true) {
		return errors.IllegalState(errors.PhaseEngine, "destroy", "destroyed")
	}
	return nil
}

func (e *NopEngine) FocusChanged(context.Context, bool) error {
	return e.check("focus-changed")
}

func (e *NopEngine) Invoke(_ context.Context, _, _, _ string) error {
	return e.check("invoke")
}

func (e *NopEngine) SetReceiver(fn func(raw string)) {
	e.receiver.Store(receiverFn(fn))
}

func (e *NopEngine) Surface() runtimebridge.Surface {
	if e.destroyed.Load() {
		return nil
	}
	return guestSurface{id: "nop"}
}

func (e *NopEngine) Capabilities() runtimebridge.Capability { return 0 }

// Emit plays the runtime side: it pushes raw at the receiver as if the
// runtime had emitted it.
func (e *NopEngine) Emit(raw string) {
	if fn, ok := e.receiver.Load().(receiverFn); ok && fn != nil {
		fn(raw)
	}
}

func (e *NopEngine) check(op string) error {
	if e.destroyed.Load() {
		return errors.IllegalState(errors.PhaseEngine, op, "destroyed")
	}
	return nil
}
