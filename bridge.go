package runtimebridge

import "context"

// Engine is the embedded runtime as seen by the host. Implementations wrap
// an externally supplied component with its own independent lifecycle; the
// bridge never inspects what runs inside it.
//
// Lifecycle calls are not re-entrant and are sequenced by the lifecycle
// adapter. Invoke and the receiver callback may be used from other
// goroutines.
type Engine interface {
	Start(ctx context.Context) error
	Resume(ctx context.Context) error
	Pause(ctx context.Context) error
	Stop(ctx context.Context) error

	// Destroy releases the runtime. After Destroy returns, every other
	// method fails; the engine cannot be restarted.
	Destroy(ctx context.Context) error

	// FocusChanged reports surface focus/visibility to the runtime,
	// independent of lifecycle state.
	FocusChanged(ctx context.Context, focused bool) error

	// Invoke forwards a host command to the runtime. The wire format is
	// three strings: a target object name, a method name, and an opaque
	// payload. Delivery is fire-and-forget.
	Invoke(ctx context.Context, target, method, payload string) error

	// SetReceiver installs the statically addressable callback the runtime
	// uses to emit strings back to the host. The callback may be invoked
	// from runtime-owned goroutines at arbitrary times.
	SetReceiver(fn func(raw string))

	// Surface returns the runtime's renderable output handle, or nil if
	// the engine has none (or has been destroyed).
	Surface() Surface

	Capabilities() Capability
}

// Surface is the runtime's renderable output handle. The host mounts it into
// its visual tree; its contents are opaque to the bridge.
type Surface interface {
	ID() string
}

// Capability describes properties of an engine that the host cannot observe
// through its API but must plan deployment around.
type Capability uint32

const (
	// CapTerminatesProcess marks an engine that may terminate its hosting
	// OS process unilaterally. Such an engine must be deployed in a
	// process isolated from the host's primary process; see the isolation
	// package.
	CapTerminatesProcess Capability = 1 << iota
)

// Has reports whether c includes flag.
func (c Capability) Has(flag Capability) bool {
	return c&flag != 0
}
