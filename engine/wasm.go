package engine

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"sync"
	"sync/atomic"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"github.com/tetratelabs/wazero/sys"
	"go.uber.org/zap"

	runtimebridge "github.com/wippyai/runtime-bridge"
	"github.com/wippyai/runtime-bridge/errors"
)

// Guest exports recognized by the engine. Lifecycle hooks are optional; a
// guest that exports none of them simply rides along with the host's
// state. Inbound messages additionally need the guest allocator.
const (
	hookStart   = "on-start"
	hookResume  = "on-resume"
	hookPause   = "on-pause"
	hookStop    = "on-stop"
	hookFocus   = "on-focus"   // (focused i32)
	hookMessage = "on-message" // (ptr, len i32)
	guestAlloc  = "alloc"      // (size i32) -> ptr i32

	// hostModule is the import namespace the guest emits through:
	// host.emit(ptr, len).
	hostModule = "host"
)

// Config configures a WasmEngine.
type Config struct {
	// Module is the guest's core WebAssembly binary.
	Module []byte

	// Name identifies the engine in logs and surface IDs.
	Name string

	// WASI mounts wazero's snapshot-preview1 host module for guests
	// compiled against WASI libc.
	WASI bool

	// TerminatesProcess advertises that this runtime's shutdown path kills
	// its hosting OS process. Deployment must isolate it; see the
	// isolation package.
	TerminatesProcess bool
}

type receiverFn func(raw string)

// WasmEngine hosts the embedded runtime as a WebAssembly guest under
// wazero. It satisfies the root Engine contract: lifecycle hooks map to
// guest exports, host commands are serialized into guest memory, and guest
// emissions surface through the receiver callback.
type WasmEngine struct {
	name    string
	caps    runtimebridge.Capability
	runtime wazero.Runtime
	surface runtimebridge.Surface

	// mu serializes all guest entry: a wazero module instance is not safe
	// for concurrent calls.
	mu     sync.Mutex
	module api.Module
	closed bool

	receiver atomic.Value // receiverFn
}

// New compiles and instantiates the guest module. The guest's start
// section runs here; its lifecycle hooks do not until the handle drives
// them.
func New(ctx context.Context, cfg Config) (*WasmEngine, error) {
	if len(cfg.Module) == 0 {
		return nil, errors.InvalidInput(errors.PhaseEngine, "empty module binary")
	}
	name := cfg.Name
	if name == "" {
		name = "engine"
	}

	e := &WasmEngine{
		name:    name,
		surface: guestSurface{id: "wasm:" + name},
	}
	if cfg.TerminatesProcess {
		e.caps |= runtimebridge.CapTerminatesProcess
	}

	r := wazero.NewRuntimeWithConfig(ctx, wazero.NewRuntimeConfig())
	e.runtime = r

	if cfg.WASI {
		wasi_snapshot_preview1.MustInstantiate(ctx, r)
	}

	_, err := r.NewHostModuleBuilder(hostModule).
		NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(e.hostEmit),
			[]api.ValueType{api.ValueTypeI32, api.ValueTypeI32}, nil).
		Export("emit").
		Instantiate(ctx)
	if err != nil {
		_ = r.Close(ctx)
		return nil, errors.Engine("register host module", err)
	}

	mod, err := r.InstantiateWithConfig(ctx, cfg.Module,
		wazero.NewModuleConfig().WithName(name).WithStartFunctions())
	if err != nil {
		_ = r.Close(ctx)
		return nil, errors.Engine("instantiate guest", err)
	}
	e.module = mod

	Logger().Info("guest engine instantiated", zap.String("name", name))
	return e, nil
}

func (e *WasmEngine) Start(ctx context.Context) error  { return e.callHook(ctx, hookStart) }
func (e *WasmEngine) Resume(ctx context.Context) error { return e.callHook(ctx, hookResume) }
func (e *WasmEngine) Pause(ctx context.Context) error  { return e.callHook(ctx, hookPause) }
func (e *WasmEngine) Stop(ctx context.Context) error   { return e.callHook(ctx, hookStop) }

// Destroy closes the guest instance and the wazero runtime. The engine is
// unusable afterwards.
func (e *WasmEngine) Destroy(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return errors.IllegalState(errors.PhaseEngine, "destroy", "destroyed")
	}
	e.closed = true
	if err := e.runtime.Close(ctx); err != nil {
		return errors.Engine("destroy", err)
	}
	Logger().Info("guest engine destroyed", zap.String("name", e.name))
	return nil
}

// FocusChanged calls the guest's on-focus hook, if exported.
func (e *WasmEngine) FocusChanged(ctx context.Context, focused bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return errors.IllegalState(errors.PhaseEngine, hookFocus, "destroyed")
	}
	fn := e.module.ExportedFunction(hookFocus)
	if fn == nil {
		return nil
	}
	var arg uint64
	if focused {
		arg = 1
	}
	_, err := fn.Call(ctx, arg)
	return e.guestError(hookFocus, err)
}

// invocation is the wire form of the host command triple handed to the
// guest's on-message export.
type invocation struct {
	Target  string `json:"target"`
	Method  string `json:"method"`
	Payload string `json:"payload"`
}

// Invoke writes the command triple into guest memory and calls on-message.
func (e *WasmEngine) Invoke(ctx context.Context, target, method, payload string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return errors.IllegalState(errors.PhaseEngine, "invoke", "destroyed")
	}

	fn := e.module.ExportedFunction(hookMessage)
	if fn == nil {
		return errors.Wrap(errors.PhaseTransport, errors.KindTransportFailed, nil,
			"guest exports no "+hookMessage+" entry point")
	}
	alloc := e.module.ExportedFunction(guestAlloc)
	if alloc == nil {
		return errors.Wrap(errors.PhaseTransport, errors.KindTransportFailed, nil,
			"guest exports no "+guestAlloc+" function")
	}

	msg, err := json.Marshal(invocation{Target: target, Method: method, Payload: payload})
	if err != nil {
		return errors.Transport("encode invocation", err)
	}

	results, err := alloc.Call(ctx, uint64(len(msg)))
	if err != nil {
		return errors.Transport(guestAlloc, e.guestError(guestAlloc, err))
	}
	ptr := uint32(results[0])

	if !e.module.Memory().Write(ptr, msg) {
		return errors.Wrap(errors.PhaseTransport, errors.KindTransportFailed, nil,
			"guest allocation out of memory bounds")
	}

	if _, err := fn.Call(ctx, uint64(ptr), uint64(len(msg))); err != nil {
		return errors.Transport(hookMessage, e.guestError(hookMessage, err))
	}
	return nil
}

// SetReceiver installs the callback for guest emissions. Safe to call at
// any time; emissions before a receiver is set are dropped.
func (e *WasmEngine) SetReceiver(fn func(raw string)) {
	e.receiver.Store(receiverFn(fn))
}

// Surface returns the guest's renderable surface token, or nil once the
// engine is destroyed.
func (e *WasmEngine) Surface() runtimebridge.Surface {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	return e.surface
}

func (e *WasmEngine) Capabilities() runtimebridge.Capability {
	return e.caps
}

// callHook invokes a niladic guest lifecycle hook. Missing hooks are not
// an error; the guest opts into the transitions it cares about.
func (e *WasmEngine) callHook(ctx context.Context, name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return errors.IllegalState(errors.PhaseEngine, name, "destroyed")
	}
	fn := e.module.ExportedFunction(name)
	if fn == nil {
		return nil
	}
	_, err := fn.Call(ctx)
	return e.guestError(name, err)
}

// guestError normalizes a guest call failure. A sys.ExitError means the
// guest terminated itself; within this process that only kills the
// sandbox, but it marks the engine dead. In an isolated deployment the
// same exit takes the whole runtime process with it.
func (e *WasmEngine) guestError(op string, err error) error {
	if err == nil {
		return nil
	}
	var exitErr *sys.ExitError
	if stderrors.As(err, &exitErr) {
		e.closed = true
		Logger().Warn("guest terminated itself",
			zap.String("name", e.name),
			zap.Uint32("exit_code", exitErr.ExitCode()))
		return errors.IllegalState(errors.PhaseEngine, op, "destroyed")
	}
	return errors.Engine(op, err)
}

// hostEmit is the guest's host.emit(ptr, len) import: the runtime-to-host
// half of the bridge. It runs on whatever goroutine is executing the
// guest and hands the string to the receiver without further processing.
func (e *WasmEngine) hostEmit(_ context.Context, mod api.Module, stack []uint64) {
	ptr := uint32(stack[0])
	length := uint32(stack[1])

	buf, ok := mod.Memory().Read(ptr, length)
	if !ok {
		Logger().Warn("guest emit out of memory bounds",
			zap.Uint32("ptr", ptr), zap.Uint32("len", length))
		return
	}
	raw := string(buf)

	if fn, ok := e.receiver.Load().(receiverFn); ok && fn != nil {
		fn(raw)
	}
}

// guestSurface is the token handed to the host's visual tree. Pixel
// transport is the embedder's concern, not the bridge's.
type guestSurface struct {
	id string
}

func (s guestSurface) ID() string { return s.id }
