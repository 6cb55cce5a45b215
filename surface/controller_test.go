package surface

import (
	"context"
	stderrors "errors"
	"reflect"
	"testing"

	runtimebridge "github.com/wippyai/runtime-bridge"
	"github.com/wippyai/runtime-bridge/errors"
	"github.com/wippyai/runtime-bridge/handle"
	"github.com/wippyai/runtime-bridge/lifecycle"
)

type testSurface struct{}

func (testSurface) ID() string { return "test-surface" }

type testEngine struct {
	calls  []string
	failOn map[string]error // consumed on first hit
}

func (e *testEngine) op(name string) error {
	e.calls = append(e.calls, name)
	if err := e.failOn[name]; err != nil {
		delete(e.failOn, name)
		return err
	}
	return nil
}

func (e *testEngine) Start(context.Context) error   { return e.op("start") }
func (e *testEngine) Resume(context.Context) error  { return e.op("resume") }
func (e *testEngine) Pause(context.Context) error   { return e.op("pause") }
func (e *testEngine) Stop(context.Context) error    { return e.op("stop") }
func (e *testEngine) Destroy(context.Context) error { return e.op("destroy") }

func (e *testEngine) FocusChanged(_ context.Context, focused bool) error {
	if focused {
		return e.op("focus:true")
	}
	return e.op("focus:false")
}

func (e *testEngine) Invoke(_ context.Context, _, _, _ string) error { return e.op("invoke") }
func (e *testEngine) SetReceiver(func(string))                       {}
func (e *testEngine) Surface() runtimebridge.Surface                 { return testSurface{} }
func (e *testEngine) Capabilities() runtimebridge.Capability         { return 0 }

type testMount struct {
	attaches int
	detaches int
	current  runtimebridge.Surface
}

func (m *testMount) AttachSurface(s runtimebridge.Surface) error {
	m.attaches++
	m.current = s
	return nil
}

func (m *testMount) DetachSurface(runtimebridge.Surface) {
	m.detaches++
	m.current = nil
}

type fixedState struct{ st lifecycle.State }

func (f fixedState) State() lifecycle.State { return f.st }

func newTestController(t *testing.T, st lifecycle.State) (*Controller, *testEngine, *testMount) {
	t.Helper()
	eng := &testEngine{}
	h, err := handle.New(eng)
	if err != nil {
		t.Fatalf("handle.New error: %v", err)
	}
	t.Cleanup(func() {
		if !h.Destroyed() {
			_ = h.Destroy(context.Background())
		}
	})
	mount := &testMount{}
	return NewController(h, fixedState{st: st}, mount), eng, mount
}

func TestController_ShowHideCycle(t *testing.T) {
	ctx := context.Background()
	c, eng, mount := newTestController(t, lifecycle.Resumed)

	if err := c.Show(ctx); err != nil {
		t.Fatalf("Show error: %v", err)
	}
	if !c.Attached() {
		t.Fatal("Attached() = false after Show")
	}
	if mount.attaches != 1 || mount.current == nil {
		t.Fatalf("mount attaches = %d, current = %v", mount.attaches, mount.current)
	}

	if err := c.Hide(ctx); err != nil {
		t.Fatalf("Hide error: %v", err)
	}
	if c.Attached() {
		t.Fatal("Attached() = true after Hide")
	}
	if mount.detaches != 1 || mount.current != nil {
		t.Fatalf("mount detaches = %d, current = %v", mount.detaches, mount.current)
	}

	want := []string{"resume", "focus:true", "focus:false", "pause"}
	for i, op := range want {
		if eng.calls[i] != op {
			t.Errorf("call %d = %q, want %q", i, eng.calls[i], op)
		}
	}
}

func TestController_HideKeepsRuntimeWarm(t *testing.T) {
	ctx := context.Background()
	c, eng, _ := newTestController(t, lifecycle.Resumed)

	if err := c.Show(ctx); err != nil {
		t.Fatalf("Show error: %v", err)
	}
	if err := c.Hide(ctx); err != nil {
		t.Fatalf("Hide error: %v", err)
	}

	for _, call := range eng.calls {
		if call == "stop" || call == "destroy" {
			t.Fatalf("Hide issued %q; hidden must not mean stopped", call)
		}
	}
}

func TestController_RepeatedCyclesDoNotLeak(t *testing.T) {
	ctx := context.Background()
	c, _, mount := newTestController(t, lifecycle.Resumed)

	for i := 0; i < 5; i++ {
		if err := c.Show(ctx); err != nil {
			t.Fatalf("Show %d error: %v", i, err)
		}
		// Double show is a no-op, not a second attachment.
		if err := c.Show(ctx); err != nil {
			t.Fatalf("double Show %d error: %v", i, err)
		}
		if err := c.Hide(ctx); err != nil {
			t.Fatalf("Hide %d error: %v", i, err)
		}
		if err := c.Hide(ctx); err != nil {
			t.Fatalf("double Hide %d error: %v", i, err)
		}
	}

	if mount.attaches != 5 || mount.detaches != 5 {
		t.Fatalf("attaches/detaches = %d/%d, want 5/5", mount.attaches, mount.detaches)
	}
}

func TestController_ShowRollsBackOnResumeFailure(t *testing.T) {
	ctx := context.Background()
	eng := &testEngine{failOn: map[string]error{"resume": stderrors.New("resume refused")}}
	h, err := handle.New(eng)
	if err != nil {
		t.Fatalf("handle.New error: %v", err)
	}
	t.Cleanup(func() {
		if !h.Destroyed() {
			_ = h.Destroy(ctx)
		}
	})
	mount := &testMount{}
	c := NewController(h, fixedState{st: lifecycle.Resumed}, mount)

	if err := c.Show(ctx); err == nil {
		t.Fatal("expected Show to fail while resume fails")
	}
	if c.Attached() {
		t.Fatal("surface must not stay attached after a failed Show")
	}
	if mount.attaches != 1 || mount.detaches != 1 || mount.current != nil {
		t.Fatalf("mount attaches/detaches = %d/%d, current = %v, want 1/1/nil",
			mount.attaches, mount.detaches, mount.current)
	}

	// The engine recovered; the retry must actually resume and focus rather
	// than short-circuit on stale attachment state.
	if err := c.Show(ctx); err != nil {
		t.Fatalf("retry Show error: %v", err)
	}
	if !c.Attached() {
		t.Fatal("Attached() = false after successful retry")
	}
	want := []string{"resume", "resume", "focus:true"}
	if !reflect.DeepEqual(eng.calls, want) {
		t.Fatalf("engine calls = %v, want %v", eng.calls, want)
	}
}

func TestController_ShowRollsBackOnFocusFailure(t *testing.T) {
	ctx := context.Background()
	eng := &testEngine{failOn: map[string]error{"focus:true": stderrors.New("focus refused")}}
	h, err := handle.New(eng)
	if err != nil {
		t.Fatalf("handle.New error: %v", err)
	}
	t.Cleanup(func() {
		if !h.Destroyed() {
			_ = h.Destroy(ctx)
		}
	})
	mount := &testMount{}
	c := NewController(h, fixedState{st: lifecycle.Resumed}, mount)

	if err := c.Show(ctx); err == nil {
		t.Fatal("expected Show to fail while focus fails")
	}
	if c.Attached() || mount.detaches != 1 {
		t.Fatalf("Attached() = %v, detaches = %d after failed Show, want false/1",
			c.Attached(), mount.detaches)
	}

	if err := c.Show(ctx); err != nil {
		t.Fatalf("retry Show error: %v", err)
	}
	want := []string{"resume", "focus:true", "resume", "focus:true"}
	if !reflect.DeepEqual(eng.calls, want) {
		t.Fatalf("engine calls = %v, want %v", eng.calls, want)
	}
}

func TestController_ShowBeforeStart(t *testing.T) {
	c, _, mount := newTestController(t, lifecycle.Uninitialized)

	err := c.Show(context.Background())
	if !errors.IsIllegalState(err) {
		t.Fatalf("expected illegal-state error, got %v", err)
	}
	if mount.attaches != 0 {
		t.Error("surface must not attach for an unstarted runtime")
	}
}

func TestController_ShowAfterDestroy(t *testing.T) {
	ctx := context.Background()
	c, _, mount := newTestController(t, lifecycle.Resumed)

	if err := c.Show(ctx); err != nil {
		t.Fatalf("Show error: %v", err)
	}
	if err := c.Hide(ctx); err != nil {
		t.Fatalf("Hide error: %v", err)
	}

	// Destroy out from under the controller; next Show must refuse.
	h := chandle(c)
	if err := h.Destroy(ctx); err != nil {
		t.Fatalf("Destroy error: %v", err)
	}

	err := c.Show(ctx)
	if !errors.IsIllegalState(err) {
		t.Fatalf("expected illegal-state error, got %v", err)
	}
	if mount.attaches != 1 {
		t.Error("surface must not attach after destroy")
	}
}

// chandle exposes the controller's handle for teardown-order tests.
func chandle(c *Controller) *handle.Handle { return c.handle }
