package lifecycle

import (
	"context"
	stderrors "errors"
	"reflect"
	"testing"

	runtimebridge "github.com/wippyai/runtime-bridge"
	"github.com/wippyai/runtime-bridge/errors"
)

type stubSurface struct{}

func (stubSurface) ID() string { return "stub" }

type stubEngine struct {
	calls  []string
	failOn map[string]error
}

func (e *stubEngine) op(name string) error {
	e.calls = append(e.calls, name)
	if e.failOn != nil {
		return e.failOn[name]
	}
	return nil
}

func (e *stubEngine) Start(context.Context) error   { return e.op("start") }
func (e *stubEngine) Resume(context.Context) error  { return e.op("resume") }
func (e *stubEngine) Pause(context.Context) error   { return e.op("pause") }
func (e *stubEngine) Stop(context.Context) error    { return e.op("stop") }
func (e *stubEngine) Destroy(context.Context) error { return e.op("destroy") }

func (e *stubEngine) FocusChanged(_ context.Context, focused bool) error {
	if focused {
		return e.op("focus:true")
	}
	return e.op("focus:false")
}

func (e *stubEngine) Invoke(_ context.Context, _, _, _ string) error { return e.op("invoke") }
func (e *stubEngine) SetReceiver(func(string))                       {}
func (e *stubEngine) Surface() runtimebridge.Surface                 { return stubSurface{} }
func (e *stubEngine) Capabilities() runtimebridge.Capability         { return 0 }

// attach starts an adapter over a fresh stub engine and arranges for the
// process-wide handle slot to be released at test end.
func attach(t *testing.T) (*Adapter, *stubEngine, *ManualContainer) {
	t.Helper()
	eng := &stubEngine{}
	a := NewAdapter(eng)
	c := NewManualContainer()
	if err := a.Attach(context.Background(), c); err != nil {
		t.Fatalf("Attach error: %v", err)
	}
	t.Cleanup(func() {
		if h := a.Handle(); h != nil && !h.Destroyed() {
			_ = h.Destroy(context.Background())
		}
	})
	return a, eng, c
}

func TestAdapter_AttachStartsRuntime(t *testing.T) {
	a, eng, _ := attach(t)

	if got := a.State(); got != Started {
		t.Fatalf("state after attach = %v, want started", got)
	}
	if !reflect.DeepEqual(eng.calls, []string{"start"}) {
		t.Fatalf("engine calls = %v, want [start]", eng.calls)
	}
}

func TestAdapter_AttachTwice(t *testing.T) {
	a, _, _ := attach(t)

	err := a.Attach(context.Background(), NewManualContainer())
	if !errors.IsAlreadyAttached(err) {
		t.Fatalf("expected already-attached error, got %v", err)
	}
}

func TestAdapter_CanonicalSequence(t *testing.T) {
	ctx := context.Background()
	a, eng, _ := attach(t)

	for _, ev := range []HostEvent{EventStart, EventResume, EventPause, EventStop, EventDestroy} {
		if err := a.OnHostEvent(ctx, ev); err != nil {
			t.Fatalf("OnHostEvent(%v) error: %v", ev, err)
		}
	}

	want := []string{
		"start",
		"resume", "focus:true",
		"focus:false", "pause",
		"stop",
		"destroy",
	}
	if !reflect.DeepEqual(eng.calls, want) {
		t.Fatalf("engine calls = %v, want %v", eng.calls, want)
	}
	if got := a.State(); got != Destroyed {
		t.Errorf("final state = %v, want destroyed", got)
	}
	if a.Handle() != nil {
		t.Error("handle should be released after destroy")
	}
}

func TestAdapter_Idempotence(t *testing.T) {
	ctx := context.Background()
	a, eng, _ := attach(t)

	for _, ev := range []HostEvent{EventStart, EventStart, EventResume, EventResume, EventResume} {
		if err := a.OnHostEvent(ctx, ev); err != nil {
			t.Fatalf("OnHostEvent(%v) error: %v", ev, err)
		}
	}

	want := []string{"start", "resume", "focus:true"}
	if !reflect.DeepEqual(eng.calls, want) {
		t.Fatalf("duplicate events changed calls: %v, want %v", eng.calls, want)
	}
	if got := a.State(); got != Resumed {
		t.Errorf("state = %v, want resumed", got)
	}
}

func TestAdapter_FurthestStateCollapse(t *testing.T) {
	tests := []struct {
		name   string
		events []HostEvent
		want   State
	}{
		{"resume before start", []HostEvent{EventResume}, Resumed},
		{"pause skipping resume", []HostEvent{EventPause}, Paused},
		{"backward resume ignored", []HostEvent{EventPause, EventResume}, Paused},
		{"stop then repeats", []HostEvent{EventStop, EventPause, EventStop}, Stopped},
		{"full shuffle", []HostEvent{EventResume, EventStart, EventPause, EventResume}, Paused},
		{"destroy wins", []HostEvent{EventDestroy, EventResume}, Destroyed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			a, _, _ := attach(t)

			for _, ev := range tt.events {
				err := a.OnHostEvent(ctx, ev)
				// Events after destroy fail with illegal state; that is the
				// documented contract, not a test failure.
				if err != nil && !errors.IsIllegalState(err) {
					t.Fatalf("OnHostEvent(%v) error: %v", ev, err)
				}
			}
			if got := a.State(); got != tt.want {
				t.Errorf("final state = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAdapter_ResumeBeforeStartIsImplicitStart(t *testing.T) {
	ctx := context.Background()
	a, eng, _ := attach(t)

	// Adapter is already Started by attach; detach-level implicit start is
	// covered by the walk from Started: a bare Pause synthesizes Resume.
	if err := a.OnHostEvent(ctx, EventPause); err != nil {
		t.Fatalf("OnHostEvent(pause) error: %v", err)
	}

	want := []string{"start", "resume", "focus:true", "focus:false", "pause"}
	if !reflect.DeepEqual(eng.calls, want) {
		t.Fatalf("engine calls = %v, want %v", eng.calls, want)
	}
}

func TestAdapter_EventsViaContainer(t *testing.T) {
	a, eng, c := attach(t)

	c.Emit(EventResume)
	c.Emit(EventPause)

	want := []string{"start", "resume", "focus:true", "focus:false", "pause"}
	if !reflect.DeepEqual(eng.calls, want) {
		t.Fatalf("engine calls = %v, want %v", eng.calls, want)
	}
	if got := a.State(); got != Paused {
		t.Errorf("state = %v, want paused", got)
	}
}

func TestAdapter_DestroyThenReattach(t *testing.T) {
	ctx := context.Background()
	a, _, c := attach(t)

	if err := a.OnHostEvent(ctx, EventDestroy); err != nil {
		t.Fatalf("OnHostEvent(destroy) error: %v", err)
	}
	if c.ObserverCount() != 0 {
		t.Error("observer should be unregistered after destroy")
	}

	err := a.OnHostEvent(ctx, EventResume)
	if !errors.IsIllegalState(err) {
		t.Fatalf("expected illegal-state error after destroy, got %v", err)
	}

	// Re-attach resets the machine to Started on a fresh handle.
	if err := a.Attach(ctx, c); err != nil {
		t.Fatalf("re-Attach error: %v", err)
	}
	if got := a.State(); got != Started {
		t.Errorf("state after re-attach = %v, want started", got)
	}
	if err := a.OnHostEvent(ctx, EventDestroy); err != nil {
		t.Fatalf("cleanup destroy error: %v", err)
	}
}

func TestAdapter_DetachKeepsRuntimeWarm(t *testing.T) {
	a, eng, c := attach(t)

	h := a.Handle()
	a.Detach()

	if a.Handle() != nil {
		t.Error("adapter should drop its handle reference on detach")
	}
	if c.ObserverCount() != 0 {
		t.Error("observer should be unregistered on detach")
	}
	for _, call := range eng.calls {
		if call == "destroy" {
			t.Error("detach must not destroy the runtime")
		}
	}

	// The handle slot is still held; a second attach must fail until the
	// warm runtime is destroyed.
	err := a.Attach(context.Background(), c)
	if !errors.IsAlreadyAttached(err) {
		t.Fatalf("expected already-attached error while handle is warm, got %v", err)
	}

	if err := h.Destroy(context.Background()); err != nil {
		t.Fatalf("Destroy error: %v", err)
	}
	if err := a.Attach(context.Background(), c); err != nil {
		t.Fatalf("Attach after destroy error: %v", err)
	}
}

func TestAdapter_StartFailureReleasesSlot(t *testing.T) {
	ctx := context.Background()
	boom := stderrors.New("engine refused to start")
	eng := &stubEngine{failOn: map[string]error{"start": boom}}
	a := NewAdapter(eng)

	err := a.Attach(ctx, NewManualContainer())
	if !stderrors.Is(err, boom) {
		t.Fatalf("Attach error = %v, want %v", err, boom)
	}

	// The failed attach must not leave the process-wide slot claimed.
	a2 := NewAdapter(&stubEngine{})
	if err := a2.Attach(ctx, NewManualContainer()); err != nil {
		t.Fatalf("Attach after failed attach error: %v", err)
	}
	_ = a2.OnHostEvent(ctx, EventDestroy)
}

func TestState_String(t *testing.T) {
	cases := map[State]string{
		Uninitialized: "uninitialized",
		Started:       "started",
		Resumed:       "resumed",
		Paused:        "paused",
		Stopped:       "stopped",
		Destroyed:     "destroyed",
		State(42):     "unknown",
	}
	for s, want := range cases {
		if got := s.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", int(s), got, want)
		}
	}
}

func TestHostEvent_String(t *testing.T) {
	if EventResume.String() != "resume" || HostEvent(9).String() != "unknown" {
		t.Error("unexpected HostEvent string form")
	}
}
