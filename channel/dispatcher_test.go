package channel

import (
	"testing"
	"time"
)

func TestDispatcher_RoutesToBoundBridge(t *testing.T) {
	d := DefaultDispatcher()

	b := NewBridge(&fakeInvoker{})
	defer b.Close()
	d.Bind(b)
	defer d.Unbind(b)

	sub := b.Subscribe()
	defer sub.Cancel()

	// The static package-level callback is what runtime integrations call.
	Receive(`{"event":"routed"}`)

	if ev := recvEvent(t, sub); ev.Name != "routed" {
		t.Fatalf("event = %q, want routed", ev.Name)
	}
}

func TestDispatcher_UnboundReceiveIsDropped(t *testing.T) {
	d := DefaultDispatcher()

	// Nothing bound: must not panic, message is lost by contract.
	d.Receive(`{"event":"lost"}`)

	b := NewBridge(&fakeInvoker{})
	defer b.Close()
	d.Bind(b)
	defer d.Unbind(b)

	sub := b.Subscribe()
	defer sub.Cancel()

	d.Receive(`{"event":"found"}`)
	if ev := recvEvent(t, sub); ev.Name != "found" {
		t.Fatalf("event = %q, want found", ev.Name)
	}

	select {
	case ev := <-sub.Events():
		t.Fatalf("unexpected extra event %q", ev.Name)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestDispatcher_UnbindOnlyClearsOwnBinding(t *testing.T) {
	d := DefaultDispatcher()

	old := NewBridge(&fakeInvoker{})
	current := NewBridge(&fakeInvoker{})
	defer old.Close()
	defer current.Close()

	d.Bind(old)
	d.Bind(current)
	// A stale bridge unbinding itself must not disturb the newer binding.
	d.Unbind(old)
	defer d.Unbind(current)

	sub := current.Subscribe()
	defer sub.Cancel()

	d.Receive(`{"event":"current"}`)
	if ev := recvEvent(t, sub); ev.Name != "current" {
		t.Fatalf("event = %q, want current", ev.Name)
	}
}

func TestDefaultDispatcher_Singleton(t *testing.T) {
	if DefaultDispatcher() != DefaultDispatcher() {
		t.Fatal("DefaultDispatcher must return the same instance")
	}
}
