package channel

import "sync"

// Dispatcher routes the runtime's statically addressable callback to the
// bridge bound at delivery time. The runtime side knows exactly one global
// entry point with no caller context; the dispatcher gives that entry point
// an explicit registry and a lifecycle of its own: initialized on first
// use, never torn down.
type Dispatcher struct {
	mu     sync.RWMutex
	bridge *Bridge
}

var (
	defaultDispatcher     *Dispatcher
	defaultDispatcherOnce sync.Once
)

// DefaultDispatcher returns the process-wide dispatcher.
func DefaultDispatcher() *Dispatcher {
	defaultDispatcherOnce.Do(func() {
		defaultDispatcher = &Dispatcher{}
	})
	return defaultDispatcher
}

// Bind routes subsequent deliveries to b, replacing any previous binding.
func (d *Dispatcher) Bind(b *Bridge) {
	d.mu.Lock()
	d.bridge = b
	d.mu.Unlock()
}

// Unbind clears the binding if it still points at b. A bridge being torn
// down unbinds itself without clobbering a newer binding.
func (d *Dispatcher) Unbind(b *Bridge) {
	d.mu.Lock()
	if d.bridge == b {
		d.bridge = nil
	}
	d.mu.Unlock()
}

// Receive delivers one raw runtime message. With no bridge bound the
// message is dropped: delivery is fire-and-forget by contract.
func (d *Dispatcher) Receive(raw string) {
	d.mu.RLock()
	b := d.bridge
	d.mu.RUnlock()

	if b == nil {
		return
	}
	b.Receive(raw)
}

// Receive is the process-wide runtime callback, the single static name the
// runtime integration layer is given to emit strings at.
func Receive(raw string) {
	DefaultDispatcher().Receive(raw)
}
