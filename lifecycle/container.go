package lifecycle

import "sync"

// ManualContainer is a Container driven explicitly by the host. Useful for
// hosts without a native lifecycle source, and for tests.
type ManualContainer struct {
	mu        sync.Mutex
	observers map[int]func(HostEvent)
	nextID    int
}

// NewManualContainer creates an empty manual container.
func NewManualContainer() *ManualContainer {
	return &ManualContainer{
		observers: make(map[int]func(HostEvent)),
	}
}

// Observe registers fn for future events and returns its cancel func.
func (c *ManualContainer) Observe(fn func(HostEvent)) (cancel func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextID
	c.nextID++
	c.observers[id] = fn

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.observers, id)
	}
}

// Emit delivers ev to every registered observer, synchronously on the
// caller's goroutine. Delivery order between observers is not guaranteed.
func (c *ManualContainer) Emit(ev HostEvent) {
	c.mu.Lock()
	fns := make([]func(HostEvent), 0, len(c.observers))
	for _, fn := range c.observers {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

// ObserverCount returns the number of registered observers.
func (c *ManualContainer) ObserverCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.observers)
}
