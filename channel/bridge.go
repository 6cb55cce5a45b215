package channel

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wippyai/runtime-bridge/errors"
)

// Invoker forwards host commands to the embedded runtime. The runtime
// handle satisfies it; tests substitute fakes.
type Invoker interface {
	Invoke(ctx context.Context, target, method, payload string) error
}

// Bridge is the duplex, asynchronous message channel between host code and
// the embedded runtime.
//
// Each direction is FIFO; nothing orders the two directions against each
// other, nor against lifecycle transitions issued around the same time.
// Runtime-originated messages are decoded and fanned out exactly once to
// every subscription registered at delivery time; with no subscribers the
// message is lost, not buffered.
type Bridge struct {
	invoker Invoker
	log     *zap.Logger
	metrics *Metrics

	mu     sync.RWMutex
	subs   map[string]*Subscription
	closed bool

	// Inbound raw messages queue here until the sequencer drains them.
	// Receive may run on runtime-owned goroutines and must never block.
	inMu  sync.Mutex
	inbox []string

	wake chan struct{}
	done chan struct{}
	once sync.Once
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithLogger sets the bridge's logger. Defaults to a no-op logger.
func WithLogger(log *zap.Logger) Option {
	return func(b *Bridge) { b.log = log }
}

// WithMetrics attaches prometheus counters to the bridge.
func WithMetrics(m *Metrics) Option {
	return func(b *Bridge) { b.metrics = m }
}

// NewBridge creates a bridge that sends host commands through invoker. The
// bridge starts its sequencing goroutine immediately; callers must Close it.
func NewBridge(invoker Invoker, opts ...Option) *Bridge {
	b := &Bridge{
		invoker: invoker,
		log:     zap.NewNop(),
		subs:    make(map[string]*Subscription),
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}
	go b.loop()
	return b
}

// SendToRuntime forwards a command triple to the runtime. Fire-and-forget:
// there is no response and no delivery acknowledgment. A failing transport
// is reported as a transport error and leaves the bridge usable.
func (b *Bridge) SendToRuntime(ctx context.Context, target, method, payload string) error {
	if b.invoker == nil {
		return errors.NotInitialized(errors.PhaseTransport, "invoker")
	}
	if err := b.invoker.Invoke(ctx, target, method, payload); err != nil {
		b.metrics.incSendFailed()
		return errors.Transport("invoke", err)
	}
	b.metrics.incSent()
	return nil
}

// Receive is the runtime-facing entry point, invoked whenever the runtime
// emits a string. It may be called from runtime-owned goroutines at
// arbitrary times; it enqueues and returns without blocking. Decoding and
// fan-out happen later on the bridge's sequencing goroutine. Messages
// arriving after Close are dropped: the sequencer is gone and a runtime
// that keeps emitting must not grow the inbox forever.
func (b *Bridge) Receive(raw string) {
	select {
	case <-b.done:
		return
	default:
	}

	b.inMu.Lock()
	b.inbox = append(b.inbox, raw)
	b.inMu.Unlock()

	select {
	case b.wake <- struct{}{}:
	default:
	}
}

// Subscribe registers a new subscription. It observes only events decoded
// after registration; the caller must Cancel it when done. Subscribing on
// a closed bridge yields an already-cancelled subscription whose Events
// channel is closed.
func (b *Bridge) Subscribe() *Subscription {
	s := newSubscription(uuid.NewString(), b.removeSubscription)

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		s.Cancel()
		return s
	}
	b.subs[s.id] = s
	b.mu.Unlock()
	return s
}

// SubscriptionCount returns the number of active subscriptions.
func (b *Bridge) SubscriptionCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Close stops the sequencer and cancels every remaining subscription. Safe
// to call while a broadcast is mid-flight; cancelled subscriptions receive
// nothing further.
func (b *Bridge) Close() {
	b.once.Do(func() {
		b.mu.Lock()
		b.closed = true
		remaining := make([]*Subscription, 0, len(b.subs))
		for _, s := range b.subs {
			remaining = append(remaining, s)
		}
		b.subs = make(map[string]*Subscription)
		b.mu.Unlock()

		close(b.done)
		for _, s := range remaining {
			s.Cancel()
		}
	})
}

func (b *Bridge) removeSubscription(id string) {
	b.mu.Lock()
	delete(b.subs, id)
	b.mu.Unlock()
}

// loop is the host's designated event-processing context: all decoding and
// fan-out is marshaled onto this one goroutine, preserving arrival order.
func (b *Bridge) loop() {
	for {
		select {
		case <-b.done:
			return
		case <-b.wake:
		}
		for {
			b.inMu.Lock()
			if len(b.inbox) == 0 {
				b.inMu.Unlock()
				break
			}
			raw := b.inbox[0]
			b.inbox = b.inbox[1:]
			b.inMu.Unlock()

			b.dispatch(raw)
		}
	}
}

func (b *Bridge) dispatch(raw string) {
	ev, ok := decodeEvent(raw)
	if !ok {
		b.metrics.incDecodeDropped()
		b.log.Debug("dropping undecodable runtime message",
			zap.Int("bytes", len(raw)))
		return
	}

	b.mu.RLock()
	targets := make([]*Subscription, 0, len(b.subs))
	for _, s := range b.subs {
		targets = append(targets, s)
	}
	b.mu.RUnlock()

	b.metrics.addDelivered(len(targets))
	for _, s := range targets {
		s.push(ev)
	}
}
