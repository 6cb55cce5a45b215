package channel

import "sync"

// Subscription is a host-side registration for the event stream. Each
// subscription receives every event decoded after it registered; there is
// no replay of history. The caller owns the lifetime and must Cancel to
// release resources.
type Subscription struct {
	id     string
	remove func(id string)

	mu        sync.Mutex
	queue     []Event
	cancelled bool

	wake chan struct{}
	done chan struct{}
	out  chan Event
	once sync.Once
}

func newSubscription(id string, remove func(string)) *Subscription {
	s := &Subscription{
		id:     id,
		remove: remove,
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
		out:    make(chan Event),
	}
	go s.pump()
	return s
}

// ID returns the subscription's unique identifier.
func (s *Subscription) ID() string { return s.id }

// Events returns the subscription's event stream. The channel is closed
// after Cancel; events queued but not yet read at that point are discarded.
func (s *Subscription) Events() <-chan Event { return s.out }

// Cancel deregisters the subscription. Events broadcast after Cancel takes
// effect are not delivered; a broadcast mid-flight delivers at most the
// events dispatched before cancellation.
func (s *Subscription) Cancel() {
	s.once.Do(func() {
		if s.remove != nil {
			s.remove(s.id)
		}
		s.mu.Lock()
		s.cancelled = true
		s.queue = nil
		s.mu.Unlock()
		close(s.done)
	})
}

// push enqueues ev without blocking the broadcaster. A slow subscriber
// grows its private queue; it never stalls delivery to its peers.
func (s *Subscription) push(ev Event) {
	s.mu.Lock()
	if s.cancelled {
		s.mu.Unlock()
		return
	}
	s.queue = append(s.queue, ev)
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Subscription) pump() {
	for {
		select {
		case <-s.done:
			close(s.out)
			return
		case <-s.wake:
		}
		for {
			s.mu.Lock()
			if len(s.queue) == 0 {
				s.mu.Unlock()
				break
			}
			ev := s.queue[0]
			s.queue = s.queue[1:]
			s.mu.Unlock()

			select {
			case s.out <- ev:
			case <-s.done:
				close(s.out)
				return
			}
		}
	}
}
