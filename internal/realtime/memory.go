package realtime

import (
	"context"
	"sync"
)

const subscriptionBuffer = 64

// MemoryHub fans events out in-process. Slow subscribers drop events rather
// than block the publisher.
//
// The server always runs on RedisHub; MemoryHub is the in-process stand-in
// used by tests of the store, dashboard and HTTP layers.
type MemoryHub struct {
	mu     sync.Mutex
	subs   map[string]map[*memorySubscription]struct{}
	closed bool
}

func NewMemoryHub() *MemoryHub {
	return &MemoryHub{subs: make(map[string]map[*memorySubscription]struct{})}
}

func (h *MemoryHub) Publish(_ context.Context, ev Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return ErrClosed
	}
	for sub := range h.subs[ev.Owner] {
		select {
		case sub.ch <- ev:
		default:
		}
	}
	return nil
}

func (h *MemoryHub) Subscribe(ctx context.Context, owner string) (Subscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, ErrClosed
	}

	sub := &memorySubscription{hub: h, owner: owner, ch: make(chan Event, subscriptionBuffer)}
	if h.subs[owner] == nil {
		h.subs[owner] = make(map[*memorySubscription]struct{})
	}
	h.subs[owner][sub] = struct{}{}
	return sub, nil
}

// Subscribers returns the number of live subscriptions for owner. Tests use
// it to check that a closed dashboard released its subscription.
func (h *MemoryHub) Subscribers(owner string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[owner])
}

// Close ends every live subscription.
func (h *MemoryHub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}
	h.closed = true
	for owner, subs := range h.subs {
		for sub := range subs {
			sub.once.Do(func() { close(sub.ch) })
		}
		delete(h.subs, owner)
	}
	return nil
}

type memorySubscription struct {
	hub   *MemoryHub
	owner string
	ch    chan Event
	once  sync.Once
}

func (s *memorySubscription) Events() <-chan Event { return s.ch }

func (s *memorySubscription) Close() error {
	s.hub.mu.Lock()
	defer s.hub.mu.Unlock()

	if subs, ok := s.hub.subs[s.owner]; ok {
		delete(subs, s)
		if len(subs) == 0 {
			delete(s.hub.subs, s.owner)
		}
	}
	// Closed under the hub lock so Publish can never send on a closed channel.
	s.once.Do(func() { close(s.ch) })
	return nil
}
