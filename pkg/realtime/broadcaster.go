package realtime

import "sync"

// Broadcaster publishes lightweight events to subscribers.
type Broadcaster[T any] struct {
	mu     sync.Mutex
	subs   map[chan T]struct{}
	closed bool
}

// NewBroadcaster creates an empty broadcaster.
func NewBroadcaster[T any]() *Broadcaster[T] {
	return &Broadcaster[T]{
		subs: make(map[chan T]struct{}),
	}
}

// Subscribe registers a new subscriber and returns its event channel.
// After Close the returned channel is already closed.
func (b *Broadcaster[T]) Subscribe() chan T {
	ch := make(chan T, 10)
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return ch
	}
	b.subs[ch] = struct{}{}
	return ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (b *Broadcaster[T]) Unsubscribe(ch chan T) {
	b.mu.Lock()
	if _, ok := b.subs[ch]; ok {
		delete(b.subs, ch)
		close(ch)
	}
	b.mu.Unlock()
}

// Subscribers reports how many channels are currently registered.
func (b *Broadcaster[T]) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Publish delivers an event to all subscribers. A lagging subscriber loses
// its oldest pending event, never the newest.
func (b *Broadcaster[T]) Publish(event T) {
	b.mu.Lock()
	for ch := range b.subs {
		select {
		case ch <- event:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- event
		}
	}
	b.mu.Unlock()
}

// Close closes every subscriber channel and rejects later subscriptions.
func (b *Broadcaster[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for ch := range b.subs {
		delete(b.subs, ch)
		close(ch)
	}
}
