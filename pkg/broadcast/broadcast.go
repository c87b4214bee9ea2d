package broadcast

import (
	"context"
	"sync"
)

const defaultBufferSize = 16

// Hub fans out events to any number of subscribers.
// Publish never blocks: events are dropped for subscribers
// whose buffer is full, and dropped entirely when nobody listens.
type Hub[T any] struct {
	mu          sync.RWMutex
	subscribers map[chan T]struct{}
	bufferSize  int
	closed      bool
}

func NewHub[T any]() *Hub[T] {
	return NewHubWithBuffer[T](defaultBufferSize)
}

func NewHubWithBuffer[T any](bufferSize int) *Hub[T] {
	if bufferSize < 1 {
		bufferSize = defaultBufferSize
	}
	return &Hub[T]{
		subscribers: make(map[chan T]struct{}),
		bufferSize:  bufferSize,
	}
}

// Subscribe registers a new subscriber. The returned channel receives
// events published after this call, never before. The subscription is
// removed and the channel closed when ctx is cancelled.
func (h *Hub[T]) Subscribe(ctx context.Context) <-chan T {
	ch := make(chan T, h.bufferSize)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(ch)
		return ch
	}
	h.subscribers[ch] = struct{}{}
	h.mu.Unlock()

	go func() {
		<-ctx.Done()
		h.unsubscribe(ch)
	}()

	return ch
}

// Publish delivers ev to every current subscriber. Slow subscribers
// with a full buffer miss the event instead of blocking the publisher.
func (h *Hub[T]) Publish(ev T) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.closed {
		return
	}

	for ch := range h.subscribers {
		select {
		case ch <- ev:
		default:
			// subscriber quá chậm, bỏ qua event này
		}
	}
}

// SubscriberCount reports the number of active subscribers.
func (h *Hub[T]) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// Close shuts down the hub and closes all subscriber channels.
func (h *Hub[T]) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true

	for ch := range h.subscribers {
		close(ch)
		delete(h.subscribers, ch)
	}
}

func (h *Hub[T]) unsubscribe(ch chan T) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.subscribers[ch]; ok {
		delete(h.subscribers, ch)
		close(ch)
	}
}
