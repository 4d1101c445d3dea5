// Package rt hosts the runtime the capture tasks run on: a named-topic
// publish/subscribe bus and a task executor. The supervisor only talks to
// tasks through these two surfaces.
package rt

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// Handler receives messages published to a subscribed topic. Handlers run
// on a per-subscription delivery goroutine and must not block for long;
// while a handler is busy, further messages queue in the subscription
// buffer and overflow is dropped.
type Handler func(msg any)

type subscriber struct {
	id      uuid.UUID
	ch      chan any
	dropped atomic.Uint64
}

// Bus is a non-blocking publish/subscribe bus with named topics. Publish
// never blocks: if a subscriber's buffer is full the message is dropped
// for that subscriber and counted.
type Bus struct {
	mu     sync.RWMutex
	topics map[string][]*subscriber
	buffer int
	closed bool
}

// NewBus creates a bus with the given per-subscription buffer size.
func NewBus(buffer int) *Bus {
	if buffer <= 0 {
		buffer = 64
	}
	return &Bus{
		topics: make(map[string][]*subscriber),
		buffer: buffer,
	}
}

// Subscribe registers fn on a topic and returns a cancel function. Each
// subscription gets its own delivery goroutine, so one slow handler never
// stalls another. Handler panics are recovered to keep delivery alive.
func (b *Bus) Subscribe(topic string, fn Handler) (cancel func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return func() {}
	}

	sub := &subscriber{
		id: uuid.New(),
		ch: make(chan any, b.buffer),
	}
	b.topics[topic] = append(b.topics[topic], sub)

	go func() {
		for msg := range sub.ch {
			deliver(fn, msg)
		}
	}()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()

		subs := b.topics[topic]
		for i, s := range subs {
			if s.id == sub.id {
				b.topics[topic] = append(subs[:i], subs[i+1:]...)
				close(s.ch)
				return
			}
		}
	}
}

func deliver(fn Handler, msg any) {
	defer func() {
		if r := recover(); r != nil {
			// Keep the delivery goroutine alive across handler panics.
		}
	}()
	fn(msg)
}

// Publish sends msg to every current subscriber of the topic.
func (b *Bus) Publish(topic string, msg any) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return
	}
	for _, sub := range b.topics[topic] {
		select {
		case sub.ch <- msg:
		default:
			sub.dropped.Add(1)
		}
	}
}

// Dropped returns the number of messages dropped on a topic across all of
// its subscribers since they subscribed.
func (b *Bus) Dropped(topic string) uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var total uint64
	for _, sub := range b.topics[topic] {
		total += sub.dropped.Load()
	}
	return total
}

// Close tears down every subscription. Publish and Subscribe become
// no-ops afterwards.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for topic, subs := range b.topics {
		for _, sub := range subs {
			close(sub.ch)
		}
		delete(b.topics, topic)
	}
}
