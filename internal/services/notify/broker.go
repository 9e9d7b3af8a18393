package notify

import (
	"sync"
)

// Broker fans change signals out to topic subscribers. Services publish a
// topic whenever the data behind it changes; streams listening on that topic
// reload and push a fresh snapshot.
type Broker struct {
	mu     sync.Mutex
	topics map[string]map[int]chan struct{}
	subs   map[int]*subscription
	nextID int
	closed bool
}

type subscription struct {
	ch     chan struct{}
	topics []string
}

// NewBroker creates an empty broker.
func NewBroker() *Broker {
	return &Broker{
		topics: make(map[string]map[int]chan struct{}),
		subs:   make(map[int]*subscription),
	}
}

// Publish signals every subscriber of the topic. Signals coalesce: a
// subscriber that already has a pending signal is not queued again.
func (b *Broker) Publish(topic string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	for _, ch := range b.topics[topic] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Subscribe registers a listener on one or more topics. The returned channel
// carries coalesced change signals from any of them; cancel removes the
// listener and closes it. Cancel is safe to call more than once.
func (b *Broker) Subscribe(topics ...string) (signals <-chan struct{}, cancel func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan struct{}, 1)
	if b.closed {
		close(ch)
		return ch, func() {}
	}

	id := b.nextID
	b.nextID++
	b.subs[id] = &subscription{ch: ch, topics: topics}
	for _, topic := range topics {
		if b.topics[topic] == nil {
			b.topics[topic] = make(map[int]chan struct{})
		}
		b.topics[topic][id] = ch
	}

	cancel = func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.remove(id)
	}
	return ch, cancel
}

// remove drops subscription id and closes its channel. Caller holds the lock.
func (b *Broker) remove(id int) {
	sub, ok := b.subs[id]
	if !ok {
		return
	}
	delete(b.subs, id)
	for _, topic := range sub.topics {
		if listeners, ok := b.topics[topic]; ok {
			delete(listeners, id)
			if len(listeners) == 0 {
				delete(b.topics, topic)
			}
		}
	}
	close(sub.ch)
}

// Close drops all subscribers and closes their signal channels. Publish
// becomes a no-op afterwards.
func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id := range b.subs {
		b.remove(id)
	}
}
