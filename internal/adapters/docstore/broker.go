package docstore

import (
	"context"
	"sync"

	"github.com/okian/fest/pkg/metrics"
)

// ChangeKind is the kind of write that produced a Change.
type ChangeKind string

// Change kinds.
const (
	ChangeCreated ChangeKind = "created"
	ChangeUpdated ChangeKind = "updated"
	ChangeDeleted ChangeKind = "deleted"
)

// Change notifies a subscriber that a collection was written.
type Change struct {
	Collection string
	ID         string
	Kind       ChangeKind
}

type broker struct {
	mu     sync.RWMutex
	subs   map[string]map[chan Change]struct{}
	closed bool
	count  int
}

func newBroker() *broker {
	return &broker{subs: make(map[string]map[chan Change]struct{})}
}

func (b *broker) subscribe(ctx context.Context, collection string) (<-chan Change, error) {
	ch := make(chan Change, 1)

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil, ErrClosed
	}
	if b.subs[collection] == nil {
		b.subs[collection] = make(map[chan Change]struct{})
	}
	b.subs[collection][ch] = struct{}{}
	b.count++
	metrics.UpdateStoreSubscribers(b.count)
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.unsubscribe(collection, ch)
	}()
	return ch, nil
}

func (b *broker) unsubscribe(collection string, ch chan Change) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[collection][ch]; !ok {
		return
	}
	delete(b.subs[collection], ch)
	b.count--
	metrics.UpdateStoreSubscribers(b.count)
	close(ch)
}

// publish never blocks. A subscriber that already has a pending Change keeps
// it and the new one is dropped.
func (b *broker) publish(c Change) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subs[c.Collection] {
		select {
		case ch <- c:
		default:
		}
	}
}

func (b *broker) close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for _, set := range b.subs {
		for ch := range set {
			close(ch)
		}
	}
	b.subs = map[string]map[chan Change]struct{}{}
	b.count = 0
	metrics.UpdateStoreSubscribers(0)
}
