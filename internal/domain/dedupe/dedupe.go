// Package dedupe remembers Idempotency-Key values so admin creates are
// applied at most once.
package dedupe

import (
	"container/list"
	"context"
	"strings"
	"sync"
)

// Deduper tracks idempotency keys and the id each one produced.
type Deduper interface {
	// Claim records key. If key was claimed before it returns the stored
	// result (empty while the first request is still running) and true.
	Claim(ctx context.Context, key string) (string, bool)

	// Complete stores the result of a claimed key.
	Complete(ctx context.Context, key, result string)

	// Release forgets key so a failed request can be retried.
	Release(ctx context.Context, key string)

	Size() int
}

type entry struct {
	key    string
	result string
}

// inMemoryDeduper evicts the oldest claim once maxSize keys are held.
// maxSize <= 0 disables eviction.
type inMemoryDeduper struct {
	mu      sync.Mutex
	maxSize int
	order   *list.List
	keys    map[string]*list.Element
}

// NewInMemoryDeduper creates a new in-memory deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{maxSize: 10_000}
	for _, opt := range opts {
		opt(d)
	}
	d.order = list.New()
	d.keys = make(map[string]*list.Element)
	return d
}

func (d *inMemoryDeduper) Claim(_ context.Context, key string) (string, bool) {
	key = strings.TrimSpace(key)
	d.mu.Lock()
	defer d.mu.Unlock()

	if el, ok := d.keys[key]; ok {
		return el.Value.(*entry).result, true
	}
	if d.maxSize > 0 {
		for d.order.Len() >= d.maxSize {
			oldest := d.order.Front()
			d.order.Remove(oldest)
			delete(d.keys, oldest.Value.(*entry).key)
		}
	}
	d.keys[key] = d.order.PushBack(&entry{key: key})
	return "", false
}

func (d *inMemoryDeduper) Complete(_ context.Context, key, result string) {
	key = strings.TrimSpace(key)
	d.mu.Lock()
	defer d.mu.Unlock()

	if el, ok := d.keys[key]; ok {
		el.Value.(*entry).result = result
	}
}

func (d *inMemoryDeduper) Release(_ context.Context, key string) {
	key = strings.TrimSpace(key)
	d.mu.Lock()
	defer d.mu.Unlock()

	if el, ok := d.keys[key]; ok {
		d.order.Remove(el)
		delete(d.keys, key)
	}
}

// Size returns the number of remembered keys.
func (d *inMemoryDeduper) Size() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.keys)
}
