// Package dedupe suppresses repeated notifications.
package dedupe

import (
	"container/list"
	"context"
	"sync"
)

const defaultMaxSize = 10000

// Deduper records keys of work already done.
type Deduper interface {
	// SeenAndRecord atomically checks whether key was seen and records it if
	// not. It returns true when key was already recorded.
	SeenAndRecord(ctx context.Context, key string) bool

	// Unrecord forgets key so it can be retried, e.g. after a failed send.
	Unrecord(ctx context.Context, key string)

	Size() int64
}

// Key builds the dedupe key of a notice for recipient about subject.
func Key(recipient, subject string) string {
	return recipient + "|" + subject
}

// lruDeduper keeps the most recently seen keys, evicting the least recently
// seen once maxSize is reached.
type lruDeduper struct {
	mu      sync.Mutex
	maxSize int
	order   *list.List               // front is most recent
	seen    map[string]*list.Element // key -> element in order
}

// NewInMemoryDeduper creates an in-memory LRU deduper.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &lruDeduper{maxSize: defaultMaxSize}
	for _, opt := range opts {
		opt(d)
	}
	d.order = list.New()
	d.seen = make(map[string]*list.Element)
	return d
}

func (d *lruDeduper) SeenAndRecord(_ context.Context, key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if el, ok := d.seen[key]; ok {
		d.order.MoveToFront(el)
		return true
	}

	if d.maxSize > 0 && d.order.Len() >= d.maxSize {
		if oldest := d.order.Back(); oldest != nil {
			d.order.Remove(oldest)
			delete(d.seen, oldest.Value.(string))
		}
	}
	d.seen[key] = d.order.PushFront(key)
	return false
}

func (d *lruDeduper) Unrecord(_ context.Context, key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if el, ok := d.seen[key]; ok {
		d.order.Remove(el)
		delete(d.seen, key)
	}
}

func (d *lruDeduper) Size() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return int64(d.order.Len())
}
