// Package dedupe tracks applications that already have a scoring job pending.
package dedupe

import (
	"container/list"
	"context"
	"sync"
	"sync/atomic"
)

// Pending keeps at most one queued job per application.
type Pending interface {
	// Claim marks id as pending. It returns false when id is already pending,
	// in which case the caller must not enqueue another job.
	Claim(ctx context.Context, id string) bool

	// Release clears id once its job finished or could not be enqueued.
	Release(ctx context.Context, id string)

	Size() int64
}

// pendingSet evicts the oldest claim when full, so a job lost without
// Release cannot block an application forever.
type pendingSet struct {
	mu      sync.Mutex
	claims  map[string]*list.Element
	order   *list.List // oldest claim at the front
	maxSize int        // <= 0 means unbounded
	size    atomic.Int64
}

// NewPending creates an in-memory pending set.
func NewPending(opts ...Option) Pending {
	p := &pendingSet{
		claims:  make(map[string]*list.Element),
		order:   list.New(),
		maxSize: 10000,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *pendingSet) Claim(_ context.Context, id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.claims[id]; ok {
		return false
	}
	if p.maxSize > 0 && len(p.claims) >= p.maxSize {
		if oldest := p.order.Front(); oldest != nil {
			p.remove(oldest)
		}
	}
	p.claims[id] = p.order.PushBack(id)
	p.size.Add(1)
	return true
}

func (p *pendingSet) Release(_ context.Context, id string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if e, ok := p.claims[id]; ok {
		p.remove(e)
	}
}

// remove must be called with p.mu held.
func (p *pendingSet) remove(e *list.Element) {
	id, _ := p.order.Remove(e).(string)
	delete(p.claims, id)
	p.size.Add(-1)
}

func (p *pendingSet) Size() int64 {
	return p.size.Load()
}
