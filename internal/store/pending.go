package store

import (
	"slices"
	"sync"
)

// PendingSet tracks product ids with in-flight AI work as a reference-counted multiset.
// Acquire and Release commute, so concurrent operations may finish in any order and the
// set always holds exactly the ids that still have work outstanding.
type PendingSet struct {
	mu     sync.Mutex
	counts map[string]int
}

func NewPendingSet() *PendingSet {
	return &PendingSet{counts: make(map[string]int)}
}

// Acquire marks every id as pending once more.
func (p *PendingSet) Acquire(ids ...string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, id := range ids {
		p.counts[id]++
	}
}

// Release undoes one Acquire per id. Releasing an id that is not pending does nothing.
func (p *PendingSet) Release(ids ...string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, id := range ids {
		switch n := p.counts[id]; {
		case n > 1:
			p.counts[id] = n - 1
		case n == 1:
			delete(p.counts, id)
		}
	}
}

// Contains reports whether id has outstanding work.
func (p *PendingSet) Contains(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.counts[id] > 0
}

// Len is the number of distinct pending ids.
func (p *PendingSet) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.counts)
}

// IDs returns the pending ids in sorted order.
func (p *PendingSet) IDs() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	ids := make([]string, 0, len(p.counts))
	for id := range p.counts {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
