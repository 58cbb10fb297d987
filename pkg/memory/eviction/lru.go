package eviction

import (
	"leapdb/pkg/dberror"
	"leapdb/pkg/logging"
	"leapdb/pkg/metrics"
	"leapdb/pkg/primitives"
)

const lruName = "lru"

// LRUPolicy evicts the least recently used unpinned frame. It shares the
// recency list with MRUPolicy and only differs in the end it scans from.
type LRUPolicy struct {
	list *tagList
}

func NewLRUPolicy(capacity int) *LRUPolicy {
	return &LRUPolicy{list: newTagList(capacity)}
}

func (p *LRUPolicy) Name() string { return lruName }

func (p *LRUPolicy) Init(frame Frame) error {
	return p.list.pushFront("LRUPolicy", frame)
}

func (p *LRUPolicy) Hit(frame Frame) error {
	slot, err := p.list.slotOf("LRUPolicy", "Hit", frame)
	if err != nil {
		return err
	}
	p.list.moveToFront(slot)
	return nil
}

func (p *LRUPolicy) Evict(frames []Frame) (Frame, error) {
	victim := p.list.firstUnpinned(false, candidateSet(frames))
	if victim == nil {
		metrics.CounterEvictionFailures.WithLabelValues(lruName).Inc()
		logging.WithComponent("eviction").Warn("eviction failed", "policy", lruName, "tracked", p.list.len())
		return nil, dberror.ResourceExhausted("LRUPolicy", "Evict", "cannot evict anything - everything pinned")
	}
	metrics.CounterEvictions.WithLabelValues(lruName).Inc()
	return victim, nil
}

func (p *LRUPolicy) Cleanup(frame Frame) error {
	slot, err := p.list.slotOf("LRUPolicy", "Cleanup", frame)
	if err != nil {
		return err
	}
	p.list.remove(slot)
	return nil
}

func (p *LRUPolicy) Len() int {
	return p.list.len()
}

// Order returns the tracked frame ids, most recently used first.
func (p *LRUPolicy) Order() []primitives.FrameID {
	return p.list.order()
}
