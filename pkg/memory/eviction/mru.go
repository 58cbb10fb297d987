package eviction

import (
	"leapdb/pkg/dberror"
	"leapdb/pkg/logging"
	"leapdb/pkg/metrics"
	"leapdb/pkg/primitives"
)

const mruName = "mru"

// MRUPolicy evicts the most recently used unpinned frame. It suits one-pass
// scans, where the page just read is the one least likely to be needed again.
type MRUPolicy struct {
	list *tagList
}

// NewMRUPolicy creates an MRU policy sized for capacity frames. The capacity
// is a hint; the policy grows if more frames are registered.
func NewMRUPolicy(capacity int) *MRUPolicy {
	return &MRUPolicy{list: newTagList(capacity)}
}

func (p *MRUPolicy) Name() string { return mruName }

// Init registers frame as the most recently used.
func (p *MRUPolicy) Init(frame Frame) error {
	return p.list.pushFront("MRUPolicy", frame)
}

// Hit promotes frame to the most recently used position.
func (p *MRUPolicy) Hit(frame Frame) error {
	slot, err := p.list.slotOf("MRUPolicy", "Hit", frame)
	if err != nil {
		return err
	}
	p.list.moveToFront(slot)
	return nil
}

// Evict scans from the most recently used end and returns the first unpinned frame.
func (p *MRUPolicy) Evict(frames []Frame) (Frame, error) {
	victim := p.list.firstUnpinned(true, candidateSet(frames))
	if victim == nil {
		metrics.CounterEvictionFailures.WithLabelValues(mruName).Inc()
		logging.WithComponent("eviction").Warn("eviction failed", "policy", mruName, "tracked", p.list.len())
		return nil, dberror.ResourceExhausted("MRUPolicy", "Evict", "cannot evict anything - everything pinned")
	}
	metrics.CounterEvictions.WithLabelValues(mruName).Inc()
	return victim, nil
}

// Cleanup unlinks frame's tag. The frame may be registered again with Init.
func (p *MRUPolicy) Cleanup(frame Frame) error {
	slot, err := p.list.slotOf("MRUPolicy", "Cleanup", frame)
	if err != nil {
		return err
	}
	p.list.remove(slot)
	return nil
}

// Len returns the number of tracked frames.
func (p *MRUPolicy) Len() int {
	return p.list.len()
}

// Order returns the tracked frame ids, most recently used first.
func (p *MRUPolicy) Order() []primitives.FrameID {
	return p.list.order()
}
