// Package eviction implements buffer-frame replacement policies.
//
// A policy only tracks recency metadata about frames; the buffer manager owns
// the frames themselves. Policies are not safe for concurrent use and must be
// serialized by their owner.
package eviction

import (
	"leapdb/pkg/dberror"
	"leapdb/pkg/primitives"
)

// Frame is the view of a buffer frame a policy needs.
type Frame interface {
	ID() primitives.FrameID
	IsPinned() bool
}

// EvictionPolicy decides which frame to give up when the buffer is full.
type EvictionPolicy interface {
	// Init starts tracking a frame that was just filled.
	Init(frame Frame) error

	// Hit records an access to a tracked frame.
	Hit(frame Frame) error

	// Evict picks a victim among frames. A nil slice means every tracked frame
	// is a candidate. It fails with RESOURCE_EXHAUSTED if every candidate is pinned.
	Evict(frames []Frame) (Frame, error)

	// Cleanup stops tracking a frame, usually right after it was evicted.
	Cleanup(frame Frame) error

	// Name is the short policy name used in logs and metrics.
	Name() string
}

// New returns the policy registered under name ("mru" or "lru").
func New(name string, capacity int) (EvictionPolicy, error) {
	switch name {
	case "mru":
		return NewMRUPolicy(capacity), nil
	case "lru":
		return NewLRUPolicy(capacity), nil
	default:
		return nil, dberror.Precondition("eviction", "New", "unknown eviction policy %q", name)
	}
}
