package eviction

import (
	"leapdb/pkg/dberror"
	"leapdb/pkg/primitives"
)

const (
	headSlot = 0
	tailSlot = 1
)

// tag is one node of the recency list. prev and next are slot indices into
// tagList.tags, so the list holds no pointers between nodes.
type tag struct {
	prev  int
	next  int
	frame Frame
}

// tagList is a doubly-linked list stored in a slice. Slots 0 and 1 are the
// head and tail sentinels; real tags live between them, most recent first.
// Freed slots are recycled through a free list.
type tagList struct {
	tags  []tag
	free  []int
	index map[primitives.FrameID]int
}

func newTagList(capacity int) *tagList {
	if capacity < 0 {
		capacity = 0
	}
	l := &tagList{
		tags:  make([]tag, 2, capacity+2),
		index: make(map[primitives.FrameID]int, capacity),
	}
	l.tags[headSlot] = tag{prev: -1, next: tailSlot}
	l.tags[tailSlot] = tag{prev: headSlot, next: -1}
	return l
}

func (l *tagList) len() int {
	return len(l.index)
}

func (l *tagList) slotOf(component, op string, frame Frame) (int, error) {
	if frame == nil {
		return 0, dberror.Precondition(component, op, "nil frame")
	}
	slot, ok := l.index[frame.ID()]
	if !ok {
		return 0, dberror.Precondition(component, op, "frame %d is not tracked", frame.ID())
	}
	return slot, nil
}

// pushFront allocates a tag for frame and links it right after the head.
func (l *tagList) pushFront(component string, frame Frame) error {
	if frame == nil {
		return dberror.Precondition(component, "Init", "nil frame")
	}
	if _, ok := l.index[frame.ID()]; ok {
		return dberror.Precondition(component, "Init", "frame %d is already tracked", frame.ID())
	}

	var slot int
	if n := len(l.free); n > 0 {
		slot = l.free[n-1]
		l.free = l.free[:n-1]
		l.tags[slot] = tag{frame: frame}
	} else {
		slot = len(l.tags)
		l.tags = append(l.tags, tag{frame: frame})
	}

	l.linkAfterHead(slot)
	l.index[frame.ID()] = slot
	return nil
}

func (l *tagList) linkAfterHead(slot int) {
	first := l.tags[headSlot].next
	l.tags[slot].prev = headSlot
	l.tags[slot].next = first
	l.tags[first].prev = slot
	l.tags[headSlot].next = slot
}

// detach removes slot from the chain and leaves it pointing at itself.
func (l *tagList) detach(slot int) {
	t := &l.tags[slot]
	l.tags[t.prev].next = t.next
	l.tags[t.next].prev = t.prev
	t.prev = slot
	t.next = slot
}

func (l *tagList) moveToFront(slot int) {
	if l.tags[headSlot].next == slot {
		return
	}
	l.detach(slot)
	l.linkAfterHead(slot)
}

// remove unlinks and recycles the tag of a tracked frame.
func (l *tagList) remove(slot int) {
	l.detach(slot)
	delete(l.index, l.tags[slot].frame.ID())
	l.tags[slot].frame = nil
	l.free = append(l.free, slot)
}

// firstUnpinned walks from the head (fromHead) or from the tail and returns
// the first frame that is a candidate and not pinned.
func (l *tagList) firstUnpinned(fromHead bool, candidates map[primitives.FrameID]struct{}) Frame {
	slot, end := l.tags[headSlot].next, tailSlot
	if !fromHead {
		slot, end = l.tags[tailSlot].prev, headSlot
	}

	for slot != end {
		t := l.tags[slot]
		if candidates == nil || hasFrame(candidates, t.frame) {
			if !t.frame.IsPinned() {
				return t.frame
			}
		}
		if fromHead {
			slot = t.next
		} else {
			slot = t.prev
		}
	}
	return nil
}

// order returns tracked frame ids from most to least recently used.
func (l *tagList) order() []primitives.FrameID {
	ids := make([]primitives.FrameID, 0, l.len())
	for slot := l.tags[headSlot].next; slot != tailSlot; slot = l.tags[slot].next {
		ids = append(ids, l.tags[slot].frame.ID())
	}
	return ids
}

func candidateSet(frames []Frame) map[primitives.FrameID]struct{} {
	if frames == nil {
		return nil
	}
	set := make(map[primitives.FrameID]struct{}, len(frames))
	for _, f := range frames {
		if f != nil {
			set[f.ID()] = struct{}{}
		}
	}
	return set
}

func hasFrame(set map[primitives.FrameID]struct{}, f Frame) bool {
	_, ok := set[f.ID()]
	return ok
}
