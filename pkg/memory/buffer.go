package memory

import (
	"sync"

	"github.com/pkg/errors"

	"leapdb/pkg/dberror"
	"leapdb/pkg/logging"
	"leapdb/pkg/memory/eviction"
	"leapdb/pkg/metrics"
	"leapdb/pkg/primitives"
)

// PageLoader reads the contents of a page into memory. It is called on every
// buffer miss.
type PageLoader func(page primitives.PageNumber) ([]byte, error)

// Frame is one slot of the buffer pool. A frame holding a page is resident; it
// is pinned while its pin count is above zero.
type Frame struct {
	id       primitives.FrameID
	page     primitives.PageNumber
	data     []byte
	pinCount int
	resident bool
}

func (f *Frame) ID() primitives.FrameID { return f.id }

func (f *Frame) IsPinned() bool { return f.pinCount > 0 }

func (f *Frame) PageNumber() primitives.PageNumber { return f.page }

func (f *Frame) Data() []byte { return f.data }

func (f *Frame) PinCount() int { return f.pinCount }

// BufferStats counts buffer pool activity since creation.
type BufferStats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	IOs       int64
}

// BufferManager owns a fixed array of frames and decides which page to drop
// through an eviction policy. All methods are safe for concurrent use.
type BufferManager struct {
	mu        sync.Mutex
	frames    []*Frame
	free      []*Frame
	pageTable map[primitives.PageNumber]*Frame
	policy    eviction.EvictionPolicy
	loader    PageLoader
	stats     BufferStats
}

// NewBufferManager creates a pool of numFrames empty frames.
func NewBufferManager(numFrames int, policy eviction.EvictionPolicy, loader PageLoader) (*BufferManager, error) {
	if numFrames < 1 {
		return nil, dberror.Precondition("BufferManager", "New", "need at least one frame, got %d", numFrames)
	}
	if policy == nil || loader == nil {
		return nil, dberror.Precondition("BufferManager", "New", "policy and loader are required")
	}

	bm := &BufferManager{
		frames:    make([]*Frame, numFrames),
		free:      make([]*Frame, 0, numFrames),
		pageTable: make(map[primitives.PageNumber]*Frame, numFrames),
		policy:    policy,
		loader:    loader,
	}
	for i := range bm.frames {
		bm.frames[i] = &Frame{id: primitives.FrameID(i)}
	}
	// hand out frame 0 first
	for i := numFrames - 1; i >= 0; i-- {
		bm.free = append(bm.free, bm.frames[i])
	}

	logging.WithComponent("buffer").Debug("buffer manager created", "frames", numFrames, "policy", policy.Name())
	return bm, nil
}

// FetchPage returns the frame holding page, pinned once more. The caller must
// Unpin it when done.
func (bm *BufferManager) FetchPage(page primitives.PageNumber) (*Frame, error) {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	if frame, ok := bm.pageTable[page]; ok {
		if err := bm.policy.Hit(frame); err != nil {
			return nil, errors.Wrapf(err, "hit page %d", page)
		}
		frame.pinCount++
		bm.stats.Hits++
		metrics.CounterBufferHits.Inc()
		return frame, nil
	}

	bm.stats.Misses++
	metrics.CounterBufferMisses.Inc()

	frame, err := bm.claimFrame()
	if err != nil {
		return nil, errors.Wrapf(err, "fetch page %d", page)
	}

	data, err := bm.loader(page)
	if err != nil {
		bm.free = append(bm.free, frame)
		return nil, errors.Wrapf(err, "load page %d", page)
	}
	bm.stats.IOs++

	frame.page = page
	frame.data = data
	frame.pinCount = 1
	frame.resident = true
	if err := bm.policy.Init(frame); err != nil {
		frame.data = nil
		frame.pinCount = 0
		frame.resident = false
		bm.free = append(bm.free, frame)
		return nil, errors.Wrapf(err, "register frame %d", frame.id)
	}
	bm.pageTable[page] = frame
	return frame, nil
}

// claimFrame returns a free frame, evicting a resident page when none is left.
func (bm *BufferManager) claimFrame() (*Frame, error) {
	if n := len(bm.free); n > 0 {
		frame := bm.free[n-1]
		bm.free = bm.free[:n-1]
		return frame, nil
	}

	victim, err := bm.policy.Evict(bm.residentFrames())
	if err != nil {
		return nil, err
	}
	frame, ok := victim.(*Frame)
	if !ok {
		return nil, dberror.New(dberror.ErrCategorySystem, dberror.CodeInternal, "policy returned a foreign frame")
	}
	if err := bm.policy.Cleanup(frame); err != nil {
		return nil, err
	}

	logging.WithFrame(uint32(frame.id)).Debug("evicted page", "page", frame.page, "policy", bm.policy.Name())
	delete(bm.pageTable, frame.page)
	frame.resident = false
	frame.data = nil
	bm.stats.Evictions++
	return frame, nil
}

func (bm *BufferManager) residentFrames() []eviction.Frame {
	out := make([]eviction.Frame, 0, len(bm.pageTable))
	for _, f := range bm.frames {
		if f.resident {
			out = append(out, f)
		}
	}
	return out
}

// Unpin releases one pin on frame.
func (bm *BufferManager) Unpin(frame *Frame) error {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	if frame == nil || !frame.resident {
		return dberror.Precondition("BufferManager", "Unpin", "frame is not resident")
	}
	if frame.pinCount == 0 {
		return dberror.Precondition("BufferManager", "Unpin", "frame %d is not pinned", frame.id)
	}
	frame.pinCount--
	return nil
}

// Resident reports whether page currently occupies a frame.
func (bm *BufferManager) Resident(page primitives.PageNumber) bool {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	_, ok := bm.pageTable[page]
	return ok
}

func (bm *BufferManager) NumFrames() int {
	return len(bm.frames)
}

func (bm *BufferManager) Stats() BufferStats {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	return bm.stats
}
