package eviction

import (
	"math/rand"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leapdb/pkg/dberror"
	"leapdb/pkg/primitives"
)

type testFrame struct {
	id     primitives.FrameID
	pinned bool
}

func (f *testFrame) ID() primitives.FrameID { return f.id }
func (f *testFrame) IsPinned() bool         { return f.pinned }

func newFrames(n int) []*testFrame {
	frames := make([]*testFrame, n)
	for i := range frames {
		frames[i] = &testFrame{id: primitives.FrameID(i)}
	}
	return frames
}

func asFrames(fs []*testFrame) []Frame {
	out := make([]Frame, len(fs))
	for i, f := range fs {
		out[i] = f
	}
	return out
}

func TestMRU_EvictReturnsMostRecentlyTouched(t *testing.T) {
	p := NewMRUPolicy(3)
	f := newFrames(3)
	a, b, c := f[0], f[1], f[2]

	for _, fr := range f {
		require.NoError(t, p.Init(fr))
	}
	assert.Equal(t, []primitives.FrameID{2, 1, 0}, p.Order())

	victim, err := p.Evict(asFrames(f))
	require.NoError(t, err)
	assert.Same(t, c, victim)

	t.Run("hit promotes to evict-first", func(t *testing.T) {
		require.NoError(t, p.Hit(a))
		assert.Equal(t, []primitives.FrameID{0, 2, 1}, p.Order())

		victim, err := p.Evict(asFrames(f))
		require.NoError(t, err)
		assert.Same(t, a, victim)
	})

	t.Run("pinned frames are skipped", func(t *testing.T) {
		a.pinned = true
		defer func() { a.pinned = false }()

		victim, err := p.Evict(asFrames(f))
		require.NoError(t, err)
		assert.Same(t, c, victim)

		c.pinned = true
		defer func() { c.pinned = false }()
		victim, err = p.Evict(asFrames(f))
		require.NoError(t, err)
		assert.Same(t, b, victim)
	})
}

func TestMRU_EverythingPinned(t *testing.T) {
	p := NewMRUPolicy(2)
	f := newFrames(2)
	for _, fr := range f {
		fr.pinned = true
		require.NoError(t, p.Init(fr))
	}

	_, err := p.Evict(asFrames(f))
	require.Error(t, err)
	assert.True(t, dberror.IsCode(err, dberror.CodeResourceExhausted))
	assert.Equal(t, dberror.ErrCategoryTransient, dberror.CategoryOf(err))
}

func TestMRU_EmptyPolicyCannotEvict(t *testing.T) {
	_, err := NewMRUPolicy(0).Evict(nil)
	assert.True(t, dberror.IsCode(err, dberror.CodeResourceExhausted))
}

func TestMRU_CandidateSubset(t *testing.T) {
	p := NewMRUPolicy(3)
	f := newFrames(3)
	for _, fr := range f {
		require.NoError(t, p.Init(fr))
	}

	// frame 2 is the most recent but is not offered
	victim, err := p.Evict([]Frame{f[0], f[1]})
	require.NoError(t, err)
	assert.Same(t, f[1], victim)

	// nil offers every tracked frame
	victim, err = p.Evict(nil)
	require.NoError(t, err)
	assert.Same(t, f[2], victim)
}

func TestMRU_CleanupLeavesTagSelfReferential(t *testing.T) {
	p := NewMRUPolicy(3)
	f := newFrames(3)
	for _, fr := range f {
		require.NoError(t, p.Init(fr))
	}

	slot := p.list.index[f[1].ID()]
	require.NoError(t, p.Cleanup(f[1]))

	assert.Equal(t, slot, p.list.tags[slot].prev)
	assert.Equal(t, slot, p.list.tags[slot].next)
	assert.Equal(t, []primitives.FrameID{2, 0}, p.Order())
	assert.Equal(t, 2, p.Len())

	// slot is recycled and the frame can be registered again
	require.NoError(t, p.Init(f[1]))
	assert.Equal(t, slot, p.list.index[f[1].ID()])
	assert.Equal(t, []primitives.FrameID{1, 2, 0}, p.Order())
}

func TestMRU_ContractViolations(t *testing.T) {
	p := NewMRUPolicy(1)
	f := newFrames(2)
	require.NoError(t, p.Init(f[0]))

	tests := []struct {
		name string
		call func() error
	}{
		{"init twice", func() error { return p.Init(f[0]) }},
		{"init nil", func() error { return p.Init(nil) }},
		{"hit untracked", func() error { return p.Hit(f[1]) }},
		{"cleanup untracked", func() error { return p.Cleanup(f[1]) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			require.Error(t, err)
			assert.True(t, dberror.IsCode(err, dberror.CodePreconditionViolation))
		})
	}
}

// TestMRU_MatchesReferenceModel replays random init/hit/cleanup sequences against
// a plain slice ordered by recency and checks every eviction choice.
func TestMRU_MatchesReferenceModel(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	const numFrames = 16

	for round := 0; round < 50; round++ {
		p := NewMRUPolicy(numFrames)
		frames := newFrames(numFrames)
		model := []primitives.FrameID{} // most recent first

		for step := 0; step < 200; step++ {
			fr := frames[rng.Intn(numFrames)]
			tracked := slices.Contains(model, fr.id)

			switch op := rng.Intn(4); {
			case !tracked:
				require.NoError(t, p.Init(fr))
				model = append([]primitives.FrameID{fr.id}, model...)
			case op == 0:
				require.NoError(t, p.Cleanup(fr))
				model = slices.DeleteFunc(model, func(id primitives.FrameID) bool { return id == fr.id })
			case op == 1:
				fr.pinned = !fr.pinned
			default:
				require.NoError(t, p.Hit(fr))
				model = slices.DeleteFunc(model, func(id primitives.FrameID) bool { return id == fr.id })
				model = append([]primitives.FrameID{fr.id}, model...)
			}

			require.Equal(t, model, p.Order())

			want := primitives.InvalidFrameID
			for _, id := range model {
				if !frames[id].pinned {
					want = id
					break
				}
			}

			victim, err := p.Evict(nil)
			if want == primitives.InvalidFrameID {
				require.True(t, dberror.IsCode(err, dberror.CodeResourceExhausted))
				continue
			}
			require.NoError(t, err)
			require.Equal(t, want, victim.ID())
			require.False(t, victim.IsPinned())
		}
	}
}

func TestNew(t *testing.T) {
	p, err := New("mru", 4)
	require.NoError(t, err)
	assert.Equal(t, "mru", p.Name())

	p, err = New("lru", 4)
	require.NoError(t, err)
	assert.Equal(t, "lru", p.Name())

	_, err = New("clock", 4)
	assert.True(t, dberror.IsCode(err, dberror.CodePreconditionViolation))
}
