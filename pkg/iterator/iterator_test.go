package iterator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leapdb/pkg/dberror"
	"leapdb/pkg/tuple"
	"leapdb/pkg/types"
)

func intTuples(t *testing.T, values ...int64) (*tuple.TupleDescription, []*tuple.Tuple) {
	t.Helper()
	td, err := tuple.NewTupleDesc([]types.Type{types.IntType}, []string{"v"})
	require.NoError(t, err)

	out := make([]*tuple.Tuple, len(values))
	for i, v := range values {
		out[i] = tuple.NewBuilder(td).AddInt(v).MustBuild()
	}
	return td, out
}

func TestBaseIterator_NotOpened(t *testing.T) {
	it := NewBaseIterator("test", func() (*tuple.Tuple, error) { return nil, nil })

	_, err := it.HasNext()
	assert.True(t, dberror.IsCode(err, dberror.CodeIteratorNotOpened))

	_, err = it.Next()
	assert.True(t, dberror.IsCode(err, dberror.CodeIteratorNotOpened))
}

func TestBaseIterator_NextPastEndIsProtocolViolation(t *testing.T) {
	td, tuples := intTuples(t, 1)
	it := OpenedTupleSliceIterator(td, tuples)

	got, err := it.Next()
	require.NoError(t, err)
	assert.Same(t, tuples[0], got)

	hasNext, err := it.HasNext()
	require.NoError(t, err)
	assert.False(t, hasNext)

	_, err = it.Next()
	require.Error(t, err)
	assert.True(t, dberror.IsCode(err, dberror.CodeProtocolViolation))
}

func TestBaseIterator_StopsCallingReadNextAfterEnd(t *testing.T) {
	calls := 0
	it := NewBaseIterator("counting", func() (*tuple.Tuple, error) {
		calls++
		return nil, nil
	})
	it.MarkOpened()

	for range 3 {
		hasNext, err := it.HasNext()
		require.NoError(t, err)
		assert.False(t, hasNext)
	}
	assert.Equal(t, 1, calls)

	it.MarkOpened()
	_, _ = it.HasNext()
	assert.Equal(t, 2, calls)
}

func TestBaseIterator_PropagatesReadError(t *testing.T) {
	boom := errors.New("boom")
	it := NewBaseIterator("failing", func() (*tuple.Tuple, error) { return nil, boom })
	it.MarkOpened()

	_, err := it.HasNext()
	assert.ErrorIs(t, err, boom)
}

func TestTupleSliceIterator_Rewind(t *testing.T) {
	td, tuples := intTuples(t, 1, 2, 3)
	it := NewTupleSliceIterator(td, tuples)
	require.NoError(t, it.Open())

	first, err := Collect(it)
	require.NoError(t, err)
	require.NoError(t, it.Rewind())
	second, err := Collect(it)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, first, 3)
	assert.Equal(t, 3, it.Len())
	assert.Same(t, td, it.GetTupleDesc())
}

func TestHelpers(t *testing.T) {
	td, tuples := intTuples(t, 1, 2, 3, 4, 5)

	t.Run("Take", func(t *testing.T) {
		got, err := Take(OpenedTupleSliceIterator(td, tuples), 2)
		require.NoError(t, err)
		assert.Equal(t, tuples[:2], got)

		none, err := Take(OpenedTupleSliceIterator(td, tuples), 0)
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("Count", func(t *testing.T) {
		n, err := Count(OpenedTupleSliceIterator(td, tuples))
		require.NoError(t, err)
		assert.Equal(t, 5, n)
	})

	t.Run("ForEach stops on error", func(t *testing.T) {
		stop := errors.New("stop")
		seen := 0
		err := ForEach(OpenedTupleSliceIterator(td, tuples), func(*tuple.Tuple) error {
			seen++
			if seen == 2 {
				return stop
			}
			return nil
		})
		assert.ErrorIs(t, err, stop)
		assert.Equal(t, 2, seen)
	})

	t.Run("FetchNext", func(t *testing.T) {
		it := OpenedTupleSliceIterator(td, tuples[:1])
		got, err := FetchNext(it)
		require.NoError(t, err)
		assert.Same(t, tuples[0], got)

		got, err = FetchNext(it)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("Drain", func(t *testing.T) {
		got, err := Drain(NewTupleSliceIterator(td, tuples))
		require.NoError(t, err)
		assert.Equal(t, tuples, got)
	})
}

func TestSliceIterator(t *testing.T) {
	it := NewSliceIterator([]string{"a", "b"})

	v, err := it.Peek()
	require.NoError(t, err)
	assert.Equal(t, "a", v)
	assert.Equal(t, 2, it.Remaining())

	_, _ = it.Next()
	_, _ = it.Next()
	assert.False(t, it.HasNext())
	assert.Equal(t, 0, it.Remaining())
	assert.Equal(t, 2, it.CurrentIndex())

	_, err = it.Next()
	assert.True(t, dberror.IsCode(err, dberror.CodeProtocolViolation))

	it.Reset([]string{"z"})
	assert.Equal(t, 1, it.Len())
	assert.Equal(t, []string{"z"}, it.GetData())
}
