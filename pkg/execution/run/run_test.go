package run

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leapdb/pkg/dberror"
	"leapdb/pkg/iterator"
	"leapdb/pkg/tuple"
	"leapdb/pkg/types"
)

func intRecords(t *testing.T, values ...int64) (*tuple.TupleDescription, []*tuple.Tuple) {
	t.Helper()
	td, err := tuple.NewTupleDesc([]types.Type{types.IntType}, []string{"v"})
	require.NoError(t, err)

	out := make([]*tuple.Tuple, len(values))
	for i, v := range values {
		out[i] = tuple.NewBuilder(td).AddInt(v).MustBuild()
	}
	return td, out
}

func TestRun_Paging(t *testing.T) {
	td, recs := intRecords(t, 1, 2, 3, 4, 5, 6, 7)
	r := FromRecords(td, 3, recs)

	assert.Equal(t, 7, r.Len())
	assert.Equal(t, 3, r.NumPages())
	assert.Equal(t, recs, r.Records())

	got, err := iterator.Collect(r.Iterator())
	require.NoError(t, err)
	assert.Equal(t, recs, got)
}

func TestRunIterator_RewindAndProtocol(t *testing.T) {
	td, recs := intRecords(t, 5, 6)
	r := FromRecords(td, 1, recs)

	it := NewRunIterator(r)
	_, err := it.HasNext()
	assert.True(t, dberror.IsCode(err, dberror.CodeIteratorNotOpened))

	require.NoError(t, it.Open())
	n, err := iterator.Count(it)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = it.Next()
	assert.True(t, dberror.IsCode(err, dberror.CodeProtocolViolation))

	require.NoError(t, it.Rewind())
	first, err := it.Next()
	require.NoError(t, err)
	assert.Same(t, recs[0], first)
}

func TestRun_Empty(t *testing.T) {
	td, _ := intRecords(t)
	r := NewRun(td, 4)

	assert.Zero(t, r.Len())
	assert.Zero(t, r.NumPages())
	hasNext, err := r.Iterator().HasNext()
	require.NoError(t, err)
	assert.False(t, hasNext)

	assert.True(t, dberror.IsCode(r.Add(nil), dberror.CodePreconditionViolation))
}
