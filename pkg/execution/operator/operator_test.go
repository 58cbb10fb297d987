package operator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leapdb/pkg/dberror"
	"leapdb/pkg/iterator"
	"leapdb/pkg/tuple"
	"leapdb/pkg/types"
)

func intRelation(t *testing.T, name string, n int, opts ...RelationOption) *Relation {
	t.Helper()
	td, err := tuple.NewTupleDesc([]types.Type{types.IntType}, []string{name + ".id"})
	require.NoError(t, err)

	records := make([]*tuple.Tuple, n)
	for i := range records {
		records[i] = tuple.NewBuilder(td).AddInt(int64(i)).MustBuild()
	}
	r, err := NewRelation(name, td, records, opts...)
	require.NoError(t, err)
	return r
}

func TestNextBlock(t *testing.T) {
	r := intRelation(t, "r", 10)
	require.NoError(t, r.Open())

	var sizes []int
	for {
		block, err := NextBlock(r, 4)
		require.NoError(t, err)
		if len(block) == 0 {
			break
		}
		sizes = append(sizes, len(block))
	}
	assert.Equal(t, []int{4, 4, 2}, sizes)
	assert.Equal(t, 10, r.Pulled())

	block, err := NextBlock(r, 0)
	require.NoError(t, err)
	assert.Empty(t, block)
}

func TestRelation_StatsAndCost(t *testing.T) {
	// an int column is 8 bytes, so a 65-byte page holds 8 records
	r := intRelation(t, "r", 20, WithPageSize(65))
	assert.Equal(t, TableStats{NumRecords: 20, NumPages: 3}, r.Stats())
	assert.Equal(t, 3, r.EstimateIOCost())

	empty := intRelation(t, "e", 0)
	assert.Equal(t, TableStats{}, empty.Stats())
	assert.Zero(t, empty.EstimateIOCost())
}

func TestRelation_Rewind(t *testing.T) {
	r := intRelation(t, "r", 3)
	assert.True(t, dberror.IsCode(r.Rewind(), dberror.CodeIteratorNotOpened))

	require.NoError(t, r.Open())
	first, err := iterator.Collect(r)
	require.NoError(t, err)
	require.NoError(t, r.Rewind())
	second, err := iterator.Collect(r)
	require.NoError(t, err)

	assert.Len(t, first, 3)
	assert.Equal(t, first, second)

	_, err = r.Next()
	assert.True(t, dberror.IsCode(err, dberror.CodeProtocolViolation))
}

func TestIsSortedOn(t *testing.T) {
	assert.False(t, IsSortedOn(intRelation(t, "r", 1), "r.id"))
	assert.True(t, IsSortedOn(intRelation(t, "r", 1, WithSortedBy("r.id")), "r.id"))
	assert.True(t, IsSortedOn(intRelation(t, "r", 1, WithSortedBy("id")), "r.id"))
	assert.False(t, IsSortedOn(intRelation(t, "r", 1, WithSortedBy("other")), "r.id"))
}

func TestNewRelation_Validation(t *testing.T) {
	_, err := NewRelation("r", nil, nil)
	assert.True(t, dberror.IsCode(err, dberror.CodePreconditionViolation))
}
