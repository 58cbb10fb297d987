package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leapdb/pkg/dberror"
	"leapdb/pkg/iterator"
	"leapdb/pkg/tuple"
	"leapdb/pkg/types"
)

func peopleDesc(t *testing.T) *tuple.TupleDescription {
	t.Helper()
	td, err := tuple.NewTupleDesc(
		[]types.Type{types.IntType, types.StringType},
		[]string{"people.id", "people.name"},
	)
	require.NoError(t, err)
	return td
}

func person(td *tuple.TupleDescription, id int64, name string) *tuple.Tuple {
	return tuple.NewBuilder(td).AddInt(id).AddString(name).MustBuild()
}

func TestMemoryIndex_LookupKeyReturnsAllDuplicatesInOrder(t *testing.T) {
	td := peopleDesc(t)
	mi, err := NewMemoryIndex(4)
	require.NoError(t, err)
	require.NoError(t, mi.CreateIndex("people", "id", td))

	rows := []*tuple.Tuple{
		person(td, 3, "carol"),
		person(td, 1, "alice"),
		person(td, 3, "dave"),
		person(td, 2, "bob"),
		person(td, 3, "erin"),
	}
	for _, r := range rows {
		require.NoError(t, mi.Insert("people", "id", r))
	}

	it, err := mi.LookupKey("people", "id", types.NewIntField(3))
	require.NoError(t, err)
	got, err := iterator.Collect(it)
	require.NoError(t, err)

	require.Len(t, got, 3)
	assert.Same(t, rows[0], got[0])
	assert.Same(t, rows[2], got[1])
	assert.Same(t, rows[4], got[2])

	it, err = mi.LookupKey("people", "id", types.NewIntField(42))
	require.NoError(t, err)
	n, err := iterator.Count(it)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestMemoryIndex_Build(t *testing.T) {
	td := peopleDesc(t)
	var rows []*tuple.Tuple
	for i := int64(0); i < 50; i++ {
		rows = append(rows, person(td, i%10, "x"))
	}

	mi, err := NewMemoryIndex(DefaultOrder)
	require.NoError(t, err)
	require.NoError(t, mi.Build("people", "people.id", iterator.NewTupleSliceIterator(td, rows)))

	n, err := mi.Len("people", "people.id")
	require.NoError(t, err)
	assert.Equal(t, 50, n)

	it, err := mi.LookupKey("people", "people.id", types.NewIntField(7))
	require.NoError(t, err)
	count, err := iterator.Count(it)
	require.NoError(t, err)
	assert.Equal(t, 5, count)
}

func TestMemoryIndex_TreeShape(t *testing.T) {
	td := peopleDesc(t)
	mi, err := NewMemoryIndex(4)
	require.NoError(t, err)
	require.NoError(t, mi.CreateIndex("people", "id", td))

	tests := []struct {
		entries int
		height  int
	}{
		{0, 1},
		{4, 1},
		{5, 2},
		{16, 2},
		{17, 3},
	}

	inserted := 0
	for _, tt := range tests {
		for ; inserted < tt.entries; inserted++ {
			require.NoError(t, mi.Insert("people", "id", person(td, int64(inserted), "p")))
		}
		h, err := mi.TreeHeight("people", "id")
		require.NoError(t, err)
		assert.Equal(t, tt.height, h, "entries=%d", tt.entries)
	}

	order, err := mi.TreeOrder("people", "id")
	require.NoError(t, err)
	assert.Equal(t, 4, order)
}

func TestMemoryIndex_Errors(t *testing.T) {
	td := peopleDesc(t)
	mi, err := NewMemoryIndex(4)
	require.NoError(t, err)

	_, err = mi.LookupKey("people", "id", types.NewIntField(1))
	assert.True(t, dberror.IsCode(err, dberror.CodeIndexNotFound))
	_, err = mi.TreeHeight("people", "id")
	assert.True(t, dberror.IsCode(err, dberror.CodeIndexNotFound))

	require.NoError(t, mi.CreateIndex("people", "id", td))
	err = mi.CreateIndex("people", "id", td)
	assert.True(t, dberror.IsCode(err, dberror.CodePreconditionViolation))

	err = mi.CreateIndex("people", "missing", td)
	assert.True(t, dberror.IsCode(err, dberror.CodeColumnNotFound))

	_, err = NewMemoryIndex(2)
	assert.True(t, dberror.IsCode(err, dberror.CodePreconditionViolation))
}
