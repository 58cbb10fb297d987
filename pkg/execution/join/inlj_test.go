package join

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leapdb/pkg/dberror"
	"leapdb/pkg/execution/operator"
	"leapdb/pkg/storage/index"
)

// buildIndex indexes every record of rel on column under table.
func buildIndex(t *testing.T, table, column string, rel *operator.Relation) *index.MemoryIndex {
	t.Helper()
	idx, err := index.NewMemoryIndex(index.DefaultOrder)
	require.NoError(t, err)
	require.NoError(t, idx.Build(table, column, rel))
	return idx
}

func TestIndexNestedLoopJoin_AllDuplicates(t *testing.T) {
	ones := make([]int64, 100)
	for i := range ones {
		ones[i] = 1
	}
	r := intRelation(t, "r", []string{"a"}, column(ones...))
	s := intRelation(t, "s", []string{"a"}, column(ones...))
	idx := buildIndex(t, "s", "s.a", s)

	j, err := NewIndexNestedLoopJoin(r, s, "s", idx, []string{"r.a"}, []string{"s.a"})
	require.NoError(t, err)

	assert.Len(t, drain(t, j), 100*100)
	assert.Equal(t, 100, j.Probes())
}

func TestIndexNestedLoopJoin_SingleLeftRecordStillProbes(t *testing.T) {
	r := intRelation(t, "r", []string{"a", "x"}, [][]int64{{3, 30}})
	s := intRelation(t, "s", []string{"a", "y"}, [][]int64{{1, 100}, {3, 300}, {3, 301}, {4, 400}})
	idx := buildIndex(t, "s", "s.a", s)

	j, err := NewIndexNestedLoopJoin(r, s, "s", idx, []string{"r.a"}, []string{"s.a"})
	require.NoError(t, err)

	out := rowsOf(drain(t, j))
	assert.Equal(t, [][]int64{{3, 30, 3, 300}, {3, 30, 3, 301}}, out)
	assert.Equal(t, 1, j.Probes())
}

func TestIndexNestedLoopJoin_EmptyLeftNeverProbes(t *testing.T) {
	r := intRelation(t, "r", []string{"a"}, nil)
	s := intRelation(t, "s", []string{"a"}, column(1, 2, 3))
	idx := buildIndex(t, "s", "s.a", s)

	j, err := NewIndexNestedLoopJoin(r, s, "s", idx, []string{"r.a"}, []string{"s.a"})
	require.NoError(t, err)

	assert.Empty(t, drain(t, j))
	assert.Equal(t, 0, j.Probes())
}

func TestIndexNestedLoopJoin_Rewind(t *testing.T) {
	r := intRelation(t, "r", []string{"a"}, column(1, 2, 3))
	s := intRelation(t, "s", []string{"a"}, column(2, 3, 3))
	idx := buildIndex(t, "s", "s.a", s)

	j, err := NewIndexNestedLoopJoin(r, s, "s", idx, []string{"r.a"}, []string{"s.a"})
	require.NoError(t, err)
	require.NoError(t, j.Open())
	defer j.Close()

	assert.Len(t, collectAll(t, j), 3)
	require.NoError(t, j.Rewind())
	assert.Len(t, collectAll(t, j), 3)
	assert.Equal(t, 6, j.Probes())
}

func TestIndexNestedLoopJoin_MissingIndex(t *testing.T) {
	r := intRelation(t, "r", []string{"a"}, column(1))
	s := intRelation(t, "s", []string{"a"}, column(1))
	idx, err := index.NewMemoryIndex(index.DefaultOrder)
	require.NoError(t, err)

	_, err = NewIndexNestedLoopJoin(r, s, "s", nil, []string{"r.a"}, []string{"s.a"})
	assert.True(t, dberror.IsCode(err, dberror.CodePreconditionViolation))

	j, err := NewIndexNestedLoopJoin(r, s, "s", idx, []string{"r.a"}, []string{"s.a"})
	require.NoError(t, err)

	_, err = drainErr(j)
	assert.True(t, dberror.IsCode(err, dberror.CodeIndexNotFound))
	assert.Equal(t, math.MaxInt, j.EstimateIOCost())
}

func TestIndexNestedLoopJoin_EstimateIOCost(t *testing.T) {
	// one int column: 504 records per page, so the left side is one page
	r := intRelation(t, "r", []string{"a"}, column(seq(0, 100, 1)...))
	s := intRelation(t, "s", []string{"a"}, column(seq(0, 1000, 1)...))
	idx := buildIndex(t, "s", "s.a", s)

	height, err := idx.TreeHeight("s", "s.a")
	require.NoError(t, err)
	require.Equal(t, 2, height)

	j, err := NewIndexNestedLoopJoin(r, s, "s", idx, []string{"r.a"}, []string{"s.a"})
	require.NoError(t, err)

	// per left record: height 2 plus ceil(1000 / (1.5 * 32)) = 21 leaf pages
	assert.Equal(t, 1+100*(2+21), j.EstimateIOCost())
}

func drainErr(j *IndexNestedLoopJoin) (int, error) {
	if err := j.Open(); err != nil {
		return 0, err
	}
	defer j.Close()

	n := 0
	for {
		ok, err := j.HasNext()
		if err != nil || !ok {
			return n, err
		}
		if _, err := j.Next(); err != nil {
			return n, err
		}
		n++
	}
}
