package join

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leapdb/pkg/dberror"
	"leapdb/pkg/execution/operator"
	"leapdb/pkg/execution/query"
	"leapdb/pkg/tuple"
)

func TestLeapfrogJoin_IdenticalInputs(t *testing.T) {
	keys := seq(1, 101, 1)
	r := intRelation(t, "r", []string{"a"}, column(keys...), operator.WithSortedBy("r.a"))
	s := intRelation(t, "s", []string{"a"}, column(keys...), operator.WithSortedBy("s.a"))

	j, err := NewLeapfrogJoin(r, s, "r.a", "s.a", 3)
	require.NoError(t, err)

	out := drain(t, j)
	require.Len(t, out, 100)
	for i, rec := range out {
		assert.Equal(t, int64(i+1), intAt(rec, 0))
		assert.Equal(t, int64(i+1), intAt(rec, 1))
	}
}

func TestLeapfrogJoin_Intersections(t *testing.T) {
	tests := []struct {
		name        string
		left, right []int64
		want        int
	}{
		{"step 3 against step 9", seq(0, 90, 3), seq(0, 90, 9), 10},
		{"offset windows", seq(0, 20, 1), seq(10, 30, 1), 10},
		{"disjoint", seq(0, 10, 2), seq(1, 10, 2), 0},
		{"single common key", []int64{5}, []int64{1, 5, 9}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := intRelation(t, "r", []string{"a"}, column(tt.left...), operator.WithSortedBy("r.a"))
			s := intRelation(t, "s", []string{"a"}, column(tt.right...), operator.WithSortedBy("s.a"))

			j, err := NewLeapfrogJoin(r, s, "r.a", "s.a", 3)
			require.NoError(t, err)

			out := drain(t, j)
			assert.Len(t, out, tt.want)
			for _, rec := range out {
				assert.Equal(t, intAt(rec, 0), intAt(rec, 1))
			}
		})
	}
}

func TestLeapfrogJoin_EmptyInputs(t *testing.T) {
	t.Run("empty left never reads right", func(t *testing.T) {
		r := intRelation(t, "r", []string{"a"}, nil, operator.WithSortedBy("r.a"))
		s := intRelation(t, "s", []string{"a"}, column(1, 2, 3), operator.WithSortedBy("s.a"))

		j, err := NewLeapfrogJoin(r, s, "r.a", "s.a", 3)
		require.NoError(t, err)

		assert.Empty(t, drain(t, j))
		assert.Equal(t, 0, s.Pulled())
	})

	t.Run("empty right", func(t *testing.T) {
		r := intRelation(t, "r", []string{"a"}, column(1, 2, 3), operator.WithSortedBy("r.a"))
		s := intRelation(t, "s", []string{"a"}, nil, operator.WithSortedBy("s.a"))

		j, err := NewLeapfrogJoin(r, s, "r.a", "s.a", 3)
		require.NoError(t, err)
		assert.Empty(t, drain(t, j))
	})
}

func TestLeapfrogJoin_DuplicateGroups(t *testing.T) {
	r := intRelation(t, "r", []string{"a", "x"},
		[][]int64{{1, 0}, {5, 1}, {5, 2}, {5, 3}, {7, 4}},
		operator.WithSortedBy("r.a"))
	s := intRelation(t, "s", []string{"a", "y"},
		[][]int64{{5, 10}, {5, 11}, {5, 12}, {5, 13}, {7, 14}, {8, 15}},
		operator.WithSortedBy("s.a"))

	j, err := NewLeapfrogJoin(r, s, "r.a", "s.a", 3)
	require.NoError(t, err)

	out := rowsOf(drain(t, j))
	require.Len(t, out, 3*4+1)

	// left-major within a key group
	assert.Equal(t, []int64{5, 1, 5, 10}, out[0])
	assert.Equal(t, []int64{5, 1, 5, 13}, out[3])
	assert.Equal(t, []int64{5, 2, 5, 10}, out[4])
	assert.Equal(t, []int64{7, 4, 7, 14}, out[12])
}

func TestLeapfrogJoin_SortsUnsortedInputs(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	keys := seq(1, 801, 1)
	lkeys := append([]int64(nil), keys...)
	rkeys := append([]int64(nil), keys...)
	rng.Shuffle(len(lkeys), func(i, k int) { lkeys[i], lkeys[k] = lkeys[k], lkeys[i] })
	rng.Shuffle(len(rkeys), func(i, k int) { rkeys[i], rkeys[k] = rkeys[k], rkeys[i] })

	r := intRelation(t, "r", []string{"a"}, column(lkeys...))
	s := intRelation(t, "s", []string{"a"}, column(rkeys...))

	j, err := NewLeapfrogJoin(r, s, "r.a", "s.a", 3)
	require.NoError(t, err)

	_, leftSorted := j.left.(*query.SortOperator)
	_, rightSorted := j.right.(*query.SortOperator)
	assert.True(t, leftSorted)
	assert.True(t, rightSorted)

	out := drain(t, j)
	require.Len(t, out, 800)
	for i, rec := range out {
		assert.Equal(t, int64(i+1), intAt(rec, 0))
	}
	assert.Equal(t, []string{"r.a", "s.a"}, j.SortedBy())
}

func TestLeapfrogJoin_KeepsSortedInputs(t *testing.T) {
	r := intRelation(t, "r", []string{"a"}, column(1, 2), operator.WithSortedBy("r.a"))
	s := intRelation(t, "s", []string{"a"}, column(1, 2), operator.WithSortedBy("a"))

	j, err := NewLeapfrogJoin(r, s, "r.a", "s.a", 3)
	require.NoError(t, err)
	assert.Same(t, r, j.left)
	assert.Same(t, s, j.right)
	assert.Equal(t, r.EstimateIOCost()+s.EstimateIOCost(), j.EstimateIOCost())
}

func TestLeapfrogJoin_Rewind(t *testing.T) {
	r := intRelation(t, "r", []string{"a"}, column(1, 2, 2, 3), operator.WithSortedBy("r.a"))
	s := intRelation(t, "s", []string{"a"}, column(2, 3, 3), operator.WithSortedBy("s.a"))

	j, err := NewLeapfrogJoin(r, s, "r.a", "s.a", 3)
	require.NoError(t, err)
	require.NoError(t, j.Open())
	defer j.Close()

	first := collectAll(t, j)
	require.Len(t, first, 4)

	require.NoError(t, j.Rewind())
	assert.Equal(t, rowsOf(first), rowsOf(collectAll(t, j)))
}

func TestSortedSeq_SeekBackwardsIsAnError(t *testing.T) {
	r := intRelation(t, "r", []string{"a"}, column(1, 4, 9))
	s := newSortedSeq(drain(t, r), 0)

	require.NoError(t, s.seek(intField(4)))
	assert.Equal(t, int64(4), intAt(s.current(), 0))

	err := s.seek(intField(2))
	assert.True(t, dberror.IsCode(err, dberror.CodePreconditionViolation))

	require.NoError(t, s.seek(intField(10)))
	assert.True(t, s.atEnd())
}

func collectAll(t *testing.T, j interface {
	HasNext() (bool, error)
	Next() (*tuple.Tuple, error)
}) []*tuple.Tuple {
	t.Helper()
	var out []*tuple.Tuple
	for {
		ok, err := j.HasNext()
		require.NoError(t, err)
		if !ok {
			return out
		}
		rec, err := j.Next()
		require.NoError(t, err)
		out = append(out, rec)
	}
}
