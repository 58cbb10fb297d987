package join

import (
	"strings"

	"github.com/pkg/errors"

	"leapdb/pkg/execution/operator"
	"leapdb/pkg/iterator"
	"leapdb/pkg/logging"
	"leapdb/pkg/primitives"
	"leapdb/pkg/tuple"
	"leapdb/pkg/types"
)

// HashJoin builds a hash table over the right input and probes it with each
// left record. Records in a bucket are checked with Compare, so hash
// collisions never produce output. The bucket key covers every join column,
// so with three or more columns only records equal on all of them meet.
//
// Build phase: the right input is read once, on the first pull.
// Probe phase: every left record is hashed on its join columns and matched
// against its bucket.
type HashJoin struct {
	*joinBase
	table map[primitives.HashCode][]*tuple.Tuple
	built bool
}

func NewHashJoin(left, right operator.Operator, leftCols, rightCols []string) (*HashJoin, error) {
	base, err := newJoinBase(left, right, leftCols, rightCols)
	if err != nil {
		return nil, err
	}

	j := &HashJoin{joinBase: base}
	j.init("hash", "HashJoin", j.readNext, logging.WithOperator("hash", describeColumns(leftCols, rightCols)))
	return j, nil
}

func (j *HashJoin) Open() error {
	if err := j.openChildren(); err != nil {
		return errors.Wrap(err, "open hash join inputs")
	}
	j.table = nil
	j.built = false
	j.matches.Reset()
	j.MarkOpened()
	return nil
}

// Rewind keeps the hash table and restarts the probe side.
func (j *HashJoin) Rewind() error {
	if err := j.left.Rewind(); err != nil {
		return err
	}
	j.matches.Reset()
	j.MarkOpened()
	return nil
}

func (j *HashJoin) Close() error {
	j.table = nil
	j.built = false
	err := j.closeChildren()
	if cerr := j.BaseIterator.Close(); err == nil {
		err = cerr
	}
	return err
}

func hashKey(t *tuple.Tuple, cols []int) primitives.HashCode {
	fields := make([]types.Field, len(cols))
	for i, c := range cols {
		fields[i] = t.Field(c)
	}
	return types.HashFields(fields...)
}

func (j *HashJoin) build() error {
	j.built = true
	j.table = make(map[primitives.HashCode][]*tuple.Tuple)

	n := 0
	err := iterator.ForEach(j.right, func(r *tuple.Tuple) error {
		h := hashKey(r, j.rightIdx)
		j.table[h] = append(j.table[h], r)
		n++
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "build hash table")
	}

	j.log.DebugContext(j.ctx, "hash table built", "records", n, "buckets", len(j.table))
	return nil
}

func (j *HashJoin) readNext() (*tuple.Tuple, error) {
	if !j.built {
		if err := j.build(); err != nil {
			return nil, err
		}
	}

	for {
		if t := j.matches.Next(); t != nil {
			return j.emit(t), nil
		}

		l, err := iterator.FetchNext(j.left)
		if err != nil {
			return nil, err
		}
		if l == nil {
			return nil, nil
		}

		bucket := j.table[hashKey(l, j.leftIdx)]
		var out []*tuple.Tuple
		for _, r := range bucket {
			if j.compare(l, r) != 0 {
				continue
			}
			t, err := j.combine(l, r)
			if err != nil {
				return nil, err
			}
			out = append(out, t)
		}
		j.matches.SetMatches(out)
	}
}

// EstimateIOCost follows the partitioned hash join: read and write both
// inputs once, then read them back.
func (j *HashJoin) EstimateIOCost() int {
	ls, rs := j.left.Stats(), j.right.Stats()
	return 3 * (ls.NumPages + rs.NumPages)
}

func describeColumns(leftCols, rightCols []string) string {
	pairs := make([]string, len(leftCols))
	for i := range leftCols {
		pairs[i] = leftCols[i] + " = " + rightCols[i]
	}
	return strings.Join(pairs, ", ")
}
