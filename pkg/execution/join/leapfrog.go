package join

import (
	"math"
	"sort"

	"github.com/pkg/errors"

	"leapdb/pkg/dberror"
	"leapdb/pkg/execution/operator"
	"leapdb/pkg/execution/query"
	"leapdb/pkg/iterator"
	"leapdb/pkg/logging"
	"leapdb/pkg/tuple"
	"leapdb/pkg/types"
)

// sortedSeq is one materialized, sorted join input with a cursor.
type sortedSeq struct {
	records []*tuple.Tuple
	col     int
	pos     int
}

func newSortedSeq(records []*tuple.Tuple, col int) *sortedSeq {
	return &sortedSeq{records: records, col: col}
}

func (s *sortedSeq) atEnd() bool { return s.pos >= len(s.records) }

func (s *sortedSeq) next() {
	if !s.atEnd() {
		s.pos++
	}
}

func (s *sortedSeq) current() *tuple.Tuple { return s.records[s.pos] }

func (s *sortedSeq) key() types.Field { return s.records[s.pos].Field(s.col) }

// seek moves to the first position at or after the cursor whose key is not
// less than target, or to the end.
func (s *sortedSeq) seek(target types.Field) error {
	if s.atEnd() {
		return nil
	}
	if types.CompareFields(s.key(), target) > 0 {
		return dberror.Precondition("LeapfrogJoin", "seek", "seek target %v is below the current key %v", target, s.key())
	}

	rest := s.records[s.pos:]
	s.pos += sort.Search(len(rest), func(i int) bool {
		return types.CompareFields(rest[i].Field(s.col), target) >= 0
	})
	return nil
}

// indicesWithValue returns the half-open range of positions, starting at pos,
// whose key equals the key at pos.
func (s *sortedSeq) indicesWithValue(pos int) (int, int) {
	k := s.records[pos].Field(s.col)
	end := pos + 1
	for end < len(s.records) && types.CompareFields(s.records[end].Field(s.col), k) == 0 {
		end++
	}
	return pos, end
}

// LeapfrogJoin is a single-column equi-join over two inputs sorted on their
// join columns. Inputs that are not already sorted are wrapped in a
// SortOperator. The lagging side repeatedly seeks to the leading side's key;
// when the keys meet, every pairing of the two equal-key groups is emitted.
type LeapfrogJoin struct {
	*joinBase
	leftSeq, rightSeq *sortedSeq
	materialized      bool
	done              bool
}

// NewLeapfrogJoin joins left.leftCol = right.rightCol. buffers is the memory
// budget of any sort the join has to insert.
func NewLeapfrogJoin(left, right operator.Operator, leftCol, rightCol string, buffers int) (*LeapfrogJoin, error) {
	if left == nil || right == nil {
		return nil, dberror.Precondition("LeapfrogJoin", "New", "join inputs cannot be nil")
	}

	sortedLeft, err := ensureSorted(left, leftCol, buffers)
	if err != nil {
		return nil, errors.Wrap(err, "prepare left input")
	}
	sortedRight, err := ensureSorted(right, rightCol, buffers)
	if err != nil {
		return nil, errors.Wrap(err, "prepare right input")
	}

	base, err := newJoinBase(sortedLeft, sortedRight, []string{leftCol}, []string{rightCol})
	if err != nil {
		return nil, err
	}

	j := &LeapfrogJoin{joinBase: base}
	j.init("leapfrog", "LeapfrogJoin", j.readNext, logging.WithOperator("leapfrog", leftCol+" = "+rightCol))
	return j, nil
}

func ensureSorted(op operator.Operator, column string, buffers int) (operator.Operator, error) {
	if operator.IsSortedOn(op, column) {
		return op, nil
	}
	return query.NewSortOperator(op, column, buffers)
}

func (j *LeapfrogJoin) Open() error {
	if err := j.openChildren(); err != nil {
		return errors.Wrap(err, "open leapfrog inputs")
	}
	j.leftSeq, j.rightSeq = nil, nil
	j.materialized = false
	j.done = false
	j.matches.Reset()
	j.MarkOpened()
	return nil
}

// Rewind restarts the join over the already materialized inputs.
func (j *LeapfrogJoin) Rewind() error {
	if j.materialized {
		if j.leftSeq != nil {
			j.leftSeq.pos = 0
		}
		if j.rightSeq != nil {
			j.rightSeq.pos = 0
		}
		j.done = j.leftSeq == nil || j.rightSeq == nil ||
			len(j.leftSeq.records) == 0 || len(j.rightSeq.records) == 0
	}
	j.matches.Reset()
	j.MarkOpened()
	return nil
}

func (j *LeapfrogJoin) Close() error {
	j.leftSeq, j.rightSeq = nil, nil
	j.materialized = false
	err := j.closeChildren()
	if cerr := j.BaseIterator.Close(); err == nil {
		err = cerr
	}
	return err
}

// materialize reads the left input and, only if it is not empty, the right.
func (j *LeapfrogJoin) materialize() error {
	j.materialized = true

	leftRecords, err := iterator.Collect(j.left)
	if err != nil {
		return errors.Wrap(err, "materialize left input")
	}
	j.leftSeq = newSortedSeq(leftRecords, j.leftIdx[0])
	if len(leftRecords) == 0 {
		j.done = true
		return nil
	}

	rightRecords, err := iterator.Collect(j.right)
	if err != nil {
		return errors.Wrap(err, "materialize right input")
	}
	j.rightSeq = newSortedSeq(rightRecords, j.rightIdx[0])
	j.done = len(rightRecords) == 0

	j.log.DebugContext(j.ctx, "materialized", "left", len(leftRecords), "right", len(rightRecords))
	return nil
}

func (j *LeapfrogJoin) readNext() (*tuple.Tuple, error) {
	if t := j.matches.Next(); t != nil {
		return j.emit(t), nil
	}
	if !j.materialized {
		if err := j.materialize(); err != nil {
			return nil, err
		}
	}
	if j.done {
		return nil, nil
	}

	if err := j.search(); err != nil {
		return nil, err
	}
	if t := j.matches.Next(); t != nil {
		return j.emit(t), nil
	}
	return nil, nil
}

// search advances both inputs to the next common key and buffers the cross
// product of the two equal-key groups. It leaves both cursors past their
// groups. At the end of either input it marks the join done.
func (j *LeapfrogJoin) search() error {
	l, r := j.leftSeq, j.rightSeq
	for !l.atEnd() && !r.atEnd() {
		switch j.compare(l.current(), r.current()) {
		case 0:
			return j.bufferGroups()
		case -1:
			if err := l.seek(r.key()); err != nil {
				return err
			}
		default:
			if err := r.seek(l.key()); err != nil {
				return err
			}
		}
	}
	j.done = true
	return nil
}

func (j *LeapfrogJoin) bufferGroups() error {
	lStart, lEnd := j.leftSeq.indicesWithValue(j.leftSeq.pos)
	rStart, rEnd := j.rightSeq.indicesWithValue(j.rightSeq.pos)

	out := make([]*tuple.Tuple, 0, (lEnd-lStart)*(rEnd-rStart))
	for _, lrec := range j.leftSeq.records[lStart:lEnd] {
		for _, rrec := range j.rightSeq.records[rStart:rEnd] {
			t, err := j.combine(lrec, rrec)
			if err != nil {
				return err
			}
			out = append(out, t)
		}
	}

	j.leftSeq.pos = lEnd
	j.rightSeq.pos = rEnd
	j.matches.SetMatches(out)
	return nil
}

// SortedBy reports that the output is ordered on both join columns.
func (j *LeapfrogJoin) SortedBy() []string {
	return []string{j.leftCols[0], j.rightCols[0]}
}

// EstimateIOCost is the cost of producing both sorted inputs; the merge
// itself works on materialized records.
func (j *LeapfrogJoin) EstimateIOCost() int {
	return saturatingAdd(j.left.EstimateIOCost(), j.right.EstimateIOCost())
}

func saturatingAdd(a, b int) int {
	if s := a + b; s >= a && s >= b {
		return s
	}
	return math.MaxInt
}
