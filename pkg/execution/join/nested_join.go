package join

import (
	"github.com/pkg/errors"

	"leapdb/pkg/execution/operator"
	"leapdb/pkg/iterator"
	"leapdb/pkg/logging"
	"leapdb/pkg/tuple"
)

// NestedLoopJoin compares every left record with every right record. It
// needs no index and no ordering, which makes it the reference the other
// join algorithms are checked against.
type NestedLoopJoin struct {
	*joinBase
	currentLeft *tuple.Tuple
}

func NewNestedLoopJoin(left, right operator.Operator, leftCols, rightCols []string) (*NestedLoopJoin, error) {
	base, err := newJoinBase(left, right, leftCols, rightCols)
	if err != nil {
		return nil, err
	}

	j := &NestedLoopJoin{joinBase: base}
	j.init("nlj", "NestedLoopJoin", j.readNext, logging.WithOperator("nlj", describeColumns(leftCols, rightCols)))
	return j, nil
}

func (j *NestedLoopJoin) Open() error {
	if err := j.openChildren(); err != nil {
		return errors.Wrap(err, "open nested loop inputs")
	}
	j.currentLeft = nil
	j.MarkOpened()
	return nil
}

func (j *NestedLoopJoin) Rewind() error {
	if err := j.left.Rewind(); err != nil {
		return err
	}
	j.currentLeft = nil
	j.MarkOpened()
	return nil
}

func (j *NestedLoopJoin) Close() error {
	j.currentLeft = nil
	err := j.closeChildren()
	if cerr := j.BaseIterator.Close(); err == nil {
		err = cerr
	}
	return err
}

func (j *NestedLoopJoin) readNext() (*tuple.Tuple, error) {
	for {
		if j.currentLeft == nil {
			l, err := iterator.FetchNext(j.left)
			if err != nil {
				return nil, err
			}
			if l == nil {
				return nil, nil
			}
			if err := j.right.Rewind(); err != nil {
				return nil, errors.Wrap(err, "rewind right input")
			}
			j.currentLeft = l
		}

		r, err := iterator.FetchNext(j.right)
		if err != nil {
			return nil, err
		}
		if r == nil {
			j.currentLeft = nil
			continue
		}
		if j.compare(j.currentLeft, r) != 0 {
			continue
		}

		out, err := j.combine(j.currentLeft, r)
		if err != nil {
			return nil, err
		}
		return j.emit(out), nil
	}
}

// EstimateIOCost scans the right input once per left record.
func (j *NestedLoopJoin) EstimateIOCost() int {
	ls, rs := j.left.Stats(), j.right.Stats()
	return ls.NumPages + ls.NumRecords*rs.NumPages
}
