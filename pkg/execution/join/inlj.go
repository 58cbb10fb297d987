package join

import (
	"math"

	"github.com/pkg/errors"

	"leapdb/pkg/dberror"
	"leapdb/pkg/execution/operator"
	"leapdb/pkg/iterator"
	"leapdb/pkg/logging"
	"leapdb/pkg/metrics"
	"leapdb/pkg/storage/index"
	"leapdb/pkg/tuple"
)

type inljState int

const (
	stateNeedLeft inljState = iota
	stateScanningRight
	stateDone
)

// IndexNestedLoopJoin joins each left record with the right records that an
// index probe on the first join column returns. The right operator supplies
// only the schema and statistics; its records are reached through the index.
type IndexNestedLoopJoin struct {
	*joinBase
	idx        index.Index
	rightTable string

	state       inljState
	currentLeft *tuple.Tuple
	probe       iterator.TupleIterator
	probes      int
}

// NewIndexNestedLoopJoin creates an index nested-loop join. idx must hold an
// index on rightTable.rightCols[0].
func NewIndexNestedLoopJoin(left, right operator.Operator, rightTable string, idx index.Index, leftCols, rightCols []string) (*IndexNestedLoopJoin, error) {
	if idx == nil {
		return nil, dberror.Precondition("IndexNestedLoopJoin", "New", "index cannot be nil")
	}

	base, err := newJoinBase(left, right, leftCols, rightCols)
	if err != nil {
		return nil, err
	}

	j := &IndexNestedLoopJoin{
		joinBase:   base,
		idx:        idx,
		rightTable: rightTable,
	}
	j.init("inlj", "IndexNestedLoopJoin", j.readNext,
		logging.WithOperator("inlj", leftCols[0]+" = "+rightTable+"."+rightCols[0]))
	return j, nil
}

func (j *IndexNestedLoopJoin) Open() error {
	if err := j.left.Open(); err != nil {
		return errors.Wrap(err, "open left input")
	}
	j.reset()
	j.MarkOpened()
	return nil
}

func (j *IndexNestedLoopJoin) Rewind() error {
	if err := j.left.Rewind(); err != nil {
		return errors.Wrap(err, "rewind left input")
	}
	j.reset()
	j.MarkOpened()
	return nil
}

func (j *IndexNestedLoopJoin) reset() {
	j.state = stateNeedLeft
	j.currentLeft = nil
	j.probe = nil
}

func (j *IndexNestedLoopJoin) Close() error {
	j.reset()
	j.log.DebugContext(j.ctx, "closed", "probes", j.probes)
	err := j.left.Close()
	if cerr := j.BaseIterator.Close(); err == nil {
		err = cerr
	}
	return err
}

func (j *IndexNestedLoopJoin) readNext() (*tuple.Tuple, error) {
	for {
		switch j.state {
		case stateDone:
			return nil, nil

		case stateNeedLeft:
			l, err := iterator.FetchNext(j.left)
			if err != nil {
				return nil, err
			}
			if l == nil {
				j.state = stateDone
				continue
			}
			if err := j.probeFor(l); err != nil {
				return nil, err
			}
			j.state = stateScanningRight

		case stateScanningRight:
			r, err := iterator.FetchNext(j.probe)
			if err != nil {
				return nil, errors.Wrap(err, "read index probe")
			}
			if r == nil {
				j.state = stateNeedLeft
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
}

func (j *IndexNestedLoopJoin) probeFor(l *tuple.Tuple) error {
	key := l.Field(j.leftIdx[0])
	probe, err := j.idx.LookupKey(j.rightTable, j.rightCols[0], key)
	if err != nil {
		return errors.Wrapf(err, "probe %s.%s", j.rightTable, j.rightCols[0])
	}
	j.currentLeft = l
	j.probe = probe
	j.probes++
	metrics.CounterJoinProbes.WithLabelValues(j.algorithm).Inc()
	return nil
}

// Probes is the number of index lookups performed so far.
func (j *IndexNestedLoopJoin) Probes() int {
	return j.probes
}

// EstimateIOCost charges a left scan plus, per left record, a descent of the
// index and the leaf pages holding the matching keys.
func (j *IndexNestedLoopJoin) EstimateIOCost() int {
	ls, rs := j.left.Stats(), j.right.Stats()

	height, err := j.idx.TreeHeight(j.rightTable, j.rightCols[0])
	if err != nil {
		j.log.Warn("no tree height for cost estimate", "error", err)
		return math.MaxInt
	}
	order, err := j.idx.TreeOrder(j.rightTable, j.rightCols[0])
	if err != nil || order <= 0 {
		j.log.Warn("no tree order for cost estimate", "error", err)
		return math.MaxInt
	}

	perRecord := int(float64(height) + math.Ceil(float64(rs.NumRecords)/(1.5*float64(order))))
	return ls.NumPages + ls.NumRecords*perRecord
}
