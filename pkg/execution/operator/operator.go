package operator

import (
	"leapdb/pkg/iterator"
	"leapdb/pkg/tuple"
)

// TableStats is the size of an operator's output as seen by cost estimation.
type TableStats struct {
	NumRecords int
	NumPages   int
}

// Operator is a node of a query plan. Besides iteration it reports how large
// its output is, which columns the output is ordered on and how many page I/Os
// producing it is expected to cost.
type Operator interface {
	iterator.DbIterator

	Stats() TableStats

	// SortedBy lists the columns the output is ordered on, most significant
	// first. It is empty when no order is guaranteed.
	SortedBy() []string

	EstimateIOCost() int
}

// NextBlock pulls at most maxRecords tuples from it. It returns fewer only at
// the end of the stream, and an empty block once the stream is exhausted.
func NextBlock(it iterator.TupleIterator, maxRecords int) ([]*tuple.Tuple, error) {
	if maxRecords <= 0 {
		return nil, nil
	}

	block := make([]*tuple.Tuple, 0, min(maxRecords, 1024))
	for len(block) < maxRecords {
		t, err := iterator.FetchNext(it)
		if err != nil {
			return nil, err
		}
		if t == nil {
			break
		}
		block = append(block, t)
	}
	return block, nil
}

// IsSortedOn reports whether op's output is ordered on column first.
func IsSortedOn(op Operator, column string) bool {
	sorted := op.SortedBy()
	if len(sorted) == 0 {
		return false
	}
	if sorted[0] == column {
		return true
	}

	td := op.GetTupleDesc()
	a, errA := td.FindFieldIndex(sorted[0])
	b, errB := td.FindFieldIndex(column)
	return errA == nil && errB == nil && a == b
}
