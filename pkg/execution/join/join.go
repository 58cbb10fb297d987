// Package join implements the equi-join operators of the executor.
//
// Every operator pulls from two (or, for the trie join, more) child operators
// and emits the concatenation of matching records. Matching uses Compare, a
// majority vote across the join-column pairs, so single-column joins behave
// like an ordinary equality join.
package join

import (
	"context"
	"log/slog"

	"leapdb/pkg/dberror"
	"leapdb/pkg/execution/operator"
	"leapdb/pkg/iterator"
	"leapdb/pkg/metrics"
	"leapdb/pkg/tuple"
)

// Compare classifies a left and a right record by their join columns. Each
// column pair votes less, equal or greater under the field total order.
// It returns 1 if greater votes outnumber both others, 0 if equal votes
// outnumber both others, and -1 otherwise.
//
// With several columns this is not a lexicographic order: ties between the
// vote counts resolve to -1.
func Compare(left, right *tuple.Tuple, leftIdx, rightIdx []int) int {
	var lt, eq, gt int
	for i := range leftIdx {
		switch c := left.CompareField(leftIdx[i], right, rightIdx[i]); {
		case c < 0:
			lt++
		case c > 0:
			gt++
		default:
			eq++
		}
	}

	switch {
	case gt > eq && gt > lt:
		return 1
	case eq > gt && eq > lt:
		return 0
	default:
		return -1
	}
}

// joinBase is the state shared by the binary join operators: both children,
// the join columns and their resolved positions, and the output schema.
type joinBase struct {
	*iterator.BaseIterator
	ctx context.Context

	left, right         operator.Operator
	leftCols, rightCols []string
	leftIdx, rightIdx   []int
	td                  *tuple.TupleDescription

	matches   *JoinMatchBuffer
	algorithm string
	log       *slog.Logger
}

func newJoinBase(left, right operator.Operator, leftCols, rightCols []string) (*joinBase, error) {
	if left == nil || right == nil {
		return nil, dberror.Precondition("Join", "New", "join inputs cannot be nil")
	}
	if len(leftCols) == 0 || len(leftCols) != len(rightCols) {
		return nil, dberror.Precondition("Join", "New",
			"need the same non-zero number of join columns on both sides, got %d and %d", len(leftCols), len(rightCols))
	}

	b := &joinBase{
		ctx:       context.Background(),
		left:      left,
		right:     right,
		leftCols:  append([]string(nil), leftCols...),
		rightCols: append([]string(nil), rightCols...),
		matches:   NewJoinMatchBuffer(),
	}

	td, err := b.computeSchema()
	if err != nil {
		return nil, err
	}
	b.td = td
	return b, nil
}

// computeSchema resolves the join columns against both children and returns
// the schema of the joined records.
func (b *joinBase) computeSchema() (*tuple.TupleDescription, error) {
	var err error
	if b.leftIdx, err = resolveColumns(b.left.GetTupleDesc(), b.leftCols); err != nil {
		return nil, err
	}
	if b.rightIdx, err = resolveColumns(b.right.GetTupleDesc(), b.rightCols); err != nil {
		return nil, err
	}
	return tuple.Combine(b.left.GetTupleDesc(), b.right.GetTupleDesc()), nil
}

func resolveColumns(td *tuple.TupleDescription, cols []string) ([]int, error) {
	idx := make([]int, len(cols))
	for i, c := range cols {
		j, err := td.FindFieldIndex(c)
		if err != nil {
			return nil, err
		}
		idx[i] = j
	}
	return idx, nil
}

// init names the operator and attaches its readNext.
func (b *joinBase) init(algorithm, component string, readNext iterator.ReadNextFunc, log *slog.Logger) {
	b.algorithm = algorithm
	b.log = log
	b.BaseIterator = iterator.NewBaseIterator(component, readNext)
}

// SetContext attaches ctx to the operator's log records.
func (b *joinBase) SetContext(ctx context.Context) {
	if ctx != nil {
		b.ctx = ctx
	}
}

func (b *joinBase) compare(l, r *tuple.Tuple) int {
	return Compare(l, r, b.leftIdx, b.rightIdx)
}

func (b *joinBase) combine(l, r *tuple.Tuple) (*tuple.Tuple, error) {
	return tuple.CombineWithDesc(b.td, l, r)
}

// emit hands one joined record downstream.
func (b *joinBase) emit(t *tuple.Tuple) *tuple.Tuple {
	metrics.CounterJoinOutput.WithLabelValues(b.algorithm).Inc()
	return t
}

func (b *joinBase) GetTupleDesc() *tuple.TupleDescription {
	return b.td
}

func (b *joinBase) LeftColumns() []string  { return b.leftCols }
func (b *joinBase) RightColumns() []string { return b.rightCols }

// LeftIndices returns the resolved positions of the left join columns.
func (b *joinBase) LeftIndices() []int  { return b.leftIdx }
func (b *joinBase) RightIndices() []int { return b.rightIdx }

// Stats estimates the output size as that of the larger input, an upper bound
// for key-foreign key joins.
func (b *joinBase) Stats() operator.TableStats {
	l, r := b.left.Stats(), b.right.Stats()
	return operator.TableStats{
		NumRecords: max(l.NumRecords, r.NumRecords),
		NumPages:   max(l.NumPages, r.NumPages),
	}
}

func (b *joinBase) SortedBy() []string {
	return nil
}

func (b *joinBase) openChildren() error {
	if err := b.left.Open(); err != nil {
		return err
	}
	return b.right.Open()
}

func (b *joinBase) closeChildren() error {
	b.matches.Reset()
	lerr := b.left.Close()
	rerr := b.right.Close()
	if lerr != nil {
		return lerr
	}
	return rerr
}
