package iterator

import "leapdb/pkg/tuple"

// TupleSliceIterator is a DbIterator over tuples that are already in memory.
// Index probes and materialized runs hand these out.
type TupleSliceIterator struct {
	*BaseIterator
	td     *tuple.TupleDescription
	source *SliceIterator[*tuple.Tuple]
}

// NewTupleSliceIterator creates an iterator over tuples. The iterator must be
// opened before use.
func NewTupleSliceIterator(td *tuple.TupleDescription, tuples []*tuple.Tuple) *TupleSliceIterator {
	it := &TupleSliceIterator{
		td:     td,
		source: NewSliceIterator(tuples),
	}
	it.BaseIterator = NewBaseIterator("TupleSliceIterator", it.readNext)
	return it
}

// OpenedTupleSliceIterator is NewTupleSliceIterator followed by Open.
func OpenedTupleSliceIterator(td *tuple.TupleDescription, tuples []*tuple.Tuple) *TupleSliceIterator {
	it := NewTupleSliceIterator(td, tuples)
	_ = it.Open()
	return it
}

func (it *TupleSliceIterator) readNext() (*tuple.Tuple, error) {
	if !it.source.HasNext() {
		return nil, nil
	}
	return it.source.Next()
}

func (it *TupleSliceIterator) Open() error {
	it.source.Rewind()
	it.MarkOpened()
	return nil
}

func (it *TupleSliceIterator) Rewind() error {
	it.source.Rewind()
	it.MarkOpened()
	return nil
}

func (it *TupleSliceIterator) GetTupleDesc() *tuple.TupleDescription {
	return it.td
}

// Len returns the total number of tuples, consumed or not.
func (it *TupleSliceIterator) Len() int {
	return it.source.Len()
}
