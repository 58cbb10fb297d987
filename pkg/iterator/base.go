package iterator

import (
	"leapdb/pkg/dberror"
	"leapdb/pkg/tuple"
)

// ReadNextFunc reads the next tuple from an operator's source.
// Returns:
//   - *tuple.Tuple: Next tuple, or nil if no more tuples
//   - error: Error if reading fails, nil on success or end of data
type ReadNextFunc func() (*tuple.Tuple, error)

// BaseIterator implements lookahead caching and open/exhausted state for operators.
// Operators embed a *BaseIterator, hand it their readNext function and delegate
// HasNext/Next to it.
//
// Once readNext has reported the end of the stream it is not called again until
// the iterator is re-opened with MarkOpened.
type BaseIterator struct {
	nextTuple    *tuple.Tuple
	opened       bool
	exhausted    bool
	component    string
	readNextFunc ReadNextFunc
}

// NewBaseIterator creates a new base iterator with the given readNext function.
// component names the owning operator in error messages.
func NewBaseIterator(component string, readNextFunc ReadNextFunc) *BaseIterator {
	return &BaseIterator{
		component:    component,
		readNextFunc: readNextFunc,
	}
}

// HasNext checks if there is a next tuple available without consuming it.
func (it *BaseIterator) HasNext() (bool, error) {
	if !it.opened {
		return false, it.notOpened("HasNext")
	}

	if err := it.fill(); err != nil {
		return false, err
	}
	return it.nextTuple != nil, nil
}

// Next returns the next tuple and advances the iterator. Calling Next on an
// exhausted iterator returns a PROTOCOL_VIOLATION error.
func (it *BaseIterator) Next() (*tuple.Tuple, error) {
	if !it.opened {
		return nil, it.notOpened("Next")
	}

	if err := it.fill(); err != nil {
		return nil, err
	}
	if it.nextTuple == nil {
		return nil, dberror.NoMoreTuples(it.component)
	}

	result := it.nextTuple
	it.nextTuple = nil
	return result, nil
}

func (it *BaseIterator) fill() error {
	if it.nextTuple != nil || it.exhausted {
		return nil
	}

	t, err := it.readNextFunc()
	if err != nil {
		return err
	}
	if t == nil {
		it.exhausted = true
	}
	it.nextTuple = t
	return nil
}

// Close clears any cached tuple and marks the iterator closed.
func (it *BaseIterator) Close() error {
	it.nextTuple = nil
	it.opened = false
	it.exhausted = false
	return nil
}

// MarkOpened marks the iterator as opened and discards any lookahead.
// Operators call it from both Open and Rewind.
func (it *BaseIterator) MarkOpened() {
	it.opened = true
	it.exhausted = false
	it.nextTuple = nil
}

// IsOpened reports whether MarkOpened has been called since the last Close.
func (it *BaseIterator) IsOpened() bool {
	return it.opened
}

func (it *BaseIterator) notOpened(op string) error {
	err := dberror.New(dberror.ErrCategoryUser, dberror.CodeIteratorNotOpened, "iterator not opened")
	err.Component = it.component
	err.Operation = op
	return err
}
