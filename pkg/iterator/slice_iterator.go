package iterator

import "leapdb/pkg/dberror"

// SliceIterator provides a generic iterator over a slice of any type T.
// It is always ready to use after construction and is not safe for concurrent use.
//
// Example usage:
//
//	iter := NewSliceIterator([]int{1, 2, 3, 4, 5})
//	for iter.HasNext() {
//	    val, err := iter.Next()
//	    if err != nil {
//	        return err
//	    }
//	    process(val)
//	}
type SliceIterator[T any] struct {
	data         []T
	currentIndex int
}

// NewSliceIterator creates a new iterator over the given slice (which may be nil).
func NewSliceIterator[T any](data []T) *SliceIterator[T] {
	return &SliceIterator[T]{data: data}
}

// HasNext reports whether at least one more element is available.
func (it *SliceIterator[T]) HasNext() bool {
	return it.currentIndex < len(it.data)
}

// Next returns the next element and advances the position. Past the end it
// returns a PROTOCOL_VIOLATION error.
func (it *SliceIterator[T]) Next() (T, error) {
	var zero T

	if it.currentIndex >= len(it.data) {
		return zero, dberror.NoMoreTuples("SliceIterator")
	}

	element := it.data[it.currentIndex]
	it.currentIndex++
	return element, nil
}

// Peek returns the next element without advancing the position.
func (it *SliceIterator[T]) Peek() (T, error) {
	var zero T

	if it.currentIndex >= len(it.data) {
		return zero, dberror.NoMoreTuples("SliceIterator")
	}

	return it.data[it.currentIndex], nil
}

// Rewind resets the read position to the beginning of the slice.
func (it *SliceIterator[T]) Rewind() {
	it.currentIndex = 0
}

// Reset replaces the underlying data and rewinds.
func (it *SliceIterator[T]) Reset(data []T) {
	it.data = data
	it.currentIndex = 0
}

// Len returns the total number of elements in the slice.
func (it *SliceIterator[T]) Len() int {
	return len(it.data)
}

// Remaining returns the number of elements left to iterate.
func (it *SliceIterator[T]) Remaining() int {
	if it.currentIndex >= len(it.data) {
		return 0
	}
	return len(it.data) - it.currentIndex
}

// CurrentIndex returns the index of the element the next call to Next returns.
func (it *SliceIterator[T]) CurrentIndex() int {
	return it.currentIndex
}

// GetData returns the underlying slice without copying it.
func (it *SliceIterator[T]) GetData() []T {
	return it.data
}
