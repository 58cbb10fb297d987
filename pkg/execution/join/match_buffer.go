package join

import (
	"leapdb/pkg/iterator"
	"leapdb/pkg/tuple"
)

// JoinMatchBuffer holds joined records that were produced together, such as
// the cross product of two duplicate-key groups, and hands them out one per
// Next call.
type JoinMatchBuffer struct {
	iter *iterator.SliceIterator[*tuple.Tuple]
}

// NewJoinMatchBuffer creates a new empty match buffer.
func NewJoinMatchBuffer() *JoinMatchBuffer {
	return &JoinMatchBuffer{
		iter: iterator.NewSliceIterator([]*tuple.Tuple(nil)),
	}
}

// HasNext returns true if there are more buffered results to return.
func (jmb *JoinMatchBuffer) HasNext() bool {
	return jmb.iter.HasNext()
}

// Next returns the next buffered tuple, or nil when the buffer is drained.
func (jmb *JoinMatchBuffer) Next() *tuple.Tuple {
	result, err := jmb.iter.Next()
	if err != nil {
		return nil
	}
	return result
}

// Reset clears the buffer.
func (jmb *JoinMatchBuffer) Reset() {
	jmb.iter = iterator.NewSliceIterator([]*tuple.Tuple(nil))
}

// SetMatches replaces the buffer contents. Any undrained records are dropped.
func (jmb *JoinMatchBuffer) SetMatches(matches []*tuple.Tuple) {
	jmb.iter = iterator.NewSliceIterator(matches)
}

// Len returns the number of records in the buffer, drained or not.
func (jmb *JoinMatchBuffer) Len() int {
	return jmb.iter.Len()
}

// Remaining returns the number of records not yet handed out.
func (jmb *JoinMatchBuffer) Remaining() int {
	return jmb.iter.Remaining()
}
