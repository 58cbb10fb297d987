package iterator

import "leapdb/pkg/tuple"

// DbIterator defines the contract for all operators in the execution engine.
//
// End of stream is signalled by HasNext returning false. Calling Next past the
// end is a protocol violation and returns a PROTOCOL_VIOLATION error; it never
// returns a nil tuple with a nil error.
type DbIterator interface {
	TupleIterator // Embeds HasNext() and Next()

	// Open initializes the iterator and prepares it for tuple retrieval.
	// This method must be called before any other iterator operations.
	Open() error

	// Rewind resets the iterator position to the beginning of the data sequence.
	// The iterator must be opened before calling this method.
	Rewind() error

	// Close releases all resources associated with the iterator.
	// Calling Close() on an already closed iterator is safe.
	Close() error

	// GetTupleDesc returns the schema of the tuples produced by this iterator.
	// It can be called regardless of iterator state.
	GetTupleDesc() *tuple.TupleDescription
}

// TupleIterator is the minimal pull interface shared by operators, runs and
// index probes.
type TupleIterator interface {
	// HasNext checks if there are more tuples available without consuming them.
	HasNext() (bool, error)

	// Next retrieves and returns the next tuple from the iterator.
	Next() (*tuple.Tuple, error)
}
