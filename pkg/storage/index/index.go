package index

import (
	"leapdb/pkg/iterator"
	"leapdb/pkg/types"
)

// Index is the probe side of an ordered index as seen by the executor.
// Implementations are keyed by (table, column); asking for a pair that has no
// index returns an INDEX_NOT_FOUND error.
type Index interface {
	// LookupKey returns the records of table whose column equals value. The
	// returned iterator is already open.
	LookupKey(table, column string, value types.Field) (iterator.TupleIterator, error)

	// TreeHeight is the number of node levels a probe descends, leaf included.
	TreeHeight(table, column string) (int, error)

	// TreeOrder is the fan-out of an inner node.
	TreeOrder(table, column string) (int, error)
}
