package index

import (
	"leapdb/pkg/tuple"
	"leapdb/pkg/types"
)

// IndexEntry maps one key to the record that holds it. Entries with equal keys
// are kept in insertion order through seq.
type IndexEntry struct {
	Key    types.Field
	Record *tuple.Tuple
	seq    uint64
}

// NewIndexEntry creates an entry for key pointing at record.
func NewIndexEntry(key types.Field, record *tuple.Tuple) IndexEntry {
	return IndexEntry{Key: key, Record: record}
}

func entryLess(a, b IndexEntry) bool {
	if c := types.CompareFields(a.Key, b.Key); c != 0 {
		return c < 0
	}
	return a.seq < b.seq
}
