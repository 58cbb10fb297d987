package index

import (
	"sync"

	"github.com/google/btree"
	"github.com/pkg/errors"

	"leapdb/pkg/dberror"
	"leapdb/pkg/iterator"
	"leapdb/pkg/tuple"
	"leapdb/pkg/types"
)

// DefaultOrder is the inner-node fan-out used when none is given.
const DefaultOrder = 32

type indexKey struct {
	table  string
	column string
}

// columnTree is the ordered index over one column of one table.
type columnTree struct {
	td      *tuple.TupleDescription
	col     int
	keyType types.Type
	tree    *btree.BTreeG[IndexEntry]
	nextSeq uint64
}

// MemoryIndex keeps one in-memory B-tree per indexed (table, column). It
// implements Index and is safe for concurrent use.
type MemoryIndex struct {
	mu    sync.RWMutex
	order int
	trees map[indexKey]*columnTree
}

// MinOrder is the smallest tree order a MemoryIndex accepts.
const MinOrder = 3

// NewMemoryIndex creates an empty index set whose trees have the given order.
func NewMemoryIndex(order int) (*MemoryIndex, error) {
	if order < MinOrder {
		return nil, dberror.Precondition("MemoryIndex", "New", "order must be at least %d, got %d", MinOrder, order)
	}
	return &MemoryIndex{
		order: order,
		trees: make(map[indexKey]*columnTree),
	}, nil
}

// CreateIndex registers an empty index on table.column. td is the schema of
// the records that will be inserted.
func (mi *MemoryIndex) CreateIndex(table, column string, td *tuple.TupleDescription) error {
	col, err := td.FindFieldIndex(column)
	if err != nil {
		return err
	}

	mi.mu.Lock()
	defer mi.mu.Unlock()

	key := indexKey{table, column}
	if _, exists := mi.trees[key]; exists {
		return dberror.Precondition("MemoryIndex", "CreateIndex", "index on %s.%s already exists", table, column)
	}
	mi.trees[key] = &columnTree{
		td:      td,
		col:     col,
		keyType: td.Types[col],
		tree:    btree.NewG(mi.degree(), entryLess),
	}
	return nil
}

// degree maps the order (maximum children of an inner node) onto the btree
// package's minimum degree, where a node holds at most 2*degree children.
func (mi *MemoryIndex) degree() int {
	d := mi.order / 2
	if d < 2 {
		d = 2
	}
	return d
}

// Insert adds record to the index on table.column.
func (mi *MemoryIndex) Insert(table, column string, record *tuple.Tuple) error {
	mi.mu.Lock()
	defer mi.mu.Unlock()

	ct, err := mi.lookup(table, column)
	if err != nil {
		return err
	}

	key := record.Field(ct.col)
	if key == nil {
		return dberror.Precondition("MemoryIndex", "Insert", "null key in %s.%s", table, column)
	}
	if key.Type() != ct.keyType {
		return dberror.Newf(dberror.ErrCategoryUser, dberror.CodeTypeMismatch,
			"key type mismatch: expected %v, got %v", ct.keyType, key.Type())
	}

	entry := NewIndexEntry(key, record)
	entry.seq = ct.nextSeq
	ct.nextSeq++
	ct.tree.ReplaceOrInsert(entry)
	return nil
}

// Build creates an index on table.column and loads every record of src into
// it. src is opened and closed by Build.
func (mi *MemoryIndex) Build(table, column string, src iterator.DbIterator) error {
	if err := mi.CreateIndex(table, column, src.GetTupleDesc()); err != nil {
		return err
	}

	records, err := iterator.Drain(src)
	if err != nil {
		return errors.Wrapf(err, "build index %s.%s", table, column)
	}
	for _, r := range records {
		if err := mi.Insert(table, column, r); err != nil {
			return err
		}
	}
	return nil
}

// LookupKey returns an open iterator over every record whose key equals value,
// in insertion order.
func (mi *MemoryIndex) LookupKey(table, column string, value types.Field) (iterator.TupleIterator, error) {
	mi.mu.RLock()
	defer mi.mu.RUnlock()

	ct, err := mi.lookup(table, column)
	if err != nil {
		return nil, err
	}

	var matches []*tuple.Tuple
	ct.tree.AscendGreaterOrEqual(IndexEntry{Key: value}, func(e IndexEntry) bool {
		if types.CompareFields(e.Key, value) != 0 {
			return false
		}
		matches = append(matches, e.Record)
		return true
	})

	return iterator.OpenedTupleSliceIterator(ct.td, matches), nil
}

// TreeHeight is the height of a B+-tree of this order holding the current
// number of entries, with full nodes. An empty tree has height 1.
func (mi *MemoryIndex) TreeHeight(table, column string) (int, error) {
	mi.mu.RLock()
	defer mi.mu.RUnlock()

	ct, err := mi.lookup(table, column)
	if err != nil {
		return 0, err
	}

	height, capacity := 1, mi.order
	for capacity < ct.tree.Len() {
		capacity *= mi.order
		height++
	}
	return height, nil
}

func (mi *MemoryIndex) TreeOrder(table, column string) (int, error) {
	mi.mu.RLock()
	defer mi.mu.RUnlock()

	if _, err := mi.lookup(table, column); err != nil {
		return 0, err
	}
	return mi.order, nil
}

// Len returns the number of entries in the index on table.column.
func (mi *MemoryIndex) Len(table, column string) (int, error) {
	mi.mu.RLock()
	defer mi.mu.RUnlock()

	ct, err := mi.lookup(table, column)
	if err != nil {
		return 0, err
	}
	return ct.tree.Len(), nil
}

func (mi *MemoryIndex) lookup(table, column string) (*columnTree, error) {
	ct, ok := mi.trees[indexKey{table, column}]
	if !ok {
		err := dberror.Newf(dberror.ErrCategoryUser, dberror.CodeIndexNotFound, "no index on %s.%s", table, column)
		err.Component = "MemoryIndex"
		return nil, err
	}
	return ct, nil
}
