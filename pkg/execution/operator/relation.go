package operator

import (
	"leapdb/pkg/dberror"
	"leapdb/pkg/iterator"
	"leapdb/pkg/tuple"
)

// Relation is a leaf operator over records held in memory. It stands in for a
// table scan: page counts are derived from the schema width and page size.
type Relation struct {
	*iterator.BaseIterator
	name     string
	td       *tuple.TupleDescription
	records  []*tuple.Tuple
	pos      int
	pageSize int
	sortedBy []string
	pulled   int
}

// RelationOption configures a Relation.
type RelationOption func(*Relation)

// WithSortedBy declares that the records are already ordered on cols.
// The declaration is trusted, not checked.
func WithSortedBy(cols ...string) RelationOption {
	return func(r *Relation) {
		r.sortedBy = append([]string(nil), cols...)
	}
}

// WithPageSize overrides tuple.DefaultPageSize for page accounting.
func WithPageSize(pageSize int) RelationOption {
	return func(r *Relation) {
		r.pageSize = pageSize
	}
}

// NewRelation creates a relation named name over records.
func NewRelation(name string, td *tuple.TupleDescription, records []*tuple.Tuple, opts ...RelationOption) (*Relation, error) {
	if td == nil {
		return nil, dberror.Precondition("Relation", "New", "relation %q has no schema", name)
	}

	r := &Relation{
		name:     name,
		td:       td,
		records:  records,
		pageSize: tuple.DefaultPageSize,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.pageSize <= 0 {
		return nil, dberror.Precondition("Relation", "New", "page size must be positive, got %d", r.pageSize)
	}

	r.BaseIterator = iterator.NewBaseIterator("Relation", r.readNext)
	return r, nil
}

func (r *Relation) readNext() (*tuple.Tuple, error) {
	if r.pos >= len(r.records) {
		return nil, nil
	}
	t := r.records[r.pos]
	r.pos++
	r.pulled++
	return t, nil
}

func (r *Relation) Open() error {
	r.pos = 0
	r.MarkOpened()
	return nil
}

func (r *Relation) Rewind() error {
	if !r.IsOpened() {
		return dberror.New(dberror.ErrCategoryUser, dberror.CodeIteratorNotOpened, "rewind before open")
	}
	r.pos = 0
	r.MarkOpened()
	return nil
}

func (r *Relation) Close() error {
	r.pos = 0
	return r.BaseIterator.Close()
}

func (r *Relation) GetTupleDesc() *tuple.TupleDescription {
	return r.td
}

func (r *Relation) Name() string {
	return r.name
}

func (r *Relation) Stats() TableStats {
	rpp := r.td.RecordsPerPage(r.pageSize)
	return TableStats{
		NumRecords: len(r.records),
		NumPages:   tuple.NumPages(len(r.records), rpp),
	}
}

func (r *Relation) SortedBy() []string {
	return r.sortedBy
}

// EstimateIOCost of a scan is one read per page.
func (r *Relation) EstimateIOCost() int {
	return r.Stats().NumPages
}

// Pulled is the number of records handed out since the relation was created.
func (r *Relation) Pulled() int {
	return r.pulled
}
