// Package run holds the intermediate record sequences produced by blocking
// operators such as the external sort.
package run

import (
	"leapdb/pkg/dberror"
	"leapdb/pkg/iterator"
	"leapdb/pkg/tuple"
)

// Run is an append-only sequence of records grouped into fixed-capacity pages.
// Records are appended during a build phase and read back any number of times
// through RunIterator.
type Run struct {
	td             *tuple.TupleDescription
	recordsPerPage int
	pages          [][]*tuple.Tuple
	numRecords     int
}

// NewRun creates an empty run whose pages hold recordsPerPage records.
func NewRun(td *tuple.TupleDescription, recordsPerPage int) *Run {
	if recordsPerPage < 1 {
		recordsPerPage = 1
	}
	return &Run{td: td, recordsPerPage: recordsPerPage}
}

// FromRecords builds a run holding records in order.
func FromRecords(td *tuple.TupleDescription, recordsPerPage int, records []*tuple.Tuple) *Run {
	r := NewRun(td, recordsPerPage)
	for _, rec := range records {
		_ = r.Add(rec)
	}
	return r
}

// Add appends a record, starting a new page when the last one is full.
func (r *Run) Add(rec *tuple.Tuple) error {
	if rec == nil {
		return dberror.Precondition("Run", "Add", "nil record")
	}

	last := len(r.pages) - 1
	if last < 0 || len(r.pages[last]) == r.recordsPerPage {
		r.pages = append(r.pages, make([]*tuple.Tuple, 0, r.recordsPerPage))
		last++
	}
	r.pages[last] = append(r.pages[last], rec)
	r.numRecords++
	return nil
}

func (r *Run) Len() int { return r.numRecords }

func (r *Run) NumPages() int { return len(r.pages) }

func (r *Run) RecordsPerPage() int { return r.recordsPerPage }

func (r *Run) TupleDesc() *tuple.TupleDescription { return r.td }

// Records returns every record in order as a new slice.
func (r *Run) Records() []*tuple.Tuple {
	out := make([]*tuple.Tuple, 0, r.numRecords)
	for _, p := range r.pages {
		out = append(out, p...)
	}
	return out
}

// Iterator returns an opened iterator positioned at the first record.
func (r *Run) Iterator() *RunIterator {
	it := NewRunIterator(r)
	_ = it.Open()
	return it
}

// RunIterator reads a run page by page. It sees the records that were in the
// run when it was opened or last rewound.
type RunIterator struct {
	*iterator.BaseIterator
	run     *Run
	page    int
	slot    int
	remains int
}

// NewRunIterator returns an iterator over r. It must be opened before use.
func NewRunIterator(r *Run) *RunIterator {
	it := &RunIterator{run: r}
	it.BaseIterator = iterator.NewBaseIterator("RunIterator", it.readNext)
	return it
}

func (it *RunIterator) readNext() (*tuple.Tuple, error) {
	if it.remains == 0 {
		return nil, nil
	}
	for it.slot >= len(it.run.pages[it.page]) {
		it.page++
		it.slot = 0
	}
	rec := it.run.pages[it.page][it.slot]
	it.slot++
	it.remains--
	return rec, nil
}

func (it *RunIterator) reset() {
	it.page, it.slot = 0, 0
	it.remains = it.run.numRecords
	it.MarkOpened()
}

func (it *RunIterator) Open() error {
	it.reset()
	return nil
}

func (it *RunIterator) Rewind() error {
	it.reset()
	return nil
}

func (it *RunIterator) GetTupleDesc() *tuple.TupleDescription {
	return it.run.td
}
