package tuple

// DefaultPageSize is the page size used for record accounting when no
// configuration overrides it.
const DefaultPageSize = 4096

// RecordsPerPage returns how many tuples of this schema fit on one page.
// Each slot costs its record width plus one header bit for the slot bitmap.
// The result is at least 1 so that very wide schemas still make progress.
func (td *TupleDescription) RecordsPerPage(pageSize int) int {
	size := int(td.GetSize())
	if size == 0 || pageSize <= 0 {
		return 1
	}
	n := (pageSize * 8) / (size*8 + 1)
	if n < 1 {
		return 1
	}
	return n
}

// NumPages returns how many pages numRecords tuples occupy.
func NumPages(numRecords, recordsPerPage int) int {
	if numRecords <= 0 {
		return 0
	}
	if recordsPerPage <= 0 {
		recordsPerPage = 1
	}
	return (numRecords + recordsPerPage - 1) / recordsPerPage
}
