package query

import (
	"container/heap"
	"log/slog"
	"math"
	"slices"

	"github.com/pkg/errors"

	"leapdb/pkg/dberror"
	"leapdb/pkg/execution/operator"
	"leapdb/pkg/execution/run"
	"leapdb/pkg/iterator"
	"leapdb/pkg/logging"
	"leapdb/pkg/metrics"
	"leapdb/pkg/tuple"
)

// RecordComparator orders two records. It returns a negative number when a
// sorts first, zero when they are equal and a positive number otherwise.
type RecordComparator func(a, b *tuple.Tuple) int

// SortOption configures a SortOperator.
type SortOption func(*SortOperator)

// WithRecordsPerPage overrides the page capacity derived from the schema.
func WithRecordsPerPage(n int) SortOption {
	return func(s *SortOperator) {
		if n > 0 {
			s.recordsPerPage = n
		}
	}
}

// WithComparator orders records with cmp instead of by the sort column alone.
func WithComparator(cmp RecordComparator) SortOption {
	return func(s *SortOperator) {
		if cmp != nil {
			s.compare = cmp
		}
	}
}

// SortOperator is an external merge sort over its source.
//
// Pass 0 reads the source buffers pages at a time and sorts each block in
// memory into a run. Every later pass merges groups of buffers-1 runs, with
// one buffer left for output, until a single run remains. The sorted run is
// cached; reopening or rewinding the operator replays it without touching the
// source again.
type SortOperator struct {
	*iterator.BaseIterator
	source         operator.Operator
	column         string
	col            int
	buffers        int
	recordsPerPage int
	compare        RecordComparator

	sorted   *run.Run
	cursor   *run.RunIterator
	passes   int
	maxQueue int
	log      *slog.Logger
}

// NewSortOperator sorts source on column using buffers pages of memory.
func NewSortOperator(source operator.Operator, column string, buffers int, opts ...SortOption) (*SortOperator, error) {
	if source == nil {
		return nil, dberror.Precondition("SortOperator", "New", "source operator cannot be nil")
	}
	if buffers < 2 {
		return nil, dberror.Precondition("SortOperator", "New", "external sort needs at least 2 buffers, got %d", buffers)
	}

	td := source.GetTupleDesc()
	col, err := td.FindFieldIndex(column)
	if err != nil {
		return nil, errors.Wrapf(err, "sort column %q", column)
	}

	s := &SortOperator{
		source:         source,
		column:         column,
		col:            col,
		buffers:        buffers,
		recordsPerPage: td.RecordsPerPage(tuple.DefaultPageSize),
		log:            logging.WithOperator("sort", column),
	}
	s.compare = func(a, b *tuple.Tuple) int {
		return a.CompareField(col, b, col)
	}
	for _, opt := range opts {
		opt(s)
	}

	s.BaseIterator = iterator.NewBaseIterator("SortOperator", s.readNext)
	return s, nil
}

func (s *SortOperator) readNext() (*tuple.Tuple, error) {
	if s.cursor == nil {
		sorted, err := s.Sort()
		if err != nil {
			return nil, err
		}
		s.cursor = sorted.Iterator()
	}
	return iterator.FetchNext(s.cursor)
}

// Open prepares the operator. Sorting happens on the first pull.
func (s *SortOperator) Open() error {
	s.cursor = nil
	s.MarkOpened()
	return nil
}

func (s *SortOperator) Rewind() error {
	return s.Open()
}

// Close releases the read cursor. The sorted run stays cached.
func (s *SortOperator) Close() error {
	s.cursor = nil
	return s.BaseIterator.Close()
}

func (s *SortOperator) GetTupleDesc() *tuple.TupleDescription {
	return s.source.GetTupleDesc()
}

func (s *SortOperator) Stats() operator.TableStats {
	return s.source.Stats()
}

func (s *SortOperator) SortedBy() []string {
	return []string{s.column}
}

// EstimateIOCost charges a read and a write of every page per pass, plus the
// cost of producing the source.
func (s *SortOperator) EstimateIOCost() int {
	sourceCost := s.source.EstimateIOCost()
	n := float64(s.source.Stats().NumPages)
	if n == 0 {
		return sourceCost
	}

	b := float64(s.buffers)
	pass0Runs := math.Ceil(n / b)
	if b-1 < 2 {
		// log(1)/log(1) is NaN and truncates to a zero sort cost
		if pass0Runs == 1 {
			return sourceCost
		}
		return math.MaxInt
	}
	numPasses := 1 + math.Ceil(math.Log(pass0Runs)/math.Log(b-1))
	return int(2*n*numPasses) + sourceCost
}

// SortRun sorts records in memory into a new run. Records with equal keys
// keep their input order.
func (s *SortOperator) SortRun(records []*tuple.Tuple) (*run.Run, error) {
	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, s.compare)
	return run.FromRecords(s.GetTupleDesc(), s.recordsPerPage, sorted), nil
}

// MergeSortedRuns merges at most buffers-1 sorted runs into one. The priority
// queue holds one record per input run at any time.
func (s *SortOperator) MergeSortedRuns(runs []*run.Run) (*run.Run, error) {
	if len(runs) > s.buffers-1 {
		return nil, dberror.Precondition("SortOperator", "MergeSortedRuns",
			"cannot merge %d runs with %d buffers", len(runs), s.buffers)
	}

	out := run.NewRun(s.GetTupleDesc(), s.recordsPerPage)
	cursors := make([]*run.RunIterator, len(runs))
	pq := &mergeQueue{compare: s.compare}

	for i, r := range runs {
		cursors[i] = r.Iterator()
		if err := s.pushFrom(pq, cursors[i], i); err != nil {
			return nil, err
		}
	}

	for pq.Len() > 0 {
		top := heap.Pop(pq).(mergeItem)
		if err := out.Add(top.record); err != nil {
			return nil, err
		}
		if err := s.pushFrom(pq, cursors[top.run], top.run); err != nil {
			return nil, err
		}
	}

	metrics.HistogramSortMergeFanIn.Observe(float64(len(runs)))
	return out, nil
}

func (s *SortOperator) pushFrom(pq *mergeQueue, cursor *run.RunIterator, runIdx int) error {
	rec, err := iterator.FetchNext(cursor)
	if err != nil || rec == nil {
		return err
	}
	heap.Push(pq, mergeItem{record: rec, run: runIdx})
	s.maxQueue = max(s.maxQueue, pq.Len())
	return nil
}

// MergePass merges runs in groups of buffers-1. The last group may be smaller.
func (s *SortOperator) MergePass(runs []*run.Run) ([]*run.Run, error) {
	fanIn := s.buffers - 1
	merged := make([]*run.Run, 0, (len(runs)+fanIn-1)/fanIn)

	for group := range slices.Chunk(runs, fanIn) {
		r, err := s.MergeSortedRuns(group)
		if err != nil {
			return nil, err
		}
		merged = append(merged, r)
	}

	metrics.CounterSortMergePasses.Inc()
	return merged, nil
}

// Sort returns the fully sorted source. The first call reads and sorts the
// source; later calls return the cached run.
func (s *SortOperator) Sort() (sorted *run.Run, err error) {
	if s.sorted != nil {
		return s.sorted, nil
	}

	if err := s.source.Open(); err != nil {
		return nil, errors.Wrap(err, "open sort source")
	}
	defer func() {
		if cerr := s.source.Close(); cerr != nil && err == nil {
			sorted, err = nil, errors.Wrap(cerr, "close sort source")
		}
	}()

	runs, err := s.generateRuns()
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		s.passes = 0
		s.sorted = run.NewRun(s.GetTupleDesc(), s.recordsPerPage)
		return s.sorted, nil
	}
	if len(runs) > 1 && s.buffers-1 < 2 {
		return nil, dberror.ResourceExhausted("SortOperator", "Sort",
			"2 buffers cannot merge more than one run")
	}

	passes := 0
	for len(runs) > 1 {
		passes++
		s.log.Debug("merge pass", "pass", passes, "runs", len(runs))
		if runs, err = s.MergePass(runs); err != nil {
			return nil, errors.Wrapf(err, "merge pass %d", passes)
		}
	}

	s.passes = passes
	s.sorted = runs[0]
	s.log.Debug("sorted", "records", s.sorted.Len(), "passes", passes)
	return s.sorted, nil
}

// generateRuns is pass 0: sorted runs of at most buffers pages each.
func (s *SortOperator) generateRuns() ([]*run.Run, error) {
	blockSize := s.buffers * s.recordsPerPage
	var runs []*run.Run
	for {
		block, err := operator.NextBlock(s.source, blockSize)
		if err != nil {
			return nil, errors.Wrap(err, "read sort block")
		}
		if len(block) == 0 {
			return runs, nil
		}

		r, err := s.SortRun(block)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
		metrics.CounterSortRuns.Inc()
	}
}

// Passes is the number of merge passes the last Sort performed.
func (s *SortOperator) Passes() int {
	return s.passes
}

// MaxQueueSize is the largest priority queue any merge has held.
func (s *SortOperator) MaxQueueSize() int {
	return s.maxQueue
}

func (s *SortOperator) RecordsPerPage() int {
	return s.recordsPerPage
}
