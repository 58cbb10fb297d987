package join

import (
	"context"
	"log/slog"
	"strings"

	"github.com/pkg/errors"

	"leapdb/pkg/dberror"
	"leapdb/pkg/execution/operator"
	"leapdb/pkg/iterator"
	"leapdb/pkg/logging"
	"leapdb/pkg/metrics"
	"leapdb/pkg/tuple"
	"leapdb/pkg/types"
)

// TrieInput is one relation of a trie join and its join columns, listed in
// the shared variable order.
type TrieInput struct {
	Op      operator.Operator
	Columns []string
}

// MultiwayTrieJoin is the leapfrog trie join over two or more inputs. Each
// input is loaded into a trie keyed by its join columns. The join walks all
// tries in lockstep, one column per level: at every level the iterators
// leapfrog until they agree on a key, then descend. At the deepest level the
// cross product of the matching records of every input is emitted.
type MultiwayTrieJoin struct {
	*iterator.BaseIterator
	ctx context.Context

	inputs  []TrieInput
	colIdx  [][]int
	td      *tuple.TupleDescription
	matches *JoinMatchBuffer
	log     *slog.Logger

	iters   []*trieIterator
	loaded  bool
	started bool
	done    bool
}

// NewMultiwayTrieJoin joins inputs on their join columns, position by
// position: the i-th column of every input must be equal.
func NewMultiwayTrieJoin(inputs []TrieInput) (*MultiwayTrieJoin, error) {
	if len(inputs) < 2 {
		return nil, dberror.Precondition("TrieJoin", "New", "need at least 2 inputs, got %d", len(inputs))
	}

	width := len(inputs[0].Columns)
	var td *tuple.TupleDescription
	colIdx := make([][]int, len(inputs))
	for i, in := range inputs {
		if in.Op == nil {
			return nil, dberror.Precondition("TrieJoin", "New", "input %d is nil", i)
		}
		if len(in.Columns) == 0 || len(in.Columns) != width {
			return nil, dberror.Precondition("TrieJoin", "New",
				"every input needs %d join columns, input %d has %d", width, i, len(in.Columns))
		}
		idx, err := resolveColumns(in.Op.GetTupleDesc(), in.Columns)
		if err != nil {
			return nil, errors.Wrapf(err, "trie join input %d", i)
		}
		colIdx[i] = idx
		td = tuple.Combine(td, in.Op.GetTupleDesc())
	}

	j := &MultiwayTrieJoin{
		ctx:     context.Background(),
		inputs:  inputs,
		colIdx:  colIdx,
		td:      td,
		matches: NewJoinMatchBuffer(),
		log:     logging.WithOperator("triejoin", strings.Join(inputs[0].Columns, ",")),
	}
	j.BaseIterator = iterator.NewBaseIterator("TrieJoin", j.readNext)
	return j, nil
}

func (j *MultiwayTrieJoin) SetContext(ctx context.Context) {
	if ctx != nil {
		j.ctx = ctx
	}
}

func (j *MultiwayTrieJoin) Open() error {
	for i, in := range j.inputs {
		if err := in.Op.Open(); err != nil {
			return errors.Wrapf(err, "open trie join input %d", i)
		}
	}
	j.iters = nil
	j.loaded = false
	j.resetSearch()
	j.MarkOpened()
	return nil
}

// Rewind replays the join over the tries that are already built.
func (j *MultiwayTrieJoin) Rewind() error {
	if j.loaded {
		tries := make([]*trie, len(j.iters))
		for i, it := range j.iters {
			tries[i] = it.t
		}
		j.startIterators(tries)
	}
	j.resetSearch()
	j.MarkOpened()
	return nil
}

func (j *MultiwayTrieJoin) resetSearch() {
	j.started = false
	j.done = false
	j.matches.Reset()
}

func (j *MultiwayTrieJoin) Close() error {
	j.iters = nil
	j.loaded = false
	j.matches.Reset()

	var err error
	for _, in := range j.inputs {
		if cerr := in.Op.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	if cerr := j.BaseIterator.Close(); err == nil {
		err = cerr
	}
	return err
}

func (j *MultiwayTrieJoin) GetTupleDesc() *tuple.TupleDescription {
	return j.td
}

// load builds one trie per input. Inputs after the first empty one are not
// read at all.
func (j *MultiwayTrieJoin) load() error {
	j.loaded = true
	tries := make([]*trie, 0, len(j.inputs))
	for i, in := range j.inputs {
		records, err := iterator.Collect(in.Op)
		if err != nil {
			return errors.Wrapf(err, "materialize trie join input %d", i)
		}
		t := buildTrie(records, j.colIdx[i])
		if t.empty() {
			j.log.DebugContext(j.ctx, "empty input", "input", i)
			j.done = true
			return nil
		}
		tries = append(tries, t)
	}
	j.startIterators(tries)
	j.log.DebugContext(j.ctx, "tries built", "inputs", len(tries))
	return nil
}

func (j *MultiwayTrieJoin) startIterators(tries []*trie) {
	j.iters = make([]*trieIterator, len(tries))
	for i, t := range tries {
		j.iters[i] = newTrieIterator(t)
	}
}

func (j *MultiwayTrieJoin) readNext() (*tuple.Tuple, error) {
	if t := j.matches.Next(); t != nil {
		return j.emit(t), nil
	}
	if !j.loaded {
		if err := j.load(); err != nil {
			return nil, err
		}
	}
	if j.done || len(j.iters) < len(j.inputs) {
		return nil, nil
	}

	if err := j.search(); err != nil {
		return nil, err
	}
	if t := j.matches.Next(); t != nil {
		return j.emit(t), nil
	}
	return nil, nil
}

func (j *MultiwayTrieJoin) emit(t *tuple.Tuple) *tuple.Tuple {
	metrics.CounterJoinOutput.WithLabelValues("triejoin").Inc()
	return t
}

// search finds the next key path on which every trie agrees and buffers its
// output. On the first call it opens the first level; on later calls it
// steps past the path emitted last.
func (j *MultiwayTrieJoin) search() error {
	maxDepth := len(j.colIdx[0]) - 1

	if !j.started {
		j.started = true
		if err := j.openAll(); err != nil {
			return err
		}
	} else if err := j.iters[0].next(); err != nil {
		return err
	}

	for {
		aligned, err := j.leapfrogSearch()
		if err != nil {
			return err
		}

		if aligned {
			if j.iters[0].depth() == maxDepth {
				return j.bufferProduct()
			}
			if err := j.openAll(); err != nil {
				return err
			}
			continue
		}

		// this level is exhausted: go back up and move past the parent key
		if j.iters[0].depth() == 0 {
			j.done = true
			return nil
		}
		for _, it := range j.iters {
			if err := it.up(); err != nil {
				return err
			}
		}
		if err := j.iters[0].next(); err != nil {
			return err
		}
	}
}

func (j *MultiwayTrieJoin) openAll() error {
	for _, it := range j.iters {
		if err := it.open(); err != nil {
			return err
		}
	}
	return nil
}

// leapfrogSearch seeks every iterator to the largest current key until all
// keys are equal. It reports false once any iterator runs off its level.
func (j *MultiwayTrieJoin) leapfrogSearch() (bool, error) {
	for {
		var maxKey types.Field
		for _, it := range j.iters {
			if it.atEnd() {
				return false, nil
			}
			if maxKey == nil || types.CompareFields(it.key(), maxKey) > 0 {
				maxKey = it.key()
			}
		}

		aligned := true
		for _, it := range j.iters {
			if types.CompareFields(it.key(), maxKey) == 0 {
				continue
			}
			aligned = false
			if err := it.seek(maxKey); err != nil {
				return false, err
			}
			if it.atEnd() {
				return false, nil
			}
		}
		if aligned {
			return true, nil
		}
	}
}

// bufferProduct queues one output record for every combination of the leaf
// records under the iterators, first input varying slowest.
func (j *MultiwayTrieJoin) bufferProduct() error {
	groups := make([][]*tuple.Tuple, len(j.iters))
	total := 1
	for i, it := range j.iters {
		groups[i] = it.records()
		total *= len(groups[i])
	}

	out := make([]*tuple.Tuple, 0, total)
	pick := make([]int, len(groups))
	parts := make([]*tuple.Tuple, len(groups))
	for n := 0; n < total; n++ {
		for g := range groups {
			parts[g] = groups[g][pick[g]]
		}
		t, err := tuple.CombineWithDesc(j.td, parts...)
		if err != nil {
			return err
		}
		out = append(out, t)

		for g := len(pick) - 1; g >= 0; g-- {
			pick[g]++
			if pick[g] < len(groups[g]) {
				break
			}
			pick[g] = 0
		}
	}

	j.matches.SetMatches(out)
	return nil
}

// Stats bounds the output by the largest input.
func (j *MultiwayTrieJoin) Stats() operator.TableStats {
	var s operator.TableStats
	for _, in := range j.inputs {
		st := in.Op.Stats()
		s.NumRecords = max(s.NumRecords, st.NumRecords)
		s.NumPages = max(s.NumPages, st.NumPages)
	}
	return s
}

// SortedBy reports the order of the first input's join columns.
func (j *MultiwayTrieJoin) SortedBy() []string {
	return j.inputs[0].Columns
}

// EstimateIOCost is one scan of every input.
func (j *MultiwayTrieJoin) EstimateIOCost() int {
	cost := 0
	for _, in := range j.inputs {
		cost = saturatingAdd(cost, in.Op.EstimateIOCost())
	}
	return cost
}

// LeapfrogTrieJoin is the two-input trie join.
type LeapfrogTrieJoin struct {
	*MultiwayTrieJoin
	leftCols, rightCols []string
}

// NewLeapfrogTrieJoin joins left and right where leftCols[i] = rightCols[i]
// for every i.
func NewLeapfrogTrieJoin(left, right operator.Operator, leftCols, rightCols []string) (*LeapfrogTrieJoin, error) {
	if len(leftCols) != len(rightCols) {
		return nil, dberror.Precondition("LeapfrogTrieJoin", "New",
			"need the same number of join columns on both sides, got %d and %d", len(leftCols), len(rightCols))
	}

	mw, err := NewMultiwayTrieJoin([]TrieInput{
		{Op: left, Columns: leftCols},
		{Op: right, Columns: rightCols},
	})
	if err != nil {
		return nil, err
	}
	return &LeapfrogTrieJoin{MultiwayTrieJoin: mw, leftCols: leftCols, rightCols: rightCols}, nil
}

func (j *LeapfrogTrieJoin) LeftColumns() []string  { return j.leftCols }
func (j *LeapfrogTrieJoin) RightColumns() []string { return j.rightCols }
