package query

import "leapdb/pkg/tuple"

type mergeItem struct {
	record *tuple.Tuple
	run    int
}

// mergeQueue is a min-heap of the head records of the runs being merged.
// Equal records pop in run order, which keeps the merge stable.
type mergeQueue struct {
	items   []mergeItem
	compare RecordComparator
}

func (q *mergeQueue) Len() int { return len(q.items) }

func (q *mergeQueue) Less(i, j int) bool {
	if c := q.compare(q.items[i].record, q.items[j].record); c != 0 {
		return c < 0
	}
	return q.items[i].run < q.items[j].run
}

func (q *mergeQueue) Swap(i, j int) { q.items[i], q.items[j] = q.items[j], q.items[i] }

func (q *mergeQueue) Push(x any) { q.items = append(q.items, x.(mergeItem)) }

func (q *mergeQueue) Pop() any {
	n := len(q.items)
	item := q.items[n-1]
	q.items[n-1] = mergeItem{}
	q.items = q.items[:n-1]
	return item
}
