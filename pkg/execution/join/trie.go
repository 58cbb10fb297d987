package join

import (
	"slices"
	"sort"

	"leapdb/pkg/dberror"
	"leapdb/pkg/tuple"
	"leapdb/pkg/types"
)

const rootNode = 0

type trieEdge struct {
	key   types.Field
	child int
}

// trieNode is one arena slot. Children are kept sorted by key. Only nodes at
// the full depth hold records.
type trieNode struct {
	parent   int
	depth    int
	children []trieEdge
	records  []*tuple.Tuple
}

// trie indexes records by the values of their join columns, one level per
// column. Nodes live in a single slice and refer to each other by index.
type trie struct {
	nodes []trieNode
	depth int
}

func buildTrie(records []*tuple.Tuple, cols []int) *trie {
	t := &trie{
		nodes: []trieNode{{parent: -1}},
		depth: len(cols),
	}
	for _, rec := range records {
		t.insert(rec, cols)
	}
	return t
}

func (t *trie) insert(rec *tuple.Tuple, cols []int) {
	node := rootNode
	for d, c := range cols {
		key := rec.Field(c)
		children := t.nodes[node].children

		i, found := sort.Find(len(children), func(i int) int {
			return types.CompareFields(key, children[i].key)
		})
		if found {
			node = children[i].child
			continue
		}

		child := len(t.nodes)
		t.nodes = append(t.nodes, trieNode{parent: node, depth: d + 1})
		t.nodes[node].children = slices.Insert(t.nodes[node].children, i, trieEdge{key: key, child: child})
		node = child
	}
	t.nodes[node].records = append(t.nodes[node].records, rec)
}

func (t *trie) empty() bool {
	return len(t.nodes[rootNode].children) == 0
}

// trieLevel is the iterator position within one node's children.
type trieLevel struct {
	node int
	pos  int
}

// trieIterator walks a trie one level at a time. At depth d it is positioned
// on a child of a node at depth d, so depth -1 means "at the root, before
// open".
type trieIterator struct {
	t      *trie
	levels []trieLevel
}

func newTrieIterator(t *trie) *trieIterator {
	return &trieIterator{t: t}
}

func (it *trieIterator) depth() int {
	return len(it.levels) - 1
}

// currentNode is the node the iterator points at: the root before the first
// open, otherwise the child under the cursor.
func (it *trieIterator) currentNode() int {
	if len(it.levels) == 0 {
		return rootNode
	}
	lv := it.levels[len(it.levels)-1]
	return it.t.nodes[lv.node].children[lv.pos].child
}

func (it *trieIterator) siblings() []trieEdge {
	lv := it.levels[len(it.levels)-1]
	return it.t.nodes[lv.node].children
}

// open descends to the first child of the current node.
func (it *trieIterator) open() error {
	if len(it.levels) > 0 && it.atEnd() {
		return dberror.Precondition("trieIterator", "open", "cannot open past the last key at depth %d", it.depth())
	}
	node := it.currentNode()
	if len(it.t.nodes[node].children) == 0 {
		return dberror.Precondition("trieIterator", "open", "node at depth %d is a leaf", it.t.nodes[node].depth)
	}
	it.levels = append(it.levels, trieLevel{node: node})
	return nil
}

// up returns to the parent level, positioned on the key it was opened from.
func (it *trieIterator) up() error {
	if len(it.levels) == 0 {
		return dberror.Precondition("trieIterator", "up", "already at the root")
	}
	it.levels = it.levels[:len(it.levels)-1]
	return nil
}

// next moves to the next sibling. Moving past the last sibling leaves the
// iterator at the end of the level; moving again is an error.
func (it *trieIterator) next() error {
	if len(it.levels) == 0 || it.atEnd() {
		return dberror.Precondition("trieIterator", "next", "no sibling after the last key")
	}
	it.levels[len(it.levels)-1].pos++
	return nil
}

// seek moves to the first remaining sibling whose key is not less than key.
func (it *trieIterator) seek(key types.Field) error {
	if len(it.levels) == 0 {
		return dberror.Precondition("trieIterator", "seek", "iterator is not open")
	}
	lv := &it.levels[len(it.levels)-1]
	rest := it.t.nodes[lv.node].children[lv.pos:]
	lv.pos += sort.Search(len(rest), func(i int) bool {
		return types.CompareFields(rest[i].key, key) >= 0
	})
	return nil
}

func (it *trieIterator) atEnd() bool {
	lv := it.levels[len(it.levels)-1]
	return lv.pos >= len(it.siblings())
}

func (it *trieIterator) key() types.Field {
	lv := it.levels[len(it.levels)-1]
	return it.siblings()[lv.pos].key
}

// records returns the records under the cursor. It is only meaningful at the
// deepest level.
func (it *trieIterator) records() []*tuple.Tuple {
	return it.t.nodes[it.currentNode()].records
}
