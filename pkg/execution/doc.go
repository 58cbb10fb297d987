// Package execution is the root of leapdb's query execution core.
//
// The core uses the iterator (volcano) model: every operator implements
// iterator.DbIterator and pulls records from its children one at a time.
// Operators also implement operator.Operator, which adds the statistics,
// output order and I/O estimate that decide between join algorithms.
//
// # Sub-packages
//
//   - [leapdb/pkg/execution/operator] – The Operator contract and Relation,
//     an in-memory leaf that stands in for a table scan.
//   - [leapdb/pkg/execution/run]      – Paged, materialized sorted runs.
//   - [leapdb/pkg/execution/query]    – External merge sort with a B-buffer
//     budget.
//   - [leapdb/pkg/execution/join]     – Equi-joins: nested loop, hash, index
//     nested loop, leapfrog and the leapfrog trie join.
//
// # Execution flow
//
// A caller builds an operator tree bottom-up, calls Open on the root and
// drains it with HasNext/Next. Joins that need ordered input wrap their
// children in a sort unless the child already reports that order.
package execution
