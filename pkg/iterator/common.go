package iterator

import (
	"errors"

	"leapdb/pkg/tuple"
)

// Iterate drives iter to completion, handing each tuple to processFunc.
// processFunc controls the loop:
//   - (true, nil) continues
//   - (false, nil) stops early without error
//   - (_, err) stops and returns err
func Iterate(iter TupleIterator, processFunc func(*tuple.Tuple) (continueLooping bool, err error)) error {
	for {
		hasNext, err := iter.HasNext()
		if err != nil {
			return err
		}
		if !hasNext {
			return nil
		}

		tup, err := iter.Next()
		if err != nil {
			return err
		}

		ok, err := processFunc(tup)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
	}
}

// FetchNext pulls one tuple from a child, hiding the HasNext/Next ceremony.
// It returns nil, nil at the end of the stream.
func FetchNext(child TupleIterator) (*tuple.Tuple, error) {
	hasNext, err := child.HasNext()
	if err != nil || !hasNext {
		return nil, err
	}
	return child.Next()
}

// ForEach applies processFunc to every remaining tuple.
func ForEach(iter TupleIterator, processFunc func(*tuple.Tuple) error) error {
	return Iterate(iter, func(tup *tuple.Tuple) (bool, error) {
		return true, processFunc(tup)
	})
}

// Take returns up to n tuples from the iterator.
func Take(iter TupleIterator, n int) ([]*tuple.Tuple, error) {
	if n <= 0 {
		return nil, nil
	}
	tuples := make([]*tuple.Tuple, 0, n)

	err := Iterate(iter, func(tup *tuple.Tuple) (bool, error) {
		tuples = append(tuples, tup)
		return len(tuples) < n, nil
	})

	return tuples, err
}

// Count consumes the iterator and returns the number of tuples it produced.
func Count(iter TupleIterator) (int, error) {
	n := 0
	err := Iterate(iter, func(*tuple.Tuple) (bool, error) {
		n++
		return true, nil
	})
	return n, err
}

// Collect consumes the iterator and returns every remaining tuple.
func Collect(iter TupleIterator) ([]*tuple.Tuple, error) {
	var results []*tuple.Tuple

	err := ForEach(iter, func(tup *tuple.Tuple) error {
		results = append(results, tup)
		return nil
	})

	return results, err
}

// Drain opens it, collects every tuple and closes it again. The close error is
// reported only if collection itself succeeded.
func Drain(it DbIterator) (tuples []*tuple.Tuple, err error) {
	if err := it.Open(); err != nil {
		return nil, err
	}
	defer func() {
		err = errors.Join(err, it.Close())
		if err != nil {
			tuples = nil
		}
	}()

	return Collect(it)
}
