package types

import "leapdb/pkg/primitives"

// Field is a single typed value inside a tuple.
//
// CompareTo defines the total order used by sorting and joins. Values of the
// same type compare by value; values of different types compare by their Type
// so that a mixed column still sorts deterministically.
type Field interface {
	Type() Type

	String() string

	Equals(other Field) bool

	CompareTo(other Field) int

	Hash() primitives.HashCode

	Length() uint32
}
