package types

import (
	"strconv"

	"leapdb/pkg/primitives"
)

// BoolField represents a boolean field type in the database.
// It stores a single boolean value and orders false before true.
type BoolField struct {
	Value bool // The boolean value stored in this field
}

// NewBoolField creates a new BoolField instance with the specified boolean value.
// Parameters:
//   - value: The boolean value to store in the field
//
// Returns:
//   - *BoolField: A pointer to the newly created BoolField
func NewBoolField(value bool) *BoolField {
	return &BoolField{Value: value}
}

// CompareTo returns -1, 0 or 1. Non-boolean fields are ordered by type.
func (b *BoolField) CompareTo(other Field) int {
	a, ok := other.(*BoolField)
	if !ok {
		return compareTypes(b, other)
	}
	return compareBools(b.Value, a.Value)
}

// Type returns the type identifier for this field.
//
// Returns:
//   - Type: Always returns BoolType
func (b *BoolField) Type() Type {
	return BoolType
}

// String returns "true" or "false".
func (b *BoolField) String() string {
	return strconv.FormatBool(b.Value)
}

// Equals checks if this BoolField is equal to another Field.
// Two BoolFields are equal if they have the same boolean value.
// Returns false if the other field is not a BoolField.
func (b *BoolField) Equals(other Field) bool {
	a, ok := other.(*BoolField)
	if !ok {
		return false
	}
	return b.Value == a.Value
}

// Hash computes a hash value for this BoolField.
func (b *BoolField) Hash() primitives.HashCode {
	if b.Value {
		return hashUint64(1)
	}
	return hashUint64(0)
}

// Length returns the serialized width of a boolean: one byte.
func (b *BoolField) Length() uint32 {
	return 1
}

func compareBools(x, y bool) int {
	switch {
	case x == y:
		return 0
	case !x:
		return -1
	default:
		return 1
	}
}
