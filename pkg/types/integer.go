package types

import (
	"cmp"
	"strconv"

	"leapdb/pkg/primitives"
)

// IntField represents a 64-bit signed integer field
type IntField struct {
	Value int64
}

func NewIntField(value int64) *IntField {
	return &IntField{Value: value}
}

func (f *IntField) CompareTo(other Field) int {
	otherField, ok := other.(*IntField)
	if !ok {
		return compareTypes(f, other)
	}
	return cmp.Compare(f.Value, otherField.Value)
}

func (f *IntField) Type() Type {
	return IntType
}

func (f *IntField) String() string {
	return strconv.FormatInt(f.Value, 10)
}

func (f *IntField) Equals(other Field) bool {
	otherField, ok := other.(*IntField)
	if !ok {
		return false
	}
	return f.Value == otherField.Value
}

func (f *IntField) Hash() primitives.HashCode {
	return hashUint64(uint64(f.Value)) // #nosec G115
}

func (f *IntField) Length() uint32 {
	return 8
}
