package types

import (
	"cmp"
	"math"
	"strconv"

	"leapdb/pkg/primitives"
)

// FloatField represents a 64-bit floating point field.
//
// Ordering follows cmp.Compare: NaN sorts before every other value and is
// equal to itself, which keeps sorting total even for NaN-bearing columns.
type FloatField struct {
	Value float64
}

// NewFloatField creates a new FloatField with the given value.
func NewFloatField(value float64) *FloatField {
	return &FloatField{Value: value}
}

func (f *FloatField) CompareTo(other Field) int {
	otherField, ok := other.(*FloatField)
	if !ok {
		return compareTypes(f, other)
	}
	return cmp.Compare(f.Value, otherField.Value)
}

func (f *FloatField) Type() Type {
	return FloatType
}

func (f *FloatField) String() string {
	return strconv.FormatFloat(f.Value, 'g', -1, 64)
}

// Equals uses the CompareTo order, so two NaNs are equal.
func (f *FloatField) Equals(other Field) bool {
	otherField, ok := other.(*FloatField)
	if !ok {
		return false
	}
	return cmp.Compare(f.Value, otherField.Value) == 0
}

// Hash normalizes -0 to 0 so that equal values hash alike.
func (f *FloatField) Hash() primitives.HashCode {
	v := f.Value
	if v == 0 {
		v = 0
	}
	return hashUint64(math.Float64bits(v))
}

func (f *FloatField) Length() uint32 {
	return 8
}
