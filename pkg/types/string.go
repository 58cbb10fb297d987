package types

import (
	"strings"

	"leapdb/pkg/primitives"
)

// StringField represents a bounded-length string field type in the database.
type StringField struct {
	Value   string // The string value stored in this field
	MaxSize int    // The maximum allowed size for this string field in bytes
}

// NewStringField creates a new StringField instance with the specified string value and maximum size.
// If the provided value exceeds the maximum size, it will be truncated to fit.
//
// Parameters:
//   - value: The string value to store in the field
//   - maxSize: The maximum allowed size for the string in bytes
//
// Returns:
//   - *StringField: A pointer to the newly created StringField
func NewStringField(value string, maxSize int) *StringField {
	if len(value) > maxSize {
		value = value[:maxSize]
	}

	return &StringField{
		Value:   value,
		MaxSize: maxSize,
	}
}

// CompareTo orders strings bytewise.
func (s *StringField) CompareTo(other Field) int {
	o, ok := other.(*StringField)
	if !ok {
		return compareTypes(s, other)
	}
	return strings.Compare(s.Value, o.Value)
}

func (s *StringField) Type() Type {
	return StringType
}

func (s *StringField) String() string {
	return s.Value
}

// Equals ignores MaxSize: two strings with the same contents are equal.
func (s *StringField) Equals(other Field) bool {
	o, ok := other.(*StringField)
	if !ok {
		return false
	}
	return s.Value == o.Value
}

func (s *StringField) Hash() primitives.HashCode {
	return hashString(s.Value)
}

// Length returns the fixed on-page width: the length prefix plus MaxSize bytes.
func (s *StringField) Length() uint32 {
	return uint32(4 + s.MaxSize) // #nosec G115
}
