package tuple

import (
	"strings"

	"leapdb/pkg/dberror"
	"leapdb/pkg/types"
)

// Tuple represents a row of data. Operators treat tuples as immutable once
// they have been handed downstream; joins build new tuples rather than
// editing their inputs.
type Tuple struct {
	TupleDesc *TupleDescription // Schema of this tuple
	fields    []types.Field     // The actual field values
}

// NewTuple creates a new tuple with the given schema
func NewTuple(td *TupleDescription) *Tuple {
	return &Tuple{
		TupleDesc: td,
		fields:    make([]types.Field, td.NumFields()),
	}
}

// FromFields builds a tuple and sets every field in order.
func FromFields(td *TupleDescription, fields ...types.Field) (*Tuple, error) {
	if len(fields) != td.NumFields() {
		return nil, dberror.Precondition("Tuple", "FromFields", "expected %d fields, got %d", td.NumFields(), len(fields))
	}

	t := NewTuple(td)
	for i, f := range fields {
		if err := t.SetField(i, f); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func (t *Tuple) SetField(i int, field types.Field) error {
	if i < 0 || i >= len(t.fields) {
		return dberror.Precondition("Tuple", "SetField", "field index %d out of bounds [0, %d)", i, len(t.fields))
	}

	expectedType, _ := t.TupleDesc.TypeAtIndex(i)
	if field.Type() != expectedType {
		return dberror.Newf(dberror.ErrCategoryUser, dberror.CodeTypeMismatch,
			"field %d: expected %v, got %v", i, expectedType, field.Type())
	}

	t.fields[i] = field
	return nil
}

// GetField returns the value of the ith field
func (t *Tuple) GetField(i int) (types.Field, error) {
	if i < 0 || i >= len(t.fields) {
		return nil, dberror.Precondition("Tuple", "GetField", "field index %d out of bounds [0, %d)", i, len(t.fields))
	}
	return t.fields[i], nil
}

// Field is GetField for callers that have already resolved i against the schema.
// It panics on an out-of-range index.
func (t *Tuple) Field(i int) types.Field {
	return t.fields[i]
}

// NumFields returns the width of the tuple.
func (t *Tuple) NumFields() int {
	return len(t.fields)
}

// CompareField compares field i of t with field j of other using the total order.
func (t *Tuple) CompareField(i int, other *Tuple, j int) int {
	return types.CompareFields(t.fields[i], other.fields[j])
}

// Equals reports whether both tuples hold equal values in every position.
// Schemas are not compared.
func (t *Tuple) Equals(other *Tuple) bool {
	if other == nil || len(t.fields) != len(other.fields) {
		return false
	}
	for i, f := range t.fields {
		o := other.fields[i]
		if f == nil || o == nil {
			if f != o {
				return false
			}
			continue
		}
		if !f.Equals(o) {
			return false
		}
	}
	return true
}

// String returns a string representation of this tuple
// Format: field1\tfield2\tfield3\t...\tfieldN\n
func (t *Tuple) String() string {
	var parts []string
	for _, field := range t.fields {
		if field != nil {
			parts = append(parts, field.String())
		} else {
			parts = append(parts, "null")
		}
	}
	return strings.Join(parts, "\t") + "\n"
}

// CombineTuples concatenates two tuples: the fields of t1 followed by the fields of t2.
func CombineTuples(t1, t2 *Tuple) (*Tuple, error) {
	if t1 == nil || t2 == nil {
		return nil, dberror.Precondition("Tuple", "Combine", "cannot combine nil tuples")
	}
	return CombineWithDesc(Combine(t1.TupleDesc, t2.TupleDesc), t1, t2)
}

// CombineWithDesc concatenates any number of tuples under a precomputed schema.
// Joins compute their output schema once and call this per output row.
func CombineWithDesc(td *TupleDescription, parts ...*Tuple) (*Tuple, error) {
	out := NewTuple(td)
	offset := 0
	for _, p := range parts {
		if p == nil {
			return nil, dberror.Precondition("Tuple", "Combine", "cannot combine nil tuples")
		}
		if offset+len(p.fields) > len(out.fields) {
			return nil, dberror.Precondition("Tuple", "Combine", "combined width exceeds schema width %d", len(out.fields))
		}
		copy(out.fields[offset:], p.fields)
		offset += len(p.fields)
	}
	if offset != len(out.fields) {
		return nil, dberror.Precondition("Tuple", "Combine", "combined width %d does not match schema width %d", offset, len(out.fields))
	}
	return out, nil
}

// Clone creates a copy of this tuple. Field values are shared; they are immutable.
func (t *Tuple) Clone() *Tuple {
	newTup := NewTuple(t.TupleDesc)
	copy(newTup.fields, t.fields)
	return newTup
}
