package tuple

import (
	"fmt"
	"strings"

	"leapdb/pkg/dberror"
	"leapdb/pkg/types"
)

// TupleDescription describes the schema of a tuple: the type and name of each
// field, in order. Names may be qualified ("orders.id") or bare ("id").
type TupleDescription struct {
	// Types contains the data type of each field in order
	Types []types.Type
	// FieldNames contains the name of each field (optional, may be nil)
	FieldNames []string
}

// NewTupleDesc creates a new TupleDescription given field types and optional field names.
//
// Parameters:
//   - fieldTypes: slice of field types (must contain at least one element)
//   - fieldNames: optional slice of field names (must match fieldTypes length if provided)
//
// Returns:
//   - *TupleDescription: newly created tuple descriptor
//   - error: if fieldTypes is empty or fieldNames length doesn't match fieldTypes length
func NewTupleDesc(fieldTypes []types.Type, fieldNames []string) (*TupleDescription, error) {
	if len(fieldTypes) < 1 {
		return nil, dberror.Precondition("TupleDescription", "New", "must provide at least one field type")
	}

	typesCopy := make([]types.Type, len(fieldTypes))
	copy(typesCopy, fieldTypes)

	var namesCopy []string
	if fieldNames != nil {
		if len(fieldNames) != len(fieldTypes) {
			return nil, dberror.Precondition("TupleDescription", "New", "field names length (%d) must match field types length (%d)",
				len(fieldNames), len(fieldTypes))
		}
		namesCopy = make([]string, len(fieldNames))
		copy(namesCopy, fieldNames)
	}

	return &TupleDescription{
		Types:      typesCopy,
		FieldNames: namesCopy,
	}, nil
}

// NumFields returns the number of fields in this tuple descriptor.
func (td *TupleDescription) NumFields() int {
	return len(td.Types)
}

// GetFieldName returns the name of the ith field, or "" if the schema has no names.
func (td *TupleDescription) GetFieldName(i int) (string, error) {
	if i < 0 || i >= len(td.Types) {
		return "", dberror.Precondition("TupleDescription", "GetFieldName", "field index %d out of bounds [0, %d)", i, len(td.Types))
	}

	if td.FieldNames == nil {
		return "", nil
	}

	return td.FieldNames[i], nil
}

// TypeAtIndex returns the type of the ith field.
func (td *TupleDescription) TypeAtIndex(i int) (types.Type, error) {
	if i < 0 || i >= len(td.Types) {
		return 0, dberror.Precondition("TupleDescription", "TypeAtIndex", "field index %d out of bounds [0, %d)", i, len(td.Types))
	}
	return td.Types[i], nil
}

// GetSize returns the size in bytes of tuples corresponding to this TupleDescription.
// This is the sum of all field type sizes.
func (td *TupleDescription) GetSize() uint32 {
	var size uint32
	for _, fieldType := range td.Types {
		size += fieldType.Size()
	}
	return size
}

// Equals checks if two TupleDescriptions have the same field types in the same order.
// Field names are not compared.
func (td *TupleDescription) Equals(other *TupleDescription) bool {
	if other == nil {
		return false
	}

	if len(td.Types) != len(other.Types) {
		return false
	}

	for i, fieldType := range td.Types {
		if fieldType != other.Types[i] {
			return false
		}
	}
	return true
}

// String returns a string representation of this TupleDescription.
// Format: "Type1(fieldName1),Type2(fieldName2),..."
// If a field has no name, "null" is used as the name.
func (td *TupleDescription) String() string {
	var parts []string

	for i, fieldType := range td.Types {
		fieldName := "null"
		if td.FieldNames != nil && i < len(td.FieldNames) {
			fieldName = td.FieldNames[i]
		}
		parts = append(parts, fmt.Sprintf("%s(%s)", fieldType.String(), fieldName))
	}

	return strings.Join(parts, ",")
}

// FindFieldIndex locates a field by name. Resolution tries, in order:
//  1. an exact match,
//  2. the bare column of a qualified lookup ("t.id" finds a field named "id"),
//  3. a qualified field whose column part equals a bare lookup ("id" finds "t.id").
//
// Steps 2 and 3 fail with a COLUMN_NOT_FOUND error when more than one field matches.
func (td *TupleDescription) FindFieldIndex(fieldName string) (int, error) {
	if fieldName == "" {
		return -1, td.columnNotFound(fieldName)
	}

	for i, name := range td.FieldNames {
		if name == fieldName {
			return i, nil
		}
	}

	lookupCol := columnPart(fieldName)
	qualified := lookupCol != fieldName

	found := -1
	for i, name := range td.FieldNames {
		var ok bool
		if qualified {
			ok = name == lookupCol
		} else {
			ok = columnPart(name) == fieldName
		}
		if !ok {
			continue
		}
		if found >= 0 {
			return -1, td.columnNotFound(fieldName).
				WithHint(fmt.Sprintf("%q is ambiguous; qualify it with a table name", fieldName))
		}
		found = i
	}

	if found < 0 {
		return -1, td.columnNotFound(fieldName)
	}
	return found, nil
}

// MatchFieldName returns the stored name of the field that fieldName resolves to.
func (td *TupleDescription) MatchFieldName(fieldName string) (string, error) {
	i, err := td.FindFieldIndex(fieldName)
	if err != nil {
		return "", err
	}
	return td.FieldNames[i], nil
}

func (td *TupleDescription) columnNotFound(fieldName string) *dberror.DBError {
	err := dberror.Newf(dberror.ErrCategoryUser, dberror.CodeColumnNotFound, "column %s not found", fieldName)
	err.Component = "TupleDescription"
	err.Operation = "FindFieldIndex"
	return err.WithDetail("schema is %s", td.String())
}

func columnPart(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[i+1:]
	}
	return name
}

// Combine merges two TupleDescriptions into one.
// The resulting descriptor contains all fields from td1 followed by all fields from td2.
// If either descriptor is nil, returns the other descriptor.
func Combine(td1, td2 *TupleDescription) *TupleDescription {
	if td1 == nil && td2 == nil {
		return nil
	}
	if td1 == nil {
		return td2
	}
	if td2 == nil {
		return td1
	}

	combinedTypes := make([]types.Type, 0, len(td1.Types)+len(td2.Types))
	combinedTypes = append(combinedTypes, td1.Types...)
	combinedTypes = append(combinedTypes, td2.Types...)

	var combinedNames []string
	if td1.FieldNames != nil || td2.FieldNames != nil {
		combinedNames = make([]string, 0, len(combinedTypes))
		combinedNames = append(combinedNames, namesOrBlank(td1)...)
		combinedNames = append(combinedNames, namesOrBlank(td2)...)
	}

	return &TupleDescription{
		Types:      combinedTypes,
		FieldNames: combinedNames,
	}
}

func namesOrBlank(td *TupleDescription) []string {
	if td.FieldNames != nil {
		return td.FieldNames
	}
	return make([]string, len(td.Types))
}
