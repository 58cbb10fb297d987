package tuple

import (
	"github.com/pkg/errors"

	"leapdb/pkg/dberror"
	"leapdb/pkg/types"
)

// Builder provides a fluent interface for constructing tuples
type Builder struct {
	tuple        *Tuple
	currentIndex int
	err          error
}

// NewBuilder creates a new tuple builder with the given schema
func NewBuilder(td *TupleDescription) *Builder {
	return &Builder{tuple: NewTuple(td)}
}

// AddInt adds an integer field at the current index
func (b *Builder) AddInt(value int64) *Builder {
	return b.add(types.NewIntField(value))
}

// AddString adds a string field at the current index
func (b *Builder) AddString(value string) *Builder {
	return b.add(types.NewStringField(value, types.StringMaxSize))
}

// AddFloat adds a float field at the current index
func (b *Builder) AddFloat(value float64) *Builder {
	return b.add(types.NewFloatField(value))
}

// AddBool adds a boolean field at the current index
func (b *Builder) AddBool(value bool) *Builder {
	return b.add(types.NewBoolField(value))
}

func (b *Builder) add(f types.Field) *Builder {
	if b.err != nil {
		return b
	}
	if err := b.tuple.SetField(b.currentIndex, f); err != nil {
		b.err = errors.Wrapf(err, "field %d", b.currentIndex)
		return b
	}
	b.currentIndex++
	return b
}

// Build returns the tuple, or the first error hit while adding fields.
// Every field of the schema must have been set.
func (b *Builder) Build() (*Tuple, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.currentIndex != b.tuple.NumFields() {
		return nil, dberror.Precondition("Builder", "Build", "incomplete tuple: set %d of %d fields", b.currentIndex, b.tuple.NumFields())
	}
	return b.tuple, nil
}

// MustBuild is Build that panics on error. Intended for fixtures.
func (b *Builder) MustBuild() *Tuple {
	t, err := b.Build()
	if err != nil {
		panic(err)
	}
	return t
}
