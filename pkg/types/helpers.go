package types

import (
	"cmp"
	"encoding/binary"

	"github.com/cespare/xxhash/v2"

	"leapdb/pkg/primitives"
)

// compareTypes orders values of different types by their type tag.
func compareTypes(a, b Field) int {
	return cmp.Compare(a.Type(), b.Type())
}

func hashUint64(v uint64) primitives.HashCode {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	return primitives.HashCode(xxhash.Sum64(b[:]))
}

func hashString(s string) primitives.HashCode {
	return primitives.HashCode(xxhash.Sum64String(s))
}

// CompareFields is CompareTo that tolerates nil: nil sorts before every value.
func CompareFields(a, b Field) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	default:
		return a.CompareTo(b)
	}
}

// HashFields combines the hashes of several fields into one. The order of the
// fields matters.
func HashFields(fields ...Field) primitives.HashCode {
	d := xxhash.New()
	var b [8]byte
	for _, f := range fields {
		var h uint64
		if f != nil {
			h = uint64(f.Hash())
		}
		binary.BigEndian.PutUint64(b[:], h)
		_, _ = d.Write(b[:])
	}
	return primitives.HashCode(d.Sum64())
}
