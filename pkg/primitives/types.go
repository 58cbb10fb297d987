package primitives

import "math"

// HashCode represents a hash value computed over one or more fields.
// Join operators use it to bucket records by their key.
type HashCode uint64

// PageNumber represents a page number within a relation or run.
type PageNumber uint64

// FrameID identifies a slot in the buffer manager's frame array.
// Frame ids are dense: a manager with N frames uses ids 0..N-1.
type FrameID uint32

// Sentinel values for invalid/unset identifiers
const (
	// InvalidFrameID marks a page that currently has no frame.
	InvalidFrameID FrameID = math.MaxUint32
)
