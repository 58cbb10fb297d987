package types

// Type is the declared type of a column.
type Type int

const (
	IntType Type = iota
	StringType
	BoolType
	FloatType
)

// StringMaxSize defines the default maximum size for string fields in bytes.
const StringMaxSize = 256

// String returns a string representation of the type
func (t Type) String() string {
	switch t {
	case IntType:
		return "INT_TYPE"
	case StringType:
		return "STRING_TYPE"
	case BoolType:
		return "BOOL_TYPE"
	case FloatType:
		return "FLOAT_TYPE"
	default:
		return "UNKNOWN_TYPE"
	}
}

// Size returns the fixed on-page width of a value of this type in bytes.
// Strings are stored as a 4-byte length prefix followed by StringMaxSize bytes.
func (t Type) Size() uint32 {
	switch t {
	case IntType, FloatType:
		return 8
	case BoolType:
		return 1
	case StringType:
		return 4 + StringMaxSize
	default:
		return 0
	}
}
