// Package tensor provides the dense array type and the numeric backend
// contract used by labeled blocks.
package tensor

// DataType represents the precision an array is stored with.
//
// Values are held as float64 internally; Float32 arrays are rounded to
// float32 precision after every backend operation so that results match what
// a float32 compute backend would produce.
type DataType int

// Supported data types for arrays.
const (
	Float32 DataType = iota
	Float64
)

// Size returns the byte size of the data type.
func (dt DataType) Size() int {
	switch dt {
	case Float32:
		return 4
	case Float64:
		return 8
	default:
		panic("unknown data type")
	}
}

// String returns a human-readable name for the data type.
func (dt DataType) String() string {
	switch dt {
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	default:
		return "unknown"
	}
}

// ParseDataType converts the name produced by String back to a DataType.
func ParseDataType(s string) (DataType, bool) {
	switch s {
	case "float32":
		return Float32, true
	case "float64":
		return Float64, true
	default:
		return 0, false
	}
}

// Promote returns the wider of two data types.
func Promote(a, b DataType) DataType {
	if a == Float64 || b == Float64 {
		return Float64
	}
	return Float32
}
