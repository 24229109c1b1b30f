// Package tensor provides the tensor data model shared by the quantized operators.
package tensor

// DType is a constraint for supported tensor element types.
type DType interface {
	float32 | int8 | uint8 | int32
}

// DataType represents runtime type information for tensors.
type DataType int

// Supported data types for tensors.
const (
	Float32 DataType = iota
	Int8
	Uint8
	Int32
)

// Size returns the byte size of the data type.
func (dt DataType) Size() int {
	switch dt {
	case Float32, Int32:
		return 4
	case Int8, Uint8:
		return 1
	default:
		panic("unknown data type")
	}
}

// String returns a human-readable name for the data type.
func (dt DataType) String() string {
	switch dt {
	case Float32:
		return "float32"
	case Int8:
		return "int8"
	case Uint8:
		return "uint8"
	case Int32:
		return "int32"
	default:
		return "unknown"
	}
}

// IsQuantized reports whether values of this type are 8-bit quantized integers.
func (dt DataType) IsQuantized() bool {
	return dt == Int8 || dt == Uint8
}

// ParseDataType converts a type name such as "uint8" back to a DataType.
func ParseDataType(name string) (DataType, bool) {
	switch name {
	case "float32", "float":
		return Float32, true
	case "int8":
		return Int8, true
	case "uint8":
		return Uint8, true
	case "int32":
		return Int32, true
	default:
		return 0, false
	}
}

// DataTypeOf returns the runtime DataType for the element type T.
func DataTypeOf[T DType]() DataType {
	var dummy T
	switch any(dummy).(type) {
	case float32:
		return Float32
	case int8:
		return Int8
	case uint8:
		return Uint8
	case int32:
		return Int32
	default:
		panic("unsupported type")
	}
}
