package tensor

import "fmt"

// FromSlice creates a tensor holding a copy of data with the given shape.
//
// Example:
//
//	x, err := tensor.FromSlice([]uint8{0, 3, 128, 255}, tensor.Shape{4})
func FromSlice[T DType](data []T, shape Shape) (*RawTensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}
	if len(data) != shape.NumElements() {
		return nil, fmt.Errorf("data length %d does not match shape %v (%d elements)",
			len(data), shape, shape.NumElements())
	}

	raw, err := NewRaw(shape, DataTypeOf[T]())
	if err != nil {
		return nil, err
	}
	copy(Values[T](raw), data)
	return raw, nil
}

// MustFromSlice is like FromSlice but panics on error. Intended for tests
// and literal tensors whose shape is known to be valid.
func MustFromSlice[T DType](data []T, shape Shape) *RawTensor {
	raw, err := FromSlice(data, shape)
	if err != nil {
		panic(err)
	}
	return raw
}

// Scalar creates a rank-0 tensor holding v.
func Scalar[T DType](v T) *RawTensor {
	return MustFromSlice([]T{v}, Shape{})
}

// Full creates a tensor of the given shape with every element set to v.
func Full[T DType](shape Shape, v T) (*RawTensor, error) {
	raw, err := NewRaw(shape, DataTypeOf[T]())
	if err != nil {
		return nil, err
	}
	data := Values[T](raw)
	for i := range data {
		data[i] = v
	}
	return raw, nil
}

// ToFloat64 widens every element of r to float64, regardless of dtype.
func ToFloat64(r *RawTensor) []float64 {
	out := make([]float64, r.NumElements())
	switch r.DType() {
	case Float32:
		for i, v := range r.AsFloat32() {
			out[i] = float64(v)
		}
	case Int8:
		for i, v := range r.AsInt8() {
			out[i] = float64(v)
		}
	case Uint8:
		for i, v := range r.AsUint8() {
			out[i] = float64(v)
		}
	case Int32:
		for i, v := range r.AsInt32() {
			out[i] = float64(v)
		}
	}
	return out
}
