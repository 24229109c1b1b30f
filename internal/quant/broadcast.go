package quant

import (
	"fmt"

	"github.com/born-ml/qops/internal/tensor"
)

// DefaultAxis is the axis used by QuantizeLinear and DequantizeLinear when the
// caller does not specify one.
const DefaultAxis = 1

// Indexer maps a linear index into a data tensor to the index of the
// scale or zero-point value that applies to it.
type Indexer func(i int) int

// scalarIndex applies the single value of a rank-0 parameter everywhere.
func scalarIndex(int) int { return 0 }

// NormalizeAxis resolves a possibly negative axis against rank.
//
//	NormalizeAxis(-1, 4) == 3
//	NormalizeAxis(4, 4)  -> ErrShape
func NormalizeAxis(axis, rank int) (int, error) {
	a := axis
	if a < 0 {
		a += rank
	}
	if a < 0 || a >= rank {
		return 0, fmt.Errorf("%w: axis %d out of range for rank %d", ErrShape, axis, rank)
	}
	return a, nil
}

// Broadcast resolves a scale or zero-point of the given shape against data.
//
// A rank-0 param applies to every element and axis is ignored. A rank-1 param
// must have exactly data[axis] entries; element i of the data then uses the
// entry selected by its coordinate along axis. Any other rank is rejected.
func Broadcast(data, param tensor.Shape, axis int) (Indexer, error) {
	switch len(param) {
	case 0:
		return scalarIndex, nil
	case 1:
		a, err := NormalizeAxis(axis, len(data))
		if err != nil {
			return nil, err
		}
		n := param[0]
		if n != data[a] {
			return nil, fmt.Errorf("%w: per-axis length %d does not match dimension %d of %v (size %d)",
				ErrShape, n, a, data, data[a])
		}
		inner := data.ComputeStrides()[a]
		return func(i int) int {
			return (i / inner) % n
		}, nil
	default:
		return nil, fmt.Errorf("%w: scale and zero-point must be a scalar or 1-D, got shape %v", ErrShape, param)
	}
}

// broadcastParam is Broadcast for an optional tensor: nil resolves to the
// scalar indexer.
func broadcastParam(data tensor.Shape, param *tensor.RawTensor, axis int, name string) (Indexer, error) {
	if param == nil {
		return scalarIndex, nil
	}
	idx, err := Broadcast(data, param.Shape(), axis)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return idx, nil
}
