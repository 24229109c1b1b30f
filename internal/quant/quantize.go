package quant

import (
	"fmt"
	"math"

	"github.com/born-ml/qops/internal/parallel"
	"github.com/born-ml/qops/internal/tensor"
)

// QuantizeLinear maps a float32 tensor to 8-bit integers:
//
//	y = saturate(round_half_even(x / scale) + zero_point)
//
// scale and zeroPoint are scalars or 1-D tensors broadcast along axis
// (negative values count from the end). The output element type is the
// zero-point's type; a nil zeroPoint means a uint8 zero-point of 0.
// Out-of-range values saturate to the type bounds, NaN maps to the
// zero-point.
func QuantizeLinear(x, scale, zeroPoint *tensor.RawTensor, axis int, cfg parallel.Config) (*tensor.RawTensor, error) {
	if x == nil || scale == nil {
		return nil, fmt.Errorf("%w: quantizeLinear needs x and y_scale", ErrMissingInput)
	}
	if x.DType() != tensor.Float32 {
		return nil, fmt.Errorf("%w: x must be float32, got %s", ErrType, x.DType())
	}
	if scale.DType() != tensor.Float32 {
		return nil, fmt.Errorf("%w: y_scale must be float32, got %s", ErrType, scale.DType())
	}

	scaleAt, err := broadcastParam(x.Shape(), scale, axis, "y_scale")
	if err != nil {
		return nil, err
	}
	zpAt, err := broadcastParam(x.Shape(), zeroPoint, axis, "y_zero_point")
	if err != nil {
		return nil, err
	}

	out := tensor.Uint8
	if zeroPoint != nil {
		out = zeroPoint.DType()
	}
	switch out {
	case tensor.Uint8:
		return quantize[uint8](x, scale.AsFloat32(), scaleAt, zeroPoints[uint8](zeroPoint), zpAt, cfg)
	case tensor.Int8:
		return quantize[int8](x, scale.AsFloat32(), scaleAt, zeroPoints[int8](zeroPoint), zpAt, cfg)
	default:
		return nil, fmt.Errorf("%w: y_zero_point must be int8 or uint8, got %s", ErrType, out)
	}
}

func quantize[T Quantized](x *tensor.RawTensor, scales []float32, scaleAt Indexer,
	zps []int32, zpAt Indexer, cfg parallel.Config,
) (*tensor.RawTensor, error) {
	y, err := tensor.NewRaw(x.Shape(), tensor.DataTypeOf[T]())
	if err != nil {
		return nil, err
	}

	src := x.AsFloat32()
	dst := tensor.Values[T](y)
	bounds := rangeOf[T]()
	parallel.For(len(src), func(i int) {
		dst[i] = quantizeValue[T](src[i], scales[scaleAt(i)], zps[zpAt(i)], bounds)
	}, cfg)
	return y, nil
}

// quantizeValue quantizes a single element. Rounding happens before the
// zero-point is added so ties break on the scaled value.
func quantizeValue[T Quantized](v, scale float32, zp int32, bounds span) T {
	q := v / scale
	if q != q { // NaN
		return saturate[T](float64(zp), bounds)
	}
	return saturate[T](math.RoundToEven(float64(q))+float64(zp), bounds)
}
