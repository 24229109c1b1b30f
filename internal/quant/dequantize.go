package quant

import (
	"fmt"

	"github.com/born-ml/qops/internal/parallel"
	"github.com/born-ml/qops/internal/tensor"
)

// DequantizeLinear maps an 8-bit integer tensor back to float32:
//
//	y = (int32(x) - int32(zero_point)) * scale
//
// The subtraction is done in int32 so uint8 inputs below their zero-point
// produce negative values. zeroPoint must share x's type; nil means 0.
func DequantizeLinear(x, scale, zeroPoint *tensor.RawTensor, axis int, cfg parallel.Config) (*tensor.RawTensor, error) {
	if x == nil || scale == nil {
		return nil, fmt.Errorf("%w: dequantizeLinear needs x and x_scale", ErrMissingInput)
	}
	if !x.DType().IsQuantized() {
		return nil, fmt.Errorf("%w: x must be int8 or uint8, got %s", ErrType, x.DType())
	}
	if scale.DType() != tensor.Float32 {
		return nil, fmt.Errorf("%w: x_scale must be float32, got %s", ErrType, scale.DType())
	}
	if zeroPoint != nil && zeroPoint.DType() != x.DType() {
		return nil, fmt.Errorf("%w: x_zero_point is %s but x is %s", ErrType, zeroPoint.DType(), x.DType())
	}

	scaleAt, err := broadcastParam(x.Shape(), scale, axis, "x_scale")
	if err != nil {
		return nil, err
	}
	zpAt, err := broadcastParam(x.Shape(), zeroPoint, axis, "x_zero_point")
	if err != nil {
		return nil, err
	}

	if x.DType() == tensor.Int8 {
		return dequantize[int8](x, scale.AsFloat32(), scaleAt, zeroPoints[int8](zeroPoint), zpAt, cfg)
	}
	return dequantize[uint8](x, scale.AsFloat32(), scaleAt, zeroPoints[uint8](zeroPoint), zpAt, cfg)
}

func dequantize[T Quantized](x *tensor.RawTensor, scales []float32, scaleAt Indexer,
	zps []int32, zpAt Indexer, cfg parallel.Config,
) (*tensor.RawTensor, error) {
	y, err := tensor.NewRaw(x.Shape(), tensor.Float32)
	if err != nil {
		return nil, err
	}

	src := tensor.Values[T](x)
	dst := y.AsFloat32()
	parallel.For(len(src), func(i int) {
		dst[i] = float32(widen(src[i])-zps[zpAt(i)]) * scales[scaleAt(i)]
	}, cfg)
	return y, nil
}
