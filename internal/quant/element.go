package quant

import (
	"math"

	"github.com/born-ml/qops/internal/tensor"
)

// Quantized is the closed set of 8-bit element types a quantized tensor may hold.
type Quantized interface {
	int8 | uint8
}

// span is the representable range of a Quantized type, widened to float64.
type span struct {
	lo, hi float64
}

// rangeOf returns the representable range of T.
func rangeOf[T Quantized]() span {
	var zero T
	if _, ok := any(zero).(int8); ok {
		return span{lo: math.MinInt8, hi: math.MaxInt8}
	}
	return span{lo: 0, hi: math.MaxUint8}
}

// widen converts a quantized value to the extended signed domain used for
// zero-point arithmetic.
func widen[T Quantized](v T) int32 {
	return int32(v)
}

// saturate clamps v into s and truncates it to T. v must not be NaN.
func saturate[T Quantized](v float64, s span) T {
	switch {
	case v < s.lo:
		v = s.lo
	case v > s.hi:
		v = s.hi
	}
	return T(v)
}

// widenAll converts a whole quantized buffer to int32.
func widenAll[T Quantized](vs []T) []int32 {
	out := make([]int32, len(vs))
	for i, v := range vs {
		out[i] = widen(v)
	}
	return out
}

// zeroPoints returns the zero-point values of zp widened to int32, or a single
// zero when zp is absent. zp must already be known to hold T.
func zeroPoints[T Quantized](zp *tensor.RawTensor) []int32 {
	if zp == nil {
		return []int32{0}
	}
	return widenAll(tensor.Values[T](zp))
}
