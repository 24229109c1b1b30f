// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package quant provides integer quantization kernels compatible with the
// ONNX QuantizeLinear, DequantizeLinear and ConvInteger operators.
//
// # Quantization
//
// Affine quantization maps a real value r to an 8-bit integer q:
//
//	q = saturate(round_half_even(r / scale) + zero_point)
//	r = (q - zero_point) * scale
//
// scale and zero_point are scalars (per-tensor) or 1-D tensors broadcast
// along one axis of the data (per-axis). Results outside the target type
// saturate to its bounds.
//
// # Example Usage
//
//	x, _ := quant.FromSlice([]float32{0, 2, 3, 1000}, quant.Shape{4})
//	scale := quant.Scalar(float32(2))
//	zp := quant.Scalar(uint8(128))
//
//	q, err := quant.QuantizeLinear(x, scale, zp, quant.DefaultAxis, quant.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(q.AsUint8()) // [128 129 130 255]
//
// # Convolution
//
// [ConvInteger] runs a stride-1 2D convolution over NCHW uint8/int8 input
// and OIHW weights, accumulating (x - x_zero_point) * (w - w_zero_point)
// in int32. Padding is applied as a virtual border.
//
// # Operators
//
// [NewRegistry] returns the named operator registry used by the qops CLI.
// Kernel errors wrap [ErrShape], [ErrType], [ErrUnsupported] or
// [ErrMissingInput]; test them with errors.Is.
package quant
