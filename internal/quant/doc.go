// Package quant implements the integer kernels behind the quantized ONNX
// operators: affine QuantizeLinear / DequantizeLinear with scalar or per-axis
// scale and zero-point, and ConvInteger with zero-point padding.
//
// Every kernel validates shapes and element types before allocating its
// output, so a failed call never produces a partial result. Failures wrap one
// of the sentinel errors (ErrShape, ErrType, ErrUnsupported, ErrMissingInput)
// and can be tested with errors.Is.
//
// Kernels are pure: inputs are read-only and every call returns a fresh
// tensor. The output index space may be split across goroutines according to
// the supplied parallel.Config without changing any result.
package quant
