// Package operators maps ONNX quantization operators to the integer kernels
// in internal/quant.
//
// The package provides a registry of operator handlers. Each handler checks
// its positional inputs and attributes, then delegates to the kernel and wraps
// any kernel error with the operator name.
//
// Supported operators:
//   - QuantizeLinear (x, y_scale, [y_zero_point]; axis)
//   - DequantizeLinear (x, x_scale, [x_zero_point]; axis)
//   - ConvInteger (x, w, [x_zero_point], [w_zero_point]; pads, auto_pad, kernel_shape)
package operators
