// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package quant

import (
	"github.com/born-ml/qops/internal/onnx/operators"
	"github.com/born-ml/qops/internal/parallel"
	internalquant "github.com/born-ml/qops/internal/quant"
	"github.com/born-ml/qops/internal/tensor"
)

// RawTensor is a dense row-major tensor of a single element type.
type RawTensor = tensor.RawTensor

// Shape holds tensor dimensions. An empty Shape is a scalar.
type Shape = tensor.Shape

// DataType identifies the element type of a tensor.
type DataType = tensor.DataType

// DType is the constraint satisfied by all supported element types.
type DType = tensor.DType

// Element types.
const (
	Float32 = tensor.Float32
	Int8    = tensor.Int8
	Uint8   = tensor.Uint8
	Int32   = tensor.Int32
)

// FromSlice creates a tensor holding a copy of data.
func FromSlice[T DType](data []T, shape Shape) (*RawTensor, error) {
	return tensor.FromSlice(data, shape)
}

// Scalar creates a rank-0 tensor.
func Scalar[T DType](v T) *RawTensor {
	return tensor.Scalar(v)
}

// Config controls how kernels partition their output across goroutines.
type Config = parallel.Config

// DefaultConfig uses one worker per CPU.
func DefaultConfig() Config {
	return parallel.DefaultConfig()
}

// Sequential disables parallel execution.
func Sequential() Config {
	return parallel.Sequential()
}

// Kernel errors.
var (
	ErrShape        = internalquant.ErrShape
	ErrType         = internalquant.ErrType
	ErrUnsupported  = internalquant.ErrUnsupported
	ErrMissingInput = internalquant.ErrMissingInput
)

// DefaultAxis is the ONNX default quantization axis.
const DefaultAxis = internalquant.DefaultAxis

// QuantizeLinear quantizes float32 x to the element type of zeroPoint
// (uint8 when zeroPoint is nil).
func QuantizeLinear(x, scale, zeroPoint *RawTensor, axis int, cfg Config) (*RawTensor, error) {
	return internalquant.QuantizeLinear(x, scale, zeroPoint, axis, cfg)
}

// DequantizeLinear converts int8 or uint8 x back to float32.
func DequantizeLinear(x, scale, zeroPoint *RawTensor, axis int, cfg Config) (*RawTensor, error) {
	return internalquant.DequantizeLinear(x, scale, zeroPoint, axis, cfg)
}

// Pads is the virtual border [top, left, bottom, right] around a ConvInteger input.
type Pads = internalquant.Pads

// Auto-padding modes.
const (
	AutoPadNotSet    = internalquant.AutoPadNotSet
	AutoPadValid     = internalquant.AutoPadValid
	AutoPadSameUpper = internalquant.AutoPadSameUpper
	AutoPadSameLower = internalquant.AutoPadSameLower
)

// ResolveAutoPad computes the padding for an auto_pad mode and a kh x kw kernel.
func ResolveAutoPad(mode string, explicit Pads, kh, kw int) (Pads, error) {
	return internalquant.ResolveAutoPad(mode, explicit, kh, kw)
}

// ConvInteger convolves quantized x [N,C,H,W] with w [M,C,KH,KW] and
// returns the int32 accumulation [N,M,OH,OW].
func ConvInteger(x, w, xZeroPoint, wZeroPoint *RawTensor, pads Pads, cfg Config) (*RawTensor, error) {
	return internalquant.ConvInteger(x, w, xZeroPoint, wZeroPoint, pads, cfg)
}

// Registry maps operator names to handlers.
type Registry = operators.Registry

// Node describes one operator invocation.
type Node = operators.Node

// Attribute is a typed operator attribute.
type Attribute = operators.Attribute

// OpContext carries execution settings for registry handlers.
type OpContext = operators.Context

// NewRegistry returns a registry with QuantizeLinear, DequantizeLinear and
// ConvInteger registered.
func NewRegistry() *Registry {
	return operators.NewRegistry()
}

// NewOpContext returns the default execution context.
func NewOpContext() *OpContext {
	return operators.NewContext()
}
