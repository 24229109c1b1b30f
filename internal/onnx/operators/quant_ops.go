package operators

import (
	"fmt"

	"github.com/born-ml/qops/internal/quant"
	"github.com/born-ml/qops/internal/tensor"
)

// registerQuantOps adds the quantized integer operators to the registry.
func (r *Registry) registerQuantOps() {
	r.Register("QuantizeLinear", handleQuantizeLinear)
	r.Register("DequantizeLinear", handleDequantizeLinear)
	r.Register("ConvInteger", handleConvInteger)
}

// optionalInput returns inputs[i], or nil when the input was omitted.
func optionalInput(inputs []*tensor.RawTensor, i int) *tensor.RawTensor {
	if i < len(inputs) {
		return inputs[i]
	}
	return nil
}

// handleQuantizeLinear implements y = saturate(round(x / y_scale) + y_zero_point).
func handleQuantizeLinear(ctx *Context, node *Node, inputs []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	if len(inputs) < 2 || len(inputs) > 3 {
		return nil, fmt.Errorf("quantizeLinear requires 2 or 3 inputs (x, y_scale, [y_zero_point]), got %d", len(inputs))
	}

	axis := int(GetAttrInt(node, "axis", quant.DefaultAxis))
	y, err := quant.QuantizeLinear(inputs[0], inputs[1], optionalInput(inputs, 2), axis, ctx.parallel())
	if err != nil {
		return nil, fmt.Errorf("quantizeLinear: %w", err)
	}
	return []*tensor.RawTensor{y}, nil
}

// handleDequantizeLinear implements y = (x - x_zero_point) * x_scale.
func handleDequantizeLinear(ctx *Context, node *Node, inputs []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	if len(inputs) < 2 || len(inputs) > 3 {
		return nil, fmt.Errorf("dequantizeLinear requires 2 or 3 inputs (x, x_scale, [x_zero_point]), got %d", len(inputs))
	}

	axis := int(GetAttrInt(node, "axis", quant.DefaultAxis))
	y, err := quant.DequantizeLinear(inputs[0], inputs[1], optionalInput(inputs, 2), axis, ctx.parallel())
	if err != nil {
		return nil, fmt.Errorf("dequantizeLinear: %w", err)
	}
	return []*tensor.RawTensor{y}, nil
}

// handleConvInteger implements the stride-1, ungrouped ConvInteger subset.
func handleConvInteger(ctx *Context, node *Node, inputs []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	if len(inputs) < 2 || len(inputs) > 4 {
		return nil, fmt.Errorf("convInteger requires 2 to 4 inputs (x, w, [x_zero_point], [w_zero_point]), got %d", len(inputs))
	}
	x, w := inputs[0], inputs[1]
	if x == nil || w == nil {
		return nil, fmt.Errorf("convInteger: %w: x and w are required", quant.ErrMissingInput)
	}

	pads, err := convPads(node, w)
	if err != nil {
		return nil, fmt.Errorf("convInteger: %w", err)
	}

	y, err := quant.ConvInteger(x, w, optionalInput(inputs, 2), optionalInput(inputs, 3), pads, ctx.parallel())
	if err != nil {
		return nil, fmt.Errorf("convInteger: %w", err)
	}
	return []*tensor.RawTensor{y}, nil
}

// convPads checks the ConvInteger attributes and resolves the effective padding.
// Strides, dilations and groups other than 1 are rejected.
func convPads(node *Node, w *tensor.RawTensor) (quant.Pads, error) {
	for _, name := range []string{"strides", "dilations"} {
		for _, v := range GetAttrInts(node, name) {
			if v != 1 {
				return quant.Pads{}, fmt.Errorf("%w: %s %v (only 1 is supported)",
					quant.ErrUnsupported, name, GetAttrInts(node, name))
			}
		}
	}
	if g := GetAttrInt(node, "group", 1); g != 1 {
		return quant.Pads{}, fmt.Errorf("%w: group %d (only 1 is supported)", quant.ErrUnsupported, g)
	}

	ws := w.Shape()
	if len(ws) != 4 {
		return quant.Pads{}, fmt.Errorf("%w: w must be 4D [M,C,KH,KW], got %v", quant.ErrShape, ws)
	}
	if ks := GetAttrInts(node, "kernel_shape"); ks != nil {
		if len(ks) != 2 || int(ks[0]) != ws[2] || int(ks[1]) != ws[3] {
			return quant.Pads{}, fmt.Errorf("%w: kernel_shape %v does not match weight %v", quant.ErrShape, ks, ws)
		}
	}

	explicit, err := quant.PadsFromInts(GetAttrInts(node, "pads"))
	if err != nil {
		return quant.Pads{}, err
	}
	return quant.ResolveAutoPad(GetAttrString(node, "auto_pad", quant.AutoPadNotSet), explicit, ws[2], ws[3])
}
