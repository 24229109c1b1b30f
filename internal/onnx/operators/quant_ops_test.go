package operators

import (
	"testing"

	"github.com/born-ml/qops/internal/parallel"
	"github.com/born-ml/qops/internal/quant"
	"github.com/born-ml/qops/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContext() *Context {
	ctx := NewContext()
	ctx.Parallel = parallel.Sequential()
	return ctx
}

func convInputs() []*tensor.RawTensor {
	x := tensor.MustFromSlice([]uint8{2, 3, 4, 5, 6, 7, 8, 9, 10}, tensor.Shape{1, 1, 3, 3})
	w := tensor.MustFromSlice([]uint8{1, 1, 1, 1}, tensor.Shape{1, 1, 2, 2})
	return []*tensor.RawTensor{x, w, tensor.Scalar(uint8(1))}
}

func TestHandleQuantizeLinear(t *testing.T) {
	x := tensor.MustFromSlice([]float32{0, 2, 3, 1000, -254, -1000}, tensor.Shape{6})
	out, err := handleQuantizeLinear(testContext(), &Node{OpType: "QuantizeLinear"},
		[]*tensor.RawTensor{x, tensor.Scalar(float32(2)), tensor.Scalar(uint8(128))})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, []uint8{128, 129, 130, 255, 1, 0}, out[0].AsUint8())
}

func TestHandleQuantizeLinear_AxisAttribute(t *testing.T) {
	x := tensor.MustFromSlice([]float32{2, 2, 2, 2}, tensor.Shape{2, 2})
	scale := tensor.MustFromSlice([]float32{1, 2}, tensor.Shape{2})

	// axis -2 selects rows.
	node := &Node{OpType: "QuantizeLinear", Attributes: []Attribute{IntAttr("axis", -2)}}
	out, err := handleQuantizeLinear(testContext(), node, []*tensor.RawTensor{x, scale})
	require.NoError(t, err)
	assert.Equal(t, []uint8{2, 2, 1, 1}, out[0].AsUint8())

	// Default axis 1 selects columns.
	out, err = handleQuantizeLinear(testContext(), &Node{OpType: "QuantizeLinear"}, []*tensor.RawTensor{x, scale})
	require.NoError(t, err)
	assert.Equal(t, []uint8{2, 1, 2, 1}, out[0].AsUint8())
}

func TestHandleDequantizeLinear(t *testing.T) {
	x := tensor.MustFromSlice([]int8{-30, -3, 100, 127}, tensor.Shape{4})
	out, err := handleDequantizeLinear(testContext(), &Node{OpType: "DequantizeLinear"},
		[]*tensor.RawTensor{x, tensor.Scalar(float32(2)), tensor.Scalar(int8(-10))})
	require.NoError(t, err)
	assert.Equal(t, []float32{-40, 14, 220, 274}, out[0].AsFloat32())
}

func TestHandleDequantizeLinear_TypeError(t *testing.T) {
	x := tensor.MustFromSlice([]int8{1}, tensor.Shape{1})
	_, err := handleDequantizeLinear(testContext(), &Node{OpType: "DequantizeLinear"},
		[]*tensor.RawTensor{x, tensor.Scalar(float32(2)), tensor.Scalar(uint8(0))})
	assert.ErrorIs(t, err, quant.ErrType)
	assert.ErrorContains(t, err, "dequantizeLinear")
}

func TestHandleConvInteger(t *testing.T) {
	out, err := handleConvInteger(testContext(), &Node{OpType: "ConvInteger"}, convInputs())
	require.NoError(t, err)
	assert.Equal(t, []int32{12, 16, 24, 28}, out[0].AsInt32())
}

func TestHandleConvInteger_Pads(t *testing.T) {
	node := &Node{OpType: "ConvInteger", Attributes: []Attribute{IntsAttr("pads", 1, 1, 1, 1)}}
	out, err := handleConvInteger(testContext(), node, convInputs())
	require.NoError(t, err)

	assert.Equal(t, tensor.Shape{1, 1, 4, 4}, out[0].Shape())
	assert.Equal(t, []int32{
		1, 3, 5, 3,
		5, 12, 16, 9,
		11, 24, 28, 15,
		7, 15, 17, 9,
	}, out[0].AsInt32())
}

func TestHandleConvInteger_AutoPad(t *testing.T) {
	node := &Node{OpType: "ConvInteger", Attributes: []Attribute{
		StringAttr("auto_pad", "SAME_UPPER"),
		IntsAttr("kernel_shape", 2, 2),
		IntsAttr("strides", 1, 1),
		IntAttr("group", 1),
	}}
	out, err := handleConvInteger(testContext(), node, convInputs())
	require.NoError(t, err)

	// SAME_UPPER with a 2x2 kernel pads one row at the bottom and one column at the right.
	assert.Equal(t, tensor.Shape{1, 1, 3, 3}, out[0].Shape())
	assert.Equal(t, []int32{12, 16, 9, 24, 28, 15, 15, 17, 9}, out[0].AsInt32())
}

func TestHandleConvInteger_NilOptionalInputs(t *testing.T) {
	in := convInputs()
	out, err := handleConvInteger(testContext(), &Node{OpType: "ConvInteger"},
		[]*tensor.RawTensor{in[0], in[1], nil, nil})
	require.NoError(t, err)
	// Without a zero-point every window sums the raw values.
	assert.Equal(t, []int32{16, 20, 28, 32}, out[0].AsInt32())
}

func TestHandleConvInteger_Errors(t *testing.T) {
	tests := []struct {
		name    string
		attrs   []Attribute
		inputs  []*tensor.RawTensor
		wantErr error
	}{
		{name: "strides", attrs: []Attribute{IntsAttr("strides", 2, 2)}, wantErr: quant.ErrUnsupported},
		{name: "dilations", attrs: []Attribute{IntsAttr("dilations", 1, 2)}, wantErr: quant.ErrUnsupported},
		{name: "group", attrs: []Attribute{IntAttr("group", 2)}, wantErr: quant.ErrUnsupported},
		{name: "auto_pad", attrs: []Attribute{StringAttr("auto_pad", "SAME")}, wantErr: quant.ErrUnsupported},
		{name: "kernel_shape", attrs: []Attribute{IntsAttr("kernel_shape", 3, 3)}, wantErr: quant.ErrShape},
		{name: "pads length", attrs: []Attribute{IntsAttr("pads", 1, 1)}, wantErr: quant.ErrShape},
		{
			name:    "missing w",
			inputs:  []*tensor.RawTensor{convInputs()[0], nil},
			wantErr: quant.ErrMissingInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inputs := tt.inputs
			if inputs == nil {
				inputs = convInputs()
			}
			_, err := handleConvInteger(testContext(), &Node{OpType: "ConvInteger", Attributes: tt.attrs}, inputs)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestHandlers_InputCount(t *testing.T) {
	x := tensor.Scalar(float32(1))

	_, err := handleQuantizeLinear(testContext(), &Node{}, []*tensor.RawTensor{x})
	assert.ErrorContains(t, err, "quantizeLinear requires 2 or 3 inputs")

	_, err = handleDequantizeLinear(testContext(), &Node{}, []*tensor.RawTensor{x, x, x, x})
	assert.ErrorContains(t, err, "dequantizeLinear requires 2 or 3 inputs")

	_, err = handleConvInteger(testContext(), &Node{}, []*tensor.RawTensor{x})
	assert.ErrorContains(t, err, "convInteger requires 2 to 4 inputs")
}
