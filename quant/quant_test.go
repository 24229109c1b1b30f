package quant_test

import (
	"errors"
	"testing"

	"github.com/born-ml/qops/quant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuantizeDequantize(t *testing.T) {
	x, err := quant.FromSlice([]float32{0, 2, 3, 1000, -254, -1000}, quant.Shape{6})
	require.NoError(t, err)

	q, err := quant.QuantizeLinear(x, quant.Scalar(float32(2)), quant.Scalar(uint8(128)),
		quant.DefaultAxis, quant.DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, quant.Uint8, q.DType())
	assert.Equal(t, []uint8{128, 129, 130, 255, 1, 0}, q.AsUint8())

	y, err := quant.DequantizeLinear(q, quant.Scalar(float32(2)), quant.Scalar(uint8(128)),
		quant.DefaultAxis, quant.Sequential())
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 2, 4, 254, -254, -256}, y.AsFloat32())
}

func TestConvInteger(t *testing.T) {
	x, err := quant.FromSlice([]uint8{2, 3, 4, 5, 6, 7, 8, 9, 10}, quant.Shape{1, 1, 3, 3})
	require.NoError(t, err)
	w, err := quant.FromSlice([]uint8{1, 1, 1, 1}, quant.Shape{1, 1, 2, 2})
	require.NoError(t, err)

	pads, err := quant.ResolveAutoPad(quant.AutoPadNotSet, quant.Pads{Top: 1, Left: 1, Bottom: 1, Right: 1}, 2, 2)
	require.NoError(t, err)

	y, err := quant.ConvInteger(x, w, quant.Scalar(uint8(1)), nil, pads, quant.DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, quant.Shape{1, 1, 4, 4}, y.Shape())
	assert.Equal(t, []int32{1, 3, 5, 3, 5, 12, 16, 9, 11, 24, 28, 15, 7, 15, 17, 9}, y.AsInt32())
}

func TestErrorsAreExported(t *testing.T) {
	x, err := quant.FromSlice([]uint8{1}, quant.Shape{1})
	require.NoError(t, err)

	_, err = quant.QuantizeLinear(x, quant.Scalar(float32(1)), nil, 0, quant.Sequential())
	assert.True(t, errors.Is(err, quant.ErrType))
}

func TestRegistry(t *testing.T) {
	r := quant.NewRegistry()
	assert.Equal(t, []string{"ConvInteger", "DequantizeLinear", "QuantizeLinear"}, r.SupportedOps())

	x, err := quant.FromSlice([]int8{-30, -3, 100, 127}, quant.Shape{4})
	require.NoError(t, err)

	out, err := r.Execute(quant.NewOpContext(), &quant.Node{OpType: "DequantizeLinear"},
		[]*quant.RawTensor{x, quant.Scalar(float32(2)), quant.Scalar(int8(-10))})
	require.NoError(t, err)
	assert.Equal(t, []float32{-40, 14, 220, 274}, out[0].AsFloat32())
}
