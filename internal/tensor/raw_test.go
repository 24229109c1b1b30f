package tensor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRawZeroed(t *testing.T) {
	raw, err := NewRaw(Shape{2, 3}, Int32)
	require.NoError(t, err)

	assert.Equal(t, 6, raw.NumElements())
	assert.Equal(t, []int32{0, 0, 0, 0, 0, 0}, raw.AsInt32())
}

func TestNewRawInvalidShape(t *testing.T) {
	_, err := NewRaw(Shape{-1}, Float32)
	assert.Error(t, err)
}

func TestRawTensorAsInt8(t *testing.T) {
	raw, err := NewRaw(Shape{4}, Int8)
	require.NoError(t, err)

	data := raw.AsInt8()
	data[0] = -128
	assert.Equal(t, int8(-128), raw.AsInt8()[0], "AsInt8 should return zero-copy slice")
}

func TestRawTensorDTypeMismatchPanics(t *testing.T) {
	raw, err := NewRaw(Shape{2}, Uint8)
	require.NoError(t, err)

	assert.Panics(t, func() { raw.AsFloat32() })
	assert.Panics(t, func() { raw.AsInt8() })
	assert.Panics(t, func() { Values[int32](raw) })
}

func TestRawTensorEmpty(t *testing.T) {
	raw, err := NewRaw(Shape{0, 3}, Float32)
	require.NoError(t, err)
	assert.Empty(t, raw.AsFloat32())
	assert.Empty(t, Values[float32](raw))
}

func TestRawTensorString(t *testing.T) {
	assert.Equal(t, "float32(3)", MustFromSlice([]float32{1, 2, 3}, Shape{3}).String())
	assert.Equal(t, "uint8()", Scalar(uint8(1)).String())
}

func TestFromSlice(t *testing.T) {
	raw, err := FromSlice([]int8{-30, -3, 100, 127}, Shape{2, 2})
	require.NoError(t, err)

	assert.Equal(t, Int8, raw.DType())
	assertEqualShape(t, Shape{2, 2}, raw.Shape(), "FromSlice")
	assert.Equal(t, []int8{-30, -3, 100, 127}, raw.AsInt8())
}

func TestFromSliceLengthMismatch(t *testing.T) {
	_, err := FromSlice([]uint8{1, 2, 3}, Shape{2, 2})
	assert.Error(t, err)
	assert.Panics(t, func() { MustFromSlice([]uint8{1}, Shape{2}) })
}

func TestFromSliceCopies(t *testing.T) {
	src := []uint8{1, 2}
	raw := MustFromSlice(src, Shape{2})
	src[0] = 9
	assert.Equal(t, uint8(1), raw.AsUint8()[0])
}

func TestScalar(t *testing.T) {
	s := Scalar(float32(2))
	assert.Equal(t, 0, s.Rank())
	assert.Equal(t, 1, s.NumElements())
	assert.Equal(t, []float32{2}, s.AsFloat32())
}

func TestFull(t *testing.T) {
	raw, err := Full(Shape{2, 2}, uint8(7))
	require.NoError(t, err)
	assert.Equal(t, []uint8{7, 7, 7, 7}, raw.AsUint8())
}

func TestToFloat64(t *testing.T) {
	assert.Equal(t, []float64{-1, 2}, ToFloat64(MustFromSlice([]int8{-1, 2}, Shape{2})))
	assert.Equal(t, []float64{255}, ToFloat64(Scalar(uint8(255))))
	assert.Equal(t, []float64{-7}, ToFloat64(Scalar(int32(-7))))
	assert.Equal(t, []float64{0.5}, ToFloat64(Scalar(float32(0.5))))
}
