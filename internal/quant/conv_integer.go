package quant

import (
	"fmt"

	"github.com/born-ml/qops/internal/parallel"
	"github.com/born-ml/qops/internal/tensor"
)

// convGeometry holds the resolved dimensions of one ConvInteger call.
type convGeometry struct {
	N, C, H, W     int // input [N, C, H, W]
	M, KH, KW      int // weight [M, C, KH, KW]
	HOut, WOut     int
	pads           Pads
	inputZeroPoint int32
	weightZeros    []int32 // one per output channel
}

// ConvInteger performs a stride-1 2D convolution on quantized tensors and
// returns the raw int32 accumulation:
//
//	y[n, m, oh, ow] = sum over c, kh, kw of
//	    (x_padded[n, c, oh+kh, ow+kw] - x_zero_point) * (w[m, c, kh, kw] - w_zero_point[m])
//
// Input shape: [N, C, H, W], weight shape: [M, C, KH, KW], both int8 or
// uint8. xZeroPoint must be a scalar of x's type; wZeroPoint a scalar or a
// per-output-channel vector of w's type. Either may be nil (zero).
//
// Padding is never materialized: window coordinates that fall outside the
// input are skipped, which is exactly what a cell equal to the zero-point
// would contribute. No bias or activation is applied.
func ConvInteger(x, w, xZeroPoint, wZeroPoint *tensor.RawTensor, pads Pads, cfg parallel.Config) (*tensor.RawTensor, error) {
	g, err := resolveConv(x, w, xZeroPoint, wZeroPoint, pads)
	if err != nil {
		return nil, err
	}

	switch x.DType() {
	case tensor.Uint8:
		return convWithInput[uint8](x, w, g, cfg)
	default:
		return convWithInput[int8](x, w, g, cfg)
	}
}

// resolveConv validates every input and computes the output geometry.
func resolveConv(x, w, xZeroPoint, wZeroPoint *tensor.RawTensor, pads Pads) (*convGeometry, error) {
	if x == nil || w == nil {
		return nil, fmt.Errorf("%w: convInteger needs x and w", ErrMissingInput)
	}
	if !x.DType().IsQuantized() {
		return nil, fmt.Errorf("%w: x must be int8 or uint8, got %s", ErrType, x.DType())
	}
	if !w.DType().IsQuantized() {
		return nil, fmt.Errorf("%w: w must be int8 or uint8, got %s", ErrType, w.DType())
	}

	xs, ws := x.Shape(), w.Shape()
	if len(xs) != 4 {
		return nil, fmt.Errorf("%w: x must be 4D [N,C,H,W], got %v", ErrShape, xs)
	}
	if len(ws) != 4 {
		return nil, fmt.Errorf("%w: w must be 4D [M,C,KH,KW], got %v", ErrShape, ws)
	}
	if xs[1] != ws[1] {
		return nil, fmt.Errorf("%w: input channels %d != weight channels %d", ErrShape, xs[1], ws[1])
	}
	if err := pads.Validate(); err != nil {
		return nil, err
	}

	g := &convGeometry{
		N: xs[0], C: xs[1], H: xs[2], W: xs[3],
		M: ws[0], KH: ws[2], KW: ws[3],
		pads: pads,
	}

	var err error
	g.HOut, g.WOut, err = pads.OutputSize(g.H, g.W, g.KH, g.KW)
	if err != nil {
		return nil, err
	}

	if g.inputZeroPoint, err = inputZeroPoint(xZeroPoint, x.DType()); err != nil {
		return nil, err
	}
	if g.weightZeros, err = weightZeroPoints(wZeroPoint, w.DType(), g.M); err != nil {
		return nil, err
	}
	return g, nil
}

// inputZeroPoint extracts the scalar input zero-point.
func inputZeroPoint(zp *tensor.RawTensor, dtype tensor.DataType) (int32, error) {
	if zp == nil {
		return 0, nil
	}
	if zp.DType() != dtype {
		return 0, fmt.Errorf("%w: x_zero_point is %s but x is %s", ErrType, zp.DType(), dtype)
	}
	if zp.Rank() > 1 || zp.NumElements() != 1 {
		return 0, fmt.Errorf("%w: x_zero_point must be a scalar, got shape %v", ErrShape, zp.Shape())
	}
	if dtype == tensor.Int8 {
		return widen(zp.AsInt8()[0]), nil
	}
	return widen(zp.AsUint8()[0]), nil
}

// weightZeroPoints expands the weight zero-point to one value per output
// channel. A single-element vector is treated like a scalar.
func weightZeroPoints(zp *tensor.RawTensor, dtype tensor.DataType, m int) ([]int32, error) {
	out := make([]int32, m)
	if zp == nil {
		return out, nil
	}
	if zp.DType() != dtype {
		return nil, fmt.Errorf("%w: w_zero_point is %s but w is %s", ErrType, zp.DType(), dtype)
	}

	var values []int32
	if dtype == tensor.Int8 {
		values = zeroPoints[int8](zp)
	} else {
		values = zeroPoints[uint8](zp)
	}

	at := Indexer(scalarIndex)
	if zp.NumElements() != 1 {
		var err error
		if at, err = Broadcast(tensor.Shape{m}, zp.Shape(), 0); err != nil {
			return nil, fmt.Errorf("w_zero_point: %w", err)
		}
	}
	for i := range out {
		out[i] = values[at(i)]
	}
	return out, nil
}

func convWithInput[X Quantized](x, w *tensor.RawTensor, g *convGeometry, cfg parallel.Config) (*tensor.RawTensor, error) {
	if w.DType() == tensor.Uint8 {
		return convInteger[X, uint8](x, w, g, cfg)
	}
	return convInteger[X, int8](x, w, g, cfg)
}

// convInteger is the direct-convolution kernel. Work is split per
// (batch, output channel) plane; each plane is written by one worker.
func convInteger[X, W Quantized](x, w *tensor.RawTensor, g *convGeometry, cfg parallel.Config) (*tensor.RawTensor, error) {
	y, err := tensor.NewRaw(tensor.Shape{g.N, g.M, g.HOut, g.WOut}, tensor.Int32)
	if err != nil {
		return nil, err
	}

	xs := tensor.Values[X](x)
	ws := tensor.Values[W](w)
	ys := y.AsInt32()

	planeIn := g.H * g.W
	planeK := g.KH * g.KW
	planeOut := g.HOut * g.WOut
	xzp := g.inputZeroPoint

	parallel.ForBatch(g.N, g.M, func(n, m int) {
		wzp := g.weightZeros[m]
		dst := ys[(n*g.M+m)*planeOut : (n*g.M+m+1)*planeOut]

		for oh := 0; oh < g.HOut; oh++ {
			hStart := oh - g.pads.Top
			for ow := 0; ow < g.WOut; ow++ {
				wStart := ow - g.pads.Left

				var sum int32
				for c := 0; c < g.C; c++ {
					in := xs[(n*g.C+c)*planeIn:]
					k := ws[(m*g.C+c)*planeK:]
					for kh := 0; kh < g.KH; kh++ {
						h := hStart + kh
						if h < 0 || h >= g.H {
							continue // padding row
						}
						for kw := 0; kw < g.KW; kw++ {
							col := wStart + kw
							if col < 0 || col >= g.W {
								continue // padding column
							}
							sum += (widen(in[h*g.W+col]) - xzp) * (widen(k[kh*g.KW+kw]) - wzp)
						}
					}
				}
				dst[oh*g.WOut+ow] = sum
			}
		}
	}, cfg)

	return y, nil
}
