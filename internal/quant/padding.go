package quant

import "fmt"

// Pads is the number of virtual rows and columns added around the spatial
// dimensions of a ConvInteger input. Padded cells hold the input zero-point,
// so they contribute nothing to the accumulation.
type Pads struct {
	Top, Left, Bottom, Right int
}

// Auto-padding modes accepted by ResolveAutoPad.
const (
	AutoPadNotSet    = "NOTSET"
	AutoPadValid     = "VALID"
	AutoPadSameUpper = "SAME_UPPER"
	AutoPadSameLower = "SAME_LOWER"
)

// PadsFromInts builds Pads from the ONNX "pads" layout
// [top, left, bottom, right]. An empty slice means no padding.
func PadsFromInts(p []int64) (Pads, error) {
	if len(p) == 0 {
		return Pads{}, nil
	}
	if len(p) != 4 {
		return Pads{}, fmt.Errorf("%w: pads must have 4 values [top, left, bottom, right], got %d", ErrShape, len(p))
	}
	pads := Pads{Top: int(p[0]), Left: int(p[1]), Bottom: int(p[2]), Right: int(p[3])}
	return pads, pads.Validate()
}

// Validate rejects negative padding.
func (p Pads) Validate() error {
	if p.Top < 0 || p.Left < 0 || p.Bottom < 0 || p.Right < 0 {
		return fmt.Errorf("%w: negative padding %+v", ErrShape, p)
	}
	return nil
}

// OutputSize returns the stride-1 output extent of a kh x kw kernel over an
// h x w input: out = in + before + after - kernel + 1.
func (p Pads) OutputSize(h, w, kh, kw int) (outH, outW int, err error) {
	outH = h + p.Top + p.Bottom - kh + 1
	outW = w + p.Left + p.Right - kw + 1
	if outH <= 0 || outW <= 0 {
		return 0, 0, fmt.Errorf("%w: kernel %dx%d exceeds padded input %dx%d",
			ErrShape, kh, kw, h+p.Top+p.Bottom, w+p.Left+p.Right)
	}
	return outH, outW, nil
}

// ResolveAutoPad computes the padding implied by an ONNX auto_pad mode for a
// stride-1 convolution. NOTSET (or "") returns explicit unchanged. For the
// SAME modes an odd total goes to the end (SAME_UPPER) or the beginning
// (SAME_LOWER).
func ResolveAutoPad(mode string, explicit Pads, kh, kw int) (Pads, error) {
	switch mode {
	case "", AutoPadNotSet:
		return explicit, explicit.Validate()
	case AutoPadValid:
		return Pads{}, nil
	case AutoPadSameUpper, AutoPadSameLower:
		top, bottom := splitPad(kh-1, mode == AutoPadSameUpper)
		left, right := splitPad(kw-1, mode == AutoPadSameUpper)
		return Pads{Top: top, Left: left, Bottom: bottom, Right: right}, nil
	default:
		return Pads{}, fmt.Errorf("%w: auto_pad %q", ErrUnsupported, mode)
	}
}

func splitPad(total int, upper bool) (before, after int) {
	if total < 0 {
		total = 0
	}
	if upper {
		before = total / 2
		return before, total - before
	}
	after = total / 2
	return total - after, after
}
