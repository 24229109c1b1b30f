package quant

import "errors"

// Kernel errors.
var (
	ErrShape        = errors.New("shape mismatch")
	ErrType         = errors.New("type mismatch")
	ErrUnsupported  = errors.New("unsupported")
	ErrMissingInput = errors.New("missing input")
)
