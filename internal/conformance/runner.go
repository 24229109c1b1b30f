package conformance

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/born-ml/qops/internal/logger"
	"github.com/born-ml/qops/internal/onnx/operators"
	"github.com/born-ml/qops/internal/tensor"
)

// maxMismatches caps the element mismatches recorded per output.
const maxMismatches = 16

// Mismatch describes one disagreement between an expected and an actual output.
// Index is -1 for whole-tensor problems such as a dtype or shape difference.
// Values are kept as text so that NaN and Inf survive JSON encoding.
type Mismatch struct {
	Output string `json:"output"`
	Index  int    `json:"index"`
	Want   string `json:"want,omitempty"`
	Got    string `json:"got,omitempty"`
	Detail string `json:"detail,omitempty"`
}

func (m Mismatch) String() string {
	if m.Index < 0 {
		return fmt.Sprintf("%s: %s", m.Output, m.Detail)
	}
	return fmt.Sprintf("%s[%d]: want %s, got %s", m.Output, m.Index, m.Want, m.Got)
}

// Result is the outcome of a single case.
type Result struct {
	Case       string     `json:"case"`
	Op         string     `json:"op"`
	Passed     bool       `json:"passed"`
	Error      string     `json:"error,omitempty"`
	Mismatches []Mismatch `json:"mismatches,omitempty"`
}

// Report aggregates the results of a run.
type Report struct {
	Results []Result `json:"results"`
	Passed  int      `json:"passed"`
	Failed  int      `json:"failed"`
}

// OK reports whether every case passed.
func (r Report) OK() bool {
	return r.Failed == 0
}

// Runner executes cases against an operator registry.
type Runner struct {
	Registry *operators.Registry
	Context  *operators.Context
	Log      logger.Logger
}

// NewRunner returns a runner over the default registry and context.
func NewRunner() *Runner {
	return &Runner{
		Registry: operators.NewRegistry(),
		Context:  operators.NewContext(),
		Log:      logger.Discard(),
	}
}

func (r *Runner) log() logger.Logger {
	if r.Log == nil {
		return logger.Discard()
	}
	return r.Log
}

// RunAll runs cases in order. It stops between cases once ctx is done and
// returns the partial report together with the context error.
func (r *Runner) RunAll(ctx context.Context, cases []Case) (Report, error) {
	var report Report
	for i := range cases {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		res := r.Run(ctx, cases[i])
		report.Results = append(report.Results, res)
		if res.Passed {
			report.Passed++
		} else {
			report.Failed++
		}
	}
	return report, nil
}

// Run executes one case. Malformed cases and handler panics are reported as
// failures.
func (r *Runner) Run(ctx context.Context, c Case) (res Result) {
	res = Result{Case: c.Name, Op: c.Op}
	log := r.log().With("case", c.Name, "op", c.Op)

	defer func() {
		if p := recover(); p != nil {
			res.Passed = false
			res.Error = fmt.Sprintf("panic: %v", p)
		}
		if res.Passed {
			log.Debug("case passed")
		} else {
			log.Warn("case failed", "error", res.Error, "mismatches", len(res.Mismatches))
		}
	}()

	if err := ctx.Err(); err != nil {
		res.Error = err.Error()
		return res
	}

	node, err := c.Node()
	if err != nil {
		res.Error = err.Error()
		return res
	}
	inputs := make([]*tensor.RawTensor, len(c.Inputs))
	for i, spec := range c.Inputs {
		if inputs[i], err = spec.Build(); err != nil {
			res.Error = "input " + err.Error()
			return res
		}
	}

	opCtx := r.opContext(log)
	outputs, err := r.Registry.Execute(opCtx, node, inputs)

	if c.ExpectError != "" {
		switch {
		case err == nil:
			res.Error = fmt.Sprintf("expected error containing %q, got success", c.ExpectError)
		case !strings.Contains(err.Error(), c.ExpectError):
			res.Error = fmt.Sprintf("expected error containing %q, got %q", c.ExpectError, err.Error())
		default:
			res.Passed = true
		}
		return res
	}
	if err != nil {
		res.Error = err.Error()
		return res
	}

	if len(outputs) != len(c.Outputs) {
		res.Error = fmt.Sprintf("expected %d outputs, got %d", len(c.Outputs), len(outputs))
		return res
	}
	for i, spec := range c.Outputs {
		want, err := spec.Build()
		if err != nil {
			res.Error = "output " + err.Error()
			return res
		}
		res.Mismatches = append(res.Mismatches, compare(spec.Name, want, outputs[i], c.Tolerance)...)
	}
	res.Passed = len(res.Mismatches) == 0
	return res
}

func (r *Runner) opContext(log logger.Logger) *operators.Context {
	opCtx := operators.NewContext()
	if r.Context != nil {
		*opCtx = *r.Context
	}
	opCtx.Log = log
	return opCtx
}

// compare checks got against want. Integer tensors must match exactly; float
// tensors may differ by at most tol, and NaN matches NaN.
func compare(name string, want, got *tensor.RawTensor, tol float64) []Mismatch {
	if got == nil {
		return []Mismatch{{Output: name, Index: -1, Detail: "missing output"}}
	}
	if want.DType() != got.DType() {
		return []Mismatch{{Output: name, Index: -1,
			Detail: fmt.Sprintf("dtype: want %s, got %s", want.DType(), got.DType())}}
	}
	if !want.Shape().Equal(got.Shape()) {
		return []Mismatch{{Output: name, Index: -1,
			Detail: fmt.Sprintf("shape: want %v, got %v", want.Shape(), got.Shape())}}
	}

	exact := want.DType() != tensor.Float32
	wv, gv := tensor.ToFloat64(want), tensor.ToFloat64(got)

	var out []Mismatch
	for i := range wv {
		if equalWithin(wv[i], gv[i], tol, exact) {
			continue
		}
		if len(out) == maxMismatches {
			out = append(out, Mismatch{Output: name, Index: -1, Detail: "further mismatches omitted"})
			break
		}
		out = append(out, Mismatch{Output: name, Index: i, Want: formatValue(wv[i]), Got: formatValue(gv[i])})
	}
	return out
}

func equalWithin(want, got, tol float64, exact bool) bool {
	if exact {
		return want == got
	}
	if math.IsNaN(want) || math.IsNaN(got) {
		return math.IsNaN(want) && math.IsNaN(got)
	}
	if want == got {
		return true
	}
	return math.Abs(want-got) <= tol
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
