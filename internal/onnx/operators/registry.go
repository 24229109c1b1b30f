package operators

import (
	"fmt"
	"sort"

	"github.com/born-ml/qops/internal/logger"
	"github.com/born-ml/qops/internal/parallel"
	"github.com/born-ml/qops/internal/tensor"
)

// OpHandler processes an ONNX node and returns output tensors.
// A nil entry in inputs marks an omitted optional input.
type OpHandler func(ctx *Context, node *Node, inputs []*tensor.RawTensor) ([]*tensor.RawTensor, error)

// Context provides execution settings for operators.
type Context struct {
	Parallel parallel.Config
	Log      logger.Logger
}

// NewContext returns a Context with default parallelism and a discarding logger.
func NewContext() *Context {
	return &Context{
		Parallel: parallel.DefaultConfig(),
		Log:      logger.Discard(),
	}
}

func (c *Context) log() logger.Logger {
	if c == nil || c.Log == nil {
		return logger.Discard()
	}
	return c.Log
}

func (c *Context) parallel() parallel.Config {
	if c == nil {
		return parallel.Sequential()
	}
	return c.Parallel
}

// Registry maps ONNX operator types to handler functions.
type Registry struct {
	handlers map[string]OpHandler
}

// NewRegistry creates a new operator registry with all supported operators.
func NewRegistry() *Registry {
	r := &Registry{
		handlers: make(map[string]OpHandler),
	}

	r.registerQuantOps()

	return r
}

// Register adds a custom operator handler, replacing any existing one.
func (r *Registry) Register(opType string, handler OpHandler) {
	r.handlers[opType] = handler
}

// Get returns the handler for an operator type.
func (r *Registry) Get(opType string) (OpHandler, bool) {
	h, ok := r.handlers[opType]
	return h, ok
}

// Execute runs an operator with the given inputs.
func (r *Registry) Execute(ctx *Context, node *Node, inputs []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	handler, ok := r.handlers[node.OpType]
	if !ok {
		return nil, fmt.Errorf("unsupported operator: %s", node.OpType)
	}

	log := ctx.log().With("op", node.OpType, "node", node.Name)
	outputs, err := handler(ctx, node, inputs)
	if err != nil {
		log.Warn("operator failed", "error", err)
		return nil, err
	}
	for i, out := range outputs {
		if out == nil {
			continue
		}
		log.Debug("operator output", "index", i, "tensor", out.String())
	}
	return outputs, nil
}

// SupportedOps returns the registered operator types in sorted order.
func (r *Registry) SupportedOps() []string {
	ops := make([]string, 0, len(r.handlers))
	for op := range r.handlers {
		ops = append(ops, op)
	}
	sort.Strings(ops)
	return ops
}
