package conformance

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/born-ml/qops/internal/onnx/operators"
	"github.com/born-ml/qops/internal/tensor"
)

// Case is one operator invocation with its expected outputs.
type Case struct {
	Name        string         `yaml:"name" json:"name"`
	Op          string         `yaml:"op" json:"op"`
	Domain      string         `yaml:"domain,omitempty" json:"domain,omitempty"`
	Attributes  map[string]any `yaml:"attributes,omitempty" json:"attributes,omitempty"`
	Inputs      []TensorSpec   `yaml:"inputs" json:"inputs"`
	Outputs     []TensorSpec   `yaml:"outputs,omitempty" json:"outputs,omitempty"`
	Tolerance   float64        `yaml:"tolerance,omitempty" json:"tolerance,omitempty"`
	ExpectError string         `yaml:"expect_error,omitempty" json:"expect_error,omitempty"`
}

// TensorSpec describes a tensor literal. Data is row-major; an empty Shape
// is a scalar. Absent marks an omitted optional input.
type TensorSpec struct {
	Name   string    `yaml:"name" json:"name"`
	DType  string    `yaml:"dtype" json:"dtype"`
	Shape  []int     `yaml:"shape" json:"shape"`
	Data   []float64 `yaml:"data" json:"data"`
	Absent bool      `yaml:"absent,omitempty" json:"absent,omitempty"`
}

// Validate checks the fields a case cannot run without.
func (c *Case) Validate() error {
	if c.Name == "" {
		return errors.New("case has no name")
	}
	if c.Op == "" {
		return fmt.Errorf("case %s: op is required", c.Name)
	}
	if c.ExpectError == "" && len(c.Outputs) == 0 {
		return fmt.Errorf("case %s: expected outputs or expect_error", c.Name)
	}
	if c.Tolerance < 0 {
		return fmt.Errorf("case %s: negative tolerance %g", c.Name, c.Tolerance)
	}
	return nil
}

// Node converts the case into an operator node.
func (c *Case) Node() (*operators.Node, error) {
	attrs, err := convertAttributes(c.Attributes)
	if err != nil {
		return nil, fmt.Errorf("case %s: %w", c.Name, err)
	}

	node := &operators.Node{
		Name:       c.Name,
		OpType:     c.Op,
		Domain:     c.Domain,
		Attributes: attrs,
	}
	for _, in := range c.Inputs {
		node.Inputs = append(node.Inputs, in.Name)
	}
	for _, out := range c.Outputs {
		node.Outputs = append(node.Outputs, out.Name)
	}
	return node, nil
}

// Build materializes s as a tensor. Absent inputs build to nil.
// Integer data must be integral and within the dtype's range.
func (s TensorSpec) Build() (*tensor.RawTensor, error) {
	if s.Absent {
		return nil, nil
	}

	dt, ok := tensor.ParseDataType(s.DType)
	if !ok {
		return nil, fmt.Errorf("tensor %s: unknown dtype %q", s.Name, s.DType)
	}
	shape := tensor.Shape(s.Shape)
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("tensor %s: %w", s.Name, err)
	}
	if len(s.Data) != shape.NumElements() {
		return nil, fmt.Errorf("tensor %s: %d values for shape %v (%d elements)",
			s.Name, len(s.Data), shape, shape.NumElements())
	}

	var (
		raw *tensor.RawTensor
		err error
	)
	switch dt {
	case tensor.Float32:
		data := make([]float32, len(s.Data))
		for i, v := range s.Data {
			data[i] = float32(v)
		}
		raw, err = tensor.FromSlice(data, shape)
	case tensor.Int8:
		var data []int8
		data, err = integers[int8](s, math.MinInt8, math.MaxInt8)
		if err == nil {
			raw, err = tensor.FromSlice(data, shape)
		}
	case tensor.Uint8:
		var data []uint8
		data, err = integers[uint8](s, 0, math.MaxUint8)
		if err == nil {
			raw, err = tensor.FromSlice(data, shape)
		}
	case tensor.Int32:
		var data []int32
		data, err = integers[int32](s, math.MinInt32, math.MaxInt32)
		if err == nil {
			raw, err = tensor.FromSlice(data, shape)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("tensor %s: %w", s.Name, err)
	}
	return raw, nil
}

func integers[T int8 | uint8 | int32](s TensorSpec, lo, hi float64) ([]T, error) {
	out := make([]T, len(s.Data))
	for i, v := range s.Data {
		if v != math.Trunc(v) || v < lo || v > hi {
			return nil, fmt.Errorf("value %v at index %d is not a valid %s", v, i, s.DType)
		}
		out[i] = T(v)
	}
	return out, nil
}

// convertAttributes maps decoded YAML values onto ONNX attributes:
// integers become INT, floats FLOAT, strings STRING, booleans INT 0/1,
// and lists INTS or FLOATS depending on their elements.
func convertAttributes(in map[string]any) ([]operators.Attribute, error) {
	names := make([]string, 0, len(in))
	for name := range in {
		names = append(names, name)
	}
	sort.Strings(names)

	attrs := make([]operators.Attribute, 0, len(in))
	for _, name := range names {
		attr, err := convertAttribute(name, in[name])
		if err != nil {
			return nil, err
		}
		attrs = append(attrs, attr)
	}
	return attrs, nil
}

func convertAttribute(name string, v any) (operators.Attribute, error) {
	switch val := v.(type) {
	case int:
		return operators.IntAttr(name, int64(val)), nil
	case int64:
		return operators.IntAttr(name, val), nil
	case float64:
		return operators.FloatAttr(name, float32(val)), nil
	case string:
		return operators.StringAttr(name, val), nil
	case bool:
		if val {
			return operators.IntAttr(name, 1), nil
		}
		return operators.IntAttr(name, 0), nil
	case []any:
		return convertList(name, val)
	default:
		return operators.Attribute{}, fmt.Errorf("attribute %s: unsupported value %v (%T)", name, v, v)
	}
}

func convertList(name string, list []any) (operators.Attribute, error) {
	ints := make([]int64, 0, len(list))
	floats := make([]float32, 0, len(list))
	isFloat := false

	for _, item := range list {
		switch val := item.(type) {
		case int:
			ints = append(ints, int64(val))
			floats = append(floats, float32(val))
		case int64:
			ints = append(ints, val)
			floats = append(floats, float32(val))
		case float64:
			isFloat = true
			floats = append(floats, float32(val))
		default:
			return operators.Attribute{}, fmt.Errorf("attribute %s: unsupported list element %v (%T)", name, item, item)
		}
	}

	if isFloat {
		return operators.Attribute{Name: name, Type: operators.AttrFloats, Floats: floats}, nil
	}
	return operators.IntsAttr(name, ints...), nil
}
