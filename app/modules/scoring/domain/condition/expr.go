package condition

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Expr is a node of a parsed expression.
type Expr interface {
	eval(ctx Context) (any, error)
}

var errDivideByZero = errors.New("division by zero")

// Literal is a constant: nil, bool, float64 or string.
type Literal struct {
	Value any
}

// List is an array literal whose items are evaluated.
type List struct {
	Items []Expr
}

// Var reads a path from the context.
type Var struct {
	Path    Expr
	Default Expr
}

// And returns the first falsy operand, or the last operand.
type And struct {
	Args []Expr
}

// Or returns the first truthy operand, or the last operand.
type Or struct {
	Args []Expr
}

// Not negates the truthiness of its operand.
type Not struct {
	Arg Expr
}

// Compare is an equality or ordering test.
type Compare struct {
	Op   string
	Args []Expr
}

// Arith is numeric arithmetic, including min and max.
type Arith struct {
	Op   string
	Args []Expr
}

// If is a condition/then chain with an optional trailing else.
type If struct {
	Args []Expr
}

// In tests string or list membership.
type In struct {
	Needle   Expr
	Haystack Expr
}

// Accessor calls a named scoring function.
type Accessor struct {
	Name string
	Args []Expr
}

func (l Literal) eval(Context) (any, error) { return l.Value, nil }

func (l List) eval(ctx Context) (any, error) {
	out := make([]any, 0, len(l.Items))
	for _, it := range l.Items {
		v, err := it.eval(ctx)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (v Var) eval(ctx Context) (any, error) {
	if v.Path == nil {
		return nil, nil
	}
	p, err := v.Path.eval(ctx)
	if err != nil {
		return nil, err
	}
	var path string
	switch pv := p.(type) {
	case string:
		path = pv
	case float64:
		path = strconv.FormatFloat(pv, 'f', -1, 64)
	case nil:
		return nil, nil
	default:
		return nil, fmt.Errorf("var path must be a string, got %T", p)
	}
	if val, ok := ctx.Var(path); ok && val != nil {
		return val, nil
	}
	if v.Default != nil {
		return v.Default.eval(ctx)
	}
	return nil, nil
}

func (a And) eval(ctx Context) (any, error) {
	var last any
	for _, arg := range a.Args {
		v, err := arg.eval(ctx)
		if err != nil {
			return nil, err
		}
		if !Truthy(v) {
			return v, nil
		}
		last = v
	}
	return last, nil
}

func (o Or) eval(ctx Context) (any, error) {
	var last any
	for _, arg := range o.Args {
		v, err := arg.eval(ctx)
		if err != nil {
			return nil, err
		}
		if Truthy(v) {
			return v, nil
		}
		last = v
	}
	return last, nil
}

func (n Not) eval(ctx Context) (any, error) {
	v, err := n.Arg.eval(ctx)
	if err != nil {
		return nil, err
	}
	return !Truthy(v), nil
}

func (c Compare) eval(ctx Context) (any, error) {
	vals, err := evalAll(c.Args, ctx)
	if err != nil {
		return nil, err
	}
	switch c.Op {
	case "==":
		return looseEqual(vals[0], vals[1]), nil
	case "!=":
		return !looseEqual(vals[0], vals[1]), nil
	case "===":
		return strictEqual(vals[0], vals[1]), nil
	case "!==":
		return !strictEqual(vals[0], vals[1]), nil
	}

	nums := make([]float64, len(vals))
	for i, v := range vals {
		f, err := toNumber(v)
		if err != nil {
			return nil, err
		}
		nums[i] = f
	}
	switch c.Op {
	case "<":
		if len(nums) == 3 {
			return nums[0] < nums[1] && nums[1] < nums[2], nil
		}
		return nums[0] < nums[1], nil
	case "<=":
		if len(nums) == 3 {
			return nums[0] <= nums[1] && nums[1] <= nums[2], nil
		}
		return nums[0] <= nums[1], nil
	case ">":
		return nums[0] > nums[1], nil
	case ">=":
		return nums[0] >= nums[1], nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownOperator, c.Op)
}

func (a Arith) eval(ctx Context) (any, error) {
	vals, err := evalAll(a.Args, ctx)
	if err != nil {
		return nil, err
	}
	nums := make([]float64, len(vals))
	for i, v := range vals {
		f, err := toNumber(v)
		if err != nil {
			return nil, err
		}
		nums[i] = f
	}

	switch a.Op {
	case "+":
		sum := 0.0
		for _, n := range nums {
			sum += n
		}
		return sum, nil
	case "*":
		if len(nums) == 0 {
			return nil, errors.New("* needs arguments")
		}
		prod := 1.0
		for _, n := range nums {
			prod *= n
		}
		return prod, nil
	case "-":
		if len(nums) == 1 {
			return -nums[0], nil
		}
		return nums[0] - nums[1], nil
	case "/":
		if nums[1] == 0 {
			return nil, errDivideByZero
		}
		return nums[0] / nums[1], nil
	case "%":
		if nums[1] == 0 {
			return nil, errDivideByZero
		}
		return math.Mod(nums[0], nums[1]), nil
	case "min", "max":
		if len(nums) == 0 {
			return nil, fmt.Errorf("%s needs arguments", a.Op)
		}
		out := nums[0]
		for _, n := range nums[1:] {
			if a.Op == "min" {
				out = math.Min(out, n)
			} else {
				out = math.Max(out, n)
			}
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownOperator, a.Op)
}

func (i If) eval(ctx Context) (any, error) {
	args := i.Args
	for len(args) >= 2 {
		cond, err := args[0].eval(ctx)
		if err != nil {
			return nil, err
		}
		if Truthy(cond) {
			return args[1].eval(ctx)
		}
		args = args[2:]
	}
	if len(args) == 1 {
		return args[0].eval(ctx)
	}
	return nil, nil
}

func (in In) eval(ctx Context) (any, error) {
	needle, err := in.Needle.eval(ctx)
	if err != nil {
		return nil, err
	}
	hay, err := in.Haystack.eval(ctx)
	if err != nil {
		return nil, err
	}
	switch h := hay.(type) {
	case string:
		s, ok := needle.(string)
		return ok && strings.Contains(h, s), nil
	case []any:
		for _, item := range h {
			if looseEqual(needle, item) {
				return true, nil
			}
		}
		return false, nil
	}
	return false, nil
}

func (a Accessor) eval(ctx Context) (any, error) {
	spec, ok := accessors[a.Name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownOperator, a.Name)
	}
	args, err := evalAll(a.Args, ctx)
	if err != nil {
		return nil, err
	}
	return spec.fn(ctx, args)
}

func evalAll(exprs []Expr, ctx Context) ([]any, error) {
	out := make([]any, len(exprs))
	for i, e := range exprs {
		v, err := e.eval(ctx)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// Truthy follows json-logic truthiness.
func Truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0 && !math.IsNaN(t)
	case int:
		return t != 0
	case string:
		return t != ""
	case []any:
		return len(t) > 0
	case Team:
		return t != nil
	case Hole:
		return t != nil
	}
	return true
}

func toNumber(v any) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case int:
		return float64(t), nil
	case bool:
		if t {
			return 1, nil
		}
		return 0, nil
	case nil:
		return 0, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, fmt.Errorf("not a number: %q", t)
		}
		return f, nil
	}
	return 0, fmt.Errorf("not a number: %T", v)
}

func strictEqual(a, b any) bool {
	switch at := a.(type) {
	case nil:
		return b == nil
	case float64:
		bt, ok := b.(float64)
		return ok && at == bt
	case int:
		bt, ok := b.(int)
		return ok && at == bt
	case bool:
		bt, ok := b.(bool)
		return ok && at == bt
	case string:
		bt, ok := b.(string)
		return ok && at == bt
	case Team:
		bt, ok := b.(Team)
		return ok && at != nil && bt != nil && at.ID() == bt.ID()
	case Hole:
		bt, ok := b.(Hole)
		return ok && at != nil && bt != nil && at.Number() == bt.Number()
	}
	return false
}

func looseEqual(a, b any) bool {
	if strictEqual(a, b) {
		return true
	}
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if ta, ok := a.(Team); ok {
		if s, ok := b.(string); ok {
			return ta != nil && ta.ID() == s
		}
		return false
	}
	if tb, ok := b.(Team); ok {
		if s, ok := a.(string); ok {
			return tb != nil && tb.ID() == s
		}
		return false
	}
	as, aStr := a.(string)
	bs, bStr := b.(string)
	if aStr && bStr {
		return as == bs
	}
	fa, errA := toNumber(a)
	fb, errB := toNumber(b)
	return errA == nil && errB == nil && fa == fb
}
