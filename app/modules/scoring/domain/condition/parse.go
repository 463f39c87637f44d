package condition

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// MaxDepth bounds expression nesting.
const MaxDepth = 64

var (
	// ErrEmpty is returned for a blank expression.
	ErrEmpty = errors.New("empty expression")
	// ErrUnknownOperator is returned for operators the evaluator does not know.
	ErrUnknownOperator = errors.New("unknown operator")
	// ErrMalformed is returned for documents that are not a valid expression.
	ErrMalformed = errors.New("malformed expression")
	// ErrTooDeep is returned when nesting exceeds MaxDepth.
	ErrTooDeep = errors.New("expression nested too deeply")
)

// Parse compiles an expression. Single-quoted documents are accepted.
func Parse(src string) (Expr, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return nil, ErrEmpty
	}
	doc, err := decode(src)
	if err != nil {
		doc, err = decode(doubleQuote(src))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
	}
	return build(doc, 0)
}

// doubleQuote rewrites single-quoted string delimiters to JSON double quotes.
// Apostrophes inside double-quoted strings are left alone, and inside a
// single-quoted string an apostrophe is written as \'.
func doubleQuote(src string) string {
	var b strings.Builder
	b.Grow(len(src))
	var quote byte
	for i := 0; i < len(src); i++ {
		c := src[i]
		switch {
		case quote == 0:
			if c == '\'' || c == '"' {
				quote = c
				c = '"'
			}
			b.WriteByte(c)
		case c == '\\' && i+1 < len(src):
			i++
			if quote == '\'' && src[i] == '\'' {
				b.WriteByte('\'')
				continue
			}
			b.WriteByte(c)
			b.WriteByte(src[i])
		case c == quote:
			quote = 0
			b.WriteByte('"')
		case c == '"':
			b.WriteString(`\"`)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func decode(src string) (any, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(src)))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, errors.New("trailing data")
	}
	return doc, nil
}

func build(node any, depth int) (Expr, error) {
	if depth > MaxDepth {
		return nil, ErrTooDeep
	}
	switch n := node.(type) {
	case nil:
		return Literal{}, nil
	case bool, string:
		return Literal{Value: n}, nil
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return nil, fmt.Errorf("%w: bad number %s", ErrMalformed, n)
		}
		return Literal{Value: f}, nil
	case []any:
		items, err := buildAll(n, depth)
		if err != nil {
			return nil, err
		}
		return List{Items: items}, nil
	case map[string]any:
		if len(n) != 1 {
			return nil, fmt.Errorf("%w: operator objects need exactly one key, got %d", ErrMalformed, len(n))
		}
		for op, raw := range n {
			var args []any
			if list, ok := raw.([]any); ok {
				args = list
			} else {
				args = []any{raw}
			}
			built, err := buildAll(args, depth)
			if err != nil {
				return nil, err
			}
			return buildOperator(op, built)
		}
	}
	return nil, fmt.Errorf("%w: unexpected %T", ErrMalformed, node)
}

func buildAll(nodes []any, depth int) ([]Expr, error) {
	out := make([]Expr, 0, len(nodes))
	for _, n := range nodes {
		e, err := build(n, depth+1)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func buildOperator(op string, args []Expr) (Expr, error) {
	arity := func(lo, hi int) error {
		if len(args) < lo || (hi >= 0 && len(args) > hi) {
			return fmt.Errorf("%w: %s takes %d..%d arguments, got %d", ErrMalformed, op, lo, hi, len(args))
		}
		return nil
	}

	switch op {
	case "var":
		if err := arity(0, 2); err != nil {
			return nil, err
		}
		v := Var{}
		if len(args) > 0 {
			v.Path = args[0]
		}
		if len(args) > 1 {
			v.Default = args[1]
		}
		return v, nil
	case "and":
		if err := arity(1, -1); err != nil {
			return nil, err
		}
		return And{Args: args}, nil
	case "or":
		if err := arity(1, -1); err != nil {
			return nil, err
		}
		return Or{Args: args}, nil
	case "not", "!":
		if err := arity(1, 1); err != nil {
			return nil, err
		}
		return Not{Arg: args[0]}, nil
	case "!!":
		if err := arity(1, 1); err != nil {
			return nil, err
		}
		return Not{Arg: Not{Arg: args[0]}}, nil
	case "==", "===", "!=", "!==", ">", ">=":
		if err := arity(2, 2); err != nil {
			return nil, err
		}
		return Compare{Op: op, Args: args}, nil
	case "<", "<=":
		if err := arity(2, 3); err != nil {
			return nil, err
		}
		return Compare{Op: op, Args: args}, nil
	case "+", "*", "min", "max":
		return Arith{Op: op, Args: args}, nil
	case "-":
		if err := arity(1, 2); err != nil {
			return nil, err
		}
		return Arith{Op: op, Args: args}, nil
	case "/", "%":
		if err := arity(2, 2); err != nil {
			return nil, err
		}
		return Arith{Op: op, Args: args}, nil
	case "if", "?:":
		if err := arity(1, -1); err != nil {
			return nil, err
		}
		return If{Args: args}, nil
	case "in":
		if err := arity(2, 2); err != nil {
			return nil, err
		}
		return In{Needle: args[0], Haystack: args[1]}, nil
	}

	if spec, ok := accessors[op]; ok {
		if err := arity(spec.min, spec.max); err != nil {
			return nil, err
		}
		return Accessor{Name: op, Args: args}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownOperator, op)
}
