package condition

import (
	"fmt"
	"sync"
)

// Evaluate parses and evaluates src, failing closed: any parse or evaluation
// error yields false.
func Evaluate(src string, ctx Context) bool {
	expr, err := Parse(src)
	if err != nil {
		return false
	}
	v, err := EvaluateExpr(expr, ctx)
	if err != nil {
		return false
	}
	return Truthy(v)
}

// EvaluateExpr evaluates a parsed expression. A panic inside a Context
// implementation is returned as an error.
func EvaluateExpr(expr Expr, ctx Context) (result any, err error) {
	if expr == nil {
		return nil, ErrEmpty
	}
	defer func() {
		if r := recover(); r != nil {
			result, err = nil, fmt.Errorf("evaluation panicked: %v", r)
		}
	}()
	return expr.eval(ctx)
}

// Cache memoizes parsed expressions. It is safe for concurrent use.
type Cache struct {
	mu    sync.Mutex
	exprs map[string]cached
}

type cached struct {
	expr Expr
	err  error
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{exprs: make(map[string]cached)}
}

// Parse returns the cached parse of src.
func (c *Cache) Parse(src string) (Expr, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if hit, ok := c.exprs[src]; ok {
		return hit.expr, hit.err
	}
	expr, err := Parse(src)
	c.exprs[src] = cached{expr: expr, err: err}
	return expr, err
}

// Evaluate is Evaluate with parsing memoized. The returned error is the parse
// or evaluation error, if any; the boolean is false whenever err is non-nil.
func (c *Cache) Evaluate(src string, ctx Context) (bool, error) {
	expr, err := c.Parse(src)
	if err != nil {
		return false, err
	}
	v, err := EvaluateExpr(expr, ctx)
	if err != nil {
		return false, err
	}
	return Truthy(v), nil
}
