package scoringdomain

import (
	"fmt"
	"strings"
)

// Combination rule names.
const (
	CombinationMultiplicative = "multiplicative"
	CombinationAdditive       = "additive"
)

// Combiner folds one multiplier into a running point total.
type Combiner interface {
	Name() string
	// Apply returns the new total. base is the pre-multiplier total of the
	// hole, current is the total after earlier multipliers.
	Apply(base, current, factor float64) float64
}

type multiplicative struct{}

func (multiplicative) Name() string { return CombinationMultiplicative }

func (multiplicative) Apply(_, current, factor float64) float64 {
	return current * factor
}

// additive adds (factor-1) times the base for each multiplier, so two doubles
// triple the hole instead of quadrupling it.
type additive struct{}

func (additive) Name() string { return CombinationAdditive }

func (additive) Apply(base, current, factor float64) float64 {
	return current + base*(factor-1)
}

// CombinerFor returns the combiner registered under name. The empty name
// selects multiplicative.
func CombinerFor(name string) (Combiner, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", CombinationMultiplicative:
		return multiplicative{}, nil
	case CombinationAdditive:
		return additive{}, nil
	}
	return nil, fmt.Errorf("unknown combination rule %q", name)
}

// Step is one recorded application of a factor.
type Step struct {
	Factor float64
	Pre    float64
	Post   float64
}

// Combine applies factors in order and records each step.
func Combine(c Combiner, base float64, factors []float64) (float64, []Step) {
	current := base
	steps := make([]Step, 0, len(factors))
	for _, f := range factors {
		next := c.Apply(base, current, f)
		steps = append(steps, Step{Factor: f, Pre: current, Post: next})
		current = next
	}
	return current, steps
}
