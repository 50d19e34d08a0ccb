// Package generator implements the value-generation algebra: one Generator
// per config.GeneratorSpec, each holding whatever per-instance state its
// kind needs (a running total, a toggled bool, a monotonic counter) across
// successive Next calls.
package generator

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/google/uuid"

	"github.com/marcelo-6/mqtt-sim/pkg/config"
	"github.com/marcelo-6/mqtt-sim/pkg/errs"
	"github.com/marcelo-6/mqtt-sim/pkg/rng"
)

// Generator produces successive values for one field or payload slot.
type Generator interface {
	Next() (any, error)
}

// New builds the Generator for spec, backed by src for any randomness it
// needs. Expression generators compile their *vm.Program once, here, and
// reuse it on every Next call.
func New(spec config.GeneratorSpec, src *rng.Source) (Generator, error) {
	switch spec.Kind {
	case config.GenConst:
		return &constGen{value: spec.Value}, nil
	case config.GenBoolToggle:
		return &boolToggleGen{value: spec.Initial, first: true}, nil
	case config.GenNumberWalk:
		start := spec.Min
		if spec.Start != nil {
			start = *spec.Start
		}
		return &numberWalkGen{spec: spec, current: start, direction: 1}, nil
	case config.GenNumberRand:
		return &numberRandGen{spec: spec, src: src}, nil
	case config.GenChoice:
		if len(spec.Choices) == 0 {
			return nil, &errs.GeneratorError{Kind: string(spec.Kind), Err: fmt.Errorf("no choices configured")}
		}
		return &choiceGen{choices: spec.Choices, src: src}, nil
	case config.GenSequence:
		if len(spec.Values) == 0 {
			return nil, &errs.GeneratorError{Kind: string(spec.Kind), Err: fmt.Errorf("no values configured")}
		}
		return &sequenceGen{values: spec.Values, loop: spec.Loop}, nil
	case config.GenExpression:
		return newExpressionGen(spec, src)
	case config.GenTimestamp:
		switch spec.TimestampMode {
		case "", "iso", "unix":
		default:
			return nil, &errs.GeneratorError{Kind: string(spec.Kind), Err: fmt.Errorf("unknown timestamp mode %q", spec.TimestampMode)}
		}
		return &timestampGen{mode: spec.TimestampMode}, nil
	case config.GenUUID:
		return &uuidGen{}, nil
	default:
		return nil, &errs.GeneratorError{Kind: string(spec.Kind), Err: fmt.Errorf("unknown generator kind")}
	}
}

type constGen struct {
	value any
}

func (g *constGen) Next() (any, error) { return g.value, nil }

type boolToggleGen struct {
	mu    sync.Mutex
	value bool
	first bool
}

func (g *boolToggleGen) Next() (any, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.first {
		g.first = false
		return g.value, nil
	}
	g.value = !g.value
	return g.value, nil
}

type numberWalkGen struct {
	mu        sync.Mutex
	spec      config.GeneratorSpec
	current   float64
	direction float64 // +1 or -1
}

// Next returns the current value, then steps it by spec.Step in the walk's
// direction; if that step would cross min or max, the direction reverses
// and the step is re-applied from the reversed direction instead, clamped
// to the boundary it would otherwise cross.
func (g *numberWalkGen) Next() (any, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	value := g.current

	next := g.current + g.spec.Step*g.direction
	if next > g.spec.Max || next < g.spec.Min {
		g.direction = -g.direction
		next = g.current + g.spec.Step*g.direction
		if next > g.spec.Max {
			next = g.spec.Max
		}
		if next < g.spec.Min {
			next = g.spec.Min
		}
	}
	g.current = next
	return g.render(value), nil
}

func (g *numberWalkGen) render(v float64) any {
	if g.spec.Integer {
		return int64(math.Round(v))
	}
	return v
}

type numberRandGen struct {
	spec config.GeneratorSpec
	src  *rng.Source
}

func (g *numberRandGen) Next() (any, error) {
	if g.spec.Integer {
		return g.src.IntRange(int64(g.spec.Min), int64(g.spec.Max)), nil
	}
	return g.src.Uniform(g.spec.Min, g.spec.Max), nil
}

type choiceGen struct {
	choices []any
	src     *rng.Source
}

func (g *choiceGen) Next() (any, error) {
	return g.choices[g.src.IntN(len(g.choices))], nil
}

// sequenceGen returns values[i], incrementing i on each call; once i reaches
// the end, it wraps to 0 when loop is set, otherwise clamps at the last
// value.
type sequenceGen struct {
	mu     sync.Mutex
	values []any
	loop   bool
	index  int
}

func (g *sequenceGen) Next() (any, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.index >= len(g.values) {
		if !g.loop {
			return g.values[len(g.values)-1], nil
		}
		g.index = 0
	}
	value := g.values[g.index]
	g.index++
	return value, nil
}

type timestampGen struct {
	mode string // "iso" or "unix"; "" defaults to "iso"
}

func (g *timestampGen) Next() (any, error) {
	now := time.Now().UTC()
	if g.mode == "unix" {
		return float64(now.UnixNano()) / float64(time.Second), nil
	}
	return now.Format(time.RFC3339), nil
}

type uuidGen struct{}

func (g *uuidGen) Next() (any, error) {
	return uuid.NewString(), nil
}

// expressionGen evaluates an expr-lang expression against prev/count and
// the shared random/math helpers on every call. The expression grammar has
// no statements, assignments, or imports, so the restricted surface the
// generator promises falls directly out of what names appear in env.
type expressionGen struct {
	mu      sync.Mutex
	program *vm.Program
	src     *rng.Source
	prev    any
	count   int64
}

func newExpressionGen(spec config.GeneratorSpec, src *rng.Source) (*expressionGen, error) {
	env := expressionEnv(src, nil, 0)
	program, err := expr.Compile(spec.Expression, expr.Env(env))
	if err != nil {
		return nil, &errs.GeneratorError{Kind: string(spec.Kind), Err: fmt.Errorf("compile expression %q: %w", spec.Expression, err)}
	}
	return &expressionGen{program: program, src: src}, nil
}

func (g *expressionGen) Next() (any, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	env := expressionEnv(g.src, g.prev, g.count)
	result, err := expr.Run(g.program, env)
	if err != nil {
		return nil, &errs.GeneratorError{Kind: "expression", Err: fmt.Errorf("evaluate: %w", err)}
	}

	g.prev = result
	g.count++
	return result, nil
}

// expressionEnv builds the restricted variable/function surface an
// expression generator may reference: prev, count, random, randint,
// uniform, time, math.
func expressionEnv(src *rng.Source, prev any, count int64) map[string]any {
	return map[string]any{
		"prev":  prev,
		"count": count,
		"random": func() float64 {
			return src.Float64()
		},
		"randint": func(min, max int) int {
			return int(src.IntRange(int64(min), int64(max)))
		},
		"uniform": func(min, max float64) float64 {
			return src.Uniform(min, max)
		},
		"time": func() int64 {
			return time.Now().Unix()
		},
		"math": map[string]any{
			"sin":  math.Sin,
			"cos":  math.Cos,
			"sqrt": math.Sqrt,
			"abs":  math.Abs,
			"pow":  math.Pow,
			"floor": math.Floor,
			"ceil": math.Ceil,
			"round": math.Round,
		},
	}
}
