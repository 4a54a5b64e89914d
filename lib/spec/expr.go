package spec

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
)

// Arithmetic expression grammar for $(...) substitutions in size specs.
// Supports +, -, *, /, unary minus, parentheses, dotted references to
// sibling fields and parameters, and a small set of functions.

type exprAST struct {
	Left *termAST  `parser:"@@"`
	Rest []*opTerm `parser:"@@*"`
}

type opTerm struct {
	Op   string   `parser:"@('+' | '-')"`
	Term *termAST `parser:"@@"`
}

type termAST struct {
	Left *unaryAST  `parser:"@@"`
	Rest []*opUnary `parser:"@@*"`
}

type opUnary struct {
	Op    string    `parser:"@('*' | '/')"`
	Unary *unaryAST `parser:"@@"`
}

type unaryAST struct {
	Neg     bool        `parser:"@'-'?"`
	Primary *primaryAST `parser:"@@"`
}

type primaryAST struct {
	Call   *callAST `parser:"  @@"`
	Ref    *string  `parser:"| @(Ident ('.' Ident)*)"`
	Number *float64 `parser:"| @(Float | Int)"`
	Sub    *exprAST `parser:"| '(' @@ ')'"`
}

type callAST struct {
	Func string     `parser:"@(Ident) '('"`
	Args []*exprAST `parser:"(@@ (',' @@)*)? ')'"`
}

var exprParser = participle.MustBuild[exprAST](
	participle.UseLookahead(2),
)

// Evaluator resolves $(...) expressions against a symbol table of
// numeric values keyed by dotted field paths.
type Evaluator struct {
	symbols map[string]float64
}

func NewEvaluator() *Evaluator {
	return &Evaluator{symbols: map[string]float64{}}
}

// Define adds or replaces a symbol.
func (ev *Evaluator) Define(name string, value float64) {
	ev.symbols[name] = value
}

// DefineAll flattens the numeric leaves of a record into dotted symbol
// names and adds them all.
func (ev *Evaluator) DefineAll(prefix string, rec map[string]any) {
	for k, v := range rec {
		name := k
		if prefix != "" {
			name = prefix + "." + k
		}
		switch val := v.(type) {
		case map[string]any:
			ev.DefineAll(name, val)
		default:
			if f, err := asFloat(val); err == nil {
				ev.symbols[name] = f
			}
		}
	}
}

// errUnresolved marks evaluation that failed only because a referenced
// symbol is not (yet) defined; the caller may retry after more symbols
// resolve.
type errUnresolved struct{ name string }

func (e errUnresolved) Error() string { return fmt.Sprintf("unresolved reference %q", e.name) }

// Eval parses and evaluates a single bare expression.
func (ev *Evaluator) Eval(expr string) (float64, error) {
	ast, err := exprParser.ParseString("", expr)
	if err != nil {
		return 0, fmt.Errorf("parse %q: %w", expr, err)
	}
	return ev.evalExpr(ast)
}

func (ev *Evaluator) evalExpr(e *exprAST) (float64, error) {
	v, err := ev.evalTerm(e.Left)
	if err != nil {
		return 0, err
	}
	for _, r := range e.Rest {
		rv, err := ev.evalTerm(r.Term)
		if err != nil {
			return 0, err
		}
		if r.Op == "+" {
			v += rv
		} else {
			v -= rv
		}
	}
	return v, nil
}

func (ev *Evaluator) evalTerm(t *termAST) (float64, error) {
	v, err := ev.evalUnary(t.Left)
	if err != nil {
		return 0, err
	}
	for _, r := range t.Rest {
		rv, err := ev.evalUnary(r.Unary)
		if err != nil {
			return 0, err
		}
		if r.Op == "*" {
			v *= rv
		} else {
			if rv == 0 {
				return 0, fmt.Errorf("division by zero")
			}
			v /= rv
		}
	}
	return v, nil
}

func (ev *Evaluator) evalUnary(u *unaryAST) (float64, error) {
	v, err := ev.evalPrimary(u.Primary)
	if err != nil {
		return 0, err
	}
	if u.Neg {
		v = -v
	}
	return v, nil
}

func (ev *Evaluator) evalPrimary(p *primaryAST) (float64, error) {
	switch {
	case p.Call != nil:
		return ev.evalCall(p.Call)
	case p.Ref != nil:
		if v, ok := ev.symbols[*p.Ref]; ok {
			return v, nil
		}
		return 0, errUnresolved{*p.Ref}
	case p.Number != nil:
		return *p.Number, nil
	case p.Sub != nil:
		return ev.evalExpr(p.Sub)
	}
	return 0, fmt.Errorf("empty expression")
}

func (ev *Evaluator) evalCall(c *callAST) (float64, error) {
	args := make([]float64, len(c.Args))
	for i, a := range c.Args {
		v, err := ev.evalExpr(a)
		if err != nil {
			return 0, err
		}
		args[i] = v
	}

	unary := map[string]func(float64) float64{
		"sqrt":  math.Sqrt,
		"abs":   math.Abs,
		"floor": math.Floor,
		"ceil":  math.Ceil,
		"round": math.Round,
	}
	if fn, ok := unary[c.Func]; ok {
		if len(args) != 1 {
			return 0, fmt.Errorf("%s: want 1 argument, got %d", c.Func, len(args))
		}
		return fn(args[0]), nil
	}

	switch c.Func {
	case "min":
		if len(args) == 0 {
			return 0, fmt.Errorf("min: no arguments")
		}
		v := args[0]
		for _, a := range args[1:] {
			v = math.Min(v, a)
		}
		return v, nil
	case "max":
		if len(args) == 0 {
			return 0, fmt.Errorf("max: no arguments")
		}
		v := args[0]
		for _, a := range args[1:] {
			v = math.Max(v, a)
		}
		return v, nil
	}
	return 0, fmt.Errorf("unknown function %q", c.Func)
}

// expandString substitutes every $(...) in s. If the whole string is one
// expression, the numeric result is returned as a float; otherwise the
// results are formatted back into the string. The escape $!( yields a
// literal $( without evaluation.
func (ev *Evaluator) expandString(s string) (any, error) {
	if !strings.Contains(s, "$(") && !strings.Contains(s, "$!(") {
		return s, nil
	}

	var out strings.Builder
	rest := s
	numeric := true
	var lastValue float64
	count := 0

	for {
		i := strings.Index(rest, "$")
		if i < 0 || i+1 >= len(rest) {
			out.WriteString(rest)
			break
		}
		switch {
		case strings.HasPrefix(rest[i:], "$!("):
			out.WriteString(rest[:i])
			out.WriteString("$(")
			rest = rest[i+3:]
			numeric = false
		case strings.HasPrefix(rest[i:], "$("):
			if i > 0 {
				numeric = false
			}
			out.WriteString(rest[:i])
			body, tail, err := matchParens(rest[i+2:])
			if err != nil {
				return nil, fmt.Errorf("in %q: %w", s, err)
			}
			v, err := ev.Eval(body)
			if err != nil {
				return nil, err
			}
			lastValue = v
			count++
			out.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
			rest = tail
			if rest != "" {
				numeric = false
			}
		default:
			out.WriteString(rest[:i+1])
			rest = rest[i+1:]
		}
	}

	if numeric && count == 1 {
		return lastValue, nil
	}
	return out.String(), nil
}

// matchParens splits "body) tail" at the parenthesis balancing the
// already-consumed opener.
func matchParens(s string) (body, tail string, err error) {
	depth := 1
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return s[:i], s[i+1:], nil
			}
		}
	}
	return "", "", fmt.Errorf("unbalanced parentheses in expression")
}

// ExpandRecord evaluates all $(...) expressions in a part record against
// its own numeric fields and the given parameters. Forward references are
// handled by iterating to a fixpoint, so a field may reference another
// field that is itself an expression.
func ExpandRecord(rec map[string]any, params map[string]any) error {
	ev := NewEvaluator()
	if params != nil {
		ev.DefineAll("", params)
		ev.DefineAll("parameters", params)
	}
	ev.DefineAll("", rec)

	// one pass per leaf is enough for any acyclic reference chain
	maxPasses := countLeaves(rec) + 1
	for pass := 0; pass < maxPasses; pass++ {
		progress, pending, err := expandPass(ev, "", rec)
		if err != nil {
			return err
		}
		if pending == 0 {
			return nil
		}
		if !progress {
			_, _, err := expandPassStrict(ev, "", rec)
			return err
		}
	}
	return fmt.Errorf("expression expansion did not settle")
}

func expandPass(ev *Evaluator, prefix string, rec map[string]any) (progress bool, pending int, err error) {
	return doExpandPass(ev, prefix, rec, false)
}

func expandPassStrict(ev *Evaluator, prefix string, rec map[string]any) (bool, int, error) {
	return doExpandPass(ev, prefix, rec, true)
}

func doExpandPass(ev *Evaluator, prefix string, rec map[string]any, strict bool) (progress bool, pending int, err error) {
	for k, v := range rec {
		name := k
		if prefix != "" {
			name = prefix + "." + k
		}
		switch val := v.(type) {
		case map[string]any:
			p, n, err := doExpandPass(ev, name, val, strict)
			if err != nil {
				return false, 0, err
			}
			progress = progress || p
			pending += n
		case []any:
			for i, e := range val {
				s, ok := e.(string)
				if !ok {
					continue
				}
				res, err := ev.expandString(s)
				if errU := (errUnresolved{}); errors.As(err, &errU) && !strict {
					pending++
					continue
				}
				if err != nil {
					return false, 0, fmt.Errorf("%s[%d]: %w", name, i, err)
				}
				if !sameValue(e, res) {
					val[i] = res
					progress = true
				}
			}
		case string:
			res, err := ev.expandString(val)
			if errU := (errUnresolved{}); errors.As(err, &errU) && !strict {
				pending++
				continue
			}
			if err != nil {
				return false, 0, fmt.Errorf("%s: %w", name, err)
			}
			if !sameValue(v, res) {
				rec[k] = res
				if f, ok := res.(float64); ok {
					ev.Define(name, f)
				}
				progress = true
			}
		}
	}
	return progress, pending, nil
}

func sameValue(a any, b any) bool {
	return a == b
}

func countLeaves(rec map[string]any) int {
	n := 0
	for _, v := range rec {
		if m, ok := v.(map[string]any); ok {
			n += countLeaves(m)
		} else {
			n++
		}
	}
	return n
}
