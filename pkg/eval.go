package calcula

import (
	"math"
	"strconv"
)

// Env binds variable names to values for a single evaluation.
type Env struct {
	vals map[string]float64
}

func NewEnv() *Env {
	return &Env{
		vals: make(map[string]float64),
	}
}

// EnvOf builds an Env from a plain map.
func EnvOf(vals map[string]float64) *Env {
	env := NewEnv()
	for k, v := range vals {
		env.Set(k, v)
	}

	return env
}

func (e *Env) Inherit(e2 *Env) {
	for k, v := range e2.vals {
		e.Set(k, v)
	}
}

func (e *Env) Get(name string) (float64, bool) {
	if e == nil {
		return 0, false
	}

	v, ok := e.vals[name]
	return v, ok
}

func (e *Env) Set(name string, v float64) {
	e.vals[name] = v
}

type Evaluator struct {
	Symbols *SymbolTable
	Angle   AngleUnit
}

func NewEvaluator() *Evaluator {
	return &Evaluator{
		Symbols: NewGlobalSymbolTable(),
		Angle:   Radians,
	}
}

// Evaluate computes expr in radians with the global symbol table.
func Evaluate(expr Expr, env *Env) (float64, error) {
	return NewEvaluator().Evaluate(expr, env)
}

// Evaluate computes the value of expr. Division by zero and domain errors
// are not errors: they surface as NaN or ±Inf, see IsSentinel.
func (ev *Evaluator) Evaluate(expr Expr, env *Env) (float64, error) {
	if errs := Analyze(expr, ev.Symbols); len(errs) != 0 {
		return math.NaN(), errs[0]
	}

	return ev.eval(expr, env)
}

func (ev *Evaluator) eval(expr Expr, env *Env) (float64, error) {
	switch e := expr.(type) {
	case *Constant:
		return e.Value, nil
	case *Variable:
		if v, ok := env.Get(e.Name); ok {
			return v, nil
		}

		if v, ok := ev.Symbols.Constant(e.Name); ok {
			return v, nil
		}

		return math.NaN(), &UnboundVariableError{Name: e.Name}
	case *UnaryExpr:
		v, err := ev.eval(e.Operand, env)
		if err != nil {
			return v, err
		}

		return -v, nil
	case *BinaryExpr:
		return ev.binaryExpression(e, env)
	case *FuncCall:
		fn, ok := ev.Symbols.Function(e.Name)
		if !ok {
			return math.NaN(), &UnsupportedOperationError{Op: e.Name, Reason: "unknown function"}
		}

		if len(e.Args) != fn.Arity {
			return math.NaN(), &ArityError{Name: e.Name, Want: fn.Arity, Got: len(e.Args)}
		}

		arg, err := ev.eval(e.Args[0], env)
		if err != nil {
			return arg, err
		}

		return fn.Call(arg, ev.Angle), nil
	case *BadExpr:
		return math.NaN(), &ParseError{Pos: e.Pos, Msg: e.Error}
	}

	return math.NaN(), &UnsupportedOperationError{Op: "unknown node"}
}

func (ev *Evaluator) binaryExpression(e *BinaryExpr, env *Env) (float64, error) {
	a, err := ev.eval(e.Op1, env)
	if err != nil {
		return a, err
	}

	b, err := ev.eval(e.Op2, env)
	if err != nil {
		return b, err
	}

	switch e.Operation {
	case BinaryAddition:
		return a + b, nil
	case BinarySubtraction:
		return a - b, nil
	case BinaryMultiplication:
		return a * b, nil
	case BinaryDivision:
		return a / b, nil
	case BinaryPower:
		return math.Pow(a, b), nil
	default:
		return math.NaN(), &UnsupportedOperationError{Op: string(e.Operation)}
	}
}

// IsSentinel reports whether v is NaN or infinite, i.e. the result of a
// division by zero or a domain error.
func IsSentinel(v float64) bool {
	return math.IsNaN(v) || math.IsInf(v, 0)
}

// FormatResult renders v for display. Sentinels render as "Error".
func FormatResult(v float64) string {
	if IsSentinel(v) {
		return "Error"
	}

	if v == 0 {
		// Avoid "-0"
		return "0"
	}

	return strconv.FormatFloat(v, 'g', 12, 64)
}
