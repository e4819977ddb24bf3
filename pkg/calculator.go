package calcula

import (
	"errors"
	"math"
	"sort"

	"github.com/llir/llvm/ir"
)

// DefaultVariable is used when a derivative is requested without naming
// the variable.
const DefaultVariable = "x"

// Calculator is the entry point used by the CLI and the HTTP API. Every
// method is a pure function of its arguments; failures are reported in the
// returned value and never panic.
type Calculator struct {
	symbols *SymbolTable
	angle   AngleUnit
}

type Option func(*Calculator)

func WithAngleUnit(u AngleUnit) Option {
	return func(c *Calculator) {
		c.angle = u
	}
}

func WithSymbols(t *SymbolTable) Option {
	return func(c *Calculator) {
		c.symbols = t
	}
}

func NewCalculator(opts ...Option) *Calculator {
	c := &Calculator{
		symbols: NewGlobalSymbolTable(),
		angle:   Radians,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *Calculator) Symbols() *SymbolTable {
	return c.symbols
}

func (c *Calculator) Angle() AngleUnit {
	return c.angle
}

// Result is the outcome of an evaluation. Display is what a user sees:
// the formatted value, or "Error" when Err is set or Value is a sentinel.
type Result struct {
	Value   float64
	Display string
	Err     error
}

func (r Result) OK() bool {
	return r.Err == nil && !IsSentinel(r.Value)
}

func resultOf(v float64, err error) Result {
	if err != nil {
		return Result{Value: math.NaN(), Display: "Error", Err: err}
	}

	return Result{Value: v, Display: FormatResult(v)}
}

// Evaluate parses and evaluates input with the given bindings.
func (c *Calculator) Evaluate(input string, vars map[string]float64) Result {
	expr, err := Parse(input)
	if err != nil {
		return resultOf(0, err)
	}

	return c.EvaluateExpr(expr, EnvOf(vars))
}

func (c *Calculator) EvaluateExpr(expr Expr, env *Env) Result {
	ev := &Evaluator{Symbols: c.symbols, Angle: c.angle}
	return resultOf(ev.Evaluate(expr, env))
}

type DeriveOptions struct {
	// Raw disables simplification of the derivative.
	Raw bool
	// Order of the derivative, 1 when zero.
	Order int
}

type Derivation struct {
	Input      Expr
	Derivative Expr
	Variable   string
	Text       string
	LaTeX      string
	Err        error
}

// Derive differentiates input with respect to variable.
func (c *Calculator) Derive(input, variable string, opts DeriveOptions) Derivation {
	if variable == "" {
		variable = DefaultVariable
	}

	d := Derivation{Variable: variable}

	expr, err := Parse(input)
	if err != nil {
		d.Err = err
		return d
	}
	d.Input = expr

	order := opts.Order
	if order == 0 {
		order = 1
	}

	deriv, err := DifferentiateN(expr, variable, order)
	if err != nil {
		d.Err = err
		return d
	}

	if !opts.Raw {
		deriv = Simplify(deriv)
	}

	d.Derivative = deriv
	d.Text = Render(deriv)
	d.LaTeX = LaTeX(deriv)

	return d
}

// At evaluates the derivative at point, binding the derivation variable.
func (c *Calculator) At(d Derivation, point float64, vars map[string]float64) Result {
	if d.Err != nil {
		return resultOf(0, d.Err)
	}

	env := EnvOf(vars)
	env.Set(d.Variable, point)

	// Derivatives are only meaningful in radians.
	ev := &Evaluator{Symbols: c.symbols, Angle: Radians}
	return resultOf(ev.Evaluate(d.Derivative, env))
}

// Compile parses input and lowers it to LLVM IR. When params is empty the
// free variables of the expression are used in sorted order. In degree
// mode the conversions are compiled into the function.
func (c *Calculator) Compile(input, name string, params []string) (*ir.Module, error) {
	expr, err := Parse(input)
	if err != nil {
		return nil, err
	}

	if len(params) == 0 {
		for _, v := range FreeVariables(expr) {
			if _, isConst := c.symbols.Constant(v); !isConst {
				params = append(params, v)
			}
		}
		sort.Strings(params)
	}

	if name == "" {
		name = "f"
	}

	if errs := Analyze(expr, c.symbols); len(errs) != 0 {
		return nil, errs[0]
	}

	if c.angle == Degrees {
		expr = inDegrees(expr, c.symbols)
	}

	b := NewLLVMIRBuilder(c.symbols)
	if err := b.Function(name, params, expr); err != nil {
		return nil, err
	}

	return b.Module(), nil
}

// ErrorKind classifies err for callers that map errors to exit codes or
// HTTP statuses.
func ErrorKind(err error) string {
	var (
		parseErr   *ParseError
		unboundErr *UnboundVariableError
		unsupErr   *UnsupportedOperationError
		arityErr   *ArityError
	)

	switch {
	case err == nil:
		return ""
	case errors.As(err, &parseErr):
		return "parse"
	case errors.As(err, &unboundErr):
		return "unbound_variable"
	case errors.As(err, &unsupErr):
		return "unsupported_operation"
	case errors.As(err, &arityErr):
		return "arity"
	}

	return "internal"
}
