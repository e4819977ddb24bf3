package calcula

import (
	"fmt"
	"math"
	"strings"
)

// AngleUnit selects how trigonometric functions interpret their argument.
type AngleUnit int

const (
	Radians AngleUnit = iota
	Degrees
)

func (u AngleUnit) String() string {
	if u == Degrees {
		return "deg"
	}

	return "rad"
}

// ParseAngleUnit accepts rad, deg and their long forms. Empty means
// radians.
func ParseAngleUnit(s string) (AngleUnit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "rad", "radian", "radians":
		return Radians, nil
	case "deg", "degree", "degrees":
		return Degrees, nil
	}

	return Radians, fmt.Errorf("unknown angle unit %q", s)
}

type angleUsage int

const (
	angleNone angleUsage = iota
	angleArgument
	angleResult
)

// Builtin is a numeric function callable from an expression.
type Builtin struct {
	Name  string
	Arity int
	// Libm is the C math library symbol the IR exporter calls. Empty means
	// the function cannot be compiled.
	Libm string

	angle angleUsage
	eval  func(x float64) float64
}

func (b *Builtin) String() string {
	return b.Name
}

// Call applies b to x, converting angles according to unit.
func (b *Builtin) Call(x float64, unit AngleUnit) float64 {
	if unit == Degrees && b.angle == angleArgument {
		x = x * math.Pi / 180
	}

	y := b.eval(x)

	if unit == Degrees && b.angle == angleResult {
		y = y * 180 / math.Pi
	}

	return y
}

// inDegrees rewrites e so that, evaluated in radians, it behaves like e
// evaluated in degrees. The compiled code has no angle mode of its own.
func inDegrees(e Expr, symbols *SymbolTable) Expr {
	switch n := e.(type) {
	case *BinaryExpr:
		return binary(n.Operation, inDegrees(n.Op1, symbols), inDegrees(n.Op2, symbols))
	case *UnaryExpr:
		return &UnaryExpr{Operation: n.Operation, Operand: inDegrees(n.Operand, symbols)}
	case *FuncCall:
		args := make([]Expr, len(n.Args))
		for i, arg := range n.Args {
			args[i] = inDegrees(arg, symbols)
		}

		b, ok := symbols.Function(n.Name)
		if ok && b.angle == angleArgument && len(args) == 1 {
			args[0] = div(mul(args[0], num(math.Pi)), num(180))
		}

		var out Expr = &FuncCall{Name: n.Name, Args: args}
		if ok && b.angle == angleResult {
			out = div(mul(out, num(180)), num(math.Pi))
		}

		return out
	}

	return Clone(e)
}

// NamedConstant is an identifier with a fixed value, such as pi.
type NamedConstant struct {
	Name  string
	Value float64
}

func (c *NamedConstant) String() string {
	return c.Name
}

func defineBuiltins(t *SymbolTable) {
	defineBuiltinFunc(t, "sin", "sin", angleArgument, math.Sin)
	defineBuiltinFunc(t, "cos", "cos", angleArgument, math.Cos)
	defineBuiltinFunc(t, "tan", "tan", angleArgument, math.Tan)
	defineBuiltinFunc(t, "asin", "asin", angleResult, math.Asin)
	defineBuiltinFunc(t, "acos", "acos", angleResult, math.Acos)
	defineBuiltinFunc(t, "atan", "atan", angleResult, math.Atan)
	defineBuiltinFunc(t, "log", "log10", angleNone, math.Log10)
	defineBuiltinFunc(t, "ln", "log", angleNone, math.Log)
	defineBuiltinFunc(t, "sqrt", "sqrt", angleNone, math.Sqrt)
	defineBuiltinFunc(t, "exp", "exp", angleNone, math.Exp)
	defineBuiltinFunc(t, "abs", "fabs", angleNone, math.Abs)
	defineBuiltinFunc(t, "fact", "", angleNone, Factorial)

	t.Add("pi", &NamedConstant{Name: "pi", Value: math.Pi})
	t.Add("e", &NamedConstant{Name: "e", Value: math.E})
}

func defineBuiltinFunc(t *SymbolTable, name, libm string, angle angleUsage, fn func(float64) float64) {
	t.Add(name, &Builtin{
		Name:  name,
		Arity: 1,
		Libm:  libm,
		angle: angle,
		eval:  fn,
	})
}

// Factorial is defined for non-negative integers only; any other input
// yields NaN. Results beyond float64 range are +Inf.
func Factorial(n float64) float64 {
	if n < 0 || n != math.Trunc(n) || math.IsNaN(n) {
		return math.NaN()
	}

	if n > 170 {
		return math.Inf(1)
	}

	result := 1.0
	for i := 2.0; i <= n; i++ {
		result *= i
	}

	return result
}
