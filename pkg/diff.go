package calcula

import "fmt"

// Differentiate returns d/d(variable) of expr as a new tree. Identifiers
// other than variable are treated as constants. The result is not
// simplified; see Simplify.
func Differentiate(expr Expr, variable string) (Expr, error) {
	if errs := Analyze(expr, NewGlobalSymbolTable()); len(errs) != 0 {
		return nil, errs[0]
	}

	return derive(expr, variable)
}

// MaxDerivativeOrder bounds the order accepted by DifferentiateN.
const MaxDerivativeOrder = 10

// maxDerivativeNodes bounds the size of an intermediate derivative before
// another pass is attempted. Trees such as x^x grow exponentially per pass.
const maxDerivativeNodes = 10000

// DifferentiateN applies Differentiate n times, simplifying between passes
// to keep intermediate trees small.
func DifferentiateN(expr Expr, variable string, n int) (Expr, error) {
	if n < 1 {
		return nil, fmt.Errorf("derivative order must be at least 1, got %d", n)
	}

	if n > MaxDerivativeOrder {
		return nil, &UnsupportedOperationError{
			Op:     "derivative",
			Reason: fmt.Sprintf("order %d exceeds the maximum of %d", n, MaxDerivativeOrder),
		}
	}

	result := expr
	for i := 0; i < n; i++ {
		d, err := Differentiate(result, variable)
		if err != nil {
			return nil, err
		}

		result = d
		if i < n-1 {
			result = Simplify(result)
			if countNodes(result) > maxDerivativeNodes {
				return nil, &UnsupportedOperationError{
					Op:     "derivative",
					Reason: fmt.Sprintf("order %d derivative grows too large", i+2),
				}
			}
		}
	}

	return result, nil
}

func countNodes(e Expr) int {
	n := 0
	Walk(e, func(Expr) bool {
		n++
		return true
	})

	return n
}

func derive(expr Expr, x string) (Expr, error) {
	switch e := expr.(type) {
	case *Constant:
		return num(0), nil
	case *Variable:
		if e.Name == x {
			return num(1), nil
		}

		return num(0), nil
	case *UnaryExpr:
		du, err := derive(e.Operand, x)
		if err != nil {
			return nil, err
		}

		return neg(du), nil
	case *BinaryExpr:
		return deriveBinary(e, x)
	case *FuncCall:
		return deriveCall(e, x)
	case *BadExpr:
		return nil, &ParseError{Pos: e.Pos, Msg: e.Error}
	}

	return nil, &UnsupportedOperationError{Op: fmt.Sprintf("%T", expr)}
}

func deriveBinary(e *BinaryExpr, x string) (Expr, error) {
	u, v := e.Op1, e.Op2

	du, err := derive(u, x)
	if err != nil {
		return nil, err
	}

	dv, err := derive(v, x)
	if err != nil {
		return nil, err
	}

	switch e.Operation {
	case BinaryAddition:
		return add(du, dv), nil
	case BinarySubtraction:
		return sub(du, dv), nil
	case BinaryMultiplication:
		// (uv)' = u'v + uv'
		return add(mul(du, Clone(v)), mul(Clone(u), dv)), nil
	case BinaryDivision:
		// (u/v)' = (u'v - uv') / v^2
		return div(
			sub(mul(du, Clone(v)), mul(Clone(u), dv)),
			pow(Clone(v), num(2)),
		), nil
	case BinaryPower:
		return derivePower(u, v, du, dv, x), nil
	}

	return nil, &UnsupportedOperationError{Op: string(e.Operation)}
}

func derivePower(u, v, du, dv Expr, x string) Expr {
	switch {
	case !DependsOn(v, x):
		// (u^n)' = n * u^(n-1) * u'
		return mul(
			mul(Clone(v), pow(Clone(u), sub(Clone(v), num(1)))),
			du,
		)
	case !DependsOn(u, x):
		// (a^v)' = a^v * ln(a) * v'
		return mul(
			mul(pow(Clone(u), Clone(v)), call("ln", Clone(u))),
			dv,
		)
	default:
		// (u^v)' = u^v * (v' ln(u) + v u'/u)
		return mul(
			pow(Clone(u), Clone(v)),
			add(
				mul(dv, call("ln", Clone(u))),
				div(mul(Clone(v), du), Clone(u)),
			),
		)
	}
}

func deriveCall(e *FuncCall, x string) (Expr, error) {
	if len(e.Args) != 1 {
		return nil, &ArityError{Name: e.Name, Want: 1, Got: len(e.Args)}
	}

	u := e.Args[0]
	du, err := derive(u, x)
	if err != nil {
		return nil, err
	}

	var outer Expr
	switch e.Name {
	case "sin":
		outer = call("cos", Clone(u))
	case "cos":
		outer = neg(call("sin", Clone(u)))
	case "tan":
		// sec^2(u)
		outer = div(num(1), pow(call("cos", Clone(u)), num(2)))
	case "ln":
		outer = div(num(1), Clone(u))
	case "log":
		outer = div(num(1), mul(Clone(u), call("ln", num(10))))
	case "sqrt":
		outer = div(num(1), mul(num(2), call("sqrt", Clone(u))))
	case "exp":
		outer = call("exp", Clone(u))
	case "abs":
		outer = div(Clone(u), call("abs", Clone(u)))
	case "asin":
		outer = div(num(1), call("sqrt", sub(num(1), pow(Clone(u), num(2)))))
	case "acos":
		outer = neg(div(num(1), call("sqrt", sub(num(1), pow(Clone(u), num(2))))))
	case "atan":
		outer = div(num(1), add(num(1), pow(Clone(u), num(2))))
	default:
		return nil, &UnsupportedOperationError{
			Op:     e.Name,
			Reason: "no derivative rule",
		}
	}

	return mul(outer, du), nil
}
