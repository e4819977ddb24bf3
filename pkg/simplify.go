package calcula

import "math"

// Simplify applies constant folding and the usual 0/1 identities. It
// returns a new tree; expr is left untouched. Folding is skipped when it
// would produce NaN or ±Inf so the sentinel stays visible at evaluation.
func Simplify(expr Expr) Expr {
	switch e := expr.(type) {
	case *BinaryExpr:
		return simplifyBinary(e.Operation, Simplify(e.Op1), Simplify(e.Op2))
	case *UnaryExpr:
		operand := Simplify(e.Operand)
		switch o := operand.(type) {
		case *Constant:
			return num(-o.Value)
		case *UnaryExpr:
			return o.Operand
		}

		return neg(operand)
	case *FuncCall:
		args := make([]Expr, len(e.Args))
		for i, arg := range e.Args {
			args[i] = Simplify(arg)
		}

		return &FuncCall{Name: e.Name, Args: args}
	}

	return Clone(expr)
}

func simplifyBinary(op BinaryOp, a, b Expr) Expr {
	ca, aConst := a.(*Constant)
	cb, bConst := b.(*Constant)

	if aConst && bConst {
		if v, ok := fold(op, ca.Value, cb.Value); ok {
			return num(v)
		}

		return binary(op, a, b)
	}

	switch op {
	case BinaryAddition:
		if isConst(a, 0) {
			return b
		}
		if isConst(b, 0) {
			return a
		}
	case BinarySubtraction:
		if isConst(b, 0) {
			return a
		}
		if isConst(a, 0) {
			return Simplify(neg(b))
		}
	case BinaryMultiplication:
		if isConst(a, 0) || isConst(b, 0) {
			return num(0)
		}
		if isConst(a, 1) {
			return b
		}
		if isConst(b, 1) {
			return a
		}
		if isConst(a, -1) {
			return Simplify(neg(b))
		}
		if isConst(b, -1) {
			return Simplify(neg(a))
		}
	case BinaryDivision:
		if isConst(a, 0) {
			return num(0)
		}
		if isConst(b, 1) {
			return a
		}
	case BinaryPower:
		if isConst(b, 0) {
			return num(1)
		}
		if isConst(b, 1) {
			return a
		}
		if isConst(a, 1) {
			return num(1)
		}
	}

	return binary(op, a, b)
}

func fold(op BinaryOp, a, b float64) (float64, bool) {
	var v float64
	switch op {
	case BinaryAddition:
		v = a + b
	case BinarySubtraction:
		v = a - b
	case BinaryMultiplication:
		v = a * b
	case BinaryDivision:
		v = a / b
	case BinaryPower:
		v = math.Pow(a, b)
	default:
		return 0, false
	}

	return v, !IsSentinel(v)
}

func isConst(e Expr, v float64) bool {
	c, ok := e.(*Constant)
	return ok && c.Value == v
}
