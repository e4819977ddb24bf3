package calcula

import (
	"strconv"
	"strings"
)

type precedence int

const (
	precAdditive precedence = iota + 1
	precMultiplicative
	precPower
	precUnary
	precAtom
)

func precedenceOf(e Expr) precedence {
	switch n := e.(type) {
	case *BinaryExpr:
		return opPrecedence(n.Operation)
	case *UnaryExpr:
		return precUnary
	case *Constant:
		if n.Value < 0 || (n.Value == 0 && 1/n.Value < 0) {
			return precUnary
		}
	}

	return precAtom
}

func opPrecedence(op BinaryOp) precedence {
	switch op {
	case BinaryAddition, BinarySubtraction:
		return precAdditive
	case BinaryMultiplication, BinaryDivision:
		return precMultiplicative
	default:
		return precPower
	}
}

// needsParens reports whether child, appearing as the left or right operand
// of op, must be parenthesised to keep its meaning. '^' is right
// associative, every other operator is left associative.
func needsParens(op BinaryOp, child Expr, right bool) bool {
	p, c := opPrecedence(op), precedenceOf(child)
	if c != p {
		return c < p
	}

	if op == BinaryPower {
		return !right
	}

	return right
}

// Render converts expr to text in the grammar accepted by Parse, adding
// parentheses only where precedence or associativity requires them.
func Render(expr Expr) string {
	var b strings.Builder
	render(&b, expr)

	return b.String()
}

func render(b *strings.Builder, expr Expr) {
	switch e := expr.(type) {
	case *Constant:
		b.WriteString(formatNumber(e.Value))
	case *Variable:
		b.WriteString(e.Name)
	case *UnaryExpr:
		b.WriteString(string(e.Operation))
		renderOperand(b, e.Operand, precedenceOf(e.Operand) < precUnary)
	case *BinaryExpr:
		renderOperand(b, e.Op1, needsParens(e.Operation, e.Op1, false))
		if e.Operation == BinaryPower {
			b.WriteString("^")
		} else {
			b.WriteString(" " + string(e.Operation) + " ")
		}
		renderOperand(b, e.Op2, needsParens(e.Operation, e.Op2, true))
	case *FuncCall:
		b.WriteString(e.Name)
		b.WriteString("(")
		for i, arg := range e.Args {
			if i > 0 {
				b.WriteString(", ")
			}
			render(b, arg)
		}
		b.WriteString(")")
	case *BadExpr:
		b.WriteString("<error: " + e.Error + ">")
	}
}

func renderOperand(b *strings.Builder, e Expr, parens bool) {
	if parens {
		b.WriteString("(")
	}

	render(b, e)

	if parens {
		b.WriteString(")")
	}
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

var latexFuncs = map[string]string{
	"sin":  `\sin`,
	"cos":  `\cos`,
	"tan":  `\tan`,
	"asin": `\arcsin`,
	"acos": `\arccos`,
	"atan": `\arctan`,
	"ln":   `\ln`,
	"log":  `\log_{10}`,
	"exp":  `\exp`,
}

// LaTeX renders expr as a LaTeX math fragment.
func LaTeX(expr Expr) string {
	var b strings.Builder
	latex(&b, expr)

	return b.String()
}

func latex(b *strings.Builder, expr Expr) {
	switch e := expr.(type) {
	case *Constant:
		b.WriteString(formatNumber(e.Value))
	case *Variable:
		if e.Name == "pi" {
			b.WriteString(`\pi`)
		} else {
			b.WriteString(e.Name)
		}
	case *UnaryExpr:
		b.WriteString("-")
		if d, ok := e.Operand.(*BinaryExpr); ok && d.Operation == BinaryDivision {
			latex(b, d)
			return
		}
		latexOperand(b, e.Operand, precedenceOf(e.Operand) < precUnary)
	case *BinaryExpr:
		latexBinary(b, e)
	case *FuncCall:
		latexCall(b, e)
	case *BadExpr:
		b.WriteString(`\text{error}`)
	}
}

func latexBinary(b *strings.Builder, e *BinaryExpr) {
	switch e.Operation {
	case BinaryDivision:
		b.WriteString(`\frac{`)
		latex(b, e.Op1)
		b.WriteString("}{")
		latex(b, e.Op2)
		b.WriteString("}")
	case BinaryPower:
		latexOperand(b, e.Op1, precedenceOf(e.Op1) < precAtom)
		b.WriteString("^{")
		latex(b, e.Op2)
		b.WriteString("}")
	default:
		op := " " + string(e.Operation) + " "
		if e.Operation == BinaryMultiplication {
			op = ` \cdot `
		}

		latexOperand(b, e.Op1, needsParens(e.Operation, e.Op1, false))
		b.WriteString(op)
		latexOperand(b, e.Op2, needsParens(e.Operation, e.Op2, true))
	}
}

func latexCall(b *strings.Builder, e *FuncCall) {
	if len(e.Args) != 1 {
		b.WriteString(`\operatorname{` + e.Name + `}\left(`)
		for i, arg := range e.Args {
			if i > 0 {
				b.WriteString(", ")
			}
			latex(b, arg)
		}
		b.WriteString(`\right)`)
		return
	}

	arg := e.Args[0]
	switch e.Name {
	case "sqrt":
		b.WriteString(`\sqrt{`)
		latex(b, arg)
		b.WriteString("}")
	case "abs":
		b.WriteString(`\left|`)
		latex(b, arg)
		b.WriteString(`\right|`)
	case "fact":
		latexOperand(b, arg, precedenceOf(arg) < precAtom)
		b.WriteString("!")
	default:
		name, ok := latexFuncs[e.Name]
		if !ok {
			name = `\operatorname{` + e.Name + `}`
		}

		b.WriteString(name + `\left(`)
		latex(b, arg)
		b.WriteString(`\right)`)
	}
}

func latexOperand(b *strings.Builder, e Expr, parens bool) {
	if parens {
		b.WriteString(`\left(`)
	}

	latex(b, e)

	if parens {
		b.WriteString(`\right)`)
	}
}
