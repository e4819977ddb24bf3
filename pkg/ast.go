package calcula

import "sort"

// Expr is a node of an expression tree. The set of node types is closed:
// *Constant, *Variable, *BinaryExpr, *UnaryExpr, *FuncCall and the
// parser-internal *BadExpr.
type Expr interface {
	exprNode()
}

type BadExpr struct {
	Pos   int
	Error string
}

type Constant struct {
	Value float64
}

type Variable struct {
	Name string
}

type FuncCall struct {
	Name string
	Args []Expr
}

type BinaryOp string

const (
	BinaryAddition       BinaryOp = "+"
	BinarySubtraction    BinaryOp = "-"
	BinaryMultiplication BinaryOp = "*"
	BinaryDivision       BinaryOp = "/"
	BinaryPower          BinaryOp = "^"
)

type BinaryExpr struct {
	Operation BinaryOp
	Op1       Expr
	Op2       Expr
}

type UnaryOp string

const (
	UnaryNegative UnaryOp = "-"
)

type UnaryExpr struct {
	Operation UnaryOp
	Operand   Expr
}

func (*BadExpr) exprNode()    {}
func (*Constant) exprNode()   {}
func (*Variable) exprNode()   {}
func (*FuncCall) exprNode()   {}
func (*BinaryExpr) exprNode() {}
func (*UnaryExpr) exprNode()  {}

// Small constructors used by the differentiator and the simplifier.

func num(v float64) Expr            { return &Constant{Value: v} }
func variable(name string) Expr     { return &Variable{Name: name} }
func neg(e Expr) Expr               { return &UnaryExpr{Operation: UnaryNegative, Operand: e} }
func call(name string, e Expr) Expr { return &FuncCall{Name: name, Args: []Expr{e}} }
func binary(op BinaryOp, a, b Expr) Expr {
	return &BinaryExpr{Operation: op, Op1: a, Op2: b}
}
func add(a, b Expr) Expr { return binary(BinaryAddition, a, b) }
func sub(a, b Expr) Expr { return binary(BinarySubtraction, a, b) }
func mul(a, b Expr) Expr { return binary(BinaryMultiplication, a, b) }
func div(a, b Expr) Expr { return binary(BinaryDivision, a, b) }
func pow(a, b Expr) Expr { return binary(BinaryPower, a, b) }

// Clone returns a deep copy of e.
func Clone(e Expr) Expr {
	switch n := e.(type) {
	case *Constant:
		return &Constant{Value: n.Value}
	case *Variable:
		return &Variable{Name: n.Name}
	case *BinaryExpr:
		return &BinaryExpr{
			Operation: n.Operation,
			Op1:       Clone(n.Op1),
			Op2:       Clone(n.Op2),
		}
	case *UnaryExpr:
		return &UnaryExpr{
			Operation: n.Operation,
			Operand:   Clone(n.Operand),
		}
	case *FuncCall:
		args := make([]Expr, len(n.Args))
		for i, arg := range n.Args {
			args[i] = Clone(arg)
		}

		return &FuncCall{Name: n.Name, Args: args}
	case *BadExpr:
		return &BadExpr{Pos: n.Pos, Error: n.Error}
	}

	return nil
}

// Walk visits e in pre-order. Children are skipped when fn returns false.
func Walk(e Expr, fn func(Expr) bool) {
	if e == nil || !fn(e) {
		return
	}

	switch n := e.(type) {
	case *BinaryExpr:
		Walk(n.Op1, fn)
		Walk(n.Op2, fn)
	case *UnaryExpr:
		Walk(n.Operand, fn)
	case *FuncCall:
		for _, arg := range n.Args {
			Walk(arg, fn)
		}
	}
}

// FreeVariables returns the sorted, de-duplicated identifiers of e.
func FreeVariables(e Expr) []string {
	seen := make(map[string]struct{})
	Walk(e, func(node Expr) bool {
		if v, ok := node.(*Variable); ok {
			seen[v.Name] = struct{}{}
		}

		return true
	})

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

// DependsOn reports whether the identifier name occurs in e.
func DependsOn(e Expr, name string) bool {
	found := false
	Walk(e, func(node Expr) bool {
		if v, ok := node.(*Variable); ok && v.Name == name {
			found = true
		}

		return !found
	})

	return found
}

func firstBadExpr(e Expr) *BadExpr {
	var bad *BadExpr
	Walk(e, func(node Expr) bool {
		if b, ok := node.(*BadExpr); ok && bad == nil {
			bad = b
		}

		return bad == nil
	})

	return bad
}
