package calcula

import (
	"fmt"
	"strconv"

	"github.com/valyala/fastjson"
)

// MarshalExpr encodes expr as a tree of tagged JSON objects:
//
//	{"type":"constant","value":2}
//	{"type":"variable","name":"x"}
//	{"type":"binary","op":"+","left":{...},"right":{...}}
//	{"type":"unary","op":"-","operand":{...}}
//	{"type":"call","name":"sin","args":[{...}]}
func MarshalExpr(expr Expr) []byte {
	var a fastjson.Arena
	return exprValue(&a, expr).MarshalTo(nil)
}

func exprValue(a *fastjson.Arena, expr Expr) *fastjson.Value {
	o := a.NewObject()

	switch e := expr.(type) {
	case *Constant:
		o.Set("type", a.NewString("constant"))
		if IsSentinel(e.Value) {
			// JSON has no NaN or Inf literals
			o.Set("value", a.NewString(formatNumber(e.Value)))
		} else {
			o.Set("value", a.NewNumberFloat64(e.Value))
		}
	case *Variable:
		o.Set("type", a.NewString("variable"))
		o.Set("name", a.NewString(e.Name))
	case *BinaryExpr:
		o.Set("type", a.NewString("binary"))
		o.Set("op", a.NewString(string(e.Operation)))
		o.Set("left", exprValue(a, e.Op1))
		o.Set("right", exprValue(a, e.Op2))
	case *UnaryExpr:
		o.Set("type", a.NewString("unary"))
		o.Set("op", a.NewString(string(e.Operation)))
		o.Set("operand", exprValue(a, e.Operand))
	case *FuncCall:
		o.Set("type", a.NewString("call"))
		o.Set("name", a.NewString(e.Name))
		args := a.NewArray()
		for i, arg := range e.Args {
			args.SetArrayItem(i, exprValue(a, arg))
		}
		o.Set("args", args)
	case *BadExpr:
		o.Set("type", a.NewString("error"))
		o.Set("error", a.NewString(e.Error))
		o.Set("pos", a.NewNumberInt(e.Pos))
	}

	return o
}

// UnmarshalExpr decodes the format written by MarshalExpr.
func UnmarshalExpr(data []byte) (Expr, error) {
	var p fastjson.Parser
	v, err := p.ParseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("invalid expression JSON: %w", err)
	}

	return ExprFromValue(v)
}

// ExprFromValue decodes an already parsed fastjson value.
func ExprFromValue(v *fastjson.Value) (Expr, error) {
	if v == nil || v.Type() != fastjson.TypeObject {
		return nil, fmt.Errorf("expression must be an object")
	}

	typ := string(v.GetStringBytes("type"))
	switch typ {
	case "constant":
		val := v.Get("value")
		if val == nil {
			return nil, fmt.Errorf("constant: missing \"value\"")
		}

		switch val.Type() {
		case fastjson.TypeNumber:
			f, _ := val.Float64()
			return &Constant{Value: f}, nil
		case fastjson.TypeString:
			f, err := strconv.ParseFloat(string(val.GetStringBytes()), 64)
			if err != nil {
				return nil, fmt.Errorf("constant: %w", err)
			}

			return &Constant{Value: f}, nil
		default:
			return nil, fmt.Errorf("constant: \"value\" must be a number")
		}
	case "variable":
		name := string(v.GetStringBytes("name"))
		if name == "" {
			return nil, fmt.Errorf("variable: \"name\" must be a non-empty string")
		}

		return &Variable{Name: name}, nil
	case "binary":
		op := BinaryOp(v.GetStringBytes("op"))
		switch op {
		case BinaryAddition, BinarySubtraction, BinaryMultiplication, BinaryDivision, BinaryPower:
		default:
			return nil, fmt.Errorf("binary: unknown operator %q", op)
		}

		left, err := ExprFromValue(v.Get("left"))
		if err != nil {
			return nil, fmt.Errorf("binary: left: %w", err)
		}

		right, err := ExprFromValue(v.Get("right"))
		if err != nil {
			return nil, fmt.Errorf("binary: right: %w", err)
		}

		return &BinaryExpr{Operation: op, Op1: left, Op2: right}, nil
	case "unary":
		if op := UnaryOp(v.GetStringBytes("op")); op != UnaryNegative {
			return nil, fmt.Errorf("unary: unknown operator %q", op)
		}

		operand, err := ExprFromValue(v.Get("operand"))
		if err != nil {
			return nil, fmt.Errorf("unary: operand: %w", err)
		}

		return &UnaryExpr{Operation: UnaryNegative, Operand: operand}, nil
	case "call":
		name := string(v.GetStringBytes("name"))
		if name == "" {
			return nil, fmt.Errorf("call: \"name\" must be a non-empty string")
		}

		var args []Expr
		for i, raw := range v.GetArray("args") {
			arg, err := ExprFromValue(raw)
			if err != nil {
				return nil, fmt.Errorf("call: args[%d]: %w", i, err)
			}

			args = append(args, arg)
		}

		return &FuncCall{Name: name, Args: args}, nil
	case "":
		return nil, fmt.Errorf("missing \"type\" field")
	}

	return nil, fmt.Errorf("unknown expression type: %s", typ)
}
