package calcula

import (
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
)

type ValueLookup struct {
	vals map[string]value.Value
}

func NewValueLookup() *ValueLookup {
	return &ValueLookup{
		vals: make(map[string]value.Value),
	}
}

func (l *ValueLookup) Inherit(t2 *ValueLookup) {
	for k, v := range t2.vals {
		l.Set(k, v)
	}
}

func (l *ValueLookup) Get(id string) (value.Value, bool) {
	val, ok := l.vals[id]
	return val, ok
}

func (l *ValueLookup) Set(id string, val value.Value) {
	l.vals[id] = val
}

// LLVMIRBuilder lowers expression trees to an LLVM IR module. Every
// expression becomes a function taking and returning doubles; builtins are
// calls to C math library declarations.
type LLVMIRBuilder struct {
	mod     *ir.Module
	values  *ValueLookup
	symbols *SymbolTable
	libm    map[string]*ir.Func
}

func NewLLVMIRBuilder(symbols *SymbolTable) *LLVMIRBuilder {
	return &LLVMIRBuilder{
		mod:     ir.NewModule(),
		values:  NewValueLookup(),
		symbols: symbols,
		libm:    make(map[string]*ir.Func),
	}
}

func (b *LLVMIRBuilder) Module() *ir.Module {
	return b.mod
}

// CompileIR emits a module defining `double @name(double %p...)` that
// computes expr. Identifiers must be listed in params or be named
// constants.
func CompileIR(expr Expr, name string, params []string) (*ir.Module, error) {
	symbols := NewGlobalSymbolTable()
	if errs := Analyze(expr, symbols); len(errs) != 0 {
		return nil, errs[0]
	}

	b := NewLLVMIRBuilder(symbols)
	if err := b.Function(name, params, expr); err != nil {
		return nil, err
	}

	return b.Module(), nil
}

// Function adds a function definition for expr to the module.
func (b *LLVMIRBuilder) Function(name string, params []string, expr Expr) error {
	if name == "" {
		return fmt.Errorf("function name must not be empty")
	}

	if name == "pow" {
		return fmt.Errorf("function name %q collides with a math library symbol", name)
	}

	for _, fn := range b.symbols.Functions() {
		if fn.Libm == name {
			return fmt.Errorf("function name %q collides with a math library symbol", name)
		}
	}

	prevVals := b.values
	b.values = NewValueLookup()
	b.values.Inherit(prevVals)

	defer func() {
		b.values = prevVals
	}()

	irParams := make([]*ir.Param, len(params))
	for i, p := range params {
		if _, dup := b.values.Get(p); dup {
			return fmt.Errorf("duplicate parameter %q", p)
		}

		irParams[i] = ir.NewParam(p, types.Double)
		b.values.Set(p, irParams[i])
	}

	v, ins, err := b.recursiveLoad(expr)
	if err != nil {
		return err
	}

	f := b.mod.NewFunc(name, types.Double, irParams...)
	block := f.NewBlock("")
	block.Insts = append(block.Insts, ins...)
	block.NewRet(v)

	return nil
}

func (b *LLVMIRBuilder) recursiveLoad(expr Expr) (value.Value, []ir.Instruction, error) {
	switch e := expr.(type) {
	case *Constant:
		return constant.NewFloat(types.Double, e.Value), nil, nil
	case *Variable:
		if v, ok := b.values.Get(e.Name); ok {
			return v, nil, nil
		}

		if c, ok := b.symbols.Constant(e.Name); ok {
			return constant.NewFloat(types.Double, c), nil, nil
		}

		return nil, nil, &UnboundVariableError{Name: e.Name}
	case *BinaryExpr:
		return b.binaryExpression(e)
	case *UnaryExpr:
		return b.unaryExpression(e)
	case *FuncCall:
		return b.functionCall(e)
	case *BadExpr:
		return nil, nil, &ParseError{Pos: e.Pos, Msg: e.Error}
	}

	return nil, nil, &UnsupportedOperationError{Op: fmt.Sprintf("%T", expr)}
}

func (b *LLVMIRBuilder) binaryExpression(expr *BinaryExpr) (value.Value, []ir.Instruction, error) {
	v1, i1, err := b.recursiveLoad(expr.Op1)
	if err != nil {
		return nil, nil, err
	}

	v2, i2, err := b.recursiveLoad(expr.Op2)
	if err != nil {
		return nil, nil, err
	}

	ins := append(i1, i2...)

	switch expr.Operation {
	case BinaryAddition:
		op := ir.NewFAdd(v1, v2)
		return op, append(ins, op), nil
	case BinarySubtraction:
		op := ir.NewFSub(v1, v2)
		return op, append(ins, op), nil
	case BinaryMultiplication:
		op := ir.NewFMul(v1, v2)
		return op, append(ins, op), nil
	case BinaryDivision:
		op := ir.NewFDiv(v1, v2)
		return op, append(ins, op), nil
	case BinaryPower:
		op := ir.NewCall(b.declare("pow", 2), v1, v2)
		return op, append(ins, op), nil
	}

	return nil, nil, &UnsupportedOperationError{Op: string(expr.Operation)}
}

func (b *LLVMIRBuilder) unaryExpression(expr *UnaryExpr) (value.Value, []ir.Instruction, error) {
	v, ins, err := b.recursiveLoad(expr.Operand)
	if err != nil {
		return nil, nil, err
	}

	op := ir.NewFNeg(v)
	return op, append(ins, op), nil
}

func (b *LLVMIRBuilder) functionCall(expr *FuncCall) (value.Value, []ir.Instruction, error) {
	fn, ok := b.symbols.Function(expr.Name)
	if !ok {
		return nil, nil, &UnsupportedOperationError{Op: expr.Name, Reason: "unknown function"}
	}

	if fn.Libm == "" {
		return nil, nil, &UnsupportedOperationError{Op: expr.Name, Reason: "not available in compiled code"}
	}

	var ins []ir.Instruction
	var callVals []value.Value
	for _, arg := range expr.Args {
		argVal, argIns, err := b.recursiveLoad(arg)
		if err != nil {
			return nil, nil, err
		}

		ins = append(ins, argIns...)
		callVals = append(callVals, argVal)
	}

	call := ir.NewCall(b.declare(fn.Libm, len(callVals)), callVals...)
	return call, append(ins, call), nil
}

// declare returns the external declaration of a libm function, adding it to
// the module on first use.
func (b *LLVMIRBuilder) declare(name string, arity int) *ir.Func {
	if f, ok := b.libm[name]; ok {
		return f
	}

	params := make([]*ir.Param, arity)
	for i := range params {
		params[i] = ir.NewParam(fmt.Sprintf("x%d", i), types.Double)
	}

	f := b.mod.NewFunc(name, types.Double, params...)
	b.libm[name] = f

	return f
}
