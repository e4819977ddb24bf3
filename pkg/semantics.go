package calcula

import (
	"fmt"
	"sort"
)

// Analyze checks that every function call in expr names a known builtin
// with the right number of arguments. All problems found are returned,
// without duplicates.
func Analyze(expr Expr, stab *SymbolTable) []error {
	var errs []error
	seen := make(map[string]bool)

	report := func(err error) {
		if key := err.Error(); !seen[key] {
			seen[key] = true
			errs = append(errs, err)
		}
	}

	Walk(expr, func(node Expr) bool {
		switch e := node.(type) {
		case *BadExpr:
			report(&ParseError{Pos: e.Pos, Msg: e.Error})
		case *FuncCall:
			fn, ok := stab.Function(e.Name)
			if !ok {
				report(&UnsupportedOperationError{
					Op:     e.Name,
					Reason: "unknown function",
				})

				break
			}

			if len(e.Args) != fn.Arity {
				report(&ArityError{
					Name: e.Name,
					Want: fn.Arity,
					Got:  len(e.Args),
				})
			}
		}

		return true
	})

	return errs
}

// Symbol is an entry of a SymbolTable: a *Builtin or a *NamedConstant.
type Symbol interface {
	String() string
}

type SymbolTable struct {
	Entries map[string]Symbol
}

// NewGlobalSymbolTable returns a table holding every builtin function and
// the constants pi and e.
func NewGlobalSymbolTable() *SymbolTable {
	t := NewSymbolTable()
	defineBuiltins(t)

	return t
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{
		Entries: make(map[string]Symbol),
	}
}

func (t *SymbolTable) Add(name string, sym Symbol) {
	t.Entries[name] = sym
}

func (t *SymbolTable) Get(name string) Symbol {
	sym, contains := t.Entries[name]
	if !contains {
		return nil
	}

	return sym
}

func (t *SymbolTable) Function(name string) (*Builtin, bool) {
	fn, ok := t.Get(name).(*Builtin)
	return fn, ok
}

func (t *SymbolTable) Constant(name string) (float64, bool) {
	c, ok := t.Get(name).(*NamedConstant)
	if !ok {
		return 0, false
	}

	return c.Value, true
}

// Functions returns the builtin functions sorted by name.
func (t *SymbolTable) Functions() []*Builtin {
	var fns []*Builtin
	for _, sym := range t.Entries {
		if fn, ok := sym.(*Builtin); ok {
			fns = append(fns, fn)
		}
	}

	sort.Slice(fns, func(i, j int) bool { return fns[i].Name < fns[j].Name })
	return fns
}

// Constants returns the named constants sorted by name.
func (t *SymbolTable) Constants() []*NamedConstant {
	var cs []*NamedConstant
	for _, sym := range t.Entries {
		if c, ok := sym.(*NamedConstant); ok {
			cs = append(cs, c)
		}
	}

	sort.Slice(cs, func(i, j int) bool { return cs[i].Name < cs[j].Name })
	return cs
}

func (t *SymbolTable) Merge(t2 *SymbolTable) {
	for key, sym := range t2.Entries {
		t.Entries[key] = sym
	}
}

func (t *SymbolTable) Copy() *SymbolTable {
	t2 := NewSymbolTable()
	t2.Merge(t)

	return t2
}

type ParseError struct {
	Pos int
	Msg string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at offset %d: %s", e.Pos, e.Msg)
}

type UnboundVariableError struct {
	Name string
}

func (e *UnboundVariableError) Error() string {
	return fmt.Sprintf("unbound variable: %s", e.Name)
}

type UnsupportedOperationError struct {
	Op     string
	Reason string
}

func (e *UnsupportedOperationError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("unsupported operation: %s", e.Op)
	}

	return fmt.Sprintf("unsupported operation: %s (%s)", e.Op, e.Reason)
}

type ArityError struct {
	Name string
	Want int
	Got  int
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("%s expects %d argument(s), got %d", e.Name, e.Want, e.Got)
}
