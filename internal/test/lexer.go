package test

import (
	"fmt"
	"math/rand"
	"strings"
)

const validTokens = "x;y;theta;sin;cos;sqrt;ln;(;);+;-;*;/;^;!;,;0;1;42;3.14159;.5;2e10;6.02e-23;1000000"

func GetRandomTokens(size int) string {
	return GetRandomTokensWithSep(size, " ")
}

func GetRandomTokensWithSep(size int, sep string) string {
	valid := strings.Split(validTokens, ";")

	var toks []string
	for len(toks) < size {
		toks = append(toks, valid[rand.Intn(len(valid))])
	}

	return strings.Join(toks, sep)
}

var (
	leaves    = []string{"x", "y", "2", "3", "0.5", "pi", "e", "10"}
	functions = []string{"sin", "cos", "tan", "exp", "sqrt", "ln", "log", "abs", "atan"}
	operators = []string{"+", "-", "*", "/", "^"}
)

// GetRandomExpression returns a syntactically valid expression over the
// variables x and y, nested at most depth levels.
func GetRandomExpression(r *rand.Rand, depth int) string {
	if depth <= 0 {
		return leaves[r.Intn(len(leaves))]
	}

	switch r.Intn(5) {
	case 0:
		return leaves[r.Intn(len(leaves))]
	case 1:
		return fmt.Sprintf("%s(%s)", functions[r.Intn(len(functions))], GetRandomExpression(r, depth-1))
	case 2:
		return "-" + GetRandomExpression(r, depth-1)
	case 3:
		return fmt.Sprintf("(%s)", GetRandomExpression(r, depth-1))
	default:
		op := operators[r.Intn(len(operators))]
		return GetRandomExpression(r, depth-1) + " " + op + " " + GetRandomExpression(r, depth-1)
	}
}
