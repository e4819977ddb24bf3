package calcula

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalExpr(t *testing.T) {
	got := string(MarshalExpr(MustParse("-x + sin(2)")))
	assert.JSONEq(t, `{
		"type": "binary",
		"op": "+",
		"left": {"type": "unary", "op": "-", "operand": {"type": "variable", "name": "x"}},
		"right": {"type": "call", "name": "sin", "args": [{"type": "constant", "value": 2}]}
	}`, got)
}

func TestUnmarshalExpr(t *testing.T) {
	for _, input := range []string{"x^2 + 2*x + 1", "sqrt(abs(-3.25e-4 / y))", "5!"} {
		expr := MustParse(input)

		decoded, err := UnmarshalExpr(MarshalExpr(expr))
		require.NoError(t, err, input)
		assert.Equal(t, expr, decoded, input)
	}
}

func TestUnmarshalExprSentinel(t *testing.T) {
	decoded, err := UnmarshalExpr(MarshalExpr(num(math.Inf(-1))))
	require.NoError(t, err)

	c, ok := decoded.(*Constant)
	require.True(t, ok)
	assert.True(t, math.IsInf(c.Value, -1))
}

func TestUnmarshalExprErrors(t *testing.T) {
	cases := []struct {
		data string
		msg  string
	}{
		{`[]`, "expression must be an object"},
		{`{}`, `missing "type" field`},
		{`{"type":"matrix"}`, "unknown expression type: matrix"},
		{`{"type":"constant"}`, `constant: missing "value"`},
		{`{"type":"variable","name":""}`, `variable: "name" must be a non-empty string`},
		{`{"type":"binary","op":"%","left":{},"right":{}}`, `binary: unknown operator "%"`},
		{`{"type":"binary","op":"+","right":{"type":"constant","value":1}}`, "binary: left: expression must be an object"},
		{`{"type":"call","name":"sin","args":[1]}`, "call: args[0]: expression must be an object"},
		{`{"type":`, "invalid expression JSON"},
	}

	for _, c := range cases {
		_, err := UnmarshalExpr([]byte(c.data))
		require.Error(t, err, c.data)
		assert.Contains(t, err.Error(), c.msg, c.data)
	}
}
