package calcula

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate(t *testing.T) {
	cases := []struct {
		input  string
		vars   map[string]float64
		expect float64
	}{
		{"1 + 2 * 3", nil, 7},
		{"(1 + 2) * 3", nil, 9},
		{"1 - 3 + 1", nil, -1},
		{"2^3^2", nil, 512},
		{"-2^2", nil, 4},
		{"-(2^2)", nil, -4},
		{"x^2 + 2*x + 1", map[string]float64{"x": 3}, 16},
		{"2x + y", map[string]float64{"x": 4, "y": 1}, 9},
		{"sqrt(16) + log(1000) + ln(e)", nil, 8},
		{"sin(0) + cos(0)", nil, 1},
		{"tan(pi/4)", nil, 1},
		{"5!", nil, 120},
		{"fact(0)", nil, 1},
		{"abs(-3) + exp(0)", nil, 4},
		{"x", map[string]float64{"x": -0.5}, -0.5},
		{"pi", map[string]float64{"pi": 3}, 3},
	}

	for _, c := range cases {
		expr, err := Parse(c.input)
		require.NoError(t, err, c.input)

		got, err := Evaluate(expr, EnvOf(c.vars))
		require.NoError(t, err, c.input)
		assert.InDelta(t, c.expect, got, 1e-9, c.input)
	}
}

func TestEvaluateSentinels(t *testing.T) {
	cases := []struct {
		input string
		check func(float64) bool
	}{
		{"1/0", func(v float64) bool { return math.IsInf(v, 1) }},
		{"-1/0", func(v float64) bool { return math.IsInf(v, -1) }},
		{"0/0", math.IsNaN},
		{"0^-1", func(v float64) bool { return math.IsInf(v, 1) }},
		{"log(-1)", math.IsNaN},
		{"sqrt(-4)", math.IsNaN},
		{"fact(-1)", math.IsNaN},
		{"fact(2.5)", math.IsNaN},
		{"fact(200)", func(v float64) bool { return math.IsInf(v, 1) }},
	}

	for _, c := range cases {
		expr := MustParse(c.input)

		var got float64
		var err error
		assert.NotPanics(t, func() {
			got, err = Evaluate(expr, nil)
		}, c.input)

		assert.NoError(t, err, c.input)
		assert.True(t, c.check(got), "%s = %v", c.input, got)
		assert.True(t, IsSentinel(got), c.input)
		assert.Equal(t, "Error", FormatResult(got), c.input)
	}
}

func TestEvaluateErrors(t *testing.T) {
	_, err := Evaluate(MustParse("x + 1"), nil)
	var unbound *UnboundVariableError
	require.ErrorAs(t, err, &unbound)
	assert.Equal(t, "x", unbound.Name)

	_, err = Evaluate(MustParse("foo(1)"), nil)
	var unsupported *UnsupportedOperationError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, "foo", unsupported.Op)

	_, err = Evaluate(MustParse("sin(1, 2)"), nil)
	var arity *ArityError
	require.ErrorAs(t, err, &arity)
	assert.Equal(t, 1, arity.Want)
	assert.Equal(t, 2, arity.Got)
}

func TestEvaluateDegrees(t *testing.T) {
	ev := NewEvaluator()
	ev.Angle = Degrees

	got, err := ev.Evaluate(MustParse("sin(90) + cos(180)"), nil)
	require.NoError(t, err)
	assert.InDelta(t, 0, got, 1e-12)

	got, err = ev.Evaluate(MustParse("atan(1)"), nil)
	require.NoError(t, err)
	assert.InDelta(t, 45, got, 1e-12)
}

func TestEvaluateIsIdempotent(t *testing.T) {
	expr := MustParse("x^3 + sin(x) / (x - 2)")
	env := EnvOf(map[string]float64{"x": 1.7})

	first, err := Evaluate(expr, env)
	require.NoError(t, err)

	second, err := Evaluate(expr, env)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestEnvInherit(t *testing.T) {
	env1 := EnvOf(map[string]float64{"a": 1, "b": 2})
	env2 := EnvOf(map[string]float64{"a": 3, "c": 4})

	env1.Inherit(env2)

	for name, want := range map[string]float64{"a": 3, "b": 2, "c": 4} {
		got, ok := env1.Get(name)
		assert.True(t, ok, name)
		assert.Equal(t, want, got, name)
	}

	_, ok := env1.Get("d")
	assert.False(t, ok)
}

func TestFormatResult(t *testing.T) {
	assert.Equal(t, "12500", FormatResult(12500))
	assert.Equal(t, "0.3", FormatResult(0.1+0.2))
	assert.Equal(t, "0", FormatResult(math.Copysign(0, -1)))
	assert.Equal(t, "Error", FormatResult(math.NaN()))
}
