package calcula

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var samplePoints = []float64{-2.5, -1, 0.3, 1, 2, 3.7}

func evalAt(t *testing.T, expr Expr, x float64) float64 {
	t.Helper()

	v, err := Evaluate(expr, EnvOf(map[string]float64{"x": x}))
	require.NoError(t, err, Render(expr))

	return v
}

func TestDifferentiateMatchesExpected(t *testing.T) {
	cases := []struct {
		input  string
		expect string
		points []float64
	}{
		{"5", "0", samplePoints},
		{"x", "1", samplePoints},
		{"y", "0", samplePoints},
		{"x^2 + 2*x + 1", "2*x + 2", samplePoints},
		{"x^3 + sin(x)", "3*x^2 + cos(x)", samplePoints},
		{"sin(2*x)", "2*cos(2*x)", []float64{0, 1, math.Pi / 4}},
		{"cos(x)", "-sin(x)", samplePoints},
		{"tan(x)", "1/cos(x)^2", samplePoints},
		{"x * sin(x)", "sin(x) + x*cos(x)", samplePoints},
		{"sin(x) / x", "(x*cos(x) - sin(x)) / x^2", samplePoints},
		{"ln(x)", "1/x", []float64{0.3, 1, 2, 3.7}},
		{"log(x)", "1/(x*ln(10))", []float64{0.3, 1, 2, 3.7}},
		{"sqrt(x)", "1/(2*sqrt(x))", []float64{0.3, 1, 2, 3.7}},
		{"x^0.5", "0.5*x^-0.5", []float64{0.3, 1, 2, 3.7}},
		{"x^-2", "-2*x^-3", samplePoints},
		{"2^x", "2^x*ln(2)", samplePoints},
		{"x^x", "x^x*(ln(x) + 1)", []float64{0.3, 1, 2, 3.7}},
		{"exp(x^2)", "2*x*exp(x^2)", samplePoints},
		{"abs(x)", "x/abs(x)", samplePoints},
		{"asin(x/5)", "1/(5*sqrt(1 - (x/5)^2))", samplePoints},
		{"acos(x/5)", "-1/(5*sqrt(1 - (x/5)^2))", samplePoints},
		{"atan(x)", "1/(1 + x^2)", samplePoints},
		{"-x^2", "2*x", samplePoints},
		{"-(x^2)", "-2*x", samplePoints},
		{"a*x + b", "a", samplePoints},
	}

	for _, c := range cases {
		d, err := Differentiate(MustParse(c.input), "x")
		require.NoError(t, err, c.input)

		want := MustParse(c.expect)
		for _, x := range c.points {
			vars := map[string]float64{"x": x, "a": 2.5, "b": -1}
			got, err := Evaluate(d, EnvOf(vars))
			require.NoError(t, err, c.input)

			exp, err := Evaluate(want, EnvOf(vars))
			require.NoError(t, err, c.expect)

			assert.InDelta(t, exp, got, 1e-9, "d/dx %s at x=%v, got %s", c.input, x, Render(d))
		}
	}
}

func TestPowerRule(t *testing.T) {
	for n := 1; n <= 8; n++ {
		expr := pow(variable("x"), num(float64(n)))

		d, err := Differentiate(expr, "x")
		require.NoError(t, err)

		for _, x := range samplePoints {
			want := float64(n) * math.Pow(x, float64(n-1))
			assert.InDelta(t, want, evalAt(t, d, x), 1e-9*math.Max(1, math.Abs(want)), "n=%d x=%v", n, x)
		}
	}
}

func TestDifferentiateScenarios(t *testing.T) {
	d, err := Differentiate(MustParse("x^2 + 2*x + 1"), "x")
	require.NoError(t, err)
	assert.InDelta(t, 8, evalAt(t, MustParse(Render(d)), 3), 1e-9)

	d, err = Differentiate(MustParse("x^3 + sin(x)"), "x")
	require.NoError(t, err)
	assert.InDelta(t, 1, evalAt(t, MustParse(Render(d)), 0), 1e-9)
}

func TestDifferentiateOtherVariable(t *testing.T) {
	d, err := Differentiate(MustParse("x*y^2"), "y")
	require.NoError(t, err)

	got, err := Evaluate(d, EnvOf(map[string]float64{"x": 3, "y": 2}))
	require.NoError(t, err)
	assert.InDelta(t, 12, got, 1e-9)
}

func TestDifferentiateErrors(t *testing.T) {
	_, err := Differentiate(MustParse("fact(x)"), "x")
	var unsupported *UnsupportedOperationError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, "fact", unsupported.Op)

	_, err = Differentiate(MustParse("sinh(x)"), "x")
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, "sinh", unsupported.Op)

	_, err = Differentiate(&BadExpr{Pos: 2, Error: "broken"}, "x")
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
}

func TestDifferentiateDoesNotAlias(t *testing.T) {
	input := MustParse("x^2 * sin(x) / (x + 1)")
	before := Render(input)

	d, err := Differentiate(input, "x")
	require.NoError(t, err)

	inputNodes := make(map[Expr]bool)
	Walk(input, func(e Expr) bool {
		inputNodes[e] = true
		return true
	})

	Walk(d, func(e Expr) bool {
		assert.False(t, inputNodes[e], "derivative shares node %s with its input", Render(e))
		return true
	})

	seen := make(map[Expr]bool)
	Walk(d, func(e Expr) bool {
		assert.False(t, seen[e], "node %s appears twice in the derivative", Render(e))
		seen[e] = true
		return true
	})

	assert.Equal(t, before, Render(input))
}

func TestDifferentiateN(t *testing.T) {
	d, err := DifferentiateN(MustParse("x^4"), "x", 2)
	require.NoError(t, err)
	assert.InDelta(t, 12*4, evalAt(t, d, 2), 1e-9)

	d, err = DifferentiateN(MustParse("sin(x)"), "x", 4)
	require.NoError(t, err)
	assert.InDelta(t, math.Sin(1.2), evalAt(t, d, 1.2), 1e-9)

	_, err = DifferentiateN(MustParse("x"), "x", 0)
	assert.Error(t, err)
}

func TestDifferentiateNLimits(t *testing.T) {
	d, err := DifferentiateN(MustParse("sin(x)"), "x", MaxDerivativeOrder)
	require.NoError(t, err)
	assert.InDelta(t, -math.Sin(0.7), evalAt(t, d, 0.7), 1e-9)

	var unsup *UnsupportedOperationError

	_, err = DifferentiateN(MustParse("x^2"), "x", MaxDerivativeOrder+1)
	require.ErrorAs(t, err, &unsup)
	assert.Contains(t, unsup.Reason, "exceeds the maximum")

	_, err = DifferentiateN(MustParse("x^x"), "x", MaxDerivativeOrder)
	require.ErrorAs(t, err, &unsup)
	assert.Contains(t, unsup.Reason, "grows too large")
}
