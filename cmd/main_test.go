package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	calcula "go.calcula.dev/pkg"
)

func run(args ...string) (string, error) {
	var out bytes.Buffer

	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)

	err := root.Execute()
	return out.String(), err
}

func TestEvalCmd(t *testing.T) {
	out, err := run("eval", "x^2 + 1", "--var", "x=3")
	require.NoError(t, err)
	assert.Equal(t, "10\n", out)

	out, err = run("eval", "sin(90)", "--angle", "deg")
	require.NoError(t, err)
	assert.Equal(t, "1\n", out)

	out, err = run("eval", "1/0")
	require.NoError(t, err)
	assert.Equal(t, "Error\n", out)

	out, err = run("eval", "2 +")
	assert.Equal(t, "parse", calcula.ErrorKind(err))
	assert.Equal(t, "Error\n", out)
}

func TestDeriveCmd(t *testing.T) {
	out, err := run("derive", "x^2 + 2*x + 1", "--at", "3")
	require.NoError(t, err)
	assert.Equal(t, "2 * x + 2\nat x = 3: 8\n", out)

	out, err = run("derive", "x^2", "--latex")
	require.NoError(t, err)
	assert.Equal(t, "2 \\cdot x\n", out)

	_, err = run("derive", "fact(x)")
	assert.Equal(t, "unsupported_operation", calcula.ErrorKind(err))
}

func TestCalcCmd(t *testing.T) {
	out, err := run("calc", "simple-interest", "-p", "principal=10000", "-p", "rate=5", "-p", "years=5")
	require.NoError(t, err)
	assert.JSONEq(t, `{"interest": 2500, "total": 12500}`, out)

	out, err = run("calc", "hcf", "-p", "numbers=12,18,24")
	require.NoError(t, err)
	assert.JSONEq(t, `{"value": 6}`, out)

	_, err = run("calc", "simple-interest", "-p", "principal")
	assert.Error(t, err)
}

func TestIRCmd(t *testing.T) {
	out, err := run("ir", "x + y", "--name", "add")
	require.NoError(t, err)
	assert.Contains(t, out, "define double @add(double %x, double %y)")

	out, err = run("ir", "sin(x)", "--angle", "deg")
	require.NoError(t, err)
	assert.Contains(t, out, "fmul")
}
