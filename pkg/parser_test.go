package calcula

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type BufferedTokenizerMocker struct {
	buf []Token
	pos int
}

func NewBufferedTokenizerMocker(toks []Token) *BufferedTokenizerMocker {
	return &BufferedTokenizerMocker{
		buf: toks,
		pos: 0,
	}
}

func (b *BufferedTokenizerMocker) Get() Token {
	if len(b.buf) <= b.pos {
		return Token{Typ: TokenEOF}
	}

	tok := b.buf[b.pos]
	b.pos++

	return tok
}

func TestParser(t *testing.T) {
	cases := []struct {
		data   []Token
		fail   bool
		expect Expr
	}{
		{
			[]Token{
				{TokenNumber, "1", 0},
				{TokenPlus, "+", 0},
				{TokenNumber, "2", 0},
				{TokenMulti, "*", 0},
				{TokenNumber, "3", 0},
			},
			false,
			&BinaryExpr{
				Operation: BinaryAddition,
				Op1:       &Constant{1},
				Op2: &BinaryExpr{
					Operation: BinaryMultiplication,
					Op1:       &Constant{2},
					Op2:       &Constant{3},
				},
			},
		},
		{
			[]Token{
				{TokenOpenParentheses, "(", 0},
				{TokenNumber, "1", 0},
				{TokenPlus, "+", 0},
				{TokenNumber, "3", 0},
				{TokenCloseParentheses, ")", 0},
				{TokenMulti, "*", 0},
				{TokenNumber, "2", 0},
			},
			false,
			&BinaryExpr{
				Operation: BinaryMultiplication,
				Op1: &BinaryExpr{
					Operation: BinaryAddition,
					Op1:       &Constant{1},
					Op2:       &Constant{3},
				},
				Op2: &Constant{2},
			},
		},
		{
			[]Token{
				{TokenIdentifier, "sin", 0},
				{TokenOpenParentheses, "(", 0},
				{TokenIdentifier, "x", 0},
				{TokenCloseParentheses, ")", 0},
			},
			false,
			&FuncCall{
				Name: "sin",
				Args: []Expr{&Variable{"x"}},
			},
		},
		{
			[]Token{
				{TokenIdentifier, "foo", 0},
				{TokenOpenParentheses, "(", 0},
				{TokenNumber, "1", 0},
				{TokenComma, ",", 0},
				{TokenNumber, "2", 0},
				{TokenCloseParentheses, ")", 0},
			},
			false,
			&FuncCall{
				Name: "foo",
				Args: []Expr{&Constant{1}, &Constant{2}},
			},
		},
		{
			[]Token{
				{TokenMinus, "-", 0},
				{TokenIdentifier, "x", 0},
				{TokenPow, "^", 0},
				{TokenNumber, "2", 0},
			},
			false,
			&BinaryExpr{
				Operation: BinaryPower,
				Op1: &UnaryExpr{
					Operation: UnaryNegative,
					Operand:   &Variable{"x"},
				},
				Op2: &Constant{2},
			},
		},
		{
			[]Token{
				{TokenNumber, "5", 0},
				{TokenBang, "!", 0},
			},
			false,
			&FuncCall{
				Name: "fact",
				Args: []Expr{&Constant{5}},
			},
		},
		{
			[]Token{
				{TokenOpenParentheses, "(", 0},
				{TokenNumber, "1", 0},
			},
			true,
			nil,
		},
		{
			[]Token{
				{TokenNumber, "1", 0},
				{TokenCloseParentheses, ")", 0},
			},
			true,
			nil,
		},
		{
			[]Token{
				{TokenNumber, "1", 0},
				{TokenPlus, "+", 0},
			},
			true,
			nil,
		},
		{
			[]Token{},
			true,
			nil,
		},
	}

	for _, c := range cases {
		tokenizer := NewBufferedTokenizerMocker(c.data)
		p := NewParser(tokenizer)

		got := p.Run()

		if c.fail {
			if firstBadExpr(got) == nil {
				assert.Fail(t, "expected parsing to fail, but succeeded", "%#v", c.data)
			}

			continue
		}

		assert.Equal(t, c.expect, got)
	}
}

func TestParse(t *testing.T) {
	cases := []struct {
		input  string
		expect Expr
	}{
		{"1 - 3 + 1", add(sub(num(1), num(3)), num(1))},
		{"8 / 4 / 2", div(div(num(8), num(4)), num(2))},
		{"2^3^2", pow(num(2), pow(num(3), num(2)))},
		{"-2^2", pow(neg(num(2)), num(2))},
		{"2^-1", pow(num(2), neg(num(1)))},
		{"+x", variable("x")},
		{"--x", neg(neg(variable("x")))},
		{"2x", mul(num(2), variable("x"))},
		{"3(x+1)", mul(num(3), add(variable("x"), num(1)))},
		{"(x+1)(x-1)", mul(add(variable("x"), num(1)), sub(variable("x"), num(1)))},
		{"2sin(x)", mul(num(2), call("sin", variable("x")))},
		{"x^2!", pow(variable("x"), call("fact", num(2)))},
		{"  sqrt( 16 )  ", call("sqrt", num(16))},
	}

	for _, c := range cases {
		got, err := Parse(c.input)
		require.NoError(t, err, c.input)
		assert.Equal(t, c.expect, got, c.input)
	}
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		input string
		pos   int
		msg   string
	}{
		{"", 0, "empty expression"},
		{"   ", 3, "empty expression"},
		{"(x + 1", 0, "unbalanced parenthesis '('"},
		{"x + 1)", 5, "unbalanced parenthesis ')'"},
		{"x + * 2", 4, "unexpected token '*'"},
		{"sin(x", 3, "unbalanced parenthesis in call to sin"},
		{"()", 0, "empty parentheses"},
		{"2 $ 3", 2, "invalid symbol '$'"},
		{"x +", 3, "unexpected end of expression"},
		{"1.2.3", 0, "invalid number '1.2.3'"},
		{"1..2", 0, "invalid number '1..2'"},
		{"2 3", 2, "unexpected number '3'"},
		{"3 4 5", 2, "unexpected number '4'"},
		{"(1 2)", 3, "unexpected number '2'"},
	}

	for _, c := range cases {
		_, err := Parse(c.input)
		require.Error(t, err, c.input)

		var parseErr *ParseError
		require.ErrorAs(t, err, &parseErr, c.input)
		assert.Equal(t, c.pos, parseErr.Pos, c.input)
		assert.Equal(t, c.msg, parseErr.Msg, c.input)
	}
}

func TestParserRunLexerError(t *testing.T) {
	l := NewLexerFromString("1 % 2")
	go l.Run()

	bad := firstBadExpr(NewParser(l).Run())
	require.NotNil(t, bad)
	assert.Equal(t, 2, bad.Pos)
	assert.Equal(t, "invalid symbol '%'", bad.Error)
}

func TestMustParsePanics(t *testing.T) {
	assert.Panics(t, func() { MustParse("(") })
	assert.NotPanics(t, func() { MustParse("x") })
}
