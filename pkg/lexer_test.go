package calcula

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.calcula.dev/internal/test"
)

func TestLexer(t *testing.T) {
	cases := []struct {
		data   string
		fail   bool
		expect []Token
	}{
		{
			"x^2 + 2*x + 1",
			false,
			[]Token{
				{TokenIdentifier, "x", 0},
				{TokenPow, "^", 1},
				{TokenNumber, "2", 2},
				{TokenPlus, "+", 4},
				{TokenNumber, "2", 6},
				{TokenMulti, "*", 7},
				{TokenIdentifier, "x", 8},
				{TokenPlus, "+", 10},
				{TokenNumber, "1", 12},
				{TokenEOF, "", 13},
			},
		},
		{
			"sin(3.5)",
			false,
			[]Token{
				{TokenIdentifier, "sin", 0},
				{TokenOpenParentheses, "(", 3},
				{TokenNumber, "3.5", 4},
				{TokenCloseParentheses, ")", 7},
				{TokenEOF, "", 8},
			},
		},
		{
			".5 1e-3 2E+4",
			false,
			[]Token{
				{TokenNumber, ".5", 0},
				{TokenNumber, "1e-3", 3},
				{TokenNumber, "2E+4", 8},
				{TokenEOF, "", 12},
			},
		},
		{
			"2e",
			false,
			[]Token{
				{TokenNumber, "2", 0},
				{TokenIdentifier, "e", 1},
				{TokenEOF, "", 2},
			},
		},
		{
			"5!/x_1",
			false,
			[]Token{
				{TokenNumber, "5", 0},
				{TokenBang, "!", 1},
				{TokenDiv, "/", 2},
				{TokenIdentifier, "x_1", 3},
				{TokenEOF, "", 6},
			},
		},
		{
			"",
			false,
			[]Token{
				{TokenEOF, "", 0},
			},
		},
		{
			"x @ 2",
			true,
			nil,
		},
		{
			".",
			true,
			nil,
		},
	}

	for _, c := range cases {
		l := NewLexer(strings.NewReader(c.data))

		toks, err := l.RunBlocking()
		if c.fail {
			assert.Error(t, err, c.data)
		} else {
			assert.NoError(t, err, c.data)
		}

		assert.Equal(t, c.expect, toks, c.data)
	}
}

func TestLexerErrorPosition(t *testing.T) {
	_, err := NewLexerFromString("1 + # 2").RunBlocking()
	require.Error(t, err)

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, 4, parseErr.Pos)
	assert.Contains(t, parseErr.Msg, "'#'")
}

func TestLexerGet(t *testing.T) {
	l := NewLexerFromString("a+b")
	go l.Run()

	assert.Equal(t, TokenIdentifier, l.Get().Typ)
	assert.Equal(t, TokenPlus, l.Get().Typ)
	assert.Equal(t, TokenIdentifier, l.Get().Typ)
	assert.Equal(t, TokenEOF, l.Get().Typ)
	// Exhausted lexers keep reporting EOF
	assert.Equal(t, TokenEOF, l.Get().Typ)
}

// Use a package-level variable to avoid compiler optimisation
var benchResult []Token

func benchmarkLexer(size int, b *testing.B) {
	for n := 0; n < b.N; n++ {
		// Setup
		b.StopTimer()
		data := test.GetRandomTokens(size)
		r := strings.NewReader(data)
		l := NewLexer(r)

		var err error
		b.StartTimer()

		benchResult, err = l.RunBlocking()
		if err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkLexer100(b *testing.B) {
	benchmarkLexer(100, b)
}

func BenchmarkLexer1000(b *testing.B) {
	benchmarkLexer(1000, b)
}

func BenchmarkLexer10000(b *testing.B) {
	benchmarkLexer(10000, b)
}
