package calcula

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"
)

type TokenType uint64
type stateFunc func(l *Lexer) stateFunc

//go:generate stringer -type=TokenType -trimprefix=Token
const (
	EOF rune = 0

	TokenError TokenType = iota
	TokenEOF
	TokenNumber
	TokenIdentifier

	TokenPlus
	TokenMinus
	TokenMulti
	TokenDiv
	TokenPow
	TokenBang
	TokenComma
	TokenOpenParentheses
	TokenCloseParentheses
)

var operatorTable = map[rune]TokenType{
	'+': TokenPlus,
	'-': TokenMinus,
	'*': TokenMulti,
	'/': TokenDiv,
	'^': TokenPow,
	'!': TokenBang,
	',': TokenComma,
	'(': TokenOpenParentheses,
	')': TokenCloseParentheses,
}

type Token struct {
	Typ   TokenType
	Value string
	Pos   int
}

func (t Token) isValid() bool {
	return t.Typ != TokenError && t.Typ != TokenEOF
}

// Tokenizer is the token source consumed by the Parser.
type Tokenizer interface {
	Get() Token
}

type Lexer struct {
	reader *bufio.Reader
	done   chan Token
	pos    int
	start  int
}

func NewLexer(reader io.Reader) *Lexer {
	return &Lexer{
		reader: bufio.NewReader(reader),
		done:   make(chan Token),
	}
}

func NewLexerFromString(input string) *Lexer {
	return NewLexer(strings.NewReader(input))
}

func (l *Lexer) Chan() chan Token {
	return l.done
}

// Get returns the next token. Once the stream is exhausted it keeps
// returning TokenEOF.
func (l *Lexer) Get() Token {
	t, ok := <-l.done
	if !ok {
		return Token{Typ: TokenEOF, Pos: l.pos}
	}

	return t
}

func (l *Lexer) Run() {
	for state := defaultState; state != nil; {
		state = state(l)
	}

	close(l.done)
}

// RunBlocking lexes the whole input. A lexical error is returned as a
// *ParseError pointing at the offending rune.
func (l *Lexer) RunBlocking() ([]Token, error) {
	go l.Run()

	var tokens []Token
	for t := range l.Chan() {
		if t.Typ == TokenEOF {
			tokens = append(tokens, t)
			continue
		}

		if t.Typ == TokenError {
			// Drain so the lexer goroutine can exit.
			for range l.Chan() {
			}

			return nil, &ParseError{Pos: t.Pos, Msg: t.Value}
		}

		tokens = append(tokens, t)
	}

	return tokens, nil
}

func defaultState(l *Lexer) stateFunc {
	for {
		l.start = l.pos
		switch r := l.peek(); {
		case r == EOF:
			return l.emmitValue(TokenEOF, "")
		case unicode.IsSpace(r):
			l.next()
			continue
		case isDigit(r) || r == '.':
			return numberState
		case unicode.IsLetter(r) || r == '_':
			return identifierState
		default:
			return operatorState
		}
	}
}

func numberState(l *Lexer) stateFunc {
	var num strings.Builder
	l.digits(&num)

	if l.peek() == '.' {
		num.WriteRune(l.next())
		l.digits(&num)
	}

	if num.String() == "." {
		return l.errorf("invalid number '.'")
	}

	if l.peek() == '.' {
		for r := l.peek(); r == '.' || isDigit(r); r = l.peek() {
			num.WriteRune(l.next())
		}

		return l.errorf("invalid number '%s'", num.String())
	}

	// An exponent needs at least one digit, otherwise the 'e' is left for
	// the identifier state (2e reads as 2 * e).
	if r := l.peek(); r == 'e' || r == 'E' {
		ahead := l.peekN(3)
		exp := ahead[1:]
		if len(exp) > 0 && (exp[0] == '+' || exp[0] == '-') {
			exp = exp[1:]
		}

		if len(exp) > 0 && isDigit(exp[0]) {
			num.WriteRune(l.next())
			if s := l.peek(); s == '+' || s == '-' {
				num.WriteRune(l.next())
			}

			l.digits(&num)
		}
	}

	return l.emmitValue(TokenNumber, num.String())
}

func identifierState(l *Lexer) stateFunc {
	var id strings.Builder
	for r := l.peek(); unicode.IsLetter(r) || isDigit(r) || r == '_'; r = l.peek() {
		id.WriteRune(l.next())
	}

	return l.emmitValue(TokenIdentifier, id.String())
}

func operatorState(l *Lexer) stateFunc {
	r := l.next()
	if tok, ok := operatorTable[r]; ok {
		return l.emmitValue(tok, string(r))
	}

	if r == utf8.RuneError {
		return l.errorf("invalid encoding")
	}

	return l.errorf("invalid symbol '%c'", r)
}

func (l *Lexer) digits(b *strings.Builder) {
	for r := l.peek(); isDigit(r); r = l.peek() {
		b.WriteRune(l.next())
	}
}

func (l *Lexer) errorf(format string, args ...interface{}) stateFunc {
	l.done <- Token{
		Typ:   TokenError,
		Value: fmt.Sprintf(format, args...),
		Pos:   l.start,
	}

	return nil
}

func (l *Lexer) emmitValue(t TokenType, val string) stateFunc {
	l.done <- Token{
		Typ:   t,
		Value: val,
		Pos:   l.start,
	}

	if t == TokenEOF {
		return nil
	}

	return defaultState
}

func (l *Lexer) peek() rune {
	r, _, err := l.reader.ReadRune()
	if err != nil {
		return EOF
	}

	_ = l.reader.UnreadRune()
	return r
}

// peekN returns up to n upcoming runes without consuming them.
func (l *Lexer) peekN(n int) []rune {
	buf, _ := l.reader.Peek(n * utf8.UTFMax)

	var runes []rune
	for len(buf) > 0 && len(runes) < n {
		r, size := utf8.DecodeRune(buf)
		runes = append(runes, r)
		buf = buf[size:]
	}

	return runes
}

func (l *Lexer) next() rune {
	r, size, err := l.reader.ReadRune()
	if err != nil {
		if err == io.EOF {
			return EOF
		}

		return utf8.RuneError
	}

	l.pos += size
	return r
}

func isDigit(r rune) bool {
	return '0' <= r && r <= '9'
}
