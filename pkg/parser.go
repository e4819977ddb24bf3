package calcula

import (
	"fmt"
	"strconv"
)

type Parser struct {
	tokenizer Tokenizer
	buf       *Token
	prev      TokenType // type of the last consumed token
}

func NewParser(tokenizer Tokenizer) *Parser {
	return &Parser{
		tokenizer: tokenizer,
	}
}

// Parse turns input into an expression tree. Malformed input is reported
// as a *ParseError.
func Parse(input string) (Expr, error) {
	toks, err := NewLexerFromString(input).RunBlocking()
	if err != nil {
		return nil, err
	}

	expr := NewParser(newTokenBuffer(toks)).Run()
	if bad := firstBadExpr(expr); bad != nil {
		return nil, &ParseError{Pos: bad.Pos, Msg: bad.Error}
	}

	return expr, nil
}

// MustParse is like Parse but panics on error. Intended for tests and
// package-level fixtures.
func MustParse(input string) Expr {
	expr, err := Parse(input)
	if err != nil {
		panic(err)
	}

	return expr
}

// Run parses a single expression spanning the whole token stream. Errors
// are left in the tree as *BadExpr nodes.
func (p *Parser) Run() Expr {
	if p.check(TokenEOF) {
		return p.errorf(p.peek().Pos, "empty expression")
	}

	expr := p.expr()

	// Report the first error rather than whatever trails it.
	if !p.check(TokenEOF) && firstBadExpr(expr) != nil {
		return expr
	}

	switch tok := p.peek(); tok.Typ {
	case TokenEOF:
		return expr
	case TokenCloseParentheses:
		return p.errorf(tok.Pos, "unbalanced parenthesis ')'")
	case TokenError:
		return p.errorf(tok.Pos, "%s", tok.Value)
	default:
		return p.errorf(tok.Pos, "unexpected token '%s'", tok.Value)
	}
}

func (p *Parser) peek() Token {
	if p.buf == nil {
		temp := p.next()
		p.buf = &temp
	}

	return *p.buf
}

func (p *Parser) next() Token {
	if p.buf != nil {
		if !p.buf.isValid() {
			// If an invalid token is buffered, don't try to get more tokens
			return *p.buf
		}

		temp := p.buf
		p.buf = nil
		p.prev = temp.Typ

		return *temp
	}

	tok := p.tokenizer.Get()
	if !tok.isValid() {
		// If a token is invalid (such as Error or EOF) keep it buffered since no more valid tokens are expected
		p.buf = &tok
	}

	p.prev = tok.Typ
	return tok
}

func (p *Parser) check(typ TokenType) bool {
	return p.peek().Typ == typ
}

func (p *Parser) consume(typ TokenType) bool {
	tok := p.next()
	if tok.Typ != typ {
		return false
	}

	return true
}

func (p *Parser) errorf(pos int, format string, args ...interface{}) Expr {
	return &BadExpr{Pos: pos, Error: fmt.Sprintf(format, args...)}
}

func (p *Parser) expr() Expr {
	return p.additiveExpr()
}

func (p *Parser) additiveExpr() Expr {
	lhs := p.multiplicativeExpr()

	for {
		tok := p.peek()
		if tok.Typ != TokenPlus && tok.Typ != TokenMinus {
			return lhs
		}

		p.next()
		lhs = &BinaryExpr{
			Operation: BinaryOp(tok.Value),
			Op1:       lhs,
			Op2:       p.multiplicativeExpr(),
		}
	}
}

func (p *Parser) multiplicativeExpr() Expr {
	lhs := p.powerExpr()

	for {
		switch tok := p.peek(); tok.Typ {
		case TokenMulti, TokenDiv:
			p.next()
			lhs = &BinaryExpr{
				Operation: BinaryOp(tok.Value),
				Op1:       lhs,
				Op2:       p.powerExpr(),
			}
		case TokenNumber, TokenIdentifier, TokenOpenParentheses:
			// Implicit multiplication: 2x, 3(x+1), (x+1)(x-1). Two numbers
			// in a row are never a product.
			if tok.Typ == TokenNumber && p.prev == TokenNumber {
				p.next()
				return p.errorf(tok.Pos, "unexpected number '%s'", tok.Value)
			}

			lhs = &BinaryExpr{
				Operation: BinaryMultiplication,
				Op1:       lhs,
				Op2:       p.powerExpr(),
			}
		default:
			return lhs
		}
	}
}

func (p *Parser) powerExpr() Expr {
	base := p.unaryExpr()
	if !p.check(TokenPow) {
		return base
	}

	p.next()

	// Right associative: 2^3^2 is 2^(3^2)
	return &BinaryExpr{
		Operation: BinaryPower,
		Op1:       base,
		Op2:       p.powerExpr(),
	}
}

func (p *Parser) unaryExpr() Expr {
	switch {
	case p.check(TokenMinus):
		p.next()

		return &UnaryExpr{
			Operation: UnaryNegative,
			Operand:   p.unaryExpr(),
		}
	case p.check(TokenPlus):
		p.next()

		return p.unaryExpr()
	}

	return p.postfixExpr()
}

func (p *Parser) postfixExpr() Expr {
	expr := p.primary()
	for p.check(TokenBang) {
		p.next()
		expr = &FuncCall{
			Name: "fact",
			Args: []Expr{expr},
		}
	}

	return expr
}

func (p *Parser) primary() Expr {
	switch tok := p.peek(); tok.Typ {
	case TokenOpenParentheses:
		return p.parenthesisedExpression()
	case TokenIdentifier:
		return p.identifier()
	}

	return p.literal()
}

func (p *Parser) parenthesisedExpression() Expr {
	open := p.next()

	if p.check(TokenCloseParentheses) {
		p.next()
		return p.errorf(open.Pos, "empty parentheses")
	}

	exp := p.expr()

	if tok := p.next(); tok.Typ != TokenCloseParentheses {
		return p.errorf(open.Pos, "unbalanced parenthesis '('")
	}

	return exp
}

func (p *Parser) identifier() Expr {
	tok := p.next()

	if p.check(TokenOpenParentheses) {
		return p.funcCall(tok)
	}

	return &Variable{
		Name: tok.Value,
	}
}

func (p *Parser) funcCall(name Token) Expr {
	open := p.next() // Skip (

	var args []Expr
	for tok := p.peek(); tok.isValid() && tok.Typ != TokenCloseParentheses; tok = p.peek() {
		args = append(args, p.expr())

		if !p.check(TokenComma) {
			break
		}

		p.next() // Skip the comma
	}

	if !p.consume(TokenCloseParentheses) {
		return p.errorf(open.Pos, "unbalanced parenthesis in call to %s", name.Value)
	}

	return &FuncCall{
		Name: name.Value,
		Args: args,
	}
}

func (p *Parser) literal() Expr {
	switch tok := p.peek(); tok.Typ {
	case TokenNumber:
		p.next()

		v, err := strconv.ParseFloat(tok.Value, 64)
		if err != nil {
			return p.errorf(tok.Pos, "invalid number '%s'", tok.Value)
		}

		return &Constant{Value: v}
	case TokenEOF:
		return p.errorf(tok.Pos, "unexpected end of expression")
	case TokenError:
		return p.errorf(tok.Pos, "%s", tok.Value)
	default:
		p.next() // Skip errored token
		return p.errorf(tok.Pos, "unexpected token '%s'", tok.Value)
	}
}

// tokenBuffer replays an already lexed token slice.
type tokenBuffer struct {
	buf []Token
	pos int
}

func newTokenBuffer(toks []Token) *tokenBuffer {
	return &tokenBuffer{buf: toks}
}

func (b *tokenBuffer) Get() Token {
	if len(b.buf) <= b.pos {
		end := 0
		if len(b.buf) > 0 {
			end = b.buf[len(b.buf)-1].Pos
		}

		return Token{Typ: TokenEOF, Pos: end}
	}

	tok := b.buf[b.pos]
	b.pos++

	return tok
}
