package parse

import (
	"fmt"
	"strconv"
)

// Parser converts a token stream into an AST.
type Parser struct {
	tokens []Token
	pos    int
}

// ParseRule parses a full derivation: head <= body.
func ParseRule(input string) (*Rule, error) {
	p, err := newParser(input)
	if err != nil {
		return nil, err
	}

	head, err := p.parseAtom()
	if err != nil {
		return nil, fmt.Errorf("head: %w", err)
	}
	if _, err := p.expect(TokenDerives); err != nil {
		return nil, fmt.Errorf("rule: %w", err)
	}
	body, err := p.parseOr()
	if err != nil {
		return nil, fmt.Errorf("body: %w", err)
	}
	if err := p.expectEOF(); err != nil {
		return nil, err
	}

	return &Rule{Head: head, Body: body}, nil
}

// ParseQuery parses a bare body expression, the ad-hoc query form.
func ParseQuery(input string) (Node, error) {
	p, err := newParser(input)
	if err != nil {
		return nil, err
	}

	body, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if err := p.expectEOF(); err != nil {
		return nil, err
	}

	return body, nil
}

func newParser(input string) (*Parser, error) {
	tokens, err := Lex(input)
	if err != nil {
		return nil, fmt.Errorf("lex error: %w", err)
	}
	return &Parser{tokens: tokens, pos: 0}, nil
}

func (p *Parser) peek() Token {
	if p.pos >= len(p.tokens) {
		return Token{Type: TokenEOF}
	}
	return p.tokens[p.pos]
}

func (p *Parser) advance() Token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

func (p *Parser) expect(tt TokenType) (Token, error) {
	tok := p.advance()
	if tok.Type != tt {
		return tok, fmt.Errorf("expected %s, got %s (%q) at position %d", tt, tok.Type, tok.Val, tok.Pos)
	}
	return tok, nil
}

func (p *Parser) expectEOF() error {
	if tok := p.peek(); tok.Type != TokenEOF {
		return fmt.Errorf("unexpected token %s (%q) at position %d", tok.Type, tok.Val, tok.Pos)
	}
	return nil
}

// parseOr parses and { "|" and }; "|" binds loosest.
func (p *Parser) parseOr() (Node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}

	for p.peek().Type == TokenPipe {
		p.advance() // consume |
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &Or{Left: left, Right: right}
	}

	return left, nil
}

// parseAnd parses prim { "&" prim }.
func (p *Parser) parseAnd() (Node, error) {
	left, err := p.parsePrim()
	if err != nil {
		return nil, err
	}

	for p.peek().Type == TokenAmp {
		p.advance() // consume &
		right, err := p.parsePrim()
		if err != nil {
			return nil, err
		}
		left = &And{Left: left, Right: right}
	}

	return left, nil
}

// parsePrim parses an atom or a parenthesized body.
func (p *Parser) parsePrim() (Node, error) {
	if p.peek().Type == TokenLParen {
		p.advance() // consume (
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenRParen); err != nil {
			return nil, err
		}
		return inner, nil
	}
	return p.parseAtom()
}

// parseAtom parses name(term, ..., term).
func (p *Parser) parseAtom() (*Atom, error) {
	nameTok, err := p.expect(TokenIdent)
	if err != nil {
		return nil, fmt.Errorf("expected relation name: %w", err)
	}
	if _, err := p.expect(TokenLParen); err != nil {
		return nil, fmt.Errorf("relation %q: %w", nameTok.Val, err)
	}

	if p.peek().Type == TokenRParen {
		return nil, fmt.Errorf("relation %q: expected at least one argument at position %d", nameTok.Val, p.peek().Pos)
	}

	var args []Term
	for {
		term, err := p.parseTerm()
		if err != nil {
			return nil, fmt.Errorf("relation %q: %w", nameTok.Val, err)
		}
		args = append(args, term)

		if p.peek().Type != TokenComma {
			break
		}
		p.advance() // consume comma
	}

	if _, err := p.expect(TokenRParen); err != nil {
		return nil, fmt.Errorf("relation %q: %w", nameTok.Val, err)
	}

	return &Atom{Name: nameTok.Val, Args: args, Pos: nameTok.Pos}, nil
}

// parseTerm parses one argument: a variable or a literal constant.
func (p *Parser) parseTerm() (Term, error) {
	tok := p.advance()

	switch tok.Type {
	case TokenIdent:
		return &Variable{Name: tok.Val}, nil

	case TokenInt:
		v, err := strconv.ParseInt(tok.Val, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid integer %q: %w", tok.Val, err)
		}
		return &Constant{Value: v}, nil

	case TokenFloat:
		v, err := strconv.ParseFloat(tok.Val, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid float %q: %w", tok.Val, err)
		}
		return &Constant{Value: v}, nil

	case TokenString:
		return &Constant{Value: tok.Val}, nil

	case TokenTrue:
		return &Constant{Value: true}, nil

	case TokenFalse:
		return &Constant{Value: false}, nil

	case TokenNull:
		return &Constant{Value: nil}, nil

	default:
		return nil, fmt.Errorf("expected term, got %s (%q) at position %d", tok.Type, tok.Val, tok.Pos)
	}
}
