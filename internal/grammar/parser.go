package grammar

import (
	"fmt"
	"regexp"
	"strconv"

	"reasonkernel/internal/logic"
)

// quickAccept is the cheap regex pre-filter the original parser ran before
// invoking the real grammar: a formula must end in a period and contain
// only the character classes the grammar can ever produce, with balanced
// parentheses. It exists so callers can reject obvious garbage (stray
// control characters, unterminated input) without paying for a full parse.
var quickAcceptBody = regexp.MustCompile(`^[A-Za-zÄÖÜäöüß0-9\s(),\-&|.>=_∧∨¬→∀~]+$`)

// QuickAccept reports whether s is plausibly a well-formed formula: it ends
// with a period and contains only characters the grammar can produce, with
// balanced parentheses. It is not a substitute for Parse — it only filters
// input cheaply before the real parse is attempted.
func QuickAccept(s string) bool {
	if len(s) == 0 || s[len(s)-1] != '.' {
		return false
	}
	if !quickAcceptBody.MatchString(s) {
		return false
	}
	depth := 0
	for _, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return false
			}
		}
	}
	return depth == 0
}

// Parse parses a single formula, terminated by a trailing period, into a
// logic.Formula tree. Input is expected to have already passed through the
// normalizer, so the legacy ":-" spelling is not handled here — only the
// grammar's own token spellings and their Unicode aliases. The lexer does
// still accept a legacy "~" as negation.
func Parse(s string) (logic.Formula, error) {
	trimmed, err := stripTrailingPeriod(s)
	if err != nil {
		return nil, err
	}
	lx := newLexer(trimmed)
	toks, err := lx.tokens()
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	f, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if !p.check(tokEOF) {
		return nil, &ParseError{Pos: p.current().pos, Message: "trailing input after formula"}
	}
	return f, nil
}

func stripTrailingPeriod(s string) (string, error) {
	i := len(s) - 1
	for i >= 0 && (s[i] == ' ' || s[i] == '\t' || s[i] == '\n') {
		i--
	}
	if i < 0 || s[i] != '.' {
		return "", &ParseError{Pos: len(s), Message: "formula must end with a period"}
	}
	return s[:i], nil
}

type parser struct {
	toks []token
	pos  int
}

func (p *parser) current() token {
	return p.toks[p.pos]
}

func (p *parser) check(k tokenKind) bool {
	return p.current().kind == k
}

func (p *parser) advance() token {
	t := p.current()
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *parser) expect(k tokenKind, what string) (token, error) {
	if !p.check(k) {
		return token{}, &ParseError{Pos: p.current().pos, Message: fmt.Sprintf("expected %s", what)}
	}
	return p.advance(), nil
}

// parseExpression is the entry production: implication, the loosest binder.
func (p *parser) parseExpression() (logic.Formula, error) {
	return p.parseImplies()
}

// parseImplies : parseOr ("->" parseImplies)?   -- right-associative
func (p *parser) parseImplies() (logic.Formula, error) {
	lhs, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.check(tokArrow) {
		p.advance()
		rhs, err := p.parseImplies()
		if err != nil {
			return nil, err
		}
		return &logic.Implies{Left: lhs, Right: rhs}, nil
	}
	return lhs, nil
}

// parseOr : parseAnd ("|" parseAnd)*   -- left-associative
func (p *parser) parseOr() (logic.Formula, error) {
	lhs, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.check(tokOr) {
		p.advance()
		rhs, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		lhs = &logic.Or{Left: lhs, Right: rhs}
	}
	return lhs, nil
}

// parseAnd : parseUnary ("&" parseUnary)*   -- left-associative
func (p *parser) parseAnd() (logic.Formula, error) {
	lhs, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.check(tokAnd) {
		p.advance()
		rhs, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		lhs = &logic.And{Left: lhs, Right: rhs}
	}
	return lhs, nil
}

// parseUnary : "-" parseUnary | quantified | primary
func (p *parser) parseUnary() (logic.Formula, error) {
	if p.check(tokMinus) {
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &logic.Not{Operand: operand}, nil
	}
	if p.check(tokForall) {
		return p.parseQuantified()
	}
	return p.parsePrimary()
}

// parseQuantified handles both the canonical dotted form ("all x.(phi)",
// which nests naturally when phi is itself a quantified expression, e.g.
// "all x.all y.all z.((...) -> y=z)") and the legacy space-chained form
// with a single trailing parenthesized body ("all x all y all z (phi)").
// The optional "." is simply consumed if present; either way the body is
// parsed as a full expression, which recurses into parseUnary and so
// transparently accepts a further quantifier or a parenthesized formula.
func (p *parser) parseQuantified() (logic.Formula, error) {
	p.advance() // consume 'all' / '∀'
	varTok, err := p.expect(tokIdent, "a variable name after the quantifier")
	if err != nil {
		return nil, err
	}
	if !isVariableCase(varTok.text) {
		return nil, &ParseError{Pos: varTok.pos, Message: "quantified variable must start lowercase"}
	}
	if p.check(tokDot) {
		p.advance()
	}
	body, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return &logic.ForAll{Var: varTok.text, Body: body}, nil
}

// parsePrimary : "(" expression ")" | atom | equality
func (p *parser) parsePrimary() (logic.Formula, error) {
	if p.check(tokLParen) {
		p.advance()
		e, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRParen, "closing ')'"); err != nil {
			return nil, err
		}
		return e, nil
	}
	if p.check(tokIdent) && isPredicateCase(p.current().text) && p.peekKind(1) == tokLParen {
		return p.parseAtom()
	}
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokEquals, "'=' in equality"); err != nil {
		return nil, err
	}
	right, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	return &logic.Equal{Left: left, Right: right}, nil
}

func (p *parser) peekKind(offset int) tokenKind {
	i := p.pos + offset
	if i >= len(p.toks) {
		return tokEOF
	}
	return p.toks[i].kind
}

func (p *parser) parseAtom() (logic.Formula, error) {
	nameTok := p.advance()
	if _, err := p.expect(tokLParen, "'(' after predicate name"); err != nil {
		return nil, err
	}
	var args []logic.Term
	if !p.check(tokRParen) {
		for {
			t, err := p.parseTerm()
			if err != nil {
				return nil, err
			}
			args = append(args, t)
			if p.check(tokComma) {
				p.advance()
				continue
			}
			break
		}
	}
	if _, err := p.expect(tokRParen, "closing ')' of argument list"); err != nil {
		return nil, err
	}
	return &logic.Atom{Predicate: nameTok.text, Args: args}, nil
}

func (p *parser) parseTerm() (logic.Term, error) {
	switch {
	case p.check(tokNumber):
		tok := p.advance()
		n, err := strconv.ParseInt(tok.text, 10, 64)
		if err != nil {
			return logic.Term{}, &ParseError{Pos: tok.pos, Message: "malformed integer literal"}
		}
		return logic.NewInteger(n), nil
	case p.check(tokIdent):
		tok := p.advance()
		if isPredicateCase(tok.text) {
			return logic.NewConstant(tok.text), nil
		}
		return logic.NewVariable(tok.text), nil
	default:
		return logic.Term{}, &ParseError{Pos: p.current().pos, Message: "expected a term (variable, constant, or integer)"}
	}
}

// ExtractPredicates parses s and returns the distinct predicate names it
// references, in first-encountered order. Returns an error if s does not
// parse.
func ExtractPredicates(s string) ([]string, error) {
	f, err := Parse(s)
	if err != nil {
		return nil, err
	}
	return logic.Predicates(f), nil
}
