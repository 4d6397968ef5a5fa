package expr

import (
	"errors"
	"fmt"
	"slices"

	"github.com/goliatone/go-formbuilder/pkg/visibility"
)

// node is one element of a parsed rule.
type node interface {
	eval(ctx visibility.Context) (bool, error)
}

type orNode struct{ left, right node }

func (n orNode) eval(ctx visibility.Context) (bool, error) {
	if ok, err := n.left.eval(ctx); err != nil || ok {
		return ok, err
	}
	return n.right.eval(ctx)
}

type andNode struct{ left, right node }

func (n andNode) eval(ctx visibility.Context) (bool, error) {
	if ok, err := n.left.eval(ctx); err != nil || !ok {
		return false, err
	}
	return n.right.eval(ctx)
}

type notNode struct{ inner node }

func (n notNode) eval(ctx visibility.Context) (bool, error) {
	ok, err := n.inner.eval(ctx)
	if err != nil {
		return false, err
	}
	return !ok, nil
}

// truthyNode is a bare identifier.
type truthyNode struct{ identifier string }

func (n truthyNode) eval(ctx visibility.Context) (bool, error) {
	value, ok := lookup(ctx, n.identifier)
	return ok && truthy(value), nil
}

// strictNode is a bare identifier that forms the whole rule. Its value is the
// rule's result, so anything but a boolean is an error.
type strictNode truthyNode

func (n strictNode) eval(ctx visibility.Context) (bool, error) {
	value, _ := lookup(ctx, n.identifier)
	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		if v == "true" || v == "false" {
			return v == "true", nil
		}
	}
	return false, fmt.Errorf("visibility/expr: %q is not a boolean (%T)", n.identifier, value)
}

type literalKind int

const (
	litString literalKind = iota
	litNumber
	litBool
	litNull
)

type literal struct {
	kind literalKind
	raw  string
}

// compareNode is `identifier op literal`.
type compareNode struct {
	identifier string
	op         tokenKind
	literal    literal
}

var comparisons = []tokenKind{tokenEq, tokenNeq, tokenLt, tokenLte, tokenGt, tokenGte}

// parser is a recursive descent parser over the grammar
//
//	or      = and { "||" and }
//	and     = unary { "&&" unary }
//	unary   = "!" unary | primary
//	primary = "(" or ")" | identifier [ op literal ]
type parser struct {
	tokens []token
	pos    int
}

func parse(tokens []token) (node, error) {
	p := &parser{tokens: tokens}
	root, err := p.or()
	if err != nil {
		return nil, err
	}
	if tok, ok := p.peek(); ok {
		return nil, fmt.Errorf("visibility/expr: unexpected token %q", tok.raw)
	}
	return root, nil
}

func (p *parser) or() (node, error) {
	left, err := p.and()
	for err == nil && p.accept(tokenOr) {
		var right node
		if right, err = p.and(); err == nil {
			left = orNode{left: left, right: right}
		}
	}
	return left, err
}

func (p *parser) and() (node, error) {
	left, err := p.unary()
	for err == nil && p.accept(tokenAnd) {
		var right node
		if right, err = p.unary(); err == nil {
			left = andNode{left: left, right: right}
		}
	}
	return left, err
}

func (p *parser) unary() (node, error) {
	if !p.accept(tokenNot) {
		return p.primary()
	}
	inner, err := p.unary()
	if err != nil {
		return nil, err
	}
	return notNode{inner: inner}, nil
}

func (p *parser) primary() (node, error) {
	if p.accept(tokenLParen) {
		inner, err := p.or()
		if err != nil {
			return nil, err
		}
		if !p.accept(tokenRParen) {
			return nil, errors.New("visibility/expr: missing closing ')'")
		}
		return inner, nil
	}

	tok, ok := p.peek()
	switch {
	case !ok:
		return nil, errors.New("visibility/expr: empty expression")
	case tok.kind != tokenIdentifier:
		return nil, fmt.Errorf("visibility/expr: expected identifier, got %q", tok.raw)
	}
	p.pos++

	next, ok := p.peek()
	if !ok || !slices.Contains(comparisons, next.kind) {
		return truthyNode{identifier: tok.raw}, nil
	}
	p.pos++
	lit, err := p.literal()
	if err != nil {
		return nil, err
	}
	return compareNode{identifier: tok.raw, op: next.kind, literal: lit}, nil
}

func (p *parser) literal() (literal, error) {
	tok, ok := p.peek()
	if !ok {
		return literal{}, errors.New("visibility/expr: missing literal")
	}
	p.pos++
	switch tok.kind {
	case tokenString, tokenIdentifier:
		// bare words compare as strings
		return literal{kind: litString, raw: tok.raw}, nil
	case tokenNumber:
		return literal{kind: litNumber, raw: tok.raw}, nil
	case tokenBool:
		return literal{kind: litBool, raw: tok.raw}, nil
	case tokenNull:
		return literal{kind: litNull, raw: tok.raw}, nil
	default:
		return literal{}, fmt.Errorf("visibility/expr: expected literal, got %q", tok.raw)
	}
}

func (p *parser) peek() (token, bool) {
	if p.pos >= len(p.tokens) {
		return token{}, false
	}
	return p.tokens[p.pos], true
}

func (p *parser) accept(kind tokenKind) bool {
	if tok, ok := p.peek(); ok && tok.kind == kind {
		p.pos++
		return true
	}
	return false
}
