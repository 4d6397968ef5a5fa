package expr

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

type tokenKind int

const (
	tokenIdentifier tokenKind = iota
	tokenString
	tokenNumber
	tokenBool
	tokenNull
	tokenEq
	tokenNeq
	tokenLt
	tokenLte
	tokenGt
	tokenGte
	tokenAnd
	tokenOr
	tokenNot
	tokenLParen
	tokenRParen
)

type token struct {
	kind tokenKind
	raw  string
}

// operators is matched in order, so two-character forms come first.
var operators = []token{
	{tokenEq, "=="},
	{tokenNeq, "!="},
	{tokenLte, "<="},
	{tokenGte, ">="},
	{tokenAnd, "&&"},
	{tokenOr, "||"},
	{tokenLt, "<"},
	{tokenGt, ">"},
	{tokenNot, "!"},
	{tokenLParen, "("},
	{tokenRParen, ")"},
}

const wordDelimiters = " \t\n\r()!=&|<>\"'"

type lexer struct {
	input  string
	pos    int
	tokens []token
}

func lex(input string) ([]token, error) {
	l := &lexer{input: input}
	for {
		l.pos += len(l.input[l.pos:]) - len(strings.TrimLeft(l.input[l.pos:], " \t\n\r"))
		if l.pos >= len(l.input) {
			return l.tokens, nil
		}
		if err := l.scan(); err != nil {
			return nil, err
		}
	}
}

func (l *lexer) scan() error {
	rest := l.input[l.pos:]
	for _, op := range operators {
		if strings.HasPrefix(rest, op.raw) {
			l.tokens = append(l.tokens, op)
			l.pos += len(op.raw)
			return nil
		}
	}

	switch c := rest[0]; c {
	case '=', '&', '|':
		return fmt.Errorf("visibility/expr: unexpected %q; use %q", c, string([]byte{c, c}))
	case '"', '\'':
		return l.scanString(c)
	default:
		l.scanWord()
		return nil
	}
}

func (l *lexer) scanString(quote byte) error {
	start := l.pos + 1
	for i := start; i < len(l.input); i++ {
		switch l.input[i] {
		case '\\':
			i++
		case quote:
			value, err := unquote(l.input[start:i], quote)
			if err != nil {
				return fmt.Errorf("visibility/expr: invalid string literal: %w", err)
			}
			l.tokens = append(l.tokens, token{kind: tokenString, raw: value})
			l.pos = i + 1
			return nil
		}
	}
	return errors.New("visibility/expr: unterminated string literal")
}

// scanWord reads an identifier, number or keyword.
func (l *lexer) scanWord() {
	rest := l.input[l.pos:]
	end := strings.IndexAny(rest, wordDelimiters)
	if end < 0 {
		end = len(rest)
	}
	raw := rest[:end]
	l.pos += end

	tok := token{kind: tokenIdentifier, raw: raw}
	switch lower := strings.ToLower(raw); {
	case lower == "true" || lower == "false":
		tok = token{kind: tokenBool, raw: lower}
	case lower == "null" || lower == "nil":
		tok = token{kind: tokenNull, raw: "null"}
	case isNumber(raw):
		tok.kind = tokenNumber
	}
	l.tokens = append(l.tokens, tok)
}

// unquote decodes a string literal body. Single-quoted bodies are rewritten
// as double-quoted ones since strconv treats '...' as a rune literal.
func unquote(body string, quote byte) (string, error) {
	if quote == '\'' {
		body = strings.ReplaceAll(body, `\'`, `'`)
		body = strings.ReplaceAll(body, `"`, `\"`)
	}
	return strconv.Unquote(`"` + body + `"`)
}

// isNumber requires the whole word to parse so identifiers such as UUID field
// ids starting with a digit stay identifiers.
func isNumber(raw string) bool {
	if raw == "" || !strings.ContainsRune("0123456789+-.", rune(raw[0])) {
		return false
	}
	_, err := strconv.ParseFloat(raw, 64)
	return err == nil
}
