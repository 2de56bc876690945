// Copyright 2025 The DBQ Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ddqcore

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ValueLookup resolves a column to its value in the current row. The second
// return reports whether the column exists at all.
type ValueLookup func(column string) (any, bool)

// Expr is a parsed predicate expression over a single row, supporting
// comparisons (=, !=, <>, <, <=, >, >=) between a column and a literal,
// "is [not] null" tests, grouping with parentheses, and the boolean
// connectives and/or/not (case-insensitive).
//
// Backends that evaluate rows in process (memtable) use Expr; SQL backends
// pass the raw expression text through to the database instead.
type Expr struct {
	text string
	node exprNode
}

// ParseExpr parses a predicate expression.
func ParseExpr(text string) (*Expr, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("empty expression")
	}

	tokens, err := tokenize(text)
	if err != nil {
		return nil, err
	}

	p := &exprParser{tokens: tokens}
	node, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.pos != len(p.tokens) {
		return nil, fmt.Errorf("unexpected trailing input at %q", p.tokens[p.pos].text)
	}

	return &Expr{text: text, node: node}, nil
}

// Eval evaluates the expression against one row. Comparisons involving a
// null value are false, mirroring SQL three-valued logic collapsed to
// boolean. Referencing a column the lookup does not know is an error.
func (e *Expr) Eval(lookup ValueLookup) (bool, error) {
	return e.node.eval(lookup)
}

func (e *Expr) String() string { return e.text }

type exprNode interface {
	eval(lookup ValueLookup) (bool, error)
}

type binaryNode struct {
	or    bool
	left  exprNode
	right exprNode
}

func (n *binaryNode) eval(lookup ValueLookup) (bool, error) {
	left, err := n.left.eval(lookup)
	if err != nil {
		return false, err
	}
	right, err := n.right.eval(lookup)
	if err != nil {
		return false, err
	}
	if n.or {
		return left || right, nil
	}
	return left && right, nil
}

type notNode struct {
	inner exprNode
}

func (n *notNode) eval(lookup ValueLookup) (bool, error) {
	inner, err := n.inner.eval(lookup)
	if err != nil {
		return false, err
	}
	return !inner, nil
}

type nullTestNode struct {
	column  string
	notNull bool
}

func (n *nullTestNode) eval(lookup ValueLookup) (bool, error) {
	v, ok := lookup(n.column)
	if !ok {
		return false, fmt.Errorf("unknown column %q", n.column)
	}
	if n.notNull {
		return v != nil, nil
	}
	return v == nil, nil
}

type compareNode struct {
	column  string
	op      string
	literal any
}

func (n *compareNode) eval(lookup ValueLookup) (bool, error) {
	v, ok := lookup(n.column)
	if !ok {
		return false, fmt.Errorf("unknown column %q", n.column)
	}
	if v == nil || n.literal == nil {
		return false, nil
	}
	return compareValues(v, n.literal, n.op)
}

func compareValues(a, b any, op string) (bool, error) {
	if af, aok := toFloat(a); aok {
		if bf, bok := toFloat(b); bok {
			return applyOrder(floatCmp(af, bf), op)
		}
	}
	return applyOrder(strings.Compare(stringValue(a), stringValue(b)), op)
}

func floatCmp(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func applyOrder(cmp int, op string) (bool, error) {
	switch op {
	case "=", "==":
		return cmp == 0, nil
	case "!=", "<>":
		return cmp != 0, nil
	case "<":
		return cmp < 0, nil
	case "<=":
		return cmp <= 0, nil
	case ">":
		return cmp > 0, nil
	case ">=":
		return cmp >= 0, nil
	default:
		return false, fmt.Errorf("unsupported operator %q", op)
	}
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case int:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case uint64:
		return float64(t), true
	case float32:
		return float64(t), true
	case float64:
		return t, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func stringValue(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// tokenizing

type tokenKind int

const (
	tokIdent tokenKind = iota
	tokNumber
	tokString
	tokOp
	tokLParen
	tokRParen
)

type token struct {
	kind tokenKind
	text string
}

var tokenRegex = regexp.MustCompile(
	`^\s*(?:(<=|>=|!=|<>|==|=|<|>)|(\()|(\))|('(?:[^']*)'|"(?:[^"]*)")|(-?\d+(?:\.\d+)?)|([A-Za-z_][A-Za-z0-9_.]*))`)

func tokenize(text string) ([]token, error) {
	var tokens []token
	rest := text
	for strings.TrimSpace(rest) != "" {
		m := tokenRegex.FindStringSubmatch(rest)
		if m == nil {
			return nil, fmt.Errorf("invalid expression near %q", strings.TrimSpace(rest))
		}
		switch {
		case m[1] != "":
			tokens = append(tokens, token{tokOp, m[1]})
		case m[2] != "":
			tokens = append(tokens, token{tokLParen, "("})
		case m[3] != "":
			tokens = append(tokens, token{tokRParen, ")"})
		case m[4] != "":
			tokens = append(tokens, token{tokString, m[4][1 : len(m[4])-1]})
		case m[5] != "":
			tokens = append(tokens, token{tokNumber, m[5]})
		default:
			tokens = append(tokens, token{tokIdent, m[6]})
		}
		rest = rest[len(m[0]):]
	}
	return tokens, nil
}

type exprParser struct {
	tokens []token
	pos    int
}

func (p *exprParser) peekKeyword(word string) bool {
	if p.pos >= len(p.tokens) {
		return false
	}
	t := p.tokens[p.pos]
	return t.kind == tokIdent && strings.EqualFold(t.text, word)
}

func (p *exprParser) next() (token, error) {
	if p.pos >= len(p.tokens) {
		return token{}, fmt.Errorf("unexpected end of expression")
	}
	t := p.tokens[p.pos]
	p.pos++
	return t, nil
}

func (p *exprParser) parseOr() (exprNode, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.peekKeyword("or") {
		p.pos++
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{or: true, left: left, right: right}
	}
	return left, nil
}

func (p *exprParser) parseAnd() (exprNode, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.peekKeyword("and") {
		p.pos++
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{left: left, right: right}
	}
	return left, nil
}

func (p *exprParser) parseUnary() (exprNode, error) {
	if p.peekKeyword("not") {
		p.pos++
		inner, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &notNode{inner: inner}, nil
	}
	return p.parsePrimary()
}

func (p *exprParser) parsePrimary() (exprNode, error) {
	t, err := p.next()
	if err != nil {
		return nil, err
	}

	if t.kind == tokLParen {
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		closing, err := p.next()
		if err != nil {
			return nil, err
		}
		if closing.kind != tokRParen {
			return nil, fmt.Errorf("expected closing parenthesis, got %q", closing.text)
		}
		return inner, nil
	}

	if t.kind != tokIdent {
		return nil, fmt.Errorf("expected column name, got %q", t.text)
	}
	column := t.text

	if p.peekKeyword("is") {
		p.pos++
		notNull := false
		if p.peekKeyword("not") {
			p.pos++
			notNull = true
		}
		if !p.peekKeyword("null") {
			return nil, fmt.Errorf("expected null after %q is", column)
		}
		p.pos++
		return &nullTestNode{column: column, notNull: notNull}, nil
	}

	op, err := p.next()
	if err != nil {
		return nil, err
	}
	if op.kind != tokOp {
		return nil, fmt.Errorf("expected comparison operator after %q, got %q", column, op.text)
	}

	lit, err := p.next()
	if err != nil {
		return nil, err
	}
	literal, err := literalValue(lit)
	if err != nil {
		return nil, err
	}

	return &compareNode{column: column, op: op.text, literal: literal}, nil
}

func literalValue(t token) (any, error) {
	switch t.kind {
	case tokString:
		return t.text, nil
	case tokNumber:
		if strings.Contains(t.text, ".") {
			f, err := strconv.ParseFloat(t.text, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid number %q", t.text)
			}
			return f, nil
		}
		n, err := strconv.ParseInt(t.text, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", t.text)
		}
		return n, nil
	case tokIdent:
		switch strings.ToLower(t.text) {
		case "true":
			return true, nil
		case "false":
			return false, nil
		case "null":
			return nil, nil
		}
		// bare word compared as a string
		return t.text, nil
	default:
		return nil, fmt.Errorf("expected literal, got %q", t.text)
	}
}
