// Copyright 2024 The aqlair authors
// Licensed under Apache 2.0, see LICENCE file for details.

package aql

import (
	"reflect"
	"strconv"
	"sync"
)

// Expr is a node of the query tree. Expressions are walked depth first,
// left to right, to produce the leaf terms the assembler renders.
type Expr interface {
	walk(visit func(leaf))
}

// leaf is a node that renders a term of the query text. The index passed
// to term and bind is assigned by the assembler: it is the position of
// the first equal node within the per-type dedup registry.
type leaf interface {
	Expr
	term(index int) string
	bind(index int) map[string]any
	equal(other leaf) bool
}

// asExpr wraps anything that is not already an expression into a Value.
func asExpr(v any) Expr {
	if e, ok := v.(Expr); ok {
		return e
	}
	return NewValue(v)
}

func asExprs(vs []any) []Expr {
	exprs := make([]Expr, 0, len(vs))
	for _, v := range vs {
		exprs = append(exprs, asExpr(v))
	}
	return exprs
}

// Term is a literal fragment of query text. It contributes no bind
// parameters.
type Term struct {
	text string
}

func NewTerm(text string) *Term {
	return &Term{text: text}
}

// Keyword is a reserved word of the query language. It renders exactly
// like a Term.
func Keyword(text string) *Term {
	return NewTerm(text)
}

func (t *Term) walk(visit func(leaf)) { visit(t) }

func (t *Term) term(int) string { return t.text }

func (t *Term) bind(int) map[string]any { return nil }

func (t *Term) equal(other leaf) bool {
	o, ok := other.(*Term)
	return ok && o.text == t.text
}

// Separator terms shared by the composite nodes. Separators carry their
// own spacing: assembled terms are concatenated without a global joiner.
var (
	termSpace = NewTerm(" ")
	termComma = NewTerm(", ")
	termAnd   = NewTerm(" AND ")
	termOr    = NewTerm(" OR ")
)

// Value wraps a literal. It always renders as a bind parameter and
// contributes the wrapped literal to the bind variable map.
type Value struct {
	value any
}

func NewValue(value any) *Value {
	return &Value{value: value}
}

func (v *Value) walk(visit func(leaf)) { visit(v) }

func (v *Value) term(index int) string {
	return "@value_" + strconv.Itoa(index)
}

func (v *Value) bind(index int) map[string]any {
	return map[string]any{"value_" + strconv.Itoa(index): v.value}
}

func (v *Value) equal(other leaf) bool {
	o, ok := other.(*Value)
	return ok && reflect.DeepEqual(o.value, v.value)
}

// Collection references a collection by name. It renders with the
// double-@ prefix that marks a collection bind parameter, and binds the
// collection name under the single-@ key the server expects.
type Collection struct {
	name string
}

func NewCollection(name string) *Collection {
	return &Collection{name: name}
}

// Name returns the referenced collection name.
func (c *Collection) Name() string { return c.name }

func (c *Collection) walk(visit func(leaf)) { visit(c) }

func (c *Collection) term(index int) string {
	return "@@c_" + strconv.Itoa(index)
}

func (c *Collection) bind(index int) map[string]any {
	return map[string]any{"@c_" + strconv.Itoa(index): c.name}
}

func (c *Collection) equal(other leaf) bool {
	o, ok := other.(*Collection)
	return ok && o.name == c.name
}

// Alias names a query variable. Field derives a nested field path from
// it; field paths render with backtick-quoted segments.
type Alias struct {
	name   string
	parent *Alias

	mu     sync.Mutex
	fields map[string]*Alias
}

func NewAlias(name string) *Alias {
	return &Alias{name: name}
}

// Field returns the field path node for the named attribute. The node is
// memoized: repeated calls with the same name return the identical node.
func (a *Alias) Field(name string) *Alias {
	a.mu.Lock()
	defer a.mu.Unlock()
	if f, ok := a.fields[name]; ok {
		return f
	}
	if a.fields == nil {
		a.fields = make(map[string]*Alias)
	}
	f := &Alias{name: name, parent: a}
	a.fields[name] = f
	return f
}

func (a *Alias) walk(visit func(leaf)) { visit(a) }

func (a *Alias) term(index int) string {
	if a.parent == nil {
		return a.name
	}
	return a.parent.term(index) + ".`" + a.name + "`"
}

func (a *Alias) bind(int) map[string]any { return nil }

func (a *Alias) equal(other leaf) bool { return other == leaf(a) }

// Comparison builders. The operand is wrapped into a Value unless it is
// already an expression.

// Eq builds `a == v`.
func (a *Alias) Eq(v any) *Operator { return NewOperator(a, v, "==") }

// Ne builds `a != v`.
func (a *Alias) Ne(v any) *Operator { return NewOperator(a, v, "!=") }

// Lt builds `a < v`.
func (a *Alias) Lt(v any) *Operator { return NewOperator(a, v, "<") }

// Le builds `a <= v`.
func (a *Alias) Le(v any) *Operator { return NewOperator(a, v, "<=") }

// Gt builds `a > v`.
func (a *Alias) Gt(v any) *Operator { return NewOperator(a, v, ">") }

// Ge builds `a >= v`.
func (a *Alias) Ge(v any) *Operator { return NewOperator(a, v, ">=") }

// In builds `a IN v`.
func (a *Alias) In(v any) *Operator { return NewOperator(a, v, "IN") }

// NotIn builds `a NOT IN v`.
func (a *Alias) NotIn(v any) *Operator { return NewOperator(a, v, "NOT IN") }
