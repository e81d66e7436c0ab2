// Copyright 2024 The aqlair authors
// Licensed under Apache 2.0, see LICENCE file for details.

package aql

import (
	"strconv"
)

// Chain is an ordered sequence of sub-expressions with an optional
// separator interleaved between siblings. Nil sub-expressions are
// skipped.
type Chain struct {
	exprs []Expr
	sep   *Term
}

func NewChain(exprs ...Expr) *Chain {
	return &Chain{exprs: exprs}
}

func (c *Chain) walk(visit func(leaf)) {
	first := true
	for _, e := range c.exprs {
		if e == nil {
			continue
		}
		if !first && c.sep != nil {
			visit(c.sep)
		}
		first = false
		e.walk(visit)
	}
}

// List joins its sub-expressions with `, `. Non-expression items are
// wrapped into Values.
type List struct {
	Chain
}

func NewList(items ...any) *List {
	return &List{Chain{exprs: asExprs(items), sep: termComma}}
}

// And joins its sub-expressions with ` AND `.
type And struct {
	Chain
}

func NewAnd(conds ...any) *And {
	return &And{Chain{exprs: asExprs(conds), sep: termAnd}}
}

// Or joins its sub-expressions with ` OR `.
type Or struct {
	Chain
}

func NewOr(conds ...any) *Or {
	return &Or{Chain{exprs: asExprs(conds), sep: termOr}}
}

// Filter renders a FILTER clause with its conditions joined by ` AND `.
type Filter struct {
	And
}

func NewFilter(conds ...any) *Filter {
	return &Filter{*NewAnd(conds...)}
}

func (f *Filter) add(conds ...any) {
	f.exprs = append(f.exprs, asExprs(conds)...)
}

func (f *Filter) walk(visit func(leaf)) {
	visit(kwFilter)
	f.And.walk(visit)
}

// Sort renders a SORT clause with its criteria joined by `, `. Criteria
// sort ascending unless wrapped with Desc.
type Sort struct {
	Chain
}

func NewSort(criteria ...Expr) *Sort {
	return &Sort{Chain{exprs: criteria, sep: termComma}}
}

func (s *Sort) add(criteria ...Expr) {
	s.exprs = append(s.exprs, criteria...)
}

func (s *Sort) walk(visit func(leaf)) {
	visit(kwSort)
	s.Chain.walk(visit)
}

// Asc marks a sort criterion as explicitly ascending.
func Asc(e Expr) Expr {
	return NewChain(e, termAsc)
}

// Desc marks a sort criterion as descending.
func Desc(e Expr) Expr {
	return NewChain(e, termDesc)
}

// Limit renders either `LIMIT <count>` or `LIMIT <offset>, <count>`.
// The bounds are rendered inline, not bound.
type Limit struct {
	offset    int
	count     int
	hasOffset bool
}

func NewLimit(count int) *Limit {
	return &Limit{count: count}
}

func NewLimitOffset(offset, count int) *Limit {
	return &Limit{offset: offset, count: count, hasOffset: true}
}

func (l *Limit) walk(visit func(leaf)) { visit(l) }

func (l *Limit) term(int) string {
	if l.hasOffset {
		return "LIMIT " + strconv.Itoa(l.offset) + ", " + strconv.Itoa(l.count)
	}
	return "LIMIT " + strconv.Itoa(l.count)
}

func (l *Limit) bind(int) map[string]any { return nil }

func (l *Limit) equal(other leaf) bool {
	o, ok := other.(*Limit)
	return ok && *o == *l
}

// Operator renders `<left> <op> <right>`. Operands that are not already
// expressions are wrapped into Values.
type Operator struct {
	left  Expr
	right Expr
	op    *Term
}

func NewOperator(left, right any, op string) *Operator {
	return &Operator{
		left:  asExpr(left),
		right: asExpr(right),
		op:    NewTerm(" " + op + " "),
	}
}

func (o *Operator) walk(visit func(leaf)) {
	o.left.walk(visit)
	visit(o.op)
	o.right.walk(visit)
}

// Let renders `LET <alias> = <value>`.
type Let struct {
	alias *Alias
	value Expr
}

func NewLet(alias *Alias, value any) *Let {
	return &Let{alias: alias, value: asExpr(value)}
}

func (l *Let) walk(visit func(leaf)) {
	visit(kwLet)
	l.alias.walk(visit)
	visit(termAssign)
	l.value.walk(visit)
}

// For renders `FOR <alias> IN <source>`.
type For struct {
	alias  *Alias
	source Expr
}

func NewFor(alias *Alias, source any) *For {
	return &For{alias: alias, source: asExpr(source)}
}

func (f *For) walk(visit func(leaf)) {
	visit(kwFor)
	f.alias.walk(visit)
	visit(kwIn)
	f.source.walk(visit)
}

var (
	kwFor      = NewTerm("FOR ")
	kwIn       = NewTerm(" IN ")
	kwFilter   = NewTerm("FILTER ")
	kwSort     = NewTerm("SORT ")
	kwLet      = NewTerm("LET ")
	kwReturn   = NewTerm("RETURN ")
	kwInsert   = NewTerm("INSERT ")
	kwUpdate   = NewTerm("UPDATE ")
	kwReplace  = NewTerm("REPLACE ")
	kwRemove   = NewTerm("REMOVE ")
	kwInto     = NewTerm(" INTO ")
	kwWith     = NewTerm(" WITH ")
	termAsc    = NewTerm(" ASC")
	termDesc   = NewTerm(" DESC")
	termAssign = NewTerm(" = ")
)
