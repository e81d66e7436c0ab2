// Copyright 2024 The aqlair authors
// Licensed under Apache 2.0, see LICENCE file for details.

package aql

import (
	"errors"
)

// ErrMissingAction is returned when a query is assembled without an
// action clause.
var ErrMissingAction = errors.New("cannot assemble query without an action clause")

// Action is the mandatory final clause of a query: RETURN, INSERT,
// UPDATE, REPLACE or REMOVE.
type Action interface {
	Expr
	action()
}

// Return renders `RETURN <expr>`.
type Return struct {
	expr Expr
}

func NewReturn(expr any) *Return {
	return &Return{expr: asExpr(expr)}
}

func (r *Return) action() {}

func (r *Return) walk(visit func(leaf)) {
	visit(kwReturn)
	r.expr.walk(visit)
}

// Insert renders `INSERT <expr> INTO <collection>`.
type Insert struct {
	expr       Expr
	collection Expr
}

func NewInsert(expr any, collection *Collection) *Insert {
	return &Insert{expr: asExpr(expr), collection: collection}
}

func (i *Insert) action() {}

func (i *Insert) walk(visit func(leaf)) {
	visit(kwInsert)
	i.expr.walk(visit)
	visit(kwInto)
	i.collection.walk(visit)
}

// Update renders `UPDATE <target> WITH <with> IN <collection>`. A nil
// with expression renders `UPDATE <target> IN <collection>`.
type Update struct {
	target     Expr
	with       Expr
	collection Expr
}

func NewUpdate(target, with any, collection *Collection) *Update {
	u := &Update{target: asExpr(target), collection: collection}
	if with != nil {
		u.with = asExpr(with)
	}
	return u
}

func (u *Update) action() {}

func (u *Update) walk(visit func(leaf)) {
	visit(kwUpdate)
	u.target.walk(visit)
	if u.with != nil {
		visit(kwWith)
		u.with.walk(visit)
	}
	visit(kwIn)
	u.collection.walk(visit)
}

// Replace renders `REPLACE <target> WITH <with> IN <collection>`.
type Replace struct {
	target     Expr
	with       Expr
	collection Expr
}

func NewReplace(target, with any, collection *Collection) *Replace {
	return &Replace{target: asExpr(target), with: asExpr(with), collection: collection}
}

func (r *Replace) action() {}

func (r *Replace) walk(visit func(leaf)) {
	visit(kwReplace)
	r.target.walk(visit)
	visit(kwWith)
	r.with.walk(visit)
	visit(kwIn)
	r.collection.walk(visit)
}

// Remove renders `REMOVE <expr> IN <collection>`.
type Remove struct {
	expr       Expr
	collection Expr
}

func NewRemove(expr any, collection *Collection) *Remove {
	return &Remove{expr: asExpr(expr), collection: collection}
}

func (r *Remove) action() {}

func (r *Remove) walk(visit func(leaf)) {
	visit(kwRemove)
	r.expr.walk(visit)
	visit(kwIn)
	r.collection.walk(visit)
}

// Query joins FOR, FILTER, SORT and LIMIT clauses with a mandatory
// action clause into a complete query. The fluent mutators return the
// same Query so clauses can be added incrementally.
type Query struct {
	fors   []*For
	filter *Filter
	sort   *Sort
	limit  *Limit
	act    Action
}

// NewQuery starts a query with a single `FOR <alias> IN <source>`
// clause. The action clause must be set before assembly.
func NewQuery(alias *Alias, source any) *Query {
	return &Query{fors: []*For{NewFor(alias, source)}}
}

// Filter adds conditions to the FILTER clause. Conditions accumulate
// across calls and are joined with ` AND `.
func (q *Query) Filter(conds ...any) *Query {
	if q.filter == nil {
		q.filter = NewFilter(conds...)
	} else {
		q.filter.add(conds...)
	}
	return q
}

// Join adds a further `FOR <alias> IN <source>` clause.
func (q *Query) Join(alias *Alias, source any) *Query {
	q.fors = append(q.fors, NewFor(alias, source))
	return q
}

// Sort adds criteria to the SORT clause.
func (q *Query) Sort(criteria ...Expr) *Query {
	if q.sort == nil {
		q.sort = NewSort(criteria...)
	} else {
		q.sort.add(criteria...)
	}
	return q
}

// Limit sets a `LIMIT <count>` clause.
func (q *Query) Limit(count int) *Query {
	q.limit = NewLimit(count)
	return q
}

// LimitOffset sets a `LIMIT <offset>, <count>` clause.
func (q *Query) LimitOffset(offset, count int) *Query {
	q.limit = NewLimitOffset(offset, count)
	return q
}

// Action sets the query's action clause. Anything that is not already an
// Action is wrapped into a Return.
func (q *Query) Action(action any) *Query {
	if a, ok := action.(Action); ok {
		q.act = a
	} else {
		q.act = NewReturn(action)
	}
	return q
}

func (q *Query) walk(visit func(leaf)) {
	for i, f := range q.fors {
		if i > 0 {
			visit(termSpace)
		}
		f.walk(visit)
	}
	if q.filter != nil {
		visit(termSpace)
		q.filter.walk(visit)
	}
	if q.sort != nil {
		visit(termSpace)
		q.sort.walk(visit)
	}
	if q.limit != nil {
		visit(termSpace)
		q.limit.walk(visit)
	}
	if q.act != nil {
		visit(termSpace)
		q.act.walk(visit)
	}
}

// Assemble renders the query text and collects the bind variables. It
// fails if no action clause has been set.
func (q *Query) Assemble() (string, map[string]any, error) {
	if q.act == nil {
		return "", nil, ErrMissingAction
	}
	text, bind := Assemble(q)
	return text, bind, nil
}
