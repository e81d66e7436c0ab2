// Copyright 2024 The aqlair authors
// Licensed under Apache 2.0, see LICENCE file for details.

package aql

// Function renders `NAME(arg, arg, ...)`. Arguments that are not already
// expressions are wrapped into Values.
type Function struct {
	name string
	args List
}

func NewFunction(name string, args ...any) *Function {
	return &Function{name: name, args: *NewList(args...)}
}

// Name returns the function identifier.
func (f *Function) Name() string { return f.name }

func (f *Function) walk(visit func(leaf)) {
	visit(NewTerm(f.name + "("))
	f.args.walk(visit)
	visit(NewTerm(")"))
}

// Eq builds `F(...) == v`.
func (f *Function) Eq(v any) *Operator { return NewOperator(f, v, "==") }

// Ne builds `F(...) != v`.
func (f *Function) Ne(v any) *Operator { return NewOperator(f, v, "!=") }

// Helpers for the query language's built-in functions. Only the ones
// with a use in this toolkit or its callers are named; NewFunction
// covers the rest.

// Type checks and conversions.
func ToBool(args ...any) *Function   { return NewFunction("TO_BOOL", args...) }
func ToNumber(args ...any) *Function { return NewFunction("TO_NUMBER", args...) }
func ToString(args ...any) *Function { return NewFunction("TO_STRING", args...) }
func IsNull(args ...any) *Function   { return NewFunction("IS_NULL", args...) }
func IsDocument(args ...any) *Function {
	return NewFunction("IS_DOCUMENT", args...)
}

// Strings.
func Concat(args ...any) *Function    { return NewFunction("CONCAT", args...) }
func Lower(args ...any) *Function     { return NewFunction("LOWER", args...) }
func Upper(args ...any) *Function     { return NewFunction("UPPER", args...) }
func Contains(args ...any) *Function  { return NewFunction("CONTAINS", args...) }
func Like(args ...any) *Function      { return NewFunction("LIKE", args...) }
func FindFirst(args ...any) *Function { return NewFunction("FIND_FIRST", args...) }

// Arrays and aggregates.
func Length(args ...any) *Function  { return NewFunction("LENGTH", args...) }
func First(args ...any) *Function   { return NewFunction("FIRST", args...) }
func Last(args ...any) *Function    { return NewFunction("LAST", args...) }
func Unique(args ...any) *Function  { return NewFunction("UNIQUE", args...) }
func Union(args ...any) *Function   { return NewFunction("UNION", args...) }
func Min(args ...any) *Function     { return NewFunction("MIN", args...) }
func Max(args ...any) *Function     { return NewFunction("MAX", args...) }
func Sum(args ...any) *Function     { return NewFunction("SUM", args...) }
func Average(args ...any) *Function { return NewFunction("AVERAGE", args...) }

// Documents.
func Matches(args ...any) *Function { return NewFunction("MATCHES", args...) }
func Merge(args ...any) *Function   { return NewFunction("MERGE", args...) }
func Has(args ...any) *Function     { return NewFunction("HAS", args...) }
func ParseIdentifier(args ...any) *Function {
	return NewFunction("PARSE_IDENTIFIER", args...)
}
func DocumentFn(args ...any) *Function { return NewFunction("DOCUMENT", args...) }

// Graphs.
func Paths(args ...any) *Function     { return NewFunction("PATHS", args...) }
func Edges(args ...any) *Function     { return NewFunction("EDGES", args...) }
func Neighbors(args ...any) *Function { return NewFunction("NEIGHBORS", args...) }
func ShortestPath(args ...any) *Function {
	return NewFunction("SHORTEST_PATH", args...)
}
func Traversal(args ...any) *Function { return NewFunction("TRAVERSAL", args...) }

// Fulltext and geo.
func Fulltext(args ...any) *Function { return NewFunction("FULLTEXT", args...) }
func Near(args ...any) *Function     { return NewFunction("NEAR", args...) }
func Within(args ...any) *Function   { return NewFunction("WITHIN", args...) }
