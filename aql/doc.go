// Copyright 2024 The aqlair authors
// Licensed under Apache 2.0, see LICENCE file for details.

/*
Package aql builds AQL query strings from composable expression nodes.

Queries are assembled from a tree of expressions rather than written by
hand. Literal values never end up in the query text: every Value node
renders as a bind parameter and contributes its literal to the bind
variable map, so the assembled query can be sent to the server together
with its parameters.

	foo := aql.NewAlias("foo")
	q := aql.NewQuery(foo, aql.NewCollection("bar")).
		Filter(foo.Field("name").Eq("fred")).
		Action(foo)
	text, bind, err := q.Assemble()
	// text: FOR foo IN @@c_0 FILTER foo.`name` == @value_0 RETURN foo
	// bind: map[@c_0:bar value_0:fred]

Equal values are deduplicated during assembly: using the same literal in
two places renders the same bind parameter twice and binds it once.
*/
package aql
