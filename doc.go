// Copyright 2024 The aqlair authors
// Licensed under Apache 2.0, see LICENCE file for details.

/*
Package aqlair is a client toolkit for a document/graph database spoken
to over an HTTP+JSON API.

It has three parts. The aql subpackage assembles parameterized query
strings from composable expressions. The entity registry maps
collection names to Go types and reconstructs typed documents and edges
from raw records. The cursor paginates query results lazily through the
server's batch protocol.

A program registers its entity types once, at startup:

	type User struct {
		aqlair.Document
	}

	type Likes struct {
		aqlair.Edge
	}

	registry := aqlair.NewRegistry()
	registry.MustRegister(&User{})
	registry.MustRegister(&Likes{}, aqlair.WithCollection("likes"))

and then works through a DB bound to a transport:

	db := aqlair.NewDB(aqlair.NewClient("http://localhost:8529"), registry)

	q, user, _ := db.QueryFor(&User{})
	q.Filter(user.Field("name").Eq("fred"))
	cursor, _ := db.Query(q, nil)
	it := cursor.Iter(ctx)
	for it.Next() {
		ent, _ := it.Document() // *User
		...
	}
	err := it.Close()

Loading a record by handle dispatches on the collection part of its
`_id`, so db.Load(ctx, "User/42") returns a *User. Edges loaded this
way also carry both endpoint documents. Queries never embed literals in
the query text: every value travels as a bind parameter.
*/
package aqlair
