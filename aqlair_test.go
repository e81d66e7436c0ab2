// Copyright 2024 The aqlair authors
// Licensed under Apache 2.0, see LICENCE file for details.

package aqlair_test

import (
	"context"
	"net/url"

	. "gopkg.in/check.v1"

	"github.com/aqlair/aqlair"
	"github.com/aqlair/aqlair/aql"
)

type DBSuite struct{}

var _ = Suite(&DBSuite{})

func (s *DBSuite) TestQueryFor(c *C) {
	db := aqlair.NewDB(&stubConn{}, newTestRegistry(c))

	q, alias, err := db.QueryFor(&User{})
	c.Assert(err, IsNil)
	c.Check(alias, NotNil)

	text, bind, err := q.Assemble()
	c.Assert(err, IsNil)
	c.Check(text, Equals, "FOR User IN @@c_0 RETURN User")
	c.Check(bind, DeepEquals, map[string]any{"@c_0": "User"})
}

func (s *DBSuite) TestQueryForFilter(c *C) {
	db := aqlair.NewDB(&stubConn{}, newTestRegistry(c))

	q, user, err := db.QueryFor(&User{})
	c.Assert(err, IsNil)
	q.Filter(user.Field("name").Eq("fred"))

	text, bind, err := q.Assemble()
	c.Assert(err, IsNil)
	c.Check(text, Equals, "FOR User IN @@c_0 FILTER User.`name` == @value_0 RETURN User")
	c.Check(bind, DeepEquals, map[string]any{"@c_0": "User", "value_0": "fred"})
}

func (s *DBSuite) TestQueryForUnregistered(c *C) {
	type Stranger struct {
		aqlair.Document
	}
	db := aqlair.NewDB(&stubConn{}, newTestRegistry(c))

	_, _, err := db.QueryFor(&Stranger{})
	c.Check(err, ErrorMatches, "entity type aqlair_test.Stranger is not registered")
}

func (s *DBSuite) TestFind(c *C) {
	conn := &stubConn{queue: []any{
		map[string]any{
			"result":  []any{map[string]any{"_id": "User/1", "name": "fred"}},
			"hasMore": false,
		},
	}}
	db := aqlair.NewDB(conn, newTestRegistry(c))

	cursor, err := db.Find(&User{}, map[string]any{"name": "fred", "age": 30}, nil)
	c.Assert(err, IsNil)
	entities, err := cursor.Documents(context.Background())
	c.Assert(err, IsNil)
	c.Assert(entities, HasLen, 1)
	c.Check(entities[0].(*User).ID(), Equals, "User/1")

	c.Assert(conn.calls, HasLen, 1)
	c.Check(conn.calls[0].body, DeepEquals, map[string]any{
		"query":    "FOR obj IN @@c_0 FILTER obj.`age` == @value_0 AND obj.`name` == @value_1 RETURN obj",
		"bindVars": map[string]any{"@c_0": "User", "value_0": 30, "value_1": "fred"},
	})
}

func (s *DBSuite) TestValidate(c *C) {
	conn := &stubConn{}
	db := aqlair.NewDB(conn, newTestRegistry(c))

	q, _, err := db.QueryFor(&User{})
	c.Assert(err, IsNil)
	c.Assert(db.Validate(context.Background(), q), IsNil)

	c.Assert(conn.calls, HasLen, 1)
	c.Check(conn.calls[0].method, Equals, "POST")
	c.Check(conn.calls[0].path, DeepEquals, []string{"query"})
	c.Check(conn.calls[0].body, DeepEquals, map[string]any{
		"query": "FOR User IN @@c_0 RETURN User",
	})
}

func (s *DBSuite) TestValidateMissingAction(c *C) {
	conn := &stubConn{}
	db := aqlair.NewDB(conn, newTestRegistry(c))

	q := aql.NewQuery(aql.NewAlias("foo"), aql.NewCollection("bar"))
	err := db.Validate(context.Background(), q)
	c.Check(err, Equals, aql.ErrMissingAction)
	c.Check(conn.calls, HasLen, 0)
}

func (s *DBSuite) TestLoadDocument(c *C) {
	conn := &stubConn{queue: []any{
		map[string]any{"_id": "User/42", "_key": "42", "name": "fred"},
	}}
	db := aqlair.NewDB(conn, newTestRegistry(c))

	ent, err := db.Load(context.Background(), "User/42")
	c.Assert(err, IsNil)

	user, ok := ent.(*User)
	c.Assert(ok, Equals, true)
	c.Check(user.ID(), Equals, "User/42")

	c.Assert(conn.calls, HasLen, 1)
	c.Check(conn.calls[0].method, Equals, "GET")
	c.Check(conn.calls[0].path, DeepEquals, []string{"document", "User/42"})
}

func (s *DBSuite) TestLoadEdge(c *C) {
	conn := &stubConn{queue: []any{
		map[string]any{"_id": "likes/7", "_from": "User/1", "_to": "User/2"},
		map[string]any{"_id": "User/1", "name": "fred"},
		map[string]any{"_id": "User/2", "name": "barney"},
	}}
	db := aqlair.NewDB(conn, newTestRegistry(c))

	ent, err := db.Load(context.Background(), "likes/7")
	c.Assert(err, IsNil)

	likes, ok := ent.(*Likes)
	c.Assert(ok, Equals, true)
	c.Check(likes.ID(), Equals, "likes/7")
	c.Assert(likes.FromDocument(), NotNil)
	c.Check(likes.FromDocument().(*User).ID(), Equals, "User/1")
	c.Assert(likes.ToDocument(), NotNil)
	c.Check(likes.ToDocument().(*User).ID(), Equals, "User/2")

	c.Assert(conn.calls, HasLen, 3)
	c.Check(conn.calls[0].path, DeepEquals, []string{"edge", "likes/7"})
	c.Check(conn.calls[1].path, DeepEquals, []string{"document", "User/1"})
	c.Check(conn.calls[2].path, DeepEquals, []string{"document", "User/2"})
}

func (s *DBSuite) TestLoadFailsBeforeTransport(c *C) {
	conn := &stubConn{}
	db := aqlair.NewDB(conn, newTestRegistry(c))

	tests := []struct {
		id  string
		err string
	}{
		{"User42", `cannot resolve document type for "User42": malformed document handle`},
		{"/42", `cannot resolve document type for "/42": malformed document handle`},
		{"Unknown/1", `cannot resolve document type for "Unknown/1": collection "Unknown" is not registered`},
	}
	for _, t := range tests {
		_, err := db.Load(context.Background(), t.id)
		c.Check(err, ErrorMatches, t.err)
	}
	c.Check(conn.calls, HasLen, 0)
}

func (s *DBSuite) TestSaveCreate(c *C) {
	conn := &stubConn{queue: []any{
		map[string]any{"_id": "User/42", "_key": "42", "_rev": "r1"},
	}}
	db := aqlair.NewDB(conn, newTestRegistry(c))

	user := &User{}
	user.Set("name", "fred")
	c.Assert(db.Save(context.Background(), user), IsNil)

	c.Check(user.ID(), Equals, "User/42")
	c.Check(user.Key(), Equals, "42")
	c.Check(user.Rev(), Equals, "r1")

	c.Assert(conn.calls, HasLen, 1)
	c.Check(conn.calls[0].method, Equals, "POST")
	c.Check(conn.calls[0].path, DeepEquals, []string{"document"})
	c.Check(conn.calls[0].params, DeepEquals, url.Values{"collection": []string{"User"}})
	c.Check(conn.calls[0].body, DeepEquals, map[string]any{"name": "fred"})
}

func (s *DBSuite) TestSaveReplace(c *C) {
	conn := &stubConn{queue: []any{
		map[string]any{"_id": "User/42", "_key": "42", "_rev": "r2"},
	}}
	db := aqlair.NewDB(conn, newTestRegistry(c))

	user := &User{}
	user.Update(map[string]any{"_id": "User/42", "_key": "42", "_rev": "r1", "name": "fred"})
	c.Assert(db.Save(context.Background(), user), IsNil)

	c.Check(user.Rev(), Equals, "r2")

	c.Assert(conn.calls, HasLen, 1)
	c.Check(conn.calls[0].method, Equals, "PUT")
	c.Check(conn.calls[0].path, DeepEquals, []string{"document", "User/42"})
	c.Check(conn.calls[0].params, IsNil)
}

func (s *DBSuite) TestSaveEdge(c *C) {
	conn := &stubConn{queue: []any{
		map[string]any{"_id": "likes/7", "_key": "7", "_rev": "r1"},
	}}
	db := aqlair.NewDB(conn, newTestRegistry(c))

	likes := &Likes{}
	c.Assert(likes.SetFrom("User/1"), IsNil)
	c.Assert(likes.SetTo("User/2"), IsNil)
	c.Assert(db.Save(context.Background(), likes), IsNil)

	c.Check(likes.ID(), Equals, "likes/7")

	c.Assert(conn.calls, HasLen, 1)
	c.Check(conn.calls[0].method, Equals, "POST")
	c.Check(conn.calls[0].path, DeepEquals, []string{"edge"})
	c.Check(conn.calls[0].params, DeepEquals, url.Values{
		"collection": []string{"likes"},
		"from":       []string{"User/1"},
		"to":         []string{"User/2"},
	})
}

func (s *DBSuite) TestSaveEdgeWithoutEndpoints(c *C) {
	conn := &stubConn{}
	db := aqlair.NewDB(conn, newTestRegistry(c))

	likes := &Likes{}
	err := db.Save(context.Background(), likes)
	c.Check(err, ErrorMatches, `cannot create edge in "likes": _from and _to must both be set`)

	c.Assert(likes.SetFrom("User/1"), IsNil)
	err = db.Save(context.Background(), likes)
	c.Check(err, ErrorMatches, `cannot create edge in "likes": _from and _to must both be set`)

	c.Check(conn.calls, HasLen, 0)
}

func (s *DBSuite) TestSaveUnregistered(c *C) {
	type Stranger struct {
		aqlair.Document
	}
	conn := &stubConn{}
	db := aqlair.NewDB(conn, newTestRegistry(c))

	err := db.Save(context.Background(), &Stranger{})
	c.Check(err, ErrorMatches, "entity type aqlair_test.Stranger is not registered")
	c.Check(conn.calls, HasLen, 0)
}

// renamedUser exercises the FieldMarshaler hook.
type renamedUser struct {
	aqlair.Document
}

func (u *renamedUser) MarshalFields() (map[string]any, error) {
	fields := u.Fields()
	fields["kind"] = "user"
	return fields, nil
}

func (s *DBSuite) TestSaveUsesFieldMarshaler(c *C) {
	conn := &stubConn{queue: []any{
		map[string]any{"_id": "User/42"},
	}}
	registry := aqlair.NewRegistry()
	c.Assert(registry.Register(&renamedUser{}, aqlair.WithCollection("User")), IsNil)
	db := aqlair.NewDB(conn, registry)

	user := &renamedUser{}
	user.Set("name", "fred")
	c.Assert(db.Save(context.Background(), user), IsNil)

	c.Assert(conn.calls, HasLen, 1)
	c.Check(conn.calls[0].body, DeepEquals, map[string]any{
		"name": "fred",
		"kind": "user",
	})
}

func (s *DBSuite) TestDelete(c *C) {
	conn := &stubConn{}
	db := aqlair.NewDB(conn, newTestRegistry(c))

	user := &User{}
	user.Set("_id", "User/42")
	c.Assert(db.Delete(context.Background(), user), IsNil)

	c.Assert(conn.calls, HasLen, 1)
	c.Check(conn.calls[0].method, Equals, "DELETE")
	c.Check(conn.calls[0].path, DeepEquals, []string{"document", "User/42"})
}

func (s *DBSuite) TestDeleteEdge(c *C) {
	conn := &stubConn{}
	db := aqlair.NewDB(conn, newTestRegistry(c))

	likes := &Likes{}
	likes.Set("_id", "likes/7")
	c.Assert(db.Delete(context.Background(), likes), IsNil)

	c.Assert(conn.calls, HasLen, 1)
	c.Check(conn.calls[0].path, DeepEquals, []string{"edge", "likes/7"})
}

func (s *DBSuite) TestDeleteUnsaved(c *C) {
	conn := &stubConn{}
	db := aqlair.NewDB(conn, newTestRegistry(c))

	err := db.Delete(context.Background(), &User{})
	c.Check(err, ErrorMatches, "cannot delete document without _id")
	c.Check(conn.calls, HasLen, 0)
}
