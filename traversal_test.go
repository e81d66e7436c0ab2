// Copyright 2024 The aqlair authors
// Licensed under Apache 2.0, see LICENCE file for details.

package aqlair_test

import (
	"context"

	. "gopkg.in/check.v1"

	"github.com/aqlair/aqlair"
	"github.com/aqlair/aqlair/aql"
)

type TraversalSuite struct{}

var _ = Suite(&TraversalSuite{})

func (s *TraversalSuite) TestConnectionsQuery(c *C) {
	p := aql.NewAlias("p")
	q := aqlair.ConnectionsQuery(p, "User", "likes", "User/1", aqlair.DirectionAny)

	text, bind, err := q.Assemble()
	c.Assert(err, IsNil)
	c.Check(text, Equals,
		"FOR p IN PATHS(@@c_0, @@c_1, @value_0)"+
			" FILTER p.`source`.`_id` == @value_1 AND LENGTH(p.`edges`) == @value_2"+
			" RETURN p.`destination`")
	c.Check(bind, DeepEquals, map[string]any{
		"@c_0":    "User",
		"@c_1":    "likes",
		"value_0": "any",
		"value_1": "User/1",
		"value_2": 1,
	})
}

func (s *TraversalSuite) TestConnections(c *C) {
	conn := &stubConn{queue: []any{
		map[string]any{
			"result": []any{
				map[string]any{"_id": "User/2", "name": "barney"},
			},
			"hasMore": false,
		},
	}}
	db := aqlair.NewDB(conn, newTestRegistry(c))

	fred := &User{}
	fred.Set("_id", "User/1")
	connected, err := db.Connections(context.Background(), &Likes{}, fred, aqlair.DirectionOutbound, nil)
	c.Assert(err, IsNil)
	c.Assert(connected, HasLen, 1)
	c.Check(connected[0].(*User).ID(), Equals, "User/2")

	c.Assert(conn.calls, HasLen, 1)
	c.Check(conn.calls[0].method, Equals, "POST")
	c.Check(conn.calls[0].path, DeepEquals, []string{"cursor"})
	c.Check(conn.calls[0].body, DeepEquals, map[string]any{
		"query": "FOR p IN PATHS(@@c_0, @@c_1, @value_0)" +
			" FILTER p.`source`.`_id` == @value_1 AND LENGTH(p.`edges`) == @value_2" +
			" RETURN p.`destination`",
		"bindVars": map[string]any{
			"@c_0":    "User",
			"@c_1":    "likes",
			"value_0": "outbound",
			"value_1": "User/1",
			"value_2": 1,
		},
	})
}

func (s *TraversalSuite) TestConnectionsWithTarget(c *C) {
	conn := &stubConn{queue: []any{
		map[string]any{"result": []any{}, "hasMore": false},
	}}
	db := aqlair.NewDB(conn, newTestRegistry(c))

	fred := &User{}
	fred.Set("_id", "User/1")
	connected, err := db.Connections(context.Background(), &Likes{}, fred, aqlair.DirectionInbound, &User{})
	c.Assert(err, IsNil)
	c.Check(connected, HasLen, 0)

	c.Assert(conn.calls, HasLen, 1)
	c.Check(conn.calls[0].body, DeepEquals, map[string]any{
		"query": "FOR p IN PATHS(@@c_0, @@c_1, @value_0)" +
			" FILTER p.`source`.`_id` == @value_1 AND LENGTH(p.`edges`) == @value_2" +
			" AND FIND_FIRST(p.`destination`.`_id`, @value_3)" +
			" RETURN p.`destination`",
		"bindVars": map[string]any{
			"@c_0":    "User",
			"@c_1":    "likes",
			"value_0": "inbound",
			"value_1": "User/1",
			"value_2": 1,
			"value_3": "User",
		},
	})
}

func (s *TraversalSuite) TestConnectionsRejectsNonEdge(c *C) {
	conn := &stubConn{}
	db := aqlair.NewDB(conn, newTestRegistry(c))

	fred := &User{}
	fred.Set("_id", "User/1")
	_, err := db.Connections(context.Background(), &User{}, fred, aqlair.DirectionAny, nil)
	c.Check(err, ErrorMatches, "cannot traverse aqlair_test.User: not an edge type")
	c.Check(conn.calls, HasLen, 0)
}

func (s *TraversalSuite) TestConnectionsRejectsUnsavedDocument(c *C) {
	conn := &stubConn{}
	db := aqlair.NewDB(conn, newTestRegistry(c))

	_, err := db.Connections(context.Background(), &Likes{}, &User{}, aqlair.DirectionAny, nil)
	c.Check(err, ErrorMatches, "cannot traverse from a document without _id")
	c.Check(conn.calls, HasLen, 0)
}

func (s *TraversalSuite) TestInboundsAndOutbounds(c *C) {
	empty := map[string]any{"result": []any{}, "hasMore": false}
	conn := &stubConn{queue: []any{empty, empty}}
	db := aqlair.NewDB(conn, newTestRegistry(c))

	fred := &User{}
	fred.Set("_id", "User/1")

	_, err := db.Inbounds(context.Background(), &Likes{}, fred, nil)
	c.Assert(err, IsNil)
	_, err = db.Outbounds(context.Background(), &Likes{}, fred, nil)
	c.Assert(err, IsNil)

	c.Assert(conn.calls, HasLen, 2)
	inBind := conn.calls[0].body.(map[string]any)["bindVars"].(map[string]any)
	outBind := conn.calls[1].body.(map[string]any)["bindVars"].(map[string]any)
	c.Check(inBind["value_0"], Equals, "inbound")
	c.Check(outBind["value_0"], Equals, "outbound")
}
