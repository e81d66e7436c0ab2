// Copyright 2024 The aqlair authors
// Licensed under Apache 2.0, see LICENCE file for details.

package aqlair

import (
	"context"
	"fmt"
	"strings"

	"github.com/aqlair/aqlair/aql"
)

// Direction selects which edges a traversal follows relative to the
// start document.
type Direction string

const (
	DirectionAny      Direction = "any"
	DirectionInbound  Direction = "inbound"
	DirectionOutbound Direction = "outbound"
)

// ConnectionsQuery builds the query returning the documents connected
// to docID through the given edge collection: paths of exactly one edge
// hop whose source is the document, yielding each destination.
func ConnectionsQuery(alias *aql.Alias, docCollection, edgeCollection, docID string, dir Direction) *aql.Query {
	return aql.NewQuery(
		alias,
		aql.Paths(
			aql.NewCollection(docCollection),
			aql.NewCollection(edgeCollection),
			string(dir)),
	).
		Filter(alias.Field("source").Field("_id").Eq(docID)).
		Filter(aql.Length(alias.Field("edges")).Eq(1)).
		Action(alias.Field("destination"))
}

// Connections returns the documents connected to doc through the edge
// collection the sample type is registered under. A non-nil target
// sample narrows the results to destinations of that collection.
func (db *DB) Connections(ctx context.Context, edgeSample any, doc Entity, dir Direction, target any) ([]Entity, error) {
	et, err := db.registry.typeOf(edgeSample)
	if err != nil {
		return nil, err
	}
	if !et.edge {
		return nil, fmt.Errorf("cannot traverse %s: not an edge type", et.typ)
	}
	docID := doc.base().ID()
	if docID == "" {
		return nil, fmt.Errorf("cannot traverse from a document without _id")
	}
	docCollection, _, _ := strings.Cut(docID, "/")

	alias := aql.NewAlias("p")
	q := ConnectionsQuery(alias, docCollection, et.collection, docID, dir)
	if target != nil {
		targetCollection, err := db.registry.CollectionOf(target)
		if err != nil {
			return nil, err
		}
		q.Filter(aql.FindFirst(alias.Field("destination").Field("_id"), targetCollection))
	}

	cursor, err := db.Query(q, nil)
	if err != nil {
		return nil, err
	}
	return cursor.Documents(ctx)
}

// Inbounds returns the documents with an edge pointing at doc.
func (db *DB) Inbounds(ctx context.Context, edgeSample any, doc Entity, target any) ([]Entity, error) {
	return db.Connections(ctx, edgeSample, doc, DirectionInbound, target)
}

// Outbounds returns the documents doc points at.
func (db *DB) Outbounds(ctx context.Context, edgeSample any, doc Entity, target any) ([]Entity, error) {
	return db.Connections(ctx, edgeSample, doc, DirectionOutbound, target)
}
