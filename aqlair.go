// Copyright 2024 The aqlair authors
// Licensed under Apache 2.0, see LICENCE file for details.

package aqlair

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/aqlair/aqlair/aql"
)

// DB ties a transport and an entity registry together into the
// document and query API.
type DB struct {
	conn     Connection
	registry *Registry
}

// NewDB builds a DB from a Connection and a populated Registry.
func NewDB(conn Connection, registry *Registry) *DB {
	return &DB{conn: conn, registry: registry}
}

// Registry returns the entity registry the DB resolves records with.
func (db *DB) Registry() *Registry { return db.registry }

// Cursor prepares a cursor over a raw query string and its bind
// variables. Nothing is executed until the cursor is iterated.
func (db *DB) Cursor(query string, bind map[string]any, opts *CursorOptions) *Cursor {
	if bind == nil {
		bind = map[string]any{}
	}
	c := &Cursor{conn: db.conn, registry: db.registry, query: query, bind: bind}
	if opts != nil {
		c.opts = *opts
	}
	return c
}

// Query assembles an aql query and prepares a cursor over it.
func (db *DB) Query(q *aql.Query, opts *CursorOptions) (*Cursor, error) {
	text, bind, err := q.Assemble()
	if err != nil {
		return nil, err
	}
	return db.Cursor(text, bind, opts), nil
}

// Validate asks the server to parse the assembled query without
// executing it.
func (db *DB) Validate(ctx context.Context, q *aql.Query) error {
	text, _, err := q.Assemble()
	if err != nil {
		return err
	}
	_, err = db.conn.Post(ctx, []string{"query"}, nil, map[string]any{"query": text})
	return err
}

// QueryFor returns the canonical query for a registered type, `FOR
// <collection> IN @@c RETURN <collection>`, along with its alias for
// further filtering.
func (db *DB) QueryFor(sample any) (*aql.Query, *aql.Alias, error) {
	collection, err := db.registry.CollectionOf(sample)
	if err != nil {
		return nil, nil, err
	}
	alias := aql.NewAlias(collection)
	q := aql.NewQuery(alias, aql.NewCollection(collection)).Action(alias)
	return q, alias, nil
}

// Find prepares a cursor over all records of a registered type whose
// fields equal the given conditions. Conditions are applied in lexical
// field order, so the assembled query is deterministic.
func (db *DB) Find(sample any, conditions map[string]any, opts *CursorOptions) (*Cursor, error) {
	collection, err := db.registry.CollectionOf(sample)
	if err != nil {
		return nil, err
	}
	alias := aql.NewAlias("obj")
	q := aql.NewQuery(alias, aql.NewCollection(collection)).Action(alias)

	fields := make([]string, 0, len(conditions))
	for field := range conditions {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	for _, field := range fields {
		q.Filter(alias.Field(field).Eq(conditions[field]))
	}
	return db.Query(q, opts)
}

// Load fetches the record with the given handle `<collection>/<key>`
// and resolves it into a typed entity. Loading an edge also loads both
// endpoint documents.
func (db *DB) Load(ctx context.Context, id string) (Entity, error) {
	collection, _, found := strings.Cut(id, "/")
	if !found || collection == "" {
		return nil, &ResolveError{ID: id, Reason: "malformed document handle"}
	}
	et, ok := db.registry.lookup(collection)
	if !ok {
		return nil, &ResolveError{ID: id, Reason: fmt.Sprintf("collection %q is not registered", collection)}
	}
	endpoint := "document"
	if et.edge {
		endpoint = "edge"
	}
	record, err := db.conn.Get(ctx, []string{endpoint, id}, nil)
	if err != nil {
		return nil, err
	}
	ent, err := db.registry.Resolve(record)
	if err != nil {
		return nil, err
	}
	if e, ok := ent.(edgeEntity); ok {
		if err := db.loadEndpoints(ctx, e.edge()); err != nil {
			return nil, err
		}
	}
	return ent, nil
}

func (db *DB) loadEndpoints(ctx context.Context, e *Edge) error {
	from, to := e.From(), e.To()
	if from == "" || to == "" {
		return fmt.Errorf("cannot load edge %s: missing _from or _to", e.ID())
	}
	fromDoc, err := db.Load(ctx, from)
	if err != nil {
		return err
	}
	toDoc, err := db.Load(ctx, to)
	if err != nil {
		return err
	}
	e.fromDoc, e.toDoc = fromDoc, toDoc
	return nil
}

// Save persists an entity: it creates the record when the entity has no
// _id yet, and replaces it otherwise. The server-assigned _id, _key and
// _rev are copied back onto the entity.
func (db *DB) Save(ctx context.Context, ent Entity) error {
	et, err := db.registry.typeOf(ent)
	if err != nil {
		return err
	}
	fields, err := marshalEntity(ent)
	if err != nil {
		return err
	}

	endpoint := "document"
	if et.edge {
		endpoint = "edge"
	}

	var resp map[string]any
	if id := ent.base().ID(); id != "" {
		resp, err = db.conn.Put(ctx, []string{endpoint, id}, nil, fields)
	} else {
		params := url.Values{}
		params.Set("collection", et.collection)
		if et.edge {
			from, _ := fields["_from"].(string)
			to, _ := fields["_to"].(string)
			if from == "" || to == "" {
				return fmt.Errorf("cannot create edge in %q: _from and _to must both be set", et.collection)
			}
			params.Set("from", from)
			params.Set("to", to)
		}
		resp, err = db.conn.Post(ctx, []string{endpoint}, params, fields)
	}
	if err != nil {
		return err
	}

	base := ent.base()
	for _, key := range []string{"_id", "_key", "_rev"} {
		if v, ok := resp[key]; ok {
			base.Set(key, v)
		}
	}
	return nil
}

// Delete removes a persisted entity by its handle.
func (db *DB) Delete(ctx context.Context, ent Entity) error {
	et, err := db.registry.typeOf(ent)
	if err != nil {
		return err
	}
	id := ent.base().ID()
	if id == "" {
		return fmt.Errorf("cannot delete document without _id")
	}
	endpoint := "document"
	if et.edge {
		endpoint = "edge"
	}
	_, err = db.conn.Delete(ctx, []string{endpoint, id}, nil)
	return err
}

func marshalEntity(ent Entity) (map[string]any, error) {
	if m, ok := ent.(FieldMarshaler); ok {
		return m.MarshalFields()
	}
	return ent.base().Fields(), nil
}
