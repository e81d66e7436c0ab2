// Copyright 2024 The aqlair authors
// Licensed under Apache 2.0, see LICENCE file for details.

package aqlair

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ErrNoDocument is returned by Cursor.First when the query matched
// nothing.
var ErrNoDocument = errors.New("no document found")

// CursorOptions tune the server-side cursor created for a query.
type CursorOptions struct {
	// Batch is the number of records per batch (server default if zero).
	Batch int
	// TTL is how long an idle server cursor survives between batch
	// fetches (server default if zero).
	TTL time.Duration
	// Count asks the server to report the total result count.
	Count bool
}

// Cursor executes a query and paginates its results. A Cursor holds no
// server state itself: every call to Iter creates a fresh server-side
// cursor, so iterating twice re-executes the query.
type Cursor struct {
	conn     Connection
	registry *Registry
	query    string
	bind     map[string]any
	opts     CursorOptions
}

// Iter starts the query and returns an iterator over its results.
func (c *Cursor) Iter(ctx context.Context) *Iterator {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Iterator{cursor: c, ctx: ctx, pos: -1}
}

// Iterator walks the result records batch by batch. The sequence is
// lazy and finite; it is not restartable, use Cursor.Iter for a new
// pass.
type Iterator struct {
	cursor *Cursor
	ctx    context.Context

	id      string
	batch   []any
	pos     int
	hasMore bool
	started bool
	closed  bool
	count   int
	err     error
}

// Next fetches the next record, creating the server-side cursor on the
// first call and pulling further batches as needed. It returns false
// once the results are exhausted or an error occurred; the error is
// reported by Close.
func (it *Iterator) Next() bool {
	if it.err != nil || it.closed {
		return false
	}
	if !it.started {
		it.started = true
		if !it.create() {
			return false
		}
	}
	for {
		if it.pos+1 < len(it.batch) {
			it.pos++
			return true
		}
		if !it.hasMore {
			return false
		}
		if !it.continueBatch() {
			return false
		}
	}
}

func (it *Iterator) create() bool {
	c := it.cursor
	body := map[string]any{
		"query":    c.query,
		"bindVars": c.bind,
	}
	if c.opts.Batch > 0 {
		body["batchSize"] = c.opts.Batch
	}
	if c.opts.TTL > 0 {
		body["ttl"] = int(c.opts.TTL / time.Second)
	}
	if c.opts.Count {
		body["count"] = true
	}
	slog.Debug("creating cursor", "query", c.query, "bind", c.bind)

	resp, err := c.conn.Post(it.ctx, []string{"cursor"}, nil, body)
	if err != nil {
		it.err = err
		return false
	}
	it.apply(resp)
	it.count = intField(resp, "count")
	return true
}

func (it *Iterator) continueBatch() bool {
	resp, err := it.cursor.conn.Put(it.ctx, []string{"cursor", it.id}, nil, nil)
	if err != nil {
		it.err = err
		return false
	}
	it.apply(resp)
	return true
}

func (it *Iterator) apply(resp map[string]any) {
	it.batch, _ = resp["result"].([]any)
	it.hasMore, _ = resp["hasMore"].(bool)
	if id, ok := resp["id"].(string); ok {
		it.id = id
	}
	it.pos = -1
}

// Value returns the raw record produced by the last Next call. Queries
// may return scalars as well as documents.
func (it *Iterator) Value() any {
	if it.pos < 0 || it.pos >= len(it.batch) {
		return nil
	}
	return it.batch[it.pos]
}

// Get returns the current record as a field mapping. It fails if Next
// has not been called, the iteration has ended, or the record is not an
// object.
func (it *Iterator) Get() (map[string]any, error) {
	if it.err != nil {
		return nil, it.err
	}
	if !it.started {
		return nil, fmt.Errorf("cannot get record before Next")
	}
	v := it.Value()
	if v == nil {
		return nil, fmt.Errorf("iteration ended")
	}
	record, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("cannot get record: result is %T, not an object", v)
	}
	return record, nil
}

// Document resolves the current record into a typed entity through the
// cursor's registry.
func (it *Iterator) Document() (Entity, error) {
	record, err := it.Get()
	if err != nil {
		return nil, err
	}
	return it.cursor.registry.Resolve(record)
}

// Count returns the total result count if the cursor was created with
// the Count option, zero otherwise.
func (it *Iterator) Count() int { return it.count }

// Close ends the iteration and returns any error encountered. The
// server-side cursor is not deleted; an abandoned one expires when its
// ttl runs out.
func (it *Iterator) Close() error {
	it.closed = true
	return it.err
}

// All runs the query and collects every raw record.
func (c *Cursor) All(ctx context.Context) ([]any, error) {
	var results []any
	it := c.Iter(ctx)
	for it.Next() {
		results = append(results, it.Value())
	}
	if err := it.Close(); err != nil {
		return nil, err
	}
	return results, nil
}

// Documents runs the query and resolves every record into a typed
// entity.
func (c *Cursor) Documents(ctx context.Context) ([]Entity, error) {
	var entities []Entity
	it := c.Iter(ctx)
	for it.Next() {
		ent, err := it.Document()
		if err != nil {
			it.Close()
			return nil, err
		}
		entities = append(entities, ent)
	}
	if err := it.Close(); err != nil {
		return nil, err
	}
	return entities, nil
}

// First runs the query and resolves its first record, or returns
// ErrNoDocument.
func (c *Cursor) First(ctx context.Context) (Entity, error) {
	it := c.Iter(ctx)
	if !it.Next() {
		if err := it.Close(); err != nil {
			return nil, err
		}
		return nil, ErrNoDocument
	}
	ent, err := it.Document()
	if cerr := it.Close(); err == nil && cerr != nil {
		err = cerr
	}
	return ent, err
}
