// Copyright 2024 The aqlair authors
// Licensed under Apache 2.0, see LICENCE file for details.

package aqlair

import (
	"fmt"
)

// Entity is a typed record. User types implement it by embedding
// Document or Edge:
//
//	type User struct {
//		aqlair.Document
//	}
//
// The zero value of an entity is usable; its fields are created on first
// write.
type Entity interface {
	base() *Document
}

// FieldMarshaler lets an entity adjust its fields before they are sent
// to the server.
type FieldMarshaler interface {
	MarshalFields() (map[string]any, error)
}

// FieldUnmarshaler lets an entity populate itself from a raw record
// instead of the default field copy.
type FieldUnmarshaler interface {
	UnmarshalFields(fields map[string]any) error
}

// Document is a mutable mapping of field names to values. The reserved
// fields _id, _key and _rev hold the server-assigned identity and
// revision; they are absent until the document is first persisted.
type Document struct {
	fields map[string]any
}

func (d *Document) base() *Document { return d }

func (d *Document) ensure() map[string]any {
	if d.fields == nil {
		d.fields = make(map[string]any)
	}
	return d.fields
}

// Get returns the named field and whether it is present.
func (d *Document) Get(key string) (any, bool) {
	v, ok := d.fields[key]
	return v, ok
}

// Set stores a field value.
func (d *Document) Set(key string, value any) {
	d.ensure()[key] = value
}

// Unset removes a field.
func (d *Document) Unset(key string) {
	delete(d.fields, key)
}

// Has reports whether the named field is present.
func (d *Document) Has(key string) bool {
	_, ok := d.fields[key]
	return ok
}

// Update copies all entries of fields into the document.
func (d *Document) Update(fields map[string]any) {
	m := d.ensure()
	for k, v := range fields {
		m[k] = v
	}
}

// Fields returns a copy of the document's field mapping.
func (d *Document) Fields() map[string]any {
	fields := make(map[string]any, len(d.fields))
	for k, v := range d.fields {
		fields[k] = v
	}
	return fields
}

// Len returns the number of fields.
func (d *Document) Len() int { return len(d.fields) }

// Copy returns a document with a shallow copy of the field mapping,
// identity fields included.
func (d *Document) Copy() *Document {
	return &Document{fields: d.Fields()}
}

func (d *Document) stringField(key string) string {
	s, _ := d.fields[key].(string)
	return s
}

// ID returns the document handle `<collection>/<key>`, or "" before the
// document is first persisted.
func (d *Document) ID() string { return d.stringField("_id") }

// Key returns the server-assigned document key, or "".
func (d *Document) Key() string { return d.stringField("_key") }

// Rev returns the document revision, or "".
func (d *Document) Rev() string { return d.stringField("_rev") }

func (d *Document) String() string {
	if id := d.ID(); id != "" {
		return id
	}
	return "(unsaved document)"
}

// Edge is a document that designates a directed relationship between
// two documents via the _from and _to reference fields.
type Edge struct {
	Document

	fromDoc Entity
	toDoc   Entity
}

func (e *Edge) edge() *Edge { return e }

// edgeEntity marks entities that embed Edge.
type edgeEntity interface {
	Entity
	edge() *Edge
}

// From returns the _from document id, or "".
func (e *Edge) From() string { return e.stringField("_from") }

// To returns the _to document id, or "".
func (e *Edge) To() string { return e.stringField("_to") }

// SetFrom assigns the edge source. A string is stored as is; an Entity
// is reduced to its _id and must already be persisted.
func (e *Edge) SetFrom(v any) error {
	return e.setRef("_from", v)
}

// SetTo assigns the edge destination, with the same rules as SetFrom.
func (e *Edge) SetTo(v any) error {
	return e.setRef("_to", v)
}

func (e *Edge) setRef(key string, v any) error {
	switch ref := v.(type) {
	case string:
		e.Set(key, ref)
	case Entity:
		id := ref.base().ID()
		if id == "" {
			return fmt.Errorf("cannot set %s: document has no _id, save it first", key)
		}
		e.Set(key, id)
	default:
		return fmt.Errorf("cannot set %s: need document id or entity, got %T", key, v)
	}
	return nil
}

// FromDocument returns the source document loaded alongside the edge,
// or nil if the edge was not loaded through DB.Load.
func (e *Edge) FromDocument() Entity { return e.fromDoc }

// ToDocument returns the destination document loaded alongside the
// edge, or nil if the edge was not loaded through DB.Load.
func (e *Edge) ToDocument() Entity { return e.toDoc }
