// Copyright 2024 The aqlair authors
// Licensed under Apache 2.0, see LICENCE file for details.

package aqlair

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
)

var (
	entityIface  = reflect.TypeOf((*Entity)(nil)).Elem()
	edgeIface    = reflect.TypeOf((*edgeEntity)(nil)).Elem()
	documentType = reflect.TypeOf(Document{})
	edgeType     = reflect.TypeOf(Edge{})
)

// entityType describes one registered entity type.
type entityType struct {
	collection string
	typ        reflect.Type
	edge       bool
}

// Registry maps collection names to entity types and resolves raw
// records into typed entities. Types are registered once, during
// process initialization; lookups are safe for concurrent use.
//
// The root types Document and Edge are not part of the mapping: user
// types embed one of them and register under their own collection name.
type Registry struct {
	mu     sync.RWMutex
	types  map[string]*entityType
	byType map[reflect.Type]*entityType
	order  []string
}

func NewRegistry() *Registry {
	return &Registry{
		types:  make(map[string]*entityType),
		byType: make(map[reflect.Type]*entityType),
	}
}

// RegisterOption customizes a registration.
type RegisterOption func(*entityType)

// WithCollection overrides the collection name, which otherwise
// defaults to the Go type name. The name is fixed once registered.
func WithCollection(name string) RegisterOption {
	return func(et *entityType) {
		et.collection = name
	}
}

// Register adds an entity type, given a sample instance of it.
// Registering two types under the same collection name is a
// configuration error.
func (r *Registry) Register(sample any, opts ...RegisterOption) error {
	et, err := describe(sample)
	if err != nil {
		return err
	}
	for _, opt := range opts {
		opt(et)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.types[et.collection]; ok {
		return fmt.Errorf(
			"cannot register %s: collection %q is already registered by %s",
			et.typ, et.collection, prev.typ)
	}
	if _, ok := r.byType[et.typ]; ok {
		return fmt.Errorf("cannot register %s twice", et.typ)
	}
	r.types[et.collection] = et
	r.byType[et.typ] = et
	r.order = append(r.order, et.collection)
	return nil
}

// MustRegister is Register, panicking on error. It suits the usual
// call site, a startup function enumerating the program's entity types.
func (r *Registry) MustRegister(sample any, opts ...RegisterOption) {
	if err := r.Register(sample, opts...); err != nil {
		panic(err)
	}
}

// describe reflects over a sample and produces its type entry.
func describe(sample any) (*entityType, error) {
	if sample == nil {
		return nil, fmt.Errorf("cannot register nil entity")
	}
	t := reflect.TypeOf(sample)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("cannot register %s: need a struct embedding aqlair.Document or aqlair.Edge", t.Kind())
	}
	if t == documentType || t == edgeType {
		return nil, fmt.Errorf("cannot register the root type %s", t)
	}
	ptr := reflect.PointerTo(t)
	if !ptr.Implements(entityIface) {
		return nil, fmt.Errorf("cannot register %s: it does not embed aqlair.Document or aqlair.Edge", t)
	}
	return &entityType{
		collection: t.Name(),
		typ:        t,
		edge:       ptr.Implements(edgeIface),
	}, nil
}

// Collections returns the registered collection names in registration
// order.
func (r *Registry) Collections() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	order := make([]string, len(r.order))
	copy(order, r.order)
	return order
}

// CollectionOf returns the collection name a type was registered under.
// The sample may be a value or a pointer of the registered type.
func (r *Registry) CollectionOf(sample any) (string, error) {
	et, err := r.typeOf(sample)
	if err != nil {
		return "", err
	}
	return et.collection, nil
}

func (r *Registry) typeOf(sample any) (*entityType, error) {
	t := reflect.TypeOf(sample)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return nil, fmt.Errorf("cannot look up nil entity type")
	}
	r.mu.RLock()
	et, ok := r.byType[t]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("entity type %s is not registered", t)
	}
	return et, nil
}

// lookup returns the entry registered under a collection name.
func (r *Registry) lookup(collection string) (*entityType, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	et, ok := r.types[collection]
	return et, ok
}

// Resolve constructs a typed entity for a raw record. The record must
// carry an `_id` of the form `<collection>/<key>` naming a registered
// collection.
func (r *Registry) Resolve(record map[string]any) (Entity, error) {
	id, ok := record["_id"].(string)
	if !ok {
		return nil, &ResolveError{Reason: "record has no _id field"}
	}
	collection, _, found := strings.Cut(id, "/")
	if !found || collection == "" {
		return nil, &ResolveError{ID: id, Reason: "malformed document handle"}
	}

	r.mu.RLock()
	et, ok := r.types[collection]
	r.mu.RUnlock()
	if !ok {
		return nil, &ResolveError{ID: id, Reason: fmt.Sprintf("collection %q is not registered", collection)}
	}

	ent := reflect.New(et.typ).Interface().(Entity)
	if u, ok := ent.(FieldUnmarshaler); ok {
		if err := u.UnmarshalFields(record); err != nil {
			return nil, fmt.Errorf("cannot unmarshal %q: %s", id, err)
		}
	} else {
		ent.base().Update(record)
	}
	return ent, nil
}
