// Copyright 2024 The aqlair authors
// Licensed under Apache 2.0, see LICENCE file for details.

package aql

import (
	"reflect"
	"strings"
)

// assembler holds the per-node-type dedup registries built up during one
// assembly. The index of a leaf is the position of the first node equal
// to it within its type's registry, so equal values share one bind
// parameter and the numbering is stable across repeated assemblies.
type assembler struct {
	seen map[reflect.Type][]leaf
	text strings.Builder
	bind map[string]any
}

// Assemble walks the expression depth first and returns the rendered
// query text together with the merged bind variable map.
func Assemble(e Expr) (string, map[string]any) {
	a := &assembler{
		seen: make(map[reflect.Type][]leaf),
		bind: make(map[string]any),
	}
	e.walk(a.visit)
	return a.text.String(), a.bind
}

func (a *assembler) visit(l leaf) {
	index := a.index(l)
	a.text.WriteString(l.term(index))
	for name, value := range l.bind(index) {
		a.bind[name] = value
	}
}

func (a *assembler) index(l leaf) int {
	t := reflect.TypeOf(l)
	registry := a.seen[t]
	for i, s := range registry {
		if s.equal(l) {
			return i
		}
	}
	a.seen[t] = append(registry, l)
	return len(registry)
}
