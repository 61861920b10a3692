// Copyright (c) 2024 Blockwatch Data Inc.
// Author: alex@blockwatch.cc

// Package token provides a reified, possibly-generic type handle (Token)
// used throughout the mapping engine as a cache key and as the vocabulary
// for describing signature arguments. It is built directly on reflect.Type:
// Go has no dynamic class unloading in the default build, so a Token is an
// ordinary owned value rather than a weak reference (see arena.go for the
// plugin-arena variant exercised only under a build tag).
package token

import (
	"fmt"
	"reflect"
	"strings"
)

// Token is an opaque reified handle for a possibly-generic Go type.
type Token struct {
	typ   reflect.Type
	owner *Token
}

// Of builds a Token for the static type of a zero value of T.
func Of[T any]() Token {
	var zero T
	t := reflect.TypeOf(&zero).Elem()
	return Token{typ: t}
}

// OfType builds a Token directly from a reflect.Type.
func OfType(t reflect.Type) Token {
	return Token{typ: t}
}

// OfValue builds a Token from the dynamic type of v.
func OfValue(v any) Token {
	return Token{typ: reflect.TypeOf(v)}
}

// Raw returns the underlying reflect.Type. Named Raw to mirror the source
// design's raw_class/raw attribute; Go has no generic-erasure split so Raw
// and RawClass coincide.
func (t Token) Raw() reflect.Type { return t.typ }

// RawClass is an alias of Raw, kept for API symmetry with the source design.
func (t Token) RawClass() reflect.Type { return t.typ }

// Owner returns the enclosing type for nested generic types. Go has no
// nested-generic-class concept, so this is always nil in this
// implementation; kept for API parity with the source design.
func (t Token) Owner() *Token { return t.owner }

// Valid reports whether the Token wraps a non-nil type.
func (t Token) Valid() bool { return t.typ != nil }

// ActualTypeArguments returns the element (and key) types for slice/array/
// map/chan kinds, derived positionally from reflect.Type.Elem()/Key(). For
// struct types instantiated from a generic declaration the type parameters
// are not separately recoverable via reflect in Go, so this returns an
// empty slice for those (see SPEC_FULL.md §3.2).
func (t Token) ActualTypeArguments() []Token {
	if t.typ == nil {
		return nil
	}
	switch t.typ.Kind() {
	case reflect.Slice, reflect.Array, reflect.Ptr, reflect.Chan:
		return []Token{{typ: t.typ.Elem()}}
	case reflect.Map:
		return []Token{{typ: t.typ.Key()}, {typ: t.typ.Elem()}}
	default:
		return nil
	}
}

// Name is a stable string used for diagnostics and as a cache key. It
// renders the package path, type name and element/key types, so that
// differently-instantiated container tokens ([]string vs []int) get
// distinct names. It depends only on the reflect.Type: two tokens sharing
// a reflect.Type always share a Name.
func (t Token) Name() string {
	if t.typ == nil {
		return "<invalid>"
	}
	var b strings.Builder
	writeTypeName(&b, t.typ)
	return b.String()
}

func writeTypeName(b *strings.Builder, typ reflect.Type) {
	switch typ.Kind() {
	case reflect.Slice:
		b.WriteString("[]")
		writeTypeName(b, typ.Elem())
	case reflect.Array:
		fmt.Fprintf(b, "[%d]", typ.Len())
		writeTypeName(b, typ.Elem())
	case reflect.Ptr:
		b.WriteByte('*')
		writeTypeName(b, typ.Elem())
	case reflect.Map:
		b.WriteString("map[")
		writeTypeName(b, typ.Key())
		b.WriteByte(']')
		writeTypeName(b, typ.Elem())
	default:
		if pkg := typ.PkgPath(); pkg != "" {
			b.WriteString(pkg)
			b.WriteByte('.')
		}
		if typ.Name() != "" {
			b.WriteString(typ.Name())
		} else {
			b.WriteString(typ.String())
		}
	}
}

// Parameterize builds a container token from args alone: one argument
// yields a slice of it, two yield a map from the first to the second. The
// receiver's own type is not consulted, so user generic types are never
// instantiated; any other argument count reports
// ErrUnsupportedParameterize.
func (t Token) Parameterize(args ...Token) (Token, error) {
	switch {
	case len(args) == 1:
		return Token{typ: reflect.SliceOf(args[0].typ)}, nil
	case len(args) == 2:
		return Token{typ: reflect.MapOf(args[0].typ, args[1].typ)}, nil
	default:
		return Token{}, ErrUnsupportedParameterize
	}
}

// SupertypeProjection resolves how a named type instantiates a generic
// interface it implements. In Go this only has teeth for the handful of
// standard container shapes the hinter cares about: it is a thin wrapper
// around Elem()/Key() rather than full supertype unification.
func (t Token) SupertypeProjection(super reflect.Type) (Token, bool) {
	if t.typ == nil {
		return Token{}, false
	}
	if !t.typ.Implements(super) && !reflect.PointerTo(t.typ).Implements(super) {
		return Token{}, false
	}
	switch t.typ.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map, reflect.Ptr, reflect.Chan:
		return Token{typ: t.typ.Elem()}, true
	default:
		return t, true
	}
}

func (t Token) String() string { return t.Name() }
