// Copyright (c) 2024 Blockwatch Data Inc.
// Author: alex@blockwatch.cc

// Package signature implements construction recipes ("signatures") that
// bind a target type's arguments to the elements or object fields needed
// to build/introspect a value of that type. It is modeled as a closed set
// of concrete types implementing a small family of capability interfaces
// (HasArguments, HasPrebuilt, HasIntrospection) rather than a deep class
// hierarchy, matching SPEC_FULL.md §9's "avoid deep inheritance chains"
// design note.
package signature

import (
	"github.com/tigritik/Butylene/element"
	"github.com/tigritik/Butylene/hint"
	"github.com/tigritik/Butylene/token"
)

// Argument describes one positional or named construction argument.
type Argument struct {
	Name   string
	Named  bool
	Type   token.Token
	NoFail bool // config:"nofail": lenient scalar conversion for this argument
}

// TypedValue is the inverse of Argument: a value read off an object during
// introspection, alongside the declared type and name it was read as.
type TypedValue struct {
	Name   string
	Named  bool
	Type   token.Token
	Value  any
	NoFail bool
}

// Entry is the reified Entry<K,V> argument type used by map signatures.
type Entry struct {
	Key   any
	Value any
}

// HasArguments is implemented by every signature that takes arguments
// (everything except the zero-argument case, which no signature kind
// actually needs).
type HasArguments interface {
	Arguments() []Argument
	MatchesArgumentNames() bool
	MatchesTypeHints() bool
}

// HasPrebuilt is implemented by signatures that can allocate an object
// before its fields/elements are populated, which is what lets the mapper
// register a cycle-table identity before recursing into children.
type HasPrebuilt interface {
	SupportsPrebuilt() bool
	MakeBuildingObject(e element.Element) (any, error)
}

// HasIntrospection is implemented by every signature so the object->element
// direction can flatten an existing Go value back into typed values.
type HasIntrospection interface {
	ObjectData(obj any) ([]TypedValue, error)
}

// Signature is a constructive recipe binding arguments to a target type.
type Signature interface {
	HasArguments
	HasIntrospection

	ReturnType() token.Token
	Priority() int
	// Length reports the expected argument count for e, or unbounded=true
	// when no fixed count applies: always for FieldSignature (absent keys
	// are allowed), and for Slice/Map signatures when e is not a List/Node
	// (e.g. nil in object mode).
	Length(e element.Element) (n int, unbounded bool)
	Build(prebuilt any, args []any) (any, error)
	// InitContainer returns the element shape used for serialization: a
	// Node for named signatures, a List for positional ones.
	InitContainer(sizeHint int) element.Element
	PreferredContainerShape() hint.Classification
	SupportsPrebuilt() bool
}
