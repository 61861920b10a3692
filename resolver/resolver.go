// Copyright (c) 2024 Blockwatch Data Inc.
// Author: alex@blockwatch.cc

// Package resolver implements the abstract-to-concrete type registry (D2):
// an abstract return type (an interface, or a base struct meant to be
// swapped for an environment-specific implementation) resolves to the
// concrete Go type a signature should actually build. Modeled directly on
// internal/compose/registry.go's engineRegistry map + RegisterEngine/New
// shape, keyed by a token's stable name instead of a version string.
package resolver

import (
	"sync"

	"github.com/tigritik/Butylene/token"
)

// Resolver maps an abstract type to the concrete type that should be built
// in its place.
type Resolver interface {
	Register(abstract, concrete token.Token)
	Resolve(t token.Token) token.Token
	Has(t token.Token) bool
}

// Registry is the default Resolver: a name-keyed map guarded by a
// sync.RWMutex, the same concurrency shape internal/compose/registry.go
// uses for its package-level engineRegistry (generalized here to an
// instance so a process can run more than one mapping configuration).
type Registry struct {
	mu     sync.RWMutex
	byName map[string]token.Token
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]token.Token)}
}

// Register records that abstract should resolve to concrete. Registering
// the same abstract type twice overwrites the previous mapping, the same
// last-write-wins behavior as RegisterEngine overwriting engineRegistry.
func (r *Registry) Register(abstract, concrete token.Token) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byName[abstract.Name()] = concrete
}

// Resolve returns the concrete type registered for t, or t itself if no
// mapping exists - an unregistered type is its own resolution, so callers
// never need to branch on Has before calling Resolve.
func (r *Registry) Resolve(t token.Token) token.Token {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if concrete, ok := r.byName[t.Name()]; ok {
		return concrete
	}
	return t
}

// Has reports whether t has an explicit registration.
func (r *Registry) Has(t token.Token) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byName[t.Name()]
	return ok
}

var _ Resolver = (*Registry)(nil)
