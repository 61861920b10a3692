// Copyright (c) 2024 Blockwatch Data Inc.
// Author: alex@blockwatch.cc

// Package match implements the signature matcher and source: given a
// target type, yields or builds the set of candidate signatures for it,
// and matches an element (or an object) against those candidates. The
// per-type signature cache generalizes micheline/typeinfo.go's
// tinfoMap/sync.RWMutex pattern.
package match

import (
	"reflect"
	"sort"
	"sync"

	lru "github.com/hashicorp/golang-lru"

	"github.com/tigritik/Butylene/hint"
	"github.com/tigritik/Butylene/resolver"
	"github.com/tigritik/Butylene/signature"
	"github.com/tigritik/Butylene/token"
)

// BuilderMode selects the record-building strategy for a struct type absent
// a more specific custom signature. It is set per type with
// Source.RegisterBuilder (see SPEC_FULL.md §4.3/§6), not read from a
// struct tag.
type BuilderMode int

const (
	// BuilderDefault picks Constructor when a constructor function is
	// registered for the type, Field otherwise.
	BuilderDefault BuilderMode = iota
	BuilderConstructor
	BuilderField
)

// constructorSpec is a registered record-like constructor for a type.
type constructorSpec struct {
	fn       any
	names    []string
	priority int
}

// Source caches Token -> SignatureMatcher and holds the registrations
// (custom signatures, constructors, widen/builder hints) that drive how an
// uncached type's candidate set gets built.
type Source struct {
	matchers sync.Map // token.Token.Name() -> *SignatureMatcher

	customMu    sync.RWMutex
	customCache *lru.Cache // reflect.Type -> []signature.Signature

	mu           sync.RWMutex
	constructors map[reflect.Type]constructorSpec
	widen        map[reflect.Type]bool
	builderHint  map[reflect.Type]BuilderMode

	Resolver resolver.Resolver

	// StrictMode, when true, makes unknown keys in a named-argument Node
	// an error instead of the source's default of silently ignoring them
	// (see SPEC_FULL.md §9 Open Questions).
	StrictMode bool
}

// NewSource builds an empty Source with a bounded custom-signature cache
// (default 512 entries - custom-signature registration is a small, closed,
// configuration-time set, so eviction merely forces a harmless rebuild).
func NewSource() *Source {
	cache, _ := lru.New(512)
	return &Source{
		customCache:  cache,
		constructors: make(map[reflect.Type]constructorSpec),
		widen:        make(map[reflect.Type]bool),
		builderHint:  make(map[reflect.Type]BuilderMode),
		Resolver:     resolver.NewRegistry(),
	}
}

// RegisterCustom registers one or more user-supplied signatures for t,
// taking priority over any built-in classification (§4.3 resolution order
// step 1).
func (s *Source) RegisterCustom(t reflect.Type, sigs ...signature.Signature) {
	s.customMu.Lock()
	defer s.customMu.Unlock()
	s.customCache.Add(t, sigs)
	s.matchers.Delete(token.OfType(t).Name())
}

// RegisterConstructor registers a record-like constructor function for t,
// used by the signature builder selector when BuilderMode is
// BuilderConstructor (or BuilderDefault and no field-based override is
// forced).
func (s *Source) RegisterConstructor(t reflect.Type, fn any, names []string, priority int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.constructors[t] = constructorSpec{fn: fn, names: names, priority: priority}
	s.matchers.Delete(token.OfType(t).Name())
}

// RegisterWiden opts t into field-signature access to unexported fields.
func (s *Source) RegisterWiden(t reflect.Type) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.widen[t] = true
	s.matchers.Delete(token.OfType(t).Name())
}

// RegisterBuilder forces the builder strategy for t.
func (s *Source) RegisterBuilder(t reflect.Type, mode BuilderMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.builderHint[t] = mode
	s.matchers.Delete(token.OfType(t).Name())
}

// MatcherFor returns the cached SignatureMatcher for t, building and
// inserting one if absent. Concurrent callers racing on the same
// uncached type may both build a matcher; only one is kept, and building
// twice is side-effect-free (§5 concurrency discipline).
func (s *Source) MatcherFor(t token.Token) (*SignatureMatcher, error) {
	key := t.Name()
	if v, ok := s.matchers.Load(key); ok {
		return v.(*SignatureMatcher), nil
	}
	sigs, err := s.buildSignatures(t)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(sigs, func(i, j int) bool { return sigs[i].Priority() > sigs[j].Priority() })
	m := &SignatureMatcher{sigs: sigs, source: s}
	actual, _ := s.matchers.LoadOrStore(key, m)
	return actual.(*SignatureMatcher), nil
}

func (s *Source) buildSignatures(t token.Token) ([]signature.Signature, error) {
	raw := t.Raw()
	for raw.Kind() == reflect.Ptr {
		raw = raw.Elem()
	}

	if custom, ok := s.lookupCustom(raw); ok {
		return custom, nil
	}

	switch hint.Classify(raw) {
	case hint.LIST:
		if raw.Kind() == reflect.Array {
			return []signature.Signature{signature.NewArraySignature(token.OfType(raw))}, nil
		}
		return []signature.Signature{signature.NewSliceSignature(token.OfType(raw))}, nil
	case hint.NODE:
		if raw.Kind() == reflect.Map {
			sig, err := signature.NewMapSignature(token.OfType(raw))
			if err != nil {
				return nil, err
			}
			return []signature.Signature{sig}, nil
		}
		return s.buildRecordSignatures(token.OfType(raw))
	default: // SCALAR
		return nil, nil
	}
}

func (s *Source) lookupCustom(t reflect.Type) ([]signature.Signature, bool) {
	s.customMu.RLock()
	defer s.customMu.RUnlock()
	v, ok := s.customCache.Get(t)
	if !ok {
		return nil, false
	}
	return v.([]signature.Signature), true
}

// buildRecordSignatures is the signature builder selector: it picks a
// Constructor- or Field-based strategy per the registered builder hint,
// falling back to Constructor when a constructor function is registered
// and Field otherwise.
func (s *Source) buildRecordSignatures(t token.Token) ([]signature.Signature, error) {
	raw := t.Raw()
	s.mu.RLock()
	mode, hasMode := s.builderHint[raw]
	cons, hasCons := s.constructors[raw]
	widen := s.widen[raw]
	s.mu.RUnlock()

	useConstructor := (hasMode && mode == BuilderConstructor) || (!hasMode && hasCons)
	if useConstructor && hasCons {
		sig, err := signature.NewConstructorSignature(t, cons.fn, cons.names, raw, cons.priority)
		if err != nil {
			return nil, err
		}
		return []signature.Signature{sig}, nil
	}
	sig, err := signature.NewFieldSignature(t, widen, 0, nil)
	if err != nil {
		return nil, err
	}
	return []signature.Signature{sig}, nil
}
