// Copyright (c) 2024 Blockwatch Data Inc.
// Author: alex@blockwatch.cc

// Package mapper implements the core bidirectional driver (C6): walking an
// element tree into a Go object graph (DataFromElement) and the reverse
// (ElementFromData), dispatching through a match.Source for every
// non-scalar type it encounters. Cycle safety mirrors micheline/unmarshal.go's
// single-pass reflect-driven walk, but adds an identity table so a
// self-referential element (or object graph) can close over a
// not-yet-fully-populated value instead of recursing forever.
package mapper

import (
	"encoding"
	"reflect"
	"time"

	"github.com/pkg/errors"

	"github.com/tigritik/Butylene/conv"
	"github.com/tigritik/Butylene/element"
	"github.com/tigritik/Butylene/hint"
	"github.com/tigritik/Butylene/match"
	"github.com/tigritik/Butylene/signature"
	"github.com/tigritik/Butylene/token"
)

var textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()

var timeType = reflect.TypeOf(time.Time{})

var anyType = reflect.TypeOf((*any)(nil)).Elem()
var stringType = reflect.TypeOf("")

// isEmptyInterface reports whether t is `any` (or another zero-method
// interface) - the one interface kind a signature can always satisfy,
// since it imposes no method set to check.
func isEmptyInterface(t reflect.Type) bool {
	return t.Kind() == reflect.Interface && t.NumMethod() == 0
}

// buildingSentinel marks a cycle-table slot whose owning signature cannot
// be prebuilt: a second arrival at the same element before the first has
// finished is a genuine unsupported cycle.
var buildingSentinel = &struct{}{}

// Processor drives element<->object conversion against one match.Source.
// It carries no state of its own between calls; every DataFromElement or
// ElementFromData call gets a fresh cycle table, so one Processor is safe
// for concurrent use exactly to the extent its Source is (§5).
type Processor struct {
	source *match.Source
}

// NewProcessor builds a Processor bound to source.
func NewProcessor(source *match.Source) *Processor {
	return &Processor{source: source}
}

type decodeCtx struct {
	cycle map[element.Element]any
}

// DataFromElement builds a Go value of type t from e (the element -> object
// direction).
func (p *Processor) DataFromElement(t token.Token, e element.Element) (any, error) {
	logger.Debugf("mapper: decoding %s", t)
	ctx := &decodeCtx{cycle: make(map[element.Element]any)}
	v, err := p.decode(ctx, t, e, false)
	if err != nil {
		return nil, &ProcessError{Target: t, Err: err}
	}
	return v, nil
}

func cycleKey(e element.Element) (element.Element, bool) {
	switch e.(type) {
	case *element.List, *element.Node:
		return e, true
	default:
		return nil, false
	}
}

func (p *Processor) decode(ctx *decodeCtx, t token.Token, e element.Element, lenient bool) (any, error) {
	resolved := t
	if p.source.Resolver != nil {
		resolved = p.source.Resolver.Resolve(t)
	}
	raw := resolved.Raw()
	unwrapped := raw
	ptrDepth := 0
	for unwrapped.Kind() == reflect.Ptr {
		unwrapped = unwrapped.Elem()
		ptrDepth++
	}

	// A target declared as `any` has no record shape to build against - it
	// takes its concrete Go type from the element itself rather than from
	// the record-signature builder, which only knows how to build structs.
	if isEmptyInterface(unwrapped) {
		v, err := p.decodeAny(ctx, e, lenient)
		if err != nil {
			return nil, err
		}
		if v == nil {
			return reflect.Zero(raw).Interface(), nil
		}
		return wrapPtr(v, ptrDepth), nil
	}

	if hint.Classify(unwrapped) == hint.SCALAR {
		return p.decodeScalar(e, raw, lenient)
	}

	key, hasKey := cycleKey(e)
	if hasKey {
		if v, ok := ctx.cycle[key]; ok {
			if v == buildingSentinel {
				return nil, ErrCycleRequiresPrebuilt
			}
			return v, nil
		}
		ctx.cycle[key] = buildingSentinel
	}

	target := token.OfType(unwrapped)
	matcher, err := p.source.MatcherFor(target)
	if err != nil {
		return nil, err
	}
	ms, err := matcher.Match(target, e, nil)
	if err != nil {
		return nil, err
	}

	var prebuilt any
	if hp, ok := ms.Sig.(signature.HasPrebuilt); ok && hp.SupportsPrebuilt() {
		prebuilt, err = hp.MakeBuildingObject(e)
		if err != nil {
			return nil, err
		}
		if hasKey {
			ctx.cycle[key] = prebuilt
		}
	}

	var args []any
	if mapSig, ok := ms.Sig.(*signature.MapSignature); ok {
		args, err = p.decodeMapEntries(ctx, mapSig, e)
		if err != nil {
			return nil, err
		}
	} else {
		sigArgs := ms.Sig.Arguments()
		args = make([]any, len(ms.Children))
		for i, child := range ms.Children {
			if child == nil {
				continue // absent named argument: leave the zero value
			}
			childType, childLenient := argSlot(sigArgs, i)
			v, err := p.decode(ctx, childType, child, childLenient)
			if err != nil {
				return nil, err
			}
			args[i] = v
		}
	}

	built, err := ms.Sig.Build(prebuilt, args)
	if err != nil {
		return nil, err
	}

	normalized, err := normalizeBuilt(built, raw)
	if err != nil {
		return nil, err
	}
	if hasKey {
		ctx.cycle[key] = normalized
	}
	return normalized, nil
}

// decodeAny picks a concrete Go type for an `any` target from the
// element's own shape - the boxed scalar, []any for a list, map[string]any
// for a node - and recurses through the ordinary decode path for that
// type, rather than invent a dedicated container-building path here. A
// resolver registration for the interface type itself (or the element's
// declared type further up the call) already took effect in decode before
// this is reached, so a registered concrete type always wins first.
func (p *Processor) decodeAny(ctx *decodeCtx, e element.Element, lenient bool) (any, error) {
	switch v := e.(type) {
	case nil:
		return nil, nil
	case element.Scalar:
		return v.Value, nil
	case *element.List:
		return p.decode(ctx, token.OfType(reflect.SliceOf(anyType)), e, lenient)
	case *element.Node:
		return p.decode(ctx, token.OfType(reflect.MapOf(stringType, anyType)), e, lenient)
	default:
		return nil, errors.Errorf("mapper: cannot decode %s into any", describeKind(e))
	}
}

// decodeMapEntries pairs each Node key with its decoded value (typed
// against mapSig's ValueType) into the Entry values MapSignature.Build
// expects, since a map's argument names are the Node's own keys rather
// than a fixed signature-declared set.
func (p *Processor) decodeMapEntries(ctx *decodeCtx, mapSig *signature.MapSignature, e element.Element) ([]any, error) {
	node, ok := e.(*element.Node)
	if !ok {
		return nil, errors.Errorf("mapper: expected a node element for a map type, got %s", describeKind(e))
	}
	valueType := mapSig.ValueType()
	keyTy := mapSig.KeyType().Raw()
	entries := node.Entries()
	args := make([]any, 0, len(entries))
	for _, entry := range entries {
		key, err := decodeMapKey(entry.Key, keyTy)
		if err != nil {
			return nil, err
		}
		val, err := p.decode(ctx, valueType, entry.Value, false)
		if err != nil {
			return nil, err
		}
		args = append(args, signature.Entry{Key: key, Value: val})
	}
	return args, nil
}

func decodeMapKey(raw string, keyTy reflect.Type) (any, error) {
	if keyTy.Kind() == reflect.String {
		return reflect.ValueOf(raw).Convert(keyTy).Interface(), nil
	}
	if reflect.PointerTo(keyTy).Implements(textUnmarshalerType) {
		v := reflect.New(keyTy)
		if err := v.Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(raw)); err != nil {
			return nil, errors.Wrapf(err, "mapper: unmarshaling map key %q", raw)
		}
		return v.Elem().Interface(), nil
	}
	return nil, errors.Errorf("mapper: map key type %s cannot be built from string %q", keyTy, raw)
}

// argSlot resolves argument i's declared type and leniency. Slice and Map
// signatures publish a single template Argument that applies to every
// child; Array and record signatures (Field/Constructor) publish one
// argument per child in matching order.
func argSlot(args []signature.Argument, i int) (token.Token, bool) {
	if len(args) == 1 {
		return args[0].Type, args[0].NoFail
	}
	if i < len(args) {
		return args[i].Type, args[i].NoFail
	}
	return token.Token{}, false
}

func (p *Processor) decodeScalar(e element.Element, want reflect.Type, lenient bool) (any, error) {
	scalar, ok := e.(element.Scalar)
	if !ok {
		return nil, errors.Errorf("mapper: expected a scalar element for %s, got %s", want, describeKind(e))
	}

	ptrDepth := 0
	target := want
	for target.Kind() == reflect.Ptr {
		target = target.Elem()
		ptrDepth++
	}

	if scalar.IsNil() {
		if ptrDepth == 0 && !isNilableKind(target.Kind()) {
			return nil, ErrNilToValue
		}
		return reflect.Zero(want).Interface(), nil
	}

	if s, isString := scalar.Value.(string); isString {
		if target == timeType {
			tm, err := time.Parse(time.RFC3339, s)
			if err != nil {
				return nil, errors.Wrap(err, "mapper: parsing time.Time scalar")
			}
			return wrapPtr(tm, ptrDepth), nil
		}
		if v, matched, err := hint.ParseEnum(target, s); matched {
			if err != nil {
				return nil, err
			}
			return wrapPtr(v.Interface(), ptrDepth), nil
		}
	}

	var converted reflect.Value
	var err error
	if lenient {
		converted, err = conv.ConvertLenient(scalar.Value, target)
	} else {
		converted, err = conv.Convert(scalar.Value, target)
	}
	if err != nil {
		return nil, err
	}
	return wrapPtr(converted.Interface(), ptrDepth), nil
}

func wrapPtr(v any, depth int) any {
	if depth == 0 {
		return v
	}
	rv := reflect.ValueOf(v)
	for i := 0; i < depth; i++ {
		p := reflect.New(rv.Type())
		p.Elem().Set(rv)
		rv = p
	}
	return rv.Interface()
}

func isNilableKind(k reflect.Kind) bool {
	switch k {
	case reflect.Ptr, reflect.Interface, reflect.Slice, reflect.Map, reflect.Chan, reflect.Func:
		return true
	default:
		return false
	}
}

func describeKind(e element.Element) string {
	if e == nil {
		return "<nil>"
	}
	return e.Kind().String()
}

// normalizeBuilt reconciles a Build() result's pointer-ness with want:
// field signatures return a pointer (to support cycle identity), but the
// caller may have asked for the pointee type directly; container
// signatures return the slice, map or array value itself.
func normalizeBuilt(built any, want reflect.Type) (any, error) {
	if built == nil {
		return reflect.Zero(want).Interface(), nil
	}
	bv := reflect.ValueOf(built)
	if bv.Type() == want {
		return built, nil
	}
	if bv.Kind() == reflect.Ptr && bv.Type().Elem() == want {
		return bv.Elem().Interface(), nil
	}
	if want.Kind() == reflect.Ptr && reflect.PointerTo(bv.Type()) == want {
		p := reflect.New(bv.Type())
		p.Elem().Set(bv)
		return p.Interface(), nil
	}
	if bv.Type().AssignableTo(want) {
		return built, nil
	}
	if bv.Type().ConvertibleTo(want) {
		return bv.Convert(want).Interface(), nil
	}
	return nil, errors.Errorf("mapper: built value of type %s is not assignable to %s", bv.Type(), want)
}

type encodeCtx struct {
	cycle map[uintptr]element.Element
}

// ElementFromData flattens a Go value into an element tree (the
// object -> element direction).
func (p *Processor) ElementFromData(obj any) (element.Element, error) {
	logger.Debugf("mapper: encoding %T", obj)
	ctx := &encodeCtx{cycle: make(map[uintptr]element.Element)}
	e, err := p.encode(ctx, reflect.ValueOf(obj))
	if err != nil {
		return nil, &ProcessError{Target: token.OfValue(obj), Err: err}
	}
	return e, nil
}

func (p *Processor) encode(ctx *encodeCtx, v reflect.Value) (element.Element, error) {
	if !v.IsValid() {
		return element.NewScalar(nil), nil
	}
	if isNilableKind(v.Kind()) && v.IsNil() {
		return element.NewScalar(nil), nil
	}

	unwrapped := v.Type()
	for unwrapped.Kind() == reflect.Ptr {
		unwrapped = unwrapped.Elem()
	}

	if hint.Classify(unwrapped) == hint.SCALAR {
		return p.encodeScalar(v)
	}

	var key uintptr
	var hasKey bool
	if v.Kind() == reflect.Ptr || v.Kind() == reflect.Map {
		key, hasKey = v.Pointer(), true
	}
	if hasKey {
		if cached, ok := ctx.cycle[key]; ok {
			return cached, nil
		}
	}

	target := token.OfType(unwrapped)
	matcher, err := p.source.MatcherFor(target)
	if err != nil {
		return nil, err
	}
	ms, err := matcher.Match(target, nil, v.Interface())
	if err != nil {
		return nil, err
	}

	container := ms.Sig.InitContainer(len(ms.Typed))
	if hasKey {
		ctx.cycle[key] = container
	}

	for _, tv := range ms.Typed {
		childElem, err := p.encode(ctx, reflect.ValueOf(tv.Value))
		if err != nil {
			return nil, err
		}
		switch c := container.(type) {
		case *element.List:
			c.Add(childElem)
		case *element.Node:
			if tv.Name == "" {
				return nil, errors.Errorf("mapper: signature %s produced an unnamed value for a node container", ms.Sig.ReturnType())
			}
			c.Set(tv.Name, childElem)
		default:
			return nil, errors.Errorf("mapper: signature %s returned an unsupported container %T", ms.Sig.ReturnType(), container)
		}
	}
	return container, nil
}

func (p *Processor) encodeScalar(v reflect.Value) (element.Element, error) {
	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return element.NewScalar(nil), nil
		}
		v = v.Elem()
	}

	if v.Type() == timeType {
		return element.NewScalar(v.Interface().(time.Time).Format(time.RFC3339)), nil
	}
	if s, ok := hint.FormatEnum(v); ok {
		return element.NewScalar(s), nil
	}

	switch v.Kind() {
	case reflect.Bool:
		return element.NewScalar(v.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return element.NewScalar(v.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return element.NewScalar(int64(v.Uint())), nil
	case reflect.Float32, reflect.Float64:
		return element.NewScalar(v.Float()), nil
	case reflect.String:
		return element.NewScalar(v.String()), nil
	case reflect.Slice:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return element.NewScalar(string(v.Bytes())), nil
		}
	}
	return nil, errors.Errorf("mapper: cannot encode scalar of kind %s", v.Kind())
}
