package signature

import (
	"reflect"

	"github.com/pkg/errors"

	"github.com/tigritik/Butylene/element"
	"github.com/tigritik/Butylene/hint"
	"github.com/tigritik/Butylene/token"
)

// ArraySignature builds a fixed-size Go array. Unlike slices, arrays can
// never be prebuilt from an element alone (their size is part of the
// type, but the mapper only learns the element count at match time), so
// Build rejects a non-nil prebuilt.
type ArraySignature struct {
	ret  token.Token
	elem reflect.Type
}

func NewArraySignature(t token.Token) *ArraySignature {
	return &ArraySignature{ret: t, elem: t.Raw().Elem()}
}

func (s *ArraySignature) ReturnType() token.Token      { return s.ret }
func (s *ArraySignature) Priority() int                { return 0 }
func (s *ArraySignature) MatchesArgumentNames() bool   { return false }
func (s *ArraySignature) MatchesTypeHints() bool       { return false }
func (s *ArraySignature) SupportsPrebuilt() bool       { return false }
func (s *ArraySignature) PreferredContainerShape() hint.Classification { return hint.LIST }

func (s *ArraySignature) Arguments() []Argument {
	n := s.ret.Raw().Len()
	args := make([]Argument, n)
	for i := range args {
		args[i] = Argument{Type: token.OfType(s.elem)}
	}
	return args
}

func (s *ArraySignature) Length(e element.Element) (int, bool) {
	return s.ret.Raw().Len(), false
}

func (s *ArraySignature) Build(prebuilt any, args []any) (any, error) {
	if prebuilt != nil {
		return nil, ErrUnsupportedPrebuilt
	}
	v := reflect.New(s.ret.Raw()).Elem()
	for i, a := range args {
		if a == nil {
			continue
		}
		setElem(v.Index(i), a)
	}
	return v.Interface(), nil
}

func (s *ArraySignature) ObjectData(obj any) ([]TypedValue, error) {
	v := reflect.ValueOf(obj)
	for v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	out := make([]TypedValue, v.Len())
	for i := range out {
		out[i] = TypedValue{Type: token.OfType(s.elem), Value: v.Index(i).Interface()}
	}
	return out, nil
}

func (s *ArraySignature) InitContainer(sizeHint int) element.Element { return element.NewList() }

var _ Signature = (*ArraySignature)(nil)

// SliceSignature builds a Go slice, the analogue of the source design's
// "collection signature". It supports prebuilt: since the element count is
// known upfront from the List being decoded, the building object is a slice
// of that exact length (not a growing, zero-length one), so its elements
// can be filled in place by index. A slice header captured early therefore
// already carries the final length and backing array, and a self-reference
// that reads it mid-build sees the same storage the finished slice does -
// no pointer indirection is needed to keep the identity live.
type SliceSignature struct {
	ret  token.Token
	elem reflect.Type
}

func NewSliceSignature(t token.Token) *SliceSignature {
	return &SliceSignature{ret: t, elem: t.Raw().Elem()}
}

func (s *SliceSignature) ReturnType() token.Token      { return s.ret }
func (s *SliceSignature) Priority() int                { return 0 }
func (s *SliceSignature) MatchesArgumentNames() bool   { return false }
func (s *SliceSignature) MatchesTypeHints() bool       { return false }
func (s *SliceSignature) SupportsPrebuilt() bool       { return true }
func (s *SliceSignature) PreferredContainerShape() hint.Classification { return hint.LIST }

func (s *SliceSignature) Arguments() []Argument {
	return []Argument{{Type: token.OfType(s.elem)}}
}

func (s *SliceSignature) Length(e element.Element) (int, bool) {
	if l, ok := e.(*element.List); ok {
		return l.Size(), false
	}
	return 0, true
}

func (s *SliceSignature) MakeBuildingObject(e element.Element) (any, error) {
	n, unbounded := s.Length(e)
	if unbounded {
		n = 0
	}
	sl := reflect.MakeSlice(reflect.SliceOf(s.elem), n, n)
	return sl.Interface(), nil
}

func (s *SliceSignature) Build(prebuilt any, args []any) (any, error) {
	var sl reflect.Value
	if prebuilt != nil {
		sl = reflect.ValueOf(prebuilt)
	} else {
		sl = reflect.MakeSlice(reflect.SliceOf(s.elem), len(args), len(args))
	}
	for i, a := range args {
		if i >= sl.Len() || a == nil {
			continue
		}
		setElem(sl.Index(i), a)
	}
	return sl.Interface(), nil
}

func (s *SliceSignature) ObjectData(obj any) ([]TypedValue, error) {
	v := reflect.ValueOf(obj)
	for v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	out := make([]TypedValue, v.Len())
	for i := range out {
		out[i] = TypedValue{Type: token.OfType(s.elem), Value: v.Index(i).Interface()}
	}
	return out, nil
}

func (s *SliceSignature) InitContainer(sizeHint int) element.Element { return element.NewList() }

var _ Signature = (*SliceSignature)(nil)
var _ HasPrebuilt = (*SliceSignature)(nil)

// MapSignature builds a Go map. Unlike the record signatures, its argument
// names are not known ahead of a particular element or object (they are
// the map's own keys), so Arguments() publishes only the value type as a
// broadcast template; the mapper pairs each Node key with that template
// via KeyType/ValueType rather than through the generic named-argument
// path. Only string-keyed maps can be driven from a Node element (Node
// keys are strings by construction, SPEC_FULL.md §3.1); any other key kind
// must implement encoding.TextMarshaler/TextUnmarshaler.
type MapSignature struct {
	ret   token.Token
	keyTy reflect.Type
	valTy reflect.Type
}

func NewMapSignature(t token.Token) (*MapSignature, error) {
	keyTy := t.Raw().Key()
	if keyTy.Kind() != reflect.String && !canTextMarshal(keyTy) {
		return nil, errors.Wrapf(ErrUnsupportedMapKey, "map key type %s", keyTy)
	}
	return &MapSignature{ret: t, keyTy: keyTy, valTy: t.Raw().Elem()}, nil
}

func canTextMarshal(t reflect.Type) bool {
	textMarshaler := reflect.TypeOf((*interface{ MarshalText() ([]byte, error) })(nil)).Elem()
	return t.Implements(textMarshaler) || reflect.PointerTo(t).Implements(textMarshaler)
}

func (s *MapSignature) ReturnType() token.Token                      { return s.ret }
func (s *MapSignature) Priority() int                                { return 0 }
func (s *MapSignature) MatchesArgumentNames() bool                   { return false }
func (s *MapSignature) MatchesTypeHints() bool                       { return false }
func (s *MapSignature) SupportsPrebuilt() bool                       { return true }
func (s *MapSignature) PreferredContainerShape() hint.Classification { return hint.NODE }

// KeyType is the map's key type, exposed so the mapper can convert a
// Node's string keys (or stringify a key for encoding) without needing
// its own copy of the string/TextMarshaler rule NewMapSignature enforces.
func (s *MapSignature) KeyType() token.Token { return token.OfType(s.keyTy) }

// ValueType is the map's value type, the per-entry broadcast type.
func (s *MapSignature) ValueType() token.Token { return token.OfType(s.valTy) }

func (s *MapSignature) Arguments() []Argument {
	return []Argument{{Type: s.ValueType()}}
}

func (s *MapSignature) Length(e element.Element) (int, bool) {
	if n, ok := e.(*element.Node); ok {
		return n.Size(), false
	}
	return 0, true
}

// MakeBuildingObject returns the bare map value, not a pointer to it: Go
// maps already alias their backing storage, so a self-reference that reads
// this value mid-build sees every entry set via SetMapIndex afterward.
func (s *MapSignature) MakeBuildingObject(e element.Element) (any, error) {
	return reflect.MakeMap(s.ret.Raw()).Interface(), nil
}

// Build expects one Entry per map key, constructed by the mapper from the
// Node keys and the already-decoded values (ValueType-typed).
func (s *MapSignature) Build(prebuilt any, args []any) (any, error) {
	var m reflect.Value
	if prebuilt != nil {
		m = reflect.ValueOf(prebuilt)
	} else {
		m = reflect.MakeMap(s.ret.Raw())
	}
	for _, a := range args {
		ent, ok := a.(Entry)
		if !ok {
			return nil, errors.Errorf("signature: map build expected Entry, got %T", a)
		}
		kv := reflect.New(s.keyTy).Elem()
		setElem(kv, ent.Key)
		vv := reflect.New(s.valTy).Elem()
		if ent.Value != nil {
			setElem(vv, ent.Value)
		}
		m.SetMapIndex(kv, vv)
	}
	return m.Interface(), nil
}

// ObjectData yields one TypedValue per map entry, named by the entry's
// stringified key, so the generic encode loop can set it directly on a
// Node container without knowing this signature is map-shaped.
func (s *MapSignature) ObjectData(obj any) ([]TypedValue, error) {
	v := reflect.ValueOf(obj)
	for v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	out := make([]TypedValue, 0, v.Len())
	iter := v.MapRange()
	for iter.Next() {
		name, err := stringifyMapKey(iter.Key())
		if err != nil {
			return nil, err
		}
		out = append(out, TypedValue{Name: name, Named: true, Type: s.ValueType(), Value: iter.Value().Interface()})
	}
	return out, nil
}

func stringifyMapKey(k reflect.Value) (string, error) {
	if k.Kind() == reflect.String {
		return k.String(), nil
	}
	if tm, ok := k.Interface().(interface{ MarshalText() ([]byte, error) }); ok {
		b, err := tm.MarshalText()
		if err != nil {
			return "", errors.Wrap(err, "signature: marshaling map key")
		}
		return string(b), nil
	}
	return "", errors.Wrapf(ErrUnsupportedMapKey, "cannot stringify map key of type %s", k.Type())
}

func (s *MapSignature) InitContainer(sizeHint int) element.Element { return element.NewNode() }

var _ Signature = (*MapSignature)(nil)
var _ HasPrebuilt = (*MapSignature)(nil)

func setElem(dst reflect.Value, v any) {
	av := reflect.ValueOf(v)
	if !av.IsValid() {
		return
	}
	if av.Type().AssignableTo(dst.Type()) {
		dst.Set(av)
	} else if av.Type().ConvertibleTo(dst.Type()) {
		dst.Set(av.Convert(dst.Type()))
	}
}
