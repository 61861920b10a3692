package signature

import (
	"reflect"
	"sort"
	"unsafe"

	"github.com/pkg/errors"

	"github.com/tigritik/Butylene/element"
	"github.com/tigritik/Butylene/hint"
	"github.com/tigritik/Butylene/token"
)

// fieldSlot is one resolved struct field participating in a FieldSignature,
// modeled on micheline/typeinfo.go's fieldInfo.
type fieldSlot struct {
	idx   []int
	tag   FieldTag
	typ   reflect.Type
	order int
}

// FieldSignature builds a value of a struct type by allocating it (via a
// registered zero-arg factory or reflect.New) and then assigning its
// fields. It is the "fields-as-constructor" sub-mode described in
// SPEC_FULL.md §4.2; the record-like sub-mode is ConstructorSignature.
type FieldSignature struct {
	ret      token.Token
	structTy reflect.Type
	fields   []fieldSlot
	widen    bool
	priority int
	newFunc  func() reflect.Value
}

// NewFieldSignature builds a FieldSignature for structTy. widen opts into
// reading/writing unexported fields (via unsafe, since Go struct tags
// cannot be placed "on the type" the way a class annotation can - the
// widen decision is a registration, not a tag, matching
// match.Source.RegisterWiden).
func NewFieldSignature(t token.Token, widen bool, priority int, newFunc func() reflect.Value) (*FieldSignature, error) {
	structTy := t.Raw()
	for structTy.Kind() == reflect.Ptr {
		structTy = structTy.Elem()
	}
	if structTy.Kind() != reflect.Struct {
		return nil, errors.Wrapf(ErrSignatureShape, "field signature requires a struct type, got %s", structTy.Kind())
	}
	fields, err := collectFields(structTy, widen, nil)
	if err != nil {
		return nil, err
	}
	sortFields(fields)
	return &FieldSignature{ret: t, structTy: structTy, fields: fields, widen: widen, priority: priority, newFunc: newFunc}, nil
}

func collectFields(t reflect.Type, widen bool, prefix []int) ([]fieldSlot, error) {
	var out []fieldSlot
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		idx := append(append([]int{}, prefix...), i)
		if f.Anonymous {
			et := f.Type
			for et.Kind() == reflect.Ptr {
				et = et.Elem()
			}
			if et.Kind() == reflect.Struct {
				inner, err := collectFields(et, widen, idx)
				if err != nil {
					return nil, err
				}
				out = append(out, inner...)
				continue
			}
		}
		if f.PkgPath != "" && !widen {
			continue // unexported field, widen not opted in
		}
		tag := ParseFieldTag(f)
		if tag.Exclude && !tag.Include {
			continue
		}
		out = append(out, fieldSlot{idx: idx, tag: tag, typ: f.Type, order: tag.Order})
	}
	return out, nil
}

func sortFields(fields []fieldSlot) {
	hasOrder := false
	for _, f := range fields {
		if f.tag.HasOrder {
			hasOrder = true
			break
		}
	}
	if !hasOrder {
		return
	}
	sort.SliceStable(fields, func(i, j int) bool { return fields[i].order < fields[j].order })
}

func (s *FieldSignature) ReturnType() token.Token { return s.ret }
func (s *FieldSignature) Priority() int           { return s.priority }

func (s *FieldSignature) Arguments() []Argument {
	args := make([]Argument, len(s.fields))
	for i, f := range s.fields {
		args[i] = Argument{Name: f.tag.Name, Named: true, Type: token.OfType(f.typ), NoFail: f.tag.NoFail}
	}
	return args
}

func (s *FieldSignature) MatchesArgumentNames() bool { return true }
func (s *FieldSignature) MatchesTypeHints() bool     { return true }

// Length is unbounded: a Node need not carry every field's key (an absent
// key builds that field's zero value, the same default-on-omission
// behavior as encoding/json), so the element's own key count cannot be
// checked against len(s.fields) up front.
func (s *FieldSignature) Length(e element.Element) (int, bool) {
	return 0, true
}

func (s *FieldSignature) SupportsPrebuilt() bool { return true }

func (s *FieldSignature) MakeBuildingObject(e element.Element) (any, error) {
	v := s.alloc()
	return v.Addr().Interface(), nil
}

func (s *FieldSignature) alloc() reflect.Value {
	if s.newFunc != nil {
		v := s.newFunc()
		for v.Kind() == reflect.Ptr {
			v = v.Elem()
		}
		return v
	}
	return reflect.New(s.structTy).Elem()
}

func (s *FieldSignature) Build(prebuilt any, args []any) (any, error) {
	if len(args) != len(s.fields) {
		return nil, errors.Errorf("signature: field signature for %s expects %d args, got %d", s.ret, len(s.fields), len(args))
	}
	var v reflect.Value
	if prebuilt != nil {
		pv := reflect.ValueOf(prebuilt)
		if pv.Kind() != reflect.Ptr {
			return nil, errors.Errorf("signature: prebuilt for %s must be a pointer", s.ret)
		}
		v = pv.Elem()
	} else {
		v = s.alloc()
	}
	for i, f := range s.fields {
		dst := s.fieldValue(v, f)
		if !dst.CanSet() {
			continue
		}
		if args[i] == nil {
			continue
		}
		av := reflect.ValueOf(args[i])
		if av.Type().AssignableTo(dst.Type()) {
			dst.Set(av)
		} else if av.Type().ConvertibleTo(dst.Type()) {
			dst.Set(av.Convert(dst.Type()))
		} else {
			return nil, errors.Errorf("signature: field %s: cannot assign %s to %s", f.tag.Name, av.Type(), dst.Type())
		}
	}
	return v.Addr().Interface(), nil
}

// fieldValue returns the addressable reflect.Value for slot f within v,
// using unsafe.Pointer to reach unexported fields when widen is set
// (reflect.Value.Set refuses unexported fields obtained the ordinary way).
func (s *FieldSignature) fieldValue(v reflect.Value, f fieldSlot) reflect.Value {
	cur := v
	for _, i := range f.idx {
		cur = cur.Field(i)
	}
	if s.widen && !cur.CanSet() && cur.CanAddr() {
		cur = reflect.NewAt(cur.Type(), unsafe.Pointer(cur.UnsafeAddr())).Elem()
	}
	return cur
}

func (s *FieldSignature) ObjectData(obj any) ([]TypedValue, error) {
	v := reflect.ValueOf(obj)
	for v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil, errors.Errorf("signature: field signature ObjectData expects struct, got %s", v.Kind())
	}
	out := make([]TypedValue, len(s.fields))
	for i, f := range s.fields {
		fv := s.fieldValue(v, f)
		out[i] = TypedValue{Name: f.tag.Name, Named: true, Type: token.OfType(f.typ), Value: safeInterface(fv), NoFail: f.tag.NoFail}
	}
	return out, nil
}

func safeInterface(v reflect.Value) any {
	if !v.CanInterface() {
		if v.CanAddr() {
			v = reflect.NewAt(v.Type(), unsafe.Pointer(v.UnsafeAddr())).Elem()
		}
	}
	if !v.IsValid() || !v.CanInterface() {
		return nil
	}
	return v.Interface()
}

func (s *FieldSignature) InitContainer(sizeHint int) element.Element {
	return element.NewNode()
}

func (s *FieldSignature) PreferredContainerShape() hint.Classification { return hint.NODE }

var _ Signature = (*FieldSignature)(nil)
var _ HasPrebuilt = (*FieldSignature)(nil)
