package signature

import (
	"reflect"

	"github.com/pkg/errors"

	"github.com/tigritik/Butylene/element"
	"github.com/tigritik/Butylene/hint"
	"github.com/tigritik/Butylene/token"
)

// ConstructorSignature builds a value by invoking a captured Go function
// (the "record-like" construction sub-mode of SPEC_FULL.md §4.2). It never
// supports prebuilt: a function call cannot be handed a partially-built
// result to fill in, so a cycle that needs this signature to be its own
// ancestor is unrepresentable and surfaces as ErrCycleRequiresPrebuilt from
// the mapper.
type ConstructorSignature struct {
	ret      token.Token
	fn       reflect.Value
	params   []Argument
	structTy reflect.Type // for ObjectData field lookup by parameter name
	priority int
}

// NewConstructorSignature captures fn (func(args...) T or func(args...) (T, error))
// as the build recipe for t. names, when non-nil, must have one entry per
// parameter, either all non-empty or all empty (mixing named and unnamed
// parameters is an error, reported eagerly as ErrSignatureShape).
// Parameters keep the function's own order. structTy is used by ObjectData
// to read back fields whose config name equals the parameter name.
func NewConstructorSignature(t token.Token, fn any, names []string, structTy reflect.Type, priority int) (*ConstructorSignature, error) {
	fv := reflect.ValueOf(fn)
	if fv.Kind() != reflect.Func {
		return nil, errors.Wrap(ErrSignatureShape, "constructor signature requires a function value")
	}
	ft := fv.Type()
	if ft.NumOut() < 1 || ft.NumOut() > 2 {
		return nil, errors.Wrap(ErrSignatureShape, "constructor must return (T) or (T, error)")
	}
	if names != nil {
		if len(names) != ft.NumIn() {
			return nil, errors.Wrap(ErrSignatureShape, "constructor name count does not match parameter count")
		}
		emptyCount := 0
		for _, n := range names {
			if n == "" {
				emptyCount++
			}
		}
		if emptyCount != 0 && emptyCount != len(names) {
			return nil, errors.Wrap(ErrSignatureShape, "constructor parameters must be all-named or all-unnamed")
		}
	}
	named := names != nil && len(names) > 0 && names[0] != ""
	params := make([]Argument, ft.NumIn())
	for i := 0; i < ft.NumIn(); i++ {
		var name string
		if named {
			name = names[i]
		}
		params[i] = Argument{Name: name, Named: named, Type: token.OfType(ft.In(i))}
	}
	return &ConstructorSignature{ret: t, fn: fv, params: params, structTy: structTy, priority: priority}, nil
}

func (s *ConstructorSignature) ReturnType() token.Token { return s.ret }
func (s *ConstructorSignature) Priority() int           { return s.priority }
func (s *ConstructorSignature) Arguments() []Argument   { return s.params }
func (s *ConstructorSignature) MatchesArgumentNames() bool {
	return len(s.params) > 0 && s.params[0].Named
}
func (s *ConstructorSignature) MatchesTypeHints() bool { return true }

func (s *ConstructorSignature) Length(e element.Element) (int, bool) {
	return len(s.params), false
}

func (s *ConstructorSignature) SupportsPrebuilt() bool { return false }

func (s *ConstructorSignature) Build(prebuilt any, args []any) (any, error) {
	if prebuilt != nil {
		return nil, ErrUnsupportedPrebuilt
	}
	if len(args) != len(s.params) {
		return nil, errors.Errorf("signature: constructor for %s expects %d args, got %d", s.ret, len(s.params), len(args))
	}
	in := make([]reflect.Value, len(args))
	ft := s.fn.Type()
	for i, a := range args {
		pt := ft.In(i)
		if a == nil {
			in[i] = reflect.Zero(pt)
			continue
		}
		av := reflect.ValueOf(a)
		if av.Type().AssignableTo(pt) {
			in[i] = av
		} else if av.Type().ConvertibleTo(pt) {
			in[i] = av.Convert(pt)
		} else {
			return nil, errors.Errorf("signature: constructor arg %d: cannot assign %s to %s", i, av.Type(), pt)
		}
	}
	out := s.fn.Call(in)
	if len(out) == 2 && !out[1].IsNil() {
		return nil, out[1].Interface().(error)
	}
	return out[0].Interface(), nil
}

func (s *ConstructorSignature) ObjectData(obj any) ([]TypedValue, error) {
	v := reflect.ValueOf(obj)
	for v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	out := make([]TypedValue, len(s.params))
	for i, p := range s.params {
		var val any
		if v.IsValid() && v.Kind() == reflect.Struct && p.Name != "" {
			if fv := v.FieldByName(exportedName(p.Name, s.structTy, i)); fv.IsValid() {
				val = fv.Interface()
			}
		}
		out[i] = TypedValue{Name: p.Name, Named: p.Named, Type: p.Type, Value: val}
	}
	return out, nil
}

// exportedName resolves parameter name p to the struct field Go-name that
// declares it, matching p against each field's config name (its
// config:"name" tag override, or else its Go name in snake_case). It
// returns "" when no field matches.
func exportedName(p string, structTy reflect.Type, paramIdx int) string {
	if structTy == nil {
		return ""
	}
	for i := 0; i < structTy.NumField(); i++ {
		f := structTy.Field(i)
		tag := ParseFieldTag(f)
		if tag.Name == p {
			return f.Name
		}
	}
	return ""
}

func (s *ConstructorSignature) InitContainer(sizeHint int) element.Element {
	if s.MatchesArgumentNames() {
		return element.NewNode()
	}
	return element.NewList()
}

func (s *ConstructorSignature) PreferredContainerShape() hint.Classification {
	if s.MatchesArgumentNames() {
		return hint.NODE
	}
	return hint.LIST
}

var _ Signature = (*ConstructorSignature)(nil)
