// Copyright (c) 2024 Blockwatch Data Inc.
// Author: alex@blockwatch.cc

// Package hint classifies Go types into SCALAR/LIST/NODE and tests whether
// an element's runtime shape is assignable to a classified target. It is
// total: every reflect.Type gets a classification, generalizing
// micheline/typeinfo.go's mapGoTypeToPrimType from Micheline opcodes to
// the three-way element classification this spec uses.
package hint

import (
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/tigritik/Butylene/element"
)

// Classification is SCALAR, LIST or NODE.
type Classification int

const (
	SCALAR Classification = iota
	LIST
	NODE
)

func (c Classification) String() string {
	switch c {
	case SCALAR:
		return "SCALAR"
	case LIST:
		return "LIST"
	case NODE:
		return "NODE"
	default:
		return "UNKNOWN"
	}
}

// EnumSpec describes a registered enum-like scalar: a type whose values are
// matched by string.
type EnumSpec struct {
	String          func(v reflect.Value) string
	Parse           func(s string) (reflect.Value, error)
	CaseInsensitive bool
}

var (
	mu         sync.RWMutex
	enumByType = make(map[reflect.Type]EnumSpec)
)

// RegisterEnum registers a type as a string-matched scalar. Matching is
// case-sensitive unless spec.CaseInsensitive is set.
func RegisterEnum(t reflect.Type, spec EnumSpec) {
	mu.Lock()
	defer mu.Unlock()
	enumByType[t] = spec
}

// CaseInsensitive marks an enum registration as case-insensitive.
const CaseInsensitive = true

func lookupEnum(t reflect.Type) (EnumSpec, bool) {
	mu.RLock()
	defer mu.RUnlock()
	s, ok := enumByType[t]
	return s, ok
}

// ParseEnum parses s into a value of t using t's registered EnumSpec. ok is
// false if t has no registration.
func ParseEnum(t reflect.Type, s string) (v reflect.Value, ok bool, err error) {
	spec, ok := lookupEnum(t)
	if !ok {
		return reflect.Value{}, false, nil
	}
	if spec.CaseInsensitive {
		s = strings.ToLower(s)
	}
	v, err = spec.Parse(s)
	return v, true, err
}

// FormatEnum renders v using its type's registered EnumSpec. ok is false if
// v's type has no registration.
func FormatEnum(v reflect.Value) (s string, ok bool) {
	spec, ok := lookupEnum(v.Type())
	if !ok {
		return "", false
	}
	return spec.String(v), true
}

var timeType = reflect.TypeOf(time.Time{})

// Classify classifies a reflect.Type per the rules in SPEC_FULL.md §4.1:
//  1. array/slice -> LIST
//  2. map kind -> NODE
//  3. a type with a registered scalar handler (bool, numeric widths,
//     string, time.Time, registered enums) -> SCALAR
//  4. otherwise -> NODE (treated as a record)
func Classify(t reflect.Type) Classification {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Slice, reflect.Array:
		if t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Uint8 {
			// []byte is conventionally a scalar (string-like) value.
			return SCALAR
		}
		return LIST
	case reflect.Map:
		return NODE
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64,
		reflect.String:
		return SCALAR
	case reflect.Struct:
		if t == timeType {
			return SCALAR
		}
		return NODE
	default:
		if _, ok := lookupEnum(t); ok {
			return SCALAR
		}
		return NODE
	}
}

// Assignable reports whether e's runtime classification is compatible with
// t's classification, per the tie-break rules: a Scalar(nil) is assignable
// to any non-primitive target, and numeric scalars are mutually assignable
// across numeric targets (narrowing is checked at conversion time, not
// here).
func Assignable(e element.Element, t reflect.Type) bool {
	target := Classify(t)
	switch v := e.(type) {
	case element.Scalar:
		if target != SCALAR {
			return v.IsNil() && isNilable(t)
		}
		if v.IsNil() {
			return true
		}
		return scalarKindCompatible(v.Value, t)
	case *element.List:
		return target == LIST
	case *element.Node:
		return target == NODE
	default:
		return false
	}
}

func isNilable(t reflect.Type) bool {
	for t.Kind() == reflect.Ptr {
		return true
	}
	switch t.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Slice, reflect.Map, reflect.Chan, reflect.Func:
		return true
	default:
		return false
	}
}

func scalarKindCompatible(v any, t reflect.Type) bool {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	switch v.(type) {
	case int64, int, float64:
		switch t.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
			reflect.Float32, reflect.Float64:
			return true
		}
		if _, ok := lookupEnum(t); ok {
			return true
		}
		return false
	case string:
		if t.Kind() == reflect.String {
			return true
		}
		if _, ok := lookupEnum(t); ok {
			return true
		}
		return t == timeType
	case bool:
		return t.Kind() == reflect.Bool
	default:
		return false
	}
}
