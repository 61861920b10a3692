// Copyright (c) 2024 Blockwatch Data Inc.
// Author: alex@blockwatch.cc

// Package conv implements the scalar conversion rules used when a
// signature argument's declared type does not exactly match an element's
// Go value: numeric widening/narrowing with overflow detection, and,
// under `config:"nofail"`, string<->number coercion. Grounded on the
// reflect.Value.Convert/OverflowInt/OverflowUint/OverflowFloat family used
// throughout micheline/unmarshal.go's field assignment path, generalized
// from that file's type-specific switch into one reusable helper.
package conv

import (
	"math"
	"reflect"
	"strconv"

	"github.com/pkg/errors"
)

// Convert coerces v into target's type. Numeric cross-kind conversions
// always run an overflow check, wrapping ErrNumericOverflow on failure.
// Convert never coerces strings; ConvertLenient (used for fields tagged
// config:"nofail") additionally attempts string<->numeric and
// string<->bool coercions via strconv before giving up.
func Convert(v any, target reflect.Type) (reflect.Value, error) {
	return convert(v, target, false)
}

// ConvertLenient is Convert with nofail-style string<->scalar coercion
// enabled.
func ConvertLenient(v any, target reflect.Type) (reflect.Value, error) {
	return convert(v, target, true)
}

func convert(v any, target reflect.Type, lenient bool) (reflect.Value, error) {
	if v == nil {
		return reflect.Zero(target), nil
	}
	val := reflect.ValueOf(v)

	if val.Type().AssignableTo(target) {
		return val, nil
	}

	if val.Type().ConvertibleTo(target) {
		if isNumericKind(val.Kind()) && isNumericKind(target.Kind()) {
			return convertNumeric(val, target)
		}
		return val.Convert(target), nil
	}

	if lenient {
		if cv, ok := convertLenientString(val, target); ok {
			return cv, nil
		}
	}

	return reflect.Value{}, &ConversionError{Value: v, To: target.String(), Err: errors.New("not convertible")}
}

func isNumericKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func convertNumeric(val reflect.Value, target reflect.Type) (reflect.Value, error) {
	switch {
	case isSignedInt(val.Kind()) && isSignedInt(target.Kind()):
		cv := val.Convert(target)
		if cv.OverflowInt(val.Int()) {
			return reflect.Value{}, &ConversionError{Value: val.Interface(), To: target.String(), Err: ErrNumericOverflow}
		}
		return cv, nil
	case isUnsignedInt(val.Kind()) && isUnsignedInt(target.Kind()):
		cv := val.Convert(target)
		if cv.OverflowUint(val.Uint()) {
			return reflect.Value{}, &ConversionError{Value: val.Interface(), To: target.String(), Err: ErrNumericOverflow}
		}
		return cv, nil
	case isFloat(val.Kind()) && isFloat(target.Kind()):
		cv := val.Convert(target)
		if cv.OverflowFloat(val.Float()) {
			return reflect.Value{}, &ConversionError{Value: val.Interface(), To: target.String(), Err: ErrNumericOverflow}
		}
		return cv, nil
	case isSignedInt(val.Kind()) && isUnsignedInt(target.Kind()):
		if val.Int() < 0 {
			return reflect.Value{}, &ConversionError{Value: val.Interface(), To: target.String(), Err: ErrNumericOverflow}
		}
		cv := val.Convert(target)
		if cv.OverflowUint(uint64(val.Int())) {
			return reflect.Value{}, &ConversionError{Value: val.Interface(), To: target.String(), Err: ErrNumericOverflow}
		}
		return cv, nil
	case isUnsignedInt(val.Kind()) && isSignedInt(target.Kind()):
		cv := val.Convert(target)
		if cv.OverflowInt(int64(val.Uint())) {
			return reflect.Value{}, &ConversionError{Value: val.Interface(), To: target.String(), Err: ErrNumericOverflow}
		}
		return cv, nil
	case isFloat(val.Kind()) && (isSignedInt(target.Kind()) || isUnsignedInt(target.Kind())):
		// The float fits when its truncated value survives the conversion
		// to the target integer type unchanged.
		f := math.Trunc(val.Float())
		cv := val.Convert(target)
		var back float64
		if isSignedInt(target.Kind()) {
			back = float64(cv.Int())
		} else {
			back = float64(cv.Uint())
		}
		if back != f {
			return reflect.Value{}, &ConversionError{Value: val.Interface(), To: target.String(), Err: ErrNumericOverflow}
		}
		return cv, nil
	default:
		// int->float: every integer value lies inside the float32/float64
		// range, so the conversion can round but never overflow.
		return val.Convert(target), nil
	}
}

func isSignedInt(k reflect.Kind) bool {
	return k >= reflect.Int && k <= reflect.Int64
}

func isUnsignedInt(k reflect.Kind) bool {
	return k >= reflect.Uint && k <= reflect.Uintptr
}

func isFloat(k reflect.Kind) bool {
	return k == reflect.Float32 || k == reflect.Float64
}

func convertLenientString(val reflect.Value, target reflect.Type) (reflect.Value, bool) {
	switch {
	case val.Kind() == reflect.String && isSignedInt(target.Kind()):
		n, err := strconv.ParseInt(val.String(), 10, 64)
		if err != nil {
			return reflect.Value{}, false
		}
		cv := reflect.New(target).Elem()
		if cv.OverflowInt(n) {
			return reflect.Value{}, false
		}
		cv.SetInt(n)
		return cv, true
	case val.Kind() == reflect.String && isUnsignedInt(target.Kind()):
		n, err := strconv.ParseUint(val.String(), 10, 64)
		if err != nil {
			return reflect.Value{}, false
		}
		cv := reflect.New(target).Elem()
		if cv.OverflowUint(n) {
			return reflect.Value{}, false
		}
		cv.SetUint(n)
		return cv, true
	case val.Kind() == reflect.String && isFloat(target.Kind()):
		f, err := strconv.ParseFloat(val.String(), 64)
		if err != nil {
			return reflect.Value{}, false
		}
		cv := reflect.New(target).Elem()
		if cv.OverflowFloat(f) {
			return reflect.Value{}, false
		}
		cv.SetFloat(f)
		return cv, true
	case val.Kind() == reflect.String && target.Kind() == reflect.Bool:
		b, err := strconv.ParseBool(val.String())
		if err != nil {
			return reflect.Value{}, false
		}
		return reflect.ValueOf(b), true
	case isNumericKind(val.Kind()) && target.Kind() == reflect.String:
		return reflect.ValueOf(formatNumeric(val)), true
	case val.Kind() == reflect.Bool && target.Kind() == reflect.String:
		return reflect.ValueOf(strconv.FormatBool(val.Bool())), true
	}
	return reflect.Value{}, false
}

func formatNumeric(val reflect.Value) string {
	switch {
	case isSignedInt(val.Kind()):
		return strconv.FormatInt(val.Int(), 10)
	case isUnsignedInt(val.Kind()):
		return strconv.FormatUint(val.Uint(), 10)
	case isFloat(val.Kind()):
		return strconv.FormatFloat(val.Float(), 'g', -1, 64)
	default:
		return ""
	}
}
