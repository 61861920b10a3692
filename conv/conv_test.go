package conv

import (
	"reflect"
	"testing"
)

func TestConvertNumericNarrowingInRange(t *testing.T) {
	v, err := Convert(int64(42), reflect.TypeOf(int8(0)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Int() != 42 {
		t.Fatalf("expected 42, got %v", v.Interface())
	}
}

func TestConvertNumericOverflow(t *testing.T) {
	_, err := Convert(int64(1000), reflect.TypeOf(int8(0)))
	if err == nil {
		t.Fatalf("expected overflow error")
	}
}

func TestConvertLenientStringToInt(t *testing.T) {
	v, err := ConvertLenient("123", reflect.TypeOf(int(0)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Int() != 123 {
		t.Fatalf("expected 123, got %v", v.Interface())
	}
}

func TestConvertStrictRejectsStringToInt(t *testing.T) {
	_, err := Convert("123", reflect.TypeOf(int(0)))
	if err == nil {
		t.Fatalf("expected error without lenient mode")
	}
}

func TestConvertSignedToUnsignedNegativeRejected(t *testing.T) {
	_, err := Convert(int64(-1), reflect.TypeOf(uint(0)))
	if err == nil {
		t.Fatalf("expected overflow error for negative to unsigned")
	}
}
