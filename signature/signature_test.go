package signature

import (
	"reflect"
	"testing"

	"github.com/tigritik/Butylene/element"
	"github.com/tigritik/Butylene/token"
)

type Pair struct {
	Strings []string `config:"strings"`
	Value   int      `config:"value"`
	IntSet  []int    `config:"int_set"`
}

func TestFieldSignatureBuildAndObjectData(t *testing.T) {
	sig, err := NewFieldSignature(token.Of[Pair](), false, 0, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	obj, err := sig.Build(nil, []any{[]string{"a", "b"}, 69, []int{1, 2, 3}})
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	p := obj.(*Pair)
	if p.Value != 69 || len(p.Strings) != 2 || len(p.IntSet) != 3 {
		t.Fatalf("unexpected built value: %+v", p)
	}

	data, err := sig.ObjectData(p)
	if err != nil {
		t.Fatalf("object data failed: %v", err)
	}
	if len(data) != 3 {
		t.Fatalf("want 3 typed values, got %d", len(data))
	}
}

func TestConstructorSignatureShapeMixedNamesRejected(t *testing.T) {
	fn := func(a, b int) int { return a + b }
	_, err := NewConstructorSignature(token.Of[int](), fn, []string{"a", ""}, nil, 0)
	if err == nil {
		t.Fatalf("expected error for mixed named/unnamed parameters")
	}
}

func TestSliceSignatureBuildFillsPrebuilt(t *testing.T) {
	sig := NewSliceSignature(token.Of[[]any]())
	pre, err := sig.MakeBuildingObject(element.NewList(element.NewScalar("a"), element.NewScalar("b")))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out, err := sig.Build(pre, []any{"a", "b"})
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	got := out.([]any)
	if len(got) != 2 {
		t.Fatalf("want 2 elements, got %d", len(got))
	}
}

func TestMapSignatureRoundtrip(t *testing.T) {
	sig, err := NewMapSignature(token.Of[map[string]int]())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	obj, err := sig.Build(nil, []any{Entry{Key: "a", Value: 1}, Entry{Key: "b", Value: 2}})
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	m := obj.(map[string]int)
	if m["a"] != 1 || m["b"] != 2 {
		t.Fatalf("unexpected map: %v", m)
	}

	data, err := sig.ObjectData(m)
	if err != nil {
		t.Fatalf("object data failed: %v", err)
	}
	if len(data) != 2 {
		t.Fatalf("want 2 entries, got %d", len(data))
	}
}

func TestArraySignatureRejectsPrebuilt(t *testing.T) {
	sig := NewArraySignature(token.OfType(reflect.TypeOf([3]int{})))
	_, err := sig.Build([3]int{}, nil)
	if err != ErrUnsupportedPrebuilt {
		t.Fatalf("want ErrUnsupportedPrebuilt, got %v", err)
	}
}
