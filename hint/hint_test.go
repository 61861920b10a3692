package hint

import (
	"reflect"
	"testing"

	"github.com/tigritik/Butylene/element"
)

type record struct {
	Name string
}

func TestClassify(t *testing.T) {
	cases := []struct {
		v    any
		want Classification
	}{
		{[]string{}, LIST},
		{map[string]int{}, NODE},
		{0, SCALAR},
		{"s", SCALAR},
		{record{}, NODE},
	}
	for _, c := range cases {
		got := Classify(reflect.TypeOf(c.v))
		if got != c.want {
			t.Errorf("Classify(%T) = %v, want %v", c.v, got, c.want)
		}
	}
}

func TestAssignableRejectsScalarForNode(t *testing.T) {
	target := reflect.TypeOf(record{})
	if Assignable(element.NewScalar("s"), target) {
		t.Fatalf("expected scalar child to be rejected against a NODE target")
	}
}

func TestAssignableNilToNonPrimitive(t *testing.T) {
	var p *int
	target := reflect.TypeOf(p)
	if !Assignable(element.NewScalar(nil), target) {
		t.Fatalf("expected nil scalar assignable to pointer target")
	}
}

func TestAssignableNumericCrossType(t *testing.T) {
	target := reflect.TypeOf(float64(0))
	if !Assignable(element.NewScalar(int64(3)), target) {
		t.Fatalf("expected int64 scalar assignable to float64 target")
	}
}
