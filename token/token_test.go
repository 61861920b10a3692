package token

import "testing"

func TestNameDistinguishesGenericInstantiations(t *testing.T) {
	strs := Of[[]string]()
	ints := Of[[]int]()
	if strs.Name() == ints.Name() {
		t.Fatalf("expected distinct names, got %q for both", strs.Name())
	}
}

func TestParameterizeSlice(t *testing.T) {
	elem := Of[string]()
	sl, err := elem.Parameterize(elem)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sl.Raw().Kind().String() != "slice" {
		t.Fatalf("want slice kind, got %v", sl.Raw().Kind())
	}
}

func TestActualTypeArgumentsMap(t *testing.T) {
	m := Of[map[string]int]()
	args := m.ActualTypeArguments()
	if len(args) != 2 {
		t.Fatalf("want 2 args, got %d", len(args))
	}
	if args[0].Name() != "string" || args[1].Name() != "int" {
		t.Fatalf("unexpected args: %v %v", args[0], args[1])
	}
}
