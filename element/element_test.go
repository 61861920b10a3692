package element

import "testing"

func TestListIdentityAcrossAppend(t *testing.T) {
	l := NewList(NewScalar("a"))
	l.Add(Element(l))
	l.Add(Element(l))
	l.Add(NewScalar(int64(1)))

	if l.Size() != 4 {
		t.Fatalf("want size 4, got %d", l.Size())
	}
	if l.Get(1) != Element(l) || l.Get(2) != Element(l) {
		t.Fatalf("self-reference not preserved by identity")
	}
}

func TestNodeInsertionOrder(t *testing.T) {
	n := NewNode()
	n.Set("b", NewScalar(int64(1)))
	n.Set("a", NewScalar(int64(2)))
	n.Set("b", NewScalar(int64(3))) // replace, must not move position

	got := n.Keys()
	want := []string{"b", "a"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("keys = %v, want %v", got, want)
	}
	v, _ := n.Get("b")
	if v.(Scalar).Value != int64(3) {
		t.Fatalf("replace did not update value")
	}
}

func TestEqualSelfReferentialList(t *testing.T) {
	a := NewList(NewScalar("v"))
	a.Add(Element(a))
	b := NewList(NewScalar("v"))
	b.Add(Element(b))

	if !Equal(a, b) {
		t.Fatalf("expected structurally equal cyclic lists to be Equal")
	}
}

func TestEqualScalarNormalization(t *testing.T) {
	if !Equal(NewScalar(int64(3)), NewScalar(float64(3))) {
		t.Fatalf("expected numeric scalars to normalize equal")
	}
}

func TestNodeSelfReference(t *testing.T) {
	n := NewNode()
	n.Set("string", NewScalar("v"))
	n.Set("bool", NewScalar(true))
	n.Set("selfReference", Element(n))

	v, ok := n.Get("selfReference")
	if !ok || v != Element(n) {
		t.Fatalf("self reference not preserved")
	}
}
