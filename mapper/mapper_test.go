package mapper

import (
	"reflect"
	"testing"

	"github.com/tigritik/Butylene/element"
	"github.com/tigritik/Butylene/match"
	"github.com/tigritik/Butylene/token"
)

// TestFlatList models S1: a flat List of scalars decoded into a slice of a
// concrete element type, the simplest shape SliceSignature builds.
func TestFlatList(t *testing.T) {
	list := element.NewList(element.NewScalar(int64(1)), element.NewScalar(int64(2)), element.NewScalar(int64(3)))

	p := NewProcessor(match.NewSource())
	got, err := p.DataFromElement(token.Of[[]int](), list)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ints := got.([]int)
	if len(ints) != 3 || ints[0] != 1 || ints[1] != 2 || ints[2] != 3 {
		t.Fatalf("unexpected result: %+v", ints)
	}
}

// TestSelfReferentialAnyList models S3: a List containing a scalar and a
// reference to itself, decoded as `any` (List<Object> = []any). The scalar
// child must decode into the any slot directly, and the self-reference must
// come back as the slice itself - sharing the same backing storage as the
// outer result - rather than a pointer wrapping it.
func TestSelfReferentialAnyList(t *testing.T) {
	root := element.NewList()
	root.Add(element.NewScalar("a"))
	root.Add(root)

	p := NewProcessor(match.NewSource())
	got, err := p.DataFromElement(token.Of[any](), root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	list, ok := got.([]any)
	if !ok {
		t.Fatalf("expected []any, got %T", got)
	}
	if len(list) != 2 {
		t.Fatalf("want 2 elements, got %d", len(list))
	}
	if list[0] != "a" {
		t.Fatalf("want list[0]==\"a\", got %v", list[0])
	}
	inner, ok := list[1].([]any)
	if !ok {
		t.Fatalf("want list[1] to be []any (the slice itself), got %T", list[1])
	}
	if reflect.ValueOf(list).Pointer() != reflect.ValueOf(inner).Pointer() {
		t.Fatalf("want list[1] to share the outer slice's backing storage")
	}
}

// TestNestedGenerics models S5: a Node whose values are Lists, decoded into
// a map of slices - exercising a generic container nested inside another.
func TestNestedGenerics(t *testing.T) {
	n := element.NewNode()
	n.Set("a", element.NewList(element.NewScalar(int64(1)), element.NewScalar(int64(2))))
	n.Set("b", element.NewList(element.NewScalar(int64(3))))

	p := NewProcessor(match.NewSource())
	got, err := p.DataFromElement(token.Of[map[string][]int](), n)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m := got.(map[string][]int)
	if len(m["a"]) != 2 || m["a"][0] != 1 || m["a"][1] != 2 {
		t.Fatalf("unexpected a: %+v", m["a"])
	}
	if len(m["b"]) != 1 || m["b"][0] != 3 {
		t.Fatalf("unexpected b: %+v", m["b"])
	}
}

// shapeNamed is built through the newShapeNamed constructor, whose second
// argument is NODE-shaped (a widget struct); TestTypeHintRejection (S6)
// feeds it a Scalar in that slot.
type shapeNamed struct {
	Label string
	Inner widget
}

func newShapeNamed(label string, inner widget) shapeNamed {
	return shapeNamed{Label: label, Inner: inner}
}

type widget struct {
	Name string `config:"name"`
}

// TestTypeHintRejection models S6: a candidate whose argument is declared
// NODE-shaped (a struct) must be rejected when the input supplies a Scalar
// for that slot, rather than being built with a zero value.
func TestTypeHintRejection(t *testing.T) {
	source := match.NewSource()
	source.RegisterConstructor(reflect.TypeOf(shapeNamed{}), newShapeNamed, []string{"label", "inner"}, 0)

	n := element.NewNode()
	n.Set("label", element.NewScalar("x"))
	n.Set("inner", element.NewScalar("not a node"))

	p := NewProcessor(source)
	_, err := p.DataFromElement(token.Of[shapeNamed](), n)
	if err == nil {
		t.Fatalf("expected a type-hint mismatch to reject the candidate")
	}
}

// TestConstructorSignatureEndToEnd exercises ConstructorSignature through
// the full matcher/mapper pipeline (not just its shape-validation unit
// test), registering a constructor and decoding a matching Node into it.
func TestConstructorSignatureEndToEnd(t *testing.T) {
	source := match.NewSource()
	source.RegisterConstructor(reflect.TypeOf(shapeNamed{}), newShapeNamed, []string{"label", "inner"}, 0)

	innerNode := element.NewNode()
	innerNode.Set("name", element.NewScalar("bolt"))
	n := element.NewNode()
	n.Set("label", element.NewScalar("x"))
	n.Set("inner", innerNode)

	p := NewProcessor(source)
	got, err := p.DataFromElement(token.Of[shapeNamed](), n)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	shape := got.(shapeNamed)
	if shape.Label != "x" || shape.Inner.Name != "bolt" {
		t.Fatalf("unexpected result: %+v", shape)
	}
}

type Pair struct {
	Strings []string `config:"strings"`
	Value   int      `config:"value"`
	IntSet  []int    `config:"int_set"`
}

// TestDataFromElementBuildsStruct models a plain record build (S2): a Node
// with named children is matched against a field signature by name, with
// per-field type conversion.
func TestDataFromElementBuildsStruct(t *testing.T) {
	n := element.NewNode()
	n.Set("strings", element.NewList(element.NewScalar("a"), element.NewScalar("b")))
	n.Set("value", element.NewScalar(int64(7)))
	n.Set("int_set", element.NewList(element.NewScalar(int64(1)), element.NewScalar(int64(2))))

	p := NewProcessor(match.NewSource())
	got, err := p.DataFromElement(token.Of[Pair](), n)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pair := got.(Pair)
	if pair.Value != 7 || len(pair.Strings) != 2 || len(pair.IntSet) != 2 {
		t.Fatalf("unexpected result: %+v", pair)
	}
}

// TestElementFromDataRoundTrip encodes the struct back into a Node and
// checks its "value" entry against the hand-built Node above (S2, reverse
// direction).
func TestElementFromDataRoundTrip(t *testing.T) {
	p := NewProcessor(match.NewSource())
	pair := Pair{Strings: []string{"a", "b"}, Value: 7, IntSet: []int{1, 2}}
	e, err := p.ElementFromData(pair)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	node, ok := e.(*element.Node)
	if !ok {
		t.Fatalf("expected *element.Node, got %T", e)
	}
	v, ok := node.Get("value")
	if !ok || v.(element.Scalar).Value.(int64) != 7 {
		t.Fatalf("expected value=7, got %+v", v)
	}
}

type Self struct {
	Name string `config:"name"`
	Next *Self  `config:"next"`
}

// TestSelfReferentialPointerField models S4: a Node whose own pointer-typed
// field refers back to itself, requiring the cycle table to hand out a
// prebuilt *Self before Next is decoded.
func TestSelfReferentialPointerField(t *testing.T) {
	root := element.NewNode()
	root.Set("name", element.NewScalar("root"))
	root.Set("next", root)

	p := NewProcessor(match.NewSource())
	got, err := p.DataFromElement(token.Of[*Self](), root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	self := got.(*Self)
	if self.Name != "root" {
		t.Fatalf("expected name=root, got %q", self.Name)
	}
	if self.Next != self {
		t.Fatalf("expected Next to alias the same struct, got a distinct copy")
	}
}

// TestEncodeSelfReferentialPointerField mirrors the previous test in the
// object->element direction: the resulting *element.Node must alias itself
// through its own "next" key, matching element.Equal's cycle handling.
func TestEncodeSelfReferentialPointerField(t *testing.T) {
	self := &Self{Name: "root"}
	self.Next = self

	p := NewProcessor(match.NewSource())
	e, err := p.ElementFromData(self)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	node := e.(*element.Node)
	next, ok := node.Get("next")
	if !ok {
		t.Fatalf("expected a next entry")
	}
	if next.(*element.Node) != node {
		t.Fatalf("expected next to alias the same node")
	}
}

func TestMapRoundTrip(t *testing.T) {
	n := element.NewNode()
	n.Set("a", element.NewScalar(int64(1)))
	n.Set("b", element.NewScalar(int64(2)))

	p := NewProcessor(match.NewSource())
	got, err := p.DataFromElement(token.Of[map[string]int](), n)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m := got.(map[string]int)
	if m["a"] != 1 || m["b"] != 2 {
		t.Fatalf("unexpected map: %+v", m)
	}

	e, err := p.ElementFromData(m)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	back := e.(*element.Node)
	if back.Size() != 2 {
		t.Fatalf("expected 2 entries, got %d", back.Size())
	}
}

func TestNilToNonNilableTypeErrors(t *testing.T) {
	p := NewProcessor(match.NewSource())
	_, err := p.DataFromElement(token.Of[int](), element.NewScalar(nil))
	if err == nil {
		t.Fatalf("expected an error assigning nil to int")
	}
}

func TestSliceOfStructs(t *testing.T) {
	item := element.NewNode()
	item.Set("name", element.NewScalar("x"))
	list := element.NewList(item)

	p := NewProcessor(match.NewSource())
	got, err := p.DataFromElement(token.Of[[]Self](), list)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	items := got.([]Self)
	if len(items) != 1 || items[0].Name != "x" {
		t.Fatalf("unexpected result: %+v", items)
	}
}

func TestNormalizeBuiltDereferencesPointer(t *testing.T) {
	type box struct{ N int }
	p := &box{N: 3}
	got, err := normalizeBuilt(p, reflect.TypeOf(box{}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.(box).N != 3 {
		t.Fatalf("expected dereferenced box, got %+v", got)
	}
}
