package codec

import (
	"bytes"
	"strings"
	"testing"

	"github.com/tigritik/Butylene/element"
)

func TestYAMLDecodePreservesOrder(t *testing.T) {
	in := "zebra: 1\napple: 2\nmango: 3\n"
	e, err := YAML{}.Decode(strings.NewReader(in))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	n, ok := e.(*element.Node)
	if !ok {
		t.Fatalf("expected *element.Node, got %T", e)
	}
	want := []string{"zebra", "apple", "mango"}
	got := n.Keys()
	if len(got) != len(want) {
		t.Fatalf("key count mismatch: %v", got)
	}
	for i, k := range want {
		if got[i] != k {
			t.Fatalf("key order mismatch at %d: want %s got %s", i, k, got[i])
		}
	}
}

func TestYAMLEncodeRoundTrip(t *testing.T) {
	n := element.NewNode()
	n.Set("name", element.NewScalar("bolt"))
	n.Set("items", element.NewList(element.NewScalar(int64(1)), element.NewScalar(int64(2))))

	var buf bytes.Buffer
	if err := (YAML{}).Encode(n, &buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	back, err := (YAML{}).Decode(&buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !element.Equal(n, back) {
		t.Fatalf("round trip mismatch: %+v vs %+v", n, back)
	}
}
