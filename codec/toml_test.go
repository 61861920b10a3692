package codec

import (
	"bytes"
	"strings"
	"testing"

	"github.com/tigritik/Butylene/element"
)

func TestTOMLDecodeBuildsNode(t *testing.T) {
	in := "name = \"bolt\"\ncount = 3\n"
	e, err := TOML{}.Decode(strings.NewReader(in))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	n, ok := e.(*element.Node)
	if !ok {
		t.Fatalf("expected *element.Node, got %T", e)
	}
	if v, _ := n.Get("name"); v.(element.Scalar).Value != "bolt" {
		t.Fatalf("unexpected name: %+v", v)
	}
}

func TestTOMLEncodeRoundTrip(t *testing.T) {
	n := element.NewNode()
	n.Set("name", element.NewScalar("bolt"))
	n.Set("count", element.NewScalar(int64(3)))

	var buf bytes.Buffer
	if err := (TOML{}).Encode(n, &buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	back, err := (TOML{}).Decode(&buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !element.Equal(n, back) {
		t.Fatalf("round trip mismatch: %+v vs %+v", n, back)
	}
}
