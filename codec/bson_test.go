package codec

import (
	"bytes"
	"testing"

	"github.com/tigritik/Butylene/element"
)

func TestBSONEncodeRoundTrip(t *testing.T) {
	n := element.NewNode()
	n.Set("name", element.NewScalar("bolt"))
	n.Set("count", element.NewScalar(int64(3)))

	var buf bytes.Buffer
	if err := (BSON{}).Encode(n, &buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	back, err := (BSON{}).Decode(&buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !element.Equal(n, back) {
		t.Fatalf("round trip mismatch: %+v vs %+v", n, back)
	}
}

func TestBSONPreservesFieldOrder(t *testing.T) {
	n := element.NewNode()
	n.Set("zebra", element.NewScalar(int64(1)))
	n.Set("apple", element.NewScalar(int64(2)))

	var buf bytes.Buffer
	if err := (BSON{}).Encode(n, &buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	back, err := (BSON{}).Decode(&buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := back.(*element.Node).Keys()
	if len(got) != 2 || got[0] != "zebra" || got[1] != "apple" {
		t.Fatalf("expected field order preserved, got %v", got)
	}
}
