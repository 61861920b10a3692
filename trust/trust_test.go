package trust

import (
	"testing"

	"github.com/tigritik/Butylene/element"
)

func testRoot() element.Element {
	n := element.NewNode()
	n.Set("name", element.NewScalar("bolt"))
	n.Set("count", element.NewScalar(int64(3)))
	return n
}

func TestDigestIsStableAcrossKeyOrder(t *testing.T) {
	a := element.NewNode()
	a.Set("name", element.NewScalar("bolt"))
	a.Set("count", element.NewScalar(int64(3)))

	b := element.NewNode()
	b.Set("count", element.NewScalar(int64(3)))
	b.Set("name", element.NewScalar("bolt"))

	if Digest(a) != Digest(b) {
		t.Fatalf("expected digest to be independent of Node insertion order")
	}
}

func TestSignAndVerifyRoundTrip(t *testing.T) {
	priv, err := KeyForEnvironment([]byte("a sufficiently long seed value"), "staging")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	root := testRoot()
	sig, err := Sign(root, priv)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := Verify(root, sig, priv.PubKey()); err != nil {
		t.Fatalf("expected signature to verify: %v", err)
	}
}

func TestVerifyRejectsTamperedBundle(t *testing.T) {
	priv, err := KeyForEnvironment([]byte("a sufficiently long seed value"), "prod")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	root := testRoot()
	sig, err := Sign(root, priv)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tampered := testRoot()
	tampered.(*element.Node).Set("count", element.NewScalar(int64(4)))

	if err := Verify(tampered, sig, priv.PubKey()); err == nil {
		t.Fatalf("expected tampered bundle to fail verification")
	}
}

func TestKeyForEnvironmentIsDeterministic(t *testing.T) {
	seed := []byte("a sufficiently long seed value")
	a, err := KeyForEnvironment(seed, "dev")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := KeyForEnvironment(seed, "dev")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !a.PubKey().IsEqual(b.PubKey()) {
		t.Fatalf("expected same environment+seed to derive the same key")
	}
}

func TestKeyForEnvironmentRejectsUnknownEnvironment(t *testing.T) {
	_, err := KeyForEnvironment([]byte("a sufficiently long seed value"), "sandbox")
	if err == nil {
		t.Fatalf("expected an error for an unregistered environment")
	}
}
