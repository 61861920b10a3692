package resolver

import (
	"reflect"
	"testing"

	"github.com/tigritik/Butylene/token"
)

type abstractThing interface{ Name() string }
type concreteThing struct{}

func (concreteThing) Name() string { return "concrete" }

func TestResolveReturnsConcreteWhenRegistered(t *testing.T) {
	r := NewRegistry()
	abstract := token.OfType(reflect.TypeOf((*abstractThing)(nil)).Elem())
	concrete := token.OfType(reflect.TypeOf(concreteThing{}))

	r.Register(abstract, concrete)

	if !r.Has(abstract) {
		t.Fatalf("expected Has to report registration")
	}
	got := r.Resolve(abstract)
	if got.Raw() != concrete.Raw() {
		t.Fatalf("expected resolve to yield concrete type, got %s", got)
	}
}

func TestResolveUnregisteredIsIdentity(t *testing.T) {
	r := NewRegistry()
	tok := token.OfType(reflect.TypeOf(42))
	if r.Has(tok) {
		t.Fatalf("expected no registration")
	}
	if r.Resolve(tok).Raw() != tok.Raw() {
		t.Fatalf("expected identity resolution for unregistered type")
	}
}
