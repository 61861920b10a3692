package match

import (
	"encoding/hex"
	"fmt"
	"hash"
	"sort"

	"golang.org/x/crypto/blake2b"

	"github.com/tigritik/Butylene/element"
)

// digest computes a short, stable content digest of e, used to identify an
// element in error messages without printing a potentially huge tree. It
// walks Node keys in sorted order (not insertion order) so that the digest
// only depends on content, matching the "digest of the element" requirement
// from the distilled spec's NoMatchingSignature error. Self-references stop
// the walk rather than looping forever.
func digest(e element.Element) string {
	h, _ := blake2b.New256(nil)
	walkDigest(h, e, map[any]bool{})
	return hex.EncodeToString(h.Sum(nil))[:16]
}

func walkDigest(h hash.Hash, e element.Element, seen map[any]bool) {
	if e == nil {
		h.Write([]byte("nil"))
		return
	}
	switch v := e.(type) {
	case element.Scalar:
		fmt.Fprintf(h, "s:%v", v.Value)
	case *element.List:
		if seen[v] {
			h.Write([]byte("cyclelist"))
			return
		}
		seen[v] = true
		h.Write([]byte("["))
		for _, item := range v.Items() {
			walkDigest(h, item, seen)
		}
		h.Write([]byte("]"))
	case *element.Node:
		if seen[v] {
			h.Write([]byte("cyclenode"))
			return
		}
		seen[v] = true
		keys := append([]string(nil), v.Keys()...)
		sort.Strings(keys)
		h.Write([]byte("{"))
		for _, k := range keys {
			val, _ := v.Get(k)
			h.Write([]byte(k))
			h.Write([]byte(":"))
			walkDigest(h, val, seen)
		}
		h.Write([]byte("}"))
	}
}

// describeShape renders a one-line human shape description of e, used on
// the "actual" side of the NoMatchingSignatureError diff.
func describeShape(e element.Element) string {
	switch v := e.(type) {
	case element.Scalar:
		return fmt.Sprintf("scalar(%T)", v.Value)
	case *element.List:
		return fmt.Sprintf("list[%d]", v.Size())
	case *element.Node:
		keys := append([]string(nil), v.Keys()...)
		sort.Strings(keys)
		return fmt.Sprintf("node{%v}", keys)
	default:
		return "unknown"
	}
}
