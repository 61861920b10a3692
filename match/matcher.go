package match

import (
	"github.com/tigritik/Butylene/element"
	"github.com/tigritik/Butylene/hint"
	"github.com/tigritik/Butylene/signature"
	"github.com/tigritik/Butylene/token"
)

// SignatureMatcher chooses among the candidate signatures known for one
// target type, implementing the algorithm in SPEC_FULL.md §4.3.
type SignatureMatcher struct {
	sigs   []signature.Signature // sorted by descending Priority(), stable
	source *Source
}

// MatchingSignature is the result of a successful match: the chosen
// signature plus, in element mode, the ordered child elements to recurse
// into, or, in object mode, the ordered typed values read off the object.
type MatchingSignature struct {
	Sig      signature.Signature
	Children []element.Element
	Typed    []signature.TypedValue
}

// Match resolves a candidate for target. Exactly one of e/obj must be
// non-nil: e selects element mode (deserialization), obj selects object
// mode (serialization).
func (m *SignatureMatcher) Match(target token.Token, e element.Element, obj any) (MatchingSignature, error) {
	if e != nil {
		return m.matchElement(target, e)
	}
	return m.matchObject(target, obj)
}

func (m *SignatureMatcher) matchElement(target token.Token, e element.Element) (MatchingSignature, error) {
	for _, sig := range m.sigs {
		if sig.MatchesArgumentNames() {
			if _, ok := e.(*element.Node); !ok {
				continue
			}
		}
		n, unbounded := sig.Length(e)
		if !unbounded && n != e.Size() {
			continue
		}

		args := sig.Arguments()

		if !sig.MatchesArgumentNames() && !sig.MatchesTypeHints() {
			return MatchingSignature{Sig: sig, Children: naturalChildren(e)}, nil
		}

		var children []element.Element
		if sig.MatchesArgumentNames() {
			node := e.(*element.Node)
			if m.source != nil && m.source.StrictMode && !coveredByArgs(node, args) {
				continue
			}
			children = make([]element.Element, len(args))
			missingRequired := false
			for i, a := range args {
				c, ok := node.Get(a.Name)
				if !ok && !unbounded {
					// A bounded signature (e.g. ConstructorSignature)
					// declares every argument mandatory: a missing key
					// disqualifies this candidate instead of building it
					// from a zero value.
					missingRequired = true
					break
				}
				// An unbounded signature (FieldSignature) treats an
				// absent key as the argument's zero value, the same
				// default-on-omission behavior as encoding/json.
				children[i] = c
			}
			if missingRequired {
				continue
			}
		} else {
			children = naturalChildren(e)
		}

		if sig.MatchesTypeHints() {
			ok := true
			for i, a := range args {
				if i >= len(children) || children[i] == nil {
					// Only reachable for an unbounded signature (a bounded
					// one already rejected a missing key above); the zero
					// value it builds always satisfies the type hint.
					continue
				}
				if !hint.Assignable(children[i], a.Type.Raw()) {
					ok = false
					break
				}
			}
			if !ok {
				continue
			}
		}

		return MatchingSignature{Sig: sig, Children: children}, nil
	}
	return MatchingSignature{}, &NoMatchingSignatureError{
		Target: target,
		Digest: digest(e),
		Diff:   renderDiff(expectedShape(m.sigs), describeShape(e)),
	}
}

func (m *SignatureMatcher) matchObject(target token.Token, obj any) (MatchingSignature, error) {
	for _, sig := range m.sigs {
		typed, err := sig.ObjectData(obj)
		if err != nil {
			continue
		}
		n, unbounded := sig.Length(nil)
		if !unbounded && n != len(typed) {
			continue
		}

		args := sig.Arguments()
		if sig.MatchesArgumentNames() {
			byName := make(map[string]signature.TypedValue, len(typed))
			for _, tv := range typed {
				byName[tv.Name] = tv
			}
			ordered := make([]signature.TypedValue, len(args))
			matched := true
			for i, a := range args {
				tv, found := byName[a.Name]
				if !found {
					matched = false
					break
				}
				ordered[i] = tv
			}
			if !matched {
				continue
			}
			typed = ordered
		}

		return MatchingSignature{Sig: sig, Typed: typed}, nil
	}
	return MatchingSignature{}, &NoMatchingSignatureError{Target: target, Digest: "<object>"}
}

// coveredByArgs reports whether every key in node is named by some
// argument in args - used by StrictMode to reject unrecognized keys
// instead of silently ignoring them.
func coveredByArgs(node *element.Node, args []signature.Argument) bool {
	names := make(map[string]bool, len(args))
	for _, a := range args {
		names[a.Name] = true
	}
	for _, k := range node.Keys() {
		if !names[k] {
			return false
		}
	}
	return true
}

func naturalChildren(e element.Element) []element.Element {
	switch v := e.(type) {
	case *element.List:
		return v.Items()
	case *element.Node:
		entries := v.Entries()
		out := make([]element.Element, len(entries))
		for i, ent := range entries {
			out[i] = ent.Value
		}
		return out
	default:
		return nil
	}
}

func expectedShape(sigs []signature.Signature) string {
	if len(sigs) == 0 {
		return "<no candidates>"
	}
	best := sigs[0]
	names := make([]string, 0, len(best.Arguments()))
	for _, a := range best.Arguments() {
		if a.Named {
			names = append(names, a.Name)
		}
	}
	if len(names) == 0 {
		return "<positional>"
	}
	return "node" + "{" + joinStrings(names) + "}"
}

func joinStrings(ss []string) string {
	out := ""
	for i, s := range ss {
		if i > 0 {
			out += " "
		}
		out += s
	}
	return out
}
