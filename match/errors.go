package match

import (
	"fmt"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/tigritik/Butylene/token"
)

// NoMatchingSignatureError is returned when the matcher exhausts every
// candidate signature for a target type. It carries a content digest of
// the element that failed to match and, when the highest-priority
// candidate and the element's actual shape can be rendered as text, a
// unified diff
// between the two (via github.com/pmezard/go-difflib) to make the most
// common failure mode - a typo'd key, a missing argument, a wrong element
// kind - diagnosable without a debugger.
type NoMatchingSignatureError struct {
	Target token.Token
	Digest string
	Diff   string
}

func (e *NoMatchingSignatureError) Error() string {
	if e.Diff == "" {
		return fmt.Sprintf("match: no matching signature for %s (digest %s)", e.Target, e.Digest)
	}
	return fmt.Sprintf("match: no matching signature for %s (digest %s)\n%s", e.Target, e.Digest, e.Diff)
}

func renderDiff(expected, actual string) string {
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(expected),
		B:        difflib.SplitLines(actual),
		FromFile: "expected",
		ToFile:   "actual",
		Context:  2,
	}
	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return ""
	}
	return text
}
