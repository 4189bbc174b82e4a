package moderation

import "strings"

type Verdict int

const (
	Allowed Verdict = iota
	Blocked
)

// Filter rejects visitor input containing denylisted terms. It runs only on
// visitor-authored input in bot mode; live-mode traffic is human moderated.
type Filter struct {
	denylist []string
}

func NewFilter(denylist []string) *Filter {
	lowered := make([]string, len(denylist))
	for i, w := range denylist {
		lowered[i] = strings.ToLower(w)
	}
	return &Filter{denylist: lowered}
}

// Check is case-insensitive substring containment. It is pure and never
// fails; a Blocked verdict short-circuits keyword matching entirely.
func (f *Filter) Check(text string) Verdict {
	lowered := strings.ToLower(text)
	for _, word := range f.denylist {
		if strings.Contains(lowered, word) {
			return Blocked
		}
	}
	return Allowed
}
