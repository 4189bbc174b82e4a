package dialogue

import (
	"math/rand"
	"strings"
)

type OutcomeKind int

const (
	// Direct is a canned reply to display as a bot message.
	Direct OutcomeKind = iota
	// Handoff carries a canned reply plus the signal to transition the
	// conversation to handoff-request mode.
	Handoff
	// Fallback is one reply chosen uniformly at random from the pool.
	Fallback
)

type Outcome struct {
	Kind OutcomeKind
	Text string
}

// Reply is the resolved value of a keyword entry. Handoff is an explicit
// flag, so the engine never compares reply text against a magic value.
type Reply struct {
	Text    string
	Handoff bool
}

// Entry binds a trigger substring to its reply. Entries are matched in
// declaration order: the first key the input contains wins, regardless of
// match length. Callers must not assume specificity beyond table order.
type Entry struct {
	Key   string
	Reply Reply
}

// Engine maps free-text visitor input to a canned reply or a handoff
// signal. It is pure: any input, including empty strings, produces an
// outcome, and the random source is injected so tests can pin fallbacks.
type Engine struct {
	table     []Entry
	fallbacks []string
	rng       *rand.Rand
}

func NewEngine(table []Entry, fallbacks []string, rng *rand.Rand) *Engine {
	return &Engine{table: table, fallbacks: fallbacks, rng: rng}
}

func (e *Engine) Respond(text string) Outcome {
	lowered := strings.ToLower(text)

	for _, entry := range e.table {
		if !strings.Contains(lowered, entry.Key) {
			continue
		}
		if entry.Reply.Handoff {
			return Outcome{Kind: Handoff, Text: entry.Reply.Text}
		}
		return Outcome{Kind: Direct, Text: entry.Reply.Text}
	}

	return Outcome{
		Kind: Fallback,
		Text: e.fallbacks[e.rng.Intn(len(e.fallbacks))],
	}
}
