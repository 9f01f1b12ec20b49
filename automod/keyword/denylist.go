package keyword

import (
	"sort"
	"strings"
)

// Severe slurs and profanity which are never acceptable in a moderated group, regardless of context.
var DefaultDenylistWords = []string{
	"fuck",
	"bitch",
	"slut",
	"cunt",
	"nigger",
}

// Fixed set of single-word tokens. Safe for concurrent reads; it is never mutated after construction.
type Denylist struct {
	tokens map[string]bool
}

func NewDenylist(words ...string) *Denylist {
	d := &Denylist{tokens: make(map[string]bool, len(words))}
	for _, w := range words {
		for _, tok := range TokenizeText(w) {
			d.tokens[tok] = true
		}
	}
	return d
}

func DefaultDenylist() *Denylist {
	return NewDenylist(DefaultDenylistWords...)
}

// Returns the first denylisted token found in the text (case-insensitive, whole-word), or empty string.
func (d *Denylist) Match(text string) string {
	if d == nil || len(d.tokens) == 0 {
		return ""
	}
	for _, tok := range TokenizeText(text) {
		if d.tokens[tok] {
			return tok
		}
	}
	return ""
}

func (d *Denylist) Len() int {
	return len(d.tokens)
}

// Sorted copy of the tokens, mostly for logging and debugging.
func (d *Denylist) Words() []string {
	out := make([]string, 0, len(d.tokens))
	for tok := range d.tokens {
		out = append(out, tok)
	}
	sort.Strings(out)
	return out
}

func (d *Denylist) String() string {
	return strings.Join(d.Words(), ",")
}
