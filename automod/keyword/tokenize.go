package keyword

import (
	"log/slog"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var nonTokenChars = regexp.MustCompile(`[^\pL\pN\s]+`)

// Splits free-form chat text in to tokens: lower-case, unicode normalized, with diacritics folded away.
//
// Any run of non-letter, non-digit characters is a token boundary, so a token matches the same places a `\b...\b` word regex would, while also catching accented or punctuated variants ("Fück!", "...slut,").
func TokenizeText(text string) []string {
	// the transformer is stateful, so it gets re-defined on every call
	normFunc := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	// fold first: a decomposed combining mark is not a letter, and would otherwise split the word
	folded, _, err := transform.String(normFunc, text)
	if err != nil {
		slog.Warn("unicode normalization error", "err", err)
		folded = text
	}
	split := strings.ToLower(nonTokenChars.ReplaceAllString(folded, " "))
	return strings.Fields(split)
}
