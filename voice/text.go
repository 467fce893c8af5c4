package voice

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// symbolKind classifies one input symbol for the synthesis loop.
type symbolKind int

const (
	symbolLetter symbolKind = iota
	symbolSpace
	symbolNewline
	symbolOther
)

// foldTransformer strips combining marks after NFD decomposition so accented
// input ("héllo") lands on the plain a-z sprite table.
var foldTransformer = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// normalizeText lowercases input and folds diacritics away. Symbols that
// still fall outside a-z after folding are left for classifySymbol to skip
// or map to a pause.
func normalizeText(s string) string {
	folded, _, err := transform.String(foldTransformer, s)
	if err != nil {
		// Fall back to the raw input; classifySymbol drops anything the
		// sprite table cannot serve.
		folded = s
	}
	return strings.ToLower(folded)
}

// classifySymbol maps one normalized rune to its synthesis behavior.
func classifySymbol(r rune) symbolKind {
	switch {
	case r >= 'a' && r <= 'z':
		return symbolLetter
	case r == '\n':
		return symbolNewline
	case unicode.IsSpace(r):
		return symbolSpace
	default:
		return symbolOther
	}
}

// countLetters returns the number of playable letters in normalized text,
// which is the symbol count used for the intonation contour.
func countLetters(s string) int {
	n := 0
	for _, r := range s {
		if classifySymbol(r) == symbolLetter {
			n++
		}
	}
	return n
}

// endsWithQuestion reports whether the utterance reads as a question.
func endsWithQuestion(s string) bool {
	return strings.HasSuffix(strings.TrimSpace(s), "?")
}
