package tokens

import (
	"strings"
	"unicode/utf8"
)

// charsPerToken approximates the average span a byte-pair tokenizer merges
// for English text and JSON payloads.
const charsPerToken = 4

// Estimate returns an approximate token count for text.
//
// The rule is fixed and reproducible: the text is split on whitespace and
// each field contributes ceil(len/4) tokens, never less than one. Whitespace
// itself is not counted; byte-pair tokenizers fold the leading space into
// the following token.
func Estimate(text string) int {
	count := 0
	for _, field := range strings.Fields(text) {
		n := utf8.RuneCountInString(field)
		count += (n + charsPerToken - 1) / charsPerToken
	}
	return count
}
