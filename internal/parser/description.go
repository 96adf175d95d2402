package parser

import (
	"regexp"
	"strings"
)

var (
	accountFragment = regexp.MustCompile(`(?i)\b(?:dari|from|ke|to)\s+\w+`)
	currencyMarker  = regexp.MustCompile(`(?i)\brp\b`)
	multiSpace      = regexp.MustCompile(`\s+`)
)

// BuildDescription strips recognized amount patterns, account fragments and
// the rp currency marker from the original text to produce the free-text
// memo. The stripping re-derives matches independently of ExtractAmount, so a
// leftover numeric fragment is possible when the families disagree; that is a
// known imprecision of the original grammar, kept as-is.
func BuildDescription(text string) string {
	text = millionPattern.ReplaceAllString(text, " ")
	text = thousandPattern.ReplaceAllString(text, " ")
	text = barePattern.ReplaceAllString(text, " ")
	text = accountFragment.ReplaceAllString(text, " ")
	text = currencyMarker.ReplaceAllString(text, " ")
	text = multiSpace.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
