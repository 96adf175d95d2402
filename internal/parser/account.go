package parser

import (
	"regexp"
	"strings"
)

var (
	sourcePattern = regexp.MustCompile(`(?i)\b(?:dari|from)\s+(\w+)`)
	destPattern   = regexp.MustCompile(`(?i)\b(?:ke|to)\s+(\w+)`)
)

// accountAliases maps common Indonesian wallet names onto the canonical tags
// used by wallet records. Declaration order is the match order.
var accountAliases = []struct {
	alias string
	tag   string
}{
	{"cash", "cash"},
	{"tunai", "cash"},
	{"kas", "cash"},
	{"bank", "bank"},
	{"bca", "bank"},
	{"bri", "bank"},
	{"mandiri", "bank"},
	{"bni", "bank"},
	{"ewallet", "ewallet"},
	{"gopay", "ewallet"},
	{"ovo", "ewallet"},
	{"dana", "ewallet"},
	{"shopeepay", "ewallet"},
}

// ExtractAccounts finds "dari/from <account>" and "ke/to <account>" fragments
// and returns normalized (source, destination) tags. Either may be empty.
// Unknown account words pass through unchanged as free-form tags.
func ExtractAccounts(text string) (source, destination string) {
	if m := sourcePattern.FindStringSubmatch(text); m != nil {
		source = normalizeAccount(m[1])
	}
	if m := destPattern.FindStringSubmatch(text); m != nil {
		destination = normalizeAccount(m[1])
	}
	return source, destination
}

func normalizeAccount(word string) string {
	word = strings.ToLower(word)
	for _, a := range accountAliases {
		if word == a.alias {
			return a.tag
		}
	}
	return word
}
