package parser

import (
	"regexp"
	"strconv"
	"strings"
)

// Amount pattern families, most specific first. Suffix forms must win over the
// bare digit form so "50rb" parses as 50000 instead of 50.
var (
	millionPattern  = regexp.MustCompile(`(?i)(\d+(?:[.,]\d{3})*)\s*(?:juta|jt|mil|m)\b`)
	thousandPattern = regexp.MustCompile(`(?i)(\d+(?:[.,]\d{3})*)\s*(?:ribu|rb|k)\b`)
	barePattern     = regexp.MustCompile(`(?i)(?:rp\s*)?(\d+(?:[.,]\d{3})*)`)
)

// ExtractAmount returns the first monetary value found in text, in smallest
// currency units, or 0 if no pattern matches. Only the first match of the
// highest-priority family is used; later numeric mentions are ignored.
func ExtractAmount(text string) int64 {
	if m := millionPattern.FindStringSubmatch(text); m != nil {
		return parseDigitGroup(m[1]) * 1_000_000
	}
	if m := thousandPattern.FindStringSubmatch(text); m != nil {
		return parseDigitGroup(m[1]) * 1_000
	}
	if m := barePattern.FindStringSubmatch(text); m != nil {
		return parseDigitGroup(m[1])
	}
	return 0
}

// parseDigitGroup strips thousand separators and parses the remaining digits,
// so "50.000" becomes 50000 rather than 50.
func parseDigitGroup(s string) int64 {
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", "")
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
