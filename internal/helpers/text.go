package helpers

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// CleanText collapses every run of whitespace (including newlines and tabs)
// into a single space and trims the result.
func CleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeForDiff collapses whitespace and lowercases content to stabilise comparisons.
func NormalizeForDiff(s string) string {
	return strings.ToLower(CleanText(s))
}

// TruncateRunes cuts s to at most max characters without splitting a
// multi-byte rune.
func TruncateRunes(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	n := 0
	for i := range s {
		if n == max {
			return s[:i]
		}
		n++
	}
	return s
}

// hasWordChars reports whether s contains at least one letter or digit.
func hasWordChars(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsDigit(r)
	}) >= 0
}
