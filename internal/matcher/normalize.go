package matcher

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	romanNumeralRe = regexp.MustCompile(`\b(i|ii|iii|iv|v|vi|vii|viii|ix|x)\b`)
	nonAlnumRe     = regexp.MustCompile(`[^a-z0-9]+`)

	parentheticalRe = regexp.MustCompile(`\s*\([^)]*\)\s*`)
	seasonMarkerRe  = regexp.MustCompile(`(?i):\s*Season\s+\d+|Season\s+\d+`)
	whitespaceRe    = regexp.MustCompile(`\s+`)
)

var romanDigits = map[string]string{
	"i":    "1",
	"ii":   "2",
	"iii":  "3",
	"iv":   "4",
	"v":    "5",
	"vi":   "6",
	"vii":  "7",
	"viii": "8",
	"ix":   "9",
	"x":    "10",
}

// NormalizeTitle returns the canonical comparison form of a title.
// The result is lowercase ASCII words separated by single spaces, with
// accents folded, "&" spelled out and standalone roman numerals I-X
// replaced by digits.
func NormalizeTitle(title string) string {
	if title == "" {
		return ""
	}

	s := foldAccents(strings.ToLower(title))
	s = strings.ReplaceAll(s, "&", " and ")

	// Roman numerals are matched on the spaced-out form so punctuation
	// such as "II:" still counts as a word boundary.
	s = nonAlnumRe.ReplaceAllString(s, " ")
	s = romanNumeralRe.ReplaceAllStringFunc(s, func(m string) string {
		return romanDigits[m]
	})

	return strings.TrimSpace(s)
}

// CleanSearchTitle strips parenthetical annotations and "Season N" markers.
// It shapes outbound provider queries only and is never used for comparison.
func CleanSearchTitle(title string) string {
	if title == "" {
		return ""
	}
	s := parentheticalRe.ReplaceAllString(title, " ")
	s = seasonMarkerRe.ReplaceAllString(s, " ")
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// tokenSet splits a normalized title into its distinct words
func tokenSet(normalized string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range strings.Fields(normalized) {
		set[tok] = struct{}{}
	}
	return set
}
