package provider

import (
	"strings"

	"github.com/mydehq/metamatch/internal/matcher"
)

// SupplementalPhrases marks game search results that are add-ons, demos or
// re-releases rather than the base game. Matching is substring based on the
// normalized "name slug" text, so short entries like "gb" also hit words
// that merely contain them.
var SupplementalPhrases = []string{
	"character creator",
	"storage",
	"demo",
	"beta",
	"alpha",
	"test",
	"soundtrack",
	"season pass",
	"expansion",
	"dlc",
	"bundle",
	"pack",
	"ps1",
	"gb",
	"mod",
}

// IsSupplemental reports whether a game result matches any of phrases
func IsSupplemental(name, slug string, phrases []string) bool {
	text := matcher.NormalizeTitle(name + " " + slug)
	if text == "" {
		return false
	}
	for _, phrase := range phrases {
		if phrase != "" && strings.Contains(text, phrase) {
			return true
		}
	}
	return false
}
