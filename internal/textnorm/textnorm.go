// Package textnorm provides the text normalization used by every matching
// stage: transliteration to ASCII, lowercasing, punctuation stripping and
// noise-word removal.
package textnorm

import (
	"regexp"
	"strings"

	"github.com/gosimple/unidecode"
)

// noiseWords are tokens that carry no identity information in video or track
// titles and are dropped during normalization.
var noiseWords = map[string]struct{}{
	"official":   {},
	"video":      {},
	"lyrics":     {},
	"audio":      {},
	"full":       {},
	"remastered": {},
	"hd":         {},
	"4k":         {},
	"mv":         {},
	"visualizer": {},
	"spotify":    {},
}

var (
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9\s]`)
	multiSpace      = regexp.MustCompile(`\s+`)
)

// Fold transliterates to ASCII, lowercases and trims. It keeps punctuation,
// so it is the right form for substring containment checks.
func Fold(text string) string {
	return strings.TrimSpace(strings.ToLower(unidecode.Unidecode(text)))
}

// Normalize reduces text to its significant tokens: transliterate to ASCII,
// lowercase, treat hyphens as spaces, strip everything outside [a-z0-9\s],
// split on whitespace, then drop noise words and single-character tokens.
func Normalize(text string) []string {
	folded := Fold(text)
	// Hyphens act as exclusion operators in downstream search backends and
	// must never survive normalization.
	folded = strings.ReplaceAll(folded, "-", " ")
	folded = nonAlphanumeric.ReplaceAllString(folded, " ")

	var tokens []string
	for _, word := range strings.Fields(folded) {
		if len(word) <= 1 {
			continue
		}
		if _, noise := noiseWords[word]; noise {
			continue
		}
		tokens = append(tokens, word)
	}
	return tokens
}

// QueryTerm prepares a raw title or artist for use in a search query:
// hyphens become spaces and whitespace is collapsed. Case and word order are
// preserved since search backends rank better with the original casing.
func QueryTerm(text string) string {
	cleaned := strings.ReplaceAll(text, "-", " ")
	cleaned = multiSpace.ReplaceAllString(cleaned, " ")
	return strings.TrimSpace(cleaned)
}

// IsNoise reports whether a single normalized token is in the noise-word set.
func IsNoise(token string) bool {
	_, ok := noiseWords[token]
	return ok
}
