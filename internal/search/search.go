// Package search queries a secondary platform for candidate tracks matching
// resolved source metadata. Two backends exist: a song catalog index with
// rich metadata and a generic video search used as a deployment fallback.
// Both return candidates in backend relevance order, which is significant:
// validation accepts the first survivor without re-ranking.
package search

import (
	"context"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/nihadubi/soundwave/internal/textnorm"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Candidate is one search result. Artist and duration may be absent
// depending on the backend.
type Candidate struct {
	VideoID         string
	Title           string
	Artist          string
	DurationSeconds int
	ThumbnailURL    string
	PlaybackURL     string
}

// Searcher finds candidate tracks for a query. Implementations return an
// empty slice (never an error) on zero results or backend failure, logging
// the cause.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) []Candidate
}

// BuildQuery assembles the search query as "{title} {artist}". Title first
// ranks better for song lookups. Hyphens are stripped because the backends
// treat them as exclusion operators.
func BuildQuery(title, artist string) string {
	t := textnorm.QueryTerm(title)
	a := textnorm.QueryTerm(artist)
	if a == "" {
		return t
	}
	return t + " " + a
}

// parseDurationDisplay converts a "MM:SS" or "HH:MM:SS" display string to
// seconds. Returns 0 for anything unparseable.
func parseDurationDisplay(display string) int {
	parts := strings.Split(strings.TrimSpace(display), ":")
	switch len(parts) {
	case 2:
		m, err1 := strconv.Atoi(parts[0])
		s, err2 := strconv.Atoi(parts[1])
		if err1 != nil || err2 != nil {
			return 0
		}
		return m*60 + s
	case 3:
		h, err1 := strconv.Atoi(parts[0])
		m, err2 := strconv.Atoi(parts[1])
		s, err3 := strconv.Atoi(parts[2])
		if err1 != nil || err2 != nil || err3 != nil {
			return 0
		}
		return h*3600 + m*60 + s
	}
	return 0
}
