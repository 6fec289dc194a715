// Package spotify resolves track, album and playlist metadata from Spotify
// URLs without the official API: a prioritized chain of the oEmbed endpoint,
// page scraping under rotating user agents, title splitting and a generic
// extractor fallback. Every stage is independently fallible; resolution
// degrades to well-known placeholders instead of failing.
package spotify

import (
	"regexp"
	"strings"
)

// Sentinel values returned when extraction cannot identify the track.
// SentinelArtist is never treated as a real artist downstream: validation
// and download both check for it before trusting the metadata.
const (
	SentinelArtist   = "Spotify"
	PlaceholderTitle = "Spotify Track"
)

// URL types recognized by Classify.
const (
	TypeTrack    = "track"
	TypeAlbum    = "album"
	TypePlaylist = "playlist"
	TypeUnknown  = "unknown"
)

// TrackMetadata is the resolved description of a source track. Immutable
// once returned by the resolver.
type TrackMetadata struct {
	Title           string
	Artist          string
	DurationSeconds int // 0 when unknown
	ThumbnailURL    string
	SourceURL       string
}

// HasRealArtist reports whether the artist field identifies an actual
// artist rather than the extraction sentinel.
func (m TrackMetadata) HasRealArtist() bool {
	return !IsSentinelArtist(m.Artist)
}

// IsSentinelArtist reports whether the value is one of the generic
// placeholders that disqualify artist-based validation.
func IsSentinelArtist(artist string) bool {
	switch strings.ToLower(strings.TrimSpace(artist)) {
	case "", "spotify", "unknown":
		return true
	}
	return false
}

// IsSpotifyURL reports whether the URL points at Spotify, in either the
// https://open.spotify.com form or the spotify: URI form.
func IsSpotifyURL(url string) bool {
	return strings.Contains(url, "spotify.com") || strings.Contains(url, "spotify:")
}

// Classify detects whether a Spotify URL names a track, album or playlist.
func Classify(url string) string {
	switch {
	case strings.Contains(url, "/track/") || strings.Contains(url, "spotify:track:"):
		return TypeTrack
	case strings.Contains(url, "/album/") || strings.Contains(url, "spotify:album:"):
		return TypeAlbum
	case strings.Contains(url, "/playlist/") || strings.Contains(url, "spotify:playlist:"):
		return TypePlaylist
	}
	return TypeUnknown
}

// ExtractID pulls the base-62 Spotify ID out of a URL or URI of the given
// type. Returns "" when the URL does not carry an ID.
func ExtractID(url, urlType string) string {
	re := regexp.MustCompile(urlType + `/([a-zA-Z0-9]+)`)
	if m := re.FindStringSubmatch(url); m != nil {
		return m[1]
	}
	re = regexp.MustCompile(`spotify:` + urlType + `:([a-zA-Z0-9]+)`)
	if m := re.FindStringSubmatch(url); m != nil {
		return m[1]
	}
	return ""
}
