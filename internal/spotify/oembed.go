package spotify

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// oEmbedResponse is the payload of Spotify's lightweight embed API. It is
// the highest-trust extraction source: official, unauthenticated and not
// bot-protected.
type oEmbedResponse struct {
	Title        string `json:"title"`
	AuthorName   string `json:"author_name"`
	ThumbnailURL string `json:"thumbnail_url"`
}

func (r *Resolver) fetchOEmbed(ctx context.Context, trackURL string) (*oEmbedResponse, error) {
	endpoint := fmt.Sprintf("%s?url=%s", r.oembedBase, url.QueryEscape(trackURL))
	body, err := r.get(ctx, endpoint, "")
	if err != nil {
		return nil, err
	}

	var oe oEmbedResponse
	if err := json.Unmarshal(body, &oe); err != nil {
		return nil, err
	}
	return &oe, nil
}

// applyOEmbed folds an oEmbed payload into the metadata being built.
//
// The combined title usually reads "Title by Artist"; when it does, the
// split happens on the last " by " so titles containing the word survive.
// The parsed artist is only trusted when author_name is generic.
func applyOEmbed(meta *TrackMetadata, oe *oEmbedResponse) {
	if oe.ThumbnailURL != "" {
		meta.ThumbnailURL = oe.ThumbnailURL
	}

	artist := strings.TrimSpace(oe.AuthorName)
	if artist == "" || strings.HasPrefix(artist, "http") {
		artist = SentinelArtist
	}

	fullTitle := oe.Title
	if idx := strings.LastIndex(fullTitle, " by "); idx > 0 {
		meta.Title = fullTitle[:idx]
		if IsSentinelArtist(artist) {
			artist = fullTitle[idx+len(" by "):]
		}
	} else if fullTitle != "" {
		meta.Title = fullTitle
	}

	meta.Artist = artist
}
