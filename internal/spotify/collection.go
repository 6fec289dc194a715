package spotify

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

const defaultEmbedBase = "https://open.spotify.com/embed"

var nextDataRe = regexp.MustCompile(`(?s)<script id="__NEXT_DATA__" type="application/json">(.+?)</script>`)

// CollectionTrack is one entry of a playlist or album track list.
type CollectionTrack struct {
	Title           string `json:"title"`
	Artist          string `json:"artist"`
	DurationSeconds int    `json:"duration"`
	URL             string `json:"url"`
}

// embedPayload mirrors the slice of the embed page's __NEXT_DATA__ JSON we
// care about: entity.trackList with uri/title/subtitle/duration (ms).
type embedPayload struct {
	Props struct {
		PageProps struct {
			State struct {
				Data struct {
					Entity struct {
						TrackList []struct {
							URI      string `json:"uri"`
							Title    string `json:"title"`
							Subtitle string `json:"subtitle"`
							Duration int    `json:"duration"`
						} `json:"trackList"`
					} `json:"entity"`
				} `json:"data"`
			} `json:"state"`
		} `json:"pageProps"`
	} `json:"props"`
}

// ResolveCollection fetches the track list of a playlist or album via the
// embed page, which carries a full JSON payload and far less bot
// protection than the canonical page. Returns an empty slice on any
// failure; the caller decides how to degrade.
func (r *Resolver) ResolveCollection(ctx context.Context, collectionID, urlType string) []CollectionTrack {
	embedURL := fmt.Sprintf("%s/%s/%s", r.embedBase, urlType, collectionID)
	body, err := r.get(ctx, embedURL, userAgents[0])
	if err != nil {
		r.log.Warn("collection embed fetch failed", "id", collectionID, "err", err)
		return nil
	}

	m := nextDataRe.FindSubmatch(body)
	if m == nil {
		r.log.Warn("collection embed payload not found", "id", collectionID)
		return nil
	}

	var payload embedPayload
	if err := json.Unmarshal(m[1], &payload); err != nil {
		r.log.Warn("collection embed payload unparseable", "id", collectionID, "err", err)
		return nil
	}

	var tracks []CollectionTrack
	for _, entry := range payload.Props.PageProps.State.Data.Entity.TrackList {
		trackID := trackIDFromURI(entry.URI)
		if trackID == "" {
			continue
		}
		title := entry.Title
		if title == "" {
			title = "Unknown"
		}
		artist := entry.Subtitle
		if artist == "" {
			artist = "Unknown"
		}
		tracks = append(tracks, CollectionTrack{
			Title:           title,
			Artist:          artist,
			DurationSeconds: entry.Duration / 1000,
			URL:             "https://open.spotify.com/track/" + trackID,
		})
	}

	r.log.Info("collection resolved", "id", collectionID, "tracks", len(tracks))
	return tracks
}

// CollectionTitle fetches the playlist/album display title via oEmbed,
// falling back to a generic label.
func (r *Resolver) CollectionTitle(ctx context.Context, collectionURL string) string {
	oe, err := r.fetchOEmbed(ctx, collectionURL)
	if err != nil || oe.Title == "" {
		return "Spotify Collection"
	}
	return oe.Title
}

func trackIDFromURI(uri string) string {
	if uri == "" {
		return ""
	}
	parts := strings.Split(uri, ":")
	return parts[len(parts)-1]
}
