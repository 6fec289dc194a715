package search

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/charmbracelet/log"

	"github.com/nihadubi/soundwave/internal/logger"
)

// catalogTrack mirrors the song-search response of a ytmusicapi-compatible
// endpoint: explicit artist list, duration in seconds and thumbnails sorted
// smallest first.
type catalogTrack struct {
	VideoID string `json:"videoId"`
	Title   string `json:"title"`
	Artists []struct {
		Name string `json:"name"`
		ID   string `json:"id"`
	} `json:"artists"`
	Duration    string `json:"duration"`
	DurationSec int    `json:"duration_seconds"`
	Thumbnails  []struct {
		URL    string `json:"url"`
		Width  int    `json:"width"`
		Height int    `json:"height"`
	} `json:"thumbnails"`
}

// CatalogSearcher queries the song-specific catalog backend. Preferred when
// available: results carry a reliable artist field and precise durations.
type CatalogSearcher struct {
	baseURL string
	client  *http.Client
	log     *log.Logger
}

// NewCatalogSearcher creates a catalog searcher against the given base URL.
func NewCatalogSearcher(baseURL string, client *http.Client) *CatalogSearcher {
	if client == nil {
		client = &http.Client{}
	}
	return &CatalogSearcher{
		baseURL: baseURL,
		client:  client,
		log:     logger.WithComponent("search.catalog"),
	}
}

// Search implements Searcher.
func (s *CatalogSearcher) Search(ctx context.Context, query string, limit int) []Candidate {
	endpoint := fmt.Sprintf("%s/api/search?filter=songs&limit=%d&query=%s",
		s.baseURL, limit, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		s.log.Warn("bad search request", "err", err)
		return nil
	}

	resp, err := s.client.Do(req)
	if err != nil {
		s.log.Warn("catalog search failed", "query", query, "err", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.log.Warn("catalog search rejected", "query", query, "status", resp.StatusCode)
		return nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		s.log.Warn("catalog response unreadable", "err", err)
		return nil
	}

	var tracks []catalogTrack
	if err := json.Unmarshal(body, &tracks); err != nil {
		s.log.Warn("catalog response unparseable", "err", err)
		return nil
	}

	candidates := make([]Candidate, 0, len(tracks))
	for _, track := range tracks {
		if track.VideoID == "" {
			continue
		}
		if len(candidates) >= limit {
			break
		}

		candidate := Candidate{
			VideoID:     track.VideoID,
			Title:       track.Title,
			PlaybackURL: "https://music.youtube.com/watch?v=" + track.VideoID,
		}
		if len(track.Artists) > 0 {
			candidate.Artist = track.Artists[0].Name
		}
		if track.DurationSec > 0 {
			candidate.DurationSeconds = track.DurationSec
		} else if track.Duration != "" {
			candidate.DurationSeconds = parseDurationDisplay(track.Duration)
		}
		if len(track.Thumbnails) > 0 {
			// Last entry is the largest rendition.
			candidate.ThumbnailURL = track.Thumbnails[len(track.Thumbnails)-1].URL
		}

		candidates = append(candidates, candidate)
	}

	s.log.Info("catalog search", "query", query, "results", len(candidates))
	return candidates
}
