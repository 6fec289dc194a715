package spotify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/nihadubi/soundwave/internal/logger"
)

const defaultOEmbedBase = "https://open.spotify.com/oembed"

// User agents rotated during page scraping. Spotify serves different markup
// to browsers, social crawlers and search bots; one of them usually carries
// the artist meta tags.
var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"facebookexternalhit/1.1",
	"Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)",
}

// GenericExtract is the flat result of the last-resort extractor.
type GenericExtract struct {
	Title           string
	Artist          string
	ThumbnailURL    string
	DurationSeconds int
}

// GenericExtractor is the fallback used when both the oEmbed endpoint and
// page scraping fail to identify the track.
type GenericExtractor interface {
	ExtractFlat(ctx context.Context, url string) (*GenericExtract, error)
}

// ResolverConfig configures a Resolver. Zero values get sensible defaults.
type ResolverConfig struct {
	Client     *http.Client
	Fallback   GenericExtractor
	OEmbedBase string
	EmbedBase  string
	// ScrapeRate bounds page fetches per second; 0 means 5/s.
	ScrapeRate float64
}

// Resolver extracts track metadata from Spotify URLs.
type Resolver struct {
	client     *http.Client
	fallback   GenericExtractor
	oembedBase string
	embedBase  string
	limiter    *rate.Limiter
	log        *log.Logger
}

// NewResolver creates a Resolver.
func NewResolver(cfg ResolverConfig) *Resolver {
	client := cfg.Client
	if client == nil {
		client = &http.Client{}
	}
	oembedBase := cfg.OEmbedBase
	if oembedBase == "" {
		oembedBase = defaultOEmbedBase
	}
	embedBase := cfg.EmbedBase
	if embedBase == "" {
		embedBase = defaultEmbedBase
	}
	scrapeRate := cfg.ScrapeRate
	if scrapeRate <= 0 {
		scrapeRate = 5
	}
	return &Resolver{
		client:     client,
		fallback:   cfg.Fallback,
		oembedBase: oembedBase,
		embedBase:  embedBase,
		limiter:    rate.NewLimiter(rate.Limit(scrapeRate), int(scrapeRate)),
		log:        logger.WithComponent("spotify"),
	}
}

// Resolve extracts {title, artist, duration, thumbnail} for a track URL.
// Extraction methods are tried in priority order and combined per field;
// failure is never fatal. Callers must check HasRealArtist before trusting
// the result for search.
func (r *Resolver) Resolve(ctx context.Context, url string) TrackMetadata {
	meta := TrackMetadata{
		Title:     PlaceholderTitle,
		Artist:    SentinelArtist,
		SourceURL: url,
	}

	oe, err := r.fetchOEmbed(ctx, url)
	if err != nil {
		r.log.Debug("oembed fetch failed", "url", url, "err", err)
	} else {
		applyOEmbed(&meta, oe)
	}

	if IsSentinelArtist(meta.Artist) {
		if artist := r.scrapeArtist(ctx, url); artist != "" {
			meta.Artist = artist
		}
	}

	// Last structural hint: a "Title - Artist" composite in the title itself.
	if IsSentinelArtist(meta.Artist) {
		if idx := strings.Index(meta.Title, " - "); idx > 0 {
			meta.Artist = strings.TrimSpace(meta.Title[idx+3:])
			meta.Title = strings.TrimSpace(meta.Title[:idx])
		}
	}

	var flatDuration int
	if meta.Title == PlaceholderTitle && r.fallback != nil {
		if flat, err := r.fallback.ExtractFlat(ctx, url); err != nil {
			r.log.Debug("generic extractor failed", "url", url, "err", err)
		} else if flat.Title != "" && flat.Title != SentinelArtist {
			meta.Title = flat.Title
			if meta.Artist == SentinelArtist && flat.Artist != "" {
				meta.Artist = flat.Artist
			}
			if flat.ThumbnailURL != "" {
				meta.ThumbnailURL = flat.ThumbnailURL
			}
			flatDuration = flat.DurationSeconds
		}
	}

	// Duration is decoupled from title/artist extraction and always attempted.
	if d := r.ScrapeDuration(ctx, url); d > 0 {
		meta.DurationSeconds = d
	} else if flatDuration > 0 {
		meta.DurationSeconds = flatDuration
	}

	r.log.Info("resolved metadata",
		"title", meta.Title, "artist", meta.Artist, "duration", meta.DurationSeconds)
	return meta
}

// get performs a rate-limited GET with the given user agent and returns the
// body. Responses other than 200 count as failures.
func (r *Resolver) get(ctx context.Context, url, userAgent string) ([]byte, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
		req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
