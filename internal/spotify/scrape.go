package spotify

import (
	"bytes"
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Artist-bearing meta tags, in priority order.
var artistMetaSelectors = []string{
	`meta[property="twitter:audio:artist_name"]`,
	`meta[property="music:musician"]`,
	`meta[name="music:musician"]`,
	`meta[name="twitter:creator"]`,
}

var (
	durationMetaRe = regexp.MustCompile(`<meta property="music:duration" content="(\d+)"`)
	durationMSRe   = regexp.MustCompile(`"durationMS":(\d+)`)
)

// scrapeArtist fetches the track page under rotating user agents and tries,
// in priority order: dedicated artist meta tags, the "Artist · Song · Year"
// description tag, and the HTML <title>. Returns "" when nothing usable is
// found under any user agent.
func (r *Resolver) scrapeArtist(ctx context.Context, trackURL string) string {
	for _, ua := range userAgents {
		body, err := r.get(ctx, trackURL, ua)
		if err != nil {
			r.log.Debug("page scrape failed", "ua", ua, "err", err)
			continue
		}

		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
		if err != nil {
			continue
		}

		if artist := artistFromMetaTags(doc); artist != "" {
			return artist
		}
		if artist := artistFromDescription(doc); artist != "" {
			return artist
		}
		if artist := artistFromPageTitle(doc); artist != "" {
			return artist
		}
	}
	return ""
}

func artistFromMetaTags(doc *goquery.Document) string {
	for _, sel := range artistMetaSelectors {
		content, ok := doc.Find(sel).First().Attr("content")
		if !ok {
			continue
		}
		if artist := validArtist(content); artist != "" {
			return artist
		}
	}
	return ""
}

// artistFromDescription parses the "Artist · Song · Year" description meta
// tag, stripping the "Listen to X on Spotify." lead-in when present.
func artistFromDescription(doc *goquery.Document) string {
	desc, ok := doc.Find(`meta[property="og:description"]`).First().Attr("content")
	if !ok {
		desc, ok = doc.Find(`meta[name="description"]`).First().Attr("content")
		if !ok {
			return ""
		}
	}

	if !strings.Contains(desc, " · ") {
		return ""
	}

	candidate := strings.Split(desc, " · ")[0]
	if strings.Contains(candidate, "Listen to ") {
		if idx := strings.LastIndex(candidate, "on Spotify. "); idx >= 0 {
			candidate = candidate[idx+len("on Spotify. "):]
		}
	}
	return validArtist(candidate)
}

// artistFromPageTitle parses the <title> tag as "Title by Artist" or
// "Title - Artist".
func artistFromPageTitle(doc *goquery.Document) string {
	titleText := doc.Find("title").First().Text()
	if titleText == "" {
		return ""
	}
	titleText = strings.ReplaceAll(titleText, " | Spotify", "")
	titleText = strings.ReplaceAll(titleText, " - Single", "")

	if idx := strings.LastIndex(titleText, " by "); idx >= 0 {
		return validArtist(titleText[idx+len(" by "):])
	}
	if idx := strings.Index(titleText, " - "); idx >= 0 {
		return validArtist(titleText[:idx])
	}
	return ""
}

// validArtist filters out sentinels, URLs and implausibly long values.
func validArtist(candidate string) string {
	candidate = strings.TrimSpace(candidate)
	if candidate == "" || IsSentinelArtist(candidate) {
		return ""
	}
	if strings.HasPrefix(candidate, "http") || len(candidate) >= 100 {
		return ""
	}
	return candidate
}

// ScrapeDuration fetches the page and looks for a duration meta tag
// (seconds) or an embedded durationMS field (milliseconds, floored to
// seconds). Returns 0 when the duration cannot be determined.
func (r *Resolver) ScrapeDuration(ctx context.Context, trackURL string) int {
	body, err := r.get(ctx, trackURL, userAgents[0])
	if err != nil {
		return 0
	}

	if m := durationMetaRe.FindSubmatch(body); m != nil {
		if seconds, err := strconv.Atoi(string(m[1])); err == nil {
			return seconds
		}
	}
	if m := durationMSRe.FindSubmatch(body); m != nil {
		if ms, err := strconv.Atoi(string(m[1])); err == nil {
			return ms / 1000
		}
	}
	return 0
}
