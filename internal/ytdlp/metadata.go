package ytdlp

import (
	"context"
	"os/exec"
	"strings"

	"github.com/nihadubi/soundwave/internal/spotify"
)

// flatOutput is the subset of `--dump-json --flat-playlist` output the
// fallback resolver reads.
type flatOutput struct {
	Title      string  `json:"title"`
	Uploader   string  `json:"uploader"`
	Channel    string  `json:"channel"`
	Creator    string  `json:"creator"`
	Artist     string  `json:"artist"`
	Track      string  `json:"track"`
	Duration   float64 `json:"duration"`
	Thumbnail  string  `json:"thumbnail"`
	Thumbnails []struct {
		URL string `json:"url"`
	} `json:"thumbnails"`
}

// ExtractFlat pulls title, artist and duration from a URL without
// downloading anything. It is the last rung of the source-resolution
// ladder, used when oEmbed and page scraping both come up empty.
func (s *Service) ExtractFlat(ctx context.Context, sourceURL string) (*spotify.GenericExtract, error) {
	args := []string{
		"--dump-json",
		"--flat-playlist",
		"--no-download",
		"--no-warnings",
		sourceURL,
	}

	cmd := exec.CommandContext(ctx, s.cfg.YtdlpPath, args...)
	output, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return nil, categorizeError(sourceURL, err, string(exitErr.Stderr))
		}
		return nil, categorizeError(sourceURL, err, "")
	}

	var flat flatOutput
	if err := json.Unmarshal(output, &flat); err != nil {
		return nil, &ExecError{URL: sourceURL, Message: "unparseable flat metadata", Err: err}
	}

	extract := &spotify.GenericExtract{
		Title:           strings.TrimSpace(flat.Track),
		Artist:          firstNonEmpty(flat.Artist, flat.Creator, flat.Uploader, flat.Channel),
		DurationSeconds: int(flat.Duration),
		ThumbnailURL:    flat.Thumbnail,
	}
	if extract.Title == "" {
		extract.Title = strings.TrimSpace(flat.Title)
	}
	if extract.ThumbnailURL == "" && len(flat.Thumbnails) > 0 {
		extract.ThumbnailURL = flat.Thumbnails[len(flat.Thumbnails)-1].URL
	}

	if extract.Title == "" && extract.Artist == "" && extract.DurationSeconds == 0 {
		return nil, &ExecError{URL: sourceURL, Message: "flat extraction returned nothing usable", Err: ErrExtractionFailed}
	}
	return extract, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
