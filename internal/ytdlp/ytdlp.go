// Package ytdlp wraps the yt-dlp binary for three jobs: downloading a video
// as a transcoded MP3, resolving a direct bestaudio URL for client-side
// streaming, and flat metadata extraction used as the last-resort source
// resolver fallback.
package ytdlp

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/charmbracelet/log"

	"github.com/nihadubi/soundwave/internal/logger"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Config holds the binary paths and transcode settings.
type Config struct {
	// YtdlpPath is the yt-dlp binary (default "yt-dlp").
	YtdlpPath string
	// FFmpegPath, when set, is passed via --ffmpeg-location.
	FFmpegPath string
	// AudioQuality is the MP3 bitrate in kbps: "128", "192" or "320".
	AudioQuality string
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		YtdlpPath:    "yt-dlp",
		AudioQuality: "320",
	}
}

// Service executes yt-dlp.
type Service struct {
	cfg *Config
	log *log.Logger
}

// New verifies the binary is reachable and returns a Service.
func New(cfg *Config) (*Service, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.YtdlpPath == "" {
		cfg.YtdlpPath = "yt-dlp"
	}
	if cfg.AudioQuality == "" {
		cfg.AudioQuality = "320"
	}

	if _, err := exec.LookPath(cfg.YtdlpPath); err != nil {
		return nil, ErrYtdlpNotFound
	}

	return &Service{cfg: cfg, log: logger.WithComponent("ytdlp")}, nil
}

// DownloadAudio fetches the URL and transcodes it to MP3 inside destDir.
// The caller owns destDir; output filenames follow the video title. Quality
// overrides the configured bitrate when non-empty.
func (s *Service) DownloadAudio(ctx context.Context, sourceURL, destDir, quality string) error {
	if quality == "" {
		quality = s.cfg.AudioQuality
	}

	args := []string{
		"-f", "bestaudio/best",
		"--extract-audio",
		"--audio-format", "mp3",
		"--audio-quality", quality + "K",
		"--no-playlist",
		"--no-warnings",
		"--output", filepath.Join(destDir, "%(title)s.%(ext)s"),
	}
	if s.cfg.FFmpegPath != "" {
		args = append(args, "--ffmpeg-location", s.cfg.FFmpegPath)
	}
	args = append(args, sourceURL)

	cmd := exec.CommandContext(ctx, s.cfg.YtdlpPath, args...)
	var stderr strings.Builder
	cmd.Stderr = &stderr

	s.log.Info("starting download", "url", sourceURL, "quality", quality)
	if err := cmd.Run(); err != nil {
		return categorizeError(sourceURL, err, stderr.String())
	}
	return nil
}

// streamInfo is the slice of --dump-json output needed for streaming.
type streamInfo struct {
	URL      string  `json:"url"`
	Title    string  `json:"title"`
	Duration float64 `json:"duration"`
}

// StreamInfo is a direct playback descriptor for a video.
type StreamInfo struct {
	AudioURL        string
	Title           string
	DurationSeconds int
}

// ResolveStream returns a direct bestaudio URL for the video, letting
// clients play it without any server-side transfer. The URL is short-lived.
func (s *Service) ResolveStream(ctx context.Context, sourceURL string) (*StreamInfo, error) {
	args := []string{
		"-f", "bestaudio",
		"--dump-json",
		"--no-playlist",
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

	var info streamInfo
	if err := json.Unmarshal(output, &info); err != nil {
		return nil, &ExecError{URL: sourceURL, Message: "unparseable stream info", Err: err}
	}
	if info.URL == "" {
		return nil, &ExecError{URL: sourceURL, Message: "no audio url in stream info", Err: ErrExtractionFailed}
	}

	return &StreamInfo{
		AudioURL:        info.URL,
		Title:           info.Title,
		DurationSeconds: int(info.Duration),
	}, nil
}

// categorizeError maps yt-dlp stderr chatter onto sentinel errors.
func categorizeError(sourceURL string, err error, stderr string) error {
	lower := strings.ToLower(stderr)

	switch {
	case strings.Contains(lower, "video unavailable") ||
		strings.Contains(lower, "this video is unavailable"):
		return &ExecError{URL: sourceURL, Message: "video unavailable", Err: ErrVideoUnavailable}

	case strings.Contains(lower, "private video") ||
		strings.Contains(lower, "is private"):
		return &ExecError{URL: sourceURL, Message: "video is private", Err: ErrVideoPrivate}

	case strings.Contains(lower, "age-restricted") ||
		strings.Contains(lower, "sign in to confirm your age"):
		return &ExecError{URL: sourceURL, Message: "content is age-restricted", Err: ErrAgeRestricted}

	case strings.Contains(lower, "unable to download") ||
		strings.Contains(lower, "connection") ||
		strings.Contains(lower, "network"):
		return &ExecError{URL: sourceURL, Message: "network error", Err: ErrNetworkError}

	case strings.Contains(lower, "unsupported url") ||
		strings.Contains(lower, "no suitable extractor"):
		return &ExecError{URL: sourceURL, Message: "url not supported", Err: ErrURLNotSupported}

	default:
		return &ExecError{URL: sourceURL, Message: "download failed", Err: fmt.Errorf("%w: %s", ErrDownloadFailed, strings.TrimSpace(stderr))}
	}
}
