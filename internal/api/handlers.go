package api

import (
	"context"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	jsoniter "github.com/json-iterator/go"

	"github.com/nihadubi/soundwave/internal/download"
	apperrors "github.com/nihadubi/soundwave/internal/errors"
	"github.com/nihadubi/soundwave/internal/logger"
	"github.com/nihadubi/soundwave/internal/match"
	"github.com/nihadubi/soundwave/internal/search"
	"github.com/nihadubi/soundwave/internal/spotify"
	"github.com/nihadubi/soundwave/internal/stats"
	"github.com/nihadubi/soundwave/internal/stream"
	"github.com/nihadubi/soundwave/internal/ytdlp"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// SourceResolver is the metadata side of the spotify resolver.
type SourceResolver interface {
	Resolve(ctx context.Context, url string) spotify.TrackMetadata
	ResolveCollection(ctx context.Context, collectionID, urlType string) []spotify.CollectionTrack
	CollectionTitle(ctx context.Context, collectionURL string) string
}

// StreamResolver turns a playable URL into a direct audio URL.
type StreamResolver interface {
	ResolveStream(ctx context.Context, sourceURL string) (*ytdlp.StreamInfo, error)
}

// Orchestrator runs a full download job.
type Orchestrator interface {
	Run(ctx context.Context, req download.Request) (*download.Result, error)
}

type Handlers struct {
	resolver     SourceResolver
	searcher     search.Searcher
	validator    *match.Validator
	orchestrator Orchestrator
	streamer     StreamResolver
	tracker      *stats.Tracker

	outputDir   string
	searchLimit int

	log *log.Logger
}

type HandlersConfig struct {
	Resolver     SourceResolver
	Searcher     search.Searcher
	Validator    *match.Validator
	Orchestrator Orchestrator
	Streamer     StreamResolver
	Tracker      *stats.Tracker
	OutputDir    string
	SearchLimit  int
}

func NewHandlers(cfg HandlersConfig) *Handlers {
	h := &Handlers{
		resolver:     cfg.Resolver,
		searcher:     cfg.Searcher,
		validator:    cfg.Validator,
		orchestrator: cfg.Orchestrator,
		streamer:     cfg.Streamer,
		tracker:      cfg.Tracker,
		outputDir:    cfg.OutputDir,
		searchLimit:  cfg.SearchLimit,
		log:          logger.WithComponent("api"),
	}
	if h.searchLimit <= 0 {
		h.searchLimit = 5
	}
	return h
}

// Health implements GET /api/health.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	apperrors.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Stats implements GET /api/stats.
func (h *Handlers) Stats(w http.ResponseWriter, r *http.Request) {
	apperrors.WriteJSON(w, http.StatusOK, h.tracker.Snapshot())
}

// Visit implements POST /api/visit. Only an IP's first visit of the day
// counts toward the visitor total; the flag tells the client which case
// this was.
func (h *Handlers) Visit(w http.ResponseWriter, r *http.Request) {
	isNew := h.tracker.Visit(clientIP(r))
	apperrors.WriteJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"new_visitor": isNew,
	})
}

// trackInfo is the JSON shape for a resolved single track.
type trackInfo struct {
	Type         string `json:"type"`
	Title        string `json:"title"`
	Artist       string `json:"artist"`
	Duration     int    `json:"duration"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
	URL          string `json:"url"`
}

type collectionInfo struct {
	Type   string                    `json:"type"`
	Title  string                    `json:"title"`
	Tracks []spotify.CollectionTrack `json:"tracks"`
}

// Info implements GET /api/info?url=. Tracks resolve to a single metadata
// object; playlists and albums resolve to their full track list.
func (h *Handlers) Info(w http.ResponseWriter, r *http.Request) {
	url := r.URL.Query().Get("url")
	if url == "" {
		apperrors.WriteError(w, apperrors.BadRequest("url parameter is required"))
		return
	}
	if !spotify.IsSpotifyURL(url) {
		apperrors.WriteError(w, apperrors.UnsupportedSource("only spotify links are supported"))
		return
	}

	urlType := spotify.Classify(url)
	switch urlType {
	case spotify.TypeTrack:
		meta := h.resolver.Resolve(r.Context(), url)
		apperrors.WriteJSON(w, http.StatusOK, trackInfo{
			Type:         spotify.TypeTrack,
			Title:        meta.Title,
			Artist:       meta.Artist,
			Duration:     meta.DurationSeconds,
			ThumbnailURL: meta.ThumbnailURL,
			URL:          url,
		})

	case spotify.TypeAlbum, spotify.TypePlaylist:
		id := spotify.ExtractID(url, urlType)
		if id == "" {
			apperrors.WriteError(w, apperrors.BadRequest("could not extract id from url"))
			return
		}
		tracks := h.resolver.ResolveCollection(r.Context(), id, urlType)
		if len(tracks) == 0 {
			apperrors.WriteError(w, apperrors.BadSourceMetadata("could not read the track list"))
			return
		}
		apperrors.WriteJSON(w, http.StatusOK, collectionInfo{
			Type:   urlType,
			Title:  h.resolver.CollectionTitle(r.Context(), url),
			Tracks: tracks,
		})

	default:
		apperrors.WriteError(w, apperrors.UnsupportedSource("unsupported spotify link type"))
	}
}

type previewRequest struct {
	URL      string `json:"url"`
	Title    string `json:"title"`
	Artist   string `json:"artist"`
	Duration int    `json:"duration"`
}

type previewResponse struct {
	YouTubeURL   string `json:"youtube_url"`
	VideoID      string `json:"video_id"`
	Title        string `json:"title"`
	Artist       string `json:"artist"`
	Duration     int    `json:"duration"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
}

// Preview implements POST /api/preview: search and validate without
// downloading, so clients can show the matched video first. A successful
// preview's youtube_url may be passed back to /api/download as trusted.
func (h *Handlers) Preview(w http.ResponseWriter, r *http.Request) {
	var req previewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperrors.WriteError(w, apperrors.BadRequest("invalid request body"))
		return
	}
	if req.URL == "" && req.Title == "" {
		apperrors.WriteError(w, apperrors.BadRequest("title is required"))
		return
	}

	meta := spotify.TrackMetadata{
		Title:           req.Title,
		Artist:          req.Artist,
		DurationSeconds: req.Duration,
	}
	if req.URL != "" && (meta.Title == "" || !meta.HasRealArtist()) {
		meta = h.resolver.Resolve(r.Context(), req.URL)
	}
	if meta.Title == "" || meta.Title == spotify.PlaceholderTitle {
		apperrors.WriteError(w, apperrors.BadSourceMetadata("could not identify the track"))
		return
	}

	query := search.BuildQuery(meta.Title, meta.Artist)
	candidates := h.searcher.Search(r.Context(), query, h.searchLimit)
	verdict := h.validator.Validate(meta, candidates)
	if !verdict.OK() {
		apperrors.WriteError(w, apperrors.NoMatchFound("no matching track found"))
		return
	}

	c := verdict.Candidate
	apperrors.WriteJSON(w, http.StatusOK, previewResponse{
		YouTubeURL:   c.PlaybackURL,
		VideoID:      c.VideoID,
		Title:        c.Title,
		Artist:       c.Artist,
		Duration:     c.DurationSeconds,
		ThumbnailURL: c.ThumbnailURL,
	})
}

type downloadRequest struct {
	URL        string `json:"url"`
	Title      string `json:"title"`
	Artist     string `json:"artist"`
	Duration   int    `json:"duration"`
	YouTubeURL string `json:"youtube_url"`
	Quality    string `json:"quality"`
}

// Download implements POST /api/download. On success the response body is
// the MP3 byte stream; the finalized file is deleted once fully sent.
func (h *Handlers) Download(w http.ResponseWriter, r *http.Request) {
	var req downloadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperrors.WriteError(w, apperrors.BadRequest("invalid request body"))
		return
	}
	if req.URL == "" && req.YouTubeURL == "" {
		apperrors.WriteError(w, apperrors.BadRequest("url is required"))
		return
	}
	if req.URL != "" && !spotify.IsSpotifyURL(req.URL) {
		apperrors.WriteError(w, apperrors.UnsupportedSource("only spotify links are supported"))
		return
	}

	result, err := h.orchestrator.Run(r.Context(), download.Request{
		URL:             req.URL,
		Title:           req.Title,
		Artist:          req.Artist,
		DurationSeconds: req.Duration,
		TrustedURL:      req.YouTubeURL,
		Quality:         req.Quality,
	})
	if err != nil {
		apperrors.WriteError(w, err)
		return
	}

	h.tracker.Download()
	if err := stream.SendAndDelete(w, result.FilePath, result.Title, result.PlaybackURL); err != nil {
		h.log.Error("could not serve finalized file", "job", result.JobID, "err", err)
		apperrors.WriteError(w, apperrors.InternalError("could not serve the downloaded file"))
	}
}

type streamAudioRequest struct {
	YouTubeURL string `json:"youtube_url"`
}

type streamAudioResponse struct {
	AudioURL string `json:"audio_url"`
	Title    string `json:"title"`
	Duration int    `json:"duration"`
}

// StreamAudio implements POST /api/stream_audio: resolves a short-lived
// direct audio URL the client can play without server-side transfer.
func (h *Handlers) StreamAudio(w http.ResponseWriter, r *http.Request) {
	var req streamAudioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperrors.WriteError(w, apperrors.BadRequest("invalid request body"))
		return
	}
	if req.YouTubeURL == "" {
		apperrors.WriteError(w, apperrors.BadRequest("youtube_url is required"))
		return
	}

	info, err := h.streamer.ResolveStream(r.Context(), req.YouTubeURL)
	if err != nil {
		h.log.Warn("stream resolution failed", "url", req.YouTubeURL, "err", err)
		apperrors.WriteError(w, apperrors.DownloadFailed("could not resolve an audio stream"))
		return
	}

	apperrors.WriteJSON(w, http.StatusOK, streamAudioResponse{
		AudioURL: info.AudioURL,
		Title:    info.Title,
		Duration: info.DurationSeconds,
	})
}

// Cleanup implements POST /api/cleanup: removes stray files and scratch
// directories left in the output area by crashed or abandoned jobs.
func (h *Handlers) Cleanup(w http.ResponseWriter, r *http.Request) {
	entries, err := os.ReadDir(h.outputDir)
	if err != nil {
		if os.IsNotExist(err) {
			apperrors.WriteJSON(w, http.StatusOK, map[string]int{"removed": 0})
			return
		}
		apperrors.WriteError(w, apperrors.InternalError("could not scan download directory"))
		return
	}

	removed := 0
	for _, entry := range entries {
		path := filepath.Join(h.outputDir, entry.Name())
		if err := os.RemoveAll(path); err != nil {
			h.log.Warn("cleanup could not remove entry", "path", path, "err", err)
			continue
		}
		removed++
	}

	h.log.Info("cleanup finished", "removed", removed)
	apperrors.WriteJSON(w, http.StatusOK, map[string]int{"removed": removed})
}

// clientIP prefers the first hop of X-Forwarded-For, falling back to the
// connection's remote address.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		parts := strings.Split(fwd, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
