package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nihadubi/soundwave/internal/download"
	apperrors "github.com/nihadubi/soundwave/internal/errors"
	"github.com/nihadubi/soundwave/internal/match"
	"github.com/nihadubi/soundwave/internal/search"
	"github.com/nihadubi/soundwave/internal/spotify"
	"github.com/nihadubi/soundwave/internal/stats"
	"github.com/nihadubi/soundwave/internal/ytdlp"
)

type stubResolver struct {
	meta   spotify.TrackMetadata
	tracks []spotify.CollectionTrack
	title  string
}

func (s *stubResolver) Resolve(_ context.Context, _ string) spotify.TrackMetadata {
	return s.meta
}

func (s *stubResolver) ResolveCollection(_ context.Context, _, _ string) []spotify.CollectionTrack {
	return s.tracks
}

func (s *stubResolver) CollectionTitle(_ context.Context, _ string) string {
	return s.title
}

type stubSearcher struct {
	candidates []search.Candidate
}

func (s *stubSearcher) Search(_ context.Context, _ string, _ int) []search.Candidate {
	return s.candidates
}

type stubOrchestrator struct {
	result *download.Result
	err    error
	got    download.Request
}

func (s *stubOrchestrator) Run(_ context.Context, req download.Request) (*download.Result, error) {
	s.got = req
	return s.result, s.err
}

type stubStreamer struct {
	info *ytdlp.StreamInfo
	err  error
}

func (s *stubStreamer) ResolveStream(_ context.Context, _ string) (*ytdlp.StreamInfo, error) {
	return s.info, s.err
}

type fixture struct {
	router       *Router
	resolver     *stubResolver
	searcher     *stubSearcher
	orchestrator *stubOrchestrator
	streamer     *stubStreamer
	tracker      *stats.Tracker
	outputDir    string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		resolver:     &stubResolver{},
		searcher:     &stubSearcher{},
		orchestrator: &stubOrchestrator{},
		streamer:     &stubStreamer{},
		tracker:      stats.New(),
		outputDir:    t.TempDir(),
	}
	handlers := NewHandlers(HandlersConfig{
		Resolver:     f.resolver,
		Searcher:     f.searcher,
		Validator:    match.NewValidator(),
		Orchestrator: f.orchestrator,
		Streamer:     f.streamer,
		Tracker:      f.tracker,
		OutputDir:    f.outputDir,
		SearchLimit:  5,
	})
	f.router = NewRouter(handlers, f.tracker)
	return f
}

func (f *fixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/api/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestStatsAndVisit(t *testing.T) {
	f := newFixture(t)

	visit := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/visit", nil)
		req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
		rec := httptest.NewRecorder()
		f.router.ServeHTTP(rec, req)
		return rec
	}

	rec := visit()
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"new_visitor":true}`, rec.Body.String())

	// Same IP again: recorded but not a new visitor.
	rec = visit()
	assert.JSONEq(t, `{"success":true,"new_visitor":false}`, rec.Body.String())

	rec = f.do(t, http.MethodGet, "/api/stats", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	var snap stats.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, 1, snap.Visitors)
	// Two visits plus this stats call.
	assert.Equal(t, 3, snap.TotalRequests)
}

func TestInfoTrack(t *testing.T) {
	f := newFixture(t)
	f.resolver.meta = spotify.TrackMetadata{
		Title: "Yellow", Artist: "Coldplay", DurationSeconds: 266,
	}

	rec := f.do(t, http.MethodGet, "/api/info?url=https://open.spotify.com/track/abc", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var info trackInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.Equal(t, "track", info.Type)
	assert.Equal(t, "Yellow", info.Title)
	assert.Equal(t, "Coldplay", info.Artist)
	assert.Equal(t, 266, info.Duration)
}

func TestInfoPlaylist(t *testing.T) {
	f := newFixture(t)
	f.resolver.tracks = []spotify.CollectionTrack{
		{Title: "One", Artist: "A", DurationSeconds: 100, URL: "https://open.spotify.com/track/1"},
		{Title: "Two", Artist: "B", DurationSeconds: 200, URL: "https://open.spotify.com/track/2"},
	}
	f.resolver.title = "Road Trip"

	rec := f.do(t, http.MethodGet, "/api/info?url=https://open.spotify.com/playlist/pl1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var info collectionInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.Equal(t, "playlist", info.Type)
	assert.Equal(t, "Road Trip", info.Title)
	require.Len(t, info.Tracks, 2)
}

func TestInfoRejectsNonSpotify(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/api/info?url=https://example.com/song", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInfoMissingURL(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/api/info", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPreviewAccepts(t *testing.T) {
	f := newFixture(t)
	f.searcher.candidates = []search.Candidate{
		{VideoID: "v1", Title: "Yellow (Remix)", Artist: "Coldplay", PlaybackURL: "u1"},
		{VideoID: "v2", Title: "Yellow", Artist: "Coldplay", DurationSeconds: 266,
			PlaybackURL: "https://music.youtube.com/watch?v=v2"},
	}

	rec := f.do(t, http.MethodPost, "/api/preview",
		`{"title":"Yellow","artist":"Coldplay","duration":266}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp previewResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	// The remix is rejected; the second candidate wins.
	assert.Equal(t, "v2", resp.VideoID)
	assert.Equal(t, "https://music.youtube.com/watch?v=v2", resp.YouTubeURL)
}

func TestPreviewMissingTitle(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodPost, "/api/preview", `{"artist":"Coldplay"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var errResp apperrors.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
	assert.Equal(t, apperrors.CodeInvalidRequest, errResp.Code)
}

func TestPreviewNoMatch(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodPost, "/api/preview", `{"title":"Yellow","artist":"Coldplay"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var errResp apperrors.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
	assert.Equal(t, apperrors.CodeNoMatchFound, errResp.Code)
}

func TestDownloadStreamsAndDeletes(t *testing.T) {
	f := newFixture(t)
	path := filepath.Join(f.outputDir, "ab12cd34_Yellow.mp3")
	require.NoError(t, os.WriteFile(path, []byte("mp3 bytes"), 0o644))
	f.orchestrator.result = &download.Result{
		JobID:       "ab12cd34",
		FilePath:    path,
		Title:       "Yellow",
		Artist:      "Coldplay",
		PlaybackURL: "https://music.youtube.com/watch?v=v2",
	}

	rec := f.do(t, http.MethodPost, "/api/download",
		`{"url":"https://open.spotify.com/track/abc","quality":"192"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "mp3 bytes", rec.Body.String())
	assert.Equal(t, "Yellow.mp3", rec.Header().Get("X-File-Name"))
	assert.Equal(t, "https://music.youtube.com/watch?v=v2", rec.Header().Get("X-YouTube-URL"))
	assert.Equal(t, "192", f.orchestrator.got.Quality)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
	assert.Equal(t, 1, f.tracker.Snapshot().Downloads)
}

func TestDownloadOrchestratorError(t *testing.T) {
	f := newFixture(t)
	f.orchestrator.err = apperrors.NoMatchFound("no matching track found")

	rec := f.do(t, http.MethodPost, "/api/download", `{"url":"https://open.spotify.com/track/abc"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Zero(t, f.tracker.Snapshot().Downloads)
}

func TestDownloadRejectsNonSpotify(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodPost, "/api/download", `{"url":"https://example.com/x"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStreamAudio(t *testing.T) {
	f := newFixture(t)
	f.streamer.info = &ytdlp.StreamInfo{
		AudioURL:        "https://cdn.example/audio.m4a",
		Title:           "Yellow",
		DurationSeconds: 266,
	}

	rec := f.do(t, http.MethodPost, "/api/stream_audio",
		`{"youtube_url":"https://music.youtube.com/watch?v=v2"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp streamAudioResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "https://cdn.example/audio.m4a", resp.AudioURL)
	assert.Equal(t, 266, resp.Duration)
}

func TestCleanup(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.WriteFile(filepath.Join(f.outputDir, "stray.mp3"), []byte("x"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(f.outputDir, "job_dead"), 0o755))

	rec := f.do(t, http.MethodPost, "/api/cleanup", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"removed":2}`, rec.Body.String())

	entries, err := os.ReadDir(f.outputDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/visit", nil)
	req.RemoteAddr = "192.0.2.9:1234"
	assert.Equal(t, "192.0.2.9", clientIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	assert.Equal(t, "203.0.113.7", clientIP(req))
}
