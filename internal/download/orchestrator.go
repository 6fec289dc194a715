// Package download sequences a full download job: resolve source metadata,
// find and validate a candidate on the secondary platform, fetch and
// transcode it, and finalize the file in the shared output area. Each job
// owns an exclusive scratch directory that never survives the job.
package download

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	apperrors "github.com/nihadubi/soundwave/internal/errors"
	"github.com/nihadubi/soundwave/internal/logger"
	"github.com/nihadubi/soundwave/internal/match"
	"github.com/nihadubi/soundwave/internal/search"
	"github.com/nihadubi/soundwave/internal/spotify"
	"github.com/nihadubi/soundwave/internal/stream"
)

// Resolver produces track metadata for a source URL. Resolution never
// fails hard; it degrades to placeholder values.
type Resolver interface {
	Resolve(ctx context.Context, url string) spotify.TrackMetadata
}

// Fetcher downloads a playable URL into destDir as a transcoded MP3.
type Fetcher interface {
	DownloadAudio(ctx context.Context, sourceURL, destDir, quality string) error
}

// Request describes one download job. Title, Artist and DurationSeconds are
// caller-supplied hints kept as fallback when fresh resolution fails.
// TrustedURL, when set, is a previously validated playback URL: search and
// validation are skipped for it.
type Request struct {
	URL             string
	Title           string
	Artist          string
	DurationSeconds int
	TrustedURL      string
	Quality         string
}

// Result is a finalized download.
type Result struct {
	JobID       string
	FilePath    string
	Title       string
	Artist      string
	PlaybackURL string
}

// Orchestrator runs download jobs.
type Orchestrator struct {
	resolver  Resolver
	searcher  search.Searcher
	validator *match.Validator
	fetcher   Fetcher

	outputDir   string
	searchLimit int

	// serialize, when non-nil, bounds concurrent transcoder invocations to
	// one. Correctness never depends on it; scratch dirs are per-job.
	serialize *sync.Mutex

	log *log.Logger
}

type Options struct {
	OutputDir          string
	SearchLimit        int
	SerializeDownloads bool
}

func NewOrchestrator(resolver Resolver, searcher search.Searcher, validator *match.Validator, fetcher Fetcher, opts Options) *Orchestrator {
	o := &Orchestrator{
		resolver:    resolver,
		searcher:    searcher,
		validator:   validator,
		fetcher:     fetcher,
		outputDir:   opts.OutputDir,
		searchLimit: opts.SearchLimit,
		log:         logger.WithComponent("download"),
	}
	if o.searchLimit <= 0 {
		o.searchLimit = 5
	}
	if opts.SerializeDownloads {
		o.serialize = &sync.Mutex{}
	}
	return o
}

// Run executes the job. The scratch directory is deleted on every path;
// only the finalized file in the output directory survives a success.
func (o *Orchestrator) Run(ctx context.Context, req Request) (*Result, error) {
	jobID := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	scratch := filepath.Join(o.outputDir, "job_"+jobID)
	if err := os.MkdirAll(scratch, 0o755); err != nil {
		return nil, apperrors.InternalError("could not allocate working directory").WithCause(err)
	}

	result, err := o.run(ctx, jobID, scratch, req)
	if err != nil {
		os.RemoveAll(scratch)
		return nil, err
	}
	return result, nil
}

func (o *Orchestrator) run(ctx context.Context, jobID, scratch string, req Request) (*Result, error) {
	meta := o.resolveWithFallback(ctx, req)

	playbackURL := req.TrustedURL
	candidateDuration := 0
	if playbackURL != "" {
		// Trust boundary: a URL from a prior successful preview is not
		// re-validated.
		o.log.Info("using caller-trusted playback url", "job", jobID, "url", playbackURL)
	} else {
		if meta.Title == spotify.PlaceholderTitle || !meta.HasRealArtist() {
			return nil, apperrors.BadSourceMetadata("could not identify the track from the link")
		}

		query := search.BuildQuery(meta.Title, meta.Artist)
		candidates := o.searcher.Search(ctx, query, o.searchLimit)
		verdict := o.validator.Validate(meta, candidates)
		if !verdict.OK() {
			return nil, apperrors.NoMatchFound("no matching track found")
		}
		playbackURL = verdict.Candidate.PlaybackURL
		candidateDuration = verdict.Candidate.DurationSeconds
		o.log.Info("candidate accepted", "job", jobID,
			"video", verdict.Candidate.VideoID, "title", verdict.Candidate.Title)
	}

	if o.serialize != nil {
		o.serialize.Lock()
		defer o.serialize.Unlock()
	}

	if err := o.fetcher.DownloadAudio(ctx, playbackURL, scratch, req.Quality); err != nil {
		o.log.Error("fetch failed", "job", jobID, "url", playbackURL, "err", err)
		return nil, apperrors.DownloadFailed("the track could not be downloaded").WithCause(err)
	}

	produced, err := locateOutput(scratch)
	if err != nil {
		return nil, apperrors.DownloadFailed("the track could not be downloaded").WithCause(err)
	}

	// Coarse re-check of what was actually fetched. The transcoder names the
	// file after the video title; the candidate's reported duration stands in
	// for the fetched length.
	fetchedTitle := strings.TrimSuffix(filepath.Base(produced), filepath.Ext(produced))
	check := o.validator.ValidateDownloaded(meta, fetchedTitle, candidateDuration)
	if !check.OK {
		return nil, apperrors.DownloadFailed(
			"downloaded track failed verification: " + strings.Join(check.Failures, ", "))
	}

	finalName := fmt.Sprintf("%s_%s.mp3", jobID, stream.SafeFilename(meta.Title))
	finalPath := filepath.Join(o.outputDir, finalName)
	if err := os.Rename(produced, finalPath); err != nil {
		return nil, apperrors.InternalError("could not finalize download").WithCause(err)
	}
	if err := os.Remove(scratch); err != nil {
		// The file already moved out; a stale empty dir is not fatal.
		os.RemoveAll(scratch)
	}

	o.log.Info("job finalized", "job", jobID, "file", finalName)
	return &Result{
		JobID:       jobID,
		FilePath:    finalPath,
		Title:       meta.Title,
		Artist:      meta.Artist,
		PlaybackURL: playbackURL,
	}, nil
}

// resolveWithFallback resolves fresh metadata from the source URL, then
// backfills any placeholder field from the caller-supplied hints. Fresh
// resolution wins when both exist: batch callers often pass stale fields.
func (o *Orchestrator) resolveWithFallback(ctx context.Context, req Request) spotify.TrackMetadata {
	meta := o.resolver.Resolve(ctx, req.URL)

	if meta.Title == spotify.PlaceholderTitle && req.Title != "" {
		meta.Title = req.Title
	}
	if !meta.HasRealArtist() && req.Artist != "" && !spotify.IsSentinelArtist(req.Artist) {
		meta.Artist = req.Artist
	}
	if meta.DurationSeconds == 0 {
		meta.DurationSeconds = req.DurationSeconds
	}
	return meta
}

// locateOutput finds the single MP3 the transcoder produced in the scratch
// directory.
func locateOutput(scratch string) (string, error) {
	entries, err := os.ReadDir(scratch)
	if err != nil {
		return "", err
	}

	var mp3s []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.EqualFold(filepath.Ext(entry.Name()), ".mp3") {
			mp3s = append(mp3s, filepath.Join(scratch, entry.Name()))
		}
	}

	switch len(mp3s) {
	case 0:
		return "", fmt.Errorf("no output file in %s", scratch)
	case 1:
		return mp3s[0], nil
	default:
		return "", fmt.Errorf("expected one output file in %s, found %d", scratch, len(mp3s))
	}
}
