// Package match decides whether a search candidate is the same recording as
// the resolved source track. Three gates run in sequence per candidate:
// artist containment, a version filter, and title similarity. Candidates
// are tried in search-rank order and the first survivor wins; no survivor
// means no match, never a fabricated one.
package match

import (
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/charmbracelet/log"

	"github.com/nihadubi/soundwave/internal/logger"
	"github.com/nihadubi/soundwave/internal/search"
	"github.com/nihadubi/soundwave/internal/spotify"
	"github.com/nihadubi/soundwave/internal/textnorm"
)

// versionMarkers flag alternate renditions. A candidate carrying one of
// these is the wrong version unless the source title carries one too.
var versionMarkers = []string{"remix", "cover", "live", "club mix", "acoustic", "instrumental"}

// minTitleOverlap is the token-overlap ratio below which a candidate title
// is considered a different song.
const minTitleOverlap = 0.25

// DurationTolerance is the maximum absolute difference, in seconds, for two
// durations to count as the same recording.
const DurationTolerance = 15

// Reason classifies why a candidate was rejected or accepted.
type Reason string

const (
	Accepted                Reason = "accepted"
	RejectedArtistMismatch  Reason = "artist_mismatch"
	RejectedUnwantedVersion Reason = "unwanted_version"
	RejectedTitleMismatch   Reason = "title_mismatch"
	NoCandidateSurvived     Reason = "no_candidate_survived"
)

// Verdict is the outcome of validating a candidate list.
type Verdict struct {
	Reason    Reason
	Candidate *search.Candidate
	// Rejections records the per-candidate reason for everything that was
	// skipped before the winner (or for all candidates when none survived).
	Rejections []Reason
}

// OK reports whether a candidate was accepted.
func (v Verdict) OK() bool {
	return v.Reason == Accepted
}

// Validator applies the gate sequence to candidate lists.
type Validator struct {
	log *log.Logger
}

func NewValidator() *Validator {
	return &Validator{log: logger.WithComponent("match")}
}

// Validate walks candidates in order and returns the first one passing all
// gates. A gate failure skips to the next candidate rather than aborting.
func (v *Validator) Validate(source spotify.TrackMetadata, candidates []search.Candidate) Verdict {
	verdict := Verdict{Reason: NoCandidateSurvived}

	for i := range candidates {
		candidate := &candidates[i]
		reason := v.check(source, candidate)

		v.log.Debug("candidate checked",
			"candidate", candidate.Title,
			"source", source.Title,
			"reason", reason,
			"similarity", titleSimilarity(source.Title, candidate.Title))

		if reason == Accepted {
			verdict.Reason = Accepted
			verdict.Candidate = candidate
			return verdict
		}
		verdict.Rejections = append(verdict.Rejections, reason)
	}

	v.log.Info("no candidate survived validation",
		"source", source.Title, "artist", source.Artist, "candidates", len(candidates))
	return verdict
}

func (v *Validator) check(source spotify.TrackMetadata, candidate *search.Candidate) Reason {
	if !artistGate(source.Artist, candidate.Artist) {
		return RejectedArtistMismatch
	}
	if !versionGate(source.Title, candidate.Title) {
		return RejectedUnwantedVersion
	}
	if !titleGate(source, candidate.Title) {
		return RejectedTitleMismatch
	}
	return Accepted
}

// artistGate passes when either folded artist contains the other, covering
// "Artist feat. X" against "Artist" in both directions. An empty side skips
// the gate; the title gate carries the weight then.
func artistGate(sourceArtist, candidateArtist string) bool {
	src := textnorm.Fold(sourceArtist)
	cand := textnorm.Fold(candidateArtist)
	if src == "" || cand == "" {
		return true
	}
	return strings.Contains(src, cand) || strings.Contains(cand, src)
}

// versionGate rejects candidates carrying a version marker the source title
// lacks. When the source itself names a version, any candidate passes.
func versionGate(sourceTitle, candidateTitle string) bool {
	if hasVersionMarker(sourceTitle) {
		return true
	}
	return !hasVersionMarker(candidateTitle)
}

func hasVersionMarker(title string) bool {
	folded := textnorm.Fold(title)
	for _, marker := range versionMarkers {
		if strings.Contains(folded, marker) {
			return true
		}
	}
	return false
}

// titleGate: exact normalized match passes outright. Containment of the
// source title in the candidate passes when the source artist is a sentinel
// or an artist token shows up in the candidate title. Otherwise token
// overlap against the source title must reach minTitleOverlap.
func titleGate(source spotify.TrackMetadata, candidateTitle string) bool {
	srcTokens := textnorm.Normalize(source.Title)
	candTokens := textnorm.Normalize(candidateTitle)

	// Nothing left to compare; default permissive.
	if len(srcTokens) == 0 {
		return true
	}

	srcJoined := strings.Join(srcTokens, " ")
	candJoined := strings.Join(candTokens, " ")
	if srcJoined == candJoined {
		return true
	}

	if strings.Contains(candJoined, srcJoined) {
		if spotify.IsSentinelArtist(source.Artist) {
			return true
		}
		for _, tok := range textnorm.Normalize(source.Artist) {
			if strings.Contains(candJoined, tok) {
				return true
			}
		}
	}

	candSet := make(map[string]struct{}, len(candTokens))
	for _, tok := range candTokens {
		candSet[tok] = struct{}{}
	}
	matched := 0
	for _, tok := range srcTokens {
		if _, ok := candSet[tok]; ok {
			matched++
			continue
		}
		if strings.Contains(candJoined, tok) {
			matched++
		}
	}
	ratio := float64(matched) / float64(len(srcTokens))
	return ratio >= minTitleOverlap
}

// titleSimilarity is a diagnostic score in [0,1] based on edit distance
// between folded titles. Logged only; gate decisions never depend on it.
func titleSimilarity(a, b string) float64 {
	fa, fb := textnorm.Fold(a), textnorm.Fold(b)
	if fa == "" && fb == "" {
		return 1
	}
	longest := len(fa)
	if len(fb) > longest {
		longest = len(fb)
	}
	if longest == 0 {
		return 1
	}
	dist := levenshtein.ComputeDistance(fa, fb)
	return 1 - float64(dist)/float64(longest)
}

// DownloadedCheck is the coarse post-download re-check applied when only a
// single result was fetched. Duration agreement within DurationTolerance is
// strong enough on its own: a title mismatch then logs a warning instead of
// blocking. Both failing rejects with the combined reasons.
type DownloadedCheck struct {
	OK       bool
	Warnings []string
	Failures []string
}

// ValidateDownloaded compares a fetched track against the source metadata.
func (v *Validator) ValidateDownloaded(source spotify.TrackMetadata, title string, durationSeconds int) DownloadedCheck {
	durationOK := source.DurationSeconds <= 0 || durationSeconds <= 0 ||
		abs(source.DurationSeconds-durationSeconds) <= DurationTolerance
	titleOK := titleGate(source, title)

	check := DownloadedCheck{OK: true}
	switch {
	case durationOK && titleOK:
	case durationOK && !titleOK:
		check.Warnings = append(check.Warnings, "title mismatch, accepted on duration agreement")
		v.log.Warn("downloaded title differs from source",
			"source", source.Title, "downloaded", title)
	default:
		check.OK = false
		if !durationOK {
			check.Failures = append(check.Failures, "duration outside tolerance")
		}
		if !titleOK {
			check.Failures = append(check.Failures, "title mismatch")
		}
	}
	return check
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
