package search

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"

	"github.com/charmbracelet/log"

	"github.com/nihadubi/soundwave/internal/logger"
)

const defaultResultsBase = "https://www.youtube.com/results"

var initialDataRe = regexp.MustCompile(`(?s)var ytInitialData\s*=\s*(\{.+?\});\s*</script>`)

// GenericSearcher scrapes the video search results page. Faster to deploy
// than the catalog backend but less precise: no reliable artist field, and
// duration only as a "MM:SS"/"HH:MM:SS" display string.
type GenericSearcher struct {
	baseURL string
	client  *http.Client
	log     *log.Logger
}

// NewGenericSearcher creates a generic video searcher. baseURL is
// overridable for tests; "" selects the real endpoint.
func NewGenericSearcher(baseURL string, client *http.Client) *GenericSearcher {
	if baseURL == "" {
		baseURL = defaultResultsBase
	}
	if client == nil {
		client = &http.Client{}
	}
	return &GenericSearcher{
		baseURL: baseURL,
		client:  client,
		log:     logger.WithComponent("search.generic"),
	}
}

// Structures covering the slice of the results-page payload we read. The
// page embeds a large JSON blob; everything outside videoRenderer entries
// is ignored.
type initialData struct {
	Contents struct {
		TwoColumnSearchResultsRenderer struct {
			PrimaryContents struct {
				SectionListRenderer struct {
					Contents []struct {
						ItemSectionRenderer struct {
							Contents []struct {
								VideoRenderer *videoRenderer `json:"videoRenderer"`
							} `json:"contents"`
						} `json:"itemSectionRenderer"`
					} `json:"contents"`
				} `json:"sectionListRenderer"`
			} `json:"primaryContents"`
		} `json:"twoColumnSearchResultsRenderer"`
	} `json:"contents"`
}

type videoRenderer struct {
	VideoID string `json:"videoId"`
	Title   struct {
		Runs []struct {
			Text string `json:"text"`
		} `json:"runs"`
	} `json:"title"`
	LengthText struct {
		SimpleText string `json:"simpleText"`
	} `json:"lengthText"`
	OwnerText struct {
		Runs []struct {
			Text string `json:"text"`
		} `json:"runs"`
	} `json:"ownerText"`
	Thumbnail struct {
		Thumbnails []struct {
			URL string `json:"url"`
		} `json:"thumbnails"`
	} `json:"thumbnail"`
}

// Search implements Searcher.
func (s *GenericSearcher) Search(ctx context.Context, query string, limit int) []Candidate {
	endpoint := fmt.Sprintf("%s?search_query=%s", s.baseURL, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		s.log.Warn("bad search request", "err", err)
		return nil
	}
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := s.client.Do(req)
	if err != nil {
		s.log.Warn("generic search failed", "query", query, "err", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.log.Warn("generic search rejected", "query", query, "status", resp.StatusCode)
		return nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		s.log.Warn("generic response unreadable", "err", err)
		return nil
	}

	candidates := parseResultsPage(body, limit)
	s.log.Info("generic search", "query", query, "results", len(candidates))
	return candidates
}

func parseResultsPage(body []byte, limit int) []Candidate {
	m := initialDataRe.FindSubmatch(body)
	if m == nil {
		return nil
	}

	var data initialData
	if err := json.Unmarshal(m[1], &data); err != nil {
		return nil
	}

	var candidates []Candidate
	sections := data.Contents.TwoColumnSearchResultsRenderer.PrimaryContents.SectionListRenderer.Contents
	for _, section := range sections {
		for _, item := range section.ItemSectionRenderer.Contents {
			vr := item.VideoRenderer
			if vr == nil || vr.VideoID == "" {
				continue
			}
			if len(candidates) >= limit {
				return candidates
			}

			candidate := Candidate{
				VideoID:         vr.VideoID,
				DurationSeconds: parseDurationDisplay(vr.LengthText.SimpleText),
				PlaybackURL:     "https://www.youtube.com/watch?v=" + vr.VideoID,
			}
			if len(vr.Title.Runs) > 0 {
				candidate.Title = vr.Title.Runs[0].Text
			}
			if len(vr.OwnerText.Runs) > 0 {
				// Channel name: an artist hint only, not authoritative.
				candidate.Artist = vr.OwnerText.Runs[0].Text
			}
			if n := len(vr.Thumbnail.Thumbnails); n > 0 {
				candidate.ThumbnailURL = vr.Thumbnail.Thumbnails[n-1].URL
			}

			candidates = append(candidates, candidate)
		}
	}
	return candidates
}
