// Package stream serves finished download files over HTTP and removes them
// afterward. Files live in scratch space only for the duration of one
// response; nothing is retained server-side.
package stream

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/gosimple/slug"
	"github.com/gosimple/unidecode"

	"github.com/nihadubi/soundwave/internal/logger"
)

// chunkSize keeps memory flat while copying large files.
const chunkSize = 8192

var forbiddenChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)

// SafeFilename converts a track title into a filename usable across
// filesystems and in a Content-Disposition header. Falls back to a slug,
// then to a fixed name, when sanitization leaves nothing.
func SafeFilename(title string) string {
	name := unidecode.Unidecode(title)
	name = forbiddenChars.ReplaceAllString(name, "")
	name = strings.TrimSpace(name)
	if name == "" {
		name = slug.Make(title)
	}
	if name == "" {
		name = "track"
	}
	return name
}

// SendAndDelete streams the file at path to the client and deletes it when
// done, whether the copy succeeded or not. downloadName is the client-facing
// filename (without extension); sourceURL, when set, is echoed in the
// X-YouTube-URL header so clients can attribute the match.
func SendAndDelete(w http.ResponseWriter, path, downloadName, sourceURL string) error {
	log := logger.WithComponent("stream")

	f, err := os.Open(path)
	if err != nil {
		// Nothing was sent; the caller can still produce an error response.
		return fmt.Errorf("open download file: %w", err)
	}

	defer func() {
		f.Close()
		if err := os.Remove(path); err != nil {
			log.Warn("could not remove served file", "path", path, "err", err)
		}
	}()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat download file: %w", err)
	}

	filename := SafeFilename(downloadName) + ".mp3"
	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("Content-Length", strconv.FormatInt(info.Size(), 10))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("X-File-Name", filename)
	if sourceURL != "" {
		w.Header().Set("X-YouTube-URL", sourceURL)
	}
	w.WriteHeader(http.StatusOK)

	buf := make([]byte, chunkSize)
	if _, err := io.CopyBuffer(w, f, buf); err != nil {
		// Headers are gone; log and let the deferred cleanup run.
		log.Warn("client disconnected mid-stream", "path", path, "err", err)
		return nil
	}

	log.Info("file served and removed", "file", filename, "bytes", info.Size())
	return nil
}
