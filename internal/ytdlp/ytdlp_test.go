package ytdlp

import (
	"errors"
	"testing"
)

func TestCategorizeError(t *testing.T) {
	base := errors.New("exit status 1")
	tests := []struct {
		name   string
		stderr string
		want   error
	}{
		{"unavailable", "ERROR: Video unavailable", ErrVideoUnavailable},
		{"private", "ERROR: This video is private", ErrVideoPrivate},
		{"age", "Sign in to confirm your age", ErrAgeRestricted},
		{"network", "unable to download webpage: connection reset", ErrNetworkError},
		{"unsupported", "ERROR: Unsupported URL: ftp://x", ErrURLNotSupported},
		{"fallthrough", "something else entirely", ErrDownloadFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := categorizeError("https://example.com/v", base, tt.stderr)
			if !errors.Is(err, tt.want) {
				t.Errorf("categorizeError(%q) = %v, want %v", tt.stderr, err, tt.want)
			}
			var execErr *ExecError
			if !errors.As(err, &execErr) {
				t.Fatalf("expected *ExecError, got %T", err)
			}
			if execErr.URL != "https://example.com/v" {
				t.Errorf("URL = %q", execErr.URL)
			}
		})
	}
}

func TestFirstNonEmpty(t *testing.T) {
	if got := firstNonEmpty("", "  ", "Daft Punk", "Channel"); got != "Daft Punk" {
		t.Errorf("firstNonEmpty = %q", got)
	}
	if got := firstNonEmpty("", ""); got != "" {
		t.Errorf("firstNonEmpty empty = %q", got)
	}
}
