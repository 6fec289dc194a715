package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.ServerAddr == "" {
		t.Error("ServerAddr should have a default")
	}
	if cfg.AudioQuality != "320" {
		t.Errorf("AudioQuality = %q, want 320", cfg.AudioQuality)
	}
	if cfg.SearchBackend != SearchBackendCatalog {
		t.Errorf("SearchBackend = %q, want %q", cfg.SearchBackend, SearchBackendCatalog)
	}
	if cfg.SearchLimit != 5 {
		t.Errorf("SearchLimit = %d, want 5", cfg.SearchLimit)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SEARCH_BACKEND", "generic")
	t.Setenv("AUDIO_QUALITY", "192")
	t.Setenv("SERIALIZE_DOWNLOADS", "true")
	t.Setenv("HTTP_TIMEOUT_SECONDS", "5")

	cfg := Load()

	if cfg.SearchBackend != SearchBackendGeneric {
		t.Errorf("SearchBackend = %q, want generic", cfg.SearchBackend)
	}
	if cfg.AudioQuality != "192" {
		t.Errorf("AudioQuality = %q, want 192", cfg.AudioQuality)
	}
	if !cfg.SerializeDownloads {
		t.Error("SerializeDownloads should be true")
	}
	if cfg.HTTPTimeoutSeconds != 5 {
		t.Errorf("HTTPTimeoutSeconds = %d, want 5", cfg.HTTPTimeoutSeconds)
	}
}

func TestLoadInvalidBackendFallsBack(t *testing.T) {
	t.Setenv("SEARCH_BACKEND", "bogus")

	cfg := Load()
	if cfg.SearchBackend != SearchBackendCatalog {
		t.Errorf("SearchBackend = %q, want catalog fallback", cfg.SearchBackend)
	}
}

func TestLoadTOMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "soundwave.toml")
	body := "search_backend = \"generic\"\nsearch_limit = 10\nserialize_downloads = true\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("SOUNDWAVE_CONFIG", path)

	cfg := Load()
	if cfg.SearchBackend != SearchBackendGeneric {
		t.Errorf("SearchBackend = %q, want generic", cfg.SearchBackend)
	}
	if cfg.SearchLimit != 10 {
		t.Errorf("SearchLimit = %d, want 10", cfg.SearchLimit)
	}
	if !cfg.SerializeDownloads {
		t.Error("SerializeDownloads should be true from file")
	}
}

func TestEnvBeatsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "soundwave.toml")
	if err := os.WriteFile(path, []byte("audio_quality = \"128\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("SOUNDWAVE_CONFIG", path)
	t.Setenv("AUDIO_QUALITY", "320")

	cfg := Load()
	if cfg.AudioQuality != "320" {
		t.Errorf("AudioQuality = %q, want env override 320", cfg.AudioQuality)
	}
}
