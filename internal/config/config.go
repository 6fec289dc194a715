// Package config loads service configuration from an optional TOML file with
// environment variable overrides. Environment always wins so deployments can
// tweak a single knob without editing the file.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

// Search backend selection. The catalog backend queries a song-specific
// index with richer metadata; the generic backend scrapes video search
// results and is the fallback deployment choice.
const (
	SearchBackendCatalog = "catalog"
	SearchBackendGeneric = "generic"
)

type Config struct {
	ServerAddr  string `toml:"server_addr"`
	DownloadDir string `toml:"download_dir"`

	YtdlpPath  string `toml:"ytdlp_path"`
	FFmpegPath string `toml:"ffmpeg_path"`

	AudioQuality string `toml:"audio_quality"`

	SearchBackend  string `toml:"search_backend"`
	CatalogBaseURL string `toml:"catalog_base_url"`
	SearchLimit    int    `toml:"search_limit"`

	SerializeDownloads bool `toml:"serialize_downloads"`

	HTTPTimeoutSeconds int `toml:"http_timeout_seconds"`
}

// Load builds the configuration: defaults, then the TOML file named by
// SOUNDWAVE_CONFIG (if any), then environment variables.
func Load() *Config {
	cfg := defaults()

	if path := os.Getenv("SOUNDWAVE_CONFIG"); path != "" {
		// A missing or malformed file falls back to defaults rather than
		// refusing to start.
		toml.DecodeFile(path, cfg)
	}

	applyEnv(cfg)

	if cfg.SearchBackend != SearchBackendCatalog && cfg.SearchBackend != SearchBackendGeneric {
		cfg.SearchBackend = SearchBackendCatalog
	}
	if cfg.SearchLimit <= 0 {
		cfg.SearchLimit = 5
	}
	if cfg.HTTPTimeoutSeconds <= 0 {
		cfg.HTTPTimeoutSeconds = 10
	}

	return cfg
}

func defaults() *Config {
	return &Config{
		ServerAddr:         ":5000",
		DownloadDir:        filepath.Join(os.TempDir(), "soundwave_downloads"),
		YtdlpPath:          "yt-dlp",
		FFmpegPath:         "ffmpeg",
		AudioQuality:       "320",
		SearchBackend:      SearchBackendCatalog,
		CatalogBaseURL:     "http://localhost:8080",
		SearchLimit:        5,
		SerializeDownloads: false,
		HTTPTimeoutSeconds: 10,
	}
}

func applyEnv(cfg *Config) {
	cfg.ServerAddr = getEnvOrDefault("SERVER_ADDR", cfg.ServerAddr)
	cfg.DownloadDir = getEnvOrDefault("DOWNLOAD_DIR", cfg.DownloadDir)
	cfg.YtdlpPath = getEnvOrDefault("YTDLP_PATH", cfg.YtdlpPath)
	cfg.FFmpegPath = getEnvOrDefault("FFMPEG_PATH", cfg.FFmpegPath)
	cfg.AudioQuality = getEnvOrDefault("AUDIO_QUALITY", cfg.AudioQuality)
	cfg.SearchBackend = getEnvOrDefault("SEARCH_BACKEND", cfg.SearchBackend)
	cfg.CatalogBaseURL = getEnvOrDefault("CATALOG_BASE_URL", cfg.CatalogBaseURL)

	if v := os.Getenv("SEARCH_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.SearchLimit = n
		}
	}
	if v := os.Getenv("SERIALIZE_DOWNLOADS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.SerializeDownloads = b
		}
	}
	if v := os.Getenv("HTTP_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.HTTPTimeoutSeconds = n
		}
	}

	// PORT alone is honored for platform deploys that only inject a port.
	if cfg.ServerAddr == ":5000" {
		if port := os.Getenv("PORT"); port != "" {
			cfg.ServerAddr = ":" + port
		}
	}
}

// HTTPTimeout returns the outbound HTTP timeout as a duration.
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSeconds) * time.Second
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
