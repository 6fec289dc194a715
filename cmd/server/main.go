package main

import (
	"net/http"
	"os"

	"github.com/nihadubi/soundwave/internal/api"
	"github.com/nihadubi/soundwave/internal/config"
	"github.com/nihadubi/soundwave/internal/download"
	"github.com/nihadubi/soundwave/internal/logger"
	"github.com/nihadubi/soundwave/internal/match"
	"github.com/nihadubi/soundwave/internal/search"
	"github.com/nihadubi/soundwave/internal/spotify"
	"github.com/nihadubi/soundwave/internal/stats"
	"github.com/nihadubi/soundwave/internal/ytdlp"
)

func main() {
	cfg := config.Load()
	log := logger.Default()

	if err := os.MkdirAll(cfg.DownloadDir, 0o755); err != nil {
		log.Fatal("could not create download directory", "dir", cfg.DownloadDir, "err", err)
	}

	fetcher, err := ytdlp.New(&ytdlp.Config{
		YtdlpPath:    cfg.YtdlpPath,
		FFmpegPath:   cfg.FFmpegPath,
		AudioQuality: cfg.AudioQuality,
	})
	if err != nil {
		log.Fatal("yt-dlp is not available", "err", err)
	}

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout()}

	resolver := spotify.NewResolver(spotify.ResolverConfig{
		Client:   httpClient,
		Fallback: fetcher,
	})

	var searcher search.Searcher
	switch cfg.SearchBackend {
	case config.SearchBackendGeneric:
		searcher = search.NewGenericSearcher("", httpClient)
	default:
		searcher = search.NewCatalogSearcher(cfg.CatalogBaseURL, httpClient)
	}

	validator := match.NewValidator()

	orchestrator := download.NewOrchestrator(resolver, searcher, validator, fetcher, download.Options{
		OutputDir:          cfg.DownloadDir,
		SearchLimit:        cfg.SearchLimit,
		SerializeDownloads: cfg.SerializeDownloads,
	})

	tracker := stats.New()

	handlers := api.NewHandlers(api.HandlersConfig{
		Resolver:     resolver,
		Searcher:     searcher,
		Validator:    validator,
		Orchestrator: orchestrator,
		Streamer:     fetcher,
		Tracker:      tracker,
		OutputDir:    cfg.DownloadDir,
		SearchLimit:  cfg.SearchLimit,
	})

	router := api.NewRouter(handlers, tracker)

	log.Info("server starting",
		"addr", cfg.ServerAddr,
		"search_backend", cfg.SearchBackend,
		"download_dir", cfg.DownloadDir)
	if err := http.ListenAndServe(cfg.ServerAddr, router); err != nil {
		log.Fatal("server failed", "err", err)
	}
}
