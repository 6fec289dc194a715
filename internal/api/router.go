// Package api exposes the HTTP surface. Routing and JSON plumbing live
// here; all decisions happen in the resolver, matcher and orchestrator.
package api

import (
	"net/http"

	"github.com/nihadubi/soundwave/internal/stats"
)

type Router struct {
	mux      *http.ServeMux
	handlers *Handlers
	tracker  *stats.Tracker
}

func NewRouter(handlers *Handlers, tracker *stats.Tracker) *Router {
	r := &Router{
		mux:      http.NewServeMux(),
		handlers: handlers,
		tracker:  tracker,
	}
	r.setupRoutes()
	return r
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.tracker.Request()
	r.mux.ServeHTTP(w, req)
}

func (r *Router) setupRoutes() {
	r.mux.HandleFunc("GET /api/health", r.handlers.Health)
	r.mux.HandleFunc("GET /api/stats", r.handlers.Stats)
	r.mux.HandleFunc("POST /api/visit", r.handlers.Visit)

	r.mux.HandleFunc("GET /api/info", r.handlers.Info)
	r.mux.HandleFunc("POST /api/preview", r.handlers.Preview)
	r.mux.HandleFunc("POST /api/download", r.handlers.Download)
	r.mux.HandleFunc("POST /api/stream_audio", r.handlers.StreamAudio)
	r.mux.HandleFunc("POST /api/cleanup", r.handlers.Cleanup)
}
