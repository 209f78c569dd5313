// Package http exposes the service's client-facing surface: the realtime
// translation WebSocket and the REST endpoints for one-shot text
// translation and history.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"realtime-translation-relay/internal/auth"
	"realtime-translation-relay/internal/config"
	"realtime-translation-relay/internal/events"
	"realtime-translation-relay/internal/observability/logging"
	"realtime-translation-relay/internal/service/translator"
	"realtime-translation-relay/internal/store"
)

// Deps carries the wired service components the router serves.
type Deps struct {
	Cfg        *config.Config
	Verifier   *auth.Verifier
	Translator *translator.Translator
	Store      *store.Store
	Publisher  *events.Publisher
}

// NewRouter constructs the HTTP router for the service.
func NewRouter(deps Deps) http.Handler {
	h := &handlers{
		deps: deps,
		log:  logging.WithComponent("http"),
	}

	r := chi.NewRouter()

	// Basic middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	// Health endpoints
	r.Get("/v1/liveness", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/v1/readiness", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	// API routes
	r.Route("/v1/translate", func(r chi.Router) {
		r.Post("/text", h.translateText)
		r.Get("/text/languages", h.listLanguages)
		r.Get("/history", h.listHistory)
		r.Delete("/history/{id}", h.deleteHistory)
		r.Get("/audio/realtime", h.realtimeRelay)
	})

	return r
}
