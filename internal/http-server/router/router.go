package router

import (
	"net/http"

	"panorama-ingest/internal/http-server/handler/panorama"
	"panorama-ingest/internal/http-server/middleware"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	PanoramaHandler *panorama.PanoramaHandler
}

func SetupRouter(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RecoveryMiddleware)
	r.Use(middleware.LoggingMiddleware)

	r.Route("/api", func(r chi.Router) {
		r.Route("/panoramas", func(r chi.Router) {
			r.Post("/", h.PanoramaHandler.UploadPanorama)
			r.Get("/", h.PanoramaHandler.ListPanoramas)
			r.Get("/{id}", h.PanoramaHandler.GetPanorama)
		})

		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"status":"ok"}`))
		})
	})

	return r
}
