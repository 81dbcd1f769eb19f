package handlers

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"media-gallery/pkg/config"
	"media-gallery/pkg/services"
)

// NewRouter wires every gallery route
func NewRouter(cfg *config.Config) http.Handler {
	IndexPath = fmt.Sprintf("/%s/index", cfg.SecretKey)
	SlideshowIntervalMs = cfg.SlideshowIntervalMs

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get(IndexPath, GalleryHandler)
	r.Get(fmt.Sprintf("/%s/feed", cfg.SecretKey), FeedHandler)

	r.Route("/gallery/{hash}", func(r chi.Router) {
		r.Get("/", PageHandler)
		r.Get("/manifest", ManifestHandler)
		r.Post("/viewer", CreateViewerHandler)
	})

	r.Route("/viewer/{id}", func(r chi.Router) {
		r.Get("/", ViewerStateHandler)
		r.Delete("/", DeleteViewerHandler)
		r.Post("/key", ViewerKeyHandler)
		r.Post("/click", ViewerClickHandler)
		r.Get("/events", ViewerEventsHandler)
	})

	if cfg.Source == config.SourceLocal {
		media := http.StripPrefix(services.MediaURLPrefix, http.FileServer(http.Dir(cfg.MediaDir)))
		r.Handle(services.MediaURLPrefix+"*", media)
	}

	r.Handle("/*", http.FileServer(http.Dir("./public")))

	return r
}
