package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"

	"github.com/eknkc/pug"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"media-gallery/pkg/models"
	"media-gallery/pkg/services"
)

// ViewsDir holds the pug templates
var ViewsDir = "./views"

// IndexPath is the secret index page, linked from gallery pages for the Home key
var IndexPath = "/"

// SlideshowIntervalMs is handed to gallery pages as the initial slideshow speed
var SlideshowIntervalMs = 3000

func renderTemplate(w http.ResponseWriter, name string, data interface{}) {
	template, err := pug.CompileFile(filepath.Join(ViewsDir, name), pug.Options{})
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		log.Error().Err(err).Str("template", name).Msg("Template error")
		return
	}

	if err := template.Execute(w, data); err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		log.Error().Err(err).Str("template", name).Msg("Template execution error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("Writing JSON response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// galleryStub rebuilds the gallery stub from the route's hash
func galleryStub(r *http.Request) string {
	return "/gallery/" + chi.URLParam(r, "hash")
}

// GalleryHandler handles requests for the gallery index page
func GalleryHandler(w http.ResponseWriter, _ *http.Request) {
	log.Info().Msg("Generating Index")

	renderTemplate(w, "index.pug", models.Index{
		Categories: services.GetCategories(),
	})
}

// FeedHandler handles requests for the gallery feed (JSON)
func FeedHandler(w http.ResponseWriter, _ *http.Request) {
	log.Info().Msg("Generating Feed")
	writeJSON(w, http.StatusOK, services.GetGalleries())
}

// PageHandler handles requests for individual gallery pages
func PageHandler(w http.ResponseWriter, r *http.Request) {
	stub := galleryStub(r)

	gallery, err := services.GetGallery(stub)
	if err != nil {
		log.Info().Str("stub", stub).Msg("Gallery not found")
		http.NotFound(w, r)
		return
	}
	log.Info().Str("stub", stub).Msg("Generating Gallery Page")

	renderTemplate(w, "gallery.pug", models.Page{
		Gallery:     gallery,
		IndexURL:    IndexPath,
		IntervalMs:  SlideshowIntervalMs,
		ViewerURL:   stub + "/viewer",
		ManifestURL: stub + "/manifest",
	})
}

// ManifestHandler returns the viewer manifest of a gallery
func ManifestHandler(w http.ResponseWriter, r *http.Request) {
	manifest, err := services.GetManifest(galleryStub(r))
	if errors.Is(err, services.ErrGalleryNotFound) {
		writeError(w, http.StatusNotFound, "gallery not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, manifest)
}
