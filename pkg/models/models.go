package models

import (
	"errors"
	"path/filepath"
	"strings"
)

// ErrEmptyManifest is returned when a manifest has no entries
var ErrEmptyManifest = errors.New("manifest has no entries")

// MediaKind tells images and videos apart
type MediaKind int

const (
	KindImage MediaKind = iota
	KindVideo
)

func (k MediaKind) String() string {
	if k == KindVideo {
		return "video"
	}
	return "image"
}

// mimeTypes maps the extensions a gallery may contain to their MIME types
var mimeTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".mp4":  "video/mp4",
	".m4v":  "video/x-m4v",
	".webm": "video/webm",
	".mov":  "video/quicktime",
	".avi":  "video/x-msvideo",
}

// MIMEFromName returns the MIME type for a file name, or "" when the extension is unknown
func MIMEFromName(name string) string {
	return mimeTypes[strings.ToLower(filepath.Ext(name))]
}

// KindFromMIME classifies a MIME type. Anything under video/ is a video.
func KindFromMIME(mimeType string) MediaKind {
	if strings.HasPrefix(strings.ToLower(mimeType), "video/") {
		return KindVideo
	}
	return KindImage
}

// MediaEntry is one item of a gallery
type MediaEntry struct {
	Name         string `json:"name" yaml:"name"`
	ThumbnailRef string `json:"thumbnail" yaml:"thumbnail"`
	PreviewRef   string `json:"preview" yaml:"preview"`
	FullRef      string `json:"full" yaml:"full"`
	Caption      string `json:"caption" yaml:"caption"`
	MIMEType     string `json:"mimeType" yaml:"mimeType"`
}

// Kind returns the entry's media kind derived from its MIME type
func (e MediaEntry) Kind() MediaKind {
	return KindFromMIME(e.MIMEType)
}

// IsVideo reports whether the entry is a video
func (e MediaEntry) IsVideo() bool {
	return e.Kind() == KindVideo
}

// Manifest is the ordered list of entries a viewer navigates
type Manifest struct {
	Name    string       `json:"name" yaml:"name"`
	Entries []MediaEntry `json:"entries" yaml:"entries"`
}

// Len returns the number of entries
func (m Manifest) Len() int {
	return len(m.Entries)
}

// Entry returns the entry at index i
func (m Manifest) Entry(i int) MediaEntry {
	return m.Entries[i]
}

// Validate checks the manifest can drive a viewer
func (m Manifest) Validate() error {
	if len(m.Entries) == 0 {
		return ErrEmptyManifest
	}
	return nil
}

// Category represents a category of galleries
type Category struct {
	Name      string    `json:"name" yaml:"name"`
	Stub      string    `json:"stub" yaml:"stub"`
	Galleries []Gallery `json:"galleries" yaml:"galleries"`
}

// Gallery represents a collection of media entries
type Gallery struct {
	Name     string       `json:"name" yaml:"name"`
	Category string       `json:"category" yaml:"category"`
	Stub     string       `json:"-" yaml:"-"`
	Entries  []MediaEntry `json:"entries" yaml:"entries"`
}

// Manifest returns the gallery's entries as a viewer manifest
func (g Gallery) Manifest() Manifest {
	return Manifest{Name: g.Name, Entries: g.Entries}
}

// Index represents the main index page data
type Index struct {
	Categories []Category
}

// Page represents the data handed to the gallery page template
type Page struct {
	Gallery     Gallery
	IndexURL    string
	IntervalMs  int
	ViewerURL   string
	ManifestURL string
}
