package services

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"path"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/jonboulle/clockwork"
	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"

	"media-gallery/pkg/config"
	"media-gallery/pkg/models"
	"media-gallery/pkg/viewer"
)

// ErrGalleryNotFound is returned for an unknown gallery stub
var ErrGalleryNotFound = errors.New("gallery not found")

// Sub-folders of a gallery holding derived assets
const (
	thumbsDir   = "thumbs"
	previewsDir = "previews"
)

// Service handles operations related to galleries and their media
type Service struct {
	config       *config.Config
	source       MediaSource
	galleryCache *cache.Cache
	sessions     *SessionStore
	mu           sync.RWMutex
}

// naturalLess compares strings in a way that treats numbers as numbers rather than characters
// For example: "file2" < "file10" when using naturalLess
func naturalLess(s1, s2 string) bool {
	i, j := 0, 0
	for i < len(s1) && j < len(s2) {
		for i < len(s1) && unicode.IsSpace(rune(s1[i])) {
			i++
		}
		for j < len(s2) && unicode.IsSpace(rune(s2[j])) {
			j++
		}

		if i >= len(s1) || j >= len(s2) {
			break
		}

		if unicode.IsDigit(rune(s1[i])) && unicode.IsDigit(rune(s2[j])) {
			start1, start2 := i, j
			for i < len(s1) && unicode.IsDigit(rune(s1[i])) {
				i++
			}
			for j < len(s2) && unicode.IsDigit(rune(s2[j])) {
				j++
			}

			n1, _ := strconv.Atoi(s1[start1:i])
			n2, _ := strconv.Atoi(s2[start2:j])
			if n1 != n2 {
				return n1 < n2
			}
		} else {
			if s1[i] != s2[j] {
				return s1[i] < s2[j]
			}
			i++
			j++
		}
	}

	return len(s1)-i < len(s2)-j
}

var (
	// defaultService is the singleton instance of Service
	defaultService *Service
	once           sync.Once
)

// NewService creates a service reading media from source
func NewService(cfg *config.Config, source MediaSource) *Service {
	scheduler := viewer.NewClockScheduler(clockwork.NewRealClock())
	return &Service{
		config:       cfg,
		source:       source,
		galleryCache: cache.New(5*time.Minute, 10*time.Minute),
		sessions:     NewSessionStore(cfg.SessionTTL, cfg.SlideshowInterval(), scheduler),
	}
}

// InitService initializes the service with the given configuration
func InitService(cfg *config.Config) error {
	var err error
	once.Do(func() {
		var source MediaSource
		source, err = NewSource(context.Background(), cfg)
		if err != nil {
			return
		}
		defaultService = NewService(cfg, source)
	})
	return err
}

// SetDefaultService replaces the service used by the package level functions
func SetDefaultService(s *Service) {
	once.Do(func() {})
	defaultService = s
}

// GetCategories returns all categories with their galleries
func GetCategories() []models.Category {
	return defaultService.GetCategoriesInternal()
}

// GetGalleries returns all galleries with their entries
func GetGalleries() []models.Gallery {
	return defaultService.GetGalleriesInternal()
}

// GetGallery returns a gallery by its stub
func GetGallery(stub string) (models.Gallery, error) {
	return defaultService.GetGalleryInternal(stub)
}

// GetManifest returns the viewer manifest of a gallery
func GetManifest(stub string) (models.Manifest, error) {
	gallery, err := defaultService.GetGalleryInternal(stub)
	if err != nil {
		return models.Manifest{}, err
	}
	return gallery.Manifest(), nil
}

// Refresh drops the cached listing
func Refresh() {
	defaultService.Refresh()
}

// Sessions returns the viewer session store
func Sessions() *SessionStore {
	return defaultService.sessions
}

// Sessions returns the viewer session store of s
func (s *Service) Sessions() *SessionStore {
	return s.sessions
}

// Refresh drops the cached listing
func (s *Service) Refresh() {
	s.mu.Lock()
	s.galleryCache.Flush()
	s.mu.Unlock()
}

// GetCategoriesInternal returns all categories with their galleries
func (s *Service) GetCategoriesInternal() []models.Category {
	galleries := s.GetGalleriesInternal()
	categoryMap := make(map[string]*models.Category)

	for _, gallery := range galleries {
		categoryName := gallery.Category
		if cat, exists := categoryMap[categoryName]; exists {
			cat.Galleries = append(cat.Galleries, gallery)
		} else {
			categoryMap[categoryName] = &models.Category{
				Name:      categoryName,
				Stub:      categoryName,
				Galleries: []models.Gallery{gallery},
			}
		}
	}

	categories := make([]models.Category, 0, len(categoryMap))
	for _, category := range categoryMap {
		categories = append(categories, *category)
	}
	sort.Slice(categories, func(i, j int) bool {
		return naturalLess(categories[i].Name, categories[j].Name)
	})

	return categories
}

// GetGalleryInternal returns a gallery by its stub
func (s *Service) GetGalleryInternal(stub string) (models.Gallery, error) {
	galleries := s.GetGalleriesInternal()
	for _, gallery := range galleries {
		if gallery.Stub == stub {
			return gallery, nil
		}
	}
	return models.Gallery{}, fmt.Errorf("%w: %s", ErrGalleryNotFound, stub)
}

// GetGalleriesInternal returns all galleries, from the cache when possible.
// Listing errors are logged and yield no galleries.
func (s *Service) GetGalleriesInternal() []models.Gallery {
	galleries, err := s.LoadGalleries(context.Background())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list media")
		return []models.Gallery{}
	}
	return galleries
}

// LoadGalleries returns all galleries, from the cache when possible
func (s *Service) LoadGalleries(ctx context.Context) ([]models.Gallery, error) {
	s.mu.RLock()
	if cached, found := s.galleryCache.Get("galleries"); found {
		s.mu.RUnlock()
		log.Debug().Msg("Using cached galleries")
		return cached.([]models.Gallery), nil
	}
	s.mu.RUnlock()

	log.Info().Msg("Listing media")
	objects, err := s.source.Objects(ctx)
	if err != nil {
		return nil, err
	}

	galleries := buildGalleries(objects, s.config.SecretKey)
	log.Info().Int("objects", len(objects)).Int("galleries", len(galleries)).Msg("Media listed")

	s.mu.Lock()
	s.galleryCache.Set("galleries", galleries, cache.DefaultExpiration)
	s.mu.Unlock()

	return galleries, nil
}

// galleryStub generates a short URL identifier for a gallery. Not a security measure.
func galleryStub(category, gallery, secretKey string) string {
	hash := sha256.New()
	hash.Write([]byte(category + "/" + gallery + secretKey))
	return fmt.Sprintf("/gallery/%s", base64.RawURLEncoding.EncodeToString(hash.Sum(nil))[0:6])
}

// assets collects the files sharing one base name inside a gallery
type assets struct {
	image, imageMIME string
	video, videoMIME string
	thumb, preview   string
}

type galleryAssets struct {
	category string
	name     string
	bases    map[string]*assets
}

// buildGalleries groups media objects into galleries of entries
func buildGalleries(objects []MediaObject, secretKey string) []models.Gallery {
	groups := make(map[string]*galleryAssets)

	for _, obj := range objects {
		parts := strings.Split(obj.Name, "/")
		if len(parts) < 3 || len(parts) > 4 || parts[len(parts)-1] == "" {
			continue
		}

		filename := parts[len(parts)-1]
		mimeType := models.MIMEFromName(filename)
		if mimeType == "" {
			continue
		}

		key := parts[0] + "/" + parts[1]
		group, ok := groups[key]
		if !ok {
			group = &galleryAssets{category: parts[0], name: parts[1], bases: make(map[string]*assets)}
			groups[key] = group
		}

		base := strings.TrimSuffix(filename, path.Ext(filename))
		a, ok := group.bases[base]
		if !ok {
			a = &assets{}
			group.bases[base] = a
		}

		if len(parts) == 4 {
			switch parts[2] {
			case thumbsDir:
				a.thumb = obj.URL
			case previewsDir:
				a.preview = obj.URL
			}
			continue
		}

		if models.KindFromMIME(mimeType) == models.KindVideo {
			a.video, a.videoMIME = obj.URL, mimeType
		} else {
			a.image, a.imageMIME = obj.URL, mimeType
		}
	}

	galleries := make([]models.Gallery, 0, len(groups))
	for _, group := range groups {
		entries := make([]models.MediaEntry, 0, len(group.bases))
		for base, a := range group.bases {
			if entry, ok := a.entry(base); ok {
				entries = append(entries, entry)
			}
		}
		if len(entries) == 0 {
			continue
		}
		sort.Slice(entries, func(i, j int) bool {
			return naturalLess(entries[i].Name, entries[j].Name)
		})

		galleries = append(galleries, models.Gallery{
			Name:     group.name,
			Category: group.category,
			Stub:     galleryStub(group.category, group.name, secretKey),
			Entries:  entries,
		})
	}

	sort.Slice(galleries, func(i, j int) bool {
		return naturalLess(galleries[i].Name, galleries[j].Name)
	})

	return galleries
}

// entry turns collected files into a media entry. An image next to a video of
// the same name is the video's thumbnail.
func (a *assets) entry(base string) (models.MediaEntry, bool) {
	entry := models.MediaEntry{Name: base, Caption: base}

	switch {
	case a.video != "":
		entry.FullRef = a.video
		entry.MIMEType = a.videoMIME
		entry.ThumbnailRef = firstNonEmpty(a.thumb, a.image, a.preview)
		entry.PreviewRef = firstNonEmpty(a.preview, a.image, a.thumb)
	case a.image != "":
		entry.FullRef = a.image
		entry.MIMEType = a.imageMIME
		entry.ThumbnailRef = firstNonEmpty(a.thumb, a.preview, a.image)
		entry.PreviewRef = firstNonEmpty(a.preview, a.image)
	default:
		return models.MediaEntry{}, false
	}

	return entry, true
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
