package services

import (
	"context"
	"fmt"
	"io/fs"
	"net/url"
	"path"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"media-gallery/pkg/models"
)

// MediaURLPrefix is where the server exposes the local media directory
const MediaURLPrefix = "/media/"

// galleryPattern matches files below <category>/<gallery>/
const galleryPattern = "*/*/**"

// LocalSource serves media from a directory tree
type LocalSource struct {
	fsys      fs.FS
	urlPrefix string
}

// NewLocalSource creates a source over fsys whose URLs start with urlPrefix
func NewLocalSource(fsys fs.FS, urlPrefix string) *LocalSource {
	return &LocalSource{fsys: fsys, urlPrefix: urlPrefix}
}

// Objects returns every media file of the tree
func (s *LocalSource) Objects(_ context.Context) ([]MediaObject, error) {
	matches, err := doublestar.Glob(s.fsys, galleryPattern)
	if err != nil {
		return nil, fmt.Errorf("globbing media: %w", err)
	}
	sort.Strings(matches)

	objects := make([]MediaObject, 0, len(matches))
	for _, name := range matches {
		if models.MIMEFromName(name) == "" {
			continue
		}
		objects = append(objects, MediaObject{
			Name: name,
			URL:  (&url.URL{Path: path.Join(s.urlPrefix, name)}).EscapedPath(),
		})
	}
	return objects, nil
}
