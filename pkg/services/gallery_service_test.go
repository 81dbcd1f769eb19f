package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"media-gallery/pkg/config"
	"media-gallery/pkg/models"
)

type fakeSource struct {
	objects []MediaObject
	err     error
	calls   int
}

func (f *fakeSource) Objects(context.Context) ([]MediaObject, error) {
	f.calls++
	return f.objects, f.err
}

func obj(name string) MediaObject {
	return MediaObject{Name: name, URL: "https://cdn.test/" + name}
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.SecretKey = "secret"
	cfg.Source = config.SourceLocal
	cfg.MediaDir = "."
	cfg.SessionTTL = time.Minute
	return cfg
}

func TestNaturalLess(t *testing.T) {
	assert.True(t, naturalLess("file2", "file10"))
	assert.False(t, naturalLess("file10", "file2"))
	assert.True(t, naturalLess("a", "b"))
	assert.True(t, naturalLess("img", "img1"))
	assert.False(t, naturalLess("same", "same"))
}

func TestBuildGalleries(t *testing.T) {
	objects := []MediaObject{
		obj("Holidays/Rome/img10.jpg"),
		obj("Holidays/Rome/img2.jpg"),
		obj("Holidays/Rome/thumbs/img2.jpg"),
		obj("Holidays/Rome/previews/img2.jpg"),
		obj("Holidays/Rome/clip.mp4"),
		obj("Holidays/Rome/clip.jpg"),
		obj("Holidays/Rome/thumbs/orphan.jpg"),
		obj("Holidays/Rome/notes.txt"),
		obj("Family/Birthday/cake.png"),
		obj("toplevel.jpg"),
		obj("a/b/c/d/too-deep.jpg"),
	}

	galleries := buildGalleries(objects, "secret")
	require.Len(t, galleries, 2)

	assert.Equal(t, "Birthday", galleries[0].Name)
	assert.Equal(t, "Family", galleries[0].Category)

	rome := galleries[1]
	assert.Equal(t, "Rome", rome.Name)
	assert.Equal(t, "Holidays", rome.Category)
	assert.Contains(t, rome.Stub, "/gallery/")
	require.Len(t, rome.Entries, 3)

	names := []string{rome.Entries[0].Name, rome.Entries[1].Name, rome.Entries[2].Name}
	assert.Equal(t, []string{"clip", "img2", "img10"}, names)

	clip := rome.Entries[0]
	assert.Equal(t, models.KindVideo, clip.Kind())
	assert.Equal(t, "https://cdn.test/Holidays/Rome/clip.mp4", clip.FullRef)
	assert.Equal(t, "https://cdn.test/Holidays/Rome/clip.jpg", clip.ThumbnailRef)
	assert.Equal(t, "https://cdn.test/Holidays/Rome/clip.jpg", clip.PreviewRef)

	img2 := rome.Entries[1]
	assert.Equal(t, models.KindImage, img2.Kind())
	assert.Equal(t, "https://cdn.test/Holidays/Rome/img2.jpg", img2.FullRef)
	assert.Equal(t, "https://cdn.test/Holidays/Rome/thumbs/img2.jpg", img2.ThumbnailRef)
	assert.Equal(t, "https://cdn.test/Holidays/Rome/previews/img2.jpg", img2.PreviewRef)

	img10 := rome.Entries[2]
	assert.Equal(t, img10.FullRef, img10.ThumbnailRef)
	assert.Equal(t, img10.FullRef, img10.PreviewRef)
}

func TestGalleryStubIsStable(t *testing.T) {
	assert.Equal(t, galleryStub("a", "b", "k"), galleryStub("a", "b", "k"))
	assert.NotEqual(t, galleryStub("a", "b", "k"), galleryStub("a", "b", "other"))
}

func TestServiceCachesListing(t *testing.T) {
	source := &fakeSource{objects: []MediaObject{obj("c/g/a.jpg")}}
	s := NewService(testConfig(), source)

	require.Len(t, s.GetGalleriesInternal(), 1)
	require.Len(t, s.GetGalleriesInternal(), 1)
	assert.Equal(t, 1, source.calls)

	s.Refresh()
	s.GetGalleriesInternal()
	assert.Equal(t, 2, source.calls)
}

func TestServiceListingError(t *testing.T) {
	source := &fakeSource{err: errors.New("bucket gone")}
	s := NewService(testConfig(), source)

	assert.Empty(t, s.GetGalleriesInternal())

	_, err := s.LoadGalleries(context.Background())
	assert.Error(t, err)
}

func TestGetGalleryAndCategories(t *testing.T) {
	source := &fakeSource{objects: []MediaObject{
		obj("Zoo/Lions/a.jpg"),
		obj("Art/Museum/b.jpg"),
		obj("Art/Gallery/c.jpg"),
	}}
	s := NewService(testConfig(), source)

	categories := s.GetCategoriesInternal()
	require.Len(t, categories, 2)
	assert.Equal(t, "Art", categories[0].Name)
	assert.Len(t, categories[0].Galleries, 2)

	lions := categories[1].Galleries[0]
	got, err := s.GetGalleryInternal(lions.Stub)
	require.NoError(t, err)
	assert.Equal(t, "Lions", got.Name)

	_, err = s.GetGalleryInternal("/gallery/nope")
	assert.ErrorIs(t, err, ErrGalleryNotFound)
}
