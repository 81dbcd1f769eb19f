package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"media-gallery/pkg/models"
)

func testManifest() models.Manifest {
	return models.Manifest{
		Name: "Rome",
		Entries: []models.MediaEntry{
			{Name: "a.jpg", FullRef: "/m/a.jpg", ThumbnailRef: "/m/thumbs/a.jpg", MIMEType: "image/jpeg"},
			{Name: "b.mp4", FullRef: "/m/b.mp4", ThumbnailRef: "/m/b.jpg", MIMEType: "video/mp4"},
			{Name: "c.jpg", FullRef: "/m/c.jpg", MIMEType: "image/jpeg"},
		},
	}
}

func testCategories() []models.Category {
	manifest := testManifest()
	return []models.Category{
		{Name: "Zoo", Galleries: []models.Gallery{{Name: "Lions", Category: "Zoo", Stub: "/gallery/abc123", Entries: manifest.Entries[:1]}}},
		{Name: "Holidays", Galleries: []models.Gallery{{Name: "Rome", Category: "Holidays", Stub: "/gallery/def456", Entries: manifest.Entries}}},
	}
}

func TestRunViewer(t *testing.T) {
	input := strings.Join([]string{
		"ArrowRight",
		"Enter",
		"click thumbnail 2",
		"Enter",
		"ArrowRight",
		"Escape",
		"F13",
		"quit",
		"ArrowRight",
	}, "\n")

	var out bytes.Buffer
	require.NoError(t, runViewer(strings.NewReader(input), &out, testManifest(), false, nil))

	expected := strings.Join([]string{
		"[load-area] 0: a.jpg (image)",
		"[load-area] 1: b.mp4 (video)",
		"  open /m/b.mp4",
		"[load-area] 2: c.jpg (image)",
		"[modal] 2: c.jpg (image)",
		"[modal] 0: a.jpg (image)",
		"[modal] hidden",
		`unknown key: "F13"`,
	}, "\n") + "\n"
	assert.Equal(t, expected, out.String())
}

func TestRunViewerInlineVideo(t *testing.T) {
	var out bytes.Buffer
	input := "click thumbnail 1\nclick load-area\nclick close\n"
	require.NoError(t, runViewer(strings.NewReader(input), &out, testManifest(), true, nil))

	assert.Contains(t, out.String(), "[modal] 1: b.mp4 (video)\n  load /m/b.mp4\n  play /m/b.mp4\n")
	assert.Contains(t, out.String(), "  pause\n[modal] hidden\n")
}

func TestRunViewerEmptyManifest(t *testing.T) {
	err := runViewer(strings.NewReader(""), &bytes.Buffer{}, models.Manifest{}, false, nil)
	assert.ErrorIs(t, err, models.ErrEmptyManifest)
}

func TestLoadManifest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rome.yaml")
	data := `name: Rome
entries:
  - name: Forum
    full: photos/forum.JPG
    caption: The forum
  - name: Trevi
    full: videos/trevi.mp4
  - name: Colosseum
    full: https://example.com/colosseum
    mimeType: image/webp
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	manifest, err := loadManifest(path)
	require.NoError(t, err)
	assert.Equal(t, "Rome", manifest.Name)
	require.Len(t, manifest.Entries, 3)
	assert.Equal(t, "image/jpeg", manifest.Entries[0].MIMEType)
	assert.Equal(t, "The forum", manifest.Entries[0].Caption)
	assert.True(t, manifest.Entries[1].IsVideo())
	assert.Equal(t, "image/webp", manifest.Entries[2].MIMEType)

	_, err = loadManifest(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestExportData(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, exportData(&out, "json", testCategories()))

	var categories []models.Category
	require.NoError(t, json.Unmarshal(out.Bytes(), &categories))
	require.Len(t, categories, 2)
	assert.Equal(t, "Holidays", categories[0].Name)
	assert.Len(t, categories[0].Galleries[0].Entries, 3)

	out.Reset()
	require.NoError(t, exportData(&out, "yaml", testCategories()))
	categories = nil
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &categories))
	require.Len(t, categories, 2)
	assert.Equal(t, "video/mp4", categories[0].Galleries[0].Entries[1].MIMEType)

	assert.ErrorIs(t, exportData(&out, "xml", testCategories()), errUnsupportedFormat)
}

func TestListGalleries(t *testing.T) {
	var out bytes.Buffer
	listGalleries(&out, testCategories())

	assert.Contains(t, out.String(), "  - Rome (images: 2, videos: 1)\n    Stub: /gallery/def456\n")
	assert.Contains(t, out.String(), "Total: 2 galleries across 2 categories\n")
}

func TestListCategories(t *testing.T) {
	var out bytes.Buffer
	listCategories(&out, testCategories())

	assert.Contains(t, out.String(), "Holidays\n  Galleries: 1\n")
	assert.Contains(t, out.String(), "Total: 2 categories\n")
}

func TestShowGallery(t *testing.T) {
	var out bytes.Buffer
	showGallery(&out, testCategories()[1].Galleries[0])

	assert.Contains(t, out.String(), "Entries: 3\n")
	assert.Contains(t, out.String(), "2. b.mp4 [video]\n   URL: /m/b.mp4\n   Thumbnail: /m/b.jpg\n")
	assert.Contains(t, out.String(), "3. c.jpg [image]\n   URL: /m/c.jpg\n\n")
}
