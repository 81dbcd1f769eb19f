package viewer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"media-gallery/pkg/models"
)

func TestParseKey(t *testing.T) {
	tests := []struct {
		name string
		want Key
	}{
		{"ArrowLeft", KeyLeft},
		{"ArrowRight", KeyRight},
		{" ", KeySpace},
		{"Spacebar", KeySpace},
		{"Escape", KeyEscape},
		{"Enter", KeyEnter},
		{"s", KeySlideshow},
		{"S", KeySlideshow},
		{"+", KeyFaster},
		{"-", KeySlower},
		{"Home", KeyHome},
		{"q", KeyNone},
		{"", KeyNone},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseKey(tt.name), "key %q", tt.name)
	}
}

func TestKeyboardSession(t *testing.T) {
	h := newHarness(t, imageManifest(4), false)

	assert.True(t, h.c.HandleKey(KeyRight))
	assert.Equal(t, 1, h.c.State().SelectedIndex, "arrows move the selection while closed")

	h.c.HandleKey(KeyEnter)
	st := h.c.State()
	assert.True(t, st.ViewerOpen)
	assert.Equal(t, 1, st.ViewerIndex)

	h.c.HandleKey(KeySpace)
	assert.Equal(t, 2, h.c.State().ViewerIndex, "space advances a static viewer")

	h.c.HandleKey(KeyLeft)
	assert.Equal(t, 1, h.c.State().ViewerIndex)

	h.c.HandleKey(KeySlideshow)
	assert.Equal(t, OpenSlideshowRunning, h.c.State().Phase())

	h.c.HandleKey(KeySpace)
	assert.Equal(t, OpenSlideshowPaused, h.c.State().Phase())

	h.c.HandleKey(KeySpace)
	assert.Equal(t, OpenSlideshowRunning, h.c.State().Phase())
	assert.Equal(t, 2, h.c.State().ViewerIndex)

	h.c.HandleKey(KeySlideshow)
	assert.Equal(t, OpenStatic, h.c.State().Phase())

	h.c.HandleKey(KeyEscape)
	assert.Equal(t, Closed, h.c.State().Phase())
	assertInvariants(t, h)
}

func TestEscapeStopsSlideshow(t *testing.T) {
	h := newHarness(t, imageManifest(3), false)
	h.c.HandleKey(KeySlideshow)

	h.c.HandleKey(KeyEscape)

	st := h.c.State()
	assert.Equal(t, Closed, st.Phase())
	assert.False(t, st.SlideshowActive)
	assert.Empty(t, h.sched.pending())
}

func TestSpeedKeys(t *testing.T) {
	h := newHarness(t, imageManifest(3), false)

	h.c.HandleKey(KeySlower)
	assert.Equal(t, 3000*time.Millisecond, h.c.State().Interval)

	h.c.HandleKey(KeyFaster)
	h.c.HandleKey(KeyFaster)
	assert.Equal(t, 2000*time.Millisecond, h.c.State().Interval)
}

func TestHomeKey(t *testing.T) {
	called := 0
	c, err := New(imageManifest(2), Options{Scheduler: &fakeScheduler{}, Home: func() { called++ }})
	require.NoError(t, err)

	assert.True(t, c.HandleKey(KeyHome))
	assert.Equal(t, 1, called)
	assert.False(t, c.HandleKey(KeyNone))
}

func TestHandleClick(t *testing.T) {
	m := models.Manifest{Entries: []models.MediaEntry{image("a"), image("b"), image("c")}}
	h := newHarness(t, m, false)

	assert.True(t, h.c.HandleClick(Click{Target: TargetThumbnail, Index: 2}))
	assert.Equal(t, 2, h.c.State().SelectedIndex)

	h.c.HandleClick(Click{Target: TargetLoadArea})
	assert.Equal(t, 2, h.c.State().ViewerIndex)
	assert.True(t, h.c.State().ViewerOpen)

	h.c.HandleClick(Click{Target: TargetNextChrome})
	assert.Equal(t, 0, h.c.State().ViewerIndex)

	h.c.HandleClick(Click{Target: TargetPrevChrome})
	assert.Equal(t, 2, h.c.State().ViewerIndex)

	h.c.HandleClick(Click{Target: TargetBackdrop})
	assert.False(t, h.c.State().ViewerOpen)

	assert.False(t, h.c.HandleClick(Click{Target: TargetNone}))
}

func TestParseClickTarget(t *testing.T) {
	assert.Equal(t, TargetThumbnail, ParseClickTarget("thumbnail"))
	assert.Equal(t, TargetCloseChrome, ParseClickTarget("Close"))
	assert.Equal(t, TargetNone, ParseClickTarget("elsewhere"))
}
