package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"media-gallery/pkg/models"
	"media-gallery/pkg/viewer"
)

type manualTimer struct {
	f       func()
	stopped bool
}

func (t *manualTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

type manualScheduler struct {
	timers []*manualTimer
}

func (s *manualScheduler) AfterFunc(_ time.Duration, f func()) viewer.Timer {
	t := &manualTimer{f: f}
	s.timers = append(s.timers, t)
	return t
}

func (s *manualScheduler) fireLatest() {
	t := s.timers[len(s.timers)-1]
	if t.stopped {
		return
	}
	t.stopped = true
	t.f()
}

func testGallery() models.Gallery {
	return models.Gallery{
		Name:     "Rome",
		Category: "Holidays",
		Stub:     "/gallery/abc",
		Entries: []models.MediaEntry{
			{Name: "a", FullRef: "a.jpg", PreviewRef: "a-p.jpg", MIMEType: "image/jpeg"},
			{Name: "b", FullRef: "b.mp4", PreviewRef: "b.jpg", MIMEType: "video/mp4"},
			{Name: "c", FullRef: "c.jpg", PreviewRef: "c-p.jpg", MIMEType: "image/jpeg"},
		},
	}
}

func TestSessionRecordsEvents(t *testing.T) {
	store := NewSessionStore(time.Minute, 3*time.Second, &manualScheduler{})

	session, err := store.Create(testGallery(), false)
	require.NoError(t, err)
	assert.NotEmpty(t, session.ID)
	assert.Equal(t, 1, store.Count())

	events := session.Drain()
	require.Len(t, events, 1)
	assert.Equal(t, EventRender, events[0].Type)
	assert.Equal(t, "load-area", events[0].Pane)
	assert.Equal(t, "a-p.jpg", events[0].Entry.PreviewRef)

	session.Controller.OpenViewer(1)
	events = session.Drain()
	require.Len(t, events, 1)
	assert.Equal(t, EventNavigate, events[0].Type)
	assert.Equal(t, "b.mp4", events[0].Ref)

	assert.Empty(t, session.Drain())
}

func TestSessionInlineVideo(t *testing.T) {
	store := NewSessionStore(time.Minute, 3*time.Second, &manualScheduler{})
	session, err := store.Create(testGallery(), true)
	require.NoError(t, err)
	session.Drain()

	session.Controller.OpenViewer(1)

	var types []string
	for _, ev := range session.Drain() {
		types = append(types, ev.Type)
	}
	assert.Equal(t, []string{EventRender, EventLoad, EventPlay}, types)
	assert.True(t, session.State().VideoPlaying)
}

func TestSessionSubscribersReceiveTimerAdvances(t *testing.T) {
	sched := &manualScheduler{}
	store := NewSessionStore(time.Minute, 3*time.Second, sched)
	session, err := store.Create(testGallery(), false)
	require.NoError(t, err)

	events, unsubscribe := session.Subscribe()
	defer unsubscribe()

	session.Controller.StartSlideshow()
	ev := <-events
	assert.Equal(t, "modal", ev.Pane)
	assert.True(t, ev.Slideshow)
	assert.Equal(t, int64(3000), ev.IntervalMs)

	sched.fireLatest()
	ev = <-events
	assert.Equal(t, 2, ev.Index, "the unsupported video is skipped")

	state := session.State()
	assert.Equal(t, "slideshow-running", state.Phase)
	assert.Equal(t, 2, state.ViewerIndex)
}

func TestSessionStoreDeleteClosesSession(t *testing.T) {
	sched := &manualScheduler{}
	store := NewSessionStore(time.Minute, 3*time.Second, sched)
	session, err := store.Create(testGallery(), false)
	require.NoError(t, err)

	events, _ := session.Subscribe()
	session.Controller.StartSlideshow()
	<-events

	require.NoError(t, store.Delete(session.ID))

	_, open := <-events
	assert.False(t, open, "subscriber channel is closed")
	assert.True(t, sched.timers[len(sched.timers)-1].stopped)
	assert.False(t, session.State().SlideshowActive)

	_, err = store.Get(session.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, store.Delete(session.ID), ErrSessionNotFound)
}

func TestSessionStoreRejectsEmptyGallery(t *testing.T) {
	store := NewSessionStore(time.Minute, 3*time.Second, &manualScheduler{})
	_, err := store.Create(models.Gallery{Name: "empty"}, false)
	assert.ErrorIs(t, err, models.ErrEmptyManifest)
}

func sessionClosed(s *Session) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func TestSubscribedSessionStaysAliveWhileDriven(t *testing.T) {
	store := NewSessionStore(200*time.Millisecond, 3*time.Second, &manualScheduler{})
	session, err := store.Create(testGallery(), false)
	require.NoError(t, err)

	events, unsubscribe := session.Subscribe()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for range events {
		}
	}()

	deadline := time.Now().Add(600 * time.Millisecond)
	for time.Now().Before(deadline) {
		session.Controller.HandleKey(viewer.KeyRight)
		time.Sleep(50 * time.Millisecond)
	}

	assert.False(t, sessionClosed(session), "an active page must keep its session")
	assert.Equal(t, 1, store.Count())

	unsubscribe()
	<-done
	require.Eventually(t, func() bool { return store.Count() == 0 }, 2*time.Second, 20*time.Millisecond)
	assert.True(t, sessionClosed(session))
}

func TestUnsubscribedSessionExpires(t *testing.T) {
	store := NewSessionStore(200*time.Millisecond, 3*time.Second, &manualScheduler{})
	session, err := store.Create(testGallery(), false)
	require.NoError(t, err)

	// Events nobody receives, such as slideshow ticks after the page went
	// away, do not extend the session.
	require.Eventually(t, func() bool {
		session.Controller.HandleKey(viewer.KeyRight)
		return store.Count() == 0
	}, 2*time.Second, 50*time.Millisecond)
	assert.True(t, sessionClosed(session))
}

func TestTouch(t *testing.T) {
	store := NewSessionStore(time.Minute, 3*time.Second, &manualScheduler{})
	session, err := store.Create(testGallery(), false)
	require.NoError(t, err)

	assert.True(t, store.Touch(session.ID))
	require.NoError(t, store.Delete(session.ID))
	assert.False(t, store.Touch(session.ID))
	assert.Equal(t, 0, store.Count())
}
