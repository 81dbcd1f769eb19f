package services

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"

	"media-gallery/pkg/models"
	"media-gallery/pkg/viewer"
)

// ErrSessionNotFound is returned for an unknown or expired viewer session
var ErrSessionNotFound = errors.New("viewer session not found")

// maxBufferedEvents bounds the events kept for a session between two drains
const maxBufferedEvents = 256

// Session event types
const (
	EventRender   = "render"
	EventLoad     = "load"
	EventPlay     = "play"
	EventPause    = "pause"
	EventNavigate = "navigate"
)

// SessionEvent is a render or playback command produced by a session's viewer
type SessionEvent struct {
	Type       string             `json:"type"`
	Pane       string             `json:"pane,omitempty"`
	Index      int                `json:"index"`
	Entry      *models.MediaEntry `json:"entry,omitempty"`
	Highlight  int                `json:"highlight"`
	Visible    bool               `json:"visible"`
	Slideshow  bool               `json:"slideshow"`
	Paused     bool               `json:"paused"`
	IntervalMs int64              `json:"intervalMs,omitempty"`
	Ref        string             `json:"ref,omitempty"`
}

// SessionState is the JSON view of a viewer state
type SessionState struct {
	Phase           string `json:"phase"`
	SelectedIndex   int    `json:"selectedIndex"`
	ViewerIndex     int    `json:"viewerIndex"`
	ViewerOpen      bool   `json:"viewerOpen"`
	SlideshowActive bool   `json:"slideshowActive"`
	SlideshowPaused bool   `json:"slideshowPaused"`
	TimerPending    bool   `json:"timerPending"`
	VideoPlaying    bool   `json:"videoPlaying"`
	IntervalMs      int64  `json:"intervalMs"`
}

// NewSessionState converts a viewer state snapshot
func NewSessionState(st viewer.State) SessionState {
	return SessionState{
		Phase:           st.Phase().String(),
		SelectedIndex:   st.SelectedIndex,
		ViewerIndex:     st.ViewerIndex,
		ViewerOpen:      st.ViewerOpen,
		SlideshowActive: st.SlideshowActive,
		SlideshowPaused: st.SlideshowPaused,
		TimerPending:    st.TimerPending,
		VideoPlaying:    st.VideoPlaying,
		IntervalMs:      st.Interval.Milliseconds(),
	}
}

// Session is a server side viewer bound to one browser page. It is the
// viewer's renderer, player and navigator: every command becomes an event that
// is buffered for the next request and pushed to subscribers.
type Session struct {
	ID          string
	Gallery     string
	Controller  *viewer.Controller
	inlineVideo bool
	// touch extends the session's lifetime in its store
	touch func()

	mu          sync.Mutex
	events      []SessionEvent
	subscribers map[chan SessionEvent]struct{}
	closed      bool
}

// Render implements viewer.Renderer
func (s *Session) Render(req viewer.RenderRequest) {
	entry := req.Entry
	s.emit(SessionEvent{
		Type:       EventRender,
		Pane:       req.Pane.String(),
		Index:      req.Index,
		Entry:      &entry,
		Highlight:  req.Highlight,
		Visible:    req.Visible,
		Slideshow:  req.Slideshow,
		Paused:     req.Paused,
		IntervalMs: req.Interval.Milliseconds(),
	})
}

// SupportsInlineVideo implements viewer.Player
func (s *Session) SupportsInlineVideo() bool {
	return s.inlineVideo
}

// Load implements viewer.Player
func (s *Session) Load(ref string) {
	s.emit(SessionEvent{Type: EventLoad, Ref: ref})
}

// Play implements viewer.Player
func (s *Session) Play(ref string) {
	s.emit(SessionEvent{Type: EventPlay, Ref: ref})
}

// Pause implements viewer.Player
func (s *Session) Pause() {
	s.emit(SessionEvent{Type: EventPause})
}

// Navigate implements viewer.Navigator
func (s *Session) Navigate(ref string) {
	s.emit(SessionEvent{Type: EventNavigate, Ref: ref})
}

func (s *Session) emit(ev SessionEvent) {
	if s.push(ev) && s.touch != nil {
		s.touch()
	}
}

// push buffers ev and hands it to the subscribers. It reports whether a
// subscriber was listening.
func (s *Session) push(ev SessionEvent) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}

	s.events = append(s.events, ev)
	if len(s.events) > maxBufferedEvents {
		s.events = s.events[len(s.events)-maxBufferedEvents:]
	}

	for sub := range s.subscribers {
		select {
		case sub <- ev:
		default:
			log.Warn().Str("session", s.ID).Msg("Subscriber too slow, dropping event")
		}
	}
	return len(s.subscribers) > 0
}

// Drain returns and forgets the buffered events
func (s *Session) Drain() []SessionEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	events := s.events
	s.events = nil
	if events == nil {
		events = []SessionEvent{}
	}
	return events
}

// State returns the session's viewer state
func (s *Session) State() SessionState {
	return NewSessionState(s.Controller.State())
}

// Subscribe returns a channel receiving every later event and a function
// that ends the subscription. The channel is closed when the session ends.
func (s *Session) Subscribe() (<-chan SessionEvent, func()) {
	ch := make(chan SessionEvent, 64)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		close(ch)
		return ch, func() {}
	}
	s.subscribers[ch] = struct{}{}

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
	}
}

func (s *Session) close() {
	// The controller renders with its own lock held, so it is closed before
	// taking the session lock.
	s.Controller.Close()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for sub := range s.subscribers {
		delete(s.subscribers, sub)
		close(sub)
	}
}

// SessionStore keeps viewer sessions until they have been idle for the TTL
type SessionStore struct {
	sessions  *cache.Cache
	interval  time.Duration
	scheduler viewer.Scheduler
}

// NewSessionStore creates a store. Sessions start with the given slideshow
// interval and arm their timers on scheduler.
func NewSessionStore(ttl, interval time.Duration, scheduler viewer.Scheduler) *SessionStore {
	cleanup := ttl / 2
	if ttl <= 0 {
		ttl = cache.NoExpiration
		cleanup = 0
	}

	sessions := cache.New(ttl, cleanup)
	sessions.OnEvicted(func(id string, value interface{}) {
		log.Info().Str("session", id).Msg("Closing viewer session")
		value.(*Session).close()
	})

	return &SessionStore{
		sessions:  sessions,
		interval:  interval,
		scheduler: scheduler,
	}
}

// Create starts a viewer session over gallery
func (st *SessionStore) Create(gallery models.Gallery, inlineVideo bool) (*Session, error) {
	session := &Session{
		ID:          uuid.New().String(),
		Gallery:     gallery.Stub,
		inlineVideo: inlineVideo,
		subscribers: make(map[chan SessionEvent]struct{}),
	}
	session.touch = func() { st.Touch(session.ID) }

	controller, err := viewer.New(gallery.Manifest(), viewer.Options{
		Renderer:  session,
		Player:    session,
		Navigator: session,
		Scheduler: st.scheduler,
		Interval:  st.interval,
	})
	if err != nil {
		return nil, fmt.Errorf("creating viewer for %s: %w", gallery.Name, err)
	}
	session.Controller = controller

	st.sessions.Set(session.ID, session, cache.DefaultExpiration)
	log.Info().Str("session", session.ID).Str("gallery", gallery.Name).Bool("inlineVideo", inlineVideo).Msg("Viewer session started")

	return session, nil
}

// Get returns a session and extends its lifetime
func (st *SessionStore) Get(id string) (*Session, error) {
	value, found := st.sessions.Get(id)
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	st.Touch(id)
	return value.(*Session), nil
}

// Touch restarts the idle TTL of a live session. Events delivered to a
// subscriber touch the session, so a page connected over its websocket keeps it
// alive while it is driven or runs a slideshow. Touch never brings back an
// evicted session.
func (st *SessionStore) Touch(id string) bool {
	value, found := st.sessions.Get(id)
	if !found {
		return false
	}
	return st.sessions.Replace(id, value, cache.DefaultExpiration) == nil
}

// Delete ends a session
func (st *SessionStore) Delete(id string) error {
	if _, found := st.sessions.Get(id); !found {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	st.sessions.Delete(id)
	return nil
}

// Count returns the number of live sessions
func (st *SessionStore) Count() int {
	return st.sessions.ItemCount()
}
