package viewer

import (
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"media-gallery/pkg/models"
)

// viewerState is the mutable part of a Controller
type viewerState struct {
	selectedIndex   int
	viewerIndex     int
	viewerOpen      bool
	slideshowActive bool
	slideshowPaused bool
	playing         bool
	interval        time.Duration

	pending Timer
	// generation invalidates callbacks of timers that were cancelled after
	// they had already started firing.
	generation uint64
}

// Controller drives the viewer state machine over one manifest
type Controller struct {
	mu sync.Mutex

	manifest    models.Manifest
	renderer    Renderer
	player      Player
	navigator   Navigator
	scheduler   Scheduler
	home        func()
	inlineVideo bool
	closed      bool

	st viewerState
}

// New builds a controller and renders the load-area for the first entry
func New(manifest models.Manifest, opts Options) (*Controller, error) {
	if err := manifest.Validate(); err != nil {
		return nil, fmt.Errorf("viewer: %w", err)
	}

	c := &Controller{
		manifest:  manifest,
		renderer:  opts.Renderer,
		player:    opts.Player,
		navigator: opts.Navigator,
		scheduler: opts.Scheduler,
		home:      opts.Home,
	}
	if c.renderer == nil {
		c.renderer = nopRenderer{}
	}
	if c.scheduler == nil {
		c.scheduler = NewClockScheduler(clockwork.NewRealClock())
	}
	if c.player != nil {
		c.inlineVideo = c.player.SupportsInlineVideo()
	}

	interval := opts.Interval
	if interval == 0 {
		interval = DefaultInterval
	}
	c.st.interval = ClampInterval(interval)

	c.renderLoadArea()
	return c, nil
}

// Len returns the number of entries in the manifest
func (c *Controller) Len() int {
	return c.manifest.Len()
}

// Manifest returns the manifest the controller navigates
func (c *Controller) Manifest() models.Manifest {
	return c.manifest
}

// State returns a snapshot of the current state
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

// SelectInline shows entry index in the load-area
func (c *Controller) SelectInline(index int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.selectInline(c.clamp(index))
}

// OpenViewer opens the modal viewer on index, or on the inline selection for Current.
// A video that cannot play inline is handed to the Navigator instead. Jumping
// to an entry during a running slideshow restarts its interval.
func (c *Controller) OpenViewer(index int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	if c.openViewer(c.resolve(index)) && c.running() {
		c.arm()
	}
}

// CloseViewer hides the modal and ends any slideshow
func (c *Controller) CloseViewer() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closeViewer()
}

// Advance moves the viewer one entry in dir, wrapping at both ends. With the
// viewer closed it moves the inline selection instead.
func (c *Controller) Advance(dir Direction) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.advance(dir)
	if c.running() {
		c.arm()
	}
}

// ToggleSlideshowPause pauses or resumes a running slideshow. Resuming advances at once.
func (c *Controller) ToggleSlideshowPause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.togglePause()
}

// Space toggles the pause of a running slideshow, or advances an open viewer
func (c *Controller) Space() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	switch {
	case c.st.slideshowActive:
		c.togglePause()
	case c.st.viewerOpen:
		c.advance(Next)
	}
}

func (c *Controller) togglePause() {
	if !c.st.slideshowActive {
		return
	}

	if c.st.slideshowPaused {
		c.st.slideshowPaused = false
		if !c.advance(Next) {
			c.renderModal()
		}
		c.arm()
		return
	}

	c.st.slideshowPaused = true
	c.cancel()
	c.renderModal()
}

// StartSlideshow opens the viewer if needed and arms the slideshow timer
func (c *Controller) StartSlideshow() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.startSlideshow()
}

// StopSlideshow cancels the slideshow but leaves the viewer open
func (c *Controller) StopSlideshow() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.stopSlideshow()
}

// ToggleSlideshow starts a stopped slideshow and stops a running or paused one
func (c *Controller) ToggleSlideshow() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	if c.st.slideshowActive {
		c.stopSlideshow()
		return
	}
	c.startSlideshow()
}

// ChangeSlideshowInterval adjusts the interval by delta. The timer in flight keeps
// its old interval.
func (c *Controller) ChangeSlideshowInterval(delta time.Duration) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return c.st.interval
	}

	c.st.interval = ClampInterval(c.st.interval + delta)
	if c.st.viewerOpen && c.st.slideshowActive {
		c.renderModal()
	}
	return c.st.interval
}

// Close tears the controller down. Pending timers are cancelled and every
// later call is ignored.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.cancel()
	c.stopVideo()
	c.st.slideshowActive = false
	c.st.slideshowPaused = false
	c.closed = true
}

func (c *Controller) snapshot() State {
	return State{
		SelectedIndex:   c.st.selectedIndex,
		ViewerIndex:     c.st.viewerIndex,
		ViewerOpen:      c.st.viewerOpen,
		SlideshowActive: c.st.slideshowActive,
		SlideshowPaused: c.st.slideshowPaused,
		TimerPending:    c.st.pending != nil,
		VideoPlaying:    c.st.playing,
		Interval:        c.st.interval,
	}
}

func (c *Controller) clamp(index int) int {
	if index < 0 {
		return 0
	}
	if n := c.manifest.Len(); index >= n {
		return n - 1
	}
	return index
}

func (c *Controller) resolve(index int) int {
	if index == Current {
		return c.st.selectedIndex
	}
	return c.clamp(index)
}

func (c *Controller) wrap(index int) int {
	n := c.manifest.Len()
	return ((index % n) + n) % n
}

func (c *Controller) playable(index int) bool {
	return c.inlineVideo || !c.manifest.Entry(index).IsVideo()
}

func (c *Controller) running() bool {
	return c.st.slideshowActive && !c.st.slideshowPaused
}

func (c *Controller) selectInline(index int) {
	if index == c.st.selectedIndex {
		return
	}
	c.st.selectedIndex = index
	c.renderLoadArea()
}

func (c *Controller) openViewer(index int) bool {
	entry := c.manifest.Entry(index)
	if !c.playable(index) {
		log.Debug().Int("index", index).Str("ref", entry.FullRef).Msg("Inline video unsupported, navigating to asset")
		if c.navigator != nil {
			c.navigator.Navigate(entry.FullRef)
		}
		return false
	}
	c.show(index)
	return true
}

func (c *Controller) closeViewer() {
	c.stopVideo()
	wasOpen := c.st.viewerOpen
	c.st.viewerOpen = false
	if c.st.slideshowActive {
		c.stopSlideshow()
	}
	if wasOpen {
		c.renderModal()
	}
}

// advance reports whether the viewer moved. Unplayable videos are skipped; after
// one full pass without a playable entry the index is kept.
func (c *Controller) advance(dir Direction) bool {
	step := 1
	if dir < 0 {
		step = -1
	} else if dir == 0 {
		return false
	}

	if !c.st.viewerOpen {
		c.selectInline(c.wrap(c.st.selectedIndex + step))
		return true
	}

	index := c.st.viewerIndex
	for visited := 0; visited < c.manifest.Len(); visited++ {
		index = c.wrap(index + step)
		if c.playable(index) {
			if index == c.st.viewerIndex {
				return false
			}
			c.show(index)
			return true
		}
	}
	return false
}

func (c *Controller) show(index int) {
	c.stopVideo()
	c.st.viewerIndex = index
	c.st.viewerOpen = true
	c.renderModal()
	c.startVideo()
}

func (c *Controller) startSlideshow() {
	if c.st.slideshowActive {
		return
	}

	c.st.slideshowActive = true
	c.st.slideshowPaused = false
	if !c.st.viewerOpen {
		start := c.firstPlayable(c.st.selectedIndex)
		if start < 0 {
			log.Debug().Msg("Slideshow has nothing to show")
			c.st.slideshowActive = false
			return
		}
		c.show(start)
	} else {
		c.renderModal()
	}
	c.arm()
}

func (c *Controller) stopSlideshow() {
	c.cancel()
	wasActive := c.st.slideshowActive
	c.st.slideshowActive = false
	c.st.slideshowPaused = false
	if wasActive && c.st.viewerOpen {
		c.renderModal()
	}
}

func (c *Controller) firstPlayable(from int) int {
	for i := 0; i < c.manifest.Len(); i++ {
		index := c.wrap(from + i)
		if c.playable(index) {
			return index
		}
	}
	return -1
}

// arm replaces any pending timer with a fresh one
func (c *Controller) arm() {
	c.cancel()
	generation := c.st.generation
	c.st.pending = c.scheduler.AfterFunc(c.st.interval, func() {
		c.fire(generation)
	})
}

func (c *Controller) cancel() {
	if c.st.pending != nil {
		c.st.pending.Stop()
		c.st.pending = nil
	}
	c.st.generation++
}

func (c *Controller) fire(generation uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || generation != c.st.generation || c.st.pending == nil {
		return
	}
	c.st.pending = nil
	if !c.running() {
		return
	}
	c.advance(Next)
	c.arm()
}

func (c *Controller) startVideo() {
	entry := c.manifest.Entry(c.st.viewerIndex)
	if !entry.IsVideo() || !c.inlineVideo {
		return
	}
	c.player.Load(entry.FullRef)
	c.player.Play(entry.FullRef)
	c.st.playing = true
}

func (c *Controller) stopVideo() {
	if !c.st.playing {
		return
	}
	c.player.Pause()
	c.st.playing = false
}

func (c *Controller) renderLoadArea() {
	index := c.st.selectedIndex
	c.renderer.Render(RenderRequest{
		Pane:      LoadArea,
		Index:     index,
		Entry:     c.manifest.Entry(index),
		Highlight: index,
		Visible:   true,
		Interval:  c.st.interval,
	})
}

func (c *Controller) renderModal() {
	index := c.st.viewerIndex
	c.renderer.Render(RenderRequest{
		Pane:      Modal,
		Index:     index,
		Entry:     c.manifest.Entry(index),
		Highlight: -1,
		Visible:   c.st.viewerOpen,
		Slideshow: c.st.slideshowActive,
		Paused:    c.st.slideshowPaused,
		Interval:  c.st.interval,
	})
}
