// Package viewer holds the gallery viewer state machine: the inline load-area
// selection, the modal viewer and the slideshow timer.
//
// A Controller is the only writer of its state. Presentation is delegated to a
// Renderer, video playback to a Player, and the slideshow timer to a Scheduler,
// so the whole machine runs without a DOM.
package viewer

import (
	"fmt"
	"math"
	"time"

	"media-gallery/pkg/models"
)

// ErrEmptyManifest is returned by New when the manifest has no entries
var ErrEmptyManifest = models.ErrEmptyManifest

// Current asks OpenViewer to use the inline selection. It lies outside any
// index a caller could mean, so negative indices still clamp to 0.
const Current = math.MinInt

// Slideshow interval bounds
const (
	DefaultInterval = 3000 * time.Millisecond
	MinInterval     = 1000 * time.Millisecond
	MaxInterval     = 10000 * time.Millisecond
	IntervalStep    = 500 * time.Millisecond
)

// Direction of an advance
type Direction int

const (
	Prev Direction = -1
	Next Direction = 1
)

func (d Direction) String() string {
	if d < 0 {
		return "prev"
	}
	return "next"
}

// Pane identifies which part of the page a render request targets
type Pane int

const (
	LoadArea Pane = iota
	Modal
)

func (p Pane) String() string {
	switch p {
	case LoadArea:
		return "load-area"
	case Modal:
		return "modal"
	default:
		return fmt.Sprintf("pane(%d)", int(p))
	}
}

// RenderRequest describes what a pane should show
type RenderRequest struct {
	Pane  Pane
	Index int
	Entry models.MediaEntry
	// Highlight is the thumbnail to mark as selected, -1 for none.
	Highlight int
	// Visible is false when the modal is being hidden.
	Visible   bool
	Slideshow bool
	Paused    bool
	Interval  time.Duration
}

// Renderer turns render requests into whatever the host displays.
// Render is called with the controller's lock held and must not call back into it.
type Renderer interface {
	Render(req RenderRequest)
}

// Player controls inline video playback
type Player interface {
	SupportsInlineVideo() bool
	Load(ref string)
	Play(ref string)
	Pause()
}

// Navigator sends the host to an asset directly. Used for videos when inline
// playback is not available.
type Navigator interface {
	Navigate(ref string)
}

// Options configures a Controller. Only Renderer is needed for a useful viewer;
// a nil Player means no inline video and a nil Scheduler means the real clock.
type Options struct {
	Renderer  Renderer
	Player    Player
	Navigator Navigator
	Scheduler Scheduler
	Interval  time.Duration
	// Home is called for the Home key.
	Home func()
}

// Phase is the combined viewer/slideshow state
type Phase int

const (
	Closed Phase = iota
	OpenStatic
	OpenSlideshowRunning
	OpenSlideshowPaused
)

func (p Phase) String() string {
	switch p {
	case Closed:
		return "closed"
	case OpenStatic:
		return "open"
	case OpenSlideshowRunning:
		return "slideshow-running"
	case OpenSlideshowPaused:
		return "slideshow-paused"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// State is a snapshot of a controller's state
type State struct {
	SelectedIndex   int
	ViewerIndex     int
	ViewerOpen      bool
	SlideshowActive bool
	SlideshowPaused bool
	TimerPending    bool
	VideoPlaying    bool
	Interval        time.Duration
}

// Phase maps the snapshot onto the viewer state machine
func (s State) Phase() Phase {
	switch {
	case !s.ViewerOpen:
		return Closed
	case s.SlideshowActive && s.SlideshowPaused:
		return OpenSlideshowPaused
	case s.SlideshowActive:
		return OpenSlideshowRunning
	default:
		return OpenStatic
	}
}

// ClampInterval bounds d to the slideshow range and snaps it down to a step
func ClampInterval(d time.Duration) time.Duration {
	if d < MinInterval {
		return MinInterval
	}
	if d > MaxInterval {
		return MaxInterval
	}
	return d / IntervalStep * IntervalStep
}

type nopRenderer struct{}

func (nopRenderer) Render(RenderRequest) {}
