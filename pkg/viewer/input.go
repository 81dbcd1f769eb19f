package viewer

import "strings"

// Key is a keyboard command understood by the viewer
type Key int

const (
	KeyNone Key = iota
	KeyLeft
	KeyRight
	KeySpace
	KeyEscape
	KeyEnter
	KeySlideshow
	KeyFaster
	KeySlower
	KeyHome
)

var keyNames = map[string]Key{
	"arrowleft":  KeyLeft,
	"left":       KeyLeft,
	"arrowright": KeyRight,
	"right":      KeyRight,
	" ":          KeySpace,
	"space":      KeySpace,
	"spacebar":   KeySpace,
	"escape":     KeyEscape,
	"esc":        KeyEscape,
	"enter":      KeyEnter,
	"return":     KeyEnter,
	"s":          KeySlideshow,
	"+":          KeyFaster,
	"=":          KeyFaster,
	"-":          KeySlower,
	"home":       KeyHome,
}

// ParseKey maps a DOM key name (KeyboardEvent.key) to a Key
func ParseKey(name string) Key {
	if name == " " {
		return KeySpace
	}
	return keyNames[strings.ToLower(strings.TrimSpace(name))]
}

// HandleKey applies a key press and reports whether the key was bound
func (c *Controller) HandleKey(k Key) bool {
	switch k {
	case KeyLeft:
		c.Advance(Prev)
	case KeyRight:
		c.Advance(Next)
	case KeySpace:
		c.Space()
	case KeyEscape:
		c.CloseViewer()
	case KeyEnter:
		c.OpenViewer(Current)
	case KeySlideshow:
		c.ToggleSlideshow()
	case KeyFaster:
		c.ChangeSlideshowInterval(-IntervalStep)
	case KeySlower:
		c.ChangeSlideshowInterval(IntervalStep)
	case KeyHome:
		if c.home != nil {
			c.home()
		}
	default:
		return false
	}
	return true
}

// ClickTarget is the element a pointer click landed on
type ClickTarget int

const (
	TargetNone ClickTarget = iota
	TargetThumbnail
	TargetLoadArea
	TargetPrevChrome
	TargetNextChrome
	TargetCloseChrome
	TargetBackdrop
)

var targetNames = map[string]ClickTarget{
	"thumbnail": TargetThumbnail,
	"load-area": TargetLoadArea,
	"prev":      TargetPrevChrome,
	"next":      TargetNextChrome,
	"close":     TargetCloseChrome,
	"backdrop":  TargetBackdrop,
}

// ParseClickTarget maps a target name used by the gallery page to a ClickTarget
func ParseClickTarget(name string) ClickTarget {
	return targetNames[strings.ToLower(name)]
}

// Click is a pointer event. Index is only read for thumbnails.
type Click struct {
	Target ClickTarget
	Index  int
}

// HandleClick applies a click and reports whether the target was bound
func (c *Controller) HandleClick(click Click) bool {
	switch click.Target {
	case TargetThumbnail:
		c.SelectInline(click.Index)
	case TargetLoadArea:
		c.OpenViewer(Current)
	case TargetPrevChrome:
		c.Advance(Prev)
	case TargetNextChrome:
		c.Advance(Next)
	case TargetCloseChrome, TargetBackdrop:
		c.CloseViewer()
	default:
		return false
	}
	return true
}
