package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"media-gallery/pkg/models"
	"media-gallery/pkg/viewer"
)

var inlineVideo bool

// newViewCmd creates a command that drives a viewer from the terminal
func newViewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view [manifest.yaml]",
		Short: "Drive a gallery viewer from the terminal",
		Long: `Load a manifest file and drive a viewer with key names read from stdin, one per line
(ArrowLeft, ArrowRight, Space, Enter, Escape, s, +, -, Home). "click <target> [index]"
sends a click and "quit" ends the session. Every render request is printed.`,
		Args: cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			setupLogging("info")
			manifest, err := loadManifest(args[0])
			if err != nil {
				log.Fatal().Err(err).Str("path", args[0]).Msg("Failed to load manifest")
			}
			if err := runViewer(cmd.InOrStdin(), cmd.OutOrStdout(), manifest, inlineVideo, nil); err != nil {
				log.Fatal().Err(err).Msg("Viewer failed")
			}
		},
	}

	cmd.Flags().BoolVar(&inlineVideo, "inline-video", false, "Pretend the terminal can play video inline")

	return cmd
}

// loadManifest reads a YAML manifest file
func loadManifest(path string) (models.Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.Manifest{}, err
	}

	var manifest models.Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return models.Manifest{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	for i := range manifest.Entries {
		entry := &manifest.Entries[i]
		if entry.MIMEType == "" {
			entry.MIMEType = models.MIMEFromName(entry.FullRef)
		}
	}
	return manifest, nil
}

// terminal prints viewer output. Slideshow timers write from their own
// goroutine, so writes are serialised.
type terminal struct {
	mu          sync.Mutex
	out         io.Writer
	inlineVideo bool
}

func (t *terminal) printf(format string, args ...interface{}) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.out, format, args...)
}

func (t *terminal) Render(req viewer.RenderRequest) {
	if req.Pane == viewer.Modal && !req.Visible {
		t.printf("[modal] hidden\n")
		return
	}

	status := ""
	if req.Slideshow {
		status = fmt.Sprintf(" slideshow %s", req.Interval)
		if req.Paused {
			status += " (paused)"
		}
	}
	t.printf("[%s] %d: %s (%s)%s\n", req.Pane, req.Index, req.Entry.Name, req.Entry.Kind(), status)
}

func (t *terminal) SupportsInlineVideo() bool { return t.inlineVideo }
func (t *terminal) Load(ref string)           { t.printf("  load %s\n", ref) }
func (t *terminal) Play(ref string)           { t.printf("  play %s\n", ref) }
func (t *terminal) Pause()                    { t.printf("  pause\n") }
func (t *terminal) Navigate(ref string)       { t.printf("  open %s\n", ref) }

// runViewer feeds input lines to a viewer until EOF or "quit"
func runViewer(in io.Reader, out io.Writer, manifest models.Manifest, inlineVideo bool, scheduler viewer.Scheduler) error {
	term := &terminal{out: out, inlineVideo: inlineVideo}

	c, err := viewer.New(manifest, viewer.Options{
		Renderer:  term,
		Player:    term,
		Navigator: term,
		Scheduler: scheduler,
		Home:      func() { term.printf("  home\n") },
	})
	if err != nil {
		return err
	}
	defer c.Close()

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := scanner.Text()
		fields := strings.Fields(line)

		switch {
		case len(fields) == 0 && line == "":
			continue
		case len(fields) > 0 && (fields[0] == "quit" || fields[0] == "q"):
			return nil
		case len(fields) > 0 && fields[0] == "click":
			if !c.HandleClick(parseClick(fields[1:])) {
				term.printf("unknown click: %s\n", line)
			}
		default:
			if !c.HandleKey(viewer.ParseKey(line)) {
				term.printf("unknown key: %q\n", line)
			}
		}
	}
	return scanner.Err()
}

func parseClick(args []string) viewer.Click {
	var click viewer.Click
	if len(args) > 0 {
		click.Target = viewer.ParseClickTarget(args[0])
	}
	if len(args) > 1 {
		if index, err := strconv.Atoi(args[1]); err == nil {
			click.Index = index
		}
	}
	return click
}
