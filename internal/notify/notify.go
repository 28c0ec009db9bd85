// Package notify sends desktop notifications for finished exports,
// clipboard copies and failed reloads.
package notify

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/kelseyhightower/envconfig"

	"github.com/example/imageslicer/internal/platform"
)

// Event identifies a notification trigger.
type Event string

const (
	// EventExport fires after the confirmed selections were written.
	EventExport Event = "export"
	// EventCopy fires after the pending selection was copied to the clipboard.
	EventCopy Event = "copy"
	// EventReload fires when reloading the source image fails.
	EventReload Event = "reload"
)

// Preferences holds the title and the per-event body templates. Each
// template receives a single %s.
type Preferences struct {
	Title     string
	Templates map[Event]string
}

// DefaultPreferences returns the built-in wording.
func DefaultPreferences() Preferences {
	return Preferences{
		Title: "ImageSlicer",
		Templates: map[Event]string{
			EventExport: "Exported %s",
			EventCopy:   "Copied %s to clipboard",
			EventReload: "Reload failed: %s",
		},
	}
}

type envPreferences struct {
	Title      string `envconfig:"NOTIFY_TITLE"`
	ExportText string `envconfig:"NOTIFY_EXPORT_TEXT"`
	CopyText   string `envconfig:"NOTIFY_COPY_TEXT"`
	ReloadText string `envconfig:"NOTIFY_RELOAD_TEXT"`
}

// LoadPreferences applies IMAGESLICER_NOTIFY_* variables over the defaults.
func LoadPreferences() (Preferences, error) {
	prefs := DefaultPreferences()
	var env envPreferences
	if err := envconfig.Process("imageslicer", &env); err != nil {
		return prefs, fmt.Errorf("notify preferences: %w", err)
	}
	if v := strings.TrimSpace(env.Title); v != "" {
		prefs.Title = v
	}
	for ev, v := range map[Event]string{EventExport: env.ExportText, EventCopy: env.CopyText, EventReload: env.ReloadText} {
		if v = strings.TrimSpace(v); v != "" {
			prefs.Templates[ev] = v
		}
	}
	return prefs, nil
}

var send = platform.Notify

// Notifier sends notifications for the events that were enabled.
type Notifier struct {
	prefs   Preferences
	enabled map[Event]bool
}

// New creates a Notifier with every event disabled.
func New(prefs Preferences) *Notifier {
	tmpl := make(map[Event]string, len(prefs.Templates))
	for k, v := range prefs.Templates {
		tmpl[k] = v
	}
	return &Notifier{prefs: Preferences{Title: prefs.Title, Templates: tmpl}, enabled: make(map[Event]bool)}
}

// Enable toggles the notifier for one event.
func (n *Notifier) Enable(event Event, on bool) {
	if n == nil {
		return
	}
	n.enabled[event] = on
}

// Enabled reports whether event would be delivered.
func (n *Notifier) Enabled(event Event) bool {
	return n != nil && n.enabled[event]
}

// Export reports the files written by one export.
func (n *Notifier) Export(written []string, failed int) {
	if !n.Enabled(EventExport) {
		return
	}
	detail := fmt.Sprintf("%d file(s)", len(written))
	opts := platform.Options{Urgency: platform.UrgencyNormal}
	if len(written) > 0 {
		if abs, err := filepath.Abs(written[0]); err == nil {
			detail += " to " + filepath.Dir(abs)
			if _, err := os.Stat(abs); err == nil {
				opts.IconPath = abs
			}
		}
	}
	if failed > 0 {
		detail += fmt.Sprintf(", %d failed", failed)
		opts.Urgency = platform.UrgencyCritical
	}
	n.dispatch(EventExport, detail, opts)
}

// Copy reports a clipboard copy.
func (n *Notifier) Copy(detail string) {
	if strings.TrimSpace(detail) == "" {
		detail = "selection"
	}
	n.dispatch(EventCopy, detail, platform.Options{})
}

// ReloadFailed reports that the source image could not be reloaded.
func (n *Notifier) ReloadFailed(path string, err error) {
	n.dispatch(EventReload, fmt.Sprintf("%s: %v", path, err), platform.Options{Urgency: platform.UrgencyCritical})
}

func (n *Notifier) dispatch(event Event, detail string, opts platform.Options) {
	if !n.Enabled(event) {
		return
	}
	tmpl := strings.TrimSpace(n.prefs.Templates[event])
	if tmpl == "" {
		return
	}
	body := strings.TrimSpace(fmt.Sprintf(tmpl, strings.TrimSpace(detail)))
	opts.AppName = n.prefs.Title
	if err := send(n.prefs.Title, body, opts); err != nil {
		log.Printf("notification %s: %v", event, err)
	}
}
