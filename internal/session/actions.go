package session

import (
	"errors"
	"fmt"
	"unicode"

	"github.com/example/imageslicer/internal/geom"
	"github.com/example/imageslicer/internal/imageio"
	"github.com/example/imageslicer/internal/selection"
	"github.com/example/imageslicer/internal/viewport"
)

// shortcut is a character (lower case) or a named key.
type shortcut struct {
	Rune rune
	Key  Key
}

// Shortcut describes one key binding for the help text.
type Shortcut struct {
	Keys   string
	Action string
}

// Shortcuts lists the bindings in display order.
func Shortcuts() []Shortcut {
	return []Shortcut{
		{"left drag", "draw a selection"},
		{"right drag", "pan"},
		{"wheel", "zoom at the pointer"},
		{"c / Enter", "confirm the selection"},
		{"d / Esc", "delete the selection"},
		{"e", "export confirmed selections"},
		{"g", "toggle guides"},
		{"r", "reload the image and clear selections"},
		{"l", "toggle locked selection size"},
		{"+ / -", "grow or shrink the locked size"},
		{"4 6 8 2 / arrows", "pan left, right, up, down"},
		{"y", "copy the selection to the clipboard"},
		{"t", "copy the selection bounds as text"},
		{"q", "quit"},
	}
}

func (s *Session) registerActions() {
	s.shortcuts = map[shortcut]string{}
	s.actions = map[string]func(){}
	register := func(name string, fn func(), keys ...shortcut) {
		s.actions[name] = fn
		for _, k := range keys {
			s.shortcuts[k] = name
		}
	}

	register("confirm", s.confirm, shortcut{Rune: 'c'}, shortcut{Key: KeyEnter})
	register("delete", s.deleteSelection, shortcut{Rune: 'd'}, shortcut{Key: KeyEscape})
	register("export", func() { _, _ = s.Export() }, shortcut{Rune: 'e'})
	register("guides", func() { s.guides = !s.guides }, shortcut{Rune: 'g'})
	register("reset", func() { _ = s.Reload() }, shortcut{Rune: 'r'})
	register("quit", func() { s.done = true }, shortcut{Rune: 'q'})
	register("lock", s.toggleLock, shortcut{Rune: 'l'})
	register("grow", func() { s.resizeLocked(s.lockStep) }, shortcut{Rune: '+'}, shortcut{Rune: '='})
	register("shrink", func() { s.resizeLocked(-s.lockStep) }, shortcut{Rune: '-'}, shortcut{Rune: '_'})
	register("right", func() { s.vp.ScrollStep(viewport.Right) }, shortcut{Rune: '6'}, shortcut{Key: KeyRight})
	register("left", func() { s.vp.ScrollStep(viewport.Left) }, shortcut{Rune: '4'}, shortcut{Key: KeyLeft})
	register("up", func() { s.vp.ScrollStep(viewport.Up) }, shortcut{Rune: '8'}, shortcut{Key: KeyUp})
	register("down", func() { s.vp.ScrollStep(viewport.Down) }, shortcut{Rune: '2'}, shortcut{Key: KeyDown})
	register("copy", s.copyImage, shortcut{Rune: 'y'})
	register("copybounds", s.copyBounds, shortcut{Rune: 't'})
}

func (s *Session) key(e KeyPress) {
	k := shortcut{Rune: unicode.ToLower(e.Rune), Key: e.Key}
	if e.Key != KeyNone {
		k.Rune = 0
	}
	if name, ok := s.shortcuts[k]; ok {
		s.actions[name]()
	}
}

func (s *Session) confirm() {
	r, err := s.sel.Confirm()
	switch {
	case errors.Is(err, selection.ErrDegenerateRectangle):
		s.say("selection has no area")
	case err == nil:
		s.say("confirmed %d,%d %v (%d total)", r.Min.X, r.Min.Y, geom.SizeOf(r), s.sel.Len())
	}
}

func (s *Session) deleteSelection() {
	if err := s.sel.Delete(); err == nil {
		s.say("selection deleted")
	}
}

// toggleLock fixes the selection size. The pending rectangle, if any, gives
// the size; otherwise half the visible area is used.
func (s *Session) toggleLock() {
	if s.sel.State() == selection.Dragging {
		return
	}
	if _, ok := s.sel.Locked(); ok {
		s.sel.Unlock()
		s.say("locked size off")
		return
	}
	size := geom.SizeOf(s.vp.Viewport())
	size = geom.Sz(size.W/2, size.H/2)
	if r, ok := s.sel.Unconfirmed(); ok && s.sel.State() == selection.Pending && geom.SizeOf(r).Positive() {
		size = geom.SizeOf(r)
	}
	s.sel.SetLocked(size)
	s.sel.SyncLocked(s.vp.Viewport())
	locked, _ := s.sel.Locked()
	s.say("locked size %v", locked)
}

func (s *Session) resizeLocked(pct float64) {
	if _, ok := s.sel.Locked(); !ok {
		return
	}
	s.sel.ResizeLocked(pct)
	size, _ := s.sel.Locked()
	s.say("locked size %v", size)
}

func (s *Session) copyImage() {
	r, ok := s.sel.Unconfirmed()
	if !ok || s.sel.State() != selection.Pending || r.Empty() {
		s.say("nothing to copy")
		return
	}
	if s.clip == nil {
		s.say("clipboard unavailable")
		return
	}
	if err := s.clip.WriteImage(imageio.Crop(s.img, r)); err != nil {
		s.say("copy failed: %v", err)
		return
	}
	detail := geom.SizeOf(r).String() + " selection"
	s.say("copied %s", detail)
	if s.notifier != nil {
		s.notifier.Copy(detail)
	}
}

// copyBounds copies "x y width height" of the pending selection.
func (s *Session) copyBounds() {
	r, ok := s.sel.Unconfirmed()
	if !ok || s.sel.State() != selection.Pending {
		s.say("nothing to copy")
		return
	}
	if s.clip == nil {
		s.say("clipboard unavailable")
		return
	}
	text := fmt.Sprintf("%d %d %d %d", r.Min.X, r.Min.Y, r.Dx(), r.Dy())
	if err := s.clip.WriteText(text); err != nil {
		s.say("copy failed: %v", err)
		return
	}
	s.say("copied bounds %s", text)
	if s.notifier != nil {
		s.notifier.Copy("bounds " + text)
	}
}
