// Package session owns one slicing session: the loaded image, its viewport
// and the selection state machine. Input arrives as Events on a single
// goroutine; Frame snapshots the state for drawing.
package session

import (
	"errors"
	"fmt"
	"image"
	"log"
	"os"
	"strings"
	"time"

	"github.com/example/imageslicer/internal/export"
	"github.com/example/imageslicer/internal/geom"
	"github.com/example/imageslicer/internal/imageio"
	"github.com/example/imageslicer/internal/render"
	"github.com/example/imageslicer/internal/selection"
	"github.com/example/imageslicer/internal/viewport"
)

// messageDuration is how long a status message stays visible.
const messageDuration = 3 * time.Second

// Loader reads the source image from disk.
type Loader func(path string) (image.Image, error)

// Clipboard receives copied selections.
type Clipboard interface {
	WriteImage(img image.Image) error
	WriteText(text string) error
}

// Notifier is told about finished exports, copies and failed reloads.
type Notifier interface {
	Export(written []string, failed int)
	Copy(detail string)
	ReloadFailed(path string, err error)
}

// ExportSettings names the files written by the export command.
type ExportSettings struct {
	Prefix string
	Ext    string
	Start  int
	// Dir is prepended to Prefix when set.
	Dir string
	// Description also writes <prefix>description.txt.
	Description bool
}

func (e ExportSettings) prefix() string {
	if e.Dir == "" {
		return e.Prefix
	}
	return strings.TrimSuffix(e.Dir, string(os.PathSeparator)) + string(os.PathSeparator) + e.Prefix
}

// Session is not safe for concurrent use; the event loop owns it.
type Session struct {
	path string
	img  image.Image

	vp  *viewport.Controller
	sel *selection.Machine

	lockStep  float64
	exportCfg ExportSettings
	writer    export.Writer
	load      Loader
	clip      Clipboard
	notifier  Notifier
	now       func() time.Time

	guides    bool
	cursor    image.Point
	hasCursor bool
	panning   bool
	panLast   image.Point
	done      bool

	message      string
	messageUntil time.Time

	shortcuts map[shortcut]string
	actions   map[string]func()
}

type config struct {
	viewport  viewport.Options
	lockStep  float64
	exportCfg ExportSettings
	writer    export.Writer
	load      Loader
	clip      Clipboard
	notifier  Notifier
	now       func() time.Time
}

// Option configures a Session.
type Option func(*config)

// WithViewportOptions sets the zoom and scroll steps.
func WithViewportOptions(o viewport.Options) Option { return func(c *config) { c.viewport = o } }

// WithLockStep sets the percentage + and - change the locked size by.
func WithLockStep(pct float64) Option { return func(c *config) { c.lockStep = pct } }

// WithExport sets the export naming.
func WithExport(e ExportSettings) Option { return func(c *config) { c.exportCfg = e } }

// WithWriter replaces the image writer used by export.
func WithWriter(w export.Writer) Option { return func(c *config) { c.writer = w } }

// WithLoader replaces the loader used by reset.
func WithLoader(l Loader) Option { return func(c *config) { c.load = l } }

// WithClipboard sets where copied selections go.
func WithClipboard(cb Clipboard) Option { return func(c *config) { c.clip = cb } }

// WithNotifier sets the desktop notifier.
func WithNotifier(n Notifier) Option { return func(c *config) { c.notifier = n } }

// WithClock replaces time.Now for status message expiry.
func WithClock(now func() time.Time) Option { return func(c *config) { c.now = now } }

// New starts a session on img, loaded from path, shown on a screen of the
// given size.
func New(path string, img image.Image, screen geom.Size, opts ...Option) (*Session, error) {
	cfg := config{
		viewport:  viewport.DefaultOptions(),
		lockStep:  10,
		exportCfg: ExportSettings{Prefix: "slice", Ext: "png"},
		writer:    imageio.DefaultWriter(),
		load:      imageio.Load,
		now:       time.Now,
	}
	for _, o := range opts {
		o(&cfg)
	}
	if img == nil {
		return nil, fmt.Errorf("session: %w: no image", viewport.ErrInvalidInput)
	}
	vp, err := viewport.New(geom.SizeOf(img.Bounds()), screen, cfg.viewport)
	if err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}
	s := &Session{
		path:      path,
		img:       img,
		vp:        vp,
		sel:       selection.New(vp.Bounds()),
		lockStep:  cfg.lockStep,
		exportCfg: cfg.exportCfg,
		writer:    cfg.writer,
		load:      cfg.load,
		clip:      cfg.clip,
		notifier:  cfg.notifier,
		now:       cfg.now,
	}
	s.registerActions()
	return s, nil
}

// Done reports whether quit was requested.
func (s *Session) Done() bool { return s.done }

// Image returns the current source image.
func (s *Session) Image() image.Image { return s.img }

// Viewport exposes the viewport controller.
func (s *Session) Viewport() *viewport.Controller { return s.vp }

// Selection exposes the selection state machine.
func (s *Session) Selection() *selection.Machine { return s.sel }

// Guides reports whether the crosshair is shown.
func (s *Session) Guides() bool { return s.guides }

// Message returns the status message, if it has not expired.
func (s *Session) Message() string {
	if s.message == "" || !s.now().Before(s.messageUntil) {
		return ""
	}
	return s.message
}

func (s *Session) say(format string, args ...any) {
	s.message = fmt.Sprintf(format, args...)
	s.messageUntil = s.now().Add(messageDuration)
	log.Print(s.message)
}

// Handle applies one event. The locked selection, when active, is
// recomputed afterwards so it always tracks the viewport.
func (s *Session) Handle(ev Event) {
	switch e := ev.(type) {
	case PointerDown:
		s.moveCursor(e.Pos)
		switch e.Button {
		case ButtonLeft:
			// Rejected presses (pending or locked) are ignored.
			_ = s.sel.PointerDown(s.toImage(e.Pos))
		case ButtonRight:
			s.panning = true
			s.panLast = e.Pos
		}
	case PointerMove:
		s.moveCursor(e.Pos)
		if s.panning {
			s.dragPan(e.Pos)
		}
		s.sel.PointerMove(s.toImage(e.Pos))
	case PointerUp:
		s.moveCursor(e.Pos)
		switch e.Button {
		case ButtonLeft:
			_ = s.sel.PointerUp(s.toImage(e.Pos))
		case ButtonRight:
			if s.panning {
				s.dragPan(e.Pos)
			}
			s.panning = false
		}
	case Scroll:
		s.moveCursor(e.Pos)
		s.vp.ZoomAt(e.Dir, s.vp.MapScreenToImage(e.Pos))
	case KeyPress:
		s.key(e)
	case Resize:
		// Keep the drawing area in the viewport's proportions so the
		// image is never stretched.
		size := geom.FitAspect(e.Size, geom.SizeOf(s.vp.Viewport()))
		if err := s.vp.ResizeScreen(size); err != nil {
			log.Printf("resize: %v", err)
		}
	case Tick:
	}
	s.sel.SyncLocked(s.vp.Viewport())
}

func (s *Session) moveCursor(p image.Point) {
	s.cursor = p
	s.hasCursor = true
}

// toImage maps a screen point into the image, clamped to the visible part
// of it. Points in the window margin land on the nearest viewport edge.
func (s *Session) toImage(p image.Point) image.Point {
	return geom.ClampPoint(s.vp.MapScreenToImage(p), s.vp.Viewport())
}

// dragPan moves the viewport against the pointer so the image follows it.
// Movement smaller than one image pixel is carried over to the next move.
func (s *Session) dragPan(p image.Point) {
	sx, sy := s.vp.ScaleFactors()
	d := image.Pt(
		geom.Round(float64(s.panLast.X-p.X)*sx),
		geom.Round(float64(s.panLast.Y-p.Y)*sy),
	)
	s.vp.Pan(d)
	if d.X != 0 {
		s.panLast.X = p.X
	}
	if d.Y != 0 {
		s.panLast.Y = p.Y
	}
}

// Frame snapshots what should be drawn now.
func (s *Session) Frame() render.Frame {
	f := render.Frame{
		Image:     s.img,
		View:      s.vp.Viewport(),
		Screen:    s.vp.ScreenSize(),
		Guides:    s.guides,
		Cursor:    s.cursor,
		HasCursor: s.hasCursor,
		Status:    s.status(),
	}
	for _, r := range s.sel.Confirmed() {
		f.Confirmed = append(f.Confirmed, s.vp.MapRectToScreen(r))
	}
	if r, ok := s.sel.Unconfirmed(); ok {
		f.Unconfirmed = s.vp.MapRectToScreen(r)
		f.HasUnconfirmed = true
		_, f.Locked = s.sel.Locked()
	}
	return f
}

func (s *Session) status() string {
	parts := []string{fmt.Sprintf("%d confirmed", s.sel.Len())}
	if r, ok := s.sel.Unconfirmed(); ok {
		parts = append(parts, fmt.Sprintf("%s %d,%d %v", s.sel.State(), r.Min.X, r.Min.Y, geom.SizeOf(r)))
	}
	if size, ok := s.sel.Locked(); ok {
		parts = append(parts, "locked "+size.String())
	}
	parts = append(parts, fmt.Sprintf("%.0f%%", s.vp.ZoomPercent()))
	if msg := s.Message(); msg != "" {
		parts = append(parts, msg)
	}
	return strings.Join(parts, " | ")
}

// Export writes every confirmed rectangle and, when enabled, the
// description file. It is a no-op while a drag is in progress.
func (s *Session) Export() ([]string, error) {
	rects, err := s.sel.Snapshot()
	if err != nil {
		return nil, err
	}
	if len(rects) == 0 {
		s.say("nothing to export")
		return nil, nil
	}
	cfg := s.exportCfg
	prefix := cfg.prefix()
	written, err := export.ExportAll(s.writer, s.img, rects, prefix, cfg.Ext, cfg.Start)
	failed := 0
	var be *export.BatchError
	if errors.As(err, &be) {
		failed = len(be.Failures)
	}
	if cfg.Description {
		if derr := s.writeDescription(prefix, rects); derr != nil {
			log.Printf("export description: %v", derr)
			err = errors.Join(err, derr)
		}
	}
	if failed > 0 {
		s.say("exported %d of %d, %d failed", len(written), len(rects), failed)
	} else {
		s.say("exported %d file(s)", len(written))
	}
	if s.notifier != nil {
		s.notifier.Export(written, failed)
	}
	return written, err
}

func (s *Session) writeDescription(prefix string, rects []image.Rectangle) error {
	name := export.DescriptionName(prefix)
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	if err := export.WriteDescription(f, s.path, rects, s.exportCfg.Start); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", name, err)
	}
	return f.Close()
}

// Reload reads the image from its original path again and clears every
// selection. The drawing area shrinks to fit the new image's proportions.
// If loading fails the current image and selections are kept.
func (s *Session) Reload() error {
	img, err := s.load(s.path)
	if err == nil && !geom.SizeOf(img.Bounds()).Positive() {
		err = fmt.Errorf("%w: empty image", viewport.ErrInvalidInput)
	}
	if err != nil {
		s.say("reload failed: %v", err)
		if s.notifier != nil {
			s.notifier.ReloadFailed(s.path, err)
		}
		return err
	}
	size := geom.SizeOf(img.Bounds())
	screen := geom.FitAspect(s.vp.ScreenSize(), size).Min(size)
	if err := s.vp.Initialize(size, screen); err != nil {
		return err
	}
	s.img = img
	s.sel.Rebind(s.vp.Bounds())
	s.panning = false
	s.say("reloaded %s", s.path)
	return nil
}
