package session

import (
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/example/imageslicer/internal/export"
	"github.com/example/imageslicer/internal/geom"
	"github.com/example/imageslicer/internal/selection"
	"github.com/example/imageslicer/internal/viewport"
)

type write struct {
	rect image.Rectangle
	name string
}

type fakeWriter struct {
	writes []write
	fail   map[string]error
}

func (w *fakeWriter) Write(_ image.Image, r image.Rectangle, name string) error {
	w.writes = append(w.writes, write{r, name})
	return w.fail[name]
}

type fakeClipboard struct {
	images []image.Image
	texts  []string
}

func (c *fakeClipboard) WriteImage(img image.Image) error {
	c.images = append(c.images, img)
	return nil
}

func (c *fakeClipboard) WriteText(text string) error {
	c.texts = append(c.texts, text)
	return nil
}

type fakeNotifier struct {
	exports [][]string
	failed  []int
	copies  []string
	reloads []error
}

func (n *fakeNotifier) Export(written []string, failed int) {
	n.exports = append(n.exports, written)
	n.failed = append(n.failed, failed)
}
func (n *fakeNotifier) Copy(detail string)                  { n.copies = append(n.copies, detail) }
func (n *fakeNotifier) ReloadFailed(path string, err error) { n.reloads = append(n.reloads, err) }

func testImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{uint8(x), uint8(y), 0, 255})
		}
	}
	return img
}

// newSession shows a 1000x800 image on an 800x600 screen, so screen and
// image coordinates coincide until the view moves.
func newSession(t *testing.T, opts ...Option) (*Session, *fakeWriter) {
	t.Helper()
	w := &fakeWriter{}
	opts = append([]Option{WithWriter(w), WithExport(ExportSettings{Prefix: "crop", Ext: "jpg"})}, opts...)
	s, err := New("photo.png", testImage(1000, 800), geom.Sz(800, 600), opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s, w
}

func leftDrag(s *Session, from, to image.Point) {
	s.Handle(PointerDown{Pos: from, Button: ButtonLeft})
	s.Handle(PointerMove{Pos: to})
	s.Handle(PointerUp{Pos: to, Button: ButtonLeft})
}

func press(s *Session, r rune) { s.Handle(KeyPress{Rune: r}) }

func TestDragConfirmExport(t *testing.T) {
	s, w := newSession(t)
	leftDrag(s, image.Pt(110, 60), image.Pt(10, 10))
	if s.Selection().State() != selection.Pending {
		t.Fatalf("state %v", s.Selection().State())
	}
	press(s, 'c')
	press(s, 'e')
	if len(w.writes) != 1 {
		t.Fatalf("got %d writes", len(w.writes))
	}
	if got := w.writes[0]; got.name != "crop0.jpg" || got.rect != image.Rect(10, 10, 110, 60) {
		t.Fatalf("write %+v", got)
	}
	// Selections stay confirmed and can be exported again.
	press(s, 'e')
	if len(w.writes) != 2 || s.Selection().Len() != 1 {
		t.Fatalf("re-export: %d writes, %d confirmed", len(w.writes), s.Selection().Len())
	}
}

func TestEnterAndEscapeMirrorConfirmAndDelete(t *testing.T) {
	s, _ := newSession(t)
	leftDrag(s, image.Pt(1, 1), image.Pt(20, 20))
	s.Handle(KeyPress{Key: KeyEscape})
	if _, ok := s.Selection().Unconfirmed(); ok || s.Selection().Len() != 0 {
		t.Fatal("escape did not delete")
	}
	leftDrag(s, image.Pt(1, 1), image.Pt(20, 20))
	s.Handle(KeyPress{Key: KeyEnter})
	if s.Selection().Len() != 1 {
		t.Fatal("enter did not confirm")
	}
}

func TestDegenerateConfirmKeepsPending(t *testing.T) {
	s, _ := newSession(t)
	leftDrag(s, image.Pt(5, 5), image.Pt(5, 5))
	press(s, 'c')
	if s.Selection().State() != selection.Pending || s.Selection().Len() != 0 {
		t.Fatalf("state %v len %d", s.Selection().State(), s.Selection().Len())
	}
	if !strings.Contains(s.Message(), "no area") {
		t.Fatalf("message %q", s.Message())
	}
}

func TestExportWithDirAndDescription(t *testing.T) {
	dir := t.TempDir()
	s, w := newSession(t, WithExport(ExportSettings{Prefix: "out_", Ext: "png", Start: 5, Dir: dir, Description: true}))
	leftDrag(s, image.Pt(0, 0), image.Pt(10, 10))
	press(s, 'c')
	leftDrag(s, image.Pt(20, 20), image.Pt(40, 30))
	press(s, 'c')
	written, err := s.Export()
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	want := []string{filepath.Join(dir, "out_5.png"), filepath.Join(dir, "out_6.png")}
	if len(written) != 2 || written[0] != want[0] || written[1] != want[1] {
		t.Fatalf("written %v, want %v", written, want)
	}
	if w.writes[1].rect != image.Rect(20, 20, 40, 30) {
		t.Fatalf("second rect %v", w.writes[1].rect)
	}
	data, err := os.ReadFile(filepath.Join(dir, "out_description.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if got := string(data); got != "photo.png 5 0 0 10 10\nphoto.png 6 20 20 20 10\n" {
		t.Fatalf("description %q", got)
	}
}

func TestExportReportsPartialFailure(t *testing.T) {
	n := &fakeNotifier{}
	s, w := newSession(t, WithNotifier(n))
	w.fail = map[string]error{"crop0.jpg": errors.New("read-only")}
	leftDrag(s, image.Pt(0, 0), image.Pt(10, 10))
	press(s, 'c')
	leftDrag(s, image.Pt(20, 20), image.Pt(30, 30))
	press(s, 'c')
	written, err := s.Export()
	var be *export.BatchError
	if !errors.As(err, &be) || len(be.Failures) != 1 {
		t.Fatalf("expected one failure, got %v", err)
	}
	if len(written) != 1 || written[0] != "crop1.jpg" {
		t.Fatalf("written %v", written)
	}
	if len(n.failed) != 1 || n.failed[0] != 1 {
		t.Fatalf("notifier %+v", n)
	}
}

func TestExportIgnoredWhileDragging(t *testing.T) {
	s, w := newSession(t)
	leftDrag(s, image.Pt(0, 0), image.Pt(10, 10))
	press(s, 'c')
	s.Handle(PointerDown{Pos: image.Pt(50, 50), Button: ButtonLeft})
	press(s, 'e')
	if len(w.writes) != 0 {
		t.Fatalf("exported mid-drag: %+v", w.writes)
	}
}

func TestRightDragPans(t *testing.T) {
	s, _ := newSession(t)
	s.Handle(PointerDown{Pos: image.Pt(100, 100), Button: ButtonRight})
	s.Handle(PointerMove{Pos: image.Pt(50, 80)})
	s.Handle(PointerUp{Pos: image.Pt(50, 80), Button: ButtonRight})
	if got := s.Viewport().Viewport().Min; got != image.Pt(50, 20) {
		t.Fatalf("viewport origin %v", got)
	}
	if s.Selection().State() != selection.Idle {
		t.Fatal("right drag started a selection")
	}
	// Past the right edge nothing moves on that axis.
	s.Handle(PointerDown{Pos: image.Pt(500, 100), Button: ButtonRight})
	s.Handle(PointerMove{Pos: image.Pt(0, 100)})
	if got := s.Viewport().Viewport().Min; got != image.Pt(50, 20) {
		t.Fatalf("viewport moved past the image: %v", got)
	}
}

func TestSelectionUsesImageCoordinatesAfterPan(t *testing.T) {
	s, _ := newSession(t)
	press(s, '6')
	press(s, '2')
	if got := s.Viewport().Viewport().Min; got != image.Pt(20, 20) {
		t.Fatalf("viewport origin %v", got)
	}
	leftDrag(s, image.Pt(0, 0), image.Pt(10, 10))
	r, _ := s.Selection().Unconfirmed()
	if r != image.Rect(20, 20, 30, 30) {
		t.Fatalf("selection %v", r)
	}
	if f := s.Frame(); f.Unconfirmed != image.Rect(0, 0, 10, 10) {
		t.Fatalf("frame rect %v", f.Unconfirmed)
	}
	s.Handle(KeyPress{Key: KeyLeft})
	if got := s.Viewport().Viewport().Min; got != image.Pt(0, 20) {
		t.Fatalf("arrow key pan: %v", got)
	}
}

func TestPointerInWindowMarginClampsToViewport(t *testing.T) {
	s, _ := newSession(t)
	// The window grows taller than the viewport's proportions allow, so
	// a margin opens up below the drawing area.
	s.Handle(Resize{Size: geom.Sz(1000, 1000)})
	if got := s.Viewport().ScreenSize(); got != geom.Sz(1000, 750) {
		t.Fatalf("screen %v", got)
	}
	leftDrag(s, image.Pt(100, 100), image.Pt(900, 900))
	r, _ := s.Selection().Unconfirmed()
	if r != image.Rect(80, 80, 720, 600) {
		t.Fatalf("selection %v", r)
	}
	if !r.In(s.Viewport().Viewport()) {
		t.Fatalf("selection %v leaves viewport %v", r, s.Viewport().Viewport())
	}
}

func TestPointerOutsideImageIsClamped(t *testing.T) {
	s, err := New("small.png", testImage(100, 50), geom.Sz(100, 50))
	if err != nil {
		t.Fatal(err)
	}
	leftDrag(s, image.Pt(90, 40), image.Pt(300, -20))
	r, _ := s.Selection().Unconfirmed()
	if r != image.Rect(90, 0, 100, 40) {
		t.Fatalf("selection %v", r)
	}
}

func TestScrollZoomsAtPointer(t *testing.T) {
	s, _ := newSession(t)
	s.Handle(Scroll{Pos: image.Pt(400, 300), Dir: viewport.ZoomIn})
	v := s.Viewport().Viewport()
	if v.Dx() != 760 || v.Dy() != 570 {
		t.Fatalf("zoomed viewport %v", v)
	}
	s.Handle(Scroll{Pos: image.Pt(400, 300), Dir: viewport.ZoomOut})
	v = s.Viewport().Viewport()
	if d := v.Dx() - 800; d < -1 || d > 1 {
		t.Fatalf("round trip width %d", v.Dx())
	}
}

func TestReloadFailureKeepsState(t *testing.T) {
	n := &fakeNotifier{}
	loadErr := errors.New("gone")
	s, _ := newSession(t, WithNotifier(n), WithLoader(func(string) (image.Image, error) { return nil, loadErr }))
	before := s.Image()
	leftDrag(s, image.Pt(0, 0), image.Pt(10, 10))
	press(s, 'c')
	press(s, 'r')
	if s.Image() != before || s.Selection().Len() != 1 {
		t.Fatal("failed reload changed the session")
	}
	if len(n.reloads) != 1 || !errors.Is(n.reloads[0], loadErr) {
		t.Fatalf("reload failure not reported: %+v", n.reloads)
	}
	if !strings.Contains(s.Message(), "reload failed") {
		t.Fatalf("message %q", s.Message())
	}
}

func TestReloadClearsSelections(t *testing.T) {
	loads := 0
	s, _ := newSession(t, WithLoader(func(path string) (image.Image, error) {
		loads++
		if path != "photo.png" {
			t.Errorf("loaded %q", path)
		}
		return testImage(300, 200), nil
	}))
	press(s, '6')
	leftDrag(s, image.Pt(0, 0), image.Pt(10, 10))
	press(s, 'c')
	leftDrag(s, image.Pt(20, 20), image.Pt(30, 30))
	press(s, 'r')
	if loads != 1 {
		t.Fatalf("loads %d", loads)
	}
	if s.Selection().Len() != 0 || s.Selection().State() != selection.Idle {
		t.Fatal("selections survived reset")
	}
	if v := s.Viewport().Viewport(); v != image.Rect(0, 0, 300, 200) {
		t.Fatalf("viewport after reload %v", v)
	}
	leftDrag(s, image.Pt(250, 150), image.Pt(400, 400))
	if r, _ := s.Selection().Unconfirmed(); r != image.Rect(250, 150, 300, 200) {
		t.Fatalf("selection not clamped to the new image: %v", r)
	}
}

func TestLockedSelection(t *testing.T) {
	s, _ := newSession(t, WithLockStep(10))
	leftDrag(s, image.Pt(0, 0), image.Pt(100, 50))
	press(s, 'l')
	r, ok := s.Selection().Unconfirmed()
	if !ok || r != image.Rect(350, 275, 450, 325) {
		t.Fatalf("locked rectangle %v %v", r, ok)
	}
	press(s, '6')
	s.Handle(Tick{})
	if r2, _ := s.Selection().Unconfirmed(); r2 != r.Add(image.Pt(20, 0)) {
		t.Fatalf("locked rectangle did not follow the view: %v", r2)
	}
	press(s, '+')
	if size, _ := s.Selection().Locked(); size != geom.Sz(110, 55) {
		t.Fatalf("grown to %v", size)
	}
	press(s, 'c')
	if s.Selection().Len() != 1 {
		t.Fatal("confirm in locked mode")
	}
	if _, ok := s.Selection().Unconfirmed(); !ok {
		t.Fatal("locked rectangle not resynthesized after confirm")
	}
	if !s.Frame().Locked {
		t.Fatal("frame not marked locked")
	}
	press(s, 'l')
	if _, ok := s.Selection().Locked(); ok {
		t.Fatal("still locked")
	}
	if _, ok := s.Selection().Unconfirmed(); ok {
		t.Fatal("synthesized rectangle survived unlock")
	}
}

func TestCopySelection(t *testing.T) {
	clip := &fakeClipboard{}
	n := &fakeNotifier{}
	s, _ := newSession(t, WithClipboard(clip), WithNotifier(n))
	press(s, 'y')
	if len(clip.images) != 0 || !strings.Contains(s.Message(), "nothing") {
		t.Fatal("copied without a selection")
	}
	leftDrag(s, image.Pt(10, 20), image.Pt(40, 30))
	press(s, 'y')
	press(s, 't')
	if len(clip.images) != 1 {
		t.Fatalf("images %d", len(clip.images))
	}
	b := clip.images[0].Bounds()
	if b.Dx() != 30 || b.Dy() != 10 {
		t.Fatalf("copied %v", b)
	}
	if r, g, _, _ := clip.images[0].At(b.Min.X, b.Min.Y).RGBA(); r>>8 != 10 || g>>8 != 20 {
		t.Fatalf("copied wrong pixels: %d %d", r>>8, g>>8)
	}
	if len(clip.texts) != 1 || clip.texts[0] != "10 20 30 10" {
		t.Fatalf("texts %v", clip.texts)
	}
	if len(n.copies) != 2 {
		t.Fatalf("copy notifications %v", n.copies)
	}
}

func TestFrameAndStatus(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s, _ := newSession(t, WithClock(func() time.Time { return now }))
	leftDrag(s, image.Pt(10, 10), image.Pt(110, 60))
	press(s, 'c')
	press(s, 'g')
	s.Handle(PointerMove{Pos: image.Pt(7, 9)})
	f := s.Frame()
	if len(f.Confirmed) != 1 || f.Confirmed[0] != image.Rect(10, 10, 110, 60) {
		t.Fatalf("confirmed %v", f.Confirmed)
	}
	if !f.Guides || !f.HasCursor || f.Cursor != image.Pt(7, 9) {
		t.Fatalf("guides %+v", f)
	}
	if f.HasUnconfirmed {
		t.Fatal("unexpected unconfirmed rectangle")
	}
	if !strings.HasPrefix(f.Status, "1 confirmed") || !strings.Contains(f.Status, "100%") || !strings.Contains(f.Status, "confirmed 10,10") {
		t.Fatalf("status %q", f.Status)
	}
	now = now.Add(time.Minute)
	if strings.Contains(s.Frame().Status, "confirmed 10,10") {
		t.Fatal("status message did not expire")
	}
}

func TestQuit(t *testing.T) {
	s, _ := newSession(t)
	press(s, 'x')
	if s.Done() {
		t.Fatal("unbound key quit")
	}
	press(s, 'Q')
	if !s.Done() {
		t.Fatal("q did not quit")
	}
}

func TestNewRejectsEmptyImage(t *testing.T) {
	if _, err := New("x.png", image.NewRGBA(image.Rect(0, 0, 0, 10)), geom.Sz(10, 10)); !errors.Is(err, viewport.ErrInvalidInput) {
		t.Fatalf("got %v", err)
	}
	if _, err := New("x.png", nil, geom.Sz(10, 10)); err == nil {
		t.Fatal("expected error for nil image")
	}
}

func TestResizeKeepsProportions(t *testing.T) {
	s, _ := newSession(t)
	s.Handle(Resize{Size: geom.Sz(1000, 1000)})
	if got := s.Viewport().ScreenSize(); got != geom.Sz(1000, 750) {
		t.Fatalf("screen %v", got)
	}
	sx, sy := s.Viewport().ScaleFactors()
	if sx != sy {
		t.Fatalf("non-uniform scale %v %v", sx, sy)
	}
	if f := s.Frame(); f.Screen != geom.Sz(1000, 750) {
		t.Fatalf("frame screen %v", f.Screen)
	}
}
