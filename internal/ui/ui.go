// Package ui runs a Session in a shiny window.
package ui

import (
	"context"
	"image"
	"log"
	"sync"
	"time"

	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/mouse"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"

	"github.com/example/imageslicer/internal/geom"
	"github.com/example/imageslicer/internal/render"
	"github.com/example/imageslicer/internal/session"
	"github.com/example/imageslicer/internal/viewport"
)

// ProgramTitle prefixes every window title.
const ProgramTitle = "ImageSlicer"

// frameDropThreshold caps how many in-flight frames a newer paint may
// cancel in a row.
const frameDropThreshold = 10

const defaultTick = 33 * time.Millisecond

// tickEvent wakes the loop when no input arrives.
type tickEvent struct{}

type paintState struct {
	size  image.Point
	frame render.Frame
}

// App owns the window for one session.
type App struct {
	session  *session.Session
	renderer *render.Renderer
	title    string
	tick     time.Duration
	onClose  func()
}

// Option configures an App.
type Option func(*App)

// WithTitle sets the window title.
func WithTitle(title string) Option { return func(a *App) { a.title = title } }

// WithTickInterval sets how often Tick events are delivered.
func WithTickInterval(d time.Duration) Option { return func(a *App) { a.tick = d } }

// WithOnClose registers a callback run once the window is gone.
func WithOnClose(fn func()) Option { return func(a *App) { a.onClose = fn } }

// New returns an App drawing s with r.
func New(s *session.Session, r *render.Renderer, opts ...Option) *App {
	a := &App{session: s, renderer: r, title: ProgramTitle, tick: defaultTick}
	for _, o := range opts {
		o(a)
	}
	if a.renderer == nil {
		a.renderer = render.New(nil)
	}
	return a
}

// Run executes the UI loop using shiny's driver. It returns when the
// window closes or the session quits.
func (a *App) Run() { driver.Main(a.Main) }

// Main is the shiny entry point.
func (a *App) Main(s screen.Screen) {
	win := render.Size(a.session.Viewport().ScreenSize())
	w, err := s.NewWindow(&screen.NewWindowOptions{Width: win.X, Height: win.Y, Title: a.title})
	if err != nil {
		log.Printf("new window: %v", err)
		return
	}
	defer w.Release()
	if a.onClose != nil {
		defer a.onClose()
	}

	done := make(chan struct{})
	defer close(done)
	if a.tick > 0 {
		go func() {
			t := time.NewTicker(a.tick)
			defer t.Stop()
			for {
				select {
				case <-t.C:
					w.Send(tickEvent{})
				case <-done:
					return
				}
			}
		}()
	}

	var paintMu sync.Mutex
	var paintCancel context.CancelFunc
	var dropCount int
	paintCh := make(chan paintState, 1)
	defer close(paintCh)
	go func() {
		for st := range paintCh {
			ctx, cancel := context.WithCancel(context.Background())
			paintMu.Lock()
			paintCancel = cancel
			paintMu.Unlock()
			a.drawFrame(ctx, s, w, st)
			paintMu.Lock()
			paintCancel = nil
			if ctx.Err() == nil {
				dropCount = 0
			}
			paintMu.Unlock()
			cancel()
		}
	}()
	stopPaint := func() {
		paintMu.Lock()
		if paintCancel != nil {
			paintCancel()
		}
		paintMu.Unlock()
	}

	for {
		switch e := w.NextEvent().(type) {
		case lifecycle.Event:
			if e.To == lifecycle.StageDead {
				stopPaint()
				return
			}
		case size.Event:
			win = image.Pt(e.WidthPx, e.HeightPx)
			if ev, ok := resizeEvent(e); ok {
				a.session.Handle(ev)
			}
			w.Send(paint.Event{})
		case paint.Event:
			paintMu.Lock()
			if paintCancel != nil && dropCount < frameDropThreshold {
				paintCancel()
				dropCount++
			}
			paintMu.Unlock()
			st := paintState{size: win, frame: a.session.Frame()}
			select {
			case paintCh <- st:
			default:
				select {
				case <-paintCh:
				default:
				}
				paintCh <- st
			}
		case mouse.Event:
			if ev, ok := translateMouse(e); ok {
				a.session.Handle(ev)
				w.Send(paint.Event{})
			}
		case key.Event:
			if ev, ok := translateKey(e); ok {
				a.session.Handle(ev)
				w.Send(paint.Event{})
			}
		case tickEvent:
			a.session.Handle(session.Tick{})
			w.Send(paint.Event{})
		case error:
			log.Printf("window: %v", e)
		}
		if a.session.Done() {
			stopPaint()
			return
		}
	}
}

func (a *App) drawFrame(ctx context.Context, s screen.Screen, w screen.Window, st paintState) {
	sz := render.Size(st.frame.Screen)
	if st.size.X > sz.X {
		sz.X = st.size.X
	}
	if st.size.Y > sz.Y {
		sz.Y = st.size.Y
	}
	b, err := s.NewBuffer(sz)
	if err != nil {
		log.Printf("new buffer: %v", err)
		return
	}
	defer b.Release()
	if err := a.renderer.Draw(ctx, b.RGBA(), st.frame); err != nil {
		return
	}
	w.Upload(image.Point{}, b, b.Bounds())
	w.Publish()
}

// resizeEvent turns a window size into the drawing area left above the
// status bar.
func resizeEvent(e size.Event) (session.Event, bool) {
	s := geom.Sz(e.WidthPx, e.HeightPx-render.StatusHeight)
	if !s.Positive() {
		return nil, false
	}
	return session.Resize{Size: s}, true
}

func translateMouse(e mouse.Event) (session.Event, bool) {
	p := image.Pt(int(e.X), int(e.Y))
	if e.Button.IsWheel() {
		if e.Direction == mouse.DirRelease {
			return nil, false
		}
		switch e.Button {
		case mouse.ButtonWheelUp:
			return session.Scroll{Pos: p, Dir: viewport.ZoomIn}, true
		case mouse.ButtonWheelDown:
			return session.Scroll{Pos: p, Dir: viewport.ZoomOut}, true
		}
		return nil, false
	}
	switch e.Direction {
	case mouse.DirPress:
		return session.PointerDown{Pos: p, Button: button(e.Button)}, true
	case mouse.DirRelease:
		return session.PointerUp{Pos: p, Button: button(e.Button)}, true
	case mouse.DirNone:
		return session.PointerMove{Pos: p}, true
	}
	return nil, false
}

func button(b mouse.Button) session.Button {
	switch b {
	case mouse.ButtonLeft:
		return session.ButtonLeft
	case mouse.ButtonRight:
		return session.ButtonRight
	case mouse.ButtonMiddle:
		return session.ButtonMiddle
	}
	return session.ButtonNone
}

var namedKeys = map[key.Code]session.Key{
	key.CodeEscape:      session.KeyEscape,
	key.CodeReturnEnter: session.KeyEnter,
	key.CodeKeypadEnter: session.KeyEnter,
	key.CodeLeftArrow:   session.KeyLeft,
	key.CodeRightArrow:  session.KeyRight,
	key.CodeUpArrow:     session.KeyUp,
	key.CodeDownArrow:   session.KeyDown,
}

// translateKey accepts presses and auto-repeats.
func translateKey(e key.Event) (session.Event, bool) {
	if e.Direction == key.DirRelease {
		return nil, false
	}
	if k, ok := namedKeys[e.Code]; ok {
		return session.KeyPress{Key: k}, true
	}
	if e.Rune > 0 {
		return session.KeyPress{Rune: e.Rune}, true
	}
	return nil, false
}
