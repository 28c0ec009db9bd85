package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/example/imageslicer/internal/clipboard"
	"github.com/example/imageslicer/internal/config"
	"github.com/example/imageslicer/internal/display"
	"github.com/example/imageslicer/internal/geom"
	"github.com/example/imageslicer/internal/imageio"
	"github.com/example/imageslicer/internal/notify"
	"github.com/example/imageslicer/internal/render"
	"github.com/example/imageslicer/internal/session"
	"github.com/example/imageslicer/internal/theme"
	"github.com/example/imageslicer/internal/ui"
	"github.com/example/imageslicer/internal/viewport"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

// Exit codes.
const (
	exitUsage     = -1
	exitLoadImage = -2
	exitFailure   = 1
)

// Test seams.
var (
	loadImage  = imageio.Load
	screenSize = display.ScreenSize
	runUI      = func(s *session.Session, r *render.Renderer, title string) {
		ui.New(s, r, ui.WithTitle(title)).Run()
	}
)

type invocation struct {
	Path   string
	Prefix string
	Ext    string
	Start  int
}

type root struct {
	fs      *flag.FlagSet
	program string
	stdout  io.Writer

	configPath   string
	themeName    string
	dir          string
	description  bool
	zoomStep     float64
	scrollStep   int
	lockStep     float64
	notifyExport bool
	notifyCopy   bool
	notifyReload bool
	printConfig  bool
	showVersion  bool

	themes *theme.Loader
}

func (r *root) Program() string { return r.program }

func (r *root) FlagSet() *flag.FlagSet { return r.fs }

func (r *root) Themes() []string { return r.themes.Names() }

func newRoot(stdout io.Writer) *root {
	defaults := config.New()
	r := &root{
		fs:      flag.NewFlagSet("imageslicer", flag.ContinueOnError),
		program: "imageslicer",
		stdout:  stdout,
		themes:  theme.NewLoader(),
	}
	r.fs.SetOutput(io.Discard)
	// Defaults shown here are the built-in ones; only flags given on the
	// command line override the config file and environment.
	r.fs.StringVar(&r.configPath, "config", "", "configuration file to read instead of the default locations")
	r.fs.StringVar(&r.themeName, "theme", "", "overlay colour theme, by name or path")
	r.fs.StringVar(&r.dir, "dir", "", "directory for exported files")
	r.fs.StringVar(&r.dir, "o", "", "shorthand for -dir")
	r.fs.BoolVar(&r.description, "description", defaults.Description, "also write <prefix>description.txt listing every exported region")
	r.fs.Float64Var(&r.zoomStep, "zoom-step", defaults.ZoomStep, "percent the view shrinks or grows per zoom step")
	r.fs.IntVar(&r.scrollStep, "scroll-step", defaults.ScrollStep, "image pixels moved per pan key")
	r.fs.Float64Var(&r.lockStep, "lock-step", defaults.LockStep, "percent + and - change a locked selection by")
	r.fs.BoolVar(&r.notifyExport, "notify-export", defaults.Notify.Export, "show a desktop notification after exporting")
	r.fs.BoolVar(&r.notifyCopy, "notify-copy", defaults.Notify.Copy, "show a desktop notification after copying to the clipboard")
	r.fs.BoolVar(&r.notifyReload, "notify-reload", defaults.Notify.Reload, "show a desktop notification when reloading the image fails")
	r.fs.BoolVar(&r.printConfig, "print-config", false, "print the effective configuration and exit")
	r.fs.BoolVar(&r.showVersion, "version", false, "print the version and exit")
	return r
}

func (r *root) Run(args []string) error {
	if err := r.fs.Parse(args); err != nil {
		return &UsageError{of: r, err: err}
	}
	if r.showVersion {
		fmt.Fprintln(r.stdout, versionString(r.program))
		return nil
	}
	var inv invocation
	if !r.printConfig {
		var err error
		if inv, err = parseInvocation(r.fs.Args()); err != nil {
			return &UsageError{of: r, err: err}
		}
	}
	cfg, err := r.loadConfig()
	if err != nil {
		return err
	}
	r.themes.Inline = cfg.Themes
	if r.printConfig {
		fmt.Fprint(r.stdout, cfg.String())
		return nil
	}

	img, err := loadImage(inv.Path)
	if err != nil {
		return &LoadError{of: r, Path: inv.Path, Err: err}
	}
	imgSize := geom.SizeOf(img.Bounds())
	if !imgSize.Positive() {
		return &LoadError{of: r, Path: inv.Path, Err: errors.New("image is empty")}
	}

	screen, err := screenSize(imgSize, geom.Sz(cfg.ScreenWidth, cfg.ScreenHeight))
	if err != nil {
		log.Printf("display: %v; assuming %dx%d", err, cfg.ScreenWidth, cfg.ScreenHeight)
	}

	sess, err := session.New(inv.Path, img, screen, r.sessionOptions(cfg, inv)...)
	if err != nil {
		return err
	}
	th, err := r.themes.Load(cfg.Theme)
	if err != nil {
		log.Printf("theme: %v; using default", err)
		th = theme.Default()
	}
	runUI(sess, render.New(th), windowTitle(inv.Path))
	return nil
}

// loadConfig reads the config file and environment, then applies the flags
// that were given explicitly.
func (r *root) loadConfig() (*config.Config, error) {
	cfg, err := config.NewLoader(version, r.configPath).Load()
	if err != nil {
		return nil, err
	}
	r.fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "theme":
			cfg.Theme = r.themeName
		case "dir", "o":
			cfg.OutputDir = r.dir
		case "description":
			cfg.Description = r.description
		case "zoom-step":
			cfg.ZoomStep = r.zoomStep
		case "scroll-step":
			cfg.ScrollStep = r.scrollStep
		case "lock-step":
			cfg.LockStep = r.lockStep
		case "notify-export":
			cfg.Notify.Export = r.notifyExport
		case "notify-copy":
			cfg.Notify.Copy = r.notifyCopy
		case "notify-reload":
			cfg.Notify.Reload = r.notifyReload
		}
	})
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func (r *root) sessionOptions(cfg *config.Config, inv invocation) []session.Option {
	prefs, err := notify.LoadPreferences()
	if err != nil {
		log.Printf("notification preferences: %v", err)
	}
	n := notify.New(prefs)
	n.Enable(notify.EventExport, cfg.Notify.Export)
	n.Enable(notify.EventCopy, cfg.Notify.Copy)
	n.Enable(notify.EventReload, cfg.Notify.Reload)

	return []session.Option{
		session.WithViewportOptions(viewport.Options{
			ZoomStep:    cfg.ZoomStep / 100,
			ScrollStep:  cfg.ScrollStep,
			MinFraction: cfg.MinZoomFraction / 100,
		}),
		session.WithLockStep(cfg.LockStep),
		session.WithExport(session.ExportSettings{
			Prefix:      inv.Prefix,
			Ext:         inv.Ext,
			Start:       inv.Start,
			Dir:         cfg.OutputDir,
			Description: cfg.Description,
		}),
		session.WithWriter(imageio.Writer{
			JPEGQuality:  cfg.JPEGQuality,
			WebPQuality:  float32(cfg.WebPQuality),
			WebPLossless: cfg.WebPLossless,
		}),
		session.WithClipboard(systemClipboard{}),
		session.WithNotifier(n),
	}
}

// parseInvocation checks the four positional arguments.
func parseInvocation(args []string) (invocation, error) {
	if len(args) != 4 {
		return invocation{}, fmt.Errorf("expected 4 arguments, got %d", len(args))
	}
	inv := invocation{Path: args[0], Prefix: args[1], Ext: strings.TrimPrefix(args[2], ".")}
	if inv.Path == "" {
		return invocation{}, errors.New("image path is empty")
	}
	if !imageio.Supported(inv.Ext) {
		return invocation{}, fmt.Errorf("unsupported export type %q", args[2])
	}
	start, err := strconv.Atoi(args[3])
	if err != nil || start < 0 {
		return invocation{}, fmt.Errorf("start index %q: must be a non-negative integer", args[3])
	}
	inv.Start = start
	return inv, nil
}

func windowTitle(path string) string {
	return ui.ProgramTitle + " - " + path
}

func versionString(program string) string {
	s := program + " version " + version
	if commit != "" {
		s += " (" + commit
		if date != "" {
			s += " " + date
		}
		s += ")"
	}
	return s
}

type systemClipboard struct{}

func (systemClipboard) WriteImage(img image.Image) error { return clipboard.WriteImage(img) }

func (systemClipboard) WriteText(text string) error { return clipboard.WriteText(text) }

// exitCode maps an error returned by Run to the process status.
func exitCode(err error) int {
	var uerr *UsageError
	var lerr *LoadError
	switch {
	case err == nil:
		return 0
	case errors.Is(err, flag.ErrHelp):
		return 0
	case errors.As(err, &uerr):
		return exitUsage
	case errors.As(err, &lerr):
		return exitLoadImage
	}
	return exitFailure
}

func main() {
	r := newRoot(os.Stdout)
	err := r.Run(os.Args[1:])
	if err == nil {
		return
	}
	fmt.Fprintln(os.Stderr, err)
	os.Exit(exitCode(err))
}
