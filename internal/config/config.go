// Package config reads the rc-style configuration file and the
// IMAGESLICER_* environment overrides.
package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/example/imageslicer/internal/theme"
)

// Notify holds which notifications are sent.
type Notify struct {
	Export bool
	Copy   bool
	Reload bool
}

// Config holds the application configuration. Step values are percentages.
type Config struct {
	Theme           string
	OutputDir       string
	ZoomStep        float64
	ScrollStep      int
	LockStep        float64
	MinZoomFraction float64
	Description     bool
	JPEGQuality     int
	WebPQuality     float64
	WebPLossless    bool
	ScreenWidth     int
	ScreenHeight    int
	Notify          Notify
	Themes          map[string]*theme.Theme
}

// New returns the defaults.
func New() *Config {
	return &Config{
		ZoomStep:        5,
		ScrollStep:      20,
		LockStep:        10,
		MinZoomFraction: 2,
		JPEGQuality:     95,
		WebPQuality:     90,
		ScreenWidth:     1280,
		ScreenHeight:    800,
		Themes:          make(map[string]*theme.Theme),
	}
}

// Validate rejects values the viewport and encoders cannot use.
func (c *Config) Validate() error {
	switch {
	case c.ZoomStep <= 0 || c.ZoomStep >= 100:
		return fmt.Errorf("zoom_step %v: must be between 0 and 100", c.ZoomStep)
	case c.ScrollStep <= 0:
		return fmt.Errorf("scroll_step %d: must be positive", c.ScrollStep)
	case c.LockStep <= 0 || c.LockStep >= 100:
		return fmt.Errorf("lock_step %v: must be between 0 and 100", c.LockStep)
	case c.MinZoomFraction <= 0 || c.MinZoomFraction > 100:
		return fmt.Errorf("min_zoom_fraction %v: must be between 0 and 100", c.MinZoomFraction)
	case c.JPEGQuality < 1 || c.JPEGQuality > 100:
		return fmt.Errorf("jpeg_quality %d: must be between 1 and 100", c.JPEGQuality)
	case c.WebPQuality < 0 || c.WebPQuality > 100:
		return fmt.Errorf("webp_quality %v: must be between 0 and 100", c.WebPQuality)
	case c.ScreenWidth <= 0 || c.ScreenHeight <= 0:
		return fmt.Errorf("screen size %dx%d: must be positive", c.ScreenWidth, c.ScreenHeight)
	}
	return nil
}

// String returns the configuration in rc format; Parse reads it back.
func (c *Config) String() string {
	var sb strings.Builder
	if c.Theme != "" {
		fmt.Fprintf(&sb, "theme = %s\n", c.Theme)
	}
	if c.OutputDir != "" {
		fmt.Fprintf(&sb, "output_dir = %s\n", c.OutputDir)
	}
	fmt.Fprintf(&sb, "zoom_step = %v\n", c.ZoomStep)
	fmt.Fprintf(&sb, "scroll_step = %d\n", c.ScrollStep)
	fmt.Fprintf(&sb, "lock_step = %v\n", c.LockStep)
	fmt.Fprintf(&sb, "min_zoom_fraction = %v\n", c.MinZoomFraction)
	fmt.Fprintf(&sb, "description = %v\n", c.Description)
	fmt.Fprintf(&sb, "jpeg_quality = %d\n", c.JPEGQuality)
	fmt.Fprintf(&sb, "webp_quality = %v\n", c.WebPQuality)
	fmt.Fprintf(&sb, "webp_lossless = %v\n", c.WebPLossless)
	fmt.Fprintf(&sb, "screen_width = %d\n", c.ScreenWidth)
	fmt.Fprintf(&sb, "screen_height = %d\n", c.ScreenHeight)
	sb.WriteString("\n[notify]\n")
	fmt.Fprintf(&sb, "export = %v\n", c.Notify.Export)
	fmt.Fprintf(&sb, "copy = %v\n", c.Notify.Copy)
	fmt.Fprintf(&sb, "reload = %v\n", c.Notify.Reload)

	names := make([]string, 0, len(c.Themes))
	for name := range c.Themes {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&sb, "\n[theme.%s]\n", name)
		_, _ = c.Themes[name].WriteTo(&sb)
	}
	return sb.String()
}
