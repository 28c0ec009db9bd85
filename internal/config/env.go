package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "imageslicer"

// overrides mirrors the root and [notify] keys. Nil means the variable was
// not set.
type overrides struct {
	Theme           *string  `envconfig:"THEME"`
	OutputDir       *string  `envconfig:"OUTPUT_DIR"`
	ZoomStep        *float64 `envconfig:"ZOOM_STEP"`
	ScrollStep      *int     `envconfig:"SCROLL_STEP"`
	LockStep        *float64 `envconfig:"LOCK_STEP"`
	MinZoomFraction *float64 `envconfig:"MIN_ZOOM_FRACTION"`
	Description     *bool    `envconfig:"DESCRIPTION"`
	JPEGQuality     *int     `envconfig:"JPEG_QUALITY"`
	WebPQuality     *float64 `envconfig:"WEBP_QUALITY"`
	WebPLossless    *bool    `envconfig:"WEBP_LOSSLESS"`
	ScreenWidth     *int     `envconfig:"SCREEN_WIDTH"`
	ScreenHeight    *int     `envconfig:"SCREEN_HEIGHT"`
	NotifyExport    *bool    `envconfig:"NOTIFY_EXPORT"`
	NotifyCopy      *bool    `envconfig:"NOTIFY_COPY"`
	NotifyReload    *bool    `envconfig:"NOTIFY_RELOAD"`
}

// ApplyEnv overwrites cfg with any IMAGESLICER_* variables that are set.
func ApplyEnv(cfg *Config) error {
	var o overrides
	if err := envconfig.Process(EnvPrefix, &o); err != nil {
		return fmt.Errorf("config environment: %w", err)
	}
	set(&cfg.Theme, o.Theme)
	set(&cfg.OutputDir, o.OutputDir)
	set(&cfg.ZoomStep, o.ZoomStep)
	set(&cfg.ScrollStep, o.ScrollStep)
	set(&cfg.LockStep, o.LockStep)
	set(&cfg.MinZoomFraction, o.MinZoomFraction)
	set(&cfg.Description, o.Description)
	set(&cfg.JPEGQuality, o.JPEGQuality)
	set(&cfg.WebPQuality, o.WebPQuality)
	set(&cfg.WebPLossless, o.WebPLossless)
	set(&cfg.ScreenWidth, o.ScreenWidth)
	set(&cfg.ScreenHeight, o.ScreenHeight)
	set(&cfg.Notify.Export, o.NotifyExport)
	set(&cfg.Notify.Copy, o.NotifyCopy)
	set(&cfg.Notify.Reload, o.NotifyReload)
	return nil
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
