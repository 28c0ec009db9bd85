package config

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/example/imageslicer/internal/theme"
)

// Parse reads an rc file: "key = value" lines, [notify] and [theme.NAME]
// sections, # or // comments. Unknown keys are ignored.
func Parse(r io.Reader) (*Config, error) {
	cfg := New()
	scanner := bufio.NewScanner(r)

	var section string
	var current *theme.Theme
	for n := 1; scanner.Scan(); n++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			section = strings.TrimSpace(line[1 : len(line)-1])
			current = nil
			if name, ok := strings.CutPrefix(section, "theme."); ok {
				current = theme.Default()
				current.Name = name
				cfg.Themes[name] = current
			}
			continue
		}
		key, value, ok := theme.SplitLine(line)
		if !ok {
			continue
		}

		var err error
		switch {
		case current != nil:
			err = current.Set(key, value)
		case section == "notify":
			err = setNotifyField(&cfg.Notify, key, value)
		case section == "":
			err = setRootField(cfg, key, value)
		}
		if err != nil {
			if section == "" {
				section = "root"
			}
			return nil, fmt.Errorf("line %d [%s]: %w", n, section, err)
		}
	}
	return cfg, scanner.Err()
}

func setRootField(cfg *Config, key, value string) error {
	var err error
	switch strings.ToLower(key) {
	case "theme":
		cfg.Theme = value
	case "output_dir", "dir":
		cfg.OutputDir = value
	case "zoom_step":
		cfg.ZoomStep, err = strconv.ParseFloat(value, 64)
	case "scroll_step":
		cfg.ScrollStep, err = strconv.Atoi(value)
	case "lock_step":
		cfg.LockStep, err = strconv.ParseFloat(value, 64)
	case "min_zoom_fraction":
		cfg.MinZoomFraction, err = strconv.ParseFloat(value, 64)
	case "description":
		cfg.Description, err = strconv.ParseBool(value)
	case "jpeg_quality":
		cfg.JPEGQuality, err = strconv.Atoi(value)
	case "webp_quality":
		cfg.WebPQuality, err = strconv.ParseFloat(value, 64)
	case "webp_lossless":
		cfg.WebPLossless, err = strconv.ParseBool(value)
	case "screen_width":
		cfg.ScreenWidth, err = strconv.Atoi(value)
	case "screen_height":
		cfg.ScreenHeight, err = strconv.Atoi(value)
	default:
		return nil
	}
	if err != nil {
		return fmt.Errorf("invalid value for key %s: %w", key, err)
	}
	return nil
}

func setNotifyField(n *Notify, key, value string) error {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("invalid boolean for key %s: %w", key, err)
	}
	switch strings.ToLower(key) {
	case "export":
		n.Export = b
	case "copy":
		n.Copy = b
	case "reload":
		n.Reload = b
	}
	return nil
}
