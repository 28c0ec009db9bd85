package theme

import (
	"bufio"
	"fmt"
	"image/color"
	"io"
	"strconv"
	"strings"
)

// Keys lists the colour keys in the order they are written out.
var Keys = []string{
	"Background",
	"Unconfirmed",
	"UnconfirmedAlt",
	"Confirmed",
	"Locked",
	"Guide",
	"StatusBackground",
	"StatusText",
}

func (t *Theme) color(key string) *color.RGBA {
	switch normalizeKey(key) {
	case "background":
		return &t.Background
	case "unconfirmed":
		return &t.Unconfirmed
	case "unconfirmedalt":
		return &t.UnconfirmedAlt
	case "confirmed":
		return &t.Confirmed
	case "locked":
		return &t.Locked
	case "guide":
		return &t.Guide
	case "statusbackground":
		return &t.StatusBackground
	case "statustext":
		return &t.StatusText
	}
	return nil
}

func normalizeKey(key string) string {
	key = strings.ToLower(strings.TrimSpace(key))
	return strings.NewReplacer("_", "", "-", "").Replace(key)
}

// Set assigns one key. Unknown keys are ignored so newer theme files still
// load.
func (t *Theme) Set(key, value string) error {
	if normalizeKey(key) == "name" {
		t.Name = value
		return nil
	}
	dst := t.color(key)
	if dst == nil {
		return nil
	}
	c, err := ParseColor(value)
	if err != nil {
		return fmt.Errorf("invalid color for key %s: %w", key, err)
	}
	*dst = c
	return nil
}

// WriteTo writes the theme as "Key: #RRGGBB" lines.
func (t *Theme) WriteTo(w io.Writer) (int64, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Name: %s\n", t.Name)
	for _, k := range Keys {
		fmt.Fprintf(&sb, "%s: %s\n", k, Hex(*t.color(k)))
	}
	n, err := io.WriteString(w, sb.String())
	return int64(n), err
}

// Parse reads a theme definition. Each line holds "Key: #RRGGBB" or
// "Key = #RRGGBBAA"; blank lines and # or // comments are skipped. Keys not
// present keep their default colour.
func Parse(r io.Reader) (*Theme, error) {
	t := Default()
	scanner := bufio.NewScanner(r)
	for n := 1; scanner.Scan(); n++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}
		key, value, ok := SplitLine(line)
		if !ok {
			continue
		}
		if err := t.Set(key, value); err != nil {
			return nil, fmt.Errorf("line %d: %w", n, err)
		}
	}
	return t, scanner.Err()
}

// SplitLine splits "key = value" or "key: value". Surrounding quotes are
// removed from the value.
func SplitLine(line string) (key, value string, ok bool) {
	i := strings.IndexAny(line, "=:")
	if i < 0 {
		return "", "", false
	}
	key = strings.TrimSpace(line[:i])
	value = strings.TrimSpace(line[i+1:])
	if len(value) >= 2 && strings.HasPrefix(value, "\"") && strings.HasSuffix(value, "\"") {
		value = value[1 : len(value)-1]
	}
	return key, value, key != ""
}

// ParseColor accepts #RRGGBB or #RRGGBBAA.
func ParseColor(s string) (color.RGBA, error) {
	hex, ok := strings.CutPrefix(s, "#")
	if !ok {
		return color.RGBA{}, fmt.Errorf("color must start with #")
	}
	if len(hex) != 6 && len(hex) != 8 {
		return color.RGBA{}, fmt.Errorf("invalid hex length")
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, err
	}
	if len(hex) == 6 {
		v = v<<8 | 0xFF
	}
	return color.RGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

// Hex formats c as #RRGGBB, or #RRGGBBAA when it is not opaque.
func Hex(c color.RGBA) string {
	if c.A == 255 {
		return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02X%02X%02X%02X", c.R, c.G, c.B, c.A)
}
