package theme

import "embed"

// EmbeddedThemes holds the built-in theme definitions.
//
//go:embed defaults/*.theme
var EmbeddedThemes embed.FS
