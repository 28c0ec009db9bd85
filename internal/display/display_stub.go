//go:build !(linux || freebsd || openbsd || netbsd || dragonfly)

package display

// List is not implemented on this platform.
func List() ([]Monitor, error) {
	return nil, ErrUnavailable
}
