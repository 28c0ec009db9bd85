//go:build !linux && !darwin && !windows

package platform

// Notify does nothing here.
func Notify(title, body string, opts Options) error {
	return nil
}
