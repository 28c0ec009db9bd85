package platform

import "time"

// Urgency mirrors the freedesktop urgency levels.
type Urgency byte

const (
	UrgencyLow Urgency = iota
	UrgencyNormal
	UrgencyCritical
)

// Options configures how a notification is displayed.
type Options struct {
	// AppName identifies the sender. Empty means "ImageSlicer".
	AppName string
	// IconPath points to an image shown with the notification where supported.
	IconPath string
	Urgency  Urgency
	// Timeout of zero lets the notification server decide.
	Timeout time.Duration
}

func (o Options) appName() string {
	if o.AppName == "" {
		return "ImageSlicer"
	}
	return o.AppName
}
