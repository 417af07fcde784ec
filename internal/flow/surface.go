// File: internal/flow/surface.go
package flow

import (
	"context"
	"time"
)

// Surface is the browser-automation capability surface the flow engine runs
// against. The extension UI is an opaque, versioned third-party surface; flows
// reach it only through these element-state primitives, so the dependency on
// any concrete automation layer stays behind this interface.
type Surface interface {
	// NavigateExtension loads an extension page by path, e.g. "home.html#lock".
	NavigateExtension(path string) error
	// SwitchToExtension makes the extension's own window the active target,
	// opening the given home page if no extension window exists yet.
	SwitchToExtension(homePath string) error

	Click(selector string) error
	ClickText(tag, text string) error
	Fill(selector, value string) error
	FillNth(selector string, n int, value string) error
	Clear(selector string) error
	Text(selector string) (string, error)
	IsVisible(selector string) (bool, error)
	IsVisibleText(selector, text string) (bool, error)
	WaitVisible(selector string) error
	WaitHidden(selector string) error
	Sleep(duration time.Duration) error

	// Close tears down the browser process, never the profile directory.
	Close(ctx context.Context) error
}
