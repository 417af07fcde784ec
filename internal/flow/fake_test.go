// File: internal/flow/fake_test.go
package flow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// fakeSurface is a stateful wallet-UI simulator implementing Surface. It
// models just enough of the extension's behavior for the flows to drive it:
// onboarding, the lock screen with an error banner, the post-unlock popover,
// the auto-lock timer and route navigation.
type fakeSurface struct {
	sel Selectors

	created  bool
	locked   bool
	password string // the wallet's actual password

	typed    string   // current unlock password field content
	pwFills  int      // password fields filled since the last submit
	words    []string // mnemonic words typed so far
	banner   bool     // error banner showing
	popover  bool     // post-onboarding popover showing
	route    string   // last navigated extension path
	closed   bool
	attempts []string // every password submitted at the lock screen
	clears   int
	sleeps   []time.Duration

	// Auto-lock simulation: armed by the settings flow, engages on a long
	// enough Sleep.
	autoLockArmed   bool
	autoLockMinutes string

	hiddenWaits int // WaitHidden calls observed

	// Fault injection.
	waitVisibleErr  error
	bannerProbeErr  error // IsVisible on the error banner fails
	rejectMnemonic  bool
	stickyBanner    bool   // clearing the field does not remove the banner
	autoLockBroken  bool   // timer armed but never fires
	leakingFragment string // route that renders content despite the lock state
}

func newFakeSurface(sel Selectors) *fakeSurface {
	return &fakeSurface{sel: sel}
}

func (f *fakeSurface) NavigateExtension(path string) error {
	f.route = path
	if path == f.sel.LockFragment {
		f.locked = true
		f.typed = ""
		f.banner = false
	}
	return nil
}

func (f *fakeSurface) SwitchToExtension(homePath string) error {
	f.route = homePath
	return nil
}

func (f *fakeSurface) Click(selector string) error {
	if selector == f.sel.PopoverClose {
		f.popover = false
	}
	if selector == f.sel.AutoLockButton {
		f.autoLockArmed = true
	}
	return nil
}

func (f *fakeSurface) ClickText(tag, text string) error {
	if tag != f.sel.ButtonTag {
		return fmt.Errorf("no %s button with text %q", tag, text)
	}
	switch text {
	case f.sel.UnlockText:
		f.submitUnlock()
	case f.sel.CreateWalletText, f.sel.ImportMyWalletText:
		// The final press of onboarding comes after both password fields are
		// filled; earlier presses just advance screens.
		if f.pwFills >= 2 {
			f.created = true
			f.locked = false
			f.popover = true
			f.password = f.typed
			f.pwFills = 0
		}
	case f.sel.ConfirmMnemonicText:
		if f.rejectMnemonic {
			f.banner = true
		}
		f.pwFills = 0
	}
	return nil
}

func (f *fakeSurface) submitUnlock() {
	f.attempts = append(f.attempts, f.typed)
	if f.typed == f.password {
		f.locked = false
		f.banner = false
		f.popover = true
	} else {
		f.banner = true
	}
}

func (f *fakeSurface) Fill(selector, value string) error {
	switch selector {
	case f.sel.PasswordInput:
		f.typed = value
	case f.sel.AutoTimeout:
		f.autoLockMinutes = value
	}
	return nil
}

func (f *fakeSurface) FillNth(selector string, n int, value string) error {
	if selector != f.sel.PasswordInput {
		return fmt.Errorf("no %s field at index %d", selector, n)
	}
	f.pwFills++
	f.typed = value
	f.words = append(f.words, value)
	return nil
}

func (f *fakeSurface) Clear(selector string) error {
	if selector == f.sel.PasswordInput {
		f.typed = ""
		f.clears++
		if !f.stickyBanner {
			f.banner = false
		}
	}
	return nil
}

func (f *fakeSurface) Text(selector string) (string, error) {
	switch selector {
	case f.sel.ErrorBanner:
		if f.banner {
			return "Incorrect password", nil
		}
		return "", nil
	case f.sel.AppContent:
		return f.renderedContent(), nil
	}
	return "", nil
}

// renderedContent models what the current route shows. A leaking fragment
// renders full content regardless of the lock state.
func (f *fakeSurface) renderedContent() string {
	if !f.created {
		return "Let's get started"
	}
	if strings.HasSuffix(f.route, "#"+f.leakingFragment) && f.leakingFragment != "" {
		return "Account 1 details"
	}
	if f.locked {
		return "Welcome back"
	}
	return "Account 1 balance"
}

func (f *fakeSurface) IsVisible(selector string) (bool, error) {
	switch selector {
	case f.sel.AppContent:
		return true, nil
	case f.sel.DashboardBalance:
		// A leaking route shows account content even when locked.
		if f.created && f.locked {
			return f.leakingFragment != "" && strings.HasSuffix(f.route, "#"+f.leakingFragment), nil
		}
		return f.created && !f.locked, nil
	case f.sel.ErrorBanner:
		if f.bannerProbeErr != nil {
			return false, f.bannerProbeErr
		}
		return f.banner, nil
	case f.sel.PopoverClose:
		return f.popover, nil
	}
	return false, nil
}

func (f *fakeSurface) IsVisibleText(selector, text string) (bool, error) {
	if selector != f.sel.ButtonTag {
		return false, nil
	}
	switch text {
	case f.sel.CreateWalletText:
		return !f.created, nil
	case f.sel.UnlockText:
		if f.leakingFragment != "" && strings.HasSuffix(f.route, "#"+f.leakingFragment) {
			// The leaking screen replaces the lock screen entirely.
			return false, nil
		}
		return f.created && f.locked, nil
	}
	return false, nil
}

func (f *fakeSurface) WaitVisible(selector string) error {
	return f.waitVisibleErr
}

func (f *fakeSurface) WaitHidden(selector string) error {
	f.hiddenWaits++
	visible, err := f.IsVisible(selector)
	if err != nil {
		return err
	}
	if visible {
		return fmt.Errorf("element %q still visible", selector)
	}
	return nil
}

func (f *fakeSurface) Sleep(d time.Duration) error {
	f.sleeps = append(f.sleeps, d)
	if f.autoLockArmed && f.autoLockMinutes != "" && !f.autoLockBroken {
		f.locked = true
	}
	return nil
}

func (f *fakeSurface) Close(ctx context.Context) error {
	if f.closed {
		return errors.New("already closed")
	}
	f.closed = true
	return nil
}
