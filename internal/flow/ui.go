// File: internal/flow/ui.go
package flow

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// passwordOutcome is what a password submission produced on screen.
type passwordOutcome int

const (
	passwordAccepted passwordOutcome = iota
	passwordRejected
)

// walletUI composes the action primitives into the reusable semantic steps of
// the wallet extension UI. Every method either completes its step or returns a
// single CompositeError carrying the last observed UI state; the Action
// Context is never left claiming partial success.
type walletUI struct {
	s   Surface
	sel Selectors
	log *zap.Logger
}

func newWalletUI(s Surface, sel Selectors, logger *zap.Logger) *walletUI {
	return &walletUI{s: s, sel: sel, log: logger.Named("ui")}
}

// fail wraps a primitive failure into a CompositeError with a best-effort
// snapshot of where the UI ended up.
func (ui *walletUI) fail(step string, err error) error {
	return &CompositeError{Step: step, State: ui.snapshotState(), Err: err}
}

// snapshotState probes the coarse UI state without blocking. Probe errors are
// swallowed; this runs while an error is already being reported.
func (ui *walletUI) snapshotState() UIState {
	if shown, err := ui.isErrorShown(); err == nil && shown {
		return StateErrorShown
	}
	if created, err := ui.isCreated(); err == nil && !created {
		return StateOnboarding
	}
	if locked, err := ui.isLocked(); err == nil {
		if locked {
			return StateLocked
		}
		return StateUnlocked
	}
	return StateUnknown
}

// openHome switches to the extension's own window and waits for it to render.
func (ui *walletUI) openHome() error {
	if err := ui.s.SwitchToExtension(ui.sel.HomePage); err != nil {
		return ui.fail("switch to extension window", err)
	}
	if err := ui.s.WaitVisible(ui.sel.AppContent); err != nil {
		return ui.fail("wait for extension window", err)
	}
	return nil
}

// isCreated reports whether the profile already carries a wallet. A fresh
// profile shows the onboarding "create a new wallet" button instead.
func (ui *walletUI) isCreated() (bool, error) {
	visible, err := ui.s.IsVisibleText(ui.sel.ButtonTag, ui.sel.CreateWalletText)
	return !visible, err
}

// isLocked reports whether the lock screen is showing.
func (ui *walletUI) isLocked() (bool, error) {
	return ui.s.IsVisibleText(ui.sel.ButtonTag, ui.sel.UnlockText)
}

func (ui *walletUI) isDashboardVisible() (bool, error) {
	return ui.s.IsVisible(ui.sel.DashboardBalance)
}

func (ui *walletUI) isErrorShown() (bool, error) {
	return ui.s.IsVisible(ui.sel.ErrorBanner)
}

// acceptCheckbox ticks the current screen's consent checkbox.
func (ui *walletUI) acceptCheckbox() error {
	if err := ui.s.Click(ui.sel.Checkbox); err != nil {
		return ui.fail("tick checkbox", err)
	}
	return nil
}

// pressButton clicks a button by its visible caption.
func (ui *walletUI) pressButton(caption string) error {
	if err := ui.s.ClickText(ui.sel.ButtonTag, caption); err != nil {
		return ui.fail(fmt.Sprintf("press %q", caption), err)
	}
	return nil
}

// closePopover dismisses the post-onboarding popover if one is showing.
func (ui *walletUI) closePopover() error {
	visible, err := ui.s.IsVisible(ui.sel.PopoverClose)
	if err != nil {
		return ui.fail("probe popover", err)
	}
	if !visible {
		return nil
	}
	if err := ui.s.Click(ui.sel.PopoverClose); err != nil {
		return ui.fail("close popover", err)
	}
	return nil
}

// typeMnemonic fills a word-per-field recovery phrase grid sequentially.
func (ui *walletUI) typeMnemonic(words []string) error {
	for i, word := range words {
		if err := ui.s.FillNth(ui.sel.PasswordInput, i, word); err != nil {
			return ui.fail(fmt.Sprintf("type mnemonic word %d", i+1), err)
		}
	}
	return nil
}

// setPassword fills the password and its confirmation field, then presses the
// given submit caption. Used by onboarding screens that ask twice.
func (ui *walletUI) setPassword(password, submitCaption string) error {
	for i := 0; i < 2; i++ {
		if err := ui.s.FillNth(ui.sel.PasswordInput, i, password); err != nil {
			return ui.fail(fmt.Sprintf("fill password field %d", i+1), err)
		}
	}
	return ui.pressButton(submitCaption)
}

// submitUnlock fills the single unlock password field, presses unlock and
// reports which terminal the UI reached.
func (ui *walletUI) submitUnlock(password string) (passwordOutcome, error) {
	if err := ui.s.Fill(ui.sel.PasswordInput, password); err != nil {
		return passwordRejected, ui.fail("fill unlock password", err)
	}
	if err := ui.pressButton(ui.sel.UnlockText); err != nil {
		return passwordRejected, err
	}

	locked, err := ui.isLocked()
	if err != nil {
		return passwordRejected, ui.fail("observe unlock outcome", err)
	}
	if locked {
		return passwordRejected, nil
	}
	return passwordAccepted, nil
}

// resetUnlockForm clears the rejected password and its error banner so the
// next attempt starts from a clean lock screen. Skipping this corrupts
// subsequent attempts.
func (ui *walletUI) resetUnlockForm() error {
	shown, err := ui.isErrorShown()
	if err != nil {
		return ui.fail("probe error banner", err)
	}
	if err := ui.s.Clear(ui.sel.PasswordInput); err != nil {
		return ui.fail("clear password field", err)
	}
	if shown {
		// Clearing the rejected input is what dismisses the banner in this UI;
		// wait until it is gone so the next attempt reads a clean screen.
		ui.log.Debug("Dismissing error banner before next attempt")
		if err := ui.s.WaitHidden(ui.sel.ErrorBanner); err != nil {
			return ui.fail("wait for error banner to clear", err)
		}
	}
	return nil
}

// errorBannerText reads the visible error banner, if any.
func (ui *walletUI) errorBannerText() string {
	text, err := ui.s.Text(ui.sel.ErrorBanner)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(text)
}

// unlock brings a created wallet to the unlocked state. No-op when already
// unlocked. Returns whether the wallet ended up unlocked.
func (ui *walletUI) unlock(password string) (bool, error) {
	locked, err := ui.isLocked()
	if err != nil {
		return false, ui.fail("probe lock state", err)
	}
	if !locked {
		return true, nil
	}

	outcome, err := ui.submitUnlock(password)
	if err != nil {
		return false, err
	}
	if outcome == passwordRejected {
		return false, nil
	}
	if err := ui.closePopover(); err != nil {
		return true, err
	}
	return true, nil
}

// lock brings a created wallet to the locked state via the extension's lock
// route. No-op when already locked.
func (ui *walletUI) lock() error {
	locked, err := ui.isLocked()
	if err != nil {
		return ui.fail("probe lock state", err)
	}
	if locked {
		return nil
	}
	if err := ui.s.NavigateExtension(ui.sel.LockFragment); err != nil {
		return ui.fail("navigate to lock route", err)
	}
	return nil
}
