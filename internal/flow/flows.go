// File: internal/flow/flows.go
package flow

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/probeworks/extflow/internal/wordlist"
)

// runOpen loads the extension window. Success means the window rendered.
func runOpen(ctx context.Context, rt *Runtime) Result {
	if err := rt.ui.openHome(); err != nil {
		return failed("extension window never appeared", err)
	}
	return succeeded("extension window visible")
}

// runCreate walks the full wallet-creation onboarding.
func runCreate(ctx context.Context, rt *Runtime) Result {
	ui := rt.ui
	if err := ui.openHome(); err != nil {
		return failed("extension window never appeared", err)
	}

	created, err := ui.isCreated()
	if err != nil {
		return failed("cannot determine wallet state", err)
	}
	if created {
		return failed("wallet already created in this session", nil)
	}

	steps := []func() error{
		ui.acceptCheckbox,
		func() error { return ui.pressButton(rt.sel.CreateWalletText) },
		func() error { return ui.pressButton(rt.sel.NoThanksText) },
		ui.acceptCheckbox,
		func() error { return ui.setPassword(rt.params.Password, rt.sel.CreateWalletText) },
		func() error { return ui.pressButton(rt.sel.RemindLaterText) },
		ui.acceptCheckbox,
		func() error { return ui.pressButton(rt.sel.SkipText) },
		func() error { return ui.pressButton(rt.sel.GotItText) },
		func() error { return ui.pressButton(rt.sel.NextText) },
		func() error { return ui.pressButton(rt.sel.DoneText) },
		ui.closePopover,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return failed("onboarding stage did not complete", err)
		}
	}

	visible, err := ui.isDashboardVisible()
	if err != nil {
		return failed("cannot observe dashboard after onboarding", err)
	}
	if !visible {
		return failed("dashboard not visible after onboarding", nil)
	}
	return succeeded("wallet created, dashboard visible")
}

// runExisting imports a wallet from the supplied recovery phrase.
func runExisting(ctx context.Context, rt *Runtime) Result {
	ui := rt.ui
	if err := ui.openHome(); err != nil {
		return failed("extension window never appeared", err)
	}

	created, err := ui.isCreated()
	if err != nil {
		return failed("cannot determine wallet state", err)
	}
	if created {
		return failed("wallet already created in this session", nil)
	}

	intro := []func() error{
		ui.acceptCheckbox,
		func() error { return ui.pressButton(rt.sel.ImportWalletText) },
		func() error { return ui.pressButton(rt.sel.NoThanksText) },
	}
	for _, step := range intro {
		if err := step(); err != nil {
			return failed("import stage did not complete", err)
		}
	}

	if err := ui.typeMnemonic(rt.params.Mnemonic); err != nil {
		return failed("cannot enter recovery phrase", err)
	}
	if err := ui.pressButton(rt.sel.ConfirmMnemonicText); err != nil {
		return failed("cannot confirm recovery phrase", err)
	}

	// A bad phrase (wrong length or checksum) surfaces here as a banner.
	shown, err := ui.isErrorShown()
	if err != nil {
		return failed("cannot check for a rejected mnemonic", err)
	}
	if shown {
		return failed(fmt.Sprintf("mnemonic rejected: %s", ui.errorBannerText()), nil)
	}

	finish := []func() error{
		ui.acceptCheckbox,
		func() error { return ui.setPassword(rt.params.Password, rt.sel.ImportMyWalletText) },
		func() error { return ui.pressButton(rt.sel.GotItText) },
		func() error { return ui.pressButton(rt.sel.NextText) },
		func() error { return ui.pressButton(rt.sel.DoneText) },
		ui.closePopover,
	}
	for _, step := range finish {
		if err := step(); err != nil {
			return failed("import stage did not complete", err)
		}
	}

	visible, err := ui.isDashboardVisible()
	if err != nil {
		return failed("cannot observe dashboard after import", err)
	}
	if !visible {
		return failed("dashboard not visible after import", nil)
	}
	return succeeded("wallet imported, dashboard visible")
}

// runUnlock submits one password against the lock screen.
func runUnlock(ctx context.Context, rt *Runtime) Result {
	ui := rt.ui
	if err := ui.openHome(); err != nil {
		return failed("extension window never appeared", err)
	}

	if res, ok := requireCreated(ui); !ok {
		return res
	}

	locked, err := ui.isLocked()
	if err != nil {
		return failed("cannot determine lock state", err)
	}
	if !locked {
		return succeeded("wallet already unlocked")
	}

	outcome, err := ui.submitUnlock(rt.params.CandidatePassword)
	if err != nil {
		return failed("unlock attempt did not complete", err)
	}
	if outcome == passwordRejected {
		return failed(fmt.Sprintf("password rejected: %s", ui.errorBannerText()), nil)
	}
	if err := ui.closePopover(); err != nil {
		return failed("cannot dismiss post-unlock popover", err)
	}
	return succeeded("wallet unlocked, dashboard visible")
}

// runBruteForceUnlock iterates a wordlist against the lock screen, resetting
// the form between attempts, and stops at the first hit.
func runBruteForceUnlock(ctx context.Context, rt *Runtime) Result {
	ui := rt.ui
	if err := ui.openHome(); err != nil {
		return failed("extension window never appeared", err)
	}

	if res, ok := requireCreated(ui); !ok {
		return res
	}
	if err := ui.lock(); err != nil {
		return failed("cannot lock wallet before brute force", err)
	}

	candidates, err := wordlist.Load(rt.params.WordlistPath)
	if err != nil {
		return failed("cannot load wordlist", err)
	}
	rt.log.Info("Wordlist loaded", zap.Int("candidates", len(candidates)))

	for i, candidate := range candidates {
		if err := rt.limiter.Wait(ctx); err != nil {
			return failed("brute force interrupted", err)
		}

		outcome, err := ui.submitUnlock(candidate)
		if err != nil {
			return failed(fmt.Sprintf("attempt %d did not complete", i+1), err)
		}
		if outcome == passwordAccepted {
			detail := fmt.Sprintf("unlocked with candidate %d of %d: %q", i+1, len(candidates), candidate)
			rt.log.Info("Lock screen defeated",
				zap.Int("position", i+1),
				zap.String("password", candidate),
			)
			rt.report(ctx, map[string]any{
				"flow":     string(FlowBruteForceUnlock),
				"password": candidate,
				"position": i + 1,
			})
			return Result{Outcome: OutcomeSucceeded, Detail: detail, Findings: []string{candidate}}
		}

		// Mandatory state reset: a leftover banner or stale input corrupts
		// the next attempt.
		if err := ui.resetUnlockForm(); err != nil {
			return failed(fmt.Sprintf("cannot reset lock screen after attempt %d", i+1), err)
		}
	}

	return failed(fmt.Sprintf("wordlist exhausted, no candidate of %d unlocked the wallet", len(candidates)), nil)
}

// runIdleLock configures the auto-lock timer, waits past the threshold and
// verifies the wallet locked itself.
func runIdleLock(ctx context.Context, rt *Runtime) Result {
	ui := rt.ui
	if err := ui.openHome(); err != nil {
		return failed("extension window never appeared", err)
	}

	if res, ok := requireCreated(ui); !ok {
		return res
	}

	unlocked, err := ui.unlock(rt.params.Password)
	if err != nil {
		return failed("cannot unlock wallet before idle test", err)
	}
	if !unlocked {
		return failed("configured password does not unlock the wallet", nil)
	}

	// Drive the settings UI to the auto-lock timer.
	minutes := rt.cfg.IdleLockMinutes
	configure := []func() error{
		func() error { return clickStep(ui, rt.sel.AccountMenu) },
		func() error { return clickStep(ui, rt.sel.SettingsMenu) },
		func() error { return ui.pressButton(rt.sel.AdvancedText) },
		func() error {
			if err := ui.s.Fill(rt.sel.AutoTimeout, strconv.Itoa(minutes)); err != nil {
				return ui.fail("set auto-lock timer", err)
			}
			return nil
		},
		func() error { return clickStep(ui, rt.sel.AutoLockButton) },
	}
	for _, step := range configure {
		if err := step(); err != nil {
			return failed("cannot configure auto-lock timer", err)
		}
	}

	wait := time.Duration(minutes)*time.Minute + rt.cfg.IdleLockGrace
	rt.log.Info("Waiting for the wallet to auto-lock", zap.Duration("wait", wait))
	if err := ui.s.Sleep(wait); err != nil {
		return failed("idle wait interrupted", err)
	}

	if err := ui.openHome(); err != nil {
		return failed("extension window not reachable after idle wait", err)
	}
	locked, err := ui.isLocked()
	if err != nil {
		return failed("cannot observe lock state after idle wait", err)
	}
	if !locked {
		return failed("dashboard still visible, auto-lock did not engage", nil)
	}
	return succeeded(fmt.Sprintf("wallet auto-locked after %s idle", wait))
}

// runAccessControl drives the wallet to the target lock state and sweeps the
// extension's internal routes for screens that render despite it.
func runAccessControl(ctx context.Context, rt *Runtime) Result {
	ui := rt.ui
	if err := ui.openHome(); err != nil {
		return failed("extension window never appeared", err)
	}

	if res, ok := requireCreated(ui); !ok {
		return res
	}

	target := rt.params.Target
	switch target {
	case Locked:
		if err := ui.lock(); err != nil {
			return failed("cannot reach locked state", err)
		}
	case Unlocked:
		unlocked, err := ui.unlock(rt.params.Password)
		if err != nil {
			return failed("cannot reach unlocked state", err)
		}
		if !unlocked {
			return failed("configured password does not unlock the wallet", nil)
		}
	}

	locked, err := ui.isLocked()
	if err != nil {
		return failed("cannot verify lock state", err)
	}
	if (target == Locked) != locked {
		return failed(fmt.Sprintf("observed state %q after driving to %q", stateName(locked), target), nil)
	}

	routes := rt.sel.Routes()
	rt.log.Info("Sweeping extension routes",
		zap.String("state", string(target)),
		zap.Int("routes", len(routes)),
	)

	var findings []string
	for _, route := range routes {
		leak, err := probeRoute(ui, rt, target, route)
		if err != nil {
			return failed(fmt.Sprintf("route sweep failed at %q", route), err)
		}
		if leak {
			rt.log.Warn("Route renders despite lock state", zap.String("route", route))
			findings = append(findings, route)
		}
	}

	if len(findings) > 0 {
		rt.report(ctx, map[string]any{
			"flow":   string(FlowAccessControl),
			"state":  string(target),
			"routes": findings,
		})
	}

	return Result{
		Outcome:  OutcomeSucceeded,
		Detail:   fmt.Sprintf("state %q reached, %d of %d routes leaked content", target, len(findings), len(routes)),
		Findings: findings,
	}
}

// probeRoute visits one internal route and reports whether it rendered
// content inconsistent with the target lock state.
func probeRoute(ui *walletUI, rt *Runtime, target LockState, route string) (bool, error) {
	if err := ui.s.NavigateExtension(route); err != nil {
		return false, err
	}

	visible, err := ui.s.IsVisible(rt.sel.AppContent)
	if err != nil {
		return false, err
	}
	if !visible {
		return false, nil
	}
	text, err := ui.s.Text(rt.sel.AppContent)
	if err != nil || len(text) == 0 {
		return false, nil
	}

	// A route that lands back on the expected screen is fine.
	switch target {
	case Locked:
		locked, err := ui.isLocked()
		if err != nil {
			return false, err
		}
		return !locked, nil
	default:
		dashboard, err := ui.isDashboardVisible()
		if err != nil {
			return false, err
		}
		return !dashboard, nil
	}
}

// requireCreated gates flows that only make sense against a created wallet.
func requireCreated(ui *walletUI) (Result, bool) {
	created, err := ui.isCreated()
	if err != nil {
		return failed("cannot determine wallet state", err), false
	}
	if !created {
		return failed("wallet is not created in this session", errors.New("onboarding screen showing")), false
	}
	return Result{}, true
}

// clickStep adapts a bare selector click into a composite step.
func clickStep(ui *walletUI, selector string) error {
	if err := ui.s.Click(selector); err != nil {
		return ui.fail("click "+selector, err)
	}
	return nil
}

func stateName(locked bool) string {
	if locked {
		return string(Locked)
	}
	return string(Unlocked)
}
