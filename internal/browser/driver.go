// File: internal/browser/driver.go

// Package browser layers the flow engine's action primitives on top of
// chromedp. It owns the Chrome process running against a persistent session
// profile with the extension loaded, and exposes single-action building
// blocks (click, fill, wait, read) that flows compose into test steps.
package browser

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/probeworks/extflow/internal/config"
	"github.com/probeworks/extflow/internal/session"
)

const extensionScheme = "chrome-extension://"

// Driver drives a single browser instance against one session profile.
// Exactly one flow owns a Driver at a time; there is no internal locking
// beyond what chromedp requires.
type Driver struct {
	logger *zap.Logger
	cfg    config.BrowserConfig

	allocCtx    context.Context
	allocCancel context.CancelFunc

	browserCtx    context.Context
	browserCancel context.CancelFunc

	// pageCtx is the currently active tab, i.e. the Action Context target.
	pageCtx    context.Context
	pageCancel context.CancelFunc

	// baseURL is the extension's chrome-extension://<id> origin, discovered
	// from its background target after launch.
	baseURL string
}

// New prepares a Driver. Launch must be called before any primitive.
func New(logger *zap.Logger, cfg config.BrowserConfig) *Driver {
	return &Driver{
		logger: logger.Named("browser"),
		cfg:    cfg,
	}
}

// Launch starts Chrome against the session's profile directory with the
// extension loaded, opens the initial tab and discovers the extension origin.
func (d *Driver) Launch(ctx context.Context, sess *session.Session) error {
	opts := d.buildAllocatorOptions(sess)

	d.allocCtx, d.allocCancel = chromedp.NewExecAllocator(ctx, opts...)
	d.browserCtx, d.browserCancel = chromedp.NewContext(d.allocCtx,
		chromedp.WithLogf(func(format string, args ...interface{}) {
			d.logger.Debug(fmt.Sprintf(format, args...))
		}),
	)
	d.pageCtx, d.pageCancel = d.browserCtx, func() {}

	// Run a no-op task to confirm the browser started and is responsive.
	if err := chromedp.Run(d.browserCtx, chromedp.Navigate("about:blank")); err != nil {
		d.allocCancel()
		return fmt.Errorf("browser failed to start or respond: %w", err)
	}

	base, err := d.discoverBaseURL(sess.Descriptor.ManifestVersion)
	if err != nil {
		d.allocCancel()
		return err
	}
	d.baseURL = base

	d.logger.Info("Browser launched with extension loaded",
		zap.String("profile", sess.Dir),
		zap.String("extension_origin", d.baseURL),
	)
	return nil
}

// buildAllocatorOptions assembles the Chrome flags for a persistent,
// extension-carrying profile.
func (d *Driver) buildAllocatorOptions(sess *session.Session) []chromedp.ExecAllocatorOption {
	// Start from the defaults, then override the flags that would break
	// extension loading or reveal automation. A later Flag with the same name
	// wins, and false-valued bool flags are omitted from the command line.
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)

	opts = append(opts,
		chromedp.Flag("disable-extensions", false),
		chromedp.Flag("enable-automation", false),
		chromedp.UserDataDir(sess.Dir),
		chromedp.Flag("disable-extensions-except", sess.ExtensionDir),
		chromedp.Flag("load-extension", sess.ExtensionDir),
		chromedp.Flag("headless", d.cfg.Headless),
		chromedp.Flag("ignore-certificate-errors", d.cfg.IgnoreTLSErrors),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
	)

	if d.cfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(d.cfg.UserAgent))
	}
	if d.cfg.Proxy != "" {
		opts = append(opts, chromedp.ProxyServer(d.cfg.Proxy))
	}

	// Custom arguments, "--name=value" or bare "--name".
	for _, arg := range d.cfg.Args {
		parts := strings.SplitN(arg, "=", 2)
		name := strings.TrimPrefix(parts[0], "--")
		if len(parts) == 2 {
			opts = append(opts, chromedp.Flag(name, parts[1]))
		} else {
			opts = append(opts, chromedp.Flag(name, true))
		}
	}

	return opts
}

// discoverBaseURL waits for the extension's background target to appear and
// derives the chrome-extension://<id> origin from it. MV3 extensions register
// a service worker, MV2 a background page.
func (d *Driver) discoverBaseURL(manifestVersion int) (string, error) {
	wantType := "background_page"
	if manifestVersion >= 3 {
		wantType = "service_worker"
	}

	deadline := time.Now().Add(d.cfg.ActionTimeout)
	for {
		infos, err := chromedp.Targets(d.browserCtx)
		if err != nil {
			return "", fmt.Errorf("cannot enumerate browser targets: %w", err)
		}
		for _, info := range infos {
			if info.Type == wantType && strings.HasPrefix(info.URL, extensionScheme) {
				return extensionOrigin(info.URL)
			}
		}

		if time.Now().After(deadline) {
			return "", &TimeoutError{
				Action:  "discover extension " + wantType,
				Timeout: d.cfg.ActionTimeout,
				Err:     context.DeadlineExceeded,
			}
		}
		select {
		case <-time.After(200 * time.Millisecond):
		case <-d.browserCtx.Done():
			return "", d.browserCtx.Err()
		}
	}
}

// extensionOrigin reduces a chrome-extension URL to its origin.
func extensionOrigin(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("malformed extension URL %q: %w", raw, err)
	}
	return extensionScheme + u.Host, nil
}

// ExtensionURL joins a page path onto the extension origin.
func (d *Driver) ExtensionURL(path string) string {
	return d.baseURL + "/" + strings.TrimLeft(path, "/")
}

// run executes chromedp actions on the active tab under the per-action timeout
// and translates deadline hits into TimeoutError.
func (d *Driver) run(action, selector string, actions ...chromedp.Action) error {
	tctx, cancel := context.WithTimeout(d.pageCtx, d.cfg.ActionTimeout)
	defer cancel()
	return wrapTimeout(action, selector, d.cfg.ActionTimeout, chromedp.Run(tctx, actions...))
}

// settle pauses for the configured inter-action wait so the extension UI can
// finish its own async rendering. This is pacing, not synchronization.
func (d *Driver) settle() {
	if d.cfg.SettleWait <= 0 {
		return
	}
	select {
	case <-time.After(d.cfg.SettleWait):
	case <-d.pageCtx.Done():
	}
}

// Navigate loads a URL in the active tab and waits for the document body.
func (d *Driver) Navigate(rawURL string) error {
	d.logger.Debug("Navigating", zap.String("url", rawURL))
	err := d.run("navigate", rawURL,
		chromedp.Navigate(rawURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	d.settle()
	return err
}

// NavigateExtension loads an extension page by path, e.g. "home.html#lock".
func (d *Driver) NavigateExtension(path string) error {
	return d.Navigate(d.ExtensionURL(path))
}

// SwitchToExtension makes the extension's own window the active Action Context
// target. An already open extension tab is attached to; otherwise the current
// tab is pointed at the given page.
func (d *Driver) SwitchToExtension(homePath string) error {
	infos, err := chromedp.Targets(d.browserCtx)
	if err != nil {
		return fmt.Errorf("cannot enumerate browser targets: %w", err)
	}

	var existing *target.Info
	for _, info := range infos {
		if info.Type == "page" && strings.HasPrefix(info.URL, d.baseURL) {
			existing = info
			break
		}
	}

	if existing != nil {
		d.logger.Debug("Attaching to existing extension window", zap.String("url", existing.URL))
		if d.pageCancel != nil {
			d.pageCancel()
		}
		d.pageCtx, d.pageCancel = chromedp.NewContext(d.browserCtx, chromedp.WithTargetID(existing.TargetID))
		return d.run("attach", existing.URL, chromedp.WaitReady("body", chromedp.ByQuery))
	}

	return d.NavigateExtension(homePath)
}

// Click clicks the first element matching a CSS selector.
func (d *Driver) Click(selector string) error {
	err := d.run("click", selector, chromedp.Click(selector, chromedp.ByQuery))
	d.settle()
	return err
}

// ClickText clicks the first element of the given tag whose text contains
// text, case-insensitively. Mirrors a locator-with-text query.
func (d *Driver) ClickText(tag, text string) error {
	xp := textXPath(tag, text)
	err := d.run("click", tag+":"+text, chromedp.Click(xp, chromedp.BySearch))
	d.settle()
	return err
}

// Fill clears and types into the first element matching selector.
func (d *Driver) Fill(selector, value string) error {
	err := d.run("fill", selector,
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.Clear(selector, chromedp.ByQuery),
		chromedp.SendKeys(selector, value, chromedp.ByQuery),
	)
	d.settle()
	return err
}

// FillNth types into the n-th (0-based) element matching selector. Used for
// forms that split one value across several inputs, like a mnemonic grid.
func (d *Driver) FillNth(selector string, n int, value string) error {
	var nodes []*cdp.Node
	if err := d.run("query", selector,
		chromedp.Nodes(selector, &nodes, chromedp.ByQueryAll),
	); err != nil {
		return err
	}
	if n >= len(nodes) {
		return fmt.Errorf("selector %q matched %d elements, need index %d", selector, len(nodes), n)
	}
	id := []cdp.NodeID{nodes[n].NodeID}
	err := d.run("fill", fmt.Sprintf("%s[%d]", selector, n),
		chromedp.Clear(id, chromedp.ByNodeID),
		chromedp.SendKeys(id, value, chromedp.ByNodeID),
	)
	d.settle()
	return err
}

// Clear empties the first element matching selector without submitting.
func (d *Driver) Clear(selector string) error {
	return d.run("clear", selector, chromedp.Clear(selector, chromedp.ByQuery))
}

// Text returns the text content of the first element matching selector.
func (d *Driver) Text(selector string) (string, error) {
	var out string
	err := d.run("read", selector, chromedp.Text(selector, &out, chromedp.ByQuery))
	return out, err
}

// IsVisible reports whether any element matching selector is currently
// rendered. It never blocks waiting for the element to appear.
func (d *Driver) IsVisible(selector string) (bool, error) {
	return d.IsVisibleText(selector, "")
}

// IsVisibleText is IsVisible with an additional case-insensitive text filter.
func (d *Driver) IsVisibleText(selector, text string) (bool, error) {
	var visible bool
	expr := visibleExpr(selector, text)
	err := d.run("visible", selector, chromedp.Evaluate(expr, &visible))
	return visible, err
}

// WaitVisible blocks until an element matching selector is rendered, or the
// action timeout raises a TimeoutError.
func (d *Driver) WaitVisible(selector string) error {
	return d.run("wait visible", selector, chromedp.WaitVisible(selector, chromedp.ByQuery))
}

// WaitHidden blocks until no element matching selector is rendered, or the
// action timeout raises a TimeoutError. Used to observe transient UI like
// error banners actually going away.
func (d *Driver) WaitHidden(selector string) error {
	return d.run("wait hidden", selector, chromedp.WaitNotVisible(selector, chromedp.ByQuery))
}

// Sleep pauses the flow for a fixed interval, honoring teardown.
func (d *Driver) Sleep(duration time.Duration) error {
	select {
	case <-time.After(duration):
		return nil
	case <-d.pageCtx.Done():
		return d.pageCtx.Err()
	}
}

// Close tears down the browser process. The profile directory is deliberately
// left in place so the session stays reusable.
func (d *Driver) Close(ctx context.Context) error {
	if d.allocCancel == nil {
		return nil
	}
	d.logger.Info("Shutting down browser process")

	if d.pageCancel != nil {
		d.pageCancel()
	}
	if d.browserCancel != nil {
		d.browserCancel()
	}
	d.allocCancel()

	select {
	case <-d.allocCtx.Done():
	case <-ctx.Done():
		d.logger.Warn("Deadline exceeded waiting for browser shutdown", zap.Error(ctx.Err()))
	}
	return nil
}

// textXPath builds a case-insensitive contains() XPath for tag elements.
func textXPath(tag, text string) string {
	lower := strings.ReplaceAll(strings.ToLower(text), "'", "")
	return fmt.Sprintf(
		`//%s[contains(translate(normalize-space(.), 'ABCDEFGHIJKLMNOPQRSTUVWXYZ', 'abcdefghijklmnopqrstuvwxyz'), '%s')]`,
		tag, lower,
	)
}

// visibleExpr builds the JS probe used by IsVisible. Visibility means a
// non-empty bounding box and computed visibility other than hidden.
func visibleExpr(selector, text string) string {
	return fmt.Sprintf(`(function(sel, text) {
	const els = document.querySelectorAll(sel);
	for (const el of els) {
		if (text && !el.textContent.toLowerCase().includes(text)) continue;
		const rect = el.getBoundingClientRect();
		if ((rect.width > 0 || rect.height > 0) && getComputedStyle(el).visibility !== 'hidden') return true;
	}
	return false;
})(%s, %s)`, strconv.Quote(selector), strconv.Quote(strings.ToLower(text)))
}
