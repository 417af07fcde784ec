// File: internal/browser/driver_test.go
package browser

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtensionOrigin(t *testing.T) {
	origin, err := extensionOrigin("chrome-extension://nkbihfbeogaeaoehlefnkodbefgpgknn/background.html")
	require.NoError(t, err)
	assert.Equal(t, "chrome-extension://nkbihfbeogaeaoehlefnkodbefgpgknn", origin)
}

func TestExtensionURLJoinsPaths(t *testing.T) {
	d := &Driver{baseURL: "chrome-extension://abc"}

	assert.Equal(t, "chrome-extension://abc/home.html", d.ExtensionURL("home.html"))
	assert.Equal(t, "chrome-extension://abc/home.html", d.ExtensionURL("/home.html"))
	assert.Equal(t, "chrome-extension://abc/home.html#lock", d.ExtensionURL("/home.html#lock"))
}

func TestTextXPathIsCaseInsensitive(t *testing.T) {
	xp := textXPath("button", "Create a New Wallet")

	assert.Contains(t, xp, "//button[")
	assert.Contains(t, xp, "'create a new wallet'")
	assert.Contains(t, xp, "translate(normalize-space(.)")
	// Apostrophes would break the single-quoted XPath literal.
	assert.NotContains(t, textXPath("button", "don't"), "don't")
}

func TestVisibleExprQuotesArguments(t *testing.T) {
	expr := visibleExpr(`button[data-testid="popover-close"]`, "Unlock")

	assert.Contains(t, expr, `"button[data-testid=\"popover-close\"]"`)
	assert.Contains(t, expr, `"unlock"`, "text filter must be lowercased")
	assert.Contains(t, expr, "getBoundingClientRect")
}

func TestWrapTimeout(t *testing.T) {
	t.Run("deadline becomes TimeoutError", func(t *testing.T) {
		err := wrapTimeout("click", "button", 5*time.Second, context.DeadlineExceeded)
		var te *TimeoutError
		require.ErrorAs(t, err, &te)
		assert.Equal(t, "click", te.Action)
		assert.Equal(t, "button", te.Selector)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("other errors pass through", func(t *testing.T) {
		cause := errors.New("boom")
		err := wrapTimeout("click", "button", time.Second, cause)
		assert.Equal(t, cause, err)
		var te *TimeoutError
		assert.False(t, errors.As(err, &te))
	})

	t.Run("nil stays nil", func(t *testing.T) {
		assert.NoError(t, wrapTimeout("click", "button", time.Second, nil))
	})
}
