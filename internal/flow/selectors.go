// File: internal/flow/selectors.go
package flow

// Selectors is the single adapter layer between the flow engine and the
// extension's versioned UI. Every element path lives here; when a new
// extension version moves things around, this table is the only thing that
// needs to change.
type Selectors struct {
	// Generic form controls.
	Checkbox      string
	TextInput     string
	PasswordInput string
	ButtonTag     string

	// Button captions driving the onboarding and unlock screens.
	CreateWalletText    string
	ImportWalletText    string
	NoThanksText        string
	RemindLaterText     string
	SkipText            string
	GotItText           string
	NextText            string
	DoneText            string
	ConfirmMnemonicText string
	ImportMyWalletText  string
	UnlockText          string
	AdvancedText        string

	// Stable data-testid hooks.
	PopoverClose   string
	AccountMenu    string
	SettingsMenu   string
	AutoLockButton string
	AutoTimeout    string

	// State indicators.
	AppContent       string
	DashboardBalance string
	ErrorBanner      string

	// Extension pages.
	HomePage     string
	LockFragment string

	// Routes swept by the access_control flow: the home page plus every known
	// fragment of the extension's internal router.
	AccessFragments []string
}

// DefaultSelectors targets the MetaMask UI this tool was written against.
func DefaultSelectors() Selectors {
	return Selectors{
		Checkbox:      "input[type=checkbox]",
		TextInput:     "input[type=text]",
		PasswordInput: "input[type=password]",
		ButtonTag:     "button",

		CreateWalletText:    "create a new wallet",
		ImportWalletText:    "import an existing wallet",
		NoThanksText:        "no thanks",
		RemindLaterText:     "remind me later",
		SkipText:            "skip",
		GotItText:           "got it",
		NextText:            "next",
		DoneText:            "done",
		ConfirmMnemonicText: "confirm secret recovery phrase",
		ImportMyWalletText:  "import my wallet",
		UnlockText:          "unlock",
		AdvancedText:        "advanced",

		PopoverClose:   "button[data-testid=popover-close]",
		AccountMenu:    "button[data-testid=account-options-menu-button]",
		SettingsMenu:   "button[data-testid=global-menu-settings]",
		AutoLockButton: "button[data-testid=auto-lockout-button]",
		AutoTimeout:    "input[id=autoTimeout]",

		AppContent:       "div[id=app-content]",
		DashboardBalance: "div[class=wallet-overview__balance]",
		ErrorBanner:      "p[class*=error]",

		HomePage:     "home.html",
		LockFragment: "home.html#lock",

		AccessFragments: []string{
			"new-account",
			"new-account/connect",
			"notifications",
			"restore-vault",
			"seed",
			"send",
			"settings",
			"settings/about-us",
			"settings/advanced",
			"settings/alerts",
			"settings/contact-list",
			"settings/contact-list/add-contact",
			"settings/contact-list/edit-contact",
			"settings/contact-list/view-contact",
			"settings/general",
			"settings/networks",
			"settings/networks/form",
			"settings/security",
			"snaps",
			"snaps/view",
			"swaps",
			"swaps/awaiting-signatures",
			"swaps/build-quote",
			"swaps/loading-quotes",
			"swaps/maintenance",
			"swaps/notification-page",
			"swaps/prepare-swap-page",
			"swaps/smart-transaction-status",
			"swaps/swaps-error",
			"swaps/view-quote",
		},
	}
}

// Routes expands the home page and its fragments into the full list of paths
// the access_control sweep visits.
func (s Selectors) Routes() []string {
	routes := []string{s.HomePage}
	for _, fragment := range s.AccessFragments {
		routes = append(routes, s.HomePage+"#"+fragment)
	}
	return routes
}
