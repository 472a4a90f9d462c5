package browser

import (
	"github.com/playwright-community/playwright-go"
)

// Session represents an active browser session with its associated resources.
type Session struct {
	// Name is the unique identifier for this session
	Name string

	// Browser is the Playwright browser instance
	Browser playwright.Browser

	// Context is the browser context (isolated session)
	Context playwright.BrowserContext

	// Page is the current active page
	Page playwright.Page

	// Headless indicates if the browser is running in headless mode
	Headless bool

	// ArtifactsDir receives screenshots; empty disables them
	ArtifactsDir string

	// CurrentURL is the URL of the current page
	CurrentURL string

	// RestoredState is true when a persisted storage state was loaded
	RestoredState bool

	screenshotSeq int
}

// SessionOptions configures a new browser session.
type SessionOptions struct {
	// Headless controls whether the browser runs without a visible window
	Headless bool

	// Viewport sets the initial viewport size
	Viewport *Viewport

	// Timeout sets the default timeout for operations (in milliseconds)
	Timeout float64

	// UserAgent overrides the browser's user agent string
	UserAgent string

	// Locale sets the context locale, e.g. "en-US"
	Locale string

	// Args are extra Chromium command line switches
	Args []string

	// InitScript runs in every page before any site script
	InitScript string

	// StorageStatePath restores cookies and local storage when the file is
	// present and valid
	StorageStatePath string

	// ArtifactsDir receives screenshots taken with Session.Screenshot
	ArtifactsDir string
}

// Viewport represents the browser viewport dimensions.
type Viewport struct {
	Width  int
	Height int
}

// NavigateOptions configures page navigation behavior.
type NavigateOptions struct {
	// WaitUntil specifies when to consider navigation successful
	// Valid values: "load", "domcontentloaded", "networkidle"
	WaitUntil string

	// Timeout in milliseconds (0 means default)
	Timeout float64
}

// ClickOptions configures element clicking behavior.
type ClickOptions struct {
	// Selector identifies the element to click
	Selector string

	// Delay between mousedown and mouseup in milliseconds
	Delay float64

	// Force skips actionability checks
	Force bool

	// Timeout in milliseconds
	Timeout float64
}

// FillOptions configures form input filling.
type FillOptions struct {
	// Selector identifies the input element
	Selector string

	// Value is the text to fill
	Value string

	// Timeout in milliseconds
	Timeout float64
}

// WaitOptions configures waiting behavior.
type WaitOptions struct {
	// Selector to wait for (if waiting for element)
	Selector string

	// State to wait for: "attached", "detached", "visible", "hidden"
	State string

	// Timeout in milliseconds
	Timeout float64
}

// ProbeOptions configures how a list of candidate selectors is tried.
type ProbeOptions struct {
	// Timeout per candidate in milliseconds. Zero checks the current DOM
	// without waiting.
	Timeout float64

	// State to wait for when Timeout is set (default "visible")
	State string
}

// Default values for various operations
const (
	DefaultTimeout        = 30000.0 // 30 seconds in milliseconds
	DefaultViewportWidth  = 1280
	DefaultViewportHeight = 720
)
