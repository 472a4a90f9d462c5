package browser

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/playwright-community/playwright-go"
)

// SessionManager manages all active browser sessions.
type SessionManager struct {
	mu          sync.Mutex
	sessions    map[string]*Session
	playwright  *playwright.Playwright
	initialized bool
}

// NewSessionManager creates a new session manager.
func NewSessionManager() *SessionManager {
	return &SessionManager{
		sessions: make(map[string]*Session),
	}
}

// Initialize initializes the Playwright instance.
// This must be called before creating any sessions.
func (m *SessionManager) Initialize() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.initialized {
		return nil
	}

	// Only Chromium is launched; keep the driver quiet on stdout
	opts := &playwright.RunOptions{
		Browsers: []string{"chromium"},
		Verbose:  false,
		Stdout:   io.Discard,
		Stderr:   io.Discard,
	}

	err := playwright.Install(opts)
	if err != nil {
		return fmt.Errorf("failed to install playwright: %w", err)
	}

	pw, err := playwright.Run(opts)
	if err != nil {
		return fmt.Errorf("failed to start playwright: %w", err)
	}

	m.playwright = pw
	m.initialized = true
	return nil
}

// StartSession creates a new browser session with the given name and options.
func (m *SessionManager) StartSession(name string, opts SessionOptions) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Check if session already exists
	if _, exists := m.sessions[name]; exists {
		return nil, fmt.Errorf("session %q already exists", name)
	}

	// Ensure Playwright is initialized
	if !m.initialized {
		return nil, fmt.Errorf("session manager not initialized")
	}

	opts = withDefaults(opts)

	// Launch browser
	launchOpts := playwright.BrowserTypeLaunchOptions{
		Headless: &opts.Headless,
		Args:     opts.Args,
	}
	browser, err := m.playwright.Chromium.Launch(launchOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	contextOpts, restored, err := contextOptions(opts)
	if err != nil {
		browser.Close()
		return nil, err
	}
	context, err := browser.NewContext(contextOpts)
	if err != nil {
		browser.Close()
		return nil, fmt.Errorf("failed to create context: %w", err)
	}

	if opts.InitScript != "" {
		if err := context.AddInitScript(playwright.Script{Content: &opts.InitScript}); err != nil {
			context.Close()
			browser.Close()
			return nil, fmt.Errorf("failed to add init script: %w", err)
		}
	}

	// Create page
	page, err := context.NewPage()
	if err != nil {
		context.Close()
		browser.Close()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	// Set default timeout
	page.SetDefaultTimeout(opts.Timeout)

	session := &Session{
		Name:          name,
		Browser:       browser,
		Context:       context,
		Page:          page,
		Headless:      opts.Headless,
		ArtifactsDir:  opts.ArtifactsDir,
		CurrentURL:    "about:blank",
		RestoredState: restored,
	}

	m.sessions[name] = session
	return session, nil
}

// withDefaults fills unset options.
func withDefaults(opts SessionOptions) SessionOptions {
	if opts.Viewport == nil {
		opts.Viewport = &Viewport{
			Width:  DefaultViewportWidth,
			Height: DefaultViewportHeight,
		}
	}
	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}
	return opts
}

// contextOptions builds the Playwright context options and reports whether
// a persisted storage state will be restored.
func contextOptions(opts SessionOptions) (playwright.BrowserNewContextOptions, bool, error) {
	contextOpts := playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{
			Width:  opts.Viewport.Width,
			Height: opts.Viewport.Height,
		},
	}
	if opts.UserAgent != "" {
		contextOpts.UserAgent = playwright.String(opts.UserAgent)
	}
	if opts.Locale != "" {
		contextOpts.Locale = playwright.String(opts.Locale)
	}

	if opts.StorageStatePath == "" {
		return contextOpts, false, nil
	}
	valid, err := ValidStorageState(opts.StorageStatePath)
	if err != nil {
		return contextOpts, false, err
	}
	if valid {
		contextOpts.StorageStatePath = playwright.String(opts.StorageStatePath)
	}
	return contextOpts, valid, nil
}

// CloseSession closes and removes a browser session.
func (m *SessionManager) CloseSession(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, exists := m.sessions[name]
	if !exists {
		return fmt.Errorf("session %q not found", name)
	}
	delete(m.sessions, name)

	if err := errors.Join(closeSession(session)...); err != nil {
		return fmt.Errorf("failed to close session %q: %w", name, err)
	}
	return nil
}

// Shutdown closes all sessions and cleans up Playwright.
func (m *SessionManager) Shutdown() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for name, session := range m.sessions {
		closeSession(session)
		delete(m.sessions, name)
	}

	// Stop Playwright
	if m.initialized && m.playwright != nil {
		if err := m.playwright.Stop(); err != nil {
			return fmt.Errorf("failed to stop playwright: %w", err)
		}
		m.initialized = false
	}

	return nil
}

func closeSession(session *Session) []error {
	var errs []error
	if err := session.Page.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := session.Context.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := session.Browser.Close(); err != nil {
		errs = append(errs, err)
	}
	return errs
}
