// Package browser provides browser automation through Playwright.
//
// The package is built around two concepts:
//
//  1. Session: a Playwright browser with its context and page
//  2. SessionManager: registry owning the Playwright driver and all sessions
//
// Pages on real sites change markup often, so most lookups go through
// Probe and its helpers, which try a list of candidate selectors in order and
// use the first one present. Authentication survives restarts through
// SaveStorageState and SessionOptions.StorageStatePath; a missing or corrupt
// state file simply yields a fresh context.
//
// # Example Usage
//
//	manager := NewSessionManager()
//	if err := manager.Initialize(); err != nil {
//	    return err
//	}
//	defer manager.Shutdown()
//
//	session, err := manager.StartSession("main", SessionOptions{
//	    Headless:         true,
//	    Args:             DefaultArgs,
//	    StorageStatePath: "session.json",
//	})
//
//	err = session.Navigate("https://example.com/home", NavigateOptions{
//	    WaitUntil: "domcontentloaded",
//	})
//	selector, err := session.ClickFirst([]string{
//	    `[data-testid="login"]`,
//	    `a[href="/login"]`,
//	}, 100, ProbeOptions{Timeout: 5000})
package browser
