package browser

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/entrhq/threadline/pkg/htmltext"
	"github.com/playwright-community/playwright-go"
)

// Navigate navigates the session's page to the specified URL.
func (s *Session) Navigate(url string, opts NavigateOptions) error {
	playwrightOpts := playwright.PageGotoOptions{}

	if opts.WaitUntil != "" {
		waitUntil := playwright.WaitUntilState(opts.WaitUntil)
		playwrightOpts.WaitUntil = &waitUntil
	}

	if opts.Timeout > 0 {
		playwrightOpts.Timeout = &opts.Timeout
	}

	_, err := s.Page.Goto(url, playwrightOpts)
	if err != nil {
		return fmt.Errorf("navigation to %s failed: %w", url, err)
	}

	s.CurrentURL = s.Page.URL()
	return nil
}

// URL returns the page's current address.
func (s *Session) URL() string {
	s.CurrentURL = s.Page.URL()
	return s.CurrentURL
}

// WaitForLoad waits for the given load state ("load", "domcontentloaded",
// "networkidle"). An empty state waits for "load".
func (s *Session) WaitForLoad(state string, timeout float64) error {
	opts := playwright.PageWaitForLoadStateOptions{}
	if state == "" {
		state = "load"
	}
	loadState := playwright.LoadState(state)
	opts.State = &loadState
	if timeout > 0 {
		opts.Timeout = &timeout
	}

	if err := s.Page.WaitForLoadState(opts); err != nil {
		return fmt.Errorf("wait for %s failed: %w", state, err)
	}
	s.CurrentURL = s.Page.URL()
	return nil
}

// Click clicks an element matching the selector.
func (s *Session) Click(opts ClickOptions) error {
	playwrightOpts := playwright.PageClickOptions{}

	if opts.Delay > 0 {
		playwrightOpts.Delay = &opts.Delay
	}

	if opts.Force {
		playwrightOpts.Force = playwright.Bool(true)
	}

	if opts.Timeout > 0 {
		playwrightOpts.Timeout = &opts.Timeout
	}

	err := s.Page.Click(opts.Selector, playwrightOpts)
	if err != nil {
		return fmt.Errorf("click %s failed: %w", opts.Selector, err)
	}

	// Update current URL in case click caused navigation
	s.CurrentURL = s.Page.URL()
	return nil
}

// Fill fills an input element with the specified value.
func (s *Session) Fill(opts FillOptions) error {
	playwrightOpts := playwright.PageFillOptions{}

	if opts.Timeout > 0 {
		playwrightOpts.Timeout = &opts.Timeout
	}

	err := s.Page.Fill(opts.Selector, opts.Value, playwrightOpts)
	if err != nil {
		return fmt.Errorf("fill %s failed: %w", opts.Selector, err)
	}

	return nil
}

// Wait waits for an element to reach a state.
func (s *Session) Wait(opts WaitOptions) error {
	if opts.Selector == "" {
		return fmt.Errorf("selector is required for wait")
	}

	playwrightOpts := playwright.PageWaitForSelectorOptions{}

	if opts.State != "" {
		state := playwright.WaitForSelectorState(opts.State)
		playwrightOpts.State = &state
	}

	if opts.Timeout > 0 {
		playwrightOpts.Timeout = &opts.Timeout
	}

	_, err := s.Page.WaitForSelector(opts.Selector, playwrightOpts)
	if err != nil {
		return fmt.Errorf("wait for %s failed: %w", opts.Selector, err)
	}

	return nil
}

// Evaluate runs a script in the page and returns its result.
func (s *Session) Evaluate(script string, args ...interface{}) (interface{}, error) {
	result, err := s.Page.Evaluate(script, args...)
	if err != nil {
		return nil, fmt.Errorf("evaluate failed: %w", err)
	}
	return result, nil
}

// Content returns the page's full HTML.
func (s *Session) Content() (string, error) {
	content, err := s.Page.Content()
	if err != nil {
		return "", fmt.Errorf("failed to read page content: %w", err)
	}
	return content, nil
}

// Text returns the visible text of the first element matching selector.
func (s *Session) Text(selector string) (string, error) {
	element, err := s.Page.QuerySelector(selector)
	if err != nil {
		return "", fmt.Errorf("selector query failed: %w", err)
	}
	if element == nil {
		return "", fmt.Errorf("no element found matching selector: %s", selector)
	}
	markup, err := element.InnerHTML()
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", selector, err)
	}
	return htmltext.Extract(markup)
}

// Attribute returns an attribute of the first element matching selector.
func (s *Session) Attribute(selector, name string) (string, error) {
	element, err := s.Page.QuerySelector(selector)
	if err != nil {
		return "", fmt.Errorf("selector query failed: %w", err)
	}
	if element == nil {
		return "", fmt.Errorf("no element found matching selector: %s", selector)
	}
	value, err := element.GetAttribute(name)
	if err != nil {
		return "", fmt.Errorf("failed to read %s of %s: %w", name, selector, err)
	}
	return value, nil
}

var unsafeName = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// Screenshot saves a full-page PNG into ArtifactsDir and returns its path.
// It is a no-op returning "" when ArtifactsDir is empty.
func (s *Session) Screenshot(name string) (string, error) {
	if s.ArtifactsDir == "" {
		return "", nil
	}
	if err := os.MkdirAll(s.ArtifactsDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create artifacts directory: %w", err)
	}

	s.screenshotSeq++
	path := filepath.Join(s.ArtifactsDir, screenshotName(s.screenshotSeq, name))
	_, err := s.Page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(true),
	})
	if err != nil {
		return "", fmt.Errorf("screenshot failed: %w", err)
	}
	return path, nil
}

func screenshotName(seq int, name string) string {
	name = strings.Trim(unsafeName.ReplaceAllString(name, "_"), "_")
	if name == "" {
		name = "page"
	}
	return fmt.Sprintf("%03d_%s.png", seq, name)
}

// SaveStorageState writes cookies and local storage to path.
func (s *Session) SaveStorageState(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("failed to create session directory: %w", err)
		}
	}
	if _, err := s.Context.StorageState(path); err != nil {
		return fmt.Errorf("failed to save storage state: %w", err)
	}
	return nil
}
