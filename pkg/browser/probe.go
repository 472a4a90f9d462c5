package browser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/playwright-community/playwright-go"
)

// ErrNoMatch is returned when none of the candidate selectors matched.
var ErrNoMatch = errors.New("browser: no candidate selector matched")

// Probe tries candidates in order and returns the first selector whose
// element is present and visible. Site markup changes often, so callers pass
// a fallback chain rather than a single selector.
func (s *Session) Probe(candidates []string, opts ProbeOptions) (string, error) {
	for _, selector := range candidates {
		if s.matches(selector, opts) {
			return selector, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrNoMatch, strings.Join(candidates, " | "))
}

func (s *Session) matches(selector string, opts ProbeOptions) bool {
	if opts.Timeout <= 0 {
		element, err := s.Page.QuerySelector(selector)
		if err != nil || element == nil {
			return false
		}
		visible, err := element.IsVisible()
		return err == nil && visible
	}

	state := opts.State
	if state == "" {
		state = "visible"
	}
	waitState := playwright.WaitForSelectorState(state)
	timeout := opts.Timeout
	element, err := s.Page.WaitForSelector(selector, playwright.PageWaitForSelectorOptions{
		State:   &waitState,
		Timeout: &timeout,
	})
	return err == nil && element != nil
}

// ClickFirst clicks the first matching candidate. A normal click with the
// given delay is tried first; if the element is covered a forced click
// follows. The selector that was clicked is returned.
func (s *Session) ClickFirst(candidates []string, delay float64, opts ProbeOptions) (string, error) {
	selector, err := s.Probe(candidates, opts)
	if err != nil {
		return "", err
	}

	err = s.Click(ClickOptions{Selector: selector, Delay: delay, Timeout: opts.Timeout})
	if err == nil {
		return selector, nil
	}
	if forceErr := s.Click(ClickOptions{Selector: selector, Force: true, Timeout: opts.Timeout}); forceErr != nil {
		return "", fmt.Errorf("%v; forced retry: %w", err, forceErr)
	}
	return selector, nil
}

// FillFirst fills the first matching candidate with value.
func (s *Session) FillFirst(candidates []string, value string, opts ProbeOptions) (string, error) {
	selector, err := s.Probe(candidates, opts)
	if err != nil {
		return "", err
	}
	if err := s.Fill(FillOptions{Selector: selector, Value: value, Timeout: opts.Timeout}); err != nil {
		return "", err
	}
	return selector, nil
}

// ClickRole clicks the first element with the given ARIA role and
// accessible name.
func (s *Session) ClickRole(role, name string, timeout float64) error {
	locator := s.Page.GetByRole(playwright.AriaRole(role), playwright.PageGetByRoleOptions{
		Name: name,
	}).First()
	if err := locator.Click(playwright.LocatorClickOptions{Timeout: timeoutPtr(timeout)}); err != nil {
		return fmt.Errorf("click %s %q failed: %w", role, name, err)
	}
	s.CurrentURL = s.Page.URL()
	return nil
}

// ClickText clicks the first element whose text matches exactly.
func (s *Session) ClickText(text string, timeout float64) error {
	locator := s.Page.GetByText(text, playwright.PageGetByTextOptions{
		Exact: playwright.Bool(true),
	}).First()
	if err := locator.Click(playwright.LocatorClickOptions{Timeout: timeoutPtr(timeout)}); err != nil {
		return fmt.Errorf("click text %q failed: %w", text, err)
	}
	s.CurrentURL = s.Page.URL()
	return nil
}

func timeoutPtr(timeout float64) *float64 {
	if timeout <= 0 {
		return nil
	}
	return &timeout
}
