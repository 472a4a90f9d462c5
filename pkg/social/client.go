// Package social automates posting, reading and replying on the social site
// through a browser session.
package social

import (
	"context"
	"fmt"

	"github.com/entrhq/threadline/pkg/browser"
	"github.com/entrhq/threadline/pkg/config"
	"github.com/entrhq/threadline/pkg/logging"
	"github.com/entrhq/threadline/pkg/mailcode"
	"github.com/gobwas/glob"
)

// Driver is the subset of *browser.Session the client needs.
type Driver interface {
	Navigate(url string, opts browser.NavigateOptions) error
	URL() string
	WaitForLoad(state string, timeout float64) error
	Wait(opts browser.WaitOptions) error
	Fill(opts browser.FillOptions) error
	Click(opts browser.ClickOptions) error
	Probe(candidates []string, opts browser.ProbeOptions) (string, error)
	ClickFirst(candidates []string, delay float64, opts browser.ProbeOptions) (string, error)
	FillFirst(candidates []string, value string, opts browser.ProbeOptions) (string, error)
	ClickRole(role, name string, timeout float64) error
	ClickText(text string, timeout float64) error
	Evaluate(script string, args ...interface{}) (interface{}, error)
	Content() (string, error)
	Text(selector string) (string, error)
	Attribute(selector, name string) (string, error)
	Screenshot(name string) (string, error)
	SaveStorageState(path string) error
}

var _ Driver = (*browser.Session)(nil)

// Options configures a Client.
type Options struct {
	Config      *config.Config
	Credentials config.Credentials

	// Codes resolves emailed verification codes; nil fails such logins
	Codes mailcode.Source

	// Pacer defaults to the configured pacing
	Pacer  *Pacer
	Logger *logging.Logger
}

// Client drives the site through a browser session.
type Client struct {
	driver  Driver
	cfg     *config.Config
	creds   config.Credentials
	codes   mailcode.Source
	pacer   *Pacer
	logger  *logging.Logger
	targets []glob.Glob

	loggedIn bool
}

// Post is a post read from an account's timeline.
type Post struct {
	URL     string
	Text    string
	Account string
}

// New creates a client without touching the browser.
func New(driver Driver, opts Options) (*Client, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	targets := make([]glob.Glob, 0, len(cfg.Reply.AllowedTargets))
	for _, pattern := range cfg.Reply.AllowedTargets {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid reply target pattern %q: %w", pattern, err)
		}
		targets = append(targets, g)
	}

	pacer := opts.Pacer
	if pacer == nil {
		pacer = NewPacer(cfg.Pacing)
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard("social")
	}

	return &Client{
		driver:  driver,
		cfg:     cfg,
		creds:   opts.Credentials,
		codes:   opts.Codes,
		pacer:   pacer,
		logger:  logger,
		targets: targets,
	}, nil
}

// Start returns a client with an authenticated session. A restored session
// is reused when the home timeline shows logged-in markers; otherwise an
// interactive login is performed.
func Start(ctx context.Context, driver Driver, opts Options) (*Client, error) {
	c, err := New(driver, opts)
	if err != nil {
		return nil, err
	}

	ok, err := c.checkLoggedIn(ctx)
	if err != nil {
		return nil, err
	}
	if ok {
		c.logger.Infof("Reusing persisted session")
		c.loggedIn = true
		return c, nil
	}

	if err := c.Login(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// LoggedIn reports whether the session is known to be authenticated.
func (c *Client) LoggedIn() bool {
	return c.loggedIn
}

func (c *Client) checkLoggedIn(ctx context.Context) (bool, error) {
	if err := c.driver.Navigate(c.cfg.Site.URL(c.cfg.Site.HomePath), browser.NavigateOptions{
		WaitUntil: "domcontentloaded",
	}); err != nil {
		c.logger.Warnf("Home page probe failed: %v", err)
		return false, nil
	}
	if err := c.pacer.Medium(ctx); err != nil {
		return false, err
	}

	if _, err := c.driver.Probe(loggedInSelectors, browser.ProbeOptions{Timeout: probeTimeout}); err == nil {
		return true, nil
	}
	return false, nil
}

// Close persists the authentication state for the next run.
func (c *Client) Close(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := c.driver.SaveStorageState(c.cfg.Browser.SessionFile); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}
	c.logger.Infof("Saved session state to %s", c.cfg.Browser.SessionFile)
	return nil
}

// Timeouts in milliseconds for individual probes.
const (
	probeTimeout  = 5000.0
	fieldTimeout  = 8000.0
	editorTimeout = 10000.0
	clickDelay    = 100.0
)

func (c *Client) screenshot(name string) {
	path, err := c.driver.Screenshot(name)
	if err != nil {
		c.logger.Warnf("Screenshot %s failed: %v", name, err)
		return
	}
	if path != "" {
		c.logger.Debugf("Saved screenshot %s", path)
	}
}

// evalBool runs a fallback script that reports success as a boolean.
func (c *Client) evalBool(script string, args ...interface{}) bool {
	result, err := c.driver.Evaluate(script, args...)
	if err != nil {
		c.logger.Debugf("Script fallback failed: %v", err)
		return false
	}
	ok, _ := result.(bool)
	return ok
}
