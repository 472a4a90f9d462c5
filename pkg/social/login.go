package social

import (
	"context"
	"fmt"

	"github.com/entrhq/threadline/pkg/browser"
)

// Login performs the interactive login flow: username, password, an optional
// security challenge, then verification that the home timeline loaded. The
// resulting storage state is saved for later runs.
func (c *Client) Login(ctx context.Context) error {
	if err := c.creds.RequireLogin(); err != nil {
		return fmt.Errorf("%w: %v", ErrAuthFailed, err)
	}

	c.logger.Infof("Starting login")
	if err := c.login(ctx); err != nil {
		c.screenshot("login_error")
		c.logger.Errorf("Login failed: %v", err)
		return err
	}

	c.loggedIn = true
	if err := c.driver.SaveStorageState(c.cfg.Browser.SessionFile); err != nil {
		c.logger.Warnf("Could not save session state: %v", err)
	}
	c.logger.Infof("Logged in as %s", c.creds.Username)
	return nil
}

func (c *Client) login(ctx context.Context) error {
	err := c.driver.Navigate(c.cfg.Site.URL(c.cfg.Site.LoginPath), browser.NavigateOptions{
		WaitUntil: "domcontentloaded",
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrAuthFailed, err)
	}
	c.settle()
	if err := c.pacer.Long(ctx); err != nil {
		return err
	}
	c.screenshot("login_page")

	if err := c.fillField(usernameSelectors, c.creds.Username, probeTimeout); err != nil {
		return fmt.Errorf("%w: username field: %v", ErrAuthFailed, err)
	}
	if err := c.pacer.Short(ctx); err != nil {
		return err
	}
	if err := c.pressButton("Next"); err != nil {
		return fmt.Errorf("%w: %v", ErrAuthFailed, err)
	}
	if err := c.pacer.Long(ctx); err != nil {
		return err
	}
	c.screenshot("after_username")

	if err := c.fillField(passwordSelectors, c.creds.Password, fieldTimeout); err != nil {
		c.screenshot("password_not_found")
		return fmt.Errorf("%w: password field: %v", ErrAuthFailed, err)
	}
	if err := c.pacer.Short(ctx); err != nil {
		return err
	}
	if err := c.pressButton("Log in"); err != nil {
		return fmt.Errorf("%w: %v", ErrAuthFailed, err)
	}
	c.settle()
	if err := c.pacer.Long(ctx); err != nil {
		return err
	}
	c.screenshot("after_login")

	if err := c.resolveChallenge(ctx); err != nil {
		return err
	}
	if err := c.pacer.Long(ctx); err != nil {
		return err
	}

	if !c.verifyHome() {
		if msg, err := c.driver.Evaluate(pageErrorsScript); err == nil {
			if s, _ := msg.(string); s != "" {
				return fmt.Errorf("%w: page reported: %s", ErrAuthFailed, s)
			}
		}
		return fmt.Errorf("%w: could not verify home timeline", ErrAuthFailed)
	}
	return nil
}

// settle waits for network quiet. The site keeps long-polling connections
// open, so a timeout here is expected and only logged.
func (c *Client) settle() {
	if err := c.driver.WaitForLoad("networkidle", editorTimeout); err != nil {
		c.logger.Debugf("Network did not go idle: %v", err)
	}
}

func (c *Client) resolveChallenge(ctx context.Context) error {
	content, err := c.driver.Content()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrAuthFailed, err)
	}

	challenge := ClassifyChallenge(content)
	c.logger.Infof("Post-login challenge: %s", challenge)

	switch challenge {
	case ChallengeVerificationCode:
		if c.codes == nil {
			return fmt.Errorf("%w: verification code requested but no code source configured", ErrAuthFailed)
		}
		code, err := c.codes.Code(ctx)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrAuthFailed, err)
		}
		if err := c.fillField(codeSelectors, code, fieldTimeout); err != nil {
			return fmt.Errorf("%w: code field: %v", ErrAuthFailed, err)
		}
		if err := c.pacer.Short(ctx); err != nil {
			return err
		}
		if err := c.pressButton("Next"); err != nil {
			return fmt.Errorf("%w: %v", ErrAuthFailed, err)
		}
		c.settle()
		c.screenshot("after_code")
	case ChallengeOther:
		if c.evalBool(clickButtonTextScript, dismissLabels) {
			c.logger.Infof("Dismissed security interstitial")
			return c.pacer.Short(ctx)
		}
		c.logger.Warnf("No dismiss button found for security interstitial")
	}
	return nil
}

func (c *Client) verifyHome() bool {
	selector, err := c.driver.Probe(loggedInSelectors, browser.ProbeOptions{Timeout: probeTimeout})
	if err == nil {
		c.logger.Debugf("Login verified with %s", selector)
		return true
	}
	if c.evalBool(homeCheckScript) {
		c.logger.Debugf("Login verified by page script")
		return true
	}
	return false
}

// fillField fills the first candidate that appears, falling back to setting
// the value from inside the page.
func (c *Client) fillField(candidates []string, value string, timeout float64) error {
	selector, err := c.driver.FillFirst(candidates, value, browser.ProbeOptions{Timeout: timeout})
	if err == nil {
		c.logger.Debugf("Filled %s", selector)
		return nil
	}
	c.logger.Debugf("Fill failed (%v), trying page script", err)
	if c.evalBool(fillScript, []interface{}{candidates, value}) {
		return nil
	}
	return err
}

// pressButton clicks a button by accessible name, then by exact text, then
// from inside the page.
func (c *Client) pressButton(label string) error {
	err := c.driver.ClickRole("button", label, probeTimeout)
	if err == nil {
		return nil
	}
	c.logger.Debugf("Role click on %q failed: %v", label, err)

	if err = c.driver.ClickText(label, probeTimeout); err == nil {
		return nil
	}
	c.logger.Debugf("Text click on %q failed: %v", label, err)

	if c.evalBool(clickButtonTextScript, []string{label}) {
		return nil
	}
	return fmt.Errorf("could not click %q", label)
}
