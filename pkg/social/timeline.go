package social

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/entrhq/threadline/pkg/browser"
	"github.com/entrhq/threadline/pkg/thread"
)

// FetchLatestPost reads the first post on an account's profile.
func (c *Client) FetchLatestPost(ctx context.Context, account string) (*Post, error) {
	account = strings.TrimPrefix(strings.TrimSpace(account), "@")
	if account == "" {
		return nil, fmt.Errorf("account is required")
	}

	profile := c.cfg.Site.URL("/" + url.PathEscape(account))
	c.logger.Infof("Fetching latest post from %s", profile)
	if err := c.driver.Navigate(profile, browser.NavigateOptions{WaitUntil: "domcontentloaded"}); err != nil {
		return nil, fmt.Errorf("failed to open profile: %w", err)
	}
	if err := c.pacer.Medium(ctx); err != nil {
		return nil, err
	}

	post, err := c.driver.Probe(postSelectors, browser.ProbeOptions{Timeout: editorTimeout})
	if err != nil {
		return nil, fmt.Errorf("%w: @%s: %v", ErrNotFound, account, err)
	}

	href, err := c.driver.Attribute(post+` a[href*="/status/"]`, "href")
	if err != nil || href == "" {
		return nil, fmt.Errorf("%w: @%s: no status link", ErrNotFound, account)
	}

	text, err := c.postText(post)
	if err != nil {
		return nil, fmt.Errorf("failed to read post text: %w", err)
	}

	return &Post{
		URL:     c.absoluteURL(href),
		Text:    text,
		Account: account,
	}, nil
}

// postText prefers the post body and falls back to the whole card.
func (c *Client) postText(post string) (string, error) {
	for _, selector := range postTextSelectors {
		if text, err := c.driver.Text(post + " " + selector); err == nil {
			return text, nil
		}
	}
	return c.driver.Text(post)
}

// absoluteURL resolves status links against the site and drops the
// analytics suffix the timeline appends.
func (c *Client) absoluteURL(href string) string {
	abs := c.cfg.Site.URL(href)
	u, err := url.Parse(abs)
	if err != nil {
		return abs
	}
	u.RawQuery = ""
	u.Fragment = ""
	u.Path = strings.TrimSuffix(u.Path, "/analytics")
	return u.String()
}

// AllowedTarget reports whether replies may be posted to targetURL.
func (c *Client) AllowedTarget(targetURL string) bool {
	for _, g := range c.targets {
		if g.Match(targetURL) {
			return true
		}
	}
	return false
}

// PostReply replies to the post at targetURL.
func (c *Client) PostReply(ctx context.Context, targetURL, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyContent
	}
	if n := utf8.RuneCountInString(text); n > thread.PlatformCap {
		return fmt.Errorf("%w: %d > %d", ErrTooLong, n, thread.PlatformCap)
	}
	if !c.AllowedTarget(targetURL) {
		return fmt.Errorf("%w: %s", ErrTargetNotAllowed, targetURL)
	}

	if err := c.postReply(ctx, targetURL, text); err != nil {
		c.screenshot("reply_error")
		c.logger.Errorf("Reply to %s failed: %v", targetURL, err)
		return err
	}
	c.logger.Infof("Replied to %s", targetURL)
	return nil
}

func (c *Client) postReply(ctx context.Context, targetURL, text string) error {
	if err := c.driver.Navigate(targetURL, browser.NavigateOptions{WaitUntil: "domcontentloaded"}); err != nil {
		return fmt.Errorf("%w: %v", ErrPublishFailed, err)
	}
	if err := c.pacer.Medium(ctx); err != nil {
		return err
	}

	if _, err := c.driver.ClickFirst(replyButtonSelectors, 0, browser.ProbeOptions{Timeout: probeTimeout}); err != nil {
		return fmt.Errorf("%w: reply button: %v", ErrPublishFailed, err)
	}
	if err := c.pacer.Short(ctx); err != nil {
		return err
	}

	if _, err := c.driver.FillFirst(replyEditorSelectors, text, browser.ProbeOptions{Timeout: probeTimeout}); err != nil {
		return fmt.Errorf("%w: reply editor: %v", ErrPublishFailed, err)
	}
	if err := c.pacer.Short(ctx); err != nil {
		return err
	}

	if err := c.submit(replySubmitSelectors); err != nil {
		return err
	}
	return c.pacer.Medium(ctx)
}
