package social

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/entrhq/threadline/pkg/browser"
	"github.com/entrhq/threadline/pkg/thread"
)

// PublishContent posts content as a single post when it fits the platform
// cap, otherwise as a thread split at the configured limit. It returns the
// fragments that were posted.
func (c *Client) PublishContent(ctx context.Context, content string) ([]string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyContent
	}

	fragments := []string{content}
	if utf8.RuneCountInString(content) > c.cfg.Thread.SingleCap {
		var err error
		fragments, err = thread.Segment(content, c.cfg.Thread.Limit)
		if err != nil {
			return nil, err
		}
		c.logger.Infof("Split %d characters into %d posts", utf8.RuneCountInString(content), len(fragments))
	}

	if err := c.Publish(ctx, fragments); err != nil {
		return nil, err
	}
	return fragments, nil
}

// Publish posts fragments in order: a single post for one fragment, or a
// thread where each fragment follows the previous one.
func (c *Client) Publish(ctx context.Context, fragments []string) error {
	if len(fragments) == 0 {
		return ErrEmptyContent
	}
	for i, f := range fragments {
		if strings.TrimSpace(f) == "" {
			return fmt.Errorf("%w: fragment %d", ErrEmptyContent, i+1)
		}
	}

	var err error
	if len(fragments) == 1 {
		err = c.publishSingle(ctx, fragments[0])
	} else {
		err = c.publishThread(ctx, fragments)
	}
	if err != nil {
		c.screenshot("publish_error")
		c.logger.Errorf("Publish failed: %v", err)
		return err
	}
	return nil
}

func (c *Client) publishSingle(ctx context.Context, text string) error {
	home := c.cfg.Site.URL(c.cfg.Site.HomePath)
	if !strings.HasPrefix(c.driver.URL(), home) {
		c.logger.Debugf("Navigating to home from %s", c.driver.URL())
		if err := c.driver.Navigate(home, browser.NavigateOptions{WaitUntil: "domcontentloaded"}); err != nil {
			return fmt.Errorf("%w: %v", ErrPublishFailed, err)
		}
		if err := c.pacer.Medium(ctx); err != nil {
			return err
		}
	}
	c.screenshot("home_before_compose")

	if selector, err := c.driver.ClickFirst(composeSelectors, 0, browser.ProbeOptions{}); err == nil {
		c.logger.Debugf("Opened composer with %s", selector)
	} else if !c.evalBool(clickSelectorScript, composeScriptSelectors) {
		return fmt.Errorf("%w: compose button: %v", ErrPublishFailed, err)
	}
	if err := c.pacer.Medium(ctx); err != nil {
		return err
	}
	c.screenshot("compose_dialog")

	if _, err := c.driver.FillFirst(editorSelectors, text, browser.ProbeOptions{Timeout: probeTimeout}); err != nil {
		return fmt.Errorf("%w: editor: %v", ErrPublishFailed, err)
	}
	if err := c.pacer.Medium(ctx); err != nil {
		return err
	}

	if err := c.submit(postButtonSelectors); err != nil {
		return err
	}
	if err := c.pacer.Long(ctx); err != nil {
		return err
	}
	c.screenshot("after_post")
	c.logger.Infof("Posted single post (%d chars)", utf8.RuneCountInString(text))
	return nil
}

func (c *Client) publishThread(ctx context.Context, fragments []string) error {
	c.logger.Infof("Posting thread of %d posts", len(fragments))

	compose := c.cfg.Site.URL(c.cfg.Site.ComposePath)
	if err := c.driver.Navigate(compose, browser.NavigateOptions{WaitUntil: "domcontentloaded"}); err != nil {
		return fmt.Errorf("%w: %v", ErrPublishFailed, err)
	}
	if err := c.pacer.Medium(ctx); err != nil {
		return err
	}

	for i, text := range fragments {
		if i > 0 {
			if err := c.addToThread(); err != nil {
				c.screenshot(fmt.Sprintf("thread_%d_error", i+1))
				return fmt.Errorf("%w: post %d/%d: %v", ErrPublishFailed, i+1, len(fragments), err)
			}
			if err := c.pacer.Short(ctx); err != nil {
				return err
			}
		}

		editor := threadEditor(i)
		if err := c.driver.Wait(browser.WaitOptions{Selector: editor, State: "visible", Timeout: editorTimeout}); err != nil {
			return fmt.Errorf("%w: post %d/%d editor: %v", ErrPublishFailed, i+1, len(fragments), err)
		}
		if err := c.driver.Fill(browser.FillOptions{Selector: editor, Value: text}); err != nil {
			return fmt.Errorf("%w: post %d/%d: %v", ErrPublishFailed, i+1, len(fragments), err)
		}
		c.logger.Debugf("Entered post %d/%d", i+1, len(fragments))
		if err := c.pacer.Short(ctx); err != nil {
			return err
		}
	}

	if err := c.submit(threadPostButtonSelectors); err != nil {
		return err
	}
	if err := c.pacer.Long(ctx); err != nil {
		return err
	}
	c.screenshot("after_thread")
	c.logger.Infof("Posted thread of %d posts", len(fragments))
	return nil
}

// addToThread appends an empty editor to the composer.
func (c *Client) addToThread() error {
	selector, err := c.driver.ClickFirst(addButtonSelectors, clickDelay, browser.ProbeOptions{Timeout: probeTimeout})
	if err == nil {
		c.logger.Debugf("Clicked add button %s", selector)
		return nil
	}
	if c.evalBool(clickSelectorScript, addButtonSelectors[:3]) {
		return nil
	}
	return fmt.Errorf("add button: %w", err)
}

// submit clicks the first post button candidate, with a page script fallback.
func (c *Client) submit(candidates []string) error {
	selector, err := c.driver.ClickFirst(candidates, 0, browser.ProbeOptions{Timeout: probeTimeout})
	if err == nil {
		c.logger.Debugf("Clicked post button %s", selector)
		return nil
	}
	if c.evalBool(clickSelectorScript, candidates[:2]) {
		return nil
	}
	return fmt.Errorf("%w: post button: %v", ErrPublishFailed, err)
}
