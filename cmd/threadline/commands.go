package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/atotto/clipboard"
	"github.com/entrhq/threadline/pkg/browser"
	"github.com/entrhq/threadline/pkg/config"
	"github.com/entrhq/threadline/pkg/draft"
	"github.com/entrhq/threadline/pkg/logging"
	"github.com/entrhq/threadline/pkg/mailcode"
	"github.com/entrhq/threadline/pkg/social"
	"github.com/entrhq/threadline/pkg/thread"
)

const sessionName = "threadline"

type app struct {
	cfg    *config.Config
	logger *logging.Logger
	stdin  io.Reader
	stdout io.Writer
}

// runSplit previews segmentation without touching the network.
func runSplit(cfg *config.Config, args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("split", flag.ContinueOnError)
	limit := fs.Int("limit", cfg.Thread.Limit, "Maximum characters per post")
	copyOut := fs.Bool("copy", false, "Copy the posts to the clipboard")
	plain := fs.Bool("plain", false, "Print posts separated by blank lines, without styling")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	content, err := readContent(fs.Args(), stdin)
	if err != nil {
		return err
	}
	fragments, err := thread.Segment(content, *limit)
	if err != nil {
		return err
	}

	if *plain {
		fmt.Fprintln(stdout, strings.Join(fragments, "\n\n"))
	} else {
		fmt.Fprint(stdout, renderThread(fragments, *limit))
	}

	if *copyOut {
		if err := clipboard.WriteAll(strings.Join(fragments, "\n\n")); err != nil {
			return fmt.Errorf("failed to copy to clipboard: %w", err)
		}
		fmt.Fprintln(stdout, noteStyle.Render(fmt.Sprintf("Copied %d posts to the clipboard", len(fragments))))
	}
	return nil
}

func (a *app) runLogin(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	return a.withClient(ctx, func(c *social.Client) error {
		fmt.Fprintln(a.stdout, noteStyle.Render("Logged in; session saved to "+a.cfg.Browser.SessionFile))
		return nil
	})
}

func (a *app) runPost(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("post", flag.ContinueOnError)
	text := fs.String("text", "", "Text to post (instead of a file or stdin)")
	dryRun := fs.Bool("dry-run", false, "Show the posts without publishing")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	content := strings.TrimSpace(*text)
	if content == "" {
		var err error
		if content, err = readContent(fs.Args(), a.stdin); err != nil {
			return err
		}
	}

	if *dryRun {
		fragments := []string{content}
		if utf8.RuneCountInString(content) > a.cfg.Thread.SingleCap {
			var err error
			if fragments, err = thread.Segment(content, a.cfg.Thread.Limit); err != nil {
				return err
			}
		}
		fmt.Fprint(a.stdout, renderThread(fragments, a.cfg.Thread.Limit))
		return nil
	}

	return a.withClient(ctx, func(c *social.Client) error {
		fragments, err := c.PublishContent(ctx, content)
		if err != nil {
			return err
		}
		fmt.Fprintln(a.stdout, noteStyle.Render(fmt.Sprintf("Published %d post(s)", len(fragments))))
		return nil
	})
}

func (a *app) runLatest(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("latest", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: threadline latest <account>")
		return errUsage
	}

	return a.withClient(ctx, func(c *social.Client) error {
		post, err := c.FetchLatestPost(ctx, fs.Arg(0))
		if err != nil {
			return err
		}
		fmt.Fprint(a.stdout, renderPost(post))
		return nil
	})
}

func (a *app) runReply(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("reply", flag.ContinueOnError)
	target := fs.String("url", "", "URL of the post to reply to")
	account := fs.String("account", "", "Reply to this account's latest post")
	text := fs.String("text", "", "Reply text")
	useDraft := fs.Bool("draft", false, "Draft the reply with the configured model")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if (*target == "") == (*account == "") {
		fmt.Fprintln(os.Stderr, "reply: exactly one of -url or -account is required")
		return errUsage
	}
	if (*text == "") == !*useDraft {
		fmt.Fprintln(os.Stderr, "reply: exactly one of -text or -draft is required")
		return errUsage
	}

	var drafter *draft.Drafter
	if *useDraft {
		var err error
		if drafter, err = a.newDrafter(); err != nil {
			return err
		}
	}

	return a.withClient(ctx, func(c *social.Client) error {
		post := &social.Post{URL: *target}
		if *account != "" {
			var err error
			if post, err = c.FetchLatestPost(ctx, *account); err != nil {
				return err
			}
			fmt.Fprint(a.stdout, renderPost(post))
		}

		reply := *text
		if drafter != nil {
			if post.Text == "" {
				return fmt.Errorf("-draft needs the post text; use -account")
			}
			var err error
			if reply, err = drafter.Draft(ctx, post.Account, post.Text); err != nil {
				return err
			}
			fmt.Fprintln(a.stdout, noteStyle.Render("Drafted reply: ")+reply)
		}

		if err := c.PostReply(ctx, post.URL, reply); err != nil {
			return err
		}
		fmt.Fprintln(a.stdout, noteStyle.Render("Replied to "+post.URL))
		return nil
	})
}

func (a *app) newDrafter() (*draft.Drafter, error) {
	creds, err := config.LoadCredentials()
	if err != nil {
		return nil, err
	}
	opts := a.cfg.Reply.Draft
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = creds.OpenAIBaseURL
	}
	return draft.New(draft.Options{
		APIKey:          creds.OpenAIKey,
		BaseURL:         baseURL,
		Model:           opts.Model,
		Instructions:    opts.Instructions,
		MaxPromptTokens: opts.MaxPromptTokens,
		Limit:           a.cfg.Thread.Limit,
		MaxRetries:      2,
		Logger:          a.logger.With("draft"),
	})
}

// withClient starts a browser, authenticates and runs fn. The session state
// is persisted and the browser shut down afterwards, even when fn fails.
func (a *app) withClient(ctx context.Context, fn func(*social.Client) error) error {
	creds, err := config.LoadCredentials()
	if err != nil {
		return err
	}
	codes, err := a.codeSource(creds)
	if err != nil {
		return err
	}

	manager := browser.NewSessionManager()
	if err := manager.Initialize(); err != nil {
		return err
	}
	defer func() {
		if err := manager.Shutdown(); err != nil {
			a.logger.Warnf("Browser shutdown: %v", err)
		}
	}()

	b := a.cfg.Browser
	session, err := manager.StartSession(sessionName, browser.SessionOptions{
		Headless:         b.Headless,
		Viewport:         &browser.Viewport{Width: b.ViewportWidth, Height: b.ViewportHeight},
		Timeout:          float64(b.Timeout.Milliseconds()),
		UserAgent:        b.UserAgent,
		Locale:           b.Locale,
		Args:             append(append([]string{}, browser.DefaultArgs...), b.Args...),
		StorageStatePath: b.SessionFile,
		ArtifactsDir:     b.ArtifactsDir,
	})
	if err != nil {
		return err
	}
	if session.RestoredState {
		a.logger.Infof("Restored session from %s", b.SessionFile)
	}

	client, err := social.Start(ctx, session, social.Options{
		Config:      a.cfg,
		Credentials: creds,
		Codes:       codes,
		Logger:      a.logger.With("social"),
	})
	if err != nil {
		return err
	}

	runErr := fn(client)
	if err := client.Close(context.WithoutCancel(ctx)); err != nil {
		a.logger.Warnf("Could not persist session: %v", err)
	}
	if err := manager.CloseSession(sessionName); err != nil {
		a.logger.Warnf("Browser session close: %v", err)
	}
	return runErr
}

func (a *app) codeSource(creds config.Credentials) (mailcode.Source, error) {
	v := a.cfg.Verification
	switch v.Mode {
	case config.VerificationIMAP:
		if err := creds.RequireMailbox(); err != nil {
			return nil, err
		}
		return mailcode.NewIMAPSource(mailcode.IMAPOptions{
			Addr:         v.IMAPAddr,
			Username:     creds.Email,
			Password:     creds.EmailPassword,
			Mailbox:      v.Mailbox,
			Sender:       v.Sender,
			Lookback:     v.Lookback,
			Timeout:      v.Timeout,
			PollInterval: v.PollInterval,
			Logger:       a.logger.With("mailcode"),
		}), nil
	case config.VerificationPrompt:
		return &mailcode.PromptSource{In: a.stdin, Out: os.Stderr}, nil
	default:
		return nil, nil
	}
}
