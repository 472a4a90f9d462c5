// Package draft writes reply suggestions with an OpenAI-compatible chat model.
package draft

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/entrhq/threadline/pkg/logging"
	"github.com/entrhq/threadline/pkg/thread"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// ErrEmptyDraft is returned when the model produced no usable text.
var ErrEmptyDraft = errors.New("draft: model returned an empty reply")

const defaultInstructions = "Write a short, friendly reply to the post below. Plain text, no hashtags."

// Options configures a Drafter.
type Options struct {
	APIKey  string
	BaseURL string
	Model   string

	// Instructions is the system prompt
	Instructions string

	// MaxPromptTokens caps the quoted post; 0 disables the cap
	MaxPromptTokens int

	// Limit bounds the reply length in characters
	Limit int

	MaxRetries int
	Logger     *logging.Logger
}

// Drafter turns a post into a reply suggestion.
type Drafter struct {
	client    openai.Client
	opts      Options
	tokenizer *Tokenizer
	logger    *logging.Logger
}

// New creates a drafter. The API key is required.
func New(opts Options) (*Drafter, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required (set OPENAI_API_KEY)")
	}
	if opts.Model == "" {
		opts.Model = "gpt-4o-mini"
	}
	if opts.Instructions == "" {
		opts.Instructions = defaultInstructions
	}
	if opts.Limit <= 0 {
		opts.Limit = thread.DefaultLimit
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard("draft")
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(opts.APIKey),
		option.WithMaxRetries(opts.MaxRetries),
	}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}

	d := &Drafter{
		client: openai.NewClient(reqOpts...),
		opts:   opts,
		logger: opts.Logger,
	}

	if opts.MaxPromptTokens > 0 {
		// Fall back to no cap if the encoding cannot be loaded
		tok, err := NewTokenizer(opts.Model)
		if err != nil {
			d.logger.Warnf("Tokenizer unavailable, prompt will not be capped: %v", err)
		} else {
			d.tokenizer = tok
		}
	}
	return d, nil
}

// Draft asks the model for a reply to text posted by account.
func (d *Drafter) Draft(ctx context.Context, account, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("post text is empty")
	}

	if d.tokenizer != nil {
		if cut, truncated := d.tokenizer.Truncate(text, d.opts.MaxPromptTokens); truncated {
			d.logger.Debugf("Post truncated to %d tokens", d.opts.MaxPromptTokens)
			text = cut
		}
	}

	user := fmt.Sprintf("Post by @%s:\n\n%s\n\nReply in at most %d characters.", account, text, d.opts.Limit)
	if d.tokenizer != nil {
		d.logger.Debugf("Prompt is %d tokens", d.tokenizer.CountTokens(d.opts.Instructions)+d.tokenizer.CountTokens(user))
	}
	resp, err := d.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(d.opts.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(d.opts.Instructions),
			openai.UserMessage(user),
		},
	})
	if err != nil {
		return "", fmt.Errorf("completion request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyDraft
	}

	reply := cleanReply(resp.Choices[0].Message.Content)
	if reply == "" {
		return "", ErrEmptyDraft
	}
	return d.fit(reply)
}

// fit shortens a reply that exceeds the limit to its first fragment.
func (d *Drafter) fit(reply string) (string, error) {
	if utf8.RuneCountInString(reply) <= d.opts.Limit {
		return reply, nil
	}
	fragments, err := thread.Segment(reply, d.opts.Limit)
	if err != nil {
		return "", err
	}
	d.logger.Debugf("Reply of %d chars cut to first of %d fragments", utf8.RuneCountInString(reply), len(fragments))
	return fragments[0], nil
}

// cleanReply strips whitespace and the quotes models like to wrap replies in.
func cleanReply(s string) string {
	s = strings.TrimSpace(s)
	for _, pair := range [][2]string{{`"`, `"`}, {"“", "”"}, {"'", "'"}} {
		if len(s) >= len(pair[0])+len(pair[1]) && strings.HasPrefix(s, pair[0]) && strings.HasSuffix(s, pair[1]) {
			s = strings.TrimSpace(s[len(pair[0]) : len(s)-len(pair[1])])
			break
		}
	}
	return s
}
