package mailcode

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/emersion/go-message"
	_ "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"
	"github.com/entrhq/threadline/pkg/htmltext"
	"github.com/entrhq/threadline/pkg/logging"
)

// Message is the part of an email needed to find a code.
type Message struct {
	Date    time.Time
	Subject string
	Body    string
}

// mailbox lists recent messages from a sender.
type mailbox interface {
	Recent(since time.Time, sender string) ([]Message, error)
	Close() error
}

// IMAPOptions configures an IMAPSource.
type IMAPOptions struct {
	Addr     string
	Username string
	Password string
	Mailbox  string
	Sender   string

	// Lookback bounds how old a message may be
	Lookback     time.Duration
	Timeout      time.Duration
	PollInterval time.Duration

	Logger *logging.Logger
}

// IMAPSource polls a mailbox over IMAP until a code from the configured
// sender arrives.
type IMAPSource struct {
	opts IMAPOptions
	dial func() (mailbox, error)
	now  func() time.Time
}

// NewIMAPSource creates a source that dials opts.Addr over TLS.
func NewIMAPSource(opts IMAPOptions) *IMAPSource {
	if opts.Mailbox == "" {
		opts.Mailbox = "INBOX"
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 10 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard("mailcode")
	}
	s := &IMAPSource{opts: opts, now: time.Now}
	s.dial = func() (mailbox, error) {
		mb, err := dialIMAP(s.opts)
		if err != nil {
			return nil, err
		}
		return mb, nil
	}
	return s
}

// Code polls until a message newer than the lookback window yields a code,
// the timeout passes or ctx is done.
func (s *IMAPSource) Code(ctx context.Context) (string, error) {
	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}

	since := s.now().Add(-s.opts.Lookback)
	ticker := time.NewTicker(s.opts.PollInterval)
	defer ticker.Stop()

	for attempt := 1; ; attempt++ {
		code, err := s.poll(since)
		if err != nil {
			s.opts.Logger.Warnf("Mailbox poll %d failed: %v", attempt, err)
		} else if code != "" {
			s.opts.Logger.Infof("Found verification code after %d poll(s)", attempt)
			return code, nil
		}

		select {
		case <-ctx.Done():
			if err != nil {
				return "", fmt.Errorf("%w: %v", ErrNoCode, err)
			}
			return "", fmt.Errorf("%w: %v", ErrNoCode, ctx.Err())
		case <-ticker.C:
		}
	}
}

func (s *IMAPSource) poll(since time.Time) (string, error) {
	mb, err := s.dial()
	if err != nil {
		return "", err
	}
	defer mb.Close()

	messages, err := mb.Recent(since, s.opts.Sender)
	if err != nil {
		return "", err
	}
	return newestCode(messages, since), nil
}

// newestCode returns the code from the most recent message at or after since.
func newestCode(messages []Message, since time.Time) string {
	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].Date.After(messages[j].Date)
	})
	for _, m := range messages {
		if m.Date.Before(since) {
			continue
		}
		if code, ok := ExtractCode(m.Subject); ok {
			return code
		}
		if code, ok := ExtractCode(m.Body); ok {
			return code
		}
	}
	return ""
}

type imapMailbox struct {
	c       *client.Client
	mailbox string
}

func dialIMAP(opts IMAPOptions) (*imapMailbox, error) {
	c, err := client.DialTLS(opts.Addr, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", opts.Addr, err)
	}
	if err := c.Login(opts.Username, opts.Password); err != nil {
		c.Logout()
		return nil, fmt.Errorf("imap login failed: %w", err)
	}
	return &imapMailbox{c: c, mailbox: opts.Mailbox}, nil
}

func (m *imapMailbox) Recent(since time.Time, sender string) ([]Message, error) {
	if _, err := m.c.Select(m.mailbox, true); err != nil {
		return nil, fmt.Errorf("failed to select %s: %w", m.mailbox, err)
	}

	criteria := imap.NewSearchCriteria()
	// SINCE has day granularity; newestCode filters precisely
	criteria.Since = since
	if sender != "" {
		criteria.Header.Add("From", sender)
	}
	ids, err := m.c.Search(criteria)
	if err != nil {
		return nil, fmt.Errorf("imap search failed: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	seqset := new(imap.SeqSet)
	seqset.AddNum(ids...)
	section := &imap.BodySectionName{Peek: true}
	items := []imap.FetchItem{imap.FetchEnvelope, section.FetchItem()}

	fetched := make(chan *imap.Message, len(ids))
	done := make(chan error, 1)
	go func() {
		done <- m.c.Fetch(seqset, items, fetched)
	}()

	var messages []Message
	for msg := range fetched {
		out := Message{}
		if msg.Envelope != nil {
			out.Date = msg.Envelope.Date
			out.Subject = msg.Envelope.Subject
		}
		if body := msg.GetBody(section); body != nil {
			out.Body = readBody(body)
		}
		messages = append(messages, out)
	}
	if err := <-done; err != nil {
		return nil, fmt.Errorf("imap fetch failed: %w", err)
	}
	return messages, nil
}

func (m *imapMailbox) Close() error {
	return m.c.Logout()
}

// readBody returns the searchable text of a raw RFC 822 message. Every
// inline text part is included with its transfer encoding and charset
// decoded; HTML parts are rendered as plain text. Attachments are skipped.
func readBody(r io.Reader) string {
	mr, err := mail.CreateReader(r)
	if err != nil && !message.IsUnknownCharset(err) {
		return ""
	}

	var texts []string
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil && (part == nil || !message.IsUnknownCharset(err)) {
			break
		}
		header, ok := part.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}
		if text := partText(header, part.Body); text != "" {
			texts = append(texts, text)
		}
	}
	return strings.Join(texts, "\n")
}

func partText(header *mail.InlineHeader, body io.Reader) string {
	mediaType, _, err := header.ContentType()
	if err != nil || mediaType == "" {
		mediaType = "text/plain"
	}
	if !strings.HasPrefix(mediaType, "text/") {
		return ""
	}

	data, err := io.ReadAll(body)
	if err != nil && len(data) == 0 {
		return ""
	}
	if mediaType != "text/html" {
		return string(data)
	}
	text, err := htmltext.Extract(string(data))
	if err != nil {
		return ""
	}
	return text
}
