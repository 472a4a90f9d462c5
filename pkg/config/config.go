package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/entrhq/threadline/pkg/thread"
	"github.com/gobwas/glob"
	"gopkg.in/yaml.v3"
)

// Config represents the configuration for a threadline run
type Config struct {
	// Site addresses
	Site SiteConfig `yaml:"site" json:"site"`

	// Browser launch and session persistence
	Browser BrowserConfig `yaml:"browser" json:"browser"`

	// Thread segmentation
	Thread ThreadConfig `yaml:"thread" json:"thread"`

	// Human-like pauses between UI steps
	Pacing PacingConfig `yaml:"pacing" json:"pacing"`

	// Reply targets and drafting
	Reply ReplyConfig `yaml:"reply" json:"reply"`

	// Verification code retrieval during login
	Verification VerificationConfig `yaml:"verification" json:"verification"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// SiteConfig locates the pages the client drives.
type SiteConfig struct {
	BaseURL     string `yaml:"base_url" json:"base_url"`
	LoginPath   string `yaml:"login_path" json:"login_path"`
	HomePath    string `yaml:"home_path" json:"home_path"`
	ComposePath string `yaml:"compose_path" json:"compose_path"`
}

// BrowserConfig defines how the browser is launched
type BrowserConfig struct {
	Headless       bool          `yaml:"headless" json:"headless"`
	ViewportWidth  int           `yaml:"viewport_width" json:"viewport_width"`
	ViewportHeight int           `yaml:"viewport_height" json:"viewport_height"`
	UserAgent      string        `yaml:"user_agent" json:"user_agent"`
	Locale         string        `yaml:"locale" json:"locale"`
	Timeout        time.Duration `yaml:"timeout" json:"timeout"`
	Args           []string      `yaml:"args" json:"args"`

	// SessionFile holds the persisted authentication state
	SessionFile string `yaml:"session_file" json:"session_file"`

	// ArtifactsDir receives debugging screenshots; empty disables them
	ArtifactsDir string `yaml:"artifacts_dir" json:"artifacts_dir"`
}

// ThreadConfig controls how long content is split into posts
type ThreadConfig struct {
	// Limit is the per-fragment bound used when splitting
	Limit int `yaml:"limit" json:"limit"`

	// SingleCap is the largest content posted without splitting
	SingleCap int `yaml:"single_cap" json:"single_cap"`
}

// Delay is a random pause bounded by Min and Max
type Delay struct {
	Min time.Duration `yaml:"min" json:"min"`
	Max time.Duration `yaml:"max" json:"max"`
}

// PacingConfig groups the pauses used between UI steps
type PacingConfig struct {
	Short  Delay `yaml:"short" json:"short"`
	Medium Delay `yaml:"medium" json:"medium"`
	Long   Delay `yaml:"long" json:"long"`
}

// ReplyConfig restricts where replies may be posted
type ReplyConfig struct {
	// AllowedTargets are glob patterns a reply URL must match
	AllowedTargets []string    `yaml:"allowed_targets" json:"allowed_targets"`
	Draft          DraftConfig `yaml:"draft" json:"draft"`
}

// DraftConfig configures LLM reply drafting
type DraftConfig struct {
	Model        string `yaml:"model" json:"model"`
	BaseURL      string `yaml:"base_url" json:"base_url"`
	Instructions string `yaml:"instructions" json:"instructions"`

	// MaxPromptTokens caps the quoted post; 0 disables the cap
	MaxPromptTokens int `yaml:"max_prompt_tokens" json:"max_prompt_tokens"`
}

// VerificationMode selects how emailed login codes are obtained
type VerificationMode string

const (
	// VerificationIMAP polls a mailbox for the code
	VerificationIMAP VerificationMode = "imap"
	// VerificationPrompt asks on stdin
	VerificationPrompt VerificationMode = "prompt"
	// VerificationNone fails login when a code is requested
	VerificationNone VerificationMode = "none"
)

// VerificationConfig defines where emailed verification codes come from
type VerificationConfig struct {
	Mode         VerificationMode `yaml:"mode" json:"mode"`
	IMAPAddr     string           `yaml:"imap_addr" json:"imap_addr"`
	Mailbox      string           `yaml:"mailbox" json:"mailbox"`
	Sender       string           `yaml:"sender" json:"sender"`
	Lookback     time.Duration    `yaml:"lookback" json:"lookback"`
	Timeout      time.Duration    `yaml:"timeout" json:"timeout"`
	PollInterval time.Duration    `yaml:"poll_interval" json:"poll_interval"`
}

// LoggingConfig defines logging configuration
type LoggingConfig struct {
	// Dir overrides ~/.threadline/logs
	Dir string `yaml:"dir" json:"dir"`
}

// DefaultConfig returns a configuration matching the site as of writing
func DefaultConfig() *Config {
	return &Config{
		Site: SiteConfig{
			BaseURL:     "https://x.com",
			LoginPath:   "/i/flow/login",
			HomePath:    "/home",
			ComposePath: "/compose/post",
		},
		Browser: BrowserConfig{
			Headless:       true,
			ViewportWidth:  1920,
			ViewportHeight: 1080,
			UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/115.0.0.0 Safari/537.36",
			Locale:         "en-US",
			Timeout:        60 * time.Second,
			SessionFile:    "threadline_session.json",
			ArtifactsDir:   ".threadline/screenshots",
		},
		Thread: ThreadConfig{
			Limit:     thread.DefaultLimit,
			SingleCap: thread.PlatformCap,
		},
		Pacing: PacingConfig{
			Short:  Delay{Min: 1 * time.Second, Max: 2 * time.Second},
			Medium: Delay{Min: 2 * time.Second, Max: 4 * time.Second},
			Long:   Delay{Min: 4 * time.Second, Max: 8 * time.Second},
		},
		Reply: ReplyConfig{
			AllowedTargets: []string{
				"https://x.com/*/status/*",
				"https://twitter.com/*/status/*",
			},
			Draft: DraftConfig{
				Model:           "gpt-4o-mini",
				MaxPromptTokens: 1024,
				Instructions:    "Write a short, friendly reply to the post below. Plain text, no hashtags.",
			},
		},
		Verification: VerificationConfig{
			Mode:         VerificationPrompt,
			IMAPAddr:     "imap.gmail.com:993",
			Mailbox:      "INBOX",
			Sender:       "x.com",
			Lookback:     10 * time.Minute,
			Timeout:      2 * time.Minute,
			PollInterval: 10 * time.Second,
		},
	}
}

// Load reads a YAML file over DefaultConfig and validates the result.
// An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	u, err := url.Parse(c.Site.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("site.base_url must be an absolute URL, got %q", c.Site.BaseURL)
	}

	if c.Browser.ViewportWidth <= 0 || c.Browser.ViewportHeight <= 0 {
		return fmt.Errorf("browser viewport must be positive, got %dx%d", c.Browser.ViewportWidth, c.Browser.ViewportHeight)
	}
	if c.Browser.Timeout < 0 {
		return fmt.Errorf("browser.timeout cannot be negative")
	}
	if c.Browser.SessionFile == "" {
		return fmt.Errorf("browser.session_file is required")
	}

	if c.Thread.Limit <= 0 {
		return fmt.Errorf("thread.limit must be positive, got %d", c.Thread.Limit)
	}
	if c.Thread.SingleCap < c.Thread.Limit {
		return fmt.Errorf("thread.single_cap (%d) cannot be below thread.limit (%d)", c.Thread.SingleCap, c.Thread.Limit)
	}

	for name, d := range map[string]Delay{
		"short":  c.Pacing.Short,
		"medium": c.Pacing.Medium,
		"long":   c.Pacing.Long,
	} {
		if d.Min < 0 || d.Max < d.Min {
			return fmt.Errorf("pacing.%s: need 0 <= min <= max, got %v..%v", name, d.Min, d.Max)
		}
	}

	if len(c.Reply.AllowedTargets) == 0 {
		return fmt.Errorf("reply.allowed_targets cannot be empty")
	}
	for _, pattern := range c.Reply.AllowedTargets {
		if _, err := glob.Compile(pattern); err != nil {
			return fmt.Errorf("invalid reply target pattern %q: %w", pattern, err)
		}
	}
	if c.Reply.Draft.MaxPromptTokens < 0 {
		return fmt.Errorf("reply.draft.max_prompt_tokens cannot be negative")
	}

	switch c.Verification.Mode {
	case VerificationIMAP:
		if c.Verification.IMAPAddr == "" {
			return fmt.Errorf("verification.imap_addr is required in imap mode")
		}
		if c.Verification.PollInterval <= 0 {
			return fmt.Errorf("verification.poll_interval must be positive")
		}
	case VerificationPrompt, VerificationNone:
	default:
		return fmt.Errorf("invalid verification mode: %s (must be 'imap', 'prompt', or 'none')", c.Verification.Mode)
	}

	return nil
}

// URL joins path onto the site base URL.
func (s SiteConfig) URL(path string) string {
	base, err := url.Parse(s.BaseURL)
	if err != nil {
		return s.BaseURL + path
	}
	ref, err := url.Parse(path)
	if err != nil {
		return s.BaseURL + path
	}
	return base.ResolveReference(ref).String()
}
