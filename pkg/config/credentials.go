package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Credentials holds secrets that never live in the config file.
type Credentials struct {
	Username string `envconfig:"THREADLINE_USERNAME"`
	Password string `envconfig:"THREADLINE_PASSWORD"`

	// Mailbox used to receive login verification codes
	Email         string `envconfig:"THREADLINE_EMAIL"`
	EmailPassword string `envconfig:"THREADLINE_EMAIL_PASSWORD"`

	OpenAIKey     string `envconfig:"OPENAI_API_KEY"`
	OpenAIBaseURL string `envconfig:"OPENAI_BASE_URL"`
}

// LoadCredentials reads credentials from the environment.
func LoadCredentials() (Credentials, error) {
	var c Credentials
	if err := envconfig.Process("", &c); err != nil {
		return Credentials{}, fmt.Errorf("failed to load credentials: %w", err)
	}
	return c, nil
}

// RequireLogin reports whether the account credentials are present.
func (c Credentials) RequireLogin() error {
	if c.Username == "" || c.Password == "" {
		return fmt.Errorf("THREADLINE_USERNAME and THREADLINE_PASSWORD must be set")
	}
	return nil
}

// RequireMailbox reports whether the mailbox credentials are present.
func (c Credentials) RequireMailbox() error {
	if c.Email == "" || c.EmailPassword == "" {
		return fmt.Errorf("THREADLINE_EMAIL and THREADLINE_EMAIL_PASSWORD must be set for imap verification")
	}
	return nil
}
