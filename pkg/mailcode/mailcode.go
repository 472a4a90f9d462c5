// Package mailcode retrieves the one-time verification codes the site emails
// during login.
package mailcode

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"unicode"
)

// ErrNoCode is returned when no verification code could be found in time.
var ErrNoCode = errors.New("mailcode: no verification code found")

// Source produces a verification code for the login in progress.
type Source interface {
	Code(ctx context.Context) (string, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) (string, error)

// Code calls f(ctx).
func (f SourceFunc) Code(ctx context.Context) (string, error) {
	return f(ctx)
}

var (
	cuePattern    = regexp.MustCompile(`(?i)\bcode\b(?:\s+is)?\s*[:\-]?\s*([a-z0-9]{5,8})\b`)
	digitsPattern = regexp.MustCompile(`\b(\d{6,8})\b`)
)

// ExtractCode finds a verification code in text. A 5 to 8 character
// alphanumeric token following the word "code" is preferred; it must contain
// a digit so ordinary words are never taken for codes. Otherwise the first
// standalone run of 6 to 8 digits is used.
func ExtractCode(text string) (string, bool) {
	for _, m := range cuePattern.FindAllStringSubmatch(text, -1) {
		if hasDigit(m[1]) {
			return m[1], true
		}
	}
	if m := digitsPattern.FindStringSubmatch(text); m != nil {
		return m[1], true
	}
	return "", false
}

func hasDigit(s string) bool {
	return strings.IndexFunc(s, unicode.IsDigit) >= 0
}
