package social

import "strings"

// Challenge is the kind of security check shown after submitting a password.
type Challenge int

const (
	// ChallengeNone means the login went straight through.
	ChallengeNone Challenge = iota
	// ChallengeVerificationCode asks for a code sent by email.
	ChallengeVerificationCode
	// ChallengeOther is any other interstitial (identity, phone, unusual login).
	ChallengeOther
)

func (c Challenge) String() string {
	switch c {
	case ChallengeNone:
		return "none"
	case ChallengeVerificationCode:
		return "verification_code"
	case ChallengeOther:
		return "other"
	default:
		return "unknown"
	}
}

var codeIndicators = []string{
	"confirmation code",
	"verify it's you",
	"verification code",
}

var otherIndicators = []string{
	"verify your identity",
	"unusual login",
	"suspicious activity",
	"enter your phone number",
	"check your phone",
}

// ClassifyChallenge inspects page content after a login attempt. Code
// challenges take precedence because they often share wording with the
// generic identity prompts.
func ClassifyChallenge(content string) Challenge {
	content = strings.ToLower(strings.ReplaceAll(content, "’", "'"))
	for _, indicator := range codeIndicators {
		if strings.Contains(content, indicator) {
			return ChallengeVerificationCode
		}
	}
	for _, indicator := range otherIndicators {
		if strings.Contains(content, indicator) {
			return ChallengeOther
		}
	}
	return ChallengeNone
}
