package draft

import (
	"github.com/pkoukk/tiktoken-go"
)

// Tokenizer counts and truncates text in model tokens.
type Tokenizer struct {
	enc *tiktoken.Tiktoken
}

// NewTokenizer returns a tokenizer for model, falling back to cl100k_base
// for models tiktoken does not know.
func NewTokenizer(model string) (*Tokenizer, error) {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return nil, err
		}
	}
	return &Tokenizer{enc: enc}, nil
}

// CountTokens returns the number of tokens in text.
func (t *Tokenizer) CountTokens(text string) int {
	return len(t.enc.Encode(text, nil, nil))
}

// Truncate returns text cut to at most max tokens. The second result reports
// whether anything was removed.
func (t *Tokenizer) Truncate(text string, max int) (string, bool) {
	tokens := t.enc.Encode(text, nil, nil)
	if max <= 0 || len(tokens) <= max {
		return text, false
	}
	return t.enc.Decode(tokens[:max]), true
}
