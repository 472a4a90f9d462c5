// Package thread splits long content into an ordered sequence of
// bounded-length fragments suitable for publishing as a thread of posts.
//
// Lengths are counted in Unicode code points, which is how the platform
// counts characters against its per-post cap.
package thread

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

const (
	// PlatformCap is the platform's hard per-post character limit.
	PlatformCap = 280

	// DefaultLimit leaves headroom under PlatformCap for URLs, emoji and
	// counters a caller may append to a fragment.
	DefaultLimit = 260

	// SafetyMargin is subtracted from the limit when searching for a split
	// point so a fragment never lands exactly on the boundary.
	SafetyMargin = 20
)

// ErrInvalidLimit is returned when the limit is not a positive integer.
var ErrInvalidLimit = errors.New("thread: limit must be positive")

// Segment splits content into fragments of at most limit characters,
// preferring sentence boundaries and falling back to word boundaries.
//
// Empty or whitespace-only content yields an empty sequence. Content that
// already fits within limit yields a single trimmed fragment.
func Segment(content string, limit int) ([]string, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidLimit, limit)
	}

	bound := searchBound(limit)

	var fragments []string
	remaining := []rune(content)
	for {
		remaining = trimRunes(remaining)
		if len(remaining) == 0 {
			break
		}
		if len(remaining) <= limit {
			fragments = append(fragments, string(remaining))
			break
		}

		cut := findCut(remaining, bound)
		if head := trimRunes(remaining[:cut]); len(head) > 0 {
			fragments = append(fragments, string(head))
		}
		remaining = remaining[cut:]
	}

	return repair(fragments, limit, bound), nil
}

// searchBound returns the rightmost position considered for a cut. Limits
// too small to honour the margin search the full limit instead.
func searchBound(limit int) int {
	if limit <= SafetyMargin {
		return limit
	}
	return limit - SafetyMargin
}

// findCut scans text backward from bound and returns the index to cut at.
// text must be longer than bound.
func findCut(text []rune, bound int) int {
	wordCut := 0
	for i := bound; i >= 1; i-- {
		if isTerminator(text[i-1]) && isBreak(text[i]) {
			return i
		}
		// First break met scanning backward is the one nearest bound. A
		// no-break space or tab never counts as a word boundary.
		if wordCut == 0 && isBreak(text[i]) {
			wordCut = i
		}
	}
	if wordCut > 0 {
		return wordCut
	}
	return bound
}

// repair force-splits any fragment still longer than limit. The main loop
// never produces one, but the hard limit is guaranteed here regardless.
func repair(fragments []string, limit, bound int) []string {
	for i := 0; i < len(fragments); i++ {
		runes := []rune(fragments[i])
		if len(runes) <= limit {
			continue
		}

		first := string(trimRunes(runes[:bound]))
		second := string(trimRunes(runes[bound:]))

		fragments[i] = first
		if second == "" {
			continue
		}
		fragments = append(fragments, "")
		copy(fragments[i+2:], fragments[i+1:])
		fragments[i+1] = second
	}
	return fragments
}

func isTerminator(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

func isBreak(r rune) bool {
	return r == ' ' || r == '\n'
}

func trimRunes(r []rune) []rune {
	start, end := 0, len(r)
	for start < end && unicode.IsSpace(r[start]) {
		start++
	}
	for end > start && unicode.IsSpace(r[end-1]) {
		end--
	}
	return r[start:end]
}

// Join reassembles fragments with single spaces, the inverse used when
// re-segmenting a thread with a different limit.
func Join(fragments []string) string {
	return strings.Join(fragments, " ")
}
