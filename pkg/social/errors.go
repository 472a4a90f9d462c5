package social

import "errors"

var (
	// ErrAuthFailed is returned when login cannot be completed or verified.
	ErrAuthFailed = errors.New("social: authentication failed")

	// ErrPublishFailed is returned when a post, thread or reply could not be
	// submitted.
	ErrPublishFailed = errors.New("social: publish failed")

	// ErrNotFound is returned when an account has no visible post.
	ErrNotFound = errors.New("social: post not found")

	// ErrEmptyContent is returned for empty posts and replies.
	ErrEmptyContent = errors.New("social: content is empty")

	// ErrTooLong is returned when a reply exceeds the platform cap.
	ErrTooLong = errors.New("social: content exceeds platform cap")

	// ErrTargetNotAllowed is returned when a reply URL matches none of the
	// allowed target patterns.
	ErrTargetNotAllowed = errors.New("social: reply target not allowed")
)
