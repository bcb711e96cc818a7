// Package services defines the business logic for the messaging core:
// blocking, chat threads, messages, reactions, presence, and digest
// batching. This file centralizes common service-level error values so
// that they can be consistently returned by service methods and checked
// by callers.
//
// These errors are intended for internal use by the service layer and
// translation into user-facing messages or HTTP status codes should be
// performed at the handler/controller layer.
package services

import "errors"

// Chat-related errors.
var (
	// ErrChatNotFound indicates that the requested chat does not exist or is
	// not visible to the current user.
	ErrChatNotFound = errors.New("chat not found")

	// ErrNotMember is returned when the caller holds no active membership in
	// the chat they are operating on.
	ErrNotMember = errors.New("not a member of this chat")

	// ErrBlockedRelationship is returned when chat creation is gated by an
	// existing block edge in either direction.
	ErrBlockedRelationship = errors.New("cannot message a blocked user")

	// ErrCIDExhausted is returned when short-ID generation failed to find a
	// free slot after the bounded number of attempts.
	ErrCIDExhausted = errors.New("chat id generation exhausted retries")
)

// Message-related errors.
var (
	// ErrMessageNotFound indicates that the requested message does not exist
	// or is not visible to the current user.
	ErrMessageNotFound = errors.New("message not found")

	// ErrNotAuthor is returned when a user attempts to edit or delete a
	// message they did not write.
	ErrNotAuthor = errors.New("not the author of this message")

	// ErrMessageDeleted is returned when an operation targets a message that
	// was already soft-deleted (e.g. editing it).
	ErrMessageDeleted = errors.New("message was deleted")

	// ErrInvalidReply is returned when a reply target does not exist or
	// belongs to a different chat.
	ErrInvalidReply = errors.New("reply target not in this chat")

	// ErrEmptyMessage is returned when a send request contains no content
	// after trimming.
	ErrEmptyMessage = errors.New("message is empty")

	// ErrTooLong is returned when message content exceeds the configured
	// maximum length.
	ErrTooLong = errors.New("message too long")
)

// Blocking-related errors.
var (
	// ErrSelfBlock is returned on an attempt to block oneself.
	ErrSelfBlock = errors.New("cannot block yourself")

	// ErrBlockNotFound is returned when unblocking a user that was never
	// blocked (no edge to delete).
	ErrBlockNotFound = errors.New("block not found")
)
