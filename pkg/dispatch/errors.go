package dispatch

import "errors"

var (
	// ErrStorageNotConfigured indicates an attachment references a storage key but no loader is set.
	ErrStorageNotConfigured = errors.New("attachment storage is not configured")

	// ErrInvalidAttachment indicates an attachment has neither usable content nor a key.
	ErrInvalidAttachment = errors.New("invalid attachment")

	// ErrStreamClosed indicates the event sink stopped accepting events.
	ErrStreamClosed = errors.New("progress stream closed")
)
