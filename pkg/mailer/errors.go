package mailer

import "errors"

var (
	ErrNoRecipient         = errors.New("mailer: message has no recipient")
	ErrSenderNotConfigured = errors.New("mailer: sender credentials are not configured")
	// ErrSendFailed wraps every transport rejection so callers can tell it from validation errors.
	ErrSendFailed         = errors.New("mailer: send failed")
	ErrInvalidFrontmatter = errors.New("mailer: invalid template frontmatter")
	// ErrRender marks a template failure recorded in Rendered.Err.
	ErrRender = errors.New("mailer: template render failed")
)
