// Package mailer defines the outgoing email model, the provider-agnostic Sender
// interface, and the text rendering helpers used to personalize a message per recipient.
//
// # Architecture
//
//   - Sender: interface that email providers implement (see the smtp and resend subpackages)
//   - Email / Attachment: a fully-prepared message ready for a Sender
//   - RenderText: fail-open template interpolation returning a Rendered result
//   - MarkdownToHTML: optional markdown body conversion
//   - ParseTemplate: splits a template file into YAML frontmatter and body
//
// # Rendering
//
// RenderText never returns an error. When a template cannot be parsed or executed
// the result carries OutcomeFallback and the original template text:
//
//	r := mailer.RenderText("Hello {{ name }}", map[string]any{"name": "Ana"})
//	// r.Text == "Hello Ana", r.Outcome == mailer.OutcomeRendered
//
//	r = mailer.RenderText("Hello {{ name(", data)
//	// r.Text == "Hello {{ name(", r.Outcome == mailer.OutcomeFallback, r.Err != nil
//
// Callers should be aware that a fallback sends literal placeholders to the recipient.
// Inspect Outcome to log or count fallbacks.
//
// Both "{{ name }}" and "{{ .name }}" resolve a context key. Keys that are not
// valid identifiers are reachable with "{{ index . \"First Name\" }}".
// Referencing a key that is not in the context is an error and triggers the fallback.
//
// # Custom Providers
//
//	type MySender struct{}
//
//	func (s *MySender) Send(ctx context.Context, email *mailer.Email) (string, error) {
//		// deliver and return the provider message id
//		return "msg-1", nil
//	}
//
// # Errors
//
// ErrNoRecipient is returned before any network call. An empty body is not an error here.
// Transport rejections wrap ErrSendFailed. ErrSenderNotConfigured comes from the
// smtp and resend constructors. ErrInvalidFrontmatter and ErrRender describe template problems.
package mailer
