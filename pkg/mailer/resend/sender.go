package resend

import (
	"context"
	"errors"
	"fmt"

	"github.com/resend/resend-go/v3"

	"github.com/dmitrymomot/mailcast/pkg/mailer"
)

// emailService is the subset of the Resend client used for delivery.
type emailService interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

// Sender implements mailer.Sender using the Resend API.
type Sender struct {
	emails emailService
	from   string
}

// New creates a new Resend sender.
// Returns mailer.ErrSenderNotConfigured when the API key or sender email is missing.
func New(cfg Config) (*Sender, error) {
	if cfg.APIKey == "" || cfg.SenderEmail == "" {
		return nil, fmt.Errorf("resend: %w", mailer.ErrSenderNotConfigured)
	}
	return newSender(resend.NewClient(cfg.APIKey).Emails, cfg), nil
}

func newSender(emails emailService, cfg Config) *Sender {
	return &Sender{
		emails: emails,
		from:   mailer.Address(cfg.SenderName, cfg.SenderEmail),
	}
}

// Send implements mailer.Sender. The returned id is the Resend email id.
func (s *Sender) Send(ctx context.Context, email *mailer.Email) (string, error) {
	if err := email.Validate(); err != nil {
		return "", err
	}

	from := email.From
	if from == "" {
		from = s.from
	}

	req := &resend.SendEmailRequest{
		From:    from,
		To:      email.To,
		Subject: email.Subject,
		Html:    email.HTML,
		Text:    email.Text,
		ReplyTo: email.ReplyTo,
		Headers: email.Headers,
	}
	if len(email.Attachments) > 0 {
		req.Attachments = convertAttachments(email.Attachments)
	}

	resp, err := s.emails.SendWithContext(ctx, req)
	if err != nil {
		return "", errors.Join(mailer.ErrSendFailed, fmt.Errorf("resend: %w", err))
	}
	if resp == nil {
		return "", nil
	}
	return resp.Id, nil
}

func convertAttachments(attachments []mailer.Attachment) []*resend.Attachment {
	result := make([]*resend.Attachment, len(attachments))
	for i, a := range attachments {
		result[i] = &resend.Attachment{
			Filename:    a.Filename,
			Content:     a.Content,
			ContentType: a.ContentType,
		}
	}
	return result
}
