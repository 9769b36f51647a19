package mailer

import (
	"net/mail"
	"strings"
)

// Address renders "Name <email>", or the bare email when name is blank.
// Names with commas or quotes are quoted.
func Address(name, email string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return email
	}
	return (&mail.Address{Name: name, Address: email}).String()
}

// Email is one rendered message handed to a Sender.
type Email struct {
	Headers     map[string]string
	From        string // overrides the transport's default sender when set
	ReplyTo     string
	Subject     string
	HTML        string
	Text        string // plain-text alternative; transports derive none on their own
	To          []string
	Attachments []Attachment
}

// Validate rejects messages without an addressee. An empty body is left for
// the transport to accept or refuse.
func (e *Email) Validate() error {
	if e == nil || len(e.To) == 0 || strings.TrimSpace(e.To[0]) == "" {
		return ErrNoRecipient
	}
	return nil
}

// Attachment is a decoded file ready to attach.
type Attachment struct {
	Filename    string
	ContentType string // optional; transports guess from Filename when empty
	Content     []byte
}
