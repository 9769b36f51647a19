package smtp

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"github.com/dmitrymomot/mailcast/pkg/mailer"
)

type fakeDialer struct {
	sendErr error
	dialErr error
	block   chan struct{}
	sent    []*gomail.Message
	mu      sync.Mutex
}

func (d *fakeDialer) DialAndSend(m ...*gomail.Message) error {
	if d.block != nil {
		<-d.block
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sent = append(d.sent, m...)
	return d.sendErr
}

func (d *fakeDialer) Dial() (gomail.SendCloser, error) {
	if d.dialErr != nil {
		return nil, d.dialErr
	}
	return nopSendCloser{}, nil
}

type nopSendCloser struct{}

func (nopSendCloser) Send(string, []string, io.WriterTo) error { return nil }
func (nopSendCloser) Close() error                             { return nil }

var testConfig = Config{
	SenderEmail: "events@example.com",
	Password:    "secret",
	SenderName:  "Events Team",
}

func TestNew_RequiresCredentials(t *testing.T) {
	t.Parallel()

	_, err := New(Config{SenderEmail: "events@example.com"})
	require.ErrorIs(t, err, mailer.ErrSenderNotConfigured)

	_, err = New(Config{Password: "secret"})
	require.ErrorIs(t, err, mailer.ErrSenderNotConfigured)

	s, err := New(testConfig)
	require.NoError(t, err)
	require.NotNil(t, s)
}

func TestSender_Send(t *testing.T) {
	t.Parallel()

	d := &fakeDialer{}
	s := newSender(d, testConfig)

	msgID, err := s.Send(context.Background(), &mailer.Email{
		To:      []string{"ana@example.com"},
		Subject: "Your ticket",
		HTML:    "<p>Hello Ana</p>",
		Text:    "Hello Ana",
		ReplyTo: "help@example.com",
		Headers: map[string]string{"X-Campaign": "launch"},
		Attachments: []mailer.Attachment{
			{Filename: "ticket.pdf", ContentType: "application/pdf", Content: []byte("%PDF-1.4")},
		},
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(msgID, "<"))
	assert.True(t, strings.HasSuffix(msgID, "@example.com>"))

	require.Len(t, d.sent, 1)
	m := d.sent[0]
	assert.Equal(t, []string{"Events Team <events@example.com>"}, m.GetHeader("From"))
	assert.Equal(t, []string{"ana@example.com"}, m.GetHeader("To"))
	assert.Equal(t, []string{"Your ticket"}, m.GetHeader("Subject"))
	assert.Equal(t, []string{msgID}, m.GetHeader("Message-ID"))
	assert.Equal(t, []string{"help@example.com"}, m.GetHeader("Reply-To"))
	assert.Equal(t, []string{"launch"}, m.GetHeader("X-Campaign"))

	var buf bytes.Buffer
	_, err = m.WriteTo(&buf)
	require.NoError(t, err)
	raw := buf.String()
	assert.Contains(t, raw, "text/plain")
	assert.Contains(t, raw, "text/html")
	assert.Contains(t, raw, `filename="ticket.pdf"`)
	assert.Contains(t, raw, "application/pdf")
}

func TestSender_Send_HTMLOnly(t *testing.T) {
	t.Parallel()

	d := &fakeDialer{}
	s := newSender(d, testConfig)

	_, err := s.Send(context.Background(), &mailer.Email{
		From: "other@example.com",
		To:   []string{"ana@example.com"},
		HTML: "<p>Hello</p>",
	})
	require.NoError(t, err)
	require.Len(t, d.sent, 1)
	assert.Equal(t, []string{"other@example.com"}, d.sent[0].GetHeader("From"))

	var buf bytes.Buffer
	_, err = d.sent[0].WriteTo(&buf)
	require.NoError(t, err)
	assert.NotContains(t, buf.String(), "text/plain")
}

func TestSender_Send_Error(t *testing.T) {
	t.Parallel()

	d := &fakeDialer{sendErr: errors.New("535 authentication failed")}
	s := newSender(d, testConfig)

	msgID, err := s.Send(context.Background(), &mailer.Email{To: []string{"ana@example.com"}, HTML: "<p>x</p>"})
	require.Error(t, err)
	assert.ErrorIs(t, err, mailer.ErrSendFailed)
	assert.Contains(t, err.Error(), "535 authentication failed")
	assert.Empty(t, msgID)
}

func TestSender_Send_InvalidEmail(t *testing.T) {
	t.Parallel()

	d := &fakeDialer{}
	s := newSender(d, testConfig)

	_, err := s.Send(context.Background(), &mailer.Email{HTML: "<p>x</p>"})
	require.ErrorIs(t, err, mailer.ErrNoRecipient)
	assert.Empty(t, d.sent)
}

func TestSender_Send_EmptyBody(t *testing.T) {
	t.Parallel()

	d := &fakeDialer{}
	s := newSender(d, testConfig)

	msgID, err := s.Send(context.Background(), &mailer.Email{To: []string{"ana@example.com"}, Subject: "Reminder"})
	require.NoError(t, err)
	assert.NotEmpty(t, msgID)
	require.Len(t, d.sent, 1)
}

func TestSender_Send_ContextDeadline(t *testing.T) {
	t.Parallel()

	d := &fakeDialer{block: make(chan struct{})}
	defer close(d.block)
	s := newSender(d, testConfig)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := s.Send(ctx, &mailer.Email{To: []string{"ana@example.com"}, HTML: "<p>x</p>"})
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSender_Healthcheck(t *testing.T) {
	t.Parallel()

	s := newSender(&fakeDialer{}, testConfig)
	require.NoError(t, s.Healthcheck(context.Background()))

	s = newSender(&fakeDialer{dialErr: errors.New("connection refused")}, testConfig)
	err := s.Healthcheck(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}
