package mailer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddress(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Events <events@example.com>", Address("Events", "events@example.com"))
	assert.Equal(t, "events@example.com", Address("  ", "events@example.com"))
}

func TestEmail_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		email *Email
		err   error
	}{
		{name: "nil", email: nil, err: ErrNoRecipient},
		{name: "no recipients", email: &Email{HTML: "<p>x</p>"}, err: ErrNoRecipient},
		{name: "blank recipient", email: &Email{To: []string{" "}, HTML: "<p>x</p>"}, err: ErrNoRecipient},
		{name: "empty body left to transport", email: &Email{To: []string{"a@x.com"}}},
		{name: "valid", email: &Email{To: []string{"a@x.com"}, HTML: "<p>x</p>"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.email.Validate()
			if tt.err == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestSenderFunc(t *testing.T) {
	t.Parallel()

	var got *Email
	s := SenderFunc(func(_ context.Context, e *Email) (string, error) {
		got = e
		return "id-1", nil
	})

	email := &Email{To: []string{"a@x.com"}}
	id, err := s.Send(context.Background(), email)
	assert.NoError(t, err)
	assert.Equal(t, "id-1", id)
	assert.Same(t, email, got)
}
