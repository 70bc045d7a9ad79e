package mailer

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

type dialerFunc func(m ...*gomail.Message) error

func (f dialerFunc) DialAndSend(m ...*gomail.Message) error { return f(m...) }

func TestSMTPMailer_Send(t *testing.T) {
	var raw bytes.Buffer
	m := NewSMTPMailerWithDialer(dialerFunc(func(msgs ...*gomail.Message) error {
		require.Len(t, msgs, 1)
		_, err := msgs[0].WriteTo(&raw)
		return err
	}))

	err := m.Send(context.Background(), Email{
		FromName: "Courses",
		From:     "noreply@example.com",
		To:       []string{"asha@example.com"},
		Subject:  "Enrollment confirmed",
		TextBody: "hello",
		HTMLBody: "<p>hello</p>",
	})
	require.NoError(t, err)

	out := raw.String()
	assert.Contains(t, out, "Subject: Enrollment confirmed")
	assert.Contains(t, out, "To: asha@example.com")
	assert.Contains(t, out, "text/html")
}

func TestSMTPMailer_Validation(t *testing.T) {
	m := NewSMTPMailerWithDialer(dialerFunc(func(...*gomail.Message) error { return nil }))

	assert.Error(t, m.Send(context.Background(), Email{To: []string{"a@b.c"}, TextBody: "x"}))
	assert.Error(t, m.Send(context.Background(), Email{From: "a@b.c", TextBody: "x"}))
	assert.Error(t, m.Send(context.Background(), Email{From: "a@b.c", To: []string{"a@b.c"}}))
}

func TestSMTPMailer_DialError(t *testing.T) {
	boom := errors.New("connection refused")
	m := NewSMTPMailerWithDialer(dialerFunc(func(...*gomail.Message) error { return boom }))

	err := m.Send(context.Background(), Email{From: "a@b.c", To: []string{"d@e.f"}, TextBody: "x"})
	assert.ErrorIs(t, err, boom)
}
