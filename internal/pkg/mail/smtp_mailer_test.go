package mail

import (
	"net/smtp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendActivationMail(t *testing.T) {
	t.Setenv("SMTP_HOST", "mail.test")
	t.Setenv("SMTP_PORT", "2525")
	t.Setenv("SMTP_SENDER", "hello@saasfox.test")

	var gotAddr string
	var gotTo []string
	var gotMsg string
	orig := sendFunc
	sendFunc = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr = addr
		gotTo = to
		gotMsg = string(msg)
		assert.Equal(t, "hello@saasfox.test", from)
		return nil
	}
	defer func() { sendFunc = orig }()

	require.NoError(t, SendActivationMail("ada@example.com", "https://app.test/activate?token=a&b"))
	assert.Equal(t, "mail.test:2525", gotAddr)
	assert.Equal(t, []string{"ada@example.com"}, gotTo)
	assert.Contains(t, gotMsg, "Subject: Activate your SaaSFox account")
	assert.Contains(t, gotMsg, "token=a&amp;b")
}

func TestSendMailNotConfigured(t *testing.T) {
	t.Setenv("SMTP_HOST", "")
	assert.ErrorIs(t, SendMail("a@b.c", "s", "b"), ErrNotConfigured)
}
