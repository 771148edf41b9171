package mail

import (
	"errors"
	"fmt"
	"html"
	"net/smtp"

	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/SaaSFox/internal/pkg/env"
)

// ErrNotConfigured is returned when SMTP_HOST is unset.
var ErrNotConfigured = errors.New("SMTP_HOST is not configured")

// sendFunc is swapped in tests.
var sendFunc = smtp.SendMail

// SendMail sends an HTML email via SMTP
func SendMail(to string, subject string, body string) error {
	host := env.GetEnv("SMTP_HOST", "")
	port := env.GetEnv("SMTP_PORT", "587")
	username := env.GetEnv("SMTP_USERNAME", "")
	password := env.GetEnv("SMTP_PASSWORD", "")
	sender := env.GetEnv("SMTP_SENDER", "")

	if host == "" {
		return ErrNotConfigured
	}
	if sender == "" {
		sender = fmt.Sprintf("no-reply@%s", host)
		log.Warnf("[Mail] SMTP_SENDER not set, using default sender: %s", sender)
	}

	var auth smtp.Auth
	if username != "" && password != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}

	addr := fmt.Sprintf("%s:%s", host, port)
	msg := buildMessage(sender, to, subject, body)

	err := sendFunc(addr, auth, sender, []string{to}, msg)
	if err != nil {
		log.Errorf("[Mail] SMTP send error: %v", err)
	} else {
		log.Infof("[Mail] email sent to %s via %s", to, addr)
	}
	return err
}

// SendActivationMail sends the account activation link.
func SendActivationMail(to, link string) error {
	appName := env.GetEnv("APP_NAME", "SaaSFox")
	subject := fmt.Sprintf("Activate your %s account", appName)
	escaped := html.EscapeString(link)
	body := fmt.Sprintf(
		`<p>Welcome to %s!</p><p>Please confirm your email address: <a href="%s">%s</a></p>`+
			`<p>If you did not sign up, ignore this message.</p>`,
		html.EscapeString(appName), escaped, escaped,
	)
	return SendMail(to, subject, body)
}

func buildMessage(sender, to, subject, body string) []byte {
	return []byte(
		fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n", sender, to, subject) +
			"MIME-Version: 1.0\r\n" +
			"Content-Type: text/html; charset=UTF-8\r\n\r\n" +
			body,
	)
}
