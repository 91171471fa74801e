package mail

import (
	"fmt"
	"log"
	"net/smtp"

	"github.com/trendscouthq/trendscout/internal/pkg/env"
)

// SendMail sends an HTML email via the configured SMTP relay.
func SendMail(to string, subject string, body string) error {
	host := env.GetEnv("SMTP_HOST", "")
	port := env.GetEnv("SMTP_PORT", "")
	username := env.GetEnv("SMTP_USERNAME", "")
	password := env.GetEnv("SMTP_PASSWORD", "")
	sender := env.GetEnv("SMTP_SENDER", "")

	if host == "" {
		return fmt.Errorf("SMTP_HOST not configured")
	}
	if sender == "" {
		sender = fmt.Sprintf("no-reply@%s", "localhost")
		log.Printf("SMTP_SENDER not set, using default sender: %s", sender)
	}

	var auth smtp.Auth
	if username != "" && password != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}

	addr := fmt.Sprintf("%s:%s", host, port)

	msg := []byte(
		fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n", sender, to, subject) +
			"MIME-Version: 1.0\r\n" +
			"Content-Type: text/html; charset=UTF-8\r\n\r\n" +
			body,
	)

	err := smtp.SendMail(addr, auth, sender, []string{to}, msg)
	if err != nil {
		log.Printf("SMTP send error: %v", err)
	} else {
		log.Printf("Email sent to %s via %s", to, addr)
	}
	return err
}

// SendUnlockNotification tells a user their payment went through and full
// results are available. Best effort; callers ignore the error.
func SendUnlockNotification(to string) error {
	appName := env.GetEnv("APP_NAME", "TrendScout")
	domain := env.GetEnv("PUBLIC_DOMAIN", "")

	subject := fmt.Sprintf("%s - payment confirmed", appName)
	body := fmt.Sprintf(
		"<h2>Payment confirmed</h2>"+
			"<p>Thanks for your purchase. Your account now has full access to all trend search results.</p>"+
			"<p><a href=\"%s/dashboard\">Open your dashboard</a></p>",
		domain,
	)
	return SendMail(to, subject, body)
}
