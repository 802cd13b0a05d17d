package mail

import (
	"fmt"
	"os"

	"office-portal/logger"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

// MailClient wraps the SendGrid API. When no API key is configured, sends are
// logged and skipped so local development works without a mail account.
type MailClient struct {
	apiKey   string
	from     string
	fromName string
}

// NewClient creates a mail client from environment configuration.
func NewClient() *MailClient {
	return &MailClient{
		apiKey:   os.Getenv("SENDGRID_API_KEY"),
		from:     os.Getenv("MAIL_FROM"),
		fromName: os.Getenv("MAIL_FROM_NAME"),
	}
}

// Send delivers one plain-text email.
func (m *MailClient) Send(toEmail, toName, subject, body string) error {
	if m.apiKey == "" {
		logger.Info(fmt.Sprintf("SENDGRID_API_KEY not set, skipping email to %s: %s", toEmail, subject))
		return nil
	}

	from := sgmail.NewEmail(m.fromName, m.from)
	to := sgmail.NewEmail(toName, toEmail)
	message := sgmail.NewSingleEmail(from, subject, to, body, body)

	client := sendgrid.NewSendClient(m.apiKey)
	resp, err := client.Send(message)
	if err != nil {
		return fmt.Errorf("sendgrid send failed: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid rejected message: status=%d body=%s", resp.StatusCode, resp.Body)
	}
	return nil
}
