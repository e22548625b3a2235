package mailer

import (
	"context"
	"fmt"
	"time"

	mg "github.com/mailgun/mailgun-go/v4"
)

// Mailgun sends transactional mail for the verification and reset flows.
type Mailgun struct {
	Sender string

	client *mg.MailgunImpl
}

func NewMailgun(domain, apiKey, sender string) *Mailgun {
	return &Mailgun{Sender: sender, client: mg.NewMailgun(domain, apiKey)}
}

// Send delivers one message. html is optional and overrides the plain-text
// body when present.
func (m *Mailgun) Send(ctx context.Context, to, subject, text, html string) error {
	msg := m.client.NewMessage(m.Sender, subject, text, to)
	if html != "" {
		msg.SetHtml(html)
	}
	sendCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	_, _, err := m.client.Send(sendCtx, msg)
	return err
}

// Compose renders the subject and plain-text body for a queued job.
func Compose(job *EmailJob) (subject, text string) {
	link, _ := job.Data["link"].(string)
	switch job.Kind {
	case JobVerifyEmail:
		subject = "Verify your email address"
		text = fmt.Sprintf("Welcome! Please verify your email address by opening this link:\n\n%s\n\nThe link expires in 24 hours.", link)
	case JobResetPassword:
		subject = "Reset your password"
		text = fmt.Sprintf("A password reset was requested for your account. Open this link to choose a new password:\n\n%s\n\nThe link expires in 30 minutes. If you did not request this, ignore this email.", link)
	default:
		subject = job.Subject
		text = link
	}
	if job.Subject != "" {
		subject = job.Subject
	}
	return subject, text
}
