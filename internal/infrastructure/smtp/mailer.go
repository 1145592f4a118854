package smtp

import (
	"context"
	"fmt"
	"time"

	"github.com/travel-planner-api/internal/config"
	"github.com/travel-planner-api/internal/domain"
	"gopkg.in/gomail.v2"
)

// Mailer sends emails.
type Mailer interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

type mailer struct {
	dialer  *gomail.Dialer
	from    string
	timeout time.Duration
	send    func(*gomail.Message) error
}

func NewMailer(cfg *config.Config) Mailer {
	d := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword)
	return &mailer{
		dialer:  d,
		from:    cfg.SMTPFrom,
		timeout: cfg.MailTimeout,
		send:    func(m *gomail.Message) error { return d.DialAndSend(m) },
	}
}

// SendEmail delivers a plain-text message. gomail has no context support,
// so the dial runs in its own goroutine and is abandoned on timeout.
func (m *mailer) SendEmail(ctx context.Context, to, subject, body string) error {
	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	msg := m.buildMessage(to, subject, body)
	done := make(chan error, 1)
	go func() { done <- m.send(msg) }()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("%w: %v", domain.ErrMail, err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", domain.ErrMail, ctx.Err())
	}
}

func (m *mailer) buildMessage(to, subject, body string) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)
	return msg
}
