package smtp

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-confirm-mailer/internal/config"
	"github.com/go-confirm-mailer/internal/metrics"
	"github.com/go-confirm-mailer/internal/pkg/id"
	"gopkg.in/gomail.v2"
)

// Mailer sends HTML emails.
type Mailer interface {
	SendEmail(to, subject, htmlBody string) error
}

type mailer struct {
	dialer    *gomail.Dialer
	fromName  string
	fromEmail string
}

// NewMailer builds a Mailer that delivers through the configured SMTP relay.
// Each call makes a single delivery attempt.
func NewMailer(cfg *config.Config) Mailer {
	slog.Info("initializing mail sender", "host", cfg.SMTPHost, "port", cfg.SMTPPort, "user", cfg.SMTPUsername)
	return &mailer{
		dialer:    gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword),
		fromName:  cfg.FromName,
		fromEmail: cfg.FromEmail,
	}
}

func (m *mailer) SendEmail(to, subject, htmlBody string) error {
	msg := m.newMessage(to, subject, htmlBody)
	if err := m.dialer.DialAndSend(msg); err != nil {
		metrics.MailSendFailure.WithLabelValues(m.dialer.Host).Inc()
		return fmt.Errorf("send mail to %s via %s:%d: %w", to, m.dialer.Host, m.dialer.Port, err)
	}
	metrics.MailSendSuccess.WithLabelValues(m.dialer.Host).Inc()
	return nil
}

func (m *mailer) newMessage(to, subject, htmlBody string) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", m.fromEmail, m.fromName)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetHeader("Message-ID", id.MessageID(senderDomain(m.fromEmail)))
	msg.SetBody("text/html", htmlBody)
	return msg
}

func senderDomain(addr string) string {
	if i := strings.LastIndex(addr, "@"); i >= 0 {
		return addr[i+1:]
	}
	return ""
}
