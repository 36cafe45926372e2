package mailer

import (
	"log/slog"

	"github.com/frahmantamala/staff-portal/internal"
	"gopkg.in/gomail.v2"
)

// Message is an outbound email. Body is HTML.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Mailer is the message-sending capability consumed by the verification
// workflow. A send either succeeds or fails synchronously; there is no
// queueing or retry.
type Mailer interface {
	Send(msg Message) error
}

// SMTPMailer delivers mail over SMTP with gomail.
type SMTPMailer struct {
	cfg    internal.MailConfig
	logger *slog.Logger
}

func NewSMTPMailer(cfg internal.MailConfig, logger *slog.Logger) *SMTPMailer {
	return &SMTPMailer{cfg: cfg, logger: logger}
}

func (m *SMTPMailer) Send(msg Message) error {
	gm := gomail.NewMessage()
	gm.SetHeader("From", m.cfg.From)
	gm.SetHeader("To", msg.To)
	gm.SetHeader("Subject", msg.Subject)
	gm.SetBody("text/html", msg.Body)

	d := gomail.NewDialer(m.cfg.Host, m.cfg.Port, m.cfg.Username, m.cfg.Password)

	if err := d.DialAndSend(gm); err != nil {
		m.logger.Error("mail delivery failed", "to", msg.To, "subject", msg.Subject, "error", err)
		return internal.ErrMailSend.WithCause(err)
	}

	m.logger.Info("mail sent", "to", msg.To, "subject", msg.Subject)
	return nil
}
