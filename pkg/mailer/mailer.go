package mailer

import (
	"errors"
	"fmt"

	"hotspot/config"

	"gopkg.in/gomail.v2"
)

const defaultPort = 2525

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// Mailer sends plain-text mail over SMTP.
type Mailer struct {
	from string
	d    dialer
}

func New(cfg config.MailConfig) *Mailer {
	port := cfg.Port
	if port <= 0 {
		port = defaultPort
	}
	from := cfg.From
	if from == "" {
		from = cfg.Username
	}
	return &Mailer{from: from, d: gomail.NewDialer(cfg.Host, port, cfg.Username, cfg.Password)}
}

func (m *Mailer) message(to, subject, body string) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)
	return msg
}

func (m *Mailer) Send(to, subject, body string) error {
	if to == "" {
		return errors.New("mail recipient required")
	}
	if err := m.d.DialAndSend(m.message(to, subject, body)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
