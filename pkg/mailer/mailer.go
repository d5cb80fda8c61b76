// Package mailer sends transactional email over SMTP.
//
// All domain callers treat sends as fire-and-forget: failures are logged
// and never surfaced to API clients.
package mailer

import (
	"fmt"
	"net/smtp"

	"github.com/axevisa/visa-backend/internal/config"
	"github.com/sirupsen/logrus"
)

// Mailer delivers HTML mail through an SMTP relay
type Mailer struct {
	cfg    config.SMTPConfig
	logger *logrus.Logger
}

// New creates a new mailer
func New(cfg config.SMTPConfig, logger *logrus.Logger) *Mailer {
	return &Mailer{
		cfg:    cfg,
		logger: logger,
	}
}

// Send delivers a single HTML message. In dev mode the message is logged
// instead of sent so local runs need no SMTP credentials.
func (m *Mailer) Send(to, subject, htmlBody string) error {
	if m.cfg.Mode != "production" {
		m.logger.WithFields(logrus.Fields{
			"to":      to,
			"subject": subject,
		}).Info("dev mode: skipping SMTP send")
		return nil
	}

	msg := []byte("From: " + m.cfg.From + "\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: text/html; charset=\"UTF-8\"\r\n" +
		"\r\n" +
		htmlBody + "\r\n")

	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	addr := fmt.Sprintf("%s:%s", m.cfg.Host, m.cfg.Port)

	if err := smtp.SendMail(addr, auth, m.cfg.Username, []string{to}, msg); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", to, err)
	}

	m.logger.WithFields(logrus.Fields{
		"to":      to,
		"subject": subject,
	}).Info("mail sent")

	return nil
}
