package mailer

import (
	"fmt"
	"net/smtp"
	"strings"

	"group_chat/internal/config"
	"group_chat/internal/domain"
	"group_chat/pkg/logger"
)

// Mailer sends room invitation notices out-of-band. Delivery failure
// never blocks or rolls back invite issuance.
type Mailer interface {
	SendInvites(room *domain.Room, recipients []string) error
}

type smtpMailer struct {
	cfg config.SMTPConfig
	log logger.Logger
}

func New(cfg config.SMTPConfig, log logger.Logger) Mailer {
	if !cfg.Enabled {
		return &nopMailer{log: log}
	}
	return &smtpMailer{cfg: cfg, log: log}
}

func (m *smtpMailer) SendInvites(room *domain.Room, recipients []string) error {
	body := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: You have been invited to %s\r\n\r\n"+
			"You have been invited to join the room %q (id %s).\r\n",
		m.cfg.From, strings.Join(recipients, ", "), room.Name, room.Name, room.ID,
	)

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	if err := smtp.SendMail(addr, auth, m.cfg.From, recipients, []byte(body)); err != nil {
		m.log.Error("Failed to send invite email", "error", err, "room_id", room.ID)
		return err
	}

	return nil
}

type nopMailer struct {
	log logger.Logger
}

func (m *nopMailer) SendInvites(room *domain.Room, recipients []string) error {
	m.log.Info("Invite email delivery disabled, skipping", "room_id", room.ID, "recipients", len(recipients))
	return nil
}
