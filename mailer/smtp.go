package mailer

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/mail.v2"
)

// SettingsSource returns the SMTP configuration stored in the shop settings. An empty
// config means the settings have none.
type SettingsSource interface {
	SMTPSettings(ctx context.Context) (SMTPConfig, error)
}

type dialFunc func(cfg SMTPConfig, msgs ...*mail.Message) error

// SMTPSender resolves its transport on every send, so settings edits apply without a
// restart.
type SMTPSender struct {
	settings SettingsSource
	env      SMTPConfig
	dial     dialFunc
}

func NewSMTPSender(settings SettingsSource, env SMTPConfig) *SMTPSender {
	return &SMTPSender{
		settings: settings,
		env:      env,
		dial:     dialAndSend,
	}
}

func dialAndSend(cfg SMTPConfig, msgs ...*mail.Message) error {
	d := mail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password)
	return d.DialAndSend(msgs...)
}

// Config returns the transport the next Send would use.
func (s *SMTPSender) Config(ctx context.Context) (SMTPConfig, error) {
	var fromSettings SMTPConfig
	if s.settings != nil {
		cfg, err := s.settings.SMTPSettings(ctx)
		if err != nil {
			return SMTPConfig{}, fmt.Errorf("load smtp settings: %w", err)
		}
		fromSettings = cfg
	}
	return Resolve(fromSettings, s.env)
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) (Result, error) {
	if msg.To == "" {
		return Result{}, fmt.Errorf("mailer: empty recipient")
	}
	cfg, err := s.Config(ctx)
	if err != nil {
		return Result{}, err
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	messageID := fmt.Sprintf("<%s@%s>", uuid.NewString(), domainOf(cfg.From))
	m := mail.NewMessage()
	m.SetHeader("From", cfg.From)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetHeader("Message-ID", messageID)
	if msg.Text != "" {
		m.SetBody("text/plain", msg.Text)
		if msg.HTML != "" {
			m.AddAlternative("text/html", msg.HTML)
		}
	} else {
		m.SetBody("text/html", msg.HTML)
	}

	if err := s.dial(cfg, m); err != nil {
		return Result{}, fmt.Errorf("send mail to %s: %w", msg.To, err)
	}
	return Result{Success: true, MessageID: messageID}, nil
}

func domainOf(address string) string {
	address = strings.TrimSuffix(strings.TrimSpace(address), ">")
	if i := strings.LastIndex(address, "@"); i >= 0 && i < len(address)-1 {
		return address[i+1:]
	}
	return "localhost"
}
